package resolvebenchmarks

import "assessment-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"socCode"},
		Properties: map[string]validation.Property{
			"socCode": {
				Type:        "string",
				Description: "O*NET-SOC occupation code, e.g. 15-1252.00",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(20),
			},
		},
		AdditionalProperties: true,
	}
}

func intPtr(i int) *int {
	return &i
}
