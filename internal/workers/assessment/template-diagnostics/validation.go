package templatediagnostics

import "assessment-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"templateId"},
		Properties: map[string]validation.Property{
			"templateId": {
				Type:        "string",
				Description: "Template to diagnose",
				MinLength:   intPtr(36),
				MaxLength:   intPtr(36),
			},
		},
		AdditionalProperties: true,
	}
}

func intPtr(i int) *int {
	return &i
}
