package comparecandidates

import "assessment-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"resultIds", "templateId"},
		Properties: map[string]validation.Property{
			"resultIds": {
				Type:        "array",
				Description: "Test result ids of the candidates to compare",
				MinItems:    intPtr(MinCandidates),
				MaxItems:    intPtr(MaxCandidates),
			},
			"templateId": {
				Type:        "string",
				Description: "Template every compared result must belong to",
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
