package scoresession

import "assessment-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"sessionId", "templateId"},
		Properties: map[string]validation.Property{
			"sessionId": {
				Type:        "string",
				Description: "Completed test session to score",
				MinLength:   intPtr(36),
				MaxLength:   intPtr(36),
			},
			"templateId": {
				Type:        "string",
				Description: "Template the session was run against",
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
