package notifyresult

import "assessment-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"resultId"},
		Properties: map[string]validation.Property{
			"resultId": {
				Type:        "string",
				Description: "Result to notify about",
				MinLength:   intPtr(36),
				MaxLength:   intPtr(36),
			},
			"recipient": {
				Type:        "string",
				Description: "Candidate email address",
				MaxLength:   intPtr(320),
			},
			"channel": {
				Type:        "string",
				Description: "email, event, or all",
				Enum:        []string{ChannelEmail, ChannelEvent, ChannelAll},
			},
		},
		AdditionalProperties: true,
	}
}

func intPtr(i int) *int {
	return &i
}
