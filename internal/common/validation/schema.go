package validation

import (
	"fmt"
	"regexp"
)

// JSONSchema defines the structure for worker input/output schemas
type JSONSchema struct {
	Type                 string              `json:"type"`
	Properties           map[string]Property `json:"properties"`
	Required             []string            `json:"required,omitempty"`
	AdditionalProperties bool                `json:"additionalProperties,omitempty"`
}

type Property struct {
	Type        string      `json:"type"`
	Description string      `json:"description,omitempty"`
	Default     interface{} `json:"default,omitempty"`
	Minimum     *float64    `json:"minimum,omitempty"`
	Maximum     *float64    `json:"maximum,omitempty"`
	Enum        []string    `json:"enum,omitempty"`
	Pattern     *string     `json:"pattern,omitempty"`
	MinLength   *int        `json:"minLength,omitempty"`
	MaxLength   *int        `json:"maxLength,omitempty"`
	MinItems    *int        `json:"minItems,omitempty"`
	MaxItems    *int        `json:"maxItems,omitempty"`
	Items       *Property   `json:"items,omitempty"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// GetErrorMessages flattens the validation errors into "field: message" strings.
func (r *ValidationResult) GetErrorMessages() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return out
}

// ValidateInput validates input against JSON schema with detailed errors
func ValidateInput(input map[string]interface{}, schema JSONSchema) *ValidationResult {
	errors := []ValidationError{}

	for _, requiredField := range schema.Required {
		if _, exists := input[requiredField]; !exists {
			errors = append(errors, ValidationError{
				Field:   requiredField,
				Message: "required field missing",
				Code:    "REQUIRED_FIELD_MISSING",
			})
		}
	}

	for fieldName, value := range input {
		prop, exists := schema.Properties[fieldName]
		if !exists {
			if !schema.AdditionalProperties {
				errors = append(errors, ValidationError{
					Field:   fieldName,
					Message: "field not allowed in schema",
					Code:    "EXTRA_FIELD",
				})
			}
			continue
		}

		if fieldErrors := validateField(fieldName, value, prop); len(fieldErrors) > 0 {
			errors = append(errors, fieldErrors...)
		}
	}

	return &ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}

func validateField(name string, value interface{}, prop Property) []ValidationError {
	var errs []ValidationError

	switch prop.Type {
	case "string":
		s, ok := value.(string)
		if !ok {
			return append(errs, typeError(name, "string"))
		}
		if prop.MinLength != nil && len(s) < *prop.MinLength {
			errs = append(errs, ValidationError{
				Field:   name,
				Message: fmt.Sprintf("must be at least %d characters", *prop.MinLength),
				Code:    "MIN_LENGTH",
			})
		}
		if prop.MaxLength != nil && len(s) > *prop.MaxLength {
			errs = append(errs, ValidationError{
				Field:   name,
				Message: fmt.Sprintf("must be at most %d characters", *prop.MaxLength),
				Code:    "MAX_LENGTH",
			})
		}
		if prop.Pattern != nil {
			if matched, err := regexp.MatchString(*prop.Pattern, s); err == nil && !matched {
				errs = append(errs, ValidationError{
					Field:   name,
					Message: "does not match required pattern",
					Code:    "PATTERN_MISMATCH",
				})
			}
		}
		if len(prop.Enum) > 0 {
			found := false
			for _, e := range prop.Enum {
				if s == e {
					found = true
					break
				}
			}
			if !found {
				errs = append(errs, ValidationError{
					Field:   name,
					Message: fmt.Sprintf("must be one of %v", prop.Enum),
					Code:    "ENUM_MISMATCH",
				})
			}
		}
	case "number", "integer":
		n, ok := toFloat(value)
		if !ok {
			return append(errs, typeError(name, prop.Type))
		}
		if prop.Minimum != nil && n < *prop.Minimum {
			errs = append(errs, ValidationError{
				Field:   name,
				Message: fmt.Sprintf("must be >= %v", *prop.Minimum),
				Code:    "BELOW_MINIMUM",
			})
		}
		if prop.Maximum != nil && n > *prop.Maximum {
			errs = append(errs, ValidationError{
				Field:   name,
				Message: fmt.Sprintf("must be <= %v", *prop.Maximum),
				Code:    "ABOVE_MAXIMUM",
			})
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			errs = append(errs, typeError(name, "boolean"))
		}
	case "array":
		items, ok := value.([]interface{})
		if !ok {
			return append(errs, typeError(name, "array"))
		}
		if prop.MinItems != nil && len(items) < *prop.MinItems {
			errs = append(errs, ValidationError{
				Field:   name,
				Message: fmt.Sprintf("must contain at least %d items", *prop.MinItems),
				Code:    "MIN_ITEMS",
			})
		}
		if prop.MaxItems != nil && len(items) > *prop.MaxItems {
			errs = append(errs, ValidationError{
				Field:   name,
				Message: fmt.Sprintf("must contain at most %d items", *prop.MaxItems),
				Code:    "MAX_ITEMS",
			})
		}
		if prop.Items != nil {
			for i, item := range items {
				errs = append(errs, validateField(fmt.Sprintf("%s[%d]", name, i), item, *prop.Items)...)
			}
		}
	case "object":
		if _, ok := value.(map[string]interface{}); !ok {
			errs = append(errs, typeError(name, "object"))
		}
	}

	return errs
}

func typeError(name, want string) ValidationError {
	return ValidationError{
		Field:   name,
		Message: fmt.Sprintf("must be of type %s", want),
		Code:    "TYPE_MISMATCH",
	}
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
