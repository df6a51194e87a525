package checkout

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Validator is the schema-validation collaborator: nil result means the
// values passed, otherwise a field name to message mapping.
type Validator interface {
	Validate(values any) map[string]string
}

// FieldValidator validates step structs via their validate tags plus
// the storefront's card rules.
type FieldValidator struct {
	validate *validator.Validate
}

func NewFieldValidator() (*FieldValidator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := v.RegisterValidation("luhn", validLuhn); err != nil {
		return nil, fmt.Errorf("register luhn validation: %w", err)
	}
	if err := v.RegisterValidation("expmmyy", validExpiry); err != nil {
		return nil, fmt.Errorf("register expiry validation: %w", err)
	}

	return &FieldValidator{validate: v}, nil
}

func (f *FieldValidator) Validate(values any) map[string]string {
	err := f.validate.Struct(values)
	if err == nil {
		return nil
	}

	fields := make(map[string]string)
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range validationErrs {
			fields[fe.Field()] = messageFor(fe)
		}
		return fields
	}

	fields["_"] = err.Error()
	return fields
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "this field is required"
	case "email":
		return "invalid email address"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "luhn":
		return "invalid card number"
	case "expmmyy":
		return "invalid or expired date, use MM/YY"
	case "numeric":
		return "must contain only digits"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// validLuhn runs the Luhn checksum over the card number, ignoring
// spaces. Accepts 13 to 19 digits.
func validLuhn(fl validator.FieldLevel) bool {
	cleaned := strings.ReplaceAll(strings.ReplaceAll(fl.Field().String(), " ", ""), "-", "")
	if len(cleaned) < 13 || len(cleaned) > 19 {
		return false
	}

	sum := 0
	alternate := false
	for i := len(cleaned) - 1; i >= 0; i-- {
		c := cleaned[i]
		if c < '0' || c > '9' {
			return false
		}
		digit := int(c - '0')
		if alternate {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		alternate = !alternate
	}

	return sum%10 == 0
}

// validExpiry checks an MM/YY card date lies in the current month or
// later.
func validExpiry(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	parts := strings.Split(value, "/")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return false
	}

	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return false
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}

	now := time.Now()
	currentYear := now.Year() % 100
	currentMonth := int(now.Month())

	if year < currentYear {
		return false
	}
	if year == currentYear && month < currentMonth {
		return false
	}
	return true
}
