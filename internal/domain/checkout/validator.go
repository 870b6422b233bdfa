package checkout

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"

	"github.com/xenking/storefront/internal/domain/order"
)

// fieldMessages are the visitor-facing messages for a blank required field.
var fieldMessages = map[string]string{
	"Name":    "Please enter a name",
	"Line1":   "Please enter the first address line",
	"City":    "Please enter a city name",
	"Zip":     "Please enter a zip code",
	"Country": "Please enter a country name",
}

// fieldKeys map struct field names to the names visitors see in forms.
var fieldKeys = map[string]string{
	"Name":    "name",
	"Line1":   "line1",
	"Line2":   "line2",
	"Line3":   "line3",
	"City":    "city",
	"State":   "state",
	"Zip":     "zip",
	"Country": "country",
}

// ShippingValidator enforces the validate tags on order.ShippingDetails.
type ShippingValidator struct {
	v *validator.Validate
}

var _ Validator = (*ShippingValidator)(nil)

// NewShippingValidator builds a validator with the notblank rule registered.
func NewShippingValidator() *ShippingValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Registration only fails for an empty tag or a nil func.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return &ShippingValidator{v: v}
}

// Validate returns one Problem per failed field, in struct field order.
func (s *ShippingValidator) Validate(details order.ShippingDetails) []Problem {
	err := s.v.Struct(details)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []Problem{{Field: "shipping", Message: err.Error()}}
	}

	problems := make([]Problem, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, Problem{
			Field:   fieldKeys[fe.StructField()],
			Message: message(fe),
		})
	}
	return problems
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank":
		if m, ok := fieldMessages[fe.StructField()]; ok {
			return m
		}
		return "This field is required"
	case "max":
		return "Must be at most " + fe.Param() + " characters"
	default:
		return "Invalid value"
	}
}
