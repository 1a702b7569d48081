package validation

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"shutdown-tracker/internal/errs"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("lat", func(fl validator.FieldLevel) bool {
		lat := fl.Field().Float()
		return lat >= -90 && lat <= 90
	})
	_ = validate.RegisterValidation("lng", func(fl validator.FieldLevel) bool {
		lng := fl.Field().Float()
		return lng >= -180 && lng <= 180
	})
	_ = validate.RegisterValidation("radius_km", func(fl validator.FieldLevel) bool {
		return fl.Field().Float() > 0
	})
}

// Struct validates s against its `validate` tags. Failures come back as a
// validation error naming every offending field.
func Struct(op string, s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs.Validation(op, err.Error())
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field())+" failed "+fe.Tag())
	}
	return errs.Validation(op, "invalid input: "+strings.Join(fields, "; "), fields...)
}
