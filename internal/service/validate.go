package service

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/Shem717/IFTA-WAY-Rev26/internal/apperr"
	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New()
	// report JSON field names rather than Go ones
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationError turns validator output into an InvalidArgument error
// listing each offending field and the rule it broke.
func validationError(err error) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return apperr.InvalidArgument("Invalid request.")
	}
	problems := make([]string, 0, len(ves))
	for _, fe := range ves {
		problems = append(problems, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	sort.Strings(problems)
	return apperr.InvalidArgument("Invalid fields: " + strings.Join(problems, ", "))
}
