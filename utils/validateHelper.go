package utils

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs the `binding` tags on an input struct and folds the
// result into a single error, field names lowercased the way the backend
// reports them.
func ValidateStruct(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return errors.New("invalid input: " + strings.Join(fields, ", "))
}

func init() {
	// input structs carry `binding` tags, same as the server side
	validate.SetTagName("binding")
}
