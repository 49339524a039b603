// Package validator envuelve go-playground/validator con mensajes en inglés.
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

var ErrTranslatorNotFound = errors.New("translator not found")

// ValidationError es un map campo -> mensaje. Las keys usan el tag json del campo.
type ValidationError map[string]string

func (vs ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}

	b, err := json.Marshal(vs)
	if err != nil {
		return fmt.Sprintf("validation error (failed to marshal: %v)", err)
	}
	return string(b)
}

type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func New() (*Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Usar el nombre json en los errores ("title" en vez de "Title").
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	enLang := en.New()
	uni := ut.New(enLang, enLang)
	enTrans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}

	return &Validator{
		validate:   validate,
		translator: enTrans,
	}, nil
}

// Validate valida un struct. Devuelve ValidationError si falla alguna regla.
func (v *Validator) Validate(data any) error {
	if err := v.validate.Struct(data); err != nil {
		var validateErrs validator.ValidationErrors
		if !errors.As(err, &validateErrs) {
			return err
		}

		out := make(ValidationError, len(validateErrs))
		for _, fe := range validateErrs {
			out[fe.Field()] = fe.Translate(v.translator)
		}
		return out
	}
	return nil
}
