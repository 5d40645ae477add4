package client

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/adamwoolhether/fetch/weburl"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// requestLine holds the parts of a request checked before it is sent.
type requestLine struct {
	Method   string `json:"method" validate:"required,oneof=GET POST PUT DELETE PATCH HEAD OPTIONS"`
	Hostname string `json:"hostname" validate:"required"`
	Port     string `json:"port" validate:"omitempty,numeric"`
	Pathname string `json:"pathname" validate:"startswith=/"`
}

type lineValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// requestLineValidator is built on first use; registration errors are
// returned to every caller instead of panicking at init.
var requestLineValidator = sync.OnceValues(func() (*lineValidator, error) {
	v := validator.New()

	translator, ok := ut.New(en.New(), en.New()).GetTranslator("en")
	if !ok {
		return nil, errors.New("no en translator for request validation")
	}
	if err := en_translations.RegisterDefaultTranslations(v, translator); err != nil {
		return nil, fmt.Errorf("registering request validation messages: %w", err)
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	})

	return &lineValidator{validate: v, translator: translator}, nil
})

// validateRequestLine reports every part of method and u that cannot be
// written onto the wire, in field declaration order.
func validateRequestLine(method string, u *weburl.URL) error {
	lv, err := requestLineValidator()
	if err != nil {
		return err
	}

	port, _ := u.Port()
	line := requestLine{
		Method:   method,
		Hostname: u.Hostname(),
		Port:     port,
		Pathname: u.Pathname(),
	}

	err = lv.validate.Struct(line)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(FieldErrors, 0, len(verrs))
	for _, verr := range verrs {
		fields = append(fields, FieldError{
			Field: verr.Field(),
			Err:   lv.message(verr),
		})
	}

	return fields
}

func (lv *lineValidator) message(verr validator.FieldError) string {
	switch verr.Tag() {
	case "required":
		return verr.Field() + " is required"
	case "oneof":
		return verr.Field() + " must be one of " + verr.Param()
	case "startswith":
		return verr.Field() + " must start with " + verr.Param()
	default:
		return verr.Translate(lv.translator)
	}
}

// FieldError names a request part that failed validation and why.
type FieldError struct {
	Field string `json:"field"`
	Err   string `json:"error"`
}

// FieldErrors is returned by NewRequest when the method or URL is unusable.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, len(fe))
	for i, f := range fe {
		parts[i] = f.Field + ": " + f.Err
	}
	return strings.Join(parts, "; ")
}

// Fields returns the names of the fields that failed validation.
func (fe FieldErrors) Fields() []string {
	names := make([]string, len(fe))
	for i, f := range fe {
		names[i] = f.Field
	}
	return names
}
