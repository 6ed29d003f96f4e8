package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// requestValidator validates request bodies and renders failures in English,
// keyed by JSON field name.
type requestValidator struct {
	validate *govalidator.Validate
	trans    ut.Translator
}

func newRequestValidator() *requestValidator {
	v := govalidator.New()
	// Use JSON tag name for field names in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)
	return &requestValidator{validate: v, trans: trans}
}

// Struct returns nil when dst is valid, otherwise field -> message.
func (rv *requestValidator) Struct(dst interface{}) map[string]string {
	err := rv.validate.Struct(dst)
	if err == nil {
		return nil
	}
	fields := make(map[string]string)
	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(rv.trans)
		}
		return fields
	}
	fields["detail"] = err.Error()
	return fields
}
