package config

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

func registerCustomTranslations(validate *validator.Validate, t ut.Translator) {
	validate.RegisterTranslation("backend_section", t,
		func(ut ut.Translator) error {
			return ut.Add("backend_section", "Backend '{0}' requires the '{1}' section.", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T("backend_section", fe.Param(), fe.Field())
			return t
		},
	)

	validate.RegisterTranslation("ssh_public_key", t,
		func(ut ut.Translator) error {
			return ut.Add("ssh_public_key", "Field '{0}' must contain an OpenSSH public key.", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T("ssh_public_key", fe.Field())
			return t
		},
	)

	validate.RegisterTranslation("oneof", t,
		func(ut ut.Translator) error {
			return ut.Add("oneof", "Field '{0}' must be one of [{1}] (got '{2}').", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T("oneof", fe.Field(), fe.Param(), fe.Value().(string))
			return t
		},
	)
}
