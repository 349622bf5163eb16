package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"golang.org/x/crypto/ssh"
)

var (
	validate *validator.Validate
	uni      *ut.UniversalTranslator
	trans    ut.Translator
)

// Errors represents a collection of config validation errors
type Errors struct {
	Messages []string
}

func init() {
	validate = validator.New()

	enLocale := en.New()
	uni = ut.New(enLocale, enLocale)
	trans, _ = uni.GetTranslator("en")

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		yamlTag := fld.Tag.Get("yaml")

		if yamlTag == "" {
			return fld.Name
		}

		parts := strings.SplitN(yamlTag, ",", 2)
		name := parts[0]

		if name == "-" {
			return fld.Name
		}

		return name
	})

	en_translations.RegisterDefaultTranslations(validate, trans)

	validate.RegisterValidation("ssh_public_key", validateSSHPublicKey)

	validate.RegisterStructValidation(ValidateConfigStruct, Config{})

	registerCustomTranslations(validate, trans)
}

func validateSSHPublicKey(fl validator.FieldLevel) bool {
	key := fl.Field().String()
	if key == "" {
		return true
	}
	_, _, _, _, err := ssh.ParseAuthorizedKey([]byte(key))
	return err == nil
}

// ValidateConfigStruct checks that a backend needing credentials has its section
func ValidateConfigStruct(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)

	if cfg.Backend == BackendOpenStack && cfg.OpenStack == nil {
		sl.ReportError(cfg.OpenStack, BackendOpenStack, "OpenStack", "backend_section", cfg.Backend)
	}
}

// Validate validates a Config instance and returns any validation errors
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("unexpected error during validation: %w", err)
	}

	translatedErrors := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		translatedErrors = append(translatedErrors, e.Translate(trans))
	}

	if len(translatedErrors) > 0 {
		return &Errors{Messages: translatedErrors}
	}

	return nil
}

// Error returns a formatted string of all validation errors
func (e *Errors) Error() string {
	return fmt.Sprintf("%d validation error(s) occurred:\n- %s",
		len(e.Messages),
		strings.Join(e.Messages, "\n- "))
}
