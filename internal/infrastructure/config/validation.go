package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// lockKeyPattern matches keys that fit the cache_locks primary key
var lockKeyPattern = regexp.MustCompile(`^[A-Za-z0-9:._-]{1,191}$`)

// minLockTTL is the shortest sweep lock lifetime accepted. A shorter lock
// expires while a normal batch is still running.
const minLockTTL = 5 * time.Second

// Validator wraps go-playground/validator with the rules Solarion's
// configuration needs
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with the custom tags and struct rules
// registered
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("lockkey", func(fl validator.FieldLevel) bool {
		return lockKeyPattern.MatchString(fl.Field().String())
	})
	v.RegisterStructValidation(validateDatabase, DatabaseConfig{})
	v.RegisterStructValidation(validateCompletion, CompletionConfig{})

	return &Validator{validate: v}
}

// validateDatabase requires a location for the selected driver
func validateDatabase(sl validator.StructLevel) {
	db := sl.Current().Interface().(DatabaseConfig)
	if db.URL != "" {
		return
	}
	switch db.Type {
	case "sqlite":
		if db.Path == "" {
			sl.ReportError(db.Path, "Path", "path", "required_for_sqlite", "")
		}
	case "postgres":
		if db.Host == "" || db.Name == "" {
			sl.ReportError(db.Host, "Host", "host", "required_for_postgres", "")
		}
	}
}

// validateCompletion keeps the sweep lock usable
func validateCompletion(sl validator.StructLevel) {
	c := sl.Current().Interface().(CompletionConfig)
	if c.LockTTL > 0 && c.LockTTL < minLockTTL {
		sl.ReportError(c.LockTTL, "LockTTL", "lock_ttl", "min_lock_ttl", minLockTTL.String())
	}
}

// Validate validates a struct using validation tags
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return v.formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors into readable messages
func (v *Validator) formatValidationError(err error) error {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	messages := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		msg := fmt.Sprintf("%s failed %s", e.Namespace(), e.Tag())
		if e.Param() != "" {
			msg += "=" + e.Param()
		}
		messages = append(messages, fmt.Sprintf("%s (value: '%v')", msg, e.Value()))
	}
	return fmt.Errorf("validation failed:\n  %s", strings.Join(messages, "\n  "))
}

// ValidateConfig validates the entire configuration
func ValidateConfig(cfg *Config) error {
	return NewValidator().Validate(cfg)
}
