package validation

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator"

	"bably/internal/models"
)

// FieldError is one failing field.
type FieldError struct {
	Field   string
	Message string
}

// Error collects every failing field of a payload.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, ", ")
}

// Has reports whether field failed.
func (e *Error) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Validator checks request payloads against their struct tags.
type Validator struct {
	validate *validator.Validate
}

// New returns a Validator with the application's custom rules registered.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("time_stamp", func(fl validator.FieldLevel) bool {
		_, ok := ParseClock(fl.Field().String())
		return ok
	})

	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01-02", fl.Field().String())
		return err == nil
	})

	v.RegisterStructValidation(feedStructLevel, models.NewFeed{})

	return &Validator{validate: v}
}

// feedStructLevel requires the measurement that matches the feed method.
func feedStructLevel(sl validator.StructLevel) {
	feed := sl.Current().Interface().(models.NewFeed)
	switch feed.Method {
	case models.MethodBottle:
		if feed.Amount == nil {
			sl.ReportError(feed.Amount, "amount", "Amount", "required", "")
		}
	case models.MethodNursing:
		if feed.Duration == nil {
			sl.ReportError(feed.Duration, "duration", "Duration", "required", "")
		}
	}
}

// Struct validates s and returns an *Error naming every failing field.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	out := &Error{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

// Email validates a single address.
func (v *Validator) Email(email string) error {
	if err := v.validate.Var(email, "required,email"); err != nil {
		return &Error{Fields: []FieldError{{Field: "email", Message: "email must be a valid email address"}}}
	}
	return nil
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "email":
		return field + " must be a valid email address"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "date":
		return field + " must be a date (YYYY-MM-DD)"
	case "time_stamp":
		return field + " must be a time of day (HH:MM)"
	default:
		return field + " is invalid"
	}
}

// ParseClock parses "HH:MM" into minutes past midnight.
func ParseClock(s string) (int, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}
