package validate

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"goldengate/internal/domain"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	// report json names so error maps line up with the request body
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = val.RegisterValidation("financing_status", func(fl validator.FieldLevel) bool {
		return domain.FinancingStatus(fl.Field().String()).Valid()
	})
	_ = val.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, ok := Date(fl.Field().String())
		return ok
	})
	return val
}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 50 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// ID validates a record identifier taken from a path parameter.
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Date accepts a calendar date, optionally followed by a time of day, and
// returns the YYYY-MM-DD part.
func Date(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 10 {
		return "", false
	}
	d := s[:10]
	if _, err := time.Parse(time.DateOnly, d); err != nil {
		return "", false
	}
	if len(s) > 10 && s[10] != 'T' && s[10] != ' ' {
		return "", false
	}
	return d, true
}

// Messages maps "field.tag" (or just "field") to the text shown to the user.
type Messages map[string]string

// Struct validates v and returns one message per failing field, keyed by the
// field's json name. A nil map means the value is valid.
func Struct(s any, msgs Messages) map[string]string {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		switch {
		case msgs[field+"."+fe.Tag()] != "":
			out[field] = msgs[field+"."+fe.Tag()]
		case msgs[field] != "":
			out[field] = msgs[field]
		default:
			out[field] = fe.Tag()
		}
	}
	return out
}
