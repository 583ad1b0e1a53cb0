package validation

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"frizo/futures_calculator/pkg/utils"
)

// FieldError one rejected input field
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Message
}

// Errors field tagged validation failures, empty means valid.
type Errors []FieldError

func (es Errors) Error() string {
	msgs := make([]string, 0, len(es))
	for _, e := range es {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// OK no errors collected
func (es Errors) OK() bool {
	return len(es) == 0
}

// Err nil when valid, otherwise every field error combined.
func (es Errors) Err() error {
	var err error
	for _, e := range es {
		err = multierr.Append(err, e)
	}
	return err
}

// Fields rejected field names in order.
func (es Errors) Fields() []string {
	return utils.Map(es, func(e FieldError) string { return e.Field })
}

func (es *Errors) add(field, tag, format string, args ...interface{}) {
	*es = append(*es, FieldError{
		Field:   field,
		Tag:     tag,
		Message: fmt.Sprintf(format, args...),
	})
}
