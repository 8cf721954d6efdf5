// Package form builds add and edit forms from field schemas.
//
// A schema lists fields with a component kind, label and a validation rule
// written as a validator tag ("required,min=2"). Submitted values are decoded
// by kind, checked against each rule, and only handed to the submit handler
// when every field passes.
package form

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Kind is the input component used to render a field.
type Kind string

const (
	KindInput     Kind = "input"
	KindSelect    Kind = "select"
	KindRadio     Kind = "radio"
	KindCombobox  Kind = "combobox"
	KindCheckbox  Kind = "checkbox"
	KindDateRange Kind = "date-range"
)

// ValueType controls how input text is decoded.
type ValueType string

const (
	TypeText   ValueType = ""
	TypeNumber ValueType = "number"
	TypeDate   ValueType = "date"
)

// DateLayout is the layout of date inputs.
const DateLayout = "2006-01-02"

// Option is one choice of a select, radio, combobox or checkbox field.
type Option struct {
	Value string
	Label string
}

// Field describes one form field. ID should match the column id so edit
// forms can be prefilled from the row.
type Field struct {
	ID          string
	Kind        Kind
	Type        ValueType
	Label       string
	Placeholder string
	Description string
	Options     []Option
	Rule        string // validator tag, e.g. "required,min=2"
}

// HasOption reports whether v is one of the field's option values.
func (f Field) HasOption(v string) bool {
	return slices.ContainsFunc(f.Options, func(o Option) bool { return o.Value == v })
}

// Values holds decoded field values keyed by field id.
//
// Value shapes: string for text inputs and single-choice kinds, float64 for
// number inputs, time.Time for date inputs, []string for checkbox and
// []time.Time (from, to) for date ranges.
type Values map[string]any

// String returns the display text of a value.
func (v Values) String(id string) string {
	switch val := v[id].(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.Format(DateLayout)
	default:
		return fmt.Sprint(val)
	}
}

// Strings returns a multi-valued entry, e.g. the checked boxes.
func (v Values) Strings(id string) []string {
	if ss, ok := v[id].([]string); ok {
		return ss
	}
	if s := v.String(id); s != "" {
		return []string{s}
	}
	return nil
}

// Dates returns the from and to dates of a date-range value.
func (v Values) Dates(id string) (from, to time.Time) {
	ts, _ := v[id].([]time.Time)
	if len(ts) > 0 {
		from = ts[0]
	}
	if len(ts) > 1 {
		to = ts[1]
	}
	return from, to
}

// ErrValidation marks a submission that failed field validation.
var ErrValidation = errors.New("form validation failed")

// FieldErrors maps field ids to a user facing message.
type FieldErrors map[string]string

// Error lists the failing fields in a stable order.
func (fe FieldErrors) Error() string {
	ids := make([]string, 0, len(fe))
	for id := range fe {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id + ": " + fe[id]
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

// Unwrap lets errors.Is match ErrValidation.
func (fe FieldErrors) Unwrap() error { return ErrValidation }

// Form validates and submits values for a fixed field list.
type Form struct {
	fields   []Field
	validate *validator.Validate
}

// New returns a form for the fields, or nil when there are none. A nil form
// renders nothing.
func New(fields []Field) *Form {
	if len(fields) == 0 {
		return nil
	}
	return &Form{
		fields:   slices.Clone(fields),
		validate: validator.New(),
	}
}

// Fields returns the form's fields in display order.
func (f *Form) Fields() []Field {
	if f == nil {
		return nil
	}
	return slices.Clone(f.fields)
}

// Defaults returns the initial values. With a nil existing map (add form)
// every field is empty and checkbox fields are an empty list; otherwise the
// existing value for each field id is used.
func (f *Form) Defaults(existing map[string]any) Values {
	out := make(Values, len(f.fields))
	for _, field := range f.fields {
		if v, ok := existing[field.ID]; ok && v != nil {
			out[field.ID] = normalizeExisting(field, v)
			continue
		}
		switch field.Kind {
		case KindCheckbox:
			out[field.ID] = []string{}
		case KindDateRange:
			out[field.ID] = []time.Time{}
		default:
			out[field.ID] = ""
		}
	}
	return out
}

func normalizeExisting(field Field, v any) any {
	switch val := v.(type) {
	case time.Time:
		if field.Kind == KindDateRange {
			return []time.Time{val}
		}
		return val
	case []string, []time.Time, float64, string:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case bool:
		if field.Kind == KindCheckbox {
			if val {
				return []string{"true"}
			}
			return []string{}
		}
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// Decode reads submitted form values. Values that cannot be parsed for the
// field's type are reported as field errors.
func (f *Form) Decode(raw url.Values) (Values, FieldErrors) {
	out := make(Values, len(f.fields))
	errs := FieldErrors{}
	for _, field := range f.fields {
		switch field.Kind {
		case KindCheckbox:
			out[field.ID] = nonEmpty(raw[field.ID])
		case KindDateRange:
			var ts []time.Time
			for _, key := range []string{field.ID + ".from", field.ID + ".to"} {
				s := strings.TrimSpace(raw.Get(key))
				if s == "" {
					continue
				}
				t, err := time.Parse(DateLayout, s)
				if err != nil {
					errs[field.ID] = "Invalid date"
					break
				}
				ts = append(ts, t)
			}
			out[field.ID] = ts
		default:
			s := strings.TrimSpace(raw.Get(field.ID))
			v, err := decodeScalar(field.Type, s)
			if err != nil {
				errs[field.ID] = err.Error()
			}
			out[field.ID] = v
		}
	}
	if len(errs) == 0 {
		return out, nil
	}
	return out, errs
}

func decodeScalar(typ ValueType, s string) (any, error) {
	if s == "" {
		return "", nil
	}
	switch typ {
	case TypeNumber:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return s, errors.New("Invalid number")
		}
		return n, nil
	case TypeDate:
		t, err := time.Parse(DateLayout, s)
		if err != nil {
			return s, errors.New("Invalid date")
		}
		return t, nil
	default:
		return s, nil
	}
}

// nonEmpty drops blank entries and returns nil when nothing is left, so a
// "required" rule fails on an empty selection.
func nonEmpty(ss []string) []string {
	var out []string
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks every field rule and returns nil when all pass.
func (f *Form) Validate(values Values) FieldErrors {
	errs := FieldErrors{}
	for _, field := range f.fields {
		v := values[field.ID]
		if msg := f.checkOptions(field, v); msg != "" {
			errs[field.ID] = msg
			continue
		}
		if field.Rule == "" {
			continue
		}
		if err := f.validate.Var(v, field.Rule); err != nil {
			errs[field.ID] = message(field, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// checkOptions rejects choices that are not among the field's options.
func (f *Form) checkOptions(field Field, v any) string {
	if len(field.Options) == 0 {
		return ""
	}
	switch field.Kind {
	case KindSelect, KindRadio, KindCombobox:
		if s, ok := v.(string); ok && s != "" && !field.HasOption(s) {
			return "Select one of the listed options"
		}
	case KindCheckbox:
		if ss, ok := v.([]string); ok {
			for _, s := range ss {
				if !field.HasOption(s) {
					return "Select one of the listed options"
				}
			}
		}
	}
	return ""
}

// Submit decodes and validates raw, then calls handler exactly once with
// the values. When any field fails the handler is not called and the
// returned error is the FieldErrors.
func (f *Form) Submit(ctx context.Context, raw url.Values, handler func(ctx context.Context, values Values) error) (Values, error) {
	values, errs := f.Decode(raw)
	if errs != nil {
		return values, errs
	}
	if errs := f.Validate(values); errs != nil {
		return values, errs
	}
	if err := handler(ctx, values); err != nil {
		return values, fmt.Errorf("submit form: %w", err)
	}
	return values, nil
}
