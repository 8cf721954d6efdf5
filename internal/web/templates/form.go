package templates

import "github.com/JonMunkholm/datagrid/internal/form"

// FormProps holds an add or edit form.
type FormProps struct {
	TableID     string
	Title       string
	Description string
	Action      string // URL the form posts to
	Fields      []form.Field
	Values      form.Values
	Errors      form.FieldErrors
}

func fieldID(id string) string { return "field-" + domID(id) }

func inputType(t form.ValueType) string {
	switch t {
	case form.TypeNumber:
		return "number"
	case form.TypeDate:
		return "date"
	default:
		return "text"
	}
}

func placeholder(f form.Field, fallback string) string {
	if f.Placeholder != "" {
		return f.Placeholder
	}
	return fallback
}
