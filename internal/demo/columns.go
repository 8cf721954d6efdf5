package demo

import (
	"time"

	"github.com/JonMunkholm/datagrid/internal/core"
	"github.com/JonMunkholm/datagrid/internal/form"
)

// displayDate is the cell format of the last update column.
const displayDate = "1/2/2006"

// Columns returns the people columns, covering every filter variant. Ids,
// headers and accessors come from the json tags of Person.
func Columns() []core.Column[Person] {
	cols := core.ColumnsFor[Person]("json")
	for i := range cols {
		c := &cols[i]
		switch c.ID {
		case "lastName":
			c.FilterFn = core.FuzzyFilter
		case "gender":
			c.Size, c.Filter = 110, core.FilterSelect
		case "address":
			c.Size, c.DisableSorting = 320, true
		case "locality":
			c.Filter = core.FilterSelect
		case "age":
			c.Size, c.Filter = 90, core.FilterRange
		case "visits":
			c.Size, c.Filter = 100, core.FilterRange
		case "lastUpdate":
			c.Cell = func(p Person) string { return p.LastUpdate.Format(displayDate) }
			c.Filter = core.FilterDate
		case "status":
			c.Size, c.Filter = 130, core.FilterSelect
		}
	}
	return cols
}

func options(values ...string) []form.Option {
	out := make([]form.Option, len(values))
	for i, v := range values {
		out[i] = form.Option{Value: v, Label: v}
	}
	return out
}

// Schemas returns the add and edit form fields. Field ids match column ids
// so edit forms are prefilled from the row.
func Schemas() []form.Field {
	return []form.Field{
		{
			ID:          "firstName",
			Kind:        form.KindInput,
			Label:       "First Name",
			Placeholder: "Tanner",
			Rule:        "required,min=2,max=50",
		},
		{
			ID:          "lastName",
			Kind:        form.KindInput,
			Label:       "Last Name",
			Placeholder: "Linsley",
			Rule:        "required,min=2,max=50",
		},
		{
			ID:      "gender",
			Kind:    form.KindRadio,
			Label:   "Gender",
			Options: options(genders...),
			Rule:    "required",
		},
		{
			ID:          "jobType",
			Kind:        form.KindCombobox,
			Label:       "Job Type",
			Description: "Pick the closest match.",
			Options:     options(jobTypes...),
			Rule:        "required",
		},
		{
			ID:    "address",
			Kind:  form.KindInput,
			Label: "Address",
			Rule:  "max=200",
		},
		{
			ID:      "locality",
			Kind:    form.KindSelect,
			Label:   "Locality",
			Options: options(localities...),
			Rule:    "required",
		},
		{
			ID:    "age",
			Kind:  form.KindInput,
			Type:  form.TypeNumber,
			Label: "Age",
			Rule:  "gte=0,lte=120",
		},
		{
			ID:    "visits",
			Kind:  form.KindInput,
			Type:  form.TypeNumber,
			Label: "Visits",
			Rule:  "gte=0",
		},
		{
			ID:    "lastUpdate",
			Kind:  form.KindInput,
			Type:  form.TypeDate,
			Label: "Last Update",
			Rule:  "required",
		},
		{
			ID:      "status",
			Kind:    form.KindSelect,
			Label:   "Status",
			Options: options(statuses...),
			Rule:    "required",
		},
	}
}

// applyValues copies validated form values onto p.
func applyValues(p Person, v form.Values) Person {
	p.FirstName = v.String("firstName")
	p.LastName = v.String("lastName")
	p.Gender = v.String("gender")
	p.JobType = v.String("jobType")
	p.Address = v.String("address")
	p.Locality = v.String("locality")
	p.Status = v.String("status")
	if n, ok := v["age"].(float64); ok {
		p.Age = int(n)
	}
	if n, ok := v["visits"].(float64); ok {
		p.Visits = int(n)
	}
	if t, ok := v["lastUpdate"].(time.Time); ok {
		p.LastUpdate = t
	}
	return p
}
