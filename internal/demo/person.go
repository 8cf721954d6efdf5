// Package demo registers sample tables of generated people.
//
// The same rows back a paginated table, a virtualized table and a table
// paged through a slow fetch function with a page cache. When a database
// pool is supplied the rows are also seeded into Postgres and served from
// there.
package demo

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// Person is one demo row.
type Person struct {
	ID         string    `json:"-" msgpack:"id" db:"id"`
	FirstName  string    `json:"firstName" msgpack:"first_name" db:"first_name"`
	LastName   string    `json:"lastName" msgpack:"last_name" db:"last_name"`
	Gender     string    `json:"gender" msgpack:"gender" db:"gender"`
	JobType    string    `json:"jobType" msgpack:"job_type" db:"job_type"`
	Address    string    `json:"address" msgpack:"address" db:"address"`
	Locality   string    `json:"locality" msgpack:"locality" db:"locality"`
	Age        int       `json:"age" msgpack:"age" db:"age"`
	Visits     int       `json:"visits" msgpack:"visits" db:"visits"`
	LastUpdate time.Time `json:"lastUpdate" msgpack:"last_update" db:"last_update"`
	Status     string    `json:"status" msgpack:"status" db:"status"`
}

// Relationship statuses.
const (
	StatusRelationship = "relationship"
	StatusComplicated  = "complicated"
	StatusSingle       = "single"
)

var (
	statuses   = []string{StatusRelationship, StatusComplicated, StatusSingle}
	genders    = []string{"male", "female"}
	firstNames = []string{
		"Tanner", "Kevin", "Joe", "Maria", "Anna", "Liam", "Olivia", "Noah", "Emma",
		"Mateo", "Sofía", "Lucas", "Amélie", "Hiroshi", "Aisha", "Søren", "Chloé",
		"Diego", "Ingrid", "Kwame", "Priya", "Zoë", "Mikhail", "Fatima", "Björn",
	}
	lastNames = []string{
		"Linsley", "Vandy", "Dirte", "Muñoz", "Karenina", "Smith", "García", "Müller",
		"Rossi", "Nakamura", "Okafor", "Larsen", "Dubois", "Novak", "Haddad",
		"Kowalski", "Nguyen", "O'Brien", "Silva", "Andersson", "Patel", "Cohen",
	}
	jobTypes = []string{
		"Engineer", "Designer", "Manager", "Consultant", "Analyst", "Technician",
		"Specialist", "Coordinator", "Director", "Administrator", "Producer",
		"Strategist", "Architect", "Developer", "Supervisor",
	}
	streets = []string{
		"Maple Avenue", "Oak Street", "Pine Road", "Cedar Lane", "Elm Drive",
		"Birch Court", "Willow Way", "Harbor View", "Mill Road", "Station Street",
	}
	cities = []string{
		"Springfield", "Riverton", "Fairview", "Lakeside", "Greenville",
		"Bristol", "Madison", "Clayton", "Ashland", "Milford",
	}
	localities = []string{
		"Denmark", "France", "Germany", "Japan", "Mexico", "Nigeria", "Norway",
		"Spain", "Sweden", "United States", "Brazil", "India", "Canada",
	}
)

// idNamespace scopes generated row ids so a seed always yields the same ids.
var idNamespace = uuid.MustParse("6f1d8a52-3c4b-4f0e-9a57-2b1e7c9d4a10")

// dataEpoch is the earliest generated last update date.
var dataEpoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// MakeData generates n people. The same seed always yields the same rows.
func MakeData(n int, seed uint64) []Person {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]Person, n)
	for i := range out {
		out[i] = newPerson(r, uuid.NewSHA1(idNamespace, fmt.Appendf(nil, "%d/%d", seed, i)).String())
	}
	return out
}

func newPerson(r *rand.Rand, id string) Person {
	return Person{
		ID:        id,
		FirstName: pick(r, firstNames),
		LastName:  pick(r, lastNames),
		Gender:    pick(r, genders),
		JobType:   pick(r, jobTypes),
		Address: fmt.Sprintf("%d %s, Apt. %d, %s",
			1+r.IntN(9999), pick(r, streets), 1+r.IntN(999), pick(r, cities)),
		Locality:   pick(r, localities),
		Age:        r.IntN(41),
		Visits:     r.IntN(1001),
		LastUpdate: dataEpoch.AddDate(0, 0, r.IntN(365)),
		Status:     pick(r, statuses),
	}
}

func pick(r *rand.Rand, from []string) string {
	return from[r.IntN(len(from))]
}

// NewID returns a fresh row id.
func NewID() string { return uuid.NewString() }
