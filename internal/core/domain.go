package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Cash       Category = "cash"
	Bank       Category = "bank"
	Investment Category = "investment"
	Property   Category = "property"
	Vehicle    Category = "vehicle"
	Jewelry    Category = "jewelry"
	Antique    Category = "antique"
	Other      Category = "other"
)

const dateLayout = "2006-01-02"

type (
	// Category classifies an asset. Values outside the known set are kept
	// as stored and shown as Other.
	Category string

	Date struct {
		time.Time
	}

	Asset struct {
		ID          string          `json:"id"`
		Name        string          `json:"name"`
		Type        Category        `json:"type"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
		Date        Date            `json:"date"`
		CreatedAt   time.Time       `json:"createdAt"`
		UpdatedAt   *time.Time      `json:"updatedAt,omitempty"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
)

func init() {
	// Stored amounts are plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

var categoryOrder = []Category{Cash, Bank, Investment, Property, Vehicle, Jewelry, Antique, Other}

var categoryLabels = map[Category]string{
	Cash:       "Cash",
	Bank:       "Bank deposits",
	Investment: "Investments",
	Property:   "Property",
	Vehicle:    "Vehicles",
	Jewelry:    "Jewelry",
	Antique:    "Antiques & collectibles",
	Other:      "Other",
}

var categoryColors = map[Category]string{
	Cash:       "#CAF4F7",
	Bank:       "#A8E6E8",
	Investment: "#7DD3DB",
	Property:   "#5BC0C7",
	Vehicle:    "#4A9BA3",
	Jewelry:    "#3A7B80",
	Antique:    "#2A5B5E",
	Other:      "#1A3B3D",
}

// Categories returns the closed category set in display order.
func Categories() []Category {
	return append([]Category(nil), categoryOrder...)
}

// ParseCategory normalizes user input. Unknown values are returned as-is
// with ok=false.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	return c, c.IsKnown()
}

func (c Category) IsKnown() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Bucket maps unknown categories onto Other.
func (c Category) Bucket() Category {
	if c.IsKnown() {
		return c
	}
	return Other
}

func (c Category) Label() string {
	return categoryLabels[c.Bucket()]
}

func (c Category) Color() string {
	return categoryColors[c.Bucket()]
}

func (c Category) String() string {
	return string(c)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		// Tolerate full timestamps written by older clients.
		t, terr := time.Parse(time.RFC3339, s)
		if terr != nil {
			return err
		}
		parsed = DateOf(t)
	}
	*d = parsed
	return nil
}

func (d Date) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// OnOrBefore reports whether d falls on or before other.
func (d Date) OnOrBefore(other Date) bool {
	return !d.After(other.Time)
}
