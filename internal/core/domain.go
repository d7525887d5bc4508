package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// Record is one financial transaction. A nil Date marks an undated record.
	Record struct {
		Date     *time.Time
		Category string
		Amount   decimal.Decimal
	}

	// Dataset is the complete record set of one upload.
	Dataset struct {
		ID         string
		Name       string
		UploadedAt time.Time
		Records    []Record
	}
)

var (
	ErrEmptyCategory = errors.New("empty category")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
)

// MonthKeyLayout formats a date into its calendar-month bucket key.
const MonthKeyLayout = "2006-01"

// DateLayout is the canonical ISO date layout.
const DateLayout = "2006-01-02"

func (r Record) Validate() error {
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// HasDate reports whether the record carries a date.
func (r Record) HasDate() bool {
	return r.Date != nil
}

// MonthKey returns the YYYY-MM bucket of a dated record and false for undated ones.
func (r Record) MonthKey() (string, bool) {
	if r.Date == nil {
		return "", false
	}
	return r.Date.Format(MonthKeyLayout), true
}

// MarshalJSON renders the record the way the data endpoint exposes it.
func (r Record) MarshalJSON() ([]byte, error) {
	var date *string
	if r.Date != nil {
		s := r.Date.Format(DateLayout)
		date = &s
	}
	return json.Marshal(struct {
		Date     *string     `json:"Date"`
		Category string      `json:"Category"`
		Amount   json.Number `json:"Amount"`
	}{
		Date:     date,
		Category: r.Category,
		Amount:   json.Number(r.Amount.String()),
	})
}

// Len returns the number of records in the dataset.
func (d Dataset) Len() int {
	return len(d.Records)
}

// NewDate returns a pointer to midnight UTC of the given day.
func NewDate(year, month, day int) *time.Time {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &t
}
