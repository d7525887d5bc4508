package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRecordValidate(t *testing.T) {
	good := Record{Date: NewDate(2023, 1, 15), Category: "Food", Amount: decimal.RequireFromString("45.99")}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bad := Record{Category: "  "}
	if err := bad.Validate(); !errors.Is(err, ErrEmptyCategory) {
		t.Fatalf("expected ErrEmptyCategory, got %v", err)
	}
}

func TestRecordMonthKey(t *testing.T) {
	r := Record{Date: NewDate(2023, 2, 5), Category: "Rent"}
	if k, ok := r.MonthKey(); !ok || k != "2023-02" {
		t.Fatalf("expected 2023-02, got %q (ok=%v)", k, ok)
	}
	if _, ok := (Record{Category: "Rent"}).MonthKey(); ok {
		t.Fatalf("undated record must not have a month key")
	}
	if !r.HasDate() || (Record{Category: "Rent"}).HasDate() {
		t.Fatalf("HasDate mismatch")
	}
}

func TestRecordMarshalJSON(t *testing.T) {
	r := Record{Date: NewDate(2023, 1, 15), Category: "Food", Amount: decimal.RequireFromString("45.99")}
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"Date":"2023-01-15","Category":"Food","Amount":45.99}`
	if string(b) != want {
		t.Fatalf("expected %s, got %s", want, b)
	}

	b, _ = json.Marshal(Record{Category: "Misc", Amount: decimal.NewFromInt(3)})
	if string(b) != `{"Date":null,"Category":"Misc","Amount":3}` {
		t.Fatalf("unexpected undated encoding %s", b)
	}
}
