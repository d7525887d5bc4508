package core

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"45.99", "45.99", true},
		{"45,99", "45.99", true},
		{" 2.50 ", "2.5", true},
		{"-12.30", "-12.3", true},
		{"0", "0", true},
		{"+5", "5", true},
		{"+-5", "", false},
		{"0.1", "0.1", true},
		{"", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"1,234.56", "", false},
		{"1,2,3", "", false},
		{"$45", "", false},
		{"NaN", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
		}
	}
}

func TestParseAmountIsExact(t *testing.T) {
	a, _ := ParseAmount("0.1")
	b, _ := ParseAmount("0.2")
	want, _ := ParseAmount("0.3")
	if !a.Add(b).Equal(want) {
		t.Fatalf("0.1 + 0.2 = %s, want 0.3", a.Add(b))
	}
}
