package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestLineTotal(t *testing.T) {
	price := MustFromString("19.99")
	total := LineTotal(price, 2)
	if !total.Equal(MustFromString("39.98")) {
		t.Fatalf("expected 39.98, got %s", total)
	}
}

func TestRoundingHappensAfterSummation(t *testing.T) {
	// Rounding each 10.005 line first would give 20.00; summing first gives 20.01.
	line := MustFromString("10.005")
	total := Round2(Sum(LineTotal(line, 1), LineTotal(line, 1)))
	if !total.Equal(MustFromString("20.01")) {
		t.Fatalf("expected 20.01, got %s", total)
	}
}

func TestRound2HalfUp(t *testing.T) {
	cases := map[string]string{
		"1.005":  "1.01",
		"1.004":  "1.00",
		"0":      "0",
		"48.975": "48.98",
	}
	for input, want := range cases {
		got := Round2(MustFromString(input))
		if !got.Equal(MustFromString(want)) {
			t.Fatalf("round %s: expected %s, got %s", input, want, got)
		}
	}
}

func TestSumEmptyIsZero(t *testing.T) {
	if !Sum().Equal(decimal.Zero) {
		t.Fatalf("expected zero sum")
	}
}

func TestFromStringRejectsGarbage(t *testing.T) {
	if _, err := FromString("not-a-number"); err == nil {
		t.Fatal("expected parse error")
	}
}
