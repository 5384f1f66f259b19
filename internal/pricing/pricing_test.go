package pricing

import (
	"math"
	"testing"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func TestPrice_WorkedExample(t *testing.T) {
	line := Price(100, 0.15, 5.20)

	nearlyEqual(t, "effectiveCost", line.EffectiveCost, 103.5)
	nearlyEqual(t, "priceUSD", line.PriceUSD, 103.5/0.85)
	nearlyEqual(t, "priceBRL", line.PriceBRL, 103.5/0.85*5.20)
}

func TestPrice_ZeroMargin(t *testing.T) {
	line := Price(100, 0, 5.25)

	nearlyEqual(t, "effectiveCost", line.EffectiveCost, 103.5)
	nearlyEqual(t, "priceUSD", line.PriceUSD, 103.5)
	nearlyEqual(t, "priceBRL", line.PriceBRL, 103.5*5.25)
}

func TestPrice_DegenerateMargin(t *testing.T) {
	for _, margin := range []float64{1, 1.5, 20} {
		line := Price(100, margin, 5.25)
		if line.PriceUSD != 0 {
			t.Fatalf("margin %v: priceUSD = %v, want 0", margin, line.PriceUSD)
		}
		if line.PriceBRL != 0 {
			t.Fatalf("margin %v: priceBRL = %v, want 0", margin, line.PriceBRL)
		}
		nearlyEqual(t, "effectiveCost", line.EffectiveCost, 103.5)
	}
}

func TestPrice_NonNegativeAcrossMargins(t *testing.T) {
	for _, margin := range []float64{0, 0.1, 0.5, 0.99} {
		line := Price(250, margin, 5.25)
		if line.PriceUSD < 0 || line.PriceBRL < 0 {
			t.Fatalf("margin %v produced a negative price: %+v", margin, line)
		}
	}
}

func TestPrice_Idempotent(t *testing.T) {
	first := Price(1234.56, 0.37, 5.4321)
	second := Price(1234.56, 0.37, 5.4321)

	// Bit-identical, not merely close: repeated recomputation must not
	// accumulate floating error.
	if first != second {
		t.Fatalf("recompute produced different results: %+v vs %+v", first, second)
	}
}

func TestTotal_SumsAcrossLines(t *testing.T) {
	lines := []Line{
		Price(100, 0.15, 5.20),
		Price(200, 0.15, 5.20),
		Price(0, 0.15, 5.20),
	}

	totals := Total(lines)

	nearlyEqual(t, "totalUSD", totals.USD, lines[0].PriceUSD+lines[1].PriceUSD)
	nearlyEqual(t, "totalBRL", totals.BRL, lines[0].PriceBRL+lines[1].PriceBRL)
}

func TestTotal_Empty(t *testing.T) {
	totals := Total(nil)
	if totals.USD != 0 || totals.BRL != 0 {
		t.Fatalf("expected zero totals for no lines, got %+v", totals)
	}
}
