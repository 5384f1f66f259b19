// Package pricing derives sell prices for scenario products. All functions
// are pure: same inputs always produce the same outputs, and nothing here
// touches storage or accumulates state between calls.
package pricing

// TaxMultiplier grosses up a vendor base cost with the IOF transaction tax
// charged on international payments.
const TaxMultiplier = 1.035

// Line contains the derived prices for a single product.
type Line struct {
	EffectiveCost float64
	PriceUSD      float64
	PriceBRL      float64
}

// Totals contains scenario-wide sums across all product lines.
type Totals struct {
	USD float64
	BRL float64
}

// Price derives the sell prices for one product. A margin of 1 or more
// would divide by zero or flip the price negative, so PriceUSD is defined
// as zero in that case.
func Price(baseValue, margin, dollarRate float64) Line {
	effectiveCost := baseValue * TaxMultiplier

	priceUSD := 0.0
	if margin < 1 {
		priceUSD = effectiveCost / (1 - margin)
	}

	return Line{
		EffectiveCost: effectiveCost,
		PriceUSD:      priceUSD,
		PriceBRL:      priceUSD * dollarRate,
	}
}

// Total sums the derived prices across lines.
func Total(lines []Line) Totals {
	var totals Totals
	for _, line := range lines {
		totals.USD += line.PriceUSD
		totals.BRL += line.PriceBRL
	}
	return totals
}
