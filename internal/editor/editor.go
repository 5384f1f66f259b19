// Package editor holds the client-side state of one scenario edit session.
// All mutations are local; nothing is persisted until the caller submits
// SavePayload to the store. Derived prices are recomputed from the current
// state on every call and never stored.
package editor

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/scenarios/internal/pricing"
	"github.com/Simplici0/scenarios/internal/store"
)

const newProductName = "Novo Produto"

// Product is one editable line of the session. Unsaved lines carry
// negative session-local ids so rows stay addressable in a UI before the
// store has assigned real identifiers.
type Product struct {
	ID        int64
	Name      string
	BaseValue float64
}

// Session is the full scenario+products object held for one edit session.
type Session struct {
	ScenarioID int64
	Name       string
	Margin     float64
	DollarRate float64
	Products   []Product

	nextTempID int64
}

// ComputedLine pairs a product with its derived prices.
type ComputedLine struct {
	Product
	pricing.Line
}

// NewSession snapshots a fetched scenario into editable state.
func NewSession(sc *store.Scenario) *Session {
	products := make([]Product, len(sc.Products))
	for i, p := range sc.Products {
		products[i] = Product{ID: p.ID, Name: p.Name, BaseValue: p.BaseValue}
	}

	return &Session{
		ScenarioID: sc.ID,
		Name:       sc.Name,
		Margin:     sc.Margin,
		DollarRate: sc.DollarRate,
		Products:   products,
	}
}

// SetName updates the scenario name.
func (s *Session) SetName(name string) { s.Name = name }

// SetMargin updates the scenario-wide margin fraction.
func (s *Session) SetMargin(margin float64) { s.Margin = margin }

// SetDollarRate updates the USD exchange rate.
func (s *Session) SetDollarRate(rate float64) { s.DollarRate = rate }

// SetProductName renames the product at index i.
func (s *Session) SetProductName(i int, name string) {
	if i < 0 || i >= len(s.Products) {
		return
	}
	s.Products[i].Name = name
}

// SetProductBaseValue updates the base value of the product at index i.
func (s *Session) SetProductBaseValue(i int, value float64) {
	if i < 0 || i >= len(s.Products) {
		return
	}
	s.Products[i].BaseValue = value
}

// AddProduct appends a blank line with a session-local id and returns it.
func (s *Session) AddProduct() Product {
	s.nextTempID--
	p := Product{ID: s.nextTempID, Name: newProductName, BaseValue: 0}
	s.Products = append(s.Products, p)
	return p
}

// RemoveProduct drops the product at index i.
func (s *Session) RemoveProduct(i int) {
	if i < 0 || i >= len(s.Products) {
		return
	}
	s.Products = append(s.Products[:i], s.Products[i+1:]...)
}

// Computed derives prices and totals from the current state. Calling it
// twice without a mutation in between yields identical results.
func (s *Session) Computed() ([]ComputedLine, pricing.Totals) {
	computed := make([]ComputedLine, len(s.Products))
	lines := make([]pricing.Line, len(s.Products))
	for i, p := range s.Products {
		line := pricing.Price(p.BaseValue, s.Margin, s.DollarRate)
		computed[i] = ComputedLine{Product: p, Line: line}
		lines[i] = line
	}
	return computed, pricing.Total(lines)
}

// SavePayload returns the full current product list with identifiers
// stripped, ready for the store's replace operation. The store reassigns
// every id; session-local ids never leave the client.
func (s *Session) SavePayload() []store.ProductInput {
	inputs := make([]store.ProductInput, len(s.Products))
	for i, p := range s.Products {
		inputs[i] = store.ProductInput{Name: p.Name, BaseValue: p.BaseValue}
	}
	return inputs
}

// Export is the JSON shape of a scenario exported from the editor, with
// derived values rounded to two decimals for presentation. Stored values
// are never rounded.
type Export struct {
	Name       string       `json:"name"`
	Margin     float64      `json:"margin"`
	DollarRate float64      `json:"dollar_rate"`
	Products   []ExportLine `json:"products"`
	TotalUSD   float64      `json:"total_usd"`
	TotalBRL   float64      `json:"total_brl"`
}

// ExportLine is one product row of an Export.
type ExportLine struct {
	Name          string  `json:"name"`
	BaseValue     float64 `json:"base_value"`
	EffectiveCost float64 `json:"effective_cost"`
	PriceUSD      float64 `json:"price_usd"`
	PriceBRL      float64 `json:"price_brl"`
}

// Export derives the exportable view of the current state.
func (s *Session) Export() Export {
	computed, totals := s.Computed()

	lines := make([]ExportLine, len(computed))
	for i, c := range computed {
		lines[i] = ExportLine{
			Name:          c.Name,
			BaseValue:     c.BaseValue,
			EffectiveCost: round2(c.EffectiveCost),
			PriceUSD:      round2(c.PriceUSD),
			PriceBRL:      round2(c.PriceBRL),
		}
	}

	return Export{
		Name:       s.Name,
		Margin:     s.Margin,
		DollarRate: s.DollarRate,
		Products:   lines,
		TotalUSD:   round2(totals.USD),
		TotalBRL:   round2(totals.BRL),
	}
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
