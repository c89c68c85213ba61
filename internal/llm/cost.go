package llm

import (
	"sync"
)

// ModelRate is the approximate price per million tokens for one model.
type ModelRate struct {
	InputUSD  float64
	OutputUSD float64
}

var defaultRates = map[string]ModelRate{
	"gemini-2.0-flash": {InputUSD: 0.10, OutputUSD: 0.40},
	"gemini-1.5-flash": {InputUSD: 0.075, OutputUSD: 0.30},
	"gemini-1.5-pro":   {InputUSD: 1.25, OutputUSD: 5.00},
}

// CostEstimator accumulates an approximate running cost of model calls from
// token counts. Observability only; nothing reads it as a control input.
type CostEstimator struct {
	mu       sync.Mutex
	rates    map[string]ModelRate
	totalUSD float64
	observer func(model string, usd float64)
}

// NewCostEstimator builds an estimator over the default rate table. The
// optional observer is invoked per call (e.g. to feed a metrics counter).
func NewCostEstimator(observer func(model string, usd float64)) *CostEstimator {
	return &CostEstimator{rates: defaultRates, observer: observer}
}

// Record estimates and accumulates the cost of one call, returning it.
// Unknown models record zero cost.
func (ce *CostEstimator) Record(usage *Usage) float64 {
	if usage == nil {
		return 0
	}
	rate, ok := ce.rates[usage.Model]
	if !ok {
		return 0
	}
	usd := float64(usage.InputTokens)/1e6*rate.InputUSD + float64(usage.OutputTokens)/1e6*rate.OutputUSD

	ce.mu.Lock()
	ce.totalUSD += usd
	ce.mu.Unlock()

	if ce.observer != nil {
		ce.observer(usage.Model, usd)
	}
	return usd
}

// TotalUSD returns the accumulated estimate.
func (ce *CostEstimator) TotalUSD() float64 {
	ce.mu.Lock()
	defer ce.mu.Unlock()
	return ce.totalUSD
}
