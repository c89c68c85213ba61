package llm

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCostEstimatorRecord(t *testing.T) {
	ce := NewCostEstimator(nil)

	// 1M input + 1M output tokens at the gemini-2.0-flash rates.
	usd := ce.Record(&Usage{Model: "gemini-2.0-flash", InputTokens: 1_000_000, OutputTokens: 1_000_000})
	assert.InDelta(t, 0.50, usd, 1e-9)
	assert.InDelta(t, 0.50, ce.TotalUSD(), 1e-9)

	usd = ce.Record(&Usage{Model: "gemini-2.0-flash", InputTokens: 500_000})
	assert.InDelta(t, 0.05, usd, 1e-9)
	assert.InDelta(t, 0.55, ce.TotalUSD(), 1e-9)
}

func TestCostEstimatorUnknownModelAndNilUsage(t *testing.T) {
	ce := NewCostEstimator(nil)

	assert.Zero(t, ce.Record(&Usage{Model: "mystery-model", InputTokens: 1_000_000}))
	assert.Zero(t, ce.Record(nil))
	assert.Zero(t, ce.TotalUSD())
}

func TestCostEstimatorObserver(t *testing.T) {
	var gotModel string
	var gotUSD float64
	ce := NewCostEstimator(func(model string, usd float64) {
		gotModel = model
		gotUSD = usd
	})

	ce.Record(&Usage{Model: "gemini-1.5-pro", InputTokens: 1_000_000})
	assert.Equal(t, "gemini-1.5-pro", gotModel)
	assert.InDelta(t, 1.25, gotUSD, 1e-9)
}

func TestCostEstimatorConcurrentRecords(t *testing.T) {
	ce := NewCostEstimator(nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ce.Record(&Usage{Model: "gemini-2.0-flash", InputTokens: 1_000_000})
		}()
	}
	wg.Wait()

	assert.InDelta(t, 5.0, ce.TotalUSD(), 1e-9)
}
