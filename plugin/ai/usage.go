package ai

import (
	"sync"
	"time"
)

// Token cost estimation. Prices follow the gpt-4o-mini tier; they only need
// to be in the right ballpark for the usage report.
const (
	inputCostPerToken  = 0.15 / 1000000.0
	outputCostPerToken = 0.60 / 1000000.0

	// Rough chars-per-token across mixed prose and code.
	charsPerToken = 3.0
)

// EstimateTokens approximates the token count of a text.
func EstimateTokens(textLength int) int {
	return int(float64(textLength) / charsPerToken)
}

// EstimateCost estimates the dollar cost of one completion.
func EstimateCost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*inputCostPerToken + float64(outputTokens)*outputCostPerToken
}

// UsageRecord is one completed LLM request.
type UsageRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	Model        string    `json:"model"`
	InputTokens  int       `json:"inputTokens"`
	OutputTokens int       `json:"outputTokens"`
	Cost         float64   `json:"cost"`
	LatencyMs    int64     `json:"latencyMs"`
	Failed       bool      `json:"failed"`
}

// UsageReport aggregates recorded requests.
type UsageReport struct {
	RequestCount  int64   `json:"requestCount"`
	FailureCount  int64   `json:"failureCount"`
	InputTokens   int64   `json:"inputTokens"`
	OutputTokens  int64   `json:"outputTokens"`
	TotalCost     float64 `json:"totalCost"`
	AvgLatencyMs  float64 `json:"avgLatencyMs"`
}

// UsageTracker accumulates LLM usage in memory. The numbers reset on
// restart; they exist for operator visibility, not billing.
type UsageTracker struct {
	mu      sync.Mutex
	report  UsageReport
	latency int64
}

// NewUsageTracker creates an empty tracker.
func NewUsageTracker() *UsageTracker {
	return &UsageTracker{}
}

// Record adds one request to the running totals.
func (t *UsageTracker) Record(record *UsageRecord) {
	if record == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.report.RequestCount++
	if record.Failed {
		t.report.FailureCount++
		return
	}
	t.report.InputTokens += int64(record.InputTokens)
	t.report.OutputTokens += int64(record.OutputTokens)
	t.report.TotalCost += record.Cost
	t.latency += record.LatencyMs
}

// Report returns a snapshot of the totals.
func (t *UsageTracker) Report() *UsageReport {
	t.mu.Lock()
	defer t.mu.Unlock()

	report := t.report
	succeeded := report.RequestCount - report.FailureCount
	if succeeded > 0 {
		report.AvgLatencyMs = float64(t.latency) / float64(succeeded)
	}
	return &report
}
