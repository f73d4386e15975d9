package observability

import (
	"strconv"
	"sync"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu         sync.Mutex
	toolCalls  map[string]int64
	toolErrors map[string]int64
	upstream   map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		toolCalls:  make(map[string]int64),
		toolErrors: make(map[string]int64),
		upstream:   make(map[string]int64),
	}
}

// RecordToolCall increments the invocation counter for a tool.
func (m *Metrics) RecordToolCall(tool string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toolCalls[tool]++
}

// RecordToolError increments error counters keyed by tool and error code.
func (m *Metrics) RecordToolError(tool, code string) {
	if m == nil {
		return
	}
	key := tool + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toolErrors[key]++
}

// RecordUpstreamCall counts provider requests keyed by endpoint and status.
func (m *Metrics) RecordUpstreamCall(endpoint string, status int) {
	if m == nil {
		return
	}
	key := endpointKey(endpoint, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upstream[key]++
}

// Snapshot returns a copy of every counter map.
func (m *Metrics) Snapshot() map[string]map[string]int64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return map[string]map[string]int64{
		"tool_calls":  copyCounters(m.toolCalls),
		"tool_errors": copyCounters(m.toolErrors),
		"upstream":    copyCounters(m.upstream),
	}
}

func copyCounters(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func endpointKey(endpoint string, status int) string {
	return endpoint + "|" + strconv.Itoa(status)
}
