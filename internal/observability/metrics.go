package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu                   sync.Mutex
	requestCount         map[string]int64
	errorCount           map[string]int64
	sessionsStarted      int64
	sessionsEnded        int64
	settlementsApplied   int64
	settlementsDuplicate int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
	}
}

// RecordRequest increments counters for HTTP requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordSessionStarted counts a coordinator reaching Connected.
func (m *Metrics) RecordSessionStarted() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionsStarted++
}

// RecordSessionEnded counts a coordinator reaching Ended.
func (m *Metrics) RecordSessionEnded() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionsEnded++
}

// RecordSettlement counts settlement outcomes; applied=false marks a
// deduplicated attempt.
func (m *Metrics) RecordSettlement(applied bool) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if applied {
		m.settlementsApplied++
	} else {
		m.settlementsDuplicate++
	}
}

// Snapshot returns current counter totals.
func (m *Metrics) Snapshot() map[string]int64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var requests, errs int64
	for _, v := range m.requestCount {
		requests += v
	}
	for _, v := range m.errorCount {
		errs += v
	}
	return map[string]int64{
		"http_requests":         requests,
		"http_errors":           errs,
		"sessions_started":      m.sessionsStarted,
		"sessions_ended":        m.sessionsEnded,
		"settlements_applied":   m.settlementsApplied,
		"settlements_duplicate": m.settlementsDuplicate,
	}
}
