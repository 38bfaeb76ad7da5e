package observability

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu            sync.Mutex
	startedAt     time.Time
	requestCount  map[string]int64
	errorCount    map[string]int64
	totalDuration map[string]time.Duration
}

// RouteStat summarizes the requests seen for one method, route and status.
type RouteStat struct {
	Method    string  `json:"method"`
	Path      string  `json:"path"`
	Status    int     `json:"status"`
	Count     int64   `json:"count"`
	AvgMillis float64 `json:"avgMillis"`
}

// ErrorStat counts errors by route and error code.
type ErrorStat struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Code   string `json:"code"`
	Count  int64  `json:"count"`
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	UptimeSeconds int64       `json:"uptimeSeconds"`
	TotalRequests int64       `json:"totalRequests"`
	TotalErrors   int64       `json:"totalErrors"`
	Requests      []RouteStat `json:"requests"`
	Errors        []ErrorStat `json:"errors"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		startedAt:     time.Now(),
		requestCount:  make(map[string]int64),
		errorCount:    make(map[string]int64),
		totalDuration: make(map[string]time.Duration),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, strconv.Itoa(status))
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.totalDuration[key] += duration
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := pathKey(path, method, code)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// Snapshot copies the current counters, sorted by method then path.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{Requests: []RouteStat{}, Errors: []ErrorStat{}}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		UptimeSeconds: int64(time.Since(m.startedAt).Seconds()),
		Requests:      make([]RouteStat, 0, len(m.requestCount)),
		Errors:        make([]ErrorStat, 0, len(m.errorCount)),
	}
	for key, count := range m.requestCount {
		path, method, last := splitKey(key)
		status, _ := strconv.Atoi(last)
		avg := float64(m.totalDuration[key].Microseconds()) / 1000 / float64(count)
		snap.Requests = append(snap.Requests, RouteStat{Method: method, Path: path, Status: status, Count: count, AvgMillis: avg})
		snap.TotalRequests += count
	}
	for key, count := range m.errorCount {
		path, method, code := splitKey(key)
		snap.Errors = append(snap.Errors, ErrorStat{Method: method, Path: path, Code: code, Count: count})
		snap.TotalErrors += count
	}

	sort.Slice(snap.Requests, func(i, j int) bool {
		a, b := snap.Requests[i], snap.Requests[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Method != b.Method {
			return a.Method < b.Method
		}
		return a.Status < b.Status
	})
	sort.Slice(snap.Errors, func(i, j int) bool {
		a, b := snap.Errors[i], snap.Errors[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Method != b.Method {
			return a.Method < b.Method
		}
		return a.Code < b.Code
	})
	return snap
}

func pathKey(path, method, suffix string) string {
	return path + "|" + method + "|" + suffix
}

func splitKey(key string) (path, method, suffix string) {
	parts := strings.SplitN(key, "|", 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	return parts[0], parts[1], parts[2]
}
