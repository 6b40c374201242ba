package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/alphabank/alphabank-api/internal/metrics"
)

// MetricsHandler renders the in-process counters for Prometheus scraping.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

type sample struct {
	labels string
	value  string
}

type family struct {
	name    string
	kind    string
	help    string
	samples []sample
}

func counter(v uint64) string { return fmt.Sprintf("%d", v) }

// Metrics writes the text exposition format.
// GET /metrics
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		writeError(w, http.StatusServiceUnavailable, "METRICS_UNAVAILABLE", "Metrics are not enabled")
		return
	}
	s := h.snapshotter.Snapshot()

	families := []family{
		{"alphabank_users_registered_total", "counter", "Accounts created.", []sample{
			{"", counter(s.UsersRegistered)},
		}},
		{"alphabank_logins_total", "counter", "Login attempts by outcome.", []sample{
			{`result="success"`, counter(s.LoginsSucceeded)},
			{`result="failed"`, counter(s.LoginsFailed)},
			{`result="locked"`, counter(s.LoginsLocked)},
		}},
		{"alphabank_transactions_total", "counter", "Transaction writes by operation.", []sample{
			{`op="create"`, counter(s.TransactionsCreated)},
			{`op="delete"`, counter(s.TransactionsDeleted)},
		}},
		{"alphabank_recurring_generated_total", "counter", "Recurring rules materialized by outcome.", []sample{
			{`status="success"`, counter(s.RecurringGenerated)},
			{`status="failed"`, counter(s.RecurringFailed)},
		}},
		{"alphabank_recurring_generate_duration_seconds", "summary", "Time spent generating pending recurring transactions.", []sample{
			{"_count", counter(s.GenerateDurationCount)},
			{"_sum", fmt.Sprintf("%.6f", float64(s.GenerateDurationTotalNs)/1e9)},
		}},
		{"alphabank_rate_limited_total", "counter", "Requests rejected by the rate limiter.", []sample{
			{"", counter(s.RateLimited)},
		}},
	}

	var b strings.Builder
	for _, f := range families {
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s %s\n", f.name, f.help, f.name, f.kind)
		for _, smp := range f.samples {
			switch {
			case smp.labels == "":
				fmt.Fprintf(&b, "%s %s\n", f.name, smp.value)
			case strings.HasPrefix(smp.labels, "_"):
				fmt.Fprintf(&b, "%s%s %s\n", f.name, smp.labels, smp.value)
			default:
				fmt.Fprintf(&b, "%s{%s} %s\n", f.name, smp.labels, smp.value)
			}
		}
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}
