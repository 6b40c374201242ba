package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered         uint64
	LoginsSucceeded         uint64
	LoginsFailed            uint64
	LoginsLocked            uint64
	TransactionsCreated     uint64
	TransactionsDeleted     uint64
	RecurringGenerated      uint64
	RecurringFailed         uint64
	GenerateDurationCount   uint64
	GenerateDurationTotalNs int64
	RateLimited             uint64
}

// InMemoryRecorder stores metrics in process memory. It backs the
// /metrics endpoint and is used directly in tests.
type InMemoryRecorder struct {
	usersRegistered         atomic.Uint64
	loginsSucceeded         atomic.Uint64
	loginsFailed            atomic.Uint64
	loginsLocked            atomic.Uint64
	transactionsCreated     atomic.Uint64
	transactionsDeleted     atomic.Uint64
	recurringGenerated      atomic.Uint64
	recurringFailed         atomic.Uint64
	generateDurationCount   atomic.Uint64
	generateDurationTotalNs atomic.Int64
	rateLimited             atomic.Uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersRegistered:         m.usersRegistered.Load(),
		LoginsSucceeded:         m.loginsSucceeded.Load(),
		LoginsFailed:            m.loginsFailed.Load(),
		LoginsLocked:            m.loginsLocked.Load(),
		TransactionsCreated:     m.transactionsCreated.Load(),
		TransactionsDeleted:     m.transactionsDeleted.Load(),
		RecurringGenerated:      m.recurringGenerated.Load(),
		RecurringFailed:         m.recurringFailed.Load(),
		GenerateDurationCount:   m.generateDurationCount.Load(),
		GenerateDurationTotalNs: m.generateDurationTotalNs.Load(),
		RateLimited:             m.rateLimited.Load(),
	}
}

func (m *InMemoryRecorder) IncUserRegistered() { m.usersRegistered.Add(1) }
func (m *InMemoryRecorder) IncLoginSucceeded() { m.loginsSucceeded.Add(1) }
func (m *InMemoryRecorder) IncLoginFailed() { m.loginsFailed.Add(1) }
func (m *InMemoryRecorder) IncLoginLocked() { m.loginsLocked.Add(1) }
func (m *InMemoryRecorder) IncTransactionCreated() { m.transactionsCreated.Add(1) }
func (m *InMemoryRecorder) IncTransactionDeleted() { m.transactionsDeleted.Add(1) }
func (m *InMemoryRecorder) IncRecurringGenerated() { m.recurringGenerated.Add(1) }
func (m *InMemoryRecorder) IncRecurringFailed() { m.recurringFailed.Add(1) }
func (m *InMemoryRecorder) IncRateLimited() { m.rateLimited.Add(1) }

// ObserveGenerateDuration records how long a generation batch took.
func (m *InMemoryRecorder) ObserveGenerateDuration(duration time.Duration) {
	m.generateDurationCount.Add(1)
	m.generateDurationTotalNs.Add(duration.Nanoseconds())
}
