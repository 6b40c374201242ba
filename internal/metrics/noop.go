package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncUserRegistered() {}
func (n *NoopRecorder) IncLoginSucceeded() {}
func (n *NoopRecorder) IncLoginFailed() {}
func (n *NoopRecorder) IncLoginLocked() {}
func (n *NoopRecorder) IncTransactionCreated() {}
func (n *NoopRecorder) IncTransactionDeleted() {}
func (n *NoopRecorder) IncRecurringGenerated() {}
func (n *NoopRecorder) IncRecurringFailed() {}
func (n *NoopRecorder) ObserveGenerateDuration(duration time.Duration) {}
func (n *NoopRecorder) IncRateLimited() {}
