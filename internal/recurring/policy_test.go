package recurring

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphabank/alphabank-api/internal/model"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func ago(d time.Duration) *time.Time {
	t := now.Add(-d)
	return &t
}

func newRule(freq model.Frequency, last *time.Time) *model.RecurringRule {
	cat := "cat-1"
	return &model.RecurringRule{
		ID:            "rule-1",
		UserID:        "user-1",
		Description:   "Rent",
		Amount:        decimal.RequireFromString("1500.00"),
		Kind:          model.KindExpense,
		CategoryID:    &cat,
		Frequency:     freq,
		Active:        true,
		LastGenerated: last,
	}
}

func TestIsDue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		freq model.Frequency
		last *time.Time
		want bool
	}{
		{"never generated", model.FrequencyYearly, nil, true},
		{"daily after 12h", model.FrequencyDaily, ago(12 * time.Hour), false},
		{"daily after 25h", model.FrequencyDaily, ago(25 * time.Hour), true},
		{"daily exactly one day", model.FrequencyDaily, ago(24 * time.Hour), true},
		{"daily one second short", model.FrequencyDaily, ago(24*time.Hour - time.Second), false},
		{"weekly after 6 days 23h", model.FrequencyWeekly, ago(6*day + 23*time.Hour), false},
		{"weekly after 7 days", model.FrequencyWeekly, ago(7 * day), true},
		{"monthly after 29 days", model.FrequencyMonthly, ago(29 * day), false},
		{"monthly after 30 days", model.FrequencyMonthly, ago(30 * day), true},
		{"yearly after 364 days", model.FrequencyYearly, ago(364 * day), false},
		{"yearly after 365 days", model.FrequencyYearly, ago(365 * day), true},
		{"unknown frequency", "biweekly", ago(400 * day), false},
		{"unknown frequency never generated", "biweekly", nil, true},
		{"watermark in the future", model.FrequencyDaily, ago(-48 * time.Hour), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsDue(newRule(tt.freq, tt.last), now))
		})
	}
}

func TestIsDue_InactiveRule(t *testing.T) {
	t.Parallel()

	rule := newRule(model.FrequencyDaily, nil)
	rule.Active = false
	assert.False(t, IsDue(rule, now))
}

func TestElapsedDays_Truncates(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(0), ElapsedDays(now.Add(-23*time.Hour), now))
	assert.Equal(t, int64(1), ElapsedDays(now.Add(-47*time.Hour), now))
	assert.Equal(t, int64(2), ElapsedDays(now.Add(-48*time.Hour), now))
}

func TestEvaluate_BuildsTransaction(t *testing.T) {
	t.Parallel()

	rule := newRule(model.FrequencyMonthly, ago(31*day))

	due, ok := Evaluate(rule, now)
	require.True(t, ok)

	tx := due.Transaction
	assert.Empty(t, tx.ID)
	assert.Equal(t, "user-1", tx.UserID)
	assert.Equal(t, "Rent", tx.Description)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("1500")))
	assert.Equal(t, model.KindExpense, tx.Kind)
	require.NotNil(t, tx.CategoryID)
	assert.Equal(t, "cat-1", *tx.CategoryID)
	assert.Equal(t, now, tx.Date)
	assert.True(t, tx.Recurring)
	require.NotNil(t, tx.RecurringID)
	assert.Equal(t, "rule-1", *tx.RecurringID)
	assert.Equal(t, now, due.Watermark)
}

func TestEvaluate_DoesNotAliasRuleCategory(t *testing.T) {
	t.Parallel()

	rule := newRule(model.FrequencyDaily, nil)
	due, ok := Evaluate(rule, now)
	require.True(t, ok)

	*rule.CategoryID = "changed"
	assert.Equal(t, "cat-1", *due.Transaction.CategoryID)
}

func TestEvaluate_Deterministic(t *testing.T) {
	t.Parallel()

	rule := newRule(model.FrequencyWeekly, ago(8*day))
	a, okA := Evaluate(rule, now)
	b, okB := Evaluate(rule, now)
	assert.Equal(t, okA, okB)
	assert.Equal(t, a, b)
}

func TestEvaluate_NotDue(t *testing.T) {
	t.Parallel()

	due, ok := Evaluate(newRule(model.FrequencyDaily, ago(time.Hour)), now)
	assert.False(t, ok)
	assert.Equal(t, Due{}, due)
}

func TestEvaluate_NeverGeneratedUnknownFrequency(t *testing.T) {
	t.Parallel()

	due, ok := Evaluate(newRule("biweekly", nil), now)
	require.True(t, ok)
	assert.Equal(t, now, due.Watermark)

	_, ok = Evaluate(newRule("biweekly", ago(2*day)), now)
	assert.False(t, ok)
}
