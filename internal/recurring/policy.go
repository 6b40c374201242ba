// Package recurring decides when recurring rules are due and materializes
// the transactions they produce.
package recurring

import (
	"time"

	"github.com/alphabank/alphabank-api/internal/model"
)

const day = 24 * time.Hour

// periodDays maps each frequency to the whole days that must elapse
// between generations. Months and years are fixed-length approximations.
var periodDays = map[model.Frequency]int64{
	model.FrequencyDaily:   1,
	model.FrequencyWeekly:  7,
	model.FrequencyMonthly: 30,
	model.FrequencyYearly:  365,
}

// Due is the outcome of evaluating a rule that should generate now.
type Due struct {
	// Transaction is the instance to persist. Its ID is left empty.
	Transaction model.Transaction
	// Watermark is the new value for the rule's LastGenerated.
	Watermark time.Time
}

// ElapsedDays returns the whole days between last and now, truncated.
func ElapsedDays(last, now time.Time) int64 {
	return int64(now.Sub(last) / day)
}

// IsDue reports whether rule should generate a transaction at now.
// A rule that never generated is always due, whatever its frequency.
// Otherwise an unknown frequency is never due.
func IsDue(rule *model.RecurringRule, now time.Time) bool {
	if !rule.Active {
		return false
	}
	if rule.LastGenerated == nil {
		return true
	}
	period, ok := periodDays[rule.Frequency]
	if !ok {
		return false
	}
	return ElapsedDays(*rule.LastGenerated, now) >= period
}

// Evaluate is the pure decision step of generation. When the rule is due
// it returns the transaction to create and the watermark to record.
func Evaluate(rule *model.RecurringRule, now time.Time) (Due, bool) {
	if !IsDue(rule, now) {
		return Due{}, false
	}

	ruleID := rule.ID
	var categoryID *string
	if rule.CategoryID != nil {
		c := *rule.CategoryID
		categoryID = &c
	}

	return Due{
		Transaction: model.Transaction{
			UserID:      rule.UserID,
			Description: rule.Description,
			Amount:      rule.Amount,
			Kind:        rule.Kind,
			CategoryID:  categoryID,
			Date:        now,
			Recurring:   true,
			RecurringID: &ruleID,
			CreatedAt:   now,
		},
		Watermark: now,
	}, true
}
