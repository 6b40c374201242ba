package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphabank/alphabank-api/internal/model"
)

type stubGenerator struct {
	userID string
	now    time.Time
	count  int
	err    error
}

func (g *stubGenerator) GeneratePending(_ context.Context, userID string, now time.Time) (int, error) {
	g.userID = userID
	g.now = now
	return g.count, g.err
}

func newRecurringService(store *fakeStore, gen PendingGenerator) *RecurringService {
	svc := NewRecurringService(store, store, gen)
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestRecurringCreate(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	svc := newRecurringService(store, &stubGenerator{})

	rule, err := svc.Create(context.Background(), "u1", CreateRecurringInput{
		Description: "Netflix",
		Amount:      decimal.RequireFromString("55.90"),
		Kind:        model.KindExpense,
		Frequency:   model.FrequencyMonthly,
	})
	require.NoError(t, err)
	assert.True(t, rule.Active)
	assert.Nil(t, rule.LastGenerated, "new rules have never generated")
}

func TestRecurringCreate_Validation(t *testing.T) {
	t.Parallel()

	base := CreateRecurringInput{
		Description: "Gym", Amount: decimal.NewFromInt(90),
		Kind: model.KindExpense, Frequency: model.FrequencyMonthly,
	}
	tests := []struct {
		name   string
		mutate func(*CreateRecurringInput)
		field  string
	}{
		{"negative amount", func(in *CreateRecurringInput) { in.Amount = decimal.NewFromInt(-1) }, "amount"},
		{"zero amount", func(in *CreateRecurringInput) { in.Amount = decimal.Zero }, "amount"},
		{"unknown frequency", func(in *CreateRecurringInput) { in.Frequency = "biweekly" }, "frequency"},
		{"unknown kind", func(in *CreateRecurringInput) { in.Kind = "gift" }, "transaction_type"},
		{"missing category", func(in *CreateRecurringInput) { in.CategoryID = ptr("nope") }, "category_id"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := newFakeStore()
			svc := newRecurringService(store, &stubGenerator{})

			in := base
			tt.mutate(&in)
			_, err := svc.Create(context.Background(), "u1", in)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Empty(t, store.rules)
		})
	}
}

func TestRecurringUpdate_Deactivate(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	svc := newRecurringService(store, &stubGenerator{})
	ctx := context.Background()

	rule, err := svc.Create(ctx, "u1", CreateRecurringInput{
		Description: "Gym", Amount: decimal.NewFromInt(90),
		Kind: model.KindExpense, Frequency: model.FrequencyMonthly,
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "u1", rule.ID, UpdateRecurringInput{Active: ptr(false)})
	require.NoError(t, err)
	assert.False(t, updated.Active)

	_, err = svc.Update(ctx, "u1", rule.ID, UpdateRecurringInput{})
	assert.ErrorIs(t, err, ErrNoFieldsToUpdate)

	_, err = svc.Update(ctx, "u2", rule.ID, UpdateRecurringInput{Active: ptr(true)})
	assert.ErrorIs(t, err, ErrRecurringRuleNotFound)
}

func TestRecurringGenerate_PassesOwnerAndClock(t *testing.T) {
	t.Parallel()
	gen := &stubGenerator{count: 3}
	svc := newRecurringService(newFakeStore(), gen)

	n, err := svc.Generate(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "u1", gen.userID)
	assert.Equal(t, testNow, gen.now)
}

func TestRecurringGenerate_GeneratorFailure(t *testing.T) {
	t.Parallel()
	gen := &stubGenerator{err: errBoom}
	svc := newRecurringService(newFakeStore(), gen)

	_, err := svc.Generate(context.Background(), "u1")
	assert.ErrorIs(t, err, errBoom)
}
