//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphabank/alphabank-api/internal/model"
	"github.com/alphabank/alphabank-api/internal/recurring"
	"github.com/alphabank/alphabank-api/internal/testutil"
)

func newTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL, DefaultOptions())
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return ctx, repo
}

func createUser(t *testing.T, ctx context.Context, repo *Repository) *model.User {
	t.Helper()
	user := testutil.NewTestUser(t)
	require.NoError(t, repo.CreateUser(ctx, user))
	return user
}

func TestIntegrationUsers_CreateAndLookup(t *testing.T) {
	ctx, repo := newTestEnv(t)
	user := createUser(t, ctx, repo)

	byID, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)
	assert.Equal(t, user.CPF, byID.CPF)
	assert.Equal(t, user.BirthDate.String(), byID.BirthDate.String())
	assert.Equal(t, user.PasswordHash, byID.PasswordHash)

	byEmail, err := repo.GetUserByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repo.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestIntegrationUsers_Uniqueness(t *testing.T) {
	ctx, repo := newTestEnv(t)
	user := createUser(t, ctx, repo)

	dupEmail := testutil.NewTestUser(t)
	dupEmail.Email = user.Email
	assert.ErrorIs(t, repo.CreateUser(ctx, dupEmail), ErrEmailExists)

	dupCPF := testutil.NewTestUser(t)
	dupCPF.CPF = user.CPF
	assert.ErrorIs(t, repo.CreateUser(ctx, dupCPF), ErrCPFExists)

	exists, err := repo.CPFExists(ctx, user.CPF)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.EmailExists(ctx, user.Email, user.ID)
	require.NoError(t, err)
	assert.False(t, exists, "own email should be excluded")
}

func TestIntegrationUsers_PartialUpdate(t *testing.T) {
	ctx, repo := newTestEnv(t)
	user := createUser(t, ctx, repo)

	name := "Maria O'Brien; DROP TABLE users"
	updated, err := repo.UpdateUser(ctx, user.ID, model.UserUpdate{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.FullName)
	assert.Equal(t, user.Email, updated.Email)

	_, err = repo.UpdateUser(ctx, user.ID, model.UserUpdate{})
	assert.ErrorIs(t, err, ErrNoFieldsToUpdate)

	_, err = repo.UpdateUser(ctx, "missing", model.UserUpdate{FullName: &name})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestIntegrationTransactions_CRUDAndPagination(t *testing.T) {
	ctx, repo := newTestEnv(t)
	user := createUser(t, ctx, repo)

	base := time.Now().UTC().Truncate(time.Microsecond)
	for i := 0; i < 5; i++ {
		tx := testutil.NewTestTransaction(t, user.ID, model.KindExpense)
		tx.Date = base.Add(-time.Duration(i) * time.Hour)
		require.NoError(t, repo.InsertTransaction(ctx, tx))
	}

	page1, cursor, err := repo.ListTransactions(ctx, user.ID, model.TransactionFilter{Limit: 3})
	require.NoError(t, err)
	require.Len(t, page1, 3)
	require.NotEmpty(t, cursor)
	assert.True(t, page1[0].Date.After(page1[1].Date))

	page2, cursor, err := repo.ListTransactions(ctx, user.ID, model.TransactionFilter{Limit: 3, Cursor: cursor})
	require.NoError(t, err)
	assert.Len(t, page2, 2)
	assert.Empty(t, cursor)

	_, _, err = repo.ListTransactions(ctx, user.ID, model.TransactionFilter{Limit: 3, Cursor: "garbage"})
	assert.ErrorIs(t, err, ErrInvalidCursor)

	amount := decimal.RequireFromString("42.50")
	updated, err := repo.UpdateTransaction(ctx, user.ID, page1[0].ID, model.TransactionUpdate{Amount: &amount})
	require.NoError(t, err)
	assert.True(t, updated.Amount.Equal(amount))

	other := createUser(t, ctx, repo)
	_, err = repo.UpdateTransaction(ctx, other.ID, page1[0].ID, model.TransactionUpdate{Amount: &amount})
	assert.ErrorIs(t, err, ErrTransactionNotFound)

	require.NoError(t, repo.DeleteTransaction(ctx, user.ID, page1[0].ID))
	assert.ErrorIs(t, repo.DeleteTransaction(ctx, user.ID, page1[0].ID), ErrTransactionNotFound)
}

func TestIntegrationTransactions_Summary(t *testing.T) {
	ctx, repo := newTestEnv(t)
	user := createUser(t, ctx, repo)

	income := testutil.NewTestTransaction(t, user.ID, model.KindIncome)
	income.Amount = decimal.RequireFromString("1000.00")
	expense := testutil.NewTestTransaction(t, user.ID, model.KindExpense)
	expense.Amount = decimal.RequireFromString("250.25")
	require.NoError(t, repo.InsertTransaction(ctx, income))
	require.NoError(t, repo.InsertTransaction(ctx, expense))

	s, err := repo.SummarizeTransactions(ctx, user.ID, nil, nil)
	require.NoError(t, err)
	assert.True(t, s.Income.Equal(decimal.RequireFromString("1000")))
	assert.True(t, s.Expense.Equal(decimal.RequireFromString("250.25")))
	assert.True(t, s.Balance.Equal(decimal.RequireFromString("749.75")))
	assert.Equal(t, int64(2), s.Count)
}

func TestIntegrationCategories_DefaultsAndOwnership(t *testing.T) {
	ctx, repo := newTestEnv(t)
	user := createUser(t, ctx, repo)

	defaults, err := repo.ListCategories(ctx, user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, defaults)

	uid := user.ID
	own := &model.Category{
		ID: testutil.UniqueID(), UserID: &uid, Name: "Pets",
		Icon: model.DefaultCategoryIcon, Color: model.DefaultCategoryColor,
		Kind: model.KindExpense, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.CreateCategory(ctx, own))

	all, err := repo.ListCategories(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, all, len(defaults)+1)
	assert.True(t, all[0].IsDefault)
	assert.False(t, all[len(all)-1].IsDefault)

	assert.ErrorIs(t, repo.DeleteCategory(ctx, user.ID, defaults[0].ID), ErrCategoryNotFound)
	require.NoError(t, repo.DeleteCategory(ctx, user.ID, own.ID))
}

func TestIntegrationGoals_Progress(t *testing.T) {
	ctx, repo := newTestEnv(t)
	user := createUser(t, ctx, repo)

	goal := testutil.NewTestGoal(t, user.ID)
	require.NoError(t, repo.CreateGoal(ctx, goal))

	got, err := repo.AddGoalProgress(ctx, user.ID, goal.ID, decimal.RequireFromString("100.10"))
	require.NoError(t, err)
	got, err = repo.AddGoalProgress(ctx, user.ID, goal.ID, decimal.RequireFromString("0.90"))
	require.NoError(t, err)
	assert.True(t, got.CurrentAmount.Equal(decimal.NewFromInt(101)))
	assert.Equal(t, goal.Deadline.String(), got.Deadline.String())

	_, err = repo.AddGoalProgress(ctx, "someone-else", goal.ID, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrGoalNotFound)
}

func TestIntegrationRecurring_GenerateAtomically(t *testing.T) {
	ctx, repo := newTestEnv(t)
	user := createUser(t, ctx, repo)

	rule := testutil.NewTestRecurringRule(t, user.ID, model.FrequencyDaily)
	require.NoError(t, repo.CreateRecurringRule(ctx, rule))

	inactive := testutil.NewTestRecurringRule(t, user.ID, model.FrequencyDaily)
	inactive.Active = false
	require.NoError(t, repo.CreateRecurringRule(ctx, inactive))

	gen := recurring.NewGenerator(repo, nil, nil)
	now := time.Now().UTC().Truncate(time.Microsecond)

	n, err := gen.GeneratePending(ctx, user.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = gen.GeneratePending(ctx, user.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	stored, err := repo.GetRecurringRule(ctx, user.ID, rule.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastGenerated)
	assert.True(t, stored.LastGenerated.Equal(now))

	txs, _, err := repo.ListTransactions(ctx, user.ID, model.TransactionFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.True(t, txs[0].Recurring)
	require.NotNil(t, txs[0].RecurringID)
	assert.Equal(t, rule.ID, *txs[0].RecurringID)
}

func TestIntegrationRecurring_StaleWatermarkRejected(t *testing.T) {
	ctx, repo := newTestEnv(t)
	user := createUser(t, ctx, repo)

	rule := testutil.NewTestRecurringRule(t, user.ID, model.FrequencyDaily)
	require.NoError(t, repo.CreateRecurringRule(ctx, rule))

	now := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, repo.UpdateWatermark(ctx, rule.ID, nil, now))

	err := repo.UpdateWatermark(ctx, rule.ID, nil, now.Add(time.Hour))
	assert.True(t, errors.Is(err, recurring.ErrWatermarkMoved))
}

func TestIntegrationNotifications_Lifecycle(t *testing.T) {
	ctx, repo := newTestEnv(t)
	user := createUser(t, ctx, repo)

	n := &model.Notification{
		ID: testutil.UniqueID(), UserID: user.ID, Title: "Hi", Message: "Welcome",
		Kind: model.DefaultNotificationKind, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.CreateNotification(ctx, n))

	unread, err := repo.ListNotifications(ctx, user.ID, true)
	require.NoError(t, err)
	assert.Len(t, unread, 1)

	require.NoError(t, repo.MarkNotificationRead(ctx, user.ID, n.ID))

	unread, err = repo.ListNotifications(ctx, user.ID, true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	require.NoError(t, repo.DeleteNotification(ctx, user.ID, n.ID))
	assert.ErrorIs(t, repo.DeleteNotification(ctx, user.ID, n.ID), ErrNotificationNotFound)
}
