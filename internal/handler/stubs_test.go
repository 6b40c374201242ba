package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/alphabank/alphabank-api/internal/auth"
	"github.com/alphabank/alphabank-api/internal/model"
	"github.com/alphabank/alphabank-api/internal/service"
)

const testUserID = "01HZX0000000000000000000U1"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// asUser marks every request as authenticated for testUserID.
func asUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(auth.ContextWithUserID(r.Context(), testUserID)))
	})
}

type stubAuth struct {
	register func(service.RegisterInput) (*service.Session, error)
	login    func(email, password string) (*service.Session, error)
	err      error
}

func (s *stubAuth) Register(_ context.Context, in service.RegisterInput) (*service.Session, error) {
	return s.register(in)
}
func (s *stubAuth) Login(_ context.Context, email, password string) (*service.Session, error) {
	return s.login(email, password)
}
func (s *stubAuth) Me(_ context.Context, userID string) (*model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.User{ID: userID, FullName: "Maria Silva", CPF: "52998224725"}, nil
}
func (s *stubAuth) UpdateProfile(_ context.Context, userID string, in service.UpdateProfileInput) (*model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.User{ID: userID, FullName: *in.FullName}, nil
}
func (s *stubAuth) ChangePassword(_ context.Context, _, _, _ string) error { return s.err }
func (s *stubAuth) ForgotPassword(_ context.Context, _ string) (string, error) {
	return service.ForgotPasswordMessage, s.err
}

type stubTransactions struct {
	gotFilter model.TransactionFilter
	gotFrom   *time.Time
	gotTo     *time.Time
	err       error
}

func (s *stubTransactions) Create(_ context.Context, userID string, in service.CreateTransactionInput) (*model.Transaction, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.Transaction{ID: "t1", UserID: userID, Description: in.Description, Amount: in.Amount, Kind: in.Kind}, nil
}
func (s *stubTransactions) Get(_ context.Context, _, id string) (*model.Transaction, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.Transaction{ID: id}, nil
}
func (s *stubTransactions) List(_ context.Context, _ string, f model.TransactionFilter) (*service.ListTransactionsOutput, error) {
	s.gotFilter = f
	if s.err != nil {
		return nil, s.err
	}
	return &service.ListTransactionsOutput{Transactions: []*model.Transaction{{ID: "t1"}}, NextCursor: "next", HasMore: true}, nil
}
func (s *stubTransactions) Update(_ context.Context, _, id string, _ service.UpdateTransactionInput) (*model.Transaction, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.Transaction{ID: id}, nil
}
func (s *stubTransactions) Delete(_ context.Context, _, _ string) error { return s.err }
func (s *stubTransactions) Summary(_ context.Context, _ string, from, to *time.Time) (*model.TransactionSummary, error) {
	s.gotFrom, s.gotTo = from, to
	return &model.TransactionSummary{
		Income:  decimal.NewFromInt(1000),
		Expense: decimal.RequireFromString("250.25"),
		Balance: decimal.RequireFromString("749.75"),
		Count:   2,
	}, nil
}

type stubGoals struct {
	err error
}

func (s *stubGoals) goal(id string) *model.Goal {
	return &model.Goal{ID: id, TargetAmount: decimal.NewFromInt(1000), CurrentAmount: decimal.NewFromInt(250)}
}
func (s *stubGoals) List(context.Context, string) ([]*model.Goal, error) { return nil, s.err }
func (s *stubGoals) Get(_ context.Context, _, id string) (*model.Goal, error) {
	return s.goal(id), s.err
}
func (s *stubGoals) Create(context.Context, string, service.CreateGoalInput) (*model.Goal, error) {
	return s.goal("g1"), s.err
}
func (s *stubGoals) Update(_ context.Context, _, id string, _ service.UpdateGoalInput) (*model.Goal, error) {
	return s.goal(id), s.err
}
func (s *stubGoals) AddProgress(_ context.Context, _, id string, _ decimal.Decimal) (*model.Goal, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.goal(id), nil
}
func (s *stubGoals) Delete(context.Context, string, string) error { return s.err }

type stubRecurring struct {
	count int
	err   error
}

func (s *stubRecurring) List(context.Context, string) ([]*model.RecurringRule, error) {
	return []*model.RecurringRule{}, s.err
}
func (s *stubRecurring) Get(_ context.Context, _, id string) (*model.RecurringRule, error) {
	return &model.RecurringRule{ID: id}, s.err
}
func (s *stubRecurring) Create(context.Context, string, service.CreateRecurringInput) (*model.RecurringRule, error) {
	return &model.RecurringRule{ID: "r1", Active: true}, s.err
}
func (s *stubRecurring) Update(_ context.Context, _, id string, _ service.UpdateRecurringInput) (*model.RecurringRule, error) {
	return &model.RecurringRule{ID: id}, s.err
}
func (s *stubRecurring) Delete(context.Context, string, string) error { return s.err }
func (s *stubRecurring) Generate(context.Context, string) (int, error) {
	return s.count, s.err
}

// newTestRouter wires the handlers the way cmd/api does, without the
// ambient middleware.
func newTestRouter(a AuthService, tx TransactionService, g GoalService, rec RecurringService) http.Handler {
	logger := discardLogger()
	r := chi.NewRouter()

	if a != nil {
		h := NewAuthHandler(a, logger)
		r.Post("/api/auth/register", h.Register)
		r.Post("/api/auth/login", h.Login)
		r.Post("/api/auth/forgot-password", h.ForgotPassword)
		r.With(asUser).Get("/api/me", h.Me)
		r.With(asUser).Put("/api/me", h.UpdateProfile)
		r.With(asUser).Post("/api/auth/change-password", h.ChangePassword)
	}

	r.Group(func(r chi.Router) {
		r.Use(asUser)
		if tx != nil {
			h := NewTransactionHandler(tx, logger)
			r.Get("/api/transactions", h.List)
			r.Get("/api/transactions/summary", h.Summary)
			r.Post("/api/transactions", h.Create)
			r.Get("/api/transactions/{id}", h.Get)
			r.Put("/api/transactions/{id}", h.Update)
			r.Delete("/api/transactions/{id}", h.Delete)
		}
		if g != nil {
			h := NewGoalHandler(g, logger)
			r.Get("/api/goals", h.List)
			r.Get("/api/goals/{id}", h.Get)
			r.Post("/api/goals/{id}/progress", h.AddProgress)
		}
		if rec != nil {
			h := NewRecurringHandler(rec, logger)
			r.Post("/api/recurring/generate", h.Generate)
			r.Delete("/api/recurring/{id}", h.Delete)
		}
	})
	return r
}
