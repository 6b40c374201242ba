package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alphabank/alphabank-api/internal/model"
	"github.com/alphabank/alphabank-api/internal/repository"
)

var errBoom = errors.New("boom")

// fakeStore is an in-memory stand-in for *repository.Repository.
type fakeStore struct {
	mu            sync.Mutex
	users         map[string]*model.User
	transactions  map[string]*model.Transaction
	categories    map[string]*model.Category
	goals         map[string]*model.Goal
	rules         map[string]*model.RecurringRule
	notifications map[string]*model.Notification
	failWith      error
}

func newFakeStore() *fakeStore {
	s := &fakeStore{
		users:         map[string]*model.User{},
		transactions:  map[string]*model.Transaction{},
		categories:    map[string]*model.Category{},
		goals:         map[string]*model.Goal{},
		rules:         map[string]*model.RecurringRule{},
		notifications: map[string]*model.Notification{},
	}
	s.categories["default-food"] = &model.Category{
		ID: "default-food", Name: "Alimentação", Icon: "🍔", Color: "#e17055",
		Kind: model.KindExpense, IsDefault: true,
	}
	return s
}

// users

func (s *fakeStore) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	for _, other := range s.users {
		if other.Email == u.Email {
			return repository.ErrEmailExists
		}
		if other.CPF == u.CPF {
			return repository.ErrCPFExists
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *fakeStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *fakeStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *fakeStore) EmailExists(_ context.Context, email, excludeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) CPFExists(_ context.Context, cpf string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.CPF == cpf {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) UpdateUser(_ context.Context, id string, upd model.UserUpdate) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	if upd.FullName != nil {
		u.FullName = *upd.FullName
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}
	if upd.BirthDate != nil {
		u.BirthDate = *upd.BirthDate
	}
	cp := *u
	return &cp, nil
}

func (s *fakeStore) UpdatePassword(_ context.Context, id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

// categories

func (s *fakeStore) visible(c *model.Category, userID string) bool {
	return c.IsDefault || (c.UserID != nil && *c.UserID == userID)
}

func (s *fakeStore) ListCategories(_ context.Context, userID string) ([]*model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Category
	for _, c := range s.categories {
		if s.visible(c, userID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *fakeStore) GetCategory(_ context.Context, userID, id string) (*model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	c, ok := s.categories[id]
	if !ok || !s.visible(c, userID) {
		return nil, repository.ErrCategoryNotFound
	}
	return c, nil
}

func (s *fakeStore) CreateCategory(_ context.Context, c *model.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
	return nil
}

func (s *fakeStore) UpdateCategory(_ context.Context, userID, id string, upd model.CategoryUpdate) (*model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok || c.UserID == nil || *c.UserID != userID {
		return nil, repository.ErrCategoryNotFound
	}
	if upd.Name != nil {
		c.Name = *upd.Name
	}
	if upd.Icon != nil {
		c.Icon = *upd.Icon
	}
	if upd.Color != nil {
		c.Color = *upd.Color
	}
	return c, nil
}

func (s *fakeStore) DeleteCategory(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok || c.IsDefault || c.UserID == nil || *c.UserID != userID {
		return repository.ErrCategoryNotFound
	}
	delete(s.categories, id)
	return nil
}

// transactions

func (s *fakeStore) InsertTransaction(_ context.Context, tx *model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.transactions[tx.ID] = tx
	return nil
}

func (s *fakeStore) GetTransaction(_ context.Context, userID, id string) (*model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok || tx.UserID != userID {
		return nil, repository.ErrTransactionNotFound
	}
	return tx, nil
}

func (s *fakeStore) ListTransactions(_ context.Context, userID string, filter model.TransactionFilter) ([]*model.Transaction, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if filter.Cursor == "bad" {
		return nil, "", repository.ErrInvalidCursor
	}
	var out []*model.Transaction
	for _, tx := range s.transactions {
		if tx.UserID != userID {
			continue
		}
		if filter.Kind != nil && tx.Kind != *filter.Kind {
			continue
		}
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	next := ""
	if len(out) > filter.Limit {
		out = out[:filter.Limit]
		next = "more"
	}
	return out, next, nil
}

func (s *fakeStore) UpdateTransaction(_ context.Context, userID, id string, upd model.TransactionUpdate) (*model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok || tx.UserID != userID {
		return nil, repository.ErrTransactionNotFound
	}
	if upd.Description != nil {
		tx.Description = *upd.Description
	}
	if upd.Amount != nil {
		tx.Amount = *upd.Amount
	}
	if upd.Kind != nil {
		tx.Kind = *upd.Kind
	}
	if upd.CategoryID != nil {
		tx.CategoryID = upd.CategoryID
	}
	if upd.Date != nil {
		tx.Date = *upd.Date
	}
	return tx, nil
}

func (s *fakeStore) DeleteTransaction(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok || tx.UserID != userID {
		return repository.ErrTransactionNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (s *fakeStore) SummarizeTransactions(_ context.Context, userID string, from, to *time.Time) (*model.TransactionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := &model.TransactionSummary{}
	for _, tx := range s.transactions {
		if tx.UserID != userID {
			continue
		}
		if from != nil && tx.Date.Before(*from) {
			continue
		}
		if to != nil && !tx.Date.Before(*to) {
			continue
		}
		if tx.Kind == model.KindIncome {
			sum.Income = sum.Income.Add(tx.Amount)
		} else {
			sum.Expense = sum.Expense.Add(tx.Amount)
		}
		sum.Count++
	}
	sum.Balance = sum.Income.Sub(sum.Expense)
	return sum, nil
}

// goals

func (s *fakeStore) ListGoals(_ context.Context, userID string) ([]*model.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Goal
	for _, g := range s.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *fakeStore) GetGoal(_ context.Context, userID, id string) (*model.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		return nil, repository.ErrGoalNotFound
	}
	return g, nil
}

func (s *fakeStore) CreateGoal(_ context.Context, g *model.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals[g.ID] = g
	return nil
}

func (s *fakeStore) UpdateGoal(_ context.Context, userID, id string, upd model.GoalUpdate) (*model.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		return nil, repository.ErrGoalNotFound
	}
	if upd.Name != nil {
		g.Name = *upd.Name
	}
	if upd.TargetAmount != nil {
		g.TargetAmount = *upd.TargetAmount
	}
	if upd.Deadline != nil {
		g.Deadline = *upd.Deadline
	}
	if upd.Icon != nil {
		g.Icon = *upd.Icon
	}
	return g, nil
}

func (s *fakeStore) AddGoalProgress(_ context.Context, userID, id string, amount decimal.Decimal) (*model.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		return nil, repository.ErrGoalNotFound
	}
	g.CurrentAmount = g.CurrentAmount.Add(amount)
	return g, nil
}

func (s *fakeStore) DeleteGoal(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		return repository.ErrGoalNotFound
	}
	delete(s.goals, id)
	return nil
}

// recurring rules

func (s *fakeStore) ListRecurringRules(_ context.Context, userID string) ([]*model.RecurringRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.RecurringRule
	for _, r := range s.rules {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) GetRecurringRule(_ context.Context, userID, id string) (*model.RecurringRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rules[id]
	if !ok || r.UserID != userID {
		return nil, repository.ErrRecurringRuleNotFound
	}
	return r, nil
}

func (s *fakeStore) CreateRecurringRule(_ context.Context, rule *model.RecurringRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[rule.ID] = rule
	return nil
}

func (s *fakeStore) UpdateRecurringRule(_ context.Context, userID, id string, upd model.RecurringRuleUpdate) (*model.RecurringRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rules[id]
	if !ok || r.UserID != userID {
		return nil, repository.ErrRecurringRuleNotFound
	}
	if upd.Description != nil {
		r.Description = *upd.Description
	}
	if upd.Amount != nil {
		r.Amount = *upd.Amount
	}
	if upd.Kind != nil {
		r.Kind = *upd.Kind
	}
	if upd.CategoryID != nil {
		r.CategoryID = upd.CategoryID
	}
	if upd.Frequency != nil {
		r.Frequency = *upd.Frequency
	}
	if upd.Active != nil {
		r.Active = *upd.Active
	}
	return r, nil
}

func (s *fakeStore) DeleteRecurringRule(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rules[id]
	if !ok || r.UserID != userID {
		return repository.ErrRecurringRuleNotFound
	}
	delete(s.rules, id)
	return nil
}

// notifications

func (s *fakeStore) ListNotifications(_ context.Context, userID string, unreadOnly bool) ([]*model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Notification
	for _, n := range s.notifications {
		if n.UserID == userID && (!unreadOnly || !n.Read) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *fakeStore) CreateNotification(_ context.Context, n *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[n.ID] = n
	return nil
}

func (s *fakeStore) MarkNotificationRead(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotificationNotFound
	}
	n.Read = true
	return nil
}

func (s *fakeStore) DeleteNotification(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotificationNotFound
	}
	delete(s.notifications, id)
	return nil
}

var (
	_ UserStore         = (*fakeStore)(nil)
	_ TransactionStore  = (*fakeStore)(nil)
	_ CategoryStore     = (*fakeStore)(nil)
	_ GoalStore         = (*fakeStore)(nil)
	_ RecurringStore    = (*fakeStore)(nil)
	_ NotificationStore = (*fakeStore)(nil)
	_ UserStore         = (*repository.Repository)(nil)
	_ TransactionStore  = (*repository.Repository)(nil)
	_ CategoryStore     = (*repository.Repository)(nil)
	_ GoalStore         = (*repository.Repository)(nil)
	_ RecurringStore    = (*repository.Repository)(nil)
	_ NotificationStore = (*repository.Repository)(nil)
)
