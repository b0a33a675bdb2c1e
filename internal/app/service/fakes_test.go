package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"expense_manager/internal/common"
	"expense_manager/internal/domain/model"
)

// fakeUserRepo is an in-memory UserRepository. It stores copies so callers
// mutating returned users cannot corrupt the "database".
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]model.User // keyed by username
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]model.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Username]; exists {
		return fmt.Errorf("user with given username already exists: %w", common.ErrConflict)
	}
	r.users[user.Username] = *user
	return nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[username]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &user, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.ID == id {
			u := user
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) ListUsernames(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.users))
	for name := range r.users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (r *fakeUserRepo) delete(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, username)
}

func (r *fakeUserRepo) setRole(username, role string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user := r.users[username]
	user.Role = role
	r.users[username] = user
}

// fakeExpenseRepo is an in-memory ExpenseRepository keyed by (userID, date).
type fakeExpenseRepo struct {
	mu      sync.Mutex
	records map[string][]model.Expense
	nextID  int64
}

func newFakeExpenseRepo() *fakeExpenseRepo {
	return &fakeExpenseRepo{records: map[string][]model.Expense{}}
}

func expenseKey(userID, date string) string {
	return userID + "|" + date
}

func (r *fakeExpenseRepo) ListForDate(_ context.Context, userID, date string) ([]model.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.records[expenseKey(userID, date)]
	out := make([]model.Expense, len(stored))
	copy(out, stored)
	return out, nil
}

func (r *fakeExpenseRepo) ReplaceForDate(_ context.Context, userID, date string, records []model.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := expenseKey(userID, date)
	delete(r.records, key)
	if len(records) == 0 {
		return nil
	}
	stored := make([]model.Expense, 0, len(records))
	for _, rec := range records {
		r.nextID++
		rec.ID = r.nextID
		rec.UserID = userID
		rec.ExpenseDate = date
		stored = append(stored, rec)
	}
	r.records[key] = stored
	return nil
}

func (r *fakeExpenseRepo) SummarizeByCategory(_ context.Context, userID, startDate, endDate string) ([]model.CategoryTotal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	totals := map[string]float64{}
	for key, recs := range r.records {
		parts := strings.SplitN(key, "|", 2)
		// ISO dates compare correctly as strings.
		if parts[0] != userID || parts[1] < startDate || parts[1] > endDate {
			continue
		}
		for _, rec := range recs {
			totals[rec.Category] += rec.Amount
		}
	}

	categories := make([]string, 0, len(totals))
	for c := range totals {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	out := make([]model.CategoryTotal, 0, len(categories))
	for _, c := range categories {
		out = append(out, model.CategoryTotal{Category: c, Total: totals[c]})
	}
	return out, nil
}

// fakeLocker records acquired keys and never blocks.
type fakeLocker struct {
	mu       sync.Mutex
	acquired []string
}

func (l *fakeLocker) Acquire(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.acquired = append(l.acquired, key)
	return func() {}, nil
}
