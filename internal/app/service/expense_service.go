package service

import (
	"context"
	"errors"
	"fmt"

	"expense_manager/internal/common"
	"expense_manager/internal/domain/model"
	"expense_manager/internal/domain/repository"

	"github.com/gosimple/slug"
)

// Locker serializes a critical section per key across concurrent callers.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// ExpenseService owns the scoped ledger operations. Every method takes a
// user identity the gate already resolved; it never trusts a client-supplied
// user id, except the admin cross-user read which resolves an explicit
// username itself.
type ExpenseService struct {
	expenseRepo repository.ExpenseRepository
	userRepo    repository.UserRepository
	locker      Locker
}

func NewExpenseService(expenseRepo repository.ExpenseRepository, userRepo repository.UserRepository, locker Locker) *ExpenseService {
	return &ExpenseService{
		expenseRepo: expenseRepo,
		userRepo:    userRepo,
		locker:      locker,
	}
}

// ExpenseInput is one replacement record. Amounts may be negative (refunds).
type ExpenseInput struct {
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Notes    string  `json:"notes"`
}

type CategoryBreakdown struct {
	Total      float64 `json:"total"`
	Percentage float64 `json:"percentage"`
	Slug       string  `json:"slug"`
}

func (s *ExpenseService) ListForDate(ctx context.Context, userID, date string) ([]model.Expense, error) {
	expenses, err := s.expenseRepo.ListForDate(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expenses, nil
}

// ReplaceForDate swaps out all of a user's records for one date. The redis
// mutex keyed by (userID, date) keeps concurrent replaces for the same day
// from interleaving; the repository's transaction keeps each replace atomic.
// Different users and different dates never contend.
func (s *ExpenseService) ReplaceForDate(ctx context.Context, userID, date string, inputs []ExpenseInput) error {
	release, err := s.locker.Acquire(ctx, replaceLockKey(userID, date))
	if err != nil {
		return fmt.Errorf("failed to lock (user, date): %w", err)
	}
	defer release()

	records := make([]model.Expense, 0, len(inputs))
	for _, in := range inputs {
		records = append(records, model.Expense{
			UserID:      userID,
			ExpenseDate: date,
			Amount:      in.Amount,
			Category:    in.Category,
			Notes:       in.Notes,
		})
	}

	if err := s.expenseRepo.ReplaceForDate(ctx, userID, date, records); err != nil {
		return fmt.Errorf("failed to replace expenses: %w", err)
	}
	return nil
}

// Analytics sums amounts per category over an inclusive date range and
// attaches each category's share of the grand total. Shares are 0 when the
// grand total is 0. An empty range yields an empty map.
func (s *ExpenseService) Analytics(ctx context.Context, userID, startDate, endDate string) (map[string]CategoryBreakdown, error) {
	totals, err := s.expenseRepo.SummarizeByCategory(ctx, userID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize expenses: %w", err)
	}

	var grandTotal float64
	for _, ct := range totals {
		grandTotal += ct.Total
	}

	breakdown := make(map[string]CategoryBreakdown, len(totals))
	for _, ct := range totals {
		percentage := 0.0
		if grandTotal != 0 {
			percentage = ct.Total / grandTotal * 100
		}
		breakdown[ct.Category] = CategoryBreakdown{
			Total:      ct.Total,
			Percentage: percentage,
			Slug:       slug.Make(ct.Category),
		}
	}
	return breakdown, nil
}

// ListForUser is the admin cross-user read: the target is resolved from an
// admin-supplied username, with ErrNotFound when no such user exists.
func (s *ExpenseService) ListForUser(ctx context.Context, username, date string) ([]model.Expense, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Errorf("user %q: %w", username, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to resolve username: %w", err)
	}
	return s.ListForDate(ctx, user.ID, date)
}

func replaceLockKey(userID, date string) string {
	return "expense_replace_lock:" + userID + ":" + date
}
