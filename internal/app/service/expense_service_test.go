package service

import (
	"context"
	"testing"

	"expense_manager/internal/common"
	"expense_manager/internal/domain/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExpenseService() (*ExpenseService, *fakeUserRepo, *fakeLocker) {
	userRepo := newFakeUserRepo()
	locker := &fakeLocker{}
	svc := NewExpenseService(newFakeExpenseRepo(), userRepo, locker)
	return svc, userRepo, locker
}

func TestReplaceForDateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestExpenseService()
	uid := uuid.NewString()

	inputs := []ExpenseInput{
		{Amount: 12.5, Category: "food", Notes: "lunch"},
		{Amount: 3.0, Category: "transport", Notes: ""},
	}

	require.NoError(t, svc.ReplaceForDate(ctx, uid, "2024-01-05", inputs))
	first, err := svc.ListForDate(ctx, uid, "2024-01-05")
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, 12.5, first[0].Amount)
	assert.Equal(t, "food", first[0].Category)

	// Same replacement set again: same final state.
	require.NoError(t, svc.ReplaceForDate(ctx, uid, "2024-01-05", inputs))
	second, err := svc.ListForDate(ctx, uid, "2024-01-05")
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, first[0].Amount, second[0].Amount)
	assert.Equal(t, first[1].Category, second[1].Category)
}

func TestReplaceForDateWithEmptySetDeletes(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestExpenseService()
	uid := uuid.NewString()

	require.NoError(t, svc.ReplaceForDate(ctx, uid, "2024-01-05", []ExpenseInput{{Amount: 1, Category: "misc"}}))
	require.NoError(t, svc.ReplaceForDate(ctx, uid, "2024-01-05", nil))

	expenses, err := svc.ListForDate(ctx, uid, "2024-01-05")
	require.NoError(t, err)
	assert.Empty(t, expenses)
}

func TestReplaceForDateSerializesPerUserAndDate(t *testing.T) {
	ctx := context.Background()
	svc, _, locker := newTestExpenseService()
	uid := uuid.NewString()

	require.NoError(t, svc.ReplaceForDate(ctx, uid, "2024-01-05", nil))

	require.Len(t, locker.acquired, 1)
	assert.Contains(t, locker.acquired[0], uid)
	assert.Contains(t, locker.acquired[0], "2024-01-05")
}

func TestAnalyticsPercentages(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestExpenseService()
	uid := uuid.NewString()

	require.NoError(t, svc.ReplaceForDate(ctx, uid, "2024-01-05", []ExpenseInput{
		{Amount: 30, Category: "food"},
		{Amount: 10, Category: "transport"},
	}))
	require.NoError(t, svc.ReplaceForDate(ctx, uid, "2024-01-10", []ExpenseInput{
		{Amount: 10, Category: "food"},
	}))

	breakdown, err := svc.Analytics(ctx, uid, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	require.Len(t, breakdown, 2)

	assert.Equal(t, 40.0, breakdown["food"].Total)
	assert.InDelta(t, 80.0, breakdown["food"].Percentage, 1e-9)
	assert.Equal(t, 10.0, breakdown["transport"].Total)
	assert.InDelta(t, 20.0, breakdown["transport"].Percentage, 1e-9)

	var sum float64
	for _, cb := range breakdown {
		sum += cb.Percentage
	}
	assert.InDelta(t, 100.0, sum, 1e-9)
}

func TestAnalyticsEmptyRange(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestExpenseService()
	uid := uuid.NewString()

	require.NoError(t, svc.ReplaceForDate(ctx, uid, "2024-02-01", []ExpenseInput{{Amount: 5, Category: "food"}}))

	breakdown, err := svc.Analytics(ctx, uid, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Empty(t, breakdown)
}

func TestAnalyticsZeroGrandTotal(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestExpenseService()
	uid := uuid.NewString()

	// A refund cancels the spend: grand total 0, every percentage 0.
	require.NoError(t, svc.ReplaceForDate(ctx, uid, "2024-01-05", []ExpenseInput{
		{Amount: 25, Category: "food"},
		{Amount: -25, Category: "refunds"},
	}))

	breakdown, err := svc.Analytics(ctx, uid, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	require.Len(t, breakdown, 2)
	for category, cb := range breakdown {
		assert.Zero(t, cb.Percentage, "category %s", category)
	}
}

func TestAnalyticsCategorySlugs(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestExpenseService()
	uid := uuid.NewString()

	require.NoError(t, svc.ReplaceForDate(ctx, uid, "2024-01-05", []ExpenseInput{
		{Amount: 10, Category: "Eating Out"},
	}))

	breakdown, err := svc.Analytics(ctx, uid, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, "eating-out", breakdown["Eating Out"].Slug)
}

func TestListForUserResolvesUsername(t *testing.T) {
	ctx := context.Background()
	svc, userRepo, _ := newTestExpenseService()

	bob := &model.User{ID: uuid.NewString(), Username: "bob", Role: model.RoleUser}
	require.NoError(t, userRepo.Create(ctx, bob))
	require.NoError(t, svc.ReplaceForDate(ctx, bob.ID, "2024-01-05", []ExpenseInput{{Amount: 7, Category: "food"}}))

	expenses, err := svc.ListForUser(ctx, "bob", "2024-01-05")
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, bob.ID, expenses[0].UserID)

	_, err = svc.ListForUser(ctx, "nobody", "2024-01-05")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
