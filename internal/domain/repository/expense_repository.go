package repository

import (
	"context"
	"database/sql"
	"fmt"

	"expense_manager/internal/domain/model"
)

type ExpenseRepository interface {
	ListForDate(ctx context.Context, userID, date string) ([]model.Expense, error)
	// ReplaceForDate transactionally deletes all records for (userID, date)
	// and inserts the replacement set. An empty set is a pure deletion.
	ReplaceForDate(ctx context.Context, userID, date string, records []model.Expense) error
	SummarizeByCategory(ctx context.Context, userID, startDate, endDate string) ([]model.CategoryTotal, error)
}

type pgExpenseRepository struct {
	db *sql.DB
}

func NewPgExpenseRepository(db *sql.DB) ExpenseRepository {
	return &pgExpenseRepository{db: db}
}

func (r *pgExpenseRepository) ListForDate(ctx context.Context, userID, date string) ([]model.Expense, error) {
	query := `SELECT id, user_id, expense_date::text, amount, category, notes
	          FROM expenses WHERE user_id = $1 AND expense_date = $2::date
	          ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, userID, date)
	if err != nil {
		return nil, fmt.Errorf("pgExpenseRepository.ListForDate: %w", err)
	}
	defer rows.Close()

	expenses := []model.Expense{}
	for rows.Next() {
		var e model.Expense
		if err := rows.Scan(&e.ID, &e.UserID, &e.ExpenseDate, &e.Amount, &e.Category, &e.Notes); err != nil {
			return nil, fmt.Errorf("pgExpenseRepository.ListForDate scan: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *pgExpenseRepository) ReplaceForDate(ctx context.Context, userID, date string, records []model.Expense) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("pgExpenseRepository.ReplaceForDate begin: %w", err)
	}
	defer tx.Rollback() // Rollback if not committed

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM expenses WHERE user_id = $1 AND expense_date = $2::date`,
		userID, date,
	); err != nil {
		return fmt.Errorf("pgExpenseRepository.ReplaceForDate delete: %w", err)
	}

	if len(records) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO expenses (user_id, expense_date, amount, category, notes)
			 VALUES ($1, $2::date, $3, $4, $5)`)
		if err != nil {
			return fmt.Errorf("pgExpenseRepository.ReplaceForDate prepare: %w", err)
		}
		defer stmt.Close()

		for _, rec := range records {
			if _, err := stmt.ExecContext(ctx, userID, date, rec.Amount, rec.Category, rec.Notes); err != nil {
				return fmt.Errorf("pgExpenseRepository.ReplaceForDate insert: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("pgExpenseRepository.ReplaceForDate commit: %w", err)
	}
	return nil
}

func (r *pgExpenseRepository) SummarizeByCategory(ctx context.Context, userID, startDate, endDate string) ([]model.CategoryTotal, error) {
	query := `SELECT category, SUM(amount) AS total
	          FROM expenses
	          WHERE user_id = $1 AND expense_date BETWEEN $2::date AND $3::date
	          GROUP BY category
	          ORDER BY category`
	rows, err := r.db.QueryContext(ctx, query, userID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("pgExpenseRepository.SummarizeByCategory: %w", err)
	}
	defer rows.Close()

	totals := []model.CategoryTotal{}
	for rows.Next() {
		var ct model.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total); err != nil {
			return nil, fmt.Errorf("pgExpenseRepository.SummarizeByCategory scan: %w", err)
		}
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}
