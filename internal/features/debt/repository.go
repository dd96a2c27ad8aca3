// Package debt — repository.go выполняет операции с таблицей debts.
package debt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository работает с таблицей debts.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий долгов.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Get возвращает долг или nil, если долга нет.
func (r *Repository) Get(ctx context.Context, guildID, userID, currencyName string) (*Debt, error) {
	var d Debt
	err := r.db.QueryRow(ctx, `
		SELECT id, guild_id, user_id, currency_name, principal, loan_date, penalized
		FROM debts
		WHERE guild_id = $1 AND user_id = $2 AND currency_name = $3
	`, guildID, userID, currencyName).Scan(
		&d.ID, &d.GuildID, &d.UserID, &d.CurrencyName, &d.Principal, &d.LoanDate, &d.Penalized,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения долга: %w", err)
	}
	return &d, nil
}

// ListByUser возвращает все долги пользователя на сервере.
func (r *Repository) ListByUser(ctx context.Context, guildID, userID string) ([]*Debt, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, guild_id, user_id, currency_name, principal, loan_date, penalized
		FROM debts
		WHERE guild_id = $1 AND user_id = $2
		ORDER BY currency_name
	`, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения долгов: %w", err)
	}
	defer rows.Close()

	var debts []*Debt
	for rows.Next() {
		var d Debt
		if err := rows.Scan(&d.ID, &d.GuildID, &d.UserID, &d.CurrencyName,
			&d.Principal, &d.LoanDate, &d.Penalized); err != nil {
			return nil, fmt.Errorf("ошибка сканирования долга: %w", err)
		}
		debts = append(debts, &d)
	}
	return debts, rows.Err()
}

// Create создаёт запись займа. Возвращает false, если по этой валюте
// займ уже есть (ничего не перезаписывается).
func (r *Repository) Create(ctx context.Context, guildID, userID, currencyName string, principal int64, loanDate time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO debts (guild_id, user_id, currency_name, principal, loan_date, penalized)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		ON CONFLICT (guild_id, user_id, currency_name) DO NOTHING
	`, guildID, userID, currencyName, principal, loanDate)
	if err != nil {
		return false, fmt.Errorf("ошибка создания займа: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Update сохраняет новый остаток и флаг штрафа.
func (r *Repository) Update(ctx context.Context, id int64, principal int64, penalized bool) error {
	_, err := r.db.Exec(ctx,
		`UPDATE debts SET principal = $2, penalized = $3 WHERE id = $1`,
		id, principal, penalized,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления долга: %w", err)
	}
	return nil
}

// Delete удаляет запись долга (после полного погашения).
func (r *Repository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM debts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления долга: %w", err)
	}
	return nil
}
