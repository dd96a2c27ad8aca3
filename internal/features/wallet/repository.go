// Package wallet — repository.go выполняет все операции с таблицами
// wallets и transactions. Все денежные операции выполняются в транзакциях
// БД с блокировкой строк FOR UPDATE: перевод либо проходит целиком,
// либо не оставляет следов. Это закрывает гонку «одновременные запросы
// к одному кошельку», которой страдала прежняя версия бота.
package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dndbot/internal/common"
)

// Repository предоставляет методы для работы с кошельками и транзакциями.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий кошельков.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetOrCreate возвращает кошелёк пользователя, создавая его при первом
// обращении (пустые балансы, кулдауны не установлены).
func (r *Repository) GetOrCreate(ctx context.Context, guildID, userID string) (*Wallet, error) {
	_, err := r.db.Exec(ctx, `
		INSERT INTO wallets (guild_id, user_id, balances)
		VALUES ($1, $2, '{}')
		ON CONFLICT (guild_id, user_id) DO NOTHING
	`, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания кошелька: %w", err)
	}
	return r.Get(ctx, guildID, userID)
}

// Get возвращает кошелёк или nil, если его нет.
func (r *Repository) Get(ctx context.Context, guildID, userID string) (*Wallet, error) {
	w, err := scanWallet(r.db.QueryRow(ctx, `
		SELECT id, guild_id, user_id, balances, last_worked, last_stolen
		FROM wallets WHERE guild_id = $1 AND user_id = $2
	`, guildID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения кошелька: %w", err)
	}
	return w, nil
}

// ListByGuild возвращает все кошельки сервера.
func (r *Repository) ListByGuild(ctx context.Context, guildID string) ([]*Wallet, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, guild_id, user_id, balances, last_worked, last_stolen
		FROM wallets WHERE guild_id = $1
		ORDER BY user_id
	`, guildID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения кошельков: %w", err)
	}
	defer rows.Close()

	var wallets []*Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования кошелька: %w", err)
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}

// Credit начисляет валюту (системная эмиссия: работа, займ, доход
// комерции). Кошелёк создаётся при необходимости, транзакция журнала
// пишется в той же транзакции БД.
func (r *Repository) Credit(ctx context.Context, guildID, userID, currencyName string, amount int64, txType string) (*Transaction, error) {
	var rec *Transaction
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		if err := ensureWallet(ctx, tx, guildID, userID); err != nil {
			return err
		}
		balances, err := lockBalances(ctx, tx, guildID, userID)
		if err != nil {
			return err
		}
		balances[currencyName] += amount
		if err := writeBalances(ctx, tx, guildID, userID, balances); err != nil {
			return err
		}
		rec, err = insertTransaction(ctx, tx, &Transaction{
			GuildID:      guildID,
			FromUserID:   nil, // системная эмиссия
			ToUserID:     &userID,
			CurrencyName: currencyName,
			Amount:       amount,
			Type:         txType,
		})
		return err
	})
	return rec, err
}

// Debit списывает валюту (системное списание: сбор налогов, оплата
// комерции). ErrInsufficientFunds, если баланса не хватает — без мутаций.
func (r *Repository) Debit(ctx context.Context, guildID, userID, currencyName string, amount int64, txType string) (*Transaction, error) {
	var rec *Transaction
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		balances, err := lockBalances(ctx, tx, guildID, userID)
		if err != nil {
			return err
		}
		if balances[currencyName] < amount {
			return common.ErrInsufficientFunds
		}
		balances[currencyName] -= amount
		if err := writeBalances(ctx, tx, guildID, userID, balances); err != nil {
			return err
		}
		rec, err = insertTransaction(ctx, tx, &Transaction{
			GuildID:      guildID,
			FromUserID:   &userID,
			ToUserID:     nil, // системное списание
			CurrencyName: currencyName,
			Amount:       amount,
			Type:         txType,
		})
		return err
	})
	return rec, err
}

// Transfer переводит валюту между двумя кошельками одной транзакцией БД:
// списание, зачисление и запись журнала либо проходят все, либо ни одно.
// Строки блокируются в порядке возрастания user_id, чтобы встречные
// переводы не взаимоблокировались.
func (r *Repository) Transfer(ctx context.Context, guildID, fromUserID, toUserID, currencyName string, amount int64, txType string) (*Transaction, error) {
	var rec *Transaction
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		if err := ensureWallet(ctx, tx, guildID, fromUserID); err != nil {
			return err
		}
		if err := ensureWallet(ctx, tx, guildID, toUserID); err != nil {
			return err
		}

		// Порядок блокировки по user_id
		first, second := fromUserID, toUserID
		if second < first {
			first, second = second, first
		}
		firstBal, err := lockBalances(ctx, tx, guildID, first)
		if err != nil {
			return err
		}
		secondBal, err := lockBalances(ctx, tx, guildID, second)
		if err != nil {
			return err
		}

		fromBal, toBal := firstBal, secondBal
		if first != fromUserID {
			fromBal, toBal = secondBal, firstBal
		}

		if fromBal[currencyName] < amount {
			return common.ErrInsufficientFunds
		}
		fromBal[currencyName] -= amount
		toBal[currencyName] += amount

		if err := writeBalances(ctx, tx, guildID, fromUserID, fromBal); err != nil {
			return err
		}
		if err := writeBalances(ctx, tx, guildID, toUserID, toBal); err != nil {
			return err
		}

		rec, err = insertTransaction(ctx, tx, &Transaction{
			GuildID:      guildID,
			FromUserID:   &fromUserID,
			ToUserID:     &toUserID,
			CurrencyName: currencyName,
			Amount:       amount,
			Type:         txType,
		})
		return err
	})
	return rec, err
}

// SetLastWorked ставит отметку кулдауна работы.
func (r *Repository) SetLastWorked(ctx context.Context, guildID, userID string, t time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE wallets SET last_worked = $3 WHERE guild_id = $1 AND user_id = $2`,
		guildID, userID, t,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления last_worked: %w", err)
	}
	return nil
}

// SetLastStolen ставит отметку кулдауна кражи (на кошельке вора).
func (r *Repository) SetLastStolen(ctx context.Context, guildID, userID string, t time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE wallets SET last_stolen = $3 WHERE guild_id = $1 AND user_id = $2`,
		guildID, userID, t,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления last_stolen: %w", err)
	}
	return nil
}

// ListTransactions возвращает последние N транзакций пользователя
// (входящие и исходящие).
func (r *Repository) ListTransactions(ctx context.Context, guildID, userID string, limit int) ([]*Transaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, guild_id, from_user_id, to_user_id, currency_name, amount, tx_type, created_at
		FROM transactions
		WHERE guild_id = $1 AND (from_user_id = $2 OR to_user_id = $2)
		ORDER BY created_at DESC
		LIMIT $3
	`, guildID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения транзакций: %w", err)
	}
	defer rows.Close()

	var txs []*Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.GuildID, &t.FromUserID, &t.ToUserID,
			&t.CurrencyName, &t.Amount, &t.Type, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования транзакции: %w", err)
		}
		txs = append(txs, &t)
	}
	return txs, rows.Err()
}

// --- вспомогательные функции ---

func (r *Repository) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func ensureWallet(ctx context.Context, tx pgx.Tx, guildID, userID string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO wallets (guild_id, user_id, balances)
		VALUES ($1, $2, '{}')
		ON CONFLICT (guild_id, user_id) DO NOTHING
	`, guildID, userID)
	if err != nil {
		return fmt.Errorf("ошибка создания кошелька: %w", err)
	}
	return nil
}

// lockBalances блокирует строку кошелька и возвращает карту балансов.
func lockBalances(ctx context.Context, tx pgx.Tx, guildID, userID string) (map[string]int64, error) {
	var raw []byte
	err := tx.QueryRow(ctx,
		`SELECT balances FROM wallets WHERE guild_id = $1 AND user_id = $2 FOR UPDATE`,
		guildID, userID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка блокировки кошелька: %w", err)
	}

	balances := map[string]int64{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &balances); err != nil {
			return nil, fmt.Errorf("повреждённые балансы кошелька: %w", err)
		}
	}
	return balances, nil
}

func writeBalances(ctx context.Context, tx pgx.Tx, guildID, userID string, balances map[string]int64) error {
	raw, err := json.Marshal(balances)
	if err != nil {
		return fmt.Errorf("ошибка сериализации балансов: %w", err)
	}
	_, err = tx.Exec(ctx,
		`UPDATE wallets SET balances = $3 WHERE guild_id = $1 AND user_id = $2`,
		guildID, userID, raw,
	)
	if err != nil {
		return fmt.Errorf("ошибка записи балансов: %w", err)
	}
	return nil
}

func insertTransaction(ctx context.Context, tx pgx.Tx, t *Transaction) (*Transaction, error) {
	err := tx.QueryRow(ctx, `
		INSERT INTO transactions (guild_id, from_user_id, to_user_id, currency_name, amount, tx_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, t.GuildID, t.FromUserID, t.ToUserID, t.CurrencyName, t.Amount, t.Type).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("ошибка записи транзакции: %w", err)
	}
	return t, nil
}

// rowScanner покрывает pgx.Row и pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanWallet(row rowScanner) (*Wallet, error) {
	var (
		w   Wallet
		raw []byte
	)
	if err := row.Scan(&w.ID, &w.GuildID, &w.UserID, &raw, &w.LastWorked, &w.LastStolen); err != nil {
		return nil, err
	}
	w.Balances = map[string]int64{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &w.Balances); err != nil {
			return nil, fmt.Errorf("повреждённые балансы кошелька: %w", err)
		}
	}
	return &w, nil
}
