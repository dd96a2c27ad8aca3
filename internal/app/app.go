// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, сессию Discord, репозитории,
// сервисы, обработчики и собирает всё в один объект Bot.
package app

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"dndbot/internal/bot"
	"dndbot/internal/config"
	"dndbot/internal/db/postgres"
	"dndbot/internal/features/actions"
	"dndbot/internal/features/character"
	"dndbot/internal/features/currency"
	"dndbot/internal/features/debt"
	"dndbot/internal/features/reputation"
	"dndbot/internal/features/settings"
	"dndbot/internal/features/shop"
	"dndbot/internal/features/wallet"
	"dndbot/internal/jobs"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool
	Session   *discordgo.Session
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга:
// сессия Discord открывается до сборки сервисов, потому что кошелёк
// казны привязан к учётной записи самого бота.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Сессия Discord ===
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка создания сессии Discord: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	if err := session.Open(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка подключения к Discord: %w", err)
	}
	log.Infof("Авторизован как %s", session.State.User.Username)

	// Казна — кошелёк самого бота
	treasuryID := session.State.User.ID

	// === 3. Репозитории ===
	currencyRepo := currency.NewRepository(pool)
	walletRepo := wallet.NewRepository(pool)
	debtRepo := debt.NewRepository(pool)
	shopRepo := shop.NewRepository(pool)
	reputationRepo := reputation.NewRepository(pool)
	characterRepo := character.NewRepository(pool)
	settingsRepo := settings.NewRepository(pool)

	// === 4. Сервисы ===
	settingsService := settings.NewService(settingsRepo)
	notifier := bot.NewNotifier(session, settingsService)

	currencyService := currency.NewService(currencyRepo)
	walletService := wallet.NewService(walletRepo, currencyService, treasuryID)
	actionsService := actions.NewService(walletService, currencyService, cfg)
	debtService := debt.NewService(debtRepo, walletService, currencyService)
	shopService := shop.NewService(shopRepo, walletService, currencyService, notifier)
	reputationService := reputation.NewService(reputationRepo)
	characterService := character.NewService(characterRepo)

	// === 5. Обработчики ===
	currencyHandler := currency.NewHandler(currencyService)
	walletHandler := wallet.NewHandler(walletService, currencyService, shopService, notifier)
	actionsHandler := actions.NewHandler(actionsService, notifier)
	debtHandler := debt.NewHandler(debtService, notifier)
	shopHandler := shop.NewHandler(shopService)
	reputationHandler := reputation.NewHandler(reputationService)
	characterHandler := character.NewHandler(characterService)
	settingsHandler := settings.NewHandler(settingsService)

	// === 6. Собираем бота ===
	b := bot.New(session,
		currencyHandler,
		walletHandler,
		actionsHandler,
		debtHandler,
		shopHandler,
		reputationHandler,
		characterHandler,
		settingsHandler,
	)

	// === 7. Планировщик задач ===
	scheduler := jobs.NewScheduler(shopService, cfg.AppTimezone)

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		DB:        pool,
		Session:   session,
	}, nil
}

// runMigrations выполняет все SQL-миграции.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if err := postgres.EnsureMigrationsTable(ctx, pool); err != nil {
		return err
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Currencies},
		{2, migration002Wallets},
		{3, migration003Debts},
		{4, migration004Shops},
		{5, migration005Reputation},
		{6, migration006Characters},
		{7, migration007GuildSettings},
	}

	for _, m := range migrations {
		if err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("миграция %d: %w", m.version, err)
		}
		log.Infof("Миграция %d применена", m.version)
	}

	return nil
}

// SQL-миграции встроены в код для упрощения деплоя.

var migration001Currencies = `
CREATE TABLE IF NOT EXISTS currencies (
    id BIGSERIAL PRIMARY KEY,
    guild_id VARCHAR(32) NOT NULL,
    name VARCHAR(255) NOT NULL,
    symbol VARCHAR(32) NOT NULL,
    UNIQUE (guild_id, name)
);
CREATE INDEX IF NOT EXISTS idx_currencies_guild ON currencies(guild_id);
`

var migration002Wallets = `
CREATE TABLE IF NOT EXISTS wallets (
    id BIGSERIAL PRIMARY KEY,
    guild_id VARCHAR(32) NOT NULL,
    user_id VARCHAR(32) NOT NULL,
    balances JSONB NOT NULL DEFAULT '{}',
    last_worked TIMESTAMPTZ,
    last_stolen TIMESTAMPTZ,
    UNIQUE (guild_id, user_id)
);
CREATE INDEX IF NOT EXISTS idx_wallets_guild ON wallets(guild_id);
CREATE TABLE IF NOT EXISTS transactions (
    id BIGSERIAL PRIMARY KEY,
    guild_id VARCHAR(32) NOT NULL,
    from_user_id VARCHAR(32),
    to_user_id VARCHAR(32),
    currency_name VARCHAR(255) NOT NULL,
    amount BIGINT NOT NULL,
    tx_type VARCHAR(32) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_transactions_guild_from ON transactions(guild_id, from_user_id);
CREATE INDEX IF NOT EXISTS idx_transactions_guild_to ON transactions(guild_id, to_user_id);
CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions(created_at DESC);
`

var migration003Debts = `
CREATE TABLE IF NOT EXISTS debts (
    id BIGSERIAL PRIMARY KEY,
    guild_id VARCHAR(32) NOT NULL,
    user_id VARCHAR(32) NOT NULL,
    currency_name VARCHAR(255) NOT NULL,
    principal BIGINT NOT NULL,
    loan_date TIMESTAMPTZ NOT NULL,
    penalized BOOLEAN NOT NULL DEFAULT FALSE,
    UNIQUE (guild_id, user_id, currency_name)
);
`

var migration004Shops = `
CREATE TABLE IF NOT EXISTS shops (
    id UUID PRIMARY KEY,
    guild_id VARCHAR(32) NOT NULL,
    user_id VARCHAR(32) NOT NULL,
    name VARCHAR(255) NOT NULL,
    type VARCHAR(255) NOT NULL,
    size VARCHAR(16) NOT NULL,
    image_url TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    last_payout TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_shops_guild_user ON shops(guild_id, user_id);
`

var migration005Reputation = `
CREATE TABLE IF NOT EXISTS reputation (
    guild_id VARCHAR(32) NOT NULL,
    user_id VARCHAR(32) NOT NULL,
    points BIGINT NOT NULL DEFAULT 0,
    PRIMARY KEY (guild_id, user_id)
);
`

var migration006Characters = `
CREATE TABLE IF NOT EXISTS characters (
    id UUID PRIMARY KEY,
    guild_id VARCHAR(32) NOT NULL,
    user_id VARCHAR(32) NOT NULL,
    name VARCHAR(255) NOT NULL,
    level INTEGER NOT NULL,
    class VARCHAR(64) NOT NULL,
    race VARCHAR(64) NOT NULL,
    rank VARCHAR(32) NOT NULL,
    image_url TEXT NOT NULL DEFAULT '',
    n20_url TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_characters_guild_user ON characters(guild_id, user_id);
`

var migration007GuildSettings = `
CREATE TABLE IF NOT EXISTS guild_settings (
    guild_id VARCHAR(32) PRIMARY KEY,
    transaction_log_channel VARCHAR(32) NOT NULL DEFAULT ''
);
`
