package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// migrations holds the schema statements in apply order. Statements are
// idempotent so the set can be re-run on every startup.
var migrations = []struct {
	name string
	sql  string
}{
	{
		name: "app_user table",
		sql: `
		CREATE TABLE IF NOT EXISTS app_user (
			id BIGSERIAL PRIMARY KEY,
			username VARCHAR(64) NOT NULL UNIQUE,
			password_hash VARCHAR(100) NOT NULL,
			full_name VARCHAR(255),
			phone VARCHAR(32),
			address TEXT,
			user_type VARCHAR(16) NOT NULL DEFAULT 'MEMBER',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`,
	},
	{
		name: "ticket table",
		sql: `
		CREATE TABLE IF NOT EXISTS ticket (
			id BIGSERIAL PRIMARY KEY,
			number_6 CHAR(6) NOT NULL,
			round_date DATE NOT NULL,
			price BIGINT NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'available',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (number_6, round_date)
		);
		CREATE INDEX IF NOT EXISTS idx_ticket_round_status ON ticket(round_date, status);
	`,
	},
	{
		name: "purchase table",
		sql: `
		CREATE TABLE IF NOT EXISTS purchase (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES app_user(id),
			ticket_id BIGINT NOT NULL UNIQUE REFERENCES ticket(id),
			round_date DATE NOT NULL,
			purchase_price BIGINT NOT NULL,
			purchased_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_purchase_user ON purchase(user_id, purchased_at DESC);
		CREATE INDEX IF NOT EXISTS idx_purchase_round ON purchase(round_date);
	`,
	},
	{
		name: "draw table",
		sql: `
		CREATE TABLE IF NOT EXISTS draw (
			id BIGSERIAL PRIMARY KEY,
			draw_date DATE NOT NULL UNIQUE,
			draw_method VARCHAR(16) NOT NULL,
			created_by BIGINT REFERENCES app_user(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`,
	},
	{
		name: "prize_tier table",
		sql: `
		CREATE TABLE IF NOT EXISTS prize_tier (
			id BIGSERIAL PRIMARY KEY,
			tier_rank INT NOT NULL UNIQUE,
			name VARCHAR(64) NOT NULL,
			prize_amount BIGINT NOT NULL
		);
	`,
	},
	{
		name: "prize_outcome table",
		sql: `
		CREATE TABLE IF NOT EXISTS prize_outcome (
			id BIGSERIAL PRIMARY KEY,
			draw_id BIGINT NOT NULL REFERENCES draw(id) ON DELETE CASCADE,
			prize_tier_id BIGINT NOT NULL REFERENCES prize_tier(id),
			number_full CHAR(6),
			suffix_len INT,
			suffix_value VARCHAR(6),
			derived_from_tier INT,
			UNIQUE (draw_id, prize_tier_id)
		);
	`,
	},
	{
		name: "winning_ticket table",
		sql: `
		CREATE TABLE IF NOT EXISTS winning_ticket (
			id BIGSERIAL PRIMARY KEY,
			draw_id BIGINT NOT NULL REFERENCES draw(id) ON DELETE CASCADE,
			prize_tier_id BIGINT NOT NULL REFERENCES prize_tier(id),
			prize_outcome_id BIGINT NOT NULL REFERENCES prize_outcome(id) ON DELETE CASCADE,
			purchase_id BIGINT NOT NULL REFERENCES purchase(id),
			amount BIGINT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_winning_ticket_purchase ON winning_ticket(purchase_id, draw_id);
	`,
	},
	{
		name: "redemption table",
		sql: `
		CREATE TABLE IF NOT EXISTS redemption (
			id BIGSERIAL PRIMARY KEY,
			purchase_id BIGINT NOT NULL REFERENCES purchase(id),
			draw_id BIGINT NOT NULL REFERENCES draw(id),
			amount_total BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (purchase_id, draw_id)
		);
	`,
	},
	{
		name: "wallet_txn table",
		sql: `
		CREATE TABLE IF NOT EXISTS wallet_txn (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES app_user(id),
			type VARCHAR(16) NOT NULL,
			amount BIGINT NOT NULL,
			balance_after BIGINT NOT NULL,
			purchase_id BIGINT REFERENCES purchase(id),
			redemption_id BIGINT REFERENCES redemption(id),
			draw_id BIGINT REFERENCES draw(id),
			note TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_wallet_txn_user_time ON wallet_txn(user_id, created_at DESC, id DESC);
		CREATE INDEX IF NOT EXISTS idx_wallet_txn_user_id ON wallet_txn(user_id, id DESC);
	`,
	},
	{
		name: "session_token table",
		sql: `
		CREATE TABLE IF NOT EXISTS session_token (
			token VARCHAR(64) PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_session_token_expires ON session_token(expires_at);
	`,
	},
}

// Migrate applies the database schema. Safe to call on every startup
// and from test setup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, m := range migrations {
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return err
		}
		log.Debug().Str("migration", m.name).Msg("Migration applied")
	}
	return nil
}

// SeedPrizeTiers inserts the default five prize tiers if the table is
// empty. Tier amounts can be changed later by an owner.
func SeedPrizeTiers(ctx context.Context, pool *pgxpool.Pool) error {
	const query = `
		INSERT INTO prize_tier (tier_rank, name, prize_amount)
		VALUES
			(1, 'First Prize', 1000000),
			(2, 'Second Prize', 200000),
			(3, 'Third Prize', 80000),
			(4, 'Last 3 Digits', 4000),
			(5, 'Last 2 Digits', 2000)
		ON CONFLICT (tier_rank) DO NOTHING
	`
	if _, err := pool.Exec(ctx, query); err != nil {
		return err
	}
	return nil
}
