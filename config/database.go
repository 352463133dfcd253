package config

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

func InitDB() (*sql.DB, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			avatar TEXT,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS categories (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			type VARCHAR(16) NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS recurring_series (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name VARCHAR(255) NOT NULL,
			amount NUMERIC(14,2) NOT NULL DEFAULT 0,
			type VARCHAR(16) NOT NULL,
			category_id VARCHAR(64) NOT NULL,
			category_name VARCHAR(255) NOT NULL DEFAULT '',
			owner_id TEXT,
			owner_type VARCHAR(16) NOT NULL DEFAULT 'shared',
			frequency VARCHAR(16) NOT NULL,
			start_date VARCHAR(10) NOT NULL,
			end_date VARCHAR(10),
			anchor_day INTEGER NOT NULL DEFAULT 1,
			status VARCHAR(16) NOT NULL DEFAULT 'active',
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		// Exception ids are the deterministic key {series}_{date}_{suffix},
		// so the primary key doubles as the uniqueness guarantee.
		`CREATE TABLE IF NOT EXISTS recurring_exceptions (
			id VARCHAR(80) PRIMARY KEY,
			recurrence_id UUID NOT NULL,
			date VARCHAR(10) NOT NULL,
			kind VARCHAR(16) NOT NULL,
			created_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name VARCHAR(255) NOT NULL,
			amount NUMERIC(14,2) NOT NULL DEFAULT 0,
			type VARCHAR(16) NOT NULL,
			category_id VARCHAR(64) NOT NULL,
			category_name VARCHAR(255) NOT NULL DEFAULT '',
			owner_id TEXT,
			owner_type VARCHAR(16) NOT NULL DEFAULT 'shared',
			date VARCHAR(10) NOT NULL,
			frequency VARCHAR(16) NOT NULL DEFAULT 'one-time',
			has_receipt BOOLEAN NOT NULL DEFAULT FALSE,
			receipt_url TEXT,
			recurrence_id UUID,
			occurrence_date VARCHAR(10),
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS goals (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			title VARCHAR(255) NOT NULL,
			target_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
			saved_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
			deadline VARCHAR(10),
			owner_id TEXT,
			owner_type VARCHAR(16) NOT NULL DEFAULT 'shared',
			status VARCHAR(16) NOT NULL DEFAULT 'active',
			icon VARCHAR(64) NOT NULL DEFAULT '',
			color VARCHAR(32) NOT NULL DEFAULT 'slate',
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_recurrence_id ON transactions(recurrence_id)`,
		`CREATE INDEX IF NOT EXISTS idx_recurring_exceptions_recurrence_id ON recurring_exceptions(recurrence_id)`,

		`INSERT INTO categories (id, name, type) VALUES
			('salary', 'Salary', 'income'),
			('other-income', 'Other Income', 'income'),
			('housing', 'Housing', 'expense'),
			('groceries', 'Groceries', 'expense'),
			('transport', 'Transport', 'expense'),
			('utilities', 'Utilities', 'expense'),
			('health', 'Health', 'expense'),
			('entertainment', 'Entertainment', 'expense'),
			('subscriptions', 'Subscriptions', 'expense'),
			('other-expense', 'Other', 'expense')
		ON CONFLICT (id) DO NOTHING`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}
