package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresClient struct {
	Pool *pgxpool.Pool
}

func NewPostgresClient(connString string) (*PostgresClient, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	// Pool configuration
	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	client := &PostgresClient{Pool: pool}

	// Auto-migrate schema
	if err := client.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return client, nil
}

func (p *PostgresClient) Migrate() error {
	ctx := context.Background()

	_, err := p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(20) DEFAULT 'user',
			business_id VARCHAR(64) DEFAULT '',
			email_verified BOOLEAN DEFAULT FALSE,
			is_active BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("create users table: %w", err)
	}

	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS businesses (
			id VARCHAR(64) PRIMARY KEY,
			owner_user_id INT NOT NULL REFERENCES users(id),
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			phone_number VARCHAR(32) DEFAULT '',
			is_active BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("create businesses table: %w", err)
	}

	// The unique constraint on business_id is the actual create-if-absent
	// guarantee; the service-level existence check is only a fast path.
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS agent_records (
			id SERIAL PRIMARY KEY,
			business_id VARCHAR(64) UNIQUE NOT NULL REFERENCES businesses(id),
			remote_agent_id VARCHAR(128) NOT NULL,
			voice_id VARCHAR(64) NOT NULL,
			voice_name VARCHAR(64) NOT NULL,
			config_hash VARCHAR(64) NOT NULL,
			first_message TEXT NOT NULL,
			goodbye_message TEXT DEFAULT '',
			system_prompt_override TEXT DEFAULT '',
			temperature DOUBLE PRECISION DEFAULT 0.5,
			ask_for_name BOOLEAN DEFAULT FALSE,
			ask_for_phone BOOLEAN DEFAULT FALSE,
			ask_for_email BOOLEAN DEFAULT FALSE,
			ask_for_company BOOLEAN DEFAULT FALSE,
			ask_for_address BOOLEAN DEFAULT FALSE,
			is_active BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("create agent_records table: %w", err)
	}

	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS knowledge_entries (
			id SERIAL PRIMARY KEY,
			business_id VARCHAR(64) NOT NULL REFERENCES businesses(id),
			title VARCHAR(256) NOT NULL,
			content TEXT NOT NULL,
			is_active BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("create knowledge_entries table: %w", err)
	}

	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS call_usage (
			business_id VARCHAR(64) NOT NULL,
			date DATE NOT NULL,
			calls_received INT DEFAULT 0,
			PRIMARY KEY (business_id, date)
		);
	`)
	if err != nil {
		return fmt.Errorf("create call_usage table: %w", err)
	}

	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS verification_codes (
			id SERIAL PRIMARY KEY,
			user_id INT NOT NULL REFERENCES users(id),
			code VARCHAR(6) NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			used BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("create verification_codes table: %w", err)
	}

	return nil
}

func (p *PostgresClient) Close() {
	p.Pool.Close()
}
