package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type UsageRepository struct {
	db *pgxpool.Pool
}

type UsageStatus struct {
	TodayCalls int `json:"today_calls"`
	MonthCalls int `json:"month_calls"`
}

func NewUsageRepository(db *pgxpool.Pool) *UsageRepository {
	return &UsageRepository{db: db}
}

// IncrementCalls increments the call counter for today
func (r *UsageRepository) IncrementCalls(ctx context.Context, businessID string) error {
	today := time.Now().Format("2006-01-02")
	_, err := r.db.Exec(ctx, `
		INSERT INTO call_usage (business_id, date, calls_received)
		VALUES ($1, $2, 1)
		ON CONFLICT (business_id, date)
		DO UPDATE SET calls_received = call_usage.calls_received + 1
	`, businessID, today)
	return err
}

// GetUsageStatus returns today's and this month's call counts
func (r *UsageRepository) GetUsageStatus(ctx context.Context, businessID string) (*UsageStatus, error) {
	today := time.Now().Format("2006-01-02")
	monthStart := time.Now().Format("2006-01") + "-01"

	var status UsageStatus
	err := r.db.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(calls_received) FILTER (WHERE date = $2), 0),
			COALESCE(SUM(calls_received), 0)
		FROM call_usage
		WHERE business_id = $1 AND date >= $3
	`, businessID, today, monthStart).Scan(&status.TodayCalls, &status.MonthCalls)
	if err != nil {
		return nil, err
	}
	return &status, nil
}
