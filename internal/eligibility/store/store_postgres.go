package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"docverify/internal/eligibility"
	"docverify/pkg/platform/sentinel"
)

// PostgresStore persists profiles as JSONB in the policy_profiles table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed profile store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, name string) (*eligibility.PolicyInput, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT policy FROM policy_profiles WHERE name = $1`, name).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find policy profile: %w", err)
	}

	var in eligibility.PolicyInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("unmarshal policy profile: %w", err)
	}
	return &in, nil
}

func (s *PostgresStore) Put(ctx context.Context, name string, in *eligibility.PolicyInput) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal policy profile: %w", err)
	}
	query := `
		INSERT INTO policy_profiles (name, policy)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET
			policy = EXCLUDED.policy,
			updated_at = now()
	`
	if _, err := s.db.ExecContext(ctx, query, name, string(raw)); err != nil {
		return fmt.Errorf("save policy profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM policy_profiles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list policy profiles: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan policy profile name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate policy profiles: %w", err)
	}
	return names, nil
}
