package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/groblegark/dockhand/internal/model"
)

// Postgres implements Store on top of the shared database handle. The
// session row is fully replaced on every Put; there are no partial updates.
type Postgres struct {
	db *sql.DB
}

// Compile-time check that Postgres implements Store.
var _ Store = (*Postgres)(nil)

// NewPostgres wraps an open database handle. Schema is managed by the
// repository migrations.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Get(ctx context.Context, operator string) (*model.Session, error) {
	var blob []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT blob FROM sessions WHERE operator = $1`, operator).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", operator, err)
	}
	var s model.Session
	if err := json.Unmarshal(blob, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", operator, err)
	}
	return &s, nil
}

func (p *Postgres) Put(ctx context.Context, s *model.Session) error {
	blob, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.Operator, err)
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO sessions (operator, blob, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (operator) DO UPDATE SET blob = $2, updated_at = $3`,
		s.Operator, blob, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("put session %s: %w", s.Operator, err)
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, operator string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM sessions WHERE operator = $1`, operator)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", operator, err)
	}
	return nil
}

func (p *Postgres) PutSecondary(ctx context.Context, operator, key string, payload any) error {
	blob, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload for %s: %w", key, operator, err)
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO session_payloads (operator, key, blob, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (operator, key) DO UPDATE SET blob = $3, updated_at = $4`,
		operator, key, blob, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("put %s payload for %s: %w", key, operator, err)
	}
	return nil
}

func (p *Postgres) GetSecondary(ctx context.Context, operator, key string, dest any) error {
	var blob []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT blob FROM session_payloads WHERE operator = $1 AND key = $2`,
		operator, key).Scan(&blob)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s payload for %s: %w", key, operator, err)
	}
	return json.Unmarshal(blob, dest)
}

func (p *Postgres) DeleteSecondary(ctx context.Context, operator, key string) error {
	_, err := p.db.ExecContext(ctx,
		`DELETE FROM session_payloads WHERE operator = $1 AND key = $2`, operator, key)
	if err != nil {
		return fmt.Errorf("delete %s payload for %s: %w", key, operator, err)
	}
	return nil
}

// Close is a no-op; the database handle is owned by the repository.
func (p *Postgres) Close() error {
	return nil
}
