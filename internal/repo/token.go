package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// TokenRepo records auth tokens revoked by logout before they expire.
type TokenRepo interface {
	// Revoke marks jti as unusable until expiresAt. Idempotent.
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error

	// IsRevoked reports whether jti has been revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// PurgeExpired deletes revocations whose token has expired anyway.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type pgTokenRepo struct {
	db db
}

// NewTokenRepo constructs a TokenRepo backed by the provided db connection.
func NewTokenRepo(db db) TokenRepo {
	return &pgTokenRepo{db: db}
}

func (r *pgTokenRepo) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	const q = `
		INSERT INTO revoked_tokens (jti, expires_at)
		VALUES (@jti, @expires_at)
		ON CONFLICT (jti) DO NOTHING`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"jti": jti, "expires_at": expiresAt}); err != nil {
		return fmt.Errorf("repo.TokenRepo.Revoke: %w", err)
	}
	return nil
}

func (r *pgTokenRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = @jti)`

	var revoked bool
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"jti": jti}).Scan(&revoked); err != nil {
		return false, fmt.Errorf("repo.TokenRepo.IsRevoked: %w", err)
	}
	return revoked, nil
}

func (r *pgTokenRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at < @now`, pgx.NamedArgs{"now": now})
	if err != nil {
		return 0, fmt.Errorf("repo.TokenRepo.PurgeExpired: %w", err)
	}
	return tag.RowsAffected(), nil
}
