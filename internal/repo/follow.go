package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/foodgram/backend/internal/domain"
)

// FollowRepo defines the persistence operations for author subscriptions.
type FollowRepo interface {
	// Add subscribes userID to authorID.
	// Returns domain.ErrConflict if the subscription already exists and
	// domain.ErrNotFound if either user does not exist.
	Add(ctx context.Context, userID, authorID uuid.UUID) error

	// Remove deletes a subscription. Returns domain.ErrNotFound if absent.
	Remove(ctx context.Context, userID, authorID uuid.UUID) error

	// SubscribedTo reports, for each of authorIDs, whether userID follows them.
	// Authors not followed are absent from the map.
	SubscribedTo(ctx context.Context, userID uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error)

	// ListAuthorsPaged returns one page of authors userID follows, ordered by
	// subscription time, and the total count.
	ListAuthorsPaged(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.User, int64, error)
}

// pgFollowRepo is the Postgres implementation of FollowRepo.
type pgFollowRepo struct {
	db db
}

// NewFollowRepo constructs a FollowRepo backed by the provided db connection.
func NewFollowRepo(db db) FollowRepo {
	return &pgFollowRepo{db: db}
}

func (r *pgFollowRepo) Add(ctx context.Context, userID, authorID uuid.UUID) error {
	const q = `INSERT INTO follows (user_id, author_id) VALUES (@user_id, @author_id)`

	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{"user_id": userID, "author_id": authorID})
	if err != nil {
		switch pgCode(err) {
		case pgUniqueViolation:
			return fmt.Errorf("repo.FollowRepo.Add: %w: already subscribed", domain.ErrConflict)
		case pgForeignKeyViolation:
			return fmt.Errorf("repo.FollowRepo.Add: %w", domain.ErrNotFound)
		case pgCheckViolation:
			return fmt.Errorf("repo.FollowRepo.Add: %w: cannot subscribe to yourself", domain.ErrValidation)
		}
		return fmt.Errorf("repo.FollowRepo.Add: %w", err)
	}
	return nil
}

func (r *pgFollowRepo) Remove(ctx context.Context, userID, authorID uuid.UUID) error {
	const q = `DELETE FROM follows WHERE user_id = @user_id AND author_id = @author_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"user_id": userID, "author_id": authorID})
	if err != nil {
		return fmt.Errorf("repo.FollowRepo.Remove: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.FollowRepo.Remove: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgFollowRepo) SubscribedTo(ctx context.Context, userID uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(authorIDs))
	if len(authorIDs) == 0 {
		return out, nil
	}

	const q = `
		SELECT author_id
		FROM follows
		WHERE user_id = @user_id AND author_id = ANY(@author_ids)`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"user_id": userID, "author_ids": authorIDs})
	if err != nil {
		return nil, fmt.Errorf("repo.FollowRepo.SubscribedTo: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id pgtype.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("repo.FollowRepo.SubscribedTo: scan: %w", err)
		}
		out[uuid.UUID(id.Bytes)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.FollowRepo.SubscribedTo: rows: %w", err)
	}
	return out, nil
}

func (r *pgFollowRepo) ListAuthorsPaged(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.User, int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM follows WHERE user_id = @user_id`,
		pgx.NamedArgs{"user_id": userID}).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.FollowRepo.ListAuthorsPaged: count: %w", err)
	}

	const q = `
		SELECT u.id, u.email, u.username, u.first_name, u.last_name, u.password_hash, u.created_at
		FROM follows f
		JOIN users u ON u.id = f.author_id
		WHERE f.user_id = @user_id
		ORDER BY f.created_at, u.username
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"user_id": userID, "limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.FollowRepo.ListAuthorsPaged: %w", err)
	}
	defer rows.Close()

	authors := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.FollowRepo.ListAuthorsPaged: scan: %w", err)
		}
		authors = append(authors, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.FollowRepo.ListAuthorsPaged: rows: %w", err)
	}
	return authors, total, nil
}
