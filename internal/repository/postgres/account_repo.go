package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/powderswap/internal/domain"
	"github.com/vedran77/powderswap/internal/repository"
)

const uniqueViolation = "23505"

const accountColumns = `id, username, password_hash, seller_id, nickname, rating, deals_count,
	email, location, bio, created_at, updated_at`

type AccountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	query := `
		INSERT INTO accounts (id, username, username_key, password_hash, seller_id, nickname,
			rating, deals_count, email, location, bio, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.Username, repository.FoldUsername(a.Username), a.PasswordHash,
		a.Seller.ID, a.Seller.Nickname, a.Seller.Rating, a.Seller.DealsCount,
		a.Email, a.Location, a.Bio, a.CreatedAt, a.UpdatedAt,
	)
	return mapWriteErr(err)
}

func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return r.scanAccount(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id = $1", id)
}

func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.scanAccount(ctx, "SELECT "+accountColumns+" FROM accounts WHERE username_key = $1", repository.FoldUsername(username))
}

func (r *AccountRepo) GetBySellerID(ctx context.Context, sellerID uuid.UUID) (*domain.Account, error) {
	return r.scanAccount(ctx, "SELECT "+accountColumns+" FROM accounts WHERE seller_id = $1", sellerID)
}

func (r *AccountRepo) Update(ctx context.Context, a *domain.Account) error {
	query := `
		UPDATE accounts
		SET username = $1, username_key = $2, password_hash = $3, nickname = $4, rating = $5,
			deals_count = $6, email = $7, location = $8, bio = $9, updated_at = $10
		WHERE id = $11`

	tag, err := r.pool.Exec(ctx, query,
		a.Username, repository.FoldUsername(a.Username), a.PasswordHash, a.Seller.Nickname,
		a.Seller.Rating, a.Seller.DealsCount, a.Email, a.Location, a.Bio, a.UpdatedAt, a.ID,
	)
	if err != nil {
		return mapWriteErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AccountRepo) AddFollow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	query := `
		INSERT INTO follows (follower_id, followee_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`
	_, err := r.pool.Exec(ctx, query, followerID, followeeID)
	return err
}

func (r *AccountRepo) RemoveFollow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`, followerID, followeeID)
	return err
}

func (r *AccountRepo) scanAccount(ctx context.Context, query string, arg any) (*domain.Account, error) {
	var a domain.Account
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&a.ID, &a.Username, &a.PasswordHash, &a.Seller.ID, &a.Seller.Nickname,
		&a.Seller.Rating, &a.Seller.DealsCount, &a.Email, &a.Location, &a.Bio,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadFollows(ctx, &a); err != nil {
		return nil, fmt.Errorf("loading follows: %w", err)
	}
	return &a, nil
}

// loadFollows fills both directions of the follow graph for a's seller.
func (r *AccountRepo) loadFollows(ctx context.Context, a *domain.Account) error {
	query := `
		SELECT followee_id, TRUE FROM follows WHERE follower_id = $1
		UNION ALL
		SELECT follower_id, FALSE FROM follows WHERE followee_id = $1`

	rows, err := r.pool.Query(ctx, query, a.Seller.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	a.FollowingSellerIDs = domain.NewIDSet()
	a.FollowerSellerIDs = domain.NewIDSet()
	for rows.Next() {
		var id uuid.UUID
		var outgoing bool
		if err := rows.Scan(&id, &outgoing); err != nil {
			return err
		}
		if outgoing {
			a.FollowingSellerIDs.Add(id)
		} else {
			a.FollowerSellerIDs.Add(id)
		}
	}
	return rows.Err()
}

func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrConflict
	}
	return err
}
