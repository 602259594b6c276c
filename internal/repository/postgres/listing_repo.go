package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/powderswap/internal/domain"
)

const listingColumns = `id, title, description, condition, price, location, trade_option,
	is_favorite, photos, seller_id, seller_nickname, seller_rating, seller_deals_count, created_at`

type ListingRepo struct {
	pool *pgxpool.Pool
}

func NewListingRepo(pool *pgxpool.Pool) *ListingRepo {
	return &ListingRepo{pool: pool}
}

func (r *ListingRepo) Create(ctx context.Context, l *domain.Listing) error {
	_, err := r.pool.Exec(ctx, insertListing, listingArgs(l)...)
	return mapWriteErr(err)
}

func (r *ListingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+listingColumns+" FROM listings WHERE id = $1", id)
	l, err := scanListing(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *ListingRepo) List(ctx context.Context) ([]domain.Listing, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+listingColumns+" FROM listings ORDER BY created_at DESC, title")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (r *ListingRepo) ToggleFavorite(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	row := r.pool.QueryRow(ctx,
		"UPDATE listings SET is_favorite = NOT is_favorite WHERE id = $1 RETURNING "+listingColumns, id)
	l, err := scanListing(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ReplaceAll swaps the whole catalog in one transaction.
func (r *ListingRepo) ReplaceAll(ctx context.Context, listings []domain.Listing) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM listings`); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for i := range listings {
		batch.Queue(insertListing, listingArgs(&listings[i])...)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting listings: %w", mapWriteErr(err))
	}

	return tx.Commit(ctx)
}

const insertListing = `
	INSERT INTO listings (id, title, description, condition, price, location, trade_option,
		is_favorite, photos, seller_id, seller_nickname, seller_rating, seller_deals_count, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

func listingArgs(l *domain.Listing) []any {
	photos := l.Photos
	if photos == nil {
		photos = []string{}
	}
	return []any{
		l.ID, l.Title, l.Description, l.Condition.String(), l.Price, l.Location,
		l.TradeOption.String(), l.IsFavorite, photos, l.Seller.ID, l.Seller.Nickname,
		l.Seller.Rating, l.Seller.DealsCount, l.CreatedAt,
	}
}

func scanListing(row pgx.Row) (domain.Listing, error) {
	var l domain.Listing
	var condition, tradeOption string
	err := row.Scan(
		&l.ID, &l.Title, &l.Description, &condition, &l.Price, &l.Location, &tradeOption,
		&l.IsFavorite, &l.Photos, &l.Seller.ID, &l.Seller.Nickname, &l.Seller.Rating,
		&l.Seller.DealsCount, &l.CreatedAt,
	)
	if err != nil {
		return domain.Listing{}, err
	}

	if l.Condition, err = domain.ParseCondition(condition); err != nil {
		return domain.Listing{}, err
	}
	if l.TradeOption, err = domain.ParseTradeOption(tradeOption); err != nil {
		return domain.Listing{}, err
	}
	if len(l.Photos) == 0 {
		l.Photos = nil
	}
	return l, nil
}
