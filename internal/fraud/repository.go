package fraud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/richxcame/gear-rental/pkg/models"
	"github.com/richxcame/gear-rental/pkg/tracing"
)

// DBInterface is the subset of *pgxpool.Pool the repository uses
type DBInterface interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

var _ DBInterface = (*pgxpool.Pool)(nil)

// Repository reads marketplace records and appends fraud assessments
type Repository struct {
	db DBInterface
}

// NewRepository creates a new fraud repository
func NewRepository(db DBInterface) *Repository {
	return &Repository{db: db}
}

var (
	_ RepositoryInterface = (*Repository)(nil)
	_ AssessmentWriter    = (*Repository)(nil)
)

// FindUserByID returns ErrUserNotFound for absent or deleted accounts
func (r *Repository) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `
		SELECT id, email, first_name, last_name, is_active, is_verified,
		       city, country, created_at, updated_at
		FROM users
		WHERE id = $1 AND deleted_at IS NULL
	`

	var u models.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.IsActive,
		&u.IsVerified,
		&u.City,
		&u.Country,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}

// FindTransactionsForUser returns every rental where the user is renter or owner
func (r *Repository) FindTransactionsForUser(ctx context.Context, userID uuid.UUID) ([]*models.Rental, error) {
	query := `
		SELECT id, listing_id, renter_id, owner_id, status,
		       start_date, end_date, daily_rate, created_at, updated_at
		FROM rentals
		WHERE renter_id = $1 OR owner_id = $1
		ORDER BY created_at
	`

	var rentals []*models.Rental
	err := tracing.TraceDBQuery(ctx, tracerName, "select", query, func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, query, userID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var rt models.Rental
			if err := rows.Scan(
				&rt.ID,
				&rt.ListingID,
				&rt.RenterID,
				&rt.OwnerID,
				&rt.Status,
				&rt.StartDate,
				&rt.EndDate,
				&rt.DailyRate,
				&rt.CreatedAt,
				&rt.UpdatedAt,
			); err != nil {
				return err
			}
			rentals = append(rentals, &rt)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("query rentals: %w", err)
	}
	return rentals, nil
}

const listingColumns = `
	id, owner_id, title, COALESCE(description, ''), category, daily_rate,
	COALESCE(images, '{}'), city, state, country, latitude, longitude,
	is_active, created_at, updated_at
`

func scanListing(row pgx.Row) (*models.Listing, error) {
	var l models.Listing
	err := row.Scan(
		&l.ID,
		&l.OwnerID,
		&l.Title,
		&l.Description,
		&l.Category,
		&l.DailyRate,
		&l.Images,
		&l.City,
		&l.State,
		&l.Country,
		&l.Latitude,
		&l.Longitude,
		&l.IsActive,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// FindListingByID returns ErrListingNotFound when the listing does not exist
func (r *Repository) FindListingByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`

	l, err := scanListing(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query listing: %w", err)
	}
	return l, nil
}

// FindListingsByOwner returns the user's own listings, oldest first
func (r *Repository) FindListingsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE owner_id = $1 ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	return listings, nil
}

// InsertAssessment appends an assessment to fraud_assessments
func (r *Repository) InsertAssessment(ctx context.Context, a *Assessment) error {
	signalsJSON, err := json.Marshal(a.Signals)
	if err != nil {
		return fmt.Errorf("marshal signals: %w", err)
	}
	recommendationsJSON, err := json.Marshal(a.Recommendations)
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}
	contextJSON, err := json.Marshal(a.Context)
	if err != nil {
		return fmt.Errorf("marshal context: %w", err)
	}

	query := `
		INSERT INTO fraud_assessments (
			id, user_id, action_type, risk_score, risk_level, signals,
			recommendations, action_required, allow_transaction, context, assessed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	return tracing.TraceDBQuery(ctx, tracerName, "insert", query, func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, query,
			a.ID,
			a.UserID,
			a.ActionType,
			a.RiskScore,
			a.RiskLevel,
			signalsJSON,
			recommendationsJSON,
			a.ActionRequired,
			a.AllowTransaction,
			contextJSON,
			a.AssessedAt,
		)
		return err
	})
}
