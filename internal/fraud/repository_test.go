package fraud

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/richxcame/gear-rental/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// MOCK DATABASE
// ============================================================================

// MockDB implements DBInterface for testing
type MockDB struct {
	ExecFunc     func(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	QueryFunc    func(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRowFunc func(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (m *MockDB) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, sql, args...)
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (m *MockDB) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, sql, args...)
	}
	return &mockRows{}, nil
}

func (m *MockDB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	if m.QueryRowFunc != nil {
		return m.QueryRowFunc(ctx, sql, args...)
	}
	return &mockRow{err: pgx.ErrNoRows}
}

// mockRow scans a fixed set of values, or fails with err
type mockRow struct {
	values []interface{}
	err    error
}

func (r *mockRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	return assign(dest, r.values)
}

// mockRows iterates over rows of values
type mockRows struct {
	rows   [][]interface{}
	pos    int
	err    error
	closed bool
}

func (r *mockRows) Close()                                       { r.closed = true }
func (r *mockRows) Err() error                                   { return r.err }
func (r *mockRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *mockRows) Values() ([]interface{}, error)               { return r.rows[r.pos-1], nil }
func (r *mockRows) RawValues() [][]byte                          { return nil }
func (r *mockRows) Conn() *pgx.Conn                              { return nil }

func (r *mockRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *mockRows) Scan(dest ...interface{}) error {
	return assign(dest, r.rows[r.pos-1])
}

func assign(dest, values []interface{}) error {
	if len(dest) != len(values) {
		return errors.New("column count mismatch")
	}
	for i, v := range values {
		reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(v))
	}
	return nil
}

// ============================================================================
// HELPERS
// ============================================================================

func userRow(id uuid.UUID, created time.Time) []interface{} {
	city := "Denver"
	return []interface{}{
		id, "hiker@example.com", "Alex", "Rivera", true, false,
		&city, (*string)(nil), created, created,
	}
}

func rentalRow(id, renter, owner uuid.UUID, status models.RentalStatus, created time.Time) []interface{} {
	return []interface{}{
		id, uuid.New(), renter, owner, status,
		created, created.Add(48 * time.Hour), 40.0, created, created,
	}
}

func listingRow(id, owner uuid.UUID, images []string, created time.Time) []interface{} {
	return []interface{}{
		id, owner, "2-person tent", "Lightweight backpacking tent", models.CategoryCamping, 35.0,
		images, "Boulder", "CO", "US", (*float64)(nil), (*float64)(nil),
		true, created, created,
	}
}

// ============================================================================
// TESTS
// ============================================================================

func TestRepository_FindUserByID(t *testing.T) {
	id := uuid.New()
	created := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		db := &MockDB{QueryRowFunc: func(_ context.Context, sql string, args ...interface{}) pgx.Row {
			assert.Contains(t, sql, "deleted_at IS NULL")
			assert.Equal(t, []interface{}{id}, args)
			return &mockRow{values: userRow(id, created)}
		}}

		u, err := NewRepository(db).FindUserByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, u.ID)
		assert.Equal(t, created, u.CreatedAt)
		require.NotNil(t, u.City)
		assert.Equal(t, "Denver", *u.City)
		assert.Nil(t, u.Country)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := NewRepository(&MockDB{}).FindUserByID(context.Background(), id)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("query failure", func(t *testing.T) {
		cause := errors.New("conn busy")
		db := &MockDB{QueryRowFunc: func(context.Context, string, ...interface{}) pgx.Row {
			return &mockRow{err: cause}
		}}

		_, err := NewRepository(db).FindUserByID(context.Background(), id)
		assert.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, ErrUserNotFound)
	})
}

func TestRepository_FindTransactionsForUser(t *testing.T) {
	userID := uuid.New()
	created := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	t.Run("scans both sides of the marketplace", func(t *testing.T) {
		rows := &mockRows{rows: [][]interface{}{
			rentalRow(uuid.New(), userID, uuid.New(), models.RentalStatusCompleted, created),
			rentalRow(uuid.New(), uuid.New(), userID, models.RentalStatusCancelled, created.Add(time.Hour)),
		}}
		db := &MockDB{QueryFunc: func(_ context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
			assert.Contains(t, sql, "renter_id = $1 OR owner_id = $1")
			return rows, nil
		}}

		rentals, err := NewRepository(db).FindTransactionsForUser(context.Background(), userID)
		require.NoError(t, err)
		require.Len(t, rentals, 2)
		assert.True(t, rentals[0].Succeeded())
		assert.Equal(t, userID, rentals[1].OwnerID)
		assert.True(t, rows.closed)
	})

	t.Run("no history", func(t *testing.T) {
		rentals, err := NewRepository(&MockDB{}).FindTransactionsForUser(context.Background(), userID)
		require.NoError(t, err)
		assert.Empty(t, rentals)
	})

	t.Run("iteration failure", func(t *testing.T) {
		db := &MockDB{QueryFunc: func(context.Context, string, ...interface{}) (pgx.Rows, error) {
			return &mockRows{err: errors.New("unexpected EOF")}, nil
		}}

		_, err := NewRepository(db).FindTransactionsForUser(context.Background(), userID)
		assert.ErrorContains(t, err, "query rentals")
	})
}

func TestRepository_FindListingByID(t *testing.T) {
	id, owner := uuid.New(), uuid.New()
	created := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	db := &MockDB{QueryRowFunc: func(context.Context, string, ...interface{}) pgx.Row {
		return &mockRow{values: listingRow(id, owner, []string{"a.jpg", "b.jpg"}, created)}
	}}

	l, err := NewRepository(db).FindListingByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, owner, l.OwnerID)
	assert.Equal(t, models.CategoryCamping, l.Category)
	assert.Len(t, l.Images, 2)

	_, err = NewRepository(&MockDB{}).FindListingByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestRepository_FindListingsByOwner(t *testing.T) {
	owner := uuid.New()
	created := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	db := &MockDB{QueryFunc: func(_ context.Context, _ string, args ...interface{}) (pgx.Rows, error) {
		assert.Equal(t, []interface{}{owner}, args)
		return &mockRows{rows: [][]interface{}{
			listingRow(uuid.New(), owner, []string{}, created),
			listingRow(uuid.New(), owner, []string{"c.jpg"}, created.Add(24*time.Hour)),
		}}, nil
	}}

	listings, err := NewRepository(db).FindListingsByOwner(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Empty(t, listings[0].Images)

	failing := &MockDB{QueryFunc: func(context.Context, string, ...interface{}) (pgx.Rows, error) {
		return nil, errors.New("relation \"listings\" does not exist")
	}}
	_, err = NewRepository(failing).FindListingsByOwner(context.Background(), owner)
	assert.ErrorContains(t, err, "query listings")
}

func TestRepository_InsertAssessment(t *testing.T) {
	a := blockedAssessment()

	var got []interface{}
	db := &MockDB{ExecFunc: func(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
		assert.Contains(t, sql, "INSERT INTO fraud_assessments")
		got = args
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}}

	require.NoError(t, NewRepository(db).InsertAssessment(context.Background(), a))
	require.Len(t, got, 11)
	assert.Equal(t, a.ID, got[0])
	assert.Equal(t, a.RiskScore, got[3])
	assert.Equal(t, false, got[8])

	var signals []Signal
	require.NoError(t, json.Unmarshal(got[5].([]byte), &signals))
	assert.Len(t, signals, len(a.Signals))

	cause := errors.New("check constraint violated")
	failing := &MockDB{ExecFunc: func(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
		return pgconn.CommandTag{}, cause
	}}
	assert.ErrorIs(t, NewRepository(failing).InsertAssessment(context.Background(), a), cause)
}
