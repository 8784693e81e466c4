// Package store persists Threadly session credentials on the client device.
// Storage is durable across restarts but scoped to the device; nothing here
// synchronizes across machines.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/goliatone/go-errors"
	threadly "github.com/goliatone/threadly-client"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// credentialRow is the single-row table holding the current session. Token
// and identity live in one row so every write replaces both together and a
// reader never sees one without the other.
type credentialRow struct {
	bun.BaseModel `bun:"table:credentials"`

	ID        int64     `bun:"id,pk"`
	Token     string    `bun:"token,notnull"`
	Identity  []byte    `bun:"identity,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

const credentialRowID = 1

// SQLiteStore is the durable CredentialStore backed by bun over sqlite.
type SQLiteStore struct {
	db *bun.DB
}

// NewSQLiteStore opens (or creates) the credentials database at path and
// ensures the schema exists.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to open credentials database")
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	s := &SQLiteStore{db: db}

	if _, err := db.NewCreateTable().
		Model((*credentialRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create credentials table")
	}

	return s, nil
}

// Save replaces the stored session in a single upsert.
func (s *SQLiteStore) Save(ctx context.Context, creds threadly.Credentials) error {
	payload, err := json.Marshal(creds.Identity)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to encode identity")
	}

	row := &credentialRow{
		ID:        credentialRowID,
		Token:     creds.Token,
		Identity:  payload,
		UpdatedAt: time.Now(),
	}

	_, err = s.db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("token = EXCLUDED.token").
		Set("identity = EXCLUDED.identity").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to persist credentials")
	}

	return nil
}

// Load returns the stored session, or threadly.ErrNoCredentials when nothing
// is persisted.
func (s *SQLiteStore) Load(ctx context.Context) (threadly.Credentials, error) {
	row := new(credentialRow)
	err := s.db.NewSelect().
		Model(row).
		Where("id = ?", credentialRowID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return threadly.Credentials{}, threadly.ErrNoCredentials
		}
		return threadly.Credentials{}, errors.Wrap(err, errors.CategoryInternal, "failed to load credentials")
	}

	var identity threadly.Identity
	if err := json.Unmarshal(row.Identity, &identity); err != nil {
		return threadly.Credentials{}, errors.Wrap(err, errors.CategoryInternal, "failed to decode stored identity")
	}

	return threadly.Credentials{Token: row.Token, Identity: identity}, nil
}

// Clear removes the stored session. Clearing an empty store is a no-op.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.NewDelete().
		Model((*credentialRow)(nil)).
		Where("id = ?", credentialRowID).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to clear credentials")
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ threadly.CredentialStore = (*SQLiteStore)(nil)
