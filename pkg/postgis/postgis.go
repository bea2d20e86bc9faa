package postgis

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kass/emergency-locator/pkg/models"
	"github.com/kass/emergency-locator/pkg/places"
	"github.com/lib/pq"
)

// Options holds PostGIS connection settings
type Options struct {
	Host           string
	Port           int
	User           string
	Password       string
	Database       string
	MaxConnections int
}

// DSN returns the lib/pq connection string for the options
func (o Options) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		o.Host, o.Port, o.User, o.Password, o.Database)
}

// Store is a PostGIS-backed place store. It implements places.Service.
type Store struct {
	db      *sql.DB
	verbose bool
}

// Open connects to PostGIS and verifies the connection
func Open(ctx context.Context, opts Options) (*Store, error) {
	db, err := sql.Open("postgres", opts.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	maxConns := opts.MaxConnections
	if maxConns <= 0 {
		maxConns = 10
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Store{db: db}, nil
}

// NewStore wraps an existing database handle
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// SetVerbose toggles per-query logging
func (s *Store) SetVerbose(v bool) {
	s.verbose = v
}

// InitSchema creates the places table if it does not exist
func (s *Store) InitSchema(ctx context.Context) error {
	queries := []string{
		`CREATE EXTENSION IF NOT EXISTS postgis;`,
		`CREATE TABLE IF NOT EXISTS places (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			address TEXT NOT NULL DEFAULT '',
			types TEXT[] NOT NULL DEFAULT '{}',
			rating DOUBLE PRECISION,
			keywords TEXT NOT NULL DEFAULT '',
			location GEOGRAPHY(POINT, 4326) NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_places_location ON places USING GIST(location);`,
		`CREATE INDEX IF NOT EXISTS idx_places_types ON places USING GIN(types);`,
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", firstLine(query), err)
		}
	}
	return nil
}

const upsertPlace = `
	INSERT INTO places (id, name, address, types, rating, keywords, location)
	VALUES ($1, $2, $3, $4, $5, $6, ST_SetSRID(ST_MakePoint($7, $8), 4326)::geography)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		address = EXCLUDED.address,
		types = EXCLUDED.types,
		rating = EXCLUDED.rating,
		keywords = EXCLUDED.keywords,
		location = EXCLUDED.location
`

// BulkInsertPlaces upserts places, committing every batchSize rows
func (s *Store) BulkInsertPlaces(ctx context.Context, ps []*models.Place, batchSize int) error {
	if batchSize <= 0 {
		batchSize = 1000
	}

	for start := 0; start < len(ps); start += batchSize {
		end := start + batchSize
		if end > len(ps) {
			end = len(ps)
		}
		if err := s.insertBatch(ctx, ps[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) insertBatch(ctx context.Context, batch []*models.Place) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, upsertPlace)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range batch {
		var rating sql.NullFloat64
		if p.Rating != nil {
			rating = sql.NullFloat64{Float64: *p.Rating, Valid: true}
		}
		_, err := stmt.ExecContext(ctx, p.ID, p.Name, p.Address, pq.Array(p.Types), rating,
			p.Keywords, p.Location.Lon, p.Location.Lat)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert place %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

const nearbyQuery = `
	SELECT id, name, address, types, rating, ST_Y(location::geometry), ST_X(location::geometry)
	FROM places
	WHERE ST_DWithin(location, ST_SetSRID(ST_MakePoint($1::float8, $2::float8), 4326)::geography, $3::float8)
	  AND ($4::text = '' OR $4::text = ANY(types))
	ORDER BY ($5::text <> '' AND keywords ILIKE '%' || $5::text || '%') DESC,
	         location <-> ST_SetSRID(ST_MakePoint($1::float8, $2::float8), 4326)::geography,
	         id
`

// NearbySearch implements places.Service
func (s *Store) NearbySearch(ctx context.Context, req places.Request) (places.Response, error) {
	if req.Radius <= 0 {
		return places.Response{Status: places.StatusInvalidRequest}, &places.StatusError{
			Provider: "postgis",
			Status:   places.StatusInvalidRequest,
			Message:  "radius must be positive",
		}
	}

	rows, err := s.db.QueryContext(ctx, nearbyQuery,
		req.Location.Lon, req.Location.Lat, req.Radius, req.Type, strings.TrimSpace(req.Keyword))
	if err != nil {
		return places.Response{Status: places.StatusUnknownError}, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var results []models.PlaceResult
	for rows.Next() {
		var (
			r      models.PlaceResult
			types  pq.StringArray
			rating sql.NullFloat64
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.Address, &types, &rating, &r.Location.Lat, &r.Location.Lon); err != nil {
			return places.Response{Status: places.StatusUnknownError}, fmt.Errorf("failed to scan row: %w", err)
		}
		r.Types = []string(types)
		if rating.Valid {
			v := rating.Float64
			r.Rating = &v
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return places.Response{Status: places.StatusUnknownError}, fmt.Errorf("rows error: %w", err)
	}

	if s.verbose {
		log.Printf("postgis: type=%s keyword=%s radius=%d -> %d results", req.Type, req.Keyword, req.Radius, len(results))
	}

	if len(results) == 0 {
		return places.Response{Status: places.StatusZeroResults}, nil
	}
	return places.Response{Status: places.StatusOK, Results: results}, nil
}

// Count returns the number of stored places
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM places").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count places: %w", err)
	}
	return count, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func firstLine(q string) string {
	q = strings.TrimSpace(q)
	if i := strings.IndexByte(q, '\n'); i >= 0 {
		return q[:i]
	}
	return q
}
