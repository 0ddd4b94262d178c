package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscore/internal/model"
)

// Pool is the subset of pgxpool.Pool used by PostgresStore. pgxmock
// satisfies it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id           TEXT PRIMARY KEY,
	name         TEXT,
	role         TEXT,
	company      TEXT,
	industry     TEXT,
	location     TEXT,
	linkedin_bio TEXT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS offers (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL UNIQUE,
	value_props     JSONB,
	ideal_use_cases JSONB,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS results (
	id         TEXT PRIMARY KEY,
	lead_id    TEXT NOT NULL REFERENCES leads(id),
	offer_id   TEXT NOT NULL REFERENCES offers(id),
	intent     TEXT,
	score      INTEGER,
	reasoning  TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_results_offer_id ON results(offer_id);
CREATE INDEX IF NOT EXISTS idx_results_lead_id ON results(lead_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) ReplaceLeads(ctx context.Context, leads []model.Lead) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: begin replace leads")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM results`); err != nil {
		return 0, eris.Wrap(err, "postgres: clear results")
	}
	if _, err := tx.Exec(ctx, `DELETE FROM leads`); err != nil {
		return 0, eris.Wrap(err, "postgres: clear leads")
	}

	now := time.Now().UTC()
	count := 0
	for _, lead := range leads {
		id := lead.ID
		if id == "" {
			id = uuid.New().String()
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO leads (id, name, role, company, industry, location, linkedin_bio, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			id, lead.Name, lead.Role, lead.Company, lead.Industry, lead.Location, lead.LinkedInBio, now,
		)
		if err != nil {
			return 0, eris.Wrap(err, "postgres: insert lead")
		}
		count++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "postgres: commit replace leads")
	}
	return count, nil
}

func (s *PostgresStore) ListLeads(ctx context.Context) ([]model.Lead, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, role, company, industry, location, linkedin_bio FROM leads ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var l model.Lead
		if err := rows.Scan(&l.ID, &l.Name, &l.Role, &l.Company, &l.Industry, &l.Location, &l.LinkedInBio); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: iterate leads")
}

func (s *PostgresStore) CreateOffer(ctx context.Context, offer model.Offer) (*model.Offer, error) {
	existing, err := s.GetOfferByName(ctx, offer.Name)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrOfferExists
	}

	id := uuid.New().String()
	valueProps, err := json.Marshal(offer.ValueProps)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal value props")
	}
	useCases, err := json.Marshal(offer.IdealUseCases)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal use cases")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO offers (id, name, value_props, ideal_use_cases, created_at) VALUES ($1, $2, $3, $4, $5)`,
		id, offer.Name, valueProps, useCases, time.Now().UTC(),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert offer")
	}

	offer.ID = id
	return &offer, nil
}

func (s *PostgresStore) GetOfferByName(ctx context.Context, name string) (*model.Offer, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, value_props, ideal_use_cases FROM offers WHERE name = $1`,
		name,
	)

	var offer model.Offer
	var valueProps, useCases []byte
	if err := row.Scan(&offer.ID, &offer.Name, &valueProps, &useCases); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrapf(err, "postgres: get offer %s", name)
	}

	if len(valueProps) > 0 {
		if err := json.Unmarshal(valueProps, &offer.ValueProps); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal value props")
		}
	}
	if len(useCases) > 0 {
		if err := json.Unmarshal(useCases, &offer.IdealUseCases); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal use cases")
		}
	}
	return &offer, nil
}

func (s *PostgresStore) ReplaceResults(ctx context.Context, offerID string, leadIDs []string, results []model.ScoreResult) (int, error) {
	if len(leadIDs) != len(results) {
		return 0, eris.Errorf("postgres: lead/result count mismatch (%d vs %d)", len(leadIDs), len(results))
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: begin replace results")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM results WHERE offer_id = $1`, offerID); err != nil {
		return 0, eris.Wrap(err, "postgres: clear offer results")
	}

	now := time.Now().UTC()
	count := 0
	for i, r := range results {
		_, err := tx.Exec(ctx,
			`INSERT INTO results (id, lead_id, offer_id, intent, score, reasoning, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New().String(), leadIDs[i], offerID, string(r.Intent), r.Score, r.Reasoning, now,
		)
		if err != nil {
			return 0, eris.Wrap(err, "postgres: insert result")
		}
		count++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "postgres: commit replace results")
	}
	return count, nil
}

func (s *PostgresStore) ListResults(ctx context.Context, offerID string) ([]model.StoredResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT r.id, r.lead_id, r.offer_id, r.intent, r.score, r.reasoning, r.created_at,
		        l.name, l.role, l.company, l.industry, l.location, l.linkedin_bio
		 FROM results r
		 JOIN leads l ON l.id = r.lead_id
		 WHERE r.offer_id = $1
		 ORDER BY r.score DESC, l.created_at, l.id`,
		offerID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list results")
	}
	defer rows.Close()

	var results []model.StoredResult
	for rows.Next() {
		var r model.StoredResult
		var intent string
		if err := rows.Scan(
			&r.ID, &r.LeadID, &r.OfferID, &intent, &r.Score, &r.Reasoning, &r.CreatedAt,
			&r.Lead.Name, &r.Lead.Role, &r.Lead.Company, &r.Lead.Industry, &r.Lead.Location, &r.Lead.LinkedInBio,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan result")
		}
		r.Intent = model.Intent(intent)
		r.Lead.ID = r.LeadID
		results = append(results, r)
	}
	return results, eris.Wrap(rows.Err(), "postgres: iterate results")
}
