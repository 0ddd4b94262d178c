package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadscore/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id           TEXT PRIMARY KEY,
	name         TEXT,
	role         TEXT,
	company      TEXT,
	industry     TEXT,
	location     TEXT,
	linkedin_bio TEXT,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS offers (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL UNIQUE,
	value_props     TEXT,
	ideal_use_cases TEXT,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS results (
	id         TEXT PRIMARY KEY,
	lead_id    TEXT NOT NULL REFERENCES leads(id),
	offer_id   TEXT NOT NULL REFERENCES offers(id),
	intent     TEXT,
	score      INTEGER,
	reasoning  TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_results_offer_id ON results(offer_id);
CREATE INDEX IF NOT EXISTS idx_results_lead_id ON results(lead_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ReplaceLeads(ctx context.Context, leads []model.Lead) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin replace leads")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM results`); err != nil {
		return 0, eris.Wrap(err, "sqlite: clear results")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM leads`); err != nil {
		return 0, eris.Wrap(err, "sqlite: clear leads")
	}

	now := time.Now().UTC()
	count := 0
	for _, lead := range leads {
		id := lead.ID
		if id == "" {
			id = uuid.New().String()
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO leads (id, name, role, company, industry, location, linkedin_bio, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, lead.Name, lead.Role, lead.Company, lead.Industry, lead.Location, lead.LinkedInBio, now,
		)
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: insert lead")
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit replace leads")
	}
	return count, nil
}

func (s *SQLiteStore) ListLeads(ctx context.Context) ([]model.Lead, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, role, company, industry, location, linkedin_bio FROM leads ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var l model.Lead
		if err := rows.Scan(&l.ID, &l.Name, &l.Role, &l.Company, &l.Industry, &l.Location, &l.LinkedInBio); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: iterate leads")
}

func (s *SQLiteStore) CreateOffer(ctx context.Context, offer model.Offer) (*model.Offer, error) {
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
		return nil, eris.Wrap(err, "sqlite: marshal value props")
	}
	useCases, err := json.Marshal(offer.IdealUseCases)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal use cases")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO offers (id, name, value_props, ideal_use_cases, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, offer.Name, string(valueProps), string(useCases), time.Now().UTC(),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert offer")
	}

	offer.ID = id
	return &offer, nil
}

func (s *SQLiteStore) GetOfferByName(ctx context.Context, name string) (*model.Offer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, value_props, ideal_use_cases FROM offers WHERE name = ?`,
		name,
	)

	var offer model.Offer
	var valueProps, useCases sql.NullString
	if err := row.Scan(&offer.ID, &offer.Name, &valueProps, &useCases); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrapf(err, "sqlite: get offer %s", name)
	}

	if err := unmarshalStringList(valueProps.String, &offer.ValueProps); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal value props")
	}
	if err := unmarshalStringList(useCases.String, &offer.IdealUseCases); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal use cases")
	}
	return &offer, nil
}

func (s *SQLiteStore) ReplaceResults(ctx context.Context, offerID string, leadIDs []string, results []model.ScoreResult) (int, error) {
	if len(leadIDs) != len(results) {
		return 0, eris.Errorf("sqlite: lead/result count mismatch (%d vs %d)", len(leadIDs), len(results))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin replace results")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM results WHERE offer_id = ?`, offerID); err != nil {
		return 0, eris.Wrap(err, "sqlite: clear offer results")
	}

	now := time.Now().UTC()
	count := 0
	for i, r := range results {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO results (id, lead_id, offer_id, intent, score, reasoning, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), leadIDs[i], offerID, string(r.Intent), r.Score, r.Reasoning, now,
		)
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: insert result")
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit replace results")
	}
	return count, nil
}

func (s *SQLiteStore) ListResults(ctx context.Context, offerID string) ([]model.StoredResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.lead_id, r.offer_id, r.intent, r.score, r.reasoning, r.created_at,
		        l.name, l.role, l.company, l.industry, l.location, l.linkedin_bio
		 FROM results r
		 JOIN leads l ON l.id = r.lead_id
		 WHERE r.offer_id = ?
		 ORDER BY r.score DESC, l.created_at, l.id`,
		offerID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list results")
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
			return nil, eris.Wrap(err, "sqlite: scan result")
		}
		r.Intent = model.Intent(intent)
		r.Lead.ID = r.LeadID
		results = append(results, r)
	}
	return results, eris.Wrap(rows.Err(), "sqlite: iterate results")
}

func unmarshalStringList(raw string, dst *[]string) error {
	if raw == "" {
		*dst = []string{}
		return nil
	}
	return json.Unmarshal([]byte(raw), dst)
}
