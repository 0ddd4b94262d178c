// Package store persists leads, offers, and scoring results.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscore/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = eris.New("store: not found")

// ErrOfferExists is returned when creating an offer whose name is taken.
var ErrOfferExists = eris.New("store: offer already exists")

// Store defines the persistence interface for the scoring service.
type Store interface {
	// Leads. ReplaceLeads clears all existing leads and results before
	// inserting, matching upload semantics.
	ReplaceLeads(ctx context.Context, leads []model.Lead) (int, error)
	ListLeads(ctx context.Context) ([]model.Lead, error)

	// Offers
	CreateOffer(ctx context.Context, offer model.Offer) (*model.Offer, error)
	GetOfferByName(ctx context.Context, name string) (*model.Offer, error)

	// Results. ReplaceResults clears prior results for the offer before
	// inserting; leadIDs and results are parallel slices.
	ReplaceResults(ctx context.Context, offerID string, leadIDs []string, results []model.ScoreResult) (int, error)
	ListResults(ctx context.Context, offerID string) ([]model.StoredResult, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// New opens a Store for the configured driver ("sqlite" or "postgres").
func New(ctx context.Context, driver, databaseURL string) (Store, error) {
	switch driver {
	case "sqlite", "":
		return NewSQLite(databaseURL)
	case "postgres":
		return NewPostgres(ctx, databaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
