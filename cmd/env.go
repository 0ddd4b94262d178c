package main

import (
	"context"

	"github.com/sells-group/leadscore/internal/llm"
	"github.com/sells-group/leadscore/internal/scoring"
	"github.com/sells-group/leadscore/internal/store"
)

// env bundles the shared dependencies commands need.
type env struct {
	Store  store.Store
	Engine *scoring.Engine
}

func (e *env) Close() {
	if e.Store != nil {
		e.Store.Close() //nolint:errcheck
	}
}

// initEnv opens the store, runs migrations, and builds the scoring engine
// for the configured LLM provider.
func initEnv(ctx context.Context) (*env, error) {
	st, err := store.New(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}

	completer, err := llm.NewCompleter(cfg.LLM)
	if err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}

	return &env{
		Store:  st,
		Engine: scoring.NewEngine(completer, cfg.Scoring),
	}, nil
}

// initStore opens only the store, for commands that never classify.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.New(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}
