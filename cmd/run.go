package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/abhisek/incidentlab/internal/app"
	"github.com/abhisek/incidentlab/internal/llm"
	"github.com/abhisek/incidentlab/internal/store"
)

// session is an opened store plus the game wired on top of it.
type session struct {
	*app.App
	store  *store.Store
	player string
}

func (s *session) Close() error {
	return s.store.Close()
}

// openSession opens the store, builds the classifier if one is configured,
// and wires the game.
func openSession(ctx context.Context) (*session, error) {
	dbPath, err := resolveDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.OpenContext(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	player, err := resolvePlayer(dbPath)
	if err != nil {
		st.Close()
		return nil, err
	}

	eventRepo := st.EventRepo()
	opts := app.Options{
		ProgressRepo: st.ProgressRepo(),
		EventRepo:    eventRepo,
		Logger:       logger,
	}

	provider, llmCfg, ok, err := llm.NewProviderFromEnv(ctx, eventRepo, logger)
	switch {
	case err != nil:
		fmt.Fprintln(os.Stderr, "Classifier not configured:", err)
		fmt.Fprintln(os.Stderr, "Answers will be judged by keyword matching.")
	case ok:
		opts.LLMProvider = provider
		opts.LLMConfig = app.EvaluatorConfig(llmCfg)
	}

	a, err := app.New(opts)
	if err != nil {
		st.Close()
		return nil, err
	}
	return &session{App: a, store: st, player: player}, nil
}

// resolvePlayer returns --player or INCIDENTLAB_PLAYER when set. Otherwise
// it reads the id stored next to the database, generating one on first use.
func resolvePlayer(dbPath string) (string, error) {
	if p := strings.TrimSpace(cfg.Player); p != "" {
		return p, nil
	}

	path := filepath.Join(filepath.Dir(dbPath), "player-id")
	data, err := os.ReadFile(path)
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("read player id: %w", err)
	}

	id := uuid.NewString()
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("write player id: %w", err)
	}
	logger.Info("generated player id")
	return id, nil
}
