package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/incidentlab/internal/store"
)

// setupEnv points the CLI at a fresh database and the mock classifier,
// whose empty queue makes every submission fall back to keyword matching.
func setupEnv(t *testing.T) string {
	t.Helper()
	for _, k := range []string{
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
		"INCIDENTLAB_GEMINI_API_KEY", "INCIDENTLAB_OPENAI_API_KEY",
		"INCIDENTLAB_ANTHROPIC_API_KEY", "INCIDENTLAB_OPENROUTER_API_KEY",
		"INCIDENTLAB_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
	dbPath := filepath.Join(t.TempDir(), "game.db")
	t.Setenv("INCIDENTLAB_DB", dbPath)
	t.Setenv("INCIDENTLAB_PLAYER", "tester")
	t.Setenv("INCIDENTLAB_LLM_PROVIDER", "mock")
	cfg = settings{}
	return dbPath
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	resetFlags(rootCmd)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}

// resetFlags restores defaults between executions; cobra keeps parsed
// values on the command tree.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestGameFlow(t *testing.T) {
	dbPath := setupEnv(t)
	const caseID = "kafka-consumer-lag"

	require.NoError(t, run(t, "open", caseID))
	require.NoError(t, run(t, "clue", caseID))
	require.NoError(t, run(t, "hint", caseID, "count-things"))

	err := run(t, "submit", caseID, "--phase", "2", "add", "partitions")
	assert.ErrorContains(t, err, "root cause")

	require.NoError(t, run(t, "submit", caseID, "--phase", "1", "the", "disk", "is", "full"))
	require.NoError(t, run(t, "submit", caseID, "consumer count exceeds partition count"))
	require.NoError(t, run(t, "score", caseID))
	require.NoError(t, run(t, "submit", caseID, "consumer count exceeds partition count, add partitions"))

	err = run(t, "submit", caseID, "--phase", "2", "again")
	assert.ErrorContains(t, err, "closed")

	require.NoError(t, run(t, "history", caseID))
	require.NoError(t, run(t, "cases"))

	s, err := store.Open(dbPath)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	recs, err := s.ProgressRepo().Load(ctx, "tester")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	rec := recs[0]
	assert.Equal(t, 3, rec.CluesRevealed)
	assert.Equal(t, []string{"count-things"}, rec.HintsViewed)
	assert.Equal(t, 2, rec.RootCauseAttempts)
	assert.True(t, rec.Solved)
	require.NotNil(t, rec.Score)
	assert.Greater(t, *rec.Score, 0)

	events, err := s.EventRepo().QueryEvaluations(ctx, "tester", caseID, store.QueryOpts{})
	require.NoError(t, err)
	assert.Len(t, events, 3)

	llmEvents, err := s.EventRepo().QueryLLMEvents(ctx, store.QueryOpts{})
	require.NoError(t, err)
	assert.Len(t, llmEvents, 0)
}

func TestUnknownCase(t *testing.T) {
	setupEnv(t)
	assert.Error(t, run(t, "open", "no-such-case"))
	assert.Error(t, run(t, "hint", "kafka-consumer-lag", "no-such-hint"))
}

func TestReset_RequiresConfirmation(t *testing.T) {
	dbPath := setupEnv(t)
	require.NoError(t, run(t, "clue", "db-pool-exhaustion"))

	assert.Error(t, run(t, "reset"))
	require.NoError(t, run(t, "reset", "--yes"))

	s, err := store.Open(dbPath)
	require.NoError(t, err)
	defer s.Close()
	recs, err := s.ProgressRepo().Load(context.Background(), "tester")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestResolvePlayer_GeneratesAndKeepsID(t *testing.T) {
	setupEnv(t)
	t.Setenv("INCIDENTLAB_PLAYER", "")
	dbPath := filepath.Join(t.TempDir(), "x.db")

	first, err := resolvePlayer(dbPath)
	require.NoError(t, err)
	assert.Len(t, first, 36)

	second, err := resolvePlayer(dbPath)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	data, err := os.ReadFile(filepath.Join(filepath.Dir(dbPath), "player-id"))
	require.NoError(t, err)
	assert.Equal(t, first, strings.TrimSpace(string(data)))
}

func TestOpenSession_AppliesClassifierTimeout(t *testing.T) {
	dbPath := setupEnv(t)
	t.Setenv("INCIDENTLAB_LLM_TIMEOUT", "3s")
	cfg = settings{DB: dbPath, Player: "tester"}

	s, err := openSession(context.Background())
	require.NoError(t, err)
	defer s.Close()

	assert.True(t, s.AIEnabled)
	assert.Equal(t, 3*time.Second, s.LLMConfig.Timeout)
}

func TestLLMCommands_EmptyLog(t *testing.T) {
	setupEnv(t)
	require.NoError(t, run(t, "llm", "list", "--failed"))
	require.NoError(t, run(t, "llm", "stats"))
	assert.ErrorContains(t, run(t, "llm", "view", "1"), "not found")
	assert.Error(t, run(t, "llm", "view", "abc"))
	require.NoError(t, run(t, "version"))
}
