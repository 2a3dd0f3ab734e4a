package usecase

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svw.info/lattice/internal/automaton"
	"svw.info/lattice/internal/domain"
	"svw.info/lattice/internal/generator"
	"svw.info/lattice/internal/hint"
	"svw.info/lattice/internal/infrastructure/storage"
	"svw.info/lattice/internal/solver"
	"svw.info/lattice/internal/validator"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	table := automaton.Default()
	s := solver.NewBFSSolver(table)
	return NewService(
		s,
		generator.NewRandomGenerator(table),
		validator.New(),
		hint.NewFirstStep(s),
		storage.NewCSV(filepath.Join(t.TempDir(), "invites.csv")),
	)
}

func TestServiceGenerateThenSolve(t *testing.T) {
	u := newTestService(t)
	ctx := context.Background()

	p, _, err := u.Generate(ctx, 99)
	require.NoError(t, err)
	path, _, err := u.Solve(ctx, domain.AllOff, p.Target)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(path), generator.DefaultPresses)
}

func TestServiceSubmit(t *testing.T) {
	u := newTestService(t)
	ctx := context.Background()
	at := time.Unix(1700000000, 0)

	err := u.Submit(ctx, domain.Submission{Email: "not-an-email", SubmittedAt: at})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	require.NoError(t, u.Submit(ctx, domain.Submission{Email: "player@example.com", SubmittedAt: at}))
	got, err := u.Submissions(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "player@example.com", got[0].Email)
}

func TestServiceNotConfigured(t *testing.T) {
	u := &Service{}
	ctx := context.Background()

	_, _, err := u.Solve(ctx, domain.AllOff, domain.AllOff)
	assert.ErrorIs(t, err, errNotConfigured)
	_, _, err = u.Generate(ctx, 1)
	assert.ErrorIs(t, err, errNotConfigured)
	_, _, err = u.Hint(ctx, domain.AllOff, domain.AllOff)
	assert.ErrorIs(t, err, errNotConfigured)
	_, err = u.ValidateEmail(ctx, "a@b.co")
	assert.ErrorIs(t, err, errNotConfigured)
	assert.ErrorIs(t, u.Submit(ctx, domain.Submission{}), errNotConfigured)
	_, err = u.Submissions(ctx)
	assert.ErrorIs(t, err, errNotConfigured)
}

// solveSamples is how many searches the solver latency histogram has seen.
func solveSamples(t *testing.T) uint64 {
	t.Helper()
	mfs, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == "lattice_solver_latency_seconds" {
			return mf.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	t.Fatal("solver latency histogram not registered")
	return 0
}

func TestServiceHintSearchesAreObserved(t *testing.T) {
	u := newTestService(t)
	ctx := context.Background()
	table := automaton.Default()
	target := table.ApplyAll(domain.AllOff, []domain.ButtonID{2, 3})

	before := solveSamples(t)
	h, found, err := u.Hint(ctx, domain.AllOff, target)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, h.Remaining)
	assert.Equal(t, before+1, solveSamples(t))

	_, _, err = u.Solve(ctx, domain.AllOff, target)
	require.NoError(t, err)
	assert.Equal(t, before+2, solveSamples(t))
}
