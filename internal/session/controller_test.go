package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svw.info/lattice/internal/automaton"
	"svw.info/lattice/internal/domain"
	"svw.info/lattice/internal/generator"
	"svw.info/lattice/internal/hint"
	"svw.info/lattice/internal/infrastructure/storage"
	"svw.info/lattice/internal/ports"
	"svw.info/lattice/internal/solver"
	"svw.info/lattice/internal/usecase"
	"svw.info/lattice/internal/validator"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type countingSeeder struct{ next int64 }

func (s *countingSeeder) Seed() int64 {
	s.next++
	return s.next - 1
}

type brokenSink struct{}

func (brokenSink) Append(context.Context, domain.Submission) error { return errors.New("disk full") }
func (brokenSink) List(context.Context) ([]domain.Submission, error) {
	return nil, errors.New("disk full")
}

type fixture struct {
	ctl    *Controller
	clock  *fakeClock
	engine *usecase.Service
	csv    string
}

func newEngine(sink ports.SubmissionSink) *usecase.Service {
	table := automaton.Default()
	s := solver.NewBFSSolver(table)
	return usecase.NewService(s, generator.NewRandomGenerator(table), validator.New(), hint.NewFirstStep(s), sink)
}

// deepSeed skips seeds whose target is fewer than two presses away, so a
// single stray press in a test never solves the puzzle by accident.
func deepSeed(t *testing.T, engine *usecase.Service, from int64) int64 {
	t.Helper()
	ctx := context.Background()
	for seed := from; ; seed++ {
		p, _, err := engine.Generate(ctx, seed)
		require.NoError(t, err)
		path, _, err := engine.Solve(ctx, domain.AllOff, p.Target)
		require.NoError(t, err)
		if len(path) >= 2 {
			return seed
		}
	}
}

func newFixture(t *testing.T, debug bool, sink ports.SubmissionSink) *fixture {
	t.Helper()
	csvPath := filepath.Join(t.TempDir(), "invites.csv")
	if sink == nil {
		sink = storage.NewCSV(csvPath)
	}
	engine := newEngine(sink)
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	ctl, err := New(context.Background(), Deps{
		Engine: engine,
		Table:  automaton.Default(),
		Clock:  clock,
		Seeder: &countingSeeder{next: deepSeed(t, engine, 1)},
	}, Options{Debug: debug, SplashDuration: DefaultSplashDuration})
	require.NoError(t, err)
	return &fixture{ctl: ctl, clock: clock, engine: engine, csv: csvPath}
}

func (f *fixture) skipSplash(t *testing.T) Snapshot {
	t.Helper()
	f.clock.Advance(DefaultSplashDuration)
	snap := f.ctl.Tick(context.Background())
	require.Equal(t, domain.PhasePuzzle, snap.Phase)
	return snap
}

func (f *fixture) send(in ...Input) Snapshot {
	var snap Snapshot
	for _, i := range in {
		snap = f.ctl.HandleInput(context.Background(), i)
	}
	return snap
}

// press walks the focus to indicator b and activates it.
func (f *fixture) press(b domain.ButtonID) Snapshot {
	snap := f.ctl.Snapshot()
	if snap.Focus.Row == ActionRow {
		snap = f.send(MoveFocus(Down))
	}
	for snap.Focus.Index != int(b) {
		snap = f.send(MoveFocus(Right))
	}
	return f.send(Activate())
}

func (f *fixture) solve(t *testing.T) Snapshot {
	t.Helper()
	snap := f.ctl.Snapshot()
	path, _, err := f.engine.Solve(context.Background(), snap.Current, snap.Target)
	require.NoError(t, err)
	require.NotEmpty(t, path)
	for _, b := range path {
		snap = f.press(b)
	}
	require.Equal(t, domain.PhaseEmail, snap.Phase)
	return snap
}

func (f *fixture) typeText(s string) Snapshot {
	var snap Snapshot
	for _, r := range s {
		snap = f.send(TextInput(r))
	}
	return snap
}

func TestNewSessionStartsOnSplash(t *testing.T) {
	f := newFixture(t, false, nil)
	snap := f.ctl.Snapshot()

	want := Snapshot{
		Phase:           domain.PhaseSplash,
		SplashRemaining: DefaultSplashDuration,
		Seed:            snap.Seed,
		Current:         domain.AllOff,
		Target:          snap.Target,
		Optimal:         snap.Optimal,
		Focus:           Focus{Row: IndicatorRow, Index: 0},
		Status:          snap.Status,
	}
	if diff := cmp.Diff(want, snap); diff != "" {
		t.Fatalf("initial snapshot mismatch (-want +got):\n%s", diff)
	}
	assert.NotEqual(t, domain.AllOff, snap.Target)
	assert.GreaterOrEqual(t, snap.Optimal, 2)
	assert.LessOrEqual(t, snap.Optimal, generator.DefaultPresses)
	assert.Contains(t, snap.Status, "Estimated solve depth")
}

func TestSplashIgnoresInputUntilExpiry(t *testing.T) {
	f := newFixture(t, false, nil)

	snap := f.send(Activate(), MoveFocus(Right), TextInput('a'))
	assert.Equal(t, domain.PhaseSplash, snap.Phase)
	assert.Equal(t, 0, snap.Presses)
	assert.Equal(t, 0, snap.Focus.Index)

	f.clock.Advance(DefaultSplashDuration - time.Millisecond)
	snap = f.ctl.Tick(context.Background())
	assert.Equal(t, domain.PhaseSplash, snap.Phase)
	assert.Equal(t, time.Millisecond, snap.SplashRemaining)

	f.clock.Advance(time.Millisecond)
	snap = f.ctl.Tick(context.Background())
	assert.Equal(t, domain.PhasePuzzle, snap.Phase)
	assert.Zero(t, snap.SplashRemaining)
}

func TestInputAfterSplashExpiryIsNotSwallowed(t *testing.T) {
	f := newFixture(t, false, nil)
	f.clock.Advance(time.Hour)

	snap := f.send(MoveFocus(Right))
	assert.Equal(t, domain.PhasePuzzle, snap.Phase)
	assert.Equal(t, 1, snap.Focus.Index)
}

func TestQuitDuringSplash(t *testing.T) {
	f := newFixture(t, false, nil)
	snap := f.send(Quit())
	assert.True(t, snap.Terminated)
	assert.True(t, f.ctl.IsTerminated())
	assert.False(t, f.ctl.IsSubmitted())
}

func TestFocusNavigation(t *testing.T) {
	f := newFixture(t, false, nil)
	f.skipSplash(t)

	snap := f.send(MoveFocus(Right), MoveFocus(Right), MoveFocus(Right))
	assert.Equal(t, Focus{Row: IndicatorRow, Index: 3}, snap.Focus)
	snap = f.send(MoveFocus(Right))
	assert.Equal(t, Focus{Row: IndicatorRow, Index: 4}, snap.Focus)

	snap = f.send(MoveFocus(Right), MoveFocus(Right))
	assert.Equal(t, Focus{Row: IndicatorRow, Index: 0}, snap.Focus)
	snap = f.send(MoveFocus(Left))
	assert.Equal(t, Focus{Row: IndicatorRow, Index: 5}, snap.Focus)

	snap = f.send(MoveFocus(Up))
	assert.Equal(t, Focus{Row: ActionRow, Index: ActionRules}, snap.Focus)
	snap = f.send(MoveFocus(Right))
	assert.Equal(t, Focus{Row: ActionRow, Index: ActionHint}, snap.Focus)
	snap = f.send(MoveFocus(Left))
	assert.Equal(t, Focus{Row: ActionRow, Index: ActionRules}, snap.Focus)
	snap = f.send(MoveFocus(Left), MoveFocus(Down))
	assert.Equal(t, Focus{Row: IndicatorRow, Index: 2}, snap.Focus)
}

func TestFocusMoveTable(t *testing.T) {
	cases := []struct {
		from Focus
		dir  Direction
		want Focus
	}{
		{Focus{IndicatorRow, 0}, Up, Focus{ActionRow, 0}},
		{Focus{IndicatorRow, 1}, Down, Focus{ActionRow, 0}},
		{Focus{IndicatorRow, 3}, Up, Focus{ActionRow, 1}},
		{Focus{IndicatorRow, 5}, Down, Focus{ActionRow, 2}},
		{Focus{ActionRow, 0}, Up, Focus{IndicatorRow, 0}},
		{Focus{ActionRow, 1}, Down, Focus{IndicatorRow, 2}},
		{Focus{ActionRow, 2}, Up, Focus{IndicatorRow, 4}},
		{Focus{ActionRow, 0}, Left, Focus{ActionRow, 2}},
		{Focus{ActionRow, 2}, Right, Focus{ActionRow, 0}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.from.Move(tc.dir), "%+v %v", tc.from, tc.dir)
	}
}

func TestPressingToTargetMovesToEmail(t *testing.T) {
	f := newFixture(t, false, nil)
	f.skipSplash(t)

	snap := f.press(0)
	assert.Equal(t, 1, snap.Presses)
	assert.Equal(t, "Pressed indicator 1.", snap.Status)

	snap = f.send(MoveFocus(Up), MoveFocus(Right), Activate())
	require.Equal(t, Focus{Row: ActionRow, Index: ActionReset}, snap.Focus)
	assert.Equal(t, 0, snap.Presses)
	assert.Equal(t, domain.AllOff, snap.Current)

	snap = f.solve(t)
	assert.True(t, snap.Solved)
	assert.Equal(t, snap.Optimal, snap.Presses)
	assert.Equal(t, EmailInput, snap.EmailFocus)
	assert.Equal(t, ButtonConfirm, snap.EmailButton)
	assert.Equal(t, "Puzzle solved. Enter your email, then confirm invite.", snap.EmailStatus)
}

func TestHintHighlightsWithoutPressing(t *testing.T) {
	f := newFixture(t, false, nil)
	f.skipSplash(t)

	snap := f.send(MoveFocus(Up), Activate())
	require.True(t, snap.HintActive)
	assert.Equal(t, 0, snap.Presses)
	assert.Equal(t, domain.AllOff, snap.Current)
	assert.Equal(t, "Hint: press indicator "+snap.HintButton.Label()+".", snap.Status)

	before := snap.Optimal
	snap = f.press(snap.HintButton)
	assert.False(t, snap.HintActive)
	if snap.Phase == domain.PhasePuzzle {
		n, err := solver.NewBFSSolver(automaton.Default()).Distance(context.Background(), snap.Current, snap.Target)
		require.NoError(t, err)
		assert.Equal(t, before-1, n)
	}
}

func TestRulesToggle(t *testing.T) {
	f := newFixture(t, false, nil)
	f.skipSplash(t)

	snap := f.send(MoveFocus(Down), MoveFocus(Left), Activate())
	assert.Equal(t, Focus{Row: ActionRow, Index: ActionRules}, snap.Focus)
	assert.True(t, snap.ShowRules)
	assert.Equal(t, "Rules expanded.", snap.Status)

	snap = f.send(Activate())
	assert.False(t, snap.ShowRules)
	assert.Equal(t, "Rules collapsed.", snap.Status)
}

func TestForceSolveIgnoredWithoutDebug(t *testing.T) {
	f := newFixture(t, false, nil)
	f.skipSplash(t)

	snap := f.send(ForceSolve())
	assert.Equal(t, domain.PhasePuzzle, snap.Phase)
	assert.False(t, snap.Solved)
	assert.False(t, snap.Debug)
}

func TestForceSolveWithDebug(t *testing.T) {
	f := newFixture(t, true, nil)
	f.skipSplash(t)
	f.press(2)

	snap := f.send(ForceSolve())
	assert.Equal(t, domain.PhaseEmail, snap.Phase)
	assert.True(t, snap.Solved)
	assert.Equal(t, snap.Target, snap.Current)
	assert.Equal(t, 1, snap.Presses)
	assert.True(t, strings.HasPrefix(snap.Status, "Debug solve skipped"))
}

func TestTextInputIgnoredOutsideEmail(t *testing.T) {
	f := newFixture(t, false, nil)
	before := f.skipSplash(t)
	after := f.send(TextInput('x'), TabFocus(), Backspace())
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("puzzle state changed (-before +after):\n%s", diff)
	}
}

func TestEmailEditing(t *testing.T) {
	f := newFixture(t, false, nil)
	f.skipSplash(t)
	f.solve(t)

	snap := f.typeText("bad chars!#$ ok")
	assert.Equal(t, "badcharsok", snap.Email)

	snap = f.send(Backspace(), Backspace())
	assert.Equal(t, "badchars", snap.Email)

	// quit has no effect once the invite form is open
	snap = f.send(Quit())
	assert.False(t, snap.Terminated)
	assert.Equal(t, domain.PhaseEmail, snap.Phase)

	snap = f.send(TabFocus())
	assert.Equal(t, EmailButtons, snap.EmailFocus)
	snap = f.send(TextInput('z'), Backspace())
	assert.Equal(t, "badchars", snap.Email)

	snap = f.send(MoveFocus(Right))
	assert.Equal(t, ButtonSolveAgain, snap.EmailButton)
	snap = f.send(MoveFocus(Left))
	assert.Equal(t, ButtonConfirm, snap.EmailButton)
	snap = f.send(MoveFocus(Up))
	assert.Equal(t, EmailInput, snap.EmailFocus)
	snap = f.send(Activate())
	assert.Equal(t, EmailButtons, snap.EmailFocus)
}

func TestEmailLengthCap(t *testing.T) {
	f := newFixture(t, false, nil)
	f.skipSplash(t)
	f.solve(t)

	snap := f.typeText(strings.Repeat("a", validator.MaxEmailLength+10))
	assert.Len(t, snap.Email, validator.MaxEmailLength)
}

func TestConfirmRejectsInvalidEmail(t *testing.T) {
	f := newFixture(t, false, nil)
	f.skipSplash(t)
	f.solve(t)

	f.typeText("not-an-email")
	snap := f.send(TabFocus(), Activate())
	assert.Equal(t, domain.PhaseEmail, snap.Phase)
	assert.Equal(t, "Please enter a valid email before confirming.", snap.EmailStatus)
	_, err := os.Stat(f.csv)
	assert.True(t, os.IsNotExist(err), "sink must not be touched")
}

func TestConfirmRecordsSubmission(t *testing.T) {
	f := newFixture(t, false, nil)
	f.skipSplash(t)
	f.solve(t)

	f.typeText("player@example.com")
	snap := f.send(TabFocus(), Activate())
	assert.Equal(t, domain.PhaseSubmitted, snap.Phase)
	assert.Equal(t, "player@example.com", snap.SubmittedEmail)
	assert.True(t, f.ctl.IsSubmitted())
	assert.False(t, f.ctl.IsTerminated())

	subs, err := f.engine.Submissions(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "player@example.com", subs[0].Email)
	assert.Equal(t, f.clock.now.Unix(), subs[0].SubmittedAt.Unix())

	// anything but quit or activate is ignored on the final screen
	snap = f.send(MoveFocus(Left), TextInput('q'))
	assert.False(t, snap.Terminated)
	snap = f.send(Activate())
	assert.True(t, snap.Terminated)
}

func TestConfirmKeepsEmailPhaseWhenSinkFails(t *testing.T) {
	f := newFixture(t, false, brokenSink{})
	f.skipSplash(t)
	f.solve(t)

	f.typeText("player@example.com")
	snap := f.send(TabFocus(), Activate())
	assert.Equal(t, domain.PhaseEmail, snap.Phase)
	assert.Empty(t, snap.SubmittedEmail)
	assert.Contains(t, snap.EmailStatus, "Could not record")
}

func TestSolveAgainRestartsWithFreshTarget(t *testing.T) {
	f := newFixture(t, false, nil)
	first := f.skipSplash(t)
	f.solve(t)

	snap := f.send(TabFocus(), MoveFocus(Right), Activate())
	assert.NotEqual(t, first.Seed, snap.Seed)
	if snap.Phase == domain.PhasePuzzle {
		assert.Equal(t, 0, snap.Presses)
		assert.Equal(t, domain.AllOff, snap.Current)
		assert.False(t, snap.Solved)
		assert.Equal(t, Focus{Row: IndicatorRow}, snap.Focus)
		assert.Empty(t, snap.Email)
	} else {
		// the new target was all-OFF and therefore solved on arrival
		assert.Equal(t, domain.PhaseEmail, snap.Phase)
		assert.Equal(t, domain.AllOff, snap.Target)
	}
}

func TestQuitFromPuzzle(t *testing.T) {
	f := newFixture(t, false, nil)
	f.skipSplash(t)
	snap := f.send(Quit())
	assert.True(t, snap.Terminated)

	// terminated sessions ignore everything
	snap = f.send(Activate())
	assert.Equal(t, 0, snap.Presses)
}

func TestNewRequiresEngine(t *testing.T) {
	_, err := New(context.Background(), Deps{}, Options{})
	assert.Error(t, err)
}

func TestEmailFocusToggles(t *testing.T) {
	assert.Equal(t, EmailButtons, EmailInput.toggle())
	assert.Equal(t, EmailInput, EmailButtons.toggle())

	f := newFixture(t, false, nil)
	f.skipSplash(t)
	f.solve(t)

	snap := f.send(MoveFocus(Down))
	assert.Equal(t, EmailButtons, snap.EmailFocus)
	snap = f.send(MoveFocus(Down))
	assert.Equal(t, EmailInput, snap.EmailFocus)
	snap = f.send(TabFocus(), TabFocus())
	assert.Equal(t, EmailInput, snap.EmailFocus)
}

// allOffEngine hands out targets that six presses cancelled back to all-OFF.
type allOffEngine struct{ *usecase.Service }

func (allOffEngine) Generate(_ context.Context, seed int64) (*domain.Puzzle, ports.Stats, error) {
	return &domain.Puzzle{Seed: seed, Target: domain.AllOff, Presses: []domain.ButtonID{0, 0, 0, 0, 0, 0}}, ports.Stats{}, nil
}

func TestAllOffTargetSkipsStraightToEmail(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	ctl, err := New(context.Background(), Deps{
		Engine: allOffEngine{newEngine(storage.NewCSV(filepath.Join(t.TempDir(), "invites.csv")))},
		Table:  automaton.Default(),
		Clock:  clock,
		Seeder: &countingSeeder{},
	}, Options{SplashDuration: DefaultSplashDuration})
	require.NoError(t, err)

	snap := ctl.Snapshot()
	require.Equal(t, domain.PhaseSplash, snap.Phase)
	assert.Equal(t, 0, snap.Optimal)

	clock.Advance(DefaultSplashDuration)
	snap = ctl.Tick(context.Background())
	assert.Equal(t, domain.PhaseEmail, snap.Phase)
	assert.True(t, snap.Solved)
	assert.Equal(t, 0, snap.Presses)
	assert.Equal(t, domain.AllOff, snap.Current)
	assert.Equal(t, domain.AllOff, snap.Target)
	assert.Equal(t, EmailInput, snap.EmailFocus)
	assert.Equal(t, "Puzzle solved. Enter your email, then confirm invite.", snap.EmailStatus)

	// solving again lands on another all-OFF target and skips the puzzle again
	ctl.HandleInput(context.Background(), TabFocus())
	snap = ctl.HandleInput(context.Background(), MoveFocus(Right))
	require.Equal(t, ButtonSolveAgain, snap.EmailButton)
	snap = ctl.HandleInput(context.Background(), Activate())
	assert.Equal(t, domain.PhaseEmail, snap.Phase)
	assert.Equal(t, 0, snap.Presses)
}
