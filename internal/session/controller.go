// Package session sequences one player's connection through the splash,
// puzzle, email and submitted phases. A Controller is driven by exactly one
// goroutine and holds no locks.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"svw.info/lattice/internal/automaton"
	"svw.info/lattice/internal/domain"
	"svw.info/lattice/internal/metrics"
	"svw.info/lattice/internal/ports"
	"svw.info/lattice/internal/puzzle"
	"svw.info/lattice/internal/usecase"
	"svw.info/lattice/internal/validator"
)

// DefaultSplashDuration is how long the splash screen stays up.
const DefaultSplashDuration = 3 * time.Second

// Engine is what the controller needs from the use-case service.
type Engine interface {
	puzzle.Engine
	Generate(ctx context.Context, seed int64) (*domain.Puzzle, ports.Stats, error)
	Submit(ctx context.Context, s domain.Submission) error
}

type Deps struct {
	Engine Engine
	Table  automaton.Table
	Clock  ports.Clock
	Seeder ports.Seeder
	Logger *zap.Logger
}

type Options struct {
	Debug          bool
	SplashDuration time.Duration
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type Controller struct {
	engine Engine
	table  automaton.Table
	clock  ports.Clock
	seeder ports.Seeder
	log    *zap.Logger
	debug  bool

	phase       domain.Phase
	terminated  bool
	splashUntil time.Time

	puzzle     *puzzle.Puzzle
	focus      Focus
	showRules  bool
	status     string
	hintActive bool
	hintButton domain.ButtonID

	email       []rune
	emailFocus  EmailFocus
	emailButton EmailButton
	emailStatus string

	submitted string
}

// New builds a session in the Splash phase with a freshly generated target.
func New(ctx context.Context, deps Deps, opts Options) (*Controller, error) {
	if deps.Engine == nil || deps.Seeder == nil {
		return nil, errors.New("session: engine and seeder are required")
	}
	if deps.Clock == nil {
		deps.Clock = SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	c := &Controller{
		engine: deps.Engine,
		table:  deps.Table,
		clock:  deps.Clock,
		seeder: deps.Seeder,
		log:    deps.Logger,
		debug:  opts.Debug,
		phase:  domain.PhaseSplash,
	}
	c.splashUntil = c.clock.Now().Add(opts.SplashDuration)

	p, err := c.generate(ctx)
	if err != nil {
		return nil, err
	}
	c.puzzle, err = puzzle.New(ctx, c.table, c.engine, p, c.debug)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	c.resetPuzzleView()

	metrics.SessionStarted()
	c.log.Info("Session started",
		zap.Int64("seed", p.Seed),
		zap.String("target", p.Target.String()),
		zap.Int("optimal", c.puzzle.Optimal()),
		zap.Bool("debug", c.debug))
	return c, nil
}

func (c *Controller) generate(ctx context.Context) (*domain.Puzzle, error) {
	p, _, err := c.engine.Generate(ctx, c.seeder.Seed())
	if err != nil {
		return nil, fmt.Errorf("session: generate target: %w", err)
	}
	p.CreatedAt = c.clock.Now().Unix()
	return p, nil
}

func (c *Controller) resetPuzzleView() {
	c.focus = Focus{Row: IndicatorRow}
	c.showRules = false
	c.hintActive = false
	c.status = fmt.Sprintf("All buttons start OFF. No move cap. Estimated solve depth: %d.", c.puzzle.Optimal())
}

func (c *Controller) IsTerminated() bool { return c.terminated }

func (c *Controller) IsSubmitted() bool { return c.phase == domain.PhaseSubmitted }

func (c *Controller) Phase() domain.Phase { return c.phase }

// Tick lets the splash timer expire without any input.
func (c *Controller) Tick(ctx context.Context) Snapshot {
	c.advanceSplash()
	return c.Snapshot()
}

// HandleInput applies one event. Events that mean nothing in the current
// phase or focus are dropped.
func (c *Controller) HandleInput(ctx context.Context, in Input) Snapshot {
	if c.terminated {
		return c.Snapshot()
	}
	c.advanceSplash()

	switch c.phase {
	case domain.PhaseSplash:
		if in.Kind == InputQuit {
			c.terminate()
		}
	case domain.PhasePuzzle:
		c.handlePuzzle(ctx, in)
	case domain.PhaseEmail:
		c.handleEmail(ctx, in)
	case domain.PhaseSubmitted:
		if in.Kind == InputQuit || in.Kind == InputActivate {
			c.terminate()
		}
	}
	return c.Snapshot()
}

func (c *Controller) advanceSplash() {
	if c.phase == domain.PhaseSplash && !c.clock.Now().Before(c.splashUntil) {
		c.enterPuzzle()
	}
}

// enterPuzzle moves to the Puzzle phase. A target that happens to equal
// all-OFF is already solved, so the session goes straight on to Email.
func (c *Controller) enterPuzzle() {
	c.transition(domain.PhasePuzzle)
	if c.puzzle.Solved() {
		metrics.Solved("pressed")
		c.enterEmail()
	}
}

func (c *Controller) transition(next domain.Phase) {
	if !c.phase.CanTransitionTo(next) {
		c.log.Warn("Illegal phase transition", zap.Stringer("from", c.phase), zap.Stringer("to", next))
		return
	}
	c.log.Debug("Phase changed", zap.Stringer("from", c.phase), zap.Stringer("to", next))
	c.phase = next
}

func (c *Controller) terminate() {
	c.terminated = true
	c.log.Info("Session closed", zap.Stringer("phase", c.phase), zap.Int("presses", c.puzzle.Presses()))
}

func (c *Controller) handlePuzzle(ctx context.Context, in Input) {
	switch in.Kind {
	case InputMoveFocus:
		c.focus = c.focus.Move(in.Dir)
	case InputActivate:
		c.activate(ctx)
	case InputQuit:
		c.terminate()
	case InputForceSolve:
		c.forceSolve(ctx)
	}
}

func (c *Controller) activate(ctx context.Context) {
	if c.focus.Row == IndicatorRow {
		b := domain.ButtonID(c.focus.Index)
		if !c.puzzle.Press(b) {
			return
		}
		metrics.Press()
		c.hintActive = false
		c.status = fmt.Sprintf("Pressed indicator %s.", b.Label())
		if c.puzzle.Solved() {
			metrics.Solved("pressed")
			c.log.Info("Puzzle solved",
				zap.Int("presses", c.puzzle.Presses()),
				zap.Int("optimal", c.puzzle.Optimal()))
			c.enterEmail()
		}
		return
	}

	switch c.focus.Index {
	case ActionHint:
		h, err := c.puzzle.RequestHint(ctx)
		switch {
		case errors.Is(err, puzzle.ErrAlreadySolved):
			c.status = "State already matches target."
		case err != nil:
			c.log.Warn("Hint failed", zap.Error(err))
			c.status = "No hint available from this state."
		default:
			metrics.Hint()
			c.hintActive = true
			c.hintButton = h.Button
			c.status = h.Message
		}
	case ActionReset:
		c.puzzle.Reset()
		c.hintActive = false
		c.status = "Puzzle reset to original generated state."
	case ActionRules:
		c.showRules = !c.showRules
		if c.showRules {
			c.status = "Rules expanded."
		} else {
			c.status = "Rules collapsed."
		}
	}
}

func (c *Controller) forceSolve(ctx context.Context) {
	if !c.debug {
		c.log.Debug("Force solve ignored outside debug mode")
		return
	}
	skipped, _, solveErr := c.engine.Solve(ctx, c.puzzle.Current(), c.puzzle.Target())
	if err := c.puzzle.ForceSolve(); err != nil {
		// a debug key reaching a non-debug session is dropped like any
		// other meaningless input
		c.log.Debug("Force solve rejected", zap.Error(err))
		return
	}
	if solveErr != nil {
		c.status = "Debug solve did not find a valid route."
	} else {
		c.status = fmt.Sprintf("Debug solve skipped %d move(s).", len(skipped))
	}
	metrics.Solved("debug")
	c.log.Info("Puzzle force-solved", zap.Int("presses", c.puzzle.Presses()))
	c.enterEmail()
}

func (c *Controller) enterEmail() {
	c.transition(domain.PhaseEmail)
	c.email = c.email[:0]
	c.emailFocus = EmailInput
	c.emailButton = ButtonConfirm
	c.emailStatus = "Puzzle solved. Enter your email, then confirm invite."
}

func (c *Controller) handleEmail(ctx context.Context, in Input) {
	if c.emailFocus == EmailInput {
		switch in.Kind {
		case InputTab, InputActivate:
			c.emailFocus = c.emailFocus.toggle()
		case InputMoveFocus:
			if in.Dir == Up || in.Dir == Down {
				c.emailFocus = c.emailFocus.toggle()
			}
		case InputBackspace:
			if n := len(c.email); n > 0 {
				c.email = c.email[:n-1]
			}
		case InputText:
			if validator.IsEmailChar(in.Char) && len(c.email) < validator.MaxEmailLength {
				c.email = append(c.email, in.Char)
				c.emailStatus = ""
			}
		}
		return
	}

	switch in.Kind {
	case InputTab:
		c.emailFocus = c.emailFocus.toggle()
	case InputMoveFocus:
		switch in.Dir {
		case Up, Down:
			c.emailFocus = c.emailFocus.toggle()
		case Left, Right:
			c.emailButton = 1 - c.emailButton
		}
	case InputActivate:
		if c.emailButton == ButtonConfirm {
			c.confirm(ctx)
		} else {
			c.solveAgain(ctx)
		}
	}
}

func (c *Controller) confirm(ctx context.Context) {
	addr := string(c.email)
	err := c.engine.Submit(ctx, domain.Submission{Email: addr, SubmittedAt: c.clock.Now()})
	switch {
	case errors.Is(err, usecase.ErrInvalidEmail):
		metrics.Submission("invalid")
		c.emailStatus = "Please enter a valid email before confirming."
	case err != nil:
		metrics.Submission("error")
		c.log.Error("Failed to record submission", zap.Error(err))
		c.emailStatus = "Could not record your request. Please try again."
	default:
		metrics.Submission("ok")
		c.log.Info("Invite request submitted", zap.String("email", addr))
		c.submitted = addr
		c.transition(domain.PhaseSubmitted)
	}
}

func (c *Controller) solveAgain(ctx context.Context) {
	p, err := c.generate(ctx)
	if err == nil {
		err = c.puzzle.Restart(ctx, p)
	}
	if err != nil {
		c.log.Error("Failed to restart puzzle", zap.Error(err))
		c.emailStatus = "Could not generate a new puzzle. Please try again."
		return
	}
	c.log.Info("Puzzle restarted", zap.Int64("seed", p.Seed), zap.Int("optimal", c.puzzle.Optimal()))
	c.resetPuzzleView()
	c.enterPuzzle()
}

// Snapshot copies the render state.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		Phase:      c.phase,
		Terminated: c.terminated,
		Debug:      c.debug,

		Seed:       c.puzzle.Seed(),
		Current:    c.puzzle.Current(),
		Target:     c.puzzle.Target(),
		Presses:    c.puzzle.Presses(),
		Optimal:    c.puzzle.Optimal(),
		Solved:     c.puzzle.Solved(),
		Focus:      c.focus,
		ShowRules:  c.showRules,
		Status:     c.status,
		HintActive: c.hintActive,
		HintButton: c.hintButton,

		Email:       string(c.email),
		EmailFocus:  c.emailFocus,
		EmailButton: c.emailButton,
		EmailStatus: c.emailStatus,

		SubmittedEmail: c.submitted,
	}
	if c.phase == domain.PhaseSplash {
		if left := c.splashUntil.Sub(c.clock.Now()); left > 0 {
			s.SplashRemaining = left
		}
	}
	return s
}
