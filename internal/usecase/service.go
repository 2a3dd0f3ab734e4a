package usecase

import (
	"context"
	"errors"

	"svw.info/lattice/internal/domain"
	"svw.info/lattice/internal/metrics"
	"svw.info/lattice/internal/ports"
)

type Service struct {
	Solver    ports.Solver
	Generator ports.Generator
	Validator ports.EmailValidator
	Hinter    ports.Hinter
	Sink      ports.SubmissionSink
}

func NewService(s ports.Solver, g ports.Generator, v ports.EmailValidator, h ports.Hinter, sink ports.SubmissionSink) *Service {
	return &Service{Solver: s, Generator: g, Validator: v, Hinter: h, Sink: sink}
}

var errNotConfigured = errors.New("usecase dependency not configured")

// ErrInvalidEmail is returned by Submit when the address fails validation.
var ErrInvalidEmail = errors.New("invalid email address")

func (u *Service) Solve(ctx context.Context, start, target domain.Vector) ([]domain.ButtonID, ports.Stats, error) {
	if u.Solver == nil {
		return nil, ports.Stats{}, errNotConfigured
	}
	path, st, err := u.Solver.Solve(ctx, start, target)
	metrics.ObserveSolve(st.Duration, st.Nodes)
	return path, st, err
}

func (u *Service) Generate(ctx context.Context, seed int64) (*domain.Puzzle, ports.Stats, error) {
	if u.Generator == nil {
		return nil, ports.Stats{}, errNotConfigured
	}
	return u.Generator.Generate(ctx, seed)
}

func (u *Service) Hint(ctx context.Context, current, target domain.Vector) (domain.Hint, bool, error) {
	if u.Hinter == nil {
		return domain.Hint{}, false, errNotConfigured
	}
	return u.Hinter.Hint(ctx, current, target)
}

func (u *Service) ValidateEmail(ctx context.Context, email string) (bool, error) {
	if u.Validator == nil {
		return false, errNotConfigured
	}
	return u.Validator.Validate(ctx, email)
}

// Persistence

// Submit validates the address and appends it to the sink.
func (u *Service) Submit(ctx context.Context, s domain.Submission) error {
	if u.Sink == nil {
		return errNotConfigured
	}
	ok, err := u.ValidateEmail(ctx, s.Email)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidEmail
	}
	return u.Sink.Append(ctx, s)
}

func (u *Service) Submissions(ctx context.Context) ([]domain.Submission, error) {
	if u.Sink == nil {
		return nil, errNotConfigured
	}
	return u.Sink.List(ctx)
}
