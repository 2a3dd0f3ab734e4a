package ports

import (
	"context"
	"time"

	"svw.info/lattice/internal/domain"
)

// Stats captures performance characteristics of an operation.
type Stats struct {
	Nodes    int
	Duration time.Duration
}

// Solver finds a minimum-length press sequence between two configurations.
type Solver interface {
	Solve(ctx context.Context, start, target domain.Vector) ([]domain.ButtonID, Stats, error)
}

// Generator creates a new target from a seed.
type Generator interface {
	Generate(ctx context.Context, seed int64) (*domain.Puzzle, Stats, error)
}

// Hinter returns the next press toward the target; false when there is none.
type Hinter interface {
	Hint(ctx context.Context, current, target domain.Vector) (domain.Hint, bool, error)
}

// EmailValidator checks the address format before a submission is accepted.
type EmailValidator interface {
	Validate(ctx context.Context, email string) (bool, error)
}

// SubmissionSink is an append-only record store for confirmed addresses.
type SubmissionSink interface {
	Append(ctx context.Context, s domain.Submission) error
	List(ctx context.Context) ([]domain.Submission, error)
}

// Clock drives the splash timer and submission timestamps.
type Clock interface {
	Now() time.Time
}

// Seeder hands out a fresh seed per session.
type Seeder interface {
	Seed() int64
}
