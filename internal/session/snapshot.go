package session

import (
	"time"

	"svw.info/lattice/internal/domain"
)

// Snapshot is a copy of everything a renderer needs. Mutating it has no
// effect on the controller.
type Snapshot struct {
	Phase      domain.Phase
	Terminated bool
	Debug      bool

	// Splash
	SplashRemaining time.Duration

	// Puzzle
	Seed      int64
	Current   domain.Vector
	Target    domain.Vector
	Presses   int
	Optimal   int
	Solved    bool
	Focus     Focus
	ShowRules bool
	Status    string
	// HintActive marks HintButton as the suggested next press.
	HintActive bool
	HintButton domain.ButtonID

	// Email
	Email       string
	EmailFocus  EmailFocus
	EmailButton EmailButton
	EmailStatus string

	// Submitted
	SubmittedEmail string
}
