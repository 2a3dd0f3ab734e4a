package session

import "svw.info/lattice/internal/domain"

// Row selects which row of puzzle controls has focus.
type Row int

const (
	IndicatorRow Row = iota
	ActionRow
)

// Actions on the second row, left to right.
const (
	ActionHint = iota
	ActionReset
	ActionRules

	actionCount
)

// Focus is the puzzle-phase cursor.
type Focus struct {
	Row   Row
	Index int
}

func (f Focus) rowLen() int {
	if f.Row == ActionRow {
		return actionCount
	}
	return domain.Indicators
}

// Move returns the focus after one step in d. Horizontal moves wrap inside
// the row; vertical moves jump to the nearest control of the other row.
func (f Focus) Move(d Direction) Focus {
	n := f.rowLen()
	switch d {
	case Left:
		f.Index = (f.Index + n - 1) % n
	case Right:
		f.Index = (f.Index + 1) % n
	case Up, Down:
		if f.Row == IndicatorRow {
			return Focus{Row: ActionRow, Index: min(f.Index/2, actionCount-1)}
		}
		return Focus{Row: IndicatorRow, Index: min(f.Index*2, domain.Indicators-1)}
	}
	return f
}

// EmailFocus is the email-phase cursor.
type EmailFocus int

const (
	EmailInput EmailFocus = iota
	EmailButtons
)

func (f EmailFocus) toggle() EmailFocus {
	if f == EmailInput {
		return EmailButtons
	}
	return EmailInput
}

// EmailButton is the highlighted button when EmailButtons has focus.
type EmailButton int

const (
	ButtonConfirm EmailButton = iota
	ButtonSolveAgain
)
