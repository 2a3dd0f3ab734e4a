package session

// InputKind tags an Input.
type InputKind int

const (
	InputMoveFocus InputKind = iota
	InputActivate
	InputQuit
	InputText
	InputTab
	InputBackspace
	InputForceSolve
)

// Direction is the argument of a MoveFocus input.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

// Input is one decoded key event. Only the field matching Kind is read.
type Input struct {
	Kind InputKind
	Dir  Direction
	Char rune
}

func MoveFocus(d Direction) Input { return Input{Kind: InputMoveFocus, Dir: d} }
func Activate() Input             { return Input{Kind: InputActivate} }
func Quit() Input                 { return Input{Kind: InputQuit} }
func TextInput(r rune) Input      { return Input{Kind: InputText, Char: r} }
func TabFocus() Input             { return Input{Kind: InputTab} }
func Backspace() Input            { return Input{Kind: InputBackspace} }

// ForceSolve is the debug-only shortcut; the controller ignores it
// unless the session was created with debug enabled.
func ForceSolve() Input { return Input{Kind: InputForceSolve} }
