package sshadapter

import "golang.org/x/crypto/ssh"

const (
	DefaultWidth  = 120
	DefaultHeight = 40
	MinWidth      = 20
	MinHeight     = 10
)

// Window is a terminal size in character cells.
type Window struct {
	Width  int
	Height int
}

// normalize fills in the default size for clients that report zero and
// clamps everything else to the minimum.
func (w Window) normalize() Window {
	if w.Width == 0 {
		w.Width = DefaultWidth
	}
	if w.Height == 0 {
		w.Height = DefaultHeight
	}
	return Window{Width: max(w.Width, MinWidth), Height: max(w.Height, MinHeight)}
}

// RFC 4254 6.2
type ptyRequestMsg struct {
	Term     string
	Columns  uint32
	Rows     uint32
	Width    uint32
	Height   uint32
	Modelist string
}

// RFC 4254 6.7
type windowChangeMsg struct {
	Columns uint32
	Rows    uint32
	Width   uint32
	Height  uint32
}

func parsePtyRequest(payload []byte) (string, Window, bool) {
	var msg ptyRequestMsg
	if err := ssh.Unmarshal(payload, &msg); err != nil {
		return "", Window{}, false
	}
	return msg.Term, Window{Width: int(msg.Columns), Height: int(msg.Rows)}.normalize(), true
}

func parseWindowChange(payload []byte) (Window, bool) {
	var msg windowChangeMsg
	if err := ssh.Unmarshal(payload, &msg); err != nil {
		return Window{}, false
	}
	return Window{Width: int(msg.Columns), Height: int(msg.Rows)}.normalize(), true
}
