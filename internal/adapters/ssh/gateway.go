// Package sshadapter is the credentialless SSH front door: every
// connection gets its own terminal UI program on an isolated session.
package sshadapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/muesli/termenv"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"svw.info/lattice/internal/metrics"
)

const (
	handshakeTimeout = 10 * time.Second
	// shellTimeout bounds how long a client may sit between opening the
	// session channel and asking for a shell.
	shellTimeout = 10 * time.Second
)

// Client describes one connected terminal to the model factory.
type Client struct {
	ID       string
	Term     string
	Window   Window
	Renderer *lipgloss.Renderer
	Logger   *zap.Logger
}

// ModelFactory builds the program model for a new client. ctx ends with
// the connection.
type ModelFactory func(ctx context.Context, c Client) (tea.Model, error)

type Options struct {
	HostKey     ssh.Signer
	NewModel    ModelFactory
	Logger      *zap.Logger
	MaxSessions int64
	AcceptRate  float64
	AcceptBurst int
	IdleTimeout time.Duration
}

// Gateway accepts SSH connections and runs one program per session.
type Gateway struct {
	opts    Options
	config  *ssh.ServerConfig
	sem     *semaphore.Weighted
	limiter *rate.Limiter
	wg      sync.WaitGroup
}

func New(opts Options) (*Gateway, error) {
	if opts.HostKey == nil {
		return nil, errors.New("ssh gateway needs a host key")
	}
	if opts.NewModel == nil {
		return nil, errors.New("ssh gateway needs a model factory")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MaxSessions < 1 {
		opts.MaxSessions = 512
	}
	limit := rate.Limit(opts.AcceptRate)
	if opts.AcceptRate <= 0 {
		limit = rate.Inf
	}
	if opts.AcceptBurst < 1 {
		opts.AcceptBurst = 1
	}

	cfg := &ssh.ServerConfig{
		NoClientAuth:  true,
		ServerVersion: "SSH-2.0-lattice",
	}
	cfg.AddHostKey(opts.HostKey)

	return &Gateway{
		opts:    opts,
		config:  cfg,
		sem:     semaphore.NewWeighted(opts.MaxSessions),
		limiter: rate.NewLimiter(limit, opts.AcceptBurst),
	}, nil
}

// Serve accepts on ln until ctx is canceled, then waits for open
// connections to wind down and returns nil.
func (g *Gateway) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	g.opts.Logger.Info("SSH gateway listening", zap.String("addr", ln.Addr().String()))
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				g.wg.Wait()
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			g.wg.Wait()
			return fmt.Errorf("accept: %w", err)
		}

		if !g.limiter.Allow() {
			metrics.GatewayRejected("rate")
			g.opts.Logger.Warn("Connection rejected by rate limit", zap.String("remote", conn.RemoteAddr().String()))
			_ = conn.Close()
			continue
		}
		if !g.sem.TryAcquire(1) {
			metrics.GatewayRejected("capacity")
			g.opts.Logger.Warn("Connection rejected at capacity", zap.String("remote", conn.RemoteAddr().String()))
			_ = conn.Close()
			continue
		}

		g.wg.Add(1)
		go func() {
			defer g.wg.Done()
			defer g.sem.Release(1)
			g.handleConn(ctx, conn)
		}()
	}
}

func (g *Gateway) handleConn(ctx context.Context, nc net.Conn) {
	id := uuid.NewString()
	log := g.opts.Logger.With(zap.String("session_id", id), zap.String("remote", nc.RemoteAddr().String()))

	_ = nc.SetDeadline(time.Now().Add(handshakeTimeout))
	sc, chans, reqs, err := ssh.NewServerConn(nc, g.config)
	if err != nil {
		metrics.GatewayRejected("handshake")
		log.Debug("SSH handshake failed", zap.Error(err))
		_ = nc.Close()
		return
	}
	_ = nc.SetDeadline(time.Time{})
	defer sc.Close()
	go ssh.DiscardRequests(reqs)

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(connCtx, func() { _ = sc.Close() })
	defer stop()

	metrics.ConnectionOpened()
	defer metrics.ConnectionClosed()
	log.Info("Connection opened", zap.String("client", string(sc.ClientVersion())))

	served := false
	for nch := range chans {
		if nch.ChannelType() != "session" {
			_ = nch.Reject(ssh.UnknownChannelType, "only session channels are supported")
			continue
		}
		if served {
			_ = nch.Reject(ssh.ResourceShortage, "one session per connection")
			continue
		}
		ch, chReqs, err := nch.Accept()
		if err != nil {
			log.Warn("Failed to accept channel", zap.Error(err))
			return
		}
		served = true
		g.runSession(connCtx, id, ch, chReqs, log)
		// the program is gone; tear down the connection with it
		cancel()
	}
	log.Info("Connection closed")
}

func (g *Gateway) runSession(ctx context.Context, id string, ch ssh.Channel, reqs <-chan *ssh.Request, log *zap.Logger) {
	defer ch.Close()

	var (
		mu      sync.Mutex
		term    = "xterm-256color"
		win     = Window{}.normalize()
		prog    *tea.Program
		started = make(chan bool, 1)
		once    sync.Once
	)
	signal := func(ok bool) { once.Do(func() { started <- ok }) }

	go func() {
		for req := range reqs {
			ok := false
			switch req.Type {
			case "pty-req":
				if t, w, valid := parsePtyRequest(req.Payload); valid {
					mu.Lock()
					term, win = t, w
					mu.Unlock()
					ok = true
				}
			case "window-change":
				if w, valid := parseWindowChange(req.Payload); valid {
					mu.Lock()
					win = w
					p := prog
					mu.Unlock()
					if p != nil {
						p.Send(tea.WindowSizeMsg{Width: w.Width, Height: w.Height})
					}
					ok = true
				}
			case "env":
				ok = true
			case "shell":
				ok = true
				signal(true)
			}
			if req.WantReply {
				_ = req.Reply(ok, nil)
			}
		}
		signal(false)
	}()

	select {
	case ok := <-started:
		if !ok {
			return
		}
	case <-time.After(shellTimeout):
		log.Debug("Client never requested a shell")
		return
	case <-ctx.Done():
		return
	}

	sessCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	renderer := lipgloss.NewRenderer(ch, termenv.WithUnsafe())
	renderer.SetColorProfile(termenv.ANSI256)

	mu.Lock()
	client := Client{ID: id, Term: term, Window: win, Renderer: renderer, Logger: log}
	mu.Unlock()

	model, err := g.opts.NewModel(sessCtx, client)
	if err != nil {
		log.Error("Failed to start session", zap.Error(err))
		_, _ = io.WriteString(ch, "lattice: could not start a session, please try again later\r\n")
		sendExitStatus(ch, 1)
		return
	}

	input := newIdleReader(ch, g.opts.IdleTimeout, cancel)
	defer input.stop()

	p := tea.NewProgram(model,
		tea.WithContext(sessCtx),
		tea.WithInput(input),
		tea.WithOutput(ch),
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)
	mu.Lock()
	prog = p
	mu.Unlock()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		log.Warn("Session ended with error", zap.Error(err))
	}
	if errors.Is(sessCtx.Err(), context.Canceled) && input.expired() {
		log.Info("Session idle timeout")
	}
	sendExitStatus(ch, 0)
}

func sendExitStatus(ch ssh.Channel, code uint32) {
	_, _ = ch.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{code}))
}

// idleReader cancels the session when nothing has been read for timeout.
// A zero timeout disables it.
type idleReader struct {
	r     io.Reader
	d     time.Duration
	timer *time.Timer
	mu    sync.Mutex
	fired bool
}

func newIdleReader(r io.Reader, d time.Duration, onIdle func()) *idleReader {
	ir := &idleReader{r: r, d: d}
	if d > 0 {
		ir.timer = time.AfterFunc(d, func() {
			ir.mu.Lock()
			ir.fired = true
			ir.mu.Unlock()
			onIdle()
		})
	}
	return ir
}

func (ir *idleReader) Read(p []byte) (int, error) {
	n, err := ir.r.Read(p)
	if n > 0 && ir.timer != nil {
		ir.timer.Reset(ir.d)
	}
	return n, err
}

func (ir *idleReader) expired() bool {
	ir.mu.Lock()
	defer ir.mu.Unlock()
	return ir.fired
}

func (ir *idleReader) stop() {
	if ir.timer != nil {
		ir.timer.Stop()
	}
}
