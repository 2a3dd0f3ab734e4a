package httpadapter

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"svw.info/lattice/internal/automaton"
	"svw.info/lattice/internal/domain"
	"svw.info/lattice/internal/ports"
	"svw.info/lattice/internal/solver"
	"svw.info/lattice/internal/usecase"
	"svw.info/lattice/web"
)

// Options carries what the landing page and the generator endpoint need
// beyond the use cases.
type Options struct {
	Seeder  ports.Seeder
	Table   automaton.Table
	Logger  *zap.Logger
	SSHPort int
	Host    string
}

type Handler struct {
	UC   *usecase.Service
	opts Options
}

func New(uc *usecase.Service, opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Host == "" {
		opts.Host = "localhost"
	}
	return &Handler{UC: uc, opts: opts}
}

// NewRouter builds a gin engine with request logging, recovery, the
// landing page and every API route.
func (h *Handler) NewRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.opts.Logger))
	r.SetHTMLTemplate(web.Templates())
	r.StaticFS("/static", web.StaticFS())
	r.GET("/", h.handleIndex)
	r.GET("/healthz", h.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	h.Register(r.Group("/api"))
	return r
}

// Register mounts the JSON API on rg.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/solve", h.handleSolve)
	rg.POST("/generate", h.handleGenerate)
	rg.POST("/hint", h.handleHint)
	rg.GET("/palette", h.handlePalette)
}

// requestLogger logs method, path, status, bytes, and duration.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int("bytes", c.Writer.Size()),
			zap.Duration("dur", time.Since(start).Round(time.Millisecond)),
		)
	}
}

type errorResp struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func badRequest(c *gin.Context, code string, err error) {
	c.JSON(http.StatusBadRequest, errorResp{Error: err.Error(), Code: code})
}

func colorNames(v domain.Vector) []string {
	out := make([]string, len(v))
	for i, c := range v {
		out[i] = c.String()
	}
	return out
}

func buttonInts(seq []domain.ButtonID) []int {
	out := make([]int, len(seq))
	for i, b := range seq {
		out[i] = int(b)
	}
	return out
}

// ---- Solve ----

type solveReq struct {
	Start  string `json:"start"`
	Target string `json:"target" binding:"required"`
}

type solveResp struct {
	Moves      []int   `json:"moves"`
	Labels     []int   `json:"labels"`
	Length     int     `json:"length"`
	Nodes      int     `json:"nodes"`
	DurationMs float64 `json:"durationMs"`
}

func (h *Handler) handleSolve(c *gin.Context) {
	var req solveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}
	start := domain.AllOff
	if req.Start != "" {
		v, err := domain.ParseVector(req.Start)
		if err != nil {
			badRequest(c, "INVALID_START", err)
			return
		}
		start = v
	}
	target, err := domain.ParseVector(req.Target)
	if err != nil {
		badRequest(c, "INVALID_TARGET", err)
		return
	}

	path, st, err := h.UC.Solve(c.Request.Context(), start, target)
	if err != nil {
		status, code := http.StatusInternalServerError, "SOLVE_FAILED"
		if errors.Is(err, solver.ErrUnreachable) {
			status, code = http.StatusUnprocessableEntity, "UNREACHABLE"
		}
		h.opts.Logger.Warn("Solve failed", zap.Error(err), zap.String("target", target.String()))
		c.JSON(status, errorResp{Error: err.Error(), Code: code})
		return
	}

	labels := make([]int, len(path))
	for i, b := range path {
		labels[i] = int(b) + 1
	}
	c.JSON(http.StatusOK, solveResp{
		Moves:      buttonInts(path),
		Labels:     labels,
		Length:     len(path),
		Nodes:      st.Nodes,
		DurationMs: float64(st.Duration.Microseconds()) / 1000,
	})
}

// ---- Generate ----

type generateReq struct {
	Seed int64 `json:"seed"`
}

type generateResp struct {
	Seed    int64    `json:"seed"`
	Target  []string `json:"target"`
	Presses []int    `json:"presses"`
	Optimal int      `json:"optimal"`
}

func (h *Handler) handleGenerate(c *gin.Context) {
	var req generateReq
	// an empty body means "pick a seed"
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}
	seed := req.Seed
	if seed == 0 && h.opts.Seeder != nil {
		seed = h.opts.Seeder.Seed()
	}

	ctx := c.Request.Context()
	p, _, err := h.UC.Generate(ctx, seed)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResp{Error: err.Error(), Code: "GENERATE_FAILED"})
		return
	}
	path, _, err := h.UC.Solve(ctx, domain.AllOff, p.Target)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResp{Error: err.Error(), Code: "SOLVE_FAILED"})
		return
	}
	c.JSON(http.StatusOK, generateResp{
		Seed:    p.Seed,
		Target:  colorNames(p.Target),
		Presses: buttonInts(p.Presses),
		Optimal: len(path),
	})
}

// ---- Hint ----

type hintReq struct {
	Current string `json:"current" binding:"required"`
	Target  string `json:"target" binding:"required"`
}

type hintResp struct {
	Found     bool   `json:"found"`
	Button    int    `json:"button"`
	Remaining int    `json:"remaining"`
	Message   string `json:"message,omitempty"`
}

func (h *Handler) handleHint(c *gin.Context) {
	var req hintReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}
	current, err := domain.ParseVector(req.Current)
	if err != nil {
		badRequest(c, "INVALID_CURRENT", err)
		return
	}
	target, err := domain.ParseVector(req.Target)
	if err != nil {
		badRequest(c, "INVALID_TARGET", err)
		return
	}
	hint, ok, err := h.UC.Hint(c.Request.Context(), current, target)
	if err != nil {
		status, code := http.StatusInternalServerError, "HINT_FAILED"
		if errors.Is(err, solver.ErrUnreachable) {
			status, code = http.StatusUnprocessableEntity, "UNREACHABLE"
		}
		c.JSON(status, errorResp{Error: err.Error(), Code: code})
		return
	}
	if !ok {
		c.JSON(http.StatusOK, hintResp{Found: false, Message: "State already matches target."})
		return
	}
	c.JSON(http.StatusOK, hintResp{
		Found:     true,
		Button:    int(hint.Button),
		Remaining: hint.Remaining,
		Message:   hint.Message,
	})
}

// ---- Palette ----

type effectResp struct {
	Index int `json:"index"`
	Delta int `json:"delta"`
}

type paletteResp struct {
	Colors []string       `json:"colors"`
	Wiring [][]effectResp `json:"wiring"`
	Rules  []string       `json:"rules"`
}

func (h *Handler) handlePalette(c *gin.Context) {
	resp := paletteResp{Rules: automaton.Rules}
	for i := 0; i < domain.Colors; i++ {
		resp.Colors = append(resp.Colors, domain.Color(i).String())
	}
	for _, act := range h.opts.Table {
		row := make([]effectResp, len(act))
		for i, e := range act {
			row[i] = effectResp{Index: e.Index, Delta: int(e.Delta)}
		}
		resp.Wiring = append(resp.Wiring, row)
	}
	c.JSON(http.StatusOK, resp)
}

// ---- Pages ----

func (h *Handler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) handleIndex(c *gin.Context) {
	colors := make([]string, domain.Colors)
	for i := range colors {
		colors[i] = domain.Color(i).String()
	}
	c.HTML(http.StatusOK, "index.tmpl", gin.H{
		"Splash":  web.Splash(),
		"SSHPort": h.opts.SSHPort,
		"Host":    h.opts.Host,
		"Colors":  colors,
		"Rules":   automaton.Rules,
	})
}
