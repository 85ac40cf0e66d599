package markov

import (
	"io"
	"log/slog"
	"math/rand/v2"
)

// Rand is the source of randomness used for every pick.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Generator runs start selection, walks and the retry controller over a
// Chain. It holds no per-call state and is safe for concurrent use when its
// Rand is.
type Generator struct {
	cfg    Config
	rng    Rand
	logger *slog.Logger
}

type Option func(*Generator)

// WithRand replaces the default math/rand/v2 source, mostly for tests.
func WithRand(r Rand) Option {
	return func(g *Generator) {
		if r != nil {
			g.rng = r
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

func New(cfg Config, opts ...Option) *Generator {
	g := &Generator{
		cfg:    cfg.normalized(),
		rng:    globalRand{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Config returns the effective configuration after clamping.
func (g *Generator) Config() Config {
	return g.cfg
}

func (g *Generator) pick(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[g.rng.IntN(len(list))]
}
