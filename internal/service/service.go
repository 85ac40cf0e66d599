// Package service ties the corpus store, chain cache and generator together
// into the operations exposed by the CLI and the HTTP server.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"babble/internal/cache"
	"babble/internal/config"
	"babble/internal/db"
	"babble/internal/hints"
	"babble/internal/markov"
	"babble/internal/memory"
	"babble/internal/metrics"
	"babble/internal/sanitize"
)

// Store is the persistence the service needs. *db.Store implements it.
type Store interface {
	AddMessage(ctx context.Context, scope, text string) error
	AddMessages(ctx context.Context, scope string, texts []string) (int, error)
	LoadAll(ctx context.Context) ([]string, error)
	Count(ctx context.Context, scope string) (int, error)
	Scopes(ctx context.Context) ([]string, error)
	AddLearningGroup(ctx context.Context, scope string) error
	RemoveLearningGroup(ctx context.Context, scope string) error
	LearningGroups(ctx context.Context) ([]string, error)
	Rewrite(ctx context.Context, fn db.RewriteFunc, dryRun bool) (db.CleanStats, error)
}

var ErrEmptyScope = errors.New("scope is required")

type LearnOutcome string

const (
	OutcomeStored   LearnOutcome = "stored"
	OutcomeIgnored  LearnOutcome = "ignored"
	OutcomeRejected LearnOutcome = "rejected"
)

type Options struct {
	Store     Store
	Generator *markov.Generator
	Cache     *cache.ChainCache
	Memory    *memory.Recent
	Topics    *hints.Tracker
	Rules     sanitize.Rules
	Logger    *slog.Logger
}

type Service struct {
	store  Store
	gen    *markov.Generator
	chains *cache.ChainCache
	mem    *memory.Recent
	topics *hints.Tracker
	rules  sanitize.Rules
	logger *slog.Logger

	mu       sync.RWMutex
	learning map[string]struct{}
}

// New fills any missing collaborator except Store with its default.
func New(opts Options) *Service {
	s := &Service{
		store:    opts.Store,
		gen:      opts.Generator,
		chains:   opts.Cache,
		mem:      opts.Memory,
		topics:   opts.Topics,
		rules:    opts.Rules,
		logger:   opts.Logger,
		learning: map[string]struct{}{},
	}
	if s.gen == nil {
		s.gen = markov.New(markov.DefaultConfig())
	}
	if s.chains == nil {
		s.chains = cache.New(cache.DefaultTTL)
	}
	if s.mem == nil {
		s.mem = memory.NewRecent(memory.DefaultCapacity, memory.DefaultWindow)
	}
	if s.topics == nil {
		s.topics = hints.NewTracker(0, hints.DefaultMax)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// FromConfig builds a Service from cfg around store.
func FromConfig(store Store, cfg config.Config, logger *slog.Logger) *Service {
	return New(Options{
		Store:     store,
		Generator: markov.New(cfg.Generator, markov.WithLogger(logger)),
		Cache:     cache.New(cfg.Cache.TTL),
		Memory:    memory.NewRecent(cfg.Memory.Capacity, cfg.Memory.Window),
		Topics:    hints.NewTracker(cfg.Hints.Buffer, cfg.Hints.Max),
		Rules:     cfg.Sanitize,
		Logger:    logger,
	})
}

// Start loads the learning allow list.
func (s *Service) Start(ctx context.Context) error {
	groups, err := s.store.LearningGroups(ctx)
	if err != nil {
		return fmt.Errorf("load learning groups: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.learning = make(map[string]struct{}, len(groups))
	for _, g := range groups {
		s.learning[g] = struct{}{}
	}
	s.logger.Info("service started", "learning_groups", len(groups))
	return nil
}

// chain returns the chain over every stored message.
func (s *Service) chain(ctx context.Context) (*markov.Chain, error) {
	chain, hit, err := s.chains.Get(ctx, cache.GlobalKey, func(ctx context.Context, _ string) (*markov.Chain, error) {
		corpus, err := s.store.LoadAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("load corpus: %w", err)
		}
		metrics.ObserveChainBuild()
		return markov.BuildChain(corpus, s.gen.Config().Order), nil
	})
	metrics.ObserveCache(hit)
	return chain, err
}

type GenerateRequest struct {
	Scope            string
	MaxWords         int
	Hints            []string
	RequireLooksGood bool
}

// Generate produces a sentence for scope, steering it with the scope's
// recent topics and any request hints.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (markov.Result, error) {
	return s.generate(ctx, "plain", req, s.mergedHints(req.Scope, req.Hints))
}

// mergedHints puts request hints ahead of the scope's topics, capped at the
// tracker's hint limit.
func (s *Service) mergedHints(scope string, requested []string) []string {
	return hints.Merge(requested, s.topics.Hints(scope), s.topics.MaxHints())
}

// Reply generates an answer to text using only hints drawn from text.
func (s *Service) Reply(ctx context.Context, scope, text string, maxWords int) (markov.Result, error) {
	replyHints := hints.FromTexts([]string{text}, s.topics.MaxHints())
	return s.generate(ctx, "reply", GenerateRequest{Scope: scope, MaxWords: maxWords}, replyHints)
}

func (s *Service) generate(ctx context.Context, mode string, req GenerateRequest, hintList []string) (markov.Result, error) {
	if strings.TrimSpace(req.Scope) == "" {
		return markov.Result{}, ErrEmptyScope
	}
	start := time.Now()
	chain, err := s.chain(ctx)
	if err != nil {
		return markov.Result{}, err
	}
	res := s.gen.GenerateSentence(chain, markov.Request{
		Scope:            req.Scope,
		WordLimit:        req.MaxWords,
		Hints:            hintList,
		RequireLooksGood: req.RequireLooksGood,
	}, s.mem)
	s.observe(mode, req.Scope, res, start)
	return res, nil
}

// Related generates a sentence from the part of the corpus closest to seed.
func (s *Service) Related(ctx context.Context, scope, seed string, maxWords int) (markov.Result, error) {
	if strings.TrimSpace(scope) == "" {
		return markov.Result{}, ErrEmptyScope
	}
	start := time.Now()
	chain, err := s.chain(ctx)
	if err != nil {
		return markov.Result{}, err
	}
	res := s.gen.GenerateRelatedFrom(chain, markov.RelatedRequest{
		Scope:     scope,
		Seed:      seed,
		WordLimit: maxWords,
		Hints:     s.topics.Hints(scope),
	}, s.mem)
	s.observe("related", scope, res, start)
	return res, nil
}

func (s *Service) observe(mode, scope string, res markov.Result, start time.Time) {
	elapsed := time.Since(start)
	metrics.ObserveGeneration(mode, string(res.Strategy), elapsed)
	level := slog.LevelInfo
	if res.Strategy == markov.StrategyNone {
		level = slog.LevelWarn
	}
	s.logger.Log(context.Background(), level, "generated",
		"mode", mode,
		"scope", scope,
		"strategy", string(res.Strategy),
		"attempts", res.Attempts,
		"related", res.Related,
		"elapsed_ms", elapsed.Milliseconds())
}

// Learn feeds an incoming chat text. Every text updates the scope's topics;
// only texts from learning scopes that pass sanitizing are stored.
func (s *Service) Learn(ctx context.Context, scope, text string) (LearnOutcome, error) {
	if strings.TrimSpace(scope) == "" {
		return "", ErrEmptyScope
	}
	s.topics.Add(scope, text)

	outcome, err := s.learn(ctx, scope, text)
	if err != nil {
		return "", err
	}
	metrics.ObserveLearn(string(outcome))
	return outcome, nil
}

func (s *Service) learn(ctx context.Context, scope, text string) (LearnOutcome, error) {
	if !s.IsLearning(scope) || strings.HasPrefix(strings.TrimSpace(text), "/") {
		return OutcomeIgnored, nil
	}
	cleaned, ok := sanitize.Message(text)
	if !ok {
		return OutcomeRejected, nil
	}
	if reason := s.rules.Drop(cleaned); reason != "" {
		s.logger.Debug("message rejected", "scope", scope, "reason", reason)
		return OutcomeRejected, nil
	}
	if err := s.store.AddMessage(ctx, scope, cleaned); err != nil {
		return "", fmt.Errorf("store message: %w", err)
	}
	s.chains.Invalidate(scope)
	return OutcomeStored, nil
}

type ImportResult struct {
	Stored   int `json:"stored"`
	Rejected int `json:"rejected"`
}

// Import stores texts in scope after applying the sanitize rules. Learning
// scopes are not required.
func (s *Service) Import(ctx context.Context, scope string, texts []string) (ImportResult, error) {
	if strings.TrimSpace(scope) == "" {
		return ImportResult{}, ErrEmptyScope
	}
	var res ImportResult
	kept := make([]string, 0, len(texts))
	for _, raw := range texts {
		cleaned, ok := s.rules.Clean(raw)
		if !ok {
			res.Rejected++
			continue
		}
		kept = append(kept, cleaned)
	}
	n, err := s.store.AddMessages(ctx, scope, kept)
	if err != nil {
		return res, fmt.Errorf("import messages: %w", err)
	}
	res.Stored = n
	s.chains.Invalidate(scope)
	s.logger.Info("imported messages", "scope", scope, "stored", res.Stored, "rejected", res.Rejected)
	return res, nil
}

// SetLearning turns learning on or off for scope.
func (s *Service) SetLearning(ctx context.Context, scope string, enabled bool) error {
	if strings.TrimSpace(scope) == "" {
		return ErrEmptyScope
	}
	if enabled {
		if err := s.store.AddLearningGroup(ctx, scope); err != nil {
			return err
		}
	} else if err := s.store.RemoveLearningGroup(ctx, scope); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if enabled {
		s.learning[scope] = struct{}{}
	} else {
		delete(s.learning, scope)
	}
	s.logger.Info("learning changed", "scope", scope, "enabled", enabled)
	return nil
}

func (s *Service) IsLearning(scope string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.learning[scope]
	return ok
}

// Clean runs every stored message through the sanitize rules and drops
// duplicates within each scope.
func (s *Service) Clean(ctx context.Context, dryRun bool) (db.CleanStats, error) {
	stats, err := s.store.Rewrite(ctx, s.rules.Clean, dryRun)
	if err != nil {
		return stats, fmt.Errorf("clean corpus: %w", err)
	}
	if !dryRun {
		s.chains.Clear()
	}
	s.logger.Info("cleaned corpus", "dry_run", dryRun, "total", stats.Total, "kept", stats.Kept, "dropped", stats.Dropped, "updated", stats.Updated)
	return stats, nil
}

type Stats struct {
	Messages       int         `json:"messages"`
	Scopes         []string    `json:"scopes"`
	LearningGroups []string    `json:"learning_groups"`
	Cache          cache.Stats `json:"cache"`
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	count, err := s.store.Count(ctx, "")
	if err != nil {
		return Stats{}, err
	}
	scopes, err := s.store.Scopes(ctx)
	if err != nil {
		return Stats{}, err
	}
	s.mu.RLock()
	learning := make([]string, 0, len(s.learning))
	for g := range s.learning {
		learning = append(learning, g)
	}
	s.mu.RUnlock()
	slices.Sort(learning)

	return Stats{
		Messages:       count,
		Scopes:         scopes,
		LearningGroups: learning,
		Cache:          s.chains.Stats(),
	}, nil
}
