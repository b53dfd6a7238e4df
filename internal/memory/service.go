package memory

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	apperr "github.com/theshibabasement/neuroflow/internal/pkg/errors"
	"github.com/theshibabasement/neuroflow/internal/platform/logger"
)

// Options tunes the retrieval pipeline. Zero values are replaced by
// DefaultOptions values at construction.
type Options struct {
	// SimilarityThreshold is the minimum cosine similarity a vector
	// candidate must reach.
	SimilarityThreshold float64
	// CandidateMultiplier bounds the vector candidate scan to
	// multiplier*limit most recent records.
	CandidateMultiplier int
	// ChannelTimeout bounds each retrieval channel individually; a timed
	// out channel degrades to empty.
	ChannelTimeout time.Duration
	// MaxTerms caps how many expanded terms the graph channel uses.
	MaxTerms int
	// MaxContextLength bounds the synthesized context string.
	MaxContextLength int
	// DefaultLimit applies when a caller passes limit <= 0.
	DefaultLimit int
}

func DefaultOptions() Options {
	return Options{
		SimilarityThreshold: 0.7,
		CandidateMultiplier: 3,
		ChannelTimeout:      5 * time.Second,
		MaxTerms:            3,
		MaxContextLength:    2000,
		DefaultLimit:        5,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.SimilarityThreshold <= 0 {
		o.SimilarityThreshold = def.SimilarityThreshold
	}
	if o.CandidateMultiplier <= 0 {
		o.CandidateMultiplier = def.CandidateMultiplier
	}
	if o.ChannelTimeout <= 0 {
		o.ChannelTimeout = def.ChannelTimeout
	}
	if o.MaxTerms <= 0 {
		o.MaxTerms = def.MaxTerms
	}
	if o.MaxContextLength <= 0 {
		o.MaxContextLength = def.MaxContextLength
	}
	if o.DefaultLimit <= 0 {
		o.DefaultLimit = def.DefaultLimit
	}
	return o
}

// Service is the retrieval and write core. One instance is constructed at
// startup and shared; it holds only long-lived client handles and is safe
// for concurrent use.
type Service struct {
	store  Store
	writer *Writer
	vector *vectorChannel
	graph  *graphChannel
	text   *textChannel
	synth  *synthesizer
	opts   Options
	log    *logger.Logger
	tracer trace.Tracer
}

func NewService(store Store, embed Embedder, extract Extractor, expand TermExpander, summarize Summarizer, log *logger.Logger, opts Options) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("memory service: store required")
	}
	if log == nil {
		return nil, fmt.Errorf("memory service: logger required")
	}
	opts = opts.withDefaults()
	log = log.With("service", "Memory")

	writer, err := NewWriter(store, embed, extract, log)
	if err != nil {
		return nil, err
	}

	return &Service{
		store:  store,
		writer: writer,
		vector: &vectorChannel{
			store:      store,
			embed:      embed,
			threshold:  opts.SimilarityThreshold,
			multiplier: opts.CandidateMultiplier,
		},
		graph: &graphChannel{
			store:    store,
			expander: expand,
			maxTerms: opts.MaxTerms,
		},
		text:   &textChannel{store: store},
		synth:  &synthesizer{summarizer: summarize, log: log},
		opts:   opts,
		log:    log,
		tracer: otel.Tracer("neuroflow/memory"),
	}, nil
}

// GetContext fans the query out to the three retrieval channels, merges and
// ranks their results, and synthesizes a bounded context string. An empty
// string means no context exists for the scope. It fails only when every
// channel errored; a subset of channel failures degrades the result instead.
func (s *Service) GetContext(ctx context.Context, scope Scope, query string, limit int) (string, error) {
	if limit <= 0 {
		limit = s.opts.DefaultLimit
	}

	ctx, span := s.tracer.Start(ctx, "memory.GetContext", trace.WithAttributes(
		attribute.String("scope.type", string(scope.Type)),
		attribute.Int("limit", limit),
	))
	defer span.End()

	var (
		vectorOut, graphOut, textOut []Candidate
		vectorErr, graphErr, textErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vectorOut, vectorErr = s.runChannel(gctx, ChannelVector, scope, query, limit, s.vector.retrieve)
		return nil
	})
	g.Go(func() error {
		graphOut, graphErr = s.runChannel(gctx, ChannelGraph, scope, query, limit, s.graph.retrieve)
		return nil
	})
	g.Go(func() error {
		textOut, textErr = s.runChannel(gctx, ChannelText, scope, query, limit, s.text.retrieve)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if vectorErr != nil && graphErr != nil && textErr != nil {
		return "", fmt.Errorf("%w: all retrieval channels failed", apperr.ErrStoreUnavailable)
	}

	merged := mergeCandidates(vectorOut, graphOut, textOut, limit)
	span.SetAttributes(
		attribute.Int("candidates.vector", len(vectorOut)),
		attribute.Int("candidates.graph", len(graphOut)),
		attribute.Int("candidates.merged", len(merged)),
	)
	if len(merged) == 0 {
		return "", nil
	}

	return s.synth.compose(ctx, merged, query, s.opts.MaxContextLength), nil
}

type channelFunc func(ctx context.Context, scope Scope, query string, limit int) ([]Candidate, error)

// runChannel applies the per-channel timeout and soft-fails: errors and
// timeouts are logged and reported back as an empty result plus the error
// for the all-channels-failed check.
func (s *Service) runChannel(ctx context.Context, name RetrievalChannel, scope Scope, query string, limit int, fn channelFunc) ([]Candidate, error) {
	cctx, cancel := context.WithTimeout(ctx, s.opts.ChannelTimeout)
	defer cancel()

	out, err := fn(cctx, scope, query, limit)
	if err != nil {
		s.log.Warn("retrieval channel degraded to empty",
			"channel", string(name), "scope_id", scope.ID, "error", err)
		return nil, err
	}
	return out, nil
}

// AddMemory stores one interaction with extracted knowledge. A nil error is
// the success ("true") outcome; failure means the record itself could not be
// persisted.
func (s *Service) AddMemory(ctx context.Context, scope Scope, question, answer, conversationContext string) error {
	ctx, span := s.tracer.Start(ctx, "memory.AddMemory", trace.WithAttributes(
		attribute.String("scope.type", string(scope.Type)),
	))
	defer span.End()
	return s.writer.Add(ctx, scope, question, answer, conversationContext)
}

// ClearScope removes the scope's memory records. Derived entities and
// relationships survive; the clear is documented as partial forgetting.
func (s *Service) ClearScope(ctx context.Context, scope Scope) (int64, error) {
	deleted, err := s.store.ClearScope(ctx, scope)
	if err != nil {
		return 0, err
	}
	s.log.Info("scope cleared", "scope_id", scope.ID, "scope_type", string(scope.Type), "deleted", deleted)
	return deleted, nil
}

// KnowledgeGraph exposes a bounded view of the scope's entities and
// relationships for inspection endpoints.
func (s *Service) KnowledgeGraph(ctx context.Context, scope Scope, limit int) (*GraphSnapshot, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.store.EntityGraph(ctx, scope, limit)
}

func (s *Service) Stats(ctx context.Context, scope Scope) (*ScopeStats, error) {
	return s.store.Stats(ctx, scope)
}
