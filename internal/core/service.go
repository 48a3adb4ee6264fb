package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/xbrlmap/internal/metrics"
	"github.com/JonMunkholm/xbrlmap/internal/source"
	"github.com/JonMunkholm/xbrlmap/internal/taxonomy"
)

// DefaultLoadTimeout bounds fetching and building one document.
var DefaultLoadTimeout = 2 * time.Minute

// Options configures a Service. The zero value loads four documents at a
// time, logs to slog.Default and records no metrics.
type Options struct {
	Concurrency     int
	LoadTimeout     time.Duration
	Logger          *slog.Logger
	Metrics         *metrics.Metrics
	TaxonomyOptions []taxonomy.Option
}

// Service loads taxonomy documents from a source into a registry and
// answers queries against them.
type Service struct {
	registry *taxonomy.Registry
	src      source.Source
	logger   *slog.Logger
	metrics  *metrics.Metrics

	concurrency int
	loadTimeout time.Duration
	taxOpts     []taxonomy.Option
}

// NewService creates a Service. A nil registry means taxonomy.Default.
func NewService(registry *taxonomy.Registry, src source.Source, opts Options) *Service {
	if registry == nil {
		registry = taxonomy.Default
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	timeout := opts.LoadTimeout
	if timeout <= 0 {
		timeout = DefaultLoadTimeout
	}

	taxOpts := append([]taxonomy.Option{taxonomy.WithLogger(logger)}, opts.TaxonomyOptions...)

	return &Service{
		registry:    registry,
		src:         src,
		logger:      logger,
		metrics:     opts.Metrics,
		concurrency: concurrency,
		loadTimeout: timeout,
		taxOpts:     taxOpts,
	}
}

// Registry returns the registry the service loads into.
func (s *Service) Registry() *taxonomy.Registry { return s.registry }

// LoadedTaxonomy is one document built by a load run.
type LoadedTaxonomy struct {
	Name       string `json:"name"`
	EntryPoint string `json:"entryPoint"`
	Concepts   int    `json:"concepts"`
}

// LoadFailure is a document that could not be built.
type LoadFailure struct {
	Name string `json:"name"`
	Err  error  `json:"-"`
}

// LoadReport summarises one LoadAll run. Lists are sorted by document name.
type LoadReport struct {
	LoadID   string           `json:"loadId"`
	Started  time.Time        `json:"started"`
	Duration time.Duration    `json:"duration"`
	Loaded   []LoadedTaxonomy `json:"loaded"`
	Skipped  []string         `json:"skipped,omitempty"` // already loaded
	Failed   []LoadFailure    `json:"failed,omitempty"`
}

// Err joins the errors of every failed document, or returns nil.
func (r *LoadReport) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failed))
	for i, f := range r.Failed {
		errs[i] = fmt.Errorf("%s: %w", f.Name, f.Err)
	}
	return errors.Join(errs...)
}

func (r *LoadReport) sort() {
	sort.Slice(r.Loaded, func(i, j int) bool { return r.Loaded[i].Name < r.Loaded[j].Name })
	sort.Strings(r.Skipped)
	sort.Slice(r.Failed, func(i, j int) bool { return r.Failed[i].Name < r.Failed[j].Name })
}

// LoadAll builds every document the source lists. Documents are built
// concurrently and independently: a failure is logged and reported but
// never stops the others, and a failed document leaves no taxonomy behind.
// The returned error is only set when the source cannot be listed or ctx
// ends.
func (s *Service) LoadAll(ctx context.Context) (*LoadReport, error) {
	report := &LoadReport{LoadID: uuid.NewString(), Started: time.Now()}
	ctx = ContextWithLoadID(ctx, report.LoadID)
	logger := s.logger.With("load_id", report.LoadID)

	names, err := s.src.List(ctx)
	if err != nil {
		return report, fmt.Errorf("list taxonomy documents: %w", err)
	}
	logger.Info("Loading taxonomies", "documents", len(names), "concurrency", s.concurrency)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, name := range names {
		g.Go(func() error {
			t, err := s.load(gctx, name)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				report.Loaded = append(report.Loaded, LoadedTaxonomy{
					Name:       name,
					EntryPoint: t.EntryPoint(),
					Concepts:   len(t.Concepts()),
				})
			case errors.Is(err, taxonomy.ErrAlreadyLoaded):
				report.Skipped = append(report.Skipped, name)
			default:
				report.Failed = append(report.Failed, LoadFailure{Name: name, Err: err})
			}
			return nil
		})
	}
	_ = g.Wait()

	report.Duration = time.Since(report.Started)
	report.sort()
	s.metrics.SetRegistered(s.registry.Len())

	logger.Info("Taxonomies loaded",
		"loaded", len(report.Loaded),
		"skipped", len(report.Skipped),
		"failed", len(report.Failed),
		"duration", report.Duration)

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// LoadDocument builds one named document. Loading an entry point that is
// already registered returns taxonomy.ErrAlreadyLoaded and leaves the
// registered taxonomy in place.
func (s *Service) LoadDocument(ctx context.Context, name string) (*taxonomy.Taxonomy, error) {
	if LoadIDFromContext(ctx) == "" {
		ctx = ContextWithLoadID(ctx, uuid.NewString())
	}
	t, err := s.load(ctx, name)
	s.metrics.SetRegistered(s.registry.Len())
	return t, err
}

func (s *Service) load(ctx context.Context, name string) (*taxonomy.Taxonomy, error) {
	logger := s.logger.With("load_id", LoadIDFromContext(ctx), "document", name)
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.loadTimeout)
	defer cancel()

	t, err := s.build(ctx, name)
	elapsed := time.Since(start)

	switch {
	case err == nil:
		s.metrics.RecordLoad(metrics.ResultSuccess, elapsed)
		logger.Info("Taxonomy loaded",
			"entry_point", t.EntryPoint(),
			"concepts", len(t.Concepts()),
			"duration", elapsed)
	case errors.Is(err, taxonomy.ErrAlreadyLoaded):
		s.metrics.RecordLoad(metrics.ResultSkipped, elapsed)
		logger.Warn("Taxonomy already loaded; restart to replace it", "error", err)
	default:
		s.metrics.RecordLoad(metrics.ResultFailure, elapsed)
		logger.Error("Taxonomy load failed", "error", err)
	}
	return t, err
}

func (s *Service) build(ctx context.Context, name string) (*taxonomy.Taxonomy, error) {
	data, err := s.src.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	doc, err := taxonomy.Parse(data)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.registry.Load(doc, s.taxOpts...)
}

// Watch loads every document the watcher reports until ctx ends or the
// watcher stops. Documents whose entry point is already registered are
// logged and left alone.
func (s *Service) Watch(ctx context.Context, events <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case name, ok := <-events:
			if !ok {
				return
			}
			// load has already logged the outcome.
			_, _ = s.LoadDocument(ctx, name)
		}
	}
}
