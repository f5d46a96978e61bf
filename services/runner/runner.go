package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/Artt4/disc-golf-equipment-price-comparator/internal/scraper"
	"github.com/Artt4/disc-golf-equipment-price-comparator/logger"
)

// Gateway is the product sink a scraper run writes through, plus the
// teardown of its underlying connection.
type Gateway interface {
	scraper.Sink
	Close(ctx context.Context) error
}

// Opener hands out a fresh gateway per scraper invocation
type Opener interface {
	Open(ctx context.Context) (Gateway, error)
}

// OpenerFunc adapts a function to the Opener interface
type OpenerFunc func(ctx context.Context) (Gateway, error)

// Open calls the wrapped function
func (f OpenerFunc) Open(ctx context.Context) (Gateway, error) {
	return f(ctx)
}

// Runner invokes the store scrapers in a fixed sequence. Stores run one at
// a time: the isolation guarantee is about fault containment, not
// parallelism, and a single headless browser at a time keeps outbound load
// predictable.
type Runner struct {
	scrapers []scraper.Scraper
	opener   Opener
	log      *logger.Logger
}

// NewRunner creates a runner over the given scrapers
func NewRunner(scrapers []scraper.Scraper, opener Opener) *Runner {
	return &Runner{
		scrapers: scrapers,
		opener:   opener,
		log:      logger.ForRunner(),
	}
}

// RunAll runs every scraper in sequence. A failure or panic in one store is
// logged and contained; the remaining stores still run and their committed
// batches stay committed.
func (r *Runner) RunAll(ctx context.Context) {
	start := time.Now()
	for _, s := range r.scrapers {
		if ctx.Err() != nil {
			r.log.Warn().Msg("Run interrupted")
			return
		}
		r.runOne(ctx, s)
	}
	r.log.Info().Dur("elapsed", time.Since(start)).Int("stores", len(r.scrapers)).Msg("Run finished")
}

// RunStores runs only the named stores, in registration order
func (r *Runner) RunStores(ctx context.Context, names []string) error {
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = false
	}
	for _, s := range r.scrapers {
		if _, ok := wanted[s.Store()]; ok {
			wanted[s.Store()] = true
		}
	}
	for name, found := range wanted {
		if !found {
			return fmt.Errorf("unknown store %q", name)
		}
	}

	for _, s := range r.scrapers {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if wanted[s.Store()] {
			r.runOne(ctx, s)
		}
	}
	return nil
}

// Stores lists the registered store names in run order
func (r *Runner) Stores() []string {
	names := make([]string, 0, len(r.scrapers))
	for _, s := range r.scrapers {
		names = append(names, s.Store())
	}
	return names
}

// runOne opens a fresh gateway, runs a single scraper and guarantees
// teardown on every exit path, including panics
func (r *Runner) runOne(ctx context.Context, s scraper.Scraper) {
	log := logger.ForScraper(s.Store())

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("Scraper panicked")
		}
	}()

	gateway, err := r.opener.Open(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open database gateway")
		return
	}
	defer func() {
		if err := gateway.Close(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to close database gateway")
		}
	}()

	start := time.Now()
	log.Info().Msg("Starting scraper")
	if err := s.Run(ctx, gateway); err != nil {
		log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("Scraper failed")
		return
	}
	log.Info().Dur("elapsed", time.Since(start)).Msg("Scraper finished")
}
