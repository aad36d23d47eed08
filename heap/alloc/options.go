package alloc

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joshuapare/heapkit/internal/logger"
)

// ExactFitPolicy decides what happens when the first fitting free block is
// exactly the requested capacity and cannot leave a remainder behind.
type ExactFitPolicy uint8

const (
	// ExactFitConsume hands the whole block out. Default.
	ExactFitConsume ExactFitPolicy = iota

	// ExactFitFail refuses the request with ErrNoFit.
	ExactFitFail
)

func (p ExactFitPolicy) String() string {
	switch p {
	case ExactFitConsume:
		return "consume"
	case ExactFitFail:
		return "fail"
	default:
		return fmt.Sprintf("ExactFitPolicy(%d)", uint8(p))
	}
}

// ParseExactFitPolicy parses "consume" or "fail".
func ParseExactFitPolicy(s string) (ExactFitPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "consume", "":
		return ExactFitConsume, nil
	case "fail":
		return ExactFitFail, nil
	default:
		return 0, fmt.Errorf("alloc: unknown exact-fit policy %q (want consume or fail)", s)
	}
}

// Options configures an Allocator.
type Options struct {
	// Logger receives growth, split and coalesce records at debug level and
	// corruption at error level.
	// Default: logger.L (discards unless HEAPKIT_LOG_ALLOC is set)
	Logger *slog.Logger

	// Abort is called with a *CorruptionError. It must not return.
	// Default: PanicAbort
	Abort func(error)

	// ExactFit selects the exact-fit behaviour.
	// Default: ExactFitConsume
	ExactFit ExactFitPolicy

	// IndexedCoalesce keeps start/end maps of the free list so physical
	// neighbours are found in O(1) instead of a list scan. Merge results are
	// identical either way.
	// Default: false
	IndexedCoalesce bool

	// OnGrow is called after every successful heap growth (test hook).
	OnGrow func(Segment)
}

// DefaultOptions returns the options New starts from.
func DefaultOptions() Options {
	return Options{
		Logger:   logger.L,
		Abort:    PanicAbort,
		ExactFit: ExactFitConsume,
	}
}

// Option mutates Options.
type Option func(*Options)

// WithOptions replaces the whole option set; nil fields fall back to defaults.
func WithOptions(o Options) Option {
	return func(dst *Options) { *dst = o }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithAbort sets the corruption handler.
func WithAbort(fn func(error)) Option {
	return func(o *Options) { o.Abort = fn }
}

// WithExactFit sets the exact-fit policy.
func WithExactFit(p ExactFitPolicy) Option {
	return func(o *Options) { o.ExactFit = p }
}

// WithIndexedCoalesce enables the O(1) neighbour indexes.
func WithIndexedCoalesce(on bool) Option {
	return func(o *Options) { o.IndexedCoalesce = on }
}

// WithOnGrow installs a growth hook.
func WithOnGrow(fn func(Segment)) Option {
	return func(o *Options) { o.OnGrow = fn }
}

func (o *Options) fillDefaults() {
	d := DefaultOptions()
	if o.Logger == nil {
		o.Logger = d.Logger
	}
	if o.Abort == nil {
		o.Abort = d.Abort
	}
}
