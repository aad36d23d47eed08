// Package printer renders an allocator's heap layout, free list and
// statistics as text or JSON.
package printer

import (
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/heapkit/heap/alloc"
)

const (
	DefaultIndentSize = 2
	DefaultMaxBlocks  = 0
)

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs human-readable text format.
	FormatText Format = "text"

	// FormatJSON outputs JSON format.
	FormatJSON Format = "json"
)

// ParseFormat accepts "text" or "json".
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatJSON:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("printer: unknown format %q", s)
	}
}

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json).
	// Default: FormatText
	Format Format

	// IndentSize is the number of spaces per indent level (text format only).
	// Default: 2
	IndentSize int

	// MaxBlocks limits how many blocks the layout lists (0 = unlimited).
	// Default: 0
	MaxBlocks int

	// ShowAllocated includes allocated blocks in the layout.
	// Default: true
	ShowAllocated bool

	// ShowFree includes free blocks in the layout.
	// Default: true
	ShowFree bool

	// Language selects digit grouping for byte counts (text format only).
	// Default: language.English
	Language language.Tag
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:        FormatText,
		IndentSize:    DefaultIndentSize,
		MaxBlocks:     DefaultMaxBlocks,
		ShowAllocated: true,
		ShowFree:      true,
		Language:      language.English,
	}
}

// Printer handles formatted output of one allocator.
type Printer struct {
	opts   Options
	writer io.Writer
	heap   *alloc.Allocator
	num    *message.Printer
}

// New creates a new Printer.
//
// Example:
//
//	p := printer.New(a, os.Stdout, printer.DefaultOptions())
//	p.PrintLayout()
func New(a *alloc.Allocator, w io.Writer, opts Options) *Printer {
	if opts.IndentSize < 0 {
		opts.IndentSize = DefaultIndentSize
	}
	if opts.Format == "" {
		opts.Format = FormatText
	}
	return &Printer{
		opts:   opts,
		writer: w,
		heap:   a,
		num:    message.NewPrinter(opts.Language),
	}
}

// PrintLayout prints every block in address order.
func (p *Printer) PrintLayout() error {
	blocks, truncated, err := p.blocks()
	if err != nil {
		return err
	}
	if p.opts.Format == FormatJSON {
		return p.printLayoutJSON(blocks, truncated)
	}
	return p.printLayoutText(blocks, truncated)
}

// PrintFreeList prints the free list in list order.
func (p *Printer) PrintFreeList() error {
	free := p.heap.FreeList()
	if p.opts.Format == FormatJSON {
		return p.printFreeListJSON(free)
	}
	return p.printFreeListText(free)
}

// PrintStats prints usage totals and operation counters.
func (p *Printer) PrintStats() error {
	u, err := p.heap.Usage()
	if err != nil {
		return err
	}
	st := p.heap.Stats()
	if p.opts.Format == FormatJSON {
		return p.printStatsJSON(u, st)
	}
	return p.printStatsText(u, st)
}

// blocks collects the blocks the options select.
func (p *Printer) blocks() ([]alloc.Block, bool, error) {
	var out []alloc.Block
	truncated := false
	err := p.heap.Walk(func(b alloc.Block) bool {
		if (b.Free && !p.opts.ShowFree) || (!b.Free && !p.opts.ShowAllocated) {
			return true
		}
		if p.opts.MaxBlocks > 0 && len(out) == p.opts.MaxBlocks {
			truncated = true
			return false
		}
		out = append(out, b)
		return true
	})
	return out, truncated, err
}

// Options returns the printer's options.
func (p *Printer) Options() Options { return p.opts }

// WithOptions returns a printer over the same heap and writer with opts.
func (p *Printer) WithOptions(opts Options) *Printer {
	return New(p.heap, p.writer, opts)
}
