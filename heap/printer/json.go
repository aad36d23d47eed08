package printer

import (
	"encoding/json"

	"github.com/joshuapare/heapkit/heap/alloc"
)

// jsonBlock represents one block in JSON format.
type jsonBlock struct {
	Addr     string `json:"addr"`
	Ptr      string `json:"ptr,omitempty"`
	Free     bool   `json:"free"`
	Size     uint64 `json:"size"`
	Capacity uint64 `json:"capacity"`
}

// jsonSegment represents one growth range in JSON format.
type jsonSegment struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Pad   int    `json:"pad"`
}

type jsonLayout struct {
	Base      string        `json:"base"`
	Break     string        `json:"break"`
	Segments  []jsonSegment `json:"segments"`
	Blocks    []jsonBlock   `json:"blocks"`
	Truncated bool          `json:"truncated,omitempty"`
}

type jsonStats struct {
	Usage alloc.Usage `json:"usage"`
	Stats alloc.Stats `json:"stats"`
}

func toJSONBlock(b alloc.Block) jsonBlock {
	jb := jsonBlock{
		Addr:     b.Addr.String(),
		Free:     b.Free,
		Size:     b.Size,
		Capacity: b.Capacity,
	}
	if !b.Free {
		jb.Ptr = b.Payload().String()
	}
	return jb
}

func (p *Printer) printLayoutJSON(blocks []alloc.Block, truncated bool) error {
	mem := p.heap.Boundary()
	out := jsonLayout{
		Base:      mem.Base().String(),
		Break:     (mem.Base() + alloc.Ptr(len(mem.Bytes()))).String(),
		Segments:  []jsonSegment{},
		Blocks:    make([]jsonBlock, 0, len(blocks)),
		Truncated: truncated,
	}
	for _, s := range p.heap.Segments() {
		out.Segments = append(out.Segments, jsonSegment{Start: s.Start.String(), End: s.End.String(), Pad: s.Pad})
	}
	for _, b := range blocks {
		out.Blocks = append(out.Blocks, toJSONBlock(b))
	}
	return p.writeJSON(out)
}

func (p *Printer) printFreeListJSON(free []alloc.Block) error {
	out := make([]jsonBlock, 0, len(free))
	for _, b := range free {
		out = append(out, toJSONBlock(b))
	}
	return p.writeJSON(out)
}

func (p *Printer) printStatsJSON(u alloc.Usage, st alloc.Stats) error {
	return p.writeJSON(jsonStats{Usage: u, Stats: st})
}

func (p *Printer) writeJSON(v any) error {
	enc := json.NewEncoder(p.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
