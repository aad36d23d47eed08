package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/joshuapare/heapkit/heap/alloc"
)

// Script lines, one operation each. Blank lines and # comments are skipped.
//
//	p = alloc 200
//	q = calloc 4 16
//	p = realloc p 64
//	write p 0xAB
//	check p 0xAB
//	free p
//
// The name "null" stands for the nil pointer.
const nullName = "null"

type opKind string

const (
	opAlloc   opKind = "alloc"
	opCalloc  opKind = "calloc"
	opRealloc opKind = "realloc"
	opFree    opKind = "free"
	opWrite   opKind = "write"
	opCheck   opKind = "check"
)

// op is one parsed script line.
type op struct {
	line int
	kind opKind
	dst  string // Assigned name (alloc, calloc, realloc)
	src  string // Operand name (realloc, free, write, check)
	args []int
}

func (o op) String() string {
	var b strings.Builder
	if o.dst != "" {
		fmt.Fprintf(&b, "%s = ", o.dst)
	}
	b.WriteString(string(o.kind))
	if o.src != "" {
		fmt.Fprintf(&b, " %s", o.src)
	}
	for _, a := range o.args {
		fmt.Fprintf(&b, " %d", a)
	}
	return b.String()
}

// parseScript reads a whole script, reporting the first malformed line.
func parseScript(r io.Reader) ([]op, error) {
	var ops []op
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		o, err := parseOp(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		o.line = n
		ops = append(ops, o)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ops, nil
}

func parseOp(fields []string) (op, error) {
	var o op
	if len(fields) >= 2 && fields[1] == "=" {
		o.dst = fields[0]
		fields = fields[2:]
		if o.dst == nullName {
			return o, fmt.Errorf("cannot assign to %q", nullName)
		}
	}
	if len(fields) == 0 {
		return o, fmt.Errorf("missing operation")
	}
	o.kind = opKind(fields[0])
	rest := fields[1:]

	var names, nums int
	switch o.kind {
	case opAlloc:
		nums = 1
	case opCalloc:
		nums = 2
	case opRealloc:
		names, nums = 1, 1
	case opFree:
		names = 1
	case opWrite, opCheck:
		names, nums = 1, 1
	default:
		return o, fmt.Errorf("unknown operation %q", fields[0])
	}

	assigns := o.kind == opAlloc || o.kind == opCalloc || o.kind == opRealloc
	if assigns && o.dst == "" {
		return o, fmt.Errorf("%s needs a name: NAME = %s ...", o.kind, o.kind)
	}
	if !assigns && o.dst != "" {
		return o, fmt.Errorf("%s does not return a pointer", o.kind)
	}
	if len(rest) != names+nums {
		return o, fmt.Errorf("%s takes %d operand(s), got %d", o.kind, names+nums, len(rest))
	}
	if names == 1 {
		o.src = rest[0]
		rest = rest[1:]
	}
	for _, s := range rest {
		v, err := strconv.ParseInt(s, 0, 64)
		if err != nil {
			return o, fmt.Errorf("bad number %q", s)
		}
		if (o.kind == opWrite || o.kind == opCheck) && (v < 0 || v > 0xFF) {
			return o, fmt.Errorf("byte value %s out of range", s)
		}
		o.args = append(o.args, int(v))
	}
	return o, nil
}

// session executes parsed operations against one allocator.
type session struct {
	heap *alloc.Allocator
	ptrs map[string]alloc.Ptr
}

func newSession(a *alloc.Allocator) *session {
	return &session{heap: a, ptrs: map[string]alloc.Ptr{}}
}

func (s *session) lookup(name string) (alloc.Ptr, error) {
	if name == nullName {
		return alloc.Nil, nil
	}
	p, ok := s.ptrs[name]
	if !ok {
		return alloc.Nil, fmt.Errorf("undefined pointer %q", name)
	}
	return p, nil
}

// exec runs o. Allocation failures are returned with the line attached.
func (s *session) exec(o op) error {
	var (
		p   alloc.Ptr
		err error
	)
	switch o.kind {
	case opAlloc:
		p, err = s.heap.Alloc(o.args[0])
	case opCalloc:
		p, err = s.heap.Calloc(o.args[0], o.args[1])
	case opRealloc:
		var src alloc.Ptr
		if src, err = s.lookup(o.src); err == nil {
			p, err = s.heap.Realloc(src, o.args[0])
		}
	case opFree:
		if p, err = s.lookup(o.src); err == nil {
			s.heap.Free(p)
			if o.src != nullName {
				delete(s.ptrs, o.src)
			}
		}
	case opWrite, opCheck:
		if p, err = s.lookup(o.src); err == nil {
			err = s.fill(o, p, byte(o.args[0]))
		}
	}
	if err != nil {
		return fmt.Errorf("line %d: %s: %w", o.line, o, err)
	}

	if o.dst != "" {
		if o.kind == opRealloc && o.src != o.dst && o.src != nullName {
			delete(s.ptrs, o.src)
		}
		s.ptrs[o.dst] = p
		printVerbose("%-24s -> %v\n", o, p)
	} else {
		printVerbose("%s\n", o)
	}
	return nil
}

func (s *session) fill(o op, p alloc.Ptr, v byte) error {
	if p == alloc.Nil {
		return fmt.Errorf("nil pointer")
	}
	data := s.heap.Bytes(p)
	for i := range data {
		if o.kind == opWrite {
			data[i] = v
		} else if data[i] != v {
			return fmt.Errorf("byte %d is 0x%02X, want 0x%02X", i, data[i], v)
		}
	}
	return nil
}
