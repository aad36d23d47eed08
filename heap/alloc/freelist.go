package alloc

import (
	"github.com/joshuapare/heapkit/internal/format"
)

// each visits free blocks in list order until fn returns false. A list longer
// than the heap could possibly hold is a cycle, which only use-after-free can
// produce.
func (a *Allocator) each(fn func(b Ptr, n format.FreeNode) bool) {
	limit := len(a.mem.Bytes())/format.FreeBlockSize + 1
	steps := 0
	for cur := a.head; cur != Nil; {
		if steps++; steps > limit {
			a.corrupt("freelist", cur, 0, "free list cycle")
		}
		n := a.node(cur)
		if !fn(cur, n) {
			return
		}
		cur = Ptr(n.Next)
	}
}

// push makes b, already carrying its node size, the new list head.
func (a *Allocator) push(b Ptr) {
	n := a.node(b)
	n.Next = uint64(a.head)
	a.setNode(b, n)
	a.head = b
	a.indexAdd(b, n.Size)
}

// link points prev (or the head when prev is Nil) at b.
func (a *Allocator) link(prev, b Ptr) {
	if prev == Nil {
		a.head = b
		return
	}
	a.setNext(prev, b)
}

// removeFreeBlock unlinks b by identity. It is a no-op when b is not listed.
func (a *Allocator) removeFreeBlock(b Ptr) {
	var prev Ptr
	found := false
	var node format.FreeNode
	a.each(func(cur Ptr, n format.FreeNode) bool {
		if cur == b {
			found, node = true, n
			return false
		}
		prev = cur
		return true
	})
	if !found {
		return
	}
	a.link(prev, Ptr(node.Next))
	a.indexDel(b, node.Size)
}

// setFreeSize resizes a listed free block.
func (a *Allocator) setFreeSize(b Ptr, size uint64) {
	n := a.node(b)
	a.indexDel(b, n.Size)
	n.Size = size
	a.setNode(b, n)
	a.indexAdd(b, size)
}

// split carves exact payload bytes off the front of free block b. It requires
// room for a remainder node after them; otherwise ok is false and nothing
// changes. The remainder inherits b's next link but is not linked in: the
// caller puts it where b was.
func (a *Allocator) split(b Ptr, exact uint64) (Ptr, bool) {
	n := a.node(b)
	if n.Size < exact+format.FreeBlockSize {
		return Nil, false
	}
	rem := endOf(b, exact)
	a.setNode(rem, format.FreeNode{
		Size: n.Size - exact - format.FreeBlockSize,
		Next: n.Next,
	})
	n.Size = exact
	a.setNode(b, n)
	return rem, true
}

// findPrev returns the listed block whose end is b's start.
func (a *Allocator) findPrev(b Ptr) Ptr {
	if a.endIdx != nil {
		return a.endIdx[b]
	}
	found := Nil
	a.each(func(cur Ptr, n format.FreeNode) bool {
		if endOf(cur, n.Size) == b {
			found = cur
			return false
		}
		return true
	})
	return found
}

// findNext returns the listed block starting at b's end.
func (a *Allocator) findNext(b Ptr) Ptr {
	end := endOf(b, a.freeSize(b))
	if a.startIdx != nil {
		if _, ok := a.startIdx[end]; ok {
			return end
		}
		return Nil
	}
	found := Nil
	a.each(func(cur Ptr, _ format.FreeNode) bool {
		if cur == end {
			found = cur
			return false
		}
		return true
	})
	return found
}

// coalesce merges listed block b with its physically adjacent free
// neighbours and returns the merged block, which ends up at the list head.
func (a *Allocator) coalesce(b Ptr) Ptr {
	cur := b
	if prev := a.findPrev(cur); prev != Nil {
		size := a.freeSize(cur)
		a.removeFreeBlock(cur)
		a.setFreeSize(prev, a.freeSize(prev)+format.FreeBlockSize+size)
		a.stats.CoalesceBackward++
		if a.trace {
			a.log.Debug("coalesce backward", "block", cur, "into", prev)
		}
		cur = prev
	}
	if next := a.findNext(cur); next != Nil {
		size := a.freeSize(next)
		a.removeFreeBlock(next)
		a.setFreeSize(cur, a.freeSize(cur)+format.FreeBlockSize+size)
		a.stats.CoalesceForward++
		if a.trace {
			a.log.Debug("coalesce forward", "block", cur, "absorbed", next)
		}
	}
	if cur != a.head {
		a.removeFreeBlock(cur)
		a.push(cur)
	}
	return cur
}

func (a *Allocator) indexAdd(b Ptr, size uint64) {
	if a.startIdx == nil {
		return
	}
	a.startIdx[b] = size
	a.endIdx[endOf(b, size)] = b
}

func (a *Allocator) indexDel(b Ptr, size uint64) {
	if a.startIdx == nil {
		return
	}
	delete(a.startIdx, b)
	delete(a.endIdx, endOf(b, size))
}
