package container

// HeapElem is implemented by elements that remember their own heap slot.
// The stored position must only be touched by the heap; -1 means the
// element is not on any heap.
type HeapElem interface {
	HeapPos() int
	SetHeapPos(int)
}

// Heap is a binary min-heap whose elements track their positions, so key
// updates and removals at arbitrary positions are O(log n) without a
// search. Ordering is supplied by the less function.
type Heap[T HeapElem] struct {
	elems []T
	less  func(a, b T) bool
}

func NewHeap[T HeapElem](less func(a, b T) bool) *Heap[T] {
	return &Heap[T]{less: less}
}

func (h *Heap[T]) Len() int {
	return len(h.elems)
}

func (h *Heap[T]) Empty() bool {
	return len(h.elems) == 0
}

// Min returns the smallest element without removing it.
func (h *Heap[T]) Min() T {
	return h.elems[0]
}

func (h *Heap[T]) At(i int) T {
	return h.elems[i]
}

func (h *Heap[T]) Push(e T) {
	h.elems = append(h.elems, e)
	e.SetHeapPos(len(h.elems) - 1)
	h.siftUp(len(h.elems) - 1)
}

func (h *Heap[T]) Pop() T {
	e := h.elems[0]
	h.DeleteElem(0)
	return e
}

// DeleteElem removes the element at pos by swapping in the last element
// and sifting it both directions.
func (h *Heap[T]) DeleteElem(pos int) {
	last := len(h.elems) - 1
	e := h.elems[pos]
	h.elems[pos] = h.elems[last]
	h.elems[pos].SetHeapPos(pos)
	var zero T
	h.elems[last] = zero
	h.elems = h.elems[:last]
	e.SetHeapPos(-1)
	if pos < last {
		h.siftUp(pos)
		h.siftDown(pos)
	}
}

// Fix re-establishes heap order after the element at pos changed its key.
func (h *Heap[T]) Fix(pos int) {
	h.siftUp(pos)
	h.siftDown(pos)
}

func (h *Heap[T]) siftUp(pos int) {
	for pos > 0 {
		parent := (pos - 1) / 2
		if !h.less(h.elems[pos], h.elems[parent]) {
			break
		}
		h.swap(pos, parent)
		pos = parent
	}
}

func (h *Heap[T]) siftDown(pos int) {
	n := len(h.elems)
	for {
		smallest := pos
		left := 2*pos + 1
		right := left + 1
		if left < n && h.less(h.elems[left], h.elems[smallest]) {
			smallest = left
		}
		if right < n && h.less(h.elems[right], h.elems[smallest]) {
			smallest = right
		}
		if smallest == pos {
			return
		}
		h.swap(pos, smallest)
		pos = smallest
	}
}

func (h *Heap[T]) swap(i, j int) {
	h.elems[i], h.elems[j] = h.elems[j], h.elems[i]
	h.elems[i].SetHeapPos(i)
	h.elems[j].SetHeapPos(j)
}
