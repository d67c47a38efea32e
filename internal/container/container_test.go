package container

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keyed struct {
	key int
	pos int
}

func (k *keyed) HeapPos() int     { return k.pos }
func (k *keyed) SetHeapPos(p int) { k.pos = p }

func lessKeyed(a, b *keyed) bool { return a.key < b.key }

func TestStackPushPop(t *testing.T) {
	var s Stack[int]
	assert.True(t, s.Empty())

	s.Push(1)
	s.Push(2)
	s.Push(3)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 3, s.Top())
	assert.Equal(t, 2, s.At(1))

	assert.Equal(t, 3, s.Pop())
	assert.Equal(t, 2, s.Pop())
	assert.Equal(t, 1, s.Pop())
	assert.True(t, s.Empty())
}

func TestStackReset(t *testing.T) {
	var s Stack[*keyed]
	s.Push(&keyed{key: 1})
	s.Push(&keyed{key: 2})
	s.Reset()
	assert.True(t, s.Empty())
	s.Push(&keyed{key: 3})
	assert.Equal(t, 3, s.Top().key)
}

func TestHeapOrdering(t *testing.T) {
	h := NewHeap(lessKeyed)
	for _, k := range []int{5, 1, 4, 2, 3} {
		h.Push(&keyed{key: k, pos: -1})
	}
	require.Equal(t, 5, h.Len())

	var got []int
	for !h.Empty() {
		e := h.Pop()
		assert.Equal(t, -1, e.HeapPos(), "popped element should leave the heap")
		got = append(got, e.key)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, got)
}

func TestHeapPositionsConsistent(t *testing.T) {
	h := NewHeap(lessKeyed)
	elems := make([]*keyed, 0, 20)
	for i := 0; i < 20; i++ {
		e := &keyed{key: i * 7 % 13, pos: -1}
		elems = append(elems, e)
		h.Push(e)
	}
	for i := 0; i < h.Len(); i++ {
		assert.Equal(t, i, h.At(i).HeapPos())
	}
}

func TestHeapDeleteElem(t *testing.T) {
	h := NewHeap(lessKeyed)
	elems := make([]*keyed, 0, 10)
	for _, k := range []int{9, 3, 7, 1, 8, 2, 6, 4, 5, 0} {
		e := &keyed{key: k, pos: -1}
		elems = append(elems, e)
		h.Push(e)
	}

	victim := elems[2] // key 7
	h.DeleteElem(victim.HeapPos())
	assert.Equal(t, -1, victim.HeapPos())
	assert.Equal(t, 9, h.Len())

	var got []int
	for !h.Empty() {
		got = append(got, h.Pop().key)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 8, 9}, got)
}

func TestHeapFixAfterKeyChange(t *testing.T) {
	h := NewHeap(lessKeyed)
	elems := make([]*keyed, 0, 8)
	for _, k := range []int{10, 20, 30, 40, 50, 60, 70, 80} {
		e := &keyed{key: k, pos: -1}
		elems = append(elems, e)
		h.Push(e)
	}

	// decrease a deep key
	elems[7].key = 5
	h.Fix(elems[7].HeapPos())
	assert.Equal(t, 5, h.Min().key)

	// increase the min
	h.Min().key = 99
	h.Fix(0)
	assert.Equal(t, 10, h.Min().key)
}

func TestHeapRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	h := NewHeap(lessKeyed)
	live := map[*keyed]bool{}

	for step := 0; step < 2000; step++ {
		switch {
		case h.Len() == 0 || rng.Intn(3) == 0:
			e := &keyed{key: rng.Intn(1000), pos: -1}
			h.Push(e)
			live[e] = true
		case rng.Intn(2) == 0:
			e := h.At(rng.Intn(h.Len()))
			e.key = rng.Intn(1000)
			h.Fix(e.HeapPos())
		default:
			e := h.At(rng.Intn(h.Len()))
			h.DeleteElem(e.HeapPos())
			delete(live, e)
		}
		for i := 0; i < h.Len(); i++ {
			require.Equal(t, i, h.At(i).HeapPos())
			if i > 0 {
				parent := (i - 1) / 2
				require.LessOrEqual(t, h.At(parent).key, h.At(i).key)
			}
		}
	}

	var got []int
	for !h.Empty() {
		got = append(got, h.Pop().key)
	}
	assert.True(t, sort.IntsAreSorted(got))
	assert.Len(t, got, len(live))
}
