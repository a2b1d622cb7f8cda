package schedule

type item[A comparable] struct {
	entry Entry[A]
	index int
}

// entryHeap implements heap.Interface ordered by (time, actor).
type entryHeap[A comparable] struct {
	items   []*item[A]
	compare func(a, b A) int
}

func (h *entryHeap[A]) compareEntries(a, b Entry[A]) int {
	if c := a.Time.Cmp(b.Time); c != 0 {
		return c
	}
	return h.compare(a.Actor, b.Actor)
}

func (h *entryHeap[A]) Len() int { return len(h.items) }

func (h *entryHeap[A]) Less(i, j int) bool {
	return h.compareEntries(h.items[i].entry, h.items[j].entry) < 0
}

func (h *entryHeap[A]) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].index = i
	h.items[j].index = j
}

func (h *entryHeap[A]) Push(x any) {
	it := x.(*item[A])
	it.index = len(h.items)
	h.items = append(h.items, it)
}

func (h *entryHeap[A]) Pop() any {
	old := h.items
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	h.items = old[:n-1]
	return it
}
