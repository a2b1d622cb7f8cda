// Package schedule orders actor turns on a continuous timeline.
//
// An actor that performs an action of cost c at speed s next acts at
// now + c/s. Times are exact decimals (cockroachdb/apd), never binary
// floats, so repeated fractional additions cannot drift between platforms
// and reorder ties.
//
// # Ordering
//
// Next always returns the entry with the smallest time. Equal times are
// broken by the caller's actor comparison, never by insertion order.
//
// # Policies
//
// Schedule rejects an actor that already has a pending entry with
// ErrDuplicateEntry; Reschedule is the explicit replace operation. When an
// actor leaves play the host calls Remove, so the timeline never holds
// stale entries.
//
// A Timeline is not safe for concurrent use.
package schedule

import (
	"cmp"
	"container/heap"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/apd/v3"
)

// DefaultPrecision is the number of significant decimal digits kept when
// dividing cost by speed.
const DefaultPrecision = 34

var (
	// ErrInvalidArgument reports a non-positive speed, negative cost, or a
	// schedule request before the current time.
	ErrInvalidArgument = errors.New("schedule: invalid argument")
	// ErrDuplicateEntry reports an actor that already has a pending entry.
	ErrDuplicateEntry = errors.New("schedule: actor already scheduled")
	// ErrEmpty is returned by Next on an empty timeline.
	ErrEmpty = errors.New("schedule: timeline is empty")
)

// Entry is one scheduled action. Cost is kept so a host can persist and
// rebuild the timeline exactly.
type Entry[A comparable] struct {
	Time  *apd.Decimal
	Actor A
	Cost  *apd.Decimal
}

func (e Entry[A]) clone() Entry[A] {
	return Entry[A]{
		Time:  new(apd.Decimal).Set(e.Time),
		Actor: e.Actor,
		Cost:  new(apd.Decimal).Set(e.Cost),
	}
}

// Timeline is a min-heap of entries keyed by (time, actor).
type Timeline[A comparable] struct {
	heap    entryHeap[A]
	pending map[A]*item[A]
	now     *apd.Decimal
	ctx     *apd.Context
	logger  *log.Logger
}

// Option configures a Timeline.
type Option func(*config)

type config struct {
	precision uint32
	logger    *log.Logger
}

// WithPrecision sets the significant digits used for cost/speed division.
func WithPrecision(digits uint32) Option {
	return func(c *config) {
		c.precision = digits
	}
}

// WithLogger logs scheduling decisions at debug level.
func WithLogger(logger *log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// New creates an empty timeline at time zero. compare must be a total
// order over actors; it breaks ties between equal times.
func New[A comparable](compare func(a, b A) int, opts ...Option) *Timeline[A] {
	cfg := config{precision: DefaultPrecision}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = log.New(io.Discard)
	}

	return &Timeline[A]{
		heap:    entryHeap[A]{compare: compare},
		pending: make(map[A]*item[A]),
		now:     new(apd.Decimal),
		ctx:     apd.BaseContext.WithPrecision(cfg.precision),
		logger:  cfg.logger.WithPrefix("timeline"),
	}
}

// NewOrdered creates a timeline whose ties are broken by the natural order
// of A.
func NewOrdered[A cmp.Ordered](opts ...Option) *Timeline[A] {
	return New(cmp.Compare[A], opts...)
}

// Now returns the time of the most recently dispatched entry.
func (t *Timeline[A]) Now() *apd.Decimal {
	return new(apd.Decimal).Set(t.now)
}

// Len returns the number of pending entries.
func (t *Timeline[A]) Len() int {
	return t.heap.Len()
}

// Schedule inserts actor at current + cost/speed and returns that time.
func (t *Timeline[A]) Schedule(actor A, current, cost, speed *apd.Decimal) (*apd.Decimal, error) {
	if _, ok := t.pending[actor]; ok {
		return nil, fmt.Errorf("%w: %v", ErrDuplicateEntry, actor)
	}
	next, err := t.nextTime(current, cost, speed)
	if err != nil {
		return nil, fmt.Errorf("schedule %v: %w", actor, err)
	}

	t.push(Entry[A]{Time: next, Actor: actor, Cost: new(apd.Decimal).Set(cost)})
	t.logger.Debug("Scheduled action", "actor", actor, "time", Format(next), "cost", Format(cost), "speed", Format(speed))
	return new(apd.Decimal).Set(next), nil
}

// Reschedule replaces any pending entry for actor. On error the previous
// entry is left in place.
func (t *Timeline[A]) Reschedule(actor A, current, cost, speed *apd.Decimal) (*apd.Decimal, error) {
	next, err := t.nextTime(current, cost, speed)
	if err != nil {
		return nil, fmt.Errorf("reschedule %v: %w", actor, err)
	}
	t.Remove(actor)
	t.push(Entry[A]{Time: next, Actor: actor, Cost: new(apd.Decimal).Set(cost)})
	t.logger.Debug("Rescheduled action", "actor", actor, "time", Format(next))
	return new(apd.Decimal).Set(next), nil
}

// Insert adds a fully formed entry, as when rebuilding a persisted
// timeline. A nil Cost is treated as zero.
func (t *Timeline[A]) Insert(e Entry[A]) error {
	if _, ok := t.pending[e.Actor]; ok {
		return fmt.Errorf("%w: %v", ErrDuplicateEntry, e.Actor)
	}
	if err := checkFinite("time", e.Time); err != nil {
		return err
	}
	if e.Time.Cmp(t.now) < 0 {
		return fmt.Errorf("%w: time %s is before now %s", ErrInvalidArgument, Format(e.Time), Format(t.now))
	}
	if e.Cost == nil {
		e.Cost = new(apd.Decimal)
	}
	if err := checkFinite("cost", e.Cost); err != nil {
		return err
	}
	if e.Cost.Sign() < 0 {
		return fmt.Errorf("%w: negative cost %s", ErrInvalidArgument, Format(e.Cost))
	}
	t.push(e.clone())
	return nil
}

// Next removes and returns the earliest entry and advances Now to its time.
func (t *Timeline[A]) Next() (Entry[A], error) {
	if t.heap.Len() == 0 {
		return Entry[A]{}, ErrEmpty
	}
	it := heap.Pop(&t.heap).(*item[A])
	delete(t.pending, it.entry.Actor)
	t.now.Set(it.entry.Time)

	t.logger.Debug("Dispatching action", "actor", it.entry.Actor, "time", Format(it.entry.Time))
	return it.entry.clone(), nil
}

// Peek returns the earliest entry without removing it.
func (t *Timeline[A]) Peek() (Entry[A], bool) {
	if t.heap.Len() == 0 {
		return Entry[A]{}, false
	}
	return t.heap.items[0].entry.clone(), true
}

// Pending returns actor's entry if it has one.
func (t *Timeline[A]) Pending(actor A) (Entry[A], bool) {
	it, ok := t.pending[actor]
	if !ok {
		return Entry[A]{}, false
	}
	return it.entry.clone(), true
}

// Remove drops actor's pending entry, reporting whether there was one.
func (t *Timeline[A]) Remove(actor A) bool {
	it, ok := t.pending[actor]
	if !ok {
		return false
	}
	heap.Remove(&t.heap, it.index)
	delete(t.pending, actor)
	t.logger.Debug("Removed actor", "actor", actor)
	return true
}

// Entries returns every pending entry in dispatch order.
func (t *Timeline[A]) Entries() []Entry[A] {
	entries := make([]Entry[A], 0, t.heap.Len())
	for _, it := range t.heap.items {
		entries = append(entries, it.entry.clone())
	}
	slices.SortFunc(entries, t.heap.compareEntries)
	return entries
}

// Clear removes every entry and rewinds Now to zero.
func (t *Timeline[A]) Clear() {
	t.heap.items = nil
	clear(t.pending)
	t.now.SetInt64(0)
}

// Restore replaces the timeline contents with a persisted cursor and
// entries. On error the timeline is left cleared at now.
func (t *Timeline[A]) Restore(now *apd.Decimal, entries []Entry[A]) error {
	if err := checkFinite("now", now); err != nil {
		return err
	}
	t.Clear()
	t.now.Set(now)
	for _, e := range entries {
		if err := t.Insert(e); err != nil {
			t.heap.items = nil
			clear(t.pending)
			return fmt.Errorf("restore %v: %w", e.Actor, err)
		}
	}
	return nil
}

func (t *Timeline[A]) nextTime(current, cost, speed *apd.Decimal) (*apd.Decimal, error) {
	for _, arg := range []struct {
		name  string
		value *apd.Decimal
	}{{"current", current}, {"cost", cost}, {"speed", speed}} {
		if err := checkFinite(arg.name, arg.value); err != nil {
			return nil, err
		}
	}
	if speed.Sign() <= 0 {
		return nil, fmt.Errorf("%w: speed %s must be positive", ErrInvalidArgument, Format(speed))
	}
	if cost.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative cost %s", ErrInvalidArgument, Format(cost))
	}
	if current.Cmp(t.now) < 0 {
		return nil, fmt.Errorf("%w: current time %s is before now %s", ErrInvalidArgument, Format(current), Format(t.now))
	}

	delta := new(apd.Decimal)
	if _, err := t.ctx.Quo(delta, cost, speed); err != nil {
		return nil, fmt.Errorf("divide cost by speed: %w", err)
	}
	next := new(apd.Decimal)
	if _, err := t.ctx.Add(next, current, delta); err != nil {
		return nil, fmt.Errorf("advance time: %w", err)
	}
	return next, nil
}

func (t *Timeline[A]) push(e Entry[A]) {
	it := &item[A]{entry: e}
	heap.Push(&t.heap, it)
	t.pending[e.Actor] = it
}

func checkFinite(name string, d *apd.Decimal) error {
	if d == nil {
		return fmt.Errorf("%w: %s is nil", ErrInvalidArgument, name)
	}
	if d.Form != apd.Finite {
		return fmt.Errorf("%w: %s %s is not finite", ErrInvalidArgument, name, d.String())
	}
	return nil
}
