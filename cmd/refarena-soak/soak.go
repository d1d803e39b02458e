package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/google/go-cmp/cmp"

	"github.com/pavanmanishd/refarena"
)

const (
	maxDepth     = 4
	maxGuards    = 8
	maxStaleKeys = 64
)

// borrow state per live key: >0 shared readers, -1 exclusive.
const exclusiveHeld = -1

type soakStats struct {
	ops      int
	nested   int
	rejected int
	byOp     map[string]int
}

// soak drives one arena and a model of what it should contain.
type soak struct {
	opts  options
	log   *slog.Logger
	rng   *rand.Rand
	arena *refarena.Arena[int64]

	live     map[refarena.Key]int64
	borrowed map[refarena.Key]int
	issued   map[refarena.Key]bool
	stale    []refarena.Key
	guards   []*refarena.Guard[int64]
	depth    int
	stats    soakStats
}

func newSoak(opts options, log *slog.Logger) *soak {
	return &soak{
		opts: opts,
		log:  log,
		rng:  rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15)),
		arena: refarena.NewWithCapacity[int64](opts.capacity,
			refarena.WithLogger(log),
			refarena.WithMaxCells(opts.maxCells),
		),
		live:     map[refarena.Key]int64{},
		borrowed: map[refarena.Key]int{},
		issued:   map[refarena.Key]bool{},
		stats:    soakStats{byOp: map[string]int{}},
	}
}

func (s *soak) run() error {
	for s.stats.ops < s.opts.ops {
		s.stats.ops++
		if err := s.step(); err != nil {
			return err
		}
		if s.stats.ops%s.opts.checkEvery == 0 {
			if err := s.verify(); err != nil {
				return err
			}
		}
		if s.stats.ops%10000 == 0 {
			s.log.Info("soak: progress",
				slog.Int("ops", s.stats.ops),
				slog.Int("occupied", len(s.live)),
				slog.Int("guards", len(s.guards)),
			)
		}
	}
	for len(s.guards) > 0 {
		if err := s.releaseGuard(0); err != nil {
			return err
		}
	}
	if err := s.verify(); err != nil {
		return err
	}
	s.log.Debug("soak: op mix", slog.Any("ops", s.stats.byOp))
	return nil
}

func (s *soak) step() error {
	var (
		name string
		err  error
	)
	switch n := s.rng.IntN(100); {
	case n < 30:
		name, err = "insert", s.insert()
	case n < 45:
		name, err = "remove", s.remove()
	case n < 52:
		name, err = "overwrite", s.overwrite()
	case n < 70:
		name, err = "visit", s.visit()
	case n < 78:
		name, err = "visit many", s.visitMany()
	case n < 87:
		name, err = "borrow", s.borrow()
	case n < 97:
		name = "release"
		if len(s.guards) > 0 {
			err = s.releaseGuard(s.rng.IntN(len(s.guards)))
		}
	case n < 99:
		name, err = "clone", s.cloneOut()
	default:
		name, err = "reset", s.reset()
	}
	s.stats.byOp[name]++
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// expect checks that err is nil when want is nil, or matches want otherwise.
func (s *soak) expect(err, want error) error {
	if want == nil {
		if err != nil {
			return fmt.Errorf("unexpected error: %w", err)
		}
		return nil
	}
	s.stats.rejected++
	if !errors.Is(err, want) {
		return fmt.Errorf("got error %v, want %v", err, want)
	}
	return nil
}

func (s *soak) liveKeys() []refarena.Key {
	keys := make([]refarena.Key, 0, len(s.live))
	for k := range s.live {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b refarena.Key) int { return int(a.Index) - int(b.Index) })
	return keys
}

// pickKey returns a live key most of the time and a stale one otherwise.
func (s *soak) pickKey() (refarena.Key, bool) {
	if len(s.stale) > 0 && (len(s.live) == 0 || s.rng.IntN(8) == 0) {
		return s.stale[s.rng.IntN(len(s.stale))], false
	}
	if len(s.live) == 0 {
		return refarena.Key{}, false
	}
	keys := s.liveKeys()
	return keys[s.rng.IntN(len(keys))], true
}

func (s *soak) retire(k refarena.Key) {
	delete(s.live, k)
	if len(s.stale) == maxStaleKeys {
		s.stale = slices.Delete(s.stale, 0, 1)
	}
	s.stale = append(s.stale, k)
}

func (s *soak) adopt(k refarena.Key, v int64) error {
	if s.issued[k] {
		return fmt.Errorf("key %v issued twice", k)
	}
	s.issued[k] = true
	s.live[k] = v
	return nil
}

// wantAccess predicts the error for borrowing k.
func (s *soak) wantAccess(k refarena.Key, live, excl bool) error {
	switch b := s.borrowed[k]; {
	case !live:
		return refarena.ErrStale
	case b == exclusiveHeld:
		return refarena.ErrAlreadyExclusive
	case excl && b > 0:
		return refarena.ErrSharedReaders
	}
	return nil
}

func (s *soak) mark(k refarena.Key, excl bool) {
	if excl {
		s.borrowed[k] = exclusiveHeld
		return
	}
	s.borrowed[k]++
}

func (s *soak) unmark(k refarena.Key, excl bool) {
	if excl || s.borrowed[k] == 1 {
		delete(s.borrowed, k)
		return
	}
	s.borrowed[k]--
}

func (s *soak) insert() error {
	v := s.rng.Int64()
	var want error
	full := s.arena.FreeCount() == 0
	switch {
	case full && s.opts.maxCells > 0 && s.arena.StoredCount() >= s.opts.maxCells:
		want = refarena.ErrCapacityExhausted
	case full && s.arena.StoredCount() == s.arena.Capacity() && len(s.borrowed) > 0:
		want = refarena.ErrInsertWhileBorrowed
	}
	k, err := s.arena.Insert(v)
	if err := s.expect(err, want); err != nil || want != nil {
		return err
	}
	return s.adopt(k, v)
}

func (s *soak) remove() error {
	k, live := s.pickKey()
	if !live && len(s.stale) == 0 {
		return nil
	}
	want := s.wantAccess(k, live, true)
	if errors.Is(want, refarena.ErrAlreadyExclusive) || errors.Is(want, refarena.ErrSharedReaders) {
		want = refarena.ErrRemoveBorrowed
	}
	v, err := s.arena.Remove(k)
	if !live && errors.Is(err, refarena.ErrOutOfRange) {
		// Stale keys from before a reset may point past the stored cells.
		s.stats.rejected++
		return nil
	}
	if err := s.expect(err, want); err != nil || want != nil {
		return err
	}
	if v != s.live[k] {
		return fmt.Errorf("key %v: removed %d, model has %d", k, v, s.live[k])
	}
	s.retire(k)
	return nil
}

func (s *soak) overwrite() error {
	k, live := s.pickKey()
	if !live {
		return nil
	}
	var want error
	if s.borrowed[k] != 0 {
		want = refarena.ErrOverwriteBorrowed
	}
	v := s.rng.Int64()
	nk, err := s.arena.Overwrite(k.Index, v)
	if err := s.expect(err, want); err != nil || want != nil {
		return err
	}
	if nk.Generation <= k.Generation {
		return fmt.Errorf("overwrite of %v issued %v", k, nk)
	}
	s.retire(k)
	return s.adopt(nk, v)
}

func (s *soak) visit() error {
	if s.depth >= maxDepth {
		return nil
	}
	k, live := s.pickKey()
	if !live && len(s.stale) == 0 {
		return nil
	}
	excl := s.rng.IntN(2) == 0
	want := s.wantAccess(k, live, excl)

	fn := func(p *int64) error {
		if *p != s.live[k] {
			return fmt.Errorf("key %v: visited %d, model has %d", k, *p, s.live[k])
		}
		s.mark(k, excl)
		defer s.unmark(k, excl)
		s.depth++
		defer func() { s.depth-- }()
		for n := s.rng.IntN(4); n > 0; n-- {
			s.stats.nested++
			if err := s.step(); err != nil {
				return err
			}
		}
		if *p != s.live[k] {
			return fmt.Errorf("key %v: value moved under a borrow", k)
		}
		if excl {
			*p = s.rng.Int64()
			s.live[k] = *p
		}
		return nil
	}

	var err error
	if excl {
		err = s.arena.VisitExclusive(k, fn)
	} else {
		err = s.arena.VisitShared(k, fn)
	}
	if !live && errors.Is(err, refarena.ErrOutOfRange) {
		s.stats.rejected++
		return nil
	}
	return s.expect(err, want)
}

func (s *soak) visitMany() error {
	keys := s.liveKeys()
	if len(keys) < 2 {
		return nil
	}
	s.rng.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
	keys = keys[:2+s.rng.IntN(min(3, len(keys)-1))]

	var want error
	for _, k := range keys {
		if want = s.wantAccess(k, true, true); want != nil {
			break
		}
	}
	err := s.arena.VisitManyExclusive(keys, func(vs []*int64) error {
		// Rotate values left by one.
		first := *vs[0]
		for n := range len(vs) - 1 {
			*vs[n] = *vs[n+1]
		}
		*vs[len(vs)-1] = first
		return nil
	})
	if err := s.expect(err, want); err != nil || want != nil {
		return err
	}
	first := s.live[keys[0]]
	for n := range len(keys) - 1 {
		s.live[keys[n]] = s.live[keys[n+1]]
	}
	s.live[keys[len(keys)-1]] = first
	return nil
}

func (s *soak) borrow() error {
	if len(s.guards) >= maxGuards {
		return nil
	}
	k, live := s.pickKey()
	if !live {
		return nil
	}
	excl := s.rng.IntN(3) == 0
	want := s.wantAccess(k, live, excl)

	var (
		g   *refarena.Guard[int64]
		err error
	)
	if excl {
		g, err = s.arena.BorrowExclusive(k)
	} else {
		g, err = s.arena.BorrowShared(k)
	}
	if err := s.expect(err, want); err != nil || want != nil {
		return err
	}
	if *g.Value() != s.live[k] {
		return fmt.Errorf("key %v: guard sees %d, model has %d", k, *g.Value(), s.live[k])
	}
	s.mark(k, excl)
	s.guards = append(s.guards, g)
	return nil
}

func (s *soak) releaseGuard(n int) error {
	g := s.guards[n]
	s.guards = slices.Delete(s.guards, n, n+1)
	k := g.Key()
	if *g.Value() != s.live[k] {
		return fmt.Errorf("key %v: guard sees %d at release, model has %d", k, *g.Value(), s.live[k])
	}
	if g.Exclusive() {
		*g.Value() = s.rng.Int64()
		s.live[k] = *g.Value()
	}
	if err := g.Release(); err != nil {
		return err
	}
	s.unmark(k, g.Exclusive())
	return nil
}

func (s *soak) cloneOut() error {
	k, live := s.pickKey()
	if !live {
		return nil
	}
	v, err := s.arena.CloneOut(k)
	if err != nil {
		return err
	}
	if v != s.live[k] {
		return fmt.Errorf("key %v: cloned %d, model has %d", k, v, s.live[k])
	}
	return nil
}

func (s *soak) reset() error {
	var want error
	if len(s.borrowed) > 0 {
		want = refarena.ErrStructureBorrowed
	}
	err := s.arena.Reset()
	if err := s.expect(err, want); err != nil || want != nil {
		return err
	}
	for _, k := range s.liveKeys() {
		s.retire(k)
	}
	s.log.Debug("soak: reset", slog.Int("op", s.stats.ops))
	return nil
}

// verify compares the arena's contents with the model and runs the arena's
// own consistency check.
func (s *soak) verify() error {
	got := make(map[refarena.Key]int64, len(s.live))
	for k := range s.arena.Keys() {
		v, err := s.arena.CloneOut(k)
		if err != nil {
			return fmt.Errorf("clone of listed key %v: %w", k, err)
		}
		got[k] = v
	}
	if diff := cmp.Diff(s.live, got); diff != "" {
		return fmt.Errorf("contents differ (-model +arena):\n%s", diff)
	}

	m := s.arena.Metrics()
	want := refarena.ArenaMetrics{
		Stored:     m.Stored,
		Capacity:   m.Capacity,
		Free:       m.Stored - len(s.live),
		Occupied:   len(s.live),
		Active:     len(s.borrowed),
		Generation: m.Generation,
		Density:    m.Density,
	}
	if diff := cmp.Diff(want, m); diff != "" {
		return fmt.Errorf("metrics differ (-model +arena):\n%s", diff)
	}
	for _, k := range s.stale {
		if s.arena.Contains(k) {
			return fmt.Errorf("stale key %v is current again", k)
		}
	}
	return s.arena.CheckInvariants()
}
