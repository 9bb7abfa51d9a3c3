package opera

import (
	"sort"
	"sync"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

// Activation is a ruleset that takes effect at a block height.
type Activation struct {
	Height idx.Block // First block validated under Rules
	Rules  Ruleset
}

// Schedule is the ordered list of activations of one network.
//
// A schedule is built by Register calls, then sealed. Once sealed it is read
// only and Resolve needs no synchronization. Resolve before Seal and Register
// after Seal are rejected instead of racing.
type Schedule struct {
	mu      sync.Mutex // serializes the build phase
	entries []Activation
	sealed  atomic.Bool
}

// NewSchedule returns an empty schedule in the building state.
func NewSchedule() *Schedule {
	return &Schedule{}
}

// Register inserts an activation at its sorted position. The call order of
// Register is irrelevant to the final order.
func (s *Schedule) Register(height idx.Block, rules Ruleset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sealed.Load() {
		return errors.Wrapf(ErrSealedSchedule, "register activation at %d", height)
	}
	if rules.IsZero() {
		return errors.Wrapf(ErrConfiguration, "empty ruleset for activation at %d", height)
	}

	i := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].Height >= height })
	if i < len(s.entries) && s.entries[i].Height == height {
		return errors.Wrapf(ErrDuplicateActivation, "height %d already activates %q", height, s.entries[i].Rules.Name())
	}

	s.entries = append(s.entries, Activation{})
	copy(s.entries[i+1:], s.entries[i:])
	s.entries[i] = Activation{Height: height, Rules: rules}
	return nil
}

// replace swaps the ruleset of an existing activation during the build phase.
func (s *Schedule) replace(height idx.Block, rules Ruleset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sealed.Load() {
		return errors.Wrapf(ErrSealedSchedule, "replace activation at %d", height)
	}
	i := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].Height >= height })
	if i == len(s.entries) || s.entries[i].Height != height {
		return errors.Wrapf(ErrConfiguration, "no activation at %d", height)
	}
	s.entries[i].Rules = rules
	return nil
}

// Seal ends the build phase. Calling it again has no effect.
func (s *Schedule) Seal() {
	s.mu.Lock()
	s.sealed.Store(true)
	s.mu.Unlock()
}

// Sealed reports whether Seal has been called.
func (s *Schedule) Sealed() bool {
	return s.sealed.Load()
}

// Resolve returns the ruleset of the activation with the greatest height
// not above height. It runs in O(log n) over the sorted heights.
func (s *Schedule) Resolve(height idx.Block) (Ruleset, error) {
	if !s.sealed.Load() {
		return Ruleset{}, errors.Wrapf(ErrNotSealed, "resolve height %d", height)
	}
	// index of the first activation strictly above height
	i := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].Height > height })
	if i == 0 {
		return Ruleset{}, errors.Wrapf(ErrNoApplicableRuleset, "height %d", height)
	}
	return s.entries[i-1].Rules, nil
}

// Len returns the number of registered activations.
func (s *Schedule) Len() int {
	if s.sealed.Load() {
		return len(s.entries)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Activations returns a copy of the activations in ascending height order.
func (s *Schedule) Activations() []Activation {
	if !s.sealed.Load() {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	out := make([]Activation, len(s.entries))
	copy(out, s.entries)
	return out
}
