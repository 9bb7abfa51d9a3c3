package opera

import "github.com/pkg/errors"

// Errors returned while building or querying a network configuration.
// They all describe startup or programming defects: none of them is
// transient, so callers abort node initialization instead of retrying.
// Context is attached with errors.Wrap, use errors.Is to match.
var (
	// ErrConfiguration is returned for malformed or incomplete ruleset input.
	ErrConfiguration = errors.New("invalid ruleset configuration")

	// ErrUnknownNetwork is returned when no configuration exists for a network name.
	ErrUnknownNetwork = errors.New("unknown network")

	// ErrDuplicateActivation is returned when two activations share one height.
	ErrDuplicateActivation = errors.New("duplicate activation height")

	// ErrSealedSchedule is returned when registering into a sealed schedule.
	ErrSealedSchedule = errors.New("activation schedule is sealed")

	// ErrNotSealed is returned when resolving against a schedule still being built.
	ErrNotSealed = errors.New("activation schedule is not sealed")

	// ErrNoApplicableRuleset is returned when no activation covers a height.
	// A schedule with a genesis entry never produces it.
	ErrNoApplicableRuleset = errors.New("no ruleset active at height")
)
