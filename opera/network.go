package opera

import (
	"sort"
	"strings"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/pkg/errors"
)

// Built-in network names.
const (
	MainNet = "main"
	TestNet = "test"
	DevNet  = "dev"
)

// TestNetLondonHeight is the testnet block enabling the London upgrade.
const TestNetLondonHeight idx.Block = 1_000_000

// TestNetDeepConfirmationsHeight is the testnet block from which deposits
// need mainnet-grade main chain depth before they are credited.
const TestNetDeepConfirmationsHeight idx.Block = 2_500_000

// compiledFork is a built-in activation. It only names the fields it
// changes and is layered over whatever ruleset is in force below it, so it
// keeps operator overrides scheduled at lower heights.
type compiledFork struct {
	Height idx.Block
	Modify func(*RulesetRLP)
}

// networkPreset is the compiled-in configuration of a built-in network.
type networkPreset struct {
	chainID uint64
	genesis func() Ruleset
	forks   []compiledFork
}

var presets = map[string]networkPreset{
	MainNet: {chainID: MainNetworkID, genesis: MainNetRules},
	TestNet: {chainID: TestNetworkID, genesis: TestNetRules, forks: []compiledFork{
		{Height: TestNetLondonHeight, Modify: func(r *RulesetRLP) { r.Upgrades.London = true }},
		{Height: TestNetDeepConfirmationsHeight, Modify: func(r *RulesetRLP) { r.Bridge.MinConfirmations = 6 }},
	}},
	DevNet: {chainID: DevNetworkID, genesis: DevNetRules},
}

var aliases = map[string]string{
	"mainnet": MainNet,
	"testnet": TestNet,
	"devnet":  DevNet,
	"fake":    DevNet,
	"fakenet": DevNet,
}

// CanonicalNetwork maps a network name or alias to its built-in name.
func CanonicalNetwork(name string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if a, ok := aliases[n]; ok {
		n = a
	}
	if _, ok := presets[n]; !ok {
		return "", errors.Wrapf(ErrUnknownNetwork, "%q (known: %s)", name, strings.Join(Networks(), ", "))
	}
	return n, nil
}

// Networks returns the sorted names of the built-in networks.
func Networks() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NetworkConfig is the protocol configuration of one deployment network.
// It moves from building to sealed exactly once: activations may only be
// scheduled while building, rulesets may only be resolved once sealed.
// A sealed NetworkConfig is safe for concurrent use.
type NetworkConfig struct {
	network  string
	genesis  Ruleset
	schedule *Schedule
	forks    map[idx.Block]func(*RulesetRLP)
}

// ForNetwork returns a new building configuration of a built-in network,
// holding its genesis ruleset at height 0 and its compiled-in forks.
func ForNetwork(name string) (*NetworkConfig, error) {
	network, err := CanonicalNetwork(name)
	if err != nil {
		return nil, err
	}
	preset := presets[network]
	cfg := NewNetworkConfig(network, preset.genesis())
	for _, f := range preset.forks {
		if err := cfg.scheduleFork(f); err != nil {
			return nil, errors.Wrapf(err, "network %s", network)
		}
	}
	return cfg, nil
}

// NewNetworkConfig returns a building configuration for a custom network,
// e.g. a private deployment, with genesis active from height 0.
func NewNetworkConfig(network string, genesis Ruleset) *NetworkConfig {
	cfg := &NetworkConfig{
		network:  network,
		genesis:  genesis,
		schedule: NewSchedule(),
		forks:    make(map[idx.Block]func(*RulesetRLP)),
	}
	if err := cfg.schedule.Register(0, genesis); err != nil {
		// a fresh schedule only rejects the zero ruleset
		panic(err)
	}
	return cfg
}

func (c *NetworkConfig) scheduleFork(f compiledFork) error {
	below, err := c.inForceBelow(f.Height)
	if err != nil {
		return err
	}
	rules, err := below.Derive(f.Modify)
	if err != nil {
		return errors.Wrapf(err, "compiled fork at %d", f.Height)
	}
	if err := c.ScheduleActivation(f.Height, rules); err != nil {
		return err
	}
	c.forks[f.Height] = f.Modify
	return nil
}

// ScheduleActivation registers a ruleset taking effect at height. A ruleset
// carrying the chain ID of another built-in network is rejected with
// ErrConfiguration. Compiled-in forks above height are layered again over
// the new activation.
func (c *NetworkConfig) ScheduleActivation(height idx.Block, rules Ruleset) error {
	if err := c.checkChainID(height, rules); err != nil {
		return err
	}
	rebased, err := c.rebaseForks(height, rules)
	if err != nil {
		return err
	}
	if err := c.schedule.Register(height, rules); err != nil {
		return err
	}
	for _, a := range rebased {
		if err := c.schedule.replace(a.Height, a.Rules); err != nil {
			return err
		}
	}
	return nil
}

func (c *NetworkConfig) checkChainID(height idx.Block, rules Ruleset) error {
	id := rules.ChainID()
	if id == c.genesis.ChainID() {
		return nil
	}
	for name, p := range presets {
		if name != c.network && p.chainID == id {
			return errors.Wrapf(ErrConfiguration, "activation at %d on network %s uses chain id %d of network %s", height, c.network, id, name)
		}
	}
	return nil
}

// rebaseForks recomputes the compiled forks above height as if an
// activation with rules was already scheduled there. The schedule is not
// modified.
func (c *NetworkConfig) rebaseForks(height idx.Block, rules Ruleset) ([]Activation, error) {
	if len(c.forks) == 0 || c.Sealed() {
		return nil, nil
	}
	acts := c.schedule.Activations()
	i := sort.Search(len(acts), func(i int) bool { return acts[i].Height >= height })
	if i < len(acts) && acts[i].Height == height {
		// duplicate, rejected by Register
		return nil, nil
	}

	var rebased []Activation
	prev := rules
	for _, a := range acts[i:] {
		if modify, ok := c.forks[a.Height]; ok {
			r, err := prev.Derive(modify)
			if err != nil {
				return nil, errors.Wrapf(err, "compiled fork at %d over activation at %d", a.Height, height)
			}
			if err := c.checkChainID(a.Height, r); err != nil {
				return nil, err
			}
			a.Rules = r
			rebased = append(rebased, a)
		}
		prev = a.Rules
	}
	return rebased, nil
}

// inForceBelow returns the ruleset of the last activation below height.
func (c *NetworkConfig) inForceBelow(height idx.Block) (Ruleset, error) {
	acts := c.schedule.Activations()
	i := sort.Search(len(acts), func(i int) bool { return acts[i].Height >= height })
	if i == 0 {
		return Ruleset{}, errors.Wrapf(ErrNoApplicableRuleset, "nothing in force below %d", height)
	}
	return acts[i-1].Rules, nil
}

// Seal freezes the configuration. Calling it again has no effect.
func (c *NetworkConfig) Seal() {
	c.schedule.Seal()
}

// Sealed reports whether the configuration is frozen.
func (c *NetworkConfig) Sealed() bool {
	return c.schedule.Sealed()
}

// RulesetAt returns the ruleset in force at height. It is the hot path of
// block validation.
func (c *NetworkConfig) RulesetAt(height idx.Block) (Ruleset, error) {
	return c.schedule.Resolve(height)
}

// Network returns the network name.
func (c *NetworkConfig) Network() string { return c.network }

// Genesis returns the ruleset active from height 0.
func (c *NetworkConfig) Genesis() Ruleset { return c.genesis }

// Activations returns the scheduled activations in ascending height order.
func (c *NetworkConfig) Activations() []Activation { return c.schedule.Activations() }

// UpgradeHeights lists the upgrades of every activation in ascending height
// order, the input of Ruleset.EvmChainConfig.
func (c *NetworkConfig) UpgradeHeights() []UpgradeHeight {
	acts := c.schedule.Activations()
	hh := make([]UpgradeHeight, len(acts))
	for i, a := range acts {
		hh[i] = UpgradeHeight{Upgrades: a.Rules.Upgrades(), Height: a.Height}
	}
	return hh
}
