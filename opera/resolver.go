package opera

import (
	"fmt"
	"math/big"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"

	ethparams "github.com/ethereum/go-ethereum/params"
)

// Resolver answers which ruleset is in force at a block height. It wraps a
// sealed NetworkConfig, is created once at node startup and is shared by
// reference with every validation worker and the bridge.
type Resolver struct {
	cfg      *NetworkConfig
	forkID   ForkID
	upgrades []UpgradeHeight
}

// NewResolver wraps a sealed configuration. It fails with ErrNotSealed for a
// configuration still being built, and with ErrNoApplicableRuleset if the
// configuration has no genesis activation.
func NewResolver(cfg *NetworkConfig) (*Resolver, error) {
	if cfg == nil {
		return nil, errors.Wrap(ErrConfiguration, "nil network configuration")
	}
	if !cfg.Sealed() {
		return nil, errors.Wrapf(ErrNotSealed, "network %s", cfg.Network())
	}
	if _, err := cfg.RulesetAt(0); err != nil {
		return nil, errors.Wrapf(err, "network %s", cfg.Network())
	}

	initPrometheusMetrics()
	prometheusScheduleActivations.WithLabelValues(cfg.Network()).Set(float64(len(cfg.Activations())))
	prometheusChainID.WithLabelValues(cfg.Network()).Set(float64(cfg.Genesis().ChainID()))

	return &Resolver{
		cfg:      cfg,
		forkID:   cfg.ForkID(),
		upgrades: cfg.UpgradeHeights(),
	}, nil
}

// RulesetFor returns the ruleset in force at height. Resolution is total for
// a resolver built by NewResolver; a failure here means the configuration
// was corrupted after startup and the node must not continue.
func (r *Resolver) RulesetFor(height idx.Block) Ruleset {
	rules, err := r.cfg.RulesetAt(height)
	if err != nil {
		panic(fmt.Sprintf("ruleset resolution failed on network %s: %v", r.cfg.Network(), err))
	}
	prometheusRulesetResolutions.Inc()
	return rules
}

// ChainConfig returns the EVM chain config in force at height. Its upgrade
// blocks follow the upgrade flags of the whole sealed schedule.
func (r *Resolver) ChainConfig(height idx.Block) *ethparams.ChainConfig {
	return r.RulesetFor(height).EvmChainConfig(r.upgrades)
}

// Signer returns the transaction signer in force at height, e.g. a London
// signer once London is enabled.
func (r *Resolver) Signer(height idx.Block) types.Signer {
	return types.MakeSigner(r.ChainConfig(height), new(big.Int).SetUint64(uint64(height)))
}

// Network returns the name of the resolved network.
func (r *Resolver) Network() string { return r.cfg.Network() }

// Config returns the sealed configuration behind the resolver.
func (r *Resolver) Config() *NetworkConfig { return r.cfg }

// ForkID returns the fingerprint of the sealed schedule.
func (r *Resolver) ForkID() ForkID { return r.forkID }
