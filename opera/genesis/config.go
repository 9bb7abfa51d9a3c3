// Package genesis holds the operator-supplied side of a network's protocol
// schedule: activation entries read from the node configuration file that
// customize fork heights and ruleset values without code changes, e.g. for
// private or dev deployments.
//
// An override only names the fields it changes. Everything else is inherited
// from the ruleset in force right before the activation height, so overrides
// stack in height order on top of the network's genesis and compiled-in forks,
// and compiled-in forks above an override are layered over it in turn.
//
// Example (TOML):
//
//	[[Opera.Activations]]
//	Height = 500000
//	[Opera.Activations.Override]
//	Threshold = 3
//	Signers = ["0x...", "0x...", "0x..."]
package genesis

import (
	"math/big"
	"sort"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/rony4d/go-asset-chain/opera"
)

// Activation schedules a ruleset override at a block height.
type Activation struct {
	Height   idx.Block
	Override RulesetOverride
}

// RulesetOverride lists the ruleset fields an activation changes. Nil
// fields keep the inherited value.
type RulesetOverride struct {
	Name             *string          `toml:",omitempty"`
	ChainID          *uint64          `toml:",omitempty"`
	Gateway          *common.Address  `toml:",omitempty"`
	MainchainAddress *string          `toml:",omitempty"`
	Signers          []common.Address `toml:",omitempty"`
	Threshold        *uint64          `toml:",omitempty"`
	MinConfirmations *uint64          `toml:",omitempty"`
	DepositFee       *big.Int         `toml:",omitempty"`
	WithdrawFee      *big.Int         `toml:",omitempty"`
	MinGasPrice      *big.Int         `toml:",omitempty"`
	MaxBlockGas      *uint64          `toml:",omitempty"`
	Upgrades         *opera.Upgrades  `toml:",omitempty"`
}

// IsEmpty reports whether the override changes nothing.
func (o RulesetOverride) IsEmpty() bool {
	return o.Name == nil && o.ChainID == nil && o.Gateway == nil &&
		o.MainchainAddress == nil && o.Signers == nil && o.Threshold == nil &&
		o.MinConfirmations == nil && o.DepositFee == nil && o.WithdrawFee == nil &&
		o.MinGasPrice == nil && o.MaxBlockGas == nil && o.Upgrades == nil
}

// Apply layers the override over base and validates the result.
func (o RulesetOverride) Apply(base opera.Ruleset) (opera.Ruleset, error) {
	return base.Derive(func(r *opera.RulesetRLP) {
		if o.Name != nil {
			r.Name = *o.Name
		}
		if o.ChainID != nil {
			r.ChainID = *o.ChainID
		}
		if o.Gateway != nil {
			r.Bridge.Gateway = *o.Gateway
		}
		if o.MainchainAddress != nil {
			r.Bridge.MainchainAddress = *o.MainchainAddress
		}
		if o.Signers != nil {
			r.Bridge.Signers = append([]common.Address(nil), o.Signers...)
		}
		if o.Threshold != nil {
			r.Bridge.Threshold = *o.Threshold
		}
		if o.MinConfirmations != nil {
			r.Bridge.MinConfirmations = *o.MinConfirmations
		}
		if o.DepositFee != nil {
			r.Bridge.DepositFee = new(big.Int).Set(o.DepositFee)
		}
		if o.WithdrawFee != nil {
			r.Bridge.WithdrawFee = new(big.Int).Set(o.WithdrawFee)
		}
		if o.MinGasPrice != nil {
			r.Economy.MinGasPrice = new(big.Int).Set(o.MinGasPrice)
		}
		if o.MaxBlockGas != nil {
			r.Blocks.MaxBlockGas = *o.MaxBlockGas
		}
		if o.Upgrades != nil {
			r.Upgrades = *o.Upgrades
		}
	})
}

// ApplyActivations schedules activations on a configuration that is still
// being built. Activations are applied in ascending height order, each one
// layered over the ruleset in force just before its height. The first
// failing activation aborts the whole call.
func ApplyActivations(cfg *opera.NetworkConfig, activations []Activation) error {
	sorted := make([]Activation, len(activations))
	copy(sorted, activations)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Height < sorted[j].Height })

	for _, a := range sorted {
		if a.Override.IsEmpty() {
			return errors.Wrapf(opera.ErrConfiguration, "activation at %d overrides nothing", a.Height)
		}
		base, err := inForceBefore(cfg.Activations(), a.Height)
		if err != nil {
			return err
		}
		rules, err := a.Override.Apply(base)
		if err != nil {
			return errors.Wrapf(err, "activation at %d", a.Height)
		}
		if err := cfg.ScheduleActivation(a.Height, rules); err != nil {
			return err
		}
	}
	return nil
}

// inForceBefore returns the ruleset of the last activation below height,
// or the one at height 0 for a genesis override.
func inForceBefore(activations []opera.Activation, height idx.Block) (opera.Ruleset, error) {
	i := sort.Search(len(activations), func(i int) bool { return activations[i].Height >= height })
	switch {
	case i > 0:
		return activations[i-1].Rules, nil
	case len(activations) > 0:
		return activations[0].Rules, nil
	default:
		return opera.Ruleset{}, errors.Wrapf(opera.ErrNoApplicableRuleset, "no base ruleset for activation at %d", height)
	}
}
