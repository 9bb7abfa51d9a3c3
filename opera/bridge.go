package opera

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// BridgeParams holds the constants governing the bridge with the external
// proof-of-work main chain. A ruleset keeps its own deep copy, so a
// BridgeParams value handed to NewRuleset may be reused freely afterwards.
type BridgeParams struct {
	// Gateway is the bridge contract on this chain that burns withdrawals
	// and mints deposits.
	Gateway common.Address `json:"gateway"`

	// MainchainAddress is the deposit address on the external chain,
	// in that chain's own address encoding.
	MainchainAddress string `json:"mainchainAddress"`

	// Signers are the custodians allowed to co-sign withdrawals on the main chain.
	Signers []common.Address `json:"signers"`

	// Threshold is the number of signer signatures a withdrawal needs.
	Threshold uint64 `json:"threshold"`

	// MinConfirmations is the main chain depth a deposit must reach before
	// it is credited on this chain.
	MinConfirmations uint64 `json:"minConfirmations"`

	// DepositFee and WithdrawFee are charged in wei by the gateway.
	DepositFee  *big.Int `json:"depositFee"`
	WithdrawFee *big.Int `json:"withdrawFee"`
}

// Copy returns a deep copy. Nil fees are normalized to zero.
func (b BridgeParams) Copy() BridgeParams {
	cp := b
	if b.Signers != nil {
		cp.Signers = make([]common.Address, len(b.Signers))
		copy(cp.Signers, b.Signers)
	}
	cp.DepositFee = copyFee(b.DepositFee)
	cp.WithdrawFee = copyFee(b.WithdrawFee)
	return cp
}

// Equal reports whether both records carry the same values.
func (b BridgeParams) Equal(o BridgeParams) bool {
	if b.Gateway != o.Gateway ||
		b.MainchainAddress != o.MainchainAddress ||
		b.Threshold != o.Threshold ||
		b.MinConfirmations != o.MinConfirmations {
		return false
	}
	if len(b.Signers) != len(o.Signers) {
		return false
	}
	for i := range b.Signers {
		if b.Signers[i] != o.Signers[i] {
			return false
		}
	}
	return copyFee(b.DepositFee).Cmp(copyFee(o.DepositFee)) == 0 &&
		copyFee(b.WithdrawFee).Cmp(copyFee(o.WithdrawFee)) == 0
}

func (b BridgeParams) validate() error {
	if b.Gateway == (common.Address{}) {
		return errors.Wrap(ErrConfiguration, "bridge gateway address is zero")
	}
	if b.MainchainAddress == "" {
		return errors.Wrap(ErrConfiguration, "bridge mainchain address is empty")
	}
	if len(b.Signers) == 0 {
		return errors.Wrap(ErrConfiguration, "bridge has no signers")
	}
	seen := make(map[common.Address]struct{}, len(b.Signers))
	for _, s := range b.Signers {
		if s == (common.Address{}) {
			return errors.Wrap(ErrConfiguration, "bridge signer address is zero")
		}
		if _, dup := seen[s]; dup {
			return errors.Wrapf(ErrConfiguration, "bridge signer %s listed twice", s.Hex())
		}
		seen[s] = struct{}{}
	}
	if b.Threshold == 0 || b.Threshold > uint64(len(b.Signers)) {
		return errors.Wrapf(ErrConfiguration, "bridge threshold %d out of range [1, %d]", b.Threshold, len(b.Signers))
	}
	if b.DepositFee != nil && b.DepositFee.Sign() < 0 {
		return errors.Wrap(ErrConfiguration, "negative bridge deposit fee")
	}
	if b.WithdrawFee != nil && b.WithdrawFee.Sign() < 0 {
		return errors.Wrap(ErrConfiguration, "negative bridge withdraw fee")
	}
	return nil
}

func copyFee(fee *big.Int) *big.Int {
	if fee == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(fee)
}
