// Package opera defines the consensus rulesets of the asset chain and decides
// which of them applies at a given block height.
//
// This package provides:
//   - Network identification constants (MainNet, TestNet, DevNet)
//   - Ruleset, the immutable bundle of consensus constants of one protocol version
//   - Genesis rulesets for every built-in network
//   - Schedule, the ordered list of height activated rulesets of one network
//   - NetworkConfig and Resolver, the build-then-seal entry points used by
//     block validation and the bridge
//
// A NetworkConfig is built once at startup, sealed, and then shared read-only
// by every validation worker. Resolution after sealing takes no locks.
package opera

import (
	"io"
	"math/big"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	ethparams "github.com/ethereum/go-ethereum/params"
)

// Network identification constants
const (
	// MainNetworkID is the chain ID of the asset chain mainnet (0xfa = 250 in decimal)
	MainNetworkID uint64 = 0xfa

	// TestNetworkID is the chain ID of the public testnet (0xfa2 = 4002 in decimal)
	TestNetworkID uint64 = 0xfa2

	// DevNetworkID is the chain ID of local development networks (0xfa3 = 4003 in decimal)
	DevNetworkID uint64 = 0xfa3
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RulesetRLP is the serializable form of a Ruleset. It is also the record
// handed to Derive callbacks when building a fork variant.
type RulesetRLP struct {
	Name    string       `json:"name"`    // Network label (e.g., "main", "test", "dev")
	ChainID uint64       `json:"chainId"` // Chain ID for transaction signing, prevents cross-network replay
	Bridge  BridgeParams `json:"bridge"`  // External main chain bridge constants

	// Economy options - Gas pricing
	Economy EconomyRules `json:"economy"`

	// Blocks options - Block production limits
	Blocks BlocksRules `json:"blocks"`

	// Upgrades - Protocol upgrade flags, part of the ruleset hash
	Upgrades Upgrades `json:"upgrades"`
}

// EconomyRules contains the economic parameters of the network.
type EconomyRules struct {
	// MinGasPrice is the minimum gas price (in wei) for transactions
	MinGasPrice *big.Int `json:"minGasPrice"`
}

// BlocksRules contains rules for block validation.
type BlocksRules struct {
	// MaxBlockGas is the technical hard limit for gas per block
	MaxBlockGas uint64 `json:"maxBlockGas"`
}

// Upgrades tracks which protocol upgrades are enabled for a network.
type Upgrades struct {
	Berlin bool `json:"berlin"` // Berlin upgrade (EIP-2565, EIP-2929, EIP-2718, EIP-2930)
	London bool `json:"london"` // London upgrade (EIP-1559, EIP-3198, EIP-3529, EIP-3541)
	Llr    bool `json:"llr"`    // LLR (Low Latency Records) upgrade
}

// UpgradeHeight specifies at which block height an upgrade set becomes active.
type UpgradeHeight struct {
	Upgrades Upgrades  // Which upgrades are activated
	Height   idx.Block // Block height at which upgrades take effect
}

// Ruleset is the immutable set of consensus constants of one protocol version.
// Fields are only reachable through accessors that return copies, so a
// constructed Ruleset never changes. The zero value is not a valid ruleset.
type Ruleset struct {
	rules RulesetRLP
}

// NewRuleset validates its input and builds a Ruleset. A nil bridge record,
// a zero chain ID or an inconsistent bridge record yield ErrConfiguration.
// Economy, block limits and upgrades start from DefaultEconomyRules,
// DefaultBlocksRules and no upgrades; use Derive to change them.
func NewRuleset(name string, chainID uint64, bridge *BridgeParams) (Ruleset, error) {
	if bridge == nil {
		return Ruleset{}, errors.Wrapf(ErrConfiguration, "ruleset %q: missing bridge parameters", name)
	}
	return newRuleset(RulesetRLP{
		Name:    name,
		ChainID: chainID,
		Bridge:  *bridge,
		Economy: DefaultEconomyRules(),
		Blocks:  DefaultBlocksRules(),
	})
}

// MustRuleset is like NewRuleset but panics on invalid input. It is meant
// for rulesets fixed at compile time.
func MustRuleset(name string, chainID uint64, bridge *BridgeParams) Ruleset {
	r, err := NewRuleset(name, chainID, bridge)
	if err != nil {
		panic(err)
	}
	return r
}

func newRuleset(r RulesetRLP) (Ruleset, error) {
	if r.ChainID == 0 {
		return Ruleset{}, errors.Wrapf(ErrConfiguration, "ruleset %q: missing chain id", r.Name)
	}
	if err := r.Bridge.validate(); err != nil {
		return Ruleset{}, errors.Wrapf(err, "ruleset %q", r.Name)
	}
	if r.Blocks.MaxBlockGas == 0 {
		return Ruleset{}, errors.Wrapf(ErrConfiguration, "ruleset %q: zero block gas limit", r.Name)
	}
	if r.Economy.MinGasPrice != nil && r.Economy.MinGasPrice.Sign() < 0 {
		return Ruleset{}, errors.Wrapf(ErrConfiguration, "ruleset %q: negative min gas price", r.Name)
	}
	r.Bridge = r.Bridge.Copy()
	r.Economy.MinGasPrice = copyFee(r.Economy.MinGasPrice)
	return Ruleset{rules: r}, nil
}

// Derive builds a fork variant layered over r. The callback receives a deep
// copy of r's values; the result is validated like NewRuleset.
func (r Ruleset) Derive(modify func(*RulesetRLP)) (Ruleset, error) {
	cp := r.RLP()
	modify(&cp)
	return newRuleset(cp)
}

// Name returns the network label of the ruleset.
func (r Ruleset) Name() string { return r.rules.Name }

// ChainID returns the chain identifier used for replay protection.
func (r Ruleset) ChainID() uint64 { return r.rules.ChainID }

// Bridge returns a copy of the bridge parameters.
func (r Ruleset) Bridge() BridgeParams { return r.rules.Bridge.Copy() }

// MinGasPrice returns the minimum accepted gas price.
func (r Ruleset) MinGasPrice() *big.Int { return copyFee(r.rules.Economy.MinGasPrice) }

// MaxBlockGas returns the gas limit of a block.
func (r Ruleset) MaxBlockGas() uint64 { return r.rules.Blocks.MaxBlockGas }

// Upgrades returns the protocol upgrades enabled by the ruleset.
func (r Ruleset) Upgrades() Upgrades { return r.rules.Upgrades }

// RLP returns a deep copy of the serializable form.
func (r Ruleset) RLP() RulesetRLP {
	cp := r.rules
	cp.Bridge = r.rules.Bridge.Copy()
	cp.Economy.MinGasPrice = copyFee(r.rules.Economy.MinGasPrice)
	return cp
}

// IsZero reports whether r is the zero value rather than a constructed ruleset.
func (r Ruleset) IsZero() bool { return r.rules.ChainID == 0 }

// Equal reports structural equality.
func (r Ruleset) Equal(o Ruleset) bool {
	return r.rules.Name == o.rules.Name &&
		r.rules.ChainID == o.rules.ChainID &&
		r.rules.Bridge.Equal(o.rules.Bridge) &&
		copyFee(r.rules.Economy.MinGasPrice).Cmp(copyFee(o.rules.Economy.MinGasPrice)) == 0 &&
		r.rules.Blocks == o.rules.Blocks &&
		r.rules.Upgrades == o.rules.Upgrades
}

// EncodeRLP implements rlp.Encoder.
func (r Ruleset) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &r.rules)
}

// DecodeRLP implements rlp.Decoder. Decoded values are validated.
func (r *Ruleset) DecodeRLP(s *rlp.Stream) error {
	var dec RulesetRLP
	if err := s.Decode(&dec); err != nil {
		return err
	}
	rules, err := newRuleset(dec)
	if err != nil {
		return err
	}
	*r = rules
	return nil
}

// Hash returns the keccak256 digest of the RLP encoding. Two nodes agree on
// a ruleset exactly when they agree on its hash.
func (r Ruleset) Hash() common.Hash {
	enc, err := rlp.EncodeToBytes(r)
	if err != nil {
		// only reachable with a broken encoder, every field is RLP-encodable
		panic(err)
	}
	return crypto.Keccak256Hash(enc)
}

// MarshalJSON implements json.Marshaler.
func (r Ruleset) MarshalJSON() ([]byte, error) {
	return json.Marshal(&r.rules)
}

// String returns a JSON representation of the ruleset for logs.
func (r Ruleset) String() string {
	b, _ := r.MarshalJSON()
	return string(b)
}

// EvmChainConfig converts the ruleset into an Ethereum ChainConfig. hh lists
// the upgrades of every activation of the network in ascending height order;
// BerlinBlock and LondonBlock are set at the first height enabling them and
// cleared again if a later activation disables them.
func (r Ruleset) EvmChainConfig(hh []UpgradeHeight) *ethparams.ChainConfig {
	cfg := *ethparams.AllEthashProtocolChanges
	cfg.ChainID = new(big.Int).SetUint64(r.rules.ChainID)

	cfg.BerlinBlock = nil
	cfg.LondonBlock = nil
	for i, h := range hh {
		height := new(big.Int)
		// the first entry is the genesis
		if i > 0 {
			height.SetUint64(uint64(h.Height))
		}
		if cfg.BerlinBlock == nil && h.Upgrades.Berlin {
			cfg.BerlinBlock = height
		}
		if !h.Upgrades.Berlin {
			cfg.BerlinBlock = nil
		}
		if cfg.LondonBlock == nil && h.Upgrades.London {
			cfg.LondonBlock = height
		}
		if !h.Upgrades.London {
			cfg.LondonBlock = nil
		}
	}
	return &cfg
}

// Signer returns the latest transaction signer bound to the ruleset's chain ID.
// Transactions signed for another network fail sender recovery with it.
func (r Ruleset) Signer() types.Signer {
	return types.LatestSignerForChainID(new(big.Int).SetUint64(r.rules.ChainID))
}

// MainNetRules returns the genesis ruleset of the mainnet.
func MainNetRules() Ruleset {
	return mustDerive(MainNet, MainNetworkID, &BridgeParams{
		Gateway:          common.HexToAddress("0xfa00000000000000000000000000000000000b01"),
		MainchainAddress: "XQd1DCi6H62NQdWZQhJCRnrPn7sF9CTjaU",
		Signers: []common.Address{
			common.HexToAddress("0x5b3e7c1b0d2ad1f3a6d5e1c63b0e4fdf2b8e7a10"),
			common.HexToAddress("0x8c9f1d4e2a7b6c3d0e5f4a1b2c3d4e5f6a7b8c91"),
			common.HexToAddress("0x1a2b3c4d5e6f708192a3b4c5d6e7f8091a2b3c42"),
		},
		Threshold:        2,
		MinConfirmations: 6,
		DepositFee:       big.NewInt(0),
		WithdrawFee:      big.NewInt(1e14), // 0.0001 native token
	}, func(r *RulesetRLP) {
		r.Upgrades = Upgrades{Berlin: true, London: true}
	})
}

// TestNetRules returns the genesis ruleset of the public testnet.
// It mirrors mainnet with its own addresses and a shallower confirmation depth.
func TestNetRules() Ruleset {
	return mustDerive(TestNet, TestNetworkID, &BridgeParams{
		Gateway:          common.HexToAddress("0xfa20000000000000000000000000000000000b01"),
		MainchainAddress: "XVfmhjxGxBKgzYxyXCJTb6YmaRfWPVunj4",
		Signers: []common.Address{
			common.HexToAddress("0x2d4c6e8f0a1b3c5d7e9f0a2b4c6d8e0f1a3b5c71"),
			common.HexToAddress("0x3e5d7f9a1b2c4d6e8f0a1b3c5d7e9f1a2b4c6d82"),
			common.HexToAddress("0x4f6e8a0b2c3d5e7f9a1b2c4d6e8f0a2b3c5d7e93"),
		},
		Threshold:        2,
		MinConfirmations: 3,
		DepositFee:       big.NewInt(0),
		WithdrawFee:      big.NewInt(1e12),
	}, func(r *RulesetRLP) {
		r.Upgrades = Upgrades{Berlin: true}
	})
}

// DevNetRules returns the genesis ruleset of local development networks.
// A single custodian signs withdrawals and deposits credit after one block.
func DevNetRules() Ruleset {
	return mustDerive(DevNet, DevNetworkID, &BridgeParams{
		Gateway:          common.HexToAddress("0xfa30000000000000000000000000000000000b01"),
		MainchainAddress: "EKn3UGyEoXYhpCmsGFm3hxNdr3ZrSbRyna",
		Signers: []common.Address{
			common.HexToAddress("0x239fa7623354ec26520de878b52f13fe84b06971"),
		},
		Threshold:        1,
		MinConfirmations: 1,
		DepositFee:       big.NewInt(0),
		WithdrawFee:      big.NewInt(0),
	}, func(r *RulesetRLP) {
		r.Upgrades = Upgrades{Berlin: true, London: true, Llr: true}
	})
}

// DefaultEconomyRules returns the mainnet economy configuration.
func DefaultEconomyRules() EconomyRules {
	return EconomyRules{
		MinGasPrice: big.NewInt(1e9), // 1 Gwei minimum gas price
	}
}

// DefaultBlocksRules returns the block limits shared by the built-in networks.
func DefaultBlocksRules() BlocksRules {
	return BlocksRules{
		MaxBlockGas: 20500000, // 20.5M gas per block
	}
}

func mustDerive(name string, chainID uint64, bridge *BridgeParams, modify func(*RulesetRLP)) Ruleset {
	r, err := MustRuleset(name, chainID, bridge).Derive(modify)
	if err != nil {
		panic(err)
	}
	return r
}
