package genesis

import (
	"math/big"
	"testing"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-asset-chain/opera"
)

func u64(v uint64) *uint64 { return &v }

// TestRulesetOverride_Apply verifies that only named fields change.
func TestRulesetOverride_Apply(t *testing.T) {
	require := require.New(t)

	base := opera.MainNetRules()
	signers := []common.Address{
		common.HexToAddress("0x00000000000000000000000000000000000000a1"),
		common.HexToAddress("0x00000000000000000000000000000000000000a2"),
		common.HexToAddress("0x00000000000000000000000000000000000000a3"),
		common.HexToAddress("0x00000000000000000000000000000000000000a4"),
	}
	got, err := RulesetOverride{
		Signers:     signers,
		Threshold:   u64(3),
		WithdrawFee: big.NewInt(5),
	}.Apply(base)
	require.NoError(err)

	b := got.Bridge()
	require.Equal(signers, b.Signers)
	require.Equal(uint64(3), b.Threshold)
	require.Equal(int64(5), b.WithdrawFee.Int64())
	require.Equal(base.Bridge().Gateway, b.Gateway)
	require.Equal(base.Bridge().MinConfirmations, b.MinConfirmations)
	require.Equal(base.ChainID(), got.ChainID())

	_, err = RulesetOverride{Threshold: u64(9)}.Apply(base)
	require.ErrorIs(err, opera.ErrConfiguration)
}

// TestApplyActivations_layering verifies that overrides stack in height order
// whatever order the operator listed them in.
func TestApplyActivations_layering(t *testing.T) {
	require := require.New(t)

	cfg, err := opera.ForNetwork(opera.DevNet)
	require.NoError(err)

	err = ApplyActivations(cfg, []Activation{
		{Height: 200, Override: RulesetOverride{DepositFee: big.NewInt(7)}},
		{Height: 100, Override: RulesetOverride{MinConfirmations: u64(12)}},
	})
	require.NoError(err)
	cfg.Seal()

	require.Len(cfg.Activations(), 3)

	at100, err := cfg.RulesetAt(150)
	require.NoError(err)
	require.Equal(uint64(12), at100.Bridge().MinConfirmations)
	require.Equal(0, at100.Bridge().DepositFee.Sign())

	at200, err := cfg.RulesetAt(200)
	require.NoError(err)
	require.Equal(uint64(12), at200.Bridge().MinConfirmations, "inherited from the activation at 100")
	require.Equal(int64(7), at200.Bridge().DepositFee.Int64())
}

// TestApplyActivations_onTopOfCompiledForks verifies that operator overrides
// inherit from built-in forks below them.
func TestApplyActivations_onTopOfCompiledForks(t *testing.T) {
	require := require.New(t)

	cfg, err := opera.ForNetwork(opera.TestNet)
	require.NoError(err)
	require.NoError(ApplyActivations(cfg, []Activation{
		{Height: opera.TestNetDeepConfirmationsHeight + 10, Override: RulesetOverride{DepositFee: big.NewInt(1)}},
	}))
	cfg.Seal()

	got, err := cfg.RulesetAt(opera.TestNetDeepConfirmationsHeight + 10)
	require.NoError(err)
	require.Equal(uint64(6), got.Bridge().MinConfirmations)
	require.Equal(int64(1), got.Bridge().DepositFee.Int64())
}

// TestApplyActivations_belowCompiledForks verifies that a signer rotation
// below the compiled testnet forks survives them.
func TestApplyActivations_belowCompiledForks(t *testing.T) {
	require := require.New(t)

	signers := []common.Address{
		common.HexToAddress("0x00000000000000000000000000000000000000d1"),
		common.HexToAddress("0x00000000000000000000000000000000000000d2"),
		common.HexToAddress("0x00000000000000000000000000000000000000d3"),
		common.HexToAddress("0x00000000000000000000000000000000000000d4"),
	}
	cfg, err := opera.ForNetwork(opera.TestNet)
	require.NoError(err)
	require.NoError(ApplyActivations(cfg, []Activation{
		{Height: 100, Override: RulesetOverride{Signers: signers, Threshold: u64(3)}},
		{Height: 5_000_000, Override: RulesetOverride{
			MaxBlockGas: u64(30_000_000),
			MinGasPrice: big.NewInt(2e9),
			Upgrades:    &opera.Upgrades{Berlin: true, London: true, Llr: true},
		}},
	}))
	cfg.Seal()

	for _, h := range []idx.Block{100, opera.TestNetLondonHeight, opera.TestNetDeepConfirmationsHeight, 5_000_000} {
		got, err := cfg.RulesetAt(h)
		require.NoError(err)
		require.Equal(signers, got.Bridge().Signers, "height %d", h)
		require.Equal(uint64(3), got.Bridge().Threshold, "height %d", h)
	}

	deep, err := cfg.RulesetAt(opera.TestNetDeepConfirmationsHeight)
	require.NoError(err)
	require.Equal(uint64(6), deep.Bridge().MinConfirmations)

	last, err := cfg.RulesetAt(5_000_000)
	require.NoError(err)
	require.Equal(uint64(30_000_000), last.MaxBlockGas())
	require.Equal(int64(2e9), last.MinGasPrice().Int64())
	require.True(last.Upgrades().Llr)
	require.Equal(uint64(6), last.Bridge().MinConfirmations)
}

// TestApplyActivations_errors covers rejected operator input.
func TestApplyActivations_errors(t *testing.T) {
	tests := []struct {
		name string
		acts []Activation
		want error
	}{
		{"genesis height", []Activation{{Height: 0, Override: RulesetOverride{Threshold: u64(1)}}}, opera.ErrDuplicateActivation},
		{"same height twice", []Activation{
			{Height: 5, Override: RulesetOverride{MinConfirmations: u64(2)}},
			{Height: 5, Override: RulesetOverride{MinConfirmations: u64(3)}},
		}, opera.ErrDuplicateActivation},
		{"empty override", []Activation{{Height: 5}}, opera.ErrConfiguration},
		{"invalid values", []Activation{{Height: 5, Override: RulesetOverride{ChainID: u64(0)}}}, opera.ErrConfiguration},
		{"zero block gas", []Activation{{Height: 5, Override: RulesetOverride{MaxBlockGas: u64(0)}}}, opera.ErrConfiguration},
		{"mainnet chain id", []Activation{{Height: 5, Override: RulesetOverride{ChainID: u64(opera.MainNetworkID)}}}, opera.ErrConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := opera.ForNetwork(opera.DevNet)
			require.NoError(t, err)
			require.ErrorIs(t, ApplyActivations(cfg, tt.acts), tt.want)
		})
	}

	sealed, err := opera.ForNetwork(opera.DevNet)
	require.NoError(t, err)
	sealed.Seal()
	err = ApplyActivations(sealed, []Activation{{Height: 5, Override: RulesetOverride{MinConfirmations: u64(2)}}})
	require.ErrorIs(t, err, opera.ErrSealedSchedule)
}
