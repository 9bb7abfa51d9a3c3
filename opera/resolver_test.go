package opera

import (
	"math/big"
	"sync"
	"testing"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func sealedResolver(t *testing.T, network string) *Resolver {
	t.Helper()
	cfg, err := ForNetwork(network)
	require.NoError(t, err)
	cfg.Seal()
	r, err := NewResolver(cfg)
	require.NoError(t, err)
	return r
}

// TestNewResolver_requiresSealed verifies that a resolver never wraps a
// configuration that may still change.
func TestNewResolver_requiresSealed(t *testing.T) {
	require := require.New(t)

	cfg, err := ForNetwork(DevNet)
	require.NoError(err)

	_, err = NewResolver(cfg)
	require.ErrorIs(err, ErrNotSealed)

	_, err = NewResolver(nil)
	require.ErrorIs(err, ErrConfiguration)

	cfg.Seal()
	r, err := NewResolver(cfg)
	require.NoError(err)
	require.Equal(DevNet, r.Network())
	require.Same(cfg, r.Config())
	require.Equal(cfg.ForkID(), r.ForkID())
}

// TestResolver_RulesetFor resolves (0, R0) and (100, R1) through the facade.
func TestResolver_RulesetFor(t *testing.T) {
	require := require.New(t)
	r0, r1 := variant(t, 1), variant(t, 2)

	cfg := NewNetworkConfig("private", r0)
	require.NoError(cfg.ScheduleActivation(100, r1))
	cfg.Seal()

	res, err := NewResolver(cfg)
	require.NoError(err)

	require.True(r0.Equal(res.RulesetFor(0)))
	require.True(r0.Equal(res.RulesetFor(99)))
	require.True(r1.Equal(res.RulesetFor(100)))
	require.True(r1.Equal(res.RulesetFor(5000)))
}

// TestResolver_devGenesisOnly: a genesis-only dev network resolves R0 everywhere.
func TestResolver_devGenesisOnly(t *testing.T) {
	res := sealedResolver(t, DevNet)
	r0 := DevNetRules()
	require.True(t, r0.Equal(res.RulesetFor(0)))
	require.True(t, r0.Equal(res.RulesetFor(1_000_000)))
}

// TestResolver_ChainConfig verifies the EVM view at a height.
func TestResolver_ChainConfig(t *testing.T) {
	require := require.New(t)

	res := sealedResolver(t, MainNet)
	require.Equal(MainNetworkID, res.ChainConfig(12345).ChainID.Uint64())
	require.True(res.ChainConfig(0).IsLondon(big.NewInt(0)))

	test := sealedResolver(t, TestNet)
	cfg := test.ChainConfig(0)
	require.Equal(TestNetworkID, cfg.ChainID.Uint64())
	require.Zero(cfg.BerlinBlock.Sign())
	require.Equal(uint64(TestNetLondonHeight), cfg.LondonBlock.Uint64())

	london := new(big.Int).SetUint64(uint64(TestNetLondonHeight))
	require.False(cfg.IsLondon(new(big.Int).Sub(london, big.NewInt(1))))
	require.True(cfg.IsLondon(london))

	// the signer follows the upgrades
	require.True(types.NewEIP2930Signer(cfg.ChainID).Equal(test.Signer(TestNetLondonHeight - 1)))
	require.True(types.NewLondonSigner(cfg.ChainID).Equal(test.Signer(TestNetLondonHeight)))
}

// TestResolver_replayProtection signs a transaction for mainnet and checks
// that the testnet signer refuses it while the mainnet signer recovers the sender.
func TestResolver_replayProtection(t *testing.T) {
	require := require.New(t)

	key, err := crypto.GenerateKey()
	require.NoError(err)
	from := crypto.PubkeyToAddress(key.PublicKey)
	to := common.HexToAddress("0x00000000000000000000000000000000000000b1")

	mainRes := sealedResolver(t, MainNet)
	testRes := sealedResolver(t, TestNet)

	tx, err := types.SignTx(types.NewTx(&types.LegacyTx{
		Nonce:    0,
		To:       &to,
		Value:    big.NewInt(1),
		Gas:      21000,
		GasPrice: big.NewInt(1e9),
	}), mainRes.Signer(10), key)
	require.NoError(err)

	got, err := types.Sender(mainRes.Signer(10), tx)
	require.NoError(err)
	require.Equal(from, got)

	_, err = types.Sender(testRes.Signer(10), tx)
	require.Error(err)
}

// TestResolver_concurrentReaders shares one resolver between many workers.
func TestResolver_concurrentReaders(t *testing.T) {
	res := sealedResolver(t, TestNet)

	var wg sync.WaitGroup
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				h := idx.Block(w*400_000 + i)
				want := uint64(3)
				if h >= TestNetDeepConfirmationsHeight {
					want = 6
				}
				if got := res.RulesetFor(h).Bridge().MinConfirmations; got != want {
					t.Errorf("height %d: confirmations %d, want %d", h, got, want)
					return
				}
			}
		}(w)
	}
	wg.Wait()
}
