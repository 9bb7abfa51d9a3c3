package integration

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-asset-chain/opera"
	"github.com/rony4d/go-asset-chain/opera/genesis"
)

func u64(v uint64) *uint64 { return &v }

// TestBuildNetwork_sealed verifies that the assembled configuration is sealed
// and carries the operator overrides.
func TestBuildNetwork_sealed(t *testing.T) {
	require := require.New(t)

	cfg, err := BuildNetwork(NetworkSettings{
		Network: "fakenet",
		Activations: []genesis.Activation{
			{Height: 1000, Override: genesis.RulesetOverride{MinConfirmations: u64(4)}},
		},
	})
	require.NoError(err)
	require.True(cfg.Sealed())
	require.Equal(opera.DevNet, cfg.Network())

	got, err := cfg.RulesetAt(1000)
	require.NoError(err)
	require.Equal(uint64(4), got.Bridge().MinConfirmations)

	require.ErrorIs(cfg.ScheduleActivation(2000, got), opera.ErrSealedSchedule)
}

// TestBuildNetwork_errors verifies that startup defects are reported.
func TestBuildNetwork_errors(t *testing.T) {
	_, err := BuildNetwork(NetworkSettings{Network: "nowhere"})
	require.ErrorIs(t, err, opera.ErrUnknownNetwork)

	_, err = BuildNetwork(NetworkSettings{
		Network: opera.MainNet,
		Activations: []genesis.Activation{
			{Height: 0, Override: genesis.RulesetOverride{MinConfirmations: u64(1)}},
		},
	})
	require.ErrorIs(t, err, opera.ErrDuplicateActivation)
}

// TestMakeResolver_logsSchedule verifies the resolver and its startup log.
func TestMakeResolver_logsSchedule(t *testing.T) {
	require := require.New(t)

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	r, err := MakeResolver(NetworkSettings{Network: opera.TestNet}, logger)
	require.NoError(err)
	require.Equal(opera.TestNetworkID, r.RulesetFor(0).ChainID())

	var sealed *logrus.Entry
	activations := 0
	for _, e := range hook.AllEntries() {
		switch e.Message {
		case "Protocol schedule sealed":
			sealed = e
		case "Ruleset activation":
			activations++
		}
	}
	require.NotNil(sealed)
	require.Equal(r.ForkID().String(), sealed.Data["forkId"])
	require.Equal(3, activations)
}
