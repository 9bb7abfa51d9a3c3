// Package integration assembles the protocol configuration of a node from
// the operator's settings: it selects a network, layers the configured
// activation overrides on top of it, seals the result and wraps it in the
// Resolver shared by block validation and the bridge.
package integration

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-asset-chain/opera"
	"github.com/rony4d/go-asset-chain/opera/genesis"
)

// NetworkSettings selects the protocol configuration of a node.
type NetworkSettings struct {
	Network     string               // built-in network name or alias
	Activations []genesis.Activation // operator overrides, applied in height order
}

// BuildNetwork returns the sealed configuration described by s. Any error is
// a startup defect and the node must not begin validating blocks.
func BuildNetwork(s NetworkSettings) (*opera.NetworkConfig, error) {
	cfg, err := opera.ForNetwork(s.Network)
	if err != nil {
		return nil, err
	}
	if err := genesis.ApplyActivations(cfg, s.Activations); err != nil {
		return nil, errors.Wrapf(err, "network %s", cfg.Network())
	}
	cfg.Seal()
	return cfg, nil
}

// MakeResolver builds and seals the configuration described by s and wraps
// it in a Resolver. The schedule is logged once so operators can compare it
// between nodes.
func MakeResolver(s NetworkSettings, log logrus.FieldLogger) (*opera.Resolver, error) {
	cfg, err := BuildNetwork(s)
	if err != nil {
		return nil, err
	}
	r, err := opera.NewResolver(cfg)
	if err != nil {
		return nil, err
	}

	genesisRules := cfg.Genesis()
	log.WithFields(logrus.Fields{
		"network":     cfg.Network(),
		"chainId":     genesisRules.ChainID(),
		"activations": len(cfg.Activations()),
		"forkId":      r.ForkID().String(),
	}).Info("Protocol schedule sealed")
	for _, a := range cfg.Activations() {
		log.WithFields(logrus.Fields{
			"height":  uint64(a.Height),
			"chainId": a.Rules.ChainID(),
			"hash":    a.Rules.Hash().Hex(),
		}).Debug("Ruleset activation")
	}
	return r, nil
}
