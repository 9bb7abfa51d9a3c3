package rpcapi

import (
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/rony4d/go-asset-chain/opera"
)

// RulesetView is the RPC representation of the ruleset in force at a height.
type RulesetView struct {
	Network string         `json:"network"`
	Height  hexutil.Uint64 `json:"height"`
	ForkID  opera.ForkID   `json:"forkId"`
	Hash    common.Hash    `json:"hash"`
	Ruleset opera.Ruleset  `json:"ruleset"`
}

// NewRulesetView resolves height and describes the result.
func NewRulesetView(r *opera.Resolver, height idx.Block) RulesetView {
	rules := r.RulesetFor(height)
	return RulesetView{
		Network: r.Network(),
		Height:  hexutil.Uint64(height),
		ForkID:  r.ForkID(),
		Hash:    rules.Hash(),
		Ruleset: rules,
	}
}
