package evmcore

import (
	"context"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/rony4d/go-asset-chain/opera"
)

var (
	// ErrUnprotectedTx is returned for transactions signed without a chain ID.
	ErrUnprotectedTx = errors.New("transaction is not replay protected")

	// ErrWrongChainID is returned for transactions signed for another network.
	ErrWrongChainID = errors.New("transaction chain id does not match ruleset")

	// ErrInvalidSender is returned when the sender cannot be recovered.
	ErrInvalidSender = errors.New("invalid transaction sender")

	// ErrUnderpriced is returned for transactions below the minimum gas price.
	ErrUnderpriced = errors.New("transaction underpriced")

	// ErrBlockGasLimit is returned for blocks whose transactions exceed the block gas limit.
	ErrBlockGasLimit = errors.New("block gas limit exceeded")
)

// RulesReader resolves the ruleset and the transaction signer in force at a
// height. *opera.Resolver implements it.
type RulesReader interface {
	RulesetFor(height idx.Block) opera.Ruleset
	Signer(height idx.Block) types.Signer
}

// BlockChecker rejects blocks carrying transactions that were not signed for
// the chain ID in force at the block height, pay less than its minimum gas
// price or together exceed its block gas limit. It holds no mutable state and
// may be shared between workers.
type BlockChecker struct {
	rules RulesReader
}

// NewBlockChecker returns a checker backed by rules.
func NewBlockChecker(rules RulesReader) *BlockChecker {
	return &BlockChecker{rules: rules}
}

// Check validates the signatures of every transaction of block.
func (c *BlockChecker) Check(block *EvmBlock) error {
	height := block.Height()
	rules := c.rules.RulesetFor(height)
	signer := c.rules.Signer(height)
	minPrice := rules.MinGasPrice()

	var gas uint64
	for i, tx := range block.Transactions {
		if !tx.Protected() {
			return errors.Wrapf(ErrUnprotectedTx, "block %d tx %d (%s)", height, i, tx.Hash().Hex())
		}
		if id := tx.ChainId(); !id.IsUint64() || id.Uint64() != rules.ChainID() {
			return errors.Wrapf(ErrWrongChainID, "block %d tx %d: chain id %s, want %d", height, i, id, rules.ChainID())
		}
		if _, err := types.Sender(signer, tx); err != nil {
			return errors.Wrapf(ErrInvalidSender, "block %d tx %d: %v", height, i, err)
		}
		if tx.GasPrice().Cmp(minPrice) < 0 {
			return errors.Wrapf(ErrUnderpriced, "block %d tx %d: gas price %s, minimum %s", height, i, tx.GasPrice(), minPrice)
		}
		gas += tx.Gas()
		if gas > rules.MaxBlockGas() {
			return errors.Wrapf(ErrBlockGasLimit, "block %d tx %d: %d gas, limit %d", height, i, gas, rules.MaxBlockGas())
		}
	}
	return nil
}

// CheckAll validates blocks concurrently with at most workers goroutines and
// returns the first failure. All workers share the same sealed ruleset
// resolver. Cancelling ctx stops scheduling further blocks.
func (c *BlockChecker) CheckAll(ctx context.Context, blocks []*EvmBlock, workers int) error {
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, b := range blocks {
		b := b
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return c.Check(b)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
