// Package evmcore holds the block types seen by the execution layer and the
// per-block checks that depend on the ruleset in force at the block height.
package evmcore

import (
	"math/big"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/trie"
)

// EvmHeader is the minimal header data the execution layer needs.
type EvmHeader struct {
	Number     *big.Int       // Block number (height in the chain)
	Hash       common.Hash    // Block hash
	ParentHash common.Hash    // Hash of the parent block
	Root       common.Hash    // State root
	TxHash     common.Hash    // Transactions root
	Time       uint64         // Block timestamp, unix seconds
	Coinbase   common.Address // Validator address that produced this block

	GasLimit uint64
	GasUsed  uint64
}

// EvmBlock is a header plus its transactions.
type EvmBlock struct {
	EvmHeader
	Transactions types.Transactions
}

// NewEvmBlock constructs a block and derives its transaction root.
func NewEvmBlock(h *EvmHeader, txs types.Transactions) *EvmBlock {
	b := &EvmBlock{
		EvmHeader:    *h,
		Transactions: txs,
	}

	if len(txs) == 0 {
		b.EvmHeader.TxHash = types.EmptyRootHash
	} else {
		b.EvmHeader.TxHash = types.DeriveSha(txs, trie.NewStackTrie(nil))
	}

	return b
}

// Height returns the block number as a block index.
func (h *EvmHeader) Height() idx.Block {
	if h.Number == nil {
		return 0
	}
	return idx.Block(h.Number.Uint64())
}

// ConvertFromEthHeader converts an Ethereum header.
func ConvertFromEthHeader(h *types.Header) *EvmHeader {
	return &EvmHeader{
		Number:     h.Number,
		Hash:       h.Hash(),
		ParentHash: h.ParentHash,
		Root:       h.Root,
		TxHash:     h.TxHash,
		Time:       h.Time,
		Coinbase:   h.Coinbase,
		GasLimit:   h.GasLimit,
		GasUsed:    h.GasUsed,
	}
}
