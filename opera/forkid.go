package opera

import (
	"encoding/binary"
	"encoding/hex"
	"hash/crc32"
)

// ForkID is a short fingerprint of an activation schedule, in the spirit of
// EIP-2124: a CRC32 over the genesis ruleset hash, folded with the height and
// ruleset hash of every later activation. Nodes configured with different
// schedules report different fork IDs.
type ForkID [4]byte

// String returns the hex form of the fork ID.
func (id ForkID) String() string {
	return hex.EncodeToString(id[:])
}

// MarshalText implements encoding.TextMarshaler.
func (id ForkID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// NewForkID computes the fork ID of activations sorted by ascending height.
func NewForkID(activations []Activation) ForkID {
	var (
		sum    uint32
		height [8]byte
	)
	for i, a := range activations {
		if i > 0 {
			binary.BigEndian.PutUint64(height[:], uint64(a.Height))
			sum = crc32.Update(sum, crc32.IEEETable, height[:])
		}
		h := a.Rules.Hash()
		sum = crc32.Update(sum, crc32.IEEETable, h[:])
	}
	var id ForkID
	binary.BigEndian.PutUint32(id[:], sum)
	return id
}

// ForkID returns the fork ID of the configuration's current activations.
func (c *NetworkConfig) ForkID() ForkID {
	return NewForkID(c.Activations())
}
