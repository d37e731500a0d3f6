package verifier

import (
	"fmt"

	"github.com/vaanet/guardian-core/sdk/vaa"
)

// VaaBuffer accumulates a VAA that arrives split across multiple
// transactions because it exceeds the host's single-transaction payload
// limit.
type VaaBuffer struct {
	totalSize   int
	writtenSize int
	data        []byte
	finalized   bool
}

// InitVaaBuffer allocates a buffer sized to receive totalSize bytes.
func InitVaaBuffer(totalSize int) *VaaBuffer {
	return &VaaBuffer{
		totalSize: totalSize,
		data:      make([]byte, totalSize),
	}
}

// AppendChunk writes bytes at offset. It fails if the buffer is already
// finalized or if the chunk would overflow the declared total size.
func (b *VaaBuffer) AppendChunk(offset int, chunk []byte) error {
	if b.finalized {
		return fmt.Errorf("%w: buffer already finalized", vaa.ErrInvalidVAA)
	}
	if offset+len(chunk) > b.totalSize {
		return fmt.Errorf("%w: chunk overflows declared total size", vaa.ErrInvalidVAA)
	}

	copy(b.data[offset:], chunk)
	if offset+len(chunk) > b.writtenSize {
		b.writtenSize = offset + len(chunk)
	}
	return nil
}

// Finalize marks the buffer complete, once every byte has been written.
// Verification steps only read the buffer after this succeeds.
func (b *VaaBuffer) Finalize() error {
	if b.writtenSize != b.totalSize {
		return fmt.Errorf("%w: buffer is incomplete (%d/%d bytes)", vaa.ErrInvalidVAA, b.writtenSize, b.totalSize)
	}
	b.finalized = true
	return nil
}

// Finalized reports whether the buffer has been finalized.
func (b *VaaBuffer) Finalized() bool {
	return b.finalized
}
