package serialization

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeChecksum returns the SHA-256 of the data section.
func ComputeChecksum(data []byte) [ChecksumSize]byte {
	return sha256.Sum256(data)
}

// ValidateChecksum compares the checksum of data against the stored one.
func ValidateChecksum(data []byte, stored [ChecksumSize]byte) error {
	if got := ComputeChecksum(data); got != stored {
		return fmt.Errorf("%w: stored %s, computed %s", ErrChecksumMismatch,
			hex.EncodeToString(stored[:8]), hex.EncodeToString(got[:8]))
	}
	return nil
}
