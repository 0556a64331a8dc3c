package serialization

import (
	"encoding/hex"
	"errors"
	"testing"
)

func TestComputeChecksum(t *testing.T) {
	a := ComputeChecksum([]byte("storage record"))
	if a != ComputeChecksum([]byte("storage record")) {
		t.Error("checksums should match for identical data")
	}
	if a == ComputeChecksum([]byte("storage recorD")) {
		t.Error("checksums should differ for different data")
	}
}

func TestValidateChecksum(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	sum := ComputeChecksum(data)
	if err := ValidateChecksum(data, sum); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	data[2] = 9
	err := ValidateChecksum(data, sum)
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
}

// Known SHA-256 test vectors.
func TestKnownVectorSHA256(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
	}
	for _, tt := range tests {
		got := ComputeChecksum([]byte(tt.input))
		if hex.EncodeToString(got[:]) != tt.want {
			t.Errorf("SHA256(%q) = %x, want %s", tt.input, got, tt.want)
		}
	}
}
