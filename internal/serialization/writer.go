package serialization

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/born-ml/itensor/internal/itensor"
	"github.com/born-ml/itensor/internal/storage"
)

// Write encodes the named tensors to w. Tensors are laid out in name order.
func Write(w io.Writer, tensors map[string]*itensor.ITensor, metadata map[string]string) error {
	names := make([]string, 0, len(tensors))
	for name := range tensors {
		names = append(names, name)
	}
	sort.Strings(names)

	header := Header{
		FormatVersion: FormatVersion,
		CreatedAt:     time.Now().UTC(),
		Tensors:       make([]TensorMeta, 0, len(names)),
		Metadata:      metadata,
	}
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	// Encode storage records first; the header needs their offsets.
	var (
		data  bytes.Buffer
		flags uint32
	)
	for _, name := range names {
		t := tensors[name]
		if t.IsNull() {
			return fmt.Errorf("tensor %q: %w", name, ErrNullTensor)
		}
		if err := ValidateTensorName(name); err != nil {
			return err
		}
		meta := tensorMeta(name, t)
		meta.Offset = int64(data.Len())
		if err := storage.Write(&data, t.Data()); err != nil {
			return fmt.Errorf("failed to write tensor %s: %w", name, err)
		}
		meta.Size = int64(data.Len()) - meta.Offset
		if t.IsComplex() {
			flags |= FlagHasComplex
		}
		header.Tensors = append(header.Tensors, meta)
	}
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	checksum := ComputeChecksum(data.Bytes())

	if _, err := io.WriteString(w, MagicBytes); err != nil {
		return fmt.Errorf("failed to write magic bytes: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(FormatVersion)); err != nil {
		return fmt.Errorf("failed to write version: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, flags); err != nil {
		return fmt.Errorf("failed to write flags: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := w.Write(checksum[:]); err != nil {
		return fmt.Errorf("failed to write checksum: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := w.Write(data.Bytes()); err != nil {
		return fmt.Errorf("failed to write data section: %w", err)
	}
	return nil
}

// WriteFile writes the named tensors to path, replacing any existing file.
func WriteFile(path string, tensors map[string]*itensor.ITensor, metadata map[string]string) error {
	//nolint:gosec // G304: path comes from the caller by design
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	bw := bufio.NewWriter(file)
	if err := Write(bw, tensors, metadata); err != nil {
		_ = file.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to flush file: %w", err)
	}
	return file.Close()
}
