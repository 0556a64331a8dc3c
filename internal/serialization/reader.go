package serialization

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/itensor/internal/config"
	"github.com/born-ml/itensor/internal/index"
	"github.com/born-ml/itensor/internal/itensor"
	"github.com/born-ml/itensor/internal/storage"
)

// ReaderOptions configures Read.
type ReaderOptions struct {
	SkipChecksumValidation bool            // skip checksum validation (faster but less safe)
	ValidationLevel        ValidationLevel // validation strictness level
	Config                 *config.Config  // attached to every decoded tensor; nil means defaults
}

// File is the decoded content of a .itns stream.
type File struct {
	Header  Header
	Flags   uint32
	Tensors map[string]*itensor.ITensor
}

// Names returns the tensor names in file order.
func (f *File) Names() []string {
	names := make([]string, len(f.Header.Tensors))
	for n, t := range f.Header.Tensors {
		names[n] = t.Name
	}
	return names
}

// Read decodes a .itns stream.
func Read(r io.Reader, opts ReaderOptions) (*File, error) {
	magic := make([]byte, len(MagicBytes))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("failed to read magic bytes: %w", err)
	}
	if string(magic) != MagicBytes {
		return nil, ErrInvalidMagic
	}

	var (
		version    uint32
		flags      uint32
		headerSize uint64
		checksum   [ChecksumSize]byte
	)
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("failed to read version: %w", err)
	}
	if version != FormatVersion {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}
	if err := binary.Read(r, binary.LittleEndian, &flags); err != nil {
		return nil, fmt.Errorf("failed to read flags: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return nil, ErrHeaderTooLarge
	}
	if _, err := io.ReadFull(r, checksum[:]); err != nil {
		return nil, fmt.Errorf("failed to read checksum: %w", err)
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	var header Header
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data section: %w", err)
	}
	if !opts.SkipChecksumValidation {
		if err := ValidateChecksum(data, checksum); err != nil {
			return nil, err
		}
	}
	if err := ValidateHeader(&header, int64(len(data)), opts.ValidationLevel); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	f := &File{Header: header, Flags: flags, Tensors: make(map[string]*itensor.ITensor, len(header.Tensors))}
	for _, meta := range header.Tensors {
		t, err := decodeTensor(meta, data, opts.Config)
		if err != nil {
			return nil, fmt.Errorf("tensor %s: %w", meta.Name, err)
		}
		f.Tensors[meta.Name] = t
	}
	return f, nil
}

func decodeTensor(meta TensorMeta, data []byte, cfg *config.Config) (*itensor.ITensor, error) {
	if meta.Offset < 0 || meta.Size < 0 || meta.Offset+meta.Size > int64(len(data)) {
		return nil, &ValidationError{Type: "out_of_bounds", Tensor: meta.Name, Details: "storage record outside data section"}
	}
	inds := make([]index.Index, len(meta.Indices))
	for n, im := range meta.Indices {
		i, err := metaToIndex(im)
		if err != nil {
			return nil, err
		}
		inds[n] = i
	}
	is, err := index.NewIndexSet(inds...)
	if err != nil {
		return nil, err
	}

	d, err := storage.ReadData(bytes.NewReader(data[meta.Offset : meta.Offset+meta.Size]))
	if err != nil {
		return nil, err
	}
	if d.Kind().String() != meta.Kind {
		return nil, fmt.Errorf("storage record is %s, header says %s", d.Kind(), meta.Kind)
	}
	t, err := itensor.NewFromParts(is, d, metaToScale(meta.Scale))
	if err != nil {
		return nil, err
	}
	return t.WithConfig(cfg), nil
}

// ReadFile reads a .itns file with strict validation.
func ReadFile(path string) (*File, error) {
	return ReadFileWithOptions(path, ReaderOptions{ValidationLevel: ValidationStrict})
}

// ReadFileWithOptions reads a .itns file with custom options.
func ReadFileWithOptions(path string, opts ReaderOptions) (*File, error) {
	//nolint:gosec // G304: path comes from the caller by design
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return Read(bufio.NewReader(file), opts)
}
