package serialization

import (
	"fmt"
	"sort"
	"strings"

	"github.com/born-ml/itensor/internal/storage"
)

// Validation limits for resource protection.
const (
	MaxHeaderSize    = 64 * 1024 * 1024 // 64MB
	MaxTensorCount   = 100_000
	MaxTensorNameLen = 4096
	MaxRank          = 64
)

// ValidationLevel controls the strictness of validation.
type ValidationLevel int

const (
	// ValidationStrict performs all checks (default).
	ValidationStrict ValidationLevel = iota
	// ValidationNormal checks names and counts only.
	ValidationNormal
	// ValidationNone skips validation. Use only with trusted input.
	ValidationNone
)

// ValidateTensorOffsets checks for overlapping storage records and records
// extending past the data section.
func ValidateTensorOffsets(tensors []TensorMeta, dataSize int64) error {
	sorted := make([]TensorMeta, len(tensors))
	copy(sorted, tensors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	for i, t := range sorted {
		if t.Offset < 0 || t.Size < 0 {
			return &ValidationError{
				Type:    "out_of_bounds",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset=%d, size=%d (negative values not allowed)", t.Offset, t.Size),
			}
		}
		if t.Offset+t.Size > dataSize {
			return &ValidationError{
				Type:    "out_of_bounds",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset %d + size %d > data_size %d", t.Offset, t.Size, dataSize),
			}
		}
		if i < len(sorted)-1 {
			next := sorted[i+1]
			if t.Offset+t.Size > next.Offset {
				return &ValidationError{
					Type:    "offset_overlap",
					Tensor:  t.Name,
					Tensor2: next.Name,
					Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						t.Offset, t.Offset+t.Size, next.Offset, next.Offset+next.Size),
				}
			}
		}
	}
	return nil
}

// ValidateTensorName rejects empty, oversized or control-character names.
func ValidateTensorName(name string) error {
	switch {
	case name == "":
		return &ValidationError{Type: "invalid_name", Details: "empty tensor name"}
	case len(name) > MaxTensorNameLen:
		return &ValidationError{
			Type:    "name_too_long",
			Tensor:  name,
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxTensorNameLen),
		}
	case strings.ContainsAny(name, "\x00\n\r"):
		return &ValidationError{Type: "invalid_name", Tensor: name, Details: "contains control character"}
	}
	return nil
}

// validateTensorMeta checks the kind and rank of one entry.
func validateTensorMeta(t TensorMeta) error {
	if _, ok := storage.ParseKind(t.Kind); !ok {
		return &ValidationError{Type: "invalid_kind", Tensor: t.Name, Details: fmt.Sprintf("unknown storage kind %q", t.Kind)}
	}
	if len(t.Indices) > MaxRank {
		return &ValidationError{Type: "invalid_rank", Tensor: t.Name, Details: fmt.Sprintf("rank %d > max %d", len(t.Indices), MaxRank)}
	}
	return nil
}

// ValidateHeader performs header validation at the given level.
func ValidateHeader(h *Header, dataSize int64, level ValidationLevel) error {
	if level == ValidationNone {
		return nil
	}
	if len(h.Tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(h.Tensors), MaxTensorCount),
		}
	}

	seen := make(map[string]bool, len(h.Tensors))
	for _, t := range h.Tensors {
		if err := ValidateTensorName(t.Name); err != nil {
			return err
		}
		if seen[t.Name] {
			return &ValidationError{Type: "invalid_name", Tensor: t.Name, Details: "duplicate tensor name"}
		}
		seen[t.Name] = true
	}

	if level == ValidationStrict {
		for _, t := range h.Tensors {
			if err := validateTensorMeta(t); err != nil {
				return err
			}
		}
		if err := ValidateTensorOffsets(h.Tensors, dataSize); err != nil {
			return err
		}
	}
	return nil
}
