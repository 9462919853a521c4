package serialization

import (
	"crypto/sha256"
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Format constants.
const (
	MagicBytes      = "MGRD"
	FormatVersion   = 1
	ChecksumSize    = 32 // SHA-256 checksum size (32 bytes)
	FixedHeaderSize = 4 + 4 + 8 + ChecksumSize
)

// GraphSnapshot is the JSON payload of a snapshot file.
type GraphSnapshot struct {
	ID        string            `json:"id"`                 // Random identifier of this snapshot
	CreatedAt time.Time         `json:"created_at"`         // When the snapshot was taken
	Root      *int32            `json:"root,omitempty"`     // Node backward ran from, if any
	Metadata  map[string]string `json:"metadata,omitempty"` // Custom metadata
	Nodes     []NodeRecord      `json:"nodes"`              // Nodes in creation order
}

// NodeRecord describes one node. ID equals the record's position.
type NodeRecord struct {
	ID       int32   `json:"id"`
	Op       string  `json:"op"`                 // ops.Kind name ("none", "add", ...)
	Operands []int32 `json:"operands,omitempty"` // IDs of consumed nodes
	Exponent Float   `json:"exponent,omitempty"` // pow only
	Value    Float   `json:"value"`
	Grad     Float   `json:"grad"`
}

// Float is a float64 whose JSON form also admits NaN and ±Inf.
type Float float64

// MarshalJSON encodes finite values as numbers and the rest as strings.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// UnmarshalJSON accepts a number or one of "NaN", "+Inf", "-Inf".
func (f *Float) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = Float(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// same reports whether a and b are the same value, treating NaN as equal to
// NaN.
func same(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

// ComputeChecksum computes the SHA-256 checksum of a payload.
func ComputeChecksum(data []byte) [ChecksumSize]byte {
	return sha256.Sum256(data)
}

// ValidateChecksum compares computed checksum against stored checksum.
// Returns ErrChecksumMismatch if they don't match.
func ValidateChecksum(computed, stored [ChecksumSize]byte) error {
	if computed != stored {
		return ErrChecksumMismatch
	}
	return nil
}
