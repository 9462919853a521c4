package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Read decodes a snapshot from r, verifying magic, version and checksum.
// The returned snapshot has passed ValidateSnapshot.
func Read(r io.Reader) (*GraphSnapshot, error) {
	header := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	if string(header[0:4]) != MagicBytes {
		return nil, fmt.Errorf("%w: expected %q, got %q", ErrInvalidMagic, MagicBytes, header[0:4])
	}
	if v := binary.LittleEndian.Uint32(header[4:8]); v != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	size := binary.LittleEndian.Uint64(header[8:16])
	if size > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, size)
	}
	var stored [ChecksumSize]byte
	copy(stored[:], header[16:16+ChecksumSize])

	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	if err := ValidateChecksum(ComputeChecksum(payload), stored); err != nil {
		return nil, err
	}

	var snap GraphSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse payload: %w", err)
	}
	if err := ValidateSnapshot(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// ReadFile reads a snapshot from path.
func ReadFile(path string) (*GraphSnapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return Read(bufio.NewReader(f))
}
