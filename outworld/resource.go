package outworld

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mjorgen/outworld/internal/errs"
)

const (
	descriptorEntrySize = 20
	maxDescriptors      = 1000
	descriptorEndMarker = 0xFF
)

// ResourceDescriptor is one 20-byte on-disk directory record (distilled
// spec §3, "Resource descriptor"). CompressedSize == UncompressedSize means
// the resource is stored verbatim.
type ResourceDescriptor struct {
	Type             ResourceType
	BankID           uint8
	BankOffset       uint32
	CompressedSize   uint32
	UncompressedSize uint32
}

func (d ResourceDescriptor) compressed() bool {
	return d.CompressedSize != d.UncompressedSize
}

// Directory parses the on-disk descriptor table and resolves resource
// payloads from bank files. Grounded on nes/cartridge.go's loadRom: a fixed
// binary header read with encoding/binary, validated, then used to slice
// further reads out of the same file.
type Directory struct {
	gameDir     string
	descriptors []ResourceDescriptor
}

// OpenDirectory reads descriptorFile (a path under gameDir, conventionally
// "MEMLIST.BIN") and returns a Directory ready to resolve resources.
func OpenDirectory(gameDir, descriptorFile string) (*Directory, error) {
	f, err := os.Open(filepath.Join(gameDir, descriptorFile))
	if err != nil {
		return nil, fmt.Errorf("outworld: opening descriptor table: %w", err)
	}
	defer f.Close()

	var descs []ResourceDescriptor
	var raw [descriptorEntrySize]byte
	for len(descs) < maxDescriptors {
		if _, err := io.ReadFull(f, raw[:]); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("outworld: reading descriptor %d: %w", len(descs), err)
		}

		if raw[0] == descriptorEndMarker {
			break
		}

		// Record layout: type at byte 0, bank ID at byte 1, then big-endian
		// 32-bit bank offset, compressed size and uncompressed size at bytes
		// 4, 8 and 12; bytes 2-3 and 16-19 are unused.
		descs = append(descs, ResourceDescriptor{
			Type:             ResourceType(raw[0]),
			BankID:           raw[1],
			BankOffset:       binary.BigEndian.Uint32(raw[4:8]),
			CompressedSize:   binary.BigEndian.Uint32(raw[8:12]),
			UncompressedSize: binary.BigEndian.Uint32(raw[12:16]),
		})
	}

	if len(descs) >= maxDescriptors {
		// confirm we actually overran rather than landing exactly on the cap
		if _, err := io.ReadFull(f, raw[:1]); err == nil && raw[0] != descriptorEndMarker {
			return nil, ErrTooManyDescriptors
		}
	}

	if err := validateDescriptors(descs); err != nil {
		return nil, err
	}

	return &Directory{gameDir: gameDir, descriptors: descs}, nil
}

// validateDescriptors checks every parsed slot against the descriptor
// invariant (distilled spec §3: compressed_size <= uncompressed_size) and
// reports every violation at once via errs.List, rather than bailing on the
// first bad slot, since a truncated or shifted directory tends to corrupt
// more than one record.
func validateDescriptors(descs []ResourceDescriptor) error {
	var bad errs.List
	for id, d := range descs {
		if d.CompressedSize > d.UncompressedSize {
			bad = bad.Add(fmt.Errorf("slot %d: compressed_size %d > uncompressed_size %d", id, d.CompressedSize, d.UncompressedSize))
		}
	}
	return bad.Errorf("outworld: invalid descriptor table: %s", bad)
}

// Descriptors returns every parsed descriptor, indexed by logical resource ID.
func (d *Directory) Descriptors() []ResourceDescriptor {
	return d.descriptors
}

// DescriptorByID resolves a logical resource ID.
func (d *Directory) DescriptorByID(id int) (ResourceDescriptor, error) {
	if id < 0 || id >= len(d.descriptors) {
		return ResourceDescriptor{}, ErrInvalidResourceID
	}
	return d.descriptors[id], nil
}

// ReadInto reads and, if necessary, decompresses a resource's payload into
// dest, which must be exactly desc.UncompressedSize bytes long. The
// compressed bytes are read into the tail of dest and decompressed in
// place, per distilled spec §4.2.
func (d *Directory) ReadInto(dest []byte, desc ResourceDescriptor) error {
	if uint32(len(dest)) != desc.UncompressedSize {
		return fmt.Errorf("outworld: destination buffer is %d bytes, need %d", len(dest), desc.UncompressedSize)
	}

	bankPath := filepath.Join(d.gameDir, fmt.Sprintf("BANK%02X", desc.BankID))
	f, err := os.Open(bankPath)
	if err != nil {
		return fmt.Errorf("outworld: opening %s: %w", bankPath, err)
	}
	defer f.Close()

	if _, err := f.Seek(int64(desc.BankOffset), io.SeekStart); err != nil {
		return fmt.Errorf("outworld: seeking %s: %w", bankPath, err)
	}

	packed := dest[desc.UncompressedSize-desc.CompressedSize:]
	if _, err := io.ReadFull(f, packed); err != nil {
		return fmt.Errorf("outworld: reading %s: %w", bankPath, err)
	}

	if !desc.compressed() {
		return nil
	}
	return decompressRLE(dest, packed)
}

// ReadAlloc is the allocating variant of ReadInto.
func (d *Directory) ReadAlloc(desc ResourceDescriptor) ([]byte, error) {
	buf := make([]byte, desc.UncompressedSize)
	if err := d.ReadInto(buf, desc); err != nil {
		return nil, err
	}
	return buf, nil
}
