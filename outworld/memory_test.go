package outworld

import (
	"os"
	"path/filepath"
	"testing"
)

// newTestDirectory builds a Directory over a temp game directory holding one
// stored-verbatim resource per id->payload pair, all in BANK00.
func newTestDirectory(t *testing.T, resources map[int]struct {
	typ     ResourceType
	payload []byte
}) *Directory {
	t.Helper()
	dir := t.TempDir()

	maxID := 0
	for id := range resources {
		if id > maxID {
			maxID = id
		}
	}
	descs := make([]ResourceDescriptor, maxID+1)

	var bank []byte
	for id := 0; id <= maxID; id++ {
		r, ok := resources[id]
		if !ok {
			descs[id] = ResourceDescriptor{Type: ResourceSoundOrEmpty}
			continue
		}
		offset := uint32(len(bank))
		bank = append(bank, r.payload...)
		descs[id] = ResourceDescriptor{
			Type: r.typ, BankID: 0, BankOffset: offset,
			CompressedSize: uint32(len(r.payload)), UncompressedSize: uint32(len(r.payload)),
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "BANK00"), bank, 0o644); err != nil {
		t.Fatalf("WriteFile(BANK00) error = %v", err)
	}
	return &Directory{gameDir: dir, descriptors: descs}
}

func TestLoadGamePartLoadsFixedTuple(t *testing.T) {
	ids := GamePartCopyProtection.resources()
	d := newTestDirectory(t, map[int]struct {
		typ     ResourceType
		payload []byte
	}{
		ids.palettes: {ResourcePalettes, []byte("PAL")},
		ids.bytecode: {ResourceBytecode, []byte("CODE")},
		ids.polygons: {ResourcePolygons, []byte("POLY")},
	})
	mm := NewMemoryManager(d)

	res, err := mm.LoadGamePart(GamePartCopyProtection)
	if err != nil {
		t.Fatalf("LoadGamePart() error = %v", err)
	}
	if string(res.Bytecode) != "CODE" || string(res.Palettes) != "PAL" || string(res.Polygons) != "POLY" {
		t.Errorf("LoadGamePart() = %+v, want CODE/PAL/POLY", res)
	}
	if res.Animations != nil {
		t.Errorf("Animations = %v, want nil for a part with no animation bank", res.Animations)
	}
}

func TestLoadGamePartWrongTypeErrors(t *testing.T) {
	ids := GamePartCopyProtection.resources()
	d := newTestDirectory(t, map[int]struct {
		typ     ResourceType
		payload []byte
	}{
		ids.palettes: {ResourceBytecode, []byte("WRONG")}, // wrong type on purpose
		ids.bytecode: {ResourceBytecode, []byte("CODE")},
		ids.polygons: {ResourcePolygons, []byte("POLY")},
	})
	mm := NewMemoryManager(d)
	if _, err := mm.LoadGamePart(GamePartCopyProtection); err != ErrWrongResourceType {
		t.Errorf("LoadGamePart() error = %v, want ErrWrongResourceType", err)
	}
}

func TestLoadGamePartUnloadsPreviousGamePart(t *testing.T) {
	ids1 := GamePartCopyProtection.resources()
	ids2 := GamePartIntroCinematic.resources()
	d := newTestDirectory(t, map[int]struct {
		typ     ResourceType
		payload []byte
	}{
		ids1.palettes: {ResourcePalettes, []byte("PAL1")},
		ids1.bytecode: {ResourceBytecode, []byte("CODE1")},
		ids1.polygons: {ResourcePolygons, []byte("POLY1")},
		ids2.palettes: {ResourcePalettes, []byte("PAL2")},
		ids2.bytecode: {ResourceBytecode, []byte("CODE2")},
		ids2.polygons: {ResourcePolygons, []byte("POLY2")},
	})
	mm := NewMemoryManager(d)
	if _, err := mm.LoadGamePart(GamePartCopyProtection); err != nil {
		t.Fatalf("LoadGamePart(1) error = %v", err)
	}
	if _, err := mm.LoadGamePart(GamePartIntroCinematic); err != nil {
		t.Fatalf("LoadGamePart(2) error = %v", err)
	}
	if got, err := mm.Location(ids1.bytecode, ResourceBytecode); err != nil || got != nil {
		t.Errorf("Location(previous part's bytecode) = %v, %v, want nil, nil", got, err)
	}
}

func TestLoadIndividualAudioPersistsAcrossCalls(t *testing.T) {
	d := newTestDirectory(t, map[int]struct {
		typ     ResourceType
		payload []byte
	}{
		5: {ResourceMusic, []byte("TUNE")},
	})
	mm := NewMemoryManager(d)

	first, err := mm.LoadIndividual(5)
	if err != nil {
		t.Fatalf("LoadIndividual() error = %v", err)
	}
	if first.Kind != KindAudioPersistent || string(first.Data) != "TUNE" {
		t.Errorf("LoadIndividual() = %+v, want persistent TUNE", first)
	}

	second, err := mm.LoadIndividual(5)
	if err != nil {
		t.Fatalf("LoadIndividual() second call error = %v", err)
	}
	if &first.Data[0] != &second.Data[0] {
		t.Errorf("second LoadIndividual() returned a different backing array, want the cached slot")
	}
}

func TestLoadIndividualBitmapUsesScratch(t *testing.T) {
	payload := make([]byte, bitmapScratchSize)
	payload[0] = 0xAB
	d := newTestDirectory(t, map[int]struct {
		typ     ResourceType
		payload []byte
	}{
		9: {ResourceBitmap, payload},
	})
	mm := NewMemoryManager(d)

	got, err := mm.LoadIndividual(9)
	if err != nil {
		t.Fatalf("LoadIndividual() error = %v", err)
	}
	if got.Kind != KindTemporaryBitmap {
		t.Errorf("Kind = %v, want KindTemporaryBitmap", got.Kind)
	}
	if got.Data[0] != 0xAB {
		t.Errorf("Data[0] = %#x, want 0xab", got.Data[0])
	}
}

func TestLoadIndividualGamePartOnlyTypeErrors(t *testing.T) {
	d := newTestDirectory(t, map[int]struct {
		typ     ResourceType
		payload []byte
	}{
		3: {ResourcePolygons, []byte("POLY")},
	})
	mm := NewMemoryManager(d)
	if _, err := mm.LoadIndividual(3); err != ErrGamePartOnly {
		t.Errorf("LoadIndividual() error = %v, want ErrGamePartOnly", err)
	}
}

func TestUnloadAllIndividualLeavesGamePartResources(t *testing.T) {
	ids := GamePartCopyProtection.resources()
	d := newTestDirectory(t, map[int]struct {
		typ     ResourceType
		payload []byte
	}{
		ids.palettes: {ResourcePalettes, []byte("PAL")},
		ids.bytecode: {ResourceBytecode, []byte("CODE")},
		ids.polygons: {ResourcePolygons, []byte("POLY")},
		5:            {ResourceMusic, []byte("TUNE")},
	})
	mm := NewMemoryManager(d)
	if _, err := mm.LoadGamePart(GamePartCopyProtection); err != nil {
		t.Fatalf("LoadGamePart() error = %v", err)
	}
	if _, err := mm.LoadIndividual(5); err != nil {
		t.Fatalf("LoadIndividual() error = %v", err)
	}

	mm.UnloadAllIndividual()

	if _, err := mm.Location(ids.bytecode, ResourceBytecode); err != nil {
		t.Fatalf("Location(bytecode) error = %v", err)
	}
	if data, _ := mm.Location(ids.bytecode, ResourceBytecode); data == nil {
		t.Errorf("game-part resource was unloaded, want it to survive UnloadAllIndividual")
	}
	if data, _ := mm.Location(5, ResourceMusic); data != nil {
		t.Errorf("individual resource 5 survived UnloadAllIndividual")
	}
}

func TestLocationTypeMismatch(t *testing.T) {
	d := newTestDirectory(t, map[int]struct {
		typ     ResourceType
		payload []byte
	}{
		5: {ResourceMusic, []byte("TUNE")},
	})
	mm := NewMemoryManager(d)
	if _, err := mm.LoadIndividual(5); err != nil {
		t.Fatalf("LoadIndividual() error = %v", err)
	}
	if _, err := mm.Location(5, ResourceBitmap); err != ErrWrongResourceType {
		t.Errorf("Location() with wrong expected type error = %v, want ErrWrongResourceType", err)
	}
}
