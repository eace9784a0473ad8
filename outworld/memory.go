package outworld

import "fmt"

// Canonical virtual screen dimensions (distilled spec §3, "Video buffer").
const (
	ScreenWidth  = 320
	ScreenHeight = 200

	// bitmapScratchSize is one planar bitmap's worth of bytes: width*height/2,
	// four bit planes of width*height/8 bytes each.
	bitmapScratchSize = ScreenWidth * ScreenHeight / 2
)

type memScope int

const (
	scopeGamePart memScope = iota
	scopeIndividual
)

type memSlot struct {
	data  []byte
	typ   ResourceType
	scope memScope
}

// GamePartResources is what LoadGamePart hands back: the fixed tuple of
// resources a game part binds to (distilled spec §4.3, §6). Animations is
// nil for parts that don't carry an animation bank.
type GamePartResources struct {
	Bytecode   []byte
	Palettes   []byte
	Polygons   []byte
	Animations []byte
}

// IndividualKind distinguishes the two shapes LoadIndividual can return.
type IndividualKind int

const (
	KindAudioPersistent IndividualKind = iota
	KindTemporaryBitmap
)

// IndividualLoad is the result of loading a single sound/music/bitmap
// resource outside of a game part.
type IndividualLoad struct {
	Kind IndividualKind
	Data []byte
}

// MemoryManager owns every resource currently loaded and the single
// bitmap scratch region, and hands out read-only slices whose lifetime is
// tied to the owning slot (distilled spec §4.3, design notes §9:
// "Ownership of resource bytes"). It never exposes a mutable alias of its
// own backing storage to more than one caller at a time for the scratch
// region — callers must copy it out before the next bitmap load.
type MemoryManager struct {
	dir   *Directory
	slots map[int]*memSlot

	bitmapScratch [bitmapScratchSize]byte
}

func NewMemoryManager(dir *Directory) *MemoryManager {
	return &MemoryManager{dir: dir, slots: make(map[int]*memSlot)}
}

// LoadGamePart unloads everything currently held and loads the fixed
// resource tuple for part.
func (m *MemoryManager) LoadGamePart(part GamePart) (*GamePartResources, error) {
	m.unloadAll()

	ids := part.resources()

	bytecode, err := m.loadGamePartSlot(ids.bytecode, ResourceBytecode)
	if err != nil {
		return nil, err
	}
	palettes, err := m.loadGamePartSlot(ids.palettes, ResourcePalettes)
	if err != nil {
		return nil, err
	}
	polygons, err := m.loadGamePartSlot(ids.polygons, ResourcePolygons)
	if err != nil {
		return nil, err
	}

	var animations []byte
	if ids.animations != 0 {
		animations, err = m.loadGamePartSlot(ids.animations, ResourceAnimations)
		if err != nil {
			return nil, err
		}
	}

	return &GamePartResources{
		Bytecode:   bytecode,
		Palettes:   palettes,
		Polygons:   polygons,
		Animations: animations,
	}, nil
}

func (m *MemoryManager) loadGamePartSlot(id int, expectedType ResourceType) ([]byte, error) {
	desc, err := m.dir.DescriptorByID(id)
	if err != nil {
		return nil, err
	}
	if desc.Type != expectedType {
		return nil, ErrWrongResourceType
	}

	data, err := m.dir.ReadAlloc(desc)
	if err != nil {
		return nil, err
	}
	m.slots[id] = &memSlot{data: data, typ: desc.Type, scope: scopeGamePart}
	return data, nil
}

// LoadIndividual loads a single sound, music, or bitmap resource outside of
// the current game part. Game-part-only types fail with ErrGamePartOnly.
func (m *MemoryManager) LoadIndividual(id int) (IndividualLoad, error) {
	desc, err := m.dir.DescriptorByID(id)
	if err != nil {
		return IndividualLoad{}, err
	}

	switch desc.Type {
	case ResourceSoundOrEmpty, ResourceMusic:
		if slot, ok := m.slots[id]; ok {
			return IndividualLoad{Kind: KindAudioPersistent, Data: slot.data}, nil
		}
		data, err := m.dir.ReadAlloc(desc)
		if err != nil {
			return IndividualLoad{}, err
		}
		m.slots[id] = &memSlot{data: data, typ: desc.Type, scope: scopeIndividual}
		return IndividualLoad{Kind: KindAudioPersistent, Data: data}, nil

	case ResourceBitmap:
		if desc.UncompressedSize != bitmapScratchSize {
			return IndividualLoad{}, fmt.Errorf("outworld: bitmap resource %d is %d bytes, want %d", id, desc.UncompressedSize, bitmapScratchSize)
		}
		if err := m.dir.ReadInto(m.bitmapScratch[:], desc); err != nil {
			return IndividualLoad{}, err
		}
		return IndividualLoad{Kind: KindTemporaryBitmap, Data: m.bitmapScratch[:]}, nil

	default:
		return IndividualLoad{}, ErrGamePartOnly
	}
}

// UnloadAllIndividual frees every individually-loaded (persistent audio)
// resource, leaving game-part resources intact.
func (m *MemoryManager) UnloadAllIndividual() {
	for id, slot := range m.slots {
		if slot.scope == scopeIndividual {
			delete(m.slots, id)
		}
	}
}

func (m *MemoryManager) unloadAll() {
	m.slots = make(map[int]*memSlot)
}

// Location looks up the current memory location of id. A nil slice with a
// nil error means the resource isn't currently loaded; a non-nil error
// means the caller's expected type disagrees with the resource's declared
// type.
func (m *MemoryManager) Location(id int, expectedType ResourceType) ([]byte, error) {
	slot, ok := m.slots[id]
	if !ok {
		return nil, nil
	}
	if slot.typ != expectedType {
		return nil, ErrWrongResourceType
	}
	return slot.data, nil
}
