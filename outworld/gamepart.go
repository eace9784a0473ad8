package outworld

// ResourceType distinguishes the seven resource kinds a descriptor can name
// (distilled spec §3, Resource descriptor).
type ResourceType uint8

const (
	ResourceSoundOrEmpty ResourceType = iota
	ResourceMusic
	ResourcePolygons
	ResourcePalettes
	ResourceBytecode
	ResourceAnimations
	ResourceBitmap
)

// GamePart is one of the nine closed game sections addressable via
// ControlResources (distilled spec §6, "Game-part table").
type GamePart uint8

const (
	GamePartCopyProtection GamePart = iota
	GamePartIntroCinematic
	GamePartGameplay1
	GamePartGameplay2
	GamePartGameplay3
	GamePartArenaCinematic
	GamePartGameplay4
	GamePartGameplay5
	GamePartPasswordEntry
)

// gamePartRawBase is the raw bytecode value for GamePartCopyProtection;
// every other part is base+GamePart in the order declared above. Raw values
// outside [base, base+8] are not a valid game part.
const gamePartRawBase = 0x3E80

// gamePartResources names the fixed tuple of resource IDs a game part loads
// (palettes, bytecode, polygons, and optionally animations). A zero
// animations ID means the part carries no animation bank.
type gamePartResources struct {
	palettes   int
	bytecode   int
	polygons   int
	animations int // 0 if unused
}

// gamePartTable is the closed mapping from distilled spec §6. The overall
// raw-code span (0x3E80..0x3E88, nine parts) and each part's own listed IDs
// come straight from the spec; the assignment of the two ranges that spec
// gives only as a combined span — gameplay1..5 drawing from {0x1A..0x2B}
// "with animations = 0x11", and arena_cinematic separately as
// {0x23,0x24,0x25} — is an Open Question resolution recorded in DESIGN.md:
// arena_cinematic takes the middle triple of that span (matching the
// original game's own part ordering, where the arena sits between the
// third and fourth gameplay chapters), and the five gameplay parts take the
// remaining five triples in order.
var gamePartTable = [...]gamePartResources{
	GamePartCopyProtection: {palettes: 0x14, bytecode: 0x15, polygons: 0x16},
	GamePartIntroCinematic: {palettes: 0x17, bytecode: 0x18, polygons: 0x19},
	GamePartGameplay1:      {palettes: 0x1A, bytecode: 0x1B, polygons: 0x1C, animations: 0x11},
	GamePartGameplay2:      {palettes: 0x1D, bytecode: 0x1E, polygons: 0x1F, animations: 0x11},
	GamePartGameplay3:      {palettes: 0x20, bytecode: 0x21, polygons: 0x22, animations: 0x11},
	GamePartArenaCinematic: {palettes: 0x23, bytecode: 0x24, polygons: 0x25},
	GamePartGameplay4:      {palettes: 0x26, bytecode: 0x27, polygons: 0x28, animations: 0x11},
	GamePartGameplay5:      {palettes: 0x29, bytecode: 0x2A, polygons: 0x2B, animations: 0x11},
	GamePartPasswordEntry:  {palettes: 0x7D, bytecode: 0x7E, polygons: 0x7F},
}

// parseGamePart decodes a raw bytecode-encoded game part value.
func parseGamePart(raw uint16) (GamePart, error) {
	if raw < gamePartRawBase || raw > gamePartRawBase+uint16(len(gamePartTable)-1) {
		return 0, ErrInvalidGamePart
	}
	return GamePart(raw - gamePartRawBase), nil
}

func (p GamePart) resources() gamePartResources {
	return gamePartTable[p]
}
