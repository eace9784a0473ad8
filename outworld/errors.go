package outworld

import "errors"

// Decompression errors (distilled spec §7, "Decompression").
var (
	ErrSourceExhausted      = errors.New("outworld: rle source exhausted before completion")
	ErrDestinationUnderflow = errors.New("outworld: rle destination write cursor underflowed")
	ErrCopyOutOfRange       = errors.New("outworld: rle copy offset points outside written region")
	ErrChecksumMismatch     = errors.New("outworld: rle final checksum is nonzero")
	ErrMissingSentinel      = errors.New("outworld: rle initial chunk has no sentinel bit")
)

// Resource errors (distilled spec §7, "Resource").
var (
	ErrInvalidResourceID  = errors.New("outworld: invalid resource id")
	ErrWrongResourceType  = errors.New("outworld: resource type mismatch")
	ErrGamePartOnly       = errors.New("outworld: resource is game-part scoped, cannot be loaded individually")
	ErrTooManyDescriptors = errors.New("outworld: resource descriptor table exceeds maximum size")
)

// Program errors (distilled spec §7, "Program").
var (
	ErrEndOfProgram   = errors.New("outworld: read past end of program")
	ErrInvalidAddress = errors.New("outworld: jump to invalid program address")
	ErrStackOverflow  = errors.New("outworld: call stack overflow")
	ErrStackUnderflow = errors.New("outworld: call stack underflow")
)

// Instruction errors (distilled spec §7, "Instruction").
var (
	ErrInvalidOpcode          = errors.New("outworld: invalid opcode")
	ErrInvalidThreadID        = errors.New("outworld: invalid thread id")
	ErrInvalidBufferID        = errors.New("outworld: invalid video buffer id")
	ErrInvalidColorID         = errors.New("outworld: invalid color id")
	ErrInvalidPaletteID       = errors.New("outworld: invalid palette id")
	ErrInvalidChannelID       = errors.New("outworld: invalid audio channel id")
	ErrInvalidFrequencyID     = errors.New("outworld: invalid frequency id")
	ErrInvalidJumpComparison  = errors.New("outworld: invalid jump comparison")
	ErrInvalidThreadOperation = errors.New("outworld: invalid thread operation")
	ErrInvalidThreadRange     = errors.New("outworld: invalid thread range")
	ErrInvalidGamePart        = errors.New("outworld: invalid game part")
)
