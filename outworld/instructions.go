package outworld

// Opcode is the raw first byte of an instruction. Values 0x00-0x1A are the
// 27 direct opcodes; a byte with its top bit set, or with only the next bit
// set, selects one of the two polygon-draw variants instead, and
// 0x1B-0x3F are invalid (distilled spec §4.8, "Opcode byte layout").
type Opcode uint8

const (
	OpRegSetConst Opcode = iota
	OpRegCopy
	OpRegAdd
	OpRegAddConst
	OpCall
	OpReturn
	OpYield
	OpJump
	OpActivateThread
	OpJumpIfNotZero
	OpJumpConditional
	OpSelectPalette
	OpControlThreads
	OpSelectVideoBuffer
	OpFillVideoBuffer
	OpCopyVideoBuffer
	OpRenderVideoBuffer
	OpKill
	OpDrawString
	OpRegSub
	OpRegAnd
	OpRegOr
	OpRegShl
	OpRegShr
	OpControlSound
	OpControlResources
	OpControlMusic

	opDirectCount // 27: the exclusive upper bound of valid direct opcodes
)

const (
	// backgroundPolygonFlag and spritePolygonFlag are tested against the
	// raw opcode byte before it is ever treated as a direct Opcode value —
	// they take priority over the 0x00-0x1A direct mapping.
	backgroundPolygonFlag = 0x80
	spritePolygonFlag     = 0x40
)

// jumpComparison is the six-way comparison JumpConditional supports,
// carried in the low 3 bits of its comparison byte.
type jumpComparison uint8

const (
	cmpEqual jumpComparison = iota
	cmpNotEqual
	cmpGreater
	cmpGreaterOrEqual
	cmpLess
	cmpLessOrEqual
)

// videoBufferRef is a decoded video-page operand: either one of the four
// concrete buffers, or a symbolic reference to whichever buffer currently
// plays the front- or back-buffer role (distilled spec §3, "Video buffer").
type videoBufferRef struct {
	symbol bufferSymbol
	index  int // valid when symbol == bufferSpecific
}

type bufferSymbol int

const (
	bufferSpecific bufferSymbol = iota
	bufferFront
	bufferBack
)

// decodeBufferRef matches the sentinel encoding used by SelectVideoBuffer,
// FillVideoBuffer and CopyVideoBuffer's page operands.
func decodeBufferRef(raw uint8) (videoBufferRef, error) {
	switch raw {
	case 0xFF:
		return videoBufferRef{symbol: bufferFront}, nil
	case 0xFE:
		return videoBufferRef{symbol: bufferBack}, nil
	default:
		if raw > 3 {
			return videoBufferRef{}, ErrInvalidBufferID
		}
		return videoBufferRef{symbol: bufferSpecific, index: int(raw)}, nil
	}
}

// resourceOp classifies what a ControlResources value means (distilled
// spec §4.8): zero unloads every individually-loaded resource, a value in
// the game-part range switches the active part, anything else loads one
// resource by ID.
type resourceOp int

const (
	resourceOpUnloadAll resourceOp = iota
	resourceOpSwitchPart
	resourceOpLoadOne
)

func classifyResourceOp(value uint16) resourceOp {
	switch {
	case value == 0:
		return resourceOpUnloadAll
	case value >= gamePartRawBase && int(value) < gamePartRawBase+len(gamePartTable):
		return resourceOpSwitchPart
	default:
		return resourceOpLoadOne
	}
}

// decodedInstruction is one fully-parsed instruction: a continuation that
// executes it against m, and the PC the program should resume at
// afterwards for instructions that don't themselves alter control flow.
type decodedInstruction struct {
	exec   func(m *Machine) (ThreadResult, error)
	nextPC uint16
}

// decodeInstruction reads one instruction starting at prog's current PC
// and returns how to run it. It never mutates machine state other than
// the program counter used to read operands; exec does the rest.
func decodeInstruction(prog *Program) (decodedInstruction, error) {
	raw, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}

	switch {
	case raw&backgroundPolygonFlag != 0:
		return decodeDrawBackgroundPolygon(prog, raw)
	case raw&spritePolygonFlag != 0:
		return decodeDrawSpritePolygon(prog, raw)
	}

	if raw >= uint8(opDirectCount) {
		return decodedInstruction{}, ErrInvalidOpcode
	}

	switch Opcode(raw) {
	case OpRegSetConst:
		return decodeRegSetConst(prog)
	case OpRegCopy:
		return decodeRegCopy(prog)
	case OpRegAdd:
		return decodeRegAdd(prog)
	case OpRegAddConst:
		return decodeRegAddConst(prog)
	case OpCall:
		return decodeCall(prog)
	case OpReturn:
		return decodeReturn(prog)
	case OpYield:
		return decodeYield(prog)
	case OpJump:
		return decodeJump(prog)
	case OpActivateThread:
		return decodeActivateThread(prog)
	case OpJumpIfNotZero:
		return decodeJumpIfNotZero(prog)
	case OpJumpConditional:
		return decodeJumpConditional(prog)
	case OpSelectPalette:
		return decodeSelectPalette(prog)
	case OpControlThreads:
		return decodeControlThreads(prog)
	case OpSelectVideoBuffer:
		return decodeSelectVideoBuffer(prog)
	case OpFillVideoBuffer:
		return decodeFillVideoBuffer(prog)
	case OpCopyVideoBuffer:
		return decodeCopyVideoBuffer(prog)
	case OpRenderVideoBuffer:
		return decodeRenderVideoBuffer(prog)
	case OpKill:
		return decodeKill(prog)
	case OpDrawString:
		return decodeDrawString(prog)
	case OpRegSub:
		return decodeRegSub(prog)
	case OpRegAnd:
		return decodeRegAnd(prog)
	case OpRegOr:
		return decodeRegOr(prog)
	case OpRegShl:
		return decodeRegShl(prog)
	case OpRegShr:
		return decodeRegShr(prog)
	case OpControlSound:
		return decodeControlSound(prog)
	case OpControlResources:
		return decodeControlResources(prog)
	case OpControlMusic:
		return decodeControlMusic(prog)
	default:
		return decodedInstruction{}, ErrInvalidOpcode
	}
}

func decodeRegSetConst(prog *Program) (decodedInstruction, error) {
	dest, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	value, err := prog.ReadU16()
	if err != nil {
		return decodedInstruction{}, err
	}
	next := prog.PC()
	return decodedInstruction{nextPC: next, exec: func(m *Machine) (ThreadResult, error) {
		m.Registers.Set(dest, value)
		return ResultContinue, nil
	}}, nil
}

func decodeRegCopy(prog *Program) (decodedInstruction, error) {
	dest, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	src, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	next := prog.PC()
	return decodedInstruction{nextPC: next, exec: func(m *Machine) (ThreadResult, error) {
		m.Registers.Set(dest, m.Registers.Get(src))
		return ResultContinue, nil
	}}, nil
}

func decodeRegAdd(prog *Program) (decodedInstruction, error) {
	dest, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	src, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	next := prog.PC()
	return decodedInstruction{nextPC: next, exec: func(m *Machine) (ThreadResult, error) {
		m.Registers.Set(dest, m.Registers.Get(dest)+m.Registers.Get(src))
		return ResultContinue, nil
	}}, nil
}

// decodeRegAddConst parses [opcode, dest, valueHi, valueLo]; the 16-bit
// operand is a signed two's-complement constant added to dest with
// wraparound, e.g. bytes 0x10 0xB6 0x2B decode to dest=0x10, value=-18901.
func decodeRegAddConst(prog *Program) (decodedInstruction, error) {
	dest, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	raw, err := prog.ReadU16()
	if err != nil {
		return decodedInstruction{}, err
	}
	value := int16(raw)
	next := prog.PC()
	return decodedInstruction{nextPC: next, exec: func(m *Machine) (ThreadResult, error) {
		m.Registers.SetSigned(dest, m.Registers.GetSigned(dest)+value)
		return ResultContinue, nil
	}}, nil
}

func decodeCall(prog *Program) (decodedInstruction, error) {
	target, err := prog.ReadU16()
	if err != nil {
		return decodedInstruction{}, err
	}
	returnAddr := prog.PC()
	return decodedInstruction{exec: func(m *Machine) (ThreadResult, error) {
		if err := m.stack.push(returnAddr); err != nil {
			return 0, err
		}
		if err := m.Program.Jump(target); err != nil {
			return 0, err
		}
		return ResultContinue, nil
	}}, nil
}

func decodeReturn(prog *Program) (decodedInstruction, error) {
	return decodedInstruction{exec: func(m *Machine) (ThreadResult, error) {
		addr, err := m.stack.pop()
		if err != nil {
			return 0, err
		}
		if err := m.Program.Jump(addr); err != nil {
			return 0, err
		}
		return ResultContinue, nil
	}}, nil
}

func decodeYield(prog *Program) (decodedInstruction, error) {
	next := prog.PC()
	return decodedInstruction{nextPC: next, exec: func(m *Machine) (ThreadResult, error) {
		return ResultYield, nil
	}}, nil
}

func decodeJump(prog *Program) (decodedInstruction, error) {
	target, err := prog.ReadU16()
	if err != nil {
		return decodedInstruction{}, err
	}
	return decodedInstruction{exec: func(m *Machine) (ThreadResult, error) {
		if err := m.Program.Jump(target); err != nil {
			return 0, err
		}
		return ResultContinue, nil
	}}, nil
}

func decodeActivateThread(prog *Program) (decodedInstruction, error) {
	threadID, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	pc, err := prog.ReadU16()
	if err != nil {
		return decodedInstruction{}, err
	}
	next := prog.PC()
	return decodedInstruction{nextPC: next, exec: func(m *Machine) (ThreadResult, error) {
		if err := m.Scheduler.StageActivate(int(threadID), pc); err != nil {
			return 0, err
		}
		return ResultContinue, nil
	}}, nil
}

// decodeJumpIfNotZero decrements the register, then jumps only if the
// decremented value is nonzero (distilled spec §4.8) — decrementing 0
// wraps to 0xFFFF and does NOT stop the loop.
func decodeJumpIfNotZero(prog *Program) (decodedInstruction, error) {
	reg, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	target, err := prog.ReadU16()
	if err != nil {
		return decodedInstruction{}, err
	}
	next := prog.PC()
	return decodedInstruction{nextPC: next, exec: func(m *Machine) (ThreadResult, error) {
		v := m.Registers.Get(reg) - 1
		m.Registers.Set(reg, v)
		if v != 0 {
			if err := m.Program.Jump(target); err != nil {
				return 0, err
			}
		}
		return ResultContinue, nil
	}}, nil
}

// jumpOperand is the comparison's right-hand side: either another
// register or an immediate constant, selected by bits in the comparison
// byte (distilled spec §4.8).
type jumpOperand struct {
	isRegister bool
	reg        uint8
	constant   int16
}

// decodeJumpConditional reads a comparison byte whose low 3 bits select
// the comparator and whose 0x80/0x40 bits select the right-hand operand's
// form: 0x80 set means "another register", 0x40 set (0x80 clear) means "a
// 16-bit constant", neither set means "an 8-bit constant".
func decodeJumpConditional(prog *Program) (decodedInstruction, error) {
	cmpByte, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	leftReg, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}

	var rhs jumpOperand
	switch {
	case cmpByte&0x80 != 0:
		reg, err := prog.ReadU8()
		if err != nil {
			return decodedInstruction{}, err
		}
		rhs = jumpOperand{isRegister: true, reg: reg}
	case cmpByte&0x40 != 0:
		v, err := prog.ReadU16()
		if err != nil {
			return decodedInstruction{}, err
		}
		rhs = jumpOperand{constant: int16(v)}
	default:
		v, err := prog.ReadU8()
		if err != nil {
			return decodedInstruction{}, err
		}
		rhs = jumpOperand{constant: int16(v)}
	}

	target, err := prog.ReadU16()
	if err != nil {
		return decodedInstruction{}, err
	}
	comparison := jumpComparison(cmpByte & 0x07)
	next := prog.PC()

	return decodedInstruction{nextPC: next, exec: func(m *Machine) (ThreadResult, error) {
		a := m.Registers.GetSigned(leftReg)
		var b int16
		if rhs.isRegister {
			b = m.Registers.GetSigned(rhs.reg)
		} else {
			b = rhs.constant
		}

		var take bool
		switch comparison {
		case cmpEqual:
			take = a == b
		case cmpNotEqual:
			take = a != b
		case cmpGreater:
			take = a > b
		case cmpGreaterOrEqual:
			take = a >= b
		case cmpLess:
			take = a < b
		case cmpLessOrEqual:
			take = a <= b
		default:
			return 0, ErrInvalidJumpComparison
		}

		if take {
			if err := m.Program.Jump(target); err != nil {
				return 0, err
			}
		}
		return ResultContinue, nil
	}}, nil
}

// decodeSelectPalette reads a word whose high byte is the palette ID; the
// low byte is unused padding.
func decodeSelectPalette(prog *Program) (decodedInstruction, error) {
	raw, err := prog.ReadU16()
	if err != nil {
		return decodedInstruction{}, err
	}
	id := int(raw >> 8)
	next := prog.PC()
	return decodedInstruction{nextPC: next, exec: func(m *Machine) (ThreadResult, error) {
		m.selectPalette(id)
		return ResultContinue, nil
	}}, nil
}

func decodeControlThreads(prog *Program) (decodedInstruction, error) {
	start, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	end, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	kind, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	next := prog.PC()
	return decodedInstruction{nextPC: next, exec: func(m *Machine) (ThreadResult, error) {
		var op ControlThreadOp
		switch kind {
		case 0:
			op = ThreadOpResume
		case 1:
			op = ThreadOpPause
		case 2:
			op = ThreadOpDeactivate
		default:
			return 0, ErrInvalidThreadOperation
		}
		if err := m.Scheduler.StageControl(int(start), int(end), op); err != nil {
			return 0, err
		}
		return ResultContinue, nil
	}}, nil
}

func decodeSelectVideoBuffer(prog *Program) (decodedInstruction, error) {
	raw, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	next := prog.PC()
	return decodedInstruction{nextPC: next, exec: func(m *Machine) (ThreadResult, error) {
		ref, err := decodeBufferRef(raw)
		if err != nil {
			return 0, err
		}
		m.selectDrawBuffer(ref)
		return ResultContinue, nil
	}}, nil
}

func decodeFillVideoBuffer(prog *Program) (decodedInstruction, error) {
	raw, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	color, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	next := prog.PC()
	return decodedInstruction{nextPC: next, exec: func(m *Machine) (ThreadResult, error) {
		ref, err := decodeBufferRef(raw)
		if err != nil {
			return 0, err
		}
		buf, err := m.resolveBuffer(ref)
		if err != nil {
			return 0, err
		}
		buf.Fill(color)
		return ResultContinue, nil
	}}, nil
}

// decodeCopyVideoBuffer reads a source page byte whose high bit (0x80)
// requests a vertical scroll taken from RegScrollY, and a destination
// page byte.
func decodeCopyVideoBuffer(prog *Program) (decodedInstruction, error) {
	srcRaw, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	dstRaw, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	next := prog.PC()
	return decodedInstruction{nextPC: next, exec: func(m *Machine) (ThreadResult, error) {
		scroll := srcRaw&0x80 != 0
		srcRef, err := decodeBufferRef(srcRaw &^ 0x80)
		if err != nil {
			return 0, err
		}
		dstRef, err := decodeBufferRef(dstRaw)
		if err != nil {
			return 0, err
		}
		src, err := m.resolveBuffer(srcRef)
		if err != nil {
			return 0, err
		}
		dst, err := m.resolveBuffer(dstRef)
		if err != nil {
			return 0, err
		}
		yOffset := 0
		if scroll {
			yOffset = int(m.Registers.GetSigned(RegScrollY))
		}
		dst.CopyFrom(src, yOffset)
		return ResultContinue, nil
	}}, nil
}

// decodeRenderVideoBuffer reads the buffer to present. Per distilled spec
// §9's open question, the engine writes zero to RegRenderUnknown before
// every render regardless of what it's for.
func decodeRenderVideoBuffer(prog *Program) (decodedInstruction, error) {
	raw, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	next := prog.PC()
	return decodedInstruction{nextPC: next, exec: func(m *Machine) (ThreadResult, error) {
		ref, err := decodeBufferRef(raw)
		if err != nil {
			return 0, err
		}
		m.Registers.Set(RegRenderUnknown, 0)
		return ResultContinue, m.renderBuffer(ref)
	}}, nil
}

func decodeKill(prog *Program) (decodedInstruction, error) {
	return decodedInstruction{exec: func(m *Machine) (ThreadResult, error) {
		return ResultDeactivate, nil
	}}, nil
}

func decodeDrawString(prog *Program) (decodedInstruction, error) {
	stringID, err := prog.ReadU16()
	if err != nil {
		return decodedInstruction{}, err
	}
	x, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	y, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	color, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	next := prog.PC()
	return decodedInstruction{nextPC: next, exec: func(m *Machine) (ThreadResult, error) {
		return ResultContinue, m.drawString(stringID, int(x), int(y), color)
	}}, nil
}

func decodeRegSub(prog *Program) (decodedInstruction, error) {
	dest, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	src, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	next := prog.PC()
	return decodedInstruction{nextPC: next, exec: func(m *Machine) (ThreadResult, error) {
		m.Registers.Set(dest, m.Registers.Get(dest)-m.Registers.Get(src))
		return ResultContinue, nil
	}}, nil
}

func decodeRegAnd(prog *Program) (decodedInstruction, error) {
	dest, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	value, err := prog.ReadU16()
	if err != nil {
		return decodedInstruction{}, err
	}
	next := prog.PC()
	return decodedInstruction{nextPC: next, exec: func(m *Machine) (ThreadResult, error) {
		m.Registers.Set(dest, m.Registers.Get(dest)&value)
		return ResultContinue, nil
	}}, nil
}

func decodeRegOr(prog *Program) (decodedInstruction, error) {
	dest, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	value, err := prog.ReadU16()
	if err != nil {
		return decodedInstruction{}, err
	}
	next := prog.PC()
	return decodedInstruction{nextPC: next, exec: func(m *Machine) (ThreadResult, error) {
		m.Registers.Set(dest, m.Registers.Get(dest)|value)
		return ResultContinue, nil
	}}, nil
}

// decodeRegShl and decodeRegShr take a single-byte shift amount; only its
// low 4 bits are meaningful (distilled spec §4.8, "Shifts take a 4-bit
// shift amount").
func decodeRegShl(prog *Program) (decodedInstruction, error) {
	dest, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	amount, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	amount &= 0x0F
	next := prog.PC()
	return decodedInstruction{nextPC: next, exec: func(m *Machine) (ThreadResult, error) {
		m.Registers.Set(dest, m.Registers.Get(dest)<<amount)
		return ResultContinue, nil
	}}, nil
}

func decodeRegShr(prog *Program) (decodedInstruction, error) {
	dest, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	amount, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	amount &= 0x0F
	next := prog.PC()
	return decodedInstruction{nextPC: next, exec: func(m *Machine) (ThreadResult, error) {
		m.Registers.Set(dest, m.Registers.Get(dest)>>amount)
		return ResultContinue, nil
	}}, nil
}

// decodeControlSound parses a resource ID, frequency ID, volume, and
// channel. Per distilled spec §4.8, a nonzero resource ID with zero
// volume is the original's way of saying "stop this channel".
func decodeControlSound(prog *Program) (decodedInstruction, error) {
	resID, err := prog.ReadU16()
	if err != nil {
		return decodedInstruction{}, err
	}
	freq, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	volume, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	channel, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	next := prog.PC()
	return decodedInstruction{nextPC: next, exec: func(m *Machine) (ThreadResult, error) {
		if channel > 3 {
			return 0, ErrInvalidChannelID
		}
		if resID == 0 {
			return ResultContinue, nil
		}
		if volume == 0 {
			if m.Host.StopSound != nil {
				m.Host.StopSound(m, int(channel))
			}
			return ResultContinue, nil
		}
		if freq > 39 {
			return 0, ErrInvalidFrequencyID
		}
		if m.Host.PlaySound != nil {
			if err := m.Host.PlaySound(m, resID, int(freq), int(volume), int(channel)); err != nil {
				return 0, err
			}
		}
		return ResultContinue, nil
	}}, nil
}

func decodeControlResources(prog *Program) (decodedInstruction, error) {
	value, err := prog.ReadU16()
	if err != nil {
		return decodedInstruction{}, err
	}
	next := prog.PC()
	return decodedInstruction{nextPC: next, exec: func(m *Machine) (ThreadResult, error) {
		switch classifyResourceOp(value) {
		case resourceOpUnloadAll:
			m.Memory.UnloadAllIndividual()
		case resourceOpSwitchPart:
			part, err := parseGamePart(value)
			if err != nil {
				return 0, err
			}
			if err := m.switchGamePart(part); err != nil {
				return 0, err
			}
		case resourceOpLoadOne:
			load, err := m.Memory.LoadIndividual(int(value))
			if err != nil {
				return 0, err
			}
			if load.Kind == KindTemporaryBitmap {
				m.buffers[0].LoadPlanarBitmap(load.Data)
			}
		}
		return ResultContinue, nil
	}}, nil
}

func decodeControlMusic(prog *Program) (decodedInstruction, error) {
	resID, err := prog.ReadU16()
	if err != nil {
		return decodedInstruction{}, err
	}
	delay, err := prog.ReadU16()
	if err != nil {
		return decodedInstruction{}, err
	}
	position, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	next := prog.PC()
	return decodedInstruction{nextPC: next, exec: func(m *Machine) (ThreadResult, error) {
		if m.Host.PlayMusic != nil {
			return ResultContinue, m.Host.PlayMusic(m, resID, int(delay), int(position))
		}
		return ResultContinue, nil
	}}, nil
}

// decodeDrawBackgroundPolygon parses a 0x80-0xFF opcode byte: its low 7
// bits become the high byte of a pre-shifted polygon offset, the
// following byte its low byte; X/Y are read as plain byte constants
// (distilled spec §4.8).
func decodeDrawBackgroundPolygon(prog *Program, raw uint8) (decodedInstruction, error) {
	lo, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	x, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	y, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}
	addr := (uint16(raw&0x7F)<<8 | uint16(lo)) * 2
	next := prog.PC()
	return decodedInstruction{nextPC: next, exec: func(m *Machine) (ThreadResult, error) {
		origin := Point{X: int(x), Y: int(y)}
		err := m.Polygons.Draw(m.drawBuffer, addr, origin, defaultScale, EmbeddedColorOp())
		return ResultContinue, err
	}}, nil
}

// decodeDrawSpritePolygon parses a 0x40-0x7F opcode byte. Unlike the
// background variant, its polygon offset doesn't share bits with any
// other operand: a plain 16-bit word, doubled on decode like the
// background variant's offset, gives the address, followed by a dedicated mode byte whose low 4 bits
// select X's source, Y's source, and the zoom source, so that no bit ever
// does double duty as both address and flag (distilled spec §4.8).
func decodeDrawSpritePolygon(prog *Program, raw uint8) (decodedInstruction, error) {
	addrWord, err := prog.ReadU16()
	if err != nil {
		return decodedInstruction{}, err
	}
	addr := addrWord * 2

	mode, err := prog.ReadU8()
	if err != nil {
		return decodedInstruction{}, err
	}

	type operand struct {
		fromRegister bool
		reg          uint8
		constant     int
	}
	readOperand := func(fromRegister bool) (operand, error) {
		if fromRegister {
			reg, err := prog.ReadU8()
			return operand{fromRegister: true, reg: reg}, err
		}
		v, err := prog.ReadU8()
		return operand{constant: int(int8(v))}, err
	}

	xOp, err := readOperand(mode&0x08 != 0)
	if err != nil {
		return decodedInstruction{}, err
	}
	yOp, err := readOperand(mode&0x04 != 0)
	if err != nil {
		return decodedInstruction{}, err
	}

	useZoomRegister := mode&0x02 != 0
	var zoomReg uint8
	var zoomConst uint8 = defaultScale
	if useZoomRegister {
		zoomReg, err = prog.ReadU8()
		if err != nil {
			return decodedInstruction{}, err
		}
	} else if mode&0x01 != 0 {
		zoomConst, err = prog.ReadU8()
		if err != nil {
			return decodedInstruction{}, err
		}
	}

	next := prog.PC()
	return decodedInstruction{nextPC: next, exec: func(m *Machine) (ThreadResult, error) {
		resolve := func(op operand) int {
			if op.fromRegister {
				return int(m.Registers.GetSigned(op.reg))
			}
			return op.constant
		}
		origin := Point{X: resolve(xOp), Y: resolve(yOp)}
		scale := int(zoomConst)
		if useZoomRegister {
			scale = int(m.Registers.Get(zoomReg))
		}
		err := m.Polygons.Draw(m.drawBuffer, addr, origin, scale, EmbeddedColorOp())
		return ResultContinue, err
	}}, nil
}
