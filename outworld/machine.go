package outworld

import "fmt"

// Host is the set of callbacks a caller supplies to receive frames and
// drive audio/music playback; every field is optional (distilled spec §9,
// "Host callback interface": a small struct of optional function pointers
// plus an opaque state owned by whatever the caller closes over). Every
// callback fires only at an instruction boundary, never mid-instruction.
type Host struct {
	// BufferReady is called once a RenderVideoBuffer instruction has
	// resolved which buffer to present and validated the active palette.
	// delayMS is the original program's requested frame delay, derived from
	// RegFrameDuration.
	BufferReady func(m *Machine, buf *VideoBuffer, pal Palette, delayMS int)

	// BufferChanged is called whenever SelectVideoBuffer retargets the
	// implicit draw buffer, before the next draw instruction runs against it.
	BufferChanged func(m *Machine, buf *VideoBuffer)

	PlaySound func(m *Machine, resID uint16, freq, volume, channel int) error
	StopSound func(m *Machine, channel int)
	PlayMusic func(m *Machine, resID uint16, delay, position int) error
}

// Input is the snapshot of player input applied once per tic (distilled
// spec §4.9, "Input").
type Input struct {
	Up, Down, Left, Right bool
	Action                bool
	ShowPasswordScreen    bool
	LastPressedChar       *byte
}

// Machine is the facade that owns every engine subsystem and drives one
// tic at a time, modeled on nes/console.go's Console: a single struct
// wiring together the resource directory, memory manager, register file,
// program, call stack, scheduler, video buffers, polygon data, and palette
// table, exposing a small surface (LoadGamePart/RunTic/Press/Release-style
// methods) instead of leaking any of that wiring to callers.
type Machine struct {
	Host Host

	Directory *Directory
	Memory    *MemoryManager
	Registers *Registers
	Program   *Program
	Scheduler *Scheduler
	Polygons  *PolygonSet
	Palettes  *PaletteTable

	stack callStack

	buffers    [4]*VideoBuffer
	drawBuffer *VideoBuffer
	frontIndex int
	backIndex  int

	activePaletteID int
	hasPalette      bool

	currentPart GamePart
}

// NewMachine opens the resource directory at gameDir and returns a machine
// ready to have a game part loaded into it. gameDir conventionally holds
// MEMLIST.BIN and the BANK* files alongside it.
func NewMachine(gameDir string) (*Machine, error) {
	dir, err := OpenDirectory(gameDir, "MEMLIST.BIN")
	if err != nil {
		return nil, err
	}

	m := &Machine{
		Directory: dir,
		Memory:    NewMemoryManager(dir),
		Registers: &Registers{},
		Scheduler: NewScheduler(),
		frontIndex: 1,
		backIndex:  2,
	}
	for i := range m.buffers {
		m.buffers[i] = NewVideoBuffer(ScreenWidth, ScreenHeight)
	}
	m.drawBuffer = m.buffers[0]
	return m, nil
}

// LoadGamePart switches to part: it discards every resource currently
// loaded, game-part-scoped and individually-loaded alike, loads part's
// bytecode/palettes/polygons (and animation bank, if any), resets the
// program counter to address 0 on thread 0 with every other thread
// deactivated, and clears the call stack and the palette selection
// (distilled spec §4.3, §4.7). Registers and the video buffers' contents
// are kept.
func (m *Machine) LoadGamePart(part GamePart) error {
	return m.switchGamePart(part)
}

func (m *Machine) switchGamePart(part GamePart) error {
	res, err := m.Memory.LoadGamePart(part)
	if err != nil {
		return err
	}

	m.Program = NewProgram(res.Bytecode)
	m.Polygons = NewPolygonSet(res.Polygons)
	m.Palettes, err = DecodePaletteTable(res.Palettes)
	if err != nil {
		return fmt.Errorf("outworld: loading palettes for part %d: %w", part, err)
	}

	m.stack = callStack{}
	m.Scheduler = NewScheduler()
	m.hasPalette = false
	m.currentPart = part
	return nil
}

// ApplyInput writes one tic's input snapshot into the well-known input
// registers (distilled spec §4.9).
func (m *Machine) ApplyInput(in Input) {
	var mask int16
	var updown int16
	var leftright int16

	if in.Right {
		mask |= 1
		leftright = 1
	}
	if in.Left {
		mask |= 2
		leftright = -1
	}
	if in.Down {
		mask |= 4
		updown = 1
	}
	if in.Up {
		mask |= 8
		updown = -1
	}
	var actionMask int16
	if in.Action {
		actionMask = 1
		mask |= 0x80
	}

	m.Registers.SetSigned(RegHeroPosMask, mask)
	m.Registers.SetSigned(RegHeroPosLeftRight, leftright)
	m.Registers.SetSigned(RegHeroPosUpDown, updown)
	m.Registers.SetSigned(RegHeroActionMask, actionMask)
	m.Registers.SetSigned(RegHeroAction, actionMask)

	if in.ShowPasswordScreen {
		m.Registers.SetSigned(RegPauseFlag, 1)
	}
	if in.LastPressedChar != nil {
		m.Registers.Set(RegLastCharPressed, uint16(*in.LastPressedChar))
	}
}

// RunTic drives one scheduler tic: every active, unpaused thread runs
// until it yields or deactivates, in thread-ID order, then every deferred
// thread transition staged during the tic is committed (distilled spec
// §4.7).
func (m *Machine) RunTic() error {
	return m.Scheduler.RunTic(m.stepThread)
}

// stepThread implements Step: it repeatedly decodes and executes
// instructions against the shared Program starting at pc until the thread
// yields, deactivates, or an error occurs.
func (m *Machine) stepThread(threadID int, pc uint16) (uint16, ThreadResult, error) {
	if err := m.Program.Jump(pc); err != nil {
		return 0, 0, err
	}

	for {
		inst, err := decodeInstruction(m.Program)
		if err != nil {
			return 0, 0, err
		}
		result, err := inst.exec(m)
		if err != nil {
			return 0, 0, err
		}
		switch result {
		case ResultYield:
			return m.Program.PC(), ResultYield, nil
		case ResultDeactivate:
			return 0, ResultDeactivate, nil
		}
	}
}

// resolveBuffer turns a decoded buffer operand into the concrete buffer it
// currently names.
func (m *Machine) resolveBuffer(ref videoBufferRef) (*VideoBuffer, error) {
	switch ref.symbol {
	case bufferFront:
		return m.buffers[m.frontIndex], nil
	case bufferBack:
		return m.buffers[m.backIndex], nil
	case bufferSpecific:
		return m.buffers[ref.index], nil
	default:
		return nil, ErrInvalidBufferID
	}
}

// selectDrawBuffer retargets the implicit buffer used by polygon and
// string draw instructions.
func (m *Machine) selectDrawBuffer(ref videoBufferRef) {
	buf, err := m.resolveBuffer(ref)
	if err != nil {
		return
	}
	m.drawBuffer = buf
	if m.Host.BufferChanged != nil {
		m.Host.BufferChanged(m, buf)
	}
}

// selectPalette records the palette RenderVideoBuffer should use. Whether
// id is actually in range is only checked at render time, so a bad ID
// selected but never rendered never surfaces an error.
func (m *Machine) selectPalette(id int) {
	m.activePaletteID = id
	m.hasPalette = true
}

// renderBuffer resolves ref and hands the resolved buffer and the active
// palette to the host. Naming the front buffer swaps the front and back
// roles and presents the new front; naming the back buffer presents it
// without changing roles; naming a specific buffer makes it the new front.
// Per distilled spec §7's "palette not
// selected" case, a render before any SelectPalette has run is a silent
// no-op rather than an error.
func (m *Machine) renderBuffer(ref videoBufferRef) error {
	var target int
	switch ref.symbol {
	case bufferFront:
		m.frontIndex, m.backIndex = m.backIndex, m.frontIndex
		target = m.frontIndex
	case bufferBack:
		target = m.backIndex
	case bufferSpecific:
		target = ref.index
		m.frontIndex = target
	default:
		return ErrInvalidBufferID
	}

	if !m.hasPalette {
		return nil
	}
	pal, err := m.Palettes.Palette(m.activePaletteID)
	if err != nil {
		return err
	}

	if m.Host.BufferReady != nil {
		delay := int(m.Registers.GetSigned(RegFrameDuration)) * 20
		m.Host.BufferReady(m, m.buffers[target], pal, delay)
	}
	return nil
}

// drawString renders a built-in on-screen-display string at (x, y) in
// color. stringID indexes a small built-in catalog rather than a parsed
// resource: distilled spec §3's resource types carry no "string table"
// kind, so the original game's full text catalog is out of scope here;
// unknown IDs are a silent no-op. Glyphs are drawn as simple outline boxes
// rather than a bitmap font, since no font resource is in scope either.
func (m *Machine) drawString(stringID uint16, x, y int, color uint8) error {
	if color > 0x0F {
		return ErrInvalidColorID
	}
	text, ok := builtinStrings[stringID]
	if !ok || m.drawBuffer == nil {
		return nil
	}

	const glyphWidth = 8
	op := SolidColorOp(color)
	for i, ch := range text {
		if ch == ' ' {
			continue
		}
		gx := x + i*glyphWidth
		m.drawBuffer.DrawSpan(gx, gx+glyphWidth-2, y, op)
		m.drawBuffer.DrawSpan(gx, gx+glyphWidth-2, y+6, op)
		for row := y + 1; row < y+6; row++ {
			m.drawBuffer.DrawPixel(gx, row, op)
			m.drawBuffer.DrawPixel(gx+glyphWidth-2, row, op)
		}
	}
	return nil
}

// builtinStrings is the small on-screen-display catalog this engine draws
// directly, keyed by the same IDs DrawString's bytecode operand names.
var builtinStrings = map[uint16]string{
	0x0001: "INSERT DISK",
	0x0002: "ENTER PASSWORD",
}

// DebugSnapshot is a diagnostic dump of machine state for tooling, not
// part of normal operation.
type DebugSnapshot struct {
	Part          GamePart
	PC            uint16
	ActiveThreads []int
	DrawBuffer    int
	FrontBuffer   int
	BackBuffer    int
}

// Snapshot captures a DebugSnapshot of the machine's current state.
func (m *Machine) Snapshot() DebugSnapshot {
	snap := DebugSnapshot{
		Part:        m.currentPart,
		FrontBuffer: m.frontIndex,
		BackBuffer:  m.backIndex,
	}
	if m.Program != nil {
		snap.PC = m.Program.PC()
	}
	for i := range m.buffers {
		if m.buffers[i] == m.drawBuffer {
			snap.DrawBuffer = i
		}
	}
	for id := 0; id < NumThreads; id++ {
		t := m.Scheduler.Thread(id)
		if t.hasPC && !t.paused {
			snap.ActiveThreads = append(snap.ActiveThreads, id)
		}
	}
	return snap
}
