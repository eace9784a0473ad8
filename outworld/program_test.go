package outworld

import "testing"

func TestProgramReadU8AdvancesPC(t *testing.T) {
	p := NewProgram([]byte{0xAB, 0xCD})
	v, err := p.ReadU8()
	if err != nil {
		t.Fatalf("ReadU8() error = %v", err)
	}
	if v != 0xAB {
		t.Errorf("ReadU8() = %#x, want 0xab", v)
	}
	if p.PC() != 1 {
		t.Errorf("PC = %d, want 1", p.PC())
	}
}

func TestProgramReadU16BigEndian(t *testing.T) {
	p := NewProgram([]byte{0x01, 0x02})
	v, err := p.ReadU16()
	if err != nil {
		t.Fatalf("ReadU16() error = %v", err)
	}
	if v != 0x0102 {
		t.Errorf("ReadU16() = %#x, want 0x0102", v)
	}
	if p.PC() != 2 {
		t.Errorf("PC = %d, want 2", p.PC())
	}
}

func TestProgramReadPastEndReturnsError(t *testing.T) {
	p := NewProgram([]byte{0x01})
	if _, err := p.ReadU16(); err != ErrEndOfProgram {
		t.Errorf("ReadU16() error = %v, want ErrEndOfProgram", err)
	}
	if _, err := p.ReadU8(); err != nil {
		t.Fatalf("ReadU8() error = %v", err)
	}
	if _, err := p.ReadU8(); err != ErrEndOfProgram {
		t.Errorf("ReadU8() past end error = %v, want ErrEndOfProgram", err)
	}
}

func TestProgramJump(t *testing.T) {
	p := NewProgram(make([]byte, 10))
	if err := p.Jump(5); err != nil {
		t.Fatalf("Jump(5) error = %v", err)
	}
	if p.PC() != 5 {
		t.Errorf("PC = %d, want 5", p.PC())
	}
	if err := p.Jump(10); err != nil {
		t.Errorf("Jump(10) (one past end) error = %v, want nil", err)
	}
	if err := p.Jump(11); err != ErrInvalidAddress {
		t.Errorf("Jump(11) error = %v, want ErrInvalidAddress", err)
	}
}

func TestProgramSkip(t *testing.T) {
	p := NewProgram(make([]byte, 4))
	if err := p.Skip(3); err != nil {
		t.Fatalf("Skip(3) error = %v", err)
	}
	if p.PC() != 3 {
		t.Errorf("PC = %d, want 3", p.PC())
	}
	if err := p.Skip(2); err != ErrEndOfProgram {
		t.Errorf("Skip(2) past end error = %v, want ErrEndOfProgram", err)
	}
}

func TestProgramIsAtEnd(t *testing.T) {
	p := NewProgram([]byte{0x01})
	if p.IsAtEnd() {
		t.Fatalf("IsAtEnd() = true before reading")
	}
	p.ReadU8()
	if !p.IsAtEnd() {
		t.Errorf("IsAtEnd() = false after consuming the only byte")
	}
}

// TestCallStackRoundTrip covers distilled spec §8's round-trip law:
// push(a); pop() == a.
func TestCallStackRoundTrip(t *testing.T) {
	var s callStack
	if err := s.push(0x1234); err != nil {
		t.Fatalf("push() error = %v", err)
	}
	got, err := s.pop()
	if err != nil {
		t.Fatalf("pop() error = %v", err)
	}
	if got != 0x1234 {
		t.Errorf("pop() = %#x, want 0x1234", got)
	}
}

func TestCallStackLIFOOrder(t *testing.T) {
	var s callStack
	s.push(1)
	s.push(2)
	s.push(3)
	for _, want := range []uint16{3, 2, 1} {
		got, err := s.pop()
		if err != nil {
			t.Fatalf("pop() error = %v", err)
		}
		if got != want {
			t.Errorf("pop() = %d, want %d", got, want)
		}
	}
}

func TestCallStackOverflow(t *testing.T) {
	var s callStack
	for i := 0; i < callStackDepth; i++ {
		if err := s.push(uint16(i)); err != nil {
			t.Fatalf("push(%d) error = %v", i, err)
		}
	}
	if err := s.push(999); err != ErrStackOverflow {
		t.Errorf("push() past capacity error = %v, want ErrStackOverflow", err)
	}
}

func TestCallStackUnderflow(t *testing.T) {
	var s callStack
	if _, err := s.pop(); err != ErrStackUnderflow {
		t.Errorf("pop() on empty stack error = %v, want ErrStackUnderflow", err)
	}
}
