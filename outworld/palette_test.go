package outworld

import "testing"

func TestDecodePaletteExpandsNibbles(t *testing.T) {
	data := make([]byte, paletteRecordBytes)
	// entry 0: r=0xA, g=0x5, b=0x0 packed into bits 11..0.
	data[0] = 0x0A
	data[1] = 0x50

	pal, err := DecodePalette(data)
	if err != nil {
		t.Fatalf("DecodePalette() error = %v", err)
	}
	want := PaletteEntry{R: 0xAA, G: 0x55, B: 0x00}
	if pal[0] != want {
		t.Errorf("pal[0] = %+v, want %+v", pal[0], want)
	}
	for i := 1; i < paletteEntryCount; i++ {
		if pal[i] != (PaletteEntry{}) {
			t.Errorf("pal[%d] = %+v, want zero value", i, pal[i])
		}
	}
}

func TestDecodePaletteWrongLength(t *testing.T) {
	if _, err := DecodePalette(make([]byte, paletteRecordBytes-1)); err == nil {
		t.Errorf("DecodePalette() with short record: error = nil, want non-nil")
	}
}

func TestDecodePaletteTableIndexesIntoRecords(t *testing.T) {
	data := make([]byte, paletteTableBytes)
	// palette 1's entry 0 gets r=0xF, g=0,b=0.
	offset := paletteRecordBytes * 1
	data[offset] = 0x0F
	data[offset+1] = 0x00

	table, err := DecodePaletteTable(data)
	if err != nil {
		t.Fatalf("DecodePaletteTable() error = %v", err)
	}
	pal, err := table.Palette(1)
	if err != nil {
		t.Fatalf("Palette(1) error = %v", err)
	}
	if pal[0].R != 0xFF {
		t.Errorf("palette 1 entry 0 R = %#x, want 0xff", pal[0].R)
	}

	zero, err := table.Palette(0)
	if err != nil {
		t.Fatalf("Palette(0) error = %v", err)
	}
	if zero[0] != (PaletteEntry{}) {
		t.Errorf("palette 0 entry 0 = %+v, want zero value", zero[0])
	}
}

func TestDecodePaletteTableWrongLength(t *testing.T) {
	if _, err := DecodePaletteTable(make([]byte, paletteTableBytes+1)); err == nil {
		t.Errorf("DecodePaletteTable() with wrong length: error = nil, want non-nil")
	}
}

func TestPaletteIDOutOfRange(t *testing.T) {
	table := &PaletteTable{}
	if _, err := table.Palette(-1); err != ErrInvalidPaletteID {
		t.Errorf("Palette(-1) error = %v, want ErrInvalidPaletteID", err)
	}
	if _, err := table.Palette(paletteTableCount); err != ErrInvalidPaletteID {
		t.Errorf("Palette(%d) error = %v, want ErrInvalidPaletteID", paletteTableCount, err)
	}
}

type fakeSurface struct {
	pixels map[[2]int]PaletteEntry
}

func (s *fakeSurface) SetPixel(x, y int, r, g, b uint8) {
	if s.pixels == nil {
		s.pixels = make(map[[2]int]PaletteEntry)
	}
	s.pixels[[2]int{x, y}] = PaletteEntry{R: r, G: g, B: b}
}

func TestRenderBufferToSurface(t *testing.T) {
	buf := NewVideoBuffer(2, 2)
	buf.DrawPixel(0, 0, SolidColorOp(1))
	buf.DrawPixel(1, 0, SolidColorOp(2))

	var pal Palette
	pal[1] = PaletteEntry{R: 10, G: 20, B: 30}
	pal[2] = PaletteEntry{R: 40, G: 50, B: 60}

	surface := &fakeSurface{}
	RenderBufferToSurface(buf, pal, surface)

	if got := surface.pixels[[2]int{0, 0}]; got != pal[1] {
		t.Errorf("pixel (0,0) = %+v, want %+v", got, pal[1])
	}
	if got := surface.pixels[[2]int{1, 0}]; got != pal[2] {
		t.Errorf("pixel (1,0) = %+v, want %+v", got, pal[2])
	}
	if got := surface.pixels[[2]int{0, 1}]; got != pal[0] {
		t.Errorf("pixel (0,1) = %+v, want %+v (background color)", got, pal[0])
	}
}
