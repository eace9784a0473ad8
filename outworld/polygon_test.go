package outworld

import "testing"

func TestDrawDegenerateLeafDrawsSinglePixel(t *testing.T) {
	// header(leaf) color width height count v0 v1 v2 v3; width and height
	// are zero, so the scaled width/height collapse to zero and Draw falls
	// back to a single pixel.
	data := []byte{
		0x00,       // header: leaf
		0x05,       // embedded color (low nibble)
		0x00, 0x00, // width, height
		0x04,                       // vertex count
		10, 10, 10, 10, 10, 10, 10, 10, // 4 identical vertices
	}
	set := NewPolygonSet(data)
	buf := NewVideoBuffer(16, 16)

	if err := set.Draw(buf, 0, Point{X: 5, Y: 5}, defaultScale, SolidColorOp(3)); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if got := buf.At(5, 5); got != 3 {
		t.Errorf("pixel (5,5) = %d, want 3 (caller-supplied color)", got)
	}
}

// TestDrawEmbeddedColorUsesLeafColor exercises the UseEmbeddedColor path
// exclusively reached through EmbeddedColorOp.
func TestDrawEmbeddedColorUsesLeafColor(t *testing.T) {
	data := []byte{
		0x00,
		0x05,
		0x00, 0x00,
		0x04,
		10, 10, 10, 10, 10, 10, 10, 10,
	}
	set := NewPolygonSet(data)
	buf := NewVideoBuffer(16, 16)

	if err := set.Draw(buf, 0, Point{X: 5, Y: 5}, defaultScale, EmbeddedColorOp()); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if got := buf.At(5, 5); got != 5 {
		t.Errorf("pixel (5,5) = %d, want 5 (leaf's embedded color)", got)
	}
}

// TestDrawRectangle rasterizes a simple 4-vertex rectangle: two vertices
// down the left side, two back up the right.
func TestDrawRectangle(t *testing.T) {
	// width=8 height=8 centered on origin: vertices run (0,0)->(0,8) down
	// the left, then (8,8)->(8,0) back up the right.
	data := []byte{
		0x00,
		0x02,
		8, 8,
		0x04,
		0, 0,
		0, 8,
		8, 8,
		8, 0,
	}
	set := NewPolygonSet(data)
	buf := NewVideoBuffer(16, 16)
	buf.Fill(0)

	if err := set.Draw(buf, 0, Point{X: 8, Y: 8}, defaultScale, SolidColorOp(9)); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	// Rectangle spans screen x in [4,12], y in [4,12]: center should be filled.
	if got := buf.At(8, 8); got != 9 {
		t.Errorf("center pixel = %d, want 9", got)
	}
	// Far corner outside the rectangle should be untouched.
	if got := buf.At(0, 0); got != 0 {
		t.Errorf("corner pixel = %d, want 0 (outside the rectangle)", got)
	}
}

func TestDrawGroupAppliesChildOffsetsAndScale(t *testing.T) {
	// Group record (14 bytes) followed immediately by a degenerate
	// single-pixel leaf (13 bytes) at byte offset 14 (word address 7).
	leafOffset := 14
	data := make([]byte, leafOffset+13)

	data[0] = polygonGroupFlag // group header
	data[1], data[2] = 0, 0    // origin X = 0
	data[3], data[4] = 0, 0    // origin Y = 0
	data[5] = noScaleOverride  // inherit caller's scale
	data[6] = 1                // one child

	subAddrWord := uint16(leafOffset / 2)
	data[7] = byte(subAddrWord >> 8)
	data[8] = byte(subAddrWord)
	data[9], data[10] = 0, 0  // subOrigin X = 0
	data[11], data[12] = 0, 10 // subOrigin Y = 10
	data[13] = noScaleOverride

	data[leafOffset+0] = 0x00 // leaf header
	data[leafOffset+1] = 0x07 // embedded color
	data[leafOffset+2], data[leafOffset+3] = 0, 0
	data[leafOffset+4] = 0x04
	for v := 0; v < 4; v++ {
		data[leafOffset+5+v*2] = 3
		data[leafOffset+6+v*2] = 3
	}

	set := NewPolygonSet(data)
	buf := NewVideoBuffer(16, 16)

	if err := set.Draw(buf, 0, Point{X: 2, Y: 2}, defaultScale, SolidColorOp(4)); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	// group origin (0,0) + caller origin (2,2) + child offset (0,10) = (2,12)
	if got := buf.At(2, 12); got != 4 {
		t.Errorf("pixel (2,12) = %d, want 4 (group child drawn at offset origin)", got)
	}
}

func TestDrawInvalidAddressErrors(t *testing.T) {
	set := NewPolygonSet([]byte{0x00, 0x00, 0x00})
	buf := NewVideoBuffer(16, 16)
	if err := set.Draw(buf, 100, Point{}, defaultScale, SolidColorOp(1)); err != ErrInvalidAddress {
		t.Errorf("Draw() out-of-range addr error = %v, want ErrInvalidAddress", err)
	}
}

func TestParseLeafRejectsOddOrShortVertexCount(t *testing.T) {
	set := NewPolygonSet([]byte{0x00, 0x00, 0x00, 0x00, 0x03, 0, 0, 0, 0, 0, 0})
	if _, err := set.parseLeaf(0); err != ErrInvalidAddress {
		t.Errorf("parseLeaf() odd count error = %v, want ErrInvalidAddress", err)
	}

	set2 := NewPolygonSet([]byte{0x00, 0x00, 0x00, 0x00, 0x02, 0, 0, 0, 0})
	if _, err := set2.parseLeaf(0); err != ErrInvalidAddress {
		t.Errorf("parseLeaf() count<4 error = %v, want ErrInvalidAddress", err)
	}
}
