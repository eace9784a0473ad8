package outworld

// Point is a screen or polygon-space coordinate.
type Point struct {
	X, Y int
}

const (
	// polygonGroupFlag marks a record as a group (distilled spec §4.5); the
	// remaining 7 bits of the header byte are reserved and must be zero.
	polygonGroupFlag = 0x80

	defaultScale = 64
	noScaleOverride = 0xFF

	// UseEmbeddedColor tells Draw to take the fill color from the leaf
	// record itself rather than from the DrawOp passed in by the caller;
	// DrawBackgroundPolygon and DrawSpritePolygon both draw this way.
	UseEmbeddedColor uint8 = 0xFF
)

// polygonVertex is one source-coordinate-space vertex, 8-bit precision per
// distilled spec §3.
type polygonVertex struct {
	X, Y uint8
}

type polygonLeaf struct {
	width, height uint8
	color         uint8 // low 4 bits
	vertices      []polygonVertex
}

type polygonChild struct {
	subAddress uint16 // pre-shifted: actual byte offset is subAddress*2
	subOrigin  Point
	subScale   uint8 // noScaleOverride means inherit the group's effective scale
}

type polygonGroup struct {
	origin Point
	scale  uint8 // noScaleOverride means inherit the caller's scale
	children []polygonChild
}

// PolygonSet is a resource's flat byte array, indexed by the 16-bit
// addresses embedded in bytecode and in group child records (distilled
// spec §4.5).
type PolygonSet struct {
	data []byte
}

func NewPolygonSet(data []byte) *PolygonSet {
	return &PolygonSet{data: data}
}

// Draw rasterizes the polygon (or recursively, group) at addr into buf,
// positioned at origin with the given fixed-point scale (64 == 1x) and
// draw mode.
func (p *PolygonSet) Draw(buf *VideoBuffer, addr uint16, origin Point, scale int, op DrawOp) error {
	return p.draw(buf, addr, origin, scale, op)
}

func (p *PolygonSet) draw(buf *VideoBuffer, addr uint16, origin Point, scale int, op DrawOp) error {
	if int(addr) >= len(p.data) {
		return ErrInvalidAddress
	}
	header := p.data[addr]

	if header&polygonGroupFlag != 0 {
		group, err := p.parseGroup(addr)
		if err != nil {
			return err
		}
		effectiveScale := scale
		if group.scale != noScaleOverride {
			effectiveScale = int(group.scale)
		}
		groupOrigin := Point{
			X: origin.X + group.origin.X,
			Y: origin.Y + group.origin.Y,
		}
		for _, child := range group.children {
			childScale := effectiveScale
			if child.subScale != noScaleOverride {
				childScale = int(child.subScale)
			}
			childOrigin := Point{
				X: groupOrigin.X + scaleDim(child.subOrigin.X, effectiveScale),
				Y: groupOrigin.Y + scaleDim(child.subOrigin.Y, effectiveScale),
			}
			if err := p.draw(buf, child.subAddress*2, childOrigin, childScale, op); err != nil {
				return err
			}
		}
		return nil
	}

	leaf, err := p.parseLeaf(addr)
	if err != nil {
		return err
	}
	effectiveOp := op
	if op.Kind == DrawSolid && op.Color == UseEmbeddedColor {
		effectiveOp = SolidColorOp(leaf.color)
	}
	rasterizeLeaf(buf, leaf, origin, scale, effectiveOp)
	return nil
}

func scaleDim(v, scale int) int {
	return v * scale / defaultScale
}

// parseLeaf reads a leaf record: header byte, color (low nibble), width,
// height, vertex count, then count (x, y) byte pairs.
func (p *PolygonSet) parseLeaf(addr uint16) (polygonLeaf, error) {
	i := int(addr)
	if i+4 > len(p.data) {
		return polygonLeaf{}, ErrInvalidAddress
	}
	i++ // skip header
	color := p.data[i] & 0x0F
	width, height := p.data[i+1], p.data[i+2]
	i += 3
	count := p.data[i]
	i++
	if count%2 != 0 || count < 4 {
		return polygonLeaf{}, ErrInvalidAddress
	}
	if i+int(count)*2 > len(p.data) {
		return polygonLeaf{}, ErrInvalidAddress
	}
	vertices := make([]polygonVertex, count)
	for v := 0; v < int(count); v++ {
		vertices[v] = polygonVertex{X: p.data[i], Y: p.data[i+1]}
		i += 2
	}
	return polygonLeaf{width: width, height: height, color: color, vertices: vertices}, nil
}

// parseGroup reads a group record: header byte, signed big-endian 16-bit
// origin X and Y, scale byte, child count, then per child a 16-bit word
// address, signed 16-bit sub-origin X and Y, and a scale byte.
func (p *PolygonSet) parseGroup(addr uint16) (polygonGroup, error) {
	i := int(addr)
	if i+6 > len(p.data) {
		return polygonGroup{}, ErrInvalidAddress
	}
	i++ // skip header
	originX := int(int16(uint16(p.data[i])<<8 | uint16(p.data[i+1])))
	originY := int(int16(uint16(p.data[i+2])<<8 | uint16(p.data[i+3])))
	i += 4
	scale := p.data[i]
	i++
	count := p.data[i]
	i++

	children := make([]polygonChild, 0, count)
	for c := 0; c < int(count); c++ {
		if i+7 > len(p.data) {
			return polygonGroup{}, ErrInvalidAddress
		}
		subAddr := uint16(p.data[i])<<8 | uint16(p.data[i+1])
		subX := int(int16(uint16(p.data[i+2])<<8 | uint16(p.data[i+3])))
		subY := int(int16(uint16(p.data[i+4])<<8 | uint16(p.data[i+5])))
		subScale := p.data[i+6]
		i += 7
		children = append(children, polygonChild{
			subAddress: subAddr,
			subOrigin:  Point{X: subX, Y: subY},
			subScale:   subScale,
		})
	}

	return polygonGroup{
		origin:   Point{X: originX, Y: originY},
		scale:    scale,
		children: children,
	}, nil
}

// rasterizeLeaf fills a single polygon. Vertices run from index 0
// (top of the left side) to n/2-1 (bottom of the left side), then from
// n/2 (bottom of the right side) to n-1 (top of the right side) — the
// classic "walk down one side, back up the other" vertex order described
// in distilled spec §4.5.
func rasterizeLeaf(buf *VideoBuffer, leaf polygonLeaf, origin Point, scale int, op DrawOp) {
	n := len(leaf.vertices)
	half := n / 2

	toScreen := func(v polygonVertex) Point {
		return Point{
			X: origin.X + scaleDim(int(v.X)-int(leaf.width)/2, scale),
			Y: origin.Y + scaleDim(int(v.Y)-int(leaf.height)/2, scale),
		}
	}

	if scaleDim(int(leaf.width), scale) == 0 && scaleDim(int(leaf.height), scale) == 0 {
		buf.DrawPixel(origin.X, origin.Y, op)
		return
	}

	left := make([]Point, half)
	right := make([]Point, half)
	for i := 0; i < half; i++ {
		left[i] = toScreen(leaf.vertices[i])
		right[i] = toScreen(leaf.vertices[n-1-i])
	}

	for i := 0; i < half-1; i++ {
		y0, y1 := left[i].Y, left[i+1].Y
		if y0 == y1 {
			continue
		}
		steps := y1 - y0
		for y := y0; y != y1; y += sign(steps) {
			if y < 0 || y >= buf.Height {
				continue
			}
			t := float64(y-y0) / float64(steps)
			lx := lerp(left[i].X, left[i+1].X, t)
			rx := lerp(right[i].X, right[i+1].X, t)
			buf.DrawSpan(lx, rx, y, op)
		}
	}
	// Final scanline, otherwise the bottom row of the polygon is dropped.
	buf.DrawSpan(left[half-1].X, right[half-1].X, left[half-1].Y, op)
}

func sign(v int) int {
	if v < 0 {
		return -1
	}
	return 1
}

func lerp(a, b int, t float64) int {
	return a + int(float64(b-a)*t)
}
