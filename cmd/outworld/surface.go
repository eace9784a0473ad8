package main

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/mjorgen/outworld/outworld"
)

// textureSurface adapts an sdl.Texture to outworld.Surface: RenderBufferToSurface
// calls SetPixel once per output pixel, and textureSurface accumulates those
// writes into a plain RGBA8888 byte buffer that gets pushed to the GPU in one
// UpdateTexture call per frame, mirroring how cmd/vnes's gameView.go hands
// console.Buffer() straight to an SDL-backed layer rather than drawing pixel
// by pixel through the renderer.
type textureSurface struct {
	width, height int
	pixels        []byte // RGBA8888, width*height*4 bytes
	texture       *sdl.Texture
}

func newTextureSurface(renderer *sdl.Renderer, width, height int) (*textureSurface, error) {
	tex, err := renderer.CreateTexture(sdl.PIXELFORMAT_ABGR8888, sdl.TEXTUREACCESS_STREAMING, int32(width), int32(height))
	if err != nil {
		return nil, err
	}
	return &textureSurface{
		width:   width,
		height:  height,
		pixels:  make([]byte, width*height*4),
		texture: tex,
	}, nil
}

func (s *textureSurface) SetPixel(x, y int, r, g, b uint8) {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return
	}
	i := (y*s.width + x) * 4
	s.pixels[i+0] = r
	s.pixels[i+1] = g
	s.pixels[i+2] = b
	s.pixels[i+3] = 0xFF
}

// flush uploads the accumulated pixel buffer to the GPU texture.
func (s *textureSurface) flush() error {
	return s.texture.Update(nil, s.pixels, s.width*4)
}

func (s *textureSurface) destroy() error {
	return s.texture.Destroy()
}

var _ outworld.Surface = (*textureSurface)(nil)
