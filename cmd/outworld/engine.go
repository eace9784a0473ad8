package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	errlist "github.com/mjorgen/outworld/cmd/internal/errors"
	"github.com/mjorgen/outworld/cmd/internal/meter"
	"github.com/mjorgen/outworld/outworld"
)

var errQuit = errors.New("quit requested")

// engine owns the window, renderer, and per-tic timing, modeled directly on
// cmd/vnes/engine.go's engine: a meter-tracked main loop that polls events,
// steps the simulation, renders, and presents, once per iteration.
type engine struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	surface  *textureSurface

	audio   *audioBackend
	console *debugConsole

	zoom int

	input  outworld.Input
	paused bool

	ticDuration time.Duration
	ticMeter    *meter.Meter
}

func newEngine(title string, zoom int, audio *audioBackend, console *debugConsole) (*engine, error) {
	window, err := sdl.CreateWindow(
		title,
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(outworld.ScreenWidth*zoom), int32(outworld.ScreenHeight*zoom),
		sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE,
	)
	if err != nil {
		return nil, fmt.Errorf("outworld: creating window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		return nil, fmt.Errorf("outworld: creating renderer: %w", err)
	}
	renderer.SetLogicalSize(int32(outworld.ScreenWidth), int32(outworld.ScreenHeight))

	surface, err := newTextureSurface(renderer, outworld.ScreenWidth, outworld.ScreenHeight)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		return nil, fmt.Errorf("outworld: creating surface: %w", err)
	}

	return &engine{
		window:      window,
		renderer:    renderer,
		surface:     surface,
		audio:       audio,
		console:     console,
		zoom:        zoom,
		ticDuration: 20 * time.Millisecond,
		ticMeter:    meter.New(meter.DefaultBufferLen),
	}, nil
}

// destroy tears down the window, renderer, and texture, reporting every
// failure rather than only the first.
func (e *engine) destroy() error {
	errs := errlist.NewList(
		e.surface.destroy(),
		e.renderer.Destroy(),
		e.window.Destroy(),
	)
	return errs.Errorf("outworld: tearing down engine: %s", errs)
}

// run drives the machine until the window is closed, the debug console
// requests a quit, or m.RunTic reports an error.
func (e *engine) run(m *outworld.Machine) error {
	m.Host.BufferReady = func(_ *outworld.Machine, buf *outworld.VideoBuffer, pal outworld.Palette, _ int) {
		outworld.RenderBufferToSurface(buf, pal, e.surface)
		e.surface.flush()
		e.renderer.Copy(e.surface.texture, nil, nil)
		e.renderer.Present()
	}
	if e.audio != nil {
		m.Host.PlaySound = func(_ *outworld.Machine, resID uint16, freq, volume, channel int) error {
			data, err := m.Memory.LoadIndividual(int(resID))
			if err != nil {
				return err
			}
			e.audio.playSound(data.Data, freq, volume, channel)
			return nil
		}
		m.Host.StopSound = func(_ *outworld.Machine, channel int) {
			e.audio.stopSound(channel)
		}
	}

	ticker := time.NewTicker(e.ticDuration)
	defer ticker.Stop()

	last := time.Now()
	for range ticker.C {
		now := time.Now()
		e.ticMeter.Record(now.Sub(last))
		last = now

		if err := e.poll(); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			return err
		}

		if e.console != nil && e.console.poll(m, e) {
			return nil
		}

		if e.paused {
			continue
		}

		m.ApplyInput(e.input)
		if err := m.RunTic(); err != nil {
			return fmt.Errorf("outworld: running tic: %w", err)
		}
	}
	return nil
}

func (e *engine) poll() error {
	for evt := sdl.PollEvent(); evt != nil; evt = sdl.PollEvent() {
		switch evt := evt.(type) {
		case *sdl.QuitEvent:
			return errQuit
		case *sdl.KeyboardEvent:
			e.handleKey(evt)
		}
	}
	return nil
}

func (e *engine) handleKey(evt *sdl.KeyboardEvent) {
	down := evt.Type == sdl.KEYDOWN
	switch evt.Keysym.Sym {
	case sdl.K_UP:
		e.input.Up = down
	case sdl.K_DOWN:
		e.input.Down = down
	case sdl.K_LEFT:
		e.input.Left = down
	case sdl.K_RIGHT:
		e.input.Right = down
	case sdl.K_SPACE, sdl.K_RETURN:
		e.input.Action = down
	case sdl.K_ESCAPE:
		if down {
			e.input.ShowPasswordScreen = true
		}
	}
}
