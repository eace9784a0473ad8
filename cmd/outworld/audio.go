package main

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

// audioBackend mixes up to four channels of 8-bit unsigned PCM (the shape a
// ResourceSoundOrEmpty payload is in) into the float32 stream oto.Context
// wants, grounded directly on IntuitionAmiga-IntuitionEngine's
// audio_backend_oto.go: one oto.Context, one oto.Player reading from this
// backend's own io.Reader implementation rather than from a per-sample
// callback. A mutex guards the channel table and Read holds it while it
// mixes each buffer; each channel's active flag is atomic so stopSound can
// clear it without taking the lock.
type audioBackend struct {
	ctx    *oto.Context
	player *oto.Player

	mu       sync.Mutex
	channels [4]pcmChannel
}

type pcmChannel struct {
	samples []byte
	pos     int
	volume  float32
	active  atomic.Bool
}

const audioSampleRate = 22050

func newAudioBackend() (*audioBackend, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   audioSampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("outworld: opening audio context: %w", err)
	}
	<-ready

	a := &audioBackend{ctx: ctx}
	a.player = ctx.NewPlayer(a)
	a.player.Play()
	return a, nil
}

// Read implements io.Reader for oto.Player: it mixes every active channel's
// next sample into p, unit-8-PCM converted to centered float32.
func (a *audioBackend) Read(p []byte) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := len(p) / 4
	for i := 0; i < n; i++ {
		var mixed float32
		for c := range a.channels {
			ch := &a.channels[c]
			if !ch.active.Load() {
				continue
			}
			if ch.pos >= len(ch.samples) {
				ch.active.Store(false)
				continue
			}
			s := (float32(ch.samples[ch.pos]) - 128) / 128
			mixed += s * ch.volume
			ch.pos++
		}
		if mixed > 1 {
			mixed = 1
		} else if mixed < -1 {
			mixed = -1
		}
		putFloat32LE(p[i*4:], mixed)
	}
	return n * 4, nil
}

func putFloat32LE(b []byte, f float32) {
	bits := math.Float32bits(f)
	b[0] = byte(bits)
	b[1] = byte(bits >> 8)
	b[2] = byte(bits >> 16)
	b[3] = byte(bits >> 24)
}

// playSound starts resource data playing on channel at the given volume
// (0-63, matching ControlSound's operand range); freq selects a playback
// rate bucket the original format encodes by ID, which this engine maps
// straight through to a fixed sample rate rather than resampling per ID,
// since no frequency table ships with the resource format itself.
func (a *audioBackend) playSound(data []byte, freq, volume, channel int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ch := &a.channels[channel]
	ch.samples = data
	ch.pos = 0
	ch.volume = float32(volume) / 63
	ch.active.Store(true)
}

func (a *audioBackend) stopSound(channel int) {
	a.channels[channel].active.Store(false)
}

func (a *audioBackend) close() error {
	return a.player.Close()
}
