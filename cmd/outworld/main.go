package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/mjorgen/outworld/outworld"
)

func init() {
	runtime.LockOSThread()
}

func initSDL() (func(), error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return func() {}, fmt.Errorf("outworld: unable to init sdl: %w", err)
	}
	return sdl.Quit, nil
}

func run(gameDir string, part int, zoom int, noAudio, noDebugConsole bool, cpuprofile, memprofile string) error {
	if cpuprofile != "" {
		f, err := os.Create(cpuprofile)
		if err != nil {
			return fmt.Errorf("outworld: could not create cpu profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("outworld: could not start cpu profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	m, err := outworld.NewMachine(gameDir)
	if err != nil {
		return err
	}
	if err := m.LoadGamePart(outworld.GamePart(part)); err != nil {
		return err
	}

	quitSDL, err := initSDL()
	if err != nil {
		return err
	}
	defer quitSDL()

	var audio *audioBackend
	if !noAudio {
		audio, err = newAudioBackend()
		if err != nil {
			return err
		}
		defer audio.close()
	}

	var console *debugConsole
	if !noDebugConsole {
		console, err = newDebugConsole()
		if err == nil {
			defer console.close()
		} else {
			console = nil
		}
	}

	e, err := newEngine("outworld", zoom, audio, console)
	if err != nil {
		return err
	}
	defer e.destroy()

	if err := e.run(m); err != nil {
		return err
	}

	if memprofile != "" {
		f, err := os.Create(memprofile)
		if err != nil {
			return fmt.Errorf("outworld: could not create memory profile: %w", err)
		}
		defer f.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("outworld: could not write memory profile: %w", err)
		}
	}

	return nil
}

func main() {
	gameDir := flag.String("gamedir", ".", "directory containing MEMLIST.BIN and the BANK* files")
	part := flag.Int("part", int(outworld.GamePartIntroCinematic), "game part to load on startup")
	zoom := flag.Int("zoom", 3, "window scale factor")
	noAudio := flag.Bool("no-audio", false, "disable sound and music playback")
	noDebugConsole := flag.Bool("no-debug-console", false, "disable the raw-mode stdin debug console")
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile := flag.String("memprofile", "", "write memory profile to file")
	flag.Parse()

	if err := run(*gameDir, *part, *zoom, *noAudio, *noDebugConsole, *cpuprofile, *memprofile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
