// Package main provides the c8sim command line.
//
//	c8sim [options] <program>
//
// Runs a CHIP-8 program in a window (sdl), in the terminal (term), or for a
// fixed number of frames with scripted keys (headless). -d prints a
// disassembly instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/bradleyjkemp/memviz"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/sarchlab/c8sim/config"
	"github.com/sarchlab/c8sim/disasm"
	"github.com/sarchlab/c8sim/emu"
	"github.com/sarchlab/c8sim/host"
	"github.com/sarchlab/c8sim/host/headless"
	"github.com/sarchlab/c8sim/host/sdlhost"
	"github.com/sarchlab/c8sim/host/termhost"
	"github.com/sarchlab/c8sim/loader"
	"github.com/sarchlab/c8sim/statsview"
	"github.com/sarchlab/c8sim/timing/core"
	"github.com/sarchlab/c8sim/tone"
	"github.com/sarchlab/c8sim/trace"
)

const (
	exitOK     = 0
	exitError  = 1
	exitHalted = 2
)

func init() {
	// SDL must stay on the main thread
	runtime.LockOSThread()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	disassemble bool
	configPath  string
	writeConfig string
	frontend    string
	frames      int
	scale       int
	seed        uint64
	keys        string
	tracePath   string
	traceFormat string
	wavPath     string
	memvizPath  string
	dumpPath    string
	statsview   bool
	verbosity   int
}

func parseArgs(args []string, stderr io.Writer) (*options, *flag.FlagSet, error) {
	opts := &options{}

	fs := flag.NewFlagSet("c8sim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.disassemble, "d", false, "Print a disassembly and exit")
	fs.StringVar(&opts.configPath, "config", "", "Path to TOML configuration file")
	fs.StringVar(&opts.writeConfig, "write-config", "", "Write the effective configuration to this path")
	fs.StringVar(&opts.frontend, "frontend", "", "Frontend: sdl, term or headless")
	fs.IntVar(&opts.frames, "frames", 0, "Stop after this many frames")
	fs.IntVar(&opts.scale, "scale", 0, "Window pixels per display pixel (sdl)")
	fs.Uint64Var(&opts.seed, "seed", 0, "Random seed for RND")
	fs.StringVar(&opts.keys, "keys", "", "Key schedule for headless runs, frame:key[:hold],...")
	fs.StringVar(&opts.tracePath, "trace", "", "Write an instruction trace to this path")
	fs.StringVar(&opts.traceFormat, "trace-format", "text", "Trace format: text or cbor")
	fs.StringVar(&opts.wavPath, "wav", "", "Record the tone to this WAV file")
	fs.StringVar(&opts.memvizPath, "memviz", "", "Write a graphviz dump of the final machine state")
	fs.StringVar(&opts.dumpPath, "dump-memory", "", "Write a hex dump of the final memory to this path")
	fs.BoolVar(&opts.statsview, "statsview", false, "Log a machine summary every second and serve runtime graphs (statsview build)")
	fs.IntVar(&opts.verbosity, "v", 0, "Log verbosity")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: c8sim [options] <program>\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return opts, fs, nil
}

// loadConfig builds the configuration: defaults, then the file, then any
// flag given explicitly.
func loadConfig(opts *options, fs *flag.FlagSet) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		cfg, err = config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "frontend":
			cfg.Host.Frontend = opts.frontend
		case "frames":
			cfg.Host.Frames = opts.frames
		case "scale":
			cfg.Host.Scale = opts.scale
		case "seed":
			seed := opts.seed
			cfg.Machine.Seed = &seed
		case "v":
			cfg.Log.Verbosity = opts.verbosity
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func configureLog(cfg *config.Config) {
	var path *string
	if cfg.Log.File != "" {
		path = &cfg.Log.File
	}
	commonlog.Configure(cfg.Log.Verbosity, path)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, fs, err := parseArgs(args, stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		return exitError
	}

	cfg, err := loadConfig(opts, fs)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return exitError
	}

	if opts.writeConfig != "" {
		if err := cfg.Save(opts.writeConfig); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
		if fs.NArg() == 0 {
			return exitOK
		}
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return exitError
	}

	configureLog(cfg)

	prog, err := loader.Load(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "Error loading program: %v\n", err)
		return exitError
	}

	if opts.disassemble {
		if err := disasm.Write(stdout, prog.Data, prog.Origin); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
		return exitOK
	}

	monitor := statsview.NewMonitor()
	if opts.statsview {
		if !statsview.Available() {
			fmt.Fprintf(stderr, "statsview graphs are not available in this build\n")
		}
		statsview.Launch(stdout, monitor, cfg.Timing.FramesPerSecond)
	}

	return runProgram(ctx, cfg, opts, prog, monitor, stdout, stderr)
}

func runProgram(
	ctx context.Context,
	cfg *config.Config,
	opts *options,
	prog *loader.Program,
	monitor *statsview.Monitor,
	stdout, stderr io.Writer,
) int {
	emuOpts := []emu.EmulatorOption{
		emu.WithMaxInstructions(cfg.Machine.MaxInstructions),
	}
	if cfg.Machine.Seed != nil {
		emuOpts = append(emuOpts, emu.WithSeed(*cfg.Machine.Seed))
	}

	if opts.tracePath != "" {
		f, err := os.Create(opts.tracePath)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
		defer f.Close()

		tracer, err := trace.New(opts.traceFormat, f)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
		defer func() {
			if err := tracer.Close(); err != nil {
				fmt.Fprintf(stderr, "Error writing trace: %v\n", err)
			}
		}()
		emuOpts = append(emuOpts, emu.WithTracer(tracer))
	}

	emulator := emu.NewEmulator(emuOpts...)
	if err := emulator.LoadProgram(prog.Data); err != nil {
		fmt.Fprintf(stderr, "Error loading program: %v\n", err)
		return exitError
	}

	coreOpts := []core.Option{core.WithTimingConfig(cfg.Timing)}
	if cfg.Cache.Enabled {
		coreOpts = append(coreOpts,
			core.WithICache(cfg.Cache.Instruction),
			core.WithDCache(cfg.Cache.Data))
	}
	c := core.NewCore(emulator, coreOpts...)

	fe, fps, err := openFrontend(cfg, opts, prog)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	hostOpts := host.Options{FPS: fps, Frames: cfg.Host.Frames, Observer: monitor}

	var recorder *tone.Recorder
	if opts.wavPath != "" {
		recorder, err = tone.Create(opts.wavPath, cfg.Host.ToneFrequency, int(cfg.Timing.FramesPerSecond))
		if err != nil {
			_ = fe.Close()
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
		hostOpts.Recorder = recorder
	}

	runErr := host.Run(ctx, c, fe, hostOpts)

	if err := fe.Close(); err != nil {
		fmt.Fprintf(stderr, "Error closing frontend: %v\n", err)
	}
	if recorder != nil {
		if err := recorder.Close(); err != nil {
			fmt.Fprintf(stderr, "Error writing %s: %v\n", opts.wavPath, err)
		}
	}

	if hl, ok := fe.(*headless.Frontend); ok {
		frame := hl.LastFrame()
		fmt.Fprint(stdout, frame.String())
	}

	if opts.memvizPath != "" {
		if err := writeMemviz(opts.memvizPath, emulator); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
	}

	if opts.dumpPath != "" {
		if err := writeMemoryDump(opts.dumpPath, emulator.Memory()); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
	}

	if cfg.Log.Verbosity > 0 {
		fmt.Fprintf(stdout, "\nProgram: %s\n", prog.Path)
		if err := monitor.WriteReport(stdout, cfg.Cache.Enabled); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
	}

	if runErr != nil {
		fmt.Fprintf(stderr, "Halted: %v\n", runErr)
		return exitHalted
	}

	return exitOK
}

// openFrontend returns the configured frontend and the frame rate the host
// loop should pace it at. Headless runs unpaced.
func openFrontend(cfg *config.Config, opts *options, prog *loader.Program) (host.Frontend, int, error) {
	fps := int(cfg.Timing.FramesPerSecond)

	switch cfg.Host.Frontend {
	case config.FrontendSDL:
		fe, err := sdlhost.Open("c8sim - "+prog.Path, cfg.Host.Scale, cfg.Host.ToneFrequency, fps)
		return fe, fps, err

	case config.FrontendTerm:
		fe, err := termhost.Open(cfg.Host.KeyHoldFrames)
		return fe, fps, err

	default:
		schedule, err := headless.ParseSchedule(opts.keys)
		if err != nil {
			return nil, 0, err
		}
		return headless.New(headless.WithSchedule(schedule)), 0, nil
	}
}

// machineState is the part of the machine worth graphing.
type machineState struct {
	State        string
	Instructions uint64
	Key          emu.Key
	Registers    *emu.RegFile
	Stack        *emu.Stack
}

func writeMemviz(path string, e *emu.Emulator) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	memviz.Map(f, &machineState{
		State:        e.State().String(),
		Instructions: e.InstructionCount(),
		Key:          e.Key(),
		Registers:    e.RegFile(),
		Stack:        e.Stack(),
	})

	return f.Close()
}

func writeMemoryDump(path string, mem *emu.Memory) error {
	data, err := mem.ReadBytes(0, mem.Size())
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := disasm.Dump(f, data, 0); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
