// Package script owns the outer run loop spec.md §5 leaves to "the host":
// compiling (or loading from cache) a source script, then driving its
// init/tick/exit/hotkey lifecycle between cooperative resume points. It is
// ported from original_source/runtime/__init__.py's MacroRuntime, the
// Python system's per-macro driver, generalized from a daemon-thread loop
// into a context-driven Run a caller chooses how to schedule (in its own
// goroutine, or synchronously), the way nenuphar/lang/machine.Thread takes
// a context instead of spawning its own goroutine for anything but
// cancellation propagation.
package script

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mna/tickscript/analyzer"
	"github.com/mna/tickscript/cache"
	"github.com/mna/tickscript/lang/compiler"
	"github.com/mna/tickscript/lang/host"
	"github.com/mna/tickscript/lang/machine"
	"github.com/mna/tickscript/lang/parser"
	"github.com/mna/tickscript/lang/types"
)

// defaultFPS and defaultMinSleep mirror MacroRuntime._run_loop's own
// fallback constants (`target_fps = meta.get("fps", 60)`, `min_sleep =
// meta.get("min_sleep", 0.005)`).
const (
	defaultFPS      = 60.0
	defaultMinSleep = 5 * time.Millisecond
)

// Script is one compiled, loaded script instance and its lifecycle state,
// the Go analogue of one MacroRuntime.
type Script struct {
	Name   string
	Thread *machine.Thread
	Log    *log.Logger

	initFunc, tickFunc, exitFunc, hotkeyFunc string
	noTick, infinite                         bool
	frameTime, minSleep                      time.Duration

	initialized bool
	shouldExit  bool
	exitOnce    sync.Once

	eventsMu sync.Mutex
	events   []types.Value
}

// New compiles source (or loads it from store's cache if present),
// running the advisory analyzer first and logging any diagnostic, and
// returns a Script with its Thread loaded and ready for Run. logger
// defaults to log.Default() if nil.
func New(name string, source []byte, store *cache.Store, registry *host.Registry, logger *log.Logger) (*Script, error) {
	if logger == nil {
		logger = log.Default()
	}

	var builtins []string
	if registry != nil {
		builtins = registry.Names()
	}

	var top *types.Chunk
	var functions map[string]*types.FunctionObject
	var ok bool
	if store != nil {
		top, functions, ok = store.Get(source)
	}
	if ok {
		logger.Printf("[%s] loaded from cache", name)
	} else {
		prog, err := parser.Parse(source)
		if err != nil {
			return nil, fmt.Errorf("script %s: parse: %w", name, err)
		}

		if diags := analyzer.Analyze(prog, builtins); len(diags) > 0 {
			logger.Printf("[%s] static analysis found %d potential issue(s):", name, len(diags))
			for _, d := range diags {
				logger.Printf("[%s]   %s", name, d)
			}
		}

		top, functions, err = compiler.Compile(prog)
		if err != nil {
			return nil, fmt.Errorf("script %s: compile: %w", name, err)
		}
		if store != nil {
			if err := store.Set(source, top, functions); err != nil {
				logger.Printf("[%s] cache write failed: %v", name, err)
			}
		}
	}

	var predeclared map[string]types.Value
	if registry != nil {
		predeclared = registry.Bindings()
	}
	th := &machine.Thread{Name: name, Predeclared: predeclared}
	th.Load(top, functions)

	s := &Script{Name: name, Thread: th, Log: logger}
	s.applyMeta(top.Metadata)
	return s, nil
}

// metaString resolves one of @meta's remapping pairs (e.g. "init"/"on_init"),
// defaulting to def, matching MacroRuntime._run_loop's
// `meta.get("init", meta.get("on_init", "on_init"))`.
func metaString(meta map[string]types.Value, primary, secondary, def string) string {
	if v, ok := meta[primary]; ok {
		if s, ok := v.(types.String); ok {
			return string(s)
		}
	}
	if v, ok := meta[secondary]; ok {
		if s, ok := v.(types.String); ok {
			return string(s)
		}
	}
	return def
}

func (s *Script) applyMeta(meta map[string]types.Value) {
	s.initFunc = metaString(meta, "init", "on_init", "on_init")
	s.tickFunc = metaString(meta, "tick", "on_tick", "on_tick")
	s.exitFunc = metaString(meta, "exit", "on_exit", "on_exit")
	s.hotkeyFunc = metaString(meta, "hotkey", "on_hotkey", "on_hotkey")

	if v, ok := meta["no_tick"]; ok {
		s.noTick = v.Truth()
	}

	fps := defaultFPS
	if v, ok := meta["fps"]; ok {
		if n, ok := v.(types.Number); ok && float64(n) > 0 {
			fps = float64(n)
		}
	}
	s.frameTime = time.Duration(float64(time.Second) / fps)

	s.minSleep = defaultMinSleep
	if v, ok := meta["min_sleep"]; ok {
		if n, ok := v.(types.Number); ok {
			s.minSleep = time.Duration(float64(n) * float64(time.Second))
		}
	}

	// is_infinite: no_tick and the budget is unlimited (@meta "no_limit" or
	// "instruction_limit": -1, both of which Thread.Load already collapses
	// to InstructionLimit == 0), matching MacroRuntime's
	// `no_tick and (meta.get("no_limit") or meta.get("instruction_limit") == -1)`.
	s.infinite = s.noTick && s.Thread.InstructionLimit == 0
}

func (s *Script) hasFunction(name string) bool {
	_, ok := s.Thread.Functions[name]
	return ok
}

// PostEvent enqueues a hotkey descriptor for the next ProcessEvents call,
// the Go analogue of MacroRuntime.handle_hotkey_signal's producer side
// (event_queue.append under event_lock).
func (s *Script) PostEvent(v types.Value) {
	s.eventsMu.Lock()
	s.events = append(s.events, v)
	s.eventsMu.Unlock()
}

// ProcessEvents drains queued hotkey events, invoking the script's hotkey
// function for each, matching MacroRuntime.process_events/handle_hotkey_signal.
func (s *Script) ProcessEvents(ctx context.Context) {
	s.eventsMu.Lock()
	pending := s.events
	s.events = nil
	s.eventsMu.Unlock()

	for _, ev := range pending {
		if !s.hasFunction(s.hotkeyFunc) {
			continue
		}
		if _, err := s.Thread.CallFunction(ctx, s.hotkeyFunc, ev); err != nil {
			s.Log.Printf("[%s] error in %s: %v", s.Name, s.hotkeyFunc, err)
		}
	}
}

// RequestExit sets should_exit, the Go analogue of MacroRuntime.stop.
func (s *Script) RequestExit() { s.shouldExit = true }

// ShouldExit reports whether the run loop should stop at its next
// opportunity.
func (s *Script) ShouldExit() bool { return s.shouldExit }

// Run executes the top-level chunk, calls the init function once (unless
// the top level already yielded), then drives the tick loop until
// ShouldExit, ctx is cancelled, or a tick/resume returns an error, always
// invoking Exit exactly once before returning. This is MacroRuntime's
// _run_loop, restructured as a plain blocking call instead of a daemon
// thread: a caller wanting the original's "runs in the background"
// behavior invokes Run in its own goroutine.
func (s *Script) Run(ctx context.Context) error {
	defer s.Exit(ctx)

	s.Log.Printf("[%s] running top-level code...", s.Name)
	if _, err := s.Thread.Run(ctx); err != nil {
		return fmt.Errorf("script %s: %w", s.Name, err)
	}

	if s.hasFunction(s.initFunc) {
		if s.Thread.IsYielded() {
			s.Log.Printf("[%s] top-level code yielded, skipping %s until resume", s.Name, s.initFunc)
		} else {
			s.Log.Printf("[%s] calling %s...", s.Name, s.initFunc)
			if _, err := s.Thread.CallFunction(ctx, s.initFunc); err != nil {
				return fmt.Errorf("script %s: %s: %w", s.Name, s.initFunc, err)
			}
		}
	}
	s.initialized = true
	s.Log.Printf("[%s] initialized", s.Name)

	hasTick := s.hasFunction(s.tickFunc)
	if s.noTick {
		s.Log.Printf("[%s] tick system disabled via @meta", s.Name)
	}
	if s.infinite {
		s.Log.Printf("[%s] entering infinite execution mode", s.Name)
	}

	lastTick := time.Now()
	for !s.shouldExit {
		if err := ctx.Err(); err != nil {
			return nil
		}

		s.ProcessEvents(ctx)

		if s.Thread.IsYielded() {
			if _, err := s.Thread.Resume(ctx); err != nil {
				return fmt.Errorf("script %s: %w", s.Name, err)
			}
			if s.infinite && !s.Thread.IsYielded() {
				break
			}
		}

		switch {
		case !s.infinite && hasTick && !s.noTick && !s.Thread.IsYielded():
			now := time.Now()
			delta := now.Sub(lastTick)
			lastTick = now

			_, err := s.Thread.CallFunction(ctx, s.tickFunc, types.Number(delta.Seconds()))
			if err != nil {
				s.Log.Printf("[%s] tick error: %v", s.Name, err)
				return fmt.Errorf("script %s: %s: %w", s.Name, s.tickFunc, err)
			}

			elapsed := time.Since(now)
			sleepFor := s.frameTime - elapsed
			if sleepFor < s.minSleep {
				sleepFor = s.minSleep
			}
			sleepCtx(ctx, sleepFor)
		default:
			sleepCtx(ctx, 50*time.Millisecond)
		}
	}
	return nil
}

// Exit runs the script's exit function exactly once, even across repeated
// calls or a Run that already deferred it, matching
// MacroRuntime.exit_macro's `_cleaned_up` guard.
func (s *Script) Exit(ctx context.Context) {
	s.exitOnce.Do(func() {
		s.shouldExit = true
		if !s.hasFunction(s.exitFunc) {
			return
		}
		s.Log.Printf("[%s] running %s cleanup...", s.Name, s.exitFunc)
		if _, err := s.Thread.CallFunction(ctx, s.exitFunc); err != nil {
			s.Log.Printf("[%s] error in %s: %v", s.Name, s.exitFunc, err)
		}
	})
}

// sleepCtx sleeps for d or until ctx is cancelled, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
