package machine

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/mna/tickscript/lang/types"
)

// DefaultInstructionLimit is the per-slice instruction budget spec.md §6
// assigns when no `@meta` override is present.
const DefaultInstructionLimit = 1000

// Thread is one running script instance: spec.md §3's VM state (value
// stack, frame stack, globals, functions) plus the I/O abstractions and
// cancellation plumbing a host needs to drive it.
type Thread struct {
	// Name is an optional name for the thread, used in error messages.
	Name string

	// Stdout and Stderr are the standard I/O abstractions native callables
	// such as print() write to. If nil, os.Stdout/os.Stderr are used.
	Stdout io.Writer
	Stderr io.Writer

	// Globals holds host-supplied bindings and top-level `let` declarations,
	// spec.md §3's `globals`.
	Globals map[string]types.Value

	// Functions is the flat table of user-defined functions collected at
	// compile time, spec.md §3's `functions`.
	Functions map[string]*types.FunctionObject

	// Predeclared holds host-supplied bindings (stdlib modules, native
	// callables) available to every script without a `let`, the same role
	// nenuphar/lang/machine's Thread.Predeclared plays: GET_GLOBAL falls
	// back to it after Globals and Functions, and a script may shadow an
	// entry with its own `let`/`set` since those only ever write Globals.
	Predeclared map[string]types.Value

	// InstructionLimit bounds the number of instructions executed within one
	// Run/Resume/CallFunction slice before the thread yields. A `@meta`
	// `instruction_limit` or `no_limit` key overrides it once Load is
	// called. A zero value still in place at the first Load, Run, Resume or
	// CallFunction is replaced by DefaultInstructionLimit; after that (for
	// example once `no_limit` has set it to 0), or when negative, a value
	// <= 0 means no limit.
	InstructionLimit int

	ctx       context.Context
	ctxCancel func()
	cancelled atomic.Bool

	stdout io.Writer
	stderr io.Writer

	topChunk  *types.Chunk
	stack     []types.Value
	frames    []*frame
	stepCount int
	yielded   bool

	// limitSet tracks whether InstructionLimit has already received its
	// default-if-unset treatment, so a later explicit 0 (spec.md §6's
	// `no_limit`, meaning unlimited) isn't mistaken for "never configured"
	// and reset back to DefaultInstructionLimit on the next Run/Resume.
	limitSet bool
}

// Load installs the compiled program, applying any `@meta` VM-level
// configuration (spec.md §6's `instruction_limit`/`no_limit`), and resets
// the thread to a fresh top-level frame ready for Run.
func (th *Thread) Load(top *types.Chunk, functions map[string]*types.FunctionObject) {
	th.init()
	th.topChunk = top
	for name, fo := range functions {
		th.Functions[name] = fo
	}
	if v, ok := top.Metadata["no_limit"]; ok && v.Truth() {
		th.InstructionLimit = 0
	} else if v, ok := top.Metadata["instruction_limit"]; ok {
		if n, ok := v.(types.Number); ok {
			if n.Int() < 0 {
				th.InstructionLimit = 0
			} else {
				th.InstructionLimit = n.Int()
			}
		}
	}
	th.stack = th.stack[:0]
	th.frames = []*frame{{function: nil, ip: 0, stackStart: 0}}
	th.yielded = false
}

func (th *Thread) init() {
	if th.Globals == nil {
		th.Globals = map[string]types.Value{}
	}
	if th.Functions == nil {
		th.Functions = map[string]*types.FunctionObject{}
	}
	if th.Predeclared == nil {
		th.Predeclared = map[string]types.Value{}
	}
	if !th.limitSet {
		if th.InstructionLimit == 0 {
			th.InstructionLimit = DefaultInstructionLimit
		}
		th.limitSet = true
	}
	if th.Stdout != nil {
		th.stdout = th.Stdout
	} else {
		th.stdout = os.Stdout
	}
	if th.Stderr != nil {
		th.stderr = th.Stderr
	} else {
		th.stderr = os.Stderr
	}
	if th.ctx == nil {
		th.ctx = context.Background()
		th.ctxCancel = func() {}
	}
}

// IsYielded reports whether the thread is currently suspended (by YIELD or
// by instruction-budget exhaustion), spec.md §3's `is_yielded`.
func (th *Thread) IsYielded() bool { return th.yielded }

// Cancel signals should_exit to the thread; the interpreter loop checks it
// before every instruction it executes.
func (th *Thread) Cancel() { th.cancelled.Store(true) }

// Run begins executing the loaded top-level chunk from offset 0.
func (th *Thread) Run(ctx context.Context) (types.Value, error) {
	th.init()
	if th.topChunk == nil {
		return nil, fmt.Errorf("machine: thread %s has no chunk loaded", th.Name)
	}
	th.stepCount = 0
	return th.execute(ctx, 0)
}

// Resume continues a suspended thread from its preserved frame and value
// stacks, clearing is_yielded and resetting the instruction counter.
func (th *Thread) Resume(ctx context.Context) (types.Value, error) {
	th.init()
	if !th.yielded {
		return nil, fmt.Errorf("machine: thread %s is not suspended", th.Name)
	}
	th.yielded = false
	th.stepCount = 0
	return th.execute(ctx, 0)
}

// CallFunction invokes a named user function directly, as a host entry
// point (spec.md §4.4's "used by call_function and run"), running it to
// completion or until it yields. The thread must not already have frames
// above the top level in progress.
func (th *Thread) CallFunction(ctx context.Context, name string, args ...types.Value) (types.Value, error) {
	th.init()
	fo, ok := th.Functions[name]
	if !ok {
		return nil, newErr(KindUndefinedName, 0, "undefined function %q", name)
	}
	th.stack = append(th.stack, &types.Function{Fn: fo})
	th.stack = append(th.stack, args...)
	if err := th.call(fo, len(args), nil, 0); err != nil {
		return nil, err
	}
	startDepth := len(th.frames)
	th.stepCount = 0
	return th.execute(ctx, startDepth)
}
