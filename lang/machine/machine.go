package machine

import (
	"context"

	"github.com/mna/tickscript/lang/types"
)

// execute runs th's interpreter loop until it yields (YIELD or instruction
// budget exhaustion, spec.md §5's suspension points), the frame stack
// drops below startDepth (the nested-call return point used by
// CallFunction), or a runtime error is raised. It is the single shared
// inner routine `run`, `resume`, and `call_function` all funnel through,
// per spec.md §9's "run and resume share a single _execute inner routine
// guarded by is_yielded".
func (th *Thread) execute(ctx context.Context, startDepth int) (types.Value, error) {
	var (
		inFlightErr error
		lastResult  types.Value = types.None
	)

loop:
	for {
		if len(th.frames) == 0 || len(th.frames) < startDepth {
			break loop
		}

		if ctx.Err() != nil {
			inFlightErr = newErr(KindNativeError, 0, "thread cancelled: %v", ctx.Err())
			break loop
		}
		if th.cancelled.Load() {
			inFlightErr = newErr(KindNativeError, 0, "thread cancelled")
			break loop
		}

		if th.InstructionLimit > 0 && th.stepCount >= th.InstructionLimit {
			th.yielded = true
			return lastResult, nil
		}
		th.stepCount++

		fr := th.frames[len(th.frames)-1]
		chunk := fr.chunk(th.topChunk)
		if fr.ip >= len(chunk.Code) {
			res, done := th.finishFrame(types.None, startDepth)
			lastResult = res
			if done {
				break loop
			}
			continue loop
		}

		instr := chunk.Code[fr.ip]
		fr.ip++
		op := instr.Op
		line := chunk.Lines[fr.ip-1]

		switch op {
		case types.OpPushConst:
			th.push(chunk.Constants[instr.Operand])
		case types.OpPushTrue:
			th.push(types.Bool(true))
		case types.OpPushFalse:
			th.push(types.Bool(false))
		case types.OpPop:
			th.pop()

		case types.OpDefineGlobal:
			name := string(chunk.Constants[instr.Operand].(types.String))
			th.Globals[name] = th.pop()

		case types.OpGetGlobal:
			name := string(chunk.Constants[instr.Operand].(types.String))
			if v, ok := th.Globals[name]; ok {
				th.push(v)
			} else if fo, ok := th.Functions[name]; ok {
				th.push(&types.Function{Fn: fo})
			} else if v, ok := th.Predeclared[name]; ok {
				th.push(v)
			} else {
				inFlightErr = newErr(KindUndefinedName, line, "undefined variable %q", name)
				break loop
			}

		case types.OpSetGlobal:
			name := string(chunk.Constants[instr.Operand].(types.String))
			th.Globals[name] = th.peek()

		case types.OpSetGlobalPop:
			name := string(chunk.Constants[instr.Operand].(types.String))
			th.Globals[name] = th.pop()

		case types.OpGetLocal:
			th.push(th.stack[fr.stackStart+instr.Operand])

		case types.OpSetLocal:
			th.stack[fr.stackStart+instr.Operand] = th.peek()

		case types.OpSetLocalPop:
			th.stack[fr.stackStart+instr.Operand] = th.pop()

		case types.OpGetAttr:
			name := string(chunk.Constants[instr.Operand].(types.String))
			obj := th.pop()
			v, err := getAttr(obj, name)
			if err != nil {
				inFlightErr = wrapLine(err, line)
				break loop
			}
			th.push(v)

		case types.OpSetAttr:
			name := string(chunk.Constants[instr.Operand].(types.String))
			val := th.pop()
			obj := th.peek()
			if err := setAttr(obj, name, val); err != nil {
				inFlightErr = wrapLine(err, line)
				break loop
			}
			th.push(val)

		case types.OpSetAttrFast:
			name := string(chunk.Constants[instr.Operand].(types.String))
			val := th.pop()
			obj := th.pop()
			if err := setAttr(obj, name, val); err != nil {
				inFlightErr = wrapLine(err, line)
				break loop
			}

		case types.OpSetAttrPop:
			name := string(chunk.Constants[instr.Operand].(types.String))
			val := th.pop()
			obj := th.pop()
			if err := setAttr(obj, name, val); err != nil {
				inFlightErr = wrapLine(err, line)
				break loop
			}

		case types.OpAdd, types.OpSub, types.OpMul, types.OpDiv:
			y := th.pop()
			x := th.pop()
			res, err := arith(op, x, y)
			if err != nil {
				inFlightErr = wrapLine(err, line)
				break loop
			}
			th.push(res)

		case types.OpEqual:
			y := th.pop()
			x := th.pop()
			th.push(types.Bool(types.Equal(x, y)))

		case types.OpNotEqual:
			y := th.pop()
			x := th.pop()
			th.push(types.Bool(!types.Equal(x, y)))

		case types.OpGreater, types.OpGreaterEqual, types.OpLess, types.OpLessEqual:
			y := th.pop()
			x := th.pop()
			res, err := compare(op, x, y)
			if err != nil {
				inFlightErr = wrapLine(err, line)
				break loop
			}
			th.push(types.Bool(res))

		case types.OpNot:
			x := th.pop()
			th.push(types.Bool(!x.Truth()))

		case types.OpNegate:
			x := th.pop()
			n, ok := x.(types.Number)
			if !ok {
				inFlightErr = newErr(KindTypeError, line, "unsupported operand type for negation: %s", x.Type())
				break loop
			}
			th.push(-n)

		case types.OpJump, types.OpLoop:
			fr.ip = instr.Operand

		case types.OpJumpIfFalse:
			if !th.peek().Truth() {
				fr.ip = instr.Operand
			}

		case types.OpJumpIfTrue:
			if th.peek().Truth() {
				fr.ip = instr.Operand
			}

		case types.OpJumpIfFalsePop:
			if !th.pop().Truth() {
				fr.ip = instr.Operand
			}

		case types.OpJumpIfTruePop:
			if th.pop().Truth() {
				fr.ip = instr.Operand
			}

		case types.OpCall:
			if err := th.call(nil, instr.Operand, nil, line); err != nil {
				inFlightErr = err
				break loop
			}

		case types.OpCallKw:
			kwargs := make(map[string]types.Value, len(instr.Names))
			for i := len(instr.Names) - 1; i >= 0; i-- {
				kwargs[instr.Names[i]] = th.pop()
			}
			if err := th.call(nil, instr.Operand, kwargs, line); err != nil {
				inFlightErr = err
				break loop
			}

		case types.OpReturn:
			res := th.pop()
			out, done := th.finishFrame(res, startDepth)
			lastResult = out
			if done {
				break loop
			}

		case types.OpReturnNone:
			out, done := th.finishFrame(types.None, startDepth)
			lastResult = out
			if done {
				break loop
			}

		case types.OpYield:
			th.yielded = true
			return lastResult, nil

		case types.OpBuildList:
			n := instr.Operand
			elems := make([]types.Value, n)
			copy(elems, th.stack[len(th.stack)-n:])
			th.stack = th.stack[:len(th.stack)-n]
			th.push(types.NewList(elems))

		case types.OpBuildMap:
			n := instr.Operand
			m := types.NewMap(n / 2)
			entries := th.stack[len(th.stack)-n:]
			for i := 0; i+1 < len(entries); i += 2 {
				if err := m.Set(entries[i], entries[i+1]); err != nil {
					inFlightErr = wrapLine(err, line)
					break loop
				}
			}
			th.stack = th.stack[:len(th.stack)-n]
			th.push(m)

		case types.OpGetIter:
			it, err := getIter(th.pop())
			if err != nil {
				inFlightErr = wrapLine(err, line)
				break loop
			}
			th.push(it)

		case types.OpForIter:
			it := th.peek().(types.Iterator)
			if v, ok := it.Next(); ok {
				th.push(v)
			} else {
				th.pop()
				fr.ip = instr.Operand
			}

		case types.OpIndexGet:
			idx := th.pop()
			obj := th.pop()
			v, err := indexGet(obj, idx)
			if err != nil {
				inFlightErr = wrapLine(err, line)
				break loop
			}
			th.push(v)

		case types.OpIndexSet:
			idx := th.pop()
			obj := th.pop()
			val := th.pop()
			if err := indexSet(obj, idx, val); err != nil {
				inFlightErr = wrapLine(err, line)
				break loop
			}
			th.push(val)

		case types.OpIncGlobal:
			name := string(chunk.Constants[instr.Operand].(types.String))
			cur, ok := th.Globals[name]
			if !ok {
				inFlightErr = newErr(KindUndefinedName, line, "undefined variable %q", name)
				break loop
			}
			n, ok := cur.(types.Number)
			if !ok {
				inFlightErr = newErr(KindTypeError, line, "unsupported operand type for +: %s", cur.Type())
				break loop
			}
			th.Globals[name] = n + 1

		case types.OpAddGlobal:
			v := th.pop()
			name := string(chunk.Constants[instr.Operand].(types.String))
			cur, ok := th.Globals[name]
			if !ok {
				inFlightErr = newErr(KindUndefinedName, line, "undefined variable %q", name)
				break loop
			}
			res, err := arith(types.OpAdd, cur, v)
			if err != nil {
				inFlightErr = wrapLine(err, line)
				break loop
			}
			th.Globals[name] = res

		default:
			inFlightErr = newErr(KindTypeError, line, "unimplemented opcode %s", op)
			break loop
		}
	}

	if inFlightErr != nil {
		th.frames = th.frames[:startDepth]
		return nil, inFlightErr
	}
	return lastResult, nil
}

func (th *Thread) push(v types.Value) { th.stack = append(th.stack, v) }

func (th *Thread) pop() types.Value {
	v := th.stack[len(th.stack)-1]
	th.stack = th.stack[:len(th.stack)-1]
	return v
}

func (th *Thread) peek() types.Value { return th.stack[len(th.stack)-1] }

// call dispatches CALL/CALL_KW and CallFunction's direct entry point alike:
// fo is non-nil only for the CallFunction fast path where the callee is
// already known and is not itself on the stack; otherwise the callee sits
// on the stack beneath its argc positional arguments, per spec.md §4.4's
// call protocol.
func (th *Thread) call(fo *types.FunctionObject, argc int, kwargs map[string]types.Value, line int) error {
	if fo != nil {
		return th.callFunctionObject(fo, argc, kwargs)
	}

	funcIdx := len(th.stack) - argc - 1
	if funcIdx < 0 {
		return newErr(KindStackUnderflow, line, "stack underflow in call")
	}
	callee := th.stack[funcIdx]

	switch c := callee.(type) {
	case *types.Function:
		if err := th.callFunctionObject(c.Fn, argc, kwargs); err != nil {
			return wrapLine(err, line)
		}
		return nil
	case *types.Native:
		positional := make([]types.Value, argc)
		copy(positional, th.stack[funcIdx+1:])
		th.stack = th.stack[:funcIdx]
		res, err := c.Fn(positional, kwargs)
		if err != nil {
			return newErr(KindNativeError, line, "%v", err)
		}
		th.push(res)
		return nil
	default:
		return newErr(KindTypeError, line, "%s is not callable", callee.Type())
	}
}

// callFunctionObject implements spec.md §4.4's Call protocol steps 1-6. The
// callee and its positional arguments are expected at the top of the
// stack ([..., callee, arg0, ..., argN-1]); the callee slot is left in
// place beneath the new frame's locals so frame finalization can pop it
// (spec.md §4.4's "pop one more slot... if this frame was a function
// call").
func (th *Thread) callFunctionObject(fo *types.FunctionObject, argc int, kwargs map[string]types.Value) error {
	funcIdx := len(th.stack) - argc - 1
	if funcIdx < 0 {
		return newErr(KindStackUnderflow, 0, "stack underflow in call to %s", fo.Name)
	}
	positional := make([]types.Value, argc)
	copy(positional, th.stack[funcIdx+1:])
	th.stack = th.stack[:funcIdx+1] // keep the callee slot, drop the args

	locals := make([]types.Value, fo.LocalsCount)
	for i := range locals {
		locals[i] = types.None
	}

	provided := make(map[string]bool, fo.LocalsCount)
	n := argc
	if n > fo.Arity {
		n = fo.Arity
	}
	for i := 0; i < n; i++ {
		locals[i] = positional[i]
		provided[fo.LocalNames[i]] = true
	}

	extras := map[string]types.Value{}
	for name, v := range kwargs {
		idx := -1
		for i := 0; i < fo.Arity; i++ {
			if fo.LocalNames[i] == name {
				idx = i
				break
			}
		}
		if idx >= 0 {
			if provided[name] {
				return newErr(KindTypeError, 0, "%s() got multiple values for argument %q", fo.Name, name)
			}
			locals[idx] = v
			provided[name] = true
		} else if fo.KwargsParam != "" {
			extras[name] = v
		} else {
			return newErr(KindTypeError, 0, "%s() got an unexpected keyword argument %q", fo.Name, name)
		}
	}

	for i := 0; i < fo.Arity; i++ {
		name := fo.LocalNames[i]
		if provided[name] {
			continue
		}
		if def, ok := fo.Defaults[name]; ok {
			locals[i] = def
		} else {
			return newErr(KindTypeError, 0, "%s() missing required argument %q", fo.Name, name)
		}
	}

	if fo.KwargsParam != "" {
		m := types.NewMap(len(extras))
		for k, v := range extras {
			_ = m.Set(types.String(k), v)
		}
		// local_names orders arity params, then the kwargs param, then other
		// locals (spec.md §3's FunctionObject), so its slot is exactly Arity.
		locals[fo.Arity] = m
	}

	stackStart := len(th.stack)
	th.stack = append(th.stack, locals...)
	th.frames = append(th.frames, &frame{function: fo, ip: 0, stackStart: stackStart})
	return nil
}

// finishFrame implements spec.md §4.4's frame finalization: pop the frame,
// truncate the value stack back to its locals region, drop the callee
// slot beneath it for a function call, and either hand the return value
// to the caller (pushing it back) or, if the popped frame was the last
// one of this _execute invocation, return it directly.
func (th *Thread) finishFrame(res types.Value, startDepth int) (types.Value, bool) {
	fr := th.frames[len(th.frames)-1]
	th.frames = th.frames[:len(th.frames)-1]

	if len(th.stack) > fr.stackStart {
		th.stack = th.stack[:fr.stackStart]
	}
	if fr.function != nil && len(th.stack) > 0 {
		th.stack = th.stack[:len(th.stack)-1]
	}

	if len(th.frames) < startDepth {
		return res, true
	}
	if len(th.frames) > 0 {
		th.push(res)
	}
	return res, false
}

func wrapLine(err error, line int) error {
	if re, ok := err.(*RuntimeError); ok {
		if re.Line == 0 {
			re.Line = line
		}
		return re
	}
	return &RuntimeError{Kind: KindNativeError, Line: line, Msg: err.Error()}
}
