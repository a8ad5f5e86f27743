package machine

import "github.com/mna/tickscript/lang/types"

// frame is one call-frame record: spec.md §3's CallFrame. function is nil
// for the top-level frame. stackStart is the base index into the thread's
// shared value stack where this frame's locals begin, and where the
// function value itself sits (slot stackStart-1) for the duration of the
// call, per spec.md §4.4's frame finalization rule.
type frame struct {
	function   *types.FunctionObject
	ip         int
	stackStart int
}

func (fr *frame) chunk(top *types.Chunk) *types.Chunk {
	if fr.function != nil {
		return fr.function.Chunk
	}
	return top
}

// line returns the source line of the instruction this frame just
// executed, spec.md §4.4's "Line attribution": chunk.lines[frame.ip-1].
func (fr *frame) line(top *types.Chunk) int {
	c := fr.chunk(top)
	idx := fr.ip - 1
	if idx < 0 || idx >= len(c.Lines) {
		return 0
	}
	return c.Lines[idx]
}
