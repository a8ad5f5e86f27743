package stdlib

import (
	"time"

	"github.com/mna/tickscript/lang/types"
)

// Time is the host_object ported from the pure, host-independent half of
// original_source/runtime/stdlib/time_mod.py's TimeWrapper: time/time_str/
// time_ms/perfcount. `sleep` is deliberately not ported here: the
// original's `sleep` blocks on `runtime_instance.process_events()` to
// keep draining the event queue while waiting (spec.md §5's suspension
// points), which only the `script.Script` orchestration loop can do; it is
// bound as a Predeclared entry by that package instead, not by stdlib.
type Time struct {
	start time.Time
}

var _ types.HostObject = (*Time)(nil)

// NewTime returns a Time host object whose perfcount() origin is the
// moment of construction, matching time.perf_counter()'s monotonic-since-
// start-of-process semantics closely enough for script-relative timing.
func NewTime() *Time { return &Time{start: time.Now()} }

func (t *Time) Type() string   { return "host" }
func (t *Time) Truth() bool    { return true }
func (t *Time) String() string { return "<module time>" }

var timeMethods = map[string]bool{
	"time": true, "time_str": true, "time_ms": true, "perfcount": true,
}

func (t *Time) GetAttr(name string) (types.Value, error) {
	if timeMethods[name] {
		return bindMethod(t, name), nil
	}
	return nil, &types.NoSuchAttrError{Type: "host", Name: name}
}

func (t *Time) SetAttr(name string, _ types.Value) error {
	return &types.NoSuchAttrError{Type: "host", Name: name}
}

func (t *Time) CallAttr(name string, _ []types.Value, _ map[string]types.Value) (types.Value, error) {
	switch name {
	case "time":
		return types.Number(float64(time.Now().UnixNano()) / 1e9), nil
	case "time_str":
		return types.String(time.Now().Format("2006-01-02 15:04:05")), nil
	case "time_ms":
		return types.Number(time.Now().UnixMilli()), nil
	case "perfcount":
		return types.Number(time.Since(t.start).Seconds()), nil
	default:
		return nil, &types.NoSuchAttrError{Type: "host", Name: name}
	}
}
