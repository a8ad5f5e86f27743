package compiler

import (
	"encoding/json"
	"fmt"

	"github.com/mna/tickscript/lang/ast"
	"github.com/mna/tickscript/lang/types"
)

// applyMeta strict-JSON decodes every `@meta { ... }` block the parser
// collected and merges their keys into chunk.Metadata, later blocks
// overriding earlier ones, per SPEC_FULL.md's Open Question resolution
// that `@meta` content is parsed as strict JSON by the compiler rather
// than by the scanner or parser.
func (c *compiler) applyMeta(chunk *types.Chunk, blocks []*ast.MetaBlock) error {
	for _, b := range blocks {
		var raw map[string]any
		if err := json.Unmarshal([]byte(b.Raw), &raw); err != nil {
			return &Error{Pos: b.Pos, Msg: fmt.Sprintf("invalid @meta JSON: %v", err)}
		}
		for k, v := range raw {
			chunk.Metadata[k] = jsonToValue(v)
		}
	}
	return nil
}

func jsonToValue(v any) types.Value {
	switch x := v.(type) {
	case nil:
		return types.None
	case bool:
		return types.Bool(x)
	case float64:
		return types.Number(x)
	case string:
		return types.String(x)
	case []any:
		elems := make([]types.Value, len(x))
		for i, e := range x {
			elems[i] = jsonToValue(e)
		}
		return types.NewList(elems)
	case map[string]any:
		m := types.NewMap(len(x))
		for k, e := range x {
			_ = m.Set(types.String(k), jsonToValue(e))
		}
		return m
	default:
		return types.None
	}
}
