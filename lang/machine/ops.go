package machine

import "github.com/mna/tickscript/lang/types"

// arith implements ADD/SUB/MUL/DIV. ADD additionally concatenates two
// strings or two lists (the generic `+` an untyped host language gives
// for free, per original_source's dynamic value model); SUB/MUL/DIV are
// numeric only. Division by zero is an ArithmeticError rather than an
// infinity/NaN result.
func arith(op types.OpCode, x, y types.Value) (types.Value, error) {
	if op == types.OpAdd {
		switch xv := x.(type) {
		case types.String:
			if yv, ok := y.(types.String); ok {
				return xv + yv, nil
			}
		case *types.List:
			if yv, ok := y.(*types.List); ok {
				elems := make([]types.Value, 0, len(xv.Elems)+len(yv.Elems))
				elems = append(elems, xv.Elems...)
				elems = append(elems, yv.Elems...)
				return types.NewList(elems), nil
			}
		}
	}

	xn, ok := x.(types.Number)
	if !ok {
		return nil, newErr(KindArithmetic, 0, "unsupported operand type for %s: %s", op, x.Type())
	}
	yn, ok := y.(types.Number)
	if !ok {
		return nil, newErr(KindArithmetic, 0, "unsupported operand type for %s: %s", op, y.Type())
	}

	switch op {
	case types.OpAdd:
		return xn + yn, nil
	case types.OpSub:
		return xn - yn, nil
	case types.OpMul:
		return xn * yn, nil
	case types.OpDiv:
		if yn == 0 {
			return nil, newErr(KindArithmetic, 0, "division by zero")
		}
		return xn / yn, nil
	default:
		return nil, newErr(KindArithmetic, 0, "unsupported arithmetic opcode %s", op)
	}
}

// compare implements GREATER/GREATER_EQUAL/LESS/LESS_EQUAL. Comparing
// against null always yields false rather than a type error, mirroring
// vm.py's None-check short circuit; otherwise both operands must be
// numbers or both strings.
func compare(op types.OpCode, x, y types.Value) (bool, error) {
	if _, ok := x.(types.Null); ok {
		return false, nil
	}
	if _, ok := y.(types.Null); ok {
		return false, nil
	}

	switch xv := x.(type) {
	case types.Number:
		yv, ok := y.(types.Number)
		if !ok {
			return false, newErr(KindTypeError, 0, "cannot compare number with %s", y.Type())
		}
		return numCompare(op, float64(xv), float64(yv)), nil
	case types.String:
		yv, ok := y.(types.String)
		if !ok {
			return false, newErr(KindTypeError, 0, "cannot compare string with %s", y.Type())
		}
		return numCompare(op, strCmp(string(xv), string(yv)), 0), nil
	default:
		return false, newErr(KindTypeError, 0, "%s is not comparable", x.Type())
	}
}

func strCmp(a, b string) float64 {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func numCompare(op types.OpCode, x, y float64) bool {
	switch op {
	case types.OpGreater:
		return x > y
	case types.OpGreaterEqual:
		return x >= y
	case types.OpLess:
		return x < y
	case types.OpLessEqual:
		return x <= y
	default:
		return false
	}
}

// getAttr/setAttr dispatch to a host_object's attribute protocol; every
// other value type rejects attribute access outright, per SPEC_FULL.md's
// Open Question resolution of spec.md §9's "host decides whether
// attributes are callable or data" (the VM itself only ever sees data
// attributes or binds a method value; a bare GET_ATTR/SET_ATTR on a
// non-host_object is always an AttributeError).
func getAttr(obj types.Value, name string) (types.Value, error) {
	ho, ok := obj.(types.HostObject)
	if !ok {
		return nil, &RuntimeError{Kind: KindAttributeErr, Msg: (&types.AttrError{Type: obj.Type(), Name: name}).Error()}
	}
	v, err := ho.GetAttr(name)
	if err != nil {
		return nil, &RuntimeError{Kind: KindAttributeErr, Msg: err.Error()}
	}
	return v, nil
}

func setAttr(obj types.Value, name string, v types.Value) error {
	ho, ok := obj.(types.HostObject)
	if !ok {
		return &RuntimeError{Kind: KindAttributeErr, Msg: (&types.AttrError{Type: obj.Type(), Name: name}).Error()}
	}
	if err := ho.SetAttr(name, v); err != nil {
		return &RuntimeError{Kind: KindAttributeErr, Msg: err.Error()}
	}
	return nil
}

// getIter implements GET_ITER: lists iterate their elements in order, maps
// iterate their keys, per spec.md §4.4.
func getIter(v types.Value) (types.Iterator, error) {
	switch vv := v.(type) {
	case *types.List:
		return types.NewListIterator(vv), nil
	case *types.Map:
		return types.NewMapKeysIterator(vv), nil
	case types.Iterator:
		return vv, nil
	default:
		return nil, newErr(KindTypeError, 0, "%s is not iterable", v.Type())
	}
}

// indexGet/indexSet implement INDEX_GET/INDEX_SET: numeric indices on a
// list are truncated toward zero (spec.md §4.3's table note); map
// indexing uses the value directly as a key.
func indexGet(obj, idx types.Value) (types.Value, error) {
	switch ov := obj.(type) {
	case *types.List:
		n, ok := idx.(types.Number)
		if !ok {
			return nil, newErr(KindTypeError, 0, "list index must be a number, got %s", idx.Type())
		}
		v, err := ov.Index(n.Int())
		if err != nil {
			return nil, &RuntimeError{Kind: KindIndexError, Msg: err.Error()}
		}
		return v, nil
	case *types.Map:
		v, found, err := ov.Get(idx)
		if err != nil {
			return nil, &RuntimeError{Kind: KindTypeError, Msg: err.Error()}
		}
		if !found {
			return nil, newErr(KindIndexError, 0, "key %s not found", idx.String())
		}
		return v, nil
	case types.String:
		n, ok := idx.(types.Number)
		if !ok {
			return nil, newErr(KindTypeError, 0, "string index must be a number, got %s", idx.Type())
		}
		runes := []rune(string(ov))
		i := n.Int()
		if i < 0 || i >= len(runes) {
			return nil, newErr(KindIndexError, 0, "string index out of range")
		}
		return types.String(runes[i]), nil
	default:
		return nil, newErr(KindTypeError, 0, "%s is not indexable", obj.Type())
	}
}

func indexSet(obj, idx, val types.Value) error {
	switch ov := obj.(type) {
	case *types.List:
		n, ok := idx.(types.Number)
		if !ok {
			return newErr(KindTypeError, 0, "list index must be a number, got %s", idx.Type())
		}
		if err := ov.SetIndex(n.Int(), val); err != nil {
			return &RuntimeError{Kind: KindIndexError, Msg: err.Error()}
		}
		return nil
	case *types.Map:
		if err := ov.Set(idx, val); err != nil {
			return &RuntimeError{Kind: KindTypeError, Msg: err.Error()}
		}
		return nil
	default:
		return newErr(KindTypeError, 0, "%s does not support item assignment", obj.Type())
	}
}
