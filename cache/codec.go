// Package cache implements the bytecode cache spec.md §6 describes: a
// compiled program, keyed by a digest of its source text, persisted to
// disk so a host can skip recompilation on an unchanged script. The
// on-disk envelope format and its explicit typed write*/read* codec are
// grounded on MongooseMoo/barn's db/writer.go and db/reader.go, which
// serialize a structured in-memory object graph the same shape of way:
// one typed method per primitive, composed bottom-up into the larger
// structures. Get/Set/Cleanup semantics and the source-digest keying are
// grounded on original_source/services/cache_manager.py's BytecodeCache.
package cache

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/mna/tickscript/lang/types"
)

// formatMagic and formatVersion identify the envelope; Get rejects a file
// with a mismatched magic or a newer version than this build understands.
const (
	formatMagic   = "TSCC"
	formatVersion = 1
)

const (
	tagNull byte = iota
	tagBool
	tagNumber
	tagString
	tagList
	tagMap
)

type encoder struct {
	w   *bufio.Writer
	err error
}

func newEncoder(w io.Writer) *encoder { return &encoder{w: bufio.NewWriter(w)} }

func (e *encoder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *encoder) writeByte(b byte) {
	if e.err != nil {
		return
	}
	e.fail(e.w.WriteByte(b))
}

func (e *encoder) writeUint32(v uint32) {
	if e.err != nil {
		return
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := e.w.Write(buf[:])
	e.fail(err)
}

func (e *encoder) writeInt(v int) { e.writeUint32(uint32(int32(v))) }

func (e *encoder) writeFloat64(v float64) {
	if e.err != nil {
		return
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	_, err := e.w.Write(buf[:])
	e.fail(err)
}

func (e *encoder) writeString(s string) {
	if e.err != nil {
		return
	}
	e.writeUint32(uint32(len(s)))
	if e.err != nil {
		return
	}
	_, err := e.w.WriteString(s)
	e.fail(err)
}

func (e *encoder) writeStrings(ss []string) {
	e.writeUint32(uint32(len(ss)))
	for _, s := range ss {
		e.writeString(s)
	}
}

func (e *encoder) writeValue(v types.Value) {
	switch vv := v.(type) {
	case types.Null:
		e.writeByte(tagNull)
	case types.Bool:
		e.writeByte(tagBool)
		if vv {
			e.writeByte(1)
		} else {
			e.writeByte(0)
		}
	case types.Number:
		e.writeByte(tagNumber)
		e.writeFloat64(float64(vv))
	case types.String:
		e.writeByte(tagString)
		e.writeString(string(vv))
	case *types.List:
		e.writeByte(tagList)
		e.writeUint32(uint32(len(vv.Elems)))
		for _, el := range vv.Elems {
			e.writeValue(el)
		}
	case *types.Map:
		e.writeByte(tagMap)
		keys := vv.Keys()
		e.writeUint32(uint32(len(keys)))
		for _, k := range keys {
			val, _, _ := vv.Get(k)
			e.writeValue(k)
			e.writeValue(val)
		}
	default:
		e.fail(fmt.Errorf("cache: value of type %s is not cacheable", v.Type()))
	}
}

func (e *encoder) writeInstruction(in types.Instruction) {
	e.writeByte(byte(in.Op))
	e.writeInt(in.Operand)
	e.writeStrings(in.Names)
}

func (e *encoder) writeChunk(c *types.Chunk) {
	e.writeUint32(uint32(len(c.Code)))
	for _, in := range c.Code {
		e.writeInstruction(in)
	}
	e.writeUint32(uint32(len(c.Constants)))
	for _, v := range c.Constants {
		e.writeValue(v)
	}
	e.writeUint32(uint32(len(c.Lines)))
	for _, ln := range c.Lines {
		e.writeInt(ln)
	}
	e.writeUint32(uint32(len(c.Metadata)))
	for k, v := range c.Metadata {
		e.writeString(k)
		e.writeValue(v)
	}
}

func (e *encoder) writeFunction(fo *types.FunctionObject) {
	e.writeString(fo.Name)
	e.writeInt(fo.Arity)
	e.writeInt(fo.LocalsCount)
	e.writeStrings(fo.LocalNames)
	e.writeUint32(uint32(len(fo.Defaults)))
	for k, v := range fo.Defaults {
		e.writeString(k)
		e.writeValue(v)
	}
	e.writeString(fo.KwargsParam)
	e.writeChunk(fo.Chunk)
}

// encodeProgram writes top and functions to w in the cache envelope
// format, returning the first encoding or flush error encountered.
func encodeProgram(w io.Writer, top *types.Chunk, functions map[string]*types.FunctionObject) error {
	e := newEncoder(w)
	if _, err := e.w.WriteString(formatMagic); err != nil {
		return err
	}
	e.writeByte(formatVersion)
	e.writeChunk(top)
	e.writeUint32(uint32(len(functions)))
	for name, fo := range functions {
		e.writeString(name)
		e.writeFunction(fo)
	}
	if e.err != nil {
		return e.err
	}
	return e.w.Flush()
}
