package cache

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/mna/tickscript/lang/types"
)

type decoder struct {
	r   *bufio.Reader
	err error
}

func newDecoder(r io.Reader) *decoder { return &decoder{r: bufio.NewReader(r)} }

func (d *decoder) fail(err error) {
	if d.err == nil && err != nil {
		d.err = err
	}
}

func (d *decoder) readByte() byte {
	if d.err != nil {
		return 0
	}
	b, err := d.r.ReadByte()
	d.fail(err)
	return b
}

func (d *decoder) readUint32() uint32 {
	if d.err != nil {
		return 0
	}
	var buf [4]byte
	_, err := io.ReadFull(d.r, buf[:])
	d.fail(err)
	return binary.LittleEndian.Uint32(buf[:])
}

func (d *decoder) readInt() int { return int(int32(d.readUint32())) }

func (d *decoder) readFloat64() float64 {
	if d.err != nil {
		return 0
	}
	var buf [8]byte
	_, err := io.ReadFull(d.r, buf[:])
	d.fail(err)
	return math.Float64frombits(binary.LittleEndian.Uint64(buf[:]))
}

func (d *decoder) readString() string {
	n := d.readUint32()
	if d.err != nil {
		return ""
	}
	buf := make([]byte, n)
	_, err := io.ReadFull(d.r, buf)
	d.fail(err)
	return string(buf)
}

func (d *decoder) readStrings() []string {
	n := d.readUint32()
	if n == 0 {
		return nil
	}
	ss := make([]string, n)
	for i := range ss {
		ss[i] = d.readString()
	}
	return ss
}

func (d *decoder) readValue() types.Value {
	if d.err != nil {
		return types.None
	}
	switch d.readByte() {
	case tagNull:
		return types.None
	case tagBool:
		return types.Bool(d.readByte() != 0)
	case tagNumber:
		return types.Number(d.readFloat64())
	case tagString:
		return types.String(d.readString())
	case tagList:
		n := d.readUint32()
		elems := make([]types.Value, n)
		for i := range elems {
			elems[i] = d.readValue()
		}
		return types.NewList(elems)
	case tagMap:
		n := d.readUint32()
		m := types.NewMap(int(n))
		for i := uint32(0); i < n; i++ {
			k := d.readValue()
			v := d.readValue()
			if d.err == nil {
				d.fail(m.Set(k, v))
			}
		}
		return m
	default:
		d.fail(fmt.Errorf("cache: corrupt value tag"))
		return types.None
	}
}

func (d *decoder) readInstruction() types.Instruction {
	op := types.OpCode(d.readByte())
	operand := d.readInt()
	names := d.readStrings()
	return types.Instruction{Op: op, Operand: operand, Names: names}
}

func (d *decoder) readChunk() *types.Chunk {
	c := &types.Chunk{Metadata: map[string]types.Value{}}
	n := d.readUint32()
	c.Code = make([]types.Instruction, n)
	for i := range c.Code {
		c.Code[i] = d.readInstruction()
	}
	n = d.readUint32()
	c.Constants = make([]types.Value, n)
	for i := range c.Constants {
		c.Constants[i] = d.readValue()
	}
	n = d.readUint32()
	c.Lines = make([]int, n)
	for i := range c.Lines {
		c.Lines[i] = d.readInt()
	}
	n = d.readUint32()
	for i := uint32(0); i < n; i++ {
		k := d.readString()
		v := d.readValue()
		c.Metadata[k] = v
	}
	return c
}

func (d *decoder) readFunction() *types.FunctionObject {
	fo := &types.FunctionObject{}
	fo.Name = d.readString()
	fo.Arity = d.readInt()
	fo.LocalsCount = d.readInt()
	fo.LocalNames = d.readStrings()
	n := d.readUint32()
	if n > 0 {
		fo.Defaults = make(map[string]types.Value, n)
		for i := uint32(0); i < n; i++ {
			k := d.readString()
			v := d.readValue()
			fo.Defaults[k] = v
		}
	}
	fo.KwargsParam = d.readString()
	fo.Chunk = d.readChunk()
	return fo
}

// decodeProgram reads a program previously written by encodeProgram,
// rejecting a mismatched magic or an envelope version newer than this
// build understands.
func decodeProgram(r io.Reader) (*types.Chunk, map[string]*types.FunctionObject, error) {
	d := newDecoder(r)
	magic := make([]byte, len(formatMagic))
	if _, err := io.ReadFull(d.r, magic); err != nil {
		return nil, nil, err
	}
	if string(magic) != formatMagic {
		return nil, nil, fmt.Errorf("cache: not a tickscript bytecode cache file")
	}
	version := d.readByte()
	if d.err != nil {
		return nil, nil, d.err
	}
	if version > formatVersion {
		return nil, nil, fmt.Errorf("cache: unsupported cache format version %d", version)
	}

	top := d.readChunk()
	n := d.readUint32()
	functions := make(map[string]*types.FunctionObject, n)
	for i := uint32(0); i < n; i++ {
		name := d.readString()
		functions[name] = d.readFunction()
	}
	if d.err != nil {
		return nil, nil, d.err
	}
	return top, functions, nil
}
