package bytecode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Write encodes a CompiledProgram to the little-endian wire format spec.md
// §6 defines: instruction count + records, constant count + records,
// string count + length-prefixed bytes. Opcode numeric values are the
// OpCode enum's declaration order, so they stay stable across builds
// (§4.6).
//
// There is no library in the example corpus for this: no repo serializes
// a custom binary format, so encoding/binary — the standard tool for a
// fixed little-endian record layout — is used directly rather than
// reaching for a general-purpose codec like gob or a schema-driven one
// like protobuf, neither of which would reproduce this exact on-wire
// layout.
func Write(w io.Writer, program *CompiledProgram) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(program.Instructions))); err != nil {
		return err
	}
	for _, inst := range program.Instructions {
		if err := binary.Write(w, binary.LittleEndian, uint16(inst.Op)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, inst.Operand); err != nil {
			return err
		}
	}

	if err := binary.Write(w, binary.LittleEndian, uint32(len(program.Constants))); err != nil {
		return err
	}
	for _, k := range program.Constants {
		if err := writeConstant(w, k); err != nil {
			return err
		}
	}

	if err := binary.Write(w, binary.LittleEndian, uint32(len(program.Strings))); err != nil {
		return err
	}
	for _, s := range program.Strings {
		if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
			return err
		}
		if _, err := io.WriteString(w, s); err != nil {
			return err
		}
	}
	return nil
}

func writeConstant(w io.Writer, k Constant) error {
	if err := binary.Write(w, binary.LittleEndian, uint8(k.Tag)); err != nil {
		return err
	}
	switch k.Tag {
	case ConstInt:
		return binary.Write(w, binary.LittleEndian, k.IntVal)
	case ConstFloat:
		return binary.Write(w, binary.LittleEndian, k.FloatVal)
	case ConstDouble:
		return binary.Write(w, binary.LittleEndian, k.DoubleVal)
	case ConstBool:
		var b uint8
		if k.BoolVal {
			b = 1
		}
		return binary.Write(w, binary.LittleEndian, b)
	case ConstStringID:
		return binary.Write(w, binary.LittleEndian, k.StringID)
	default:
		return fmt.Errorf("unknown constant tag %d", k.Tag)
	}
}

// Read decodes a CompiledProgram previously written by Write.
func Read(r io.Reader) (*CompiledProgram, error) {
	program := &CompiledProgram{}

	var instCount uint32
	if err := binary.Read(r, binary.LittleEndian, &instCount); err != nil {
		return nil, fmt.Errorf("reading instruction count: %w", err)
	}
	program.Instructions = make([]Instruction, instCount)
	for i := range program.Instructions {
		var op uint16
		if err := binary.Read(r, binary.LittleEndian, &op); err != nil {
			return nil, fmt.Errorf("reading instruction %d opcode: %w", i, err)
		}
		var operand int32
		if err := binary.Read(r, binary.LittleEndian, &operand); err != nil {
			return nil, fmt.Errorf("reading instruction %d operand: %w", i, err)
		}
		program.Instructions[i] = Instruction{Op: OpCode(op), Operand: operand}
	}

	var constCount uint32
	if err := binary.Read(r, binary.LittleEndian, &constCount); err != nil {
		return nil, fmt.Errorf("reading constant count: %w", err)
	}
	program.Constants = make([]Constant, constCount)
	for i := range program.Constants {
		k, err := readConstant(r)
		if err != nil {
			return nil, fmt.Errorf("reading constant %d: %w", i, err)
		}
		program.Constants[i] = k
	}

	var stringCount uint32
	if err := binary.Read(r, binary.LittleEndian, &stringCount); err != nil {
		return nil, fmt.Errorf("reading string count: %w", err)
	}
	program.Strings = make([]string, stringCount)
	for i := range program.Strings {
		var length uint32
		if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
			return nil, fmt.Errorf("reading string %d length: %w", i, err)
		}
		buf := make([]byte, length)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("reading string %d bytes: %w", i, err)
		}
		program.Strings[i] = string(buf)
	}

	return program, nil
}

func readConstant(r io.Reader) (Constant, error) {
	var tag uint8
	if err := binary.Read(r, binary.LittleEndian, &tag); err != nil {
		return Constant{}, err
	}
	k := Constant{Tag: ConstantTag(tag)}
	switch k.Tag {
	case ConstInt:
		if err := binary.Read(r, binary.LittleEndian, &k.IntVal); err != nil {
			return Constant{}, err
		}
	case ConstFloat:
		if err := binary.Read(r, binary.LittleEndian, &k.FloatVal); err != nil {
			return Constant{}, err
		}
	case ConstDouble:
		if err := binary.Read(r, binary.LittleEndian, &k.DoubleVal); err != nil {
			return Constant{}, err
		}
	case ConstBool:
		var b uint8
		if err := binary.Read(r, binary.LittleEndian, &b); err != nil {
			return Constant{}, err
		}
		k.BoolVal = b != 0
	case ConstStringID:
		if err := binary.Read(r, binary.LittleEndian, &k.StringID); err != nil {
			return Constant{}, err
		}
	default:
		return Constant{}, fmt.Errorf("unknown constant tag %d", tag)
	}
	return k, nil
}

// Bytes serializes program to an in-memory buffer, for tests and for the
// CLI's -o flag.
func Bytes(program *CompiledProgram) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, program); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
