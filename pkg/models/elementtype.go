package models

import (
	"fmt"
	"strings"
)

// ElementType is the storage type tag found in Denso table records.
// Values are the native tags as they appear in the ROM.
type ElementType int32

const (
	Float32   ElementType = 0x00
	UInt8     ElementType = 0x04
	UInt16    ElementType = 0x08
	Int8      ElementType = 0x0C
	Int16     ElementType = 0x10
	UInt32    ElementType = 0x14
	Undefined ElementType = -1
)

// ElementTypes lists all valid element types.
var ElementTypes = []ElementType{Float32, UInt8, Int8, UInt16, Int16, UInt32}

// Width returns the element size in bytes, 0 if the type is not valid.
func (t ElementType) Width() int {
	switch t {
	case Float32, UInt32:
		return 4
	case UInt8, Int8:
		return 1
	case UInt16, Int16:
		return 2
	default:
		return 0
	}
}

// IsValid reports whether t is one of the known element types.
func (t ElementType) IsValid() bool {
	return t.Width() > 0
}

// String returns the RomRaider storage type name.
func (t ElementType) String() string {
	switch t {
	case Float32:
		return "float"
	case UInt8:
		return "uint8"
	case UInt16:
		return "uint16"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case UInt32:
		return "uint32"
	default:
		return "undefined"
	}
}

// ParseElementType parses a storage type name as produced by String.
func ParseElementType(s string) (ElementType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "float32" {
		return Float32, nil
	}
	for _, t := range ElementTypes {
		if t.String() == name {
			return t, nil
		}
	}
	return Undefined, fmt.Errorf("unknown element type: %q", s)
}
