package tools

import (
	"github.com/effective-security/adk/pkg/schema"
)

// Kind is the declared type of a tool parameter
type Kind int

// Parameter kinds
const (
	// KindObject is decoded structurally from any JSON value
	KindObject Kind = iota
	KindInt32
	KindInt64
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindString
	KindBool
	// KindRunContext marks the leading context parameter,
	// it is not part of the schema and is not extracted from arguments
	KindRunContext
)

var kindNames = map[Kind]string{
	KindObject:     "object",
	KindInt32:      "int32",
	KindInt64:      "int64",
	KindUint32:     "uint32",
	KindUint64:     "uint64",
	KindFloat32:    "float32",
	KindFloat64:    "float64",
	KindString:     "string",
	KindBool:       "bool",
	KindRunContext: "context",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "object"
}

// JSONType returns JSON Schema type of the kind
func (k Kind) JSONType() string {
	switch k {
	case KindInt32, KindInt64, KindUint32, KindUint64, KindFloat32, KindFloat64:
		return schema.TypeNumber
	case KindString:
		return schema.TypeString
	case KindBool:
		return schema.TypeBoolean
	default:
		return schema.TypeObject
	}
}

// IsInteger returns true for signed and unsigned integer kinds
func (k Kind) IsInteger() bool {
	switch k {
	case KindInt32, KindInt64, KindUint32, KindUint64:
		return true
	}
	return false
}

// IsUnsigned returns true for unsigned integer kinds
func (k Kind) IsUnsigned() bool {
	return k == KindUint32 || k == KindUint64
}

// IsNumber returns true for numeric kinds
func (k Kind) IsNumber() bool {
	return k.JSONType() == schema.TypeNumber
}
