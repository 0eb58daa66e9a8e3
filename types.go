package main

// DataType is the static type of a value, variable, parameter, or function
// result.
type DataType int

const (
	// TypeUndefined marks a return type not yet recorded and the type of an
	// empty expression.
	TypeUndefined DataType = iota - 1
	TypeVoid
	TypeI32
	TypeF64
	// TypeU8 is the byte-slice type []u8.
	TypeU8
	// TypeNull is the type of the null literal.
	TypeNull
	TypeNullI32
	TypeNullF64
	TypeNullU8
	// TypeString is the type of a string literal. It only converts to []u8
	// through ifj.string.
	TypeString
	// TypeBool is the result of a relational operator.
	TypeBool
)

var typeNames = map[DataType]string{
	TypeUndefined: "undefined",
	TypeVoid:      "void",
	TypeI32:       "i32",
	TypeF64:       "f64",
	TypeU8:        "[]u8",
	TypeNull:      "null",
	TypeNullI32:   "?i32",
	TypeNullF64:   "?f64",
	TypeNullU8:    "?[]u8",
	TypeString:    "string",
	TypeBool:      "bool",
}

func (t DataType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "invalid"
}

// IsNullable reports whether values of t may hold null.
func (t DataType) IsNullable() bool {
	switch t {
	case TypeNull, TypeNullI32, TypeNullF64, TypeNullU8:
		return true
	}
	return false
}

// Unwrap returns the non-null type carried by a nullable type. Other types
// are returned unchanged.
func (t DataType) Unwrap() DataType {
	switch t {
	case TypeNullI32:
		return TypeI32
	case TypeNullF64:
		return TypeF64
	case TypeNullU8:
		return TypeU8
	}
	return t
}

// Nullable returns the nullable variant of t.
func (t DataType) Nullable() DataType {
	switch t {
	case TypeI32:
		return TypeNullI32
	case TypeF64:
		return TypeNullF64
	case TypeU8:
		return TypeNullU8
	}
	return t
}

// AcceptsNullable reports whether a slot of type t accepts a value of type v
// through nullable unification: t is ?T and v is null, ?T, or T.
func (t DataType) AcceptsNullable(v DataType) bool {
	switch t {
	case TypeNullI32, TypeNullF64, TypeNullU8:
		return v == TypeNull || v == t || v == t.Unwrap()
	}
	return false
}

// Accepts reports whether a slot of type t accepts a value of type v.
func (t DataType) Accepts(v DataType) bool {
	return t == v || t.AcceptsNullable(v)
}
