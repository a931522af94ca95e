package ir

// Node is the tagged variant produced by the walker: exactly one of
// Message or Enum is set. Emitters dispatch on the set branch.
type Node struct {
	Message *Message
	Enum    *Enum
}

func MessageNode(m *Message) Node { return Node{Message: m} }

func EnumNode(e *Enum) Node { return Node{Enum: e} }

// File is one input file lowered to IR, plus everything the emitter
// needs that is not part of a single node.
type File struct {
	// Path of the source .proto file.
	Path    string
	Package string
	Nodes   []Node
	// Imports lists the cross-file type imports required by this file,
	// in first-use order.
	Imports []Import
	// HasBytes reports whether any field in the file carries bytes,
	// which gates the base64 helper imports.
	HasBytes bool
}

// Import is one cross-file dependency of a generated file.
type Import struct {
	// Path is the relative module path of the other generated file,
	// e.g. "./sibling.pb" or "../common/types.pb".
	Path string
	// Names are the top-level identifiers pulled from that file.
	Names []string
}

type Comments struct {
	Leading string
}

type Message struct {
	Name           string
	NamespacedName string
	Comments       Comments
	// IsMap marks the synthetic entry message behind a map<K,V> field.
	// Map entries expose only _writeMessage/_readMessage.
	IsMap    bool
	Fields   []Field
	Children []Node
}

type Enum struct {
	Name           string
	NamespacedName string
	Comments       Comments
	Values         []EnumValue
	// ZeroValue is the name of the zero-numbered enumerator.
	ZeroValue string
}

type EnumValue struct {
	Name     string
	Number   int32
	Comments Comments
}

type Field struct {
	// Name is the generated attribute name (lower camel of the proto name).
	Name string
	// ProtoName is the original proto field name, the last-resort JSON key.
	ProtoName string
	// JSONName is the descriptor-provided JSON key.
	JSONName string
	// Index is the proto field number.
	Index    int32
	Repeated bool
	Optional bool
	Map      bool
	// Read and Write are the wire-runtime method tags the emitter calls
	// through, e.g. "readInt32"/"writeInt32".
	Read  string
	Write string
	// ReadPacked, when non-empty, is the packed-decoder tag; decoders
	// must then accept both packed and unpacked encodings.
	ReadPacked string
	// TSType is the generated type expression: a primitive tag (number,
	// bigint, string, boolean, Uint8Array) or a qualified type reference.
	TSType string
	// TSTypeJSON is the JSON-side type expression where it differs
	// (bytes as base64 string, 64-bit integers as decimal strings).
	TSTypeJSON string
	// DefaultValue is the literal default for the generated initializer.
	DefaultValue string
	Comments     Comments

	Kind Kind
	// TypeName is the fully-qualified proto name of the referenced
	// message or enum, without the leading dot. Empty for scalars.
	TypeName string
	// MapEntry is the entry message backing a map field.
	MapEntry *Message
	// MapKey and MapValue are the entry's two fields.
	MapKey   *Field
	MapValue *Field
}

// IsPrimitive reports whether the field's generated type is one of the
// primitive tags rather than a type reference.
func (f *Field) IsPrimitive() bool {
	switch f.TSType {
	case "number", "bigint", "string", "boolean", "Uint8Array":
		return true
	}
	return false
}

// Is64Bit reports whether the field transports a 64-bit integer, which
// rides through the runtime as a decimal string.
func (f *Field) Is64Bit() bool {
	switch f.Kind {
	case KindInt64, KindUint64, KindSint64, KindFixed64, KindSfixed64:
		return true
	}
	return false
}

type Kind int

const (
	KindBool Kind = iota
	KindInt32
	KindInt64
	KindUint32
	KindUint64
	KindSint32
	KindSint64
	KindFixed32
	KindFixed64
	KindSfixed32
	KindSfixed64
	KindFloat
	KindDouble
	KindString
	KindBytes
	KindMessage
	KindEnum
)

// Packable reports whether repeated fields of this kind default to the
// packed encoding under proto3.
func (k Kind) Packable() bool {
	switch k {
	case KindString, KindBytes, KindMessage:
		return false
	default:
		return true
	}
}
