package walker

import (
	"fmt"
	"path"
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/noahseger/ProtoScript/internal/ir"
)

// Walk lowers one FileDescriptorProto to IR, resolving type references
// through the request-wide identifier table and collecting the imports
// the generated file needs.
func Walk(file *descriptorpb.FileDescriptorProto, table *Table) (*ir.File, error) {
	w := &walker{
		file:      file,
		table:     table,
		comments:  indexComments(file.GetSourceCodeInfo()),
		built:     make(map[string]*ir.Message),
		importIdx: make(map[string]int),
	}
	out := &ir.File{
		Path:    file.GetName(),
		Package: file.GetPackage(),
	}
	for i, m := range file.GetMessageType() {
		msg, err := w.message(nil, m, []int32{filePathMessage, int32(i)})
		if err != nil {
			return nil, err
		}
		out.Nodes = append(out.Nodes, ir.MessageNode(msg))
	}
	for i, e := range file.GetEnumType() {
		enum, err := w.enum(nil, e, []int32{filePathEnum, int32(i)})
		if err != nil {
			return nil, err
		}
		out.Nodes = append(out.Nodes, ir.EnumNode(enum))
	}
	out.Imports = w.imports
	out.HasBytes = w.hasBytes
	return out, nil
}

type walker struct {
	file     *descriptorpb.FileDescriptorProto
	table    *Table
	comments commentIndex
	// built registers message IR by fully-qualified name so map fields
	// can point at their already-walked entry messages.
	built     map[string]*ir.Message
	imports   []ir.Import
	importIdx map[string]int
	hasBytes  bool
}

func (w *walker) message(chain []string, m *descriptorpb.DescriptorProto, srcPath []int32) (*ir.Message, error) {
	chain = append(chain[:len(chain):len(chain)], m.GetName())
	msg := &ir.Message{
		Name:           m.GetName(),
		NamespacedName: ir.NamespacedName(chain),
		Comments:       w.comments.at(srcPath),
		IsMap:          m.GetOptions().GetMapEntry(),
	}
	w.built[qualify(w.file.GetPackage(), chain)] = msg

	// Children before fields: map fields reference their entry message.
	for j, nested := range m.GetNestedType() {
		child, err := w.message(chain, nested, appendPath(srcPath, messagePathNested, int32(j)))
		if err != nil {
			return nil, err
		}
		msg.Children = append(msg.Children, ir.MessageNode(child))
	}
	for j, e := range m.GetEnumType() {
		child, err := w.enum(chain, e, appendPath(srcPath, messagePathEnum, int32(j)))
		if err != nil {
			return nil, err
		}
		msg.Children = append(msg.Children, ir.EnumNode(child))
	}

	seen := make(map[int32]bool, len(m.GetField()))
	for k, f := range m.GetField() {
		fld, err := w.field(f, appendPath(srcPath, messagePathField, int32(k)))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ir.NamespacedName(chain), err)
		}
		if seen[fld.Index] {
			return nil, fmt.Errorf("%s: duplicate field number %d", ir.NamespacedName(chain), fld.Index)
		}
		seen[fld.Index] = true
		msg.Fields = append(msg.Fields, fld)
	}

	if msg.IsMap {
		if err := checkEntryShape(msg); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

func checkEntryShape(msg *ir.Message) error {
	if len(msg.Fields) != 2 ||
		msg.Fields[0].ProtoName != "key" || msg.Fields[0].Index != 1 ||
		msg.Fields[1].ProtoName != "value" || msg.Fields[1].Index != 2 {
		return fmt.Errorf("%s: malformed map entry message", msg.NamespacedName)
	}
	return nil
}

func (w *walker) enum(chain []string, e *descriptorpb.EnumDescriptorProto, srcPath []int32) (*ir.Enum, error) {
	chain = append(chain[:len(chain):len(chain)], e.GetName())
	enum := &ir.Enum{
		Name:           e.GetName(),
		NamespacedName: ir.NamespacedName(chain),
		Comments:       w.comments.at(srcPath),
	}
	for j, v := range e.GetValue() {
		enum.Values = append(enum.Values, ir.EnumValue{
			Name:     v.GetName(),
			Number:   v.GetNumber(),
			Comments: w.comments.at(appendPath(srcPath, enumPathValue, int32(j))),
		})
		if v.GetNumber() == 0 && enum.ZeroValue == "" {
			enum.ZeroValue = v.GetName()
		}
	}
	if enum.ZeroValue == "" {
		return nil, fmt.Errorf("enum %s has no zero value", enum.NamespacedName)
	}
	return enum, nil
}

func (w *walker) field(f *descriptorpb.FieldDescriptorProto, srcPath []int32) (ir.Field, error) {
	kind, err := kindOf(f.GetType())
	if err != nil {
		return ir.Field{}, fmt.Errorf("field %s: %w", f.GetName(), err)
	}
	repeated := f.GetLabel() == descriptorpb.FieldDescriptorProto_LABEL_REPEATED
	optional := f.GetProto3Optional()
	if optional && repeated {
		return ir.Field{}, fmt.Errorf("field %s: optional and repeated are mutually exclusive", f.GetName())
	}
	if kind == ir.KindBytes {
		w.hasBytes = true
	}

	fld := ir.Field{
		Name:      ir.AttrName(f.GetName()),
		ProtoName: f.GetName(),
		JSONName:  jsonName(f),
		Index:     f.GetNumber(),
		Repeated:  repeated,
		Optional:  optional,
		Kind:      kind,
		Comments:  w.comments.at(srcPath),
	}

	switch kind {
	case ir.KindMessage:
		entry, ok := w.table.Lookup(f.GetTypeName())
		if !ok || entry.Message == nil {
			return ir.Field{}, fmt.Errorf("field %s: unresolved type reference %s", f.GetName(), f.GetTypeName())
		}
		fld.TypeName = strings.TrimPrefix(f.GetTypeName(), ".")
		if repeated && entry.Message.GetOptions().GetMapEntry() {
			return w.mapField(fld, entry)
		}
		fld.TSType = w.typeRef(entry)
		fld.TSTypeJSON = fld.TSType
		fld.Read = "readMessage"
		if repeated {
			fld.Write = "writeRepeatedMessage"
			fld.DefaultValue = "[]"
		} else {
			fld.Write = "writeMessage"
			if optional {
				fld.DefaultValue = "undefined"
			} else {
				fld.DefaultValue = fld.TSType + ".initialize()"
			}
		}
		return fld, nil

	case ir.KindEnum:
		entry, ok := w.table.Lookup(f.GetTypeName())
		if !ok || entry.Enum == nil {
			return ir.Field{}, fmt.Errorf("field %s: unresolved type reference %s", f.GetName(), f.GetTypeName())
		}
		fld.TypeName = strings.TrimPrefix(f.GetTypeName(), ".")
		zero, err := zeroValueName(entry.Enum)
		if err != nil {
			return ir.Field{}, err
		}
		fld.TSType = w.typeRef(entry)
		fld.TSTypeJSON = fld.TSType
		fld.Read, fld.Write, fld.ReadPacked = scalarTags(kind, repeated, isPacked(f, kind))
		switch {
		case repeated:
			fld.DefaultValue = "[]"
		case optional:
			fld.DefaultValue = "undefined"
		default:
			fld.DefaultValue = fld.TSType + "." + zero
		}
		return fld, nil

	default:
		fld.TSType = primitiveType(kind)
		fld.TSTypeJSON = primitiveJSONType(kind)
		fld.Read, fld.Write, fld.ReadPacked = scalarTags(kind, repeated, isPacked(f, kind))
		switch {
		case repeated:
			fld.DefaultValue = "[]"
		case optional:
			fld.DefaultValue = "undefined"
		default:
			fld.DefaultValue = primitiveDefault(kind)
		}
		return fld, nil
	}
}

func (w *walker) mapField(fld ir.Field, entry Entry) (ir.Field, error) {
	fld.Map = true
	fld.Repeated = false
	fields := entry.Message.GetField()
	if len(fields) != 2 {
		return ir.Field{}, fmt.Errorf("field %s: malformed map entry %s", fld.ProtoName, entry.Message.GetName())
	}
	key, err := w.field(fields[0], nil)
	if err != nil {
		return ir.Field{}, err
	}
	value, err := w.field(fields[1], nil)
	if err != nil {
		return ir.Field{}, err
	}
	switch key.Kind {
	case ir.KindFloat, ir.KindDouble, ir.KindBytes, ir.KindMessage, ir.KindEnum:
		return ir.Field{}, fmt.Errorf("field %s: invalid map key type", fld.ProtoName)
	}
	built, ok := w.built[strings.TrimPrefix(fld.TypeName, ".")]
	if !ok {
		return ir.Field{}, fmt.Errorf("field %s: map entry %s not walked", fld.ProtoName, fld.TypeName)
	}
	fld.MapEntry = built
	fld.MapKey = &key
	fld.MapValue = &value
	fld.TSType = ir.NamespacedName(entry.Path)
	fld.TSTypeJSON = fld.TSType
	fld.Read = "readMessage"
	fld.Write = "writeRepeatedMessage"
	fld.DefaultValue = "{}"
	return fld, nil
}

// typeRef returns the expression generated code uses to name the entry's
// type, tracking a cross-file import when the entry lives elsewhere.
func (w *walker) typeRef(e Entry) string {
	if e.File != w.file.GetName() {
		w.addImport(e)
	}
	return ir.NamespacedName(e.Path)
}

func (w *walker) addImport(e Entry) {
	rel := relOutputPath(w.file.GetName(), e.File)
	top := e.Path[0]
	idx, ok := w.importIdx[rel]
	if !ok {
		w.imports = append(w.imports, ir.Import{Path: rel})
		idx = len(w.imports) - 1
		w.importIdx[rel] = idx
	}
	imp := &w.imports[idx]
	for _, n := range imp.Names {
		if n == top {
			return
		}
	}
	// The binary and JSON codec symbols both come along.
	imp.Names = append(imp.Names, top, top+"JSON")
}

func jsonName(f *descriptorpb.FieldDescriptorProto) string {
	if n := f.GetJsonName(); n != "" {
		return n
	}
	return ir.AttrName(f.GetName())
}

func isPacked(f *descriptorpb.FieldDescriptorProto, kind ir.Kind) bool {
	if f.GetLabel() != descriptorpb.FieldDescriptorProto_LABEL_REPEATED || !kind.Packable() {
		return false
	}
	opts := f.GetOptions()
	if opts != nil && opts.Packed != nil {
		return opts.GetPacked()
	}
	// proto3 packs by default.
	return true
}

var kindBase = map[ir.Kind]string{
	ir.KindBool:     "Bool",
	ir.KindInt32:    "Int32",
	ir.KindInt64:    "Int64",
	ir.KindUint32:   "Uint32",
	ir.KindUint64:   "Uint64",
	ir.KindSint32:   "Sint32",
	ir.KindSint64:   "Sint64",
	ir.KindFixed32:  "Fixed32",
	ir.KindFixed64:  "Fixed64",
	ir.KindSfixed32: "Sfixed32",
	ir.KindSfixed64: "Sfixed64",
	ir.KindFloat:    "Float",
	ir.KindDouble:   "Double",
	ir.KindString:   "String",
	ir.KindBytes:    "Bytes",
	ir.KindEnum:     "Enum",
}

func scalarTags(kind ir.Kind, repeated, packed bool) (read, write, readPacked string) {
	base := kindBase[kind]
	read = "read" + base
	switch {
	case repeated && packed:
		write = "writePacked" + base
	case repeated:
		write = "writeRepeated" + base
	default:
		write = "write" + base
	}
	if repeated && kind.Packable() {
		readPacked = "readPacked" + base
	}
	return read, write, readPacked
}

func primitiveType(kind ir.Kind) string {
	switch kind {
	case ir.KindBool:
		return "boolean"
	case ir.KindInt64, ir.KindUint64, ir.KindSint64, ir.KindFixed64, ir.KindSfixed64:
		return "bigint"
	case ir.KindString:
		return "string"
	case ir.KindBytes:
		return "Uint8Array"
	default:
		return "number"
	}
}

func primitiveJSONType(kind ir.Kind) string {
	switch kind {
	case ir.KindInt64, ir.KindUint64, ir.KindSint64, ir.KindFixed64, ir.KindSfixed64:
		return "string"
	case ir.KindBytes:
		return "string"
	default:
		return primitiveType(kind)
	}
}

func primitiveDefault(kind ir.Kind) string {
	switch primitiveType(kind) {
	case "boolean":
		return "false"
	case "bigint":
		return "0n"
	case "string":
		return `""`
	case "Uint8Array":
		return "new Uint8Array()"
	default:
		return "0"
	}
}

func kindOf(t descriptorpb.FieldDescriptorProto_Type) (ir.Kind, error) {
	switch t {
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		return ir.KindBool, nil
	case descriptorpb.FieldDescriptorProto_TYPE_INT32:
		return ir.KindInt32, nil
	case descriptorpb.FieldDescriptorProto_TYPE_INT64:
		return ir.KindInt64, nil
	case descriptorpb.FieldDescriptorProto_TYPE_UINT32:
		return ir.KindUint32, nil
	case descriptorpb.FieldDescriptorProto_TYPE_UINT64:
		return ir.KindUint64, nil
	case descriptorpb.FieldDescriptorProto_TYPE_SINT32:
		return ir.KindSint32, nil
	case descriptorpb.FieldDescriptorProto_TYPE_SINT64:
		return ir.KindSint64, nil
	case descriptorpb.FieldDescriptorProto_TYPE_FIXED32:
		return ir.KindFixed32, nil
	case descriptorpb.FieldDescriptorProto_TYPE_FIXED64:
		return ir.KindFixed64, nil
	case descriptorpb.FieldDescriptorProto_TYPE_SFIXED32:
		return ir.KindSfixed32, nil
	case descriptorpb.FieldDescriptorProto_TYPE_SFIXED64:
		return ir.KindSfixed64, nil
	case descriptorpb.FieldDescriptorProto_TYPE_FLOAT:
		return ir.KindFloat, nil
	case descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:
		return ir.KindDouble, nil
	case descriptorpb.FieldDescriptorProto_TYPE_STRING:
		return ir.KindString, nil
	case descriptorpb.FieldDescriptorProto_TYPE_BYTES:
		return ir.KindBytes, nil
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE:
		return ir.KindMessage, nil
	case descriptorpb.FieldDescriptorProto_TYPE_ENUM:
		return ir.KindEnum, nil
	default:
		return 0, fmt.Errorf("unsupported field type %s", t)
	}
}

func zeroValueName(e *descriptorpb.EnumDescriptorProto) (string, error) {
	for _, v := range e.GetValue() {
		if v.GetNumber() == 0 {
			return v.GetName(), nil
		}
	}
	return "", fmt.Errorf("enum %s has no zero value", e.GetName())
}

func appendPath(p []int32, elems ...int32) []int32 {
	out := make([]int32, 0, len(p)+len(elems))
	out = append(out, p...)
	return append(out, elems...)
}

// relOutputPath computes the relative module path from the generated
// file of `from` to the generated file of `to`, both colocated with
// their .proto sources.
func relOutputPath(from, to string) string {
	stem := strings.TrimSuffix(path.Base(to), path.Ext(to)) + ".pb"
	fromDir := splitDir(path.Dir(from))
	toDir := splitDir(path.Dir(to))
	common := 0
	for common < len(fromDir) && common < len(toDir) && fromDir[common] == toDir[common] {
		common++
	}
	var sb strings.Builder
	if len(fromDir) == common {
		sb.WriteString("./")
	} else {
		for i := common; i < len(fromDir); i++ {
			sb.WriteString("../")
		}
	}
	for _, seg := range toDir[common:] {
		sb.WriteString(seg)
		sb.WriteByte('/')
	}
	sb.WriteString(stem)
	return sb.String()
}

func splitDir(dir string) []string {
	if dir == "." || dir == "" {
		return nil
	}
	return strings.Split(dir, "/")
}
