package generate

import "github.com/noahseger/ProtoScript/internal/ir"

func (e *emitter) binaryBlock() {
	for _, node := range e.file.Nodes {
		e.p("")
		e.binaryCodec(node, "", true)
	}
}

func (e *emitter) binaryCodec(node ir.Node, indent string, top bool) {
	if node.Enum != nil {
		e.enumCodec(node.Enum, indent, localName(node.Enum.NamespacedName), top)
		return
	}
	m := node.Message
	name := localName(m.NamespacedName)
	e.comment(indent, m.Comments.Leading)
	if top {
		e.p("%sexport const %s = {", indent, name)
	} else {
		e.p("%s%s: {", indent, name)
	}
	in := indent + "  "

	if !m.IsMap {
		e.binaryEncode(m, in)
		e.binaryDecode(m, in)
		e.binaryInitialize(m, in)
	}
	e.binaryWriteMessage(m, in)
	e.binaryReadMessage(m, in)

	for _, child := range m.Children {
		e.binaryCodec(child, in, false)
	}

	if top {
		e.p("%s};", indent)
	} else {
		e.p("%s},", indent)
	}
}

func (e *emitter) enumCodec(enum *ir.Enum, indent, declName string, top bool) {
	e.comment(indent, enum.Comments.Leading)
	if top {
		e.p("%sexport const %s = {", indent, declName)
	} else {
		e.p("%s%s: {", indent, declName)
	}
	in := indent + "  "
	for _, v := range enum.Values {
		e.comment(in, v.Comments.Leading)
		e.p(`%s%s: "%s",`, in, v.Name, v.Name)
	}
	typeRef := enum.NamespacedName

	e.private(in)
	e.p("%s_fromInt: function (i%s)%s {", in, e.ann(": number"), e.ann(": "+typeRef))
	e.p("%s  switch (i) {", in)
	for _, v := range enum.Values {
		e.p("%s    case %d: {", in, v.Number)
		e.p(`%s      return "%s";`, in, v.Name)
		e.p("%s    }", in)
	}
	e.p("%s    default: {", in)
	e.p("%s      return %s;", in, e.cast(e.cast("i", "unknown"), typeRef))
	e.p("%s    }", in)
	e.p("%s  }", in)
	e.p("%s},", in)

	e.private(in)
	e.p("%s_toInt: function (i%s)%s {", in, e.ann(": "+typeRef), e.ann(": number"))
	e.p("%s  switch (i) {", in)
	for _, v := range enum.Values {
		e.p(`%s    case "%s": {`, in, v.Name)
		e.p("%s      return %d;", in, v.Number)
		e.p("%s    }", in)
	}
	e.p("%s    default: {", in)
	e.p("%s      return %s;", in, e.cast(e.cast("i", "unknown"), "number"))
	e.p("%s    }", in)
	e.p("%s  }", in)
	e.p("%s},", in)

	if top {
		e.p("%s};", indent)
	} else {
		e.p("%s},", indent)
	}
}

func (e *emitter) private(indent string) {
	e.p("%s/**", indent)
	e.p("%s * @private", indent)
	e.p("%s */", indent)
}

func (e *emitter) binaryEncode(m *ir.Message, in string) {
	ref := m.NamespacedName
	e.p("%s/**", in)
	e.p("%s * Serializes %s to protobuf.", in, ref)
	e.p("%s */", in)
	if len(m.Fields) == 0 {
		e.p("%sencode: function (_msg%s)%s {", in, e.ann("?: PartialDeep<"+ref+">"), e.ann(": Uint8Array"))
		e.p("%s  return new Uint8Array();", in)
		e.p("%s},", in)
		e.p("")
		return
	}
	e.p("%sencode: function (msg%s)%s {", in, e.ann(": PartialDeep<"+ref+">"), e.ann(": Uint8Array"))
	e.p("%s  return %s._writeMessage(msg, new BinaryWriter()).getResultBuffer();", in, ref)
	e.p("%s},", in)
	e.p("")
}

func (e *emitter) binaryDecode(m *ir.Message, in string) {
	ref := m.NamespacedName
	e.p("%s/**", in)
	e.p("%s * Deserializes %s from protobuf.", in, ref)
	e.p("%s */", in)
	e.p("%sdecode: function (bytes%s)%s {", in, e.ann(": ByteSource"), e.ann(": "+ref))
	e.p("%s  return %s._readMessage(%s.initialize(), new BinaryReader(bytes));", in, ref, ref)
	e.p("%s},", in)
	e.p("")
}

func (e *emitter) binaryInitialize(m *ir.Message, in string) {
	e.initialize(m, in, false)
}

// initialize emits the default-value constructor; the JSON variant
// routes nested initializers through the JSON codecs.
func (e *emitter) initialize(m *ir.Message, in string, json bool) {
	ref := m.NamespacedName
	e.p("%s/**", in)
	e.p("%s * Initializes %s with all fields set to their default value.", in, ref)
	e.p("%s */", in)
	e.p("%sinitialize: function (msg%s)%s {", in, e.ann("?: Partial<"+ref+">"), e.ann(": "+ref))
	e.p("%s  return {", in)
	for i := range m.Fields {
		f := &m.Fields[i]
		if f.Optional {
			continue
		}
		def := f.DefaultValue
		if json && (f.Kind == ir.KindMessage || f.Kind == ir.KindEnum) && !f.Repeated && !f.Map {
			def = jsonExpr(def)
		}
		e.p("%s    %s: %s,", in, f.Name, def)
	}
	e.p("%s    ...msg,", in)
	e.p("%s  };", in)
	e.p("%s},", in)
	e.p("")
}

func (e *emitter) binaryWriteMessage(m *ir.Message, in string) {
	ref := m.NamespacedName
	e.private(in)
	e.p("%s_writeMessage: function (msg%s, writer%s)%s {", in,
		e.ann(": PartialDeep<"+ref+">"), e.ann(": BinaryWriter"), e.ann(": BinaryWriter"))
	for i := range m.Fields {
		e.binaryWriteField(&m.Fields[i], in+"  ")
	}
	e.p("%s  return writer;", in)
	e.p("%s},", in)
	e.p("")
}

func (e *emitter) binaryWriteField(f *ir.Field, in string) {
	m := "msg." + f.Name
	num := f.Index
	wtag := f.Write
	if f.Is64Bit() {
		wtag += "String"
	}

	switch {
	case f.Map:
		entries := "Object.entries(" + m + ").map(([key, value]) => ({ key: " +
			mapKeyFromString(f.MapKey) + ", value: value }))"
		e.p("%sif (%s) {", in, m)
		e.p("%s  writer.writeRepeatedMessage(%d, %s, %s);", in, num,
			e.cast(entries, "any"), e.cast(f.TSType+"._writeMessage", "any"))
		e.p("%s}", in)

	case f.Kind == ir.KindMessage && f.Repeated:
		e.p("%sif (%s?.length) {", in, m)
		e.p("%s  writer.writeRepeatedMessage(%d, %s, %s);", in, num,
			e.cast(m, "any"), e.cast(f.TSType+"._writeMessage", "any"))
		e.p("%s}", in)

	case f.Kind == ir.KindMessage:
		e.p("%sif (%s) {", in, m)
		e.p("%s  writer.writeMessage(%d, %s, %s._writeMessage);", in, num, m, f.TSType)
		e.p("%s}", in)

	case f.Kind == ir.KindEnum && f.Repeated:
		e.p("%sif (%s?.length) {", in, m)
		e.p("%s  writer.%s(%d, %s.map(%s._toInt));", in, wtag, num, m, f.TSType)
		e.p("%s}", in)

	case f.Kind == ir.KindEnum && f.Optional:
		e.p("%sif (%s != undefined) {", in, m)
		e.p("%s  writer.writeEnum(%d, %s._toInt(%s));", in, num, f.TSType, m)
		e.p("%s}", in)

	case f.Kind == ir.KindEnum:
		e.p("%sif (%s && %s._toInt(%s)) {", in, m, f.TSType, m)
		e.p("%s  writer.writeEnum(%d, %s._toInt(%s));", in, num, f.TSType, m)
		e.p("%s}", in)

	case f.Is64Bit() && f.Repeated:
		e.p("%sif (%s?.length) {", in, m)
		e.p("%s  writer.%s(%d, %s.map((v) => v.toString()));", in, wtag, num, m)
		e.p("%s}", in)

	case f.Is64Bit() && f.Optional:
		e.p("%sif (%s != undefined) {", in, m)
		e.p("%s  writer.%s(%d, %s.toString());", in, wtag, num, m)
		e.p("%s}", in)

	case f.Is64Bit():
		e.p("%sif (%s) {", in, m)
		e.p("%s  writer.%s(%d, %s.toString());", in, wtag, num, m)
		e.p("%s}", in)

	case f.Kind == ir.KindBytes && !f.Repeated && !f.Optional:
		e.p("%sif (%s?.length) {", in, m)
		e.p("%s  writer.writeBytes(%d, %s);", in, num, m)
		e.p("%s}", in)

	case f.Repeated:
		e.p("%sif (%s?.length) {", in, m)
		e.p("%s  writer.%s(%d, %s);", in, wtag, num, m)
		e.p("%s}", in)

	case f.Optional:
		e.p("%sif (%s != undefined) {", in, m)
		e.p("%s  writer.%s(%d, %s);", in, wtag, num, m)
		e.p("%s}", in)

	default:
		e.p("%sif (%s) {", in, m)
		e.p("%s  writer.%s(%d, %s);", in, wtag, num, m)
		e.p("%s}", in)
	}
}

func (e *emitter) binaryReadMessage(m *ir.Message, in string) {
	ref := m.NamespacedName
	e.private(in)
	e.p("%s_readMessage: function (msg%s, reader%s)%s {", in,
		e.ann(": "+ref), e.ann(": BinaryReader"), e.ann(": "+ref))
	e.p("%s  while (reader.nextField()) {", in)
	e.p("%s    const field = reader.getFieldNumber();", in)
	e.p("%s    switch (field) {", in)
	for i := range m.Fields {
		e.binaryReadCase(&m.Fields[i], in+"      ", m.IsMap)
	}
	e.p("%s      default: {", in)
	e.p("%s        reader.skipField();", in)
	e.p("%s        break;", in)
	e.p("%s      }", in)
	e.p("%s    }", in)
	e.p("%s  }", in)
	e.p("%s  return msg;", in)
	e.p("%s},", in)
	e.p("")
}

func (e *emitter) binaryReadCase(f *ir.Field, in string, inEntry bool) {
	m := "msg." + f.Name
	rtag := f.Read
	if f.Is64Bit() {
		rtag += "String"
	}
	e.p("%scase %d: {", in, f.Index)
	body := in + "  "

	switch {
	case f.Map:
		e.p("%sconst map = %s;", body, e.cast("{}", f.TSType))
		e.p("%sreader.readMessage(map, %s._readMessage);", body, f.TSType)
		e.p("%s%s[map.key.toString()] = map.value;", body, m)

	case f.Kind == ir.KindMessage && f.Repeated:
		e.p("%sconst message = %s.initialize();", body, f.TSType)
		e.p("%sreader.readMessage(message, %s._readMessage);", body, f.TSType)
		e.p("%s%s.push(message);", body, m)

	case f.Kind == ir.KindMessage && (f.Optional || inEntry):
		e.p("%s%s = %s.initialize();", body, m, f.TSType)
		e.p("%sreader.readMessage(%s, %s._readMessage);", body, m, f.TSType)

	case f.Kind == ir.KindMessage:
		e.p("%sreader.readMessage(%s, %s._readMessage);", body, m, f.TSType)

	case f.Kind == ir.KindEnum && f.Repeated:
		e.p("%sif (reader.isDelimited()) {", body)
		e.p("%s  %s.push(...reader.%s().map(%s._fromInt));", body, m, f.ReadPacked, f.TSType)
		e.p("%s} else {", body)
		e.p("%s  %s.push(%s._fromInt(reader.readEnum()));", body, m, f.TSType)
		e.p("%s}", body)

	case f.Kind == ir.KindEnum:
		e.p("%s%s = %s._fromInt(reader.readEnum());", body, m, f.TSType)

	case f.Is64Bit() && f.Repeated:
		e.p("%sif (reader.isDelimited()) {", body)
		e.p("%s  %s.push(...reader.%sString().map(BigInt));", body, m, f.ReadPacked)
		e.p("%s} else {", body)
		e.p("%s  %s.push(BigInt(reader.%s()));", body, m, rtag)
		e.p("%s}", body)

	case f.Is64Bit():
		e.p("%s%s = BigInt(reader.%s());", body, m, rtag)

	case f.Repeated && f.ReadPacked != "":
		e.p("%sif (reader.isDelimited()) {", body)
		e.p("%s  %s.push(...reader.%s());", body, m, f.ReadPacked)
		e.p("%s} else {", body)
		e.p("%s  %s.push(reader.%s());", body, m, rtag)
		e.p("%s}", body)

	case f.Repeated:
		e.p("%s%s.push(reader.%s());", body, m, rtag)

	default:
		e.p("%s%s = reader.%s();", body, m, rtag)
	}

	e.p("%sbreak;", body)
	e.p("%s}", in)
}

// mapKeyFromString converts the Object.entries string key back to the
// entry's key type for the wire.
func mapKeyFromString(key *ir.Field) string {
	switch key.TSType {
	case "number":
		return "Number(key)"
	case "bigint":
		return "BigInt(key)"
	case "boolean":
		return `key === "true"`
	default:
		return "key"
	}
}
