package generate

import (
	"strings"

	"github.com/noahseger/ProtoScript/internal/ir"
)

func (e *emitter) jsonBlock() {
	for _, node := range e.file.Nodes {
		e.p("")
		e.jsonCodec(node, "", true)
	}
}

func (e *emitter) jsonCodec(node ir.Node, indent string, top bool) {
	if node.Enum != nil {
		name := localName(node.Enum.NamespacedName)
		if top {
			name += "JSON"
		}
		e.enumCodec(node.Enum, indent, name, top)
		return
	}
	m := node.Message
	name := localName(m.NamespacedName)
	if top {
		name += "JSON"
	}
	e.comment(indent, m.Comments.Leading)
	if top {
		e.p("%sexport const %s = {", indent, name)
	} else {
		e.p("%s%s: {", indent, name)
	}
	in := indent + "  "

	if !m.IsMap {
		e.jsonEncode(m, in)
		e.jsonDecode(m, in)
		e.initialize(m, in, true)
	}
	e.jsonWriteMessage(m, in)
	e.jsonReadMessage(m, in)

	for _, child := range m.Children {
		e.jsonCodec(child, in, false)
	}

	if top {
		e.p("%s};", indent)
	} else {
		e.p("%s},", indent)
	}
}

func (e *emitter) jsonEncode(m *ir.Message, in string) {
	ref := m.NamespacedName
	jref := jsonExpr(ref)
	e.p("%s/**", in)
	e.p("%s * Serializes %s to JSON.", in, ref)
	e.p("%s */", in)
	if len(m.Fields) == 0 {
		e.p("%sencode: function (_msg%s)%s {", in, e.ann("?: PartialDeep<"+ref+">"), e.ann(": string"))
		e.p(`%s  return "{}";`, in)
		e.p("%s},", in)
		e.p("")
		return
	}
	e.p("%sencode: function (msg%s)%s {", in, e.ann(": PartialDeep<"+ref+">"), e.ann(": string"))
	e.p("%s  return JSON.stringify(%s._writeMessage(msg));", in, jref)
	e.p("%s},", in)
	e.p("")
}

func (e *emitter) jsonDecode(m *ir.Message, in string) {
	ref := m.NamespacedName
	jref := jsonExpr(ref)
	e.p("%s/**", in)
	e.p("%s * Deserializes %s from JSON.", in, ref)
	e.p("%s */", in)
	e.p("%sdecode: function (json%s)%s {", in, e.ann(": string"), e.ann(": "+ref))
	e.p("%s  return %s._readMessage(%s.initialize(), JSON.parse(json));", in, jref, jref)
	e.p("%s},", in)
	e.p("")
}

func (e *emitter) jsonWriteMessage(m *ir.Message, in string) {
	ref := m.NamespacedName
	e.private(in)
	e.p("%s_writeMessage: function (msg%s)%s {", in,
		e.ann(": PartialDeep<"+ref+">"), e.ann(": Record<string, unknown>"))
	e.p("%s  const json%s = {};", in, e.ann(": Record<string, unknown>"))
	for i := range m.Fields {
		e.jsonWriteField(&m.Fields[i], in+"  ")
	}
	e.p("%s  return json;", in)
	e.p("%s},", in)
	e.p("")
}

// jsonWriteKey picks the key generated JSON carries for a field.
func (e *emitter) jsonWriteKey(f *ir.Field) string {
	if e.cfg.JSON.UseProtoFieldName {
		return f.ProtoName
	}
	return f.JSONName
}

func (e *emitter) jsonWriteField(f *ir.Field, in string) {
	m := "msg." + f.Name
	key := e.jsonWriteKey(f)
	emitDefaults := e.cfg.JSON.EmitFieldsWithDefaultValues

	switch {
	case f.Map:
		valueConv := jsonValueExpr(f.MapValue, "value")
		if emitDefaults {
			e.p("%sconst _%s_%s = {};", in, f.Name, e.ann(": Record<string, unknown>"))
			e.p("%sfor (const [key, value] of Object.entries(%s ?? {})) {", in, m)
			e.p("%s  _%s_[key] = %s;", in, f.Name, valueConv)
			e.p("%s}", in)
			e.p(`%sjson["%s"] = _%s_;`, in, key, f.Name)
			return
		}
		e.p("%sif (%s) {", in, m)
		e.p("%s  const _%s_%s = {};", in, f.Name, e.ann(": Record<string, unknown>"))
		e.p("%s  for (const [key, value] of Object.entries(%s)) {", in, m)
		e.p("%s    _%s_[key] = %s;", in, f.Name, valueConv)
		e.p("%s  }", in)
		e.p("%s  if (Object.keys(_%s_).length > 0) {", in, f.Name)
		e.p(`%s    json["%s"] = _%s_;`, in, key, f.Name)
		e.p("%s  }", in)
		e.p("%s}", in)

	case f.Kind == ir.KindMessage && f.Repeated:
		jref := jsonExpr(f.TSType)
		if emitDefaults {
			e.p(`%sjson["%s"] = (%s ?? []).map(%s._writeMessage);`, in, key, m, jref)
			return
		}
		e.p("%sif (%s?.length) {", in, m)
		e.p(`%s  json["%s"] = %s.map(%s._writeMessage);`, in, key, m, jref)
		e.p("%s}", in)

	case f.Kind == ir.KindMessage:
		jref := jsonExpr(f.TSType)
		if emitDefaults {
			e.p(`%sjson["%s"] = %s._writeMessage(%s ?? {});`, in, key, jref, m)
			return
		}
		e.p("%sif (%s) {", in, m)
		e.p("%s  const _%s_ = %s._writeMessage(%s);", in, f.Name, jref, m)
		e.p("%s  if (Object.keys(_%s_).length > 0) {", in, f.Name)
		e.p(`%s    json["%s"] = _%s_;`, in, key, f.Name)
		e.p("%s  }", in)
		e.p("%s}", in)

	case f.Optional:
		if emitDefaults {
			e.p(`%sjson["%s"] = %s != undefined ? %s : null;`, in, key, m, jsonValueExpr(f, m))
			return
		}
		e.p("%sif (%s != undefined) {", in, m)
		e.p(`%s  json["%s"] = %s;`, in, key, jsonValueExpr(f, m))
		e.p("%s}", in)

	case f.Repeated:
		conv := jsonRepeatedExpr(f, m)
		if emitDefaults {
			e.p(`%sjson["%s"] = %s;`, in, key, jsonRepeatedExpr(f, "("+m+" ?? [])"))
			return
		}
		e.p("%sif (%s?.length) {", in, m)
		e.p(`%s  json["%s"] = %s;`, in, key, conv)
		e.p("%s}", in)

	case f.Kind == ir.KindEnum:
		jref := jsonExpr(f.TSType)
		if emitDefaults {
			e.p(`%sjson["%s"] = %s ?? %s;`, in, key, m, jsonExpr(f.DefaultValue))
			return
		}
		e.p("%sif (%s && %s._toInt(%s)) {", in, m, jref, m)
		e.p(`%s  json["%s"] = %s;`, in, key, m)
		e.p("%s}", in)

	case f.Kind == ir.KindBytes:
		if emitDefaults {
			e.p(`%sjson["%s"] = encodeBase64Bytes(%s ?? new Uint8Array());`, in, key, m)
			return
		}
		e.p("%sif (%s?.length) {", in, m)
		e.p(`%s  json["%s"] = encodeBase64Bytes(%s);`, in, key, m)
		e.p("%s}", in)

	case f.Kind == ir.KindFloat || f.Kind == ir.KindDouble:
		if emitDefaults {
			e.p("%sconst _%s_ = %s ?? 0;", in, f.Name, m)
			e.p(`%sjson["%s"] = Number.isFinite(_%s_) ? _%s_ : String(_%s_);`, in, key, f.Name, f.Name, f.Name)
			return
		}
		e.p("%sif (%s != undefined && %s !== 0) {", in, m, m)
		e.p(`%s  json["%s"] = Number.isFinite(%s) ? %s : String(%s);`, in, key, m, m, m)
		e.p("%s}", in)

	case f.Is64Bit():
		if emitDefaults {
			e.p(`%sjson["%s"] = (%s ?? 0n).toString();`, in, key, m)
			return
		}
		e.p("%sif (%s) {", in, m)
		e.p(`%s  json["%s"] = %s.toString();`, in, key, m)
		e.p("%s}", in)

	default:
		if emitDefaults {
			e.p(`%sjson["%s"] = %s ?? %s;`, in, key, m, f.DefaultValue)
			return
		}
		e.p("%sif (%s) {", in, m)
		e.p(`%s  json["%s"] = %s;`, in, key, m)
		e.p("%s}", in)
	}
}

// jsonValueExpr converts one already-present value to its JSON form.
func jsonValueExpr(f *ir.Field, expr string) string {
	switch {
	case f.Kind == ir.KindMessage:
		return jsonExpr(f.TSType) + "._writeMessage(" + expr + ")"
	case f.Kind == ir.KindBytes:
		return "encodeBase64Bytes(" + expr + ")"
	case f.Kind == ir.KindFloat || f.Kind == ir.KindDouble:
		return "Number.isFinite(" + expr + ") ? " + expr + " : String(" + expr + ")"
	case f.Is64Bit():
		return expr + ".toString()"
	default:
		return expr
	}
}

func jsonRepeatedExpr(f *ir.Field, expr string) string {
	switch {
	case f.Kind == ir.KindBytes:
		return expr + ".map(encodeBase64Bytes)"
	case f.Kind == ir.KindFloat || f.Kind == ir.KindDouble:
		return expr + ".map((v) => (Number.isFinite(v) ? v : String(v)))"
	case f.Is64Bit():
		return expr + ".map((v) => v.toString())"
	default:
		return expr
	}
}

func (e *emitter) jsonReadMessage(m *ir.Message, in string) {
	ref := m.NamespacedName
	e.private(in)
	e.p("%s_readMessage: function (msg%s, json%s)%s {", in,
		e.ann(": "+ref), e.ann(": any"), e.ann(": "+ref))
	for i := range m.Fields {
		e.jsonReadField(&m.Fields[i], in+"  ")
	}
	e.p("%s  return msg;", in)
	e.p("%s},", in)
	e.p("")
}

// jsonReadKeys is the accepted-key chain: descriptor json name, the
// generated attribute name, then the proto field name.
func jsonReadKeys(f *ir.Field) []string {
	keys := []string{f.JSONName}
	for _, k := range []string{f.Name, f.ProtoName} {
		seen := false
		for _, existing := range keys {
			if existing == k {
				seen = true
				break
			}
		}
		if !seen {
			keys = append(keys, k)
		}
	}
	return keys
}

func (e *emitter) jsonReadField(f *ir.Field, in string) {
	m := "msg." + f.Name
	v := "_" + f.Name + "_"
	var lookups []string
	for _, k := range jsonReadKeys(f) {
		lookups = append(lookups, `json["`+k+`"]`)
	}
	e.p("%sconst %s = %s;", in, v, strings.Join(lookups, " ?? "))

	guard := "if (" + v + ") {"
	if f.Optional || f.Kind == ir.KindBool {
		guard = "if (" + v + " != undefined) {"
	}
	e.p("%s%s", in, guard)
	body := in + "  "

	switch {
	case f.Map:
		e.p("%sfor (const [key, value] of Object.entries(%s)) {", body, v)
		if f.MapValue.Kind == ir.KindMessage {
			jref := jsonExpr(f.MapValue.TSType)
			e.p("%s  const message = %s.initialize();", body, jref)
			e.p("%s  %s._readMessage(message, value);", body, jref)
			e.p("%s  %s[key] = message;", body, m)
		} else {
			e.p("%s  %s[key] = %s;", body, m, jsonReadValueExpr(f.MapValue, "value"))
		}
		e.p("%s}", body)

	case f.Kind == ir.KindMessage && f.Repeated:
		jref := jsonExpr(f.TSType)
		e.p("%sfor (const item of %s) {", body, v)
		e.p("%s  const message = %s.initialize();", body, jref)
		e.p("%s  %s._readMessage(message, item);", body, jref)
		e.p("%s  %s.push(message);", body, m)
		e.p("%s}", body)

	case f.Kind == ir.KindMessage:
		jref := jsonExpr(f.TSType)
		e.p("%sconst message = %s.initialize();", body, jref)
		e.p("%s%s._readMessage(message, %s);", body, jref, v)
		e.p("%s%s = message;", body, m)

	case f.Repeated:
		e.p("%s%s = %s;", body, m, jsonReadRepeatedExpr(f, v))

	default:
		e.p("%s%s = %s;", body, m, jsonReadValueExpr(f, v))
	}

	e.p("%s}", in)
}

func jsonReadValueExpr(f *ir.Field, expr string) string {
	switch {
	case f.Is64Bit():
		return "BigInt(" + expr + ")"
	case f.Kind == ir.KindBytes:
		return "decodeBase64Bytes(" + expr + ")"
	case f.Kind == ir.KindFloat || f.Kind == ir.KindDouble:
		return "Number(" + expr + ")"
	default:
		return expr
	}
}

func jsonReadRepeatedExpr(f *ir.Field, expr string) string {
	switch {
	case f.Is64Bit():
		return expr + ".map(BigInt)"
	case f.Kind == ir.KindBytes:
		return expr + ".map(decodeBase64Bytes)"
	case f.Kind == ir.KindFloat || f.Kind == ir.KindDouble:
		return expr + ".map(Number)"
	default:
		return expr
	}
}
