package generate

import (
	"strings"

	"github.com/noahseger/ProtoScript/internal/ir"
)

func (e *emitter) typesBlock() {
	for _, node := range e.file.Nodes {
		if e.ts {
			e.tsTypeDecl(node, "")
		} else {
			e.jsTypeDecl(node)
		}
	}
}

func (e *emitter) tsTypeDecl(node ir.Node, indent string) {
	if node.Enum != nil {
		enum := node.Enum
		e.comment(indent, enum.Comments.Leading)
		var names []string
		for _, v := range enum.Values {
			names = append(names, `"`+v.Name+`"`)
		}
		e.p("%sexport type %s = %s;", indent, localName(enum.NamespacedName), strings.Join(names, " | "))
		e.p("")
		return
	}

	m := node.Message
	e.comment(indent, m.Comments.Leading)
	e.p("%sexport interface %s {", indent, localName(m.NamespacedName))
	for i := range m.Fields {
		f := &m.Fields[i]
		e.comment(indent+"  ", f.Comments.Leading)
		if f.Optional {
			e.p("%s  %s?: %s | null | undefined;", indent, f.Name, e.fieldTypeExpr(f))
		} else {
			e.p("%s  %s: %s;", indent, f.Name, e.fieldTypeExpr(f))
		}
	}
	e.p("%s}", indent)
	e.p("")

	if len(m.Children) > 0 {
		e.p("%sexport namespace %s {", indent, localName(m.NamespacedName))
		for _, child := range m.Children {
			e.tsTypeDecl(child, indent+"  ")
		}
		e.p("%s}", indent)
		e.p("")
	}
}

// jsTypeDecl renders JSDoc typedefs; nesting flattens into dotted
// namepaths.
func (e *emitter) jsTypeDecl(node ir.Node) {
	if node.Enum != nil {
		enum := node.Enum
		var names []string
		for _, v := range enum.Values {
			names = append(names, `"`+v.Name+`"`)
		}
		e.p("/**")
		e.p(" * @typedef {(%s)} %s", strings.Join(names, "|"), enum.NamespacedName)
		e.p(" */")
		e.p("")
		return
	}

	m := node.Message
	e.p("/**")
	e.p(" * @typedef {Object} %s", m.NamespacedName)
	for i := range m.Fields {
		f := &m.Fields[i]
		typ := e.fieldTypeExpr(f)
		if f.Optional {
			typ += "="
		}
		e.p(" * @property {%s} %s", typ, f.Name)
	}
	e.p(" */")
	e.p("")

	for _, child := range m.Children {
		e.jsTypeDecl(child)
	}
}

func (e *emitter) fieldTypeExpr(f *ir.Field) string {
	if f.Map {
		return "Record<string, " + f.MapValue.TSType + ">"
	}
	if f.Repeated {
		return f.TSType + "[]"
	}
	return f.TSType
}
