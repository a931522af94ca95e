package generate

import (
	"fmt"
	"strings"

	"github.com/noahseger/ProtoScript/internal/config"
	"github.com/noahseger/ProtoScript/internal/ir"
)

// Emit renders one IR file into a single source string: header, imports,
// type declarations, plugin services, then the binary and JSON codec
// blocks. The external formatter runs afterwards; output here only needs
// to be syntactically valid.
func Emit(file *ir.File, cfg config.Config, plugins []Plugin) (string, error) {
	e := &emitter{
		file: file,
		cfg:  cfg,
		ts:   cfg.Language == config.LangTypeScript,
	}

	var fragments []Fragment
	for _, plugin := range plugins {
		fragments = append(fragments, plugin(file, cfg))
	}

	e.header()
	typesOnly := cfg.TypeScript.EmitDeclarationOnly
	if !typesOnly {
		e.runtimeImports()
		for _, f := range fragments {
			if f.Imports != "" {
				e.p("%s", strings.TrimSuffix(f.Imports, "\n"))
			}
		}
	}
	e.crossFileImports(typesOnly)
	e.p("")

	e.typesBlock()

	if typesOnly {
		return e.sb.String(), e.err
	}

	for _, f := range fragments {
		if f.Services != "" {
			e.p("")
			e.p("%s", strings.TrimSuffix(f.Services, "\n"))
		}
	}

	e.binaryBlock()
	e.jsonBlock()

	return e.sb.String(), e.err
}

type emitter struct {
	sb   strings.Builder
	file *ir.File
	cfg  config.Config
	ts   bool
	err  error
}

func (e *emitter) p(format string, args ...any) {
	if len(args) > 0 {
		fmt.Fprintf(&e.sb, format, args...)
	} else {
		e.sb.WriteString(format)
	}
	e.sb.WriteByte('\n')
}

// ann returns a TypeScript annotation or nothing in JavaScript mode.
func (e *emitter) ann(s string) string {
	if e.ts {
		return s
	}
	return ""
}

func (e *emitter) cast(expr, typ string) string {
	if e.ts {
		return expr + " as " + typ
	}
	return expr
}

func (e *emitter) header() {
	e.p("// THIS FILE WAS AUTOMATICALLY GENERATED BY protoc-gen-protoscript.")
	e.p("// DO NOT EDIT MANUALLY. Source: %s", e.file.Path)
}

func (e *emitter) runtimeImports() {
	if e.ts {
		e.p(`import type { ByteSource, PartialDeep } from "protoscript";`)
	}
	e.p("import {")
	e.p("  BinaryReader,")
	e.p("  BinaryWriter,")
	if e.file.HasBytes {
		e.p("  decodeBase64Bytes,")
		e.p("  encodeBase64Bytes,")
	}
	e.p(`} from "protoscript";`)
}

func (e *emitter) crossFileImports(typesOnly bool) {
	for _, imp := range e.file.Imports {
		names := imp.Names
		if typesOnly {
			names = typeNamesOnly(names)
		}
		if len(names) == 0 {
			continue
		}
		kw := "import"
		if typesOnly && e.ts {
			kw = "import type"
		}
		e.p(`%s { %s } from "%s";`, kw, strings.Join(names, ", "), imp.Path)
	}
}

func typeNamesOnly(names []string) []string {
	var out []string
	for _, n := range names {
		if !strings.HasSuffix(n, "JSON") {
			out = append(out, n)
		}
	}
	return out
}

// comment renders a leading comment block as JSDoc, preserving the
// original line structure.
func (e *emitter) comment(indent, text string) {
	if text == "" {
		return
	}
	e.p("%s/**", indent)
	for _, line := range strings.Split(text, "\n") {
		e.p("%s *%s", indent, strings.TrimRight(" "+strings.TrimPrefix(line, " "), " "))
	}
	e.p("%s */", indent)
}

// localName is the identifier a node is declared under: the last
// segment of its namespaced name.
func localName(namespaced string) string {
	if i := strings.LastIndex(namespaced, "."); i >= 0 {
		return namespaced[i+1:]
	}
	return namespaced
}

// jsonExpr rewrites a type-reference expression to its JSON-codec
// counterpart by suffixing the top-level segment: Foo.Bar -> FooJSON.Bar.
func jsonExpr(ref string) string {
	if i := strings.Index(ref, "."); i >= 0 {
		return ref[:i] + "JSON" + ref[i:]
	}
	return ref + "JSON"
}
