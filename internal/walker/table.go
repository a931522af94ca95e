package walker

import (
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"
)

// Entry locates one top-level or nested type: the file that declares it
// and the name chain from the file's type root down to it.
type Entry struct {
	File string
	Path []string

	Message *descriptorpb.DescriptorProto
	Enum    *descriptorpb.EnumDescriptorProto
}

// Table maps fully-qualified proto names (no leading dot) to their
// declaration sites. It spans the whole request and is read-only once
// built.
type Table struct {
	entries map[string]Entry
}

// BuildTable scans every file in the request, including files that are
// not themselves generated, so cross-file references resolve.
func BuildTable(files []*descriptorpb.FileDescriptorProto) *Table {
	t := &Table{entries: make(map[string]Entry)}
	for _, file := range files {
		pkg := file.GetPackage()
		for _, m := range file.GetMessageType() {
			t.addMessage(file.GetName(), pkg, nil, m)
		}
		for _, e := range file.GetEnumType() {
			t.addEnum(file.GetName(), pkg, nil, e)
		}
	}
	return t
}

func (t *Table) addMessage(file, pkg string, chain []string, m *descriptorpb.DescriptorProto) {
	chain = append(chain[:len(chain):len(chain)], m.GetName())
	t.entries[qualify(pkg, chain)] = Entry{File: file, Path: chain, Message: m}
	for _, nested := range m.GetNestedType() {
		t.addMessage(file, pkg, chain, nested)
	}
	for _, e := range m.GetEnumType() {
		t.addEnum(file, pkg, chain, e)
	}
}

func (t *Table) addEnum(file, pkg string, chain []string, e *descriptorpb.EnumDescriptorProto) {
	chain = append(chain[:len(chain):len(chain)], e.GetName())
	t.entries[qualify(pkg, chain)] = Entry{File: file, Path: chain, Enum: e}
}

// Lookup resolves a descriptor type reference. Leading dots are
// stripped so raw type_name values can be passed directly.
func (t *Table) Lookup(name string) (Entry, bool) {
	e, ok := t.entries[strings.TrimPrefix(name, ".")]
	return e, ok
}

func qualify(pkg string, chain []string) string {
	joined := strings.Join(chain, ".")
	if pkg == "" {
		return joined
	}
	return pkg + "." + joined
}
