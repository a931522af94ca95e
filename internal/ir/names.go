package ir

import (
	"strings"
	"unicode"
)

// AttrName converts a proto field name to the generated attribute name,
// lower camel case.
func AttrName(protoName string) string {
	parts := splitParts(protoName)
	if len(parts) == 0 {
		return ""
	}
	parts[0] = strings.ToLower(parts[0])
	for i := 1; i < len(parts); i++ {
		parts[i] = title(parts[i])
	}
	return strings.Join(parts, "")
}

// NamespacedName joins the dotted identifier chain from the file's type
// root down to the named entity.
func NamespacedName(chain []string) string {
	return strings.Join(chain, ".")
}

func splitParts(name string) []string {
	if name == "" {
		return nil
	}
	if strings.ContainsAny(name, "_-") {
		parts := strings.FieldsFunc(name, func(r rune) bool {
			return r == '_' || r == '-'
		})
		for i := range parts {
			parts[i] = strings.ToLower(parts[i])
		}
		return parts
	}
	return []string{name}
}

func title(s string) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
