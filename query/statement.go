package query

import (
	"strings"

	"github.com/raxodb/rack/value"
)

// Statement builds a query string from a template, substituting "{}" with
// successive positional args and "{name}" with named args (spec.md
// §4.3.1). It is the only sanctioned way to build queries programmatically
// — callers should never string-concatenate a query by hand, since a raw
// string value could otherwise inject its own operators.
//
// Each arg is converted with value.FromJSON and rendered with Value.Quoted:
// strings are quoted, lists are comma-joined, booleans render as
// True/False.
func Statement(target, template string, positional []any, named map[string]any) string {
	var b strings.Builder
	b.WriteString(target)
	b.WriteString(": ")

	pos := 0
	i := 0
	for i < len(template) {
		c := template[i]
		if c != '{' {
			b.WriteByte(c)
			i++
			continue
		}
		end := strings.IndexByte(template[i:], '}')
		if end < 0 {
			b.WriteString(template[i:])
			break
		}
		name := template[i+1 : i+end]
		i += end + 1
		if name == "" {
			if pos < len(positional) {
				b.WriteString(renderArg(positional[pos]))
				pos++
			}
			continue
		}
		if v, ok := named[name]; ok {
			b.WriteString(renderArg(v))
			continue
		}
		b.WriteString("{" + name + "}")
	}
	return b.String()
}

func renderArg(arg any) string {
	if vals, ok := arg.([]any); ok {
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = value.FromJSON(v).Quoted()
		}
		return strings.Join(parts, ", ")
	}
	if vals, ok := arg.([]string); ok {
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = value.String(v).Quoted()
		}
		return strings.Join(parts, ", ")
	}
	return value.FromJSON(arg).Quoted()
}
