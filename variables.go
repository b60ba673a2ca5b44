package pkgsmith

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

type StringMap map[string]string

// ExpandVariables takes a string with template variables like {{.pkgname}} and
// expands them with the given map. Recipe fields are rejected outright when
// their templates don't parse or reference a broken function, rather than
// passed through half-expanded.
func ExpandVariables(str string, variables StringMap) (string, error) {
	functions := template.FuncMap{
		"replace": func(from, to, input string) string { return strings.Replace(input, from, to, -1) },
		"trim":    func(input string) string { return strings.Trim(input, " \r\n\t") },
		"upper":   func(input string) string { return strings.ToUpper(input) },
		"lower":   func(input string) string { return strings.ToLower(input) },
	}
	templ, err := template.New("").Funcs(functions).Parse(str)
	if err != nil {
		return "", fmt.Errorf("invalid string template '%s': %w", str, err)
	}
	var buf bytes.Buffer
	err = templ.Execute(&buf, variables)
	if err != nil {
		return "", fmt.Errorf("error expanding template '%s': %w", str, err)
	}
	return buf.String(), nil
}

// MergeVariables combines several variable maps into a single one. Duplicate
// keys will be overridden by the value in the last map which has the key.
func MergeVariables(varMaps ...StringMap) StringMap {
	merged := make(StringMap)
	for _, vars := range varMaps {
		for k, v := range vars {
			merged[k] = v
		}
	}
	return merged
}
