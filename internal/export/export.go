// Package export выгружает данные паттерна в JSON-файл.
package export

import (
	"encoding/json"
	"io"
	"strings"
)

const fallbackName = "component-pattern"

// Write пишет data как JSON с отступом в 4 пробела, без html-экранирования.
func Write(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	return enc.Encode(data)
}

// FileName — "<name>.json"; разделители путей, кавычки и управляющие
// символы заменяются на "_".
func FileName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == '"' || r == ':':
			return '_'
		case r < 0x20 || r == 0x7f:
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		name = fallbackName
	}
	return name + ".json"
}
