package utils

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/funvibe/canscope/internal/config"
)

// IsScriptFile checks if a file has a recognized script extension
func IsScriptFile(path string) bool {
	for _, ext := range config.ScriptFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// TrimScriptExt removes a recognized script extension from name.
func TrimScriptExt(name string) string {
	for _, ext := range config.ScriptFileExtensions {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}

// ModuleNameFromPath derives a module name from a script path.
// Example: "lib/json.scope.yaml" -> "Json".
func ModuleNameFromPath(path string) string {
	name := TrimScriptExt(filepath.Base(path))
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError && size == 0 {
		return ""
	}
	return string(unicode.ToUpper(r)) + name[size:]
}
