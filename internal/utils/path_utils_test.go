package utils

import "testing"

func TestModuleNameFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"lib/json.scope.yaml", "Json"},
		{"Main.scope.yml", "Main"},
		{"/abs/dir/über.scope.yaml", "Über"},
		{"notes.txt", "Notes.txt"},
		{".scope.yaml", ""},
	}
	for _, tt := range tests {
		if got := ModuleNameFromPath(tt.path); got != tt.want {
			t.Errorf("ModuleNameFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestIsScriptFile(t *testing.T) {
	for path, want := range map[string]bool{
		"a.scope.yaml": true,
		"a.scope.yml":  true,
		"a.yaml":       false,
		"scope.yaml":   false,
	} {
		if got := IsScriptFile(path); got != want {
			t.Errorf("IsScriptFile(%q) = %v, want %v", path, got, want)
		}
	}
}
