package templates

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	for _, name := range []string{"basic", "console", "web"} {
		tmpl, err := Get(name)
		if err != nil {
			t.Fatalf("Get(%q): %v", name, err)
		}
		if tmpl.Name != name {
			t.Errorf("Get(%q).Name = %q", name, tmpl.Name)
		}
		if _, ok := tmpl.Files["src/main.poh"]; !ok {
			t.Errorf("template %q has no src/main.poh", name)
		}
	}
}

func TestGetUnknown(t *testing.T) {
	if _, err := Get("nope"); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestList(t *testing.T) {
	got := List()
	want := []string{"basic", "console", "web"}
	if len(got) != len(want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("List() = %v, want %v", got, want)
		}
	}
}

func TestCreate(t *testing.T) {
	dir := t.TempDir()
	tmpl, err := Get("basic")
	if err != nil {
		t.Fatal(err)
	}

	cfg := Config{ProjectName: "demo", Description: "A demo project"}
	if err := tmpl.Create(dir, cfg); err != nil {
		t.Fatalf("Create: %v", err)
	}

	main, err := os.ReadFile(filepath.Join(dir, "src", "main.poh"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(main), "# demo") {
		t.Errorf("main.poh missing project name:\n%s", main)
	}

	readme, err := os.ReadFile(filepath.Join(dir, "README.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(readme), "A demo project") {
		t.Errorf("README missing description:\n%s", readme)
	}

	if _, err := os.Stat(filepath.Join(dir, "tests")); err != nil {
		t.Errorf("tests dir not created: %v", err)
	}
}
