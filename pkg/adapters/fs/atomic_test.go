package fs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Run("Creates New File", func(t *testing.T) {
		tmpDir := t.TempDir()
		filename := filepath.Join(tmpDir, "notes.json")

		if err := writeFileAtomic(filename, []byte(`[]`), 0644); err != nil {
			t.Fatalf("writeFileAtomic failed: %v", err)
		}

		got, err := os.ReadFile(filename)
		if err != nil {
			t.Fatalf("Failed to read file: %v", err)
		}
		if string(got) != `[]` {
			t.Errorf("Expected content '[]', got '%s'", string(got))
		}
	})

	t.Run("Overwrites Existing File And Leaves No Temp Files", func(t *testing.T) {
		tmpDir := t.TempDir()
		filename := filepath.Join(tmpDir, "notes.json")

		if err := os.WriteFile(filename, []byte("initial"), 0644); err != nil {
			t.Fatalf("Setup failed: %v", err)
		}
		if err := writeFileAtomic(filename, []byte(`[{"id":"1"}]`), 0644); err != nil {
			t.Fatalf("writeFileAtomic failed: %v", err)
		}

		got, _ := os.ReadFile(filename)
		if string(got) != `[{"id":"1"}]` {
			t.Errorf("Expected overwritten content, got '%s'", string(got))
		}

		entries, _ := os.ReadDir(tmpDir)
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), TempFilePrefix) {
				t.Errorf("temp file left behind: %s", e.Name())
			}
		}
	})

	t.Run("Fails if Directory Missing", func(t *testing.T) {
		tmpDir := t.TempDir()
		filename := filepath.Join(tmpDir, "missing_folder", "notes.json")

		if err := writeFileAtomic(filename, []byte("fail"), 0644); err == nil {
			t.Error("Expected error when directory is missing, got nil")
		}
	})
}

func TestKeyOf(t *testing.T) {
	cases := map[string]struct {
		key string
		ok  bool
	}{
		"/data/notes.json":                   {"notes", true},
		"reminders.json":                     {"reminders", true},
		"/data/" + TempFilePrefix + "123":    {"", false},
		"/data/notes.json.bak":               {"", false},
		"/data/.hidden.json":                 {"", false},
		"/data/notebook.yaml":                {"", false},
		"/data/with space.json":              {"", false},
		"/data/" + TempFilePrefix + "1.json": {"", false},
	}
	for name, want := range cases {
		key, ok := keyOf(name)
		if key != want.key || ok != want.ok {
			t.Errorf("keyOf(%q) = %q, %v; want %q, %v", name, key, ok, want.key, want.ok)
		}
	}
}
