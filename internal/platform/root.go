package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrNoRoot is returned by FindRoot when no directory above the start holds a
// notebook.
var ErrNoRoot = errors.New("no notebook found")

// rootMarker is an entry whose presence makes a directory a notebook.
type rootMarker struct {
	name string
	dir  bool
}

// rootMarkers lists what each adapter leaves behind: the config file written
// by `notebook init`, an optional .notebook directory, the notes collection of
// the fs adapter and the database of the sqlite adapter.
var rootMarkers = []rootMarker{
	{name: ConfigFileName},
	{name: ".notebook", dir: true},
	{name: "notes.json"},
	{name: "notebook.db"},
}

func (m rootMarker) in(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, m.name))
	return err == nil && info.IsDir() == m.dir
}

// FindRoot returns the absolute path of the closest directory, startDir
// included, that holds one of the notebook markers.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		for _, m := range rootMarkers {
			if m.in(dir) {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoRoot
		}
		dir = parent
	}
}
