package notebook

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the version of the library.
var Version = strings.TrimSpace(version)
