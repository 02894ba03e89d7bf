package symptomcheck

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var rawVersion string

// Version is the release of the module and its binaries.
var Version = strings.TrimSpace(rawVersion)
