package emit

import (
	"fmt"
	"strings"
)

// Manifest lists the modules a run emitted, in emission order, tagged
// with the run's build ID. The driver is responsible for generating the
// ID (via github.com/google/uuid) and writing both the manifest and each
// module's .asm text to disk — the core stays I/O-free.
type Manifest struct {
	BuildID string
	Modules []string
}

func NewManifest(buildID string, modules []Module) Manifest {
	names := make([]string, len(modules))
	for i, m := range modules {
		names[i] = m.Name
	}
	return Manifest{BuildID: buildID, Modules: names}
}

func (m Manifest) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "build %s\n", m.BuildID)
	for _, name := range m.Modules {
		b.WriteString(name)
		b.WriteString("\n")
	}
	return b.String()
}
