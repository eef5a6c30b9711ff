package viewport

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// Namer issues per-instance prefixes for SVG defs so that gradients and
// filters of maps rendered side by side never collide.
type Namer struct {
	seq atomic.Uint64
}

// NewNamer creates a namer starting at 1.
func NewNamer() *Namer {
	return &Namer{}
}

// Next returns "<identifier>-<n>" with the identifier reduced to characters
// valid in an XML id.
func (n *Namer) Next(identifier string) string {
	return "rm-" + sanitize(identifier) + "-" + strconv.FormatUint(n.seq.Add(1), 10)
}

func sanitize(identifier string) string {
	var b strings.Builder
	for _, r := range identifier {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
		if b.Len() >= 32 {
			break
		}
	}
	if b.Len() == 0 {
		return "x"
	}
	return b.String()
}
