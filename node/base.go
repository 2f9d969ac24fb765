package node

import "unicode/utf8"

const (
	// MaxNameLen is the maximum node name length in bytes. Longer names are
	// truncated at a rune boundary.
	MaxNameLen = 48
	// MaxChildren is the maximum number of children a Control ticks.
	MaxChildren = 16
)

// BaseNode bundles the identity shared by tasks and controls. Embed it in
// concrete node implementations and supply a Tick method to satisfy
// core.Node.
type BaseNode struct {
	name string
}

// NewBaseNode constructs a BaseNode, truncating name to MaxNameLen bytes.
func NewBaseNode(name string) BaseNode {
	return BaseNode{name: truncateName(name)}
}

// Name returns the node's name.
func (b *BaseNode) Name() string { return b.name }

func truncateName(name string) string {
	if len(name) <= MaxNameLen {
		return name
	}
	cut := MaxNameLen
	for cut > 0 && !utf8.RuneStart(name[cut]) {
		cut--
	}
	return name[:cut]
}
