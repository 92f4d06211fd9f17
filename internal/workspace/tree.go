// Package workspace holds a project's file tree. The orchestrator treats file
// contents as opaque and only forwards edits into the tree.
package workspace

import "strings"

// FileNode is a file or directory in the project tree. Dir is stored
// explicitly so an empty directory survives encoding.
type FileNode struct {
	Name     string     `json:"name" yaml:"name" toml:"name"`
	Path     string     `json:"path" yaml:"path" toml:"path"`
	Dir      bool       `json:"dir,omitempty" yaml:"dir,omitempty" toml:"dir,omitempty"`
	Content  string     `json:"content,omitempty" yaml:"content,omitempty" toml:"content,omitempty"`
	Children []FileNode `json:"children,omitempty" yaml:"children,omitempty" toml:"children,omitempty"`
}

// IsDir reports whether the node is a directory. A node with children is one
// even when Dir is unset.
func (n FileNode) IsDir() bool { return n.Dir || len(n.Children) > 0 }

// Clone returns a deep copy of nodes.
func Clone(nodes []FileNode) []FileNode {
	if nodes == nil {
		return nil
	}
	out := make([]FileNode, len(nodes))
	for i, n := range nodes {
		out[i] = n
		out[i].Children = Clone(n.Children)
	}
	return out
}

// UpdateContent returns a copy of nodes with the content of the node at path
// replaced. The second result reports whether a node matched.
func UpdateContent(nodes []FileNode, path, content string) ([]FileNode, bool) {
	out := Clone(nodes)
	return out, replace(out, path, content)
}

func replace(nodes []FileNode, path, content string) bool {
	for i := range nodes {
		if nodes[i].Path == path {
			nodes[i].Content = content
			return true
		}
		if nodes[i].Children != nil && replace(nodes[i].Children, path, content) {
			return true
		}
	}
	return false
}

// Find returns the node at path.
func Find(nodes []FileNode, path string) (FileNode, bool) {
	for _, n := range nodes {
		if n.Path == path {
			return n, true
		}
		if found, ok := Find(n.Children, path); ok {
			return found, true
		}
	}
	return FileNode{}, false
}

// Render draws the tree as an indented listing, directories suffixed with "/".
func Render(nodes []FileNode) string {
	var b strings.Builder
	render(&b, nodes, 0)
	return b.String()
}

func render(b *strings.Builder, nodes []FileNode, depth int) {
	for _, n := range nodes {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(n.Name)
		if n.IsDir() {
			b.WriteString("/")
		}
		b.WriteString("\n")
		render(b, n.Children, depth+1)
	}
}
