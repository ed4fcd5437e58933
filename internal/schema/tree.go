package schema

import "strings"

// TreeNode wraps a Node with its absolute path from the module root and its
// pre-partitioned child views. The renderer only reads it.
type TreeNode struct {
	Node *Node

	// Path is the ordered qualified-name sequence from the module root down
	// to and including this node.
	Path []QName

	// Augmenting marks top-level entries grafted onto another path by an
	// augment statement. The augmentation target is Path without the final
	// segment.
	Augmenting bool

	// Children holds ordinary data-node children in encounter order. For a
	// choice node these are its cases.
	Children []*TreeNode

	// Actions holds action children of a container or list, including
	// actions introduced via augmentation.
	Actions []*TreeNode

	// Input and Output are the parameter subtrees of rpc and action nodes.
	// Nil when the operation declares none.
	Input  *TreeNode
	Output *TreeNode
}

// Name returns the node's qualified name.
func (t *TreeNode) Name() QName {
	return t.Node.Name
}

// HasInput reports whether the operation has a non-empty input subtree.
func (t *TreeNode) HasInput() bool {
	return t.Input != nil && len(t.Input.Children) > 0
}

// HasOutput reports whether the operation has a non-empty output subtree.
func (t *TreeNode) HasOutput() bool {
	return t.Output != nil && len(t.Output.Children) > 0
}

// PathString renders the path as /name/name with bare local names.
func (t *TreeNode) PathString() string {
	var b strings.Builder
	for _, q := range t.Path {
		b.WriteString("/")
		b.WriteString(q.LocalName)
	}
	return b.String()
}

// Context is the resolved schema graph for one run: every known module plus
// the combined top-level tree. Top-level entries are module roots and
// augmenting subtrees, in encounter order.
type Context struct {
	Modules []*Module
	Roots   []*TreeNode
}

// FindModule resolves a module by name and optional revision. An empty
// revision matches any. Returns *NotFoundError when no module matches.
func (c *Context) FindModule(name, revision string) (*Module, error) {
	for _, m := range c.Modules {
		if m.Name != name {
			continue
		}
		if revision == "" || m.Revision == revision {
			return m, nil
		}
	}
	return nil, &NotFoundError{Name: name, Revision: revision}
}

// ModuleByNamespace returns the module owning the namespace, or nil.
func (c *Context) ModuleByNamespace(ns string) *Module {
	for _, m := range c.Modules {
		if m.Namespace == ns {
			return m
		}
	}
	return nil
}
