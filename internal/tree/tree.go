// Package tree renders a resolved schema module as an indented, annotated
// tree diagram: one line per node, pyang-style status/flags/name/type
// columns, connector glyphs threaded through ancestor levels, augmentation
// blocks, rpc and notification sections.
package tree

import (
	"fmt"
	"io"
	"math"

	"github.com/yangdev/ytree/internal/schema"
)

// unlimited stands in for "no limit" so the depth countdown and the width
// comparison need no zero special case.
const unlimited = math.MaxInt32

// Options configure one module's render pass.
type Options struct {
	// Depth caps nesting below each entry point (root node, augment group
	// member, rpc, notification). 0 renders full depth.
	Depth int

	// LineLength truncates every emitted line to this many runes.
	// 0 keeps lines whole.
	LineLength int

	// PrefixModuleName displays full module names instead of short prefixes.
	PrefixModuleName bool

	// PrefixMainModule prefixes even the rendered module's own nodes.
	PrefixMainModule bool
}

// Line is one finished line of output. It is immutable; truncation to the
// configured width happened when it was emitted.
type Line struct {
	text string
}

// String returns the line text.
func (l Line) String() string {
	return l.text
}

// role tags which operation subtree a node is rendered under. It decides the
// access flags of everything below an rpc or action.
type role int

const (
	rolePlain role = iota
	roleInput
	roleOutput
)

// Render renders one module from the schema context into its ordered line
// sequence. Revision may be empty to match any revision. A failed module
// lookup returns *schema.NotFoundError; it aborts this module only.
func Render(sctx *schema.Context, name, revision string, opts Options) ([]Line, error) {
	mod, err := sctx.FindModule(name, revision)
	if err != nil {
		return nil, err
	}
	r := &renderer{
		sctx:       sctx,
		module:     mod,
		opts:       opts,
		prefixes:   buildPrefixMap(sctx, mod, opts),
		depth:      opts.Depth,
		width:      opts.LineLength,
		suppressed: map[int]bool{},
	}
	if r.depth == 0 {
		r.depth = unlimited
	}
	if r.width == 0 {
		r.width = unlimited
	}
	r.run()
	return r.lines, nil
}

// Write renders one module and writes each line to w.
func Write(w io.Writer, sctx *schema.Context, name, revision string, opts Options) error {
	lines, err := Render(sctx, name, revision, opts)
	if err != nil {
		return err
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

// renderer holds the traversal state of a single module's render pass:
// remaining depth budget, connector stack and choice/case suppression set.
// It is not safe for concurrent use; concurrent renders need one renderer
// each, which Render guarantees.
type renderer struct {
	sctx   *schema.Context
	module *schema.Module
	opts   Options

	// prefixes maps namespace to display prefix. Built once before the first
	// line and never mutated afterwards.
	prefixes map[string]string

	// depth is the remaining recursion budget, counted down per level and
	// restored on the way out, so each entry point gets the full budget.
	depth int

	// width is the emission truncation limit in runes.
	width int

	// connected records, for each ancestor level, whether that ancestor has
	// a later sibling. It drives the | vs blank connector columns.
	connected []bool

	// suppressed records path positions occupied by synthetic choice/case
	// levels within the choice subtree currently being rendered.
	suppressed map[int]bool

	lines []Line
}

// emit truncates the finished text and appends it as a Line.
func (r *renderer) emit(text string) {
	if runes := []rune(text); len(runes) > r.width {
		text = string(runes[:r.width])
	}
	r.lines = append(r.lines, Line{text: text})
}

// node formats and emits the line for a single schema node.
func (r *renderer) node(n *schema.TreeNode, ro role, keys []string, width int) {
	r.emit(r.formatLine(n, ro, keys, width))
}

// run emits the module in its fixed order: header, root data nodes,
// augmentation groups, rpcs, notifications.
func (r *renderer) run() {
	r.emit("module: " + r.module.Name)

	var roots []*schema.TreeNode
	for _, root := range r.sctx.Roots {
		if !root.Augmenting && r.owns(root) {
			roots = append(roots, root)
		}
	}
	width := r.groupWidth(roots, nil)
	for i, root := range roots {
		r.node(root, rolePlain, nil, width)
		r.walk(root, i+1 < len(roots), rolePlain, keysOf(root))
	}

	r.augments()

	if len(r.module.RPCs) > 0 {
		r.emit("RPCs:")
	}
	width = r.groupWidth(r.module.RPCs, nil)
	for i, rpc := range r.module.RPCs {
		r.node(rpc, rolePlain, nil, width)
		r.operationBody(rpc, i+1 < len(r.module.RPCs))
	}

	if len(r.module.Notifications) > 0 {
		r.emit("notifications:")
	}
	width = r.groupWidth(r.module.Notifications, nil)
	for _, n := range r.module.Notifications {
		r.node(n, rolePlain, nil, width)
		r.walk(n, false, rolePlain, nil)
	}
}

// walk renders n's subtree. hasMore is n's own later-sibling flag; it becomes
// the connector column every descendant line draws for n's level. keys are
// n's list keys, applicable to its direct children.
func (r *renderer) walk(n *schema.TreeNode, hasMore bool, ro role, keys []string) {
	r.depth--
	defer func() { r.depth++ }()
	if r.depth == 0 {
		return
	}

	r.connected = append(r.connected, hasMore)
	defer func() { r.connected = r.connected[:len(r.connected)-1] }()

	if n.Node.Kind == schema.KindChoice {
		r.cases(n, ro)
		return
	}

	children := r.ownedChildren(n)
	actions := r.ownedActions(n)
	width := r.groupWidth(children, keys)
	for i, c := range children {
		more := i+1 < len(children) || len(actions) > 0
		r.node(c, ro, keys, width)
		r.walk(c, more, ro, keysOf(c))
	}
	width = r.groupWidth(actions, nil)
	for i, a := range actions {
		r.node(a, rolePlain, nil, width)
		r.operationBody(a, i+1 < len(actions))
	}
}

// cases renders a choice's cases and their subtrees. The choice and case path
// positions enter the suppression set for exactly the duration of this
// subtree, so key-significance checks skip the synthetic levels.
func (r *renderer) cases(choice *schema.TreeNode, ro role) {
	pos := len(choice.Path) - 1
	r.suppressed[pos] = true
	defer delete(r.suppressed, pos)

	cases := r.ownedChildren(choice)
	width := r.groupWidth(cases, nil)
	for i, c := range cases {
		cpos := len(c.Path) - 1
		r.suppressed[cpos] = true
		r.node(c, ro, nil, width)
		r.walk(c, i+1 < len(cases), ro, nil)
		delete(r.suppressed, cpos)
	}
}

// operationBody renders an rpc or action's input and output subtrees, each
// only when it has children. hasMore is the operation's own later-sibling
// flag: the input/output lines sit one level below the operation.
func (r *renderer) operationBody(op *schema.TreeNode, hasMore bool) {
	in, out := op.HasInput(), op.HasOutput()
	if !in && !out {
		return
	}
	r.connected = append(r.connected, hasMore)
	defer func() { r.connected = r.connected[:len(r.connected)-1] }()

	if in {
		r.node(op.Input, roleInput, nil, 0)
		r.walk(op.Input, out, roleInput, nil)
	}
	if out {
		r.node(op.Output, roleOutput, nil, 0)
		r.walk(op.Output, false, roleOutput, nil)
	}
}

// augments renders the module's augmenting nodes grouped by target path, in
// first-encounter order, members unique by schema path.
func (r *renderer) augments() {
	type augmentGroup struct {
		target []schema.QName
		nodes  []*schema.TreeNode
	}
	var groups []*augmentGroup
	index := map[string]*augmentGroup{}
	seen := map[string]bool{}
	for _, n := range r.sctx.Roots {
		if !n.Augmenting || !r.owns(n) || len(n.Path) < 2 {
			continue
		}
		full := pathKey(n.Path)
		if seen[full] {
			continue
		}
		seen[full] = true
		target := n.Path[:len(n.Path)-1]
		key := pathKey(target)
		g := index[key]
		if g == nil {
			g = &augmentGroup{target: target}
			index[key] = g
			groups = append(groups, g)
		}
		g.nodes = append(g.nodes, n)
	}

	for _, g := range groups {
		r.emit("augment " + r.targetPath(g.target) + ":")
		width := r.groupWidth(g.nodes, nil)
		for i, n := range g.nodes {
			more := i+1 < len(g.nodes)
			r.node(n, rolePlain, nil, width)
			if n.Node.Kind.IsOperation() {
				r.operationBody(n, more)
			} else {
				r.walk(n, more, rolePlain, keysOf(n))
			}
		}
	}
}

// owns reports whether the node belongs to the rendered module's namespace.
// The data-tree walk skips foreign nodes; they render with their own module.
func (r *renderer) owns(n *schema.TreeNode) bool {
	return n.Node.Name.Namespace == r.module.Namespace
}

// ownedChildren materializes the node's data children owned by the rendered
// module, so continuation flags can be computed by position.
func (r *renderer) ownedChildren(n *schema.TreeNode) []*schema.TreeNode {
	out := make([]*schema.TreeNode, 0, len(n.Children))
	for _, c := range n.Children {
		if r.owns(c) {
			out = append(out, c)
		}
	}
	return out
}

// ownedActions is ownedChildren for the action-children view.
func (r *renderer) ownedActions(n *schema.TreeNode) []*schema.TreeNode {
	out := make([]*schema.TreeNode, 0, len(n.Actions))
	for _, a := range n.Actions {
		if r.owns(a) {
			out = append(out, a)
		}
	}
	return out
}

// keysOf returns the key list a node imposes on its direct children.
func keysOf(n *schema.TreeNode) []string {
	if n.Node.Kind == schema.KindList {
		return n.Node.Keys
	}
	return nil
}

func pathKey(path []schema.QName) string {
	key := ""
	for _, q := range path {
		key += "/" + q.String()
	}
	return key
}
