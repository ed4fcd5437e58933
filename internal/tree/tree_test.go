package tree

import (
	"strings"
	"testing"

	"github.com/yangdev/ytree/internal/schema"
)

// Test fixtures are built by hand rather than loaded from documents so the
// renderer is exercised against exactly the graph shape each test needs.

const exampleNS = "urn:example"

func newModule(name, ns, prefix string) *schema.Module {
	return &schema.Module{Name: name, Revision: "2024-01-15", Namespace: ns, Prefix: prefix}
}

func newNode(ns string, kind schema.Kind, name string) *schema.TreeNode {
	q := schema.QName{Namespace: ns, LocalName: name}
	return &schema.TreeNode{
		Node: &schema.Node{Name: q, Kind: kind, Config: true},
		Path: []schema.QName{q},
	}
}

// addChild reparents n under parent, recomputing its path.
func addChild(parent, n *schema.TreeNode) *schema.TreeNode {
	n.Path = append(append([]schema.QName{}, parent.Path...), n.Node.Name)
	parent.Children = append(parent.Children, n)
	return n
}

func addAction(parent, n *schema.TreeNode) *schema.TreeNode {
	n.Path = append(append([]schema.QName{}, parent.Path...), n.Node.Name)
	n.Node.Config = false
	parent.Actions = append(parent.Actions, n)
	return n
}

func leafNode(ns, name, typ string) *schema.TreeNode {
	n := newNode(ns, schema.KindLeaf, name)
	n.Node.Type = &schema.Type{Name: typ}
	return n
}

// params builds an operation's input or output container around children.
func params(op *schema.TreeNode, name string, children ...*schema.TreeNode) *schema.TreeNode {
	box := newNode(op.Node.Name.Namespace, schema.KindContainer, name)
	box.Node.Config = false
	box.Path = append(append([]schema.QName{}, op.Path...), box.Node.Name)
	for _, c := range children {
		c.Node.Config = false
		addChild(box, c)
	}
	return box
}

func renderText(t *testing.T, ctx *schema.Context, module string, opts Options) string {
	t.Helper()
	lines, err := Render(ctx, module, "", opts)
	if err != nil {
		t.Fatalf("Render(%s) failed: %v", module, err)
	}
	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.String()
	}
	return strings.Join(texts, "\n")
}

// exampleContext builds the reference module: a server list keyed by id with
// a deprecated optional name leaf.
func exampleContext() *schema.Context {
	mod := newModule("example", exampleNS, "ex")
	server := newNode(exampleNS, schema.KindList, "server")
	server.Node.Keys = []string{"id"}
	addChild(server, leafNode(exampleNS, "id", "string"))
	name := leafNode(exampleNS, "name", "string")
	name.Node.Status = schema.StatusDeprecated
	addChild(server, name)
	return &schema.Context{Modules: []*schema.Module{mod}, Roots: []*schema.TreeNode{server}}
}

// TestRenderExample checks the full reference output: key suppresses the
// optional marker, the deprecated leaf carries the x status, and the type
// column is aligned across the sibling group.
func TestRenderExample(t *testing.T) {
	got := renderText(t, exampleContext(), "example", Options{})
	want := strings.Join([]string{
		"module: example",
		"+--rw server* [id]",
		"   +--rw id       string",
		"   x--rw name?    string",
	}, "\n")
	if got != want {
		t.Errorf("rendered tree mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

// TestRenderNotFound checks that an unknown module or revision fails with
// the typed lookup error.
func TestRenderNotFound(t *testing.T) {
	ctx := exampleContext()

	if _, err := Render(ctx, "missing", "", Options{}); !schema.IsNotFound(err) {
		t.Errorf("Render(missing) error = %v, want NotFoundError", err)
	}
	if _, err := Render(ctx, "example", "1999-01-01", Options{}); !schema.IsNotFound(err) {
		t.Errorf("Render(example@1999-01-01) error = %v, want NotFoundError", err)
	}
	if _, err := Render(ctx, "example", "2024-01-15", Options{}); err != nil {
		t.Errorf("Render with matching revision failed: %v", err)
	}
}

// TestDepthLimit checks that the budget counts nesting from each entry point
// and that exhaustion silently stops the branch.
func TestDepthLimit(t *testing.T) {
	got := renderText(t, exampleContext(), "example", Options{Depth: 1})
	want := strings.Join([]string{
		"module: example",
		"+--rw server* [id]",
	}, "\n")
	if got != want {
		t.Errorf("depth-limited tree mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}

	// Depth 2 reaches the leafs again.
	if got := renderText(t, exampleContext(), "example", Options{Depth: 2}); !strings.Contains(got, "id") {
		t.Errorf("depth 2 should include list children, got:\n%s", got)
	}
}

// TestDepthBudgetPerEntryPoint checks that one deep root does not starve a
// sibling root of budget.
func TestDepthBudgetPerEntryPoint(t *testing.T) {
	mod := newModule("example", exampleNS, "ex")
	deep := newNode(exampleNS, schema.KindContainer, "a")
	addChild(addChild(deep, newNode(exampleNS, schema.KindContainer, "b")), newNode(exampleNS, schema.KindContainer, "c"))
	flat := newNode(exampleNS, schema.KindContainer, "z")
	addChild(flat, leafNode(exampleNS, "v", "string"))
	ctx := &schema.Context{Modules: []*schema.Module{mod}, Roots: []*schema.TreeNode{deep, flat}}

	got := renderText(t, ctx, "example", Options{Depth: 2})
	if !strings.Contains(got, "v?") {
		t.Errorf("second root should get the full budget, got:\n%s", got)
	}
	if strings.Contains(got, " c") {
		t.Errorf("grandchild c exceeds depth 2, got:\n%s", got)
	}
}

// TestTruncation checks that every emitted line is cut to the configured
// width, headers included.
func TestTruncation(t *testing.T) {
	lines, err := Render(exampleContext(), "example", "", Options{LineLength: 10})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	for _, l := range lines {
		if n := len([]rune(l.String())); n > 10 {
			t.Errorf("line %q has %d runes, want <= 10", l, n)
		}
	}
	if lines[0].String() != "module: ex" {
		t.Errorf("truncated header = %q, want %q", lines[0], "module: ex")
	}
}

// TestChoiceCase checks the flattened choice rendering: one line for the
// choice, one per case, case children below the case, and an empty case
// still emitting its line.
func TestChoiceCase(t *testing.T) {
	mod := newModule("example", exampleNS, "ex")
	transport := newNode(exampleNS, schema.KindContainer, "transport")
	mode := addChild(transport, newNode(exampleNS, schema.KindChoice, "mode"))
	tcp := addChild(mode, newNode(exampleNS, schema.KindCase, "tcp"))
	port := leafNode(exampleNS, "port", "uint16")
	addChild(tcp, port)
	addChild(mode, newNode(exampleNS, schema.KindCase, "tls"))
	ctx := &schema.Context{Modules: []*schema.Module{mod}, Roots: []*schema.TreeNode{transport}}

	got := renderText(t, ctx, "example", Options{})
	want := strings.Join([]string{
		"module: example",
		"+--rw transport",
		"   +--rw (mode)?",
		"      +--:(tcp)",
		"      |  +--rw port?    uint16",
		"      +--:(tls)",
	}, "\n")
	if got != want {
		t.Errorf("choice rendering mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

// TestChoiceSuppressionScope checks that the suppression set is emptied once
// a choice subtree is done: a later sibling list at the same depth still
// applies its keys.
func TestChoiceSuppressionScope(t *testing.T) {
	mod := newModule("example", exampleNS, "ex")
	box := newNode(exampleNS, schema.KindContainer, "box")
	mode := addChild(box, newNode(exampleNS, schema.KindChoice, "mode"))
	addChild(mode, newNode(exampleNS, schema.KindCase, "a"))
	users := addChild(box, newNode(exampleNS, schema.KindList, "users"))
	users.Node.Keys = []string{"uid"}
	addChild(users, leafNode(exampleNS, "uid", "string"))
	ctx := &schema.Context{Modules: []*schema.Module{mod}, Roots: []*schema.TreeNode{box}}

	got := renderText(t, ctx, "example", Options{})
	if strings.Contains(got, "uid?") {
		t.Errorf("key leaf uid must not render as optional:\n%s", got)
	}
}

// TestAugmentGrouping checks that augmenting nodes sharing a target render
// under one header with correct continuation flags, that distinct targets get
// separate headers in encounter order, and that duplicate schema paths
// collapse.
func TestAugmentGrouping(t *testing.T) {
	sys := newModule("sys", "urn:sys", "s")
	system := newNode("urn:sys", schema.KindContainer, "system")
	dns := addChild(system, newNode("urn:sys", schema.KindContainer, "dns"))

	ext := newModule("ext", "urn:ext", "e")
	timeout := newNode("urn:ext", schema.KindContainer, "timeout")
	timeout.Path = append(append([]schema.QName{}, dns.Path...), timeout.Node.Name)
	timeout.Augmenting = true
	addChild(timeout, leafNode("urn:ext", "seconds", "uint32"))
	retries := leafNode("urn:ext", "retries", "uint8")
	retries.Path = append(append([]schema.QName{}, dns.Path...), retries.Node.Name)
	retries.Augmenting = true
	elsewhere := leafNode("urn:ext", "banner", "string")
	elsewhere.Path = append(append([]schema.QName{}, system.Path...), elsewhere.Node.Name)
	elsewhere.Augmenting = true

	ctx := &schema.Context{
		Modules: []*schema.Module{sys, ext},
		// retries appears twice; the duplicate schema path must collapse.
		Roots: []*schema.TreeNode{system, timeout, retries, elsewhere, retries},
	}

	got := renderText(t, ctx, "ext", Options{})
	want := strings.Join([]string{
		"module: ext",
		"augment /s:system/s:dns:",
		"+--rw timeout",
		"|  +--rw seconds?    uint32",
		"+--rw retries?    uint8",
		"augment /s:system:",
		"+--rw banner?    string",
	}, "\n")
	if got != want {
		t.Errorf("augment rendering mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

// TestRPCRendering checks the rpc section: input only when it has children,
// -w flags below input, ro below output, and sibling continuation between
// rpcs.
func TestRPCRendering(t *testing.T) {
	mod := newModule("example", exampleNS, "ex")
	restart := newNode(exampleNS, schema.KindRPC, "restart")
	restart.Node.Config = false
	restart.Input = params(restart, "input", leafNode(exampleNS, "delay", "uint32"))
	status := newNode(exampleNS, schema.KindRPC, "status")
	status.Node.Config = false
	status.Output = params(status, "output", leafNode(exampleNS, "state", "string"))
	mod.RPCs = []*schema.TreeNode{restart, status}
	ctx := &schema.Context{Modules: []*schema.Module{mod}}

	got := renderText(t, ctx, "example", Options{})
	want := strings.Join([]string{
		"module: example",
		"RPCs:",
		"+---x restart",
		"|  +---w input",
		"|     +---w delay?    uint32",
		"+---x status",
		"   +--ro output",
		"      +--ro state?    string",
	}, "\n")
	if got != want {
		t.Errorf("rpc rendering mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
	if strings.Contains(got, "+---w output") || strings.Count(got, "input") != 1 {
		t.Errorf("unexpected parameter sections:\n%s", got)
	}
}

// TestNotificationRendering checks the -n flag and read-only children.
func TestNotificationRendering(t *testing.T) {
	mod := newModule("example", exampleNS, "ex")
	started := newNode(exampleNS, schema.KindNotification, "started")
	started.Node.Config = false
	at := leafNode(exampleNS, "at", "string")
	at.Node.Config = false
	addChild(started, at)
	mod.Notifications = []*schema.TreeNode{started}
	ctx := &schema.Context{Modules: []*schema.Module{mod}}

	got := renderText(t, ctx, "example", Options{})
	want := strings.Join([]string{
		"module: example",
		"notifications:",
		"+---n started",
		"   +--ro at?    string",
	}, "\n")
	if got != want {
		t.Errorf("notification rendering mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

// TestActionRendering checks that actions follow a node's ordinary children
// and carry rpc-style input subtrees.
func TestActionRendering(t *testing.T) {
	mod := newModule("example", exampleNS, "ex")
	server := newNode(exampleNS, schema.KindContainer, "server")
	addChild(server, leafNode(exampleNS, "name", "string"))
	reset := addAction(server, newNode(exampleNS, schema.KindAction, "reset"))
	reset.Input = params(reset, "input", leafNode(exampleNS, "delay", "uint32"))
	ctx := &schema.Context{Modules: []*schema.Module{mod}, Roots: []*schema.TreeNode{server}}

	got := renderText(t, ctx, "example", Options{})
	want := strings.Join([]string{
		"module: example",
		"+--rw server",
		"   +--rw name?    string",
		"   +---x reset",
		"      +---w input",
		"         +---w delay?    uint32",
	}, "\n")
	if got != want {
		t.Errorf("action rendering mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

// TestPrefixOptions checks the always-prefix and module-name-prefix modes.
func TestPrefixOptions(t *testing.T) {
	ctx := exampleContext()

	got := renderText(t, ctx, "example", Options{PrefixMainModule: true})
	if !strings.Contains(got, "+--rw ex:server* [id]") {
		t.Errorf("prefix-main-module should prefix own nodes:\n%s", got)
	}

	got = renderText(t, ctx, "example", Options{PrefixMainModule: true, PrefixModuleName: true})
	if !strings.Contains(got, "+--rw example:server* [id]") {
		t.Errorf("prefix-module should use the module name:\n%s", got)
	}
}

// TestLeafrefType checks the arrow rendering and own-prefix stripping.
func TestLeafrefType(t *testing.T) {
	mod := newModule("example", exampleNS, "ex")
	box := newNode(exampleNS, schema.KindContainer, "box")
	ref := newNode(exampleNS, schema.KindLeaf, "mgmt")
	ref.Node.Type = &schema.Type{Name: "leafref", Target: "/ex:interfaces/ex:interface/o:name"}
	addChild(box, ref)
	ctx := &schema.Context{Modules: []*schema.Module{mod}, Roots: []*schema.TreeNode{box}}

	got := renderText(t, ctx, "example", Options{})
	if !strings.Contains(got, "-> /interfaces/interface/o:name") {
		t.Errorf("leafref target should lose its own prefixes only:\n%s", got)
	}
}

// TestIfFeatures checks the conditional-feature suffix.
func TestIfFeatures(t *testing.T) {
	mod := newModule("example", exampleNS, "ex")
	box := newNode(exampleNS, schema.KindContainer, "box")
	l := leafNode(exampleNS, "port", "uint16")
	l.Node.IfFeatures = []string{"ssh", "tls"}
	addChild(box, l)
	ctx := &schema.Context{Modules: []*schema.Module{mod}, Roots: []*schema.TreeNode{box}}

	got := renderText(t, ctx, "example", Options{})
	if !strings.Contains(got, "uint16 {ssh,tls}?") {
		t.Errorf("if-feature suffix missing:\n%s", got)
	}
}

// TestForeignChildrenSkipped checks that the data walk only renders nodes
// owned by the module being printed.
func TestForeignChildrenSkipped(t *testing.T) {
	mod := newModule("example", exampleNS, "ex")
	other := newModule("other", "urn:other", "o")
	box := newNode(exampleNS, schema.KindContainer, "box")
	addChild(box, leafNode(exampleNS, "mine", "string"))
	addChild(box, leafNode("urn:other", "theirs", "string"))
	ctx := &schema.Context{Modules: []*schema.Module{mod, other}, Roots: []*schema.TreeNode{box}}

	got := renderText(t, ctx, "example", Options{})
	if strings.Contains(got, "theirs") {
		t.Errorf("foreign child must not render with this module:\n%s", got)
	}
	// With the foreign sibling filtered out, mine is the last child and must
	// not draw a continuation for it.
	if strings.Contains(got, "|") {
		t.Errorf("continuation flags must be computed on the filtered siblings:\n%s", got)
	}
}

// TestHelpLegend sanity-checks the symbol legend.
func TestHelpLegend(t *testing.T) {
	help := Help()
	for _, marker := range []string{"+  for current", "x  for deprecated", "o  for obsolete", "-x  for rpcs and actions", "{...}?"} {
		if !strings.Contains(help, marker) {
			t.Errorf("help legend missing %q", marker)
		}
	}
}
