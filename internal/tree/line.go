package tree

import (
	"strings"

	"github.com/yangdev/ytree/internal/schema"
)

// Connector glyphs, one three-column cell per ancestor level: a vertical
// continuation while the ancestor has later siblings, blank once it was the
// last child.
const (
	glyphContinue = "|  "
	glyphBlank    = "   "
)

// typeColumnGap separates the widest name of a sibling group from the type
// column.
const typeColumnGap = 4

// formatLine assembles the full text for one node:
//
//	<connectors><status>--<flags> <name><opts>    <type> <if-features>
//
// width is the widest name+opts in the node's sibling group; the type column
// is aligned against it. keys are the enclosing list's key names, if any.
func (r *renderer) formatLine(n *schema.TreeNode, ro role, keys []string, width int) string {
	var b strings.Builder
	for _, more := range r.connected {
		if more {
			b.WriteString(glyphContinue)
		} else {
			b.WriteString(glyphBlank)
		}
	}
	b.WriteString(statusMarker(n.Node.Status))
	b.WriteString("--")
	// Case lines carry no access column: the glyphs run straight into the
	// :(name) decoration.
	if n.Node.Kind != schema.KindCase {
		b.WriteString(flags(n, ro))
		b.WriteString(" ")
	}

	nameOpts := r.nameAndOpts(n, keys)
	b.WriteString(nameOpts)

	typ := r.typeColumn(n)
	features := featureColumn(n.Node.IfFeatures)
	if typ == "" && features == "" {
		return b.String()
	}

	pad := width - len([]rune(nameOpts)) + typeColumnGap
	if pad < 1 {
		pad = 1
	}
	b.WriteString(strings.Repeat(" ", pad))
	if typ != "" {
		b.WriteString(typ)
		if features != "" {
			b.WriteString(" ")
		}
	}
	b.WriteString(features)
	return b.String()
}

// groupWidth returns the widest rendered name+opts among the nodes, for
// sibling-group type-column alignment.
func (r *renderer) groupWidth(nodes []*schema.TreeNode, keys []string) int {
	width := 0
	for _, n := range nodes {
		if l := len([]rune(r.nameAndOpts(n, keys))); l > width {
			width = l
		}
	}
	return width
}

// statusMarker returns the one-character lifecycle column.
func statusMarker(s schema.Status) string {
	switch s {
	case schema.StatusDeprecated:
		return "x"
	case schema.StatusObsolete:
		return "o"
	default:
		return "+"
	}
}

// flags returns the two-character access column. The role wins over the node
// kind: everything under an rpc/action input is -w, everything under output
// is ro, whatever its own config-ness says.
func flags(n *schema.TreeNode, ro role) string {
	switch ro {
	case roleInput:
		return "-w"
	case roleOutput:
		return "ro"
	}
	switch n.Node.Kind {
	case schema.KindRPC, schema.KindAction:
		return "-x"
	case schema.KindNotification:
		return "-n"
	}
	if n.Node.Config {
		return "rw"
	}
	return "ro"
}

// nameAndOpts renders the display name with its kind decoration and
// cardinality suffix: (choice), :(case), leaf?, list* [keys].
func (r *renderer) nameAndOpts(n *schema.TreeNode, keys []string) string {
	name := n.Node.Name.LocalName
	if p := r.displayPrefix(n.Node.Name.Namespace); p != "" {
		name = p + ":" + name
	}

	switch n.Node.Kind {
	case schema.KindChoice:
		name = "(" + name + ")"
		if !n.Node.Mandatory {
			name += "?"
		}
	case schema.KindCase:
		name = ":(" + name + ")"
	case schema.KindList:
		name += "*"
		if len(n.Node.Keys) > 0 {
			name += " [" + strings.Join(n.Node.Keys, " ") + "]"
		}
	case schema.KindLeafList:
		name += "*"
	case schema.KindLeaf, schema.KindAnyData, schema.KindAnyXML:
		if !n.Node.Mandatory && !r.isKey(n, keys) {
			name += "?"
		}
	}
	return name
}

// isKey reports whether the ambient key list names n. Key leafs sit directly
// under their list, so a synthetic choice/case level between the list and the
// node takes it out of key position.
func (r *renderer) isKey(n *schema.TreeNode, keys []string) bool {
	if len(keys) == 0 {
		return false
	}
	if len(n.Path) >= 2 && r.suppressed[len(n.Path)-2] {
		return false
	}
	for _, k := range keys {
		if k == n.Node.Name.LocalName {
			return true
		}
	}
	return false
}

// typeColumn renders the type name of leaf-like nodes. Leafrefs render as an
// arrow to their target path, with the rendered module's own prefixes
// dropped.
func (r *renderer) typeColumn(n *schema.TreeNode) string {
	t := n.Node.Type
	if t == nil {
		return ""
	}
	if t.IsLeafref() {
		return "-> " + r.trimOwnPrefix(t.Target)
	}
	return t.Name
}

// trimOwnPrefix drops the rendered module's prefix from leafref target
// segments; foreign prefixes are kept since they disambiguate.
func (r *renderer) trimOwnPrefix(target string) string {
	segs := strings.Split(target, "/")
	for i, seg := range segs {
		if prefix, rest, ok := strings.Cut(seg, ":"); ok && prefix == r.module.Prefix {
			segs[i] = rest
		}
	}
	return strings.Join(segs, "/")
}

// featureColumn renders the if-feature suffix {f1,f2}? or "".
func featureColumn(features []string) string {
	if len(features) == 0 {
		return ""
	}
	return "{" + strings.Join(features, ",") + "}?"
}
