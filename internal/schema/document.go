package schema

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// A schema document is the YAML interchange format for an already-parsed,
// already-resolved schema graph. It lists modules with their data trees,
// rpcs, notifications and augment blocks. It is not YANG source; whatever
// produced it has already expanded groupings and resolved types.

type document struct {
	Modules []docModule `yaml:"modules"`
}

type docModule struct {
	Name          string       `yaml:"name"`
	Revision      string       `yaml:"revision"`
	Namespace     string       `yaml:"namespace"`
	Prefix        string       `yaml:"prefix"`
	Nodes         []docNode    `yaml:"nodes"`
	RPCs          []docNode    `yaml:"rpcs"`
	Notifications []docNode    `yaml:"notifications"`
	Augments      []docAugment `yaml:"augments"`
}

type docAugment struct {
	Target string    `yaml:"target"`
	Nodes  []docNode `yaml:"nodes"`
}

type docNode struct {
	Name       string   `yaml:"name"`
	Kind       string   `yaml:"kind"`
	Status     string   `yaml:"status"`
	Config     *bool    `yaml:"config"`
	Mandatory  bool     `yaml:"mandatory"`
	Type       string   `yaml:"type"`
	Path       string   `yaml:"path"` // leafref target path
	IfFeatures []string `yaml:"if-features"`
	Keys       []string `yaml:"keys"`

	Children []docNode `yaml:"children"`
	Actions  []docNode `yaml:"actions"`

	// Input and Output apply to rpc and action nodes only.
	Input  []docNode `yaml:"input"`
	Output []docNode `yaml:"output"`
}

// LoadDocument reads one schema document and builds its schema context.
func LoadDocument(path string) (*Context, error) {
	return LoadDocuments([]string{path})
}

// LoadDocuments reads several schema documents into a single context, so
// augmentations in one document can target modules defined in another.
// Documents are merged in argument order.
func LoadDocuments(paths []string) (*Context, error) {
	var all []docModule
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("schema document %s: %w", path, err)
		}
		var doc document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("schema document %s: %w", path, err)
		}
		all = append(all, doc.Modules...)
	}
	ctx, err := buildContext(all)
	if err != nil {
		return nil, fmt.Errorf("schema document %s: %w", strings.Join(paths, ", "), err)
	}
	return ctx, nil
}

// DocumentModules parses a document and returns its module headers without
// building the full tree. The index uses this to register documents cheaply.
func DocumentModules(path string) ([]*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema document %s: %w", path, err)
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("schema document %s: %w", path, err)
	}
	mods := make([]*Module, 0, len(doc.Modules))
	for _, dm := range doc.Modules {
		if dm.Name == "" {
			return nil, fmt.Errorf("schema document %s: module with empty name", path)
		}
		mods = append(mods, &Module{
			Name:      dm.Name,
			Revision:  dm.Revision,
			Namespace: dm.Namespace,
			Prefix:    dm.Prefix,
		})
	}
	return mods, nil
}

type contextBuilder struct {
	ctx      *Context
	prefixNS map[string]string
}

func buildContext(mods []docModule) (*Context, error) {
	b := &contextBuilder{
		ctx:      &Context{},
		prefixNS: map[string]string{},
	}

	// Module headers first so augment targets can reference any module's
	// prefix regardless of declaration order.
	for _, dm := range mods {
		if dm.Name == "" || dm.Namespace == "" {
			return nil, fmt.Errorf("module %q: name and namespace are required", dm.Name)
		}
		b.ctx.Modules = append(b.ctx.Modules, &Module{
			Name:      dm.Name,
			Revision:  dm.Revision,
			Namespace: dm.Namespace,
			Prefix:    dm.Prefix,
		})
		if dm.Prefix != "" {
			b.prefixNS[dm.Prefix] = dm.Namespace
		}
	}

	// Data trees, rpcs and notifications.
	for i, dm := range mods {
		m := b.ctx.Modules[i]
		for _, dn := range dm.Nodes {
			tn, err := b.buildNode(m, dn, nil, true)
			if err != nil {
				return nil, fmt.Errorf("module %q: %w", m.Name, err)
			}
			b.ctx.Roots = append(b.ctx.Roots, tn)
		}
		for _, dn := range dm.RPCs {
			if dn.Kind == "" {
				dn.Kind = "rpc"
			}
			tn, err := b.buildNode(m, dn, nil, false)
			if err != nil {
				return nil, fmt.Errorf("module %q: %w", m.Name, err)
			}
			if tn.Node.Kind != KindRPC {
				return nil, fmt.Errorf("module %q: rpc entry %q has kind %s", m.Name, dn.Name, tn.Node.Kind)
			}
			m.RPCs = append(m.RPCs, tn)
		}
		for _, dn := range dm.Notifications {
			if dn.Kind == "" {
				dn.Kind = "notification"
			}
			tn, err := b.buildNode(m, dn, nil, false)
			if err != nil {
				return nil, fmt.Errorf("module %q: %w", m.Name, err)
			}
			if tn.Node.Kind != KindNotification {
				return nil, fmt.Errorf("module %q: notification entry %q has kind %s", m.Name, dn.Name, tn.Node.Kind)
			}
			m.Notifications = append(m.Notifications, tn)
		}
	}

	// Augments last, once every possible target tree exists.
	for i, dm := range mods {
		m := b.ctx.Modules[i]
		for _, aug := range dm.Augments {
			target, err := b.resolveTarget(m, aug.Target)
			if err != nil {
				return nil, fmt.Errorf("module %q: augment %q: %w", m.Name, aug.Target, err)
			}
			for _, dn := range aug.Nodes {
				tn, err := b.buildNode(m, dn, target, true)
				if err != nil {
					return nil, fmt.Errorf("module %q: augment %q: %w", m.Name, aug.Target, err)
				}
				tn.Augmenting = true
				b.ctx.Roots = append(b.ctx.Roots, tn)
				// Actions grafted onto a container or list become part of
				// that node's action-children view.
				if tn.Node.Kind == KindAction {
					if t := b.findNode(target); t != nil {
						t.Actions = append(t.Actions, tn)
					}
				}
			}
		}
	}
	return b.ctx, nil
}

// buildNode converts one document node and its subtree. cfg is the effective
// config-ness inherited from the parent; operation and notification subtrees
// pass false.
func (b *contextBuilder) buildNode(m *Module, dn docNode, parentPath []QName, cfg bool) (*TreeNode, error) {
	if dn.Name == "" {
		return nil, fmt.Errorf("node with empty name under %s", pathText(parentPath))
	}
	kind, err := ParseKind(dn.Kind)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", dn.Name, err)
	}
	status, err := ParseStatus(dn.Status)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", dn.Name, err)
	}
	if kind.IsOperation() || kind == KindNotification {
		cfg = false
	} else if dn.Config != nil {
		cfg = cfg && *dn.Config
	}

	node := &Node{
		Name:       QName{Namespace: m.Namespace, LocalName: dn.Name},
		Kind:       kind,
		Status:     status,
		Config:     cfg,
		Mandatory:  dn.Mandatory,
		IfFeatures: dn.IfFeatures,
	}
	path := appendPath(parentPath, node.Name)
	tn := &TreeNode{Node: node, Path: path}

	if dn.Type != "" {
		node.Type = &Type{Name: dn.Type, Target: dn.Path}
	}
	if kind.IsLeafLike() && node.Type == nil {
		return nil, fmt.Errorf("%s %q: missing type", kind, dn.Name)
	}
	if len(dn.Keys) > 0 {
		if kind != KindList {
			return nil, fmt.Errorf("%s %q: keys are only valid on lists", kind, dn.Name)
		}
		node.Keys = dn.Keys
	}

	if len(dn.Input) > 0 || len(dn.Output) > 0 {
		if !kind.IsOperation() {
			return nil, fmt.Errorf("%s %q: input/output are only valid on rpc and action nodes", kind, dn.Name)
		}
		if tn.Input, err = b.buildParams(m, "input", dn.Input, path); err != nil {
			return nil, fmt.Errorf("rpc %q: %w", dn.Name, err)
		}
		if tn.Output, err = b.buildParams(m, "output", dn.Output, path); err != nil {
			return nil, fmt.Errorf("rpc %q: %w", dn.Name, err)
		}
	}

	for _, child := range dn.Children {
		ct, err := b.buildNode(m, child, path, cfg)
		if err != nil {
			return nil, fmt.Errorf("in %q: %w", dn.Name, err)
		}
		tn.Children = append(tn.Children, ct)
	}
	for _, act := range dn.Actions {
		if act.Kind == "" {
			act.Kind = "action"
		}
		at, err := b.buildNode(m, act, path, false)
		if err != nil {
			return nil, fmt.Errorf("in %q: %w", dn.Name, err)
		}
		if at.Node.Kind != KindAction {
			return nil, fmt.Errorf("in %q: action entry %q has kind %s", dn.Name, act.Name, at.Node.Kind)
		}
		tn.Actions = append(tn.Actions, at)
	}
	return tn, nil
}

// buildParams wraps an operation's input or output nodes in their implicit
// container. Returns nil when the parameter list is empty.
func (b *contextBuilder) buildParams(m *Module, name string, children []docNode, opPath []QName) (*TreeNode, error) {
	if len(children) == 0 {
		return nil, nil
	}
	node := &Node{
		Name:   QName{Namespace: m.Namespace, LocalName: name},
		Kind:   KindContainer,
		Status: StatusCurrent,
	}
	tn := &TreeNode{Node: node, Path: appendPath(opPath, node.Name)}
	for _, child := range children {
		ct, err := b.buildNode(m, child, tn.Path, false)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		tn.Children = append(tn.Children, ct)
	}
	return tn, nil
}

// resolveTarget parses an augment target like /sys:system/sys:dns into a
// qualified path. Unprefixed segments belong to the augmenting module.
func (b *contextBuilder) resolveTarget(m *Module, target string) ([]QName, error) {
	if !strings.HasPrefix(target, "/") {
		return nil, fmt.Errorf("target must be absolute")
	}
	var path []QName
	for _, seg := range strings.Split(strings.TrimPrefix(target, "/"), "/") {
		if seg == "" {
			return nil, fmt.Errorf("empty path segment")
		}
		ns := m.Namespace
		local := seg
		if prefix, rest, ok := strings.Cut(seg, ":"); ok {
			resolved, known := b.prefixNS[prefix]
			if !known {
				return nil, fmt.Errorf("unknown prefix %q", prefix)
			}
			ns, local = resolved, rest
		}
		path = append(path, QName{Namespace: ns, LocalName: local})
	}
	return path, nil
}

// findNode walks the built module trees to the node at path, or nil.
// Augmenting top-level entries are skipped; their names are leaf segments of
// deeper paths, not roots.
func (b *contextBuilder) findNode(path []QName) *TreeNode {
	var candidates []*TreeNode
	for _, r := range b.ctx.Roots {
		if !r.Augmenting {
			candidates = append(candidates, r)
		}
	}
	var found *TreeNode
	for _, seg := range path {
		found = nil
		for _, c := range candidates {
			if c.Node.Name == seg {
				found = c
				break
			}
		}
		if found == nil {
			return nil
		}
		candidates = found.Children
	}
	return found
}

func appendPath(parent []QName, q QName) []QName {
	path := make([]QName, 0, len(parent)+1)
	path = append(path, parent...)
	return append(path, q)
}

func pathText(path []QName) string {
	if len(path) == 0 {
		return "module root"
	}
	var b strings.Builder
	for _, q := range path {
		b.WriteString("/")
		b.WriteString(q.LocalName)
	}
	return b.String()
}
