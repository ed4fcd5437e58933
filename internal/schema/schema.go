// Package schema defines the resolved YANG schema graph consumed by the tree
// renderer. The graph arrives fully parsed and resolved: types, leafrefs and
// augmentations have already been bound by whatever produced the schema
// document, and this package only models and loads the result. It performs no
// YANG source parsing and no semantic validation.
package schema

import (
	"errors"
	"fmt"
	"strings"
)

// QName is a namespace-qualified node name.
type QName struct {
	Namespace string
	LocalName string
}

// String returns the qualified name in "{namespace}local" form.
func (q QName) String() string {
	return "{" + q.Namespace + "}" + q.LocalName
}

// Kind identifies the schema node variant. The set is closed; renderers
// dispatch exhaustively on it.
type Kind int

const (
	KindContainer Kind = iota
	KindList
	KindLeaf
	KindLeafList
	KindChoice
	KindCase
	KindAnyData
	KindAnyXML
	KindRPC
	KindAction
	KindNotification
)

var kindNames = map[Kind]string{
	KindContainer:    "container",
	KindList:         "list",
	KindLeaf:         "leaf",
	KindLeafList:     "leaf-list",
	KindChoice:       "choice",
	KindCase:         "case",
	KindAnyData:      "anydata",
	KindAnyXML:       "anyxml",
	KindRPC:          "rpc",
	KindAction:       "action",
	KindNotification: "notification",
}

// String returns the YANG keyword for the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind parses a YANG keyword into a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == strings.ToLower(strings.TrimSpace(s)) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("invalid node kind: %q", s)
}

// IsLeafLike reports whether nodes of this kind carry a value type.
func (k Kind) IsLeafLike() bool {
	return k == KindLeaf || k == KindLeafList
}

// IsOperation reports whether the kind is an invokable operation with
// optional input/output subtrees.
func (k Kind) IsOperation() bool {
	return k == KindRPC || k == KindAction
}

// Status is the lifecycle status of a schema node.
type Status int

const (
	StatusCurrent Status = iota
	StatusDeprecated
	StatusObsolete
)

// String returns the YANG status keyword.
func (s Status) String() string {
	switch s {
	case StatusDeprecated:
		return "deprecated"
	case StatusObsolete:
		return "obsolete"
	default:
		return "current"
	}
}

// ParseStatus parses a YANG status keyword. The empty string means current.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "current":
		return StatusCurrent, nil
	case "deprecated":
		return StatusDeprecated, nil
	case "obsolete":
		return StatusObsolete, nil
	default:
		return 0, fmt.Errorf("invalid status: %q", s)
	}
}

// Type is the resolved value type of a leaf or leaf-list. For leafref types
// Target carries the referenced path as written in the source schema,
// including prefixes.
type Type struct {
	Name   string
	Target string
}

// IsLeafref reports whether the type references another node's path.
func (t *Type) IsLeafref() bool {
	return t != nil && t.Name == "leafref" && t.Target != ""
}

// Node is one resolved schema node. Config reflects effective config-ness:
// nodes under rpc/action/notification subtrees carry false.
type Node struct {
	Name       QName
	Kind       Kind
	Status     Status
	Config     bool
	Mandatory  bool
	Type       *Type
	IfFeatures []string

	// Keys lists a list's key leaf names in declaration order. Empty for
	// every other kind.
	Keys []string
}

// Module is one schema module known to the context.
type Module struct {
	Name      string
	Revision  string
	Namespace string
	Prefix    string

	RPCs          []*TreeNode
	Notifications []*TreeNode
}

// NotFoundError reports a failed module lookup. It is fatal for the lookup's
// render pass; other modules in the same run are unaffected.
type NotFoundError struct {
	Name     string
	Revision string
}

func (e *NotFoundError) Error() string {
	if e.Revision != "" {
		return fmt.Sprintf("module %q revision %s not found", e.Name, e.Revision)
	}
	return fmt.Sprintf("module %q not found", e.Name)
}

// IsNotFound reports whether err is a module lookup failure, possibly wrapped.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
