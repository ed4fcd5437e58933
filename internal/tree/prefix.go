package tree

import "github.com/yangdev/ytree/internal/schema"

// buildPrefixMap maps each namespace in the context to the prefix it is
// displayed with while rendering the used module. The used module's own
// namespace enters the map only when its nodes are prefixed too. The map is
// built once per render pass and never mutated afterwards.
func buildPrefixMap(sctx *schema.Context, used *schema.Module, opts Options) map[string]string {
	prefixes := make(map[string]string, len(sctx.Modules))
	for _, m := range sctx.Modules {
		if m.Namespace == used.Namespace && !opts.PrefixMainModule {
			continue
		}
		if opts.PrefixModuleName {
			prefixes[m.Namespace] = m.Name
		} else {
			prefixes[m.Namespace] = m.Prefix
		}
	}
	return prefixes
}

// displayPrefix returns the prefix a node name from ns renders with, or "".
func (r *renderer) displayPrefix(ns string) string {
	if ns == r.module.Namespace && !r.opts.PrefixMainModule {
		return ""
	}
	return r.prefixes[ns]
}

// targetPath renders an augmentation target as /prefix:name segments.
// Segments from namespaces without a display prefix render bare.
func (r *renderer) targetPath(path []schema.QName) string {
	text := ""
	for _, q := range path {
		text += "/"
		if p, ok := r.prefixes[q.Namespace]; ok && p != "" {
			text += p + ":"
		}
		text += q.LocalName
	}
	return text
}
