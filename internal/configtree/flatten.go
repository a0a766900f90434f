// File: internal/configtree/flatten.go
// Brief: Namespacing resolved keys into Pulumi config keys.

package configtree

import "fmt"

// Flatten maps every top-level key k of a resolved mapping to
// "<project>:<k>", keeping the value's nested shape and the resolved key
// order. Pulumi interprets structured values natively, so only the top level
// is namespaced.
func Flatten(resolved *Tree, project string) (*Tree, error) {
	if !resolved.IsMapping() {
		return nil, fmt.Errorf("resolved config must be a mapping, got %s", resolved.Kind)
	}
	out := &Tree{Kind: Mapping}
	if resolved == nil {
		return out, nil
	}
	out.Pairs = make([]Pair, 0, len(resolved.Pairs))
	for _, p := range resolved.Pairs {
		out.Pairs = append(out.Pairs, Pair{
			Key:   project + ":" + p.Key,
			Value: p.Value.Clone(),
		})
	}
	return out, nil
}
