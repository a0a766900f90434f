// File: internal/configtree/merge.go
// Brief: Recursive structural merge with overlay precedence.

package configtree

// Merge combines two trees, with values from higher taking precedence.
// Mappings merge recursively: key order follows lower, with keys unique to
// higher appended in higher's order. Any other pairing (sequences included)
// is replaced wholesale by higher. Neither input is mutated.
func Merge(lower, higher *Tree) *Tree {
	if higher == nil {
		return lower.Clone()
	}
	if lower == nil {
		return higher.Clone()
	}
	if lower.Kind != Mapping || higher.Kind != Mapping {
		return higher.Clone()
	}

	out := &Tree{Kind: Mapping, Pairs: make([]Pair, 0, len(lower.Pairs)+len(higher.Pairs))}
	for _, p := range lower.Pairs {
		if hv, ok := higher.Get(p.Key); ok {
			out.Pairs = append(out.Pairs, Pair{Key: p.Key, Value: Merge(p.Value, hv)})
		} else {
			out.Pairs = append(out.Pairs, Pair{Key: p.Key, Value: p.Value.Clone()})
		}
	}
	for _, p := range higher.Pairs {
		if _, ok := lower.Get(p.Key); ok {
			continue
		}
		out.Pairs = append(out.Pairs, Pair{Key: p.Key, Value: p.Value.Clone()})
	}
	return out
}
