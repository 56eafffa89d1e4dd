package decl

// Layer pairs a member with the depth of the type declaring it: 0 for the
// declaration itself, 1 for its base, and so on.
type Layer struct {
	*Member
	Depth int
}

// Flatten returns the fields visible on d, most-derived first: every
// exported field of every layer and the unexported fields of d itself.
// A field shadows the fields of the same name declared deeper in the chain;
// names declared twice at the same depth are ambiguous in Go and dropped.
func Flatten(d *Declaration) []Layer {
	var (
		out    []Layer
		seen   = make(map[string]bool)
		layers = [][]*Member{d.Fields()}
	)
	for b := d.Base; b != nil; b = b.Base {
		layers = append(layers, b.Members)
	}
	depths := make([]int, len(layers))
	for b, i := d.Base, 1; b != nil; b, i = b.Base, i+1 {
		depths[i] = b.depth(i)
	}
	for i := 0; i < len(layers); {
		// Collect all layers at the same depth.
		j := i
		for j < len(layers) && depths[j] == depths[i] {
			j++
		}
		count := make(map[string]int)
		for _, ms := range layers[i:j] {
			for _, m := range ms {
				if m.Kind == FieldMember && !seen[m.Name] {
					count[m.Name]++
				}
			}
		}
		for _, ms := range layers[i:j] {
			for _, m := range ms {
				if m.Kind != FieldMember || seen[m.Name] || count[m.Name] > 1 {
					continue
				}
				if !m.Exported && depths[i] > 0 {
					continue
				}
				out = append(out, Layer{Member: m, Depth: depths[i]})
			}
		}
		for name := range count {
			seen[name] = true
		}
		i = j
	}
	return out
}

// depth returns the embedding depth of b, which defaults to its position
// in the chain.
func (b *Base) depth(pos int) int {
	if b.Depth > 0 {
		return b.Depth
	}
	return pos
}
