package scalarpath

type assembler struct {
	spreads  map[string][]SpreadOccurrence
	memo     map[string][][]string
	visiting map[string]bool
}

// Assemble turns fragment-relative occurrences into absolute paths.
//
// An occurrence inside fragment F yields one path per chain of spreads that
// reaches F from an operation body. Duplicate paths are kept. Occurrences in
// fragments no operation reaches yield nothing.
func Assemble(occ Occurrences) []ResolvedPath {
	a := &assembler{
		spreads:  make(map[string][]SpreadOccurrence),
		memo:     make(map[string][][]string),
		visiting: make(map[string]bool),
	}
	for _, s := range occ.Spreads {
		a.spreads[s.FragmentName] = append(a.spreads[s.FragmentName], s)
	}

	var out []ResolvedPath
	for _, s := range occ.Scalars {
		if s.Fragment == "" {
			out = append(out, ResolvedPath{Path: concat(nil, s.Path), TypeName: s.TypeName})
			continue
		}
		for _, prefix := range a.prefixes(s.Fragment) {
			out = append(out, ResolvedPath{Path: concat(prefix, s.Path), TypeName: s.TypeName})
		}
	}
	return out
}

// prefixes returns every absolute path at which fragment is spread.
func (a *assembler) prefixes(fragment string) [][]string {
	if p, ok := a.memo[fragment]; ok {
		return p
	}
	// A cyclic spread is invalid GraphQL; cut it instead of looping.
	if a.visiting[fragment] {
		return nil
	}
	a.visiting[fragment] = true
	defer delete(a.visiting, fragment)

	var out [][]string
	for _, s := range a.spreads[fragment] {
		if s.Fragment == "" {
			out = append(out, s.Path)
			continue
		}
		for _, outer := range a.prefixes(s.Fragment) {
			out = append(out, concat(outer, s.Path))
		}
	}
	a.memo[fragment] = out
	return out
}

func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
