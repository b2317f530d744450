package revset

// RevSet is an ordered list of revisions with set semantics
type RevSet []string

// Set returns the members as a lookup table
func (s RevSet) Set() map[string]struct{} {
	set := make(map[string]struct{}, len(s))
	for _, node := range s {
		set[node] = struct{}{}
	}
	return set
}

// Filter keeps the members for which keep returns true, preserving order
func (s RevSet) Filter(keep func(node string) (bool, error)) (RevSet, error) {
	result := RevSet{}
	for _, node := range s {
		ok, err := keep(node)
		if err != nil {
			return nil, err
		}
		if ok {
			result = append(result, node)
		}
	}
	return result, nil
}

// Intersect returns the members of s also in other, in the order of s
func (s RevSet) Intersect(other RevSet) RevSet {
	set := other.Set()
	result := RevSet{}
	for _, node := range s {
		if _, ok := set[node]; ok {
			result = append(result, node)
		}
	}
	return result
}

// Union returns s followed by the members of other not in s
func (s RevSet) Union(other RevSet) RevSet {
	set := s.Set()
	result := append(RevSet{}, s...)
	for _, node := range other {
		if _, ok := set[node]; ok {
			continue
		}
		set[node] = struct{}{}
		result = append(result, node)
	}
	return result
}

// Difference returns the members of s not in other, in the order of s
func (s RevSet) Difference(other RevSet) RevSet {
	set := other.Set()
	result := RevSet{}
	for _, node := range s {
		if _, ok := set[node]; !ok {
			result = append(result, node)
		}
	}
	return result
}
