package weburl

import (
	"iter"
	"slices"
	"strings"
)

type pair struct {
	name  string
	value string
}

// SearchParams maps query parameter names to a single value each. Entries
// are kept in the order their names were first inserted; overwriting a
// name keeps its position. The zero value is an empty store ready to use.
type SearchParams struct {
	pairs []pair
	index map[string]int
}

// NewSearchParams parses a query string (without the leading '?').
//
// The query is split on '&' and each candidate on its first '='. Empty
// candidates and candidates without '=' are skipped; use ParseSearchParams
// to have the latter reported. A repeated name keeps its last value.
func NewSearchParams(query string) *SearchParams {
	s, _ := parseQuery(query, false)
	return s
}

// ParseSearchParams is like NewSearchParams but fails on the first
// candidate without '=' with a *QueryError wrapping
// ErrMalformedQueryParameter.
func ParseSearchParams(query string) (*SearchParams, error) {
	return parseQuery(query, true)
}

func parseQuery(query string, strict bool) (*SearchParams, error) {
	s := &SearchParams{}
	if query == "" {
		return s, nil
	}

	for i, candidate := range strings.Split(query, "&") {
		if candidate == "" {
			continue
		}

		name, value, ok := strings.Cut(candidate, "=")
		if !ok {
			if strict {
				return nil, &QueryError{
					Candidate: candidate,
					Index:     i,
					Err:       ErrMalformedQueryParameter,
				}
			}
			continue
		}

		s.Set(name, value)
	}

	return s, nil
}

// Get returns the value for name and whether it is present.
func (s *SearchParams) Get(name string) (string, bool) {
	i, ok := s.index[name]
	if !ok {
		return "", false
	}

	return s.pairs[i].value, true
}

// Set inserts name or overwrites its value.
func (s *SearchParams) Set(name, value string) {
	if i, ok := s.index[name]; ok {
		s.pairs[i].value = value
		return
	}

	if s.index == nil {
		s.index = make(map[string]int)
	}
	s.index[name] = len(s.pairs)
	s.pairs = append(s.pairs, pair{name: name, value: value})
}

// Has reports whether name is present.
func (s *SearchParams) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Delete removes name. It is a no-op when name is absent.
func (s *SearchParams) Delete(name string) {
	i, ok := s.index[name]
	if !ok {
		return
	}

	s.pairs = slices.Delete(s.pairs, i, i+1)
	delete(s.index, name)
	for j := i; j < len(s.pairs); j++ {
		s.index[s.pairs[j].name] = j
	}
}

// Len returns the number of parameters.
func (s *SearchParams) Len() int {
	return len(s.pairs)
}

// Entries returns the name/value pairs present at call time. The sequence
// can be ranged any number of times and is unaffected by later mutation.
func (s *SearchParams) Entries() iter.Seq2[string, string] {
	snapshot := slices.Clone(s.pairs)

	return func(yield func(string, string) bool) {
		for _, p := range snapshot {
			if !yield(p.name, p.value) {
				return
			}
		}
	}
}

// Keys returns the names present at call time, with the same snapshot
// semantics as Entries.
func (s *SearchParams) Keys() iter.Seq[string] {
	snapshot := slices.Clone(s.pairs)

	return func(yield func(string) bool) {
		for _, p := range snapshot {
			if !yield(p.name) {
				return
			}
		}
	}
}

// Values returns the values present at call time, with the same snapshot
// semantics as Entries.
func (s *SearchParams) Values() iter.Seq[string] {
	snapshot := slices.Clone(s.pairs)

	return func(yield func(string) bool) {
		for _, p := range snapshot {
			if !yield(p.value) {
				return
			}
		}
	}
}

// ForEach calls fn for every parameter in order. fn may mutate s; it sees
// the parameters present when ForEach was called.
func (s *SearchParams) ForEach(fn func(name, value string)) {
	for name, value := range s.Entries() {
		fn(name, value)
	}
}

// Clone returns an independent copy of s.
func (s *SearchParams) Clone() *SearchParams {
	cpy := &SearchParams{pairs: slices.Clone(s.pairs)}
	if len(s.pairs) > 0 {
		cpy.index = make(map[string]int, len(s.pairs))
		for i, p := range cpy.pairs {
			cpy.index[p.name] = i
		}
	}

	return cpy
}

// String joins the parameters as "name=value" pairs separated by '&'.
func (s *SearchParams) String() string {
	var b strings.Builder
	for i, p := range s.pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.name)
		b.WriteByte('=')
		b.WriteString(p.value)
	}

	return b.String()
}
