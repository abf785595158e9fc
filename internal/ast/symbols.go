package ast

import "strings"

// SymbolTable interns identifiers and string literals to SymbolIDs.
// Identity is name-normalized by case folding per Language rules (the
// Language, like its platform, treats identifiers case-insensitively).
type SymbolTable struct {
	byName []string
	index  map[string]SymbolID
}

// NewSymbolTable returns an empty table with SymbolID(0) reserved as "no
// symbol".
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		byName: []string{""},
		index:  map[string]SymbolID{"": 0},
	}
}

// Intern returns the SymbolID for name, case-folded, creating one if absent.
func (s *SymbolTable) Intern(name string) SymbolID {
	key := strings.ToLower(name)
	if id, ok := s.index[key]; ok {
		return id
	}
	id := SymbolID(len(s.byName))
	s.byName = append(s.byName, name)
	s.index[key] = id
	return id
}

// Lookup returns the SymbolID for name if it has already been interned.
func (s *SymbolTable) Lookup(name string) (SymbolID, bool) {
	id, ok := s.index[strings.ToLower(name)]
	return id, ok
}

// Name returns the original-case spelling first interned for id.
func (s *SymbolTable) Name(id SymbolID) string {
	if int(id) >= len(s.byName) {
		return ""
	}
	return s.byName[id]
}
