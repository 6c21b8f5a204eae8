package bamboo

import "strings"

// SymbolTable interns symbol names into stable *Symbol pointers so two
// occurrences of the same name compare equal by pointer, the way EQ? and
// environment lookup require. Names are folded to upper case on intern,
// matching the original engine's case-insensitive reader.
//
// This replaces the original C implementation's linear scan of a cons-
// list symbol table (see bamboo_symbol in original_source/src/bamboo.c)
// with a map for O(1) lookup. The table itself is a GC root: symbols are
// permanent for the lifetime of an Engine and are never swept.
type SymbolTable struct {
	byName map[string]*Symbol
	all    []*Symbol
}

// NewSymbolTable returns an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{byName: make(map[string]*Symbol)}
}

// Intern returns the canonical *Symbol for name, creating it on first
// use.
func (t *SymbolTable) Intern(name string) *Symbol {
	name = strings.ToUpper(name)
	if s, ok := t.byName[name]; ok {
		return s
	}
	s := &Symbol{name: name}
	t.byName[name] = s
	t.all = append(t.all, s)
	return s
}

// Lookup returns the already-interned symbol for name, if any, without
// creating it.
func (t *SymbolTable) Lookup(name string) (*Symbol, bool) {
	s, ok := t.byName[strings.ToUpper(name)]
	return s, ok
}
