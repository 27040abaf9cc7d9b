package ir

// EffectTable interns capability/effect names (e.g. "io", "time") behind a
// stable EffectID, the same way TypeTable interns types.
type EffectTable struct {
	entries []string
	index   map[string]EffectID
}

// NewEffectTable returns an empty table.
func NewEffectTable() *EffectTable {
	return &EffectTable{index: map[string]EffectID{}}
}

// Intern returns name's id, assigning a new one if it hasn't been seen yet.
func (t *EffectTable) Intern(name string) EffectID {
	if id, ok := t.index[name]; ok {
		return id
	}
	id := EffectID(len(t.entries))
	t.entries = append(t.entries, name)
	t.index[name] = id
	return id
}

// Name returns the capability name for id.
func (t *EffectTable) Name(id EffectID) string { return t.entries[int(id)] }

// EffectEntry is one (id, name) pair returned by Entries.
type EffectEntry struct {
	ID   EffectID
	Name string
}

// Entries returns every interned (EffectID, name) pair in insertion order.
func (t *EffectTable) Entries() []EffectEntry {
	out := make([]EffectEntry, len(t.entries))
	for i, name := range t.entries {
		out[i] = EffectEntry{ID: EffectID(i), Name: name}
	}
	return out
}
