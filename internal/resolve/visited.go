package resolve

// VisitedSet records the dependency names already materialized during one run.
// A single set is shared by every recursive Resolve call so that each name is fetched at most once.
type VisitedSet struct {
	members map[string]struct{}
	order   []string
}

// NewVisitedSet returns an empty set.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{members: make(map[string]struct{})}
}

// Contains reports whether name was added.
func (set *VisitedSet) Contains(name string) bool {
	if set == nil {
		return false
	}
	_, present := set.members[name]
	return present
}

// Add records name. Adding a name twice has no effect.
func (set *VisitedSet) Add(name string) {
	if set.members == nil {
		set.members = make(map[string]struct{})
	}
	if _, present := set.members[name]; present {
		return
	}
	set.members[name] = struct{}{}
	set.order = append(set.order, name)
}

// Names returns the recorded names in the order they were added.
func (set *VisitedSet) Names() []string {
	if set == nil {
		return nil
	}
	return append([]string(nil), set.order...)
}

// Len returns the number of recorded names.
func (set *VisitedSet) Len() int {
	if set == nil {
		return 0
	}
	return len(set.order)
}
