package store

// Result is the outcome of a lookup: either a value found under Owner, or no
// entry at all. A stored nil, "", false or 0 is still Found.
type Result struct {
	owner string
	value any
	found bool
}

// Found builds a Result holding a stored value.
func Found(owner string, value any) Result {
	return Result{owner: owner, value: value, found: true}
}

// NotFound builds a Result for a key with no entry.
func NotFound(owner string) Result {
	return Result{owner: owner}
}

// Owner is the namespace the lookup resolved to.
func (r Result) Owner() string {
	return r.owner
}

// Value returns the stored value and whether one exists.
func (r Result) Value() (any, bool) {
	return r.value, r.found
}

func (r Result) IsFound() bool {
	return r.found
}
