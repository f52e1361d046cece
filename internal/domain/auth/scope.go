package auth

// Scope selects which records a list call returns.
type Scope string

const (
	// ScopeAll is every record in the system. Only admins may request it.
	ScopeAll Scope = "all"
	// ScopeOwn is the records owned by or created by the caller.
	ScopeOwn Scope = "own"
)

// ScopeFor returns the visibility scope for id. A nil identity has no scope.
func ScopeFor(id *Identity) (Scope, bool) {
	if id == nil {
		return "", false
	}
	if id.IsAdmin() {
		return ScopeAll, true
	}
	return ScopeOwn, true
}
