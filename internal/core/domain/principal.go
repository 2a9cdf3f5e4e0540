package domain

// Principal is the resolved caller of a request: the subject name vouched
// for by the bearer token plus the role re-fetched from the store. A nil
// Principal means the caller is anonymous.
type Principal struct {
	Name string
	Role Role
}

// IsAdmin reports whether the caller is authenticated with the ADMIN role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// CanAccess reports whether the caller may read or mutate the record owned
// by targetName: the record's own user or any admin.
func (p *Principal) CanAccess(targetName string) bool {
	if p == nil {
		return false
	}
	return p.Name == targetName || p.Role == RoleAdmin
}
