// Package auth decides whether a member may select a call-up option.
package auth

// Allowed reports whether a member carrying memberRoles may select an option.
// An empty authorizedRoles set means the menu is unrestricted; otherwise at
// least one of the member's roles must be in the set.
func Allowed(memberRoles, authorizedRoles []string) bool {
	if len(authorizedRoles) == 0 {
		return true
	}
	if len(memberRoles) == 0 {
		return false
	}
	authorized := make(map[string]struct{}, len(authorizedRoles))
	for _, role := range authorizedRoles {
		authorized[role] = struct{}{}
	}
	for _, role := range memberRoles {
		if _, ok := authorized[role]; ok {
			return true
		}
	}
	return false
}
