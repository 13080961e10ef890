package auth

import (
	"fmt"
	"strings"
)

// Role identifies a user's position in a championship. The string values are
// the canonical identifiers used in tokens, the database, and API payloads.
type Role string

const (
	RoleTechExpert  Role = "tech-expert"
	RoleChiefExpert Role = "chief-expert"
	RoleExpert      Role = "expert"
	RoleParticipant Role = "participant"
)

// DefaultRole is assigned when self-registration omits a role.
const DefaultRole = RoleParticipant

// Roles lists every valid role in a stable order.
var Roles = []Role{RoleTechExpert, RoleChiefExpert, RoleExpert, RoleParticipant}

// ParseRole returns the canonical role for the given identifier.
func ParseRole(value string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleTechExpert:
		return RoleTechExpert, nil
	case RoleChiefExpert:
		return RoleChiefExpert, nil
	case RoleExpert:
		return RoleExpert, nil
	case RoleParticipant:
		return RoleParticipant, nil
	default:
		return "", fmt.Errorf("invalid role %q, valid roles: %s", value, RoleList())
	}
}

// IsValidRole reports whether value is one of the enumerated roles.
func IsValidRole(value string) bool {
	_, err := ParseRole(value)
	return err == nil
}

// HasRole reports whether role is a member of the allowed set.
func HasRole(role string, allowed ...Role) bool {
	if len(allowed) == 0 {
		return false
	}
	current, err := ParseRole(role)
	if err != nil {
		return false
	}
	for _, candidate := range allowed {
		if current == candidate {
			return true
		}
	}
	return false
}

// Deletable reports whether an account with the given role may be removed.
// Tech experts and experts are protected from deletion.
func (r Role) Deletable() bool {
	return r == RoleChiefExpert || r == RoleParticipant
}

// RoleList renders the valid role identifiers for error messages.
func RoleList(roles ...Role) string {
	if len(roles) == 0 {
		roles = Roles
	}
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}
	return strings.Join(names, ", ")
}
