package identity

import (
	"strings"

	"github.com/google/uuid"
)

// Role orders the three access tiers.
type Role string

const (
	RoleAnonymous  Role = "anonymous"
	RoleStandard   Role = "standard"
	RolePrivileged Role = "privileged"
)

// PrivilegedEmail is the single account allowed to manage the catalog.
// There is exactly one; it is not configuration.
const PrivilegedEmail = "2024btechaimlkshitij18489@poornima.edu.in"

// Identity is an authenticated principal.
type Identity struct {
	SubjectID   string `json:"subject_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	Role        Role   `json:"role"`
}

// ClassifyEmail maps a verified email to its role.
func ClassifyEmail(email string) Role {
	if strings.EqualFold(strings.TrimSpace(email), PrivilegedEmail) {
		return RolePrivileged
	}
	return RoleStandard
}

// SubjectIDFor derives a stable principal id from a verified email, so the
// same person lands on the same cart slot no matter which sign-in flow
// they used.
func SubjectIDFor(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+normalized)).String()
}

// IsPrivileged reports whether the identity may manage the catalog.
func (i *Identity) IsPrivileged() bool {
	return i != nil && i.Role == RolePrivileged
}

// Allows reports whether the identity's role satisfies the requirement.
func (r Role) Allows(required Role) bool {
	return rank(r) >= rank(required)
}

func rank(r Role) int {
	switch r {
	case RolePrivileged:
		return 2
	case RoleStandard:
		return 1
	default:
		return 0
	}
}
