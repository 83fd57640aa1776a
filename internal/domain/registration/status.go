package registration

import (
	"strings"

	"github.com/BruksfildServices01/opsdesk/internal/httperr"
)

// ===============================
// Registration Status
// ===============================

// Status is never persisted: a registration row exists only while Submitted.
// Approved and Rejected are terminal and both remove the row.
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

// ===============================
// Roles
// ===============================

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// ElevatedRoles receive approval-queue broadcasts.
var ElevatedRoles = []Role{RoleAdmin, RoleManager}

func ParseRole(raw string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(raw))); r {
	case "":
		return RoleUser, nil
	case RoleAdmin, RoleManager, RoleUser:
		return r, nil
	}
	return "", httperr.ErrBusiness("invalid_role")
}

func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleManager
}

func ElevatedRoleNames() []string {
	out := make([]string, 0, len(ElevatedRoles))
	for _, r := range ElevatedRoles {
		out = append(out, string(r))
	}
	return out
}
