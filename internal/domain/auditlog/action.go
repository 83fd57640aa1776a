package auditlog

// ===============================
// Actions
// ===============================

type Action string

const (
	ActionCreate              Action = "CREATE"
	ActionUpdate              Action = "UPDATE"
	ActionDelete              Action = "DELETE"
	ActionBulkCreate          Action = "BULK_CREATE"
	ActionBulkDelete          Action = "BULK_DELETE"
	ActionLogin               Action = "LOGIN"
	ActionLogout              Action = "LOGOUT"
	ActionApproveRegistration Action = "APPROVE_REGISTRATION"
	ActionRejectRegistration  Action = "REJECT_REGISTRATION"
)

var actions = []Action{
	ActionCreate,
	ActionUpdate,
	ActionDelete,
	ActionBulkCreate,
	ActionBulkDelete,
	ActionLogin,
	ActionLogout,
	ActionApproveRegistration,
	ActionRejectRegistration,
}

func AllActions() []Action {
	return append([]Action(nil), actions...)
}

func (a Action) Valid() bool {
	for _, known := range actions {
		if a == known {
			return true
		}
	}
	return false
}

// IsSession reports whether the action describes a login session rather than
// a record mutation. Session actions never produce personal notifications.
func (a Action) IsSession() bool {
	return a == ActionLogin || a == ActionLogout
}

// ===============================
// Entity types
// ===============================

type EntityType string

const (
	EntityUsers         EntityType = "users"
	EntityRegistrations EntityType = "registrations"
	EntityClients       EntityType = "clients"
	EntityProducts      EntityType = "products"
	EntitySessions      EntityType = "sessions"
)

var entityTypes = []EntityType{
	EntityUsers,
	EntityRegistrations,
	EntityClients,
	EntityProducts,
	EntitySessions,
}

func AllEntityTypes() []EntityType {
	return append([]EntityType(nil), entityTypes...)
}

func (e EntityType) Valid() bool {
	for _, known := range entityTypes {
		if e == known {
			return true
		}
	}
	return false
}

// Singular is the noun used in human-readable messages.
func (e EntityType) Singular() string {
	switch e {
	case EntityUsers:
		return "user"
	case EntityRegistrations:
		return "registration"
	case EntityClients:
		return "client"
	case EntityProducts:
		return "product"
	case EntitySessions:
		return "session"
	}
	return "record"
}
