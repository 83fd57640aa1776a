package notify

import (
	"strings"

	"github.com/BruksfildServices01/opsdesk/internal/domain/auditlog"
)

type template struct {
	Title   string
	Message string
}

type templateKey struct {
	Action     auditlog.Action
	EntityType auditlog.EntityType
}

var templates = map[templateKey]template{
	{auditlog.ActionCreate, auditlog.EntityUsers}:    {"New Record", "New user created"},
	{auditlog.ActionCreate, auditlog.EntityClients}:  {"New Record", "New client created"},
	{auditlog.ActionCreate, auditlog.EntityProducts}: {"New Record", "New product created"},

	{auditlog.ActionUpdate, auditlog.EntityUsers}:    {"Record Updated", "User updated"},
	{auditlog.ActionUpdate, auditlog.EntityClients}:  {"Record Updated", "Client updated"},
	{auditlog.ActionUpdate, auditlog.EntityProducts}: {"Record Updated", "Product updated"},

	{auditlog.ActionDelete, auditlog.EntityUsers}:    {"Record Deleted", "User deleted"},
	{auditlog.ActionDelete, auditlog.EntityClients}:  {"Record Deleted", "Client deleted"},
	{auditlog.ActionDelete, auditlog.EntityProducts}: {"Record Deleted", "Product deleted"},

	{auditlog.ActionBulkCreate, auditlog.EntityClients}: {"Bulk Import", "Clients imported"},
	{auditlog.ActionBulkDelete, auditlog.EntityClients}: {"Bulk Delete", "Clients deleted"},

	{auditlog.ActionApproveRegistration, auditlog.EntityUsers}:         {"Registration Approved", "Registration approved and user created"},
	{auditlog.ActionRejectRegistration, auditlog.EntityRegistrations}: {"Registration Rejected", "Registration rejected"},
}

// Used when an entity type has no specific row above.
var actionFallbacks = map[auditlog.Action]template{
	auditlog.ActionCreate:              {"New Record", "Record created"},
	auditlog.ActionUpdate:              {"Record Updated", "Record updated"},
	auditlog.ActionDelete:              {"Record Deleted", "Record deleted"},
	auditlog.ActionBulkCreate:          {"Bulk Import", "Records imported"},
	auditlog.ActionBulkDelete:          {"Bulk Delete", "Records deleted"},
	auditlog.ActionApproveRegistration: {"Registration Approved", "Registration approved"},
	auditlog.ActionRejectRegistration:  {"Registration Rejected", "Registration rejected"},
}

const (
	approvalQueueTitle = "Approval Queue"
)

// Render builds the personal notification text for an audit entry.
func Render(action auditlog.Action, entity auditlog.EntityType, detail string) (title, message string) {
	t, ok := templates[templateKey{action, entity}]
	if !ok {
		t, ok = actionFallbacks[action]
	}
	if !ok {
		t = template{Title: "Activity", Message: strings.ToLower(string(action))}
	}

	message = t.Message
	if d := strings.TrimSpace(detail); d != "" {
		message += ": " + d
	}
	return t.Title, message
}
