package record

import (
	"strings"

	"github.com/BruksfildServices01/opsdesk/internal/domain/auditlog"
	"github.com/BruksfildServices01/opsdesk/internal/domain/registration"
	"github.com/BruksfildServices01/opsdesk/internal/httperr"
	"github.com/BruksfildServices01/opsdesk/internal/models"
	"github.com/BruksfildServices01/opsdesk/internal/validators"
)

// --------------------------------------------------
// Clients
// --------------------------------------------------

func ClientOptions() Options[models.Client] {
	return Options[models.Client]{
		Entity:    auditlog.EntityClients,
		Patchable: []string{"name", "phone", "email", "notes"},
		Validate: func(c *models.Client) error {
			c.Name = strings.TrimSpace(c.Name)
			c.Email = strings.ToLower(strings.TrimSpace(c.Email))
			if c.Name == "" {
				return httperr.ErrBusiness("client_name_required")
			}
			return nil
		},
		ValidatePatch: func(patch map[string]any) error {
			if v, ok := patch["name"].(string); ok && strings.TrimSpace(v) == "" {
				return httperr.ErrBusiness("client_name_required")
			}
			return nil
		},
		Describe: func(c *models.Client) string { return c.Name },
	}
}

// --------------------------------------------------
// Products
// --------------------------------------------------

func ProductOptions() Options[models.Product] {
	return Options[models.Product]{
		Entity:    auditlog.EntityProducts,
		Patchable: []string{"name", "description", "price", "active", "category"},
		Validate: func(p *models.Product) error {
			p.Name = strings.TrimSpace(p.Name)
			if p.Name == "" {
				return httperr.ErrBusiness("product_name_required")
			}
			if p.Price < 0 {
				return httperr.ErrBusiness("invalid_price")
			}
			return nil
		},
		ValidatePatch: func(patch map[string]any) error {
			if v, ok := patch["name"].(string); ok && strings.TrimSpace(v) == "" {
				return httperr.ErrBusiness("product_name_required")
			}
			if v, ok := patch["price"].(float64); ok && v < 0 {
				return httperr.ErrBusiness("invalid_price")
			}
			return nil
		},
		Describe: func(p *models.Product) string { return p.Name },
	}
}

// --------------------------------------------------
// Users (created only through registration approval)
// --------------------------------------------------

func UserOptions() Options[models.User] {
	return Options[models.User]{
		Entity:    auditlog.EntityUsers,
		Patchable: []string{"full_name", "role", "is_active"},
		Validate: func(*models.User) error {
			return httperr.ErrBusiness("users_created_by_approval_only")
		},
		ValidatePatch: func(patch map[string]any) error {
			if v, ok := patch["role"]; ok {
				s, _ := v.(string)
				if strings.TrimSpace(s) == "" {
					return httperr.ErrBusiness("invalid_role")
				}
				role, err := registration.ParseRole(s)
				if err != nil {
					return err
				}
				patch["role"] = string(role)
			}
			if v, ok := patch["full_name"]; ok {
				s, _ := v.(string)
				if !validators.IsFullNameValid(s) {
					return httperr.ErrBusiness("invalid_full_name")
				}
				patch["full_name"] = strings.TrimSpace(s)
			}
			if v, ok := patch["is_active"]; ok {
				if _, isBool := v.(bool); !isBool {
					return httperr.ErrBusiness("invalid_is_active")
				}
			}
			return nil
		},
		Describe: func(u *models.User) string { return u.Username },
	}
}
