// file: internals/helpers/auth/principal.go
package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"lingoschool_backend/internals/constants"
)

// Nama locals yang diisi AuthMiddleware
const (
	LocUserID    = "user_id"
	LocUserRole  = "userRole"
	LocUserName  = "user_name"
	LocPrincipal = "principal"
)

// Principal: aktor yang sudah terautentikasi.
type Principal struct {
	ID       uuid.UUID
	Role     constants.Role
	Username string
}

func (p Principal) Is(roles ...constants.Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

func StorePrincipal(c *fiber.Ctx, p Principal) {
	c.Locals(LocPrincipal, p)
	c.Locals(LocUserID, p.ID.String())
	c.Locals(LocUserRole, string(p.Role))
	c.Locals(LocUserName, p.Username)
}

// GetPrincipal mengambil principal dari Locals; 401 kalau tidak ada.
func GetPrincipal(c *fiber.Ctx) (Principal, error) {
	if p, ok := c.Locals(LocPrincipal).(Principal); ok && p.ID != uuid.Nil {
		return p, nil
	}
	return Principal{}, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - missing principal")
}

func GetUserIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	s, _ := c.Locals(LocUserID).(string)
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "user_id not found in token")
	}
	return id, nil
}

// ParseUUIDParam: path param → uuid, 400 kalau invalid.
func ParseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params(name)))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, name+" is not a valid id")
	}
	return id, nil
}

// ParseUUIDQuery: query opsional; "" → nil.
func ParseUUIDQuery(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, name+" is not a valid id")
	}
	return &id, nil
}
