package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingoschool_backend/internals/constants"
	"lingoschool_backend/internals/databases/dbtest"
	authRepo "lingoschool_backend/internals/features/users/auth/repository"
	authService "lingoschool_backend/internals/features/users/auth/service"
	userModel "lingoschool_backend/internals/features/users/user/model"
	helperAuth "lingoschool_backend/internals/helpers/auth"
)

func TestAuthMiddlewareAndRoleGate(t *testing.T) {
	db := dbtest.Open(t)
	fx := dbtest.NewFixture(t, db)
	tokens := authService.NewTokenService("mw-secret", time.Hour)

	school := fx.School("sekolah")
	teacher := fx.Teacher("guru", school.ID)
	student := fx.Student("murid", school.ID, nil)
	disabled := fx.Student("nonaktif", school.ID, nil)
	require.NoError(t, db.Model(&userModel.UserModel{}).Where("id = ?", disabled.ID).Update("is_disabled", true).Error)

	app := fiber.New()
	app.Use(WithTokens(db, tokens))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		p, err := helperAuth.GetPrincipal(c)
		if err != nil {
			return err
		}
		return c.SendString(string(p.Role))
	})
	app.Get("/staff", OnlyRoles(constants.RoleErrorStaff("staff area"), constants.StaffRoles...), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})

	sign := func(u *userModel.UserModel) string {
		tok, _, err := tokens.Issue(u)
		require.NoError(t, err)
		return tok
	}
	call := func(path, token string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		res, err := app.Test(req)
		require.NoError(t, err)
		return res.StatusCode
	}

	tests := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{name: "missing token", path: "/whoami", want: http.StatusUnauthorized},
		{name: "garbage token", path: "/whoami", token: "abc.def.ghi", want: http.StatusUnauthorized},
		{name: "student ok", path: "/whoami", token: sign(student), want: http.StatusOK},
		{name: "student blocked from staff", path: "/staff", token: sign(student), want: http.StatusForbidden},
		{name: "teacher allowed", path: "/staff", token: sign(teacher), want: http.StatusNoContent},
		{name: "disabled user", path: "/whoami", token: sign(disabled), want: http.StatusForbidden},
		{name: "unknown user", path: "/whoami", token: sign(&userModel.UserModel{Username: "ghost", Role: constants.RoleAdmin}), want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, call(tt.path, tt.token))
		})
	}

	t.Run("expired token", func(t *testing.T) {
		old := authService.NewTokenService("mw-secret", time.Hour)
		old.Now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		tok, _, err := old.Issue(student)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, call("/whoami", tok))
	})

	t.Run("blacklisted token", func(t *testing.T) {
		tok := sign(teacher)
		require.Equal(t, http.StatusNoContent, call("/staff", tok))
		require.NoError(t, authRepo.BlacklistToken(db, tok, teacher.ID, time.Now().Add(time.Hour)))
		assert.Equal(t, http.StatusUnauthorized, call("/staff", tok))
	})

	t.Run("cookie fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: sign(school)})
		res, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.StatusCode)
	})
}
