package routers

import (
	"net/http"
	"testing"

	"adconnect/middleware"
	"adconnect/models"
	"adconnect/utils/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name     string
		body     map[string]string
		wantCode int
	}{
		{"valid credentials", map[string]string{"email": "Admin@AdConnect.co.ke", "password": "password123"}, http.StatusOK},
		{"wrong password", map[string]string{"email": "admin@adconnect.co.ke", "password": "nope"}, http.StatusUnauthorized},
		{"unknown email", map[string]string{"email": "ghost@adconnect.co.ke", "password": "password123"}, http.StatusUnauthorized},
		{"missing password", map[string]string{"email": "admin@adconnect.co.ke"}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, env := s.requestAs(t, "", http.MethodPost, "/api/auth/login", tt.body)
			assert.Equal(t, tt.wantCode, resp.StatusCode, env.Message)
			assert.Equal(t, tt.wantCode == http.StatusOK, env.Status)
		})
	}

	resp, env := s.requestAs(t, "", http.MethodPost, "/api/auth/login", map[string]string{"email": "admin@adconnect.co.ke", "password": "password123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var data struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	env.decode(t, &data)
	assert.NotEmpty(t, data.Token)
	assert.Equal(t, "admin@adconnect.co.ke", data.User.Email)

	var stored models.User
	require.NoError(t, s.db.First(&stored, data.User.ID).Error)
	assert.NotNil(t, stored.LastLogin)

	// the issued token opens protected routes
	resp, env = s.requestAs(t, data.Token, http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), "admin@adconnect.co.ke")
}

func TestLogin_InactiveUser(t *testing.T) {
	s := newTestServer(t)
	u := testutil.CreateUser(t, s.db, "old@adconnect.co.ke", "password123", models.RoleEditor)
	require.NoError(t, s.db.Model(&u).Update("status", models.UserInactive).Error)

	resp, env := s.requestAs(t, "", http.MethodPost, "/api/auth/login", map[string]string{"email": "old@adconnect.co.ke", "password": "password123"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Your account is inactive!", env.Message)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/students", "/api/packages", "/api/courses", "/api/payments", "/api/users", "/api/download/excel"} {
		resp, env := s.requestAs(t, "", http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		assert.False(t, env.Status)
	}

	resp, _ := s.requestAs(t, "not-a-jwt", http.MethodGet, "/api/students", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestChangePassword(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.request(t, http.MethodPut, "/api/auth/change/password", map[string]string{
		"currentPassword": "wrong", "newPassword": "newpassword1", "cnfPassword": "newpassword1",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, env := s.request(t, http.MethodPut, "/api/auth/change/password", map[string]string{
		"currentPassword": "password123", "newPassword": "newpassword1", "cnfPassword": "different1",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(env.Data), "cnfPassword")

	resp, _ = s.request(t, http.MethodPut, "/api/auth/change/password", map[string]string{
		"currentPassword": "password123", "newPassword": "newpassword1", "cnfPassword": "newpassword1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.requestAs(t, "", http.MethodPost, "/api/auth/login", map[string]string{"email": "admin@adconnect.co.ke", "password": "newpassword1"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUserManagement(t *testing.T) {
	s := newTestServer(t)

	resp, env := s.request(t, http.MethodPost, "/api/users", map[string]string{
		"name": "Editor", "email": "Editor@AdConnect.co.ke", "password": "password123", "role": "editor",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	var editor models.User
	env.decode(t, &editor)
	assert.Equal(t, "editor@adconnect.co.ke", editor.Email)
	assert.Equal(t, models.RoleEditor, editor.Role)
	assert.NotContains(t, string(env.Data), "password")

	resp, env = s.request(t, http.MethodPost, "/api/users", map[string]string{
		"name": "Again", "email": "editor@adconnect.co.ke", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "User Already Exists!", env.Message)

	resp, _ = s.request(t, http.MethodPut, "/api/users/999", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, env = s.request(t, http.MethodPut, "/api/users/"+itoa(editor.ID), map[string]string{"name": "Chief Editor"})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	assert.Contains(t, string(env.Data), "Chief Editor")

	var users []models.User
	resp, env = s.request(t, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	env.decode(t, &users)
	assert.Len(t, users, 2)

	// editors cannot manage accounts
	editorToken, err := middleware.GenerateJWT(editor.ID, editor.Name, editor.Role, editor.Email)
	require.NoError(t, err)
	resp, _ = s.requestAs(t, editorToken, http.MethodGet, "/api/users", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var admin models.User
	require.NoError(t, s.db.Where("email = ?", "admin@adconnect.co.ke").First(&admin).Error)
	resp, _ = s.request(t, http.MethodDelete, "/api/users/"+itoa(admin.ID), nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = s.request(t, http.MethodDelete, "/api/users/"+itoa(editor.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = s.request(t, http.MethodGet, "/api/users/"+itoa(editor.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthAndFallback(t *testing.T) {
	s := newTestServer(t)

	resp, env := s.requestAs(t, "", http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), "up")

	resp, env = s.requestAs(t, "", http.MethodPost, "/api/test-server", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Test route works!", env.Message)

	resp, env = s.requestAs(t, "", http.MethodGet, "/api/nothing-here", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, env.Status)
}

func TestLoginHistory(t *testing.T) {
	s := newTestServer(t)

	for i := 0; i < 2; i++ {
		req := map[string]string{"email": "admin@adconnect.co.ke", "password": "password123"}
		resp, _ := s.requestAs(t, "", http.MethodPost, "/api/auth/login", req)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	// failed attempts are not recorded
	s.requestAs(t, "", http.MethodPost, "/api/auth/login", map[string]string{"email": "admin@adconnect.co.ke", "password": "wrong"})

	resp, env := s.request(t, http.MethodGet, "/api/auth/login/history", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var data struct {
		History []models.LoginHistory `json:"history"`
		Total   int64                 `json:"total"`
	}
	env.decode(t, &data)
	assert.Equal(t, int64(2), data.Total)
	require.Len(t, data.History, 2)
	assert.Greater(t, data.History[0].ID, data.History[1].ID)
	assert.NotEmpty(t, data.History[0].IPAddress)
}

func TestTokenFollowsAccountChanges(t *testing.T) {
	s := newTestServer(t)

	staff := testutil.CreateUser(t, s.db, "staff@adconnect.co.ke", "password123", models.RoleAdmin)
	token, err := middleware.GenerateJWT(staff.ID, staff.Name, staff.Role, staff.Email)
	require.NoError(t, err)

	resp, _ := s.requestAs(t, token, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// demoted after the token was issued
	require.NoError(t, s.db.Model(&models.User{}).Where("id = ?", staff.ID).Update("role", models.RoleEditor).Error)
	resp, _ = s.requestAs(t, token, http.MethodGet, "/api/users", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = s.requestAs(t, token, http.MethodGet, "/api/packages", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.db.Model(&models.User{}).Where("id = ?", staff.ID).Update("status", models.UserInactive).Error)
	resp, env := s.requestAs(t, token, http.MethodGet, "/api/packages", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Your account is inactive!", env.Message)

	require.NoError(t, s.db.Unscoped().Delete(&models.User{}, staff.ID).Error)
	resp, _ = s.requestAs(t, token, http.MethodGet, "/api/packages", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
