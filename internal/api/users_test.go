package api

import (
	"net/http"
	"reviewdb/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userListEnvelope mirrors the list response
type userListEnvelope struct {
	Users []UserResponse `json:"users"`
	Total int64          `json:"total"`
}

func TestUserManagementRequiresAdmin(t *testing.T) {
	e := newTestEnv(t)
	user := e.createUser(t, "alice", domain.RoleUser)
	mod := e.createUser(t, "mod", domain.RoleModerator)

	// Anonymous: 401 from the auth middleware
	w := e.do(t, http.MethodGet, "/api/v1/users", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Plain user and moderator: 403 from the admin gate
	for _, u := range []domain.User{user, mod} {
		w = e.do(t, http.MethodGet, "/api/v1/users", nil, e.tokenFor(t, u))
		assert.Equal(t, http.StatusForbidden, w.Code, u.Username)
	}
}

func TestAdminUserCRUD(t *testing.T) {
	e := newTestEnv(t)
	admin := e.createUser(t, "admin", domain.RoleAdmin)
	token := e.tokenFor(t, admin)

	// Create
	w := e.do(t, http.MethodPost, "/api/v1/users", map[string]any{
		"username":   "bob",
		"email":      "bob@x.com",
		"first_name": "Bob",
		"role":       domain.RoleModerator,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	var created UserResponse
	decode(t, w, &created)
	assert.Equal(t, domain.RoleModerator, created.Role)

	// Duplicate username or email conflicts
	w = e.do(t, http.MethodPost, "/api/v1/users", map[string]any{
		"username": "bob",
		"email":    "elsewhere@x.com",
	}, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Unknown role is a validation failure
	w = e.do(t, http.MethodPost, "/api/v1/users", map[string]any{
		"username": "eve",
		"email":    "eve@x.com",
		"role":     "superuser",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Retrieve by username
	w = e.do(t, http.MethodGet, "/api/v1/users/bob", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched UserResponse
	decode(t, w, &fetched)
	assert.Equal(t, "Bob", fetched.FirstName)

	// Admin may change anything, role included
	w = e.do(t, http.MethodPatch, "/api/v1/users/bob", map[string]any{
		"role": domain.RoleAdmin,
		"bio":  "now an admin",
	}, token)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &fetched)
	assert.Equal(t, domain.RoleAdmin, fetched.Role)
	assert.Equal(t, "now an admin", fetched.Bio)

	// List includes both accounts
	w = e.do(t, http.MethodGet, "/api/v1/users", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var list userListEnvelope
	decode(t, w, &list)
	assert.Equal(t, int64(2), list.Total)

	// Delete
	w = e.do(t, http.MethodDelete, "/api/v1/users/bob", nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = e.do(t, http.MethodGet, "/api/v1/users/bob", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteUserCascadesContent(t *testing.T) {
	e := newTestEnv(t)
	admin := e.createUser(t, "admin", domain.RoleAdmin)
	alice := e.createUser(t, "alice", domain.RoleUser)
	title := e.createTitle(t, "Solaris")
	review := e.createReview(t, alice, title, 8)
	e.createComment(t, alice, review)

	w := e.do(t, http.MethodDelete, "/api/v1/users/alice", nil, e.tokenFor(t, admin))
	require.Equal(t, http.StatusNoContent, w.Code)

	var reviews, comments int64
	require.NoError(t, e.db.Model(&domain.Review{}).Count(&reviews).Error)
	require.NoError(t, e.db.Model(&domain.Comment{}).Count(&comments).Error)
	assert.Zero(t, reviews)
	assert.Zero(t, comments)
}

func TestSelfServiceProfile(t *testing.T) {
	e := newTestEnv(t)
	alice := e.createUser(t, "alice", domain.RoleUser)
	token := e.tokenFor(t, alice)

	// Any authenticated user reads their own profile
	w := e.do(t, http.MethodGet, "/api/v1/users/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var resp UserResponse
	decode(t, w, &resp)
	assert.Equal(t, "alice", resp.Username)
	assert.Equal(t, domain.RoleUser, resp.Role)

	// Partial update of profile fields works
	w = e.do(t, http.MethodPatch, "/api/v1/users/me", map[string]any{
		"first_name": "Alice",
		"bio":        "I review films.",
	}, token)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Equal(t, "Alice", resp.FirstName)
	assert.Equal(t, "I review films.", resp.Bio)

	// role and username are read-only on the self-service path: a payload
	// naming them succeeds but leaves both untouched
	w = e.do(t, http.MethodPatch, "/api/v1/users/me", map[string]any{
		"role":     domain.RoleAdmin,
		"username": "root",
		"bio":      "still me",
	}, token)
	require.Equal(t, http.StatusOK, w.Code)

	var stored domain.User
	require.NoError(t, e.db.First(&stored, alice.ID).Error)
	assert.Equal(t, domain.RoleUser, stored.Role, "self-service cannot escalate role")
	assert.Equal(t, "alice", stored.Username, "self-service cannot rename")
	assert.Equal(t, "still me", stored.Bio)
}

func TestSelfServiceRequiresAuth(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(t, http.MethodGet, "/api/v1/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
