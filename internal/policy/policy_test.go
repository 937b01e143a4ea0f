package policy

import (
	"reviewdb/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanModifyContent(t *testing.T) {
	const authorID = uint(7)
	cases := []struct {
		name  string
		actor *domain.User
		want  bool
	}{
		{"anonymous", nil, false},
		{"the author", &domain.User{ID: authorID, Role: domain.RoleUser}, true},
		{"another user", &domain.User{ID: 8, Role: domain.RoleUser}, false},
		{"a moderator", &domain.User{ID: 8, Role: domain.RoleModerator}, true},
		{"an admin", &domain.User{ID: 8, Role: domain.RoleAdmin}, true},
		{"author who is also admin", &domain.User{ID: authorID, Role: domain.RoleAdmin}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanModifyContent(tc.actor, authorID))
		})
	}
}

func TestCanManageUsers(t *testing.T) {
	assert.False(t, CanManageUsers(nil))
	assert.False(t, CanManageUsers(&domain.User{Role: domain.RoleUser}))
	assert.False(t, CanManageUsers(&domain.User{Role: domain.RoleModerator}))
	assert.True(t, CanManageUsers(&domain.User{Role: domain.RoleAdmin}))
}
