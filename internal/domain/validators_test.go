package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateYear(t *testing.T) {
	current := time.Now().Year()
	cases := []struct {
		name string
		year int
		ok   bool
	}{
		{"current year", current, true},
		{"last year", current - 1, true},
		{"antiquity", -800, true},
		{"zero", 0, true},
		{"next year", current + 1, false},
		{"far future", current + 100, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateYear(tc.year)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateScore(t *testing.T) {
	for score := 1; score <= 10; score++ {
		assert.NoError(t, ValidateScore(score))
	}
	for _, score := range []int{0, -5, 11, 100} {
		err := ValidateScore(score)
		assert.Error(t, err)
		// The message names the valid range for the caller
		assert.Contains(t, err.Error(), "1 to 10")
	}
}

func TestRoleHelpers(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleAdmin}).IsModerator())
	assert.True(t, (&User{Role: RoleModerator}).IsModerator())
	assert.False(t, (&User{Role: RoleModerator}).IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsModerator())
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleUser, RoleModerator, RoleAdmin} {
		assert.True(t, ValidRole(role))
	}
	for _, role := range []string{"", "superuser", "ADMIN", "root"} {
		assert.False(t, ValidRole(role))
	}
}
