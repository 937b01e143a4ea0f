package policy

import "reviewdb/internal/domain"

// CanModifyContent decides whether actor may edit or delete a review or
// comment written by authorID. Checks run in order: the author themselves,
// then moderators, then admins. Anyone else is denied.
func CanModifyContent(actor *domain.User, authorID uint) bool {
	// Unauthenticated requesters can never mutate
	if actor == nil {
		return false
	}
	// The author keeps full control of their own content
	if actor.ID == authorID {
		return true
	}
	// Moderators may act on anyone's content
	if actor.IsModerator() {
		return true
	}
	// Admins inherit every moderator right
	return actor.IsAdmin()
}

// CanManageUsers decides whether actor may list, create, edit or delete
// arbitrary user accounts. Only admins qualify; moderators do not.
func CanManageUsers(actor *domain.User) bool {
	return actor != nil && actor.IsAdmin()
}
