package api

import (
	"fmt"
	"net/http"
	"reviewdb/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// commentListEnvelope mirrors the list response
type commentListEnvelope struct {
	Comments []CommentResponse `json:"comments"`
	Total    int64             `json:"total"`
}

func commentsPath(titleID, reviewID uint) string {
	return fmt.Sprintf("/api/v1/titles/%d/reviews/%d/comments", titleID, reviewID)
}

func TestCreateCommentForcesAuthorAndParent(t *testing.T) {
	e := newTestEnv(t)
	alice := e.createUser(t, "alice", domain.RoleUser)
	bob := e.createUser(t, "bob", domain.RoleUser)
	title := e.createTitle(t, "Solaris")
	review := e.createReview(t, alice, title, 8)

	// Payload author and review are ignored; path and token win
	w := e.do(t, http.MethodPost, commentsPath(title.ID, review.ID), map[string]any{
		"text":   "Agreed on the pacing.",
		"author": "mallory",
		"review": 9999,
	}, e.tokenFor(t, bob))
	require.Equal(t, http.StatusCreated, w.Code)

	var resp CommentResponse
	decode(t, w, &resp)
	assert.Equal(t, "bob", resp.Author)
	assert.Equal(t, review.ID, resp.Review)
	assert.False(t, resp.PubDate.IsZero())
}

func TestCommentParentResolution(t *testing.T) {
	e := newTestEnv(t)
	alice := e.createUser(t, "alice", domain.RoleUser)
	solaris := e.createTitle(t, "Solaris")
	stalker := e.createTitle(t, "Stalker")
	review := e.createReview(t, alice, stalker, 9)
	token := e.tokenFor(t, alice)

	// Unknown review under a real title
	w := e.do(t, http.MethodPost, commentsPath(solaris.ID, 9999), map[string]any{"text": "x"}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Real review addressed through the wrong title
	w = e.do(t, http.MethodPost, commentsPath(solaris.ID, review.ID), map[string]any{"text": "x"}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Unknown title altogether
	w = e.do(t, http.MethodPost, commentsPath(9999, review.ID), map[string]any{"text": "x"}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The right path works
	w = e.do(t, http.MethodPost, commentsPath(stalker.ID, review.ID), map[string]any{"text": "x"}, token)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestListCommentsOpenToAnonymous(t *testing.T) {
	e := newTestEnv(t)
	alice := e.createUser(t, "alice", domain.RoleUser)
	title := e.createTitle(t, "Solaris")
	review := e.createReview(t, alice, title, 8)
	e.createComment(t, alice, review)
	e.createComment(t, alice, review)

	w := e.do(t, http.MethodGet, commentsPath(title.ID, review.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp commentListEnvelope
	decode(t, w, &resp)
	assert.Len(t, resp.Comments, 2)
	assert.Equal(t, int64(2), resp.Total)
}

func TestUpdateCommentPolicy(t *testing.T) {
	e := newTestEnv(t)
	alice := e.createUser(t, "alice", domain.RoleUser)
	carol := e.createUser(t, "carol", domain.RoleUser)
	title := e.createTitle(t, "Solaris")
	review := e.createReview(t, alice, title, 8)
	comment := e.createComment(t, alice, review)
	path := fmt.Sprintf("%s/%d", commentsPath(title.ID, review.ID), comment.ID)

	// Not the author, not a moderator
	w := e.do(t, http.MethodPatch, path, map[string]any{"text": "hijacked"}, e.tokenFor(t, carol))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The author edits freely
	w = e.do(t, http.MethodPatch, path, map[string]any{"text": "edited"}, e.tokenFor(t, alice))
	require.Equal(t, http.StatusOK, w.Code)
	var resp CommentResponse
	decode(t, w, &resp)
	assert.Equal(t, "edited", resp.Text)
	assert.Equal(t, "alice", resp.Author)
}

func TestDeleteCommentPolicy(t *testing.T) {
	e := newTestEnv(t)
	alice := e.createUser(t, "alice", domain.RoleUser)
	carol := e.createUser(t, "carol", domain.RoleUser)
	mod := e.createUser(t, "mod", domain.RoleModerator)
	title := e.createTitle(t, "Solaris")
	review := e.createReview(t, alice, title, 8)

	first := e.createComment(t, alice, review)
	second := e.createComment(t, alice, review)

	// A bystander cannot delete
	w := e.do(t, http.MethodDelete, fmt.Sprintf("%s/%d", commentsPath(title.ID, review.ID), first.ID), nil, e.tokenFor(t, carol))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The author can
	w = e.do(t, http.MethodDelete, fmt.Sprintf("%s/%d", commentsPath(title.ID, review.ID), first.ID), nil, e.tokenFor(t, alice))
	assert.Equal(t, http.StatusNoContent, w.Code)

	// So can a moderator
	w = e.do(t, http.MethodDelete, fmt.Sprintf("%s/%d", commentsPath(title.ID, review.ID), second.ID), nil, e.tokenFor(t, mod))
	assert.Equal(t, http.StatusNoContent, w.Code)

	var remaining int64
	require.NoError(t, e.db.Model(&domain.Comment{}).Count(&remaining).Error)
	assert.Zero(t, remaining)
}
