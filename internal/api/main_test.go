package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"reviewdb/internal/config"
	"reviewdb/internal/domain"
	"reviewdb/internal/utils"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

// sentMail records one dispatched email
type sentMail struct {
	To      string
	Subject string
	Body    string
}

// stubSender records emails instead of sending them; flip fail to simulate
// an SMTP outage
type stubSender struct {
	sent []sentMail
	fail bool
}

func (s *stubSender) Send(to, subject, body string) error {
	if s.fail {
		return errors.New("smtp connection refused")
	}
	s.sent = append(s.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

// testEnv bundles a router, its database and the recording mail sender
type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	sender *stubSender
}

// newTestEnv wires the full router against an in-memory sqlite database and
// an in-process redis, the same way cmd/server wires the real dependencies
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A pooled second connection would see its own empty in-memory database
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Category{},
		&domain.Genre{},
		&domain.Title{},
		&domain.Review{},
		&domain.Comment{},
	))
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sender := &stubSender{}
	cfg := &config.Config{JWTSecret: testSecret, JWTTTLHours: 24, PageSize: 20}
	return &testEnv{
		router: NewRouter(db, rdb, sender, cfg),
		db:     db,
		sender: sender,
	}
}

// createUser seeds a user directly in the database
func (e *testEnv) createUser(t *testing.T, username, role string) domain.User {
	t.Helper()
	u := domain.User{Username: username, Email: username + "@example.com", Role: role}
	require.NoError(t, e.db.Create(&u).Error)
	return u
}

// tokenFor issues a valid access token for a seeded user
func (e *testEnv) tokenFor(t *testing.T, u domain.User) string {
	t.Helper()
	token, err := utils.GenerateJWT(u.ID, testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

// createCategory seeds a category
func (e *testEnv) createCategory(t *testing.T, name, slug string) domain.Category {
	t.Helper()
	c := domain.Category{Name: name, Slug: slug}
	require.NoError(t, e.db.Create(&c).Error)
	return c
}

// createGenre seeds a genre
func (e *testEnv) createGenre(t *testing.T, name, slug string) domain.Genre {
	t.Helper()
	g := domain.Genre{Name: name, Slug: slug}
	require.NoError(t, e.db.Create(&g).Error)
	return g
}

// createTitle seeds a title
func (e *testEnv) createTitle(t *testing.T, name string) domain.Title {
	t.Helper()
	title := domain.Title{Name: name}
	require.NoError(t, e.db.Create(&title).Error)
	return title
}

// createReview seeds a review
func (e *testEnv) createReview(t *testing.T, author domain.User, title domain.Title, score int) domain.Review {
	t.Helper()
	r := domain.Review{Text: "seeded review", Score: score, AuthorID: author.ID, TitleID: title.ID}
	require.NoError(t, e.db.Create(&r).Error)
	return r
}

// createComment seeds a comment
func (e *testEnv) createComment(t *testing.T, author domain.User, review domain.Review) domain.Comment {
	t.Helper()
	cm := domain.Comment{Text: "seeded comment", AuthorID: author.ID, ReviewID: review.ID}
	require.NoError(t, e.db.Create(&cm).Error)
	return cm
}

// do performs one request against the router, optionally authenticated
func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// decode unmarshals a recorded response body
func decode(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest))
}
