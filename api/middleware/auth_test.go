package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/RemyAthisayaa17/mceverse/pkg/auth"
	"github.com/RemyAthisayaa17/mceverse/pkg/auth/session"
	"github.com/RemyAthisayaa17/mceverse/pkg/config"
	"github.com/RemyAthisayaa17/mceverse/pkg/enums"
)

type stubSessionVerifier struct {
	ok  bool
	err error
}

func (s stubSessionVerifier) HasSession(context.Context, string) (bool, error) {
	return s.ok, s.err
}

func authTestConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, userID uuid.UUID, role enums.Role) string {
	t.Helper()
	token, err := auth.MintAccessToken(cfg, time.Now(), auth.AccessTokenPayload{
		UserID: userID,
		Email:  "middleware@college.edu",
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

// serveAuthed sends one request through Auth with the given header and
// returns the recorded response.
func serveAuthed(cfg config.JWTConfig, verifier session.AccessSessionChecker, authHeader string, inner http.HandlerFunc) *httptest.ResponseRecorder {
	if inner == nil {
		inner = func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }
	}
	handler := Auth(cfg, verifier, nil)(inner)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestAuthRejectsMissingAndMalformedTokens(t *testing.T) {
	cfg := authTestConfig()
	for name, header := range map[string]string{
		"missing": "",
		"bare":    "Bearer ",
		"garbage": "Bearer invalid",
	} {
		if resp := serveAuthed(cfg, stubSessionVerifier{ok: true}, header, nil); resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, resp.Code)
		}
	}
}

func TestAuthSeedsContextForValidToken(t *testing.T) {
	cfg := authTestConfig()
	userID := uuid.New()
	token := mintTestToken(t, cfg, userID, enums.RoleStudent)

	var gotUser, gotRole string
	resp := serveAuthed(cfg, stubSessionVerifier{ok: true}, "Bearer "+token, func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if gotUser != userID.String() {
		t.Fatalf("expected user %s, got %s", userID, gotUser)
	}
	if gotRole != string(enums.RoleStudent) {
		t.Fatalf("expected student role, got %s", gotRole)
	}
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	cfg := authTestConfig()
	token := mintTestToken(t, cfg, uuid.New(), enums.RoleStaff)

	if resp := serveAuthed(cfg, stubSessionVerifier{ok: false}, "Bearer "+token, nil); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for revoked session, got %d", resp.Code)
	}
}

func TestAuthSessionCheckFailureIsDependencyError(t *testing.T) {
	cfg := authTestConfig()
	token := mintTestToken(t, cfg, uuid.New(), enums.RoleStaff)

	verifier := stubSessionVerifier{err: errors.New("redis down")}
	if resp := serveAuthed(cfg, verifier, "Bearer "+token, nil); resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when session store fails, got %d", resp.Code)
	}
}
