package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/poornima-canteen/canteen-backend/internal/identity"
	pkgerrors "github.com/poornima-canteen/canteen-backend/pkg/errors"
)

type stubAuthenticator struct {
	ident     *identity.Identity
	accessID  string
	err       error
	lastToken string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (*identity.Identity, string, error) {
	s.lastToken = token
	if s.err != nil {
		return nil, "", s.err
	}
	return s.ident, s.accessID, nil
}

func TestAuthSeedsContext(t *testing.T) {
	t.Parallel()

	auth := &stubAuthenticator{
		ident:    &identity.Identity{SubjectID: "alice", Email: "a@b.c", Role: identity.RoleStandard},
		accessID: "access-1",
	}

	var gotIdent *identity.Identity
	var gotAccess string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIdent = IdentityFromContext(r.Context())
		gotAccess = AccessIDFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token-1")
	resp := httptest.NewRecorder()
	Auth(auth, nil)(next).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if auth.lastToken != "token-1" {
		t.Fatalf("expected bearer token forwarded, got %q", auth.lastToken)
	}
	if gotIdent == nil || gotIdent.SubjectID != "alice" || gotAccess != "access-1" {
		t.Fatalf("expected seeded context, got %+v / %q", gotIdent, gotAccess)
	}
}

func TestAuthRejectsMissingOrBadCredentials(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	})

	resp := httptest.NewRecorder()
	Auth(&stubAuthenticator{}, nil)(next).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without header, got %d", resp.Code)
	}

	auth := &stubAuthenticator{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "session no longer active")}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer stale")
	resp = httptest.NewRecorder()
	Auth(auth, nil)(next).ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for dead session, got %d", resp.Code)
	}
}
