package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/identity-systems/user-api/internal/api/handler"
	"github.com/identity-systems/user-api/internal/core/domain"
	"github.com/identity-systems/user-api/internal/core/service"
)

type memoryUserRepo struct {
	users  map[string]*domain.User
	nextID int
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]*domain.User)}
}

func (r *memoryUserRepo) clone(u *domain.User) *domain.User {
	copy := *u
	return &copy
}

func (r *memoryUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, existing := range r.users {
		if existing.Name == user.Name {
			return nil, domain.ErrDuplicateName
		}
	}
	r.nextID++
	created := r.clone(user)
	created.ID = fmt.Sprintf("id-%d", r.nextID)
	r.users[created.ID] = r.clone(created)
	return created, nil
}

func (r *memoryUserRepo) FindByName(_ context.Context, name string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Name == name {
			return r.clone(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memoryUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.clone(u), nil
}

func (r *memoryUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, ok := r.users[user.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	r.users[user.ID] = r.clone(user)
	return r.clone(user), nil
}

func (r *memoryUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memoryUserRepo) FindAll(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *r.clone(u))
	}
	return out, nil
}

func (r *memoryUserRepo) FindPage(_ context.Context, page, size int) ([]domain.User, error) {
	all, _ := r.FindAll(context.Background())
	start := page * size
	if start >= len(all) {
		return nil, nil
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

// TestRouter_EndToEnd drives the whole stack through HTTP: registration,
// login, token-authenticated calls and role gating. A single router is
// built once because the prometheus middleware registers collectors with
// the default registry.
func TestRouter_EndToEnd(t *testing.T) {
	repo := newMemoryUserRepo()
	tokens := service.NewTokenService("e2e-secret", time.Hour)
	userService := service.NewUserService(repo, tokens, nil, "ADMIN123", zerolog.Nop())
	e := NewRouter(userService, tokens, nil, nil, zerolog.Nop())

	do := func(method, target, token, body string) (*httptest.ResponseRecorder, handler.Response) {
		t.Helper()
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, target, nil)
		} else {
			req = httptest.NewRequest(method, target, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		var resp handler.Response
		if len(rec.Body.Bytes()) > 0 {
			_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		}
		return rec, resp
	}

	loginToken := func(name, password string) string {
		t.Helper()
		rec, resp := do(http.MethodPost, "/users/login", "", fmt.Sprintf(`{"name":%q,"password":%q}`, name, password))
		if rec.Code != http.StatusOK {
			t.Fatalf("login %s: expected 200, got %d (%s)", name, rec.Code, rec.Body.String())
		}
		data := resp.Data.(map[string]any)
		return data["token"].(string)
	}

	// Health endpoints answer without backing stores wired; readiness
	// skips the checks it has no handle for instead of panicking.
	rec, _ := do(http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("liveness: expected 200, got %d", rec.Code)
	}
	rec, _ = do(http.MethodGet, "/health/ready", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("readiness without dependencies: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	// Admin registration with the wrong code is rejected.
	rec, resp := do(http.MethodPost, "/users/register/admin", "", `{"name":"root","password":"rootpw1","adminCode":"NOPE"}`)
	if rec.Code != http.StatusForbidden || resp.Code != handler.CodeInvalidAdminCode {
		t.Fatalf("expected 403/%s, got %d/%s", handler.CodeInvalidAdminCode, rec.Code, resp.Code)
	}

	// Correct code succeeds.
	rec, _ = do(http.MethodPost, "/users/register/admin", "", `{"name":"root","password":"rootpw1","adminCode":"ADMIN123"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin register: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}

	// Ordinary user.
	rec, resp = do(http.MethodPost, "/users/register", "", `{"name":"alice","password":"secret1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", rec.Code)
	}
	aliceID := resp.Data.(map[string]any)["id"].(string)

	// Duplicate name is a conflict.
	rec, resp = do(http.MethodPost, "/users/register", "", `{"name":"alice","password":"other66"}`)
	if rec.Code != http.StatusConflict || resp.Code != handler.CodeDuplicateName {
		t.Fatalf("expected 409/%s, got %d/%s", handler.CodeDuplicateName, rec.Code, resp.Code)
	}

	// Wrong password.
	rec, resp = do(http.MethodPost, "/users/login", "", `{"name":"alice","password":"wrongpw"}`)
	if rec.Code != http.StatusUnauthorized || resp.Code != handler.CodeInvalidCredentials {
		t.Fatalf("expected 401/%s, got %d/%s", handler.CodeInvalidCredentials, rec.Code, resp.Code)
	}

	adminToken := loginToken("root", "rootpw1")
	aliceToken := loginToken("alice", "secret1")

	// Listing is admin only.
	rec, _ = do(http.MethodGet, "/users", adminToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("admin list: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	rec, resp = do(http.MethodGet, "/users", aliceToken, "")
	if rec.Code != http.StatusForbidden || resp.Code != handler.CodePermissionDenied {
		t.Fatalf("expected 403/%s, got %d/%s", handler.CodePermissionDenied, rec.Code, resp.Code)
	}
	rec, resp = do(http.MethodGet, "/users", "", "")
	if rec.Code != http.StatusUnauthorized || resp.Code != handler.CodeNotAuthenticated {
		t.Fatalf("expected 401/%s, got %d/%s", handler.CodeNotAuthenticated, rec.Code, resp.Code)
	}

	// Garbage tokens resolve to anonymous and protected routes reject them.
	rec, _ = do(http.MethodGet, "/users/me", "garbage-token", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid token, got %d", rec.Code)
	}

	// /users/me resolves the token's subject.
	rec, resp = do(http.MethodGet, "/users/me", aliceToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", rec.Code)
	}
	if name := resp.Data.(map[string]any)["name"]; name != "alice" {
		t.Fatalf("me: expected alice, got %v", name)
	}

	// Self-or-admin on single records.
	rec, _ = do(http.MethodGet, "/users/"+aliceID, aliceToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("self get: expected 200, got %d", rec.Code)
	}
	rec, _ = do(http.MethodGet, "/users/"+aliceID, adminToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("admin get: expected 200, got %d", rec.Code)
	}

	// Password change requires the current password, then swaps logins.
	rec, _ = do(http.MethodPut, "/users/"+aliceID+"/password", aliceToken, `{"oldPassword":"wrongpw","newPassword":"fresh77"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong old password, got %d", rec.Code)
	}
	rec, _ = do(http.MethodPut, "/users/"+aliceID+"/password", aliceToken, `{"oldPassword":"secret1","newPassword":"fresh77"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("password change: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	rec, _ = do(http.MethodPost, "/users/login", "", `{"name":"alice","password":"secret1"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("old password should be dead, got %d", rec.Code)
	}
	aliceToken = loginToken("alice", "fresh77")

	// Refresh keeps the old token alive and returns a working new one.
	rec, resp = do(http.MethodPost, "/users/refresh-token", aliceToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d", rec.Code)
	}
	refreshed := resp.Data.(map[string]any)["token"].(string)
	rec, _ = do(http.MethodGet, "/users/me", refreshed, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("refreshed token rejected: %d", rec.Code)
	}
	rec, _ = do(http.MethodGet, "/users/me", aliceToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("original token should survive refresh: %d", rec.Code)
	}

	// Paged listing, admin only.
	rec, _ = do(http.MethodGet, "/users/page?page=0&size=1", adminToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("paged list: expected 200, got %d", rec.Code)
	}

	// Alice deletes herself; her still-unexpired token is now anonymous.
	rec, _ = do(http.MethodDelete, "/users/"+aliceID, aliceToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("self delete: expected 200, got %d", rec.Code)
	}
	rec, resp = do(http.MethodGet, "/users/me", aliceToken, "")
	if rec.Code != http.StatusNotFound || resp.Code != handler.CodeUserNotFound {
		t.Fatalf("deleted subject: expected 404/%s, got %d/%s", handler.CodeUserNotFound, rec.Code, resp.Code)
	}
}
