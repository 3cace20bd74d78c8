package httpapi

import (
	"net/http"
	"testing"
	"time"
)

func TestAuthenticate_NoHeaderIsAnonymous(t *testing.T) {
	fa := &fakeAuth{loginResp: sampleSession()}
	s, _ := newTestServer(fa)

	rr := doRequest(s, http.MethodPost, "/api/auth/login",
		`{"email":"user@example.com","password":"secret12"}`, nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("anonymous request was rejected: %d", rr.Code)
	}
}

func TestAuthenticate_NonBearerIsAnonymous(t *testing.T) {
	fa := &fakeAuth{loginResp: sampleSession()}
	s, _ := newTestServer(fa)

	rr := doRequest(s, http.MethodPost, "/api/auth/login",
		`{"email":"user@example.com","password":"secret12"}`, func(r *http.Request) {
			r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		})

	if rr.Code != http.StatusOK {
		t.Fatalf("non-bearer request was rejected: %d", rr.Code)
	}
}

func TestAuthenticate_InvalidTokenShortCircuits(t *testing.T) {
	// A bad bearer token fails the request even on an endpoint that does
	// not need an identity.
	fa := &fakeAuth{loginResp: sampleSession()}
	s, _ := newTestServer(fa)

	rr := doRequest(s, http.MethodPost, "/api/auth/login",
		`{"email":"user@example.com","password":"secret12"}`, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer garbage")
		})

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != "token_malformed" {
		t.Fatalf("unexpected error code: %q", resp.Code)
	}
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	fa := &fakeAuth{}
	s, signer := newTestServer(fa)

	token, err := signer.Generate("u-1", "user@example.com", -time.Minute)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}

	rr := doRequest(s, http.MethodPost, "/api/auth/logout-all", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != "token_expired" {
		t.Fatalf("unexpected error code: %q", resp.Code)
	}
}

func TestAuthenticate_ValidTokenCarriesIdentity(t *testing.T) {
	fa := &fakeAuth{}
	s, signer := newTestServer(fa)

	rr := doRequest(s, http.MethodPost, "/api/auth/logout-all", "", func(r *http.Request) {
		r.Header.Set("Authorization", bearerFor(t, signer, "u-42", "user@example.com"))
	})

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if fa.lastUserID != "u-42" {
		t.Fatalf("identity not propagated: %q", fa.lastUserID)
	}
}
