//go:build integration

package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/spinhall/platform/internal/auth"
)

// NewUser returns a fresh user id and a valid bearer token for it.
func (env *TestEnv) NewUser() (uuid.UUID, string) {
	env.t.Helper()
	userID := uuid.New()
	token, err := env.JWTMgr.GenerateToken(auth.RealmUser, userID, "")
	if err != nil {
		env.t.Fatalf("generate user token: %v", err)
	}
	return userID, token
}

// AdminToken returns a valid admin bearer token.
func (env *TestEnv) AdminToken() string {
	env.t.Helper()
	token, err := env.JWTMgr.GenerateToken(auth.RealmAdmin, uuid.New(), "")
	if err != nil {
		env.t.Fatalf("generate admin token: %v", err)
	}
	return token
}

// GET performs an unauthenticated GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	resp, err := http.Get(env.Server.URL + path)
	if err != nil {
		env.t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

// AuthGET performs an authenticated GET request.
func (env *TestEnv) AuthGET(path, token string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodGet, path, token, nil)
}

// AuthPOST performs an authenticated POST request with a JSON body.
func (env *TestEnv) AuthPOST(path, token string, body interface{}) *http.Response {
	env.t.Helper()
	return env.do(http.MethodPost, path, token, body)
}

// AuthPATCH performs an authenticated PATCH request with a JSON body.
func (env *TestEnv) AuthPATCH(path, token string, body interface{}) *http.Response {
	env.t.Helper()
	return env.do(http.MethodPatch, path, token, body)
}

func (env *TestEnv) do(method, path, token string, body interface{}) *http.Response {
	env.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("%s %s: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// ApplyOperation posts an operation and returns the decoded response body.
func (env *TestEnv) ApplyOperation(t *testing.T, token, kind, amount, externalID string) map[string]interface{} {
	t.Helper()

	body := map[string]interface{}{"kind": kind, "amount": amount}
	if externalID != "" {
		body["external_transaction_id"] = externalID
	}
	resp := env.AuthPOST("/wallet/operations", token, body)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		t.Fatalf("operation %s %s: status %d", kind, amount, resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode operation response: %v", err)
	}
	return result
}
