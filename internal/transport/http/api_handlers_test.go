package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"
)

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeJSON[T any](t *testing.T, r io.Reader) T {
	t.Helper()

	var out T
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := startTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestRegisterLoginFlow(t *testing.T) {
	ts, _ := startTestServer(t)

	resp := postJSON(t, ts.URL+"/api/register", RegisterRequest{Username: "alice", Password: "password123"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if auth := decodeJSON[AuthResponse](t, resp.Body); auth.Token == "" {
		t.Fatalf("expected token in register response")
	}

	resp = postJSON(t, ts.URL+"/api/register", RegisterRequest{Username: "alice", Password: "password123"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %d", resp.StatusCode)
	}

	resp = postJSON(t, ts.URL+"/api/login", LoginRequest{Username: "alice", Password: "password123"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp = postJSON(t, ts.URL+"/api/login", LoginRequest{Username: "alice", Password: "wrong"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad credentials, got %d", resp.StatusCode)
	}
}

func TestQueryEndpointsRequireAuth(t *testing.T) {
	ts, _ := startTestServer(t)

	for _, path := range []string{"/api/users", "/api/threads"} {
		resp, err := ts.Client().Get(ts.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s, got %d", path, resp.StatusCode)
		}
	}
}

func TestQueryEndpointsWithToken(t *testing.T) {
	ts, _ := startTestServer(t)

	resp := postJSON(t, ts.URL+"/api/register", RegisterRequest{Username: "alice", Password: "password123"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	token := decodeJSON[AuthResponse](t, resp.Body).Token

	get := func(path string) *http.Response {
		req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
		if err != nil {
			t.Fatalf("new request: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		r, err := ts.Client().Do(req)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		t.Cleanup(func() { _ = r.Body.Close() })
		return r
	}

	usersResp := get("/api/users")
	if usersResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", usersResp.StatusCode)
	}
	if users := decodeJSON[UsersResponse](t, usersResp.Body); len(users.Users) != 0 {
		t.Fatalf("expected no online users, got %v", users.Users)
	}

	threadsResp := get("/api/threads")
	if threadsResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", threadsResp.StatusCode)
	}
	if threads := decodeJSON[ThreadsResponse](t, threadsResp.Body); len(threads.Threads) != 0 {
		t.Fatalf("expected no threads, got %v", threads.Threads)
	}
}
