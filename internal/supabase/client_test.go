package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{ProjectURL: server.URL, AnonKey: "anon-key"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestNewRequiresProjectURLAndKey(t *testing.T) {
	if _, err := New(Config{AnonKey: "k"}); err == nil {
		t.Fatal("expected error without project URL")
	}
	if _, err := New(Config{ProjectURL: "https://x.example.com"}); err == nil {
		t.Fatal("expected error without anon key")
	}
}

func TestSignInWithPassword(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/token" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("grant_type"); got != "password" {
			t.Errorf("expected password grant, got %q", got)
		}
		if got := r.Header.Get("apikey"); got != "anon-key" {
			t.Errorf("expected apikey header, got %q", got)
		}
		_ = json.NewEncoder(w).Encode(Session{
			AccessToken:  "at",
			RefreshToken: "rt",
			User:         &User{ID: "user-1", Email: "a@example.com"},
		})
	})

	sess, err := client.Auth().SignInWithPassword(context.Background(), "a@example.com", "pw")
	if err != nil {
		t.Fatalf("SignInWithPassword returned error: %v", err)
	}
	if sess.AccessToken != "at" || sess.User == nil || sess.User.ID != "user-1" {
		t.Fatalf("unexpected session: %+v", sess)
	}
}

func TestSignInRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
	})

	_, err := client.Auth().SignInWithPassword(context.Background(), "a@example.com", "wrong")
	if err == nil {
		t.Fatal("expected error")
	}
	apiErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if apiErr.Message != "Invalid login credentials" {
		t.Fatalf("unexpected message %q", apiErr.Message)
	}
}

func TestQueryBuilderURL(t *testing.T) {
	var gotURL string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		_, _ = w.Write([]byte(`[]`))
	})

	var rows []map[string]interface{}
	err := client.Database().From("saved_opportunities").
		Select("*").
		Eq("user_id", "user-1").
		Order("created_at", OrderDesc).
		Limit(1).
		ExecuteInto(context.Background(), &rows)
	if err != nil {
		t.Fatalf("ExecuteInto returned error: %v", err)
	}

	want := "/rest/v1/saved_opportunities?select=%2A&user_id=eq.user-1&order=created_at.desc&limit=1"
	if gotURL != want {
		t.Fatalf("unexpected URL:\n got %s\nwant %s", gotURL, want)
	}
}

func TestUpsertSendsConflictTargetAsQueryParam(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("on_conflict"); got != "user_id" {
			t.Errorf("expected on_conflict=user_id query param, got %q", got)
		}
		if got := r.Header.Get("Prefer"); got != "return=representation,resolution=merge-duplicates" {
			t.Errorf("expected merge-duplicates preference, got %q", got)
		}
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := client.Database().From("profiles").
		Upsert(map[string]string{"user_id": "user-1", "zip_code": "85001"}, "user_id").
		Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
}

func TestInsertUniqueViolation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Prefer"); got != "return=representation" {
			t.Errorf("expected representation preference, got %q", got)
		}
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"23505","message":"duplicate key value violates unique constraint"}`))
	})

	_, err := client.Database().From("saved_opportunities").
		Insert(map[string]string{"user_id": "user-1", "job_id": "1"}).
		Execute(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
}

func TestWithTokenSetsBearer(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer service-key" {
			t.Errorf("expected service bearer, got %q", got)
		}
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := client.Database().From("profiles").
		Select("*").
		WithToken("service-key").
		Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
}
