package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bornholm/breathe/internal/account"
	"github.com/bornholm/breathe/internal/authn"
	"github.com/bornholm/breathe/internal/authn/oauth2"
	"github.com/pkg/errors"
)

const testAppID = "app123"

func newTestServer(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider, err := CreateProviderFromOptions(map[string]any{
		"baseUrl": server.URL,
		"appId":   testAppID,
		"token":   "service-token",
		"timeout": "2s",
	})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	return provider.(*Provider)
}

func TestProviderMe(t *testing.T) {
	type testCase struct {
		Status       int
		Body         string
		ExpectedUser *account.User
		ExpectError  bool
	}

	testCases := []testCase{
		{
			Status:       http.StatusOK,
			Body:         `{"id":"u1","full_name":"Ada Lovelace","email":"ada@example.com","avatar":"https://cdn.example.com/ada.png"}`,
			ExpectedUser: &account.User{ID: "u1", FullName: "Ada Lovelace", Email: "ada@example.com", Avatar: "https://cdn.example.com/ada.png"},
		},
		{
			Status:       http.StatusOK,
			Body:         `null`,
			ExpectedUser: nil,
		},
		{
			Status:       http.StatusUnauthorized,
			Body:         `{"message":"unauthorized"}`,
			ExpectedUser: nil,
		},
		{
			Status:       http.StatusNotFound,
			Body:         `{"message":"not found"}`,
			ExpectedUser: nil,
		},
		{
			Status:      http.StatusInternalServerError,
			Body:        `boom`,
			ExpectError: true,
		},
		{
			Status:      http.StatusOK,
			Body:        `{not json`,
			ExpectError: true,
		},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("Case #%d", idx), func(t *testing.T) {
			provider := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("method: expected '%v', got '%v'", http.MethodGet, r.Method)
				}

				if e, g := "/api/apps/"+testAppID+"/entities/User/me", r.URL.Path; e != g {
					t.Errorf("path: expected '%v', got '%v'", e, g)
				}

				if e, g := "Bearer service-token", r.Header.Get("Authorization"); e != g {
					t.Errorf("authorization: expected '%v', got '%v'", e, g)
				}

				w.WriteHeader(tc.Status)
				w.Write([]byte(tc.Body))
			})

			user, err := provider.Me(context.Background())
			if tc.ExpectError {
				if err == nil {
					t.Fatalf("expected an error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("%+v", errors.WithStack(err))
			}

			if tc.ExpectedUser == nil {
				if user != nil {
					t.Errorf("user: expected nil, got '%+v'", user)
				}
				return
			}

			if user == nil {
				t.Fatalf("user: expected '%+v', got nil", tc.ExpectedUser)
			}

			if e, g := *tc.ExpectedUser, *user; e != g {
				t.Errorf("user: expected '%+v', got '%+v'", e, g)
			}
		})
	}
}

func TestProviderMeVisitorToken(t *testing.T) {
	provider := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if e, g := "Bearer visitor-token", r.Header.Get("Authorization"); e != g {
			t.Errorf("authorization: expected '%v', got '%v'", e, g)
		}

		w.Write([]byte(`{"full_name":"Grace"}`))
	})

	ctx := authn.WithContextUser(context.Background(), &oauth2.User{
		Subject:     "42",
		Provider:    "oidc",
		AccessToken: "visitor-token",
	})

	user, err := provider.Me(ctx)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if user == nil {
		t.Fatalf("user: expected non nil user")
	}

	if e, g := "Grace", user.FullName; e != g {
		t.Errorf("user.FullName: expected '%v', got '%v'", e, g)
	}
}

func TestProviderMeWithoutToken(t *testing.T) {
	calls := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	provider, err := CreateProviderFromOptions(map[string]any{
		"baseUrl": server.URL,
		"appId":   testAppID,
	})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	user, err := provider.Me(context.Background())
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if user != nil {
		t.Errorf("user: expected nil, got '%+v'", user)
	}

	if e, g := 0, calls; e != g {
		t.Errorf("calls: expected '%v', got '%v'", e, g)
	}

	name := "Ada"
	if _, err := provider.UpdateMe(context.Background(), account.Changes{FullName: &name}); !errors.Is(err, account.ErrUnauthenticated) {
		t.Errorf("UpdateMe(): expected '%v', got '%v'", account.ErrUnauthenticated, err)
	}
}

func TestProviderUpdateMe(t *testing.T) {
	provider := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method: expected '%v', got '%v'", http.MethodPut, r.Method)
		}

		if e, g := "Bearer visitor-token", r.Header.Get("Authorization"); e != g {
			t.Errorf("authorization: expected '%v', got '%v'", e, g)
		}

		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("%+v", errors.WithStack(err))
		}

		if _, exists := payload["avatar"]; exists {
			t.Errorf("payload: unexpected avatar attribute in '%v'", payload)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":        "u1",
			"full_name": payload["full_name"],
		})
	})

	ctx := authn.WithContextUser(context.Background(), &oauth2.User{
		Subject:     "42",
		Provider:    "oidc",
		AccessToken: "visitor-token",
	})

	name := "Ada Byron"

	user, err := provider.UpdateMe(ctx, account.Changes{FullName: &name})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := name, user.FullName; e != g {
		t.Errorf("user.FullName: expected '%v', got '%v'", e, g)
	}
}

func TestProviderUpdateMeRequiresVisitorToken(t *testing.T) {
	type testCase struct {
		Context func() context.Context
	}

	testCases := []testCase{
		{
			Context: context.Background,
		},
		{
			Context: func() context.Context {
				return authn.WithContextUser(context.Background(), &oauth2.User{
					Subject:  "42",
					Provider: "github",
				})
			},
		},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("Case #%d", idx), func(t *testing.T) {
			writes := 0

			provider := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method == http.MethodPut {
					writes++
				}

				w.Write([]byte(`{"id":"shared","full_name":"Service account"}`))
			})

			name := "Mallory"

			user, err := provider.UpdateMe(tc.Context(), account.Changes{FullName: &name})
			if !errors.Is(err, account.ErrUnauthenticated) {
				t.Errorf("UpdateMe(): expected '%v', got '%v'", account.ErrUnauthenticated, err)
			}

			if user != nil {
				t.Errorf("user: expected nil, got '%+v'", user)
			}

			if e, g := 0, writes; e != g {
				t.Errorf("writes: expected '%v', got '%v'", e, g)
			}

			// Reads still fall back to the service token
			if _, err := provider.Me(tc.Context()); err != nil {
				t.Errorf("%+v", errors.WithStack(err))
			}
		})
	}
}

func TestCreateProviderFromOptions(t *testing.T) {
	type testCase struct {
		Options     any
		ExpectError bool
	}

	testCases := []testCase{
		{
			Options:     map[string]any{"appId": testAppID},
			ExpectError: true,
		},
		{
			Options:     map[string]any{"baseUrl": "https://api.example.com"},
			ExpectError: true,
		},
		{
			Options: map[string]any{"baseUrl": "https://api.example.com", "appId": testAppID, "timeout": "5s"},
		},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("Case #%d", idx), func(t *testing.T) {
			_, err := account.New(Type, tc.Options)
			if tc.ExpectError && err == nil {
				t.Errorf("expected an error, got nil")
			}

			if !tc.ExpectError && err != nil {
				t.Errorf("%+v", errors.WithStack(err))
			}
		})
	}
}
