package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kendinapp/kendin-backend/internal/api"
	"github.com/kendinapp/kendin-backend/internal/identity"
	"github.com/kendinapp/kendin-backend/internal/migration"
	"github.com/kendinapp/kendin-backend/internal/openai"
	"github.com/kendinapp/kendin-backend/internal/reflection"
	"github.com/kendinapp/kendin-backend/internal/testutil"
)

var monday = time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)

// fakeOpenAI answers chat completions with a fixed reflection and records
// the user prompt it received.
type fakeOpenAI struct {
	content    atomic.Value
	calls      atomic.Int32
	lastPrompt atomic.Value
}

func (f *fakeOpenAI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	var req openai.ChatCompletionRequest
	json.NewDecoder(r.Body).Decode(&req)
	if len(req.Messages) == 2 {
		f.lastPrompt.Store(req.Messages[1].Content)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
		Choices: []openai.Choice{{Message: openai.Message{Role: openai.RoleAssistant, Content: f.content.Load().(string)}}},
	})
}

// fakeAuth serves the GoTrue admin user lookup for a fixed set of ids.
func fakeAuth(known ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/auth/v1/admin/users/")
		for _, k := range known {
			if k == id {
				json.NewEncoder(w).Encode(map[string]string{"id": id})
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"msg":"User not found"}`))
	})
}

type harness struct {
	env     *testutil.TestEnvironment
	handler http.Handler
	llm     *fakeOpenAI
}

func newHarness(t *testing.T, knownUsers ...string) *harness {
	t.Helper()

	env := testutil.SetupTestEnvironment(t)
	env.CleanDB(t)

	llm := &fakeOpenAI{}
	llm.content.Store("  Bu hafta kendine karşı nazikti.  ")
	llmServer := httptest.NewServer(llm)
	t.Cleanup(llmServer.Close)

	authServer := httptest.NewServer(fakeAuth(knownUsers...))
	t.Cleanup(authServer.Close)

	client := openai.NewClient("sk-test", openai.WithBaseURL(llmServer.URL))
	gen := reflection.NewGenerator(env.DB, client, reflection.Config{})
	mig := migration.NewMigrator(env.DB, identity.NewSupabaseVerifier(authServer.URL, "service-role", 5*time.Second))

	h := api.NewServer(api.Deps{DB: env.DB, Generator: gen, Migrator: mig}).SetupRoutes()
	return &harness{env: env, handler: h, llm: llm}
}

func (h *harness) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, testutil.JSONRequest(t, http.MethodPost, path, body))
	return w
}

func TestGenerateReflection_HTTP_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	h := newHarness(t)
	user := testutil.CreateTestUser(t, h.env, false, 0)
	testutil.CreateTestEntry(t, h.env, user, "B", monday.Add(2*24*time.Hour+18*time.Hour))
	testutil.CreateTestEntry(t, h.env, user, "A", monday.Add(9*time.Hour))

	body := map[string]string{"user_id": user, "week_start_date": "2026-10-19"}

	t.Run("stores trimmed reflection", func(t *testing.T) {
		w := h.post(t, "/functions/v1/generate-reflection", body)
		testutil.AssertSuccessResponse(t, w)

		got, err := h.env.DB.GetWeeklyReflection(h.env.Ctx, user, monday)
		if err != nil {
			t.Fatalf("GetWeeklyReflection failed: %v", err)
		}
		if got.Content != "Bu hafta kendine karşı nazikti." || got.IsArchived {
			t.Errorf("stored reflection = %+v", got)
		}

		prompt, _ := h.llm.lastPrompt.Load().(string)
		if a, b := strings.Index(prompt, ": A"), strings.Index(prompt, ": B"); a < 0 || b < 0 || a > b {
			t.Errorf("prompt entries missing or out of order:\n%s", prompt)
		}
	})

	t.Run("regeneration overwrites", func(t *testing.T) {
		h.llm.content.Store("ikinci")
		w := h.post(t, "/generate-reflection", body)
		testutil.AssertSuccessResponse(t, w)

		n, err := h.env.DB.CountWeeklyReflections(h.env.Ctx, user)
		if err != nil {
			t.Fatalf("CountWeeklyReflections failed: %v", err)
		}
		if n != 1 {
			t.Errorf("reflections = %d, want 1", n)
		}
	})

	t.Run("empty week skips the API", func(t *testing.T) {
		before := h.llm.calls.Load()
		w := h.post(t, "/generate-reflection", map[string]string{"user_id": user, "week_start_date": "2026-10-26"})
		testutil.AssertErrorResponse(t, w, http.StatusBadRequest, "No entries found for this week")
		if h.llm.calls.Load() != before {
			t.Error("API called for an empty week")
		}
	})
}

func TestMigrateUserData_HTTP_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	t.Run("moves everything", func(t *testing.T) {
		h := newHarness(t)
		anon := testutil.CreateTestUser(t, h.env, true, 2)
		account := testutil.CreateTestUser(t, h.env, false, 7)
		h = newHarnessFor(t, h, anon, account)

		testutil.CreateTestEntry(t, h.env, anon, "first", monday.Add(time.Hour))
		testutil.CreateTestReflection(t, h.env, anon, monday, "old reflection", true)

		w := h.post(t, "/functions/v1/migrate-user-data", map[string]string{"old_user_id": anon, "new_user_id": account})
		testutil.AssertSuccessResponse(t, w)

		if n, _ := h.env.DB.CountEntries(h.env.Ctx, anon); n != 0 {
			t.Errorf("old user still owns %d entries", n)
		}
		if n, _ := h.env.DB.CountWeeklyReflections(h.env.Ctx, account); n != 1 {
			t.Errorf("new user owns %d reflections, want 1", n)
		}
		e, err := h.env.DB.GetEntitlements(h.env.Ctx, account)
		if err != nil {
			t.Fatalf("GetEntitlements failed: %v", err)
		}
		if !e.IsPremium || e.PremiumMissTokens != 2 {
			t.Errorf("entitlements = %+v, want copied from source", e)
		}
	})

	t.Run("unknown old user", func(t *testing.T) {
		h := newHarness(t)
		anon := testutil.CreateTestUser(t, h.env, true, 2)
		account := testutil.CreateTestUser(t, h.env, false, 7)
		h = newHarnessFor(t, h, account)
		testutil.CreateTestEntry(t, h.env, anon, "first", monday.Add(time.Hour))

		w := h.post(t, "/migrate-user-data", map[string]string{"old_user_id": anon, "new_user_id": account})
		testutil.AssertErrorResponse(t, w, http.StatusNotFound, "Old user not found")

		if n, _ := h.env.DB.CountEntries(h.env.Ctx, anon); n != 1 {
			t.Errorf("old user owns %d entries, want 1", n)
		}
		e, _ := h.env.DB.GetEntitlements(h.env.Ctx, account)
		if e == nil || e.IsPremium {
			t.Errorf("destination entitlements changed: %+v", e)
		}
	})

	t.Run("week collision", func(t *testing.T) {
		h := newHarness(t)
		anon := testutil.CreateTestUser(t, h.env, false, 0)
		account := testutil.CreateTestUser(t, h.env, false, 0)
		h = newHarnessFor(t, h, anon, account)

		testutil.CreateTestEntry(t, h.env, anon, "first", monday.Add(time.Hour))
		testutil.CreateTestReflection(t, h.env, anon, monday, "anon", false)
		testutil.CreateTestReflection(t, h.env, account, monday, "account", false)

		w := h.post(t, "/migrate-user-data", map[string]string{"old_user_id": anon, "new_user_id": account})
		testutil.AssertStatus(t, w, http.StatusConflict)

		// rolled back together
		if n, _ := h.env.DB.CountEntries(h.env.Ctx, anon); n != 1 {
			t.Errorf("old user owns %d entries after rollback, want 1", n)
		}
	})
}

// newHarnessFor rebuilds h's handler with an auth server that knows ids,
// reusing the same database.
func newHarnessFor(t *testing.T, h *harness, ids ...string) *harness {
	t.Helper()

	authServer := httptest.NewServer(fakeAuth(ids...))
	t.Cleanup(authServer.Close)
	llmServer := httptest.NewServer(h.llm)
	t.Cleanup(llmServer.Close)

	gen := reflection.NewGenerator(h.env.DB, openai.NewClient("sk-test", openai.WithBaseURL(llmServer.URL)), reflection.Config{})
	mig := migration.NewMigrator(h.env.DB, identity.NewSupabaseVerifier(authServer.URL, "service-role", 5*time.Second))
	h.handler = api.NewServer(api.Deps{DB: h.env.DB, Generator: gen, Migrator: mig}).SetupRoutes()
	return h
}
