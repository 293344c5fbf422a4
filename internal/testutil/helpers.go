package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
)

// JSONRequest builds a request whose body is the JSON encoding of body.
// A string body is sent verbatim, which lets tests send malformed JSON.
func JSONRequest(t *testing.T, method, url string, body any) *http.Request {
	t.Helper()

	var raw []byte
	switch b := body.(type) {
	case nil:
	case string:
		raw = []byte(b)
	default:
		var err error
		raw, err = json.Marshal(b)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, url, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// ParseJSONResponse decodes JSON response body into v
func ParseJSONResponse(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()

	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v. Body: %s", err, w.Body.String())
	}
}

// AssertStatus checks HTTP status code matches expected
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()

	if w.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertErrorResponse checks error response format and message
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedMessage string) {
	t.Helper()

	AssertStatus(t, w, expectedStatus)

	var resp map[string]string
	ParseJSONResponse(t, w, &resp)

	if resp["error"] != expectedMessage {
		t.Errorf("expected error message %q, got %q", expectedMessage, resp["error"])
	}
}

// AssertSuccessResponse checks for 200 and {"success": true}
func AssertSuccessResponse(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()

	AssertStatus(t, w, http.StatusOK)

	var resp map[string]any
	ParseJSONResponse(t, w, &resp)

	if resp["success"] != true {
		t.Errorf("expected success=true, got %v", resp)
	}
}

// CreateTestUser inserts a users row and returns its id
func CreateTestUser(t *testing.T, env *TestEnvironment, isPremium bool, missTokens int) string {
	t.Helper()

	id := uuid.NewString()
	_, err := env.DB.Exec(env.Ctx,
		`INSERT INTO users (id, is_premium, premium_miss_tokens) VALUES ($1, $2, $3)`,
		id, isPremium, missTokens)
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return id
}

// CreateTestEntry inserts an entry and returns its id
func CreateTestEntry(t *testing.T, env *TestEnvironment, userID, text string, createdAt time.Time) int64 {
	t.Helper()

	var id int64
	err := env.DB.QueryRow(env.Ctx,
		`INSERT INTO entries (user_id, text, created_at) VALUES ($1, $2, $3) RETURNING id`,
		userID, text, createdAt).Scan(&id)
	if err != nil {
		t.Fatalf("failed to create test entry: %v", err)
	}
	return id
}

// CreateTestReflection inserts a weekly reflection
func CreateTestReflection(t *testing.T, env *TestEnvironment, userID string, weekStart time.Time, content string, archived bool) {
	t.Helper()

	_, err := env.DB.Exec(env.Ctx,
		`INSERT INTO weekly_reflections (user_id, week_start_date, content, is_archived) VALUES ($1, $2, $3, $4)`,
		userID, weekStart.Format("2006-01-02"), content, archived)
	if err != nil {
		t.Fatalf("failed to create test reflection: %v", err)
	}
}
