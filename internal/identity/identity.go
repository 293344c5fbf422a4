// Package identity checks whether an account id is known to the auth provider.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("kendin/identity")

// Verifier reports whether an identity exists.
type Verifier interface {
	UserExists(ctx context.Context, userID string) (bool, error)
}

// SupabaseVerifier looks users up through the GoTrue admin API using the
// service-role key.
type SupabaseVerifier struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewSupabaseVerifier creates a verifier for the project at baseURL
// (e.g. https://xyz.supabase.co).
func NewSupabaseVerifier(baseURL, serviceKey string, timeout time.Duration) *SupabaseVerifier {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &SupabaseVerifier{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type adminUser struct {
	ID string `json:"id"`
}

// UserExists returns (false, nil) when the admin API answers 404 and an
// error for any other unexpected response.
func (v *SupabaseVerifier) UserExists(ctx context.Context, userID string) (bool, error) {
	ctx, span := tracer.Start(ctx, "identity.user_exists",
		trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	exists, err := v.lookup(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}
	span.SetAttributes(attribute.Bool("user.exists", exists))
	return exists, nil
}

func (v *SupabaseVerifier) lookup(ctx context.Context, userID string) (bool, error) {
	endpoint := v.baseURL + "/auth/v1/admin/users/" + url.PathEscape(userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", v.serviceKey)
	req.Header.Set("Authorization", "Bearer "+v.serviceKey)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode != http.StatusOK:
		return false, fmt.Errorf("admin API error (status %d): %s", resp.StatusCode, string(body))
	}

	var u adminUser
	if err := json.Unmarshal(body, &u); err != nil {
		return false, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return u.ID != "", nil
}
