package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cliptube/backend/internal/engagement"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
	"github.com/cliptube/backend/internal/repositories"
)

type stubSubscriptionService struct {
	channels []string
	state    engagement.ToggleState
	err      error
}

func (s *stubSubscriptionService) Toggle(_ context.Context, _, channelID string) (engagement.SubscriptionResult, error) {
	if s.err != nil {
		return engagement.SubscriptionResult{}, s.err
	}
	s.channels = append(s.channels, channelID)
	return engagement.SubscriptionResult{State: s.state}, nil
}

type stubChannelLister struct {
	channels []models.SubscribedChannel
}

func (s *stubChannelLister) ListChannels(_ context.Context, _ string, p pagination.Params) ([]models.SubscribedChannel, int, error) {
	start, end := p.Window(len(s.channels))
	return s.channels[start:end], len(s.channels), nil
}

func TestToggleSubscription(t *testing.T) {
	service := &stubSubscriptionService{state: engagement.StateAdded}
	handler := SubscriptionHandler{Subscriptions: service}
	sessions := &stubSessionManager{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/subscriptions/{channelId}", requireAuth(sessions, handler.Toggle))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/channel-1", nil)
	req.Header.Set("Authorization", "Bearer access-u1")
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp toggleResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.State != engagement.StateAdded {
		t.Fatalf("expected added, got %s", resp.State)
	}
	if len(service.channels) != 1 || service.channels[0] != "channel-1" {
		t.Fatalf("unexpected toggled channels: %v", service.channels)
	}
}

func TestToggleSubscriptionMissingChannel(t *testing.T) {
	service := &stubSubscriptionService{err: repositories.ErrNotFound}
	handler := SubscriptionHandler{Subscriptions: service}
	sessions := &stubSessionManager{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/subscriptions/{channelId}", requireAuth(sessions, handler.Toggle))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/ghost", nil)
	req.Header.Set("Authorization", "Bearer access-u1")
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListSubscriptionsToleratesMissingChannel(t *testing.T) {
	lister := &stubChannelLister{channels: []models.SubscribedChannel{
		{SubscriptionID: "s1", SubscribedAt: time.Now(), Channel: &models.OwnerSummary{ID: "c1", Username: "alice"}},
		{SubscriptionID: "s2", SubscribedAt: time.Now()},
	}}
	handler := SubscriptionHandler{Channels: lister}
	sessions := &stubSessionManager{}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/subscriptions", requireAuth(sessions, handler.List))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions", nil)
	req.Header.Set("Authorization", "Bearer access-u1")
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Items []models.SubscribedChannel `json:"items"`
		Meta  pagination.Meta            `json:"meta"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(resp.Items))
	}
	if resp.Items[1].Channel != nil {
		t.Fatalf("expected nil channel for unresolved account, got %+v", resp.Items[1].Channel)
	}
}
