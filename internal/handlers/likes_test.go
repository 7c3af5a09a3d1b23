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

// stubLikeService records toggles and flips state per call.
type stubLikeService struct {
	toggles []models.LikeTarget
	actors  []string
	state   engagement.ToggleState
	err     error
}

func (s *stubLikeService) Toggle(_ context.Context, actorID string, target models.LikeTarget) (engagement.LikeResult, error) {
	if s.err != nil {
		return engagement.LikeResult{}, s.err
	}
	s.toggles = append(s.toggles, target)
	s.actors = append(s.actors, actorID)
	return engagement.LikeResult{State: s.state}, nil
}

type stubLikedLister struct {
	liked []models.LikedVideo
}

func (s *stubLikedLister) ListLikedVideos(_ context.Context, _ string, p pagination.Params) ([]models.LikedVideo, int, error) {
	start, end := p.Window(len(s.liked))
	return s.liked[start:end], len(s.liked), nil
}

func TestToggleVideoLike(t *testing.T) {
	service := &stubLikeService{state: engagement.StateAdded}
	handler := LikeHandler{Likes: service}
	sessions := &stubSessionManager{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/likes/videos/{id}", requireAuth(sessions, handler.ToggleVideo))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/likes/videos/v1", nil)
	req.Header.Set("Authorization", "Bearer access-u1")
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp toggleResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.State != engagement.StateAdded {
		t.Fatalf("expected added, got %s", resp.State)
	}

	if len(service.toggles) != 1 {
		t.Fatalf("expected one toggle, got %d", len(service.toggles))
	}
	if service.toggles[0].Kind != models.TargetVideo || service.toggles[0].ID != "v1" {
		t.Fatalf("unexpected target: %+v", service.toggles[0])
	}
	if service.actors[0] != "u1" {
		t.Fatalf("expected actor u1, got %q", service.actors[0])
	}
}

func TestToggleLikeKindsRouteToDiscriminator(t *testing.T) {
	service := &stubLikeService{state: engagement.StateAdded}
	handler := LikeHandler{Likes: service}
	sessions := &stubSessionManager{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/likes/videos/{id}", requireAuth(sessions, handler.ToggleVideo))
	mux.HandleFunc("POST /api/v1/likes/comments/{id}", requireAuth(sessions, handler.ToggleComment))
	mux.HandleFunc("POST /api/v1/likes/tweets/{id}", requireAuth(sessions, handler.ToggleTweet))

	paths := map[string]models.TargetKind{
		"/api/v1/likes/videos/a":   models.TargetVideo,
		"/api/v1/likes/comments/b": models.TargetComment,
		"/api/v1/likes/tweets/c":   models.TargetTweet,
	}

	for path, want := range paths {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set("Authorization", "Bearer access-u1")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
		got := service.toggles[len(service.toggles)-1]
		if got.Kind != want {
			t.Fatalf("%s: expected kind %s, got %s", path, want, got.Kind)
		}
	}
}

func TestToggleLikeMissingTarget(t *testing.T) {
	service := &stubLikeService{err: repositories.ErrNotFound}
	handler := LikeHandler{Likes: service}
	sessions := &stubSessionManager{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/likes/videos/{id}", requireAuth(sessions, handler.ToggleVideo))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/likes/videos/ghost", nil)
	req.Header.Set("Authorization", "Bearer access-u1")
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestToggleLikeRequiresAuthentication(t *testing.T) {
	handler := LikeHandler{Likes: &stubLikeService{}}
	sessions := &stubSessionManager{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/likes/videos/{id}", requireAuth(sessions, handler.ToggleVideo))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/likes/videos/v1", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLikedVideosKeepsSnapshotRows(t *testing.T) {
	lister := &stubLikedLister{liked: []models.LikedVideo{
		{LikeID: "l1", LikedAt: time.Now(), Video: &models.VideoSummary{ID: "v1", Title: "Alive"}},
		{LikeID: "l2", LikedAt: time.Now(), SnapshotTitle: "Deleted upload"},
	}}
	handler := LikeHandler{LikedLists: lister}
	sessions := &stubSessionManager{}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/likes/videos", requireAuth(sessions, handler.LikedVideos))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/likes/videos", nil)
	req.Header.Set("Authorization", "Bearer access-u1")
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Items []models.LikedVideo `json:"items"`
		Meta  pagination.Meta     `json:"meta"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("expected 2 liked rows, got %d", len(resp.Items))
	}
	if resp.Items[1].Video != nil || resp.Items[1].SnapshotTitle != "Deleted upload" {
		t.Fatalf("expected snapshot fallback row, got %+v", resp.Items[1])
	}
}
