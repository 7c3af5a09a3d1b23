package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	server, err := testserver.NewTestServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "start cockroach test server: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to cockroach test server: %v\n", err)
		server.Stop()
		os.Exit(1)
	}

	if err := applyMigrations(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		pool.Close()
		server.Stop()
		os.Exit(1)
	}

	testPool = pool

	code := m.Run()

	pool.Close()
	server.Stop()

	os.Exit(code)
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir := filepath.Join("..", "..", "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		contents, err := os.ReadFile(filepath.Join(migrationsDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		if _, err := pool.Exec(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func resetDatabase(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	conn, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `TRUNCATE TABLE watch_history, subscriptions, likes,
        playlist_videos, playlists, tweets, comments, videos, users CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func createTestUser(t *testing.T, username string) models.User {
	t.Helper()
	now := time.Now().UTC()
	user := models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     username + "@example.com",
		FullName:  "Test " + username,
		Password:  "password-hash",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := NewPostgresUserRepository(testPool).Create(context.Background(), user); err != nil {
		t.Fatalf("create test user %s: %v", username, err)
	}
	return user
}

func createTestVideo(t *testing.T, ownerID, title string) models.Video {
	t.Helper()
	now := time.Now().UTC()
	video := models.Video{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		VideoFileURL: "https://cdn.example.com/" + uuid.NewString() + ".mp4",
		Title:        title,
		IsPublished:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := NewPostgresVideoRepository(testPool).Create(context.Background(), video); err != nil {
		t.Fatalf("create test video %s: %v", title, err)
	}
	return video
}

func videoTarget(t *testing.T, id string) models.LikeTarget {
	t.Helper()
	target, err := models.NewLikeTarget(models.TargetVideo, id)
	if err != nil {
		t.Fatalf("build like target: %v", err)
	}
	return target
}

func TestPostgresUserRepository_CreateFindAndLogin(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresUserRepository(testPool)
	user := createTestUser(t, "alice")

	dup := user
	dup.ID = uuid.NewString()
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate username, got %v", err)
	}

	byUsername, err := repo.FindByLogin(ctx, "alice")
	if err != nil {
		t.Fatalf("find by username login: %v", err)
	}
	byEmail, err := repo.FindByLogin(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("find by email login: %v", err)
	}
	if byUsername.ID != user.ID || byEmail.ID != user.ID {
		t.Fatalf("logins resolved different users: %s vs %s", byUsername.ID, byEmail.ID)
	}

	if _, err := repo.FindByID(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id, got %v", err)
	}
}

func TestPostgresUserRepository_RefreshTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresUserRepository(testPool)
	user := createTestUser(t, "alice")

	token := "refresh-token-value"
	if err := repo.SetRefreshToken(ctx, user.ID, &token); err != nil {
		t.Fatalf("set refresh token: %v", err)
	}

	fetched, err := repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if fetched.RefreshToken == nil || *fetched.RefreshToken != token {
		t.Fatalf("expected stored refresh token, got %v", fetched.RefreshToken)
	}

	if err := repo.SetRefreshToken(ctx, user.ID, nil); err != nil {
		t.Fatalf("clear refresh token: %v", err)
	}
	fetched, err = repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("find user after clear: %v", err)
	}
	if fetched.RefreshToken != nil {
		t.Fatalf("expected cleared refresh token, got %q", *fetched.RefreshToken)
	}

	if err := repo.SetRefreshToken(ctx, uuid.NewString(), &token); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing user, got %v", err)
	}
}

func TestPostgresLikeRepository_EdgeUniqueness(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresLikeRepository(testPool)
	actor := createTestUser(t, "alice")
	video := createTestVideo(t, actor.ID, "First upload")
	target := videoTarget(t, video.ID)

	like := models.Like{
		ID:            uuid.NewString(),
		ActorID:       actor.ID,
		Target:        target,
		SnapshotTitle: video.Title,
		CreatedAt:     time.Now().UTC(),
	}
	if err := repo.Create(ctx, like); err != nil {
		t.Fatalf("create like: %v", err)
	}

	dup := like
	dup.ID = uuid.NewString()
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate edge, got %v", err)
	}

	found, err := repo.Find(ctx, actor.ID, target)
	if err != nil {
		t.Fatalf("find like: %v", err)
	}
	if found.ID != like.ID || found.SnapshotTitle != video.Title {
		t.Fatalf("unexpected like fetched: %+v", found)
	}

	count, err := repo.CountForTarget(ctx, target)
	if err != nil {
		t.Fatalf("count likes: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected count 1, got %d", count)
	}

	removed, err := repo.DeleteMatching(ctx, actor.ID, target)
	if err != nil {
		t.Fatalf("delete like: %v", err)
	}
	if removed.ID != like.ID {
		t.Fatalf("expected removed edge %s, got %s", like.ID, removed.ID)
	}

	if _, err := repo.DeleteMatching(ctx, actor.ID, target); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	count, err = repo.CountForTarget(ctx, target)
	if err != nil {
		t.Fatalf("count likes after delete: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected count 0, got %d", count)
	}
}

func TestPostgresLikeRepository_SnapshotFallbackForDeletedVideo(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	likes := NewPostgresLikeRepository(testPool)
	videos := NewPostgresVideoRepository(testPool)
	actor := createTestUser(t, "alice")
	video := createTestVideo(t, actor.ID, "Soon deleted")

	like := models.Like{
		ID:            uuid.NewString(),
		ActorID:       actor.ID,
		Target:        videoTarget(t, video.ID),
		SnapshotTitle: video.Title,
		CreatedAt:     time.Now().UTC(),
	}
	if err := likes.Create(ctx, like); err != nil {
		t.Fatalf("create like: %v", err)
	}

	if err := videos.Delete(ctx, video.ID); err != nil {
		t.Fatalf("delete video: %v", err)
	}

	liked, total, err := likes.ListLikedVideos(ctx, actor.ID, pagination.Params{})
	if err != nil {
		t.Fatalf("list liked videos: %v", err)
	}
	if total != 1 || len(liked) != 1 {
		t.Fatalf("expected the like row to survive, got total=%d len=%d", total, len(liked))
	}
	if liked[0].Video != nil {
		t.Fatalf("expected nil video summary for deleted target, got %+v", liked[0].Video)
	}
	if liked[0].SnapshotTitle != "Soon deleted" {
		t.Fatalf("expected snapshot fallback, got %q", liked[0].SnapshotTitle)
	}
}

func TestPostgresSubscriptionRepository_EdgeAndListing(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresSubscriptionRepository(testPool)
	subscriber := createTestUser(t, "viewer")
	channelA := createTestUser(t, "channela")
	channelB := createTestUser(t, "channelb")

	subA := models.Subscription{
		ID:           uuid.NewString(),
		SubscriberID: subscriber.ID,
		ChannelID:    channelA.ID,
		CreatedAt:    time.Now().UTC().Add(-time.Hour),
	}
	subB := models.Subscription{
		ID:           uuid.NewString(),
		SubscriberID: subscriber.ID,
		ChannelID:    channelB.ID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.Create(ctx, subA); err != nil {
		t.Fatalf("create subscription A: %v", err)
	}
	if err := repo.Create(ctx, subB); err != nil {
		t.Fatalf("create subscription B: %v", err)
	}

	dup := subA
	dup.ID = uuid.NewString()
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate pair, got %v", err)
	}

	channels, total, err := repo.ListChannels(ctx, subscriber.ID, pagination.Params{})
	if err != nil {
		t.Fatalf("list channels: %v", err)
	}
	if total != 2 || len(channels) != 2 {
		t.Fatalf("expected 2 channels, got total=%d len=%d", total, len(channels))
	}
	// Newest subscription first.
	if channels[0].Channel == nil || channels[0].Channel.Username != "channelb" {
		t.Fatalf("expected channelb first, got %+v", channels[0].Channel)
	}

	removed, err := repo.DeleteMatching(ctx, subscriber.ID, channelA.ID)
	if err != nil {
		t.Fatalf("delete subscription: %v", err)
	}
	if removed.ID != subA.ID {
		t.Fatalf("expected removed edge %s, got %s", subA.ID, removed.ID)
	}
	if _, err := repo.Find(ctx, subscriber.ID, channelA.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestPostgresUserRepository_ChannelProfileCounts(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	users := NewPostgresUserRepository(testPool)
	subs := NewPostgresSubscriptionRepository(testPool)

	channel := createTestUser(t, "creator")
	fanA := createTestUser(t, "fana")
	fanB := createTestUser(t, "fanb")

	for _, fan := range []models.User{fanA, fanB} {
		sub := models.Subscription{
			ID:           uuid.NewString(),
			SubscriberID: fan.ID,
			ChannelID:    channel.ID,
			CreatedAt:    time.Now().UTC(),
		}
		if err := subs.Create(ctx, sub); err != nil {
			t.Fatalf("create subscription: %v", err)
		}
	}

	profile, err := users.ChannelProfile(ctx, "creator", fanA.ID)
	if err != nil {
		t.Fatalf("channel profile for subscriber: %v", err)
	}
	if profile.SubscriberCount != 2 {
		t.Fatalf("expected 2 subscribers, got %d", profile.SubscriberCount)
	}
	if !profile.IsSubscribed {
		t.Fatal("expected isSubscribed for fanA")
	}

	anon, err := users.ChannelProfile(ctx, "creator", "")
	if err != nil {
		t.Fatalf("channel profile for anonymous: %v", err)
	}
	if anon.IsSubscribed {
		t.Fatal("anonymous viewer must not appear subscribed")
	}

	if _, err := users.ChannelProfile(ctx, "ghost", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing channel, got %v", err)
	}
}

func TestPostgresVideoRepository_ListFilterSortAndPaginate(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresVideoRepository(testPool)
	owner := createTestUser(t, "creator")
	other := createTestUser(t, "other")

	createTestVideo(t, owner.ID, "Alpha tutorial")
	createTestVideo(t, owner.ID, "Beta tutorial")
	createTestVideo(t, other.ID, "Gamma vlog")

	// Text filter matches titles case-insensitively.
	views, total, err := repo.List(ctx, VideoFilter{Query: "TUTORIAL"}, pagination.Params{})
	if err != nil {
		t.Fatalf("list with query: %v", err)
	}
	if total != 2 || len(views) != 2 {
		t.Fatalf("expected 2 tutorials, got total=%d len=%d", total, len(views))
	}

	// Owner filter.
	views, total, err = repo.List(ctx, VideoFilter{OwnerID: other.ID}, pagination.Params{})
	if err != nil {
		t.Fatalf("list with owner: %v", err)
	}
	if total != 1 || views[0].Title != "Gamma vlog" {
		t.Fatalf("unexpected owner listing: total=%d views=%+v", total, views)
	}

	// Title sort ascending.
	views, _, err = repo.List(ctx, VideoFilter{SortBy: "title", Ascending: true}, pagination.Params{})
	if err != nil {
		t.Fatalf("list sorted by title: %v", err)
	}
	if views[0].Title != "Alpha tutorial" || views[2].Title != "Gamma vlog" {
		t.Fatalf("unexpected title order: %q, %q, %q", views[0].Title, views[1].Title, views[2].Title)
	}

	// Consecutive pages are disjoint and cover the full set.
	seen := map[string]bool{}
	for page := 1; page <= 2; page++ {
		pageViews, total, err := repo.List(ctx, VideoFilter{SortBy: "title", Ascending: true}, pagination.Params{Page: page, Limit: 2})
		if err != nil {
			t.Fatalf("list page %d: %v", page, err)
		}
		if total != 3 {
			t.Fatalf("expected total 3 on page %d, got %d", page, total)
		}
		for _, v := range pageViews {
			if seen[v.ID] {
				t.Fatalf("video %s appeared on two pages", v.ID)
			}
			seen[v.ID] = true
		}
	}
	if len(seen) != 3 {
		t.Fatalf("expected pages to cover all 3 videos, saw %d", len(seen))
	}
}

func TestPostgresVideoRepository_ViewerRelativeView(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	videos := NewPostgresVideoRepository(testPool)
	likes := NewPostgresLikeRepository(testPool)

	owner := createTestUser(t, "creator")
	fan := createTestUser(t, "fan")
	video := createTestVideo(t, owner.ID, "Liked video")

	like := models.Like{
		ID:        uuid.NewString(),
		ActorID:   fan.ID,
		Target:    videoTarget(t, video.ID),
		CreatedAt: time.Now().UTC(),
	}
	if err := likes.Create(ctx, like); err != nil {
		t.Fatalf("create like: %v", err)
	}

	forFan, err := videos.View(ctx, video.ID, fan.ID)
	if err != nil {
		t.Fatalf("view for fan: %v", err)
	}
	if forFan.LikeCount != 1 || !forFan.IsLiked {
		t.Fatalf("expected liked view for fan, got count=%d liked=%v", forFan.LikeCount, forFan.IsLiked)
	}
	if forFan.Owner == nil || forFan.Owner.Username != "creator" {
		t.Fatalf("expected owner summary, got %+v", forFan.Owner)
	}

	anon, err := videos.View(ctx, video.ID, "")
	if err != nil {
		t.Fatalf("view for anonymous: %v", err)
	}
	if anon.LikeCount != 1 || anon.IsLiked {
		t.Fatalf("anonymous view must not be liked, got count=%d liked=%v", anon.LikeCount, anon.IsLiked)
	}
}

func TestPostgresPlaylistRepository_Membership(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresPlaylistRepository(testPool)
	owner := createTestUser(t, "curator")
	video := createTestVideo(t, owner.ID, "Listed video")

	now := time.Now().UTC()
	playlist := models.Playlist{
		ID:        uuid.NewString(),
		OwnerID:   owner.ID,
		Name:      "Favorites",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(ctx, playlist); err != nil {
		t.Fatalf("create playlist: %v", err)
	}

	if err := repo.AddVideo(ctx, playlist.ID, video.ID); err != nil {
		t.Fatalf("add video: %v", err)
	}
	// Adding again is a no-op, not an error and not a duplicate.
	if err := repo.AddVideo(ctx, playlist.ID, video.ID); err != nil {
		t.Fatalf("re-add video: %v", err)
	}

	fetched, err := repo.FindByID(ctx, playlist.ID)
	if err != nil {
		t.Fatalf("find playlist: %v", err)
	}
	if len(fetched.VideoIDs) != 1 || fetched.VideoIDs[0] != video.ID {
		t.Fatalf("expected single membership, got %v", fetched.VideoIDs)
	}

	if err := repo.AddVideo(ctx, playlist.ID, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound adding missing video, got %v", err)
	}

	if err := repo.RemoveVideo(ctx, playlist.ID, video.ID); err != nil {
		t.Fatalf("remove video: %v", err)
	}
	if err := repo.RemoveVideo(ctx, playlist.ID, video.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound removing absent video, got %v", err)
	}
}

func TestPostgresCommentRepository_ListWithLikeCounts(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	comments := NewPostgresCommentRepository(testPool)
	likes := NewPostgresLikeRepository(testPool)

	owner := createTestUser(t, "creator")
	commenter := createTestUser(t, "commenter")
	video := createTestVideo(t, owner.ID, "Discussed video")

	now := time.Now().UTC()
	first := models.Comment{
		ID:        uuid.NewString(),
		OwnerID:   commenter.ID,
		VideoID:   video.ID,
		Content:   "First!",
		CreatedAt: now.Add(-time.Minute),
		UpdatedAt: now.Add(-time.Minute),
	}
	second := models.Comment{
		ID:        uuid.NewString(),
		OwnerID:   owner.ID,
		VideoID:   video.ID,
		Content:   "Thanks for watching.",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := comments.Create(ctx, first); err != nil {
		t.Fatalf("create first comment: %v", err)
	}
	if err := comments.Create(ctx, second); err != nil {
		t.Fatalf("create second comment: %v", err)
	}

	target, err := models.NewLikeTarget(models.TargetComment, first.ID)
	if err != nil {
		t.Fatalf("build comment target: %v", err)
	}
	like := models.Like{ID: uuid.NewString(), ActorID: owner.ID, Target: target, CreatedAt: now}
	if err := likes.Create(ctx, like); err != nil {
		t.Fatalf("like comment: %v", err)
	}

	views, total, err := comments.ListForVideo(ctx, video.ID, pagination.Params{})
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if total != 2 || len(views) != 2 {
		t.Fatalf("expected 2 comments, got total=%d len=%d", total, len(views))
	}
	// Newest first; the older liked comment carries its count.
	if views[0].Content != "Thanks for watching." {
		t.Fatalf("expected newest comment first, got %q", views[0].Content)
	}
	if views[1].LikeCount != 1 {
		t.Fatalf("expected like count 1 on first comment, got %d", views[1].LikeCount)
	}
}

func TestPostgresUserRepository_WatchHistoryOrder(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	users := NewPostgresUserRepository(testPool)
	viewer := createTestUser(t, "viewer")
	owner := createTestUser(t, "creator")
	first := createTestVideo(t, owner.ID, "Watched first")
	second := createTestVideo(t, owner.ID, "Watched second")

	if err := users.AppendWatchHistory(ctx, viewer.ID, first.ID); err != nil {
		t.Fatalf("append first watch: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if err := users.AppendWatchHistory(ctx, viewer.ID, second.ID); err != nil {
		t.Fatalf("append second watch: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	// Rewatching appends another entry.
	if err := users.AppendWatchHistory(ctx, viewer.ID, first.ID); err != nil {
		t.Fatalf("append rewatch: %v", err)
	}

	if err := users.AppendWatchHistory(ctx, viewer.ID, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing video, got %v", err)
	}

	history, total, err := users.WatchHistory(ctx, viewer.ID, pagination.Params{})
	if err != nil {
		t.Fatalf("list watch history: %v", err)
	}
	if total != 3 || len(history) != 3 {
		t.Fatalf("expected 3 entries, got total=%d len=%d", total, len(history))
	}
	if history[0].Title != "Watched first" {
		t.Fatalf("expected most recent watch first, got %q", history[0].Title)
	}
}
