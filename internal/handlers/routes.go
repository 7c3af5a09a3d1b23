package handlers

import "net/http"

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users         UserStore
	Sessions      SessionManager
	Videos        VideoStore
	Comments      CommentStore
	Tweets        TweetStore
	Playlists     PlaylistStore
	Likes         LikeService
	LikedLists    LikedVideoLister
	Subscriptions SubscriptionService
	Channels      ChannelLister
	Media         MediaStore
	AuthLimiter   RateLimiter
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux. Patterns use
// method-qualified routing; unauthenticated reads resolve the viewer
// optionally so viewer-relative flags work for logged-in callers.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	authH := AuthHandler{Users: deps.Users, Sessions: deps.Sessions, Limiter: deps.AuthLimiter}
	users := UserHandler{Users: deps.Users, Media: deps.Media}
	videos := VideoHandler{Videos: deps.Videos, Users: deps.Users, Media: deps.Media}
	comments := CommentHandler{Comments: deps.Comments, Videos: deps.Videos}
	tweets := TweetHandler{Tweets: deps.Tweets}
	playlists := PlaylistHandler{Playlists: deps.Playlists}
	likes := LikeHandler{Likes: deps.Likes, LikedLists: deps.LikedLists}
	subs := SubscriptionHandler{Subscriptions: deps.Subscriptions, Channels: deps.Channels}

	verifier := deps.Sessions

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("POST /api/v1/auth/register", authH.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authH.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", authH.Refresh)
	mux.HandleFunc("POST /api/v1/auth/logout", requireAuth(verifier, authH.Logout))

	mux.HandleFunc("GET /api/v1/users/me", requireAuth(verifier, users.Me))
	mux.HandleFunc("PATCH /api/v1/users/me", requireAuth(verifier, users.UpdateAccount))
	mux.HandleFunc("POST /api/v1/users/me/password", requireAuth(verifier, users.ChangePassword))
	mux.HandleFunc("PATCH /api/v1/users/me/avatar", requireAuth(verifier, users.UpdateAvatar))
	mux.HandleFunc("PATCH /api/v1/users/me/cover", requireAuth(verifier, users.UpdateCover))
	mux.HandleFunc("GET /api/v1/users/me/history", requireAuth(verifier, users.WatchHistory))
	mux.HandleFunc("GET /api/v1/channels/{username}", optionalAuth(verifier, users.Channel))

	mux.HandleFunc("POST /api/v1/videos", requireAuth(verifier, videos.Publish))
	mux.HandleFunc("GET /api/v1/videos", optionalAuth(verifier, videos.List))
	mux.HandleFunc("GET /api/v1/videos/{id}", optionalAuth(verifier, videos.Get))
	mux.HandleFunc("PATCH /api/v1/videos/{id}", requireAuth(verifier, videos.Update))
	mux.HandleFunc("PATCH /api/v1/videos/{id}/publish", requireAuth(verifier, videos.TogglePublish))
	mux.HandleFunc("DELETE /api/v1/videos/{id}", requireAuth(verifier, videos.Delete))

	mux.HandleFunc("GET /api/v1/videos/{id}/comments", optionalAuth(verifier, comments.ListForVideo))
	mux.HandleFunc("POST /api/v1/videos/{id}/comments", requireAuth(verifier, comments.Create))
	mux.HandleFunc("PATCH /api/v1/comments/{id}", requireAuth(verifier, comments.Update))
	mux.HandleFunc("DELETE /api/v1/comments/{id}", requireAuth(verifier, comments.Delete))

	mux.HandleFunc("POST /api/v1/tweets", requireAuth(verifier, tweets.Create))
	mux.HandleFunc("GET /api/v1/tweets", optionalAuth(verifier, tweets.List))
	mux.HandleFunc("PATCH /api/v1/tweets/{id}", requireAuth(verifier, tweets.Update))
	mux.HandleFunc("DELETE /api/v1/tweets/{id}", requireAuth(verifier, tweets.Delete))

	mux.HandleFunc("POST /api/v1/playlists", requireAuth(verifier, playlists.Create))
	mux.HandleFunc("GET /api/v1/playlists", requireAuth(verifier, playlists.ListMine))
	mux.HandleFunc("GET /api/v1/playlists/{id}", optionalAuth(verifier, playlists.Get))
	mux.HandleFunc("PATCH /api/v1/playlists/{id}", requireAuth(verifier, playlists.Update))
	mux.HandleFunc("DELETE /api/v1/playlists/{id}", requireAuth(verifier, playlists.Delete))
	mux.HandleFunc("POST /api/v1/playlists/{id}/videos/{videoId}", requireAuth(verifier, playlists.AddVideo))
	mux.HandleFunc("DELETE /api/v1/playlists/{id}/videos/{videoId}", requireAuth(verifier, playlists.RemoveVideo))

	mux.HandleFunc("POST /api/v1/likes/videos/{id}", requireAuth(verifier, likes.ToggleVideo))
	mux.HandleFunc("POST /api/v1/likes/comments/{id}", requireAuth(verifier, likes.ToggleComment))
	mux.HandleFunc("POST /api/v1/likes/tweets/{id}", requireAuth(verifier, likes.ToggleTweet))
	mux.HandleFunc("GET /api/v1/likes/videos", requireAuth(verifier, likes.LikedVideos))

	mux.HandleFunc("POST /api/v1/subscriptions/{channelId}", requireAuth(verifier, subs.Toggle))
	mux.HandleFunc("GET /api/v1/subscriptions", requireAuth(verifier, subs.List))
}
