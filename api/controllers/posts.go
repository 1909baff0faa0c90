package controllers

import (
	"net/http"
	"strings"

	"github.com/ABBA-DALHATU/football-network-app/api/responses"
	"github.com/ABBA-DALHATU/football-network-app/api/validators"
	"github.com/ABBA-DALHATU/football-network-app/internal/feed"
	"github.com/ABBA-DALHATU/football-network-app/pkg/enums"
	pkgerrors "github.com/ABBA-DALHATU/football-network-app/pkg/errors"
	"github.com/ABBA-DALHATU/football-network-app/pkg/logger"
	"github.com/ABBA-DALHATU/football-network-app/pkg/pagination"
)

// GetFeed returns a page of posts. The type query parameter picks between
// the connection-scoped feed and the global one.
func GetFeed(svc feed.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "feed service unavailable"))
			return
		}

		callerID, err := callerFromContext(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		feedType, err := enums.ParseFeedType(strings.TrimSpace(r.URL.Query().Get("type")))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid feed type"))
			return
		}

		page := pagination.Page{}
		if page.Number, err = validators.ParseQueryInt(r, "page", 0, 1, 1_000_000); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if page.Size, err = validators.ParseQueryInt(r, "size", 0, 1, pagination.MaxLimit); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.FetchPosts(ctx, callerID, feedType, page)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CreatePost publishes a new post by the caller.
func CreatePost(svc feed.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "feed service unavailable"))
			return
		}

		callerID, err := callerFromContext(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload feed.CreatePostDTO
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		post, err := svc.CreatePost(ctx, callerID, payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, post)
	}
}

// ToggleLike flips the caller's like on a post and returns the new state.
func ToggleLike(svc feed.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "feed service unavailable"))
			return
		}

		callerID, err := callerFromContext(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		postID, err := pathUUID(r, "postID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.ToggleLike(ctx, callerID, postID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AddComment appends a comment to a post.
func AddComment(svc feed.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "feed service unavailable"))
			return
		}

		callerID, err := callerFromContext(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		postID, err := pathUUID(r, "postID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload feed.AddCommentDTO
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		comment, err := svc.AddComment(ctx, callerID, postID, payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, comment)
	}
}
