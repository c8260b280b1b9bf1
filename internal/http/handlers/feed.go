package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stunity/feed-service/internal/domain"
	"github.com/stunity/feed-service/internal/http/response"
	"github.com/stunity/feed-service/internal/platform/ctxutil"
	"github.com/stunity/feed-service/internal/platform/logger"
	"github.com/stunity/feed-service/internal/ranking"
	"github.com/stunity/feed-service/internal/services"
)

const trackTimeout = 10 * time.Second

type FeedHandler struct {
	log     *logger.Logger
	feeds   services.FeedService
	tracker services.TrackerService
	refresh services.RefreshService
}

func NewFeedHandler(log *logger.Logger, feeds services.FeedService, tracker services.TrackerService, refresh services.RefreshService) *FeedHandler {
	return &FeedHandler{
		log:     log.With("handler", "FeedHandler"),
		feeds:   feeds,
		tracker: tracker,
		refresh: refresh,
	}
}

func (h *FeedHandler) GetFeed(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	opts := services.FeedOptions{
		Mode:    ranking.ParseMode(c.Query("mode")),
		Subject: c.Query("subject"),
	}
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.RespondError(c, http.StatusBadRequest, "invalid_page", fmt.Errorf("page must be a positive integer"))
			return
		}
		opts.Page = n
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.RespondError(c, http.StatusBadRequest, "invalid_limit", fmt.Errorf("limit must be a positive integer"))
			return
		}
		opts.Limit = n
	}
	if raw := c.Query("exclude"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := uuid.Parse(part)
			if err != nil {
				response.RespondError(c, http.StatusBadRequest, "invalid_exclude", fmt.Errorf("exclude entry %q is not a uuid", part))
				return
			}
			opts.ExcludeIDs = append(opts.ExcludeIDs, id)
		}
	}

	page, err := h.feeds.GenerateFeed(c.Request.Context(), rd.UserID, opts)
	if err != nil {
		h.log.Error("feed generation failed", "user_id", rd.UserID, "error", err)
		response.RespondError(c, http.StatusInternalServerError, "feed_failed", fmt.Errorf("could not generate feed"))
		return
	}
	response.RespondOK(c, page)
}

type trackActionRequest struct {
	PostID   string  `json:"postId"`
	Action   string  `json:"action"`
	Duration float64 `json:"duration,omitempty"`
	Source   string  `json:"source,omitempty"`
}

// TrackAction responds immediately; the signal write runs detached so a
// slow store never delays the client.
func (h *FeedHandler) TrackAction(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req trackActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	postID, err := uuid.Parse(req.PostID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_post_id", fmt.Errorf("postId is not a uuid"))
		return
	}
	action := domain.FeedAction(strings.ToUpper(strings.TrimSpace(req.Action)))
	if !action.Valid() {
		response.RespondError(c, http.StatusBadRequest, "invalid_action", fmt.Errorf("unknown action %q", req.Action))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), trackTimeout)
		defer cancel()
		h.tracker.TrackAction(ctx, rd.UserID, postID, action, req.Duration, req.Source)
	}()
	response.RespondOK(c, gin.H{"ok": true})
}

type trackViewsRequest struct {
	Views []services.ViewEvent `json:"views"`
}

func (h *FeedHandler) TrackViews(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req trackViewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if len(req.Views) == 0 {
		response.RespondOK(c, gin.H{"ok": true, "accepted": 0})
		return
	}

	views := req.Views
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), trackTimeout)
		defer cancel()
		h.tracker.TrackViews(ctx, rd.UserID, views)
	}()
	response.RespondOK(c, gin.H{"ok": true, "accepted": len(views)})
}

func (h *FeedHandler) RefreshScores(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	count, err := h.refresh.RefreshPostScores(c.Request.Context())
	if err != nil {
		h.log.Error("manual score refresh failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "refresh_failed", fmt.Errorf("score refresh did not complete"))
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "refreshed": count})
}
