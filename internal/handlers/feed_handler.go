package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/threadline/backend/internal/feed"
	"github.com/threadline/backend/internal/feedcache"
	"github.com/threadline/backend/internal/models"
	"github.com/threadline/backend/internal/repositories"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	engine *feed.Engine
	cache  *feedcache.Cache
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(engine *feed.Engine, cache *feedcache.Cache) *FeedHandler {
	return &FeedHandler{engine: engine, cache: cache}
}

// RegisterFeedRoutes registers feed-related routes. Feeds are public: the
// group carries optional authentication so anonymous viewers get
// unpersonalized pages.
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
	g.GET("/users/:id/feed", h.GetProfileFeed)
	g.GET("/threads/:id/replies", h.GetReplyFeed)
	g.GET("/threads/:id/parents", h.GetParentFeed)
}

// FeedResponse is one page of a feed plus the cursor of the next page, if any
type FeedResponse struct {
	Threads    []models.ThreadView `json:"threads"`
	NextCursor string              `json:"nextCursor,omitempty"`
}

// GetFeed returns a page of the home feed, optionally restricted to followed
// authors via ?only_following=true.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	viewerID := getUserIDFromContext(c)
	onlyFollowing, _ := strconv.ParseBool(c.QueryParam("only_following"))
	limit := parseLimit(c)

	token := c.QueryParam("cursor")
	cursor, err := parseCursor(token)
	if err != nil {
		return err
	}

	threads, next, err := h.engine.HomeFeed(c.Request().Context(), viewerID, onlyFollowing, limit, cursor)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.cache.Register(feedcache.HomeKey(viewerID, onlyFollowing), token, threads)
	return c.JSON(http.StatusOK, feedPage(threads, next))
}

// GetProfileFeed returns a page of one user's threads
func (h *FeedHandler) GetProfileFeed(c echo.Context) error {
	viewerID := getUserIDFromContext(c)
	authorID := c.Param("id")
	limit := parseLimit(c)

	token := c.QueryParam("cursor")
	cursor, err := parseCursor(token)
	if err != nil {
		return err
	}

	threads, next, err := h.engine.ProfileFeed(c.Request().Context(), viewerID, authorID, limit, cursor)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.cache.Register(feedcache.ProfileKey(viewerID, authorID), token, threads)
	return c.JSON(http.StatusOK, feedPage(threads, next))
}

// GetReplyFeed returns a page of a thread's replies, oldest first
func (h *FeedHandler) GetReplyFeed(c echo.Context) error {
	viewerID := getUserIDFromContext(c)
	threadID := c.Param("id")
	limit := parseLimit(c)

	token := c.QueryParam("cursor")
	cursor, err := parseCursor(token)
	if err != nil {
		return err
	}

	threads, next, err := h.engine.ReplyFeed(c.Request().Context(), viewerID, threadID, limit, cursor)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.cache.Register(feedcache.ReplyKey(viewerID, threadID), token, threads)
	return c.JSON(http.StatusOK, feedPage(threads, next))
}

// GetParentFeed returns a page of a thread's ancestor chain, root-first. Its
// cursor is a plain thread id, not a composite keyset token.
func (h *FeedHandler) GetParentFeed(c echo.Context) error {
	viewerID := getUserIDFromContext(c)
	threadID := c.Param("id")
	limit := parseLimit(c)
	cursor := c.QueryParam("cursor")

	threads, next, err := h.engine.ParentFeed(c.Request().Context(), viewerID, threadID, limit, cursor)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.cache.Register(feedcache.ParentKey(viewerID, threadID), cursor, threads)
	return c.JSON(http.StatusOK, FeedResponse{Threads: threads, NextCursor: next})
}

func feedPage(threads []models.ThreadView, next *repositories.Cursor) FeedResponse {
	resp := FeedResponse{Threads: threads}
	if next != nil {
		resp.NextCursor = repositories.EncodeCursor(*next)
	}
	return resp
}

func parseLimit(c echo.Context) int {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 50 {
		limit = 10
	}
	return limit
}

func parseCursor(token string) (*repositories.Cursor, error) {
	if token == "" {
		return nil, nil
	}
	cursor, err := repositories.DecodeCursor(token)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid cursor")
	}
	return cursor, nil
}
