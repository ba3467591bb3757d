package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/threadline/backend/internal/feed"
	"github.com/threadline/backend/internal/feedcache"
	"github.com/threadline/backend/internal/models"
	"github.com/threadline/backend/internal/notify"
	"github.com/threadline/backend/internal/repositories"
)

// ThreadHandler handles HTTP requests for creating, replying to, deleting and
// reading threads
type ThreadHandler struct {
	threadRepository repositories.ThreadRepository
	userRepository   repositories.UserRepository
	engine           *feed.Engine
	notifier         *notify.Notifier
	cache            *feedcache.Cache
}

// NewThreadHandler creates a new ThreadHandler
func NewThreadHandler(
	threadRepo repositories.ThreadRepository,
	userRepo repositories.UserRepository,
	engine *feed.Engine,
	notifier *notify.Notifier,
	cache *feedcache.Cache,
) *ThreadHandler {
	return &ThreadHandler{
		threadRepository: threadRepo,
		userRepository:   userRepo,
		engine:           engine,
		notifier:         notifier,
		cache:            cache,
	}
}

// RegisterThreadRoutes registers the authenticated thread mutations
func (h *ThreadHandler) RegisterThreadRoutes(g *echo.Group) {
	g.POST("/threads", h.CreateThread)
	g.POST("/threads/:id/replies", h.ReplyThread)
	g.DELETE("/threads/:id", h.DeleteThread)
}

// RegisterPublicThreadRoutes registers the public thread queries
func (h *ThreadHandler) RegisterPublicThreadRoutes(g *echo.Group) {
	g.GET("/threads/:id", h.GetThreadDetail)
}

// CreateThread creates a new root thread
func (h *ThreadHandler) CreateThread(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateThreadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Content) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Thread content must not be empty")
	}

	thread := &models.Thread{
		Content: req.Content,
		UserID:  userID,
	}
	if err := h.threadRepository.CreateThread(c.Request().Context(), thread); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.cache.Prepend(feedcache.HomeKey(userID, false), h.freshView(thread, userID))
	return c.JSON(http.StatusCreated, thread)
}

// ReplyThread creates a reply under an existing thread and notifies its author
func (h *ThreadHandler) ReplyThread(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	parentID := c.Param("id")

	var req models.ReplyThreadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Content) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Reply content must not be empty")
	}

	parent, err := h.threadRepository.GetThreadByID(c.Request().Context(), parentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Thread not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	reply := &models.Thread{
		Content:        req.Content,
		UserID:         userID,
		ParentThreadID: &parent.ID,
	}
	if err := h.threadRepository.CreateThread(c.Request().Context(), reply); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if actor, err := h.userRepository.GetUserByID(userID); err == nil {
		h.notifier.Push(c.Request().Context(), userID, parent.UserID, actor.Name+" replied to your thread")
	}

	h.cache.Prepend(feedcache.ReplyKey(userID, parentID), h.freshView(reply, userID))
	return c.JSON(http.StatusCreated, reply)
}

// DeleteThread soft-deletes a thread. Only the author may delete; anyone else
// gets an explicit 403 rather than a silent no-op.
func (h *ThreadHandler) DeleteThread(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	threadID := c.Param("id")

	thread, err := h.threadRepository.GetThreadByID(c.Request().Context(), threadID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Thread not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if thread.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only delete your own threads")
	}

	if err := h.threadRepository.SoftDeleteThread(c.Request().Context(), threadID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	thread.Status = models.ThreadDeleted
	return c.JSON(http.StatusOK, thread)
}

// GetThreadDetail returns a single feed-shaped thread
func (h *ThreadHandler) GetThreadDetail(c echo.Context) error {
	viewerID := getUserIDFromContext(c)
	threadID := c.Param("id")

	view, err := h.engine.ThreadDetail(c.Request().Context(), viewerID, threadID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Thread not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"thread": view})
}

// freshView shapes a just-created thread for cache insertion: zero counts,
// not liked, authored by the current viewer.
func (h *ThreadHandler) freshView(thread *models.Thread, userID string) models.ThreadView {
	author := models.UserCompact{ID: userID}
	if user, err := h.userRepository.GetUserByID(userID); err == nil {
		author = user.ToCompact()
	}
	return models.ThreadView{
		ID:        thread.ID,
		Content:   thread.Content,
		CreatedAt: thread.CreatedAt,
		User:      author,
	}
}
