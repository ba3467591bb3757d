package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/threadline/backend/internal/feedcache"
	"github.com/threadline/backend/internal/models"
	"github.com/threadline/backend/internal/notify"
	"github.com/threadline/backend/internal/repositories"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likeRepository   repositories.LikeRepository
	threadRepository repositories.ThreadRepository
	userRepository   repositories.UserRepository
	notifier         *notify.Notifier
	cache            *feedcache.Cache
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(
	likeRepo repositories.LikeRepository,
	threadRepo repositories.ThreadRepository,
	userRepo repositories.UserRepository,
	notifier *notify.Notifier,
	cache *feedcache.Cache,
) *LikeHandler {
	return &LikeHandler{
		likeRepository:   likeRepo,
		threadRepository: threadRepo,
		userRepository:   userRepo,
		notifier:         notifier,
		cache:            cache,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/threads/:id/like", h.ToggleLike)
}

// ToggleLike flips the like edge for the (thread, viewer) pair. Creating the
// edge notifies the thread's author; removing it is silent. Every cached feed
// snapshot containing the thread is patched on success.
func (h *LikeHandler) ToggleLike(c echo.Context) error {
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

	hasLiked, err := h.likeRepository.HasUserLikedThread(threadID, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if hasLiked {
		if err := h.likeRepository.DeleteLike(threadID, userID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		h.cache.ApplyLikeToggle(threadID, false)
		return c.JSON(http.StatusOK, echo.Map{"addedLike": false})
	}

	like := &models.Like{ThreadID: threadID, UserID: userID}
	if err := h.likeRepository.CreateLike(like); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if actor, err := h.userRepository.GetUserByID(userID); err == nil {
		h.notifier.Push(c.Request().Context(), userID, thread.UserID, actor.Name+" liked your thread")
	}

	h.cache.ApplyLikeToggle(threadID, true)
	return c.JSON(http.StatusOK, echo.Map{"addedLike": true})
}
