package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/threadline/backend/internal/models"
	"github.com/threadline/backend/internal/repositories"
)

// ProfileHandler handles user profile HTTP requests
type ProfileHandler struct {
	userRepository   repositories.UserRepository
	followRepository repositories.FollowRepository
	threadRepository repositories.ThreadRepository
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(userRepo repositories.UserRepository, followRepo repositories.FollowRepository, threadRepo repositories.ThreadRepository) *ProfileHandler {
	return &ProfileHandler{
		userRepository:   userRepo,
		followRepository: followRepo,
		threadRepository: threadRepo,
	}
}

// RegisterProfileRoutes registers profile routes
func (h *ProfileHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/users/:id", h.GetProfile)
}

// GetProfile returns a user's profile with follower/follow/thread counts and
// whether the viewer follows them. Anonymous viewers get isFollowing=false.
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	viewerID := getUserIDFromContext(c)
	userID := c.Param("id")

	user, err := h.userRepository.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	followersCount, err := h.followRepository.GetFollowersCount(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	followsCount, err := h.followRepository.GetFollowingCount(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	threadsCount, err := h.threadRepository.CountByAuthor(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	isFollowing := false
	if viewerID != "" {
		isFollowing, err = h.followRepository.IsFollowing(viewerID, userID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, models.Profile{
		Name:           user.Name,
		Image:          user.Image,
		FollowersCount: followersCount,
		FollowsCount:   followsCount,
		ThreadsCount:   threadsCount,
		IsFollowing:    isFollowing,
	})
}
