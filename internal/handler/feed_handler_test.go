package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"club_portal/internal/middleware"
	"club_portal/internal/model"
)

type MockFeedLoader struct {
	mock.Mock
}

func (m *MockFeedLoader) Feed(ctx context.Context, userID uint64) ([]*model.FeedPost, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.FeedPost), args.Error(1)
}

func feedRouter(loader FeedLoader, uid uint64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewFeedHandler(loader)
	r.GET("/api/posts/feed", func(c *gin.Context) {
		if uid != 0 {
			c.Set(middleware.ContextUserIDKey, uid)
		}
		c.Next()
	}, h.Feed)
	return r
}

func TestFeedHandlerReturnsAugmentedPosts(t *testing.T) {
	loader := new(MockFeedLoader)
	logo, slug, cat := "chess.png", "chess-club", "Games"
	loader.On("Feed", mock.Anything, uint64(5)).Return([]*model.FeedPost{{
		ID: 1, Title: "Open night", ClubName: "Chess Club", Author: "alice",
		Visibility: model.VisibilityPublic, Timestamp: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Likes: []uint64{5}, Comments: []*model.FeedComment{},
		LikesCount: 1, IsLiked: true, PriorityReason: "Member",
		ClubLogo: &logo, ClubSlug: &slug, ClubCategory: &cat,
	}}, nil)

	w := httptest.NewRecorder()
	feedRouter(loader, 5).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/posts/feed", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, float64(1), body[0]["likesCount"])
	assert.Equal(t, true, body[0]["isLiked"])
	assert.Equal(t, "Member", body[0]["priorityReason"])
	assert.Equal(t, "chess.png", body[0]["clubLogo"])
	assert.Equal(t, "chess-club", body[0]["clubSlug"])
	assert.Equal(t, "Games", body[0]["clubCategory"])
	loader.AssertExpectations(t)
}

func TestFeedHandlerAnonymousEmpty(t *testing.T) {
	loader := new(MockFeedLoader)
	loader.On("Feed", mock.Anything, uint64(0)).Return(nil, nil)

	w := httptest.NewRecorder()
	feedRouter(loader, 0).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/posts/feed", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestFeedHandlerFailureIsGeneric(t *testing.T) {
	loader := new(MockFeedLoader)
	loader.On("Feed", mock.Anything, uint64(3)).Return(nil, errors.New("dial tcp 10.0.0.3:3306: connection refused"))

	w := httptest.NewRecorder()
	feedRouter(loader, 3).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/posts/feed", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"msg":"failed to load feed"}`, w.Body.String())
}
