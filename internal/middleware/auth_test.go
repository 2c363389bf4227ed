package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"club_portal/internal/pkg"
	"club_portal/internal/repository/redis"
)

type memTokens struct {
	tokens   map[uint64]string
	extended []uint64
	down     bool
}

func (m *memTokens) GetUserToken(_ context.Context, userID uint64) (string, error) {
	if m.down {
		return "", redis.ErrRedisUnavailable
	}
	tok, ok := m.tokens[userID]
	if !ok {
		return "", redis.ErrTokenNotFound
	}
	return tok, nil
}

func (m *memTokens) ExtendUserToken(_ context.Context, userID uint64) error {
	m.extended = append(m.extended, userID)
	return nil
}

func setup(t *testing.T, mw gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	pkg.SetSecrets("access-test", "refresh-test")
	r := gin.New()
	r.GET("/who", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserID(c)})
	})
	return r
}

func call(r *gin.Engine, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	store := &memTokens{tokens: map[uint64]string{}}
	r := setup(t, AuthMiddleware(store))

	pair, err := pkg.GeneratePair(42, 0)
	require.NoError(t, err)
	store.tokens[42] = pair.AccessToken

	w := call(r, "Bearer "+pair.AccessToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":42}`, w.Body.String())
	assert.Equal(t, []uint64{42}, store.extended)

	assert.Equal(t, http.StatusUnauthorized, call(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, "Token "+pair.AccessToken).Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, "Bearer garbage").Code)

	// 其他设备登录后旧 token 失效
	store.tokens[42] = "newer"
	assert.Equal(t, http.StatusUnauthorized, call(r, "Bearer "+pair.AccessToken).Code)

	// refresh token 不能当 access 用
	assert.Equal(t, http.StatusUnauthorized, call(r, "Bearer "+pair.RefreshToken).Code)
}

func TestAuthMiddlewareStoreDown(t *testing.T) {
	store := &memTokens{down: true}
	r := setup(t, AuthMiddleware(store))
	pair, err := pkg.GeneratePair(1, 0)
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, call(r, "Bearer "+pair.AccessToken).Code)
}

func TestOptionalAuthDegradesToAnonymous(t *testing.T) {
	store := &memTokens{tokens: map[uint64]string{}}
	r := setup(t, OptionalAuth(store))
	pair, err := pkg.GeneratePair(7, 0)
	require.NoError(t, err)

	w := call(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":0}`, w.Body.String())

	w = call(r, "Bearer expired-or-bogus")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":0}`, w.Body.String())

	store.tokens[7] = pair.AccessToken
	w = call(r, "Bearer "+pair.AccessToken)
	assert.JSONEq(t, `{"user_id":7}`, w.Body.String())
}

func TestRecoveryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RecoveryMiddleware(), RequestLogger())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"msg":"internal error"}`, w.Body.String())
}
