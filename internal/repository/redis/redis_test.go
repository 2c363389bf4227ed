package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestHiddenCacheFillAndGet(t *testing.T) {
	_, rdb := newTestClient(t)
	repo := NewHiddenCacheRepository(rdb)
	ctx := context.Background()

	_, hit, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, repo.Fill(ctx, 1, nil))
	refs, hit, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, hit, "empty hidden list is still a cache hit")
	assert.Empty(t, refs)

	require.NoError(t, repo.Add(ctx, 1, "42"))
	require.NoError(t, repo.Add(ctx, 1, "bogus"))
	refs, hit, err = repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.ElementsMatch(t, []string{"42", "bogus"}, refs)
}

func TestHiddenCacheAddIsLazy(t *testing.T) {
	mr, rdb := newTestClient(t)
	repo := NewHiddenCacheRepository(rdb)

	require.NoError(t, repo.Add(context.Background(), 2, "7"))
	assert.False(t, mr.Exists(repo.key(2)))
}

func TestUserTokenLifecycle(t *testing.T) {
	_, rdb := newTestClient(t)
	repo := NewUserRepository(rdb)
	ctx := context.Background()

	_, err := repo.GetUserToken(ctx, 3)
	assert.ErrorIs(t, err, ErrTokenNotFound)

	require.NoError(t, repo.AddUserToken(ctx, 3, "tok"))
	tok, err := repo.GetUserToken(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)
	require.NoError(t, repo.ExtendUserToken(ctx, 3))

	require.NoError(t, repo.DeleteUserToken(ctx, 3))
	_, err = repo.GetUserToken(ctx, 3)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestLikeCacheCountNeverNegative(t *testing.T) {
	_, rdb := newTestClient(t)
	repo := NewLikeCacheRepository(rdb)
	ctx := context.Background()

	require.NoError(t, repo.SetLikeCount(ctx, 5, 1))
	require.NoError(t, repo.FillLikers(ctx, 5, []uint64{7}))
	require.NoError(t, repo.AddLike(ctx, 10, 5))
	v, ok, err := repo.GetLikeCountCached(ctx, 5)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(2), v)

	liked, hit, err := repo.IsLikedCached(ctx, 10, 5)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.True(t, liked)

	require.NoError(t, repo.RemoveLike(ctx, 10, 5))
	require.NoError(t, repo.RemoveLike(ctx, 11, 5))
	require.NoError(t, repo.RemoveLike(ctx, 12, 5))
	v, _, err = repo.GetLikeCountCached(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)
}

func TestDistLockReleasesOnlyOwnToken(t *testing.T) {
	mr, rdb := newTestClient(t)
	lock := NewDistLock(rdb)
	ctx := context.Background()

	got, err := lock.Acquire(ctx, 9, "a")
	require.NoError(t, err)
	assert.True(t, got)

	got, err = lock.Acquire(ctx, 9, "b")
	require.NoError(t, err)
	assert.False(t, got)

	require.NoError(t, lock.Release(ctx, 9, "b"))
	assert.True(t, mr.Exists(lockKey(9)))
	require.NoError(t, lock.Release(ctx, 9, "a"))
	assert.False(t, mr.Exists(lockKey(9)))
}

func TestLikeCacheAddLikeOnlyWhenCached(t *testing.T) {
	mr, rdb := newTestClient(t)
	repo := NewLikeCacheRepository(rdb)
	ctx := context.Background()

	// 集合与计数都未缓存时不写，避免只含部分点赞者
	require.NoError(t, repo.AddLike(ctx, 10, 5))
	assert.False(t, mr.Exists("like:set:post:5"))
	assert.False(t, mr.Exists("like:cnt:post:5"))
	_, hit, err := repo.IsLikedCached(ctx, 10, 5)
	require.NoError(t, err)
	assert.False(t, hit)

	// 空集合回填后仍算命中
	require.NoError(t, repo.FillLikers(ctx, 5, nil))
	liked, hit, err := repo.IsLikedCached(ctx, 10, 5)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.False(t, liked)

	require.NoError(t, repo.AddLike(ctx, 10, 5))
	liked, hit, err = repo.IsLikedCached(ctx, 10, 5)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.True(t, liked)

	require.NoError(t, repo.RemoveLike(ctx, 10, 5))
	liked, hit, err = repo.IsLikedCached(ctx, 10, 5)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.False(t, liked)
}
