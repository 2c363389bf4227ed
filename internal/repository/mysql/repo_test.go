package mysql

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"club_portal/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, AutoMigrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, pic string) *model.User {
	t.Helper()
	u := &model.User{Username: name, Password: "x", Email: name + "@uni.edu", ProfilePicture: pic, Club: model.ClubNone}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedClub(t *testing.T, db *gorm.DB, name, slug, category string, members int64) *model.Club {
	t.Helper()
	c := &model.Club{Name: name, Slug: slug, Category: category, Logo: slug + ".png", MemberCount: members}
	require.NoError(t, db.Create(c).Error)
	return c
}

func TestFeedCandidates(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now().Truncate(time.Second)

	seedClub(t, db, "Chess Club", "chess", "Strategy", 4)

	mk := func(title, club string, global bool, age time.Duration) *model.Post {
		p := &model.Post{Title: title, ClubName: club, Author: "alice", Visibility: model.VisibilityPublic,
			MediaType: model.MediaNone, IsGlobal: global, CreatedAt: now.Add(-age)}
		require.NoError(t, db.Create(p).Error)
		return p
	}
	chess := mk("chess", "chess club", false, 3*time.Hour)
	global := mk("announcement", "", true, 5*time.Hour)
	orphan := mk("orphan", "Ghost Club", false, time.Hour)
	deleted := mk("deleted", "Chess Club", false, 2*time.Hour)
	hidden := mk("hidden", "Chess Club", false, 10*time.Minute)
	require.NoError(t, db.Model(deleted).Update("status", model.PostDeleted).Error)

	require.NoError(t, db.Create(&model.PostLike{UserID: 1, PostID: chess.ID}).Error)
	require.NoError(t, db.Create(&model.PostLike{UserID: 2, PostID: chess.ID}).Error)
	top := &model.Comment{PostID: chess.ID, Author: "bob", Content: "nice", CreatedAt: now.Add(-2 * time.Hour)}
	require.NoError(t, db.Create(top).Error)
	require.NoError(t, db.Create(&model.Comment{PostID: chess.ID, ParentID: top.ID, Author: "carol", Content: "agreed", CreatedAt: now.Add(-time.Hour)}).Error)
	require.NoError(t, db.Create(&model.Comment{PostID: chess.ID, ParentID: 9999, Author: "dave", Content: "lost"}).Error)

	repo := NewPostRepository(db)
	posts, err := repo.FeedCandidates(ctx, []uint64{hidden.ID})
	require.NoError(t, err)
	require.Len(t, posts, 3)

	assert.Equal(t, global.ID, posts[0].ID)
	assert.Equal(t, orphan.ID, posts[1].ID)
	assert.Equal(t, chess.ID, posts[2].ID)

	// 左连接：俱乐部不存在时为 NULL，名称忽略大小写
	assert.Nil(t, posts[1].ClubSlug)
	require.NotNil(t, posts[2].ClubSlug)
	assert.Equal(t, "chess", *posts[2].ClubSlug)
	assert.Equal(t, "Strategy", *posts[2].ClubCategory)
	assert.Equal(t, "chess.png", *posts[2].ClubLogo)

	assert.Equal(t, []uint64{1, 2}, posts[2].Likes)
	require.Len(t, posts[2].Comments, 1)
	assert.Equal(t, "bob", posts[2].Comments[0].Author)
	require.Len(t, posts[2].Comments[0].Replies, 1)
	assert.Equal(t, "carol", posts[2].Comments[0].Replies[0].Author)
	assert.Empty(t, posts[0].Likes)
	assert.Nil(t, posts[0].Media)
}

func TestFeedCandidatesEmpty(t *testing.T) {
	db := newTestDB(t)
	posts, err := NewPostRepository(db).FeedCandidates(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestAvatarsByName(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "alice", "alice.png")
	seedUser(t, db, "bob", "")

	avatars, err := NewUserRepository(db).AvatarsByName(context.Background(), []string{"alice", "bob", "ghost"})
	require.NoError(t, err)
	// 清空头像的用户也要返回，覆盖帖子上的旧头像
	assert.Equal(t, map[string]string{"alice": "alice.png", "bob": ""}, avatars)
}

func TestChangeMembershipMaintainsCounts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	chess := seedClub(t, db, "Chess Club", "chess", "Strategy", 0)
	drama := seedClub(t, db, "Drama", "drama", "Arts", 0)
	u := seedUser(t, db, "alice", "")
	repo := NewClubRepository(db)

	changed, err := repo.ChangeMembership(ctx, u.ID, "Chess Club")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.ChangeMembership(ctx, u.ID, "Chess Club")
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = repo.ChangeMembership(ctx, u.ID, "Drama")
	require.NoError(t, err)

	c, _ := repo.FindBySlug(ctx, chess.Slug)
	d, _ := repo.FindBySlug(ctx, drama.Slug)
	assert.Equal(t, int64(0), c.MemberCount)
	assert.Equal(t, int64(1), d.MemberCount)

	_, err = repo.ChangeMembership(ctx, u.ID, model.ClubNone)
	require.NoError(t, err)
	d, _ = repo.FindBySlug(ctx, drama.Slug)
	assert.Equal(t, int64(0), d.MemberCount)
}

func TestSmallestClubsAndReconcile(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedClub(t, db, "Big", "big", "", 50)
	seedClub(t, db, "Tiny", "tiny", "", 1)
	seedClub(t, db, "Small", "small", "", 3)
	seedClub(t, db, "Mid", "mid", "", 10)
	repo := NewClubRepository(db)

	clubs, err := repo.SmallestClubs(ctx, 3)
	require.NoError(t, err)
	require.Len(t, clubs, 3)
	assert.Equal(t, "Tiny", clubs[0].Name)
	assert.Equal(t, "Small", clubs[1].Name)
	assert.Equal(t, "Mid", clubs[2].Name)

	u := seedUser(t, db, "zed", "")
	require.NoError(t, db.Model(u).Update("club", "tiny").Error)
	n, err := repo.RealMemberCount(ctx, "Tiny")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	list, last, err := repo.ReconcileList(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, list[1].ID, last)

	taken, err := repo.Taken(ctx, "BIG", "other")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestFollowIsIdempotentAndWritesOutbox(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	art := seedClub(t, db, "Art Club", "art", "Arts", 0)
	chess := seedClub(t, db, "Chess Club", "chess", "Strategy", 0)
	repo := NewFollowRepository(db)

	changed, err := repo.Follow(ctx, 1, art.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = repo.Follow(ctx, 1, art.ID)
	require.NoError(t, err)
	assert.False(t, changed)
	_, err = repo.Follow(ctx, 1, chess.ID)
	require.NoError(t, err)

	names, err := repo.FollowedClubNames(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Art Club", "Chess Club"}, names)

	changed, err = repo.Unfollow(ctx, 1, chess.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = repo.Unfollow(ctx, 1, chess.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	ok, err := repo.IsFollowing(ctx, 1, chess.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	outbox := NewOutboxRepository(db)
	events, err := outbox.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "follow", events[0].EventType)
	assert.Equal(t, "unfollow", events[2].EventType)
	assert.Contains(t, events[0].Payload, `"target_id"`)

	require.NoError(t, outbox.SuccessUpdate(ctx, events[0].ID))
	for i := 0; i < MaxOutboxRetry; i++ {
		require.NoError(t, outbox.RetryUpdate(ctx, events[1].ID))
	}
	events, err = outbox.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestLikeUnlikeIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewPostLikeRepository(db)

	changed, err := repo.Like(ctx, 3, 8)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = repo.Like(ctx, 3, 8)
	require.NoError(t, err)
	assert.False(t, changed)

	n, err := repo.GetLikeCount(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	changed, err = repo.Unlike(ctx, 3, 8)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = repo.Unlike(ctx, 3, 8)
	require.NoError(t, err)
	assert.False(t, changed)

	liked, err := repo.IsLiked(ctx, 3, 8)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestHiddenRefs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewHiddenPostRepository(db)

	require.NoError(t, repo.Add(ctx, 1, "5"))
	require.NoError(t, repo.Add(ctx, 1, "5"))
	require.NoError(t, repo.Add(ctx, 1, "legacy-ref"))
	require.NoError(t, repo.Add(ctx, 2, "6"))

	refs, err := repo.Refs(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"5", "legacy-ref"}, refs)
}

func TestLikerIDs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewPostLikeRepository(db)
	for _, uid := range []uint64{9, 3} {
		_, err := repo.Like(ctx, uid, 1)
		require.NoError(t, err)
	}
	_, err := repo.Like(ctx, 4, 2)
	require.NoError(t, err)

	ids, err := repo.LikerIDs(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 9}, ids)

	ids, err = repo.LikerIDs(ctx, 77)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
