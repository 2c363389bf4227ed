package mysql

import (
	"context"

	"gorm.io/gorm"

	"club_portal/internal/model"
)

type PostRepository struct {
	DB *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{DB: db}
}

// feedRow 帖子 + 左连接得到的俱乐部信息，俱乐部不存在时三列为 NULL
type feedRow struct {
	model.Post
	ClubLogo     *string
	ClubSlug     *string
	ClubCategory *string
}

func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	return r.DB.WithContext(ctx).Create(post).Error
}

func (r *PostRepository) FindByID(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	err := r.DB.WithContext(ctx).First(&post, "id = ? AND status = ?", id, model.PostNormal).Error
	return &post, err
}

// Delete 软删除（幂等）
func (r *PostRepository) Delete(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", id).
		Update("status", model.PostDeleted).Error
}

// FeedCandidates 信息流候选集：排除隐藏帖子，公告在前、新帖在前，
// 附带点赞集合与评论树
func (r *PostRepository) FeedCandidates(ctx context.Context, hidden []uint64) ([]*model.FeedPost, error) {
	q := r.DB.WithContext(ctx).Table("posts").
		Select("posts.*, clubs.logo AS club_logo, clubs.slug AS club_slug, clubs.category AS club_category").
		Joins("LEFT JOIN clubs ON LOWER(clubs.name) = LOWER(posts.club_name)").
		Where("posts.status = ?", model.PostNormal)
	if len(hidden) > 0 {
		q = q.Where("posts.id NOT IN ?", hidden)
	}
	var rows []feedRow
	if err := q.Order("posts.is_global DESC, posts.created_at DESC, posts.id DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []*model.FeedPost{}, nil
	}

	posts := make([]*model.FeedPost, 0, len(rows))
	ids := make([]uint64, 0, len(rows))
	byID := make(map[uint64]*model.FeedPost, len(rows))
	for i := range rows {
		p := toFeedPost(&rows[i])
		posts = append(posts, p)
		ids = append(ids, p.ID)
		byID[p.ID] = p
	}

	likes, err := r.likeSets(ctx, ids)
	if err != nil {
		return nil, err
	}
	comments, err := r.commentTrees(ctx, ids)
	if err != nil {
		return nil, err
	}
	for id, p := range byID {
		if l, ok := likes[id]; ok {
			p.Likes = l
		}
		if c, ok := comments[id]; ok {
			p.Comments = c
		}
	}
	return posts, nil
}

func toFeedPost(row *feedRow) *model.FeedPost {
	p := &model.FeedPost{
		ID:           row.ID,
		Title:        row.Title,
		Content:      row.Content,
		ClubName:     row.ClubName,
		Author:       row.Author,
		AuthorAvatar: row.AuthorAvatar,
		Visibility:   row.Visibility,
		Timestamp:    row.CreatedAt,
		IsGlobal:     row.IsGlobal,
		Likes:        []uint64{},
		Comments:     []*model.FeedComment{},
		ClubLogo:     row.ClubLogo,
		ClubSlug:     row.ClubSlug,
		ClubCategory: row.ClubCategory,
	}
	if row.MediaURL != "" && row.MediaType != model.MediaNone {
		p.Media = &model.Media{URL: row.MediaURL, Type: row.MediaType}
	}
	return p
}

func (r *PostRepository) likeSets(ctx context.Context, postIDs []uint64) (map[uint64][]uint64, error) {
	var rows []model.PostLike
	if err := r.DB.WithContext(ctx).
		Select("post_id", "user_id").
		Where("post_id IN ?", postIDs).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uint64][]uint64)
	for _, row := range rows {
		out[row.PostID] = append(out[row.PostID], row.UserID)
	}
	return out, nil
}

// commentTrees 按时间正序组装评论树，父评论缺失的回复被丢弃
func (r *PostRepository) commentTrees(ctx context.Context, postIDs []uint64) (map[uint64][]*model.FeedComment, error) {
	var rows []model.Comment
	if err := r.DB.WithContext(ctx).
		Where("post_id IN ?", postIDs).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return buildCommentTrees(rows), nil
}

func buildCommentTrees(rows []model.Comment) map[uint64][]*model.FeedComment {
	nodes := make(map[uint64]*model.FeedComment, len(rows))
	for _, c := range rows {
		nodes[c.ID] = &model.FeedComment{
			ID:        c.ID,
			Author:    c.Author,
			Avatar:    c.AuthorAvatar,
			Text:      c.Content,
			Timestamp: c.CreatedAt,
		}
	}
	out := make(map[uint64][]*model.FeedComment)
	for _, c := range rows {
		node := nodes[c.ID]
		if c.ParentID == 0 {
			out[c.PostID] = append(out[c.PostID], node)
			continue
		}
		if parent, ok := nodes[c.ParentID]; ok {
			parent.Replies = append(parent.Replies, node)
		}
	}
	return out
}
