package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"club_portal/internal/model"
	"club_portal/internal/pkg"
	"club_portal/internal/repository/mysql"
)

type PostService struct {
	repo     *mysql.PostRepository
	comments *mysql.CommentRepository
	users    *mysql.UserRepository
	clubs    *mysql.ClubRepository
	hidden   *HiddenService
}

func NewPostService(repo *mysql.PostRepository, comments *mysql.CommentRepository, users *mysql.UserRepository,
	clubs *mysql.ClubRepository, hidden *HiddenService) *PostService {
	return &PostService{repo: repo, comments: comments, users: users, clubs: clubs, hidden: hidden}
}

type CreatePostInput struct {
	Title      string
	Content    string
	MediaURL   string
	MediaType  string
	ClubName   string
	Visibility string
	IsGlobal   bool
}

// CreatePost 干事只能在自己的俱乐部发帖，全站公告仅管理员
func (s *PostService) CreatePost(ctx context.Context, userID uint64, in CreatePostInput) (*model.Post, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, pkg.BadRequest("title required")
	}
	visibility := in.Visibility
	if visibility == "" {
		visibility = model.VisibilityPublic
	}
	if visibility != model.VisibilityPublic && visibility != model.VisibilityClubOnly {
		return nil, pkg.BadRequest("invalid visibility")
	}
	mediaType := in.MediaType
	if in.MediaURL == "" {
		mediaType = model.MediaNone
	}
	switch mediaType {
	case model.MediaNone, model.MediaImage, model.MediaVideo:
	default:
		return nil, pkg.BadRequest("invalid media type")
	}

	author, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		Title:        title,
		Content:      in.Content,
		MediaURL:     in.MediaURL,
		MediaType:    mediaType,
		Author:       author.Username,
		AuthorAvatar: author.ProfilePicture,
		Visibility:   visibility,
		IsGlobal:     in.IsGlobal,
	}

	if in.IsGlobal {
		if author.Role != model.RoleAdmin {
			return nil, pkg.Forbidden("only admins can post announcements")
		}
		post.ClubName = strings.TrimSpace(in.ClubName)
	} else {
		club, err := s.clubs.FindByName(ctx, in.ClubName)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkg.NotFound("club not found")
			}
			return nil, err
		}
		isStaff := author.Role == model.RoleStaff && strings.EqualFold(author.Club, club.Name)
		if !isStaff && author.Role != model.RoleAdmin {
			return nil, pkg.Forbidden("not staff of this club")
		}
		post.ClubName = club.Name
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost 作者或管理员可删除；已删除视为成功
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint64) error {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	op, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if op.Username != post.Author && op.Role != model.RoleAdmin {
		return pkg.Forbidden("no permission")
	}
	return s.repo.Delete(ctx, postID)
}

// AddComment parentID>0 时为回复，父评论必须属于同一帖子
func (s *PostService) AddComment(ctx context.Context, userID, postID, parentID uint64, text string) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, pkg.BadRequest("comment text required")
	}
	if _, err := s.repo.FindByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkg.NotFound("post not found")
		}
		return nil, err
	}
	if parentID > 0 {
		parent, err := s.comments.FindByID(ctx, parentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkg.NotFound("parent comment not found")
			}
			return nil, err
		}
		if parent.PostID != postID {
			return nil, pkg.BadRequest("parent comment belongs to another post")
		}
	}
	author, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	c := &model.Comment{
		PostID:       postID,
		ParentID:     parentID,
		Author:       author.Username,
		AuthorAvatar: author.ProfilePicture,
		Content:      text,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// HidePost 加入用户隐藏列表
func (s *PostService) HidePost(ctx context.Context, userID, postID uint64) error {
	if postID == 0 {
		return pkg.BadRequest("invalid post id")
	}
	return s.hidden.Hide(ctx, userID, strconv.FormatUint(postID, 10))
}
