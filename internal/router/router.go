package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"club_portal/internal/handler"
	"club_portal/internal/middleware"
	"club_portal/internal/service"
)

// Services 路由依赖的业务服务
type Services struct {
	Users    *service.UserService
	Clubs    *service.ClubService
	Follows  *service.FollowService
	Posts    *service.PostService
	PostLike *service.PostLikeService
	Feed     handler.FeedLoader
	Tokens   middleware.TokenStore
}

func InitRouter(s Services) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RecoveryMiddleware(), middleware.RequestLogger())

	user := handler.NewUserHandler(s.Users, s.Follows)
	club := handler.NewClubHandler(s.Clubs)
	follow := handler.NewFollowHandler(s.Follows)
	post := handler.NewPostHandler(s.Posts)
	like := handler.NewPostLikeHandler(s.PostLike)
	feed := handler.NewFeedHandler(s.Feed)

	auth := middleware.AuthMiddleware(s.Tokens)
	optional := middleware.OptionalAuth(s.Tokens)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 用户相关接口
	userGroup := r.Group("/api/user")
	{
		userGroup.POST("/register", user.Register)
		userGroup.POST("/login", user.Login)
		userGroup.POST("/logout", auth, user.Logout)
		userGroup.GET("/profile", auth, user.Profile)
		userGroup.PUT("/profile", auth, user.UpdateProfile)
		userGroup.GET("/follows", auth, user.Follows)
	}

	// token相关接口
	tokenGroup := r.Group("/api/token")
	{
		tokenGroup.POST("/refresh", user.TokenRefresh)
	}

	// 俱乐部相关接口
	clubGroup := r.Group("/api/clubs")
	{
		clubGroup.GET("", club.List)
		clubGroup.GET("/:slug", club.Detail)
		clubGroup.POST("", auth, club.Create)
		clubGroup.POST("/:slug/join", auth, club.Join)
		clubGroup.POST("/:slug/leave", auth, club.Leave)
		clubGroup.POST("/:slug/follow", auth, follow.Follow)
	}

	// 帖子相关接口
	postGroup := r.Group("/api/posts")
	{
		postGroup.GET("/feed", optional, feed.Feed)
		postGroup.GET("/:id/like", optional, like.Status)
		postGroup.POST("", auth, post.CreatePost)
		postGroup.DELETE("/:id", auth, post.DeletePost)
		postGroup.POST("/:id/like", auth, like.Like)
		postGroup.DELETE("/:id/like", auth, like.Unlike)
		postGroup.POST("/:id/comments", auth, post.Comment)
		postGroup.POST("/:id/hide", auth, post.Hide)
	}

	return r
}
