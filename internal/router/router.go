package router

import (
	"github.com/halit2001/post-platform-backend/internal/handler"
	"github.com/halit2001/post-platform-backend/internal/middleware"
	"github.com/halit2001/post-platform-backend/internal/pkg"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func InitRouter(db *gorm.DB, rdb *goredis.Client, smtp pkg.SMTPConfig) *gin.Engine {
	r := gin.Default()

	user := handler.NewUserHandler(db, rdb)
	email := handler.NewEmailHandler(smtp, rdb)
	community := handler.NewCommunityHandler(db)
	moderation := handler.NewModerationHandler(db, rdb)
	post := handler.NewPostHandler(db)
	comment := handler.NewCommentHandler(db)

	auth := middleware.AuthMiddleware(rdb)

	// 邮件相关接口
	emailGroup := r.Group("/api/email")
	{
		emailGroup.POST("/:scope/code", email.SendCode)
	}

	// 用户相关接口
	userGroup := r.Group("/api/user")
	{
		userGroup.POST("/register", user.Register)
		userGroup.POST("/login", user.Login)
	}

	// token相关接口
	tokenGroup := r.Group("/api/token")
	{
		tokenGroup.POST("/refresh", user.TokenRefresh)
	}

	// 登录态接口
	authGroup := r.Group("/api/auth")
	authGroup.Use(auth)
	{
		authGroup.POST("/logout", user.Logout)
		authGroup.POST("/change-password", user.ChangePassword)
	}

	// 社区相关接口
	communityGroup := r.Group("/api/community")
	communityGroup.Use(auth)
	{
		communityGroup.POST("/create", community.Create)
		communityGroup.GET("/list", community.List)
		communityGroup.GET("/:id", community.Get)
		communityGroup.GET("/name/:name", community.GetByName)
		communityGroup.PATCH("/name/:name", community.Update)
		communityGroup.GET("/:id/members", community.Members)
		communityGroup.GET("/:id/members/count", community.MembersCount)
		communityGroup.POST("/:id/moderators", community.AddModerator)
	}

	// 审批相关接口：入会申请与帖子审核
	moderationGroup := r.Group("/api/community/:id")
	moderationGroup.Use(auth)
	{
		moderationGroup.POST("/join", moderation.RequestToJoin)
		moderationGroup.GET("/join-requests", moderation.ListJoinRequests)
		moderationGroup.POST("/join-requests/:userId/approve", moderation.ApproveJoin)
		moderationGroup.POST("/join-requests/:userId/reject", moderation.RejectJoin)
		moderationGroup.POST("/posts", moderation.SubmitPost)
		moderationGroup.GET("/pending-posts", moderation.ListPendingPosts)
		moderationGroup.POST("/pending-posts/:token/approve", moderation.ApprovePost)
		moderationGroup.POST("/pending-posts/:token/reject", moderation.RejectPost)
		moderationGroup.GET("/posts", post.ListByCommunity)
	}

	// 帖子相关接口
	postGroup := r.Group("/api/post")
	postGroup.Use(auth)
	{
		postGroup.GET("/:id", post.Get)
		postGroup.PATCH("/:id", post.Update)
		postGroup.DELETE("/:id", post.Delete)
		postGroup.GET("/:id/revisions", post.Revisions)
		postGroup.POST("/:id/approve", post.ApproveRevision)
	}

	// 评论相关接口。gin 的路由树要求同层参数名一致，评论路由单独挂一棵
	cg := r.Group("/api/comments")
	cg.Use(auth)
	{
		cg.POST("/post/:postId", comment.Add)
		cg.GET("/post/:postId", comment.ListByPost)
		cg.POST("/post/:postId/reply/:commentId", comment.Reply)
		cg.GET("/post/:postId/comment/:commentId", comment.Get)
		cg.POST("/post/:postId/comment/:commentId/like", comment.Like)
		cg.POST("/post/:postId/comment/:commentId/unlike", comment.Unlike)
	}

	return r
}
