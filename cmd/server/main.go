// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"mindcare-go/internal/config"
	"mindcare-go/internal/handler"
	"mindcare-go/internal/middleware"
	"mindcare-go/internal/pipeline"
	"mindcare-go/internal/repository"
	"mindcare-go/internal/responder"
	"mindcare-go/internal/service"
	"mindcare-go/pkg/database"
	"mindcare-go/pkg/es"
	"mindcare-go/pkg/kafka"
	"mindcare-go/pkg/log"
	"mindcare-go/pkg/storage"
	"mindcare-go/pkg/token"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库、Redis 与归档依赖
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	storage.InitMinIO(cfg.MinIO)
	if err := es.InitES(cfg.Elasticsearch); err != nil {
		log.Errorf("es 初始化失败 %s", err)
		return
	}
	kafka.InitProducer(cfg.Kafka)
	defer kafka.CloseProducer()

	// 4. 初始化 Repository
	userRepo := repository.NewUserRepository(database.DB)
	progressRepo := repository.NewProgressRepository(database.DB)
	conversationRepo := repository.NewConversationRepository(database.RDB, cfg.Chat.HistoryTTL)
	assessmentRepo := repository.NewAssessmentRepository(database.RDB, cfg.Chat.HistoryTTL)

	// 5. 初始化 Service (依赖注入)
	bucket := storage.NewBucket(storage.MinioClient, cfg.MinIO.BucketName)
	planIndex := es.NewPlanIndex(es.ESClient, cfg.Elasticsearch.IndexName)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)

	userService := service.NewUserService(userRepo, jwtManager)
	progressService := service.NewProgressService(progressRepo, kafka.ProducePlanArchiveTask, bucket, cfg.Chat.ExportURLExpiry)
	chatService := service.NewChatService(
		conversationRepo,
		assessmentRepo,
		responder.New(responder.NewPicker(cfg.Chat.ResponseSeed)),
		progressService,
		cfg.Chat,
	)
	adminService := service.NewAdminService(userRepo, progressRepo, conversationRepo)
	planSearchService := service.NewPlanSearchService(planIndex)

	// 6. 启动后台 Kafka 消费者，归档生成的计划
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	archiver := pipeline.NewPlanArchiver(bucket, planIndex)
	go kafka.StartConsumer(consumerCtx, cfg.Kafka, archiver, kafka.NewRedisAttemptCounter(database.RDB))

	// 7. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	userHandler := handler.NewUserHandler(userService)
	topicHandler := handler.NewTopicHandler()
	conversationHandler := handler.NewConversationHandler(chatService)
	progressHandler := handler.NewProgressHandler(progressService)
	adminHandler := handler.NewAdminHandler(adminService, planSearchService)
	authMiddleware := middleware.AuthMiddleware(jwtManager, userService)

	// 8. 注册路由
	apiV1 := r.Group("/api/v1")
	{
		auth := apiV1.Group("/auth")
		{
			auth.POST("/refreshToken", userHandler.RefreshToken)
		}

		users := apiV1.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)

			authed := users.Group("/")
			authed.Use(authMiddleware)
			{
				authed.GET("/me", userHandler.GetProfile)
				authed.PUT("/me", userHandler.UpdateProfile)
			}
		}

		topics := apiV1.Group("/topics")
		{
			topics.GET("", topicHandler.ListTopics)
			topics.GET("/:id/plan", topicHandler.PreviewPlan)
		}

		chat := apiV1.Group("/chat")
		chat.Use(authMiddleware)
		{
			chat.POST("/open", conversationHandler.Open)
			chat.POST("/messages", conversationHandler.SendMessage)
			chat.POST("/answers", conversationHandler.SubmitAnswer)
			chat.GET("/actions", topicHandler.ListQuickActions)
			chat.POST("/actions/:action", conversationHandler.QuickAction)
			chat.GET("/history", conversationHandler.GetConversations)
			chat.GET("/assessment", conversationHandler.GetAssessment)
		}

		progress := apiV1.Group("/progress")
		progress.Use(authMiddleware)
		{
			progress.GET("", progressHandler.GetProgress)
			progress.GET("/export", progressHandler.ExportPlan)
		}

		// 管理员路由组，需要同时通过认证和管理员授权两个中间件
		admin := apiV1.Group("/admin")
		admin.Use(authMiddleware, middleware.AdminAuthMiddleware())
		{
			admin.GET("/users/list", adminHandler.ListUsers)
			admin.GET("/conversation", adminHandler.GetAllConversations)
			admin.GET("/plans/search", adminHandler.SearchPlans)
		}
	}
	// WebSocket 聊天，token 通过路径传入
	r.GET("/chat/:token", handler.NewChatHandler(chatService, userService, jwtManager).Handle)

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("HTTP 服务器关闭失败: %v", err)
	}
	stopConsumer()
	log.Info("服务已优雅关闭")
}
