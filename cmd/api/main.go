package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/halit2001/post-platform-backend/internal/model"
	"github.com/halit2001/post-platform-backend/internal/pkg"
	"github.com/halit2001/post-platform-backend/internal/repository/mysql"
	"github.com/halit2001/post-platform-backend/internal/repository/redis"
	"github.com/halit2001/post-platform-backend/internal/router"
	"github.com/halit2001/post-platform-backend/internal/service"

	"github.com/joho/godotenv"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()

	dsn := envOr("MYSQL_DSN", "user:password@tcp(127.0.0.1:3306)/post_platform?charset=utf8mb4&parseTime=True")
	if err := mysql.InitDB(dsn); err != nil {
		panic(err)
	}

	// 连接redis
	redisDB, _ := strconv.Atoi(envOr("REDIS_DB", "0"))
	if err := redis.Init(envOr("REDIS_ADDR", "127.0.0.1:6379"), os.Getenv("REDIS_PASSWORD"), redisDB); err != nil {
		panic(err)
	}

	// 自动建表（开发阶段 OK）
	mysql.DB.AutoMigrate(
		&model.User{},
		&model.Community{},
		&model.CommunityMember{},
		&model.Post{},
		&model.Comment{},
		&model.ModerationAudit{},
	)

	smtpPort, _ := strconv.Atoi(envOr("SMTP_PORT", "587"))
	smtp := pkg.SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     smtpPort,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     envOr("SMTP_FROM", "NoReply <no-reply@example.com>"),
	}

	// 审计投递：配置了 Kafka 就投 Kafka，否则打日志
	sender := service.AuditSender(service.LogAuditSender)
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		producer, err := pkg.NewKafkaProducer(pkg.KafkaConfig{
			Brokers: []string{brokers},
			Topic:   envOr("KAFKA_AUDIT_TOPIC", "moderation-audit"),
		})
		if err != nil {
			panic(err)
		}
		defer producer.Close()
		sender = service.KafkaAuditSender(producer)
	}
	relayer := service.NewAuditRelayer(mysql.DB, sender)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go relayer.Run(ctx)

	r := router.InitRouter(mysql.DB, redis.Client, smtp)
	if err := r.Run(envOr("HTTP_ADDR", ":8080")); err != nil {
		log.Fatal(err)
	}
}
