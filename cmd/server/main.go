package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quizclash/internal/cache"
	"quizclash/internal/config"
	"quizclash/internal/quiz"
	"quizclash/internal/repository"
	"quizclash/internal/service"
	"quizclash/internal/store"
	"quizclash/internal/transport/rest"
	"quizclash/internal/transport/ws"
	"quizclash/internal/watch"
)

func main() {
	log.Println("started")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	// Question bank: loaded once, read-only for the process lifetime.
	catalog, err := quiz.LoadCatalog(cfg.QuestionBank)
	if err != nil {
		log.Fatal("Failed to load question bank: ", err)
	}
	log.Printf("Question bank: %d subjects, %d questions", len(catalog.Subjects()), catalog.QuestionCount())

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	redisAddr := strings.TrimPrefix(cfg.RedisAddr, "redis://")
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Repositories and caches
	roomRepo := repository.NewRoomRepo(db)
	participantRepo := repository.NewParticipantRepo(db)
	messageRepo := repository.NewMessageRepo(db)
	roomCache := cache.NewRoomCache(rdb)
	leaderboard := cache.NewLeaderboardCache(rdb)

	// Room state store with per-room change notification
	notifier := store.NewRedisNotifier(rdb)
	st := store.New(roomRepo, participantRepo, messageRepo, roomCache, notifier)

	// Services
	roomSvc := service.NewRoomService(st, catalog, leaderboard)
	answerSvc := service.NewAnswerService(st, catalog, leaderboard)
	chatSvc := service.NewChatService(st)

	// WebSocket hub; socket lifecycle drives the connected flag
	wsHub := ws.NewHub()
	wsHub.SetPresence(roomSvc)
	log.Println("WebSocket hub started")

	// Per-room watchers: refetch-on-notify fan-out plus session control
	watcher := watch.NewManager(ctx, st, wsHub, watch.NewActions(roomSvc, answerSvc))

	container := &rest.Container{
		RoomService:   roomSvc,
		AnswerService: answerSvc,
		ChatService:   chatSvc,
		Leaderboard:   leaderboard,
		Catalog:       catalog,
		WSHub:         wsHub,
		Watcher:       watcher,
	}
	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		log.Println("Endpoints:")
		log.Println("  GET  /v1/subjects")
		log.Println("  POST /v1/rooms")
		log.Println("  POST /v1/rooms/{code}/join")
		log.Println("  POST /v1/rooms/{code}/answers")
		log.Println("  WS   /v1/ws/rooms/{code}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	cancel() // stops room watchers

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
