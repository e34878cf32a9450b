package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"quizclash/internal/cache"
	"quizclash/internal/quiz"
	"quizclash/internal/service"
	"quizclash/internal/transport/rest/handler"
	"quizclash/internal/transport/ws"
	"quizclash/internal/watch"
)

// Container holds all dependencies for the router.
type Container struct {
	RoomService   *service.RoomService
	AnswerService *service.AnswerService
	ChatService   *service.ChatService
	Leaderboard   cache.LeaderboardCache
	Catalog       *quiz.Catalog
	WSHub         *ws.Hub
	Watcher       *watch.Manager
}

// NewRouter creates the API router with all endpoints.
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	roomHandler := handler.NewRoomHandler(c.RoomService, c.Leaderboard, c.Watcher)
	answerHandler := handler.NewAnswerHandler(c.AnswerService)
	chatHandler := handler.NewChatHandler(c.ChatService)
	catalogHandler := handler.NewCatalogHandler(c.Catalog)
	wsHandler := ws.NewHandler(c.WSHub, c.RoomService, c.Watcher)

	r.Use(corsMiddleware)

	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/subjects", catalogHandler.Subjects).Methods("GET", "OPTIONS")

	v1.HandleFunc("/rooms", roomHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{code}", roomHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/join", roomHandler.Join).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/settings", roomHandler.UpdateSettings).Methods("PUT", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/ready", roomHandler.SetReady).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/start", roomHandler.Start).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/restart", roomHandler.Restart).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/advance", roomHandler.Advance).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/leave", roomHandler.Leave).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/leaderboard", roomHandler.Leaderboard).Methods("GET", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/answers", answerHandler.Submit).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/messages", chatHandler.Send).Methods("POST", "OPTIONS")

	// WebSocket snapshot feed
	v1.HandleFunc("/ws/rooms/{code}", wsHandler.RoomWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Player-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
