package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"bet-tracker-go/internal/authz"
	"bet-tracker-go/internal/handlers"
	"bet-tracker-go/internal/notify"
	"bet-tracker-go/internal/store"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	ctx := context.Background()

	// Storage: Postgres when configured, otherwise the in-memory fallback.
	var st store.Store
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		pgStore, err := store.NewPostgresStore(databaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		if err := pgStore.RunMigrations(ctx); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Database migrations completed")
		st = pgStore
	} else {
		log.Println("DATABASE_URL not set, using in-memory store (data is lost on restart)")
		st = store.NewMemoryStore()
	}

	// Optional Redis cache. Without it every read goes to the store.
	var cache *store.Cache
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		cache = store.NewCache(client, 15*time.Minute)
	} else {
		cache = store.NewCache(nil, 0)
	}

	// VAPID keys. Without them the key endpoint reports a misconfiguration
	// and broadcasts fail; generate a pair with cmd/vapidgen.
	vapidPublicKey := os.Getenv("VAPID_PUBLIC_KEY")
	vapidPrivateKey := os.Getenv("VAPID_PRIVATE_KEY")
	if vapidPublicKey == "" || vapidPrivateKey == "" {
		log.Println("VAPID keys not set, push notifications are disabled (run cmd/vapidgen to create a pair)")
	}

	subscriber := os.Getenv("PUSH_SUBSCRIBER")
	if subscriber == "" {
		subscriber = "mailto:admin@example.com"
	}

	notifier := notify.NewBroadcaster(st, vapidPublicKey, vapidPrivateKey, subscriber)

	h := handlers.NewHandler(st, cache, authz.NewFromEnv(), notifier)
	h.InitAdmin(ctx)

	// Auth
	http.HandleFunc("/api/login", h.LoginHandler)
	http.HandleFunc("/api/logout", h.LogoutHandler)
	http.HandleFunc("/api/2fa/verify", h.Verify2FALoginHandler)
	http.HandleFunc("/api/2fa/generate", h.RequireAuth(h.Generate2FAHandler))
	http.HandleFunc("/api/2fa/enable", h.RequireAuth(h.Enable2FAHandler))
	http.HandleFunc("/api/profile/password", h.RequireAuth(h.ChangePasswordHandler))

	// Dashboard data
	http.HandleFunc("/api/betting", h.RequireAuth(h.BettingHandler))
	http.HandleFunc("/api/achievements", h.RequireAuth(h.GetAchievementsHandler))

	// Push
	http.HandleFunc("/api/push/vapid-key", h.GetVAPIDKeyHandler)
	http.HandleFunc("/api/push/subscribe", h.SubscribePushHandler)
	http.HandleFunc("/api/push/subscribers", h.RequireAuth(h.RequireAdmin(h.SubscriberCountHandler)))

	// Admin API routes (protected)
	http.HandleFunc("/api/admin/push/broadcast", h.RequireAuth(h.RequireAdmin(h.BroadcastPushHandler)))
	http.HandleFunc("/api/admin/users", h.RequireAuth(h.RequireAdmin(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.GetUsersHandler(w, r)
		case http.MethodPost:
			h.CreateUserHandler(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))
	http.HandleFunc("/api/admin/users/", h.RequireAuth(h.RequireAdmin(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			h.UpdateUserHandler(w, r)
		case http.MethodDelete:
			h.DeleteUserHandler(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))
	http.HandleFunc("/api/admin/achievements", h.RequireAuth(h.RequireAdmin(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.AdminGetAchievementsHandler(w, r)
		case http.MethodPost:
			h.CreateAchievementHandler(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))
	http.HandleFunc("/api/admin/achievements/", h.RequireAuth(h.RequireAdmin(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			h.UpdateAchievementHandler(w, r)
		case http.MethodDelete:
			h.DeleteAchievementHandler(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))
	http.HandleFunc("/api/admin/2fa/disable", h.RequireAuth(h.RequireAdmin(h.AdminDisable2FAHandler)))
	http.HandleFunc("/api/admin/audit", h.RequireAuth(h.RequireAdmin(h.GetAuditLogsHandler)))

	// Metrics
	http.Handle("/metrics", handlers.MetricsHandler())

	// Serve static files (PWA assets, service worker)
	fs := http.FileServer(http.Dir("web/static"))
	http.Handle("/static/", http.StripPrefix("/static/", fs))
	http.HandleFunc("/sw.js", func(w http.ResponseWriter, r *http.Request) {
		// The worker must be served from the root scope to control all pages.
		http.ServeFile(w, r, "web/static/sw.js")
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("Listening on :" + port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatal(err)
	}
}
