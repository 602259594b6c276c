package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vedran77/powderswap/internal/client"
	"github.com/vedran77/powderswap/internal/client/tokenstore"
	"github.com/vedran77/powderswap/internal/config"
	"github.com/vedran77/powderswap/internal/database"
	"github.com/vedran77/powderswap/internal/repository"
	"github.com/vedran77/powderswap/internal/repository/memory"
	postgresrepo "github.com/vedran77/powderswap/internal/repository/postgres"
	"github.com/vedran77/powderswap/internal/service"
	"github.com/vedran77/powderswap/internal/transport/http/handlers"
	"github.com/vedran77/powderswap/internal/transport/http/middleware"
	"github.com/vedran77/powderswap/internal/transport/ws"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Repositories
	var (
		accountRepo repository.AccountRepository
		listingRepo repository.ListingRepository
	)
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pool, err := database.Connect(ctx, cfg.DSN())
		if err != nil {
			return err
		}
		defer pool.Close()
		log.Println("Connected to database")

		if err := database.Migrate(ctx, pool); err != nil {
			return err
		}
		accountRepo = postgresrepo.NewAccountRepo(pool)
		listingRepo = postgresrepo.NewListingRepo(pool)
	default:
		accountRepo = memory.NewAccountRepo()
		listingRepo = memory.NewListingRepo()
	}
	threadRepo := memory.NewThreadRepo()
	tripRepo := memory.NewTripRepo()
	profileRepo := memory.NewProfileRepo()

	// Remote marketplace API
	var api *client.APIClient
	if cfg.APIBaseURL != "" {
		store, err := tokenstore.OpenSQLite(ctx, cfg.TokenDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		api, err = client.New(ctx, cfg.APIBaseURL, store,
			client.WithTimeout(cfg.APITimeout),
			client.WithLogger(slog.Default()),
		)
		if err != nil {
			return err
		}
		log.Printf("Remote marketplace at %s", cfg.APIBaseURL)
	}

	// WebSocket Hub
	hub := ws.NewHub()
	notifier := ws.NewHubNotifier(hub)

	// Services
	sessionService := service.NewSessionService(accountRepo, cfg.JWTSecret, cfg.SessionTTL)
	followService := service.NewFollowService(accountRepo)
	conversationService := service.NewConversationService(threadRepo, accountRepo, listingRepo)
	conversationService.SetNotifier(notifier)
	tripService := service.NewTripService(tripRepo)
	tripService.SetNotifier(notifier)
	socialService := service.NewSocialService(profileRepo)
	socialService.SetNotifier(notifier)
	listingService := service.NewListingService(listingRepo)
	if api != nil {
		listingService.SetRemote(api)
	}

	// Live topics follow the same membership rules as the REST routes
	topicAccess := service.NewTopicAccess(tripService, conversationService)
	hub.SetAuthorizer(topicAccess.CanSubscribe)
	hub.SetSessionChecker(sessionService)

	// Handlers
	sessionHandler := handlers.NewSessionHandler(sessionService)
	followHandler := handlers.NewFollowHandler(followService)
	threadHandler := handlers.NewThreadHandler(conversationService)
	tripHandler := handlers.NewTripHandler(tripService, sessionService)
	socialHandler := handlers.NewSocialHandler(socialService)
	listingHandler := handlers.NewListingHandler(listingService, sessionService)
	remoteHandler := handlers.NewRemoteHandler(api)

	// Auth middleware
	auth := middleware.Auth(cfg.JWTSecret, sessionService)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("POST /api/v1/session/register", sessionHandler.Register)
	mux.HandleFunc("POST /api/v1/session/signin", sessionHandler.SignIn)

	// Protected - Session
	mux.Handle("POST /api/v1/session/signout", auth(http.HandlerFunc(sessionHandler.SignOut)))
	mux.Handle("GET /api/v1/session/me", auth(http.HandlerFunc(sessionHandler.Me)))
	mux.Handle("PATCH /api/v1/session/profile", auth(http.HandlerFunc(sessionHandler.UpdateProfile)))
	mux.Handle("POST /api/v1/session/password", auth(http.HandlerFunc(sessionHandler.ChangePassword)))

	// Protected - Follows
	mux.Handle("POST /api/v1/follows/{sellerID}", auth(http.HandlerFunc(followHandler.Follow)))
	mux.Handle("DELETE /api/v1/follows/{sellerID}", auth(http.HandlerFunc(followHandler.Unfollow)))
	mux.Handle("GET /api/v1/follows/{sellerID}/status", auth(http.HandlerFunc(followHandler.Status)))

	// Protected - Threads
	mux.Handle("GET /api/v1/threads", auth(http.HandlerFunc(threadHandler.List)))
	mux.Handle("POST /api/v1/threads", auth(http.HandlerFunc(threadHandler.Open)))
	mux.Handle("GET /api/v1/threads/{id}", auth(http.HandlerFunc(threadHandler.Get)))
	mux.Handle("POST /api/v1/threads/{id}/messages", auth(http.HandlerFunc(threadHandler.Send)))

	// Protected - Trips
	mux.Handle("GET /api/v1/trips", auth(http.HandlerFunc(tripHandler.List)))
	mux.Handle("POST /api/v1/trips", auth(http.HandlerFunc(tripHandler.Create)))
	mux.Handle("GET /api/v1/trips/{id}", auth(http.HandlerFunc(tripHandler.Get)))
	mux.Handle("POST /api/v1/trips/{id}/join", auth(http.HandlerFunc(tripHandler.Join)))
	mux.Handle("POST /api/v1/trips/{id}/requests/{rid}/approve", auth(http.HandlerFunc(tripHandler.Approve)))
	mux.Handle("DELETE /api/v1/trips/{id}/requests/{rid}", auth(http.HandlerFunc(tripHandler.Revoke)))
	mux.Handle("GET /api/v1/trips/{id}/chat", auth(http.HandlerFunc(tripHandler.Chat)))
	mux.Handle("POST /api/v1/trips/{id}/chat/messages", auth(http.HandlerFunc(tripHandler.SendMessage)))

	// Protected - People
	mux.Handle("GET /api/v1/people", auth(http.HandlerFunc(socialHandler.List)))
	mux.Handle("POST /api/v1/people", auth(http.HandlerFunc(socialHandler.Add)))
	mux.Handle("GET /api/v1/people/chats", auth(http.HandlerFunc(socialHandler.Chats)))
	mux.Handle("GET /api/v1/people/{id}", auth(http.HandlerFunc(socialHandler.Get)))
	mux.Handle("POST /api/v1/people/{id}/follow", auth(http.HandlerFunc(socialHandler.ToggleFollow)))
	mux.Handle("PUT /api/v1/people/{id}/follows-me", auth(http.HandlerFunc(socialHandler.SetFollowsMe)))
	mux.Handle("GET /api/v1/people/{id}/chat", auth(http.HandlerFunc(socialHandler.Chat)))
	mux.Handle("POST /api/v1/people/{id}/chat/messages", auth(http.HandlerFunc(socialHandler.SendMessage)))

	// Protected - Listings
	mux.Handle("GET /api/v1/listings", auth(http.HandlerFunc(listingHandler.List)))
	mux.Handle("POST /api/v1/listings", auth(http.HandlerFunc(listingHandler.Publish)))
	mux.Handle("POST /api/v1/listings/sync", auth(http.HandlerFunc(listingHandler.Sync)))
	mux.Handle("GET /api/v1/listings/{id}", auth(http.HandlerFunc(listingHandler.Get)))
	mux.Handle("POST /api/v1/listings/{id}/favorite", auth(http.HandlerFunc(listingHandler.ToggleFavorite)))

	// Protected - Remote marketplace session
	mux.Handle("POST /api/v1/remote/login", auth(http.HandlerFunc(remoteHandler.Login)))
	mux.Handle("POST /api/v1/remote/register", auth(http.HandlerFunc(remoteHandler.Register)))
	mux.Handle("GET /api/v1/remote/me", auth(http.HandlerFunc(remoteHandler.Me)))
	mux.Handle("POST /api/v1/remote/logout", auth(http.HandlerFunc(remoteHandler.Logout)))

	// WebSocket (auth via query param)
	mux.HandleFunc("GET /ws", ws.ServeWS(hub, cfg.JWTSecret, sessionService))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           middleware.CORS(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		log.Printf("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
