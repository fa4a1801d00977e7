package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	appmodules "realtor/app"
	"realtor/app/jobs"
	coremodules "realtor/core/app"
	"realtor/core/app/authentication"
	"realtor/core/app/search"
	"realtor/core/config"
	"realtor/core/database"
	"realtor/core/email"
	"realtor/core/emitter"
	"realtor/core/logger"
	"realtor/core/module"
	"realtor/core/router"
	"realtor/core/router/middleware"
	"realtor/core/scheduler"
	"realtor/core/storage"
	"realtor/core/websocket"

	"github.com/joho/godotenv"
)

// @title Realtor CRM API
// @description Clients, listings and public intake for a single realtor
// @version 1.0.0
// @BasePath /api
// @schemes http https
// @accept json
// @produce json

// App wires the configuration, infrastructure and modules together
type App struct {
	config      *config.Config
	db          *database.Database
	router      *router.Router
	logger      logger.Logger
	emitter     *emitter.Emitter
	storage     *storage.ActiveStorage
	emailSender email.Sender
	scheduler   *scheduler.CronScheduler
	auth        *authentication.AuthenticationModule
	wsHub       *websocket.Hub

	api       *router.RouterGroup
	protected *router.RouterGroup
	public    *router.RouterGroup

	verbose bool
}

func New() *App {
	verbose := false
	for _, arg := range os.Args {
		if arg == "-v" || arg == "--verbose" {
			verbose = true
			break
		}
	}
	return &App{verbose: verbose}
}

// Start initializes and runs the application until SIGINT or SIGTERM
func (app *App) Start() error {
	return app.
		loadEnvironment().
		initConfig().
		initLogger().
		initDatabase().
		initInfrastructure().
		initRouter().
		autoDiscoverModules().
		initScheduler().
		setupRoutes().
		displayServerInfo().
		run()
}

func (app *App) loadEnvironment() *App {
	// a missing .env is fine, the environment may already be set
	_ = godotenv.Load()
	return app
}

func (app *App) initConfig() *App {
	app.config = config.NewConfig()
	return app
}

func (app *App) initLogger() *App {
	level := "debug"
	if app.config.IsProduction() {
		level = "info"
	}

	log, err := logger.NewLogger(logger.Config{
		Environment: app.config.Env,
		LogPath:     "logs",
		Level:       level,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	app.logger = log
	return app
}

func (app *App) initDatabase() *App {
	db, err := database.InitDB(app.config)
	if err != nil {
		app.logger.Error("Failed to initialize database", logger.Err(err))
		panic(fmt.Sprintf("Database initialization failed: %v", err))
	}
	app.db = db

	if app.verbose {
		app.logger.Info("Database connected", logger.String("driver", db.Driver))
	}
	return app
}

func (app *App) initInfrastructure() *App {
	app.emitter = emitter.New()

	activeStorage, err := storage.NewActiveStorage(app.db.DB, storage.Config{
		Provider:      app.config.StorageProvider,
		Path:          app.config.StoragePath,
		BaseURL:       app.config.StorageBaseURL,
		APIKey:        app.config.StorageAPIKey,
		APISecret:     app.config.StorageAPISecret,
		AccountID:     app.config.StorageAccountID,
		Endpoint:      app.config.StorageEndpoint,
		Bucket:        app.config.StorageBucket,
		Region:        app.config.StorageRegion,
		CDN:           app.config.CDN,
		ConvertImages: app.config.ConvertImages,
	})
	if err != nil {
		app.logger.Error("Failed to initialize storage", logger.Err(err))
		panic(fmt.Sprintf("Storage initialization failed: %v", err))
	}
	app.storage = activeStorage

	if app.verbose {
		app.logger.Info("Storage initialized", logger.String("provider", app.config.StorageProvider))
	}

	// Email is optional: without a provider the links are only logged
	sender, err := email.NewSender(app.config, app.logger)
	if err != nil {
		app.logger.Warn("Email sender unavailable, falling back to log", logger.Err(err))
		sender = email.NewLogSender(app.logger, app.config.EmailFrom)
	}
	app.emailSender = sender

	auth, err := authentication.NewAuthenticationModule(app.config, app.logger)
	if err != nil {
		app.logger.Error("Invalid session configuration", logger.Err(err))
		panic(fmt.Sprintf("Authentication initialization failed: %v", err))
	}
	app.auth = auth

	return app
}

func (app *App) initRouter() *App {
	app.router = router.New()
	middleware.ApplyConfigurableMiddleware(app.router, &app.config.Middleware, app.logger)

	if app.config.StorageProvider == "" || app.config.StorageProvider == "local" {
		app.router.Static("/storage", app.config.StoragePath)
	}

	// /api/auth/* answers without a session, everything else under /api
	// goes through RequireSession
	app.api = app.router.Group("/api")
	app.auth.Routes(app.api)
	app.public = app.api.Group("/public")
	app.protected = app.api.Group("", app.auth.Middleware())

	app.initWebSocket()

	if app.verbose {
		app.logger.Info("Router and middleware initialized")
	}
	return app
}

func (app *App) initWebSocket() {
	if !app.config.WebSocketEnabled {
		return
	}

	app.wsHub = websocket.InitWebSocketModule(app.protected, app.emitter, app.logger)

	if app.verbose {
		app.logger.Info("WebSocket initialized")
	}
}

func (app *App) autoDiscoverModules() *App {
	deps := module.Dependencies{
		DB:           app.db.DB,
		Router:       app.protected,
		PublicRouter: app.public,
		Logger:       app.logger,
		Emitter:      app.emitter,
		Storage:      app.storage,
		EmailSender:  app.emailSender,
		Config:       app.config,
	}

	searchRegistry := search.NewSearchRegistry()
	initializer := module.NewInitializer(app.logger)

	appModules := module.NewOrchestrator(initializer, appmodules.NewAppModules(searchRegistry)).Run(deps)
	coreModules := module.NewOrchestrator(initializer, coremodules.NewCoreModules(searchRegistry)).Run(deps)

	if app.verbose {
		app.logger.Info("Modules initialized",
			logger.Int("app", len(appModules)),
			logger.Int("core", len(coreModules)),
			logger.String("searchable", strings.Join(searchRegistry.GetNames(), ",")))
	}
	return app
}

func (app *App) initScheduler() *App {
	app.scheduler = jobs.SetupScheduler(app.db.DB, app.emitter, app.config, app.logger)
	app.scheduler.Start()
	return app
}

func (app *App) setupRoutes() *App {
	app.router.GET("/health", func(c *router.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"status":  "ok",
			"version": app.config.Version,
		})
	})

	if _, err := os.Stat("./public"); err != nil {
		app.router.GET("/", func(c *router.Context) error {
			return c.JSON(http.StatusOK, map[string]any{
				"message": "pong",
				"version": app.config.Version,
			})
		})
		app.router.NotFound(notFoundJSON)
		return app
	}

	if app.verbose {
		app.logger.Info("Serving frontend from ./public")
	}

	app.router.Static("/assets", "./public/assets")
	app.router.GET("/login", func(c *router.Context) error {
		http.ServeFile(c.Writer, c.Request, publicPage("login.html"))
		return nil
	})

	// Every other page needs a session, unknown API paths stay JSON
	spa := app.auth.Middleware()(func(c *router.Context) error {
		http.ServeFile(c.Writer, c.Request, publicPage("index.html"))
		return nil
	})
	app.router.NotFound(func(c *router.Context) error {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			return notFoundJSON(c)
		}
		return spa(c)
	})

	return app
}

func notFoundJSON(c *router.Context) error {
	return c.JSON(http.StatusNotFound, map[string]any{"error": "Not found"})
}

// publicPage falls back to index.html when the named page is not built
func publicPage(name string) string {
	page := filepath.Join("public", name)
	if _, err := os.Stat(page); err != nil {
		return filepath.Join("public", "index.html")
	}
	return page
}

func (app *App) displayServerInfo() *App {
	port := app.config.ServerPort

	fmt.Printf("\n\033[1;32mRealtor CRM Ready!\033[0m\n\n")
	fmt.Printf("\033[36mServer URLs:\033[0m\n")
	fmt.Printf("  Local:   http://localhost%s\n", port)
	fmt.Printf("  Network: http://%s%s\n\n", app.getLocalIP(), port)

	return app
}

func (app *App) getLocalIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "localhost"
	}

	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				return ipnet.IP.String()
			}
		}
	}
	return "localhost"
}

// run serves until a shutdown signal, then drains requests and stops the
// scheduler
func (app *App) run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port := app.config.ServerPort
	srv := app.router.Server(port)

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("Server starting", logger.String("port", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		app.stop()
		if strings.Contains(err.Error(), "address already in use") {
			app.logger.Error("Server failed to start - Port already in use",
				logger.String("port", port),
				logger.Err(err))
			return fmt.Errorf("port %s is already in use. Stop the other server or change SERVER_PORT in your .env file", port)
		}
		app.logger.Error("Server failed to start", logger.Err(err))
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
	}

	app.logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	app.stop()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (app *App) stop() {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Warn("Failed to close database", logger.Err(err))
		}
	}
	_ = app.logger.Sync()
}

func main() {
	app := New()

	if err := app.Start(); err != nil {
		fmt.Printf("\n\033[31mApplication failed to start:\033[0m\n%v\n\n", err)
		os.Exit(1)
	}
}
