package http

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"recipebox/internal/config"
	"recipebox/internal/metrics"
	"recipebox/internal/model"
	"recipebox/internal/services"
)

// RecipeStore persists saved recipes.
type RecipeStore interface {
	InsertRecipe(ctx context.Context, r model.Recipe) error
	UpdateRecipe(ctx context.Context, r model.Recipe, now time.Time) (model.Recipe, error)
	GetRecipe(ctx context.Context, id string) (model.Recipe, error)
	DeleteRecipe(ctx context.Context, id string) error
	ListRecipes(ctx context.Context) ([]model.Recipe, error)
	Ping(ctx context.Context) error
}

// DraftStore holds extracted recipes awaiting review.
type DraftStore interface {
	Get(ctx context.Context, id string) (model.Recipe, error)
	Put(ctx context.Context, r model.Recipe) error
	Delete(ctx context.Context, id string) error
}

// KeySource supplies the server-side LLM API key.
type KeySource interface {
	APIKey() (string, bool)
}

// PhotoLinker turns an archived photo key into a download URL.
type PhotoLinker interface {
	PresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)
}

// Deps are the collaborators handlers reach through c.Locals("deps").
// Drafts, Photos, Redis and Keys are optional.
type Deps struct {
	Recipes  RecipeStore
	Drafts   DraftStore
	Importer *services.Importer
	Planner  *services.MealPlanner
	Photos   PhotoLinker
	Keys     KeySource
	Redis    RedisClient
}

type Server struct {
	app    *fiber.App
	config *config.Config
	deps   *Deps
	logger *slog.Logger
	// cancel aborts every in-flight request context.
	cancel context.CancelFunc
}

func NewServer(cfg *config.Config, deps *Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 20 * 1024 * 1024,
	})

	baseCtx, cancel := context.WithCancel(context.Background())

	app.Use(recover.New())
	app.Use(requestContextMiddleware(baseCtx))

	// Inject config and dependencies into context for handlers
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("config", cfg)
		c.Locals("deps", deps)
		c.Locals("logger", logger)
		return c.Next()
	})

	// Request logging + metrics middleware
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()

		// Ensure a request ID exists
		reqID := c.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Locals("request_id", reqID)
		c.Set("X-Request-Id", reqID)

		err := c.Next()

		latency := time.Since(start)
		status := c.Response().StatusCode()
		method := c.Method()
		path := routePath(c)

		metrics.RecordRequest(method, path, status, latency.Milliseconds())

		logger.Info("request",
			"request_id", reqID,
			"method", method,
			"path", c.Path(),
			"status", status,
			"latency_ms", latency.Milliseconds(),
		)

		return err
	})

	// Health endpoints
	app.Get("/healthz", func(c *fiber.Ctx) error {
		// Shallow health: process is up
		if c.Query("deep") != "true" {
			return c.JSON(fiber.Map{"status": "ok"})
		}

		// Deep health: check DB and Redis connectivity, and rod configuration.
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		dbStatus := "ok"
		if err := deps.Recipes.Ping(ctx); err != nil {
			dbStatus = "error"
		}

		redisStatus := "disabled"
		if deps.Redis != nil {
			if err := deps.Redis.Ping(ctx).Err(); err != nil {
				redisStatus = "error"
			} else {
				redisStatus = "ok"
			}
		}

		rodStatus := "disabled"
		if deps.Importer != nil && deps.Importer.BrowserEnabled() {
			rodStatus = "enabled"
		}

		status := "ok"
		if dbStatus != "ok" || redisStatus == "error" {
			status = "error"
		}

		return c.JSON(fiber.Map{
			"status": status,
			"db":     dbStatus,
			"redis":  redisStatus,
			"rod":    rodStatus,
		})
	})

	// Prometheus-style metrics endpoint
	app.Get("/metrics", func(c *fiber.Ctx) error {
		c.Type("text/plain")
		return c.SendString(metrics.Export())
	})

	v1 := app.Group("/v1", authMiddleware(cfg), rateLimitMiddleware(cfg, deps.Redis))
	registerV1Routes(v1, llmKeyMiddleware(deps.Keys))

	return &Server{
		app:    app,
		config: cfg,
		deps:   deps,
		logger: logger,
		cancel: cancel,
	}
}

// App exposes the underlying fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.logger.Info("server_listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
// Requests still running when ctx ends have their contexts canceled.
func (s *Server) Shutdown(ctx context.Context) error {
	stop := context.AfterFunc(ctx, s.cancel)
	defer stop()

	err := s.app.ShutdownWithContext(ctx)
	s.cancel()
	return err
}

func registerV1Routes(group fiber.Router, needsKey fiber.Handler) {
	group.Post("/extract/text", needsKey, extractTextHandler)
	group.Post("/extract/url", needsKey, extractURLHandler)
	group.Post("/extract/image", needsKey, extractImageHandler)

	group.Get("/recipes", listRecipesHandler)
	group.Post("/recipes", createRecipeHandler)
	group.Get("/recipes/:id", getRecipeHandler)
	group.Put("/recipes/:id", updateRecipeHandler)
	group.Delete("/recipes/:id", deleteRecipeHandler)
	group.Post("/recipes/:id/translate", needsKey, translateRecipeHandler)
	group.Get("/recipes/:id/share", shareRecipeHandler)
	group.Get("/recipes/:id/shopping-list", shoppingListHandler)
	group.Get("/recipes/:id/photo", recipePhotoHandler)

	group.Get("/drafts/:id", getDraftHandler)
	group.Put("/drafts/:id", updateDraftHandler)
	group.Delete("/drafts/:id", deleteDraftHandler)
	group.Post("/drafts/:id/save", saveDraftHandler)

	group.Get("/mealplans", listMealPlansHandler)
	group.Put("/mealplans/:date/:meal", assignMealHandler)
	group.Delete("/mealplans/:date/:meal", clearMealHandler)
	group.Post("/mealplans/:date/swap", swapMealsHandler)

	group.Get("/tags", listTagsHandler)
}

// routePath returns the matched route pattern so metrics do not explode on
// ids, falling back to the raw path for unmatched requests.
func routePath(c *fiber.Ctx) string {
	if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" {
		return r.Path
	}
	return c.Path()
}
