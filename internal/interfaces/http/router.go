package http

import (
	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/jhoicas/almoxtrack-api/internal/application/analytics"
	"github.com/jhoicas/almoxtrack-api/internal/application/auth"
	"github.com/jhoicas/almoxtrack-api/internal/application/inventory"
	"github.com/jhoicas/almoxtrack-api/internal/application/usecase"
	"github.com/jhoicas/almoxtrack-api/internal/domain/entity"
	"github.com/rs/zerolog"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	UserUC      *usecase.UserUseCase
	ProductUC   *usecase.ProductUseCase
	Ledger      *inventory.LedgerUseCase
	MovementQry *inventory.MovementQueryUseCase
	TermUC      *inventory.ResponsibilityTermUseCase
	DashboardUC *appanalytics.DashboardUseCase
	JWTSecret   string
	Log         zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	adminOnly := RequireRole(entity.RoleAdmin)
	operators := RequireRole(entity.RoleAdmin, entity.RoleAlmoxarife)

	// Auth: login público, registro solo admin
	authHandler := NewAuthHandler(deps.AuthUC, deps.Log)
	api.Post("/auth/login", authHandler.Login)
	api.Post("/auth/register", AuthMiddleware(deps.JWTSecret), adminOnly, authHandler.Register)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("", AuthMiddleware(deps.JWTSecret))

	// Users
	userHandler := NewUserHandler(deps.UserUC, deps.Log)
	protected.Get("/users/me", userHandler.Me)
	protected.Get("/users", adminOnly, userHandler.List)

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.MovementQry, deps.Log)
	products.Get("/", productHandler.List)
	products.Post("/", adminOnly, productHandler.Create)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", adminOnly, productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Delete)
	products.Post("/:id/image", adminOnly, productHandler.UploadImage)
	products.Get("/:id/movements", productHandler.Movements)

	// Ledger
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.MovementQry, deps.TermUC, deps.Log)
	invGroup.Post("/entries", adminOnly, inventoryHandler.Entry)
	invGroup.Post("/exits", operators, inventoryHandler.Exit)
	invGroup.Post("/returns", operators, inventoryHandler.Return)
	invGroup.Get("/movements", inventoryHandler.ListMovements)
	invGroup.Get("/exits/:transactionId/term", inventoryHandler.ResponsibilityTerm)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC, deps.Log)
	protected.Get("/dashboard/summary", dashboardHandler.GetSummary)
}
