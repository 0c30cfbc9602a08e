package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Activos-api/internal/application/acta"
	"github.com/jhoicas/Activos-api/internal/application/auth"
	"github.com/jhoicas/Activos-api/internal/application/inventory"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	ItemUC     *inventory.ItemUseCase
	ActaOrch   *acta.Orchestrator
	JWTSecret  string
	UploadsDir string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Firma (público: la posesión del token autoriza al portador)
	firma := api.Group("/firma")
	signatureHandler := NewSignatureHandler(deps.ActaOrch)
	firma.Get("/:token", signatureHandler.View)
	firma.Post("/:token/firmar", signatureHandler.Sign)
	firma.Post("/:token/rechazar", signatureHandler.Reject)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	operador := RequireRole(entity.RoleAdmin, entity.RoleAlmacenista)

	// Items (protegido; lectura también para auditores)
	items := protected.Group("/items")
	itemHandler := NewItemHandler(deps.ItemUC)
	items.Get("/", itemHandler.List)
	items.Get("/:id", itemHandler.GetByID)
	items.Get("/:id/movements", itemHandler.Movements)
	items.Post("/", operador, itemHandler.Create)
	items.Post("/:id/adjust", operador, itemHandler.Adjust)

	// Actas (protegido)
	actas := protected.Group("/actas")
	actaHandler := NewActaHandler(deps.ActaOrch, deps.UploadsDir)
	actas.Get("/", actaHandler.List)
	actas.Get("/:id", actaHandler.GetByID)
	actas.Get("/:id/pdf", actaHandler.PDF)
	actas.Post("/", operador, actaHandler.Create)
	actas.Post("/:id/reenviar", operador, actaHandler.Reissue)
	actas.Post("/:id/devolucion", operador, actaHandler.RegisterReturn)
	actas.Delete("/:id", RequireRole(entity.RoleAdmin), actaHandler.Delete)
}
