package main

import (
	"log"
	"strings"

	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/area"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/audit"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/auth"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/config"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/database"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/inventory"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/location"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/models"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/warehouse"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Warehouse requests
	protected.Get("/requests", warehouse.ListRequestsHandler())
	protected.Post("/requests/with-items", warehouse.CreateRequestWithItemsHandler())
	protected.Post("/requests/import-excel", warehouse.ImportRequestExcelHandler())
	protected.Get("/requests/:id/items", warehouse.ListRequestItemsHandler())

	// Scan events
	protected.Get("/requests/:id/scan", warehouse.ListScansHandler())
	protected.Post("/requests/:id/scan", warehouse.SaveScansHandler())
	protected.Post("/requests/:id/scan-code", warehouse.ValidateScanHandler())

	// Approval surface; confirmation and status flips plus the in-process
	// gate are admin-only.
	protected.Patch("/requests/scan-confirmations", auth.RequireRole(models.RoleAdmin), warehouse.PatchConfirmationsHandler())
	protected.Patch("/requests/:id/status", auth.RequireRole(models.RoleAdmin), warehouse.PatchStatusHandler())
	protected.Patch("/requests/:id", warehouse.PatchProgressHandler())
	protected.Post("/requests/:id/approve", auth.RequireRole(models.RoleAdmin), warehouse.ApproveRequestHandler())
	protected.Post("/requests/:id/reject", auth.RequireRole(models.RoleAdmin), warehouse.RejectRequestHandler())

	// Inventory lookups + receiving push
	protected.Get("/inventories/scan-pallets/:serial", inventory.GetPalletContentsHandler())
	protected.Get("/inventories/:identifier", inventory.GetInventoryHandler())
	protected.Put("/inventories/push", inventory.PushInventoriesHandler())

	// Locations
	protected.Get("/locations/minimal", location.ListMinimalLocationsHandler())
	protected.Get("/locations", location.ListLocationsHandler())
	protected.Get("/locations/:id", location.GetLocationHandler())
	protected.Post("/locations", auth.RequireRole(models.RoleAdmin), location.CreateLocationHandler())
	protected.Put("/locations/:id", auth.RequireRole(models.RoleAdmin), location.UpdateLocationHandler())
	protected.Delete("/locations/:id", auth.RequireRole(models.RoleAdmin), location.DeleteLocationHandler())

	// Areas
	protected.Get("/areas", area.ListAreasHandler())
	protected.Get("/areas/:id", area.GetAreaHandler())
	protected.Post("/areas", auth.RequireRole(models.RoleAdmin), area.CreateAreaHandler())
	protected.Put("/areas/:id", auth.RequireRole(models.RoleAdmin), area.UpdateAreaHandler())
	protected.Delete("/areas/:id", auth.RequireRole(models.RoleAdmin), area.DeleteAreaHandler())

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())
	protected.Post("/audit-logs/:id/undo", auth.RequireRole(models.RoleAdmin), audit.UndoAuditLogHandler())

	log.Println("Server listening on port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
