package inventory

import (
	"errors"
	"strings"

	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/auth"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/database"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryResponse struct {
	ID                uint    `json:"id"`
	Identifier        string  `json:"identifier"`
	SapCode           string  `json:"sap_code"`
	Name              string  `json:"name"`
	SerialPallet      string  `json:"serial_pallet"`
	AvailableQuantity float64 `json:"available_quantity"`
	LocationID        *uint   `json:"location_id"`
	LocationCode      string  `json:"location_code"`
	UpdatedBy         string  `json:"updated_by"`
}

type PushInventoryItem struct {
	Identifier        string  `json:"identifier"`
	SapCode           string  `json:"sap_code"`
	Name              string  `json:"name"`
	SerialPallet      string  `json:"serial_pallet"`
	AvailableQuantity float64 `json:"available_quantity"`
	LocationID        *uint   `json:"location_id"`
}

type PushInventoryRequest struct {
	Items []PushInventoryItem `json:"items"`
}

func toResponse(inv models.Inventory) InventoryResponse {
	r := InventoryResponse{
		ID:                inv.ID,
		Identifier:        inv.Identifier,
		SapCode:           inv.SapCode,
		Name:              inv.Name,
		SerialPallet:      inv.SerialPallet,
		AvailableQuantity: inv.AvailableQuantity,
		LocationID:        inv.LocationID,
		UpdatedBy:         inv.UpdatedBy,
	}
	if inv.Location != nil {
		r.LocationCode = inv.Location.Code
	}
	return r
}

// GET /api/inventories/:identifier
func GetInventoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier := strings.ToUpper(strings.TrimSpace(c.Params("identifier")))
		if identifier == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Identifier is required")
		}

		var inv models.Inventory
		err := database.DB.Preload("Location").Where("identifier = ?", identifier).First(&inv).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Inventory not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load inventory")
		}

		return c.JSON(toResponse(inv))
	}
}

// GET /api/inventories/scan-pallets/:serial
func GetPalletContentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		serial := strings.ToUpper(strings.TrimSpace(c.Params("serial")))
		if serial == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Pallet serial is required")
		}

		var rows []models.Inventory
		if err := database.DB.Preload("Location").Where("serial_pallet = ?", serial).Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load pallet contents")
		}
		if len(rows) == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Pallet not found or empty")
		}

		resp := make([]InventoryResponse, 0, len(rows))
		for _, inv := range rows {
			resp = append(resp, toResponse(inv))
		}
		return c.JSON(resp)
	}
}

// PUT /api/inventories/push
//
// The receiving flow pushes confirmed stock into the inventory store. Upsert
// keyed on the identifier; quantity and placement overwrite the stored row.
func PushInventoriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body PushInventoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if len(body.Items) == 0 {
			return c.JSON(fiber.Map{"upserted": 0})
		}

		userName, _ := c.Locals(auth.CtxUserName).(string)

		rows := make([]models.Inventory, 0, len(body.Items))
		for _, item := range body.Items {
			identifier := strings.ToUpper(strings.TrimSpace(item.Identifier))
			if identifier == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Every item needs an identifier")
			}
			rows = append(rows, models.Inventory{
				Identifier:        identifier,
				SapCode:           strings.ToUpper(strings.TrimSpace(item.SapCode)),
				Name:              item.Name,
				SerialPallet:      strings.ToUpper(strings.TrimSpace(item.SerialPallet)),
				AvailableQuantity: item.AvailableQuantity,
				LocationID:        item.LocationID,
				UpdatedBy:         userName,
			})
		}

		err := database.DB.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "identifier"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"sap_code", "name", "serial_pallet", "available_quantity", "location_id", "updated_by", "updated_at",
			}),
		}).Create(&rows).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not upsert inventories")
		}

		return c.JSON(fiber.Map{"upserted": len(rows)})
	}
}
