package warehouse

import (
	"fmt"
	"log"
	"time"

	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/audit"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/auth"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/database"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ScanEventResponse struct {
	ID                  uint    `json:"id"`
	RequestLineID       uint    `json:"request_line_id"`
	InventoryIdentifier string  `json:"inventory_identifier"`
	SerialPallet        string  `json:"serial_pallet"`
	ProductName         string  `json:"product_name"`
	Quantity            float64 `json:"quantity"`
	LocationCode        string  `json:"location_code"`
	ScanTime            string  `json:"scan_time"`
	ScanBy              string  `json:"scan_by"`
	Confirmed           bool    `json:"confirmed"`
}

type ScanDetail struct {
	RequestLineID       uint    `json:"request_line_id"`
	InventoryIdentifier string  `json:"inventory_identifier"`
	SerialPallet        string  `json:"serial_pallet"`
	ProductName         string  `json:"product_name"`
	Quantity            float64 `json:"quantity"`
	LocationCode        string  `json:"location_code"`
	ScanTime            string  `json:"scan_time"` // RFC3339; empty means now
}

type SaveScansRequest struct {
	ScanDetails []ScanDetail `json:"scan_details"`
}

type SavedScan struct {
	ID                  uint   `json:"id"`
	InventoryIdentifier string `json:"inventory_identifier"`
}

func toScanResponse(ev models.ScanEvent) ScanEventResponse {
	return ScanEventResponse{
		ID:                  ev.ID,
		RequestLineID:       ev.RequestLineID,
		InventoryIdentifier: ev.InventoryIdentifier,
		SerialPallet:        ev.SerialPallet,
		ProductName:         ev.ProductName,
		Quantity:            ev.Quantity,
		LocationCode:        ev.LocationCode,
		ScanTime:            ev.ScanTime.Format(time.RFC3339),
		ScanBy:              ev.ScanBy,
		Confirmed:           ev.Confirmed,
	}
}

// GET /api/requests/:id/scan?page=1&size=50
//
// Persisted scan events of one request, paginated so a resumed session can
// page through its history.
func ListScansHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := findRequest(c)
		if err != nil {
			return err
		}

		page := c.QueryInt("page", 1)
		if page < 1 {
			page = 1
		}
		size := c.QueryInt("size", 50)
		if size < 1 || size > 500 {
			size = 50
		}

		var total int64
		if err := database.DB.Model(&models.ScanEvent{}).
			Where("warehouse_request_id = ?", req.ID).Count(&total).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not count scan events")
		}

		var events []models.ScanEvent
		err2 := database.DB.Where("warehouse_request_id = ?", req.ID).
			Order("id").
			Offset((page - 1) * size).
			Limit(size).
			Find(&events).Error
		if err2 != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list scan events")
		}

		data := make([]ScanEventResponse, 0, len(events))
		for _, ev := range events {
			data = append(data, toScanResponse(ev))
		}

		totalPages := int((total + int64(size) - 1) / int64(size))
		return c.JSON(fiber.Map{
			"data": data,
			"meta": fiber.Map{
				"page":        page,
				"size":        size,
				"total":       total,
				"total_pages": totalPages,
			},
		})
	}
}

// POST /api/requests/:id/scan
//
// Persists one submission batch. Rows are keyed by inventory identifier
// within the request: an unconfirmed row is corrected in place, a confirmed
// row is never touched, anything else is inserted.
func SaveScansHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := findRequest(c)
		if err != nil {
			return err
		}
		if req.Status == models.RequestStatusApproved || req.Status == models.RequestStatusRejected {
			return fiber.NewError(fiber.StatusConflict, "Request is closed")
		}

		var body SaveScansRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if len(body.ScanDetails) == 0 {
			return c.JSON(fiber.Map{"saved": []SavedScan{}, "skipped": 0})
		}

		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
		userName, _ := c.Locals(auth.CtxUserName).(string)

		saved := make([]SavedScan, 0, len(body.ScanDetails))
		skipped := 0

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			for _, d := range body.ScanDetails {
				if d.InventoryIdentifier == "" {
					return fiber.NewError(fiber.StatusBadRequest, "Every scan needs an inventory identifier")
				}
				if d.Quantity <= 0 {
					return fiber.NewError(fiber.StatusBadRequest, "Scan quantity must be positive")
				}
				if d.RequestLineID == 0 {
					return fiber.NewError(fiber.StatusBadRequest, "Every scan needs a request line")
				}

				scanTime := time.Now()
				if d.ScanTime != "" {
					if t, err := time.Parse(time.RFC3339, d.ScanTime); err == nil {
						scanTime = t
					}
				}

				var existing models.ScanEvent
				err := tx.Where("warehouse_request_id = ? AND inventory_identifier = ?",
					req.ID, d.InventoryIdentifier).First(&existing).Error

				switch {
				case err == nil && existing.Confirmed:
					// Confirmed history is immutable.
					skipped++

				case err == nil:
					existing.RequestLineID = d.RequestLineID
					existing.SerialPallet = d.SerialPallet
					existing.ProductName = d.ProductName
					existing.Quantity = d.Quantity
					existing.LocationCode = d.LocationCode
					existing.ScanTime = scanTime
					existing.ScanBy = userName
					if err := tx.Save(&existing).Error; err != nil {
						return err
					}
					saved = append(saved, SavedScan{ID: existing.ID, InventoryIdentifier: existing.InventoryIdentifier})

				default:
					ev := models.ScanEvent{
						WarehouseRequestID:  req.ID,
						RequestLineID:       d.RequestLineID,
						InventoryIdentifier: d.InventoryIdentifier,
						SerialPallet:        d.SerialPallet,
						ProductName:         d.ProductName,
						Quantity:            d.Quantity,
						LocationCode:        d.LocationCode,
						ScanTime:            scanTime,
						ScanBy:              userName,
						Confirmed:           false,
					}
					if err := tx.Create(&ev).Error; err != nil {
						return err
					}
					saved = append(saved, SavedScan{ID: ev.ID, InventoryIdentifier: ev.InventoryIdentifier})
				}
			}
			return nil
		})
		if txErr != nil {
			if fe, ok := txErr.(*fiber.Error); ok {
				return fe
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save scan events")
		}

		// First batch moves a draft request into scanning.
		if req.Status == models.RequestStatusDraft && len(saved) > 0 {
			if err := database.DB.Model(req).Update("status", models.RequestStatusPending).Error; err != nil {
				log.Printf("Could not move request %d to pending_scan: %v", req.ID, err)
			}
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "scan_batch",
			EntityID:    req.ID,
			Action:      models.AuditActionSubmit,
			Description: fmt.Sprintf("Saved %d scans for request %s (%d skipped)", len(saved), req.Code, skipped),
		})

		return c.JSON(fiber.Map{"saved": saved, "skipped": skipped})
	}
}
