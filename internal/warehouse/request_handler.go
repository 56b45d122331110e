package warehouse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/audit"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/auth"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/database"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type RequestResponse struct {
	ID           uint                 `json:"id"`
	Code         string               `json:"code"`
	Kind         models.RequestKind   `json:"kind"`
	Status       models.RequestStatus `json:"status"`
	ScanProgress int                  `json:"scan_progress"`
	SourceSite   string               `json:"source_site"`
	TargetSite   string               `json:"target_site"`
	Note         string               `json:"note"`
	RequestedBy  string               `json:"requested_by"`
	ApprovedBy   string               `json:"approved_by"`
	CreatedAt    string               `json:"created_at"`
}

type CreateRequestItem struct {
	ProductCode string  `json:"product_code"`
	ProductName string  `json:"product_name"`
	Unit        string  `json:"unit"`
	ExpectedQty float64 `json:"expected_qty"`
}

type CreateRequestWithItemsRequest struct {
	Code       string              `json:"code"`
	Kind       models.RequestKind  `json:"kind"`
	SourceSite string              `json:"source_site"`
	TargetSite string              `json:"target_site"`
	Note       string              `json:"note"`
	Items      []CreateRequestItem `json:"items"`
}

type RequestItemResponse struct {
	ID          uint    `json:"id"`
	ProductCode string  `json:"product_code"`
	ProductName string  `json:"product_name"`
	Unit        string  `json:"unit"`
	ExpectedQty float64 `json:"expected_qty"`
	ScannedQty  float64 `json:"scanned_qty"`
	Status      string  `json:"status"`
}

func toRequestResponse(req models.WarehouseRequest) RequestResponse {
	return RequestResponse{
		ID:           req.ID,
		Code:         req.Code,
		Kind:         req.Kind,
		Status:       req.Status,
		ScanProgress: req.ScanProgress,
		SourceSite:   req.SourceSite,
		TargetSite:   req.TargetSite,
		Note:         req.Note,
		RequestedBy:  req.RequestedBy,
		ApprovedBy:   req.ApprovedBy,
		CreatedAt:    req.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func validKind(kind models.RequestKind) bool {
	switch kind {
	case models.RequestKindImport, models.RequestKindTransfer, models.RequestKindDispatch:
		return true
	}
	return false
}

// GET /api/requests?kind=transfer&status=pending_scan
func ListRequestsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.WarehouseRequest{})

		if kind := c.Query("kind"); kind != "" {
			dbq = dbq.Where("kind = ?", kind)
		}
		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}

		var reqs []models.WarehouseRequest
		if err := dbq.Order("created_at DESC").Find(&reqs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list requests")
		}

		resp := make([]RequestResponse, 0, len(reqs))
		for _, req := range reqs {
			resp = append(resp, toRequestResponse(req))
		}
		return c.JSON(resp)
	}
}

// POST /api/requests/with-items
//
// Upstream order intake: one call creates the request and its expected
// lines.
func CreateRequestWithItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateRequestWithItemsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Code = strings.TrimSpace(body.Code)
		if body.Code == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Request code is required")
		}
		if !validKind(body.Kind) {
			return fiber.NewError(fiber.StatusBadRequest, "Kind must be import, transfer or dispatch")
		}
		if len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "At least one item is required")
		}
		for _, item := range body.Items {
			if strings.TrimSpace(item.ProductCode) == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Every item needs a product code")
			}
			if item.ExpectedQty <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Expected quantity must be positive")
			}
		}

		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
		userName, _ := c.Locals(auth.CtxUserName).(string)

		req := models.WarehouseRequest{
			Code:        body.Code,
			Kind:        body.Kind,
			Status:      models.RequestStatusDraft,
			SourceSite:  body.SourceSite,
			TargetSite:  body.TargetSite,
			Note:        body.Note,
			RequestedBy: userName,
		}
		for _, item := range body.Items {
			req.Lines = append(req.Lines, models.RequestLine{
				ProductCode: strings.ToUpper(strings.TrimSpace(item.ProductCode)),
				ProductName: item.ProductName,
				Unit:        item.Unit,
				ExpectedQty: item.ExpectedQty,
			})
		}

		if err := database.DB.Create(&req).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create request")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "warehouse_request",
			EntityID:    req.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Request %s created with %d lines", req.Code, len(req.Lines)),
			After:       req,
		})

		return c.Status(fiber.StatusCreated).JSON(toRequestResponse(req))
	}
}

// GET /api/requests/:id/items
//
// Lines with scanned quantity and status derived from the scan events at
// read time.
func ListRequestItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := findRequest(c)
		if err != nil {
			return err
		}

		ledger, err := loadLedger(database.DB, req)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load request lines")
		}

		progress := ledger.Progress()
		resp := make([]RequestItemResponse, 0, len(progress))
		for _, p := range progress {
			resp = append(resp, RequestItemResponse{
				ID:          p.Line.ID,
				ProductCode: p.Line.ProductCode,
				ProductName: p.Line.ProductName,
				Unit:        p.Line.Unit,
				ExpectedQty: p.Line.ExpectedQty,
				ScannedQty:  p.ScannedQty,
				Status:      string(p.Status),
			})
		}
		return c.JSON(resp)
	}
}

func findRequest(c *fiber.Ctx) (*models.WarehouseRequest, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid request ID")
	}

	var req models.WarehouseRequest
	if err := database.DB.First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Request not found")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not load request")
	}
	return &req, nil
}
