package warehouse

import (
	"context"
	"errors"
	"fmt"

	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/auth"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/database"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/inventory"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/models"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/reconcile"

	"github.com/gofiber/fiber/v2"
)

type ValidateScanRequest struct {
	Code     string `json:"code"`
	Mode     string `json:"mode"` // "container" (default) or "pallet"
	Location string `json:"location"`
	LineID   uint   `json:"line_id"` // optional, scopes to a single line
}

type ScanOutcomeResponse struct {
	Kind            string  `json:"kind"`
	LineID          uint    `json:"line_id"`
	LineTotal       float64 `json:"line_total"`
	Remaining       float64 `json:"remaining"`
	LineCompleted   bool    `json:"line_completed"`
	OverflowWarning bool    `json:"overflow_warning"`
}

type ScanCheckItem struct {
	Identifier   string              `json:"identifier"`
	ProductCode  string              `json:"product_code"`
	ProductName  string              `json:"product_name"`
	SerialPallet string              `json:"serial_pallet"`
	Quantity     float64             `json:"quantity"`
	Location     string              `json:"location"`
	Outcome      ScanOutcomeResponse `json:"outcome"`
}

// POST /api/requests/:id/scan-code
//
// Validates one decoded code against the request's persisted state: the
// classifier resolves it in the inventory store, the rebuilt ledger runs the
// reconciliation checks. Nothing is persisted here; the client posts the
// accepted scans as a batch afterwards.
func ValidateScanHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := findRequest(c)
		if err != nil {
			return err
		}
		if req.Status == models.RequestStatusApproved || req.Status == models.RequestStatusRejected {
			return fiber.NewError(fiber.StatusConflict, "Request is closed")
		}

		var body ValidateScanRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		mode := reconcile.ModeContainer
		switch body.Mode {
		case "", string(reconcile.ModeContainer):
		case string(reconcile.ModePallet):
			mode = reconcile.ModePallet
		default:
			return fiber.NewError(fiber.StatusBadRequest, "Mode must be container or pallet")
		}

		ledger, err := loadLedger(database.DB, req)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load request state")
		}

		userName, _ := c.Locals(auth.CtxUserName).(string)
		ledger.SetOperator(userName)
		if body.LineID > 0 {
			ledger.SelectLine(body.LineID)
		}

		classifier := reconcile.NewClassifier(inventory.NewSource(database.DB))

		items, err := classifyAndRecord(c.Context(), classifier, ledger, body.Code, mode, body.Location)
		if err != nil {
			return scanHTTPError(err)
		}

		return c.JSON(fiber.Map{"items": items})
	}
}

// classifyAndRecord resolves one code and plays every resulting intent
// through the ledger. The first failing intent aborts the whole scan; the
// caller's ledger is throwaway, so partial state is simply discarded.
func classifyAndRecord(ctx context.Context, classifier *reconcile.Classifier, ledger *reconcile.Ledger, code string, mode reconcile.ScanMode, location string) ([]ScanCheckItem, error) {
	intents, err := classifier.Classify(ctx, code, mode, location)
	if err != nil {
		return nil, err
	}

	items := make([]ScanCheckItem, 0, len(intents))
	for _, intent := range intents {
		outcome, err := ledger.Record(intent)
		if err != nil {
			return nil, err
		}
		items = append(items, ScanCheckItem{
			Identifier:   intent.Identifier,
			ProductCode:  intent.ProductCode,
			ProductName:  intent.ProductName,
			SerialPallet: intent.SerialPallet,
			Quantity:     intent.Quantity,
			Location:     intent.Location,
			Outcome: ScanOutcomeResponse{
				Kind:            string(outcome.Kind),
				LineID:          outcome.LineID,
				LineTotal:       outcome.LineTotal,
				Remaining:       outcome.Remaining,
				LineCompleted:   outcome.LineCompleted,
				OverflowWarning: outcome.OverflowWarning,
			},
		})
	}
	return items, nil
}

// scanHTTPError maps the engine's error taxonomy onto HTTP statuses.
func scanHTTPError(err error) error {
	var quantityErr *reconcile.QuantityExceededError
	switch {
	case errors.Is(err, reconcile.ErrEmptyCode):
		return fiber.NewError(fiber.StatusBadRequest, "Scanned code is empty")
	case errors.Is(err, reconcile.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Code is unknown to the inventory store")
	case errors.Is(err, reconcile.ErrAlreadyConfirmed):
		return fiber.NewError(fiber.StatusConflict, "This container is already confirmed")
	case errors.As(err, &quantityErr):
		return fiber.NewError(fiber.StatusConflict,
			fmt.Sprintf("Quantity exceeded, remaining allowance is %.0f", quantityErr.Remaining()))
	case errors.Is(err, reconcile.ErrNotInRequest):
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Product is not part of this request")
	case errors.Is(err, reconcile.ErrWrongItem):
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Scan does not match the selected line")
	case errors.Is(err, reconcile.ErrZeroQuantity):
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Container has no available quantity")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "Scan validation failed")
	}
}
