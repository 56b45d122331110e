package warehouse

import (
	"errors"
	"fmt"

	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/audit"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/auth"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/database"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/models"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/reconcile"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type PatchProgressRequest struct {
	ScanProgress int `json:"scan_progress"`
}

type ConfirmationItem struct {
	ID        uint   `json:"id"`
	Confirmed bool   `json:"confirmed"`
	UpdatedBy string `json:"updated_by"`
}

type PatchConfirmationsRequest struct {
	Items []ConfirmationItem `json:"items"`
}

type PatchStatusRequest struct {
	Status models.RequestStatus `json:"status"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

func validStatus(s models.RequestStatus) bool {
	switch s {
	case models.RequestStatusDraft, models.RequestStatusPending, models.RequestStatusReady,
		models.RequestStatusApproved, models.RequestStatusRejected:
		return true
	}
	return false
}

// PATCH /api/requests/:id — aggregate scan-progress counter.
func PatchProgressHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := findRequest(c)
		if err != nil {
			return err
		}

		var body PatchProgressRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.ScanProgress < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Scan progress cannot be negative")
		}

		if err := database.DB.Model(req).Update("scan_progress", body.ScanProgress).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update scan progress")
		}

		return c.JSON(fiber.Map{"id": req.ID, "scan_progress": body.ScanProgress})
	}
}

// PATCH /api/requests/scan-confirmations
//
// Batched confirmed-flag flips. The whole batch is rejected when any item
// lacks a persisted ID; nothing is partially applied.
func PatchConfirmationsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body PatchConfirmationsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if len(body.Items) == 0 {
			return c.JSON(fiber.Map{"updated": 0})
		}

		for _, item := range body.Items {
			if item.ID == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Every confirmation needs a persisted scan ID")
			}
		}

		updated := 0
		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			for _, item := range body.Items {
				res := tx.Model(&models.ScanEvent{}).
					Where("id = ?", item.ID).
					Updates(map[string]interface{}{
						"confirmed": item.Confirmed,
						"scan_by":   item.UpdatedBy,
					})
				if res.Error != nil {
					return res.Error
				}
				updated += int(res.RowsAffected)
			}
			return nil
		})
		if txErr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update confirmations")
		}

		return c.JSON(fiber.Map{"updated": updated})
	}
}

// PATCH /api/requests/:id/status
func PatchStatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := findRequest(c)
		if err != nil {
			return err
		}

		var body PatchStatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if !validStatus(body.Status) {
			return fiber.NewError(fiber.StatusBadRequest, "Unknown status")
		}

		if err := database.DB.Model(req).Update("status", body.Status).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update status")
		}

		return c.JSON(fiber.Map{"id": req.ID, "status": body.Status})
	}
}

// POST /api/requests/:id/approve
//
// Runs the approval gate saga in-process. A failed commit step is named in
// the response so the operator can retry; earlier steps are idempotent.
func ApproveRequestHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := findRequest(c)
		if err != nil {
			return err
		}
		if req.Status == models.RequestStatusApproved || req.Status == models.RequestStatusRejected {
			return fiber.NewError(fiber.StatusConflict, "Request is already closed")
		}

		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
		userName, _ := c.Locals(auth.CtxUserName).(string)

		ledger, err := loadLedger(database.DB, req)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load request state")
		}

		gate := reconcile.NewGate(req.ID, ledger, newCommitBackend(database.DB))
		gate.SetApprover(userName)

		if err := gate.Approve(c.Context()); err != nil {
			var commitErr *reconcile.CommitError
			switch {
			case errors.Is(err, reconcile.ErrNotReady):
				return fiber.NewError(fiber.StatusConflict, "Request is not ready for approval")
			case errors.Is(err, reconcile.ErrTerminalState):
				return fiber.NewError(fiber.StatusConflict, "Request is already closed")
			case errors.Is(err, reconcile.ErrMissingIdentifier):
				return fiber.NewError(fiber.StatusBadRequest, "Unsubmitted scans present, submit the batch first")
			case errors.As(err, &commitErr):
				return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
					"error":       "Approval commit failed",
					"failed_step": string(commitErr.Step),
				})
			default:
				return fiber.NewError(fiber.StatusInternalServerError, "Approval failed")
			}
		}

		if err := database.DB.Model(req).Update("approved_by", userName).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not record approver")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "warehouse_request",
			EntityID:    req.ID,
			Action:      models.AuditActionApprove,
			Description: fmt.Sprintf("Request %s approved", req.Code),
		})

		return c.JSON(fiber.Map{
			"id":     req.ID,
			"status": string(reconcile.StateApproved),
		})
	}
}

// POST /api/requests/:id/reject
func RejectRequestHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := findRequest(c)
		if err != nil {
			return err
		}
		if req.Status == models.RequestStatusApproved || req.Status == models.RequestStatusRejected {
			return fiber.NewError(fiber.StatusConflict, "Request is already closed")
		}

		var body RejectRequest
		_ = c.BodyParser(&body)

		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
		userName, _ := c.Locals(auth.CtxUserName).(string)

		ledger, err := loadLedger(database.DB, req)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load request state")
		}

		gate := reconcile.NewGate(req.ID, ledger, newCommitBackend(database.DB))
		if err := gate.Reject(c.Context()); err != nil {
			var commitErr *reconcile.CommitError
			if errors.As(err, &commitErr) {
				return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
					"error":       "Rejection failed",
					"failed_step": string(commitErr.Step),
				})
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Rejection failed")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "warehouse_request",
			EntityID:    req.ID,
			Action:      models.AuditActionReject,
			Description: fmt.Sprintf("Request %s rejected: %s", req.Code, body.Reason),
		})

		return c.JSON(fiber.Map{
			"id":     req.ID,
			"status": string(reconcile.StateRejected),
		})
	}
}
