package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/database"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/models"
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

func WriteLog(opts LogOptions) error {
	// jsonb columns want the "null" JSON literal, not an empty string
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	log := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
		Undone:      false,
		IsUndone:    false,
	}

	if err := database.DB.Create(&log).Error; err != nil {
		return fmt.Errorf("could not write audit log: %w", err)
	}

	return nil
}

// UndoLog reverts the change a log records. Only master data edits
// (locations and areas) are undoable; scan and approval history is not,
// those rows feed the reconciliation state.
func UndoLog(logID uint, userID uint, userName string) error {
	var log models.AuditLog
	if err := database.DB.First(&log, "id = ?", logID).Error; err != nil {
		return fmt.Errorf("log not found: %w", err)
	}

	if log.IsUndone {
		return fmt.Errorf("this change has already been undone")
	}

	switch log.Action {
	case models.AuditActionCreate:
		if err := deleteEntity(log.EntityType, log.EntityID); err != nil {
			return fmt.Errorf("could not delete entity: %w", err)
		}

	case models.AuditActionUpdate:
		if err := restoreEntity(log.EntityType, log.EntityID, log.BeforeData); err != nil {
			return fmt.Errorf("could not restore entity: %w", err)
		}

	case models.AuditActionDelete:
		if err := recreateEntity(log.EntityType, log.AfterData); err != nil {
			return fmt.Errorf("could not recreate entity: %w", err)
		}

	default:
		return fmt.Errorf("this action cannot be undone")
	}

	now := time.Now()
	log.IsUndone = true
	log.UndoneBy = &userID
	log.UndoneAt = &now

	if err := database.DB.Save(&log).Error; err != nil {
		return fmt.Errorf("could not update log: %w", err)
	}

	undoLog := models.AuditLog{
		UserID:      userID,
		UserName:    userName,
		EntityType:  log.EntityType,
		EntityID:    log.EntityID,
		Action:      models.AuditActionUndo,
		Description: fmt.Sprintf("Undone: %s", log.Description),
		BeforeData:  log.AfterData,
		AfterData:   log.BeforeData,
		Undone:      true,
		IsUndone:    false,
	}

	if err := database.DB.Create(&undoLog).Error; err != nil {
		return fmt.Errorf("could not write undo log: %w", err)
	}

	return nil
}

func deleteEntity(entityType string, entityID uint) error {
	switch entityType {
	case "location":
		return database.DB.Delete(&models.Location{}, "id = ?", entityID).Error
	case "area":
		return database.DB.Delete(&models.Area{}, "id = ?", entityID).Error
	default:
		return fmt.Errorf("entity type %q is not undoable", entityType)
	}
}

func recreateEntity(entityType string, dataJSON string) error {
	switch entityType {
	case "location":
		var loc models.Location
		if err := json.Unmarshal([]byte(dataJSON), &loc); err != nil {
			return err
		}
		loc.ID = 0
		return database.DB.Create(&loc).Error

	case "area":
		var area models.Area
		if err := json.Unmarshal([]byte(dataJSON), &area); err != nil {
			return err
		}
		area.ID = 0
		return database.DB.Create(&area).Error

	default:
		return fmt.Errorf("entity type %q is not undoable", entityType)
	}
}

func restoreEntity(entityType string, entityID uint, dataJSON string) error {
	switch entityType {
	case "location":
		var loc models.Location
		if err := json.Unmarshal([]byte(dataJSON), &loc); err != nil {
			return err
		}
		return database.DB.Model(&models.Location{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"code":     loc.Code,
			"name":     loc.Name,
			"area_id":  loc.AreaID,
			"capacity": loc.Capacity,
			"note":     loc.Note,
		}).Error

	case "area":
		var area models.Area
		if err := json.Unmarshal([]byte(dataJSON), &area); err != nil {
			return err
		}
		return database.DB.Model(&models.Area{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"name": area.Name,
			"note": area.Note,
		}).Error

	default:
		return fmt.Errorf("entity type %q is not undoable", entityType)
	}
}
