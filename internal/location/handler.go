package location

import (
	"strings"

	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/audit"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/auth"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/database"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
)

type LocationResponse struct {
	ID        uint   `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	AreaID    *uint  `json:"area_id"`
	AreaName  string `json:"area_name"`
	Capacity  int    `json:"capacity"`
	Note      string `json:"note"`
	CreatedAt string `json:"created_at"`
}

type MinimalLocationResponse struct {
	ID   uint   `json:"id"`
	Code string `json:"code"`
}

type CreateLocationRequest struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	AreaID   *uint  `json:"area_id"`
	Capacity int    `json:"capacity"`
	Note     string `json:"note"`
}

type UpdateLocationRequest struct {
	Code     *string `json:"code"`
	Name     *string `json:"name"`
	AreaID   *uint   `json:"area_id"`
	Capacity *int    `json:"capacity"`
	Note     *string `json:"note"`
}

func toResponse(loc models.Location) LocationResponse {
	r := LocationResponse{
		ID:        loc.ID,
		Code:      loc.Code,
		Name:      loc.Name,
		AreaID:    loc.AreaID,
		Capacity:  loc.Capacity,
		Note:      loc.Note,
		CreatedAt: loc.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if loc.Area != nil {
		r.AreaName = loc.Area.Name
	}
	return r
}

func userInfo(c *fiber.Ctx) (uint, string) {
	userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
	userName, _ := c.Locals(auth.CtxUserName).(string)
	return userID, userName
}

func CreateLocationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateLocationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Code = strings.ToUpper(strings.TrimSpace(body.Code))
		if body.Code == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Location code is required")
		}

		loc := models.Location{
			Code:     body.Code,
			Name:     body.Name,
			AreaID:   body.AreaID,
			Capacity: body.Capacity,
			Note:     body.Note,
		}
		if err := database.DB.Create(&loc).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create location")
		}

		userID, userName := userInfo(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "location",
			EntityID:    loc.ID,
			Action:      models.AuditActionCreate,
			Description: "Location " + loc.Code + " created",
			After:       loc,
		})

		return c.Status(fiber.StatusCreated).JSON(toResponse(loc))
	}
}

func ListLocationsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Preload("Area")
		if areaID := c.QueryInt("area_id", 0); areaID > 0 {
			dbq = dbq.Where("area_id = ?", areaID)
		}

		var locs []models.Location
		if err := dbq.Order("code").Find(&locs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list locations")
		}

		resp := make([]LocationResponse, 0, len(locs))
		for _, loc := range locs {
			resp = append(resp, toResponse(loc))
		}
		return c.JSON(resp)
	}
}

// GET /api/locations/minimal
//
// id/code pairs only; the scan screens poll this list.
func ListMinimalLocationsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var locs []models.Location
		if err := database.DB.Select("id", "code").Order("code").Find(&locs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list locations")
		}

		resp := make([]MinimalLocationResponse, 0, len(locs))
		for _, loc := range locs {
			resp = append(resp, MinimalLocationResponse{ID: loc.ID, Code: loc.Code})
		}
		return c.JSON(resp)
	}
}

func GetLocationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var loc models.Location
		if err := database.DB.Preload("Area").First(&loc, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Location not found")
		}
		return c.JSON(toResponse(loc))
	}
}

func UpdateLocationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var loc models.Location
		if err := database.DB.First(&loc, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Location not found")
		}
		before := loc

		var body UpdateLocationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Code != nil {
			code := strings.ToUpper(strings.TrimSpace(*body.Code))
			if code == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Location code cannot be empty")
			}
			loc.Code = code
		}
		if body.Name != nil {
			loc.Name = *body.Name
		}
		if body.AreaID != nil {
			loc.AreaID = body.AreaID
		}
		if body.Capacity != nil {
			loc.Capacity = *body.Capacity
		}
		if body.Note != nil {
			loc.Note = *body.Note
		}

		if err := database.DB.Save(&loc).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update location")
		}

		userID, userName := userInfo(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "location",
			EntityID:    loc.ID,
			Action:      models.AuditActionUpdate,
			Description: "Location " + loc.Code + " updated",
			Before:      before,
			After:       loc,
		})

		return c.JSON(toResponse(loc))
	}
}

func DeleteLocationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var loc models.Location
		if err := database.DB.First(&loc, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Location not found")
		}

		var inUse int64
		database.DB.Model(&models.Inventory{}).Where("location_id = ?", loc.ID).Count(&inUse)
		if inUse > 0 {
			return fiber.NewError(fiber.StatusConflict, "Location still holds inventory")
		}

		if err := database.DB.Delete(&loc).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete location")
		}

		userID, userName := userInfo(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "location",
			EntityID:    loc.ID,
			Action:      models.AuditActionDelete,
			Description: "Location " + loc.Code + " deleted",
			Before:      loc,
			After:       loc,
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}
