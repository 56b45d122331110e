package area

import (
	"strings"

	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/audit"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/auth"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/database"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
)

type AreaResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Note      string `json:"note"`
	Locations int    `json:"locations"`
	CreatedAt string `json:"created_at"`
}

type CreateAreaRequest struct {
	Name string `json:"name"`
	Note string `json:"note"`
}

type UpdateAreaRequest struct {
	Name *string `json:"name"`
	Note *string `json:"note"`
}

func userInfo(c *fiber.Ctx) (uint, string) {
	userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
	userName, _ := c.Locals(auth.CtxUserName).(string)
	return userID, userName
}

func CreateAreaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateAreaRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Area name is required")
		}

		area := models.Area{Name: body.Name, Note: body.Note}
		if err := database.DB.Create(&area).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create area")
		}

		userID, userName := userInfo(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "area",
			EntityID:    area.ID,
			Action:      models.AuditActionCreate,
			Description: "Area " + area.Name + " created",
			After:       area,
		})

		return c.Status(fiber.StatusCreated).JSON(AreaResponse{
			ID:        area.ID,
			Name:      area.Name,
			Note:      area.Note,
			CreatedAt: area.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

func ListAreasHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var areas []models.Area
		if err := database.DB.Preload("Locations").Order("name").Find(&areas).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list areas")
		}

		resp := make([]AreaResponse, 0, len(areas))
		for _, a := range areas {
			resp = append(resp, AreaResponse{
				ID:        a.ID,
				Name:      a.Name,
				Note:      a.Note,
				Locations: len(a.Locations),
				CreatedAt: a.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(resp)
	}
}

func GetAreaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var area models.Area
		if err := database.DB.Preload("Locations").First(&area, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Area not found")
		}

		return c.JSON(AreaResponse{
			ID:        area.ID,
			Name:      area.Name,
			Note:      area.Note,
			Locations: len(area.Locations),
			CreatedAt: area.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

func UpdateAreaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var area models.Area
		if err := database.DB.First(&area, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Area not found")
		}
		before := area

		var body UpdateAreaRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Area name cannot be empty")
			}
			area.Name = name
		}
		if body.Note != nil {
			area.Note = *body.Note
		}

		if err := database.DB.Save(&area).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update area")
		}

		userID, userName := userInfo(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "area",
			EntityID:    area.ID,
			Action:      models.AuditActionUpdate,
			Description: "Area " + area.Name + " updated",
			Before:      before,
			After:       area,
		})

		return c.JSON(AreaResponse{
			ID:        area.ID,
			Name:      area.Name,
			Note:      area.Note,
			CreatedAt: area.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

func DeleteAreaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var area models.Area
		if err := database.DB.First(&area, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Area not found")
		}

		var inUse int64
		database.DB.Model(&models.Location{}).Where("area_id = ?", area.ID).Count(&inUse)
		if inUse > 0 {
			return fiber.NewError(fiber.StatusConflict, "Area still has locations")
		}

		if err := database.DB.Delete(&area).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete area")
		}

		userID, userName := userInfo(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "area",
			EntityID:    area.ID,
			Action:      models.AuditActionDelete,
			Description: "Area " + area.Name + " deleted",
			Before:      area,
			After:       area,
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}
