package warehouse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/audit"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/auth"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/database"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// POST /api/requests/import-excel
//
// Creates a request and its lines from an uploaded manifest spreadsheet.
// Expected columns: product code | product name | unit | expected quantity.
// Request metadata comes from form fields next to the file.
func ImportRequestExcelHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		code := strings.TrimSpace(c.FormValue("code"))
		kind := models.RequestKind(strings.TrimSpace(c.FormValue("kind")))
		sourceSite := strings.TrimSpace(c.FormValue("source_site"))
		targetSite := strings.TrimSpace(c.FormValue("target_site"))
		note := strings.TrimSpace(c.FormValue("note"))

		if code == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Request code is required")
		}
		if !validKind(kind) {
			return fiber.NewError(fiber.StatusBadRequest, "Kind must be import, transfer or dispatch")
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "File upload failed: "+err.Error())
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Only .xlsx files are accepted")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not open uploaded file")
		}
		defer file.Close()

		excelFile, err := excelize.OpenReader(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Could not read Excel file: "+err.Error())
		}
		defer excelFile.Close()

		sheetList := excelFile.GetSheetList()
		if len(sheetList) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel file has no sheets")
		}

		rows, err := excelFile.GetRows(sheetList[0])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Could not read sheet: "+err.Error())
		}
		if len(rows) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel file is empty")
		}

		// Header detection: a first row whose quantity cell is not numeric
		// is treated as column titles.
		startIndex := 0
		if len(rows[0]) >= 4 {
			if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][3]), 64); err != nil {
				startIndex = 1
			}
		} else if len(rows[0]) > 0 {
			startIndex = 1
		}

		var lines []models.RequestLine
		var badRows []int
		for i := startIndex; i < len(rows); i++ {
			row := rows[i]
			if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
				continue
			}
			if len(row) < 4 {
				badRows = append(badRows, i+1)
				continue
			}

			qty, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
			if err != nil || qty <= 0 {
				badRows = append(badRows, i+1)
				continue
			}

			lines = append(lines, models.RequestLine{
				ProductCode: strings.ToUpper(strings.TrimSpace(row[0])),
				ProductName: strings.TrimSpace(row[1]),
				Unit:        strings.TrimSpace(row[2]),
				ExpectedQty: qty,
			})
		}

		if len(lines) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "No valid lines found in the spreadsheet")
		}

		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
		userName, _ := c.Locals(auth.CtxUserName).(string)

		req := models.WarehouseRequest{
			Code:        code,
			Kind:        kind,
			Status:      models.RequestStatusDraft,
			SourceSite:  sourceSite,
			TargetSite:  targetSite,
			Note:        note,
			RequestedBy: userName,
			Lines:       lines,
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
			Description: fmt.Sprintf("Request %s imported from %s with %d lines", req.Code, fileHeader.Filename, len(lines)),
			After:       req,
		})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"request":      toRequestResponse(req),
			"imported":     len(lines),
			"skipped_rows": badRows,
		})
	}
}
