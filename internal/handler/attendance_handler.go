package handler

import (
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/BheemChand1/attendance-backend/internal/apperr"
	"github.com/BheemChand1/attendance-backend/internal/attendance"
	"github.com/BheemChand1/attendance-backend/internal/middleware"
	"github.com/BheemChand1/attendance-backend/pkg/logger"
	"github.com/BheemChand1/attendance-backend/prometheus"
)

const maxPhotoSize = 5 << 20 // 5MB

var allowedPhotoExts = map[string]string{
	".jpg":  "jpg",
	".jpeg": "jpeg",
	".png":  "png",
}

// AttendanceHandler exposes the attendance ledger over HTTP.
type AttendanceHandler struct {
	Ledger *attendance.Ledger
}

// NewAttendanceHandler creates an AttendanceHandler.
func NewAttendanceHandler(ledger *attendance.Ledger) *AttendanceHandler {
	return &AttendanceHandler{Ledger: ledger}
}

// photoFromRequest reads and validates the multipart photo field.
func photoFromRequest(c echo.Context) (attendance.Photo, error) {
	fh, err := c.FormFile("photo")
	if err != nil {
		return attendance.Photo{}, apperr.New(apperr.KindValidation, "Photo is required")
	}
	if fh.Size > maxPhotoSize {
		return attendance.Photo{}, apperr.New(apperr.KindValidation, "Photo must not exceed 5MB")
	}

	ext, ok := allowedPhotoExts[strings.ToLower(filepath.Ext(fh.Filename))]
	if !ok {
		return attendance.Photo{}, apperr.New(apperr.KindValidation, "Photo must be a jpeg, jpg or png image")
	}

	src, err := fh.Open()
	if err != nil {
		return attendance.Photo{}, apperr.Wrap(apperr.KindValidation, "Failed to read photo", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxPhotoSize+1))
	if err != nil {
		return attendance.Photo{}, apperr.Wrap(apperr.KindValidation, "Failed to read photo", err)
	}
	if len(data) > maxPhotoSize {
		return attendance.Photo{}, apperr.New(apperr.KindValidation, "Photo must not exceed 5MB")
	}

	return attendance.Photo{Data: data, Ext: ext}, nil
}

// coordsFromRequest parses the optional latitude/longitude form values.
func coordsFromRequest(c echo.Context) (attendance.Coordinates, error) {
	var coords attendance.Coordinates

	if v := c.FormValue("latitude"); v != "" {
		lat, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return coords, apperr.New(apperr.KindValidation, "Latitude must be numeric")
		}
		coords.Latitude = &lat
	}
	if v := c.FormValue("longitude"); v != "" {
		lng, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return coords, apperr.New(apperr.KindValidation, "Longitude must be numeric")
		}
		coords.Longitude = &lng
	}
	return coords, nil
}

// CheckIn handles POST /attendance/check-in
func (h *AttendanceHandler) CheckIn(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.CheckInCounter.Inc()

	p, ok := middleware.PrincipalFromEcho(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required", "status": false})
	}

	photo, err := photoFromRequest(c)
	if err != nil {
		return respondError(c, err)
	}
	coords, err := coordsFromRequest(c)
	if err != nil {
		return respondError(c, err)
	}

	rec, err := h.Ledger.CheckIn(p, photo, coords)
	if err != nil {
		log.Error("Check-in failed", zap.Uint("user_id", p.UserID), zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Check-in successful",
		"status":  true,
		"data":    rec,
	})
}

// CheckOut handles POST /attendance/check-out
func (h *AttendanceHandler) CheckOut(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.CheckOutCounter.Inc()

	p, ok := middleware.PrincipalFromEcho(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required", "status": false})
	}

	photo, err := photoFromRequest(c)
	if err != nil {
		return respondError(c, err)
	}
	coords, err := coordsFromRequest(c)
	if err != nil {
		return respondError(c, err)
	}

	rec, err := h.Ledger.CheckOut(p, photo, coords)
	if err != nil {
		log.Error("Check-out failed", zap.Uint("user_id", p.UserID), zap.Error(err))
		// A missing open check-in is a client mistake on this endpoint,
		// not an unknown resource.
		if apperr.Is(err, apperr.KindNotFound) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{
				"message": apperr.MessageOf(err),
				"status":  false,
			})
		}
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Check-out successful",
		"status":  true,
		"data":    rec,
	})
}

// Today handles GET /attendance/today
func (h *AttendanceHandler) Today(c echo.Context) error {
	p, ok := middleware.PrincipalFromEcho(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required", "status": false})
	}

	rec, err := h.Ledger.TodayStatus(p)
	if err != nil {
		return respondError(c, err)
	}
	if rec == nil {
		return c.JSON(http.StatusOK, echo.Map{
			"status": true,
			"data": echo.Map{
				"message":    "No attendance record for today",
				"checked_in": false,
			},
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"status": true, "data": rec})
}

// History handles GET /attendance/history?month&year
func (h *AttendanceHandler) History(c echo.Context) error {
	p, ok := middleware.PrincipalFromEcho(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required", "status": false})
	}

	month, err1 := strconv.Atoi(c.QueryParam("month"))
	year, err2 := strconv.Atoi(c.QueryParam("year"))
	if err1 != nil || err2 != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"message": "month and year are required",
			"status":  false,
		})
	}

	records, err := h.Ledger.History(p, month, year)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": true,
		"data":   records,
		"month":  month,
		"year":   year,
	})
}

// CompanyReport handles GET /attendance/company?date&status&per_page&page
func (h *AttendanceHandler) CompanyReport(c echo.Context) error {
	p, ok := middleware.PrincipalFromEcho(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required", "status": false})
	}

	var filters attendance.ReportFilters
	if v := c.QueryParam("date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{
				"message": "date must be YYYY-MM-DD",
				"status":  false,
			})
		}
		filters.Date = &d
	}
	filters.Status = c.QueryParam("status")

	page, _ := strconv.Atoi(c.QueryParam("page"))
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))

	report, err := h.Ledger.CompanyReport(p, filters, page, perPage)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"status": true, "data": report})
}
