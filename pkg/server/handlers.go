package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pibshift/pibshift/internal/config"
	"github.com/pibshift/pibshift/pkg/availability"
	"github.com/pibshift/pibshift/pkg/core/allocator"
	"github.com/pibshift/pibshift/pkg/core/model"
	"github.com/pibshift/pibshift/pkg/core/services"
	"github.com/pibshift/pibshift/pkg/export"
)

// ScheduleResponse is the JSON body of a generated schedule
type ScheduleResponse struct {
	Schedule         *model.Schedule                 `json:"schedule"`
	DayPools         []allocator.DayPoolReport       `json:"day_pools"`
	ShiftCounts      map[model.Identity]int          `json:"shift_counts"`
	Conflicts        []model.Conflict                `json:"conflicts"`
	ValidationErrors []allocator.SlotValidationError `json:"validation_errors"`
	Success          bool                            `json:"success"`
}

// ConflictsRequest is the JSON body accepted by the conflicts endpoint
type ConflictsRequest struct {
	Slots []model.AssignmentSlot `json:"slots" binding:"required"`
}

// Health reports that the server is up
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Roles lists the configured roles in allocation order
func (s *Server) Roles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"roles": s.cfg.Roles})
}

// Schedule generates a schedule from an uploaded availability sheet.
//
// Form field "file" holds the .xlsx or .csv upload. Query parameters:
// roles (comma separated keys), max_shifts, consecutive (true/false), sheet,
// and format (json by default, or any export format).
func (s *Server) Schedule(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "form file \"file\" is required"})
		return
	}

	opts, err := generateOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	format := export.FormatJSON
	if value := c.Query("format"); value != "" {
		format, err = export.ParseFormat(value)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open upload"})
		return
	}
	defer file.Close()

	source := &availability.ReaderSource{
		Reader: file,
		Name:   fileHeader.Filename,
		Sheet:  c.Query("sheet"),
		Layout: s.cfg.Input,
	}

	result, err := services.GenerateSchedule(c.Request.Context(), source, s.cfg, s.logger, opts)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	outcome := result.Outcome
	if format == export.FormatJSON {
		c.JSON(http.StatusOK, ScheduleResponse{
			Schedule:         outcome.Schedule,
			DayPools:         outcome.DayPools,
			ShiftCounts:      outcome.ShiftCounts(),
			Conflicts:        outcome.Conflicts,
			ValidationErrors: outcome.ValidationErrors,
			Success:          outcome.Success,
		})
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, outcome.Schedule, services.ExportOptions(s.cfg, result.Roles)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=escala.%s", format.Extension()))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// Conflicts reports same-date double bookings in a posted schedule
func (s *Server) Conflicts(c *gin.Context) {
	var request ConflictsRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conflicts := services.CheckConflicts(&model.Schedule{Slots: request.Slots}, s.logger)
	c.JSON(http.StatusOK, gin.H{"conflicts": conflicts})
}

func generateOptions(c *gin.Context) (services.GenerateOptions, error) {
	var opts services.GenerateOptions

	if value := c.Query("roles"); value != "" {
		for _, role := range strings.Split(value, ",") {
			if role = strings.ToUpper(strings.TrimSpace(role)); role != "" {
				opts.Roles = append(opts.Roles, role)
			}
		}
	}

	if value := c.Query("max_shifts"); value != "" {
		maxShifts, err := strconv.Atoi(value)
		if err != nil || maxShifts < 1 {
			return opts, fmt.Errorf("max_shifts must be a positive number, got %q", value)
		}
		opts.MaxShifts = maxShifts
	}

	if value := c.Query("consecutive"); value != "" {
		consecutive, err := strconv.ParseBool(value)
		if err != nil {
			return opts, fmt.Errorf("consecutive must be true or false, got %q", value)
		}
		opts.Consecutive = &consecutive
	}

	return opts, nil
}

// statusFor maps unreadable uploads and bad role selections to 400
func statusFor(err error) int {
	if errors.Is(err, services.ErrLoadAvailability) || errors.Is(err, config.ErrUnknownRole) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
