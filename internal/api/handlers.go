package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/drarshadhere/mypcos-ai/internal/domain"
	"github.com/drarshadhere/mypcos-ai/internal/service"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	status := "healthy"
	httpStatus := http.StatusOK

	if s.health != nil {
		if err := s.health.Health(c.Request.Context()); err != nil {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
			s.logger.WithError(err).Warn("Storage health check failed")
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":    status,
		"timestamp": time.Now(),
		"version":   "1.0.0",
	})
}

// handleGenerateReport runs the full intake workflow for a submitted record.
func (s *Server) handleGenerateReport(c *gin.Context) {
	var params service.GenerateReportParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	result, err := s.intake.GenerateReport(c.Request.Context(), &params)
	if err != nil {
		s.logger.WithError(err).Error("Report generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "report generation failed"})
		return
	}

	// A PDF response is returned directly when the caller asks for one.
	if params.PaymentConfirmed && c.GetHeader("Accept") == "application/pdf" {
		c.Header("Content-Disposition", `attachment; filename="pcos_report.pdf"`)
		c.Data(http.StatusOK, "application/pdf", result.Document)
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleGetReport retrieves a stored report record by ID.
func (s *Server) handleGetReport(c *gin.Context) {
	if s.reports == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "report storage not configured"})
		return
	}

	record, err := s.reports.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		s.logger.WithError(err).Error("Failed to get report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get report"})
		return
	}

	c.JSON(http.StatusOK, record)
}

// handleGetReportPDF re-renders the stored section sequence as a PDF.
func (s *Server) handleGetReportPDF(c *gin.Context) {
	if s.reports == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "report storage not configured"})
		return
	}

	record, err := s.reports.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		s.logger.WithError(err).Error("Failed to get report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get report"})
		return
	}

	document, err := s.renderer.Render(record.Sections)
	if err != nil {
		s.logger.WithError(err).Error("Failed to render report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render report"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="pcos_report.pdf"`)
	c.Data(http.StatusOK, "application/pdf", document)
}

// handleListReports lists report records for a patient, newest first.
func (s *Server) handleListReports(c *gin.Context) {
	if s.reports == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "report storage not configured"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	records, err := s.reports.ListByPatient(c.Request.Context(), c.Param("name"), limit, offset)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list reports")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reports"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"patient": c.Param("name"),
		"reports": records,
		"count":   len(records),
	})
}

// handleProgressHistory returns the progress tracker rows for a patient.
func (s *Server) handleProgressHistory(c *gin.Context) {
	if s.progress == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "progress storage not configured"})
		return
	}

	records, err := s.progress.History(c.Request.Context(), c.Param("name"))
	if err != nil {
		s.logger.WithError(err).Error("Failed to get progress history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get progress history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"patient": c.Param("name"),
		"entries": records,
		"count":   len(records),
	})
}

// handleListPatients lists the distinct patient names in the progress tracker.
func (s *Server) handleListPatients(c *gin.Context) {
	if s.progress == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "progress storage not configured"})
		return
	}

	patients, err := s.progress.Patients(c.Request.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to list patients")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list patients"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"patients": patients,
		"count":    len(patients),
	})
}
