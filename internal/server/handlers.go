package server

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hippocampus-app/hippocampus/internal/llm"
	"github.com/hippocampus-app/hippocampus/internal/repository"
)

// maxImageBytes bounds receipt uploads. UPI screenshots are well under this.
const maxImageBytes = 8 << 20

type messageRequest struct {
	Member string `json:"member" binding:"required"`
	Text   string `json:"text" binding:"required"`
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx := c.Request.Context()
	if err := repository.HealthCheck(ctx, s.store, 2*time.Second, s.logger); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "hippocampus"})
}

func (s *Server) handleMessage(c *gin.Context) {
	var req messageRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "member and text are required"})
		return
	}

	reply, err := s.chat.HandleMessage(c.Request.Context(), req.Member, req.Text)
	if err != nil {
		if llm.IsUpstream(err) {
			s.logger.Error("http.message.upstream", "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		s.logger.Error("http.message.failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process message"})
		return
	}
	c.JSON(http.StatusOK, reply)
}

// handleReceipt accepts a multipart upload with an "image" file part and a
// "member" field.
func (s *Server) handleReceipt(c *gin.Context) {
	member := c.PostForm("member")
	if member == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "member is required"})
		return
	}

	file, _, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
		return
	}
	if len(image) > maxImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds 8 MiB"})
		return
	}

	reply, err := s.chat.HandleReceipt(c.Request.Context(), member, image)
	if err != nil {
		if llm.IsUpstream(err) {
			s.logger.Error("http.receipt.upstream", "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		s.logger.Error("http.receipt.failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process receipt"})
		return
	}
	c.JSON(http.StatusOK, reply)
}

func (s *Server) handleTotals(c *gin.Context) {
	summary, err := s.chat.MonthlyTotals(c.Request.Context())
	if err != nil {
		s.logger.Error("http.totals.failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute totals"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleExportCSV(c *gin.Context) {
	filter, err := s.chat.ExportFilter(c.Request.Context(), c.Query("start"), c.Query("end"))
	if err != nil {
		s.logger.Error("http.export.failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to prepare export"})
		return
	}

	doc, err := s.export.ExportCSV(c.Request.Context(), filter)
	if err != nil {
		s.logger.Error("http.export.failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build export"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="expenses.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(doc))
}

func (s *Server) handleExportXLSX(c *gin.Context) {
	filter, err := s.chat.ExportFilter(c.Request.Context(), c.Query("start"), c.Query("end"))
	if err != nil {
		s.logger.Error("http.export.failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to prepare export"})
		return
	}

	doc, err := s.export.ExportXLSX(c.Request.Context(), filter)
	if err != nil {
		s.logger.Error("http.export.failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build export"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="expenses.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", doc)
}

func (s *Server) handleSeed(c *gin.Context) {
	member := c.Query("member")
	if member == "" {
		member = "Partner 1"
	}
	if err := s.chat.SeedDemo(c.Request.Context(), member); err != nil {
		s.logger.Error("http.seed.failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to seed demo data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "seeded"})
}
