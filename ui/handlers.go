package ui

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"quotefill/adapters/excel"
	"quotefill/app"
	"quotefill/domain/catalog"
	"quotefill/internal/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// fillRequest fills one downloaded template
type fillRequest struct {
	Filename   string             `json:"filename"`
	Category   string             `json:"category"`
	Products   []catalog.Product  `json:"products"`
	SearchTags []string           `json:"searchTags"`
	Size       catalog.Dimensions `json:"size"`
	Weight     catalog.Text       `json:"weight"`
}

type generateRequest struct {
	Products []catalog.Product `json:"products"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleLayout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"layout":  s.fillService.Layout(),
	})
}

func (s *Server) handleRuns(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.fail(c, errors.InvalidInput("limit must be a positive integer"))
			return
		}
		limit = n
	}

	runs, err := s.fillService.RecentRuns(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "runs": runs})
}

func (s *Server) handleFill(c *gin.Context) {
	var req fillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, errors.InvalidInput("invalid fill request: "+err.Error()))
		return
	}

	path, err := s.fillService.ResolveDownload(req.Filename)
	if err != nil {
		s.fail(c, err)
		return
	}

	result, err := s.fillService.Fill(c.Request.Context(), app.FillRequest{
		Path:     path,
		Products: req.Products,
		Shared: catalog.SharedFields{
			Category:   req.Category,
			SearchTags: catalog.JoinTags(req.SearchTags),
			Size:       req.Size.String(),
			Weight:     catalog.FormatWeight(req.Weight),
		},
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleFillBatch(c *gin.Context) {
	var req app.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, errors.InvalidInput("invalid batch request: "+err.Error()))
		return
	}

	result, err := s.fillService.FillBatch(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleInspect(c *gin.Context) {
	file, name, err := s.uploadedFile(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	defer file.Close()

	wb, err := excel.ReadWorkbook(file, name)
	if err != nil {
		s.fail(c, err)
		return
	}
	defer wb.Close()

	inspection, err := s.fillService.InspectWorkbook(wb)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "inspection": inspection})
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, errors.InvalidInput("invalid quotation request: "+err.Error()))
		return
	}

	quote, err := s.quoteService.Generate(c.Request.Context(), req.Products)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.Header("X-Quote-Lines", strconv.Itoa(quote.Summary.Lines))
	c.Header("X-Quote-Total", strconv.FormatFloat(quote.Summary.Total, 'f', -1, 64))
	s.sendWorkbook(c, quote.Filename, quote.Content.Bytes())
}

func (s *Server) handleEditExcel(c *gin.Context) {
	file, name, err := s.uploadedFile(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	defer file.Close()

	raw := c.PostForm("cellUpdates")
	if raw == "" {
		s.fail(c, errors.InvalidInput("cellUpdates is required"))
		return
	}
	updates, err := excel.DecodeCellUpdates([]byte(raw))
	if err != nil {
		s.fail(c, err)
		return
	}

	out, err := s.editService.EditUpload(c.Request.Context(), file, name, updates)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.sendWorkbook(c, name, out)
}

func (s *Server) uploadedFile(c *gin.Context) (io.ReadCloser, string, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, "", errors.InvalidInput("a workbook upload named \"file\" is required")
	}
	file, err := header.Open()
	if err != nil {
		return nil, "", errors.WorkbookIO(header.Filename, err)
	}
	return file, filepath.Base(header.Filename), nil
}

func (s *Server) sendWorkbook(c *gin.Context, filename string, data []byte) {
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": filename})
	if disposition == "" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", disposition)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// fail answers with {success: false, error} and a status derived from the error code
func (s *Server) fail(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	_ = c.Error(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err))
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
		"code":    errors.GetCode(err),
	})
}
