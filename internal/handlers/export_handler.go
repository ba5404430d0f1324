package handlers

import (
	"bufio"
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/munero-platform/analytics-core-be/internal/core/export"
	"github.com/munero-platform/analytics-core-be/internal/core/llm"
	"github.com/munero-platform/analytics-core-be/internal/core/sqlgate"
	"github.com/munero-platform/analytics-core-be/internal/models"
	"github.com/munero-platform/analytics-core-be/internal/shared/utils"
)

type ExportHandler struct {
	exportService *export.Service
}

func NewExportHandler(service *export.Service) *ExportHandler {
	return &ExportHandler{exportService: service}
}

// POST /api/chat/export-csv
// Replays a chat-produced query as a streamed CSV attachment. The query is
// gated again on every replay; chat responses keep the filter placeholder,
// so the caller's current filters are re-injected here.
func (h *ExportHandler) ExportCSV(c *fiber.Ctx) error {
	var req models.ExportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if strings.TrimSpace(req.SQLQuery) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "sql_query is required",
		})
	}

	sqlText := req.SQLQuery
	var params map[string]interface{}
	if offsets, err := sqlgate.WordOffsets(sqlText, llm.FilterToken); err == nil && len(offsets) > 0 {
		sqlText, params, err = llm.InjectFilters(req.SQLQuery, req.Filters)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	// Gate before committing to a streamed response; rejections must still
	// surface as a client error, not a truncated download.
	if _, err := sqlgate.Validate(
		sqlgate.CandidateQuery{SQL: sqlText, Label: "export"},
		sqlgate.Options{Ceiling: h.exportService.RowLimit(), StripLimit: true},
	); err != nil {
		return errorJSON(c, err)
	}

	cid := uuid.NewString()[:8]
	filename := sanitizeFilename(req.Filename)

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)

	streamCtx, cancelStream := context.WithCancel(context.Background())
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancelStream()
		rows, err := h.exportService.Stream(streamCtx, sqlText, params, &abortWriter{w: w, cancel: cancelStream})
		if err != nil {
			// The header is already gone; all we can do is stop and log.
			utils.LogError("CSV export aborted", err, map[string]interface{}{
				"cid":  cid,
				"rows": rows,
			})
			return
		}
		utils.LogInfo("CSV export complete", map[string]interface{}{
			"cid":      cid,
			"rows":     rows,
			"filename": filename,
		})
	})
	return nil
}

// abortWriter cancels the query context as soon as the response stream
// breaks, so a dropped client releases the cursor instead of holding it
// until the SQL timeout.
type abortWriter struct {
	w      io.Writer
	cancel context.CancelFunc
}

func (aw *abortWriter) Write(p []byte) (int, error) {
	n, err := aw.w.Write(p)
	if err != nil {
		aw.cancel()
	}
	return n, err
}

// sanitizeFilename keeps exports to a bare .csv basename.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "export.csv"
	}
	name = strings.ReplaceAll(name, `"`, "")
	if !strings.HasSuffix(strings.ToLower(name), ".csv") {
		name += ".csv"
	}
	return name
}
