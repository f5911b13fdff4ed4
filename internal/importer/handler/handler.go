package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/auth"
	"github.com/fekuna/omnipos-warehouse/internal/importer"
	"github.com/fekuna/omnipos-warehouse/internal/importer/dto"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/logger"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/response"
)

type ImportHandler struct {
	uc     importer.UseCase
	logger logger.ZapLogger
}

func NewImportHandler(uc importer.UseCase, log logger.ZapLogger) *ImportHandler {
	return &ImportHandler{uc: uc, logger: log}
}

func (h *ImportHandler) Register(r gin.IRouter) {
	r.POST("/import", h.Import)
	r.GET("/export", h.Export)
}

// Import reads an .xlsx or .csv upload from the "file" form field.
func (h *ImportHandler) Import(c *gin.Context) {
	actor := auth.ActorFromContext(c.Request.Context())
	if err := auth.Authorize(actor, auth.Catalog(auth.KindImport), auth.ActionCreate); err != nil {
		response.Error(c, err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, apperr.Validation("no file selected"))
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".xlsx", ".csv":
	case ".xls":
		response.Error(c, apperr.Validation("legacy .xls files are not supported, save the sheet as .xlsx"))
		return
	default:
		response.Error(c, apperr.Validation("invalid file format, upload an .xlsx or .csv file"))
		return
	}
	f, err := file.Open()
	if err != nil {
		response.Error(c, apperr.Validation("cannot read upload: %v", err))
		return
	}
	defer f.Close()

	var res *dto.Result
	if ext == ".xlsx" {
		res, err = h.uc.ImportXLSX(c.Request.Context(), f, actor.UserID)
	} else {
		res, err = h.uc.ImportCSV(c.Request.Context(), f, actor.UserID)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	msg := fmt.Sprintf("import complete: created %d, updated %d, errors %d", res.Created, res.Updated, res.Failed)
	response.Success(c, http.StatusOK, msg, res)
}

func (h *ImportHandler) Export(c *gin.Context) {
	if err := auth.Authorize(auth.ActorFromContext(c.Request.Context()), auth.Catalog(auth.KindImport), auth.ActionRead); err != nil {
		response.Error(c, err)
		return
	}
	name := fmt.Sprintf("products_%s.csv", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Status(http.StatusOK)
	if err := h.uc.ExportCSV(c.Request.Context(), c.Writer); err != nil {
		// Headers are already sent; the client sees a truncated file
		_ = c.Error(err)
	}
}
