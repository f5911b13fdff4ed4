package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	attrrepo "github.com/fekuna/omnipos-warehouse/internal/attribute/repository"
	attruc "github.com/fekuna/omnipos-warehouse/internal/attribute/usecase"
	"github.com/fekuna/omnipos-warehouse/internal/auth"
	"github.com/fekuna/omnipos-warehouse/internal/importer/dto"
	"github.com/fekuna/omnipos-warehouse/internal/importer/usecase"
	invrepo "github.com/fekuna/omnipos-warehouse/internal/inventory/repository"
	invuc "github.com/fekuna/omnipos-warehouse/internal/inventory/usecase"
	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/database"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/logger"
	prodrepo "github.com/fekuna/omnipos-warehouse/internal/product/repository"
	produc "github.com/fekuna/omnipos-warehouse/internal/product/usecase"
	"github.com/fekuna/omnipos-warehouse/internal/testutil"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewSQLite(t)
	log := logger.NewNop()
	tx := database.NewTxManager(db)
	ledger := invuc.NewInventoryUseCase(invrepo.NewPGRepository(db), nil, nil, invuc.Options{}, log)
	attrs := attruc.NewAttributeUseCase(attrrepo.NewPGRepository(db), log)
	products := produc.NewProductUseCase(prodrepo.NewPGRepository(db), tx, ledger, nil, nil, produc.Options{Attributes: attrs}, log)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if uid := c.GetHeader("X-Test-User"); uid != "" {
			ctx := auth.WithActor(c.Request.Context(), &auth.Actor{UserID: uid, Role: c.GetHeader("X-Test-Role")})
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	})
	NewImportHandler(usecase.NewImportUseCase(tx, products, attrs, ledger, log), log).Register(r.Group("/api"))
	return r
}

func upload(t *testing.T, r *gin.Engine, role, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, _ = fw.Write([]byte(content))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Test-User", "u-"+role)
	req.Header.Set("X-Test-Role", role)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestImport(t *testing.T) {
	r := newRouter(t)
	content := "SKU,Name,Quantity\nSH-1,Shirt,4\n,Broken,1\n"

	w := upload(t, r, model.RoleStaff, "products.csv", content)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = upload(t, r, model.RoleAdmin, "products.xls", content)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = upload(t, r, model.RoleAdmin, "products.txt", content)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	// CSV bytes under an .xlsx name are not a workbook
	w = upload(t, r, model.RoleAdmin, "products.xlsx", content)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = upload(t, r, model.RoleAdmin, "products.csv", content)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Data dto.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Data.Created)
	assert.Equal(t, 1, body.Data.Failed)

	req := httptest.NewRequest(http.MethodGet, "/api/export", nil)
	req.Header.Set("X-Test-User", "u-admin")
	req.Header.Set("X-Test-Role", model.RoleAdmin)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "SKU,Name,"))
	assert.Contains(t, rec.Body.String(), "SH-1,Shirt")
}

func TestImport_XLSX(t *testing.T) {
	r := newRouter(t)

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"SKU", "Name", "Quantity", "Cost Price", "Fabric"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"SH-1", "Shirt", 4, 7.5, "linen"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"PA-1", "Pants", 2}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	w := upload(t, r, model.RoleAdmin, "Products.XLSX", buf.String())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Data dto.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Data.Created)
	assert.Equal(t, 0, body.Data.Failed)
}
