package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"procurement-service/internal/importer"
	"procurement-service/internal/models"
)

const maxPriceListSize = 10 << 20 // 10MB

// ImportHandler serves the partner price-list import endpoints.
type ImportHandler struct {
	reconciler *importer.Reconciler
	logger     *logrus.Logger
	httpClient *http.Client
}

func NewImportHandler(reconciler *importer.Reconciler, logger *logrus.Logger) *ImportHandler {
	return &ImportHandler{
		reconciler: reconciler,
		logger:     logger,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// PartnerUpdate fetches a price list by URL and replaces the shop's offer
// with it. Listings absent from the document are removed.
// @Summary Update price list by URL
// @Tags Partner
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.PartnerUpdateRequest true "Price list URL"
// @Success 200 {object} models.ImportResponse
// @Failure 400 {object} models.ImportResponse
// @Router /partner/update [post]
func (h *ImportHandler) PartnerUpdate(c *gin.Context) {
	sellerID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusForbidden, models.Fail("Log in required"))
		return
	}

	var req models.PartnerUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("Url is required"))
		return
	}

	parsed, err := url.ParseRequestURI(req.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		c.JSON(http.StatusBadRequest, models.Fail("Invalid url"))
		return
	}

	data, err := h.fetch(req.URL)
	if err != nil {
		h.logger.WithError(err).WithField("url", req.URL).Warn("Failed to fetch price list")
		c.JSON(http.StatusBadRequest, models.Fail("Failed to fetch price list"))
		return
	}

	h.reconcile(c, data, sellerID, importer.ReconcileOptions{ReplaceListings: true})
}

// PartnerUpload accepts a price-list file and adds its goods on top of the
// shop's existing offer.
// @Summary Upload price list file
// @Tags Partner
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "YAML price list"
// @Success 200 {object} models.ImportResponse
// @Failure 400 {object} models.ImportResponse
// @Router /partner/upload [post]
func (h *ImportHandler) PartnerUpload(c *gin.Context) {
	sellerID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusForbidden, models.Fail("Log in required"))
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("File is required"))
		return
	}
	if file.Size > maxPriceListSize {
		c.JSON(http.StatusBadRequest, models.Fail("File too large"))
		return
	}

	src, err := file.Open()
	if err != nil {
		h.logger.WithError(err).Error("Failed to open uploaded file")
		c.JSON(http.StatusInternalServerError, models.Fail("Failed to read file"))
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxPriceListSize+1))
	if err != nil {
		h.logger.WithError(err).Error("Failed to read uploaded file")
		c.JSON(http.StatusInternalServerError, models.Fail("Failed to read file"))
		return
	}

	h.reconcile(c, data, sellerID, importer.ReconcileOptions{ReplaceListings: false})
}

// GetImportTemplate returns the price-list template, as YAML by default or as
// an XLSX workbook when format=xlsx.
// @Summary Download price list template
// @Tags Partner
// @Produce json
// @Security BearerAuth
// @Param format query string false "yaml or xlsx" default(yaml)
// @Success 200 {object} models.DataResponse
// @Router /partner/template [get]
func (h *ImportHandler) GetImportTemplate(c *gin.Context) {
	template := models.PriceListTemplate()

	switch c.DefaultQuery("format", "yaml") {
	case "xlsx":
		h.writeTemplateXLSX(c, template)
	case "yaml":
		data, err := yaml.Marshal(template)
		if err != nil {
			h.logger.WithError(err).Error("Failed to marshal template")
			c.JSON(http.StatusInternalServerError, models.Fail("Failed to build template"))
			return
		}
		c.Header("Content-Disposition", `attachment; filename="price_list_template.yaml"`)
		c.Data(http.StatusOK, "application/x-yaml", data)
	default:
		c.JSON(http.StatusBadRequest, models.Fail("Unsupported format"))
	}
}

func (h *ImportHandler) writeTemplateXLSX(c *gin.Context, template models.ImportTemplate) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Template"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Field", "Description", "Required", "Type", "Example"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheet, cell, header)
	}

	for i, col := range template.Columns {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), col.Name)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), col.Description)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), col.Required)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), col.Type)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), col.Example)
	}

	f.SetColWidth(sheet, "A", "A", 14)
	f.SetColWidth(sheet, "B", "B", 48)
	f.SetColWidth(sheet, "C", "E", 16)

	c.Header("Content-Disposition", `attachment; filename="price_list_template.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		h.logger.WithError(err).Error("Failed to write template workbook")
	}
}

func (h *ImportHandler) fetch(rawURL string) ([]byte, error) {
	resp, err := h.httpClient.Get(rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPriceListSize))
}

// reconcile parses the document and applies it, mapping import errors to the
// response envelope.
func (h *ImportHandler) reconcile(c *gin.Context, data []byte, sellerID uuid.UUID, opts importer.ReconcileOptions) {
	doc, err := importer.ParsePriceList(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ImportResponse{Status: false, Error: err.Error()})
		return
	}

	summary, err := h.reconciler.Reconcile(c.Request.Context(), doc, sellerID, opts)
	if err != nil {
		var unknownCategory *importer.UnknownCategoryError
		if errors.As(err, &unknownCategory) {
			c.JSON(http.StatusBadRequest, models.ImportResponse{Status: false, Error: err.Error(), Summary: summary})
			return
		}
		h.logger.WithError(err).Error("Price list reconciliation failed")
		c.JSON(http.StatusInternalServerError, models.ImportResponse{Status: false, Error: "Import failed", Summary: summary})
		return
	}

	c.JSON(http.StatusOK, models.ImportResponse{Status: true, Summary: summary})
}
