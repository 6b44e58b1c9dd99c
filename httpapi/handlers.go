package httpapi

import (
	"bytes"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	inventory "github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000"
	"github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000/bulk"
	"github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000/report"
	"github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000/service"
)

// maxImportSize caps uploaded bulk files.
const maxImportSize = 32 << 20

type Handler struct{ sess *service.Session }

func NewHandler(sess *service.Session) *Handler {
	return &Handler{sess: sess}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "company": h.sess.Settings().CompanyName})
}

// ── Chemicals ───────────────────────────────────────────────────────────────

func (h *Handler) ListChemicals(c *gin.Context) {
	chems := h.sess.Chemicals()
	out := make([]ChemicalResponse, 0, len(chems))
	for _, ch := range chems {
		out = append(out, newChemicalResponse(ch))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetChemical(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	ch, err := h.sess.Chemical(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newChemicalResponse(ch))
}

func (h *Handler) CreateChemical(c *gin.Context) {
	var req CreateChemicalRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ch, err := h.sess.AddChemical(c.Request.Context(), req.Name, req.StockKg, req.Rate)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newChemicalResponse(ch))
}

func (h *Handler) AddChemicalStock(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req AddStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ch, err := h.sess.AddChemicalStock(c.Request.Context(), id, req.Quantity, req.Rate, req.Note)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newChemicalResponse(ch))
}

func (h *Handler) AdjustChemicalStock(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ch, err := h.sess.AdjustChemicalStock(c.Request.Context(), id, req.Delta, req.Note)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newChemicalResponse(ch))
}

func (h *Handler) SetChemicalRate(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req RateRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ch, err := h.sess.SetChemicalRate(c.Request.Context(), id, req.Rate)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newChemicalResponse(ch))
}

func (h *Handler) DeleteChemical(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if err := h.sess.DeleteChemical(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Packaging ───────────────────────────────────────────────────────────────

func (h *Handler) ListPackaging(c *gin.Context) {
	items := h.sess.PackagingMaterials()
	out := make([]PackagingResponse, 0, len(items))
	for _, p := range items {
		out = append(out, newPackagingResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreatePackaging(c *gin.Context) {
	var req CreatePackagingRequest
	if !bindAndValidate(c, &req) {
		return
	}
	p, err := h.sess.AddPackaging(c.Request.Context(), req.Type, req.Name, req.Stock, req.Rate)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newPackagingResponse(p))
}

func (h *Handler) AdjustPackagingStock(c *gin.Context) {
	var req AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	p, err := h.sess.AdjustPackagingStock(c.Request.Context(), c.Param("type"), req.Delta, req.Note)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPackagingResponse(p))
}

func (h *Handler) SetPackagingRate(c *gin.Context) {
	var req RateRequest
	if !bindAndValidate(c, &req) {
		return
	}
	p, err := h.sess.SetPackagingRate(c.Request.Context(), c.Param("type"), req.Rate)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPackagingResponse(p))
}

func (h *Handler) DeletePackaging(c *gin.Context) {
	if err := h.sess.DeletePackaging(c.Request.Context(), c.Param("type")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Stock views ─────────────────────────────────────────────────────────────

func (h *Handler) LowStock(c *gin.Context) {
	items := h.sess.LowStock()
	out := make([]LowStockResponse, 0, len(items))
	for _, it := range items {
		out = append(out, LowStockResponse(it))
	}
	c.JSON(http.StatusOK, out)
}

// Movements lists the stock log, optionally narrowed by ?resource= and ?key=.
func (h *Handler) Movements(c *gin.Context) {
	moves := h.sess.Movements(c.Query("resource"), c.Query("key"))
	out := make([]MovementResponse, 0, len(moves))
	for _, m := range moves {
		out = append(out, newMovementResponse(m))
	}
	c.JSON(http.StatusOK, out)
}

// ── Formulas and production ─────────────────────────────────────────────────

func (h *Handler) ListFormulas(c *gin.Context) {
	products := h.sess.Products()
	out := make([]FormulaResponse, 0, len(products))
	for _, p := range products {
		f, err := h.sess.Formula(p)
		if err != nil {
			writeError(c, err)
			return
		}
		out = append(out, newFormulaResponse(f))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetFormula(c *gin.Context) {
	f, err := h.sess.Formula(c.Param("product"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newFormulaResponse(f))
}

func (h *Handler) Preview(c *gin.Context) {
	var req ProductionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	calc, err := h.sess.Preview(service.ProductionRequest{Product: req.Product, BatchSize: req.BatchSize})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCalculationResponse(calc))
}

func (h *Handler) Commit(c *gin.Context) {
	var req ProductionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	rep, err := h.sess.Commit(c.Request.Context(), service.ProductionRequest{Product: req.Product, BatchSize: req.BatchSize})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newCommitResponse(rep))
}

func (h *Handler) History(c *gin.Context) {
	recs := h.sess.History()
	out := make([]ProductionRecordResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, newProductionRecordResponse(r))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) ListProductDetails(c *gin.Context) {
	details := h.sess.ProductDetails()
	out := make([]ProductDetailsResponse, 0, len(details))
	for _, d := range details {
		out = append(out, ProductDetailsResponse(d))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) PutProductDetails(c *gin.Context) {
	var req ProductDetailsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	d := inventory.ProductDetails(req)
	if err := h.sess.SetProductDetails(c.Request.Context(), d); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ProductDetailsResponse(d))
}

func (h *Handler) DeleteProductDetails(c *gin.Context) {
	if err := h.sess.DeleteProductDetails(c.Request.Context(), c.Param("product")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Vendor ledger ───────────────────────────────────────────────────────────

func (h *Handler) ListTransactions(c *gin.Context) {
	vendor := c.Query("vendor")
	out := []TransactionResponse{}
	for _, tx := range h.sess.Transactions() {
		if vendor != "" && tx.VendorName != vendor {
			continue
		}
		out = append(out, TransactionResponse(tx))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) transactionInput(c *gin.Context) (inventory.TransactionInput, bool) {
	var req TransactionRequest
	if !bindAndValidate(c, &req) {
		return inventory.TransactionInput{}, false
	}
	date, ok := parseDate(req.Date)
	if !ok {
		c.JSON(http.StatusUnprocessableEntity, newValidation(map[string]string{"date": "datetime"}))
		return inventory.TransactionInput{}, false
	}
	return inventory.TransactionInput{
		Date:       date,
		VendorName: req.VendorName,
		VendorType: req.VendorType,
		ItemName:   req.ItemName,
		Quantity:   req.Quantity,
		Rate:       req.Rate,
		Notes:      req.Notes,
	}, true
}

func (h *Handler) CreateTransaction(c *gin.Context) {
	in, ok := h.transactionInput(c)
	if !ok {
		return
	}
	tx, err := h.sess.RecordTransaction(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, TransactionResponse(tx))
}

func (h *Handler) UpdateTransaction(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	in, ok := h.transactionInput(c)
	if !ok {
		return
	}
	tx, err := h.sess.EditTransaction(c.Request.Context(), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, TransactionResponse(tx))
}

func (h *Handler) DeleteTransaction(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if err := h.sess.DeleteTransaction(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListPayments(c *gin.Context) {
	vendor := c.Query("vendor")
	out := []PaymentResponse{}
	for _, p := range h.sess.Payments() {
		if vendor != "" && p.VendorName != vendor {
			continue
		}
		out = append(out, PaymentResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) paymentInput(c *gin.Context) (inventory.PaymentInput, bool) {
	var req PaymentRequest
	if !bindAndValidate(c, &req) {
		return inventory.PaymentInput{}, false
	}
	date, ok := parseDate(req.Date)
	if !ok {
		c.JSON(http.StatusUnprocessableEntity, newValidation(map[string]string{"date": "datetime"}))
		return inventory.PaymentInput{}, false
	}
	return inventory.PaymentInput{
		Date:       date,
		VendorName: req.VendorName,
		Amount:     req.Amount,
		Method:     req.Method,
		Notes:      req.Notes,
	}, true
}

func (h *Handler) CreatePayment(c *gin.Context) {
	in, ok := h.paymentInput(c)
	if !ok {
		return
	}
	p, err := h.sess.RecordPayment(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, PaymentResponse(p))
}

func (h *Handler) UpdatePayment(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	in, ok := h.paymentInput(c)
	if !ok {
		return
	}
	p, err := h.sess.EditPayment(c.Request.Context(), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, PaymentResponse(p))
}

func (h *Handler) DeletePayment(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if err := h.sess.DeletePayment(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Balances(c *gin.Context) {
	bals := h.sess.Balances()
	out := make([]BalanceResponse, 0, len(bals))
	for _, b := range bals {
		out = append(out, BalanceResponse(b))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) Balance(c *gin.Context) {
	vendor := c.Param("vendor")
	for _, b := range h.sess.Balances() {
		if b.VendorName == vendor {
			c.JSON(http.StatusOK, BalanceResponse(b))
			return
		}
	}
	writeError(c, &inventory.NotFoundError{Kind: "vendor", Key: vendor})
}

// ── Settings ────────────────────────────────────────────────────────────────

func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, SettingsResponse(h.sess.Settings()))
}

func (h *Handler) PutSettings(c *gin.Context) {
	var req SettingsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	s, err := h.sess.UpdateSettings(c.Request.Context(), inventory.Settings(req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SettingsResponse(s))
}

// ── Reports and bulk transfer ───────────────────────────────────────────────

func (h *Handler) StockReport(c *gin.Context) {
	h.render(c, h.sess.StockReport(), "stock")
}

func (h *Handler) VendorLedgerReport(c *gin.Context) {
	h.render(c, h.sess.VendorLedgerReport(c.Query("vendor")), "vendor-ledger")
}

func (h *Handler) ProductionReport(c *gin.Context) {
	batch := 0
	if raw := c.Query("batch_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, newAPIError("invalid batch_size"))
			return
		}
		batch = n
	}
	rep, err := h.sess.ProductionReport(service.ProductionRequest{Product: c.Query("product"), BatchSize: batch})
	if err != nil {
		writeError(c, err)
		return
	}
	h.render(c, rep, "production")
}

func (h *Handler) render(c *gin.Context, rep *report.Report, name string) {
	format, err := report.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, newAPIError(err.Error()))
		return
	}
	var buf bytes.Buffer
	if err := report.Render(&buf, rep, format); err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+"."+string(format)+`"`)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (h *Handler) Export(c *gin.Context) {
	raw := c.Query("format")
	if raw == "" {
		raw = string(bulk.FormatZip)
	}
	format, err := bulk.ParseFormat(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, newAPIError(err.Error()))
		return
	}
	var buf bytes.Buffer
	if err := h.sess.Export(&buf, format); err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="chemworks.`+string(format)+`"`)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// Import accepts a multipart "file" field or the raw archive as the body.
// Without ?format= the file extension decides, falling back to zip.
func (h *Handler) Import(c *gin.Context) {
	var (
		data     []byte
		filename string
		err      error
	)
	if fh, ferr := c.FormFile("file"); ferr == nil {
		filename = fh.Filename
		f, oerr := fh.Open()
		if oerr != nil {
			c.JSON(http.StatusBadRequest, newAPIError("cannot open upload"))
			return
		}
		defer f.Close()
		data, err = io.ReadAll(io.LimitReader(f, maxImportSize))
	} else {
		data, err = io.ReadAll(io.LimitReader(c.Request.Body, maxImportSize))
	}
	if err != nil || len(data) == 0 {
		c.JSON(http.StatusBadRequest, newAPIError("empty upload"))
		return
	}

	raw := c.Query("format")
	if raw == "" {
		raw = strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	}
	if raw == "" {
		raw = string(bulk.FormatZip)
	}
	format, err := bulk.ParseFormat(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, newAPIError(err.Error()))
		return
	}
	applied, err := h.sess.Import(c.Request.Context(), data, format)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ImportResponse{Applied: applied})
}
