package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"hostel/internal/export"
	"hostel/internal/model"
	"hostel/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PaymentHandler handles payment endpoints.
type PaymentHandler struct {
	paymentService service.PaymentService
	now            func() time.Time
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, now: time.Now}
}

// RecordPaymentRequest settles a student's monthly record.
type RecordPaymentRequest struct {
	CNIC       string `json:"cnic"`
	Amount     Amount `json:"amount" swaggertype:"string" example:"5000"`
	Method     string `json:"method"`
	RoomNumber string `json:"room_number"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`
}

// Amount accepts a JSON number or a string. Parsing is left to the service
// so a malformed value reports INVALID_AMOUNT.
type Amount string

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = Amount(n.String())
	return nil
}

// GeneratePaymentsRequest names the period to open records for.
// Zero values default to the month after the current one.
type GeneratePaymentsRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// GeneratePaymentsResponse reports how many records were opened.
type GeneratePaymentsResponse struct {
	Month   int `json:"month"`
	Year    int `json:"year"`
	Created int `json:"created"`
}

// StatusFilterQuery places payments relative to the current month.
type StatusFilterQuery struct {
	Filter string `query:"filter"`
}

// ExportQuery narrows the spreadsheet export.
type ExportQuery struct {
	Month  int    `query:"month"`
	Year   int    `query:"year"`
	Status string `query:"status"`
}

// Record godoc
// @Summary Record a payment
// @Description Marks the student's open record for the period as paid. The amount must cover the room rent.
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RecordPaymentRequest true "Payment"
// @Success 200 {object} Response{data=model.Payment}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /payment/record [post]
func (h *PaymentHandler) Record(c echo.Context) error {
	var req RecordPaymentRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	payment, err := h.paymentService.RecordPayment(c.Request().Context(), service.RecordPaymentInput{
		CNIC:       req.CNIC,
		Amount:     string(req.Amount),
		Method:     req.Method,
		RoomNumber: req.RoomNumber,
		Month:      req.Month,
		Year:       req.Year,
	})
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Payment updated successfully.", payment)
}

// List godoc
// @Summary List payments
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]model.Payment}
// @Router /payment [get]
func (h *PaymentHandler) List(c echo.Context) error {
	payments, err := h.paymentService.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Payments fetched successfully.", payments)
}

// Get godoc
// @Summary Get a payment
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Success 200 {object} Response{data=model.Payment}
// @Failure 404 {object} errors.ErrorResponse
// @Router /payment/{id} [get]
func (h *PaymentHandler) Get(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	payment, err := h.paymentService.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Payment fetched successfully.", payment)
}

// GetByCNIC godoc
// @Summary Payments of a student
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param cnic path string true "CNIC"
// @Success 200 {object} Response{data=[]model.Payment}
// @Failure 404 {object} errors.ErrorResponse
// @Router /payment/cnic/{cnic} [get]
func (h *PaymentHandler) GetByCNIC(c echo.Context) error {
	payments, err := h.paymentService.GetByCNIC(c.Request().Context(), c.Param("cnic"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Payment fetched successfully.", payments)
}

// Attempts godoc
// @Summary Payment attempts of a student
// @Description Accepted and rejected attempts, newest first.
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param cnic path string true "CNIC"
// @Success 200 {object} Response{data=[]model.PaymentLog}
// @Failure 400 {object} errors.ErrorResponse
// @Router /payment/cnic/{cnic}/attempts [get]
func (h *PaymentHandler) Attempts(c echo.Context) error {
	logs, err := h.paymentService.Attempts(c.Request().Context(), c.Param("cnic"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Payment attempts fetched successfully.", logs)
}

// Delete godoc
// @Summary Delete a payment
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Success 200 {object} Response
// @Failure 404 {object} errors.ErrorResponse
// @Router /payment/{id} [delete]
func (h *PaymentHandler) Delete(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.paymentService.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Payment deleted successfully.", nil)
}

// Paid godoc
// @Summary Paid payments
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param filter query string false "this, before or after the current month"
// @Success 200 {object} Response{data=[]model.Payment}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /payment/paid [get]
func (h *PaymentHandler) Paid(c echo.Context) error {
	return h.listByStatus(c, service.StatusKindPaid, "Paid payments fetched successfully.")
}

// Unpaid godoc
// @Summary Unpaid payments
// @Description Pending and failed records.
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param filter query string false "this, before or after the current month"
// @Success 200 {object} Response{data=[]model.Payment}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /payment/unpaid [get]
func (h *PaymentHandler) Unpaid(c echo.Context) error {
	return h.listByStatus(c, service.StatusKindUnpaid, "Unpaid payments fetched successfully.")
}

func (h *PaymentHandler) listByStatus(c echo.Context, kind service.StatusKind, message string) error {
	var q StatusFilterQuery
	if err := bind(c, &q); err != nil {
		return err
	}

	payments, err := h.paymentService.ListByStatus(c.Request().Context(), kind, service.TimeFilter(q.Filter), h.now())
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, message, payments)
}

// Generate godoc
// @Summary Open records for a month
// @Description Creates a pending record for every housed student without one. Safe to repeat.
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GeneratePaymentsRequest false "Period"
// @Success 200 {object} Response{data=GeneratePaymentsResponse}
// @Failure 400 {object} errors.ErrorResponse
// @Router /payment/generate [post]
func (h *PaymentHandler) Generate(c echo.Context) error {
	var req GeneratePaymentsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	period := model.Period{Month: req.Month, Year: req.Year}
	if req.Month == 0 && req.Year == 0 {
		period = model.PeriodOf(h.now()).Next()
	}

	created, err := h.paymentService.GenerateNextPeriod(c.Request().Context(), period)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Payments generated successfully.", GeneratePaymentsResponse{
		Month:   period.Month,
		Year:    period.Year,
		Created: created,
	})
}

// Export godoc
// @Summary Export payments to Excel
// @Tags payments
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param month query int false "Month"
// @Param year query int false "Year"
// @Param status query string false "paid, unpaid or pending"
// @Success 200 {file} file
// @Failure 400 {object} errors.ErrorResponse
// @Router /payment/export [get]
func (h *PaymentHandler) Export(c echo.Context) error {
	var q ExportQuery
	if err := bind(c, &q); err != nil {
		return err
	}

	rows, err := h.paymentService.ExportRoster(c.Request().Context(), service.RosterFilter{
		Month:  q.Month,
		Year:   q.Year,
		Status: q.Status,
	})
	if err != nil {
		return respondError(c, err)
	}

	var buf bytes.Buffer
	if err := export.WriteRoster(&buf, rows); err != nil {
		return respondError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=payments.xlsx")
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}
