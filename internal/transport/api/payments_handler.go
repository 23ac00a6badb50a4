package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/unipay/internal/domain"
	"github.com/fsdevblog/unipay/internal/repository/repoargs"
	"github.com/fsdevblog/unipay/internal/storage"
)

const (
	// maxProofBytes предел размера изображения доказательства перевода.
	maxProofBytes = 5 << 20

	proofFormField = "paymentProof"
)

var allowedProofTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

type PaymentsHandler struct {
	svs        PaymentServicer
	proofStore storage.ProofStore
}

func NewPaymentsHandler(svs PaymentServicer, proofStore storage.ProofStore) *PaymentsHandler {
	return &PaymentsHandler{
		svs:        svs,
		proofStore: proofStore,
	}
}

type PaymentResponse struct {
	ID              int64                    `json:"id"`
	OrderID         int64                    `json:"orderId"`
	Amount          float64                  `json:"amount"`
	TransactionCode string                   `json:"transactionCode"`
	Status          domain.PaymentStatusType `json:"status"`
	ProofRef        string                   `json:"paymentProof,omitempty"`
	CreatedAt       time.Time                `json:"createdAt"`
	ExpiresAt       time.Time                `json:"expiresAt"`
	ConfirmedAt     *time.Time               `json:"confirmedAt,omitempty"`
	RejectionReason string                   `json:"rejectionReason,omitempty"`
}

type BankQRResponse struct {
	BankName      string `json:"bankName"`
	AccountName   string `json:"accountName"`
	AccountNumber string `json:"accountNumber"`
	QRImageRef    string `json:"qrImage,omitempty"`
}

type CreatePaymentParams struct {
	OrderID int64 `binding:"required" json:"orderId"`
}

// Create POST RouteGroup + PaymentsRoute. Создает платеж по заказу текущего юзера и
// возвращает его вместе с банковскими реквизитами для перевода.
func (h *PaymentsHandler) Create(c *gin.Context) {
	currentActor := getActorFromContext(c)

	var params CreatePaymentParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	payment, bankQR, err := h.svs.Create(reqCtx, params.OrderID, currentActor.UserID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"payment":         convertPaymentResponse(payment),
		"bankQR":          convertBankQRResponse(bankQR),
		"transactionCode": payment.TransactionCode,
	})
}

// GetByOrder GET RouteGroup + PaymentsByOrderRoute. Возвращает текущий платеж заказа.
func (h *PaymentsHandler) GetByOrder(c *gin.Context) {
	currentActor := getActorFromContext(c)

	orderID, parseErr := strconv.ParseInt(c.Param("orderID"), 10, 64)
	if parseErr != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	payment, bankQR, err := h.svs.GetByOrder(reqCtx, orderID, currentActor)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payment": convertPaymentResponse(payment),
		"bankQR":  convertBankQRResponse(bankQR),
	})
}

// UploadProof PUT RouteGroup + PaymentProofRoute. Принимает multipart изображение
// доказательства перевода, сохраняет его в хранилище и прикрепляет к платежу.
func (h *PaymentsHandler) UploadProof(c *gin.Context) {
	currentActor := getActorFromContext(c)

	paymentID, parseErr := strconv.ParseInt(c.Param("id"), 10, 64)
	if parseErr != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	fileHeader, formErr := c.FormFile(proofFormField)
	if formErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, formErr).SetType(gin.ErrorTypeBind)
		return
	}
	if fileHeader.Size > maxProofBytes {
		c.AbortWithStatus(http.StatusRequestEntityTooLarge)
		return
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if _, ok := allowedProofTypes[contentType]; !ok {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "only jpeg, png and webp images are accepted"})
		return
	}

	file, openErr := fileHeader.Open()
	if openErr != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, openErr).SetType(gin.ErrorTypePrivate)
		return
	}
	defer func() { _ = file.Close() }()

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	proofRef, saveErr := h.proofStore.Save(reqCtx, contentType, file)
	if saveErr != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, saveErr).SetType(gin.ErrorTypePrivate)
		return
	}

	payment, err := h.svs.AttachProof(reqCtx, paymentID, proofRef, currentActor.UserID)
	if err != nil {
		// Прикрепление не прошло: сохраненный файл никому не принадлежит.
		_ = h.proofStore.Remove(c, proofRef)
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, convertPaymentResponse(payment))
}

// Confirm PUT RouteGroup + PaymentConfirmRoute. Только для администраторов.
func (h *PaymentsHandler) Confirm(c *gin.Context) {
	h.decide(c, domain.DecisionConfirm, "")
}

type RejectPaymentParams struct {
	AdminNotes string `binding:"max_bytes=1000" json:"adminNotes"`
}

// Reject PUT RouteGroup + PaymentRejectRoute. Только для администраторов.
func (h *PaymentsHandler) Reject(c *gin.Context) {
	var params RejectPaymentParams
	if c.Request.ContentLength > 0 {
		if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
			_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
			return
		}
	}
	h.decide(c, domain.DecisionReject, params.AdminNotes)
}

func (h *PaymentsHandler) decide(c *gin.Context, decision domain.DecisionType, reason string) {
	currentActor := getActorFromContext(c)

	paymentID, parseErr := strconv.ParseInt(c.Param("id"), 10, 64)
	if parseErr != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	payment, err := h.svs.Decide(reqCtx, paymentID, decision, reason, currentActor)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, convertPaymentResponse(payment))
}

// MyPayments GET RouteGroup + MyPaymentsRoute. История платежей текущего юзера
// с фильтрами по статусу и датам создания.
func (h *PaymentsHandler) MyPayments(c *gin.Context) {
	currentActor := getActorFromContext(c)

	filter, filterErr := parsePaymentFilter(c)
	if filterErr != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": filterErr.Error()})
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	payments, err := h.svs.ListByBuyer(reqCtx, currentActor.UserID, filter)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	response := make([]PaymentResponse, len(payments))
	for i := range payments {
		response[i] = *convertPaymentResponse(&payments[i])
	}
	c.JSON(http.StatusOK, response)
}

func parsePaymentFilter(c *gin.Context) (repoargs.PaymentFilter, error) {
	var filter repoargs.PaymentFilter

	if status := c.Query("status"); status != "" {
		switch domain.PaymentStatusType(status) {
		case domain.PaymentStatusPending, domain.PaymentStatusConfirmed, domain.PaymentStatusRejected:
			filter.Status = domain.PaymentStatusType(status)
		default:
			return filter, domain.NewValidationError("status", "unknown payment status")
		}
	}

	if startDate := c.Query("startDate"); startDate != "" {
		from, err := parseDateParam(startDate, false)
		if err != nil {
			return filter, domain.NewValidationError("startDate", "expected RFC3339 or YYYY-MM-DD")
		}
		filter.DateFrom = from
	}
	if endDate := c.Query("endDate"); endDate != "" {
		to, err := parseDateParam(endDate, true)
		if err != nil {
			return filter, domain.NewValidationError("endDate", "expected RFC3339 or YYYY-MM-DD")
		}
		filter.DateTo = to
	}
	return filter, nil
}

// parseDateParam принимает RFC3339 или дату без времени. Дата без времени в роли верхней
// границы трактуется включительно, до конца суток.
func parseDateParam(value string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func convertPaymentResponse(payment *domain.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:              payment.ID,
		OrderID:         payment.OrderID,
		Amount:          payment.Amount.InexactFloat64(),
		TransactionCode: payment.TransactionCode,
		Status:          payment.Status,
		ProofRef:        payment.ProofRef,
		CreatedAt:       payment.CreatedAt,
		ExpiresAt:       payment.ExpiresAt,
		ConfirmedAt:     payment.ConfirmedAt,
		RejectionReason: payment.RejectionReason,
	}
}

func convertBankQRResponse(bankQR *domain.BankQR) *BankQRResponse {
	if bankQR == nil {
		return nil
	}
	return &BankQRResponse{
		BankName:      bankQR.BankName,
		AccountName:   bankQR.AccountName,
		AccountNumber: bankQR.AccountNumber,
		QRImageRef:    bankQR.QRImageRef,
	}
}
