package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	domainerr "github.com/quicrefill/customer-service/internal/domain/error"
	coreport "github.com/quicrefill/customer-service/internal/domain/port/core"
	gwport "github.com/quicrefill/customer-service/internal/domain/port/gateway"
	paymentUseCase "github.com/quicrefill/customer-service/internal/domain/usecase/payment"
	walletUseCase "github.com/quicrefill/customer-service/internal/domain/usecase/wallet"
	"github.com/quicrefill/customer-service/internal/infrastructure/adapter/api/dto"
	"github.com/quicrefill/customer-service/internal/infrastructure/adapter/api/middleware"
)

// PaymentHandler handles the authenticated payment endpoints
type PaymentHandler struct {
	paymentService *paymentUseCase.Service
	walletService  *walletUseCase.Service
	logger         coreport.Logger
}

// NewPaymentHandler creates a new payment handler instance
func NewPaymentHandler(
	paymentService *paymentUseCase.Service,
	walletService *walletUseCase.Service,
	logger coreport.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		walletService:  walletService,
		logger:         logger,
	}
}

// Initiate handles POST /api/payments/initiate
func (h *PaymentHandler) Initiate(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		writeError(c, h.logger, domainerr.ErrUnauthorized, nil)
		return
	}

	var req dto.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	payment, err := h.paymentService.Initiate(c.Request.Context(), paymentUseCase.InitiateRequest{
		UserID:                   principal.UserID,
		Email:                    principal.Email,
		VendorID:                 req.VendorID,
		Amount:                   req.Amount,
		Method:                   req.PaymentMethod,
		ProductType:              req.ProductType,
		ServiceType:              req.ServiceType,
		WalletTopUp:              req.IsWalletTopUp,
		ItemID:                   req.ItemID,
		VoucherCode:              req.VoucherCode,
		MeterNumber:              req.MeterNumber,
		DestinationBankCode:      req.DestinationBankCode,
		DestinationAccountNumber: req.DestinationAccountNumber,
		TransactionRef:           req.TransactionRef,
		Card:                     req.CardDetails.ToEntity(),
	})
	if err != nil {
		writeError(c, h.logger, err, map[string]any{
			"user_id":         principal.UserID,
			"transaction_ref": req.TransactionRef,
		})
		return
	}

	c.JSON(http.StatusCreated, dto.InitiatePaymentResponse{
		Message: "Payment initiated",
		Payment: dto.PaymentFromEntity(payment),
	})
}

// Verify handles POST /api/payments/verify
func (h *PaymentHandler) Verify(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		writeError(c, h.logger, domainerr.ErrUnauthorized, nil)
		return
	}

	var req dto.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	result, err := h.paymentService.ValidateCardPayment(
		c.Request.Context(), req.TransactionRef, req.FlwRef, req.TokenID, req.OTP,
	)
	if err != nil {
		writeError(c, h.logger, err, map[string]any{
			"user_id":         principal.UserID,
			"transaction_ref": req.TransactionRef,
		})
		return
	}

	c.JSON(http.StatusOK, dto.VerificationResponse{
		Message: "Payment verification completed",
		Result:  result,
	})
}

// Authorize handles POST /api/payments/authorize
func (h *PaymentHandler) Authorize(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		writeError(c, h.logger, domainerr.ErrUnauthorized, nil)
		return
	}

	var req dto.AuthorizePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	card := req.AuthorizationData.ToEntity()
	result, err := h.paymentService.Authorize3DSCard(
		c.Request.Context(), req.TransactionRef, req.FlwRef, *card,
	)
	if err != nil {
		writeError(c, h.logger, err, map[string]any{
			"user_id":         principal.UserID,
			"transaction_ref": req.TransactionRef,
		})
		return
	}

	c.JSON(http.StatusOK, dto.VerificationResponse{
		Message: "Card authorization completed",
		Result:  result,
	})
}

// Refund handles POST /api/payments/refund
func (h *PaymentHandler) Refund(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		writeError(c, h.logger, domainerr.ErrUnauthorized, nil)
		return
	}

	var req dto.RefundPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	refund, err := h.paymentService.Refund(
		c.Request.Context(), req.TransactionRef, principal.UserID, req.Amount, req.PaymentReference,
	)
	if err != nil {
		writeError(c, h.logger, err, map[string]any{
			"user_id":         principal.UserID,
			"transaction_ref": req.TransactionRef,
		})
		return
	}

	c.JSON(http.StatusOK, dto.RefundResponse{
		Message:        "Refund processed",
		TransactionRef: refund.TransactionRef,
		Amount:         refund.Amount,
	})
}

// Cancel handles POST /api/payments/cancel
func (h *PaymentHandler) Cancel(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		writeError(c, h.logger, domainerr.ErrUnauthorized, nil)
		return
	}

	var req dto.CancelPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	payment, err := h.paymentService.Cancel(c.Request.Context(), req.TransactionRef, principal.UserID)
	if err != nil {
		writeError(c, h.logger, err, map[string]any{
			"user_id":         principal.UserID,
			"transaction_ref": req.TransactionRef,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Payment cancelled",
		"transaction": dto.PaymentFromEntity(payment),
	})
}

// History handles GET /api/payments/transaction-history
func (h *PaymentHandler) History(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		writeError(c, h.logger, domainerr.ErrUnauthorized, nil)
		return
	}

	query := paymentUseCase.HistoryQuery{
		Status: c.Query("status"),
		Method: c.Query("paymentMethod"),
	}

	var err error
	if query.Page, err = parsePositiveQueryInt(c, "page"); err != nil {
		writeError(c, h.logger, err, map[string]any{"user_id": principal.UserID})
		return
	}
	if query.Limit, err = parsePositiveQueryInt(c, "limit"); err != nil {
		writeError(c, h.logger, err, map[string]any{"user_id": principal.UserID})
		return
	}

	if raw := c.Query("startDate"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(c, h.logger, domainerr.ErrInvalidRequest, map[string]any{"startDate": raw})
			return
		}
		query.StartDate = &t
	}
	if raw := c.Query("endDate"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(c, h.logger, domainerr.ErrInvalidRequest, map[string]any{"endDate": raw})
			return
		}
		// Inclusive end of day
		t = t.Add(24*time.Hour - time.Nanosecond)
		query.EndDate = &t
	}

	page, err := h.paymentService.History(c.Request.Context(), principal.UserID, query)
	if err != nil {
		writeError(c, h.logger, err, map[string]any{"user_id": principal.UserID})
		return
	}

	c.JSON(http.StatusOK, page)
}

// MethodStatus handles GET /api/payments/method-status
func (h *PaymentHandler) MethodStatus(c *gin.Context) {
	method := c.Query("paymentMethod")
	if method == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Missing required query parameter: paymentMethod",
		})
		return
	}

	info, err := h.paymentService.MethodStatus(c.Request.Context(), method)
	if err != nil {
		writeError(c, h.logger, err, map[string]any{"payment_method": method})
		return
	}

	c.JSON(http.StatusOK, info)
}

// VerifyBVN handles POST /api/payments/verify-bvn
func (h *PaymentHandler) VerifyBVN(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		writeError(c, h.logger, domainerr.ErrUnauthorized, nil)
		return
	}

	var req dto.VerifyBVNRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	result, err := h.paymentService.VerifyBVN(c.Request.Context(), gwport.BVNRequest{
		UserID:         principal.UserID,
		BVN:            req.BVN,
		BankName:       req.BankName,
		AccountNumber:  req.AccountNumber,
		TransactionRef: req.TransactionRef,
	})
	if err != nil {
		writeError(c, h.logger, err, map[string]any{"user_id": principal.UserID})
		return
	}

	c.JSON(http.StatusOK, result)
}

// WalletBalance handles GET /api/payments/wallet/balance
func (h *PaymentHandler) WalletBalance(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		writeError(c, h.logger, domainerr.ErrUnauthorized, nil)
		return
	}

	balance, err := h.walletService.Balance(c.Request.Context(), principal.UserID)
	if err != nil {
		writeError(c, h.logger, err, map[string]any{"user_id": principal.UserID})
		return
	}

	c.JSON(http.StatusOK, dto.WalletBalanceResponse{
		UserID:  principal.UserID,
		Balance: balance,
	})
}

// parsePositiveQueryInt parses an optional positive integer query parameter.
// Absent parameters return 0 so the usecase applies its documented defaults.
func parsePositiveQueryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, domainerr.ErrInvalidRequest
	}
	return value, nil
}
