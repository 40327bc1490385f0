package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	"github.com/quicrefill/customer-service/internal/domain/entity"
	domainerr "github.com/quicrefill/customer-service/internal/domain/error"
	coreport "github.com/quicrefill/customer-service/internal/domain/port/core"
	paymentUseCase "github.com/quicrefill/customer-service/internal/domain/usecase/payment"
	webhookUseCase "github.com/quicrefill/customer-service/internal/domain/usecase/webhook"
	"github.com/quicrefill/customer-service/internal/infrastructure/adapter/api/dto"
	fwgateway "github.com/quicrefill/customer-service/internal/infrastructure/adapter/gateway"
)

// CallbackHandler receives the unauthenticated gateway surfaces: the signed
// server-to-server webhook and the browser redirect callbacks.
type CallbackHandler struct {
	paymentService *paymentUseCase.Service
	processor      *webhookUseCase.Processor
	webhookSecret  string
	frontendBase   string
	logger         coreport.Logger
}

// NewCallbackHandler creates a callback handler. frontendBase is the origin
// browser callbacks redirect to; trailing slashes are stripped.
func NewCallbackHandler(
	paymentService *paymentUseCase.Service,
	processor *webhookUseCase.Processor,
	webhookSecret string,
	frontendBase string,
	logger coreport.Logger,
) *CallbackHandler {
	return &CallbackHandler{
		paymentService: paymentService,
		processor:      processor,
		webhookSecret:  webhookSecret,
		frontendBase:   strings.TrimRight(frontendBase, "/"),
		logger:         logger,
	}
}

// Webhook handles POST /api/payments/webhook. The signature is verified over
// the exact raw request bytes before anything else happens; a failed check
// mutates nothing. Processing errors after a valid signature still return 200
// so the vendor does not retry deliveries that will never succeed.
func (h *CallbackHandler) Webhook(c *gin.Context) {
	rawBody, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Unable to read request body",
		})
		return
	}

	signature := c.GetHeader("verif-hash")
	if !webhookUseCase.VerifySignature(rawBody, signature, h.webhookSecret) {
		h.logger.Warn("Webhook signature verification failed", map[string]any{
			"client_ip":     c.ClientIP(),
			"has_signature": signature != "",
			"body_bytes":    len(rawBody),
		})
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrUnauthorized),
			Message: "Invalid webhook signature",
		})
		return
	}

	result, err := h.processor.Process(c.Request.Context(), rawBody)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"message": "Webhook received; reconciliation deferred",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Webhook processed",
		"result":  result,
	})
}

// Callback handles GET /api/payments/callback, the browser's return from the
// gateway's hosted page. It always answers with a redirect; a browser mid
// payment flow must never land on a JSON error body.
func (h *CallbackHandler) Callback(c *gin.Context) {
	ref := callbackRef(c)
	if ref == "" {
		h.redirectError(c, "unknown", "Missing transaction reference")
		return
	}

	result, err := h.reconcileCallback(c, ref)
	if err != nil {
		h.logger.Warn("Browser callback reconciliation failed", map[string]any{
			"transaction_ref": ref,
			"error":           err.Error(),
		})
		h.redirectError(c, ref, sanitizedCallbackMessage(err))
		return
	}

	h.redirectForResult(c, result)
}

// CashOnDelivery handles GET /api/payments/callback/cod, the delivery
// confirmation return. A settled delivery redirects like the other browser
// callbacks; a missing reference or a payment that is not PAY_ON_DELIVERY
// answers 400 so a misrouted confirmation is visible to the caller.
func (h *CallbackHandler) CashOnDelivery(c *gin.Context) {
	ref := callbackRef(c)
	if ref == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Missing transaction reference",
		})
		return
	}

	succeeded := strings.EqualFold(c.Query("status"), "successful") ||
		strings.EqualFold(c.Query("status"), "completed")

	result, err := h.paymentService.SettleCashOnDelivery(c.Request.Context(), ref, succeeded)
	if err != nil {
		if errors.Is(err, domainerr.ErrInvalidRequest) {
			writeError(c, h.logger, err, map[string]any{"transaction_ref": ref})
			return
		}
		h.logger.Warn("Cash on delivery settlement failed", map[string]any{
			"transaction_ref": ref,
			"error":           err.Error(),
		})
		h.redirectError(c, ref, sanitizedCallbackMessage(err))
		return
	}

	h.redirectForResult(c, result)
}

// Error handles GET /api/payments/callback/error, the gateway's failure
// return. Reconciliation runs best effort so a definitive gateway verdict is
// still recorded, but the browser is redirected no matter what.
func (h *CallbackHandler) Error(c *gin.Context) {
	ref := callbackRef(c)
	if ref == "" {
		h.redirectError(c, "unknown", "Payment could not be completed")
		return
	}

	if _, err := h.paymentService.Verify(c.Request.Context(), ref); err != nil {
		h.logger.Warn("Error callback reconciliation failed", map[string]any{
			"transaction_ref": ref,
			"error":           err.Error(),
		})
	}

	h.redirectError(c, ref, "Payment could not be completed")
}

// reconcileCallback picks the reconciliation path for a browser return. A
// pending-OTP charge response embedded in the redirect means the charge still
// needs OTP validation, not a plain verify.
func (h *CallbackHandler) reconcileCallback(c *gin.Context, ref string) (*entity.VerificationResult, error) {
	if blob := c.Query("response"); blob != "" {
		decoded, err := url.QueryUnescape(blob)
		if err == nil && gjson.Valid(decoded) {
			parsed := gjson.Parse(decoded)
			chargeCode := parsed.Get("data.chargeResponseCode").String()
			if chargeCode == "" {
				chargeCode = parsed.Get("chargeResponseCode").String()
			}
			if chargeCode == fwgateway.PendingOTPChargeCode {
				flwRef := parsed.Get("data.flwRef").String()
				if flwRef == "" {
					flwRef = parsed.Get("flwRef").String()
				}
				return h.paymentService.ValidateCardPayment(c.Request.Context(), ref, flwRef, "", "")
			}
		}
	}

	return h.paymentService.Verify(c.Request.Context(), ref)
}

// redirectForResult maps a reconciliation outcome onto the frontend page the
// browser should land on.
func (h *CallbackHandler) redirectForResult(c *gin.Context, result *entity.VerificationResult) {
	switch result.Status {
	case entity.StatusCompleted:
		h.redirect(c, "/payment/success", url.Values{
			"tx_ref": {result.TransactionRef},
		})
	case entity.StatusPending:
		path := "/payment/pending"
		switch result.Method {
		case entity.MethodTransfer:
			path = "/payment/pending/transfer"
		case entity.MethodVirtualAccount:
			path = "/payment/pending/virtual-account"
		}
		h.redirect(c, path, url.Values{
			"tx_ref": {result.TransactionRef},
		})
	default:
		message := result.Message
		if message == "" {
			message = "Payment was not successful"
		}
		h.redirectError(c, result.TransactionRef, message)
	}
}

func (h *CallbackHandler) redirectError(c *gin.Context, ref, message string) {
	h.redirect(c, "/payment/error", url.Values{
		"tx_ref":  {ref},
		"message": {message},
	})
}

func (h *CallbackHandler) redirect(c *gin.Context, path string, query url.Values) {
	target := h.frontendBase + path
	if encoded := query.Encode(); encoded != "" {
		target += "?" + encoded
	}
	c.Redirect(http.StatusFound, target)
}

// callbackRef extracts the transaction reference the gateway echoes back.
// Flutterwave uses tx_ref; some integrations send transaction_id.
func callbackRef(c *gin.Context) string {
	if ref := c.Query("tx_ref"); ref != "" {
		return ref
	}
	return c.Query("transaction_id")
}

// sanitizedCallbackMessage keeps internal failure detail out of redirect URLs
// while preserving actionable client errors.
func sanitizedCallbackMessage(err error) string {
	if httpStatusFor(err) >= http.StatusInternalServerError {
		return "Payment verification failed"
	}
	return err.Error()
}
