package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/quicrefill/customer-service/internal/domain/entity"
	errs "github.com/quicrefill/customer-service/internal/domain/error"
	coreport "github.com/quicrefill/customer-service/internal/domain/port/core"
	gwport "github.com/quicrefill/customer-service/internal/domain/port/gateway"
	"github.com/tidwall/gjson"
)

// Vendor contract constants. These are Flutterwave-specific magic values and
// stay confined to this adapter; the orchestrator only sees gwport.Status.
const (
	// PendingOTPChargeCode is the charge response code the vendor returns
	// when a card charge is parked on an OTP/3DS challenge.
	PendingOTPChargeCode = "02"

	vendorStatusSuccessful = "successful"
	vendorStatusPending    = "pending"
	vendorStatusFailed     = "failed"
)

// Config holds the vendor connection settings
type Config struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

// FlutterwaveClient implements gwport.Client against the Flutterwave v3 API
type FlutterwaveClient struct {
	config     Config
	httpClient *http.Client
	logger     coreport.Logger
}

// NewFlutterwaveClient creates a new Flutterwave gateway client
func NewFlutterwaveClient(config Config, logger coreport.Logger) *FlutterwaveClient {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &FlutterwaveClient{
		config: config,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Charge starts a generic charge. The request body varies by method; card
// details pass straight through and are never logged or retained.
func (c *FlutterwaveClient) Charge(ctx context.Context, req gwport.ChargeRequest) (*gwport.ChargeResult, error) {
	payload := map[string]interface{}{
		"tx_ref":   req.TransactionRef,
		"amount":   req.Amount,
		"currency": req.Currency,
		"email":    req.Email,
	}
	if req.RedirectURL != "" {
		payload["redirect_url"] = req.RedirectURL
	}
	if req.Narration != "" {
		payload["narration"] = req.Narration
	}

	var path string
	switch req.Method {
	case entity.MethodCard:
		path = "/charges?type=card"
		if req.Card != nil {
			payload["card_number"] = req.Card.Number
			payload["cvv"] = req.Card.CVV
			payload["expiry_month"] = req.Card.ExpiryMonth
			payload["expiry_year"] = req.Card.ExpiryYear
			if req.Card.PIN != "" {
				payload["authorization"] = map[string]interface{}{
					"mode": "pin",
					"pin":  req.Card.PIN,
				}
			}
		}
	case entity.MethodTransfer:
		path = "/charges?type=bank_transfer"
	case entity.MethodVirtualAccount:
		path = "/virtual-account-numbers"
		payload["is_permanent"] = false
	default:
		// Monnify, pay-on-delivery and similar methods settle out of band;
		// the vendor only records the intent.
		path = "/charges?type=bank_transfer"
	}

	body, statusCode, err := c.post(ctx, path, payload, "charge", req.TransactionRef)
	if err != nil {
		return nil, err
	}

	return c.parseChargeResult(body, statusCode, "charge", req.TransactionRef)
}

// PayBill starts an electricity bill payment
func (c *FlutterwaveClient) PayBill(ctx context.Context, req gwport.BillRequest) (*gwport.ChargeResult, error) {
	payload := map[string]interface{}{
		"tx_ref":         req.TransactionRef,
		"amount":         req.Amount,
		"currency":       req.Currency,
		"type":           "electricity",
		"customer":       req.MeterNumber,
		"bank_code":      req.DestinationBankCode,
		"account_number": req.DestinationAccountNumber,
	}

	body, statusCode, err := c.post(ctx, "/bills", payload, "pay_bill", req.TransactionRef)
	if err != nil {
		return nil, err
	}

	return c.parseChargeResult(body, statusCode, "pay_bill", req.TransactionRef)
}

// VerifyTransaction asks the vendor for the authoritative charge status
func (c *FlutterwaveClient) VerifyTransaction(ctx context.Context, transactionRef string) (*gwport.VerifyResult, error) {
	path := fmt.Sprintf("/transactions/verify_by_reference?tx_ref=%s", transactionRef)

	body, statusCode, err := c.get(ctx, path, "verify", transactionRef)
	if err != nil {
		return nil, err
	}

	return c.parseVerifyResult(body, statusCode, "verify", transactionRef)
}

// ValidateCharge submits an OTP for a charge parked on an OTP challenge
func (c *FlutterwaveClient) ValidateCharge(ctx context.Context, gatewayRef, otp string) (*gwport.VerifyResult, error) {
	payload := map[string]interface{}{
		"flw_ref": gatewayRef,
		"otp":     otp,
	}

	body, statusCode, err := c.post(ctx, "/validate-charge", payload, "validate_charge", gatewayRef)
	if err != nil {
		return nil, err
	}

	return c.parseVerifyResult(body, statusCode, "validate_charge", gatewayRef)
}

// AuthorizeCharge completes a 3DS challenge with fresh card authorization data
func (c *FlutterwaveClient) AuthorizeCharge(ctx context.Context, transactionRef, gatewayRef string, card entity.CardDetails) (*gwport.ChargeResult, error) {
	payload := map[string]interface{}{
		"tx_ref":       transactionRef,
		"flw_ref":      gatewayRef,
		"card_number":  card.Number,
		"cvv":          card.CVV,
		"expiry_month": card.ExpiryMonth,
		"expiry_year":  card.ExpiryYear,
		"authorization": map[string]interface{}{
			"mode": "pin",
			"pin":  card.PIN,
		},
	}
	if card.BillingZip != "" {
		payload["authorization"] = map[string]interface{}{
			"mode":            "avs_noauth",
			"billing_zip":     card.BillingZip,
			"billing_city":    "",
			"billing_address": "",
		}
	}

	body, statusCode, err := c.post(ctx, "/charges?type=card", payload, "authorize", transactionRef)
	if err != nil {
		return nil, err
	}

	return c.parseChargeResult(body, statusCode, "authorize", transactionRef)
}

// Refund requests a (possibly partial) refund against a settled charge
func (c *FlutterwaveClient) Refund(ctx context.Context, gatewayRef string, amount string) error {
	payload := map[string]interface{}{
		"amount": amount,
	}

	path := fmt.Sprintf("/transactions/%s/refund", gatewayRef)
	body, statusCode, err := c.post(ctx, path, payload, "refund", gatewayRef)
	if err != nil {
		return err
	}

	if gjson.GetBytes(body, "status").String() != "success" {
		message := gjson.GetBytes(body, "message").String()
		return errs.NewGatewayError("refund", gatewayRef, statusCode, message, errs.ErrGatewayDeclined)
	}

	return nil
}

// MethodStatus queries availability of a payment method. The vendor has no
// dedicated availability endpoint, so availability reflects which methods
// this integration supports end to end.
func (c *FlutterwaveClient) MethodStatus(ctx context.Context, method entity.PaymentMethod) (*gwport.MethodStatusInfo, error) {
	normalized, err := entity.NormalizePaymentMethod(string(method))
	if err != nil {
		return nil, err
	}

	info := &gwport.MethodStatusInfo{
		Method:    normalized,
		Available: true,
	}

	switch normalized {
	case entity.MethodMonnify:
		info.Available = false
		info.Message = "MONNIFY is not enabled on this integration"
	case entity.MethodPayOnDelivery:
		info.Message = "collection happens at delivery time"
	}

	return info, nil
}

// ResolveBVN delegates identity-linking verification to the vendor
func (c *FlutterwaveClient) ResolveBVN(ctx context.Context, req gwport.BVNRequest) (*gwport.BVNResult, error) {
	payload := map[string]interface{}{
		"bvn":            req.BVN,
		"bank_name":      req.BankName,
		"account_number": req.AccountNumber,
		"reference":      req.TransactionRef,
	}

	body, statusCode, err := c.post(ctx, "/bvn/verifications", payload, "resolve_bvn", req.TransactionRef)
	if err != nil {
		return nil, err
	}

	if gjson.GetBytes(body, "status").String() != "success" {
		message := gjson.GetBytes(body, "message").String()
		c.logger.Warn("BVN verification rejected by vendor", map[string]any{
			"user_id":     req.UserID,
			"http_status": statusCode,
		})
		return &gwport.BVNResult{Verified: false, Message: message}, nil
	}

	return &gwport.BVNResult{
		Verified: true,
		Message:  gjson.GetBytes(body, "message").String(),
	}, nil
}

// post sends a JSON POST to the vendor and returns the raw response body
func (c *FlutterwaveClient) post(ctx context.Context, path string, payload map[string]interface{}, operation, ref string) ([]byte, int, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to encode %s request: %w", operation, err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(encoded), operation, ref)
}

// get sends a GET to the vendor and returns the raw response body
func (c *FlutterwaveClient) get(ctx context.Context, path, operation, ref string) ([]byte, int, error) {
	return c.do(ctx, http.MethodGet, path, nil, operation, ref)
}

func (c *FlutterwaveClient) do(ctx context.Context, method, path string, body io.Reader, operation, ref string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build %s request: %w", operation, err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport failures are retryable; the charge may or may not have
		// landed, verification decides later.
		c.logger.Error("Gateway request failed", map[string]any{
			"operation": operation,
			"ref":       ref,
			"error":     err.Error(),
		})
		return nil, 0, errs.NewGatewayError(operation, ref, 0, "vendor unreachable", errs.ErrGatewayUnavailable)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, errs.NewGatewayError(operation, ref, resp.StatusCode, "failed to read vendor response", errs.ErrGatewayUnavailable)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.logger.Error("Gateway rejected credentials", map[string]any{
			"operation": operation,
			"ref":       ref,
		})
		return nil, resp.StatusCode, errs.NewGatewayError(operation, ref, resp.StatusCode, "vendor rejected credentials", errs.ErrUnauthorized)
	case resp.StatusCode >= 500:
		c.logger.Error("Gateway server error", map[string]any{
			"operation":   operation,
			"ref":         ref,
			"http_status": resp.StatusCode,
		})
		return nil, resp.StatusCode, errs.NewGatewayError(operation, ref, resp.StatusCode, "vendor server error", errs.ErrGatewayUnavailable)
	}

	return respBody, resp.StatusCode, nil
}

// parseChargeResult maps a vendor charge response onto the port contract
func (c *FlutterwaveClient) parseChargeResult(body []byte, statusCode int, operation, ref string) (*gwport.ChargeResult, error) {
	envelope := gjson.GetBytes(body, "status").String()
	message := gjson.GetBytes(body, "message").String()

	if envelope != "success" {
		if statusCode >= 400 {
			return nil, errs.NewGatewayError(operation, ref, statusCode, message, errs.ErrGatewayDeclined)
		}
		return nil, errs.NewGatewayError(operation, ref, statusCode, message, errs.ErrGatewayUnavailable)
	}

	data := gjson.GetBytes(body, "data")

	result := &gwport.ChargeResult{
		GatewayRef: data.Get("flw_ref").String(),
		Status:     mapVendorStatus(data.Get("status").String()),
		AuthURL:    gjson.GetBytes(body, "meta.authorization.redirect").String(),
		Message:    message,
	}

	// Pending OTP/3DS sub-state is flagged by the vendor's condition code,
	// or by an explicit otp authorization mode.
	chargeCode := data.Get("chargeResponseCode").String()
	authMode := gjson.GetBytes(body, "meta.authorization.mode").String()
	if chargeCode == PendingOTPChargeCode || authMode == "otp" || (authMode == "pin" && result.Status == gwport.StatusPending) {
		result.RequiresOTP = true
		result.Status = gwport.StatusPending
	}

	// Transfer and virtual account flows hand back account instructions
	if transfer := gjson.GetBytes(body, "meta.authorization"); transfer.Exists() && transfer.Get("transfer_account").Exists() {
		result.AccountInfo = fmt.Sprintf("%s %s (%s)",
			transfer.Get("transfer_bank").String(),
			transfer.Get("transfer_account").String(),
			transfer.Get("transfer_note").String())
	}
	if data.Get("account_number").Exists() {
		result.AccountInfo = fmt.Sprintf("%s %s",
			data.Get("bank_name").String(),
			data.Get("account_number").String())
	}

	return result, nil
}

// parseVerifyResult maps a vendor verification response onto the port contract
func (c *FlutterwaveClient) parseVerifyResult(body []byte, statusCode int, operation, ref string) (*gwport.VerifyResult, error) {
	envelope := gjson.GetBytes(body, "status").String()
	message := gjson.GetBytes(body, "message").String()

	if envelope != "success" {
		if statusCode == http.StatusNotFound {
			return nil, errs.ErrPaymentNotFound
		}
		if statusCode >= 400 {
			return nil, errs.NewGatewayError(operation, ref, statusCode, message, errs.ErrGatewayDeclined)
		}
		return nil, errs.NewGatewayError(operation, ref, statusCode, message, errs.ErrGatewayUnavailable)
	}

	data := gjson.GetBytes(body, "data")

	result := &gwport.VerifyResult{
		TransactionRef: data.Get("tx_ref").String(),
		GatewayRef:     data.Get("flw_ref").String(),
		Status:         mapVendorStatus(data.Get("status").String()),
		Amount:         data.Get("amount").String(),
		RawMethod:      data.Get("payment_type").String(),
		Message:        message,
	}

	if data.Get("chargeResponseCode").String() == PendingOTPChargeCode {
		result.RequiresOTP = true
		result.Status = gwport.StatusPending
	}

	return result, nil
}

// mapVendorStatus translates the vendor's status strings into the port's set
func mapVendorStatus(raw string) gwport.Status {
	switch raw {
	case vendorStatusSuccessful, "success":
		return gwport.StatusSucceeded
	case vendorStatusFailed, "error":
		return gwport.StatusFailed
	case vendorStatusPending, "":
		return gwport.StatusPending
	default:
		return gwport.StatusPending
	}
}
