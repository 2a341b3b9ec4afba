package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"snapbook/internal/config"
)

// CreatePaymentRequest is what the gateway needs to start a payment.
type CreatePaymentRequest struct {
	Amount      int64
	OrderID     string
	RequestID   string
	OrderInfo   string
	ReturnURL   string
	NotifyURL   string
	PaymentType string
	ExtraData   string
}

type CreatePaymentResponse struct {
	PayURL   string
	Deeplink string
}

// Gateway starts payments and authenticates their callbacks.
type Gateway interface {
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResponse, error)
	VerifyCallback(p CallbackParams) error
}

// MoMoGateway talks to the MoMo v2 create endpoint. Requests and callbacks
// are signed with HMAC-SHA256 over a fixed key order.
type MoMoGateway struct {
	cfg    config.MoMoConfig
	client *http.Client
}

func NewMoMoGateway(cfg config.MoMoConfig) *MoMoGateway {
	return &MoMoGateway{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

type momoCreateBody struct {
	PartnerCode string `json:"partnerCode"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IpnURL      string `json:"ipnUrl"`
	RequestType string `json:"requestType"`
	ExtraData   string `json:"extraData"`
	Lang        string `json:"lang"`
	Signature   string `json:"signature"`
}

type momoCreateResult struct {
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
	PayURL     string `json:"payUrl"`
	Deeplink   string `json:"deeplink"`
}

func (g *MoMoGateway) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResponse, error) {
	requestType := req.PaymentType
	if requestType == "" {
		requestType = g.cfg.RequestType
	}
	body := momoCreateBody{
		PartnerCode: g.cfg.PartnerCode,
		RequestID:   req.RequestID,
		Amount:      req.Amount,
		OrderID:     req.OrderID,
		OrderInfo:   req.OrderInfo,
		RedirectURL: req.ReturnURL,
		IpnURL:      req.NotifyURL,
		RequestType: requestType,
		ExtraData:   req.ExtraData,
		Lang:        "vi",
	}
	body.Signature = g.sign(fmt.Sprintf(
		"accessKey=%s&amount=%d&extraData=%s&ipnUrl=%s&orderId=%s&orderInfo=%s&partnerCode=%s&redirectUrl=%s&requestId=%s&requestType=%s",
		g.cfg.AccessKey, body.Amount, body.ExtraData, body.IpnURL, body.OrderID, body.OrderInfo,
		body.PartnerCode, body.RedirectURL, body.RequestID, body.RequestType,
	))

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("momo create: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("momo create: read body: %w", err)
	}
	var out momoCreateResult
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("momo create: status %d: decode: %w", resp.StatusCode, err)
	}
	if out.ResultCode != 0 || out.PayURL == "" {
		return nil, fmt.Errorf("momo create: result %d: %s", out.ResultCode, out.Message)
	}
	return &CreatePaymentResponse{PayURL: out.PayURL, Deeplink: out.Deeplink}, nil
}

// VerifyCallback recomputes the callback signature. Callbacks are accepted
// unsigned only when no secret key is configured.
func (g *MoMoGateway) VerifyCallback(p CallbackParams) error {
	if g.cfg.SecretKey == "" {
		return nil
	}
	want := g.sign(CallbackSignaturePayload(g.cfg.AccessKey, p))
	if !hmac.Equal([]byte(want), []byte(p.Signature)) {
		return ErrInvalidSignature
	}
	return nil
}

// CallbackSignaturePayload is the raw string the gateway signs for return
// and IPN callbacks.
func CallbackSignaturePayload(accessKey string, p CallbackParams) string {
	return "accessKey=" + accessKey +
		"&amount=" + p.Amount +
		"&extraData=" + p.ExtraData +
		"&message=" + p.Message +
		"&orderId=" + p.OrderID +
		"&orderInfo=" + p.OrderInfo +
		"&orderType=" + p.OrderType +
		"&partnerCode=" + p.PartnerCode +
		"&payType=" + p.PayType +
		"&requestId=" + p.RequestID +
		"&responseTime=" + p.ResponseTime +
		"&resultCode=" + p.ResultCode +
		"&transId=" + p.TransID
}

func (g *MoMoGateway) sign(raw string) string {
	return Sign(g.cfg.SecretKey, raw)
}

// Sign is hex(HMAC-SHA256(secret, raw)).
func Sign(secret, raw string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

// newRequestID is unique per gateway call.
func newRequestID(orderID string) string {
	return orderID + "-" + strconv.FormatInt(time.Now().UnixNano(), 36)
}
