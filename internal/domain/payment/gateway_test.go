package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snapbook/internal/config"
	"snapbook/internal/domain"
	"snapbook/internal/domain/booking"
)

func testMoMoConfig(endpoint string) config.MoMoConfig {
	return config.MoMoConfig{
		Endpoint:    endpoint,
		PartnerCode: "MOMOTEST",
		AccessKey:   "access",
		SecretKey:   "secret",
		RequestType: "captureWallet",
		Timeout:     2 * time.Second,
	}
}

func TestMoMoGateway_CreatePaymentSignsRequest(t *testing.T) {
	var got momoCreateBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"resultCode": 0,
			"message":    "Successful.",
			"payUrl":     "https://pay.test/x",
			"deeplink":   "momo://x",
		})
	}))
	defer srv.Close()

	gw := NewMoMoGateway(testMoMoConfig(srv.URL))
	resp, err := gw.CreatePayment(context.Background(), CreatePaymentRequest{
		Amount:    200000,
		OrderID:   "order-1",
		RequestID: "req-1",
		OrderInfo: "ABC_deposit",
		ReturnURL: "http://r",
		NotifyURL: "http://n",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.test/x", resp.PayURL)
	assert.Equal(t, "momo://x", resp.Deeplink)

	raw := "accessKey=access&amount=200000&extraData=&ipnUrl=http://n&orderId=order-1&orderInfo=ABC_deposit&partnerCode=MOMOTEST&redirectUrl=http://r&requestId=req-1&requestType=captureWallet"
	assert.Equal(t, Sign("secret", raw), got.Signature)
	assert.Equal(t, "captureWallet", got.RequestType)
}

func TestMoMoGateway_CreatePaymentRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"resultCode": 13, "message": "Merchant authentication failed."})
	}))
	defer srv.Close()

	_, err := NewMoMoGateway(testMoMoConfig(srv.URL)).CreatePayment(context.Background(), CreatePaymentRequest{Amount: 1, OrderID: "o"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Merchant authentication failed")
}

func TestMoMoGateway_VerifyCallback(t *testing.T) {
	gw := NewMoMoGateway(testMoMoConfig(""))
	p := callback("ABC_full", "1000000", "4088878653")
	p.Signature = Sign("secret", CallbackSignaturePayload("access", p))
	assert.NoError(t, gw.VerifyCallback(p))

	p.Amount = "1"
	assert.ErrorIs(t, gw.VerifyCallback(p), ErrInvalidSignature)

	unsigned := NewMoMoGateway(config.MoMoConfig{})
	assert.NoError(t, unsigned.VerifyCallback(p))
}

func TestParseIPN_NumericFields(t *testing.T) {
	body := []byte(`{"partnerCode":"MOMO","orderId":"o-1","requestId":"r-1","amount":200000,
		"orderInfo":"ABC_deposit","orderType":"momo_wallet","transId":4088878653,"resultCode":0,
		"message":"Successful.","payType":"credit","responseTime":1721720663942,"extraData":"","signature":"s"}`)

	p, err := ParseIPN(body)
	require.NoError(t, err)
	assert.Equal(t, "200000", p.Amount)
	assert.Equal(t, "4088878653", p.TransID)
	assert.Equal(t, "1721720663942", p.ResponseTime)
	assert.True(t, p.Succeeded())
	assert.Equal(t, "card", PaymentMethod(p.PayType))

	_, err = ParseIPN([]byte(`{not json`))
	assert.ErrorIs(t, err, ErrMalformedCallback)
}

func TestParseOrderInfo(t *testing.T) {
	code, opt, err := ParseOrderInfo(EncodeOrderInfo("SNAP1A2B3C4D", OptionReminder))
	require.NoError(t, err)
	assert.Equal(t, "SNAP1A2B3C4D", code)
	assert.Equal(t, OptionReminder, opt)

	for _, info := range []string{"", "ABC", "ABC_", "_full", "ABC_half", "A_B_full", "ABC-full"} {
		_, _, err := ParseOrderInfo(info)
		assert.ErrorIs(t, err, ErrMalformedOrderInfo, info)
	}
}

func TestPaymentMethod(t *testing.T) {
	cases := map[string]string{
		"credit":  "card",
		"napas":   "atm",
		"qr":      "momo_wallet",
		"webApp":  "momo_wallet",
		"app":     "momo_wallet",
		"miniapp": "momo_wallet",
		"":        "momo_wallet",
	}
	for in, want := range cases {
		assert.Equal(t, want, PaymentMethod(in), in)
	}
}

func TestOption_AmountsAndTransitions(t *testing.T) {
	b := &booking.Booking{TotalPrice: 1000000, PaymentStatus: domain.PaymentUnpaid, Status: domain.BookingPending}

	assert.Equal(t, int64(1000000), AmountFor(OptionFull, b))
	assert.Equal(t, int64(200000), AmountFor(OptionDeposit, b))
	assert.True(t, OptionDeposit.Allows(b))
	assert.False(t, OptionReminder.Allows(b))

	b.PaymentStatus = domain.PaymentDepositPaid
	b.AmountPaid = 200000
	assert.Equal(t, int64(800000), AmountFor(OptionReminder, b))
	assert.True(t, OptionReminder.Allows(b))

	b.Status = domain.BookingCancelled
	assert.False(t, OptionReminder.Allows(b))

	assert.Equal(t, 100, OptionFull.Percentage())
	assert.Equal(t, 20, OptionDeposit.Percentage())
	assert.Equal(t, 80, OptionReminder.Percentage())
}
