package payment

import (
	"encoding/json"
	"strconv"
	"strings"
)

// CallbackParams are the gateway's return-URL query or IPN body fields.
// Values are kept as received so the signature can be recomputed.
type CallbackParams struct {
	PartnerCode  string `json:"partnerCode" form:"partnerCode"`
	OrderID      string `json:"orderId" form:"orderId"`
	RequestID    string `json:"requestId" form:"requestId"`
	Amount       string `json:"amount" form:"amount"`
	OrderInfo    string `json:"orderInfo" form:"orderInfo"`
	OrderType    string `json:"orderType" form:"orderType"`
	TransID      string `json:"transId" form:"transId"`
	ResultCode   string `json:"resultCode" form:"resultCode"`
	Message      string `json:"message" form:"message"`
	PayType      string `json:"payType" form:"payType"`
	ResponseTime string `json:"responseTime" form:"responseTime"`
	ExtraData    string `json:"extraData" form:"extraData"`
	Signature    string `json:"signature" form:"signature"`
}

// ipnBody accepts the IPN JSON, where numeric fields arrive as numbers.
type ipnBody struct {
	PartnerCode  string      `json:"partnerCode"`
	OrderID      string      `json:"orderId"`
	RequestID    string      `json:"requestId"`
	Amount       json.Number `json:"amount"`
	OrderInfo    string      `json:"orderInfo"`
	OrderType    string      `json:"orderType"`
	TransID      json.Number `json:"transId"`
	ResultCode   json.Number `json:"resultCode"`
	Message      string      `json:"message"`
	PayType      string      `json:"payType"`
	ResponseTime json.Number `json:"responseTime"`
	ExtraData    string      `json:"extraData"`
	Signature    string      `json:"signature"`
}

// ParseIPN decodes an IPN JSON body.
func ParseIPN(body []byte) (CallbackParams, error) {
	var b ipnBody
	if err := json.Unmarshal(body, &b); err != nil {
		return CallbackParams{}, ErrMalformedCallback
	}
	return CallbackParams{
		PartnerCode:  b.PartnerCode,
		OrderID:      b.OrderID,
		RequestID:    b.RequestID,
		Amount:       b.Amount.String(),
		OrderInfo:    b.OrderInfo,
		OrderType:    b.OrderType,
		TransID:      b.TransID.String(),
		ResultCode:   b.ResultCode.String(),
		Message:      b.Message,
		PayType:      b.PayType,
		ResponseTime: b.ResponseTime.String(),
		ExtraData:    b.ExtraData,
		Signature:    b.Signature,
	}, nil
}

// Succeeded reports the gateway's success code.
func (p CallbackParams) Succeeded() bool {
	return p.ResultCode == "0"
}

// AmountValue parses the paid amount in VND.
func (p CallbackParams) AmountValue() (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(p.Amount), 10, 64)
	if err != nil || v <= 0 {
		return 0, ErrMalformedCallback
	}
	return v, nil
}

func (p CallbackParams) validate() error {
	if strings.TrimSpace(p.TransID) == "" || strings.TrimSpace(p.ResultCode) == "" || strings.TrimSpace(p.OrderInfo) == "" {
		return ErrMalformedCallback
	}
	_, err := p.AmountValue()
	return err
}

// PaymentMethod maps the gateway payType to how the customer paid.
func PaymentMethod(payType string) string {
	switch strings.ToLower(strings.TrimSpace(payType)) {
	case "credit":
		return "card"
	case "napas":
		return "atm"
	default:
		return "momo_wallet"
	}
}
