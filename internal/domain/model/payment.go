package model

// Payment is a charge issued for an order.
type Payment struct {
	ID              int64
	OrderID         string
	Price           float64
	PixQRCode       string
	PixQRCodeBase64 string
}

// Payment result message types.
const (
	MessageTypePaymentSuccess = "MSG_PAYMENT_SUCCESS"
	MessageTypePaymentFail    = "MSG_PAYMENT_FAIL"
)

// PaymentMessage is an asynchronous payment outcome notification.
type PaymentMessage struct {
	Type    string         `json:"type"`
	Sender  string         `json:"sender"`
	Target  string         `json:"target"`
	Payload PaymentPayload `json:"payload"`
}

type PaymentPayload struct {
	OrderID string `json:"orderId"`
}
