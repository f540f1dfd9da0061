package misblock

import (
	"time"
)

const (
	TokenSymbol         string = "MIS"
	TokenPrecision      int    = 4
	TokenPrecisionScale int64  = 10000
)

// Asset is an amount of an external token in its smallest unit.
type Asset struct {
	Amount int64
	Symbol string
}

// TransferNotification is the receipt of a transfer on the token contract.
// TxID is the token contract transaction id when the relay knows it.
type TransferNotification struct {
	TxID     string `json:"txId,omitempty"`
	From     string `json:"from"`
	To       string `json:"to"`
	Quantity Asset  `json:"quantity"`
	Memo     string `json:"memo"`
}

// Event is a committed ledger change fanned out to subscribers.
type Event struct {
	ID        string    `json:"id"`
	Channel   string    `json:"channel"`
	Type      string    `json:"type"`
	Subject   string    `json:"subject"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Proof struct {
	Type      string `json:"type"`
	Signature string `json:"signature"`
}

// SignedReview is what the companion app submits when posting a review.
type SignedReview struct {
	Owner    string `json:"owner"`
	Hospital string `json:"hospital"`
	ReviewID string `json:"reviewId"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Proof    *Proof `json:"proof,omitempty"`
}

// Message returns the byte string the review signature covers.
func (r SignedReview) Message() []byte {
	return []byte(r.Owner + r.Hospital + r.ReviewID + r.Title + r.Body)
}
