package entities

import "time"

// ChainTransaction is an incoming transfer observed on the blockchain
type ChainTransaction struct {
	Hash        string
	AmountNano  int64
	FromAddress string
	Timestamp   time.Time
	Memo        string
}

// TransferReceipt identifies an outgoing transfer handed to the wallet.
// The reference is synthetic (wallet seqno based), not a confirmed
// transaction hash.
type TransferReceipt struct {
	Reference string
}

// VerifiedPayment is the result of matching an expected payment against a
// chain transaction and durably claiming its hash.
type VerifiedPayment struct {
	TxHash      string
	AmountNano  int64
	FromAddress string
	ReceivedAt  time.Time
}
