package account

import "time"

// TransferRequest is the request body for a funds transfer. Destination and
// amount guards are part of the workflow's validation so their failures come
// back field-scoped.
type TransferRequest struct {
	DestinationAccountNumber string `json:"destination_account_number"`
	Amount                   string `json:"amount"`
	Description              string `json:"description"`
	IdempotencyKey           string `json:"idempotency_key" validate:"omitempty,uuid4"`
}

// AccountResponse is the account snapshot shape.
type AccountResponse struct {
	ID               string    `json:"id"`
	AccountNumber    string    `json:"account_number"`
	Balance          string    `json:"balance"`
	FormattedBalance string    `json:"formatted_balance"`
	CreatedAt        time.Time `json:"created_at"`
}

// TransactionResponse is one statement row.
type TransactionResponse struct {
	ID              string    `json:"id"`
	Amount          string    `json:"amount"`
	FormattedAmount string    `json:"formatted_amount"`
	Description     string    `json:"description,omitempty"`
	Status          string    `json:"status"`
	Direction       string    `json:"direction"`
	SenderName      string    `json:"sender_name,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
