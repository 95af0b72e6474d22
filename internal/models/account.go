package models

// BrokerageAccount links an external Tinkoff account to the user who first
// reported it. Rows are created on first sight and never updated.
type BrokerageAccount struct {
	AccountID string `json:"account_id"`
	UserID    int    `json:"user_id"`
}
