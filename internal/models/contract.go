package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contract is one row of the contracts table. Rows are written by the billing
// side; the dispatcher only reads them.
type Contract struct {
	ID            int             `json:"id"`
	ContractStart time.Time       `json:"contract_start"`
	ContractEnd   time.Time       `json:"contract_end"`
	Amount        decimal.Decimal `json:"amount"`
	// CreatedAt is nil for rows inserted with an explicit NULL.
	CreatedAt *time.Time `json:"created_at,omitempty"`
}
