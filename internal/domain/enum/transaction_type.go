package enum

import (
	"database/sql/driver"
)

// TransactionType tags a ledger entry
type TransactionType string

const (
	TransactionTypePayment TransactionType = "payment"
	TransactionTypeCredit  TransactionType = "credit"
	TransactionTypeDebit   TransactionType = "debit"
)

func (t TransactionType) String() string {
	return string(t)
}

func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypePayment, TransactionTypeCredit, TransactionTypeDebit:
		return true
	}
	return false
}

func (t TransactionType) Value() (driver.Value, error) {
	return string(t), nil
}

func (t *TransactionType) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*t = TransactionType(v)
	case []byte:
		*t = TransactionType(string(v))
	}
	return nil
}
