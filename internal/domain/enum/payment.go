package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// PaymentType is the direction of money: credit is money in, debit is money out
type PaymentType string

const (
	PaymentTypeCredit PaymentType = "credit"
	PaymentTypeDebit  PaymentType = "debit"
)

func (t PaymentType) String() string {
	return string(t)
}

func (t PaymentType) IsValid() bool {
	return t == PaymentTypeCredit || t == PaymentTypeDebit
}

func (t PaymentType) Value() (driver.Value, error) {
	return string(t), nil
}

func (t *PaymentType) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*t = PaymentType(v)
	case []byte:
		*t = PaymentType(string(v))
	}
	return nil
}

// PaymentSubType classifies who or what a payment is for
type PaymentSubType string

const (
	PaymentSubTypeCustomer        PaymentSubType = "customer"
	PaymentSubTypeVendor          PaymentSubType = "vendor"
	PaymentSubTypeCashDeposit     PaymentSubType = "cash-deposit"
	PaymentSubTypeCashWithdrawal  PaymentSubType = "cash-withdrawal"
	PaymentSubTypeBankCharges     PaymentSubType = "bank-charges"
	PaymentSubTypeElectricityBill PaymentSubType = "electricity-bill"
	PaymentSubTypeMiscellaneous   PaymentSubType = "miscellaneous"
)

// PaymentSubTypes lists every accepted sub type
var PaymentSubTypes = []PaymentSubType{
	PaymentSubTypeCustomer,
	PaymentSubTypeVendor,
	PaymentSubTypeCashDeposit,
	PaymentSubTypeCashWithdrawal,
	PaymentSubTypeBankCharges,
	PaymentSubTypeElectricityBill,
	PaymentSubTypeMiscellaneous,
}

func (t PaymentSubType) String() string {
	return string(t)
}

func (t PaymentSubType) IsValid() bool {
	for _, s := range PaymentSubTypes {
		if s == t {
			return true
		}
	}
	return false
}

func (t PaymentSubType) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

func (t *PaymentSubType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*t = PaymentSubType(str)
	return nil
}

func (t PaymentSubType) Value() (driver.Value, error) {
	return string(t), nil
}

func (t *PaymentSubType) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*t = PaymentSubType(v)
	case []byte:
		*t = PaymentSubType(string(v))
	}
	return nil
}

// PaymentMethod is how the money moved
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodBank   PaymentMethod = "bank"
	PaymentMethodUPI    PaymentMethod = "upi"
	PaymentMethodCheque PaymentMethod = "cheque"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodOther  PaymentMethod = "other"
)

// PaymentMethods lists every accepted method
var PaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodBank,
	PaymentMethodUPI,
	PaymentMethodCheque,
	PaymentMethodCard,
	PaymentMethodOther,
}

func (m PaymentMethod) String() string {
	return string(m)
}

func (m PaymentMethod) IsValid() bool {
	for _, pm := range PaymentMethods {
		if pm == m {
			return true
		}
	}
	return false
}

func (m PaymentMethod) Value() (driver.Value, error) {
	return string(m), nil
}

func (m *PaymentMethod) Scan(value interface{}) error {
	if value == nil {
		*m = PaymentMethodCash
		return nil
	}
	switch v := value.(type) {
	case string:
		*m = PaymentMethod(v)
	case []byte:
		*m = PaymentMethod(string(v))
	}
	return nil
}

// PaymentStatus is the clearing state of a payment. Only completed payments count toward outstanding.
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusFailed    PaymentStatus = "failed"
)

func (s PaymentStatus) String() string {
	return string(s)
}

func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusPending || s == PaymentStatusFailed
}

func (s PaymentStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *PaymentStatus) Scan(value interface{}) error {
	if value == nil {
		*s = PaymentStatusCompleted
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = PaymentStatus(v)
	case []byte:
		*s = PaymentStatus(string(v))
	}
	return nil
}
