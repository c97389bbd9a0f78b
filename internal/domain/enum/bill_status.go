package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// BillStatus represents the settlement state of a bill
type BillStatus string

const (
	BillStatusPending   BillStatus = "pending"
	BillStatusPartial   BillStatus = "partial"
	BillStatusPaid      BillStatus = "paid"
	BillStatusCancelled BillStatus = "cancelled"
)

func (s BillStatus) String() string {
	return string(s)
}

// IsValid reports whether s is a known bill status
func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusPending, BillStatusPartial, BillStatusPaid, BillStatusCancelled:
		return true
	}
	return false
}

func (s BillStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (s *BillStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = BillStatus(str)
	return nil
}

func (s BillStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *BillStatus) Scan(value interface{}) error {
	if value == nil {
		*s = BillStatusPending
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = BillStatus(v)
	case []byte:
		*s = BillStatus(string(v))
	}
	return nil
}
