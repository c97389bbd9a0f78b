package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// ChallanStatus represents the payment state of a delivery challan
type ChallanStatus string

const (
	ChallanStatusUnpaid    ChallanStatus = "unpaid"
	ChallanStatusPartial   ChallanStatus = "partial"
	ChallanStatusPaid      ChallanStatus = "paid"
	ChallanStatusCancelled ChallanStatus = "cancelled"
	ChallanStatusBilled    ChallanStatus = "billed"
)

func (s ChallanStatus) String() string {
	return string(s)
}

// IsValid reports whether s is a known challan status
func (s ChallanStatus) IsValid() bool {
	switch s {
	case ChallanStatusUnpaid, ChallanStatusPartial, ChallanStatusPaid, ChallanStatusCancelled, ChallanStatusBilled:
		return true
	}
	return false
}

// Billable reports whether a challan in this status can still be pulled into a bill
func (s ChallanStatus) Billable() bool {
	return s != ChallanStatusCancelled && s != ChallanStatusBilled
}

func (s ChallanStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (s *ChallanStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = ChallanStatus(str)
	return nil
}

func (s ChallanStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *ChallanStatus) Scan(value interface{}) error {
	if value == nil {
		*s = ChallanStatusUnpaid
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = ChallanStatus(v)
	case []byte:
		*s = ChallanStatus(string(v))
	}
	return nil
}
