package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Payment status values.
const (
	PaymentStatusPending    = "pending"
	PaymentStatusProcessing = "processing" // handed to the gateway, awaiting result
	PaymentStatusSuccessful = "successful"
	PaymentStatusFailed     = "failed"
)

// Payment method values.
const (
	PaymentMethodPaystack     = "paystack"
	PaymentMethodFlutterwave  = "flutterwave"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCash         = "cash"
	PaymentMethodCard         = "card"
)

// Payment is a gateway transaction against a booking. The transaction
// reference stays nil until the gateway has been asked to initialize.
type Payment struct {
	gorm.Model
	BookingRef uint     `json:"-" gorm:"column:booking_id;not null;index"`
	Booking    *Booking `json:"booking,omitempty" gorm:"foreignKey:BookingRef"`

	Amount        decimal.Decimal `json:"amount" gorm:"type:numeric(15,2);not null"`
	Currency      string          `json:"currency" gorm:"type:varchar(10);default:'₦'"`
	PaymentMethod string          `json:"payment_method" gorm:"type:varchar(50);default:'paystack'"`

	TransactionReference *string        `json:"transaction_reference" gorm:"uniqueIndex"`
	GatewayResponse      datatypes.JSON `json:"gateway_response" gorm:"type:jsonb"`

	Status string     `json:"status" gorm:"type:varchar(20);default:'pending'"`
	PaidAt *time.Time `json:"paid_at"` // set only on success
}
