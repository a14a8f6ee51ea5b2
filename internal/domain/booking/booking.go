package booking

import (
	"time"

	"github.com/google/uuid"
)

// Booking is a patient's claim on one slot of one treatment on one date.
// Bookings are never deleted; the only mutation is marking them paid.
type Booking struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`

	Treatment string `gorm:"column:treatment;type:varchar(200);not null;index" json:"treatment"`
	// Date is an opaque calendar-date label matched by exact string
	// equality, mirroring how clients render it (e.g. "2024-01-05").
	Date    string `gorm:"column:date;type:varchar(40);not null;index" json:"date"`
	Patient string `gorm:"column:patient;type:varchar(255);not null;index" json:"patient"`
	Slot    string `gorm:"column:slot;type:varchar(40);not null" json:"slot"`

	Paid          bool   `gorm:"column:paid;not null;default:false" json:"paid"`
	TransactionID string `gorm:"column:transaction_id;type:varchar(100)" json:"transactionId,omitempty"`
}

func (Booking) TableName() string {
	return "clinical.bookings"
}

type SubmitBookingCommand struct {
	Treatment string
	Date      string
	Patient   string
	Slot      string
}

// AdmissionResult reports the outcome of a booking submission. A duplicate
// intent is a normal result, not an error: Accepted is false and Booking
// carries the previously admitted record.
type AdmissionResult struct {
	Accepted bool     `json:"accepted"`
	Booking  *Booking `json:"booking"`
}
