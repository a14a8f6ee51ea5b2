package treatment

import (
	"time"

	"github.com/google/uuid"
)

// Treatment is a bookable service with a fixed per-day slot catalog. The
// catalog is seeded administratively and is read-only to the booking core.
type Treatment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`

	Name string `gorm:"column:name;type:varchar(200);uniqueIndex;not null" json:"name"`
	// Price in the smallest currency unit (cents).
	Price int64    `gorm:"column:price;not null" json:"price"`
	Slots []string `gorm:"column:slots;serializer:json" json:"slots"`
}

func (Treatment) TableName() string {
	return "clinical.treatments"
}

// DayAvailability is the derived per-date view of a treatment: the catalog
// with every slot already booked for that date removed. It never aliases the
// underlying catalog slice.
type DayAvailability struct {
	Name      string   `json:"name"`
	Price     int64    `json:"price"`
	OpenSlots []string `json:"openSlots"`
}
