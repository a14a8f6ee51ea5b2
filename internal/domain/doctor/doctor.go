package doctor

import (
	"time"

	"github.com/google/uuid"
)

type Doctor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`

	Name      string `gorm:"column:name;type:varchar(200);not null" json:"name"`
	Email     string `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	Specialty string `gorm:"column:specialty;type:varchar(200)" json:"specialty"`
	ImageURL  string `gorm:"column:image_url;type:text" json:"img,omitempty"`
}

func (Doctor) TableName() string {
	return "clinical.doctors"
}

type AddDoctorCommand struct {
	Name      string
	Email     string
	Specialty string
	ImageURL  string
}
