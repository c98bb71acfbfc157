package course

import "gorm.io/gorm"

// Module resource flags, as sent by the admin console
const (
	ResourceFlagTrue  = "TRUE"
	ResourceFlagFalse = "FALSE"
)

// Module is a subdivision of a course.
type Module struct {
	gorm.Model
	Title    string `json:"title" gorm:"type:text"`
	About    string `json:"about" gorm:"type:text"`
	Video    string `json:"video" gorm:"type:text"`
	Resource string `json:"resource" gorm:"type:varchar(6);default:'FALSE'"`
	CourseID uint   `json:"course" gorm:"column:course;index;not null"`

	Course Course `json:"-" gorm:"foreignKey:CourseID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// HasResources reports whether the module is flagged as carrying resources.
func (m Module) HasResources() bool {
	return m.Resource == ResourceFlagTrue
}
