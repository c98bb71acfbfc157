package course

import (
	"adconnect/models"

	"gorm.io/gorm"
)

// Course is a sellable content unit sold through exactly one package.
type Course struct {
	gorm.Model
	Title       string `json:"title" gorm:"type:varchar(191);uniqueIndex"`
	Description string `json:"description" gorm:"type:text"`
	Preview     string `json:"preview" gorm:"type:text"`
	PackageID   uint   `json:"package" gorm:"column:package;index;not null"`

	Package models.Package `json:"-" gorm:"foreignKey:PackageID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}
