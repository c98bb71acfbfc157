package course

import "gorm.io/gorm"

// Resource is a downloadable document attached to a module.
type Resource struct {
	gorm.Model
	Title    string `json:"title" gorm:"type:text"`
	Resource string `json:"resource" gorm:"type:text"`
	ModuleID uint   `json:"module" gorm:"column:module;index;not null"`

	Module Module `json:"-" gorm:"foreignKey:ModuleID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}
