package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Program struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"column:title;uniqueIndex;not null" json:"title"`
	Description string    `gorm:"column:description" json:"description"`
	IsPublished bool      `gorm:"column:is_published;not null;default:false;index" json:"isPublished"`
	CreatedAt   time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null" json:"updatedAt"`
}

func (Program) TableName() string { return "program" }

func (p *Program) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"column:title;not null;uniqueIndex:idx_category_program_title" json:"title"`
	Description string    `gorm:"column:description" json:"description"`
	IsPublished bool      `gorm:"column:is_published;not null;default:false;index" json:"isPublished"`
	ProgramID   uuid.UUID `gorm:"type:uuid;column:program_id;not null;index;uniqueIndex:idx_category_program_title" json:"programId"`
	Program     *Program  `gorm:"foreignKey:ProgramID" json:"program,omitempty"`
	CreatedAt   time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null" json:"updatedAt"`
}

func (Category) TableName() string { return "category" }

func (c *Category) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
