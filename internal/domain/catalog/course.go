package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/coursehub-backend/internal/domain/identity"
)

type Course struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string           `gorm:"column:title;not null;uniqueIndex:idx_course_category_title" json:"title"`
	ShortDesc    string           `gorm:"column:short_desc" json:"shortDesc"`
	FullDesc     string           `gorm:"column:full_desc" json:"fullDesc"`
	Price        float64          `gorm:"column:price;type:numeric(12,2);not null;default:0" json:"price"`
	Discount     int              `gorm:"column:discount;not null;default:0" json:"discount"`
	IsPublished  bool             `gorm:"column:is_published;not null;default:false;index" json:"isPublished"`
	CoverImage   string           `gorm:"column:cover_image" json:"coverImage,omitempty"`
	InstructorID uuid.UUID        `gorm:"type:uuid;column:instructor_id;not null;index" json:"instructorId"`
	Instructor   *identity.User   `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
	CategoryID   uuid.UUID        `gorm:"type:uuid;column:category_id;not null;index;uniqueIndex:idx_course_category_title" json:"categoryId"`
	Category     *Category        `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Contents     []*CourseContent `gorm:"foreignKey:CourseID" json:"contents,omitempty"`
	CreatedAt    time.Time        `gorm:"not null;index" json:"createdAt"`
	UpdatedAt    time.Time        `gorm:"not null" json:"updatedAt"`
}

func (Course) TableName() string { return "course" }

func (c *Course) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type CourseContent struct {
	ID        uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string              `gorm:"column:title;not null" json:"title"`
	CourseID  uuid.UUID           `gorm:"type:uuid;column:course_id;not null;index" json:"courseId"`
	Subs      []*CourseContentSub `gorm:"foreignKey:CourseContentID" json:"subs,omitempty"`
	CreatedAt time.Time           `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time           `gorm:"not null" json:"updatedAt"`
}

func (CourseContent) TableName() string { return "course_content" }

func (c *CourseContent) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type MediaType string

const (
	MediaAudio      MediaType = "audio"
	MediaVideo      MediaType = "video"
	MediaImage      MediaType = "image"
	MediaDocument   MediaType = "document"
	MediaAssessment MediaType = "assessment"
)

func (m MediaType) Valid() bool {
	switch m {
	case MediaAudio, MediaVideo, MediaImage, MediaDocument, MediaAssessment:
		return true
	}
	return false
}

// CourseContentSub is a single lesson inside a content section.
type CourseContentSub struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Order           int       `gorm:"column:position;not null;index" json:"order"`
	Title           string    `gorm:"column:title;not null" json:"title"`
	CourseID        uuid.UUID `gorm:"type:uuid;column:course_id;not null;index" json:"courseId"`
	CourseContentID uuid.UUID `gorm:"type:uuid;column:course_content_id;not null;index" json:"courseContentId"`
	Duration        int       `gorm:"column:duration;not null;default:0" json:"duration"`
	Media           string    `gorm:"column:media" json:"media,omitempty"`
	PreviewURL      string    `gorm:"column:preview_url" json:"previewUrl,omitempty"`
	MediaType       MediaType `gorm:"column:media_type;not null;index" json:"mediaType"`
	CreatedAt       time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"not null" json:"updatedAt"`
}

func (CourseContentSub) TableName() string { return "course_content_sub" }

func (s *CourseContentSub) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type AssessmentQuestion struct {
	ID                 uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Question           string                      `gorm:"column:question;not null" json:"question"`
	Options            datatypes.JSONSlice[string] `gorm:"column:options" json:"options"`
	CorrectOption      int                         `gorm:"column:correct_option;not null" json:"correctOption"`
	Point              int                         `gorm:"column:point;not null;default:1" json:"point"`
	IsPublished        bool                        `gorm:"column:is_published;not null;default:false;index" json:"isPublished"`
	CourseID           uuid.UUID                   `gorm:"type:uuid;column:course_id;not null;index" json:"courseId"`
	CourseContentSubID uuid.UUID                   `gorm:"type:uuid;column:course_content_sub_id;not null;index" json:"courseContentSubId"`
	CreatedAt          time.Time                   `gorm:"not null;index" json:"createdAt"`
	UpdatedAt          time.Time                   `gorm:"not null" json:"updatedAt"`
}

func (AssessmentQuestion) TableName() string { return "assessment_question" }

func (q *AssessmentQuestion) BeforeCreate(*gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
