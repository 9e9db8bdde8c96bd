package engagement

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursehub-backend/internal/domain/catalog"
	"github.com/yungbote/coursehub-backend/internal/domain/identity"
)

// CourseRead marks a lesson as completed by a student.
type CourseRead struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseContentSubID uuid.UUID `gorm:"type:uuid;column:course_content_sub_id;not null;uniqueIndex:idx_course_read_sub_student" json:"courseContentSubId"`
	CourseID           uuid.UUID `gorm:"type:uuid;column:course_id;not null;index" json:"courseId"`
	StudentID          uuid.UUID `gorm:"type:uuid;column:student_id;not null;index;uniqueIndex:idx_course_read_sub_student" json:"studentId"`
	CreatedAt          time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt          time.Time `gorm:"not null" json:"updatedAt"`
}

func (CourseRead) TableName() string { return "course_read" }

func (r *CourseRead) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type AssessmentAttempt struct {
	ID                 uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID          uuid.UUID                   `gorm:"type:uuid;column:student_id;not null;index" json:"studentId"`
	QuestionID         uuid.UUID                   `gorm:"type:uuid;column:question_id;not null;index" json:"questionId"`
	Question           *catalog.AssessmentQuestion `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
	CourseContentSubID uuid.UUID                   `gorm:"type:uuid;column:course_content_sub_id;not null;index" json:"courseContentSubId"`
	Choice             int                         `gorm:"column:choice;not null" json:"choice"`
	IsCorrect          bool                        `gorm:"column:is_correct;not null;default:false" json:"isCorrect"`
	CreatedAt          time.Time                   `gorm:"not null;index" json:"createdAt"`
	UpdatedAt          time.Time                   `gorm:"not null" json:"updatedAt"`
}

func (AssessmentAttempt) TableName() string { return "assessment_attempt" }

func (a *AssessmentAttempt) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type AssessmentResult struct {
	ID                 uuid.UUID                 `gorm:"type:uuid;primaryKey" json:"id"`
	CourseContentSubID uuid.UUID                 `gorm:"type:uuid;column:course_content_sub_id;not null;uniqueIndex:idx_assessment_result_sub_student" json:"courseContentSubId"`
	CourseContentSub   *catalog.CourseContentSub `gorm:"foreignKey:CourseContentSubID" json:"courseContentSub,omitempty"`
	CourseID           uuid.UUID                 `gorm:"type:uuid;column:course_id;not null;index" json:"courseId"`
	StudentID          uuid.UUID                 `gorm:"type:uuid;column:student_id;not null;index;uniqueIndex:idx_assessment_result_sub_student" json:"studentId"`
	Score              int                       `gorm:"column:score;not null" json:"score"`
	Total              int                       `gorm:"column:total;not null" json:"total"`
	Percent            float64                   `gorm:"column:percent;not null" json:"percent"`
	CreatedAt          time.Time                 `gorm:"not null;index" json:"createdAt"`
	UpdatedAt          time.Time                 `gorm:"not null" json:"updatedAt"`
}

func (AssessmentResult) TableName() string { return "assessment_result" }

func (r *AssessmentResult) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

const ReviewForCourse = "course"

type Review struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;column:user_id;not null;uniqueIndex:idx_review_user_course" json:"userId"`
	User      *identity.User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Rating    int            `gorm:"column:rating;not null" json:"rating"`
	Comment   string         `gorm:"column:comment" json:"comment"`
	ReviewFor string         `gorm:"column:review_for;not null" json:"reviewFor"`
	CourseID  uuid.UUID      `gorm:"type:uuid;column:course_id;not null;index;uniqueIndex:idx_review_user_course" json:"courseId"`
	Muted     bool           `gorm:"column:muted;not null;default:false" json:"muted"`
	CreatedAt time.Time      `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"not null" json:"updatedAt"`
}

func (Review) TableName() string { return "review" }

func (r *Review) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Notification with a nil UserID is a broadcast to everyone in UserGroup.
type Notification struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string        `gorm:"column:title;not null" json:"title"`
	Body      string        `gorm:"column:body;not null" json:"body"`
	Read      bool          `gorm:"column:is_read;not null;default:false;index" json:"read"`
	UserID    *uuid.UUID    `gorm:"type:uuid;column:user_id;index" json:"userId,omitempty"`
	UserGroup identity.Role `gorm:"column:user_group;not null;index" json:"userGroup"`
	CreatedAt time.Time     `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time     `gorm:"not null" json:"updatedAt"`
}

func (Notification) TableName() string { return "notification" }

func (n *Notification) BeforeCreate(*gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
