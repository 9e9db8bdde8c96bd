package domain

import (
	"github.com/yungbote/coursehub-backend/internal/domain/catalog"
	"github.com/yungbote/coursehub-backend/internal/domain/commerce"
	"github.com/yungbote/coursehub-backend/internal/domain/engagement"
	"github.com/yungbote/coursehub-backend/internal/domain/identity"
	"github.com/yungbote/coursehub-backend/internal/domain/jobs"
)

type Role = identity.Role

const (
	RoleAdmin      = identity.RoleAdmin
	RoleSubAdmin   = identity.RoleSubAdmin
	RoleInstructor = identity.RoleInstructor
	RoleStudent    = identity.RoleStudent
)

type User = identity.User

func NormalizeEmail(email string) string { return identity.NormalizeEmail(email) }

type Program = catalog.Program
type Category = catalog.Category
type Course = catalog.Course
type CourseContent = catalog.CourseContent
type CourseContentSub = catalog.CourseContentSub
type AssessmentQuestion = catalog.AssessmentQuestion
type MediaType = catalog.MediaType

const (
	MediaAudio      = catalog.MediaAudio
	MediaVideo      = catalog.MediaVideo
	MediaImage      = catalog.MediaImage
	MediaDocument   = catalog.MediaDocument
	MediaAssessment = catalog.MediaAssessment
)

type Transaction = commerce.Transaction
type Order = commerce.Order
type OrderItem = commerce.OrderItem

const (
	StatusPending   = commerce.StatusPending
	StatusConfirmed = commerce.StatusConfirmed
	StatusCancelled = commerce.StatusCancelled
	StatusRefunded  = commerce.StatusRefunded
)

type CourseRead = engagement.CourseRead
type AssessmentAttempt = engagement.AssessmentAttempt
type AssessmentResult = engagement.AssessmentResult
type Review = engagement.Review
type Notification = engagement.Notification

const ReviewForCourse = engagement.ReviewForCourse

type JobRun = jobs.JobRun

const (
	JobStatusQueued    = jobs.StatusQueued
	JobStatusRunning   = jobs.StatusRunning
	JobStatusSucceeded = jobs.StatusSucceeded
	JobStatusFailed    = jobs.StatusFailed
	JobStatusDead      = jobs.StatusDead

	JobTypeSendEmail = jobs.TypeSendEmail
)

// AllModels lists every persisted entity in dependency order.
func AllModels() []any {
	return []any{
		&User{},
		&Program{},
		&Category{},
		&Course{},
		&CourseContent{},
		&CourseContentSub{},
		&AssessmentQuestion{},
		&Transaction{},
		&Order{},
		&OrderItem{},
		&CourseRead{},
		&AssessmentAttempt{},
		&AssessmentResult{},
		&Review{},
		&Notification{},
		&JobRun{},
	}
}
