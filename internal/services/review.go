package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursehub-backend/internal/data/dberr"
	"github.com/yungbote/coursehub-backend/internal/data/repos"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
	"github.com/yungbote/coursehub-backend/internal/pkg/pagination"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type ReviewInput struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

type ReviewPage struct {
	pagination.Page[*types.Review]
	AvgRating float64 `json:"avgRating"`
}

type ReviewService interface {
	AddCourseReview(ctx context.Context, courseID uuid.UUID, in ReviewInput) (*types.Review, error)
	ViewCourseReviews(ctx context.Context, courseID uuid.UUID, p pagination.Params) (*ReviewPage, error)
	PublicCourseReviews(ctx context.Context, courseID uuid.UUID, p pagination.Params) (*ReviewPage, error)
	SetMuted(ctx context.Context, reviewID uuid.UUID, muted bool) (*types.Review, error)
}

type reviewService struct {
	db            *gorm.DB
	log           *logger.Logger
	courses       CourseService
	courseRepo    repos.CourseRepo
	reviewRepo    repos.ReviewRepo
	itemRepo      repos.OrderItemRepo
	notifications NotificationService
}

func NewReviewService(
	db *gorm.DB,
	log *logger.Logger,
	courses CourseService,
	courseRepo repos.CourseRepo,
	reviewRepo repos.ReviewRepo,
	itemRepo repos.OrderItemRepo,
	notifications NotificationService,
) ReviewService {
	return &reviewService{
		db:            db,
		log:           log.With("service", "ReviewService"),
		courses:       courses,
		courseRepo:    courseRepo,
		reviewRepo:    reviewRepo,
		itemRepo:      itemRepo,
		notifications: notifications,
	}
}

var (
	errReviewExists   = apierr.Conflict("review_exists", "You have already reviewed this course")
	errReviewNotFound = apierr.NotFound("review_not_found", "Review not found")
)

func (s *reviewService) AddCourseReview(ctx context.Context, courseID uuid.UUID, in ReviewInput) (*types.Review, error) {
	rd, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, apierr.BadRequest("invalid_rating", "Rating must be between 1 and 5")
	}
	dbc := dbctx.New(ctx)
	course, err := s.courseRepo.GetByID(dbc, courseID)
	if err != nil {
		return nil, internalErr("load course", err)
	}
	if course == nil || !course.IsPublished {
		return nil, errCourseNotFound
	}
	bought, err := s.itemRepo.HasConfirmedPurchase(dbc, rd.UserID, courseID)
	if err != nil {
		return nil, internalErr("check purchase", err)
	}
	if !bought {
		return nil, errCourseForbidden
	}
	exists, err := s.reviewRepo.Exists(dbc, rd.UserID, courseID)
	if err != nil {
		return nil, internalErr("check review", err)
	}
	if exists {
		return nil, errReviewExists
	}

	review := &types.Review{
		UserID:    rd.UserID,
		Rating:    in.Rating,
		Comment:   in.Comment,
		ReviewFor: types.ReviewForCourse,
		CourseID:  courseID,
	}
	var notices []*types.Notification
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.WithTx(ctx, tx)
		if err := s.reviewRepo.Create(txc, review); err != nil {
			return err
		}
		if course.Instructor != nil {
			id := course.Instructor.ID
			notices = []*types.Notification{{
				Title:     "Course review",
				Body:      fmt.Sprintf("%s rated your course [%s] %d/5", rd.FullName, course.Title, in.Rating),
				UserID:    &id,
				UserGroup: course.Instructor.Role,
			}}
		}
		return s.notifications.CreateBulk(txc, notices)
	})
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, errReviewExists
		}
		return nil, internalErr("create review", err)
	}
	s.notifications.Publish(ctx, notices)
	return review, nil
}

func (s *reviewService) page(dbc dbctx.Context, courseID uuid.UUID, includeMuted bool, p pagination.Params) (*ReviewPage, error) {
	rows, count, err := s.reviewRepo.ListForCourse(dbc, courseID, includeMuted, p)
	if err != nil {
		return nil, internalErr("list reviews", err)
	}
	avg, err := s.reviewRepo.AverageRating(dbc, courseID, includeMuted)
	if err != nil {
		return nil, internalErr("average rating", err)
	}
	return &ReviewPage{Page: pagination.NewPage(rows, count), AvgRating: avg}, nil
}

func (s *reviewService) ViewCourseReviews(ctx context.Context, courseID uuid.UUID, p pagination.Params) (*ReviewPage, error) {
	if _, err := s.courses.OwnedCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return s.page(dbctx.New(ctx), courseID, true, p)
}

func (s *reviewService) PublicCourseReviews(ctx context.Context, courseID uuid.UUID, p pagination.Params) (*ReviewPage, error) {
	dbc := dbctx.New(ctx)
	course, err := s.courseRepo.GetByID(dbc, courseID)
	if err != nil {
		return nil, internalErr("load course", err)
	}
	if course == nil || !course.IsPublished {
		return nil, errCourseNotFound
	}
	return s.page(dbc, courseID, false, p)
}

func (s *reviewService) SetMuted(ctx context.Context, reviewID uuid.UUID, muted bool) (*types.Review, error) {
	dbc := dbctx.New(ctx)
	review, err := s.reviewRepo.GetByID(dbc, reviewID)
	if err != nil {
		return nil, internalErr("load review", err)
	}
	if review == nil {
		return nil, errReviewNotFound
	}
	if _, err := s.courses.OwnedCourse(ctx, review.CourseID); err != nil {
		return nil, err
	}
	if review.Muted == muted {
		return review, nil
	}
	if err := s.reviewRepo.SetMuted(dbc, reviewID, muted); err != nil {
		return nil, internalErr("mute review", err)
	}
	review.Muted = muted
	s.log.Info("Review visibility changed", "review_id", reviewID, "muted", muted)
	return review, nil
}
