package engagement

import (
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
	"github.com/yungbote/coursehub-backend/internal/pkg/pagination"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

var ReviewOrderColumns = map[string]string{
	"createdAt": "created_at",
	"rating":    "rating",
}

type ReviewRepo interface {
	Create(dbc dbctx.Context, review *types.Review) error
	Exists(dbc dbctx.Context, userID, courseID uuid.UUID) (bool, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Review, error)
	ListForCourse(dbc dbctx.Context, courseID uuid.UUID, includeMuted bool, p pagination.Params) ([]*types.Review, int64, error)
	AverageRating(dbc dbctx.Context, courseID uuid.UUID, includeMuted bool) (float64, error)
	SetMuted(dbc dbctx.Context, id uuid.UUID, muted bool) error
}

type reviewRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewRepo(db *gorm.DB, baseLog *logger.Logger) ReviewRepo {
	return &reviewRepo{db: db, log: baseLog.With("repo", "ReviewRepo")}
}

func (r *reviewRepo) Create(dbc dbctx.Context, review *types.Review) error {
	return dbc.DB(r.db).Omit("User").Create(review).Error
}

func (r *reviewRepo) Exists(dbc dbctx.Context, userID, courseID uuid.UUID) (bool, error) {
	var count int64
	if err := dbc.DB(r.db).Model(&types.Review{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *reviewRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Review, error) {
	var rv types.Review
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&rv).Error; err != nil {
		return nil, err
	}
	if rv.ID == uuid.Nil {
		return nil, nil
	}
	return &rv, nil
}

func (r *reviewRepo) ListForCourse(dbc dbctx.Context, courseID uuid.UUID, includeMuted bool, p pagination.Params) ([]*types.Review, int64, error) {
	q := dbc.DB(r.db).Model(&types.Review{}).Where("course_id = ? AND review_for = ?", courseID, types.ReviewForCourse)
	if !includeMuted {
		q = q.Where("muted = ?", false)
	}
	q = q.Session(&gorm.Session{})
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}
	var out []*types.Review
	if err := p.Normalize(ReviewOrderColumns).Apply(q.Preload("User"), "").Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, count, nil
}

// AverageRating is rounded to one decimal place; 0 when there are no reviews.
func (r *reviewRepo) AverageRating(dbc dbctx.Context, courseID uuid.UUID, includeMuted bool) (float64, error) {
	q := dbc.DB(r.db).Model(&types.Review{}).Where("course_id = ? AND review_for = ?", courseID, types.ReviewForCourse)
	if !includeMuted {
		q = q.Where("muted = ?", false)
	}
	var avg float64
	if err := q.Select("COALESCE(AVG(rating), 0)").Row().Scan(&avg); err != nil {
		return 0, err
	}
	return math.Round(avg*10) / 10, nil
}

func (r *reviewRepo) SetMuted(dbc dbctx.Context, id uuid.UUID, muted bool) error {
	return dbc.DB(r.db).Model(&types.Review{}).Where("id = ?", id).Update("muted", muted).Error
}
