package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/coursehub-backend/internal/data/dberr"
	"github.com/yungbote/coursehub-backend/internal/data/repos"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type QuestionInput struct {
	CourseContentSubID uuid.UUID `json:"courseContentSubId" validate:"required"`
	Question           string    `json:"question" validate:"required,max=2000"`
	Options            []string  `json:"options" validate:"required,min=2,dive,required,max=500"`
	CorrectOption      int       `json:"correctOption" validate:"gte=0"`
	Point              int       `json:"point" validate:"omitempty,gt=0"`
	IsPublished        bool      `json:"isPublished"`
}

type QuestionUpdate struct {
	Question      *string  `json:"question" validate:"omitempty,min=1,max=2000"`
	Options       []string `json:"options" validate:"omitempty,min=2,dive,required,max=500"`
	CorrectOption *int     `json:"correctOption" validate:"omitempty,gte=0"`
	Point         *int     `json:"point" validate:"omitempty,gt=0"`
	IsPublished   *bool    `json:"isPublished"`
}

// StudentQuestion hides the correct answer.
type StudentQuestion struct {
	ID       uuid.UUID `json:"id"`
	Question string    `json:"question"`
	Options  []string  `json:"options"`
	Point    int       `json:"point"`
}

type QuestionService interface {
	Add(ctx context.Context, in QuestionInput) (*types.AssessmentQuestion, error)
	List(ctx context.Context, subID uuid.UUID) ([]*types.AssessmentQuestion, error)
	ListForStudent(ctx context.Context, subID uuid.UUID) ([]StudentQuestion, error)
	Get(ctx context.Context, id uuid.UUID) (*types.AssessmentQuestion, error)
	Update(ctx context.Context, id uuid.UUID, in QuestionUpdate) (*types.AssessmentQuestion, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type questionService struct {
	log          *logger.Logger
	courses      CourseService
	subRepo      repos.CourseContentSubRepo
	questionRepo repos.AssessmentQuestionRepo
	itemRepo     repos.OrderItemRepo
}

func NewQuestionService(
	log *logger.Logger,
	courses CourseService,
	subRepo repos.CourseContentSubRepo,
	questionRepo repos.AssessmentQuestionRepo,
	itemRepo repos.OrderItemRepo,
) QuestionService {
	return &questionService{
		log:          log.With("service", "QuestionService"),
		courses:      courses,
		subRepo:      subRepo,
		questionRepo: questionRepo,
		itemRepo:     itemRepo,
	}
}

var (
	errQuestionExists   = apierr.Conflict("question_exists", "Question already exists in this assessment")
	errQuestionNotFound = apierr.NotFound("question_not_found", "Question not found")
)

func (s *questionService) assessmentSub(ctx context.Context, subID uuid.UUID) (*types.CourseContentSub, error) {
	sub, err := s.subRepo.GetByID(dbctx.New(ctx), subID)
	if err != nil {
		return nil, internalErr("load sub", err)
	}
	if sub == nil {
		return nil, errSubNotFound
	}
	if sub.MediaType != types.MediaAssessment {
		return nil, apierr.BadRequest("not_assessment", "Questions can only be added to an assessment")
	}
	return sub, nil
}

func checkOptions(options []string, correct int) error {
	if len(options) < 2 {
		return apierr.BadRequest("invalid_options", "At least two options are required")
	}
	if correct < 0 || correct >= len(options) {
		return apierr.BadRequest("invalid_correct_option", "Correct option is out of range")
	}
	return nil
}

func (s *questionService) Add(ctx context.Context, in QuestionInput) (*types.AssessmentQuestion, error) {
	sub, err := s.assessmentSub(ctx, in.CourseContentSubID)
	if err != nil {
		return nil, err
	}
	if _, err := s.courses.OwnedCourse(ctx, sub.CourseID); err != nil {
		return nil, err
	}
	if err := checkOptions(in.Options, in.CorrectOption); err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	text := strings.TrimSpace(in.Question)
	exists, err := s.questionRepo.QuestionExists(dbc, sub.ID, text, uuid.Nil)
	if err != nil {
		return nil, internalErr("check question", err)
	}
	if exists {
		return nil, errQuestionExists
	}
	point := in.Point
	if point <= 0 {
		point = 1
	}
	q := &types.AssessmentQuestion{
		Question:           text,
		Options:            in.Options,
		CorrectOption:      in.CorrectOption,
		Point:              point,
		IsPublished:        in.IsPublished,
		CourseID:           sub.CourseID,
		CourseContentSubID: sub.ID,
	}
	if err := s.questionRepo.Create(dbc, q); err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, errQuestionExists
		}
		return nil, internalErr("create question", err)
	}
	return q, nil
}

func (s *questionService) List(ctx context.Context, subID uuid.UUID) ([]*types.AssessmentQuestion, error) {
	sub, err := s.assessmentSub(ctx, subID)
	if err != nil {
		return nil, err
	}
	if _, err := s.courses.OwnedCourse(ctx, sub.CourseID); err != nil {
		return nil, err
	}
	rows, err := s.questionRepo.ListBySub(dbctx.New(ctx), subID, false)
	if err != nil {
		return nil, internalErr("list questions", err)
	}
	return rows, nil
}

func (s *questionService) ListForStudent(ctx context.Context, subID uuid.UUID) ([]StudentQuestion, error) {
	rd, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	sub, err := s.assessmentSub(ctx, subID)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	bought, err := s.itemRepo.HasConfirmedPurchase(dbc, rd.UserID, sub.CourseID)
	if err != nil {
		return nil, internalErr("check purchase", err)
	}
	if !bought {
		return nil, errCourseForbidden
	}
	rows, err := s.questionRepo.ListBySub(dbc, subID, true)
	if err != nil {
		return nil, internalErr("list questions", err)
	}
	out := make([]StudentQuestion, 0, len(rows))
	for _, q := range rows {
		out = append(out, StudentQuestion{ID: q.ID, Question: q.Question, Options: q.Options, Point: q.Point})
	}
	return out, nil
}

func (s *questionService) owned(ctx context.Context, id uuid.UUID) (*types.AssessmentQuestion, error) {
	q, err := s.questionRepo.GetByID(dbctx.New(ctx), id)
	if err != nil {
		return nil, internalErr("load question", err)
	}
	if q == nil {
		return nil, errQuestionNotFound
	}
	if _, err := s.courses.OwnedCourse(ctx, q.CourseID); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *questionService) Get(ctx context.Context, id uuid.UUID) (*types.AssessmentQuestion, error) {
	return s.owned(ctx, id)
}

func (s *questionService) Update(ctx context.Context, id uuid.UUID, in QuestionUpdate) (*types.AssessmentQuestion, error) {
	q, err := s.owned(ctx, id)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	updates := map[string]any{}
	options := []string(q.Options)
	correct := q.CorrectOption
	if in.Options != nil {
		options = in.Options
	}
	if in.CorrectOption != nil {
		correct = *in.CorrectOption
	}
	if in.Options != nil || in.CorrectOption != nil {
		if err := checkOptions(options, correct); err != nil {
			return nil, err
		}
		if in.Options != nil {
			updates["options"] = datatypes.JSONSlice[string](options)
		}
		updates["correct_option"] = correct
	}
	if t := trimPtr(in.Question); t != nil && *t != "" {
		exists, err := s.questionRepo.QuestionExists(dbc, q.CourseContentSubID, *t, id)
		if err != nil {
			return nil, internalErr("check question", err)
		}
		if exists {
			return nil, errQuestionExists
		}
		updates["question"] = *t
	}
	if in.Point != nil {
		updates["point"] = *in.Point
	}
	if in.IsPublished != nil {
		updates["is_published"] = *in.IsPublished
	}
	if err := s.questionRepo.UpdateFields(dbc, id, updates); err != nil {
		return nil, internalErr("update question", err)
	}
	return s.owned(ctx, id)
}

func (s *questionService) Delete(ctx context.Context, id uuid.UUID) error {
	q, err := s.owned(ctx, id)
	if err != nil {
		return err
	}
	if q.IsPublished {
		return apierr.BadRequest("question_published", "A published question cannot be deleted")
	}
	if err := s.questionRepo.Delete(dbctx.New(ctx), id); err != nil {
		return internalErr("delete question", err)
	}
	return nil
}
