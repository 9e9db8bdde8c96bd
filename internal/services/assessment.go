package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
	"github.com/yungbote/coursehub-backend/internal/pkg/pagination"
	"github.com/yungbote/coursehub-backend/internal/pkg/pricing"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type Answer struct {
	QuestionID uuid.UUID `json:"questionId" validate:"required"`
	Choice     int       `json:"choice" validate:"gte=0"`
}

type AttemptInput struct {
	CourseContentSubID uuid.UUID `json:"courseContentSubId" validate:"required"`
	Answers            []Answer  `json:"answers" validate:"required,min=1,dive"`
}

type AttemptReview struct {
	Attempts []*types.AssessmentAttempt `json:"attempts"`
	Result   *types.AssessmentResult    `json:"result"`
}

type AssessmentService interface {
	// Attempt scores the caller's answers for one assessment lesson of courseID.
	Attempt(ctx context.Context, courseID uuid.UUID, in AttemptInput) (*types.AssessmentResult, error)
	AttemptsBySub(ctx context.Context, subID uuid.UUID) (*AttemptReview, error)
	ResultsForCourse(ctx context.Context, courseID uuid.UUID) ([]*types.AssessmentResult, error)
	Results(ctx context.Context, filter repos.ResultFilter, p pagination.Params) (pagination.Page[*types.AssessmentResult], error)
	CountDone(ctx context.Context, courseID uuid.UUID) (int64, error)
}

type assessmentService struct {
	db            *gorm.DB
	log           *logger.Logger
	courseRepo    repos.CourseRepo
	subRepo       repos.CourseContentSubRepo
	questionRepo  repos.AssessmentQuestionRepo
	attemptRepo   repos.AssessmentAttemptRepo
	resultRepo    repos.AssessmentResultRepo
	notifications NotificationService
}

func NewAssessmentService(
	db *gorm.DB,
	log *logger.Logger,
	courseRepo repos.CourseRepo,
	subRepo repos.CourseContentSubRepo,
	questionRepo repos.AssessmentQuestionRepo,
	attemptRepo repos.AssessmentAttemptRepo,
	resultRepo repos.AssessmentResultRepo,
	notifications NotificationService,
) AssessmentService {
	return &assessmentService{
		db:            db,
		log:           log.With("service", "AssessmentService"),
		courseRepo:    courseRepo,
		subRepo:       subRepo,
		questionRepo:  questionRepo,
		attemptRepo:   attemptRepo,
		resultRepo:    resultRepo,
		notifications: notifications,
	}
}

func (s *assessmentService) Attempt(ctx context.Context, courseID uuid.UUID, in AttemptInput) (*types.AssessmentResult, error) {
	rd, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	if len(in.Answers) == 0 {
		return nil, apierr.BadRequest("empty_attempt", "At least one answer is required")
	}
	dbc := dbctx.New(ctx)
	sub, err := s.subRepo.GetByID(dbc, in.CourseContentSubID)
	if err != nil {
		return nil, internalErr("load sub", err)
	}
	if sub == nil || sub.CourseID != courseID {
		return nil, errSubNotFound
	}
	if sub.MediaType != types.MediaAssessment {
		return nil, apierr.BadRequest("not_assessment", "This lesson is not an assessment")
	}
	course, err := s.courseRepo.GetByID(dbc, courseID)
	if err != nil {
		return nil, internalErr("load course", err)
	}
	if course == nil {
		return nil, errCourseNotFound
	}

	ids := make([]uuid.UUID, 0, len(in.Answers))
	seen := map[uuid.UUID]bool{}
	for _, a := range in.Answers {
		if seen[a.QuestionID] {
			return nil, apierr.BadRequest("duplicate_answer", "A question can only be answered once per attempt")
		}
		seen[a.QuestionID] = true
		ids = append(ids, a.QuestionID)
	}
	questions, err := s.questionRepo.GetByIDs(dbc, ids)
	if err != nil {
		return nil, internalErr("load questions", err)
	}
	byID := make(map[uuid.UUID]*types.AssessmentQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	attempts := make([]*types.AssessmentAttempt, 0, len(in.Answers))
	for _, a := range in.Answers {
		q, ok := byID[a.QuestionID]
		if !ok || !q.IsPublished || q.CourseContentSubID != sub.ID {
			return nil, apierr.Newf(http.StatusNotFound, "question_not_found", "Question %s not found in this assessment", a.QuestionID)
		}
		if a.Choice < 0 || a.Choice >= len(q.Options) {
			return nil, apierr.Newf(http.StatusBadRequest, "invalid_choice", "Choice for question %s is out of range", a.QuestionID)
		}
		attempts = append(attempts, &types.AssessmentAttempt{
			StudentID:          rd.UserID,
			QuestionID:         q.ID,
			CourseContentSubID: sub.ID,
			Choice:             a.Choice,
			IsCorrect:          a.Choice == q.CorrectOption,
		})
	}

	var (
		result  *types.AssessmentResult
		notices []*types.Notification
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.WithTx(ctx, tx)
		if err := s.attemptRepo.DeleteForQuestions(txc, rd.UserID, ids); err != nil {
			return err
		}
		if err := s.attemptRepo.CreateBatch(txc, attempts); err != nil {
			return err
		}
		score, total, err := s.score(txc, sub.ID, rd.UserID)
		if err != nil {
			return err
		}
		result = &types.AssessmentResult{
			CourseContentSubID: sub.ID,
			CourseID:           courseID,
			StudentID:          rd.UserID,
			Score:              score,
			Total:              total,
			Percent:            pricing.Percent1(score, total),
		}
		if err := s.resultRepo.Replace(txc, result); err != nil {
			return err
		}
		if course.Instructor != nil {
			body := fmt.Sprintf("%s has attempted an assessment [%s] in your course [%s]", rd.FullName, sub.Title, course.Title)
			staff := fmt.Sprintf("%s has attempted an assessment [%s] in the course [%s]", rd.FullName, sub.Title, course.Title)
			notices = staffFanOut("Assessment attempt", body, staff, course.Instructor)
		}
		return s.notifications.CreateBulk(txc, notices)
	})
	if err != nil {
		return nil, internalErr("record attempt", err)
	}
	s.notifications.Publish(ctx, notices)
	s.log.Info("Assessment attempted", "sub_id", sub.ID, "score", result.Score, "total", result.Total)
	return result, nil
}

// score sums the student's correct points and the sub's published points.
func (s *assessmentService) score(dbc dbctx.Context, subID, studentID uuid.UUID) (int, int, error) {
	mine, err := s.attemptRepo.ListBySubAndStudent(dbc, subID, studentID)
	if err != nil {
		return 0, 0, err
	}
	score := 0
	for _, a := range mine {
		if a.IsCorrect && a.Question != nil && a.Question.IsPublished {
			score += a.Question.Point
		}
	}
	published, err := s.questionRepo.ListBySub(dbc, subID, true)
	if err != nil {
		return 0, 0, err
	}
	total := 0
	for _, q := range published {
		total += q.Point
	}
	return score, total, nil
}

func (s *assessmentService) AttemptsBySub(ctx context.Context, subID uuid.UUID) (*AttemptReview, error) {
	rd, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	attempts, err := s.attemptRepo.ListBySubAndStudent(dbc, subID, rd.UserID)
	if err != nil {
		return nil, internalErr("list attempts", err)
	}
	if len(attempts) == 0 {
		return nil, apierr.Forbidden("forbidden", "You are not authorized to see someone else's attempt")
	}
	result, err := s.resultRepo.GetBySubAndStudent(dbc, subID, rd.UserID)
	if err != nil {
		return nil, internalErr("load result", err)
	}
	return &AttemptReview{Attempts: attempts, Result: result}, nil
}

func (s *assessmentService) ResultsForCourse(ctx context.Context, courseID uuid.UUID) ([]*types.AssessmentResult, error) {
	rd, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.resultRepo.ListForCourse(dbctx.New(ctx), courseID, rd.UserID)
	if err != nil {
		return nil, internalErr("list results", err)
	}
	return rows, nil
}

func (s *assessmentService) Results(ctx context.Context, filter repos.ResultFilter, p pagination.Params) (pagination.Page[*types.AssessmentResult], error) {
	rd, err := requestUser(ctx)
	if err != nil {
		return pagination.Page[*types.AssessmentResult]{}, err
	}
	switch {
	case isStaff(rd):
	case isRole(rd, types.RoleInstructor):
		filter.InstructorID = rd.UserID
	default:
		filter.StudentID = rd.UserID
	}
	rows, count, err := s.resultRepo.List(dbctx.New(ctx), filter, p)
	if err != nil {
		return pagination.Page[*types.AssessmentResult]{}, internalErr("list results", err)
	}
	return pagination.NewPage(rows, count), nil
}

func (s *assessmentService) CountDone(ctx context.Context, courseID uuid.UUID) (int64, error) {
	rd, err := requestUser(ctx)
	if err != nil {
		return 0, err
	}
	n, err := s.resultRepo.CountDone(dbctx.New(ctx), courseID, rd.UserID)
	if err != nil {
		return 0, internalErr("count results", err)
	}
	return n, nil
}
