package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
	"github.com/yungbote/coursehub-backend/internal/pkg/pricing"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

// CourseRequestHeader names the header carrying the course a student is working in.
const CourseRequestHeader = "Course-Request-Id"

var errCourseForbidden = apierr.Forbidden("course_forbidden", "Unauthorized access to this course")

type AssessmentProgress struct {
	Total int64 `json:"total"`
	Done  int64 `json:"done"`
}

type PurchasedCourse struct {
	ItemID      uuid.UUID          `json:"itemId"`
	Price       float64            `json:"price"`
	PurchasedAt string             `json:"purchasedAt"`
	Course      CourseView         `json:"course"`
	Progress    int                `json:"progress"`
	Assessment  AssessmentProgress `json:"assessment"`
}

type OrderedCourse struct {
	*CourseDetail
	Reads   []*types.CourseRead       `json:"reads"`
	Results []*types.AssessmentResult `json:"results"`
}

type AccessService interface {
	// AuthorizeStudentCourse checks the caller bought the course named by the
	// Course-Request-Id header and, when subID is set, that the lesson is part of it.
	AuthorizeStudentCourse(ctx context.Context, courseHeader string, subID uuid.UUID) (uuid.UUID, error)
	OrderedCourseDetail(ctx context.Context, courseID uuid.UUID) (*OrderedCourse, error)
	PurchasedCourses(ctx context.Context) ([]PurchasedCourse, error)
}

type accessService struct {
	log         *logger.Logger
	courses     CourseService
	itemRepo    repos.OrderItemRepo
	subRepo     repos.CourseContentSubRepo
	readRepo    repos.CourseReadRepo
	resultRepo  repos.AssessmentResultRepo
	concurrency int
}

func NewAccessService(
	log *logger.Logger,
	courses CourseService,
	itemRepo repos.OrderItemRepo,
	subRepo repos.CourseContentSubRepo,
	readRepo repos.CourseReadRepo,
	resultRepo repos.AssessmentResultRepo,
) AccessService {
	return &accessService{
		log:         log.With("service", "AccessService"),
		courses:     courses,
		itemRepo:    itemRepo,
		subRepo:     subRepo,
		readRepo:    readRepo,
		resultRepo:  resultRepo,
		concurrency: 4,
	}
}

func (s *accessService) AuthorizeStudentCourse(ctx context.Context, courseHeader string, subID uuid.UUID) (uuid.UUID, error) {
	rd, err := requestUser(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	courseHeader = strings.TrimSpace(courseHeader)
	if courseHeader == "" {
		return uuid.Nil, apierr.Unauthorized("course_header_missing", "`Course-Request-Id` header must be provided")
	}
	courseID, err := uuid.Parse(courseHeader)
	if err != nil {
		return uuid.Nil, apierr.New(http.StatusBadRequest, "invalid_course_id", err)
	}
	dbc := dbctx.New(ctx)
	bought, err := s.itemRepo.HasConfirmedPurchase(dbc, rd.UserID, courseID)
	if err != nil {
		return uuid.Nil, internalErr("check purchase", err)
	}
	if !bought {
		return uuid.Nil, errCourseForbidden
	}
	if subID != uuid.Nil {
		ok, err := s.subRepo.IsValid(dbc, courseID, subID)
		if err != nil {
			return uuid.Nil, internalErr("check sub", err)
		}
		if !ok {
			return uuid.Nil, errSubNotFound
		}
	}
	return courseID, nil
}

func (s *accessService) OrderedCourseDetail(ctx context.Context, courseID uuid.UUID) (*OrderedCourse, error) {
	rd, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	bought, err := s.itemRepo.HasConfirmedPurchase(dbc, rd.UserID, courseID)
	if err != nil {
		return nil, internalErr("check purchase", err)
	}
	if !bought {
		return nil, errCourseForbidden
	}
	detail, err := s.courses.VerifiedDetail(ctx, courseID)
	if err != nil {
		return nil, err
	}
	reads, err := s.readRepo.ListForCourse(dbc, courseID, rd.UserID)
	if err != nil {
		return nil, internalErr("list reads", err)
	}
	results, err := s.resultRepo.ListForCourse(dbc, courseID, rd.UserID)
	if err != nil {
		return nil, internalErr("list results", err)
	}
	return &OrderedCourse{CourseDetail: detail, Reads: reads, Results: results}, nil
}

func (s *accessService) PurchasedCourses(ctx context.Context) ([]PurchasedCourse, error) {
	rd, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.itemRepo.ListPurchased(dbctx.New(ctx), rd.UserID)
	if err != nil {
		return nil, internalErr("list purchased", err)
	}
	out := make([]PurchasedCourse, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, item := range items {
		if item.Course == nil {
			continue
		}
		g.Go(func() error {
			pc, err := s.progress(gctx, rd.UserID, item)
			if err != nil {
				return err
			}
			out[i] = pc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, internalErr("compute progress", err)
	}
	filtered := out[:0]
	for _, pc := range out {
		if pc.ItemID != uuid.Nil {
			filtered = append(filtered, pc)
		}
	}
	return filtered, nil
}

func (s *accessService) progress(ctx context.Context, studentID uuid.UUID, item *types.OrderItem) (PurchasedCourse, error) {
	dbc := dbctx.New(ctx)
	courseID := item.CourseID
	reads, err := s.readRepo.Count(dbc, repos.ReadCountFilter{CourseID: courseID, StudentID: studentID, ExcludeAssessments: true})
	if err != nil {
		return PurchasedCourse{}, err
	}
	lessons, err := s.subRepo.Count(dbc, repos.SubCountFilter{CourseID: courseID, Exclude: types.MediaAssessment})
	if err != nil {
		return PurchasedCourse{}, err
	}
	total, err := s.subRepo.Count(dbc, repos.SubCountFilter{CourseID: courseID, MediaType: types.MediaAssessment})
	if err != nil {
		return PurchasedCourse{}, err
	}
	done, err := s.resultRepo.CountDone(dbc, courseID, studentID)
	if err != nil {
		return PurchasedCourse{}, err
	}
	return PurchasedCourse{
		ItemID:      item.ID,
		Price:       item.Price,
		PurchasedAt: item.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Course:      NewCourseView(item.Course),
		Progress:    pricing.Progress(reads, lessons),
		Assessment:  AssessmentProgress{Total: total, Done: done},
	}, nil
}
