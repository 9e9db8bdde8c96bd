package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/coursehub-backend/internal/data/dberr"
	"github.com/yungbote/coursehub-backend/internal/data/repos"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
	"github.com/yungbote/coursehub-backend/internal/pkg/pagination"
	"github.com/yungbote/coursehub-backend/internal/pkg/pricing"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/platform/ctxutil"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type CourseInput struct {
	Title        string     `json:"title" validate:"required,max=200"`
	ShortDesc    string     `json:"shortDesc" validate:"max=500"`
	FullDesc     string     `json:"fullDesc" validate:"max=20000"`
	Price        float64    `json:"price" validate:"gte=0"`
	Discount     int        `json:"discount" validate:"gte=0,lte=100"`
	IsPublished  bool       `json:"isPublished"`
	CoverImage   string     `json:"coverImage" validate:"omitempty,url"`
	CategoryID   uuid.UUID  `json:"categoryId" validate:"required"`
	InstructorID *uuid.UUID `json:"instructorId"`
}

type CourseUpdate struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
	ShortDesc   *string    `json:"shortDesc" validate:"omitempty,max=500"`
	FullDesc    *string    `json:"fullDesc" validate:"omitempty,max=20000"`
	Price       *float64   `json:"price" validate:"omitempty,gte=0"`
	Discount    *int       `json:"discount" validate:"omitempty,gte=0,lte=100"`
	IsPublished *bool      `json:"isPublished"`
	CoverImage  *string    `json:"coverImage" validate:"omitempty,url"`
	CategoryID  *uuid.UUID `json:"categoryId"`
}

// CourseView adds the derived price fields to a course.
type CourseView struct {
	*types.Course
	DiscountedPrice          float64 `json:"discountedPrice"`
	FormattedPrice           string  `json:"formattedPrice"`
	FormattedDiscountedPrice string  `json:"formattedDiscountedPrice"`
	FormattedDiscount        string  `json:"formattedDiscount"`
}

type CourseDetail struct {
	CourseView
	TotalDuration int `json:"totalDuration"`
}

func NewCourseView(c *types.Course) CourseView {
	discounted := pricing.DiscountedPrice(c.Price, c.Discount)
	return CourseView{
		Course:                   c,
		DiscountedPrice:          discounted,
		FormattedPrice:           pricing.FormattedPrice(c.Price),
		FormattedDiscountedPrice: pricing.FormattedPrice(discounted),
		FormattedDiscount:        pricing.FormattedDiscount(c.Discount),
	}
}

type CourseService interface {
	Create(ctx context.Context, in CourseInput) (*types.Course, error)
	List(ctx context.Context, filter repos.CourseFilter, p pagination.Params) (pagination.Page[CourseView], error)
	ListForInstructor(ctx context.Context, filter repos.CourseFilter, p pagination.Params) (pagination.Page[CourseView], error)
	FetchPublished(ctx context.Context, filter repos.CourseFilter, p pagination.Params) (pagination.Page[CourseView], error)
	Get(ctx context.Context, id uuid.UUID) (*CourseView, error)
	GetForInstructor(ctx context.Context, id uuid.UUID) (*CourseView, error)
	Update(ctx context.Context, id uuid.UUID, in CourseUpdate) (*CourseView, error)
	UpdateForInstructor(ctx context.Context, id uuid.UUID, in CourseUpdate) (*CourseView, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// PublicDetail returns a published course tree with lesson media removed.
	PublicDetail(ctx context.Context, id uuid.UUID) (*CourseDetail, error)
	VerifiedDetail(ctx context.Context, id uuid.UUID) (*CourseDetail, error)
	// OwnedCourse loads a course the caller may manage.
	OwnedCourse(ctx context.Context, id uuid.UUID) (*types.Course, error)
}

type courseService struct {
	log          *logger.Logger
	courseRepo   repos.CourseRepo
	categoryRepo repos.CategoryRepo
	userRepo     repos.UserRepo
	itemRepo     repos.OrderItemRepo
}

func NewCourseService(
	log *logger.Logger,
	courseRepo repos.CourseRepo,
	categoryRepo repos.CategoryRepo,
	userRepo repos.UserRepo,
	itemRepo repos.OrderItemRepo,
) CourseService {
	return &courseService{
		log:          log.With("service", "CourseService"),
		courseRepo:   courseRepo,
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
		itemRepo:     itemRepo,
	}
}

var (
	errCourseTitleExists = apierr.Conflict("course_exists", "Course title already exists in this category")
	errCourseNotFound    = apierr.NotFound("course_not_found", "Course not found")
)

func (s *courseService) requireCategory(dbc dbctx.Context, id uuid.UUID) error {
	c, err := s.categoryRepo.GetByID(dbc, id)
	if err != nil {
		return internalErr("load category", err)
	}
	if c == nil {
		return apierr.NotFound("category_not_found", "Category not found")
	}
	return nil
}

func (s *courseService) Create(ctx context.Context, in CourseInput) (*types.Course, error) {
	rd, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	instructorID := rd.UserID
	if isRole(rd, types.RoleAdmin) {
		if in.InstructorID == nil || *in.InstructorID == uuid.Nil {
			return nil, apierr.BadRequest("instructor_required", "instructorId is required")
		}
		inst, err := s.userRepo.GetByIDAndRole(dbc, *in.InstructorID, types.RoleInstructor)
		if err != nil {
			return nil, internalErr("load instructor", err)
		}
		if inst == nil {
			return nil, apierr.NotFound("instructor_not_found", "Instructor not found")
		}
		instructorID = inst.ID
	}
	if err := s.requireCategory(dbc, in.CategoryID); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	exists, err := s.courseRepo.TitleExistsInCategory(dbc, in.CategoryID, title, uuid.Nil)
	if err != nil {
		return nil, internalErr("check course title", err)
	}
	if exists {
		return nil, errCourseTitleExists
	}
	c := &types.Course{
		Title:        title,
		ShortDesc:    strings.TrimSpace(in.ShortDesc),
		FullDesc:     strings.TrimSpace(in.FullDesc),
		Price:        pricing.Round2(in.Price),
		Discount:     in.Discount,
		IsPublished:  in.IsPublished && isRole(rd, types.RoleAdmin),
		CoverImage:   strings.TrimSpace(in.CoverImage),
		InstructorID: instructorID,
		CategoryID:   in.CategoryID,
	}
	if err := s.courseRepo.Create(dbc, c); err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, errCourseTitleExists
		}
		return nil, internalErr("create course", err)
	}
	s.log.Info("Course created", "course_id", c.ID, "instructor_id", instructorID)
	return c, nil
}

func (s *courseService) list(ctx context.Context, filter repos.CourseFilter, p pagination.Params) (pagination.Page[CourseView], error) {
	rows, count, err := s.courseRepo.List(dbctx.New(ctx), filter, p)
	if err != nil {
		return pagination.Page[CourseView]{}, internalErr("list courses", err)
	}
	views := make([]CourseView, 0, len(rows))
	for _, c := range rows {
		views = append(views, NewCourseView(c))
	}
	return pagination.NewPage(views, count), nil
}

func (s *courseService) List(ctx context.Context, filter repos.CourseFilter, p pagination.Params) (pagination.Page[CourseView], error) {
	return s.list(ctx, filter, p)
}

func (s *courseService) ListForInstructor(ctx context.Context, filter repos.CourseFilter, p pagination.Params) (pagination.Page[CourseView], error) {
	rd, err := requestUser(ctx)
	if err != nil {
		return pagination.Page[CourseView]{}, err
	}
	filter.InstructorID = rd.UserID
	return s.list(ctx, filter, p)
}

func (s *courseService) FetchPublished(ctx context.Context, filter repos.CourseFilter, p pagination.Params) (pagination.Page[CourseView], error) {
	published := true
	filter.IsPublished = &published
	return s.list(ctx, filter, p)
}

func (s *courseService) load(dbc dbctx.Context, id uuid.UUID) (*types.Course, error) {
	c, err := s.courseRepo.GetByID(dbc, id)
	if err != nil {
		return nil, internalErr("load course", err)
	}
	if c == nil {
		return nil, errCourseNotFound
	}
	return c, nil
}

func (s *courseService) Get(ctx context.Context, id uuid.UUID) (*CourseView, error) {
	c, err := s.load(dbctx.New(ctx), id)
	if err != nil {
		return nil, err
	}
	v := NewCourseView(c)
	return &v, nil
}

func (s *courseService) OwnedCourse(ctx context.Context, id uuid.UUID) (*types.Course, error) {
	rd, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.load(dbctx.New(ctx), id)
	if err != nil {
		return nil, err
	}
	if !canManageCourse(rd, c) {
		return nil, apierr.Forbidden("forbidden", "You do not own this course")
	}
	return c, nil
}

func canManageCourse(rd *ctxutil.RequestData, c *types.Course) bool {
	if isStaff(rd) {
		return true
	}
	return isRole(rd, types.RoleInstructor) && c.InstructorID == rd.UserID
}

func (s *courseService) GetForInstructor(ctx context.Context, id uuid.UUID) (*CourseView, error) {
	c, err := s.OwnedCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	v := NewCourseView(c)
	return &v, nil
}

func (s *courseService) Update(ctx context.Context, id uuid.UUID, in CourseUpdate) (*CourseView, error) {
	dbc := dbctx.New(ctx)
	c, err := s.load(dbc, id)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, c, in, true)
}

func (s *courseService) UpdateForInstructor(ctx context.Context, id uuid.UUID, in CourseUpdate) (*CourseView, error) {
	c, err := s.OwnedCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.IsPublished {
		return nil, apierr.BadRequest("course_published", "A published course cannot be updated")
	}
	return s.apply(ctx, c, in, false)
}

func (s *courseService) apply(ctx context.Context, c *types.Course, in CourseUpdate, allowPublish bool) (*CourseView, error) {
	dbc := dbctx.New(ctx)
	updates := map[string]any{}
	categoryID := c.CategoryID
	if in.CategoryID != nil && *in.CategoryID != c.CategoryID {
		if err := s.requireCategory(dbc, *in.CategoryID); err != nil {
			return nil, err
		}
		categoryID = *in.CategoryID
		updates["category_id"] = categoryID
	}
	title := c.Title
	if t := trimPtr(in.Title); t != nil && *t != "" {
		title = *t
		updates["title"] = title
	}
	if updates["title"] != nil || updates["category_id"] != nil {
		exists, err := s.courseRepo.TitleExistsInCategory(dbc, categoryID, title, c.ID)
		if err != nil {
			return nil, internalErr("check course title", err)
		}
		if exists {
			return nil, errCourseTitleExists
		}
	}
	if v := trimPtr(in.ShortDesc); v != nil {
		updates["short_desc"] = *v
	}
	if v := trimPtr(in.FullDesc); v != nil {
		updates["full_desc"] = *v
	}
	if v := trimPtr(in.CoverImage); v != nil {
		updates["cover_image"] = *v
	}
	if in.Price != nil {
		updates["price"] = pricing.Round2(*in.Price)
	}
	if in.Discount != nil {
		updates["discount"] = *in.Discount
	}
	if in.IsPublished != nil {
		if !allowPublish {
			return nil, apierr.Forbidden("forbidden", "Only an admin can change the publish state")
		}
		updates["is_published"] = *in.IsPublished
	}
	if err := s.courseRepo.UpdateFields(dbc, c.ID, updates); err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, errCourseTitleExists
		}
		return nil, internalErr("update course", err)
	}
	return s.Get(ctx, c.ID)
}

func (s *courseService) Delete(ctx context.Context, id uuid.UUID) error {
	c, err := s.OwnedCourse(ctx, id)
	if err != nil {
		return err
	}
	if c.IsPublished {
		return apierr.BadRequest("course_published", "A published course cannot be deleted")
	}
	dbc := dbctx.New(ctx)
	n, err := s.itemRepo.CountByCourse(dbc, id)
	if err != nil {
		return internalErr("count order items", err)
	}
	if n > 0 {
		return apierr.Conflict("course_in_use", "A course that has been ordered cannot be deleted")
	}
	if err := s.courseRepo.Delete(dbc, id); err != nil {
		return internalErr("delete course", err)
	}
	s.log.Info("Course deleted", "course_id", id)
	return nil
}

func (s *courseService) tree(ctx context.Context, id uuid.UUID) (*types.Course, error) {
	c, err := s.courseRepo.GetTree(dbctx.New(ctx), id)
	if err != nil {
		return nil, internalErr("load course tree", err)
	}
	if c == nil || !c.IsPublished {
		return nil, errCourseNotFound
	}
	return c, nil
}

func (s *courseService) PublicDetail(ctx context.Context, id uuid.UUID) (*CourseDetail, error) {
	c, err := s.tree(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, content := range c.Contents {
		for _, sub := range content.Subs {
			sub.Media = ""
		}
	}
	return newCourseDetail(c), nil
}

func (s *courseService) VerifiedDetail(ctx context.Context, id uuid.UUID) (*CourseDetail, error) {
	c, err := s.tree(ctx, id)
	if err != nil {
		return nil, err
	}
	return newCourseDetail(c), nil
}

func newCourseDetail(c *types.Course) *CourseDetail {
	total := 0
	for _, content := range c.Contents {
		for _, sub := range content.Subs {
			total += sub.Duration
		}
	}
	return &CourseDetail{CourseView: NewCourseView(c), TotalDuration: total}
}
