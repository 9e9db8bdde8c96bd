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
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type ProgramInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	IsPublished bool   `json:"isPublished"`
}

type ProgramUpdate struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	IsPublished *bool   `json:"isPublished"`
}

type ProgramService interface {
	Create(ctx context.Context, in ProgramInput) (*types.Program, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Program, error)
	List(ctx context.Context, filter repos.ProgramFilter, p pagination.Params) (pagination.Page[*types.Program], error)
	// ListPublished backs both the fetch and public listings.
	ListPublished(ctx context.Context, title string, p pagination.Params) (pagination.Page[*types.Program], error)
	Update(ctx context.Context, id uuid.UUID, in ProgramUpdate) (*types.Program, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type programService struct {
	log          *logger.Logger
	programRepo  repos.ProgramRepo
	categoryRepo repos.CategoryRepo
}

func NewProgramService(log *logger.Logger, programRepo repos.ProgramRepo, categoryRepo repos.CategoryRepo) ProgramService {
	return &programService{
		log:          log.With("service", "ProgramService"),
		programRepo:  programRepo,
		categoryRepo: categoryRepo,
	}
}

var errProgramTitleExists = apierr.Conflict("program_exists", "Program title already exists")

func (s *programService) Create(ctx context.Context, in ProgramInput) (*types.Program, error) {
	dbc := dbctx.New(ctx)
	title := strings.TrimSpace(in.Title)
	exists, err := s.programRepo.TitleExists(dbc, title, uuid.Nil)
	if err != nil {
		return nil, internalErr("check program title", err)
	}
	if exists {
		return nil, errProgramTitleExists
	}
	p := &types.Program{Title: title, Description: strings.TrimSpace(in.Description), IsPublished: in.IsPublished}
	if err := s.programRepo.Create(dbc, p); err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, errProgramTitleExists
		}
		return nil, internalErr("create program", err)
	}
	return p, nil
}

func (s *programService) Get(ctx context.Context, id uuid.UUID) (*types.Program, error) {
	p, err := s.programRepo.GetByID(dbctx.New(ctx), id)
	if err != nil {
		return nil, internalErr("load program", err)
	}
	if p == nil {
		return nil, apierr.NotFound("program_not_found", "Program not found")
	}
	return p, nil
}

func (s *programService) List(ctx context.Context, filter repos.ProgramFilter, p pagination.Params) (pagination.Page[*types.Program], error) {
	rows, count, err := s.programRepo.List(dbctx.New(ctx), filter, p)
	if err != nil {
		return pagination.Page[*types.Program]{}, internalErr("list programs", err)
	}
	return pagination.NewPage(rows, count), nil
}

func (s *programService) ListPublished(ctx context.Context, title string, p pagination.Params) (pagination.Page[*types.Program], error) {
	published := true
	return s.List(ctx, repos.ProgramFilter{Title: title, IsPublished: &published}, p)
}

func (s *programService) Update(ctx context.Context, id uuid.UUID, in ProgramUpdate) (*types.Program, error) {
	dbc := dbctx.New(ctx)
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if t := trimPtr(in.Title); t != nil && *t != "" {
		exists, err := s.programRepo.TitleExists(dbc, *t, id)
		if err != nil {
			return nil, internalErr("check program title", err)
		}
		if exists {
			return nil, errProgramTitleExists
		}
		updates["title"] = *t
	}
	if d := trimPtr(in.Description); d != nil {
		updates["description"] = *d
	}
	if in.IsPublished != nil {
		updates["is_published"] = *in.IsPublished
	}
	if err := s.programRepo.UpdateFields(dbc, id, updates); err != nil {
		return nil, internalErr("update program", err)
	}
	return s.Get(ctx, id)
}

func (s *programService) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if p.IsPublished {
		return apierr.BadRequest("program_published", "A published program cannot be deleted")
	}
	dbc := dbctx.New(ctx)
	n, err := s.categoryRepo.CountByProgram(dbc, id)
	if err != nil {
		return internalErr("count categories", err)
	}
	if n > 0 {
		return apierr.Conflict("program_in_use", "A program with categories cannot be deleted")
	}
	if err := s.programRepo.Delete(dbc, id); err != nil {
		return internalErr("delete program", err)
	}
	s.log.Info("Program deleted", "program_id", id)
	return nil
}

type CategoryInput struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=5000"`
	IsPublished bool      `json:"isPublished"`
	ProgramID   uuid.UUID `json:"programId" validate:"required"`
}

type CategoryUpdate struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	IsPublished *bool      `json:"isPublished"`
	ProgramID   *uuid.UUID `json:"programId"`
}

type CategoryService interface {
	Create(ctx context.Context, in CategoryInput) (*types.Category, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Category, error)
	List(ctx context.Context, filter repos.CategoryFilter, p pagination.Params) (pagination.Page[*types.Category], error)
	ListPublished(ctx context.Context, programID uuid.UUID, title string, p pagination.Params) (pagination.Page[*types.Category], error)
	Update(ctx context.Context, id uuid.UUID, in CategoryUpdate) (*types.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	log          *logger.Logger
	programRepo  repos.ProgramRepo
	categoryRepo repos.CategoryRepo
	courseRepo   repos.CourseRepo
}

func NewCategoryService(log *logger.Logger, programRepo repos.ProgramRepo, categoryRepo repos.CategoryRepo, courseRepo repos.CourseRepo) CategoryService {
	return &categoryService{
		log:          log.With("service", "CategoryService"),
		programRepo:  programRepo,
		categoryRepo: categoryRepo,
		courseRepo:   courseRepo,
	}
}

var errCategoryTitleExists = apierr.Conflict("category_exists", "Category title already exists in this program")

func (s *categoryService) requireProgram(dbc dbctx.Context, id uuid.UUID) error {
	p, err := s.programRepo.GetByID(dbc, id)
	if err != nil {
		return internalErr("load program", err)
	}
	if p == nil {
		return apierr.NotFound("program_not_found", "Program not found")
	}
	return nil
}

func (s *categoryService) Create(ctx context.Context, in CategoryInput) (*types.Category, error) {
	dbc := dbctx.New(ctx)
	if err := s.requireProgram(dbc, in.ProgramID); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	exists, err := s.categoryRepo.TitleExists(dbc, in.ProgramID, title, uuid.Nil)
	if err != nil {
		return nil, internalErr("check category title", err)
	}
	if exists {
		return nil, errCategoryTitleExists
	}
	c := &types.Category{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		IsPublished: in.IsPublished,
		ProgramID:   in.ProgramID,
	}
	if err := s.categoryRepo.Create(dbc, c); err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, errCategoryTitleExists
		}
		return nil, internalErr("create category", err)
	}
	return c, nil
}

func (s *categoryService) Get(ctx context.Context, id uuid.UUID) (*types.Category, error) {
	c, err := s.categoryRepo.GetByID(dbctx.New(ctx), id)
	if err != nil {
		return nil, internalErr("load category", err)
	}
	if c == nil {
		return nil, apierr.NotFound("category_not_found", "Category not found")
	}
	return c, nil
}

func (s *categoryService) List(ctx context.Context, filter repos.CategoryFilter, p pagination.Params) (pagination.Page[*types.Category], error) {
	rows, count, err := s.categoryRepo.List(dbctx.New(ctx), filter, p)
	if err != nil {
		return pagination.Page[*types.Category]{}, internalErr("list categories", err)
	}
	return pagination.NewPage(rows, count), nil
}

func (s *categoryService) ListPublished(ctx context.Context, programID uuid.UUID, title string, p pagination.Params) (pagination.Page[*types.Category], error) {
	published := true
	return s.List(ctx, repos.CategoryFilter{ProgramID: programID, Title: title, IsPublished: &published}, p)
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, in CategoryUpdate) (*types.Category, error) {
	dbc := dbctx.New(ctx)
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	programID := current.ProgramID
	if in.ProgramID != nil && *in.ProgramID != current.ProgramID {
		if err := s.requireProgram(dbc, *in.ProgramID); err != nil {
			return nil, err
		}
		programID = *in.ProgramID
		updates["program_id"] = programID
	}
	title := current.Title
	if t := trimPtr(in.Title); t != nil && *t != "" {
		title = *t
		updates["title"] = title
	}
	if _, moved := updates["program_id"]; moved || updates["title"] != nil {
		exists, err := s.categoryRepo.TitleExists(dbc, programID, title, id)
		if err != nil {
			return nil, internalErr("check category title", err)
		}
		if exists {
			return nil, errCategoryTitleExists
		}
	}
	if d := trimPtr(in.Description); d != nil {
		updates["description"] = *d
	}
	if in.IsPublished != nil {
		updates["is_published"] = *in.IsPublished
	}
	if err := s.categoryRepo.UpdateFields(dbc, id, updates); err != nil {
		return nil, internalErr("update category", err)
	}
	return s.Get(ctx, id)
}

func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if c.IsPublished {
		return apierr.BadRequest("category_published", "A published category cannot be deleted")
	}
	dbc := dbctx.New(ctx)
	n, err := s.courseRepo.CountByCategory(dbc, id)
	if err != nil {
		return internalErr("count courses", err)
	}
	if n > 0 {
		return apierr.Conflict("category_in_use", "A category with courses cannot be deleted")
	}
	if err := s.categoryRepo.Delete(dbc, id); err != nil {
		return internalErr("delete category", err)
	}
	s.log.Info("Category deleted", "category_id", id)
	return nil
}
