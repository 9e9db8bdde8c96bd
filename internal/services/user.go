package services

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"net/http"
	"strings"
	"time"

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

type SignupInput struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"omitempty,min=7,max=20"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
}

type StaffInput struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"omitempty,min=7,max=20"`
}

type ContactInput struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

type UserService interface {
	Signup(ctx context.Context, in SignupInput) (*types.User, error)
	CreateStaff(ctx context.Context, role types.Role, in StaffInput) (*types.User, error)
	ValidateHost(ctx context.Context, id uuid.UUID) (*types.User, error)
	List(ctx context.Context, role types.Role, search string, p pagination.Params) (pagination.Page[*types.User], error)
	GetByRole(ctx context.Context, id uuid.UUID, role types.Role) (*types.User, error)
	SetSuspended(ctx context.Context, id uuid.UUID, suspended bool) (*types.User, error)
	SendContactMessage(ctx context.Context, in ContactInput) error
}

type userService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	avatars      AvatarService
	tokens       *Tokens
	outbox       MailOutbox
	templates    MailTemplates
	verifyTTL    time.Duration
	contactEmail string
}

func NewUserService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	avatars AvatarService,
	tokens *Tokens,
	outbox MailOutbox,
	templates MailTemplates,
	verifyTTL time.Duration,
	contactEmail string,
) UserService {
	if verifyTTL <= 0 {
		verifyTTL = 72 * time.Hour
	}
	return &userService{
		db:           db,
		log:          log.With("service", "UserService"),
		userRepo:     userRepo,
		avatars:      avatars,
		tokens:       tokens,
		outbox:       outbox,
		templates:    templates,
		verifyTTL:    verifyTTL,
		contactEmail: contactEmail,
	}
}

func (s *userService) checkUnique(dbc dbctx.Context, email, phone string) error {
	exists, err := s.userRepo.EmailExists(dbc, email)
	if err != nil {
		return internalErr("check email", err)
	}
	if exists {
		return apierr.Conflict("email_exists", "Email already exists")
	}
	if phone != "" {
		taken, err := s.userRepo.PhoneExists(dbc, phone, uuid.Nil)
		if err != nil {
			return internalErr("check phone", err)
		}
		if taken {
			return apierr.Conflict("phone_exists", "Phone number already exists")
		}
	}
	return nil
}

func (s *userService) Signup(ctx context.Context, in SignupInput) (*types.User, error) {
	phone := strings.TrimSpace(in.Phone)
	if err := s.checkUnique(dbctx.New(ctx), in.Email, phone); err != nil {
		return nil, err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, internalErr("hash password", err)
	}
	user := &types.User{
		ID:        uuid.New(),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     types.NormalizeEmail(in.Email),
		Password:  hash,
		Role:      types.RoleStudent,
	}
	if phone != "" {
		user.Phone = &phone
	}
	if s.avatars != nil {
		if url, err := s.avatars.CreateAndUpload(ctx, user); err != nil {
			s.log.Warn("Avatar generation failed (ignored)", "user_id", user.ID, "error", err)
		} else {
			user.Picture = url
		}
	}
	token, err := s.tokens.Issue(user, PurposeVerifyEmail, s.verifyTTL)
	if err != nil {
		return nil, internalErr("issue verification token", err)
	}
	if err := s.create(ctx, user, s.templates.Verification(user, token)); err != nil {
		return nil, err
	}
	s.log.Info("Student signed up", "user_id", user.ID)
	return user, nil
}

func (s *userService) CreateStaff(ctx context.Context, role types.Role, in StaffInput) (*types.User, error) {
	if role != types.RoleSubAdmin && role != types.RoleInstructor {
		return nil, apierr.BadRequest("invalid_role", "Unsupported role")
	}
	phone := strings.TrimSpace(in.Phone)
	if err := s.checkUnique(dbctx.New(ctx), in.Email, phone); err != nil {
		return nil, err
	}
	password, err := randomPassword(12)
	if err != nil {
		return nil, internalErr("generate password", err)
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, internalErr("hash password", err)
	}
	user := &types.User{
		ID:        uuid.New(),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     types.NormalizeEmail(in.Email),
		Password:  hash,
		Role:      role,
		IsActive:  true,
	}
	if phone != "" {
		user.Phone = &phone
	}
	if err := s.create(ctx, user, s.templates.Credentials(user, password)); err != nil {
		return nil, err
	}
	s.log.Info("Staff account created", "user_id", user.ID, "role", role)
	return user, nil
}

// create inserts user and queues its welcome mail in one transaction.
func (s *userService) create(ctx context.Context, user *types.User, mail MailMessage) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		if err := s.userRepo.Create(dbc, user); err != nil {
			return err
		}
		return s.outbox.Enqueue(dbc, mail)
	})
	if dberr.IsUniqueViolation(err) {
		return apierr.Conflict("email_exists", "Email already exists")
	}
	if err != nil {
		return internalErr("create user", err)
	}
	return nil
}

func (s *userService) ValidateHost(ctx context.Context, id uuid.UUID) (*types.User, error) {
	dbc := dbctx.New(ctx)
	user, err := s.GetByRole(ctx, id, types.RoleInstructor)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateFields(dbc, id, map[string]any{"verified_as_host": true}); err != nil {
		return nil, internalErr("validate host", err)
	}
	user.VerifiedAsHost = true
	return user, nil
}

func (s *userService) List(ctx context.Context, role types.Role, search string, p pagination.Params) (pagination.Page[*types.User], error) {
	users, count, err := s.userRepo.List(dbctx.New(ctx), repos.UserFilter{Role: role, Search: search}, p)
	if err != nil {
		return pagination.Page[*types.User]{}, internalErr("list users", err)
	}
	return pagination.NewPage(users, count), nil
}

func (s *userService) GetByRole(ctx context.Context, id uuid.UUID, role types.Role) (*types.User, error) {
	user, err := s.userRepo.GetByIDAndRole(dbctx.New(ctx), id, role)
	if err != nil {
		return nil, internalErr("load user", err)
	}
	if user == nil {
		return nil, apierr.Newf(http.StatusNotFound, "user_not_found", "%s not found", roleLabel(role))
	}
	return user, nil
}

func (s *userService) SetSuspended(ctx context.Context, id uuid.UUID, suspended bool) (*types.User, error) {
	dbc := dbctx.New(ctx)
	user, err := s.userRepo.GetByID(dbc, id)
	if err != nil {
		return nil, internalErr("load user", err)
	}
	if user == nil {
		return nil, apierr.NotFound("user_not_found", "User not found")
	}
	if user.Role == types.RoleAdmin {
		return nil, apierr.Forbidden("forbidden", "An admin cannot be suspended")
	}
	updates := map[string]any{"is_suspended": suspended}
	if suspended {
		updates["access_token"] = ""
	}
	if err := s.userRepo.UpdateFields(dbc, id, updates); err != nil {
		return nil, internalErr("suspend user", err)
	}
	user.IsSuspended = suspended
	return user, nil
}

func (s *userService) SendContactMessage(ctx context.Context, in ContactInput) error {
	if s.contactEmail == "" {
		return apierr.New(http.StatusServiceUnavailable, "contact_unavailable", errors.New("contact email is not configured"))
	}
	msg := s.templates.Contact(s.contactEmail, strings.TrimSpace(in.Name), in.Email, strings.TrimSpace(in.Subject), in.Message)
	if err := s.outbox.Enqueue(dbctx.New(ctx), msg); err != nil {
		return internalErr("queue contact message", err)
	}
	return nil
}

func roleLabel(role types.Role) string {
	switch role {
	case types.RoleSubAdmin:
		return "Sub-admin"
	case types.RoleInstructor:
		return "Instructor"
	case types.RoleStudent:
		return "Student"
	}
	return "User"
}

const passwordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

func randomPassword(n int) (string, error) {
	b := make([]byte, n)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range b {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = passwordAlphabet[v.Int64()]
	}
	return string(b), nil
}
