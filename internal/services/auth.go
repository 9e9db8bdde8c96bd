package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/platform/ctxutil"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type AuthConfig struct {
	AccessTTL time.Duration
	ResetTTL  time.Duration
	VerifyTTL time.Duration
}

type SignInResult struct {
	AccessToken string      `json:"accessToken"`
	User        *types.User `json:"user"`
}

type ProfileUpdate struct {
	FirstName    *string    `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName     *string    `json:"lastName" validate:"omitempty,min=1,max=100"`
	NickName     *string    `json:"nickName" validate:"omitempty,max=100"`
	Phone        *string    `json:"phone" validate:"omitempty,min=7,max=20"`
	Picture      *string    `json:"picture" validate:"omitempty,url"`
	Address      *string    `json:"address" validate:"omitempty,max=255"`
	State        *string    `json:"state" validate:"omitempty,max=100"`
	Country      *string    `json:"country" validate:"omitempty,max=100"`
	Bio          *string    `json:"bio" validate:"omitempty,max=2000"`
	DateOfBirth  *time.Time `json:"dateOfBirth"`
	FacebookURL  *string    `json:"facebookUrl" validate:"omitempty,url"`
	TwitterURL   *string    `json:"twitterUrl" validate:"omitempty,url"`
	LinkedInURL  *string    `json:"linkedinUrl" validate:"omitempty,url"`
	InstagramURL *string    `json:"instagramUrl" validate:"omitempty,url"`
	WebsiteURL   *string    `json:"websiteUrl" validate:"omitempty,url"`
}

type AuthService interface {
	SignIn(ctx context.Context, email, password string) (*SignInResult, error)
	// VerifyToken returns ctx carrying the caller's RequestData.
	VerifyToken(ctx context.Context, token string) (context.Context, error)
	VerifyEmail(ctx context.Context, token string) error
	Profile(ctx context.Context) (*types.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password, confirmPassword string) error
	UpdatePassword(ctx context.Context, oldPassword, newPassword, confirmPassword string) error
	UpdateProfile(ctx context.Context, in ProfileUpdate) (*types.User, error)
	SignOut(ctx context.Context) error
}

type authService struct {
	db        *gorm.DB
	log       *logger.Logger
	userRepo  repos.UserRepo
	tokens    *Tokens
	outbox    MailOutbox
	templates MailTemplates
	cfg       AuthConfig
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	tokens *Tokens,
	outbox MailOutbox,
	templates MailTemplates,
	cfg AuthConfig,
) AuthService {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 24 * time.Hour
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = time.Hour
	}
	if cfg.VerifyTTL <= 0 {
		cfg.VerifyTTL = 72 * time.Hour
	}
	return &authService{
		db:        db,
		log:       log.With("service", "AuthService"),
		userRepo:  userRepo,
		tokens:    tokens,
		outbox:    outbox,
		templates: templates,
		cfg:       cfg,
	}
}

var errInvalidCredentials = apierr.Unauthorized("invalid_credentials", "Invalid credentials")

func (s *authService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	dbc := dbctx.New(ctx)
	user, err := s.userRepo.GetByEmail(dbc, email)
	if err != nil {
		return nil, internalErr("load user", err)
	}
	if user == nil {
		return nil, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}
	if !user.IsActive {
		return nil, apierr.Unauthorized("account_inactive", "Account not activated")
	}
	if user.IsSuspended {
		return nil, apierr.Forbidden("account_suspended", "Account suspended")
	}
	token, err := s.tokens.Issue(user, "", s.cfg.AccessTTL)
	if err != nil {
		return nil, internalErr("issue token", err)
	}
	if err := s.userRepo.UpdateFields(dbc, user.ID, map[string]any{"access_token": token}); err != nil {
		return nil, internalErr("store token", err)
	}
	s.log.Info("User signed in", "user_id", user.ID, "role", user.Role)
	return &SignInResult{AccessToken: token, User: user}, nil
}

func (s *authService) VerifyToken(ctx context.Context, token string) (context.Context, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return ctx, apierr.Unauthorized("missing_token", "Authorization token required")
	}
	id, claims, err := s.tokens.Parse(token, "")
	if err != nil {
		return ctx, apierr.Unauthorized("invalid_token", "Invalid or expired token")
	}
	user, err := s.userRepo.GetByID(dbctx.New(ctx), id)
	if err != nil {
		return ctx, internalErr("load user", err)
	}
	if user == nil || user.AccessToken != token {
		return ctx, apierr.Unauthorized("invalid_token", "Invalid or expired token")
	}
	if user.IsSuspended {
		return ctx, apierr.Forbidden("account_suspended", "Account suspended")
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: token,
		UserID:      user.ID,
		Role:        string(user.Role),
		Email:       claims.Email,
		FullName:    user.FullName(),
	}), nil
}

func (s *authService) VerifyEmail(ctx context.Context, token string) error {
	id, _, err := s.tokens.Parse(token, PurposeVerifyEmail)
	if err != nil {
		return apierr.BadRequest("invalid_token", "Invalid or expired verification link")
	}
	dbc := dbctx.New(ctx)
	user, err := s.userRepo.GetByID(dbc, id)
	if err != nil {
		return internalErr("load user", err)
	}
	if user == nil {
		return apierr.NotFound("user_not_found", "User not found")
	}
	if user.IsActive {
		return nil
	}
	if err := s.userRepo.UpdateFields(dbc, id, map[string]any{"is_active": true}); err != nil {
		return internalErr("activate user", err)
	}
	return nil
}

func (s *authService) Profile(ctx context.Context) (*types.User, error) {
	rd, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(dbctx.New(ctx), rd.UserID)
	if err != nil {
		return nil, internalErr("load user", err)
	}
	if user == nil {
		return nil, apierr.NotFound("user_not_found", "User not found")
	}
	return user, nil
}

func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(dbctx.New(ctx), email)
	if err != nil {
		return internalErr("load user", err)
	}
	if user == nil {
		s.log.Debug("Password reset for unknown email ignored")
		return nil
	}
	token, err := s.tokens.Issue(user, PurposeResetPassword, s.cfg.ResetTTL)
	if err != nil {
		return internalErr("issue reset token", err)
	}
	return s.outbox.Enqueue(dbctx.New(ctx), s.templates.PasswordReset(user, token))
}

func (s *authService) ResetPassword(ctx context.Context, token, password, confirmPassword string) error {
	if password != confirmPassword {
		return apierr.BadRequest("password_mismatch", "Passwords do not match")
	}
	id, _, err := s.tokens.Parse(token, PurposeResetPassword)
	if err != nil {
		return apierr.BadRequest("invalid_token", "Invalid or expired reset link")
	}
	hash, err := hashPassword(password)
	if err != nil {
		return internalErr("hash password", err)
	}
	dbc := dbctx.New(ctx)
	user, err := s.userRepo.GetByID(dbc, id)
	if err != nil {
		return internalErr("load user", err)
	}
	if user == nil {
		return apierr.NotFound("user_not_found", "User not found")
	}
	return s.userRepo.UpdateFields(dbc, id, map[string]any{"password": hash, "access_token": ""})
}

func (s *authService) UpdatePassword(ctx context.Context, oldPassword, newPassword, confirmPassword string) error {
	user, err := s.Profile(ctx)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return apierr.BadRequest("invalid_password", "Old password is incorrect")
	}
	if newPassword != confirmPassword {
		return apierr.BadRequest("password_mismatch", "Passwords do not match")
	}
	if newPassword == oldPassword {
		return apierr.BadRequest("password_unchanged", "New password must differ from the old password")
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return internalErr("hash password", err)
	}
	return s.userRepo.UpdateFields(dbctx.New(ctx), user.ID, map[string]any{"password": hash})
}

func (s *authService) UpdateProfile(ctx context.Context, in ProfileUpdate) (*types.User, error) {
	user, err := s.Profile(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	updates := map[string]any{}
	set := func(col string, v *string) {
		if v := trimPtr(v); v != nil {
			updates[col] = *v
		}
	}
	set("first_name", in.FirstName)
	set("last_name", in.LastName)
	set("nick_name", in.NickName)
	set("picture", in.Picture)
	set("address", in.Address)
	set("state", in.State)
	set("country", in.Country)
	set("bio", in.Bio)
	set("facebook_url", in.FacebookURL)
	set("twitter_url", in.TwitterURL)
	set("linkedin_url", in.LinkedInURL)
	set("instagram_url", in.InstagramURL)
	set("website_url", in.WebsiteURL)
	if in.DateOfBirth != nil {
		updates["date_of_birth"] = *in.DateOfBirth
	}
	if phone := trimPtr(in.Phone); phone != nil && *phone != "" {
		taken, err := s.userRepo.PhoneExists(dbc, *phone, user.ID)
		if err != nil {
			return nil, internalErr("check phone", err)
		}
		if taken {
			return nil, apierr.Conflict("phone_exists", "Phone number already exists")
		}
		updates["phone"] = *phone
	}
	if err := s.userRepo.UpdateFields(dbc, user.ID, updates); err != nil {
		return nil, internalErr("update profile", err)
	}
	return s.Profile(ctx)
}

func (s *authService) SignOut(ctx context.Context) error {
	rd, err := requestUser(ctx)
	if err != nil {
		return err
	}
	return s.userRepo.UpdateFields(dbctx.New(ctx), rd.UserID, map[string]any{"access_token": ""})
}

func hashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("empty password")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(b), nil
}
