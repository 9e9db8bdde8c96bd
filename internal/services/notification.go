package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
	"github.com/yungbote/coursehub-backend/internal/pkg/pagination"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
	"github.com/yungbote/coursehub-backend/internal/realtime"
)

type NotificationService interface {
	// CreateBulk inserts within dbc's transaction. Call Publish after commit.
	CreateBulk(dbc dbctx.Context, ns []*types.Notification) error
	Publish(ctx context.Context, ns []*types.Notification)
	Feed(ctx context.Context, read *bool, p pagination.Params) (pagination.Page[*types.Notification], error)
	MarkAsRead(ctx context.Context, id uuid.UUID) (*types.Notification, error)
}

type notificationService struct {
	log       *logger.Logger
	repo      repos.NotificationRepo
	publisher realtime.Publisher
}

func NewNotificationService(log *logger.Logger, repo repos.NotificationRepo, publisher realtime.Publisher) NotificationService {
	return &notificationService{
		log:       log.With("service", "NotificationService"),
		repo:      repo,
		publisher: publisher,
	}
}

func (s *notificationService) CreateBulk(dbc dbctx.Context, ns []*types.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	return s.repo.CreateBatch(dbc, ns)
}

func (s *notificationService) Publish(ctx context.Context, ns []*types.Notification) {
	if s.publisher == nil || len(ns) == 0 {
		return
	}
	msgs := make([]realtime.SSEMessage, 0, len(ns))
	for _, n := range ns {
		channel := realtime.GroupChannel(string(n.UserGroup))
		if n.UserID != nil {
			channel = realtime.UserChannel(*n.UserID)
		}
		msgs = append(msgs, realtime.SSEMessage{
			Channel: channel,
			Event:   realtime.SSEEventNotificationCreated,
			Data:    n,
		})
	}
	s.publisher.Publish(ctx, msgs...)
}

func (s *notificationService) Feed(ctx context.Context, read *bool, p pagination.Params) (pagination.Page[*types.Notification], error) {
	rd, err := requestUser(ctx)
	if err != nil {
		return pagination.Page[*types.Notification]{}, err
	}
	filter := repos.FeedFilter{Group: types.Role(rd.Role), Read: read}
	if !isStaff(rd) {
		filter.UserID = rd.UserID
	}
	rows, count, err := s.repo.ListFeed(dbctx.New(ctx), filter, p)
	if err != nil {
		return pagination.Page[*types.Notification]{}, internalErr("list notifications", err)
	}
	return pagination.NewPage(rows, count), nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, id uuid.UUID) (*types.Notification, error) {
	rd, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	n, err := s.repo.GetByID(dbc, id)
	if err != nil {
		return nil, internalErr("load notification", err)
	}
	if n == nil || !ownsNotification(rd.UserID, types.Role(rd.Role), n) {
		return nil, apierr.NotFound("notification_not_found", "Notification not found")
	}
	if n.Read {
		return nil, errAlreadyRead
	}
	changed, err := s.repo.MarkRead(dbc, id)
	if err != nil {
		return nil, internalErr("mark notification read", err)
	}
	if !changed {
		return nil, errAlreadyRead
	}
	n.Read = true
	return n, nil
}

var errAlreadyRead = apierr.BadRequest("already_read", "Notification already marked as read")

func ownsNotification(userID uuid.UUID, role types.Role, n *types.Notification) bool {
	if n.UserID != nil {
		return *n.UserID == userID
	}
	return n.UserGroup == role
}

// staffFanOut addresses the course owner directly and the staff groups by broadcast.
// Admins only hear about courses owned by regular instructors.
func staffFanOut(title, ownerBody, staffBody string, instructor *types.User) []*types.Notification {
	id := instructor.ID
	out := []*types.Notification{{
		Title:     title,
		Body:      ownerBody,
		UserID:    &id,
		UserGroup: instructor.Role,
	}}
	if instructor.Role == types.RoleInstructor {
		out = append(out, &types.Notification{Title: title, Body: staffBody, UserGroup: types.RoleAdmin})
	}
	out = append(out, &types.Notification{Title: title, Body: staffBody, UserGroup: types.RoleSubAdmin})
	return out
}
