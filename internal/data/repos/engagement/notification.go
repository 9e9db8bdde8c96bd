package engagement

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
	"github.com/yungbote/coursehub-backend/internal/pkg/pagination"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

var NotificationOrderColumns = map[string]string{
	"createdAt": "created_at",
}

// FeedFilter selects a group feed. When UserID is set the feed holds the
// group broadcasts plus the user's own notifications.
type FeedFilter struct {
	Group  types.Role
	UserID uuid.UUID
	Read   *bool
}

type NotificationRepo interface {
	CreateBatch(dbc dbctx.Context, notifications []*types.Notification) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Notification, error)
	ListFeed(dbc dbctx.Context, filter FeedFilter, p pagination.Params) ([]*types.Notification, int64, error)
	// MarkRead flips an unread notification and reports whether it changed.
	MarkRead(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type notificationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNotificationRepo(db *gorm.DB, baseLog *logger.Logger) NotificationRepo {
	return &notificationRepo{db: db, log: baseLog.With("repo", "NotificationRepo")}
}

func (r *notificationRepo) CreateBatch(dbc dbctx.Context, notifications []*types.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return dbc.DB(r.db).Create(&notifications).Error
}

func (r *notificationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Notification, error) {
	var n types.Notification
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&n).Error; err != nil {
		return nil, err
	}
	if n.ID == uuid.Nil {
		return nil, nil
	}
	return &n, nil
}

func (r *notificationRepo) ListFeed(dbc dbctx.Context, filter FeedFilter, p pagination.Params) ([]*types.Notification, int64, error) {
	q := dbc.DB(r.db).Model(&types.Notification{}).Where("user_group = ?", filter.Group)
	if filter.UserID != uuid.Nil {
		q = q.Where("(user_id IS NULL OR user_id = ?)", filter.UserID)
	}
	if filter.Read != nil {
		q = q.Where("is_read = ?", *filter.Read)
	}
	q = q.Session(&gorm.Session{})
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}
	var out []*types.Notification
	if err := p.Normalize(NotificationOrderColumns).Apply(q, "").Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, count, nil
}

func (r *notificationRepo) MarkRead(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	res := dbc.DB(r.db).Model(&types.Notification{}).
		Where("id = ? AND is_read = ?", id, false).
		Updates(map[string]any{"is_read": true, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
