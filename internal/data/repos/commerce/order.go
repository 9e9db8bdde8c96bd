package commerce

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type OrderRepo interface {
	Create(dbc dbctx.Context, order *types.Order) error
	GetByTransactionID(dbc dbctx.Context, trxID uuid.UUID) (*types.Order, error)
	TransitionStatus(dbc dbctx.Context, id uuid.UUID, from, to string) (bool, error)
	ListStalePending(dbc dbctx.Context, createdBefore time.Time, limit int) ([]*types.Order, error)
}

type orderRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOrderRepo(db *gorm.DB, baseLog *logger.Logger) OrderRepo {
	return &orderRepo{db: db, log: baseLog.With("repo", "OrderRepo")}
}

func (r *orderRepo) Create(dbc dbctx.Context, order *types.Order) error {
	return dbc.DB(r.db).Omit("Items", "Transaction", "Buyer").Create(order).Error
}

func (r *orderRepo) GetByTransactionID(dbc dbctx.Context, trxID uuid.UUID) (*types.Order, error) {
	var o types.Order
	if err := dbc.DB(r.db).
		Preload("Buyer").
		Preload("Items").
		Preload("Items.Course").
		Preload("Items.Course.Instructor").
		Where("transaction_id = ?", trxID).
		Limit(1).
		Find(&o).Error; err != nil {
		return nil, err
	}
	if o.ID == uuid.Nil {
		return nil, nil
	}
	return &o, nil
}

func (r *orderRepo) TransitionStatus(dbc dbctx.Context, id uuid.UUID, from, to string) (bool, error) {
	res := dbc.DB(r.db).Model(&types.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *orderRepo) ListStalePending(dbc dbctx.Context, createdBefore time.Time, limit int) ([]*types.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []*types.Order
	if err := dbc.DB(r.db).
		Preload("Transaction").
		Where("status = ? AND created_at < ?", types.StatusPending, createdBefore).
		Order("created_at ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
