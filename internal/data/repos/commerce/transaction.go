package commerce

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
	"github.com/yungbote/coursehub-backend/internal/pkg/pagination"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

var TransactionOrderColumns = map[string]string{
	"createdAt": "created_at",
	"amount":    "amount",
	"status":    "status",
}

type TransactionFilter struct {
	UserID        uuid.UUID
	Status        string
	Reference     string
	ThirdPartyRef string
	WithUser      bool
}

type TransactionRepo interface {
	Create(dbc dbctx.Context, trx *types.Transaction) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Transaction, error)
	// GetByThirdPartyRef locks the row FOR UPDATE when lock is set; callers must be inside a transaction.
	GetByThirdPartyRef(dbc dbctx.Context, ref string, lock bool) (*types.Transaction, error)
	List(dbc dbctx.Context, filter TransactionFilter, p pagination.Params) ([]*types.Transaction, int64, error)
	// TransitionStatus moves the row from -> to and reports whether this call applied the change.
	TransitionStatus(dbc dbctx.Context, id uuid.UUID, from, to string) (bool, error)
}

type transactionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTransactionRepo(db *gorm.DB, baseLog *logger.Logger) TransactionRepo {
	return &transactionRepo{db: db, log: baseLog.With("repo", "TransactionRepo")}
}

func (r *transactionRepo) Create(dbc dbctx.Context, trx *types.Transaction) error {
	return dbc.DB(r.db).Create(trx).Error
}

func (r *transactionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Transaction, error) {
	var trx types.Transaction
	if err := dbc.DB(r.db).
		Preload("User").
		Preload("Order").
		Preload("Order.Items").
		Preload("Order.Items.Course").
		Where("id = ?", id).
		Limit(1).
		Find(&trx).Error; err != nil {
		return nil, err
	}
	if trx.ID == uuid.Nil {
		return nil, nil
	}
	return &trx, nil
}

func (r *transactionRepo) GetByThirdPartyRef(dbc dbctx.Context, ref string, lock bool) (*types.Transaction, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, nil
	}
	q := dbc.DB(r.db)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var trx types.Transaction
	if err := q.Where("third_party_ref = ?", ref).Limit(1).Find(&trx).Error; err != nil {
		return nil, err
	}
	if trx.ID == uuid.Nil {
		return nil, nil
	}
	return &trx, nil
}

func (r *transactionRepo) List(dbc dbctx.Context, filter TransactionFilter, p pagination.Params) ([]*types.Transaction, int64, error) {
	q := dbc.DB(r.db).Model(&types.Transaction{})
	if filter.UserID != uuid.Nil {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if s := strings.TrimSpace(filter.Status); s != "" {
		q = q.Where("status = ?", s)
	}
	if s := strings.TrimSpace(filter.Reference); s != "" {
		q = q.Where("reference = ?", s)
	}
	if s := strings.TrimSpace(filter.ThirdPartyRef); s != "" {
		q = q.Where("third_party_ref = ?", s)
	}
	q = q.Session(&gorm.Session{})
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}
	list := q
	if filter.WithUser {
		list = list.Preload("User")
	}
	var out []*types.Transaction
	if err := p.Normalize(TransactionOrderColumns).Apply(list, "").Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, count, nil
}

func (r *transactionRepo) TransitionStatus(dbc dbctx.Context, id uuid.UUID, from, to string) (bool, error) {
	now := time.Now().UTC()
	updates := map[string]any{"status": to, "updated_at": now}
	switch to {
	case types.StatusConfirmed:
		updates["confirmed_at"] = now
	case types.StatusCancelled:
		updates["cancelled_at"] = now
	}
	res := dbc.DB(r.db).Model(&types.Transaction{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
