package commerce

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
	"github.com/yungbote/coursehub-backend/internal/pkg/pagination"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

var OrderItemOrderColumns = map[string]string{
	"createdAt": "created_at",
	"price":     "price",
}

type OrderedItemFilter struct {
	InstructorID uuid.UUID
	BuyerID      uuid.UUID
	CourseTitle  string
	Status       string
}

type OrderItemRepo interface {
	CreateBatch(dbc dbctx.Context, items []*types.OrderItem) error
	HasConfirmedPurchase(dbc dbctx.Context, buyerID, courseID uuid.UUID) (bool, error)
	ListPurchased(dbc dbctx.Context, buyerID uuid.UUID) ([]*types.OrderItem, error)
	List(dbc dbctx.Context, filter OrderedItemFilter, p pagination.Params) ([]*types.OrderItem, int64, error)
	GetDetail(dbc dbctx.Context, id uuid.UUID) (*types.OrderItem, error)
	CountByCourse(dbc dbctx.Context, courseID uuid.UUID) (int64, error)
}

type orderItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOrderItemRepo(db *gorm.DB, baseLog *logger.Logger) OrderItemRepo {
	return &orderItemRepo{db: db, log: baseLog.With("repo", "OrderItemRepo")}
}

func (r *orderItemRepo) CreateBatch(dbc dbctx.Context, items []*types.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return dbc.DB(r.db).Omit("Order", "Course").Create(&items).Error
}

func (r *orderItemRepo) HasConfirmedPurchase(dbc dbctx.Context, buyerID, courseID uuid.UUID) (bool, error) {
	var count int64
	if err := dbc.DB(r.db).Model(&types.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_item.order_id").
		Where("orders.buyer_id = ? AND orders.status = ? AND order_item.course_id = ?", buyerID, types.StatusConfirmed, courseID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListPurchased returns confirmed items of the buyer, newest first.
func (r *orderItemRepo) ListPurchased(dbc dbctx.Context, buyerID uuid.UUID) ([]*types.OrderItem, error) {
	var out []*types.OrderItem
	if err := dbc.DB(r.db).
		Joins("JOIN orders ON orders.id = order_item.order_id").
		Where("orders.buyer_id = ? AND orders.status = ?", buyerID, types.StatusConfirmed).
		Preload("Course").
		Preload("Course.Instructor").
		Order("order_item.created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *orderItemRepo) List(dbc dbctx.Context, filter OrderedItemFilter, p pagination.Params) ([]*types.OrderItem, int64, error) {
	q := dbc.DB(r.db).Model(&types.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_item.order_id").
		Joins("JOIN course ON course.id = order_item.course_id")
	if filter.InstructorID != uuid.Nil {
		q = q.Where("course.instructor_id = ?", filter.InstructorID)
	}
	if filter.BuyerID != uuid.Nil {
		q = q.Where("orders.buyer_id = ?", filter.BuyerID)
	}
	if t := strings.ToLower(strings.TrimSpace(filter.CourseTitle)); t != "" {
		q = q.Where("LOWER(course.title) LIKE ?", "%"+t+"%")
	}
	if s := strings.TrimSpace(filter.Status); s != "" {
		q = q.Where("orders.status = ?", s)
	}
	q = q.Session(&gorm.Session{})
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}
	var out []*types.OrderItem
	if err := p.Normalize(OrderItemOrderColumns).
		Apply(q.Preload("Course").Preload("Order").Preload("Order.Buyer"), "order_item").
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, count, nil
}

func (r *orderItemRepo) GetDetail(dbc dbctx.Context, id uuid.UUID) (*types.OrderItem, error) {
	var item types.OrderItem
	if err := dbc.DB(r.db).
		Preload("Course").
		Preload("Course.Instructor").
		Preload("Order").
		Preload("Order.Buyer").
		Preload("Order.Transaction").
		Where("id = ?", id).
		Limit(1).
		Find(&item).Error; err != nil {
		return nil, err
	}
	if item.ID == uuid.Nil {
		return nil, nil
	}
	return &item, nil
}

func (r *orderItemRepo) CountByCourse(dbc dbctx.Context, courseID uuid.UUID) (int64, error) {
	var count int64
	err := dbc.DB(r.db).Model(&types.OrderItem{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}
