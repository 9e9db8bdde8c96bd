package commerce

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursehub-backend/internal/domain/catalog"
	"github.com/yungbote/coursehub-backend/internal/domain/identity"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusRefunded  = "refunded"

	PurposeCoursePayment = "course-payment"
)

type Transaction struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID      `gorm:"type:uuid;column:user_id;not null;index" json:"userId"`
	User          *identity.User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Reference     string         `gorm:"column:reference;uniqueIndex;not null" json:"reference"`
	ThirdPartyRef string         `gorm:"column:third_party_ref;uniqueIndex;not null" json:"thirdPartyRef"`
	Status        string         `gorm:"column:status;not null;index" json:"status"`
	Amount        float64        `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	SubAmount     float64        `gorm:"column:sub_amount;type:numeric(12,2);not null" json:"subAmount"`
	Currency      string         `gorm:"column:currency;not null;default:USD" json:"currency"`
	Narration     string         `gorm:"column:narration" json:"narration"`
	Gateway       string         `gorm:"column:gateway;not null" json:"gateway"`
	Purpose       string         `gorm:"column:purpose;not null" json:"purpose"`
	ConfirmedAt   *time.Time     `gorm:"column:confirmed_at" json:"confirmedAt,omitempty"`
	CancelledAt   *time.Time     `gorm:"column:cancelled_at" json:"cancelledAt,omitempty"`
	Order         *Order         `gorm:"foreignKey:TransactionID" json:"order,omitempty"`
	CreatedAt     time.Time      `gorm:"not null;index" json:"createdAt"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updatedAt"`
}

func (Transaction) TableName() string { return "transactions" }

func (t *Transaction) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type Order struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrderNumber   string         `gorm:"column:order_number;uniqueIndex;not null" json:"orderNumber"`
	BuyerID       uuid.UUID      `gorm:"type:uuid;column:buyer_id;not null;index" json:"buyerId"`
	Buyer         *identity.User `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	TransactionID uuid.UUID      `gorm:"type:uuid;column:transaction_id;uniqueIndex;not null" json:"transactionId"`
	Transaction   *Transaction   `gorm:"foreignKey:TransactionID" json:"transaction,omitempty"`
	Status        string         `gorm:"column:status;not null;index" json:"status"`
	Items         []*OrderItem   `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	CreatedAt     time.Time      `gorm:"not null;index" json:"createdAt"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updatedAt"`
}

func (Order) TableName() string { return "orders" }

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem snapshots the price a course was bought at.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;column:order_id;not null;index" json:"orderId"`
	Order     *Order          `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	CourseID  uuid.UUID       `gorm:"type:uuid;column:course_id;not null;index" json:"courseId"`
	Course    *catalog.Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Price     float64         `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	CreatedAt time.Time       `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time       `gorm:"not null" json:"updatedAt"`
}

func (OrderItem) TableName() string { return "order_item" }

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
