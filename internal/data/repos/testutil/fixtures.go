package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursehub-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, role types.Role) *types.User {
	tb.Helper()
	id := uuid.New()
	u := &types.User{
		ID:        id,
		Email:     fmt.Sprintf("%s@example.com", id.String()[:8]),
		Password:  "pw",
		FirstName: "Ada",
		LastName:  string(role),
		Role:      role,
		IsActive:  true,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedProgram(tb testing.TB, ctx context.Context, tx *gorm.DB, published bool) *types.Program {
	tb.Helper()
	p := &types.Program{ID: uuid.New(), Title: "program-" + uuid.NewString()[:8], IsPublished: published}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed program: %v", err)
	}
	return p
}

func SeedCategory(tb testing.TB, ctx context.Context, tx *gorm.DB, programID uuid.UUID, published bool) *types.Category {
	tb.Helper()
	c := &types.Category{ID: uuid.New(), Title: "category-" + uuid.NewString()[:8], ProgramID: programID, IsPublished: published}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed category: %v", err)
	}
	return c
}

// SeedCourse creates a course with its own program and category.
func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB, instructorID uuid.UUID, price float64, discount int, published bool) *types.Course {
	tb.Helper()
	prog := SeedProgram(tb, ctx, tx, true)
	cat := SeedCategory(tb, ctx, tx, prog.ID, true)
	c := &types.Course{
		ID:           uuid.New(),
		Title:        "course-" + uuid.NewString()[:8],
		ShortDesc:    "short",
		FullDesc:     "full",
		Price:        price,
		Discount:     discount,
		IsPublished:  published,
		InstructorID: instructorID,
		CategoryID:   cat.ID,
	}
	if err := tx.WithContext(ctx).Omit("Instructor", "Category", "Contents").Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedContent(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID uuid.UUID) *types.CourseContent {
	tb.Helper()
	c := &types.CourseContent{ID: uuid.New(), Title: "section", CourseID: courseID}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed content: %v", err)
	}
	return c
}

func SeedSub(tb testing.TB, ctx context.Context, tx *gorm.DB, content *types.CourseContent, order int, mediaType types.MediaType) *types.CourseContentSub {
	tb.Helper()
	s := &types.CourseContentSub{
		ID:              uuid.New(),
		Order:           order,
		Title:           fmt.Sprintf("lesson %d", order),
		CourseID:        content.CourseID,
		CourseContentID: content.ID,
		Duration:        10,
		Media:           "https://cdn.example.com/media.mp4",
		PreviewURL:      "https://cdn.example.com/preview.mp4",
		MediaType:       mediaType,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed sub: %v", err)
	}
	return s
}

func SeedQuestion(tb testing.TB, ctx context.Context, tx *gorm.DB, sub *types.CourseContentSub, correct, point int, published bool) *types.AssessmentQuestion {
	tb.Helper()
	q := &types.AssessmentQuestion{
		ID:                 uuid.New(),
		Question:           "question " + uuid.NewString()[:8],
		Options:            []string{"a", "b", "c"},
		CorrectOption:      correct,
		Point:              point,
		IsPublished:        published,
		CourseID:           sub.CourseID,
		CourseContentSubID: sub.ID,
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed question: %v", err)
	}
	return q
}

// SeedOrder creates a transaction, order and items for buyer in the given status.
func SeedOrder(tb testing.TB, ctx context.Context, tx *gorm.DB, buyerID uuid.UUID, status string, courses ...*types.Course) (*types.Transaction, *types.Order) {
	tb.Helper()
	var sum float64
	for _, c := range courses {
		sum += c.Price
	}
	trx := &types.Transaction{
		ID:            uuid.New(),
		UserID:        buyerID,
		Reference:     "GI-TX-" + uuid.NewString(),
		ThirdPartyRef: "PP-" + uuid.NewString(),
		Status:        status,
		Amount:        sum,
		SubAmount:     sum,
		Currency:      "USD",
		Narration:     "seed",
		Gateway:       "paypal",
		Purpose:       "course-payment",
	}
	if err := tx.WithContext(ctx).Omit("User", "Order").Create(trx).Error; err != nil {
		tb.Fatalf("seed trx: %v", err)
	}
	order := &types.Order{
		ID:            uuid.New(),
		OrderNumber:   "GI-C-" + uuid.NewString(),
		BuyerID:       buyerID,
		TransactionID: trx.ID,
		Status:        status,
	}
	if err := tx.WithContext(ctx).Omit("Buyer", "Transaction", "Items").Create(order).Error; err != nil {
		tb.Fatalf("seed order: %v", err)
	}
	for _, c := range courses {
		item := &types.OrderItem{ID: uuid.New(), OrderID: order.ID, CourseID: c.ID, Price: c.Price}
		if err := tx.WithContext(ctx).Omit("Order", "Course").Create(item).Error; err != nil {
			tb.Fatalf("seed order item: %v", err)
		}
		order.Items = append(order.Items, item)
	}
	return trx, order
}
