package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	"github.com/yungbote/coursehub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/platform/ctxutil"
	"github.com/yungbote/coursehub-backend/internal/platform/payments"
	"github.com/yungbote/coursehub-backend/internal/realtime"
)

type fakeGateway struct {
	mu         sync.Mutex
	name       string
	created    int
	captures   int
	captureErr error
	onCreate   func()
	amounts    map[string]float64 // authorized total per gateway order id
	shortBy    float64
}

func (g *fakeGateway) Name() string { return g.name }

func (g *fakeGateway) CreateOrder(_ context.Context, req payments.CreateOrderRequest) (*payments.GatewayOrder, error) {
	id := "GW-" + req.Reference
	g.mu.Lock()
	g.created++
	if g.amounts == nil {
		g.amounts = make(map[string]float64)
	}
	g.amounts[id] = req.Amount
	g.mu.Unlock()
	if g.onCreate != nil {
		g.onCreate()
	}
	return &payments.GatewayOrder{ID: id, Status: "CREATED", ApproveURL: "https://pay.example.com/approve"}, nil
}

func (g *fakeGateway) Capture(_ context.Context, id string) (*payments.CaptureResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.captures++
	if g.captureErr != nil {
		return nil, g.captureErr
	}
	return &payments.CaptureResult{ID: id, Status: "COMPLETED", Amount: g.amounts[id] - g.shortBy}, nil
}

type recordingOutbox struct {
	mu   sync.Mutex
	msgs []MailMessage
}

func (o *recordingOutbox) Enqueue(_ dbctx.Context, msgs ...MailMessage) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.msgs = append(o.msgs, msgs...)
	return nil
}

func (o *recordingOutbox) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.msgs)
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []realtime.SSEMessage
}

func (p *recordingPublisher) Publish(_ context.Context, msgs ...realtime.SSEMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msgs...)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.msgs)
}

type harness struct {
	db      *gorm.DB
	gw      *fakeGateway
	outbox  *recordingOutbox
	pub     *recordingPublisher
	courses CourseService
	orders  OrderService
	access  AccessService
	assess  AssessmentService
	notes   NotificationService
	reviews ReviewService
	reads   ReadService
	program ProgramService
	cat     CategoryService
	content ContentService
	subs    ContentSubService
	quiz    QuestionService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := testutil.Logger(t)
	gdb := testutil.DB(t)

	users := repos.NewUserRepo(gdb, log)
	programs := repos.NewProgramRepo(gdb, log)
	categories := repos.NewCategoryRepo(gdb, log)
	courses := repos.NewCourseRepo(gdb, log)
	contents := repos.NewCourseContentRepo(gdb, log)
	subs := repos.NewCourseContentSubRepo(gdb, log)
	questions := repos.NewAssessmentQuestionRepo(gdb, log)
	trxs := repos.NewTransactionRepo(gdb, log)
	orders := repos.NewOrderRepo(gdb, log)
	items := repos.NewOrderItemRepo(gdb, log)
	reads := repos.NewCourseReadRepo(gdb, log)
	attempts := repos.NewAssessmentAttemptRepo(gdb, log)
	results := repos.NewAssessmentResultRepo(gdb, log)
	reviews := repos.NewReviewRepo(gdb, log)
	notifications := repos.NewNotificationRepo(gdb, log)

	h := &harness{
		db:     gdb,
		gw:     &fakeGateway{name: payments.GatewayPayPal},
		outbox: &recordingOutbox{},
		pub:    &recordingPublisher{},
	}
	h.notes = NewNotificationService(log, notifications, h.pub)
	h.courses = NewCourseService(log, courses, categories, users, items)
	h.orders = NewOrderService(gdb, log, OrderConfig{TaxRate: 5, Currency: "USD"}, OrderDeps{
		Gateways:      payments.NewRegistry(payments.GatewayPayPal, h.gw),
		Courses:       courses,
		Users:         users,
		Transactions:  trxs,
		Orders:        orders,
		Items:         items,
		Subs:          subs,
		Reads:         reads,
		Results:       results,
		Notifications: h.notes,
		Outbox:        h.outbox,
		Templates:     MailTemplates{AppName: "CourseHub", BaseURL: "https://app.example.com"},
	})
	h.access = NewAccessService(log, h.courses, items, subs, reads, results)
	h.assess = NewAssessmentService(gdb, log, courses, subs, questions, attempts, results, h.notes)
	h.reviews = NewReviewService(gdb, log, h.courses, courses, reviews, items, h.notes)
	h.reads = NewReadService(log, reads, subs)
	h.program = NewProgramService(log, programs, categories)
	h.cat = NewCategoryService(log, programs, categories, courses)
	h.content = NewContentService(log, h.courses, contents, subs)
	h.subs = NewContentSubService(gdb, log, h.courses, contents, subs)
	h.quiz = NewQuestionService(log, h.courses, subs, questions, items)
	return h
}

func asUser(u *types.User) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{
		UserID:   u.ID,
		Role:     string(u.Role),
		Email:    u.Email,
		FullName: u.FullName(),
	})
}

func wantStatus(t *testing.T, err error, status int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected status %d, got nil error", status)
	}
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected api error with status %d, got %v", status, err)
	}
	if got := apierr.StatusOf(err); got != status {
		t.Fatalf("status: want=%d got=%d (%v)", status, got, err)
	}
}
