package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursehub-backend/internal/data/dberr"
	"github.com/yungbote/coursehub-backend/internal/data/repos"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/domain/commerce"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
	"github.com/yungbote/coursehub-backend/internal/pkg/pagination"
	"github.com/yungbote/coursehub-backend/internal/pkg/pricing"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
	"github.com/yungbote/coursehub-backend/internal/platform/payments"
)

type OrderCourse struct {
	ID    uuid.UUID `json:"id" validate:"required"`
	Price float64   `json:"price" validate:"gte=0"`
}

type OrderInput struct {
	Courses []OrderCourse `json:"courses" validate:"required,min=1,dive"`
	Amount  float64       `json:"amount" validate:"gte=0"`
	Gateway string        `json:"gateway" validate:"omitempty,oneof=paypal paystack"`
}

type OrderCreated struct {
	OrderNumber string `json:"orderNumber"`
	Reference   string `json:"reference"`
	Status      string `json:"status"`
	Link        string `json:"link"`
}

type ConfirmResult struct {
	Reference        string `json:"reference"`
	ThirdPartyRef    string `json:"thirdPartyRef"`
	Status           string `json:"status"`
	AlreadyProcessed bool   `json:"already_processed"`
}

type ReadProgress struct {
	Done  int64 `json:"done"`
	OutOf int64 `json:"outOf"`
}

type OrderedItemDetail struct {
	Item    *types.OrderItem          `json:"item"`
	Reads   ReadProgress              `json:"reads"`
	Results []*types.AssessmentResult `json:"results"`
}

type OrderConfig struct {
	TaxRate  float64
	Currency string
}

type OrderService interface {
	Create(ctx context.Context, in OrderInput) (*OrderCreated, error)
	Confirm(ctx context.Context, thirdPartyRef string) (*ConfirmResult, error)
	CancelForStudent(ctx context.Context, thirdPartyRef string) (*types.Transaction, error)
	CancelForAdmin(ctx context.Context, thirdPartyRef string) (*types.Transaction, error)
	// ExpireStale cancels pending orders created before now-olderThan.
	ExpireStale(ctx context.Context, olderThan time.Duration) (int, error)
	ListTransactions(ctx context.Context, filter repos.TransactionFilter, p pagination.Params) (pagination.Page[*types.Transaction], error)
	GetTransactionDetail(ctx context.Context, id uuid.UUID) (*types.Transaction, error)
	ListOrderedItems(ctx context.Context, filter repos.OrderedItemFilter, p pagination.Params) (pagination.Page[*types.OrderItem], error)
	OrderedItemDetail(ctx context.Context, id uuid.UUID) (*OrderedItemDetail, error)
}

type orderService struct {
	db            *gorm.DB
	log           *logger.Logger
	cfg           OrderConfig
	gateways      *payments.Registry
	courseRepo    repos.CourseRepo
	userRepo      repos.UserRepo
	trxRepo       repos.TransactionRepo
	orderRepo     repos.OrderRepo
	itemRepo      repos.OrderItemRepo
	subRepo       repos.CourseContentSubRepo
	readRepo      repos.CourseReadRepo
	resultRepo    repos.AssessmentResultRepo
	notifications NotificationService
	outbox        MailOutbox
	templates     MailTemplates
}

type OrderDeps struct {
	Gateways      *payments.Registry
	Courses       repos.CourseRepo
	Users         repos.UserRepo
	Transactions  repos.TransactionRepo
	Orders        repos.OrderRepo
	Items         repos.OrderItemRepo
	Subs          repos.CourseContentSubRepo
	Reads         repos.CourseReadRepo
	Results       repos.AssessmentResultRepo
	Notifications NotificationService
	Outbox        MailOutbox
	Templates     MailTemplates
}

func NewOrderService(db *gorm.DB, log *logger.Logger, cfg OrderConfig, deps OrderDeps) OrderService {
	if cfg.TaxRate < 0 {
		cfg.TaxRate = pricing.DefaultTaxRate
	}
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}
	return &orderService{
		db:            db,
		log:           log.With("service", "OrderService"),
		cfg:           cfg,
		gateways:      deps.Gateways,
		courseRepo:    deps.Courses,
		userRepo:      deps.Users,
		trxRepo:       deps.Transactions,
		orderRepo:     deps.Orders,
		itemRepo:      deps.Items,
		subRepo:       deps.Subs,
		readRepo:      deps.Reads,
		resultRepo:    deps.Results,
		notifications: deps.Notifications,
		outbox:        deps.Outbox,
		templates:     deps.Templates,
	}
}

var (
	errItemPriceMismatch = apierr.BadRequest("price_mismatch", "The Sum of the course(s') price(s) does not amount to the order item(s') price(s) supplied")
	errTotalMismatch     = apierr.BadRequest("amount_mismatch", "The Sum of the course(s') prices does not amount to the total supplied")
	errTrxNotFound       = apierr.NotFound("transaction_not_found", "Transaction not found")
)

// checkAmounts compares the catalog price of every item, taxed, against both
// the supplied item prices and the amount the gateway will authorize.
func (s *orderService) checkAmounts(courses map[uuid.UUID]*types.Course, items []OrderCourse, amountWithTax float64) error {
	var priceSum, suppliedSum float64
	for _, it := range items {
		c := courses[it.ID]
		priceSum += pricing.DiscountedPrice(c.Price, c.Discount)
		suppliedSum += it.Price
	}
	expected := pricing.AmountWithTax(priceSum, s.cfg.TaxRate)
	if expected != pricing.AmountWithTax(suppliedSum, s.cfg.TaxRate) {
		return errItemPriceMismatch
	}
	if expected != amountWithTax {
		return errTotalMismatch
	}
	return nil
}

func (s *orderService) loadCourses(dbc dbctx.Context, items []OrderCourse) (map[uuid.UUID]*types.Course, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	rows, err := s.courseRepo.GetByIDs(dbc, ids)
	if err != nil {
		return nil, internalErr("load courses", err)
	}
	byID := make(map[uuid.UUID]*types.Course, len(rows))
	for _, c := range rows {
		byID[c.ID] = c
	}
	for _, it := range items {
		c, ok := byID[it.ID]
		if !ok || !c.IsPublished {
			return nil, apierr.Newf(http.StatusNotFound, "course_not_found", "Course %s not found", it.ID)
		}
	}
	return byID, nil
}

func (s *orderService) Create(ctx context.Context, in OrderInput) (*OrderCreated, error) {
	rd, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	if len(in.Courses) == 0 {
		return nil, apierr.BadRequest("empty_order", "At least one course is required")
	}
	seen := map[uuid.UUID]bool{}
	for _, it := range in.Courses {
		if seen[it.ID] {
			return nil, apierr.BadRequest("duplicate_course", "A course can only appear once in an order")
		}
		seen[it.ID] = true
	}
	gw, err := s.gateways.Get(in.Gateway)
	if err != nil {
		return nil, apierr.New(http.StatusBadRequest, "unknown_gateway", err)
	}

	dbc := dbctx.New(ctx)
	courses, err := s.loadCourses(dbc, in.Courses)
	if err != nil {
		return nil, err
	}
	for _, it := range in.Courses {
		bought, err := s.itemRepo.HasConfirmedPurchase(dbc, rd.UserID, it.ID)
		if err != nil {
			return nil, internalErr("check purchase", err)
		}
		if bought {
			return nil, apierr.Newf(http.StatusBadRequest, "already_purchased",
				"This course [%s] has already been purchased", courses[it.ID].Title)
		}
	}
	amountWithTax := pricing.AmountWithTax(in.Amount, s.cfg.TaxRate)
	if err := s.checkAmounts(courses, in.Courses, amountWithTax); err != nil {
		return nil, err
	}

	reference := pricing.TrxReference()
	gwOrder, err := gw.CreateOrder(ctx, payments.CreateOrderRequest{
		Amount:    amountWithTax,
		Currency:  s.cfg.Currency,
		Email:     rd.Email,
		Reference: reference,
	})
	if err != nil {
		s.log.Error("Gateway order creation failed", "gateway", gw.Name(), "error", err)
		return nil, apierr.New(http.StatusBadGateway, "gateway_error", fmt.Errorf("create payment order: %w", err))
	}

	trx := &types.Transaction{
		UserID:        rd.UserID,
		Reference:     reference,
		ThirdPartyRef: gwOrder.ID,
		Status:        types.StatusPending,
		Amount:        amountWithTax,
		SubAmount:     pricing.Round2(in.Amount),
		Currency:      s.cfg.Currency,
		Narration:     pricing.Narration(len(in.Courses)),
		Gateway:       gw.Name(),
		Purpose:       commerce.PurposeCoursePayment,
	}
	order := &types.Order{
		OrderNumber: pricing.OrderNumber(),
		BuyerID:     rd.UserID,
		Status:      types.StatusPending,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.WithTx(ctx, tx)
		if err := s.trxRepo.Create(txc, trx); err != nil {
			if dberr.IsUniqueViolation(err) {
				return apierr.Conflict("reference_exists", "Trx reference exists.")
			}
			return err
		}
		order.TransactionID = trx.ID
		if err := s.orderRepo.Create(txc, order); err != nil {
			return err
		}
		items := make([]*types.OrderItem, 0, len(in.Courses))
		for _, it := range in.Courses {
			items = append(items, &types.OrderItem{OrderID: order.ID, CourseID: it.ID, Price: pricing.Round2(it.Price)})
		}
		if err := s.itemRepo.CreateBatch(txc, items); err != nil {
			return err
		}
		// Re-check against prices read inside the transaction.
		fresh, err := s.loadCourses(txc, in.Courses)
		if err != nil {
			return err
		}
		return s.checkAmounts(fresh, in.Courses, amountWithTax)
	})
	if err != nil {
		if apierr.StatusOf(err) != 0 {
			return nil, err
		}
		return nil, internalErr("create order", err)
	}
	s.log.Info("Order created",
		"order_id", order.ID,
		"reference", reference,
		"gateway", gw.Name(),
		"amount", amountWithTax,
	)
	return &OrderCreated{
		OrderNumber: gwOrder.ID,
		Reference:   reference,
		Status:      gwOrder.Status,
		Link:        gwOrder.ApproveURL,
	}, nil
}

func (s *orderService) Confirm(ctx context.Context, thirdPartyRef string) (*ConfirmResult, error) {
	rd, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	var (
		result  *ConfirmResult
		notices []*types.Notification
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.WithTx(ctx, tx)
		trx, err := s.trxRepo.GetByThirdPartyRef(txc, thirdPartyRef, true)
		if err != nil {
			return internalErr("load transaction", err)
		}
		if trx == nil || trx.UserID != rd.UserID {
			return errTrxNotFound
		}
		result = &ConfirmResult{Reference: trx.Reference, ThirdPartyRef: trx.ThirdPartyRef, Status: trx.Status}
		switch trx.Status {
		case types.StatusConfirmed:
			result.AlreadyProcessed = true
			return nil
		case types.StatusCancelled, types.StatusRefunded:
			return apierr.Newf(http.StatusConflict, "transaction_"+trx.Status, "Transaction has been %s", trx.Status)
		}

		gw, err := s.gateways.Get(trx.Gateway)
		if err != nil {
			return internalErr("resolve gateway", err)
		}
		capture, err := gw.Capture(ctx, trx.ThirdPartyRef)
		if err != nil {
			if errors.Is(err, payments.ErrCaptureIncomplete) {
				return apierr.New(http.StatusPaymentRequired, "payment_incomplete", err)
			}
			return apierr.New(http.StatusBadGateway, "gateway_error", fmt.Errorf("capture payment: %w", err))
		}
		if capture.AlreadyCaptured {
			s.log.Warn("Gateway reports order already captured", "reference", trx.Reference)
		} else if pricing.Round2(capture.Amount) != trx.Amount {
			s.log.Warn("Captured amount does not match transaction",
				"reference", trx.Reference,
				"captured", capture.Amount,
				"expected", trx.Amount,
			)
			return apierr.Newf(http.StatusPaymentRequired, "payment_amount_mismatch",
				"Captured amount %.2f does not match the order total %.2f", capture.Amount, trx.Amount)
		}

		ok, err := s.trxRepo.TransitionStatus(txc, trx.ID, types.StatusPending, types.StatusConfirmed)
		if err != nil {
			return internalErr("confirm transaction", err)
		}
		if !ok {
			result.Status = types.StatusConfirmed
			result.AlreadyProcessed = true
			return nil
		}
		order, err := s.orderRepo.GetByTransactionID(txc, trx.ID)
		if err != nil {
			return internalErr("load order", err)
		}
		if order == nil {
			return internalErr("load order", errors.New("transaction has no order"))
		}
		moved, err := s.orderRepo.TransitionStatus(txc, order.ID, types.StatusPending, types.StatusConfirmed)
		if err != nil {
			return internalErr("confirm order", err)
		}
		if !moved {
			return internalErr("confirm order", fmt.Errorf("order %s is %s, not pending", order.ID, order.Status))
		}
		result.Status = types.StatusConfirmed

		buyer := order.Buyer
		if buyer == nil {
			return internalErr("load buyer", errors.New("order has no buyer"))
		}
		titles := make([]string, 0, len(order.Items))
		for _, item := range order.Items {
			if item.Course == nil || item.Course.Instructor == nil {
				continue
			}
			titles = append(titles, item.Course.Title)
			inst := item.Course.Instructor
			notices = append(notices, staffFanOut("Course enrollment",
				fmt.Sprintf("%s has enrolled for your course [%s]", buyer.FullName(), item.Course.Title),
				fmt.Sprintf("%s has enrolled for the course [%s] created by %s [%s]",
					buyer.FullName(), item.Course.Title, inst.FullName(), inst.Role),
				inst)...)
		}
		if err := s.notifications.CreateBulk(txc, notices); err != nil {
			return internalErr("create notifications", err)
		}
		trx.Status = types.StatusConfirmed
		return s.outbox.Enqueue(txc, s.templates.OrderComplete(buyer, trx, titles))
	})
	if err != nil {
		if apierr.StatusOf(err) != 0 {
			return nil, err
		}
		return nil, internalErr("confirm order", err)
	}
	if result.AlreadyProcessed {
		s.log.Info("Confirm repeated for processed transaction", "reference", result.Reference)
		return result, nil
	}
	s.notifications.Publish(ctx, notices)
	s.log.Info("Order confirmed", "reference", result.Reference, "notifications", len(notices))
	return result, nil
}

func (s *orderService) CancelForStudent(ctx context.Context, thirdPartyRef string) (*types.Transaction, error) {
	rd, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.cancel(ctx, thirdPartyRef, rd.UserID)
}

func (s *orderService) CancelForAdmin(ctx context.Context, thirdPartyRef string) (*types.Transaction, error) {
	return s.cancel(ctx, thirdPartyRef, uuid.Nil)
}

// cancel moves a pending transaction and its order to cancelled. ownerID
// restricts the lookup to one buyer unless it is uuid.Nil.
func (s *orderService) cancel(ctx context.Context, thirdPartyRef string, ownerID uuid.UUID) (*types.Transaction, error) {
	var out *types.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.WithTx(ctx, tx)
		trx, err := s.trxRepo.GetByThirdPartyRef(txc, thirdPartyRef, true)
		if err != nil {
			return internalErr("load transaction", err)
		}
		if trx == nil || (ownerID != uuid.Nil && trx.UserID != ownerID) {
			return errTrxNotFound
		}
		if err := s.cancelLocked(txc, trx); err != nil {
			return err
		}
		out = trx
		return nil
	})
	if err != nil {
		if apierr.StatusOf(err) != 0 {
			return nil, err
		}
		return nil, internalErr("cancel order", err)
	}
	s.log.Info("Order cancelled", "reference", out.Reference)
	return out, nil
}

func (s *orderService) cancelLocked(txc dbctx.Context, trx *types.Transaction) error {
	switch trx.Status {
	case types.StatusCancelled:
		return apierr.Conflict("already_cancelled", "Transaction already cancelled")
	case types.StatusPending:
	default:
		return apierr.NotFound("not_cancellable", "Transaction not available for cancellation")
	}
	ok, err := s.trxRepo.TransitionStatus(txc, trx.ID, types.StatusPending, types.StatusCancelled)
	if err != nil {
		return internalErr("cancel transaction", err)
	}
	if !ok {
		return apierr.Conflict("already_cancelled", "Transaction already cancelled")
	}
	order, err := s.orderRepo.GetByTransactionID(txc, trx.ID)
	if err != nil {
		return internalErr("load order", err)
	}
	if order != nil {
		moved, err := s.orderRepo.TransitionStatus(txc, order.ID, types.StatusPending, types.StatusCancelled)
		if err != nil {
			return internalErr("cancel order", err)
		}
		if !moved {
			return internalErr("cancel order", fmt.Errorf("order %s is %s, not pending", order.ID, order.Status))
		}
	}
	trx.Status = types.StatusCancelled
	buyer, err := s.userRepo.GetByID(txc, trx.UserID)
	if err != nil {
		return internalErr("load buyer", err)
	}
	if buyer == nil {
		return nil
	}
	return s.outbox.Enqueue(txc, s.templates.OrderCancelled(buyer, trx))
}

func (s *orderService) ExpireStale(ctx context.Context, olderThan time.Duration) (int, error) {
	before := time.Now().UTC().Add(-olderThan)
	stale, err := s.orderRepo.ListStalePending(dbctx.New(ctx), before, 100)
	if err != nil {
		return 0, fmt.Errorf("list stale orders: %w", err)
	}
	expired := 0
	for _, order := range stale {
		if order.Transaction == nil {
			continue
		}
		ref := order.Transaction.ThirdPartyRef
		cancelled := false
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			txc := dbctx.WithTx(ctx, tx)
			trx, err := s.trxRepo.GetByThirdPartyRef(txc, ref, true)
			if err != nil || trx == nil || trx.Status != types.StatusPending {
				return err
			}
			if err := s.cancelLocked(txc, trx); err != nil {
				return err
			}
			cancelled = true
			return nil
		})
		if err != nil {
			s.log.Warn("Expire order failed", "order_id", order.ID, "error", err)
			continue
		}
		if cancelled {
			expired++
		}
	}
	return expired, nil
}

func (s *orderService) ListTransactions(ctx context.Context, filter repos.TransactionFilter, p pagination.Params) (pagination.Page[*types.Transaction], error) {
	rd, err := requestUser(ctx)
	if err != nil {
		return pagination.Page[*types.Transaction]{}, err
	}
	if isStaff(rd) {
		filter.WithUser = true
	} else {
		filter.UserID = rd.UserID
		filter.WithUser = false
	}
	rows, count, err := s.trxRepo.List(dbctx.New(ctx), filter, p)
	if err != nil {
		return pagination.Page[*types.Transaction]{}, internalErr("list transactions", err)
	}
	return pagination.NewPage(rows, count), nil
}

func (s *orderService) GetTransactionDetail(ctx context.Context, id uuid.UUID) (*types.Transaction, error) {
	rd, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	trx, err := s.trxRepo.GetByID(dbctx.New(ctx), id)
	if err != nil {
		return nil, internalErr("load transaction", err)
	}
	if trx == nil || (!isStaff(rd) && trx.UserID != rd.UserID) {
		return nil, errTrxNotFound
	}
	return trx, nil
}

func (s *orderService) ListOrderedItems(ctx context.Context, filter repos.OrderedItemFilter, p pagination.Params) (pagination.Page[*types.OrderItem], error) {
	rd, err := requestUser(ctx)
	if err != nil {
		return pagination.Page[*types.OrderItem]{}, err
	}
	if !isStaff(rd) {
		filter.InstructorID = rd.UserID
	}
	filter.Status = strings.ToLower(strings.TrimSpace(filter.Status))
	rows, count, err := s.itemRepo.List(dbctx.New(ctx), filter, p)
	if err != nil {
		return pagination.Page[*types.OrderItem]{}, internalErr("list ordered items", err)
	}
	return pagination.NewPage(rows, count), nil
}

func (s *orderService) OrderedItemDetail(ctx context.Context, id uuid.UUID) (*OrderedItemDetail, error) {
	rd, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	item, err := s.itemRepo.GetDetail(dbc, id)
	if err != nil {
		return nil, internalErr("load ordered item", err)
	}
	if item == nil || item.Course == nil || item.Order == nil {
		return nil, apierr.NotFound("item_not_found", "Ordered item not found")
	}
	if !isStaff(rd) && item.Course.InstructorID != rd.UserID {
		return nil, apierr.NotFound("item_not_found", "Ordered item not found")
	}
	buyerID := item.Order.BuyerID
	done, err := s.readRepo.Count(dbc, repos.ReadCountFilter{CourseID: item.CourseID, StudentID: buyerID})
	if err != nil {
		return nil, internalErr("count reads", err)
	}
	outOf, err := s.subRepo.Count(dbc, repos.SubCountFilter{CourseID: item.CourseID})
	if err != nil {
		return nil, internalErr("count subs", err)
	}
	results, err := s.resultRepo.ListForCourse(dbc, item.CourseID, buyerID)
	if err != nil {
		return nil, internalErr("list results", err)
	}
	return &OrderedItemDetail{
		Item:    item,
		Reads:   ReadProgress{Done: done, OutOf: outOf},
		Results: results,
	}, nil
}
