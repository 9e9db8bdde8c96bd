package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	"github.com/yungbote/coursehub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/pagination"
	"github.com/yungbote/coursehub-backend/internal/platform/payments"
)

func countRows(t *testing.T, h *harness, model any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	q := h.db.Model(model)
	if where != "" {
		q = q.Where(where, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestOrderCreateConfirmAndRepeat(t *testing.T) {
	h := newHarness(t)
	bg := context.Background()
	instructor := testutil.SeedUser(t, bg, h.db, types.RoleInstructor)
	student := testutil.SeedUser(t, bg, h.db, types.RoleStudent)
	course := testutil.SeedCourse(t, bg, h.db, instructor.ID, 100, 10, true)
	ctx := asUser(student)

	created, err := h.orders.Create(ctx, OrderInput{
		Courses: []OrderCourse{{ID: course.ID, Price: 90}},
		Amount:  90,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Link == "" || created.OrderNumber == "" || created.Reference == "" {
		t.Fatalf("Create: incomplete result %+v", created)
	}
	var trx types.Transaction
	if err := h.db.Where("reference = ?", created.Reference).First(&trx).Error; err != nil {
		t.Fatalf("load trx: %v", err)
	}
	if trx.Status != types.StatusPending || trx.Amount != 94.5 || trx.SubAmount != 90 {
		t.Fatalf("trx: status=%s amount=%v sub=%v", trx.Status, trx.Amount, trx.SubAmount)
	}

	res, err := h.orders.Confirm(ctx, created.OrderNumber)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if res.Status != types.StatusConfirmed || res.AlreadyProcessed {
		t.Fatalf("Confirm: unexpected result %+v", res)
	}
	if n := countRows(t, h, &types.Order{}, "transaction_id = ? AND status = ?", trx.ID, types.StatusConfirmed); n != 1 {
		t.Fatalf("confirmed orders: want=1 got=%d", n)
	}
	// Owner, admin group and sub-admin group.
	if got := h.pub.count(); got != 3 {
		t.Fatalf("published notifications: want=3 got=%d", got)
	}
	if got := h.outbox.count(); got != 1 {
		t.Fatalf("queued mail: want=1 got=%d", got)
	}

	again, err := h.orders.Confirm(ctx, created.OrderNumber)
	if err != nil {
		t.Fatalf("Confirm repeat: %v", err)
	}
	if !again.AlreadyProcessed {
		t.Fatalf("Confirm repeat: expected already_processed")
	}
	if h.gw.captures != 1 {
		t.Fatalf("captures: want=1 got=%d", h.gw.captures)
	}
	if got := h.pub.count(); got != 3 {
		t.Fatalf("repeat confirm published again: %d", got)
	}

	_, err = h.orders.Create(ctx, OrderInput{Courses: []OrderCourse{{ID: course.ID, Price: 90}}, Amount: 90})
	wantStatus(t, err, http.StatusBadRequest)
}

func TestOrderCreateRejectsMismatchedTotals(t *testing.T) {
	h := newHarness(t)
	bg := context.Background()
	instructor := testutil.SeedUser(t, bg, h.db, types.RoleInstructor)
	student := testutil.SeedUser(t, bg, h.db, types.RoleStudent)
	course := testutil.SeedCourse(t, bg, h.db, instructor.ID, 100, 0, true)
	ctx := asUser(student)

	_, err := h.orders.Create(ctx, OrderInput{Courses: []OrderCourse{{ID: course.ID, Price: 80}}, Amount: 80})
	wantStatus(t, err, http.StatusBadRequest)
	if err.Error() != errItemPriceMismatch.Error() {
		t.Fatalf("item mismatch message: %v", err)
	}

	_, err = h.orders.Create(ctx, OrderInput{Courses: []OrderCourse{{ID: course.ID, Price: 100}}, Amount: 90})
	wantStatus(t, err, http.StatusBadRequest)
	if err.Error() != errTotalMismatch.Error() {
		t.Fatalf("total mismatch message: %v", err)
	}
	if h.gw.created != 0 {
		t.Fatalf("gateway should not be called on mismatch, calls=%d", h.gw.created)
	}
}

func TestOrderCreateRollsBackWhenPriceChangesBeforeCommit(t *testing.T) {
	h := newHarness(t)
	bg := context.Background()
	instructor := testutil.SeedUser(t, bg, h.db, types.RoleInstructor)
	student := testutil.SeedUser(t, bg, h.db, types.RoleStudent)
	course := testutil.SeedCourse(t, bg, h.db, instructor.ID, 100, 0, true)
	h.gw.onCreate = func() {
		if err := h.db.Model(&types.Course{}).Where("id = ?", course.ID).Update("price", 120).Error; err != nil {
			t.Errorf("bump price: %v", err)
		}
	}

	_, err := h.orders.Create(asUser(student), OrderInput{Courses: []OrderCourse{{ID: course.ID, Price: 100}}, Amount: 100})
	wantStatus(t, err, http.StatusBadRequest)
	if n := countRows(t, h, &types.Transaction{}, ""); n != 0 {
		t.Fatalf("transactions after rollback: want=0 got=%d", n)
	}
	if n := countRows(t, h, &types.OrderItem{}, ""); n != 0 {
		t.Fatalf("order items after rollback: want=0 got=%d", n)
	}
}

func TestOrderCreateRejectsUnpublishedAndUnknownGateway(t *testing.T) {
	h := newHarness(t)
	bg := context.Background()
	instructor := testutil.SeedUser(t, bg, h.db, types.RoleInstructor)
	student := testutil.SeedUser(t, bg, h.db, types.RoleStudent)
	draft := testutil.SeedCourse(t, bg, h.db, instructor.ID, 50, 0, false)
	ctx := asUser(student)

	_, err := h.orders.Create(ctx, OrderInput{Courses: []OrderCourse{{ID: draft.ID, Price: 50}}, Amount: 50})
	wantStatus(t, err, http.StatusNotFound)

	_, err = h.orders.Create(ctx, OrderInput{Courses: []OrderCourse{{ID: draft.ID, Price: 50}}, Amount: 50, Gateway: "stripe"})
	wantStatus(t, err, http.StatusBadRequest)
}

func TestConfirmCancelledTransactionConflicts(t *testing.T) {
	h := newHarness(t)
	bg := context.Background()
	instructor := testutil.SeedUser(t, bg, h.db, types.RoleInstructor)
	student := testutil.SeedUser(t, bg, h.db, types.RoleStudent)
	course := testutil.SeedCourse(t, bg, h.db, instructor.ID, 40, 0, true)
	trx, _ := testutil.SeedOrder(t, bg, h.db, student.ID, types.StatusCancelled, course)

	_, err := h.orders.Confirm(asUser(student), trx.ThirdPartyRef)
	wantStatus(t, err, http.StatusConflict)
	if h.gw.captures != 0 {
		t.Fatalf("cancelled transaction must not be captured")
	}
}

func TestConfirmIncompleteCaptureLeavesOrderPending(t *testing.T) {
	h := newHarness(t)
	bg := context.Background()
	instructor := testutil.SeedUser(t, bg, h.db, types.RoleInstructor)
	student := testutil.SeedUser(t, bg, h.db, types.RoleStudent)
	course := testutil.SeedCourse(t, bg, h.db, instructor.ID, 40, 0, true)
	trx, order := testutil.SeedOrder(t, bg, h.db, student.ID, types.StatusPending, course)
	h.gw.captureErr = payments.ErrCaptureIncomplete

	_, err := h.orders.Confirm(asUser(student), trx.ThirdPartyRef)
	wantStatus(t, err, http.StatusPaymentRequired)
	if n := countRows(t, h, &types.Order{}, "id = ? AND status = ?", order.ID, types.StatusPending); n != 1 {
		t.Fatalf("order should stay pending")
	}
	if h.outbox.count() != 0 || h.pub.count() != 0 {
		t.Fatalf("no side effects expected on failed capture")
	}
}

func TestConfirmRejectsShortCapture(t *testing.T) {
	h := newHarness(t)
	bg := context.Background()
	instructor := testutil.SeedUser(t, bg, h.db, types.RoleInstructor)
	student := testutil.SeedUser(t, bg, h.db, types.RoleStudent)
	course := testutil.SeedCourse(t, bg, h.db, instructor.ID, 100, 0, true)
	ctx := asUser(student)

	created, err := h.orders.Create(ctx, OrderInput{Courses: []OrderCourse{{ID: course.ID, Price: 100}}, Amount: 100})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	h.gw.shortBy = 104

	_, err = h.orders.Confirm(ctx, created.OrderNumber)
	wantStatus(t, err, http.StatusPaymentRequired)
	if n := countRows(t, h, &types.Transaction{}, "reference = ? AND status = ?", created.Reference, types.StatusPending); n != 1 {
		t.Fatalf("transaction should stay pending after a short capture")
	}
	if n := countRows(t, h, &types.Order{}, "status = ?", types.StatusConfirmed); n != 0 {
		t.Fatalf("order must not be confirmed after a short capture")
	}
	if h.outbox.count() != 0 || h.pub.count() != 0 {
		t.Fatalf("no side effects expected on amount mismatch")
	}
	owned, err := h.access.PurchasedCourses(ctx)
	if err != nil {
		t.Fatalf("PurchasedCourses: %v", err)
	}
	if len(owned) != 0 {
		t.Fatalf("short capture unlocked %d courses", len(owned))
	}

	h.gw.shortBy = 0
	res, err := h.orders.Confirm(ctx, created.OrderNumber)
	if err != nil {
		t.Fatalf("Confirm full capture: %v", err)
	}
	if res.Status != types.StatusConfirmed {
		t.Fatalf("status: want=%s got=%s", types.StatusConfirmed, res.Status)
	}
}

func TestConfirmRollsBackWhenOrderIsNotPending(t *testing.T) {
	h := newHarness(t)
	bg := context.Background()
	instructor := testutil.SeedUser(t, bg, h.db, types.RoleInstructor)
	student := testutil.SeedUser(t, bg, h.db, types.RoleStudent)
	course := testutil.SeedCourse(t, bg, h.db, instructor.ID, 40, 0, true)
	trx, order := testutil.SeedOrder(t, bg, h.db, student.ID, types.StatusPending, course)
	h.gw.amounts = map[string]float64{trx.ThirdPartyRef: trx.Amount}
	if err := h.db.Model(&types.Order{}).Where("id = ?", order.ID).Update("status", types.StatusCancelled).Error; err != nil {
		t.Fatalf("detach order: %v", err)
	}

	_, err := h.orders.Confirm(asUser(student), trx.ThirdPartyRef)
	wantStatus(t, err, http.StatusInternalServerError)
	if n := countRows(t, h, &types.Transaction{}, "id = ? AND status = ?", trx.ID, types.StatusPending); n != 1 {
		t.Fatalf("transaction must stay pending when its order cannot move")
	}
	if h.outbox.count() != 0 || h.pub.count() != 0 {
		t.Fatalf("no side effects expected on rollback")
	}
}

func TestConfirmOtherUsersTransactionNotFound(t *testing.T) {
	h := newHarness(t)
	bg := context.Background()
	instructor := testutil.SeedUser(t, bg, h.db, types.RoleInstructor)
	buyer := testutil.SeedUser(t, bg, h.db, types.RoleStudent)
	other := testutil.SeedUser(t, bg, h.db, types.RoleStudent)
	course := testutil.SeedCourse(t, bg, h.db, instructor.ID, 40, 0, true)
	trx, _ := testutil.SeedOrder(t, bg, h.db, buyer.ID, types.StatusPending, course)

	_, err := h.orders.Confirm(asUser(other), trx.ThirdPartyRef)
	wantStatus(t, err, http.StatusNotFound)
}

func TestCancelTransitions(t *testing.T) {
	h := newHarness(t)
	bg := context.Background()
	instructor := testutil.SeedUser(t, bg, h.db, types.RoleInstructor)
	student := testutil.SeedUser(t, bg, h.db, types.RoleStudent)
	course := testutil.SeedCourse(t, bg, h.db, instructor.ID, 40, 0, true)
	pending, order := testutil.SeedOrder(t, bg, h.db, student.ID, types.StatusPending, course)
	confirmed, _ := testutil.SeedOrder(t, bg, h.db, student.ID, types.StatusConfirmed, course)
	ctx := asUser(student)

	trx, err := h.orders.CancelForStudent(ctx, pending.ThirdPartyRef)
	if err != nil {
		t.Fatalf("CancelForStudent: %v", err)
	}
	if trx.Status != types.StatusCancelled {
		t.Fatalf("status: want=%s got=%s", types.StatusCancelled, trx.Status)
	}
	if n := countRows(t, h, &types.Order{}, "id = ? AND status = ?", order.ID, types.StatusCancelled); n != 1 {
		t.Fatalf("order should be cancelled with its transaction")
	}
	if h.outbox.count() != 1 {
		t.Fatalf("cancellation mail: want=1 got=%d", h.outbox.count())
	}

	_, err = h.orders.CancelForStudent(ctx, pending.ThirdPartyRef)
	wantStatus(t, err, http.StatusConflict)

	_, err = h.orders.CancelForAdmin(context.Background(), confirmed.ThirdPartyRef)
	wantStatus(t, err, http.StatusNotFound)
}

func TestExpireStaleCancelsOldPendingOrders(t *testing.T) {
	h := newHarness(t)
	bg := context.Background()
	instructor := testutil.SeedUser(t, bg, h.db, types.RoleInstructor)
	student := testutil.SeedUser(t, bg, h.db, types.RoleStudent)
	course := testutil.SeedCourse(t, bg, h.db, instructor.ID, 40, 0, true)
	_, old := testutil.SeedOrder(t, bg, h.db, student.ID, types.StatusPending, course)
	_, fresh := testutil.SeedOrder(t, bg, h.db, student.ID, types.StatusPending, course)
	if err := h.db.Model(&types.Order{}).Where("id = ?", old.ID).Update("created_at", time.Now().UTC().Add(-3*time.Hour)).Error; err != nil {
		t.Fatalf("age order: %v", err)
	}

	n, err := h.orders.ExpireStale(bg, time.Hour)
	if err != nil {
		t.Fatalf("ExpireStale: %v", err)
	}
	if n != 1 {
		t.Fatalf("expired: want=1 got=%d", n)
	}
	if c := countRows(t, h, &types.Order{}, "id = ? AND status = ?", fresh.ID, types.StatusPending); c != 1 {
		t.Fatalf("fresh order should remain pending")
	}
}

func TestListTransactionsScopesStudents(t *testing.T) {
	h := newHarness(t)
	bg := context.Background()
	instructor := testutil.SeedUser(t, bg, h.db, types.RoleInstructor)
	a := testutil.SeedUser(t, bg, h.db, types.RoleStudent)
	b := testutil.SeedUser(t, bg, h.db, types.RoleStudent)
	admin := testutil.SeedUser(t, bg, h.db, types.RoleAdmin)
	course := testutil.SeedCourse(t, bg, h.db, instructor.ID, 40, 0, true)
	testutil.SeedOrder(t, bg, h.db, a.ID, types.StatusPending, course)
	testutil.SeedOrder(t, bg, h.db, b.ID, types.StatusPending, course)

	page, err := h.orders.ListTransactions(asUser(a), repos.TransactionFilter{}, pagination.Params{})
	if err != nil {
		t.Fatalf("ListTransactions student: %v", err)
	}
	if page.Count != 1 {
		t.Fatalf("student sees: want=1 got=%d", page.Count)
	}
	page, err = h.orders.ListTransactions(asUser(admin), repos.TransactionFilter{}, pagination.Params{})
	if err != nil {
		t.Fatalf("ListTransactions admin: %v", err)
	}
	if page.Count != 2 {
		t.Fatalf("admin sees: want=2 got=%d", page.Count)
	}
}
