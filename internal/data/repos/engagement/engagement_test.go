package engagement

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/coursehub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
	"github.com/yungbote/coursehub-backend/internal/pkg/pagination"
)

func TestNotificationFeedAndMarkRead(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewNotificationRepo(db, testutil.Logger(t))

	me := uuid.New()
	someoneElse := uuid.New()
	rows := []*types.Notification{
		{Title: "t", Body: "mine", UserID: &me, UserGroup: types.RoleInstructor},
		{Title: "t", Body: "broadcast", UserGroup: types.RoleInstructor},
		{Title: "t", Body: "other", UserID: &someoneElse, UserGroup: types.RoleInstructor},
		{Title: "t", Body: "admin", UserGroup: types.RoleAdmin},
	}
	if err := repo.CreateBatch(dbc, rows); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	feed, count, err := repo.ListFeed(dbc, FeedFilter{Group: types.RoleInstructor, UserID: me}, pagination.Params{})
	if err != nil || count != 2 || len(feed) != 2 {
		t.Fatalf("expected own + broadcast, count=%d err=%v", count, err)
	}

	changed, err := repo.MarkRead(dbc, rows[0].ID)
	if err != nil || !changed {
		t.Fatalf("MarkRead: changed=%v err=%v", changed, err)
	}
	changed, err = repo.MarkRead(dbc, rows[0].ID)
	if err != nil || changed {
		t.Fatalf("second MarkRead must not change: changed=%v err=%v", changed, err)
	}

	unread := false
	_, count, err = repo.ListFeed(dbc, FeedFilter{Group: types.RoleInstructor, UserID: me, Read: &unread}, pagination.Params{})
	if err != nil || count != 1 {
		t.Fatalf("expected one unread, count=%d err=%v", count, err)
	}
}

func TestReadCountExcludesAssessments(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewCourseReadRepo(db, testutil.Logger(t))

	instructor := testutil.SeedUser(t, ctx, tx, types.RoleInstructor)
	student := testutil.SeedUser(t, ctx, tx, types.RoleStudent)
	course := testutil.SeedCourse(t, ctx, tx, instructor.ID, 10, 0, true)
	content := testutil.SeedContent(t, ctx, tx, course.ID)
	video := testutil.SeedSub(t, ctx, tx, content, 1, types.MediaVideo)
	quiz := testutil.SeedSub(t, ctx, tx, content, 2, types.MediaAssessment)

	for _, sub := range []*types.CourseContentSub{video, quiz} {
		if err := repo.Create(dbc, &types.CourseRead{CourseContentSubID: sub.ID, CourseID: course.ID, StudentID: student.ID}); err != nil {
			t.Fatalf("Create read: %v", err)
		}
	}
	all, err := repo.Count(dbc, ReadCountFilter{CourseID: course.ID, StudentID: student.ID})
	if err != nil || all != 2 {
		t.Fatalf("expected 2 reads, got %d err=%v", all, err)
	}
	lessons, err := repo.Count(dbc, ReadCountFilter{CourseID: course.ID, StudentID: student.ID, ExcludeAssessments: true})
	if err != nil || lessons != 1 {
		t.Fatalf("expected 1 non-assessment read, got %d err=%v", lessons, err)
	}
	if ok, err := repo.Exists(dbc, video.ID, student.ID); err != nil || !ok {
		t.Fatalf("Exists: ok=%v err=%v", ok, err)
	}
}

func TestReviewAverageIgnoresMuted(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewReviewRepo(db, testutil.Logger(t))

	courseID := uuid.New()
	reviews := []*types.Review{
		{UserID: uuid.New(), Rating: 5, ReviewFor: types.ReviewForCourse, CourseID: courseID},
		{UserID: uuid.New(), Rating: 4, ReviewFor: types.ReviewForCourse, CourseID: courseID},
		{UserID: uuid.New(), Rating: 1, ReviewFor: types.ReviewForCourse, CourseID: courseID, Muted: true},
	}
	for _, rv := range reviews {
		if err := repo.Create(dbc, rv); err != nil {
			t.Fatalf("Create review: %v", err)
		}
	}
	all, err := repo.AverageRating(dbc, courseID, true)
	if err != nil || all != 3.3 {
		t.Fatalf("expected 3.3, got %v err=%v", all, err)
	}
	public, err := repo.AverageRating(dbc, courseID, false)
	if err != nil || public != 4.5 {
		t.Fatalf("expected 4.5, got %v err=%v", public, err)
	}
}
