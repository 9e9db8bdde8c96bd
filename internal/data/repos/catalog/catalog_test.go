package catalog

import (
	"context"
	"testing"

	"github.com/yungbote/coursehub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
	"github.com/yungbote/coursehub-backend/internal/pkg/pagination"
	"github.com/yungbote/coursehub-backend/internal/pkg/pointers"
)

func TestSubMaxOrderAndTree(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	log := testutil.Logger(t)
	subs := NewCourseContentSubRepo(db, log)
	courses := NewCourseRepo(db, log)

	instructor := testutil.SeedUser(t, ctx, tx, types.RoleInstructor)
	course := testutil.SeedCourse(t, ctx, tx, instructor.ID, 40, 25, false)

	max, err := subs.MaxOrder(dbc, course.ID)
	if err != nil || max != 0 {
		t.Fatalf("empty course MaxOrder: %d err=%v", max, err)
	}

	content := testutil.SeedContent(t, ctx, tx, course.ID)
	testutil.SeedSub(t, ctx, tx, content, 2, types.MediaVideo)
	testutil.SeedSub(t, ctx, tx, content, 1, types.MediaAssessment)

	max, err = subs.MaxOrder(dbc, course.ID)
	if err != nil || max != 2 {
		t.Fatalf("MaxOrder: %d err=%v", max, err)
	}
	n, err := subs.Count(dbc, SubCountFilter{CourseID: course.ID, Exclude: types.MediaAssessment})
	if err != nil || n != 1 {
		t.Fatalf("Count excluding assessments: %d err=%v", n, err)
	}

	tree, err := courses.GetTree(dbc, course.ID)
	if err != nil || tree == nil {
		t.Fatalf("GetTree: %v", err)
	}
	if len(tree.Contents) != 1 || len(tree.Contents[0].Subs) != 2 {
		t.Fatalf("unexpected tree shape")
	}
	if tree.Contents[0].Subs[0].Order != 1 {
		t.Fatalf("subs must be ordered by position")
	}
}

func TestCourseListFilters(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewCourseRepo(db, testutil.Logger(t))

	instructor := testutil.SeedUser(t, ctx, tx, types.RoleInstructor)
	testutil.SeedCourse(t, ctx, tx, instructor.ID, 10, 0, true)
	testutil.SeedCourse(t, ctx, tx, instructor.ID, 10, 0, false)

	_, count, err := repo.List(dbc, CourseFilter{InstructorID: instructor.ID}, pagination.Params{})
	if err != nil || count != 2 {
		t.Fatalf("expected 2 courses, count=%d err=%v", count, err)
	}
	published, count, err := repo.List(dbc, CourseFilter{IsPublished: pointers.Ptr(true)}, pagination.Params{})
	if err != nil || count != 1 || !published[0].IsPublished {
		t.Fatalf("expected 1 published, count=%d err=%v", count, err)
	}
}
