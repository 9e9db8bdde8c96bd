package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/coursehub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
	"github.com/yungbote/coursehub-backend/internal/pkg/pointers"
)

func TestJobRunRepoClaimOrder(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewJobRunRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}

	now := time.Now().UTC()
	queued := &types.JobRun{
		ID:        uuid.New(),
		JobType:   types.JobTypeSendEmail,
		Status:    types.JobStatusQueued,
		Payload:   datatypes.JSON([]byte(`{"to":"a@example.com"}`)),
		CreatedAt: now.Add(-3 * time.Hour),
		UpdatedAt: now.Add(-3 * time.Hour),
	}
	failedRecently := &types.JobRun{
		ID:          uuid.New(),
		JobType:     types.JobTypeSendEmail,
		Status:      types.JobStatusFailed,
		Attempts:    1,
		LastErrorAt: pointers.Ptr(now),
		Payload:     datatypes.JSON([]byte("{}")),
		CreatedAt:   now.Add(-4 * time.Hour),
		UpdatedAt:   now,
	}
	if _, err := repo.Create(dbc, []*types.JobRun{queued, failedRecently}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	claimed, err := repo.ClaimNextRunnable(dbc, 5, time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("ClaimNextRunnable: %v", err)
	}
	if claimed == nil || claimed.ID != queued.ID {
		t.Fatalf("expected queued job claimed first (failed one is inside retry delay), got %+v", claimed)
	}
	if claimed.Attempts != 1 || claimed.Status != types.JobStatusRunning {
		t.Fatalf("unexpected claimed state: attempts=%d status=%s", claimed.Attempts, claimed.Status)
	}

	again, err := repo.ClaimNextRunnable(dbc, 5, time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("ClaimNextRunnable again: %v", err)
	}
	if again != nil {
		t.Fatalf("expected nothing runnable, got %s", again.ID)
	}

	if err := repo.MarkSucceeded(dbc, queued.ID); err != nil {
		t.Fatalf("MarkSucceeded: %v", err)
	}
	rows, err := repo.GetByIDs(dbc, []uuid.UUID{queued.ID})
	if err != nil || len(rows) != 1 || rows[0].Status != types.JobStatusSucceeded {
		t.Fatalf("expected succeeded, err=%v rows=%v", err, rows)
	}
}

func TestJobRunRepoMarkFailedGoesDeadAtMaxAttempts(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewJobRunRepo(db, testutil.Logger(t))

	job := &types.JobRun{ID: uuid.New(), JobType: types.JobTypeSendEmail, Status: types.JobStatusRunning, Attempts: 5, Payload: datatypes.JSON([]byte("{}"))}
	if _, err := repo.Create(dbc, []*types.JobRun{job}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.MarkFailed(dbc, job.ID, errors.New("smtp down"), 5); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	n, err := repo.CountByStatus(dbc, types.JobTypeSendEmail, types.JobStatusDead)
	if err != nil || n != 1 {
		t.Fatalf("expected one dead job, n=%d err=%v", n, err)
	}
}
