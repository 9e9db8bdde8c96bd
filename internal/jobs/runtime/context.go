package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/ctxutil"
)

/*
Context is the handle a handler gets for one claimed job run.
Handlers report the outcome through Succeed or Fail and never write job_run directly.
*/
type Context struct {
	Ctx         context.Context
	Job         *types.JobRun
	Repo        repos.JobRunRepo
	MaxAttempts int
	done        bool
}

func NewContext(ctx context.Context, job *types.JobRun, repo repos.JobRunRepo, maxAttempts int) *Context {
	c := &Context{Ctx: ctx, Job: job, Repo: repo, MaxAttempts: maxAttempts}
	c.applyTraceData()
	return c
}

func (c *Context) applyTraceData() {
	if c.Job == nil || len(c.Job.Payload) == 0 {
		return
	}
	var ids struct {
		TraceID   string `json:"trace_id"`
		RequestID string `json:"request_id"`
	}
	if err := json.Unmarshal(c.Job.Payload, &ids); err != nil {
		return
	}
	traceID := strings.TrimSpace(ids.TraceID)
	reqID := strings.TrimSpace(ids.RequestID)
	if traceID == "" && reqID == "" {
		return
	}
	c.Ctx = ctxutil.WithTraceData(ctxutil.Default(c.Ctx), &ctxutil.TraceData{TraceID: traceID, RequestID: reqID})
}

// Decode unmarshals the job payload into out.
func (c *Context) Decode(out any) error {
	if c.Job == nil || len(c.Job.Payload) == 0 {
		return fmt.Errorf("job payload is empty")
	}
	if err := json.Unmarshal(c.Job.Payload, out); err != nil {
		return fmt.Errorf("decode job payload: %w", err)
	}
	return nil
}

// Done reports whether Succeed or Fail already ran.
func (c *Context) Done() bool { return c.done }

func (c *Context) Succeed() error {
	c.done = true
	return c.Repo.MarkSucceeded(dbctx.New(c.Ctx), c.Job.ID)
}

// Fail records cause; the job is retried until MaxAttempts is used up.
func (c *Context) Fail(stage string, cause error) error {
	c.done = true
	return c.Repo.MarkFailed(dbctx.New(c.Ctx), c.Job.ID, fmt.Errorf("%s: %w", stage, cause), c.MaxAttempts)
}
