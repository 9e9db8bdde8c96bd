package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursehub-backend/internal/http/response"
	"github.com/yungbote/coursehub-backend/internal/platform/ctxutil"
	"github.com/yungbote/coursehub-backend/internal/platform/idempotency"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

const (
	headerIdempotencyKey   = "Idempotency-Key"
	headerIdempotentReplay = "Idempotent-Replayed"

	DefaultIdempotencyTTL  = 24 * time.Hour
	defaultIdempotencyLock = 2 * time.Minute
	maxIdempotencyKeyLen   = 255
)

type captureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response for a repeated Idempotency-Key and
// rejects a concurrent duplicate with 409. Requests without the header pass
// through. Keys are scoped to the caller and route; 5xx responses are not kept.
func Idempotency(log *logger.Logger, store idempotency.Store, ttl time.Duration) gin.HandlerFunc {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	log = log.With("middleware", "Idempotency")
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(headerIdempotencyKey))
		if key == "" || store == nil {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLen {
			response.RespondError(c, http.StatusBadRequest, "invalid_idempotency_key", errors.New("Idempotency-Key is too long"))
			c.Abort()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		sum := sha256.Sum256(body)
		fingerprint := hex.EncodeToString(sum[:])

		scope := "anon"
		if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
			scope = rd.UserID.String()
		}
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		storeKey := scope + ":" + c.Request.Method + ":" + route + ":" + key

		ctx := c.Request.Context()
		rec, err := store.Begin(ctx, storeKey, defaultIdempotencyLock)
		switch {
		case errors.Is(err, idempotency.ErrInProgress):
			response.RespondError(c, http.StatusConflict, "idempotency_key_in_use", errors.New("A request with this Idempotency-Key is already in progress"))
			c.Abort()
			return
		case err != nil:
			log.Warn("Idempotency store unavailable", "error", err)
			c.Next()
			return
		case rec != nil:
			if rec.Fingerprint != "" && rec.Fingerprint != fingerprint {
				response.RespondError(c, http.StatusUnprocessableEntity, "idempotency_key_reused", errors.New("Idempotency-Key was used with a different request body"))
				c.Abort()
				return
			}
			c.Header(headerIdempotentReplay, "true")
			c.Data(rec.Status, rec.ContentType, rec.Body)
			c.Abort()
			return
		}

		cw := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = cw
		c.Next()

		status := cw.Status()
		if status >= http.StatusInternalServerError {
			if err := store.Release(ctx, storeKey); err != nil {
				log.Warn("Idempotency release failed", "error", err)
			}
			return
		}
		err = store.Complete(ctx, storeKey, idempotency.Record{
			Status:      status,
			ContentType: cw.Header().Get("Content-Type"),
			Body:        cw.body.Bytes(),
			Fingerprint: fingerprint,
		}, ttl)
		if err != nil {
			log.Warn("Idempotency save failed", "error", err)
		}
	}
}
