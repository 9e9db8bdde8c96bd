package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/platform/gcp"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type UploadKind string

const (
	UploadImage UploadKind = "image"
	UploadVideo UploadKind = "video"
	UploadDoc   UploadKind = "doc"
	UploadAudio UploadKind = "audio"
)

const mb = 1 << 20

type uploadRule struct {
	maxBytes int64
	mimes    map[string]bool
}

var uploadRules = map[UploadKind]uploadRule{
	UploadImage: {maxBytes: 5 * mb, mimes: set("image/jpeg", "image/png", "image/webp", "image/gif")},
	UploadVideo: {maxBytes: 500 * mb, mimes: set("video/mp4", "video/webm", "video/quicktime")},
	UploadDoc: {maxBytes: 10 * mb, mimes: set(
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.ms-powerpoint",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"text/plain",
	)},
	UploadAudio: {maxBytes: 50 * mb, mimes: set("audio/mpeg", "audio/mp4", "audio/wav", "audio/x-wav", "audio/ogg", "audio/webm")},
}

func set(vals ...string) map[string]bool {
	out := make(map[string]bool, len(vals))
	for _, v := range vals {
		out[v] = true
	}
	return out
}

// MaxUploadBytes returns the size cap for kind, or 0 when the kind is unknown.
func MaxUploadBytes(kind UploadKind) int64 {
	return uploadRules[kind].maxBytes
}

type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Uploaded struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

type UploadService interface {
	Upload(ctx context.Context, kind UploadKind, f UploadFile) (*Uploaded, error)
}

type uploadService struct {
	log       *logger.Logger
	bucket    gcp.BucketService
	moderator gcp.Moderator
}

// NewUploadService accepts a nil moderator to skip image moderation.
func NewUploadService(log *logger.Logger, bucket gcp.BucketService, moderator gcp.Moderator) UploadService {
	return &uploadService{log: log.With("service", "UploadService"), bucket: bucket, moderator: moderator}
}

func (s *uploadService) Upload(ctx context.Context, kind UploadKind, f UploadFile) (*Uploaded, error) {
	if _, err := requestUser(ctx); err != nil {
		return nil, err
	}
	rule, ok := uploadRules[kind]
	if !ok {
		return nil, apierr.Newf(http.StatusBadRequest, "invalid_upload_kind", "unsupported upload kind %q", kind)
	}
	ct := normalizeMIME(f.ContentType)
	if !rule.mimes[ct] {
		return nil, apierr.Newf(http.StatusUnsupportedMediaType, "invalid_file_type", "file type %q is not allowed for %s uploads", ct, kind)
	}
	if f.Size > rule.maxBytes {
		return nil, apierr.Newf(http.StatusRequestEntityTooLarge, "file_too_large", "%s uploads are limited to %dMB", kind, rule.maxBytes/mb)
	}

	body := io.LimitReader(f.Body, rule.maxBytes+1)
	if kind == UploadImage && s.moderator != nil {
		raw, err := io.ReadAll(body)
		if err != nil {
			return nil, apierr.New(http.StatusBadRequest, "invalid_file", err)
		}
		if int64(len(raw)) > rule.maxBytes {
			return nil, apierr.Newf(http.StatusRequestEntityTooLarge, "file_too_large", "%s uploads are limited to %dMB", kind, rule.maxBytes/mb)
		}
		res, err := s.moderator.CheckImage(ctx, raw)
		if err != nil {
			return nil, apierr.New(http.StatusBadGateway, "moderation_failed", err)
		}
		if res.Flagged {
			return nil, apierr.New(http.StatusUnprocessableEntity, "image_rejected", fmt.Errorf("image rejected by content moderation"))
		}
		body = bytes.NewReader(raw)
	}

	key := fmt.Sprintf("uploads/%s/%s%s", kind, uuid.New(), uploadExt(f.Name, ct))
	if err := s.bucket.UploadFile(dbctx.New(ctx), key, body, ct); err != nil {
		return nil, apierr.New(http.StatusBadGateway, "upload_failed", err)
	}
	s.log.Info("File uploaded", "kind", kind, "key", key, "size", f.Size)
	return &Uploaded{URL: s.bucket.GetPublicURL(key), Key: key}, nil
}

func normalizeMIME(ct string) string {
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return strings.ToLower(mt)
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

func uploadExt(name, ct string) string {
	if ext := strings.ToLower(filepath.Ext(name)); ext != "" && len(ext) <= 6 {
		return ext
	}
	if exts, _ := mime.ExtensionsByType(ct); len(exts) > 0 {
		return exts[0]
	}
	return ""
}
