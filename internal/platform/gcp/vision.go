package gcp

import (
	"context"
	"fmt"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"github.com/yungbote/coursehub-backend/internal/platform/ctxutil"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

// Moderator flags images that should not be stored.
type Moderator interface {
	CheckImage(ctx context.Context, img []byte) (*ModerationResult, error)
	Close() error
}

type ModerationResult struct {
	Flagged  bool
	Adult    string
	Violence string
	Racy     string
}

type visionModerator struct {
	log    *logger.Logger
	client *vision.ImageAnnotatorClient
}

func NewVisionModerator(log *logger.Logger) (Moderator, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	client, err := vision.NewImageAnnotatorClient(context.Background(), ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &visionModerator{log: log.With("service", "gcp.VisionModerator"), client: client}, nil
}

func (m *visionModerator) CheckImage(ctx context.Context, img []byte) (*ModerationResult, error) {
	if len(img) == 0 {
		return &ModerationResult{}, nil
	}
	ctx, cancel := context.WithTimeout(ctxutil.Default(ctx), 30*time.Second)
	defer cancel()

	resp, err := m.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:    &visionpb.Image{Content: img},
			Features: []*visionpb.Feature{{Type: visionpb.Feature_SAFE_SEARCH_DETECTION}},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return &ModerationResult{}, nil
	}
	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return nil, fmt.Errorf("vision annotate error: %s", r0.Error.Message)
	}
	res := EvaluateSafeSearch(r0.SafeSearchAnnotation)
	if res.Flagged {
		m.log.Info("Image flagged by SafeSearch", "adult", res.Adult, "violence", res.Violence)
	}
	return res, nil
}

// EvaluateSafeSearch flags LIKELY or VERY_LIKELY adult or violent content.
func EvaluateSafeSearch(a *visionpb.SafeSearchAnnotation) *ModerationResult {
	if a == nil {
		return &ModerationResult{}
	}
	return &ModerationResult{
		Flagged:  a.GetAdult() >= visionpb.Likelihood_LIKELY || a.GetViolence() >= visionpb.Likelihood_LIKELY,
		Adult:    a.GetAdult().String(),
		Violence: a.GetViolence().String(),
		Racy:     a.GetRacy().String(),
	}
}

func (m *visionModerator) Close() error {
	if m == nil || m.client == nil {
		return nil
	}
	return m.client.Close()
}
