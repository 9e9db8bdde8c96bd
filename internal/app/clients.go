package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/coursehub-backend/internal/platform/gcp"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
	"github.com/yungbote/coursehub-backend/internal/platform/payments"
	"github.com/yungbote/coursehub-backend/internal/platform/sendgrid"
	"github.com/yungbote/coursehub-backend/internal/realtime/bus"
	"github.com/yungbote/coursehub-backend/internal/temporalx"
)

type Clients struct {
	Redis     goredis.UniversalClient
	SSEBus    bus.Bus
	Bucket    gcp.BucketService
	Moderator gcp.Moderator
	SendGrid  sendgrid.Client
	Temporal  temporalsdkclient.Client
	Gateways  *payments.Registry
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (*Clients, error) {
	log.Info("Wiring clients...")
	c := &Clients{}

	if cfg.RedisAddr != "" {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		c.Redis = rdb
		b, err := bus.NewRedisBus(log, rdb, "")
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("init redis SSE bus: %w", err)
		}
		c.SSEBus = b
	} else {
		log.Warn("REDIS_ADDR not set; idempotency keys and SSE fan-out stay in process")
	}

	bucket, err := gcp.NewBucketService(log, cfg.ObjectStorage)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("init bucket client: %w", err)
	}
	c.Bucket = bucket

	if cfg.VisionModerationEnabled {
		m, err := gcp.NewVisionModerator(log)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("init vision moderator: %w", err)
		}
		c.Moderator = m
	}

	if cfg.SendGrid.APIKey != "" {
		sg, err := sendgrid.New(log, cfg.SendGrid)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("init sendgrid client: %w", err)
		}
		c.SendGrid = sg
	} else {
		log.Warn("SENDGRID_API_KEY not set; emails are logged instead of sent")
	}

	var gateways []payments.Gateway
	if pp, err := payments.NewPayPal(log, cfg.PayPal); err == nil {
		gateways = append(gateways, pp)
	} else {
		log.Warn("PayPal gateway disabled", "reason", err)
	}
	if ps, err := payments.NewPaystack(log, cfg.Paystack); err == nil {
		gateways = append(gateways, ps)
	} else {
		log.Warn("Paystack gateway disabled", "reason", err)
	}
	c.Gateways = payments.NewRegistry(cfg.DefaultGateway, gateways...)

	if cfg.Temporal.Enabled() {
		tc, err := temporalx.NewClient(log, cfg.Temporal)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("init temporal client: %w", err)
		}
		c.Temporal = tc
	}
	return c, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Temporal != nil {
		c.Temporal.Close()
	}
	if c.Moderator != nil {
		_ = c.Moderator.Close()
	}
	if c.Bucket != nil {
		_ = c.Bucket.Close()
	}
	if c.SSEBus != nil {
		_ = c.SSEBus.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
