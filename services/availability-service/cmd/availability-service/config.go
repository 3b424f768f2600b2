package main

import (
	"time"

	"github.com/md-rashed-zaman/apptavailability/libs/config"
	"github.com/md-rashed-zaman/apptavailability/services/availability-service/internal/availability"
)

type serviceConfig struct {
	Service  string
	HTTPPort string
	GRPCPort string

	Engine availability.Config

	ResourceID      string
	DatabaseURL     string
	SnapshotDays    int
	RefreshInterval time.Duration
	MockSeed        int
	MaxRangeDays    int

	KafkaBrokers string
	KafkaGroupID string
	KafkaTopics  []string

	RedisAddr         string
	RateLimitPerMin   int
	RateLimitFailOpen bool
	CORSOrigins       []string
	BodyLimitBytes    int
	RequestTimeout    time.Duration
}

func loadConfig() (serviceConfig, error) {
	var (
		cfg serviceConfig
		err error
	)
	cfg.Service = config.String("SERVICE_NAME", "availability-service")
	if cfg.HTTPPort, err = config.Port("PORT", "8083"); err != nil {
		return cfg, err
	}
	if cfg.GRPCPort, err = config.Port("GRPC_PORT", "9093"); err != nil {
		return cfg, err
	}

	defaults := availability.DefaultConfig()
	if cfg.Engine.WorkStartMinute, err = config.Int("WORK_START_MINUTE", defaults.WorkStartMinute); err != nil {
		return cfg, err
	}
	if cfg.Engine.WorkEndMinute, err = config.Int("WORK_END_MINUTE", defaults.WorkEndMinute); err != nil {
		return cfg, err
	}
	if cfg.Engine.SlotDurationMinutes, err = config.PositiveInt("SLOT_DURATION_MINUTES", defaults.SlotDurationMinutes); err != nil {
		return cfg, err
	}
	if cfg.Engine.LookaheadDays, err = config.PositiveInt("LOOKAHEAD_DAYS", defaults.LookaheadDays); err != nil {
		return cfg, err
	}
	if cfg.Engine.Location, err = config.Location("TIMEZONE", "UTC"); err != nil {
		return cfg, err
	}
	if err := cfg.Engine.Validate(); err != nil {
		return cfg, err
	}

	// A database holds every staff member's calendar; this service answers for exactly one.
	cfg.DatabaseURL = config.String("DATABASE_URL", "")
	if cfg.DatabaseURL != "" {
		if cfg.ResourceID, err = config.RequiredString("RESOURCE_ID"); err != nil {
			return cfg, err
		}
	}
	if cfg.SnapshotDays, err = config.PositiveInt("SNAPSHOT_DAYS", 90); err != nil {
		return cfg, err
	}
	refreshSecs, err := config.PositiveInt("REFRESH_INTERVAL_SECONDS", 60)
	if err != nil {
		return cfg, err
	}
	cfg.RefreshInterval = time.Duration(refreshSecs) * time.Second
	if cfg.MockSeed, err = config.Int("MOCK_SEED", 1); err != nil {
		return cfg, err
	}
	if cfg.MaxRangeDays, err = config.PositiveInt("MAX_RANGE_DAYS", 366); err != nil {
		return cfg, err
	}

	cfg.KafkaBrokers = config.String("KAFKA_BROKERS", "")
	cfg.KafkaGroupID = config.String("KAFKA_GROUP_ID", "availability-service")
	cfg.KafkaTopics = config.List("KAFKA_CONSUME_TOPICS", "booking.appointment.booked.v1,booking.appointment.cancelled.v1")

	cfg.RedisAddr = config.String("REDIS_ADDR", "")
	if cfg.RateLimitPerMin, err = config.PositiveInt("RATE_LIMIT_PER_MINUTE", 120); err != nil {
		return cfg, err
	}
	cfg.RateLimitFailOpen = config.Bool("RATE_LIMIT_FAIL_OPEN", true)
	cfg.CORSOrigins = config.List("CORS_ALLOWED_ORIGINS", "")
	if cfg.BodyLimitBytes, err = config.PositiveInt("REQUEST_BODY_LIMIT_BYTES", 64<<10); err != nil {
		return cfg, err
	}
	timeoutSecs, err := config.PositiveInt("REQUEST_TIMEOUT_SECONDS", 10)
	if err != nil {
		return cfg, err
	}
	cfg.RequestTimeout = time.Duration(timeoutSecs) * time.Second
	return cfg, nil
}
