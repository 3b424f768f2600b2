package main

import (
	"errors"
	"testing"
	"time"

	"github.com/md-rashed-zaman/apptavailability/services/availability-service/internal/availability"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "GRPC_PORT", "WORK_START_MINUTE", "WORK_END_MINUTE", "SLOT_DURATION_MINUTES", "LOOKAHEAD_DAYS", "TIMEZONE", "KAFKA_CONSUME_TOPICS", "DATABASE_URL", "MAX_RANGE_DAYS"} {
		t.Setenv(key, "")
	}
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Engine.WorkStartMinute != 570 || cfg.Engine.WorkEndMinute != 1200 || cfg.Engine.SlotDurationMinutes != 30 {
		t.Fatalf("unexpected engine defaults %+v", cfg.Engine)
	}
	if cfg.Engine.Location != time.UTC {
		t.Fatalf("expected UTC, got %v", cfg.Engine.Location)
	}
	if len(cfg.KafkaTopics) != 2 {
		t.Fatalf("expected two default topics, got %v", cfg.KafkaTopics)
	}
	if cfg.MaxRangeDays != 366 {
		t.Fatalf("expected 366 max range days, got %d", cfg.MaxRangeDays)
	}
	if cfg.RefreshInterval != time.Minute {
		t.Fatalf("expected 1m refresh, got %s", cfg.RefreshInterval)
	}
}

func TestLoadConfigRejectsInvertedWindow(t *testing.T) {
	t.Setenv("WORK_START_MINUTE", "1200")
	t.Setenv("WORK_END_MINUTE", "570")
	_, err := loadConfig()
	if !errors.Is(err, availability.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestLoadConfigRejectsBadSlot(t *testing.T) {
	t.Setenv("SLOT_DURATION_MINUTES", "-15")
	if _, err := loadConfig(); err == nil {
		t.Fatal("expected error for negative slot duration")
	}
}

func TestLoadConfigRequiresResourceWithDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://availability@localhost:5432/booking")
	t.Setenv("RESOURCE_ID", "")
	if _, err := loadConfig(); err == nil {
		t.Fatal("expected error when RESOURCE_ID is missing")
	}

	t.Setenv("RESOURCE_ID", "staff-7")
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ResourceID != "staff-7" {
		t.Fatalf("expected staff-7, got %q", cfg.ResourceID)
	}
}

func TestLoadConfigRejectsZeroMaxRange(t *testing.T) {
	t.Setenv("MAX_RANGE_DAYS", "0")
	if _, err := loadConfig(); err == nil {
		t.Fatal("expected error for zero MAX_RANGE_DAYS")
	}
}
