package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.HTTPAddr != ":8081" {
		t.Fatalf("HTTPAddr = %s", cfg.HTTPAddr)
	}
	if cfg.ServiceName != "pedidos-api" {
		t.Fatalf("ServiceName = %s", cfg.ServiceName)
	}
	if cfg.ReserveAttempts != 3 {
		t.Fatalf("ReserveAttempts = %d", cfg.ReserveAttempts)
	}
	if len(cfg.KafkaBrokers) != 1 || cfg.KafkaBrokers[0] != "kafka:9092" {
		t.Fatalf("KafkaBrokers = %v", cfg.KafkaBrokers)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092 ,")
	t.Setenv("RESERVE_ATTEMPTS", "5")

	cfg := Load()
	if cfg.HTTPAddr != ":9000" {
		t.Fatalf("HTTPAddr = %s", cfg.HTTPAddr)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[0] != "a:9092" || cfg.KafkaBrokers[1] != "b:9092" {
		t.Fatalf("KafkaBrokers = %v", cfg.KafkaBrokers)
	}
	if cfg.ReserveAttempts != 5 {
		t.Fatalf("ReserveAttempts = %d", cfg.ReserveAttempts)
	}
}

func TestLoadBadNumberFallsBack(t *testing.T) {
	t.Setenv("RESERVE_ATTEMPTS", "zero")
	if cfg := Load(); cfg.ReserveAttempts != 3 {
		t.Fatalf("ReserveAttempts = %d", cfg.ReserveAttempts)
	}
	t.Setenv("RESERVE_ATTEMPTS", "-1")
	if cfg := Load(); cfg.ReserveAttempts != 3 {
		t.Fatalf("ReserveAttempts = %d", cfg.ReserveAttempts)
	}
}
