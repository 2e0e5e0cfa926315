package config

import (
	"os"
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TRUEVOW_JWT_SECRET", "s3cret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.LogLevel != "info" || cfg.LogFormat != "json" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.JWTSecret != "s3cret" {
		t.Fatalf("jwt secret = %q", cfg.JWTSecret)
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	// t.Setenv registers the restore; the key must be absent, not empty,
	// for the required check to trip.
	t.Setenv("TRUEVOW_JWT_SECRET", "")
	_ = os.Unsetenv("TRUEVOW_JWT_SECRET")
	if _, err := Load(); err == nil {
		t.Fatal("expected missing secret to fail")
	}
}

func TestPromoCodeMap(t *testing.T) {
	cfg := &Config{PromoCodes: "ENGAGED25:25, pastor100:100 ,"}
	got, err := cfg.PromoCodeMap()
	if err != nil {
		t.Fatalf("PromoCodeMap: %v", err)
	}
	want := map[string]int{"ENGAGED25": 25, "pastor100": 100}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("codes = %v, want %v", got, want)
	}

	for _, bad := range []string{"NOPERCENT", "CODE:x"} {
		cfg := &Config{PromoCodes: bad}
		if _, err := cfg.PromoCodeMap(); err == nil {
			t.Fatalf("entry %q should fail to parse", bad)
		}
	}

	empty := &Config{}
	if got, err := empty.PromoCodeMap(); err != nil || len(got) != 0 {
		t.Fatalf("empty config = (%v, %v)", got, err)
	}
}
