package config

import (
	"strings"
	"testing"
)

func TestLoadConfigReadsJWTSettings(t *testing.T) {
	t.Setenv("JWT_SECRET", " s3cret ")
	t.Setenv("JWT_ISSUER", "staffdesk")
	t.Setenv("JWT_AUDIENCE", "staffdesk-clients")
	t.Setenv("JWT_EXPIRY_MINUTES", "45")
	t.Setenv("LEAVE_ALLOW_REDECIDE", "false")

	cfg := LoadConfig()
	if cfg.JWT.Secret != "s3cret" {
		t.Fatalf("unexpected secret: %q", cfg.JWT.Secret)
	}
	if cfg.JWT.ExpiryMinutes != 45 {
		t.Fatalf("unexpected expiry: %d", cfg.JWT.ExpiryMinutes)
	}
	if cfg.Leave.AllowRedecide {
		t.Fatalf("expected redecide to be disabled")
	}
	if !cfg.Auth.AllowSelfAssignedRole {
		t.Fatalf("expected self-assigned role to default to true")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := JWTConfig{Secret: "s", Issuer: "i", Audience: "a", ExpiryMinutes: 60}

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "valid", cfg: Config{JWT: valid}},
		{name: "missing_secret", cfg: Config{JWT: JWTConfig{Issuer: "i", Audience: "a", ExpiryMinutes: 60}}, wantErr: "JWT_SECRET"},
		{name: "missing_issuer", cfg: Config{JWT: JWTConfig{Secret: "s", Audience: "a", ExpiryMinutes: 60}}, wantErr: "JWT_ISSUER"},
		{name: "missing_audience", cfg: Config{JWT: JWTConfig{Secret: "s", Issuer: "i", ExpiryMinutes: 60}}, wantErr: "JWT_AUDIENCE"},
		{name: "zero_expiry", cfg: Config{JWT: JWTConfig{Secret: "s", Issuer: "i", Audience: "a"}}, wantErr: "JWT_EXPIRY_MINUTES"},
		{name: "bad_storage", cfg: Config{JWT: valid, Storage: StorageConfig{Backend: "s3"}}, wantErr: "STORAGE_BACKEND"},
		{name: "bad_mq", cfg: Config{JWT: valid, MQ: MQConfig{Backend: "kafka"}}, wantErr: "MQ_BACKEND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %s, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("FLAG_ON", "Yes")
	t.Setenv("FLAG_OFF", "0")
	t.Setenv("FLAG_GARBAGE", "maybe")

	if !getEnvBool("FLAG_ON", false) {
		t.Fatalf("expected FLAG_ON to be true")
	}
	if getEnvBool("FLAG_OFF", true) {
		t.Fatalf("expected FLAG_OFF to be false")
	}
	if !getEnvBool("FLAG_GARBAGE", true) {
		t.Fatalf("expected unparsable value to fall back to default")
	}
	if getEnvBool("FLAG_MISSING", false) {
		t.Fatalf("expected missing value to fall back to default")
	}
}
