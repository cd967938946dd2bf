package config

import (
	"os"
	"testing"
)

func TestValidateEnvMissingCritical(t *testing.T) {
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("DATABASE_URL")

	if err := ValidateEnv(); err == nil {
		t.Error("expected error when critical variables are missing")
	}
}

func TestValidateEnvAllSet(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("DATABASE_URL", "postgres://localhost/test")
	defer func() {
		os.Unsetenv("JWT_SECRET")
		os.Unsetenv("DATABASE_URL")
	}()

	if err := ValidateEnv(); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestGetEnv(t *testing.T) {
	os.Setenv("SOME_TEST_KEY", "value")
	defer os.Unsetenv("SOME_TEST_KEY")

	if got := GetEnv("SOME_TEST_KEY", "fallback"); got != "value" {
		t.Errorf("expected 'value', got %q", got)
	}
	if got := GetEnv("MISSING_TEST_KEY", "fallback"); got != "fallback" {
		t.Errorf("expected 'fallback', got %q", got)
	}
}
