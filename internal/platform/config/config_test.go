package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func mapGetenv(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func noEnvFile(t *testing.T) Option {
	t.Helper()
	return WithEnvFile(filepath.Join(t.TempDir(), "absent.env"))
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(
		noEnvFile(t),
		WithGetenv(mapGetenv(map[string]string{
			"FIRESTORE_PROJECT_ID": "cactilia-prod",
		})),
	)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != "8080" || cfg.Server.ReadTimeout != 15*time.Second {
		t.Fatalf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Shipping.RulesCollection != "reglas_envio" {
		t.Fatalf("rules collection = %q", cfg.Shipping.RulesCollection)
	}
	if cfg.Shipping.FallbackItemWeightKg != 0.5 {
		t.Fatalf("fallback weight = %v", cfg.Shipping.FallbackItemWeightKg)
	}
	if cfg.Shipping.DefaultMaxPackageWeightKg != 20 || cfg.Shipping.DefaultMaxItemsPerPackage != 10 {
		t.Fatalf("unexpected packaging defaults: %+v", cfg.Shipping)
	}
	if cfg.Checkout.TaxRate != 0.16 || cfg.Checkout.MinFreeShipping != 500 {
		t.Fatalf("unexpected checkout defaults: %+v", cfg.Checkout)
	}
}

func TestLoadRequiresProjectOrEmulator(t *testing.T) {
	_, err := Load(noEnvFile(t), WithGetenv(mapGetenv(nil)))

	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected a ValidationError, got %v", err)
	}
	fields := validation.Fields()
	if len(fields) != 1 || fields[0] != "FIRESTORE_PROJECT_ID" {
		t.Fatalf("fields = %v", fields)
	}

	// The emulator host satisfies the requirement on its own.
	if _, err := Load(noEnvFile(t), WithGetenv(mapGetenv(map[string]string{
		"FIRESTORE_EMULATOR_HOST": "localhost:8200",
	}))); err != nil {
		t.Fatalf("emulator host should satisfy validation: %v", err)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	_, err := Load(noEnvFile(t), WithGetenv(mapGetenv(map[string]string{
		"FIRESTORE_PROJECT_ID":             "p",
		"SERVER_READ_TIMEOUT":              "soon",
		"SHIPPING_FALLBACK_ITEM_WEIGHT_KG": "-1",
		"CHECKOUT_TAX_RATE":                "1.5",
	})))

	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected a ValidationError, got %v", err)
	}
	want := map[string]bool{
		"SERVER_READ_TIMEOUT":              true,
		"SHIPPING_FALLBACK_ITEM_WEIGHT_KG": true,
		"CHECKOUT_TAX_RATE":                true,
	}
	fields := validation.Fields()
	if len(fields) != len(want) {
		t.Fatalf("fields = %v", fields)
	}
	for _, field := range fields {
		if !want[field] {
			t.Fatalf("unexpected field %q in %v", field, fields)
		}
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	contents := "# local overrides\nFIRESTORE_PROJECT_ID=cactilia-dev\nPORT=\"9090\"\nCHECKOUT_MIN_FREE_SHIPPING=750\nnot-a-pair\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(WithEnvFile(path), WithGetenv(mapGetenv(nil)))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Firestore.ProjectID != "cactilia-dev" {
		t.Fatalf("project id = %q", cfg.Firestore.ProjectID)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("port = %q, want quoted value unwrapped", cfg.Server.Port)
	}
	if cfg.Checkout.MinFreeShipping != 750 {
		t.Fatalf("min free shipping = %v", cfg.Checkout.MinFreeShipping)
	}
}

func TestLoadProcessEnvWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("PORT=9090\nFIRESTORE_PROJECT_ID=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(WithEnvFile(path), WithGetenv(mapGetenv(map[string]string{
		"PORT": "7070",
	})))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Fatalf("port = %q, process env must win", cfg.Server.Port)
	}
	if cfg.Firestore.ProjectID != "from-file" {
		t.Fatalf("project id = %q", cfg.Firestore.ProjectID)
	}
}
