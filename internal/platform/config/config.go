package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile               = ".env"
	defaultPort                  = "8080"
	defaultReadTimeout           = 15 * time.Second
	defaultWriteTimeout          = 30 * time.Second
	defaultIdleTimeout           = 120 * time.Second
	defaultRulesCollection       = "reglas_envio"
	defaultFallbackItemWeightKg  = 0.5
	defaultMaxPackageWeightKg    = 20.0
	defaultMaxItemsPerPackage    = 10
	defaultCheckoutTaxRate       = 0.16
	defaultMinFreeShippingAmount = 500.0
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig
	Firestore FirestoreConfig
	Shipping  ShippingConfig
	Checkout  CheckoutConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// FirestoreConfig stores database parameters.
type FirestoreConfig struct {
	ProjectID    string
	EmulatorHost string
}

// ShippingConfig holds the shipping policy knobs that must stay overridable
// per deployment rather than living as inline constants.
type ShippingConfig struct {
	// RulesCollection is the Firestore collection holding shipping rules.
	RulesCollection string
	// FallbackItemWeightKg is assumed for products whose weight is missing or zero.
	FallbackItemWeightKg float64
	// DefaultMaxPackageWeightKg applies when a rule omits peso_maximo_paquete.
	DefaultMaxPackageWeightKg float64
	// DefaultMaxItemsPerPackage applies when a rule omits maximo_productos_por_paquete.
	DefaultMaxItemsPerPackage int
}

// CheckoutConfig controls order total computation.
type CheckoutConfig struct {
	// TaxRate is the flat tax rate backed out of tax-inclusive prices.
	TaxRate float64
	// MinFreeShipping is the order total granting free shipping at checkout.
	MinFreeShipping float64
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises configuration loading.
type Option func(*loader)

type loader struct {
	envFile string
	getenv  func(string) string
}

// WithEnvFile overrides the .env file consulted before the process environment.
func WithEnvFile(path string) Option {
	return func(l *loader) {
		l.envFile = path
	}
}

// WithGetenv overrides environment lookups, primarily for tests.
func WithGetenv(getenv func(string) string) Option {
	return func(l *loader) {
		if getenv != nil {
			l.getenv = getenv
		}
	}
}

// Load reads configuration from the environment, applying defaults and validating
// required fields.
func Load(opts ...Option) (Config, error) {
	l := &loader{envFile: defaultEnvFile, getenv: os.Getenv}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}

	fileValues := readEnvFile(l.envFile)
	lookup := func(key string) string {
		if value := strings.TrimSpace(l.getenv(key)); value != "" {
			return value
		}
		return fileValues[key]
	}

	var invalid []string

	cfg := Config{
		Server: ServerConfig{
			Port:         stringOr(lookup("PORT"), defaultPort),
			ReadTimeout:  durationOr(lookup("SERVER_READ_TIMEOUT"), defaultReadTimeout, &invalid, "SERVER_READ_TIMEOUT"),
			WriteTimeout: durationOr(lookup("SERVER_WRITE_TIMEOUT"), defaultWriteTimeout, &invalid, "SERVER_WRITE_TIMEOUT"),
			IdleTimeout:  durationOr(lookup("SERVER_IDLE_TIMEOUT"), defaultIdleTimeout, &invalid, "SERVER_IDLE_TIMEOUT"),
		},
		Firestore: FirestoreConfig{
			ProjectID:    lookup("FIRESTORE_PROJECT_ID"),
			EmulatorHost: lookup("FIRESTORE_EMULATOR_HOST"),
		},
		Shipping: ShippingConfig{
			RulesCollection:           stringOr(lookup("SHIPPING_RULES_COLLECTION"), defaultRulesCollection),
			FallbackItemWeightKg:      floatOr(lookup("SHIPPING_FALLBACK_ITEM_WEIGHT_KG"), defaultFallbackItemWeightKg, &invalid, "SHIPPING_FALLBACK_ITEM_WEIGHT_KG"),
			DefaultMaxPackageWeightKg: floatOr(lookup("SHIPPING_DEFAULT_MAX_PACKAGE_WEIGHT_KG"), defaultMaxPackageWeightKg, &invalid, "SHIPPING_DEFAULT_MAX_PACKAGE_WEIGHT_KG"),
			DefaultMaxItemsPerPackage: intOr(lookup("SHIPPING_DEFAULT_MAX_ITEMS_PER_PACKAGE"), defaultMaxItemsPerPackage, &invalid, "SHIPPING_DEFAULT_MAX_ITEMS_PER_PACKAGE"),
		},
		Checkout: CheckoutConfig{
			TaxRate:         floatOr(lookup("CHECKOUT_TAX_RATE"), defaultCheckoutTaxRate, &invalid, "CHECKOUT_TAX_RATE"),
			MinFreeShipping: floatOr(lookup("CHECKOUT_MIN_FREE_SHIPPING"), defaultMinFreeShippingAmount, &invalid, "CHECKOUT_MIN_FREE_SHIPPING"),
		},
	}

	if strings.TrimSpace(cfg.Firestore.ProjectID) == "" && strings.TrimSpace(cfg.Firestore.EmulatorHost) == "" {
		invalid = append(invalid, "FIRESTORE_PROJECT_ID")
	}
	if cfg.Shipping.FallbackItemWeightKg <= 0 {
		invalid = append(invalid, "SHIPPING_FALLBACK_ITEM_WEIGHT_KG")
	}
	if cfg.Checkout.TaxRate < 0 || cfg.Checkout.TaxRate >= 1 {
		invalid = append(invalid, "CHECKOUT_TAX_RATE")
	}

	if len(invalid) > 0 {
		return Config{}, &ValidationError{fields: dedupe(invalid)}
	}
	return cfg, nil
}

// readEnvFile parses KEY=VALUE lines from the given file, ignoring comments and
// blank lines. A missing file is not an error.
func readEnvFile(path string) map[string]string {
	values := make(map[string]string)
	if strings.TrimSpace(path) == "" {
		return values
	}
	file, err := os.Open(path)
	if err != nil {
		return values
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = strings.Trim(value, `"'`)
		if key != "" {
			values[key] = value
		}
	}
	return values
}

func stringOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

func durationOr(value string, fallback time.Duration, invalid *[]string, field string) time.Duration {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		*invalid = append(*invalid, field)
		return fallback
	}
	return parsed
}

func floatOr(value string, fallback float64, invalid *[]string, field string) float64 {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		*invalid = append(*invalid, field)
		return fallback
	}
	return parsed
}

func intOr(value string, fallback int, invalid *[]string, field string) int {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		*invalid = append(*invalid, field)
		return fallback
	}
	return parsed
}

func dedupe(fields []string) []string {
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		if _, ok := seen[field]; ok {
			continue
		}
		seen[field] = struct{}{}
		out = append(out, field)
	}
	return out
}
