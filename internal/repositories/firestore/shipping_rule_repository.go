package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/iterator"

	"github.com/cactilia/api/internal/domain"
	pfirestore "github.com/cactilia/api/internal/platform/firestore"
	"github.com/cactilia/api/internal/repositories"
)

const defaultRulesCollection = "reglas_envio"

// ShippingRuleRepository reads the shipping rule catalog from Firestore. The
// stored documents keep the original Spanish field names of the admin panel;
// decoding resolves them, including the historical aliases for delivery-day
// fields, into canonical domain records exactly once.
type ShippingRuleRepository struct {
	provider   *pfirestore.Provider
	collection string
}

// NewShippingRuleRepository constructs a Firestore-backed rule repository.
func NewShippingRuleRepository(provider *pfirestore.Provider, collection string) (*ShippingRuleRepository, error) {
	if provider == nil {
		return nil, errors.New("shipping rule repository requires firestore provider")
	}
	if strings.TrimSpace(collection) == "" {
		collection = defaultRulesCollection
	}
	return &ShippingRuleRepository{provider: provider, collection: strings.TrimSpace(collection)}, nil
}

// Active returns every rule flagged activo, in document order.
func (r *ShippingRuleRepository) Active(ctx context.Context) ([]domain.ShippingRule, error) {
	client, err := r.provider.Client(ctx)
	if err != nil {
		return nil, err
	}

	iter := client.Collection(r.collection).Where("activo", "==", true).Documents(ctx)
	defer iter.Stop()

	var rules []domain.ShippingRule
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, pfirestore.WrapError("shippingRules.active", err)
		}
		var doc shippingRuleDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode shipping rule %s: %w", snap.Ref.ID, err)
		}
		rules = append(rules, doc.toDomain(snap.Ref.ID))
	}
	return rules, nil
}

type shippingRuleDocument struct {
	Zona        string   `firestore:"zona"`
	Activo      bool     `firestore:"activo"`
	Zipcodes    []string `firestore:"zipcodes"`
	EnvioGratis bool     `firestore:"envio_gratis"`
	// EnvioGratisMontoMinimo is the rule-root threshold; EnvioVariable nests
	// the newer conditional variant.
	EnvioGratisMontoMinimo float64                 `firestore:"envio_gratis_monto_minimo"`
	EnvioVariable          *envioVariableDocument  `firestore:"envio_variable"`
	PrecioBase             float64                 `firestore:"precio_base"`
	ConfiguracionPaquetes  *packageConfigDocument  `firestore:"configuracion_paquetes"`
	OpcionesMensajeria     []carrierOptionDocument `firestore:"opciones_mensajeria"`

	// Historical aliases for the delivery window, oldest first.
	TiempoMinimo       *int   `firestore:"tiempo_minimo"`
	TiempoMaximo       *int   `firestore:"tiempo_maximo"`
	MinDays            *int   `firestore:"minDays"`
	MaxDays            *int   `firestore:"maxDays"`
	MinDaysSnake       *int   `firestore:"min_days"`
	MaxDaysSnake       *int   `firestore:"max_days"`
	TiempoEntrega      string `firestore:"tiempo_entrega"`
	TiempoEntregaCamel string `firestore:"tiempoEntrega"`
}

type envioVariableDocument struct {
	Aplica                 bool    `firestore:"aplica"`
	EnvioGratisMontoMinimo float64 `firestore:"envio_gratis_monto_minimo"`
}

type packageConfigDocument struct {
	PesoMaximoPaquete         float64 `firestore:"peso_maximo_paquete"`
	MaximoProductosPorPaquete int     `firestore:"maximo_productos_por_paquete"`
	CostoPorKgExtra           float64 `firestore:"costo_por_kg_extra"`
}

type carrierOptionDocument struct {
	Nombre                string                 `firestore:"nombre"`
	Label                 string                 `firestore:"label"`
	Precio                float64                `firestore:"precio"`
	ConfiguracionPaquetes *packageConfigDocument `firestore:"configuracion_paquetes"`

	TiempoMinimo  *int   `firestore:"tiempo_minimo"`
	TiempoMaximo  *int   `firestore:"tiempo_maximo"`
	MinDays       *int   `firestore:"minDays"`
	MaxDays       *int   `firestore:"maxDays"`
	TiempoEntrega string `firestore:"tiempo_entrega"`
}

func (d shippingRuleDocument) toDomain(id string) domain.ShippingRule {
	rule := domain.ShippingRule{
		ID:           id,
		Zone:         strings.TrimSpace(d.Zona),
		Active:       d.Activo,
		Coverage:     append([]string(nil), d.Zipcodes...),
		FreeShipping: d.EnvioGratis,
		BasePrice:    d.PrecioBase,
		MinDays:      firstDays(d.TiempoMinimo, d.MinDays, d.MinDaysSnake),
		MaxDays:      firstDays(d.TiempoMaximo, d.MaxDays, d.MaxDaysSnake),
		DeliveryText: firstText(d.TiempoEntrega, d.TiempoEntregaCamel),
	}

	if d.EnvioGratisMontoMinimo > 0 {
		rule.FreeShippingMinAmount = d.EnvioGratisMontoMinimo
	}
	if d.EnvioVariable != nil && d.EnvioVariable.Aplica {
		rule.VariableFreeShipping = true
		if d.EnvioVariable.EnvioGratisMontoMinimo > 0 {
			rule.FreeShippingMinAmount = d.EnvioVariable.EnvioGratisMontoMinimo
		}
	}
	if d.ConfiguracionPaquetes != nil {
		rule.Packages = d.ConfiguracionPaquetes.toDomain()
	}
	for _, option := range d.OpcionesMensajeria {
		rule.CarrierOptions = append(rule.CarrierOptions, option.toDomain())
	}
	return rule
}

func (d packageConfigDocument) toDomain() domain.PackageConfig {
	return domain.PackageConfig{
		MaxWeightKg:          d.PesoMaximoPaquete,
		MaxItems:             d.MaximoProductosPorPaquete,
		ExtraWeightCostPerKg: d.CostoPorKgExtra,
	}
}

func (d carrierOptionDocument) toDomain() domain.CarrierOption {
	option := domain.CarrierOption{
		Name:         strings.TrimSpace(d.Nombre),
		Label:        strings.TrimSpace(d.Label),
		Price:        d.Precio,
		MinDays:      firstDays(d.TiempoMinimo, d.MinDays),
		MaxDays:      firstDays(d.TiempoMaximo, d.MaxDays),
		DeliveryText: strings.TrimSpace(d.TiempoEntrega),
	}
	if d.ConfiguracionPaquetes != nil {
		packages := d.ConfiguracionPaquetes.toDomain()
		option.Packages = &packages
	}
	return option
}

func firstDays(values ...*int) *int {
	for _, value := range values {
		if value != nil {
			cloned := *value
			return &cloned
		}
	}
	return nil
}

func firstText(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// Ensure interface compliance.
var _ repositories.ShippingRuleRepository = (*ShippingRuleRepository)(nil)
