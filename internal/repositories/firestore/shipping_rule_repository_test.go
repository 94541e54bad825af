package firestore

import (
	"reflect"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestNewShippingRuleRepositoryRequiresProvider(t *testing.T) {
	if _, err := NewShippingRuleRepository(nil, ""); err == nil {
		t.Fatal("expected an error without a provider")
	}
}

func TestShippingRuleDocumentToDomain(t *testing.T) {
	doc := shippingRuleDocument{
		Zona:                   " Nacional ",
		Activo:                 true,
		Zipcodes:               []string{"nacional"},
		EnvioGratis:            false,
		EnvioGratisMontoMinimo: 500,
		PrecioBase:             150,
		ConfiguracionPaquetes: &packageConfigDocument{
			PesoMaximoPaquete:         20,
			MaximoProductosPorPaquete: 10,
			CostoPorKgExtra:           50,
		},
		OpcionesMensajeria: []carrierOptionDocument{
			{
				Nombre:        "Estafeta ",
				Label:         "Estafeta Terrestre",
				Precio:        120,
				TiempoMinimo:  intPtr(2),
				TiempoMaximo:  intPtr(4),
				TiempoEntrega: "2-4 días hábiles",
			},
		},
		TiempoMinimo:  intPtr(3),
		TiempoMaximo:  intPtr(6),
		TiempoEntrega: "3-6 días",
	}

	rule := doc.toDomain("rule-1")

	if rule.ID != "rule-1" || rule.Zone != "Nacional" || !rule.Active {
		t.Fatalf("unexpected rule header: %+v", rule)
	}
	if rule.FreeShipping || rule.FreeShippingMinAmount != 500 {
		t.Fatalf("unexpected free-shipping fields: %+v", rule)
	}
	if rule.Packages.MaxWeightKg != 20 || rule.Packages.MaxItems != 10 || rule.Packages.ExtraWeightCostPerKg != 50 {
		t.Fatalf("unexpected packaging: %+v", rule.Packages)
	}
	if *rule.MinDays != 3 || *rule.MaxDays != 6 || rule.DeliveryText != "3-6 días" {
		t.Fatalf("unexpected delivery window: %+v", rule)
	}
	if len(rule.CarrierOptions) != 1 {
		t.Fatalf("expected one carrier option, got %+v", rule.CarrierOptions)
	}
	carrier := rule.CarrierOptions[0]
	if carrier.Name != "Estafeta" || carrier.Price != 120 || *carrier.MinDays != 2 || *carrier.MaxDays != 4 {
		t.Fatalf("unexpected carrier option: %+v", carrier)
	}
}

func TestShippingRuleDocumentDeliveryAliases(t *testing.T) {
	tests := []struct {
		name    string
		doc     shippingRuleDocument
		wantMin *int
		wantMax *int
		wantTxt string
	}{
		{
			name:    "tiempo fields win over camelCase aliases",
			doc:     shippingRuleDocument{TiempoMinimo: intPtr(1), MinDays: intPtr(9), TiempoMaximo: intPtr(2), MaxDays: intPtr(9)},
			wantMin: intPtr(1),
			wantMax: intPtr(2),
		},
		{
			name:    "camelCase aliases fill missing values",
			doc:     shippingRuleDocument{MinDays: intPtr(4), MaxDaysSnake: intPtr(7)},
			wantMin: intPtr(4),
			wantMax: intPtr(7),
		},
		{
			name:    "camelCase delivery text fallback",
			doc:     shippingRuleDocument{TiempoEntregaCamel: " 5 días "},
			wantTxt: "5 días",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rule := tc.doc.toDomain("r1")
			if !reflect.DeepEqual(rule.MinDays, tc.wantMin) || !reflect.DeepEqual(rule.MaxDays, tc.wantMax) {
				t.Fatalf("window = (%v, %v), want (%v, %v)", rule.MinDays, rule.MaxDays, tc.wantMin, tc.wantMax)
			}
			if rule.DeliveryText != tc.wantTxt {
				t.Fatalf("text = %q, want %q", rule.DeliveryText, tc.wantTxt)
			}
		})
	}
}

func TestShippingRuleDocumentVariableThreshold(t *testing.T) {
	t.Run("applies when flagged", func(t *testing.T) {
		doc := shippingRuleDocument{
			EnvioVariable: &envioVariableDocument{Aplica: true, EnvioGratisMontoMinimo: 800},
		}
		rule := doc.toDomain("r1")
		if !rule.VariableFreeShipping || rule.FreeShippingMinAmount != 800 {
			t.Fatalf("unexpected variable threshold: %+v", rule)
		}
	})

	t.Run("ignored when not flagged", func(t *testing.T) {
		doc := shippingRuleDocument{
			EnvioGratisMontoMinimo: 500,
			EnvioVariable:          &envioVariableDocument{Aplica: false, EnvioGratisMontoMinimo: 800},
		}
		rule := doc.toDomain("r1")
		if rule.VariableFreeShipping || rule.FreeShippingMinAmount != 500 {
			t.Fatalf("unflagged variable threshold must not apply: %+v", rule)
		}
	})
}

func TestCarrierOptionDocumentPackaging(t *testing.T) {
	doc := carrierOptionDocument{
		Nombre: "DHL",
		Precio: 99,
		ConfiguracionPaquetes: &packageConfigDocument{
			PesoMaximoPaquete: 5,
		},
	}
	option := doc.toDomain()
	if option.Packages == nil || option.Packages.MaxWeightKg != 5 {
		t.Fatalf("carrier packaging not decoded: %+v", option)
	}

	plain := carrierOptionDocument{Nombre: "DHL", Precio: 99}
	if got := plain.toDomain(); got.Packages != nil {
		t.Fatalf("expected nil packaging, got %+v", got.Packages)
	}
}
