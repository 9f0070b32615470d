package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"prosperity_go/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	inst, ok := cfg.Instrument("RAINFOREST_RESIN")
	if !ok {
		t.Fatal("RAINFOREST_RESIN missing from default table")
	}
	if inst.Limit != 50 {
		t.Errorf("limit = %d, want 50", inst.Limit)
	}

	v, ok := cfg.Instrument("VOLCANIC_ROCK_VOUCHER_10000")
	if !ok {
		t.Fatal("voucher missing from default table")
	}
	if !v.Derivative() || v.Underlying != "VOLCANIC_ROCK" || v.Strike != 10000 {
		t.Errorf("voucher descriptor wrong: %+v", v)
	}
}

func TestLoadFromYAML(t *testing.T) {
	raw := `
app:
  name: prosperity_go
session:
  history_cap: 50
  early_phase_until: 1000
  early_boost: 1.2
  end_of_session: 9000
instruments:
  - symbol: PEARLS
    limit: 20
    micro_weight: 0.5
    ema_weight: 0.35
    sma_weight: 0.15
    ema_decay: 0.9
    sma_window: 10
    default_price: 10000
    momentum_window: 5
    volatility_window: 10
    base_spread: 0.8
    min_spread: 0.6
    max_spread: 2
    inventory_skew: 0.3
    take_discount: 0.997
    take_premium: 1.003
    flatten_ratio: 0.8
    flatten_offset: 5
    size_base: 12
    size_imbalance_boost: 0
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	inst, ok := cfg.Instrument("PEARLS")
	if !ok {
		t.Fatal("PEARLS not loaded")
	}
	if inst.BaseSpread != 0.8 || inst.Limit != 20 {
		t.Errorf("descriptor wrong: %+v", inst)
	}
	if cfg.Session.HistoryCap != 50 {
		t.Errorf("history cap = %d, want 50", cfg.Session.HistoryCap)
	}
	// Regime thresholds were omitted from the file: defaults fill them so
	// the descriptor still validates.
	if inst.RegimeTrendBand != 50 || inst.RegimeVolSpread != 200 {
		t.Errorf("regime defaults not applied: %+v", inst)
	}
}

func TestLoadRejectsIncompleteDescriptor(t *testing.T) {
	// sma_window omitted: without the validation this loads fine and the
	// fair-value SMA divides by zero at runtime.
	raw := `
session:
  history_cap: 50
instruments:
  - symbol: PEARLS
    limit: 20
    micro_weight: 0.5
    ema_weight: 0.35
    sma_weight: 0.15
    ema_decay: 0.9
    default_price: 10000
    momentum_window: 5
    volatility_window: 10
    base_spread: 0.8
    max_spread: 2
    take_discount: 0.997
    take_premium: 1.003
    flatten_ratio: 0.8
    size_base: 12
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := config.Load(path); err == nil {
		t.Error("expected Load to reject the descriptor missing sma_window")
	}
}

func TestValidateRejectsBadDescriptors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"no instruments", func(c *config.Config) { c.Instruments = nil }},
		{"zero limit", func(c *config.Config) { c.Instruments[0].Limit = 0 }},
		{"zero base spread", func(c *config.Config) { c.Instruments[0].BaseSpread = 0 }},
		{"unknown underlying", func(c *config.Config) { c.Instruments[5].Underlying = "GHOST" }},
		{"duplicate symbol", func(c *config.Config) { c.Instruments[1].Symbol = c.Instruments[0].Symbol }},
		{"zero sma window", func(c *config.Config) { c.Instruments[0].SMAWindow = 0 }},
		{"zero ema decay", func(c *config.Config) { c.Instruments[0].EMADecay = 0 }},
		{"ema decay above one", func(c *config.Config) { c.Instruments[0].EMADecay = 1.5 }},
		{"short volatility window", func(c *config.Config) { c.Instruments[0].VolatilityWindow = 1 }},
		{"zero take discount", func(c *config.Config) { c.Instruments[0].TakeDiscount = 0 }},
		{"zero take premium", func(c *config.Config) { c.Instruments[0].TakePremium = 0 }},
		{"zero size base", func(c *config.Config) { c.Instruments[0].SizeBase = 0 }},
		{"zero flatten ratio", func(c *config.Config) { c.Instruments[0].FlattenRatio = 0 }},
		{"flatten ratio above one", func(c *config.Config) { c.Instruments[0].FlattenRatio = 1.2 }},
		{"negative regime band", func(c *config.Config) { c.Instruments[0].RegimeTrendBand = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
