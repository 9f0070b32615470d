package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Instrument is the per-instrument strategy descriptor. Every constant the
// decision pipeline needs lives here, looked up by symbol; the pipeline itself
// is shared across all instruments.
type Instrument struct {
	Symbol string `yaml:"symbol"`
	Limit  int    `yaml:"limit"` // position stays within [-Limit, +Limit]

	// Fair-value blend. Weights should sum to 1.
	MicroWeight  float64 `yaml:"micro_weight"`
	EMAWeight    float64 `yaml:"ema_weight"`
	SMAWeight    float64 `yaml:"sma_weight"`
	EMADecay     float64 `yaml:"ema_decay"`
	SMAWindow    int     `yaml:"sma_window"`
	DefaultPrice float64 `yaml:"default_price"` // fallback when book and history are both unusable

	// Signals.
	MomentumWindow    int     `yaml:"momentum_window"`
	MomentumThreshold float64 `yaml:"momentum_threshold"` // 0 keeps momentum continuous; >0 thresholds to {-1,0,+1}
	VolatilityWindow  int     `yaml:"volatility_window"`

	// Quoting.
	BaseSpread    float64 `yaml:"base_spread"`
	MinSpread     float64 `yaml:"min_spread"`
	MaxSpread     float64 `yaml:"max_spread"`
	InventorySkew float64 `yaml:"inventory_skew"`

	// Liquidity taking.
	TakeDiscount float64 `yaml:"take_discount"` // buy when best ask < fair * TakeDiscount
	TakePremium  float64 `yaml:"take_premium"`  // sell when best bid > fair * TakePremium
	MomentumGate bool    `yaml:"momentum_gate"` // require momentum agreement before taking

	// Inventory flattening.
	FlattenRatio  float64 `yaml:"flatten_ratio"`  // |pos| > FlattenRatio*Limit forces a flatten
	FlattenOffset float64 `yaml:"flatten_offset"` // aggressive offset from fair when the opposing side is empty

	// Sizing.
	SizeBase           float64 `yaml:"size_base"`
	SizeImbalanceBoost float64 `yaml:"size_imbalance_boost"`

	// Regime classification. Omitted values fall back to shared defaults
	// at load time; these knobs are rarely tuned per instrument.
	RegimeVolStdev  float64 `yaml:"regime_vol_stdev"`  // return stdev above which the market counts as volatile
	RegimeVolSpread float64 `yaml:"regime_vol_spread"` // spread above which the market counts as volatile
	RegimeTrendBand float64 `yaml:"regime_trend_band"` // deviation from default_price marking a trend

	// Derivative relationship. A non-empty Underlying makes this an
	// option-like instrument priced off the underlying's mid.
	Underlying string  `yaml:"underlying,omitempty"`
	Strike     int     `yaml:"strike,omitempty"`
	TimeValue  float64 `yaml:"time_value,omitempty"`
}

// Derivative reports whether the instrument prices off another one.
func (i Instrument) Derivative() bool {
	return i.Underlying != ""
}

// Session holds tick-clock parameters shared by all instruments.
type Session struct {
	HistoryCap      int     `yaml:"history_cap"`
	EarlyPhaseUntil int64   `yaml:"early_phase_until"` // size boost active before this timestamp
	EarlyBoost      float64 `yaml:"early_boost"`
	EndOfSession    int64   `yaml:"end_of_session"` // only flattening orders at or past this timestamp
}

// Config is the full application configuration.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Session     Session      `yaml:"session"`
	Instruments []Instrument `yaml:"instruments"`

	Data struct {
		Dir string `yaml:"dir"`
	} `yaml:"data"`

	Feed struct {
		Addr string `yaml:"addr"` // websocket decision feed; empty disables it
	} `yaml:"feed"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`

	bySymbol map[string]int
}

// Default returns the built-in configuration covering the standard instrument
// set. A YAML file replaces it wholesale rather than merging.
func Default() *Config {
	cfg := &Config{}
	cfg.App.Name = "prosperity_go"
	cfg.App.Version = "1.0.0"
	cfg.Session = Session{
		HistoryCap:      100,
		EarlyPhaseUntil: 70000,
		EarlyBoost:      1.5,
		EndOfSession:    95000,
	}
	cfg.Data.Dir = "_workspace/data"
	cfg.Logging.Level = "info"

	cfg.Instruments = []Instrument{
		plain("RAINFOREST_RESIN", 50, 1.5, 10, 20, 0.3, 0.001, 10000),
		plain("KELP", 50, 2.5, 8, 15, 0.4, 0.003, 2025),
		plain("SQUID_INK", 50, 3.0, 5, 10, 0.5, 0.003, 1970),
		plain("MAGNIFICENT_MACARONS", 75, 2.0, 7, 10, 0.4, 0, 10000),
		plain("VOLCANIC_ROCK", 400, 2.0, 10, 20, 0.3, 0, 10000),
		voucher("VOLCANIC_ROCK_VOUCHER_9500", 9500),
		voucher("VOLCANIC_ROCK_VOUCHER_9750", 9750),
		voucher("VOLCANIC_ROCK_VOUCHER_10000", 10000),
		voucher("VOLCANIC_ROCK_VOUCHER_10250", 10250),
		voucher("VOLCANIC_ROCK_VOUCHER_10500", 10500),
	}

	cfg.index()
	return cfg
}

func plain(symbol string, limit int, baseSpread float64, momWindow, volWindow int, skew, momThreshold, defaultPrice float64) Instrument {
	return Instrument{
		Symbol:             symbol,
		Limit:              limit,
		MicroWeight:        0.4,
		EMAWeight:          0.3,
		SMAWeight:          0.3,
		EMADecay:           0.9,
		SMAWindow:          10,
		DefaultPrice:       defaultPrice,
		MomentumWindow:     momWindow,
		MomentumThreshold:  momThreshold,
		VolatilityWindow:   volWindow,
		BaseSpread:         baseSpread,
		MinSpread:          1,
		MaxSpread:          20,
		InventorySkew:      skew,
		TakeDiscount:       0.995,
		TakePremium:        1.005,
		MomentumGate:       momThreshold > 0,
		FlattenRatio:       0.8,
		FlattenOffset:      5,
		SizeBase:           8,
		SizeImbalanceBoost: 4,
		RegimeVolStdev:     defaultRegimeVolStdev,
		RegimeVolSpread:    defaultRegimeVolSpread,
		RegimeTrendBand:    defaultRegimeTrendBand,
	}
}

// Regime threshold defaults, filled in for descriptors that leave them
// unset. The volatility bound is a stdev of successive relative mid
// changes; the other two are absolute tick distances.
const (
	defaultRegimeVolStdev  = 0.005
	defaultRegimeVolSpread = 200.0
	defaultRegimeTrendBand = 50.0
)

func (c *Config) applyDefaults() {
	for i := range c.Instruments {
		inst := &c.Instruments[i]
		if inst.RegimeVolStdev == 0 {
			inst.RegimeVolStdev = defaultRegimeVolStdev
		}
		if inst.RegimeVolSpread == 0 {
			inst.RegimeVolSpread = defaultRegimeVolSpread
		}
		if inst.RegimeTrendBand == 0 {
			inst.RegimeTrendBand = defaultRegimeTrendBand
		}
	}
}

func voucher(symbol string, strike int) Instrument {
	inst := plain(symbol, 200, 2.0, 5, 10, 0.5, 0, 0)
	inst.Underlying = "VOLCANIC_ROCK"
	inst.Strike = strike
	inst.TimeValue = 2.0 / 7.0
	// Voucher fairs sit far below the underlying's; wider taking margins.
	inst.TakeDiscount = 0.97
	inst.TakePremium = 1.03
	return inst
}

// Load reads a YAML configuration file, applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if dir := os.Getenv("PROSPERITY_DATA_DIR"); dir != "" {
		cfg.Data.Dir = dir
	}

	cfg.applyDefaults()
	cfg.index()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate rejects incomplete instrument descriptors. Configuration problems
// are fatal at startup; the engine assumes a complete parameter table for
// every instrument it is asked to quote.
func (c *Config) Validate() error {
	if len(c.Instruments) == 0 {
		return fmt.Errorf("at least one instrument is required")
	}
	if c.Session.HistoryCap <= 0 {
		return fmt.Errorf("session history_cap must be positive")
	}

	seen := make(map[string]bool, len(c.Instruments))
	for _, inst := range c.Instruments {
		if inst.Symbol == "" {
			return fmt.Errorf("instrument with empty symbol")
		}
		if seen[inst.Symbol] {
			return fmt.Errorf("duplicate instrument %s", inst.Symbol)
		}
		seen[inst.Symbol] = true

		if inst.Limit <= 0 {
			return fmt.Errorf("%s: limit must be positive", inst.Symbol)
		}
		if inst.BaseSpread <= 0 {
			return fmt.Errorf("%s: base_spread must be positive", inst.Symbol)
		}
		if inst.MinSpread > inst.MaxSpread {
			return fmt.Errorf("%s: min_spread exceeds max_spread", inst.Symbol)
		}
		if inst.MomentumWindow < 2 {
			return fmt.Errorf("%s: momentum_window must be at least 2", inst.Symbol)
		}
		if inst.VolatilityWindow < 2 {
			return fmt.Errorf("%s: volatility_window must be at least 2", inst.Symbol)
		}
		if inst.TakeDiscount <= 0 || inst.TakePremium <= 0 {
			return fmt.Errorf("%s: taking margins must be positive", inst.Symbol)
		}
		if inst.SizeBase <= 0 {
			return fmt.Errorf("%s: size_base must be positive", inst.Symbol)
		}
		if inst.FlattenRatio <= 0 || inst.FlattenRatio > 1 {
			return fmt.Errorf("%s: flatten_ratio must be in (0, 1]", inst.Symbol)
		}
		if inst.RegimeVolStdev <= 0 || inst.RegimeVolSpread <= 0 || inst.RegimeTrendBand <= 0 {
			return fmt.Errorf("%s: regime thresholds must be positive", inst.Symbol)
		}
		if inst.Derivative() {
			if inst.TimeValue <= 0 {
				return fmt.Errorf("%s: derivative needs a positive time_value", inst.Symbol)
			}
		} else {
			if inst.MicroWeight+inst.EMAWeight+inst.SMAWeight <= 0 {
				return fmt.Errorf("%s: fair-value weights must not all be zero", inst.Symbol)
			}
			if inst.SMAWindow < 1 {
				return fmt.Errorf("%s: sma_window must be at least 1", inst.Symbol)
			}
			if inst.EMADecay <= 0 || inst.EMADecay > 1 {
				return fmt.Errorf("%s: ema_decay must be in (0, 1]", inst.Symbol)
			}
		}
	}

	for _, inst := range c.Instruments {
		if inst.Derivative() && !seen[inst.Underlying] {
			return fmt.Errorf("%s: unknown underlying %s", inst.Symbol, inst.Underlying)
		}
	}
	return nil
}

// Instrument looks up a descriptor by symbol.
func (c *Config) Instrument(symbol string) (Instrument, bool) {
	idx, ok := c.bySymbol[symbol]
	if !ok {
		return Instrument{}, false
	}
	return c.Instruments[idx], true
}

func (c *Config) index() {
	c.bySymbol = make(map[string]int, len(c.Instruments))
	for i, inst := range c.Instruments {
		c.bySymbol[inst.Symbol] = i
	}
}
