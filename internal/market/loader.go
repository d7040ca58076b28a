package market

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wonny/limitup/internal/contracts"
	"github.com/wonny/limitup/internal/rules"
)

// fileSpec is the YAML shape of one market override. Board/name ratio
// rules and amount tables stay in code; the file adjusts the numeric
// surface (tick bands, default ratio, open boards, default regime).
type fileSpec struct {
	Code             string  `yaml:"code"`
	Name             string  `yaml:"name"`
	DefaultUpRate    float64 `yaml:"default_up_rate"`
	DefaultLimitType string  `yaml:"default_limit_type"`
	OpenBoards       []string `yaml:"open_boards"`
	Ticks            []struct {
		Upper float64 `yaml:"upper"` // 0 or omitted on the last band = no upper bound
		Tick  float64 `yaml:"tick"`
	} `yaml:"ticks"`
}

type marketsFile struct {
	Markets []fileSpec `yaml:"markets"`
}

// LoadFile applies the YAML markets file on top of the registry.
// Unknown fields fail immediately: a typo in an override must never
// silently fall back to built-in behavior.
func LoadFile(r *Registry, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("market: read markets file: %w", err)
	}

	var f marketsFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return fmt.Errorf("market: parse markets file: %w", err)
	}

	for _, fs := range f.Markets {
		spec, err := fs.toSpec(r)
		if err != nil {
			return err
		}
		r.put(spec)
	}

	return nil
}

func (fs fileSpec) toSpec(r *Registry) (*Spec, error) {
	code := strings.ToUpper(strings.TrimSpace(fs.Code))
	if code == "" {
		return nil, fmt.Errorf("market: markets file entry without code")
	}

	// Start from the built-in spec when present so board/name rules and
	// amount tables survive a partial override.
	spec := &Spec{Code: code, DefaultLimitType: contracts.LimitStandard}
	if existing, err := r.Get(code); err == nil {
		clone := *existing
		spec = &clone
	}

	if fs.Name != "" {
		spec.Name = fs.Name
	}
	if fs.DefaultUpRate > 0 {
		spec.DefaultUpRate = fs.DefaultUpRate
	}
	if fs.DefaultLimitType != "" {
		lt := contracts.LimitType(fs.DefaultLimitType)
		if !lt.Valid() {
			return nil, fmt.Errorf("market: %s: invalid default_limit_type %q", code, fs.DefaultLimitType)
		}
		spec.DefaultLimitType = lt
	}
	if fs.OpenBoards != nil {
		spec.OpenBoards = fs.OpenBoards
	}
	if len(fs.Ticks) > 0 {
		table := make(rules.TickTable, 0, len(fs.Ticks))
		for i, band := range fs.Ticks {
			if band.Tick <= 0 {
				return nil, fmt.Errorf("market: %s: tick band %d has non-positive tick", code, i)
			}
			upper := band.Upper
			if upper <= 0 {
				upper = math.Inf(1)
			}
			table = append(table, rules.TickBand{Upper: upper, Tick: band.Tick})
		}
		spec.Ticks = table
	}

	if len(spec.Ticks) == 0 {
		return nil, fmt.Errorf("market: %s: no tick schedule", code)
	}

	return spec, nil
}
