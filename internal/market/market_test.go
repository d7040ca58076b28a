package market

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/limitup/internal/contracts"
)

func TestDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry()

	codes := r.Codes()
	assert.Equal(t, []string{"CN", "IN", "JP", "KR", "TH", "TW", "US"}, codes)

	tw, err := r.Get("tw")
	require.NoError(t, err)
	assert.Equal(t, "TW", tw.Code)
	assert.Equal(t, 0.10, tw.DefaultUpRate)

	_, err = r.Get("XX")
	assert.Error(t, err)
}

func TestTaiwanOpenBoards(t *testing.T) {
	tw, _ := NewDefaultRegistry().Get("TW")

	assert.True(t, tw.IsOpenBoard("emerging"))
	assert.True(t, tw.IsOpenBoard(" Emerging "))
	assert.True(t, tw.IsOpenBoard("rotc"))
	assert.False(t, tw.IsOpenBoard("listed"))
	assert.False(t, tw.IsOpenBoard(""))
}

func TestChinaRatioByBoard(t *testing.T) {
	cn, _ := NewDefaultRegistry().Get("CN")

	tests := []struct {
		name string
		meta contracts.SymbolMeta
		want float64
	}{
		{"main board", contracts.SymbolMeta{Symbol: "600519.SH", Name: "贵州茅台"}, 0.10},
		{"chinext", contracts.SymbolMeta{Symbol: "300750.SZ", Name: "宁德时代"}, 0.20},
		{"star", contracts.SymbolMeta{Symbol: "688981.SH", Name: "中芯国际"}, 0.20},
		{"beijing 8x", contracts.SymbolMeta{Symbol: "830799.BJ", Name: "艾融软件"}, 0.30},
		{"st five percent", contracts.SymbolMeta{Symbol: "600005.SH", Name: "*ST 武钢"}, 0.05},
		{"st prefix", contracts.SymbolMeta{Symbol: "000100.SZ", Name: "ST TCL"}, 0.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cn.UpRateFor(tt.meta))
		})
	}
}

func TestPerSymbolCircuitBandWins(t *testing.T) {
	in, _ := NewDefaultRegistry().Get("IN")

	band := 0.05
	meta := contracts.SymbolMeta{Symbol: "RELIANCE.NS", LimitRatio: &band}
	assert.Equal(t, 0.05, in.UpRateFor(meta))

	// without a band there is no usable rate; the resolver demotes
	// such symbols to the no-limit regime
	assert.Equal(t, 0.0, in.UpRateFor(contracts.SymbolMeta{Symbol: "TCS.NS"}))
}

func TestJapanAmountTable(t *testing.T) {
	jp, _ := NewDefaultRegistry().Get("JP")

	// base 950 -> +150 limit move
	lu, err := jp.LimitPriceFor(contracts.SymbolMeta{Symbol: "7203.T"}, 950)
	require.NoError(t, err)
	assert.Equal(t, 1100.0, lu)

	// base 4000 -> +700
	lu, err = jp.LimitPriceFor(contracts.SymbolMeta{Symbol: "9984.T"}, 4000)
	require.NoError(t, err)
	assert.Equal(t, 4700.0, lu)

	_, err = jp.LimitPriceFor(contracts.SymbolMeta{}, 0)
	assert.Error(t, err)
}

func TestKoreaLimitPrice(t *testing.T) {
	kr, _ := NewDefaultRegistry().Get("KR")

	// 10000 * 1.30 = 13000, tick 10 in that band
	lu, err := kr.LimitPriceFor(contracts.SymbolMeta{Symbol: "005930.KS"}, 10000)
	require.NoError(t, err)
	assert.Equal(t, 13000.0, lu)
}

func TestLoadFileOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "markets.yaml")

	content := `markets:
  - code: tw
    default_up_rate: 0.12
  - code: HK
    name: Hong Kong
    default_limit_type: open_limit
    ticks:
      - upper: 0.25
        tick: 0.001
      - tick: 0.01
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	r := NewDefaultRegistry()
	require.NoError(t, LoadFile(r, path))

	tw, err := r.Get("TW")
	require.NoError(t, err)
	assert.Equal(t, 0.12, tw.DefaultUpRate)
	// built-in open boards survive a partial override
	assert.True(t, tw.IsOpenBoard("emerging"))

	hk, err := r.Get("HK")
	require.NoError(t, err)
	assert.Equal(t, contracts.LimitOpen, hk.DefaultLimitType)
	assert.Equal(t, 0.001, hk.Ticks.TickSize(0.2))
	assert.Equal(t, 0.01, hk.Ticks.TickSize(5.0))
}

func TestLoadFileRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "markets.yaml")

	content := `markets:
  - code: TW
    defualt_up_rate: 0.12
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	err := LoadFile(NewDefaultRegistry(), path)
	assert.Error(t, err)
}
