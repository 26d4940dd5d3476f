package watchlist

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/Alias1177/KuFutures/internal/exchange/kucoin"
)

// defaults: ликвидные перпетуалы KuCoin Futures, чтобы сканер работал
// из коробки без конфига.
var defaults = []string{
	"BTC/USDT:USDT",
	"ETH/USDT:USDT",
	"SOL/USDT:USDT",
	"XRP/USDT:USDT",
	"BNB/USDT:USDT",
	"DOGE/USDT:USDT",
	"ADA/USDT:USDT",
	"LINK/USDT:USDT",
	"AVAX/USDT:USDT",
	"DOT/USDT:USDT",
	"MATIC/USDT:USDT",
	"UNI/USDT:USDT",
	"ATOM/USDT:USDT",
	"LTC/USDT:USDT",
	"APT/USDT:USDT",
	"ARB/USDT:USDT",
	"OP/USDT:USDT",
	"SUI/USDT:USDT",
	"TIA/USDT:USDT",
	"SEI/USDT:USDT",
	"FTM/USDT:USDT",
	"INJ/USDT:USDT",
	"NEAR/USDT:USDT",
	"AAVE/USDT:USDT",
}

type fileFormat struct {
	Symbols []string `mapstructure:"symbols"`
}

// Default returns a copy of the built-in watchlist.
func Default() []string {
	out := make([]string, len(defaults))
	copy(out, defaults)
	return out
}

// Load reads a YAML watchlist:
//
//	symbols:
//	  - BTC/USDT:USDT
//	  - ETHUSDT
//
// The file replaces the built-in list entirely. path == "" returns
// Default(). Символы принимаются в любом формате, как и у команд.
func Load(path string) ([]string, error) {
	if path == "" {
		return Default(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read watchlist %s", path)
	}

	var ff fileFormat
	if err := v.Unmarshal(&ff); err != nil {
		return nil, errors.Wrapf(err, "parse watchlist %s", path)
	}

	symbols := normalize(ff.Symbols)
	if len(symbols) == 0 {
		return nil, errors.Errorf("watchlist %s has no symbols", path)
	}
	return symbols, nil
}

// normalize trims entries and drops duplicates that map to the same
// contract (BTC и BTCUSDT это одна и та же бумага).
func normalize(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		contract := kucoin.ToContract(s)
		if _, ok := seen[contract]; ok {
			continue
		}
		seen[contract] = struct{}{}
		out = append(out, s)
	}
	return out
}
