package kucoin

import "strings"

// ToContract maps a display symbol ("BTC/USDT:USDT", "BTCUSDT" or just
// "BTC") to the KuCoin futures contract id ("XBTUSDTM"). BTC trades as
// XBT on KuCoin futures.
func ToContract(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if strings.HasSuffix(s, "USDTM") {
		return s
	}
	if i := strings.Index(s, ":"); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, "/", "")
	s = strings.TrimSuffix(s, "USDT")
	if s == "BTC" {
		s = "XBT"
	}
	return s + "USDTM"
}

// FromContract maps a contract id back to the unified display form.
func FromContract(contract string) string {
	base := strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(contract)), "USDTM")
	if base == "XBT" {
		base = "BTC"
	}
	return base + "/USDT:USDT"
}

// BaseAsset returns the base coin of either symbol form ("BTC").
func BaseAsset(symbol string) string {
	base := strings.TrimSuffix(ToContract(symbol), "USDTM")
	if base == "XBT" {
		base = "BTC"
	}
	return base
}
