package kucoin

import "testing"

func TestToContract(t *testing.T) {
	tests := []struct {
		name     string
		symbol   string
		expected string
	}{
		{name: "Унифицированный формат", symbol: "SOL/USDT:USDT", expected: "SOLUSDTM"},
		{name: "BTC становится XBT", symbol: "BTC/USDT:USDT", expected: "XBTUSDTM"},
		{name: "Склеенный формат", symbol: "ETHUSDT", expected: "ETHUSDTM"},
		{name: "Только базовая монета", symbol: "doge", expected: "DOGEUSDTM"},
		{name: "Уже контракт", symbol: "XBTUSDTM", expected: "XBTUSDTM"},
		{name: "Пробелы по краям", symbol: "  link/usdt:usdt ", expected: "LINKUSDTM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToContract(tt.symbol); got != tt.expected {
				t.Errorf("ToContract(%q) = %q, want %q", tt.symbol, got, tt.expected)
			}
		})
	}
}

func TestFromContract(t *testing.T) {
	tests := []struct {
		contract string
		expected string
	}{
		{contract: "XBTUSDTM", expected: "BTC/USDT:USDT"},
		{contract: "SOLUSDTM", expected: "SOL/USDT:USDT"},
		{contract: "AVAXUSDTM", expected: "AVAX/USDT:USDT"},
	}

	for _, tt := range tests {
		if got := FromContract(tt.contract); got != tt.expected {
			t.Errorf("FromContract(%q) = %q, want %q", tt.contract, got, tt.expected)
		}
	}
}

func TestBaseAsset(t *testing.T) {
	if got := BaseAsset("XBTUSDTM"); got != "BTC" {
		t.Errorf("BaseAsset(XBTUSDTM) = %q, want BTC", got)
	}
	if got := BaseAsset("SOL/USDT:USDT"); got != "SOL" {
		t.Errorf("BaseAsset(SOL/USDT:USDT) = %q, want SOL", got)
	}
}
