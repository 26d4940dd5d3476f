package trailing

import (
	"math"
	"strings"
	"testing"

	"github.com/Alias1177/KuFutures/internal/model"
)

func TestParseVariant(t *testing.T) {
	for _, name := range []string{"classic", "auto", "smart", "dynamic"} {
		if _, err := ParseVariant(name); err != nil {
			t.Errorf("ParseVariant(%q): %v", name, err)
		}
	}
	if _, err := ParseVariant("turbo"); err == nil {
		t.Error("ожидалась ошибка для неизвестного варианта")
	}
}

func TestClassicPolicy(t *testing.T) {
	snap := &model.TimeframeSnapshot{ATR: 2}

	stop, _ := ClassicPolicy{}.DesiredStop(model.Long, 100, snap)
	if stop != 96 {
		t.Errorf("ATR-трейл LONG: stop = %v, want 96 (2.0 x ATR)", stop)
	}

	stop, _ = ClassicPolicy{}.DesiredStop(model.Short, 100, snap)
	if stop != 104 {
		t.Errorf("ATR-трейл SHORT: stop = %v, want 104", stop)
	}

	stop, _ = ClassicPolicy{ATRMult: 3}.DesiredStop(model.Long, 100, snap)
	if stop != 94 {
		t.Errorf("ATRMult 3: stop = %v, want 94", stop)
	}

	stop, _ = ClassicPolicy{Pct: 1.5}.DesiredStop(model.Long, 100, snap)
	if stop != 98.5 {
		t.Errorf("процентный трейл: stop = %v, want 98.5", stop)
	}

	// Нет волатильности - нет предложения.
	stop, reasons := ClassicPolicy{}.DesiredStop(model.Long, 100, &model.TimeframeSnapshot{})
	if stop != 0 || reasons != nil {
		t.Errorf("при нулевом ATR: stop = %v, reasons = %v", stop, reasons)
	}
}

func TestAutoPolicy(t *testing.T) {
	snap := &model.TimeframeSnapshot{ATR: 2}

	stop, _ := AutoPolicy{}.DesiredStop(model.Long, 100, snap)
	if stop != 98 {
		t.Errorf("stop = %v, want 98 (1.0 x ATR)", stop)
	}
	stop, _ = AutoPolicy{}.DesiredStop(model.Short, 100, snap)
	if stop != 102 {
		t.Errorf("stop = %v, want 102", stop)
	}
}

func TestDynamicPolicyTiers(t *testing.T) {
	tests := []struct {
		name     string
		adx      float64
		expected float64
	}{
		{name: "Сильный тренд", adx: 35, expected: 97}, // ATR 2 x 1.5, стоп поджимается
		{name: "Средний тренд", adx: 25, expected: 96}, // ATR 2 x 2.0 (ровно 25 ещё не сильный)
		{name: "Слабый тренд", adx: 10, expected: 95},  // ATR 2 x 2.5
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Структурные уровни далеко внизу, выигрывает ATR-дистанция.
			snap := &model.TimeframeSnapshot{ATR: 2, ADX: tt.adx, BBLower: 90, EMA20: 92}
			stop, _ := DynamicPolicy{}.DesiredStop(model.Long, 100, snap)
			if math.Abs(stop-tt.expected) > 1e-9 {
				t.Errorf("stop = %v, want %v", stop, tt.expected)
			}
		})
	}
}

func TestDynamicPolicyStructureLevels(t *testing.T) {
	// Нижняя полоса BB ближе сырой ATR-дистанции: стоп прижимается к уровню.
	snap := &model.TimeframeSnapshot{ATR: 2, ADX: 10, BBLower: 98.5, EMA20: 98}
	stop, reasons := DynamicPolicy{}.DesiredStop(model.Long, 100, snap)
	if stop != 98.5 {
		t.Errorf("stop = %v, want 98.5 (нижняя полоса BB); reasons: %v", stop, reasons)
	}

	// EMA20 минус полATR может оказаться ещё ближе.
	snap = &model.TimeframeSnapshot{ATR: 2, ADX: 10, BBLower: 90, EMA20: 98}
	stop, _ = DynamicPolicy{}.DesiredStop(model.Long, 100, snap)
	if stop != 97 {
		t.Errorf("stop = %v, want 97 (EMA20 - 0.5 ATR)", stop)
	}

	// Для SHORT работают зеркальные уровни выше цены.
	snap = &model.TimeframeSnapshot{ATR: 2, ADX: 10, BBUpper: 101.5, EMA20: 103}
	stop, _ = DynamicPolicy{}.DesiredStop(model.Short, 100, snap)
	if stop != 101.5 {
		t.Errorf("SHORT stop = %v, want 101.5 (верхняя полоса BB)", stop)
	}
}

func TestDynamicPolicyWrongSideFallback(t *testing.T) {
	// Все уровни выше цены лонга: откат на один ATR под цену.
	snap := &model.TimeframeSnapshot{ATR: 2, ADX: 30, BBLower: 100.5, EMA20: 103}
	stop, reasons := DynamicPolicy{}.DesiredStop(model.Long, 100, snap)
	if stop != 98 {
		t.Errorf("stop = %v, want 98 (цена минус 1 ATR); reasons: %v", stop, reasons)
	}
	if !strings.Contains(strings.Join(reasons, "; "), "отступ 1 ATR") {
		t.Errorf("в причинах нет пометки об откате: %v", reasons)
	}
}

func TestDynamicHysteresis(t *testing.T) {
	m, _, err := Setup(VariantDynamic, model.Long, 100, SetupOptions{MinTrailPct: 1})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	// Активация на 101, первый стоп встаёт без ограничений.
	if ev := m.Tick(101, 96); ev != EventActivated {
		t.Fatalf("event = %v, want ACTIVATED", ev)
	}
	if m.Stop() != 96 {
		t.Fatalf("Stop = %v, want 96", m.Stop())
	}

	// Улучшение 0.31% меньше шага 1%: стоп стоит на месте.
	if ev := m.Tick(101.5, 96.3); ev != EventNone {
		t.Errorf("event = %v, want NONE", ev)
	}
	if m.Stop() != 96 {
		t.Errorf("Stop = %v, want 96 (микродвижение отсечено)", m.Stop())
	}

	// Улучшение 1.56% проходит.
	if ev := m.Tick(102, 97.5); ev != EventStopMoved {
		t.Errorf("event = %v, want STOP_MOVED", ev)
	}
	if m.Stop() != 97.5 {
		t.Errorf("Stop = %v, want 97.5", m.Stop())
	}

	// Без явного шага берётся дефолт.
	m, _, err = Setup(VariantDynamic, model.Long, 100, SetupOptions{})
	if err != nil {
		t.Fatalf("Setup default: %v", err)
	}
	if m.minStepPct != dynamicMinStepPct {
		t.Errorf("minStepPct = %v, want %v по умолчанию", m.minStepPct, dynamicMinStepPct)
	}
}

func TestSetupAuto(t *testing.T) {
	m, policy, err := Setup(VariantAuto, model.Long, 100, SetupOptions{InitialStop: 96})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if _, ok := policy.(AutoPolicy); !ok {
		t.Errorf("policy = %T, want AutoPolicy", policy)
	}
	if m.State() != StateWaiting {
		t.Errorf("State = %v, want WAITING", m.State())
	}
	// Активация на 1.5R: риск 4, вход 100.
	if m.Activation() != 106 {
		t.Errorf("Activation = %v, want 106", m.Activation())
	}

	m, _, err = Setup(VariantAuto, model.Short, 100, SetupOptions{InitialStop: 104})
	if err != nil {
		t.Fatalf("Setup SHORT: %v", err)
	}
	if m.Activation() != 94 {
		t.Errorf("Activation SHORT = %v, want 94", m.Activation())
	}

	if _, _, err := Setup(VariantAuto, model.Long, 100, SetupOptions{}); err == nil {
		t.Error("auto без стопа должен падать")
	}
}

func TestSetupClassicAndDynamic(t *testing.T) {
	m, _, err := Setup(VariantClassic, model.Long, 100, SetupOptions{})
	if err != nil {
		t.Fatalf("Setup classic: %v", err)
	}
	if m.State() != StateActive {
		t.Errorf("classic должен стартовать активным, state = %v", m.State())
	}

	m, _, err = Setup(VariantDynamic, model.Long, 100, SetupOptions{})
	if err != nil {
		t.Fatalf("Setup dynamic: %v", err)
	}
	if m.Activation() != 101 {
		t.Errorf("dynamic activation = %v, want 101 (прибыль 1%%)", m.Activation())
	}

	m, _, err = Setup(VariantDynamic, model.Short, 100, SetupOptions{ActivationPct: 2})
	if err != nil {
		t.Fatalf("Setup dynamic SHORT: %v", err)
	}
	if m.Activation() != 98 {
		t.Errorf("dynamic SHORT activation = %v, want 98", m.Activation())
	}

	if _, _, err := Setup(VariantClassic, model.Long, 0, SetupOptions{}); err == nil {
		t.Error("нулевой вход должен падать")
	}
}
