package trailing

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/Alias1177/KuFutures/internal/model"
)

// Variant is a trailing flavor selectable from the command line.
type Variant string

const (
	VariantClassic Variant = "classic"
	VariantAuto    Variant = "auto"
	VariantSmart   Variant = "smart"
	VariantDynamic Variant = "dynamic"
)

// ParseVariant validates a CLI variant name.
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantClassic, VariantAuto, VariantSmart, VariantDynamic:
		return Variant(s), nil
	}
	return "", errors.Errorf("unknown trailing variant %q (classic, auto, smart, dynamic)", s)
}

// Policy proposes a stop for the current tick. The machine decides
// whether the proposal actually moves the stop.
type Policy interface {
	DesiredStop(side model.Side, price float64, snap *model.TimeframeSnapshot) (float64, []string)
}

const (
	defaultATRMult  = 2.0
	autoATRMult     = 1.0
	autoActivationR = 1.5

	dynamicActivationPct = 1.0
	dynamicMinStepPct    = 0.3
	dynamicEMABufferATR  = 0.5
	dynamicFallbackATR   = 1.0
)

// ClassicPolicy trails at a fixed ATR multiple, or a fixed percent of
// price when Pct is set.
type ClassicPolicy struct {
	ATRMult float64 // 0 => defaultATRMult
	Pct     float64 // если > 0, процентный трейл вместо ATR
}

func (p ClassicPolicy) DesiredStop(side model.Side, price float64, snap *model.TimeframeSnapshot) (float64, []string) {
	mult := p.ATRMult
	if mult <= 0 {
		mult = defaultATRMult
	}

	var dist float64
	var reason string
	if p.Pct > 0 {
		dist = price * p.Pct / 100
		reason = fmt.Sprintf("трейл %.2f%% от цены", p.Pct)
	} else {
		dist = snap.ATR * mult
		reason = fmt.Sprintf("ATR %.6f x %.1f", snap.ATR, mult)
	}
	if dist <= 0 {
		return 0, nil
	}

	return offset(side, price, dist), []string{reason}
}

// AutoPolicy is the hands-off flavor: a hard stop protects the trade
// until price runs autoActivationR times the risk, then a tight one
// ATR trail locks the move in.
type AutoPolicy struct{}

func (AutoPolicy) DesiredStop(side model.Side, price float64, snap *model.TimeframeSnapshot) (float64, []string) {
	dist := snap.ATR * autoATRMult
	if dist <= 0 {
		return 0, nil
	}
	return offset(side, price, dist), []string{fmt.Sprintf("ATR %.6f x %.1f", snap.ATR, autoATRMult)}
}

// SmartPolicy recomputes the ATR multiplier on every tick from
// momentum health, tightening as warnings accumulate.
type SmartPolicy struct{}

func (SmartPolicy) DesiredStop(side model.Side, price float64, snap *model.TimeframeSnapshot) (float64, []string) {
	mult, reasons := SmartMultiplier(side, price, snap)
	dist := snap.ATR * mult
	if dist <= 0 {
		return 0, nil
	}
	return offset(side, price, dist), append(reasons, fmt.Sprintf("итоговый множитель x%.1f", mult))
}

// DynamicPolicy tightens the ATR distance as the trend strengthens and
// considers structure levels: the far Bollinger band and EMA20 with a
// half-ATR buffer. Of all candidates the one closest to price wins,
// стоп прячется за ближайший уровень, а не болтается в пустоте.
type DynamicPolicy struct{}

func (DynamicPolicy) DesiredStop(side model.Side, price float64, snap *model.TimeframeSnapshot) (float64, []string) {
	if snap.ATR <= 0 {
		return 0, nil
	}

	mult := 2.5
	switch {
	case snap.ADX > 25:
		mult = 1.5
	case snap.ADX > 20:
		mult = 2.0
	}
	reasons := []string{fmt.Sprintf("ADX %.1f -> ATR x%.1f", snap.ADX, mult)}

	type level struct {
		name  string
		value float64
	}
	var candidates []level
	if side == model.Long {
		candidates = []level{
			{"ATR", price - snap.ATR*mult},
			{"нижняя полоса BB", snap.BBLower},
			{"EMA20 с буфером", snap.EMA20 - snap.ATR*dynamicEMABufferATR},
		}
	} else {
		candidates = []level{
			{"ATR", price + snap.ATR*mult},
			{"верхняя полоса BB", snap.BBUpper},
			{"EMA20 с буфером", snap.EMA20 + snap.ATR*dynamicEMABufferATR},
		}
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.value <= 0 {
			continue
		}
		if side == model.Long && c.value > best.value {
			best = c
		}
		if side == model.Short && c.value < best.value {
			best = c
		}
	}

	stop := best.value
	// Уровень оказался не с той стороны цены, откатываемся на один ATR.
	if (side == model.Long && stop >= price) || (side == model.Short && stop <= price) {
		stop = offset(side, price, snap.ATR*dynamicFallbackATR)
		reasons = append(reasons, "уровни по ту сторону цены, отступ 1 ATR")
		return stop, reasons
	}

	if best.name != "ATR" {
		reasons = append(reasons, fmt.Sprintf("стоп по уровню: %s %.6f", best.name, best.value))
	}
	return stop, reasons
}

func offset(side model.Side, price, dist float64) float64 {
	if side == model.Long {
		return price - dist
	}
	return price + dist
}

// SetupOptions carries the CLI knobs shared by the variants.
type SetupOptions struct {
	ATRMult       float64 // classic
	TrailPct      float64 // classic: процентный трейл
	InitialStop   float64 // auto (обязателен), dynamic (опционален)
	ActivationPct float64 // dynamic: прибыль в %, после которой включается трейлинг
	MinTrailPct   float64 // dynamic: минимальный шаг улучшения стопа в %
}

// Setup builds the machine and policy for a variant.
func Setup(v Variant, side model.Side, entry float64, opts SetupOptions) (*Machine, Policy, error) {
	if entry <= 0 {
		return nil, nil, errors.New("entry price must be positive")
	}

	switch v {
	case VariantClassic:
		return NewMachine(side, entry, 0, 0), ClassicPolicy{ATRMult: opts.ATRMult, Pct: opts.TrailPct}, nil

	case VariantAuto:
		if opts.InitialStop <= 0 {
			return nil, nil, errors.New("auto variant needs an initial stop")
		}
		riskDist := math.Abs(entry - opts.InitialStop)
		if riskDist == 0 {
			return nil, nil, errors.New("stop distance is zero")
		}
		activation := entry + autoActivationR*riskDist
		if side == model.Short {
			activation = entry - autoActivationR*riskDist
		}
		return NewMachine(side, entry, opts.InitialStop, activation), AutoPolicy{}, nil

	case VariantSmart:
		return NewMachine(side, entry, 0, 0), SmartPolicy{}, nil

	case VariantDynamic:
		pct := opts.ActivationPct
		if pct <= 0 {
			pct = dynamicActivationPct
		}
		activation := entry * (1 + pct/100)
		if side == model.Short {
			activation = entry * (1 - pct/100)
		}
		m := NewMachine(side, entry, opts.InitialStop, activation)
		m.minStepPct = opts.MinTrailPct
		if m.minStepPct <= 0 {
			m.minStepPct = dynamicMinStepPct
		}
		return m, DynamicPolicy{}, nil
	}

	return nil, nil, errors.Errorf("unknown trailing variant %q", v)
}
