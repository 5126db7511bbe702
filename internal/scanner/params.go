package scanner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	"TrendEdge/internal/calculator"
	"TrendEdge/internal/model"
	"TrendEdge/internal/strategy"
)

var validate = validator.New()

// Params holds the indicator lengths, classifier thresholds and execution
// settings of one scan.
type Params struct {
	Mode strategy.Mode `json:"mode" yaml:"mode" default:"momentum" validate:"oneof=momentum breakout"`

	MACDFast   int     `json:"macd_fast" yaml:"macd_fast" default:"12" validate:"gt=0,ltfield=MACDSlow"`
	MACDSlow   int     `json:"macd_slow" yaml:"macd_slow" default:"26" validate:"gt=0"`
	MACDSignal int     `json:"macd_signal" yaml:"macd_signal" default:"9" validate:"gt=0"`
	TrendSMA   int     `json:"trend_sma" yaml:"trend_sma" default:"50" validate:"gt=0"`
	RSILength  int     `json:"rsi_length" yaml:"rsi_length" default:"14" validate:"gt=0"`
	BBWindow   int     `json:"bb_window" yaml:"bb_window" default:"20" validate:"gt=0"`
	BBK        float64 `json:"bb_k" yaml:"bb_k" default:"2" validate:"gte=0"`
	SMAFast    int     `json:"sma_fast" yaml:"sma_fast" default:"5" validate:"gt=0,ltfield=SMAMid"`
	SMAMid     int     `json:"sma_mid" yaml:"sma_mid" default:"10" validate:"gt=0,ltfield=SMASlow"`
	SMASlow    int     `json:"sma_slow" yaml:"sma_slow" default:"20" validate:"gt=0"`

	Overbought float64 `json:"overbought" yaml:"overbought" default:"70" validate:"gte=0,lte=100"`
	Oversold   float64 `json:"oversold" yaml:"oversold" default:"30" validate:"gte=0,lte=100,ltfield=Overbought"`
	Tolerance  float64 `json:"tolerance" yaml:"tolerance" validate:"gte=0"`

	Workers    int  `json:"workers" yaml:"workers" default:"8" validate:"gte=1"`
	KeepFrames bool `json:"keep_frames" yaml:"keep_frames"`
}

// DefaultParams returns the standard indicator and threshold settings.
func DefaultParams() Params {
	var p Params
	if err := defaults.Set(&p); err != nil {
		panic(fmt.Sprintf("scanner: default params: %v", err))
	}
	return p
}

// Validate checks every length and threshold. The returned error wraps
// model.ErrInvalidParameter.
func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fieldMessage(fe))
			}
			return fmt.Errorf("%s: %w", strings.Join(msgs, "; "), model.ErrInvalidParameter)
		}
		return fmt.Errorf("%v: %w", err, model.ErrInvalidParameter)
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "ltfield":
		return fmt.Sprintf("%s must be less than %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

// FrameParams returns the indicator lengths.
func (p Params) FrameParams() calculator.FrameParams {
	return calculator.FrameParams{
		MACDFast:   p.MACDFast,
		MACDSlow:   p.MACDSlow,
		MACDSignal: p.MACDSignal,
		TrendSMA:   p.TrendSMA,
		RSILength:  p.RSILength,
		BBWindow:   p.BBWindow,
		BBK:        p.BBK,
		SMAFast:    p.SMAFast,
		SMAMid:     p.SMAMid,
		SMASlow:    p.SMASlow,
	}
}

// Thresholds returns the classifier thresholds.
func (p Params) Thresholds() strategy.Thresholds {
	return strategy.Thresholds{
		Overbought: p.Overbought,
		Oversold:   p.Oversold,
		Tolerance:  p.Tolerance,
	}
}
