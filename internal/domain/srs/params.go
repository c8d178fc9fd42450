package srs

import (
	"errors"
	"fmt"

	"github.com/phrazzld/scry-study/internal/domain"
)

// ErrInvalidParams is returned when scheduler parameters are inconsistent.
var ErrInvalidParams = errors.New("invalid scheduler parameters")

// Params defines all configurable parameters for the scheduling algorithm
type Params struct {
	// Core limits
	MinEase         float64
	MaxEase         float64
	MaxIntervalDays int

	// Ease adjustments per rating
	EaseAdjustment map[domain.ReviewRating]float64

	// Interval growth. Good grows by the card's ease, hard by
	// HardIntervalModifier and easy by ease times EasyBonus.
	HardIntervalModifier float64
	EasyBonus            float64

	// Special case handling
	FirstReviewIntervals map[domain.ReviewRating]int
	AgainReviewMinutes   int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values keep the default.
type ParamsConfig struct {
	MinEase         float64 `mapstructure:"min_ease" validate:"omitempty,gt=0"`
	MaxEase         float64 `mapstructure:"max_ease" validate:"omitempty,gtfield=MinEase"`
	MaxIntervalDays int     `mapstructure:"max_interval_days" validate:"omitempty,gt=0"`

	AgainEaseAdjustment float64 `mapstructure:"again_ease_adjustment" validate:"omitempty,lt=0"`
	HardEaseAdjustment  float64 `mapstructure:"hard_ease_adjustment" validate:"omitempty,lt=0"`
	EasyEaseAdjustment  float64 `mapstructure:"easy_ease_adjustment" validate:"omitempty,gt=0"`

	HardIntervalModifier float64 `mapstructure:"hard_interval_modifier" validate:"omitempty,gt=0"`
	EasyBonus            float64 `mapstructure:"easy_bonus" validate:"omitempty,gt=1"`

	FirstReviewHardInterval int `mapstructure:"first_review_hard_interval" validate:"omitempty,gt=0"`
	FirstReviewGoodInterval int `mapstructure:"first_review_good_interval" validate:"omitempty,gt=0"`
	FirstReviewEasyInterval int `mapstructure:"first_review_easy_interval" validate:"omitempty,gt=0"`

	AgainReviewMinutes int `mapstructure:"again_review_minutes" validate:"omitempty,gt=0"`
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		MinEase:         1.3,
		MaxEase:         3.0,
		MaxIntervalDays: 3650,

		EaseAdjustment: map[domain.ReviewRating]float64{
			domain.ReviewRatingAgain: -0.20,
			domain.ReviewRatingHard:  -0.15,
			domain.ReviewRatingGood:  0.0,
			domain.ReviewRatingEasy:  0.15,
		},

		HardIntervalModifier: 1.2,
		EasyBonus:            1.3,

		FirstReviewIntervals: map[domain.ReviewRating]int{
			domain.ReviewRatingHard: 1,
			domain.ReviewRatingGood: 1,
			domain.ReviewRatingEasy: 2,
		},

		// Review again in 10 minutes
		AgainReviewMinutes: 10,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEase > 0 {
		params.MinEase = config.MinEase
	}
	if config.MaxEase > 0 {
		params.MaxEase = config.MaxEase
	}
	if config.MaxIntervalDays > 0 {
		params.MaxIntervalDays = config.MaxIntervalDays
	}

	if config.AgainEaseAdjustment != 0 {
		params.EaseAdjustment[domain.ReviewRatingAgain] = config.AgainEaseAdjustment
	}
	if config.HardEaseAdjustment != 0 {
		params.EaseAdjustment[domain.ReviewRatingHard] = config.HardEaseAdjustment
	}
	if config.EasyEaseAdjustment != 0 {
		params.EaseAdjustment[domain.ReviewRatingEasy] = config.EasyEaseAdjustment
	}

	if config.HardIntervalModifier > 0 {
		params.HardIntervalModifier = config.HardIntervalModifier
	}
	if config.EasyBonus > 0 {
		params.EasyBonus = config.EasyBonus
	}

	if config.FirstReviewHardInterval > 0 {
		params.FirstReviewIntervals[domain.ReviewRatingHard] = config.FirstReviewHardInterval
	}
	if config.FirstReviewGoodInterval > 0 {
		params.FirstReviewIntervals[domain.ReviewRatingGood] = config.FirstReviewGoodInterval
	}
	if config.FirstReviewEasyInterval > 0 {
		params.FirstReviewIntervals[domain.ReviewRatingEasy] = config.FirstReviewEasyInterval
	}

	if config.AgainReviewMinutes > 0 {
		params.AgainReviewMinutes = config.AgainReviewMinutes
	}

	return params
}

// Validate checks that the parameters describe a usable scheduler.
func (p *Params) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: nil params", ErrInvalidParams)
	}
	if p.MinEase <= 0 || p.MaxEase < p.MinEase {
		return fmt.Errorf("%w: ease bounds [%v, %v]", ErrInvalidParams, p.MinEase, p.MaxEase)
	}
	if p.MaxIntervalDays < 1 {
		return fmt.Errorf("%w: max interval %d", ErrInvalidParams, p.MaxIntervalDays)
	}
	if p.HardIntervalModifier <= 0 || p.EasyBonus < 1 {
		return fmt.Errorf("%w: interval modifiers", ErrInvalidParams)
	}
	if p.AgainReviewMinutes < 1 {
		return fmt.Errorf("%w: again delay %d", ErrInvalidParams, p.AgainReviewMinutes)
	}
	if p.EaseAdjustment[domain.ReviewRatingAgain] > 0 || p.EaseAdjustment[domain.ReviewRatingHard] > 0 {
		return fmt.Errorf("%w: again and hard must not raise ease", ErrInvalidParams)
	}

	hard := p.FirstReviewIntervals[domain.ReviewRatingHard]
	good := p.FirstReviewIntervals[domain.ReviewRatingGood]
	easy := p.FirstReviewIntervals[domain.ReviewRatingEasy]
	if hard < 1 || good < hard || easy <= good {
		return fmt.Errorf("%w: first review intervals %d/%d/%d", ErrInvalidParams, hard, good, easy)
	}
	return nil
}
