package srs

import (
	"math"
	"time"

	"github.com/phrazzld/scry-study/internal/domain"
)

// clampEase keeps an ease inside the configured bounds.
func clampEase(ease float64, params *Params) float64 {
	if math.IsNaN(ease) || ease < params.MinEase {
		return params.MinEase
	}
	if ease > params.MaxEase {
		return params.MaxEase
	}
	return ease
}

// clampInterval keeps an interval inside [0, MaxIntervalDays].
func clampInterval(interval int, params *Params) int {
	if interval < 0 {
		return 0
	}
	if interval > params.MaxIntervalDays {
		return params.MaxIntervalDays
	}
	return interval
}

// calculateNewEase determines the new ease based on the review rating.
//
// Higher ease means intervals grow faster. Again and hard lower it, easy
// raises it, good leaves it alone. The result is always clamped to
// [params.MinEase, params.MaxEase].
func calculateNewEase(currentEase float64, rating domain.ReviewRating, params *Params) float64 {
	return clampEase(currentEase+params.EaseAdjustment[rating], params)
}

// calculateNewInterval determines the new interval in days.
//
// Algorithm behavior:
//   - "Again": 0, meaning a same-day re-attempt measured in minutes
//   - First review (currentInterval = 0): the configured first-review interval
//   - "Good": interval × ease, at least one day longer than before
//   - "Hard": interval × HardIntervalModifier, at least 1 and never more than good
//   - "Easy": interval × ease × EasyBonus, at least one day longer than good
//
// Every result is capped at params.MaxIntervalDays, so near the cap the
// hard/good/easy ordering can collapse to equality.
func calculateNewInterval(
	currentInterval int,
	ease float64,
	rating domain.ReviewRating,
	params *Params,
) int {
	if rating == domain.ReviewRatingAgain {
		return 0
	}

	if currentInterval == 0 {
		return clampInterval(params.FirstReviewIntervals[rating], params)
	}

	cur := float64(currentInterval)
	good := max(currentInterval+1, int(math.Floor(cur*ease)))

	var next int
	switch rating {
	case domain.ReviewRatingHard:
		next = min(max(1, int(math.Floor(cur*params.HardIntervalModifier))), good)
	case domain.ReviewRatingEasy:
		next = max(good+1, int(math.Floor(cur*ease*params.EasyBonus)))
	default:
		next = good
	}

	return clampInterval(next, params)
}

// calculateNextReviewDate converts an interval into the moment of the next review.
// Again schedules a re-attempt params.AgainReviewMinutes from now; every
// other rating schedules the review interval calendar days from now.
func calculateNextReviewDate(
	interval int,
	rating domain.ReviewRating,
	now time.Time,
	params *Params,
) time.Time {
	if rating == domain.ReviewRatingAgain {
		return now.Add(time.Duration(params.AgainReviewMinutes) * time.Minute)
	}
	return now.AddDate(0, 0, clampInterval(interval, params))
}

// calculateNextMasteryLevel moves a card between mastery levels.
// Again demotes one level, hard holds, good and easy promote one level.
func calculateNextMasteryLevel(current domain.MasteryLevel, rating domain.ReviewRating) domain.MasteryLevel {
	switch rating {
	case domain.ReviewRatingAgain:
		return current.Demote()
	case domain.ReviewRatingGood, domain.ReviewRatingEasy:
		return current.Promote()
	default:
		if !current.IsValid() {
			return domain.MasteryNovice
		}
		return current
	}
}
