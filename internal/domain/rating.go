package domain

import "fmt"

// ReviewRating is the grade a learner gives a card after attempting to recall it.
type ReviewRating string

// Possible review ratings, in increasing order of recall quality.
const (
	ReviewRatingAgain ReviewRating = "again"
	ReviewRatingHard  ReviewRating = "hard"
	ReviewRatingGood  ReviewRating = "good"
	ReviewRatingEasy  ReviewRating = "easy"
)

// ReviewRatings lists every valid rating from worst to best.
var ReviewRatings = []ReviewRating{
	ReviewRatingAgain,
	ReviewRatingHard,
	ReviewRatingGood,
	ReviewRatingEasy,
}

// IsValid reports whether r is one of the four known ratings.
func (r ReviewRating) IsValid() bool {
	switch r {
	case ReviewRatingAgain, ReviewRatingHard, ReviewRatingGood, ReviewRatingEasy:
		return true
	}
	return false
}

// IsCorrect reports whether the rating counts as a successful recall.
// Good and easy are correct; again and hard are not.
func (r ReviewRating) IsCorrect() bool {
	return r == ReviewRatingGood || r == ReviewRatingEasy
}

// ParseReviewRating converts s into a ReviewRating.
func ParseReviewRating(s string) (ReviewRating, error) {
	r := ReviewRating(s)
	if !r.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidReviewRating, s)
	}
	return r, nil
}
