// Package service contains the application use cases that sit between the
// HTTP layer and the stores.
//
// This package holds deck and card management (CardService). The study
// workflow lives in the study subpackage, which owns the active session and
// the scheduling transitions.
//
// Services receive their stores through constructor injection and depend only
// on the interfaces in internal/store. Unexpected failures are wrapped in
// CardServiceError; callers classify them with errors.Is against the store and
// domain sentinels, and the API layer maps those to HTTP status codes.
package service
