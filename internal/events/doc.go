// Package events carries study-session notifications from the study service
// to interested observers such as metrics collectors.
//
// Events are published only after a session change has been persisted, so a
// handler never sees a transition that was later rolled back.
package events
