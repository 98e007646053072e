package search

import (
	"fmt"
	"time"
)

// CurrentTimeReply formats a direct answer for a time question from
// the local clock, without any network call.
func CurrentTimeReply(now time.Time) string {
	return fmt.Sprintf("It's %s right now (%s).",
		now.Format("3:04 PM"), now.Format("Monday, January 2"))
}

// CurrentDateReply formats a direct answer for a date question.
func CurrentDateReply(now time.Time) string {
	return fmt.Sprintf("Today is %s.", now.Format("Monday, January 2, 2006"))
}
