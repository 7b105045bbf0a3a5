package domain

import (
	"strings"
	"time"
)

// IDSeparator joins the parts of a derived identity. Stored keys use this
// exact layout, so changing it breaks existing data:
//
//	class:   <templateID>_<YYYY-MM-DD>_<HHmm>   (local date and time)
//	booking: <classID>_<userID>
const IDSeparator = "_"

func DeriveID(parts ...string) string {
	return strings.Join(parts, IDSeparator)
}

// ClassID derives the instance identity from the template and the local start.
// start must already be in the template's timezone.
func ClassID(templateID string, start time.Time) string {
	return DeriveID(templateID, start.Format("2006-01-02"), start.Format("1504"))
}

func BookingID(classID, userID string) string {
	return DeriveID(classID, userID)
}

// ValidIDPart reports whether s can be used as a fixed-position identity part
// without making derived keys ambiguous.
func ValidIDPart(s string) bool {
	return s != "" && !strings.Contains(s, IDSeparator)
}
