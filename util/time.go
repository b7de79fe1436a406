package util

import (
	"fmt"
	"time"
)

// SecondsToHuman returns human readable time format.
func SecondsToHuman(duration uint64) string {
	var days, hours, minutes, seconds uint64 = 0, 0, 0, 0
	if duration >= 86400 {
		days = duration / 86400
		duration -= days * 86400
	}
	if duration >= 3600 {
		hours = duration / 3600
		duration -= hours * 3600
	}
	if duration >= 60 {
		minutes = duration / 60
		duration -= minutes * 60
	}
	seconds = duration

	str := ""

	if days > 0 {
		str = fmt.Sprintf("%dd %02dh %02dm %02ds", days, hours, minutes, seconds)
	} else if hours > 0 {
		str = fmt.Sprintf("%02dh %02dm %02ds", hours, minutes, seconds)
	} else if minutes > 0 {
		str = fmt.Sprintf("%02dm %02ds", minutes, seconds)
	} else {
		str = fmt.Sprintf("%02ds", seconds)
	}
	return str
}

// ReleaseTime returns the unix timestamp (seconds) which is
// `seconds` after now. Sub-second precision is dropped.
func ReleaseTime(now time.Time, seconds int64) int64 {
	return now.Add(time.Duration(seconds) * time.Second).Unix()
}

// Until returns a readable remaining duration until the unix timestamp,
// or an empty string if it has already passed.
func Until(now time.Time, unix int64) string {
	left := unix - now.Unix()
	if left <= 0 {
		return ""
	}
	return SecondsToHuman(uint64(left))
}
