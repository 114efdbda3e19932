package transfer

import (
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"
)

// Transfer tools print periodic stats lines with a cumulative figure, eg:
//
//	Transferred:   	    1.234 GiB / 8.000 GiB, 15%, 3.456 MiB/s, ETA 32m10s
//	Transferred:   	  123.456 MBytes (2.345 MBytes/s)
//
// Only the first (cumulative) figure matters for stall detection.
var transferredRe = regexp.MustCompile(`Transferred:\s*([0-9][0-9.,]*)\s*([KMGTP]?i?B?)(?:ytes)?\b`)

// ParseTransferred extracts the cumulative transferred-bytes figure from a
// progress line. Returns false for lines that carry no such figure.
func ParseTransferred(line string) (int64, bool) {
	m := transferredRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}

	figure := strings.ReplaceAll(m[1], ",", "")
	unit := m[2]
	if unit == "" {
		unit = "B"
	}
	if !strings.HasSuffix(unit, "B") {
		unit += "B"
	}

	bytes, err := humanize.ParseBytes(figure + " " + unit)
	if err != nil {
		return 0, false
	}
	return int64(bytes), true
}
