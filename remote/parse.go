package remote

import (
	"strconv"
	"strings"
)

// ParseDirectoryListing parses `lsd` output. Each line looks like:
//
//	          -1 2025-10-31 10:33:09        -1 Some Directory Name
//
// Four leading columns (size, date, time, count) then the name, which may
// itself contain spaces.
func ParseDirectoryListing(out string) []string {
	dirs := make([]string, 0)
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 5 {
			continue
		}
		dirs = append(dirs, strings.Join(parts[4:], " "))
	}
	return dirs
}

// ParseFileListing parses `ls` output: a size column then the file name.
//
//	 12345678901 Some Movie (2009).mkv
func ParseFileListing(out string) []Entry {
	files := make([]Entry, 0)
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			continue
		}
		size, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
		if err != nil {
			continue
		}
		name := strings.TrimSpace(parts[1])
		if name == "" {
			continue
		}
		files = append(files, Entry{Name: name, SizeBytes: size})
	}
	return files
}
