package freshdesk

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	linkRelPattern = regexp.MustCompile(`<(.+?)>;\s*rel="(.+?)"`)
	pageNumPattern = regexp.MustCompile(`[?&]page=(\d+)`)
)

// ParseLinkHeader extracts next/prev page numbers from an RFC 5988 Link
// response header. The page number is read from the linked URL's page
// parameter; per_page never matches because the pattern anchors on the
// parameter separator.
func ParseLinkHeader(header string) (next, prev *int) {
	if header == "" {
		return nil, nil
	}
	for _, link := range strings.Split(header, ",") {
		match := linkRelPattern.FindStringSubmatch(link)
		if match == nil {
			continue
		}
		pageMatch := pageNumPattern.FindStringSubmatch(match[1])
		if pageMatch == nil {
			continue
		}
		page, err := strconv.Atoi(pageMatch[1])
		if err != nil {
			continue
		}
		switch match[2] {
		case "next":
			p := page
			next = &p
		case "prev":
			p := page
			prev = &p
		}
	}
	return next, prev
}
