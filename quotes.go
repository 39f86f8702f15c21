package main

import (
	_ "embed"
	"strings"
	"time"
)

//go:embed quotes.txt
var quotesRaw string

var quotes = func() []string {
	lines := strings.Split(strings.TrimSpace(quotesRaw), "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}()

// quoteAt indexes the rotation; the day seeds it and every work block
// advances it.
func quoteAt(n int) string {
	if len(quotes) == 0 {
		return ""
	}
	return quotes[((n%len(quotes))+len(quotes))%len(quotes)]
}

func quoteSeed(now time.Time) int {
	return now.YearDay()
}
