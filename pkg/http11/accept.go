package http11

import (
	"sort"
	"strconv"
	"strings"
)

// QualityItem is one entry of a parsed Accept-Encoding/Accept-Language
// header: a token and its q-value.
type QualityItem struct {
	Value   string
	Quality float64
}

// parseQualityList parses a comma-separated list of tokens with optional
// ";q=" parameters into preference order: highest quality first, and for
// equal quality, the order the tokens appeared in the header (stable sort).
// A token with no explicit q-value defaults to 1.0. Malformed q-values also
// default to 1.0 rather than dropping the token.
func parseQualityList(header string) []QualityItem {
	if header == "" {
		return nil
	}
	parts := strings.Split(header, ",")
	items := make([]QualityItem, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		token := p
		quality := 1.0
		if semi := strings.IndexByte(p, ';'); semi >= 0 {
			token = strings.TrimSpace(p[:semi])
			param := strings.TrimSpace(p[semi+1:])
			if strings.HasPrefix(param, "q=") || strings.HasPrefix(param, "Q=") {
				if q, err := strconv.ParseFloat(strings.TrimSpace(param[2:]), 64); err == nil {
					quality = q
				}
			}
		}
		if token == "" {
			continue
		}
		items = append(items, QualityItem{Value: token, Quality: quality})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Quality > items[j].Quality
	})
	return items
}
