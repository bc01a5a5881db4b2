package rssfeeds

import "sort"

// FeedPresets maps the allow-listed source names to their RSS feed URLs
var FeedPresets = map[string]string{
	"Inc42":                       "https://inc42.com/feed",
	"The Economic Times Startups": "https://economictimes.indiatimes.com/small-biz/startups/rssfeeds/11993050.cms",
}

// ResolveFeedURL returns the URL for a preset name. Unlike a free-form
// resolver it never treats the input as a URL: unknown names are rejected.
func ResolveFeedURL(presets map[string]string, name string) (string, bool) {
	url, ok := presets[name]
	return url, ok
}

// SourceNames lists preset names in a stable order
func SourceNames(presets map[string]string) []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
