package rssfeeds

import (
	"strings"

	"ideaforge/config"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

// CleanHTML removes all tag markup and returns the text content.
// Script and style bodies are dropped along with their tags; entities are
// decoded and non-breaking spaces become plain spaces.
func CleanHTML(raw string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}
	doc.Find("script, style").Remove()
	return strings.TrimSpace(strings.ReplaceAll(doc.Text(), "\u00a0", " "))
}

// ExtractImage resolves an entry image. Candidates are tried in order:
// media:content, media:thumbnail, the first enclosure, the first <img> in the
// entry content, then the placeholder.
func ExtractImage(item *gofeed.Item) string {
	if item == nil {
		return config.PlaceholderImage
	}
	if url := mediaURL(item.Extensions, "content"); url != "" {
		return url
	}
	if url := mediaURL(item.Extensions, "thumbnail"); url != "" {
		return url
	}
	if len(item.Enclosures) > 0 && item.Enclosures[0] != nil && item.Enclosures[0].URL != "" {
		return item.Enclosures[0].URL
	}
	if url := firstImageSrc(item.Content); url != "" {
		return url
	}
	return config.PlaceholderImage
}

// mediaURL looks up media:<name> either directly on the item or nested in a
// media:group element.
func mediaURL(extensions ext.Extensions, name string) string {
	media, ok := extensions["media"]
	if !ok {
		return ""
	}
	if url := firstURLAttr(media[name]); url != "" {
		return url
	}
	for _, group := range media["group"] {
		if url := firstURLAttr(group.Children[name]); url != "" {
			return url
		}
	}
	return ""
}

func firstURLAttr(elems []ext.Extension) string {
	if len(elems) == 0 {
		return ""
	}
	return strings.TrimSpace(elems[0].Attrs["url"])
}

func firstImageSrc(content string) string {
	if !strings.Contains(content, "<img") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img[src]").First().Attr("src")
	return strings.TrimSpace(src)
}
