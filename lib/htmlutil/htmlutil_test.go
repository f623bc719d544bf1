package htmlutil

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const fixture = `<html><body>
<ul>
  <li class="item">
    <a class="title" href="/itm/1">  Carved   <b>ivory</b>
	 bangle </a>
    <span class="price">$120.00</span>
    <img data-src="//img.example.com/1.jpg">
    <script>var tracking = 1;</script>
  </li>
  <li class="item">
    <a class="title" href="https://other.example.com/itm/2">Pangolin scale</a>
  </li>
</ul>
</body></html>`

func parse(t testing.TB) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fixture))
	require.NoError(t, err)
	return doc
}

func TestFieldSelector(t *testing.T) {
	doc := parse(t)
	first := doc.Find("li.item").First()

	require.Equal(t, "Carved ivory bangle", FieldSelector("a.title").Extract(first))
	require.Equal(t, "/itm/1", FieldSelector("a.title@href").Extract(first))
	require.Equal(t, "", FieldSelector("span.missing").Extract(first))
	require.Equal(t, "item", FieldSelector("@class").Extract(first))
}

func TestFirstField(t *testing.T) {
	doc := parse(t)
	first := doc.Find("li.item").First()

	value, idx := FirstField(first, []string{"img@src", "img@data-src"})
	require.Equal(t, "//img.example.com/1.jpg", value)
	require.Equal(t, 1, idx)

	value, idx = FirstField(first, []string{".nothing", ".none"})
	require.Equal(t, "", value)
	require.Equal(t, -1, idx)
}

func TestFirstMatch(t *testing.T) {
	doc := parse(t)

	found, idx := FirstMatch(doc.Selection, []string{"div.card", "li.item"})
	require.Equal(t, 1, idx)
	require.Equal(t, 2, found.Length())

	found, idx = FirstMatch(doc.Selection, []string{"div.card"})
	require.Equal(t, -1, idx)
	require.Equal(t, 0, found.Length())
}

func TestGetAnchors(t *testing.T) {
	doc := parse(t)
	anchors := GetAnchors(context.Background(), doc.Find("a.title"))
	require.Len(t, anchors, 2)
	require.Equal(t, "Pangolin scale", anchors[1].Name)
	require.Equal(t, "https://other.example.com/itm/2", anchors[1].Href)
}

func TestResolveUrl(t *testing.T) {
	base, err := url.Parse("https://www.ebay.com/sch/i.html?_nkw=ivory")
	require.NoError(t, err)

	require.Equal(t, "https://www.ebay.com/itm/1", ResolveUrl(base, "/itm/1"))
	require.Equal(t, "https://img.example.com/1.jpg", ResolveUrl(base, "//img.example.com/1.jpg"))
	require.Equal(t, "", ResolveUrl(base, ""))
}
