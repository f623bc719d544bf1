package htmlutil

import (
	"bytes"
	"context"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("wildlife-tracker/lib/htmlutil")

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	// script and style contents are never visible text
	if node.Type == html.ElementNode && (node.Data == "script" || node.Data == "style") {
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText removes non-printable characters and collapses whitespace.
func CleanText(s string) string {
	s = removeNonPrintable(s)
	s = innerWhitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

type Anchor struct {
	Name string
	Href string
}

func GetAnchors(ctx context.Context, sel *goquery.Selection) []Anchor {
	_, span := tracer.Start(ctx, "GetAnchors")
	defer span.End()

	anchors := []Anchor{}
	for _, n := range sel.Nodes {
		href := ""
		for _, a := range n.Attr {
			if a.Key == "href" {
				href = a.Val
				break
			}
		}

		link, err := url.Parse(href)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "got error while parsing url")
			continue
		}

		name := CleanText(GetText(n))
		linkStr := link.String()
		anchors = append(anchors, Anchor{
			Name: name,
			Href: linkStr,
		})
		span.AddEvent("anchor", trace.WithAttributes(
			attribute.String("name", name),
			attribute.String("url", linkStr),
		))
	}

	return anchors
}

// FieldSelector is a css selector optionally suffixed with "@attr", in which
// case the attribute is extracted instead of the text.
type FieldSelector string

func (f FieldSelector) split() (css string, attr string) {
	s := string(f)
	idx := strings.LastIndex(s, "@")
	if idx < 0 {
		return s, ""
	}
	return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx+1:])
}

// Extract returns the cleaned text or attribute of the first node matched
// by the selector. An empty css part refers to the selection itself.
func (f FieldSelector) Extract(sel *goquery.Selection) string {
	css, attr := f.split()
	target := sel
	if css != "" {
		target = sel.Find(css).First()
	}
	if target.Length() == 0 {
		return ""
	}
	if attr != "" {
		return strings.TrimSpace(target.AttrOr(attr, ""))
	}
	return CleanText(GetText(target.Nodes[0]))
}

// FirstField tries each selector in order and returns the first non-empty
// value together with the index of the selector that produced it,
// the index is -1 when nothing matched.
func FirstField(sel *goquery.Selection, selectors []string) (string, int) {
	for i, s := range selectors {
		value := FieldSelector(s).Extract(sel)
		if value != "" {
			return value, i
		}
	}
	return "", -1
}

// FirstMatch returns the nodes matched by the first selector that matches
// anything, and the index of that selector (-1 if none did).
func FirstMatch(sel *goquery.Selection, selectors []string) (*goquery.Selection, int) {
	for i, s := range selectors {
		found := sel.Find(s)
		if found.Length() > 0 {
			return found, i
		}
	}
	return sel.Slice(0, 0), -1
}

// ResolveUrl resolves a possibly relative href against base.
func ResolveUrl(base *url.URL, href string) string {
	if href == "" {
		return ""
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil {
		return parsed.String()
	}
	return base.ResolveReference(parsed).String()
}
