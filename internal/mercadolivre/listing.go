// Package mercadolivre fetches Mercado Livre product listings and digs the
// product data out of the page metadata.
package mercadolivre

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/html"
)

// listingUserAgent is sent on every fetch. Mercado Livre blocks the default
// Go user agent.
const listingUserAgent = "Mozilla/5.0"

// Listing is what a product page gives away through its metadata. Price is
// the raw content of the price meta tag, not parsed.
type Listing struct {
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
	Price    string `json:"price"`
}

// Fetcher retrieves product listings.
type Fetcher interface {
	FetchListing(ctx context.Context, rawURL string) (*Listing, error)
}

// IsListingURL reports whether rawURL points at a Mercado Livre page. The
// substring match covers both the .com and .com.br domains.
func IsListingURL(rawURL string) bool {
	return strings.Contains(rawURL, "mercadolivre.com")
}

// Client is a Fetcher over HTTP.
type Client struct {
	client *http.Client
}

// NewClient builds a listing fetcher. Outbound calls are traced through the
// otelhttp transport.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

var _ Fetcher = (*Client)(nil)

// FetchListing downloads the page and extracts the listing.
func (c *Client) FetchListing(ctx context.Context, rawURL string) (*Listing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build listing request: %w", err)
	}
	req.Header.Set("User-Agent", listingUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing returned status %d", resp.StatusCode)
	}
	return parseListing(resp.Body)
}

// parseListing walks the document for Open Graph and schema.org meta tags.
// The og:title wins over the <title> element; the first value found per
// field sticks.
func parseListing(r io.Reader) (*Listing, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse listing html: %w", err)
	}

	var listing Listing
	var docTitle string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				key, content := metaAttrs(n)
				switch key {
				case "og:title":
					if listing.Title == "" {
						listing.Title = content
					}
				case "og:image":
					if listing.ImageURL == "" {
						listing.ImageURL = content
					}
				case "price", "og:price:amount":
					if listing.Price == "" {
						listing.Price = content
					}
				}
			case "title":
				if docTitle == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					docTitle = strings.TrimSpace(n.FirstChild.Data)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if listing.Title == "" {
		listing.Title = docTitle
	}
	return &listing, nil
}

// metaAttrs reads the key (property, name or itemprop) and content of one
// meta element.
func metaAttrs(n *html.Node) (key, content string) {
	for _, a := range n.Attr {
		switch a.Key {
		case "property", "name", "itemprop":
			if key == "" {
				key = a.Val
			}
		case "content":
			content = a.Val
		}
	}
	return key, content
}
