// Package news loads recent university headlines, preferring the RSS feed and
// scraping the news page when the feed is unusable.
package news

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"timesaver/backend/internal/config"
	"timesaver/backend/internal/observability"
)

var ErrUnavailable = errors.New("news unavailable")

const (
	linkClass    = "news-item-link"
	maxBodyBytes = 4 << 20
)

type Item struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Published string `json:"published"`
	Summary   string `json:"summary"`
}

type Client struct {
	cfg    config.NewsConfig
	http   *http.Client
	logger *zap.Logger
}

func NewClient(cfg config.NewsConfig, logger *zap.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger.Named("news"),
	}
}

// Latest returns at most the configured number of items. It never fails; an
// empty slice means neither source could be read.
func (c *Client) Latest(ctx context.Context) []Item {
	items, err := c.fromFeed(ctx)
	if err == nil {
		return c.limit(items)
	}
	c.logger.Warn("news feed failed, scraping page", zap.Error(err))

	items, pageErr := c.fromPage(ctx)
	if pageErr == nil {
		return c.limit(items)
	}

	observability.RecordExternalFailure("news")
	c.logger.Warn("news unavailable", zap.NamedError("feed_error", err), zap.NamedError("page_error", pageErr))
	return []Item{}
}

func (c *Client) limit(items []Item) []Item {
	if c.cfg.Limit > 0 && len(items) > c.cfg.Limit {
		return items[:c.cfg.Limit]
	}
	return items
}

func (c *Client) fromFeed(ctx context.Context) ([]Item, error) {
	if c.cfg.RSSURL == "" {
		return nil, fmt.Errorf("%w: rss url not configured", ErrUnavailable)
	}
	body, err := c.get(ctx, c.cfg.RSSURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	feed, err := gofeed.NewParser().Parse(io.LimitReader(body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: parse feed: %v", ErrUnavailable, err)
	}

	items := make([]Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if entry == nil {
			continue
		}
		items = append(items, Item{
			Title:     strings.TrimSpace(entry.Title),
			Link:      strings.TrimSpace(entry.Link),
			Published: strings.TrimSpace(entry.Published),
			Summary:   strings.TrimSpace(entry.Description),
		})
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: feed has no items", ErrUnavailable)
	}
	return items, nil
}

func (c *Client) fromPage(ctx context.Context) ([]Item, error) {
	if c.cfg.PageURL == "" {
		return nil, fmt.Errorf("%w: page url not configured", ErrUnavailable)
	}
	base, err := url.Parse(c.cfg.PageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: page url: %v", ErrUnavailable, err)
	}

	body, err := c.get(ctx, c.cfg.PageURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := html.Parse(io.LimitReader(body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: parse page: %v", ErrUnavailable, err)
	}

	items := make([]Item, 0)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" && hasClass(n, linkClass) {
			if item, ok := anchorItem(n, base); ok {
				items = append(items, item)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return items, nil
}

func (c *Client) get(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("User-Agent", "timesaver/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnavailable, target, resp.StatusCode)
	}
	return resp.Body, nil
}

func anchorItem(n *html.Node, base *url.URL) (Item, bool) {
	href := strings.TrimSpace(attr(n, "href"))
	title := strings.Join(strings.Fields(textContent(n)), " ")
	if href == "" || title == "" {
		return Item{}, false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return Item{}, false
	}
	return Item{Title: title, Link: base.ResolveReference(ref).String()}, true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			collect(child)
		}
	}
	collect(n)
	return sb.String()
}
