package scraping

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"homeval/server/internal/models"
)

const (
	DataSource = "listing"

	maxPhotos       = 5
	maxDescriptions = 3
	maxBodyBytes    = 5 << 20
	userAgent       = "Mozilla/5.0 (compatible; HomeValEvaluator/1.0)"
)

var errBlockedAddress = errors.New("listing host is not a public address")

var (
	pricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\$([0-9,]+)`),
		regexp.MustCompile(`(?i)price["\s:]+\$?([0-9,]+)`),
	}
	bedsPattern      = regexp.MustCompile(`(?i)(\d+)\s*bed`)
	bathsPattern     = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*bath`)
	sqftPattern      = regexp.MustCompile(`(?i)([\d,]+)\s*sq\.?\s*ft`)
	descriptionClass = regexp.MustCompile(`(?i)description|details|summary`)
	photoSrcKeywords = []string{"property", "listing", "photo", "image"}
)

// ListingScraper extracts property facts from listing pages
type ListingScraper struct {
	logger *logrus.Logger
	client *http.Client
	now    func() time.Time
}

func NewListingScraper(logger *logrus.Logger, client *http.Client) *ListingScraper {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if client == nil {
		client = newPublicClient()
	}
	return &ListingScraper{
		logger: logger,
		client: client,
		now:    time.Now,
	}
}

// ParseListingURL fetches a listing page and extracts what it can. It never
// fails: on error it returns minimal facts whose description explains why.
func (s *ListingScraper) ParseListingURL(ctx context.Context, url string) models.PropertyFacts {
	logger := s.logger.WithField("url", url)

	body, err := s.fetch(ctx, url)
	if err != nil {
		logger.WithError(err).Warn("Failed to fetch listing")
		return models.PropertyFacts{
			Address:     "Property from " + url,
			Description: "Unable to fetch listing details",
		}
	}
	defer body.Close()

	facts, err := ParseListing(io.LimitReader(body, maxBodyBytes))
	if err != nil {
		logger.WithError(err).Warn("Failed to parse listing")
		return models.PropertyFacts{
			Address:     "Property from " + url,
			Description: "Error parsing listing: " + err.Error(),
		}
	}
	if facts.Address == "" {
		facts.Address = "Property from " + url
	}
	now := s.now()
	facts.FetchedAt = &now

	logger.WithFields(logrus.Fields{
		"list_price": facts.ListPrice,
		"photos":     len(facts.Photos),
	}).Info("Parsed listing")

	return facts
}

func (s *ListingScraper) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("listing returned status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// newPublicClient returns a client that only connects to public addresses,
// checked after DNS resolution and on every redirect
func newPublicClient() *http.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second, Control: dialPublicOnly}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	return &http.Client{Timeout: 10 * time.Second, Transport: transport}
}

func dialPublicOnly(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	if ip := net.ParseIP(host); ip == nil || !isPublicIP(ip) {
		return errBlockedAddress
	}
	return nil
}

func isPublicIP(ip net.IP) bool {
	return !ip.IsLoopback() &&
		!ip.IsPrivate() &&
		!ip.IsUnspecified() &&
		!ip.IsLinkLocalUnicast() &&
		!ip.IsLinkLocalMulticast() &&
		!ip.IsInterfaceLocalMulticast() &&
		!ip.IsMulticast()
}

// ParseListing extracts price, rooms, area, photos and description from a
// listing page using patterns common to most listing sites
func ParseListing(r io.Reader) (models.PropertyFacts, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return models.PropertyFacts{}, fmt.Errorf("failed to parse html: %w", err)
	}

	facts := models.PropertyFacts{DataSource: DataSource}

	var (
		text         strings.Builder
		title        string
		photos       []string
		descriptions []string
	)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			text.WriteString(n.Data)
			text.WriteByte(' ')
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript:
				return
			case atom.Title:
				if title == "" {
					title = strings.TrimSpace(nodeText(n))
				}
			case atom.Meta:
				if attr(n, "property") == "og:title" && title == "" {
					title = strings.TrimSpace(attr(n, "content"))
				}
			case atom.Img:
				src := attr(n, "src")
				if len(photos) < maxPhotos && containsAny(strings.ToLower(src), photoSrcKeywords) {
					photos = append(photos, src)
				}
			case atom.P, atom.Div:
				if len(descriptions) < maxDescriptions && descriptionClass.MatchString(attr(n, "class")) {
					if d := strings.Join(strings.Fields(nodeText(n)), " "); d != "" {
						descriptions = append(descriptions, d)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	content := text.String()

	for _, p := range pricePatterns {
		if m := p.FindStringSubmatch(content); m != nil {
			if v, err := parseNumber(m[1]); err == nil && v > 0 {
				facts.ListPrice = models.Float(v)
				break
			}
		}
	}
	if m := bedsPattern.FindStringSubmatch(content); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			facts.Beds = models.Float(v)
		}
	}
	if m := bathsPattern.FindStringSubmatch(content); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			facts.Baths = models.Float(v)
		}
	}
	if m := sqftPattern.FindStringSubmatch(content); m != nil {
		if v, err := parseNumber(m[1]); err == nil && v > 0 {
			facts.Sqft = models.Int(int(v))
		}
	}

	facts.Address = title
	facts.Photos = photos
	facts.Description = strings.Join(descriptions, " ")
	return facts, nil
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
