package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
)

// LinkPreviewService scrapes Open Graph metadata from shared URLs. Scraping
// is best-effort: an unreachable or tagless page degrades to a preview
// carrying only the URL.
type LinkPreviewService struct {
	client *http.Client
	logger *slog.Logger
}

// NewLinkPreviewService creates a link preview service with a bounded
// scrape timeout.
func NewLinkPreviewService(logger *slog.Logger) *LinkPreviewService {
	return &LinkPreviewService{
		client: &http.Client{Timeout: 5 * time.Second},
		logger: logger,
	}
}

// Fetch scrapes the URL's Open Graph tags, falling back to <title> and the
// meta description. Only http(s) URLs are accepted.
func (s *LinkPreviewService) Fetch(ctx context.Context, rawURL string) (*models.LinkPreview, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("url %q: %w", rawURL, domain.ErrValidation)
	}

	preview := &models.LinkPreview{URL: rawURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return preview, nil
	}
	req.Header.Set("User-Agent", "inkwell-linkpreview/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("link preview fetch failed", "url", rawURL, "error", err)
		return preview, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("link preview fetch failed", "url", rawURL, "status", resp.StatusCode)
		return preview, nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		s.logger.Warn("link preview parse failed", "url", rawURL, "error", err)
		return preview, nil
	}

	preview.Title = metaProperty(doc, "og:title")
	preview.Description = metaProperty(doc, "og:description")
	preview.Image = metaProperty(doc, "og:image")
	preview.SiteName = metaProperty(doc, "og:site_name")

	if preview.Title == "" {
		preview.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if preview.Description == "" {
		preview.Description = metaName(doc, "description")
	}

	return preview, nil
}

func metaProperty(doc *goquery.Document, property string) string {
	content, _ := doc.Find(fmt.Sprintf(`meta[property=%q]`, property)).First().Attr("content")
	return strings.TrimSpace(content)
}

func metaName(doc *goquery.Document, name string) string {
	content, _ := doc.Find(fmt.Sprintf(`meta[name=%q]`, name)).First().Attr("content")
	return strings.TrimSpace(content)
}
