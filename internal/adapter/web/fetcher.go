// Package web retrieves a prefecture's published case table over HTTP.
package web

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/couchcryptid/covid19-age-ratio/internal/domain"
)

// TableFetcher downloads one page and returns the body rows of its first table.
// It implements pipeline.Fetcher.
type TableFetcher struct {
	client *resty.Client
	source string
	url    string
	header []string
	logger *slog.Logger
}

// NewTableFetcher creates a fetcher for the page at url. The request is not
// retried; timeout bounds the whole exchange.
func NewTableFetcher(source, url string, header []string, timeout time.Duration, userAgent string, logger *slog.Logger) *TableFetcher {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "text/html")
	if userAgent != "" {
		client.SetHeader("User-Agent", userAgent)
	}
	return &TableFetcher{
		client: client,
		source: source,
		url:    url,
		header: header,
		logger: logger,
	}
}

// Header returns the CSV column names of the source.
func (f *TableFetcher) Header() []string {
	return append([]string(nil), f.header...)
}

// Fetch performs the GET and extracts the table rows.
func (f *TableFetcher) Fetch(ctx context.Context) ([]domain.RawRow, error) {
	start := time.Now()
	resp, err := f.client.R().SetContext(ctx).Get(f.url)
	if err != nil {
		return nil, f.fail(err)
	}
	if code := resp.StatusCode(); code < http.StatusOK || code >= http.StatusMultipleChoices {
		return nil, f.fail(fmt.Errorf("unexpected status %d", code))
	}

	body := decode(resp.Body(), resp.Header().Get("Content-Type"))
	rows, err := ParseTable(body)
	if err != nil {
		return nil, f.fail(err)
	}

	f.logger.Debug("case table fetched",
		"source", f.source,
		"url", f.url,
		"rows", len(rows),
		"bytes", len(resp.Body()),
		"duration", time.Since(start),
	)
	return rows, nil
}

func (f *TableFetcher) fail(err error) error {
	return &domain.FetchError{Source: f.source, URL: f.url, Err: err}
}

// ParseTable reads an HTML document and returns the rows of the first
// table's body, one RawRow per tr with the text of each td.
func ParseTable(r io.Reader) ([]domain.RawRow, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, domain.ErrTableNotFound
	}
	tbody := table.Find("tbody").First()
	if tbody.Length() == 0 {
		return nil, domain.ErrTableNotFound
	}

	var rows []domain.RawRow
	tbody.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td").Map(func(_ int, td *goquery.Selection) string {
			return td.Text()
		})
		rows = append(rows, domain.RawRow{Cells: cells})
	})
	return rows, nil
}

// decode converts legacy Japanese encodings to UTF-8. The charset is taken
// from the Content-Type header, falling back to a sniff of the document head.
func decode(body []byte, contentType string) io.Reader {
	charset := strings.ToLower(contentType)
	if !strings.Contains(charset, "charset") {
		head := body
		if len(head) > 1024 {
			head = head[:1024]
		}
		charset = strings.ToLower(string(head))
	}

	r := bytes.NewReader(body)
	switch {
	case strings.Contains(charset, "shift_jis"), strings.Contains(charset, "sjis"), strings.Contains(charset, "windows-31j"):
		return transform.NewReader(r, japanese.ShiftJIS.NewDecoder())
	case strings.Contains(charset, "euc-jp"):
		return transform.NewReader(r, japanese.EUCJP.NewDecoder())
	default:
		return r
	}
}
