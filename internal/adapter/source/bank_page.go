package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"

	"exchange-rate-monitor/internal/domain/model"
	"exchange-rate-monitor/pkg/logger"
)

var ErrNoRateTable = errors.New("no rate table found in page")

const fetchRetries = 3

// BankPage scrapes the public rate publication page. The page carries one
// table (align="left") whose rows are: currency label, spot buying, cash
// buying, spot selling, cash selling, ..., publication time in column 7.
type BankPage struct {
	url        string
	httpClient *http.Client
	log        *logger.Logger
}

func NewBankPage(url string, timeout time.Duration, log *logger.Logger) *BankPage {
	return &BankPage{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

func (b *BankPage) FetchRates(ctx context.Context) (model.RateTable, error) {
	var body []byte

	fetch := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		resp, err := b.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to fetch page: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("page returned non-OK status: %d", resp.StatusCode)
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read page body: %w", err)
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), fetchRetries), ctx)
	if err := backoff.Retry(fetch, policy); err != nil {
		return nil, err
	}

	return b.parse(bytes.NewReader(body))
}

func (b *BankPage) parse(r io.Reader) (model.RateTable, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	table := model.RateTable{}
	doc.Find(`table[align="left"] tr`).Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			// Header row.
			return
		}
		cells := row.Find("td")
		if cells.Length() < 8 {
			return
		}
		name := strings.TrimSpace(cells.Eq(0).Text())
		if name == "" {
			return
		}

		rateRow := model.RateRow{
			Values: make(map[model.RateType]model.Rate),
			Time:   strings.TrimSpace(cells.Eq(7).Text()),
		}
		for idx, rt := range model.RateTypes {
			if value, ok := parseCell(cells.Eq(idx + 1).Text()); ok {
				rateRow.Values[rt] = value
			}
		}
		table[name] = rateRow
	})

	if len(table) == 0 {
		return nil, ErrNoRateTable
	}
	b.log.Debug("Parsed rate table", "currencies", len(table))
	return table, nil
}

// parseCell returns false for blank or non-numeric cells; some currencies
// publish only a subset of the four rates.
func parseCell(text string) (model.Rate, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return model.Rate{}, false
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return model.Rate{}, false
	}
	return model.Rate{Decimal: d}, true
}
