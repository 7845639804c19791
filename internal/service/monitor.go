package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"exchange-rate-monitor/internal/domain/model"
	"exchange-rate-monitor/internal/domain/ports"
	"exchange-rate-monitor/internal/metrics"
	"exchange-rate-monitor/pkg/logger"
	"exchange-rate-monitor/pkg/utils"
)

var (
	ErrFetchFailure = errors.New("rate fetch failure")
	ErrSendFailure  = errors.New("mail send failure")
	ErrLoadFailure  = errors.New("document load failure")
)

const replyFooter = `
--
Reply to this message to change thresholds, one command per line:
  ADJUST <CODE> <rate_type> (min|max) <number>
  SET    <CODE> <rate_type> [min <number>] [max <number>]
  REMOVE <CODE> <rate_type> (min|max)
Rate types: spot_buying_rate cash_buying_rate spot_selling_rate cash_selling_rate`

// MonitorService compares published rates against the configured thresholds
// and sends one aggregated alert email when any condition trips. It reads
// the document and never writes it.
type MonitorService struct {
	source  ports.RateSource
	mailer  ports.Mailer
	store   ports.DocumentStore
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewMonitorService(source ports.RateSource, mailer ports.Mailer, store ports.DocumentStore, log *logger.Logger, m *metrics.Metrics) *MonitorService {
	return &MonitorService{
		source:  source,
		mailer:  mailer,
		store:   store,
		log:     log,
		metrics: m,
	}
}

func (s *MonitorService) Run(ctx context.Context) error {
	s.log.Info("Starting exchange rate check")

	doc, err := s.store.Load(ctx)
	if err != nil {
		s.log.Error("Failed to load conditions document", "error", err)
		return fmt.Errorf("%w: %v", ErrLoadFailure, err)
	}

	table, err := s.source.FetchRates(ctx)
	if err != nil {
		// Alerting degrades for this run; the scheduler retries on the
		// next interval.
		s.log.Error("Failed to fetch exchange rates", "error", err)
		return fmt.Errorf("%w: %v", ErrFetchFailure, err)
	}
	s.metrics.RateFetchesTotal.Inc()

	alerts := s.evaluate(doc, table)
	if len(alerts) == 0 {
		s.log.Info("No alert conditions met", "currencies", len(doc.Currencies))
		return nil
	}

	subject := fmt.Sprintf("Exchange Rate Alert - %s [ref:%s]",
		utils.FormatTimestamp(time.Now()), uuid.NewString())
	body := strings.Join(alerts, "\n") + "\n" + replyFooter
	if err := s.mailer.Send(ctx, subject, body); err != nil {
		s.log.Error("Failed to send alert email", "error", err, "alerts", len(alerts))
		return fmt.Errorf("%w: %v", ErrSendFailure, err)
	}

	s.metrics.AlertsSentTotal.Add(float64(len(alerts)))
	s.log.Info("Alert email sent", "alerts", len(alerts))
	return nil
}

// evaluate walks the configured currencies against the fetched table and
// returns one alert line per tripped condition. A below-min breach takes
// precedence over above-max for the same value.
func (s *MonitorService) evaluate(doc *model.Document, table model.RateTable) []string {
	var alerts []string
	for _, cur := range doc.Currencies {
		row, ok := table[cur.Name]
		if !ok {
			s.log.Info("No rate found for currency", "currency", cur.Name, "code", cur.Code)
			continue
		}
		s.log.Info("Fetched rates", "currency", cur.Name, "published_at", row.Time)

		for _, rt := range model.RateTypes {
			th := cur.Conditions[rt]
			if th.Empty() {
				continue
			}
			value, ok := row.Values[rt]
			if !ok {
				continue
			}

			if th.Min != nil && value.Less(*th.Min) {
				alerts = append(alerts, fmt.Sprintf("%s (%s) %s: %s below minimum %s",
					cur.Name, cur.Code, rt, value, th.Min))
			} else if th.Max != nil && value.Greater(*th.Max) {
				alerts = append(alerts, fmt.Sprintf("%s (%s) %s: %s above maximum %s",
					cur.Name, cur.Code, rt, value, th.Max))
			}
		}
	}
	return alerts
}
