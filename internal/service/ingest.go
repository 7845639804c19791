package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"exchange-rate-monitor/internal/command"
	"exchange-rate-monitor/internal/domain/model"
	"exchange-rate-monitor/internal/domain/ports"
	"exchange-rate-monitor/internal/metrics"
	"exchange-rate-monitor/pkg/logger"
)

var (
	ErrReceiveFailure = errors.New("mail receive failure")
	ErrSaveFailure    = errors.New("document save failure")
)

// IngestService drives the reply-command loop: fetch unseen replies, parse
// and apply their commands, commit the updated document, then confirm each
// message back to the sender. The commit happens before any confirmation is
// sent, so a crash in between can duplicate a confirmation but never a
// mutation.
type IngestService struct {
	receiver ports.MailReceiver
	mailer   ports.Mailer
	store    ports.DocumentStore
	log      *logger.Logger
	metrics  *metrics.Metrics
}

func NewIngestService(receiver ports.MailReceiver, mailer ports.Mailer, store ports.DocumentStore, log *logger.Logger, m *metrics.Metrics) *IngestService {
	return &IngestService{
		receiver: receiver,
		mailer:   mailer,
		store:    store,
		log:      log,
		metrics:  m,
	}
}

type replyReport struct {
	msg   model.InboundMessage
	lines []string
}

func (s *IngestService) Run(ctx context.Context) error {
	doc, err := s.store.Load(ctx)
	if err != nil {
		s.log.Error("Failed to load conditions document", "error", err)
		return fmt.Errorf("%w: %v", ErrLoadFailure, err)
	}

	msgs, err := s.receiver.FetchUnseen(ctx)
	if err != nil {
		// Unlogged messages stay unseen server-side or get caught by the
		// dedup log, so the next run simply retries.
		s.log.Error("Failed to fetch reply messages", "error", err)
		return fmt.Errorf("%w: %v", ErrReceiveFailure, err)
	}
	if len(msgs) == 0 {
		s.log.Debug("No reply messages to process")
		return nil
	}

	var reports []replyReport
	var committedIDs []string
	for _, msg := range msgs {
		if doc.IsProcessed(msg.ID) {
			// Committed by an earlier run that died before flagging the
			// message seen; flag it now, send nothing.
			s.log.Info("Skipping already processed reply", "id", msg.ID)
			committedIDs = append(committedIDs, msg.ID)
			continue
		}

		results := command.Parse(stripQuoted(msg.Body))
		cmds := make([]command.Command, 0, len(results))
		for _, res := range results {
			if !res.Rejected() {
				cmds = append(cmds, res.Command)
			}
		}

		next, outcomes := command.Apply(doc, cmds)
		doc = next
		doc.MarkProcessed(msg.ID)

		appliedCount := 0
		for _, out := range outcomes {
			if out.Applied {
				appliedCount++
				s.metrics.CommandsAppliedTotal.Inc()
			} else {
				s.metrics.CommandsRejectedTotal.Inc()
			}
		}
		for _, res := range results {
			if res.Rejected() {
				s.metrics.CommandsRejectedTotal.Inc()
			}
		}
		s.metrics.RepliesProcessedTotal.Inc()
		s.log.Info("Processed reply", "id", msg.ID, "from", msg.From,
			"applied", appliedCount, "lines", len(results))

		reports = append(reports, replyReport{msg: msg, lines: buildReport(results, outcomes)})
	}

	if len(reports) > 0 {
		// Commit the mutated document (including the processed-message log)
		// before sending any confirmation or touching server flags. On a
		// conflicting concurrent edit the run aborts here; the messages stay
		// unlogged and unseen and are retried next run.
		if err := s.store.Save(ctx, doc); err != nil {
			if errors.Is(err, ports.ErrConflict) {
				s.metrics.PersistConflictsTotal.Inc()
				s.log.Error("Aborting reply ingestion, conditions document changed concurrently", "error", err)
				return err
			}
			s.log.Error("Failed to save conditions document", "error", err)
			return fmt.Errorf("%w: %v", ErrSaveFailure, err)
		}
		for _, r := range reports {
			committedIDs = append(committedIDs, r.msg.ID)
		}
	}

	// Only committed messages leave the unseen set. A MarkSeen failure is
	// tolerable: the processed log catches the refetch next run.
	if len(committedIDs) > 0 {
		if err := s.receiver.MarkSeen(ctx, committedIDs); err != nil {
			s.log.Error("Failed to mark replies seen", "error", err, "count", len(committedIDs))
		}
	}

	for _, r := range reports {
		if err := s.mailer.Send(ctx, confirmationSubject(r.msg.Subject), strings.Join(r.lines, "\n")); err != nil {
			// The mutation is already committed; the sender just misses
			// this confirmation.
			s.log.Error("Failed to send confirmation email", "error", err, "id", r.msg.ID)
		}
	}

	return nil
}

// confirmationSubject threads the confirmation onto the original message
// without stacking "Re:" prefixes.
func confirmationSubject(original string) string {
	if original == "" {
		return "Exchange Rate Monitor - command results"
	}
	if strings.HasPrefix(strings.ToLower(original), "re:") {
		return original
	}
	return "Re: " + original
}

// buildReport interleaves parse rejections and apply outcomes back into the
// original line order of the reply.
func buildReport(results []command.ParseResult, outcomes []command.Outcome) []string {
	lines := make([]string, 0, len(results))
	next := 0
	for _, res := range results {
		if res.Rejected() {
			lines = append(lines, fmt.Sprintf("REJECTED: %s (%s)", res.Raw, res.Reason))
			continue
		}
		out := outcomes[next]
		next++
		if out.Applied {
			lines = append(lines, "APPLIED: "+out.Detail)
		} else {
			lines = append(lines, fmt.Sprintf("REJECTED: %s (%s)", res.Raw, out.Detail))
		}
	}
	if len(lines) == 0 {
		lines = append(lines, "No commands found in reply.")
	}
	return lines
}

// stripQuoted drops quoted-reply boilerplate: ">"-prefixed lines, everything
// below a "... wrote:" separator, and the signature trailer.
func stripQuoted(body string) string {
	var keep []string
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasSuffix(trimmed, "wrote:") {
			break
		}
		if trimmed == "--" {
			break
		}
		if strings.HasPrefix(trimmed, ">") {
			continue
		}
		keep = append(keep, line)
	}
	return strings.Join(keep, "\n")
}
