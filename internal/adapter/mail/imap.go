package mail

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	gomessage "github.com/emersion/go-message/mail"

	"exchange-rate-monitor/internal/domain/model"
	"exchange-rate-monitor/pkg/logger"
)

// IMAPReceiver fetches unseen messages from the monitored mailbox. Bodies
// are fetched with PEEK, so fetching never flags anything seen; MarkSeen
// sets the flag once the caller has committed the message's effects.
// Messages not sent by the configured address are ignored: this is a
// single-sender trust model.
type IMAPReceiver struct {
	addr        string
	username    string
	password    string
	mailbox     string
	allowedFrom string
	log         *logger.Logger

	// Message id to server UID, from the last FetchUnseen. UIDs stay valid
	// across sessions, unlike sequence numbers.
	uids map[string]uint32
}

func NewIMAPReceiver(host string, port int, username, password, mailbox, allowedFrom string, log *logger.Logger) *IMAPReceiver {
	return &IMAPReceiver{
		addr:        fmt.Sprintf("%s:%d", host, port),
		username:    username,
		password:    password,
		mailbox:     mailbox,
		allowedFrom: allowedFrom,
		log:         log,
		uids:        make(map[string]uint32),
	}
}

func (r *IMAPReceiver) connect() (*client.Client, error) {
	c, err := client.DialTLS(r.addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}
	if err := c.Login(r.username, r.password); err != nil {
		c.Logout()
		return nil, fmt.Errorf("IMAP login failed: %w", err)
	}
	if _, err := c.Select(r.mailbox, false); err != nil {
		c.Logout()
		return nil, fmt.Errorf("failed to select mailbox %q: %w", r.mailbox, err)
	}
	return c, nil
}

// fetchItems returns what to request for each unseen message. The body
// section uses PEEK so the fetch itself never sets the seen flag.
func fetchItems() (*imap.BodySectionName, []imap.FetchItem) {
	section := &imap.BodySectionName{Peek: true}
	return section, []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, section.FetchItem()}
}

func (r *IMAPReceiver) FetchUnseen(ctx context.Context) ([]model.InboundMessage, error) {
	c, err := r.connect()
	if err != nil {
		return nil, err
	}
	defer c.Logout()

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	uids, err := c.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("unseen search failed: %w", err)
	}
	if len(uids) == 0 {
		r.log.Debug("No unseen messages", "mailbox", r.mailbox)
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)
	section, items := fetchItems()

	messages := make(chan *imap.Message, len(uids))
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqset, items, messages)
	}()

	var out []model.InboundMessage
	for msg := range messages {
		in, err := decodeMessage(msg, section)
		if err != nil {
			r.log.Error("Failed to decode reply message", "error", err)
			continue
		}
		if r.allowedFrom != "" && !strings.EqualFold(in.From, r.allowedFrom) {
			r.log.Warn("Ignoring reply from unexpected sender", "from", in.From)
			continue
		}
		r.uids[in.ID] = msg.Uid
		out = append(out, in)
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	r.log.Info("Fetched unseen replies", "count", len(out))
	return out, nil
}

// MarkSeen flags the given messages seen on the server. Ids without a UID
// from the last fetch are skipped; a fresh run marks them again after it
// refetches them and finds them in the processed log.
func (r *IMAPReceiver) MarkSeen(ctx context.Context, ids []string) error {
	seqset := new(imap.SeqSet)
	count := 0
	for _, id := range ids {
		if uid, ok := r.uids[id]; ok {
			seqset.AddNum(uid)
			count++
		}
	}
	if count == 0 {
		return nil
	}

	c, err := r.connect()
	if err != nil {
		return err
	}
	defer c.Logout()

	item := imap.FormatFlagsOp(imap.AddFlags, true)
	if err := c.UidStore(seqset, item, []interface{}{imap.SeenFlag}, nil); err != nil {
		return fmt.Errorf("failed to mark messages seen: %w", err)
	}
	r.log.Debug("Marked replies seen", "count", count)
	return nil
}

func decodeMessage(msg *imap.Message, section *imap.BodySectionName) (model.InboundMessage, error) {
	in := model.InboundMessage{}
	if env := msg.Envelope; env != nil {
		in.ID = env.MessageId
		in.Subject = env.Subject
		in.InReplyTo = env.InReplyTo
		if len(env.From) > 0 {
			in.From = env.From[0].Address()
		}
	}

	body := msg.GetBody(section)
	if body == nil {
		return in, fmt.Errorf("server returned no body for message %q", in.ID)
	}
	text, err := extractText(body)
	if err != nil {
		return in, fmt.Errorf("failed to read message body: %w", err)
	}
	in.Body = text

	if in.ID == "" {
		// No Message-Id header; fall back to a content fingerprint so
		// deduplication still works.
		in.ID = fingerprint(in)
	}
	return in, nil
}

// extractText returns the first text/plain part of the message.
func extractText(r io.Reader) (string, error) {
	mr, err := gomessage.CreateReader(r)
	if err != nil {
		return "", err
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		header, ok := part.Header.(*gomessage.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := header.ContentType()
		if contentType == "text/plain" || contentType == "" {
			b, err := io.ReadAll(part.Body)
			if err != nil {
				return "", err
			}
			return string(b), nil
		}
	}
	return "", nil
}

func fingerprint(in model.InboundMessage) string {
	sum := sha256.Sum256([]byte(in.From + "\x00" + in.Subject + "\x00" + in.Body))
	return "fp-" + hex.EncodeToString(sum[:8])
}
