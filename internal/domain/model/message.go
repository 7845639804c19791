package model

// InboundMessage is one reply fetched from the monitored mailbox. ID is the
// RFC 5322 Message-Id when the server supplies one, otherwise a content
// fingerprint computed by the receiver.
type InboundMessage struct {
	ID        string
	From      string
	Subject   string
	Body      string
	InReplyTo string
}
