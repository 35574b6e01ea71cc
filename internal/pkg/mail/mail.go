package mail

import (
	"context"
	"errors"
	"fmt"
	"io"
	netmail "net/mail"
)

var (
	// ErrNoRecipients is returned when To/Cc/Bcc are all empty.
	ErrNoRecipients = errors.New("mail: no recipients provided")
	// ErrNoSender is returned when both Message.From and the configured default From are empty.
	ErrNoSender = errors.New("mail: no sender provided")
	// ErrInvalidAddress is returned when a sender or recipient cannot be parsed as an address.
	ErrInvalidAddress = errors.New("mail: invalid address")
)

// Message represents an email payload.
//
// Fields are provider-agnostic so they can be sent using SMTP or other
// delivery mechanisms.
type Message struct {
	// From is an optional explicit sender; drivers fall back to their configured default.
	From string
	// To lists required recipients.
	To []string
	// Cc lists carbon copy recipients.
	Cc []string
	// Bcc lists blind carbon copy recipients.
	Bcc []string
	// Subject is the email subject line.
	Subject string
	// TextBody is the plain-text body; preferred when HTMLBody is empty.
	TextBody string
	// HTMLBody is the optional HTML body.
	HTMLBody string
}

// Mail abstracts an email provider (SMTP, third-party API, etc).
type Mail interface {
	io.Closer
	// Send dispatches the given message using the underlying provider. It returns
	// once the provider accepted the message or failed to.
	Send(ctx context.Context, msg Message) error
}

// envelope is a Message with every address parsed and the sender resolved.
type envelope struct {
	from       *netmail.Address
	to         []*netmail.Address
	cc         []*netmail.Address
	bcc        []*netmail.Address
	recipients []string
}

func (m Message) envelope(defaultFrom string) (*envelope, error) {
	from := m.From
	if from == "" {
		from = defaultFrom
	}
	if from == "" {
		return nil, ErrNoSender
	}

	env := &envelope{}

	var err error
	if env.from, err = parseAddress(from); err != nil {
		return nil, err
	}
	if env.to, err = parseAddresses(m.To); err != nil {
		return nil, err
	}
	if env.cc, err = parseAddresses(m.Cc); err != nil {
		return nil, err
	}
	if env.bcc, err = parseAddresses(m.Bcc); err != nil {
		return nil, err
	}

	for _, group := range [][]*netmail.Address{env.to, env.cc, env.bcc} {
		for _, addr := range group {
			env.recipients = append(env.recipients, addr.Address)
		}
	}

	if len(env.recipients) == 0 {
		return nil, ErrNoRecipients
	}

	return env, nil
}

func parseAddress(raw string) (*netmail.Address, error) {
	addr, err := netmail.ParseAddress(raw)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidAddress, raw, err)
	}
	return addr, nil
}

func parseAddresses(raws []string) ([]*netmail.Address, error) {
	addrs := make([]*netmail.Address, 0, len(raws))
	for _, raw := range raws {
		addr, err := parseAddress(raw)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

func addressList(addrs []*netmail.Address) []string {
	out := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		out = append(out, addr.Address)
	}
	return out
}
