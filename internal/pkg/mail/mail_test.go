package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageEnvelope(t *testing.T) {
	t.Run("falls back to default sender", func(t *testing.T) {
		env, err := Message{To: []string{"ada@example.com"}, Bcc: []string{"ops@example.com"}}.envelope("noreply@example.com")
		require.NoError(t, err)

		assert.Equal(t, "noreply@example.com", env.from.Address)
		assert.Equal(t, []string{"ada@example.com", "ops@example.com"}, env.recipients)
	})

	t.Run("display names are stripped from the envelope", func(t *testing.T) {
		env, err := Message{From: "Waitlist <team@example.com>", To: []string{"Ada <ada@example.com>"}}.envelope("")
		require.NoError(t, err)

		assert.Equal(t, "team@example.com", env.from.Address)
		assert.Equal(t, []string{"ada@example.com"}, env.recipients)
	})

	tests := []struct {
		name    string
		msg     Message
		from    string
		wantErr error
	}{
		{name: "no sender", msg: Message{To: []string{"ada@example.com"}}, wantErr: ErrNoSender},
		{name: "no recipients", msg: Message{}, from: "noreply@example.com", wantErr: ErrNoRecipients},
		{name: "bad recipient", msg: Message{To: []string{"not-an-address"}}, from: "noreply@example.com", wantErr: ErrInvalidAddress},
		{name: "header injection", msg: Message{To: []string{"ada@example.com\r\nBcc: evil@example.com"}}, from: "noreply@example.com", wantErr: ErrInvalidAddress},
		{name: "bad sender", msg: Message{To: []string{"ada@example.com"}}, from: "nobody", wantErr: ErrInvalidAddress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.msg.envelope(tt.from)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
