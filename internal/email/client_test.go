package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeTransport struct {
	verifyErr error
	sendErr   error
	sendCalls int
	messageID string
}

func (f *fakeTransport) Kind() TransportKind { return TransportGmail }

func (f *fakeTransport) Verify(ctx context.Context) error { return f.verifyErr }

func (f *fakeTransport) Send(ctx context.Context, msg Message) (string, error) {
	f.sendCalls++
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return f.messageID, nil
}

func TestClient_VerificationFailureSkipsSend(t *testing.T) {
	transport := &fakeTransport{verifyErr: errors.New("dial tcp: connection refused")}
	client := NewClient(transport, time.Second, zap.NewNop())

	result := client.Send(context.Background(), Message{To: "jo@x.com"})

	assert.False(t, result.Success)
	assert.Contains(t, result.ErrorDetail, "email service not available")
	assert.Equal(t, 0, transport.sendCalls)
}

func TestClient_SendErrorBecomesData(t *testing.T) {
	transport := &fakeTransport{sendErr: errors.New("smtp send failed: 550 rejected")}
	client := NewClient(transport, time.Second, zap.NewNop())

	result := client.Send(context.Background(), Message{To: "jo@x.com"})

	assert.False(t, result.Success)
	assert.Contains(t, result.ErrorDetail, "550 rejected")
	assert.Equal(t, "gmail", result.Provider)
}

func TestClient_Success(t *testing.T) {
	transport := &fakeTransport{messageID: "msg-789"}
	client := NewClient(transport, time.Second, zap.NewNop())

	result := client.Send(context.Background(), Message{To: "jo@x.com"})

	assert.True(t, result.Success)
	assert.Equal(t, "msg-789", result.MessageID)
	assert.Equal(t, 1, transport.sendCalls)
}
