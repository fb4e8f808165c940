package notifybooking

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "cabs-workers/internal/common/errors"
	"cabs-workers/internal/common/logger"
)

type fakeEmailSender struct {
	from, to, subject, body string
	calls                   int
	err                     error
}

func (f *fakeEmailSender) SendText(ctx context.Context, from, to, subject, body string) error {
	f.calls++
	f.from, f.to, f.subject, f.body = from, to, subject, body
	return f.err
}

type fakeSMSSender struct {
	phone, message, senderID string
	calls                    int
	err                      error
}

func (f *fakeSMSSender) SendSMS(ctx context.Context, phoneNumber, message, senderID string) error {
	f.calls++
	f.phone, f.message, f.senderID = phoneNumber, message, senderID
	return f.err
}

func newTestHandler(t *testing.T, email *fakeEmailSender, sms *fakeSMSSender) *Handler {
	t.Helper()
	cfg := LoadConfig()
	cfg.FromEmail = "bookings@cabs.test"
	cfg.SenderID = "CABSGO"
	return NewHandler(cfg, email, sms, logger.NewTestLogger(t))
}

func confirmedInput() *Input {
	return &Input{
		BookingID:          "bkg-42",
		PaymentURL:         "https://pay.example.com/bkg-42",
		PassengerName:      "Asha Rao",
		PassengerEmail:     "asha@example.com",
		PassengerMobile:    "9876543210",
		SourceAddress:      "MG Road, Bengaluru",
		DestinationAddress: "Kempegowda International Airport",
	}
}

func TestExecuteSendsBothChannels(t *testing.T) {
	email := &fakeEmailSender{}
	sms := &fakeSMSSender{}
	h := newTestHandler(t, email, sms)

	output, err := h.execute(context.Background(), confirmedInput())
	require.NoError(t, err)

	assert.Equal(t, StatusSent, output.Status)
	assert.Equal(t, []string{ChannelEmail, ChannelSMS}, output.Channels)
	assert.NotEmpty(t, output.NotificationID)
	assert.NotEmpty(t, output.SentAt)

	assert.Equal(t, "bookings@cabs.test", email.from)
	assert.Equal(t, "asha@example.com", email.to)
	assert.Contains(t, email.subject, "bkg-42")
	assert.Contains(t, email.body, "Asha Rao")
	assert.Contains(t, email.body, "https://pay.example.com/bkg-42")
	assert.Contains(t, email.body, "MG Road, Bengaluru")

	assert.Equal(t, "+919876543210", sms.phone)
	assert.Equal(t, "CABSGO", sms.senderID)
	assert.Contains(t, sms.message, "bkg-42")
	assert.Contains(t, sms.message, "https://pay.example.com/bkg-42")
}

func TestExecuteEmailOnly(t *testing.T) {
	email := &fakeEmailSender{}
	sms := &fakeSMSSender{}
	h := newTestHandler(t, email, sms)

	input := confirmedInput()
	input.PassengerMobile = ""

	output, err := h.execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, output.Status)
	assert.Equal(t, []string{ChannelEmail}, output.Channels)
	assert.Zero(t, sms.calls)
}

func TestExecuteNoChannelAvailable(t *testing.T) {
	email := &fakeEmailSender{}
	sms := &fakeSMSSender{}
	h := newTestHandler(t, email, sms)
	h.config.EmailEnabled = false
	h.config.SMSEnabled = false

	output, err := h.execute(context.Background(), confirmedInput())
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, output.Status)
	assert.Empty(t, output.Channels)
	assert.Zero(t, email.calls)
	assert.Zero(t, sms.calls)
}

func TestExecuteEmailFailureIsRetryable(t *testing.T) {
	email := &fakeEmailSender{err: errors.New("ses throttled")}
	sms := &fakeSMSSender{}
	h := newTestHandler(t, email, sms)

	_, err := h.execute(context.Background(), confirmedInput())
	require.Error(t, err)
	assert.Equal(t, cerrors.ErrCodeNotificationSendFailed, cerrors.CodeOf(err))
	assert.True(t, cerrors.IsRetryableErrorCode(cerrors.CodeOf(err)))

	// The email comes first, a failure there stops before the SMS.
	assert.Zero(t, sms.calls)
}

func TestExecuteSMSFailure(t *testing.T) {
	email := &fakeEmailSender{}
	sms := &fakeSMSSender{err: errors.New("sns unavailable")}
	h := newTestHandler(t, email, sms)

	_, err := h.execute(context.Background(), confirmedInput())
	require.Error(t, err)
	assert.Equal(t, cerrors.ErrCodeNotificationSendFailed, cerrors.CodeOf(err))
	assert.Contains(t, err.(*cerrors.StandardError).Details, "sns unavailable")
}

func TestBuildEmailWithoutName(t *testing.T) {
	input := confirmedInput()
	input.PassengerName = "  "

	_, body := buildEmail(input)
	assert.True(t, strings.HasPrefix(body, "Hi there,"))
}

func TestToE164(t *testing.T) {
	assert.Equal(t, "+919876543210", toE164("9876543210"))
	assert.Equal(t, "+919876543210", toE164("+919876543210"))
}
