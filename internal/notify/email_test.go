package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSendGrid struct {
	status int
	err    error
	last   *mail.SGMailV3
}

func (s *stubSendGrid) SendWithContext(_ context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	s.last = email
	if s.err != nil {
		return nil, s.err
	}
	return &rest.Response{StatusCode: s.status}, nil
}

type stubSES struct {
	err  error
	last *sesv2.SendEmailInput
}

func (s *stubSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	s.last = in
	if s.err != nil {
		return nil, s.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("ses-1")}, nil
}

type recordingSender struct {
	msgs []EmailMessage
}

func (r *recordingSender) Send(_ context.Context, msg EmailMessage) error {
	r.msgs = append(r.msgs, msg)
	return nil
}

func TestSendGridSender(t *testing.T) {
	assert.Nil(t, NewSendGridSender(SendGridConfig{}, nil))

	api := &stubSendGrid{status: 202}
	s := newSendGridSenderWith(api, SendGridConfig{FromEmail: "bot@turbothrill.in"}, nil)
	require.NoError(t, s.Send(context.Background(), EmailMessage{To: "support@turbothrill.in", Subject: "hi", Body: "body"}))
	require.NotNil(t, api.last)
	assert.Equal(t, "TurboThrill Bot", api.last.From.Name)
	assert.Equal(t, "hi", api.last.Subject)

	api.status = 401
	assert.Error(t, s.Send(context.Background(), EmailMessage{To: "x@y.z"}))

	api.err = errors.New("dial tcp")
	assert.Error(t, s.Send(context.Background(), EmailMessage{To: "x@y.z"}))
}

func TestSESSender(t *testing.T) {
	assert.Nil(t, NewSESSender(nil, SESConfig{FromEmail: "a@b.c"}, nil))
	assert.Nil(t, NewSESSender(&stubSES{}, SESConfig{}, nil))

	api := &stubSES{}
	s := NewSESSender(api, SESConfig{FromEmail: "bot@turbothrill.in"}, nil)
	require.NoError(t, s.Send(context.Background(), EmailMessage{To: "support@turbothrill.in", Subject: "s", Body: "b"}))
	assert.Equal(t, "TurboThrill Bot <bot@turbothrill.in>", aws.ToString(api.last.FromEmailAddress))
	assert.Equal(t, []string{"support@turbothrill.in"}, api.last.Destination.ToAddresses)
	assert.Equal(t, "b", aws.ToString(api.last.Content.Simple.Body.Text.Data))

	api.err = errors.New("throttled")
	assert.Error(t, s.Send(context.Background(), EmailMessage{To: "x@y.z"}))
}

func TestStubEmailSender(t *testing.T) {
	assert.NoError(t, NewStubEmailSender(nil).Send(context.Background(), EmailMessage{To: "a@b.c"}))
}

func TestEscalator(t *testing.T) {
	assert.Nil(t, NewEscalator(nil, "support@turbothrill.in"))
	assert.Nil(t, NewEscalator(&recordingSender{}, " "))

	var nilEscalator *Escalator
	assert.Error(t, nilEscalator.Notify(context.Background(), Escalation{}))

	rec := &recordingSender{}
	e := NewEscalator(rec, "Support@turbothrill.in")
	err := e.Notify(context.Background(), Escalation{
		SenderID:   "919812345678",
		SenderName: "Rider",
		Lang:       "hi",
		Text:       "HUMAN",
		At:         time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC),
		AfterHours: true,
	})
	require.NoError(t, err)
	require.Len(t, rec.msgs, 1)
	msg := rec.msgs[0]
	assert.Equal(t, "Support@turbothrill.in", msg.To)
	assert.Contains(t, msg.Subject, "+919812345678")
	for _, want := range []string{"Name: Rider", "Language: hi", "outside business hours", "HUMAN", "https://wa.me/919812345678"} {
		assert.True(t, strings.Contains(msg.Body, want), "body missing %q:\n%s", want, msg.Body)
	}
}
