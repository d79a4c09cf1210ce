package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/tahfidz-portal/pkg/mailer"
	mailtpl "github.com/oksasatya/tahfidz-portal/pkg/mailer/templates"
)

type sent struct {
	to, subject, text, html string
}

type fakeSender struct {
	out []sent
	err error
}

func (f *fakeSender) Send(_ context.Context, to, subject, text, html string) error {
	if f.err != nil {
		return f.err
	}
	f.out = append(f.out, sent{to, subject, text, html})
	return nil
}

func body(t *testing.T, job mailer.EmailJob) []byte {
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return b
}

func TestProcessRendersTemplate(t *testing.T) {
	data := mailtpl.NewOrganizationMismatchData("Tahfidz", "Yusuf", "huda@demo.com", "alnoor",
		mailtpl.WithOrganization("دار الهدى لتحفيظ القرآن الكريم", "darhuda"))
	s := &fakeSender{}

	err := process(context.Background(), s, body(t, mailer.EmailJob{
		To:       "huda@demo.com",
		Template: mailtpl.OrganizationMismatch,
		Data:     data,
	}))
	require.NoError(t, err)
	require.Len(t, s.out, 1)
	assert.Equal(t, "huda@demo.com", s.out[0].to)
	assert.Equal(t, "Sign-in attempt through another center's portal", s.out[0].subject)
	assert.Contains(t, s.out[0].text, "alnoor")
	assert.Contains(t, s.out[0].html, "دار الهدى")
}

func TestProcessRawJobGetsDefaultSubject(t *testing.T) {
	s := &fakeSender{}
	err := process(context.Background(), s, body(t, mailer.EmailJob{To: "a@x.test", Text: "hello"}))
	require.NoError(t, err)
	assert.Equal(t, "Notification", s.out[0].subject)
	assert.Equal(t, "hello", s.out[0].text)
}

func TestProcessPermanentFailures(t *testing.T) {
	s := &fakeSender{}
	assert.ErrorIs(t, process(context.Background(), s, []byte("{")), errPermanent)
	assert.ErrorIs(t, process(context.Background(), s, body(t, mailer.EmailJob{Text: "no recipient"})), errPermanent)
	assert.ErrorIs(t, process(context.Background(), s, body(t, mailer.EmailJob{To: "a@x.test", Template: "verify_email"})), errPermanent)
	assert.Empty(t, s.out)
}

func TestProcessSendErrorIsRetryable(t *testing.T) {
	s := &fakeSender{err: errors.New("mailgun down")}
	err := process(context.Background(), s, body(t, mailer.EmailJob{To: "a@x.test", Text: "x"}))
	require.Error(t, err)
	assert.NotErrorIs(t, err, errPermanent)
}
