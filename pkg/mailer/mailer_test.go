package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/college-icrs/icrs-api/pkg/config"
)

func TestNewPicksLogSenderWithoutHost(t *testing.T) {
	sender := New(config.SMTPConfig{}, nil)
	_, ok := sender.(*LogSender)
	assert.True(t, ok)

	sender = New(config.SMTPConfig{Host: "smtp.college.edu", Port: 587}, nil)
	_, ok = sender.(*SMTPSender)
	assert.True(t, ok)
}

func TestLogSenderRecordsEnvelope(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sender := NewLogSender(zap.New(core))

	require.NoError(t, sender.Send(context.Background(), Message{To: "student@college.edu", Subject: "Grievance submitted", HTML: "<p>hi</p>"}))
	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "student@college.edu", entries[0].ContextMap()["to"])
}

func TestLogSenderRejectsMissingRecipient(t *testing.T) {
	assert.Error(t, NewLogSender(nil).Send(context.Background(), Message{Subject: "x"}))
}

func TestBuildMessageValidatesAddresses(t *testing.T) {
	_, err := buildMessage("no-reply@college.edu", Message{To: "not an address"})
	assert.Error(t, err)

	m, err := buildMessage("no-reply@college.edu", Message{To: "student@college.edu", Subject: "Status update", HTML: "<p>x</p>"})
	require.NoError(t, err)
	assert.NotNil(t, m)
}
