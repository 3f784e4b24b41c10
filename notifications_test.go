package auth_test

import (
	"context"
	"testing"
	"time"

	auth "github.com/goliatone/go-credauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversAsync(t *testing.T) {
	sink := &recordingSink{}
	dispatcher := auth.NewDispatcher(sink).WithLogger(silentLogger{})
	defer dispatcher.Close()

	err := dispatcher.Send(context.Background(), auth.NotificationTwoFactor,
		auth.Recipient{Name: "Sam Rivers", Email: "sam@example.com"},
		auth.NotificationParams{Code: "654321"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(sink.all()) == 1
	}, time.Second, 5*time.Millisecond)

	sent := sink.all()
	assert.Equal(t, auth.NotificationTwoFactor, sent[0].kind)
	assert.Equal(t, "sam@example.com", sent[0].to.Email)
	assert.Equal(t, "654321", sent[0].params.Code)
}

func TestDispatcherCloseDrainsQueue(t *testing.T) {
	sink := &recordingSink{}
	dispatcher := auth.NewDispatcher(sink).WithLogger(silentLogger{})

	for i := 0; i < 10; i++ {
		err := dispatcher.Send(context.Background(), auth.NotificationReset,
			auth.Recipient{Email: "sam@example.com"},
			auth.NotificationParams{Code: "RESET123"})
		require.NoError(t, err)
	}

	dispatcher.Close()

	assert.Len(t, sink.all(), 10, "close waits for the queue to drain")
}

func TestDispatcherSendAfterCloseDrops(t *testing.T) {
	sink := &recordingSink{}
	dispatcher := auth.NewDispatcher(sink).WithLogger(silentLogger{})

	dispatcher.Close()

	require.NotPanics(t, func() {
		err := dispatcher.Send(context.Background(), auth.NotificationTwoFactor,
			auth.Recipient{Email: "sam@example.com"},
			auth.NotificationParams{Code: "654321"})
		assert.NoError(t, err)
	})

	assert.Empty(t, sink.all(), "notifications after close are dropped")
}

func TestDispatcherCloseIsIdempotent(t *testing.T) {
	dispatcher := auth.NewDispatcher(&recordingSink{}).WithLogger(silentLogger{})

	dispatcher.Close()
	dispatcher.Close()
}

func TestDispatcherNilSinkIsNoop(t *testing.T) {
	dispatcher := auth.NewDispatcher(nil).WithLogger(silentLogger{})
	defer dispatcher.Close()

	err := dispatcher.Send(context.Background(), auth.NotificationVerification,
		auth.Recipient{Email: "sam@example.com"}, auth.NotificationParams{})
	assert.NoError(t, err)
}

func TestNotificationSinkFunc(t *testing.T) {
	var got auth.NotificationKind
	sink := auth.NotificationSinkFunc(func(ctx context.Context, kind auth.NotificationKind, to auth.Recipient, params auth.NotificationParams) error {
		got = kind
		return nil
	})

	err := sink.Send(context.Background(), auth.NotificationReset, auth.Recipient{}, auth.NotificationParams{})
	require.NoError(t, err)
	assert.Equal(t, auth.NotificationReset, got)
}
