package logger

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func TestFor_CarriesRequestID(t *testing.T) {
	ctx := ContextWithID(context.Background(), "req-1")
	assert.Equal(t, "req-1", For(ctx).Data["request_id"])

	assert.NotContains(t, For(context.Background()).Data, "request_id")
}

func TestSetup_Level(t *testing.T) {
	defer logrus.SetLevel(logrus.InfoLevel)

	Setup("debug", false)
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	Setup("nonsense", false)
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
}

func TestTrack(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()
	defer logrus.SetLevel(logrus.InfoLevel)
	logrus.SetLevel(logrus.DebugLevel)

	Track(ContextWithID(context.Background(), "req-2"), "list books")()

	entry := hook.LastEntry()
	if assert.NotNil(t, entry) {
		assert.Equal(t, "list books completed", entry.Message)
		assert.Equal(t, "req-2", entry.Data["request_id"])
		assert.Contains(t, entry.Data, "duration")
	}
}
