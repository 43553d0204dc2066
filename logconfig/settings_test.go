package logconfig

import (
	"testing"

	myLogger "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestConfigLogger(t *testing.T) {
	defer ConfigInfoLogger()

	assert.NoError(t, ConfigLogger("debug", false))
	assert.Equal(t, myLogger.DebugLevel, myLogger.GetLevel())
	assert.IsType(t, &myLogger.TextFormatter{}, myLogger.StandardLogger().Formatter)

	assert.NoError(t, ConfigLogger("warn", true))
	assert.Equal(t, myLogger.WarnLevel, myLogger.GetLevel())
	assert.IsType(t, &myLogger.JSONFormatter{}, myLogger.StandardLogger().Formatter)

	assert.Error(t, ConfigLogger("loud", false))
}
