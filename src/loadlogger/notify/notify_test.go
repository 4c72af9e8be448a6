package notify

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gridstate/load-logger/src/loadlogger/config"
	"github.com/gridstate/load-logger/src/loadlogger/data"
)

func newTestNotifier(t *testing.T) (*Notifier, *data.Settings) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, data.Migrate(db))

	settings := data.NewSettings(db)
	return New(settings, config.Config{SMTPPassword: "secret"}), settings
}

func TestConfigErrorNamesFirstMissingPiece(t *testing.T) {
	n, settings := newTestNotifier(t)

	require.False(t, n.Enabled())
	require.EqualError(t, n.configError(), "smtp_host is not configured")

	require.True(t, settings.Set("smtp_host", "mail.example.com"))
	require.EqualError(t, n.configError(), "smtp_user is not configured")

	require.True(t, settings.Set("smtp_user", "alerts@example.com"))
	require.EqualError(t, n.configError(), "notification_email is not configured")

	require.True(t, settings.Set("notification_email", "ops@example.com"))
	require.NoError(t, n.configError())
	require.True(t, n.Enabled())
}

func TestSendRefusesWhenUnconfigured(t *testing.T) {
	n, _ := newTestNotifier(t)

	err := n.Send("Subject", "body", "")
	require.EqualError(t, err, "smtp_host is not configured")
}

func TestSettingsChangesApplyWithoutRestart(t *testing.T) {
	n, settings := newTestNotifier(t)

	require.False(t, n.Enabled())
	require.True(t, settings.Set("smtp_host", "mail.example.com"))
	require.True(t, settings.Set("smtp_user", "alerts@example.com"))
	require.True(t, settings.Set("notification_email", "ops@example.com"))

	// Same instance, no reconstruction needed.
	require.True(t, n.Enabled())
}
