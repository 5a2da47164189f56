package daemon

import (
	"log/slog"
	"strconv"

	sddaemon "github.com/coreos/go-systemd/v22/daemon"

	"daemonkit/internal/logging"
)

func notifyReady(logger *slog.Logger, pid int) {
	notify(logger, sddaemon.SdNotifyReady+"\nMAINPID="+strconv.Itoa(pid))
}

func notifyStopping(logger *slog.Logger) {
	notify(logger, sddaemon.SdNotifyStopping)
}

// notify is a no-op outside systemd.
func notify(logger *slog.Logger, state string) {
	sent, err := sddaemon.SdNotify(false, state)
	if err != nil {
		logging.WarnWithContext(logger, "systemd notification failed", "sd_notify_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "systemd may not track daemon state"),
		)
		return
	}
	if sent {
		logger.Debug("systemd notified", logging.String("state", state))
	}
}
