// Package listeners connects model signals to their side effects so the
// handlers stay free of notification plumbing.
package listeners

import (
	"go.uber.org/zap"

	"github.com/cresszm/cress/internal/models"
	"github.com/cresszm/cress/pkg/logger"
	"github.com/cresszm/cress/pkg/notification"
	"github.com/cresszm/cress/pkg/util"
)

// Init registers all signal handlers. Call once at startup.
func Init(mailer notification.Mailer) {
	util.Sig().Connect(models.SigUserCreate, func(sender any, _ ...any) {
		user, ok := sender.(*models.User)
		if !ok {
			return
		}
		go func() {
			if err := notification.SendWelcomeEmail(mailer, user.Email, user.Name); err != nil {
				logger.Warn("welcome mail failed",
					zap.Uint("user_id", user.ID),
					zap.Error(err))
			}
		}()
	})

	util.Sig().Connect(models.SigAlertSent, func(sender any, params ...any) {
		alert, ok := sender.(*models.Alert)
		if !ok {
			return
		}
		recipients := 0
		if len(params) > 0 {
			if n, ok := params[0].(int); ok {
				recipients = n
			}
		}
		logger.Info("alert broadcast",
			zap.Uint("alert_id", alert.ID),
			zap.Int("recipients", recipients))
	})
}
