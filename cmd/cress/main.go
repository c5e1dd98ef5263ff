package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cresszm/cress/internal/audit"
	handlers "github.com/cresszm/cress/internal/handler"
	"github.com/cresszm/cress/internal/listeners"
	"github.com/cresszm/cress/internal/models"
	"github.com/cresszm/cress/pkg/cache"
	"github.com/cresszm/cress/pkg/config"
	"github.com/cresszm/cress/pkg/logger"
	"github.com/cresszm/cress/pkg/notification"
	"github.com/cresszm/cress/pkg/scheduler"
	"github.com/cresszm/cress/pkg/storage"
	"github.com/cresszm/cress/pkg/util"
)

func main() {
	if err := config.Load(); err != nil {
		panic(err)
	}
	cfg := config.GlobalConfig

	logger.Init(cfg.Log)
	defer logger.Sync()

	db, err := util.OpenDatabase(&gorm.Config{}, cfg.DBDriver, cfg.DSN)
	if err != nil {
		logger.Error("database open failed", zap.Error(err))
		return
	}
	if err := models.Migrate(db); err != nil {
		logger.Error("migration failed", zap.Error(err))
		return
	}
	if err := audit.NewRecorder(db).Register(db); err != nil {
		logger.Error("audit recorder registration failed", zap.Error(err))
		return
	}

	store, err := storage.NewStore(cfg.StorageDriver, cfg.StoragePath)
	if err != nil {
		logger.Error("storage init failed", zap.Error(err))
		return
	}

	appCache, err := cache.NewCache(cfg.Cache)
	if err != nil {
		logger.Error("cache init failed", zap.Error(err))
		return
	}
	defer appCache.Close()

	var geoip *audit.GeoIP
	if cfg.GeoIPPath != "" {
		geoip, err = audit.OpenGeoIP(cfg.GeoIPPath)
		if err != nil {
			logger.Warn("geoip database unavailable", zap.String("path", cfg.GeoIPPath), zap.Error(err))
		} else {
			defer geoip.Close()
		}
	}

	mailer := notification.NewMailNotification(cfg.Mail)
	listeners.Init(mailer)

	if cfg.ActivityLogRetentionDays > 0 {
		cr := scheduler.NewCron(time.Local)
		retention := time.Duration(cfg.ActivityLogRetentionDays) * 24 * time.Hour
		_, err := cr.Add(cfg.RetentionSchedule, scheduler.JobFunc(func(ctx context.Context) {
			n, err := models.PruneActivityLogs(db.WithContext(ctx), time.Now().Add(-retention))
			if err != nil {
				logger.Error("activity log prune failed", zap.Error(err))
				return
			}
			logger.Info("activity logs pruned", zap.Int64("deleted", n))
		}))
		if err != nil {
			logger.Error("could not schedule activity log prune", zap.Error(err))
			return
		}
		cr.Start()
		defer cr.Stop()
	}

	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	handlers.NewHandlers(db, store, mailer, appCache, geoip).Register(engine)

	logger.Info("server starting", zap.String("addr", cfg.Addr))
	if err := engine.Run(cfg.Addr); err != nil {
		logger.Error("server exited", zap.Error(err))
	}
}
