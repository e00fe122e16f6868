package migration

import (
	"strings"

	"github.com/openorgs/orgd/internal/authz"
	"github.com/openorgs/orgd/internal/config"
	"github.com/openorgs/orgd/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger, authzSvc authz.Service) error {
		if strings.EqualFold(cfg.DBType, "postgres") {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			log.Warn("skipping migrations for non-postgres database", zap.String("db_type", cfg.DBType))
		}

		if cfg.BootstrapOrgName == "" && cfg.BootstrapAdminUser == "" {
			return nil
		}

		org, err := seed.EnsureDefaultOrg(conn, cfg.BootstrapOrgName)
		if err != nil {
			return err
		}
		if cfg.BootstrapAdminUser != "" {
			user, err := seed.EnsureAdminUser(conn, org, cfg.BootstrapAdminUser)
			if err != nil {
				return err
			}
			return authzSvc.GrantGlobalManage(user.ID)
		}
		return nil
	}),
)
