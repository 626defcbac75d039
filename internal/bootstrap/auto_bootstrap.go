package bootstrap

import (
	"errors"

	"github.com/warelane/warelane/internal/config"
	"github.com/warelane/warelane/internal/seed"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EnsureDefaultOrg creates the default organization when explicitly enabled.
// This is intended for self-hosted setups that want an env-gated bootstrap.
func EnsureDefaultOrg(cfg config.Config, db *gorm.DB, log *zap.Logger) error {
	if !cfg.Bootstrap.EnsureDefaultOrg {
		return nil
	}
	if db == nil {
		return errors.New("bootstrap requires database handle")
	}

	org, err := seed.EnsureDefaultOrg(db, seed.OrgSeedOptions{
		OrgID: cfg.Bootstrap.DefaultOrgID,
		Name:  cfg.Bootstrap.DefaultOrgName,
		Slug:  cfg.Bootstrap.DefaultOrgSlug,
	})
	if err != nil {
		return err
	}

	log.Info("default organization ready",
		zap.String("org_id", org.ID.String()),
		zap.String("slug", org.Slug),
	)
	return nil
}
