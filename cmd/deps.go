package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"adlauncher/config"
	"adlauncher/facebook"
	"adlauncher/internal/logging"
	"adlauncher/launcher"
	"adlauncher/media"
)

const (
	defaultDBPath = "./adlauncher.db"
	userAgent     = "adlauncher/1.0"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Log.Level, cfg.Log.Format)
}

func newFacebookClient(cfg *config.Config) (*facebook.HTTPClient, error) {
	if err := cfg.RequireFacebook(); err != nil {
		return nil, err
	}
	return facebook.NewClient(facebook.ClientConfig{
		BaseURL:     cfg.Facebook.GraphBaseURL(),
		AccessToken: cfg.Facebook.AccessToken,
		UserAgent:   userAgent,
	})
}

func newMediaStore(ctx context.Context, cfg *config.Config) (*media.Store, error) {
	if err := cfg.RequireStorage(); err != nil {
		return nil, err
	}
	return media.NewStore(ctx, media.Config{
		Bucket:          cfg.Storage.Bucket,
		Endpoint:        cfg.Storage.Endpoint,
		Region:          cfg.Storage.Region,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		PresignTTL:      cfg.Storage.PresignTTL,
		KeyPrefix:       cfg.Storage.KeyPrefix,
	})
}

func launchDefaults(cfg *config.Config) launcher.Defaults {
	return launcher.Defaults{
		AccountID:        cfg.Facebook.AdAccountID,
		PageID:           cfg.Facebook.PageID,
		InstagramActorID: cfg.Facebook.InstagramActorID,
		CallToAction:     cfg.Launch.DefaultCTA,
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
