package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/krau/SaveLink-Bot/api"
	"github.com/krau/SaveLink-Bot/client/bot"
	"github.com/krau/SaveLink-Bot/client/bot/handlers"
	"github.com/krau/SaveLink-Bot/common/cache"
	"github.com/krau/SaveLink-Bot/common/i18n"
	"github.com/krau/SaveLink-Bot/common/i18n/i18nk"
	"github.com/krau/SaveLink-Bot/common/utils/fsutil"
	"github.com/krau/SaveLink-Bot/config"
	"github.com/krau/SaveLink-Bot/core"
	"github.com/krau/SaveLink-Bot/core/delivery"
	"github.com/krau/SaveLink-Bot/core/delivery/tgtransport"
	"github.com/krau/SaveLink-Bot/core/quota"
	"github.com/krau/SaveLink-Bot/core/retriever"
	"github.com/krau/SaveLink-Bot/core/session"
	"github.com/krau/SaveLink-Bot/database"
	"github.com/krau/SaveLink-Bot/logger"
	"github.com/krau/SaveLink-Bot/storage/minio"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func Run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if err := config.Init(ctx, config.GetConfigFile(cmd)); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.C()
	lg := logger.New(os.Stderr, cfg.Log.Level)
	ctx = log.WithContext(ctx, lg)
	i18n.Init(cfg.Lang)
	lg.Info(i18n.T(i18nk.Initing))

	store := database.Init(ctx)
	defer database.Close()

	c, err := cache.New(cfg.Cache.NumCounters, cfg.Cache.MaxCost, time.Duration(cfg.Cache.TTL)*time.Second)
	if err != nil {
		return err
	}
	defer c.Close()

	r, err := retriever.NewFromConfig(ctx, cfg, c)
	if err != nil {
		return fmt.Errorf("failed to create retriever: %w", err)
	}
	tb, err := cfg.Source.Terabox()
	if err != nil {
		return err
	}

	b, err := bot.New(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize bot: %w", err)
	}
	defer b.Stop()

	opts := []delivery.Option{
		delivery.WithThumbnailer(delivery.NewFFmpegThumbnailer()),
		delivery.WithLogChannel(cfg.LogChannel),
	}
	if cfg.Mirror.Enable {
		m, err := minio.New(ctx, minio.Options{
			Endpoint:        cfg.Mirror.Endpoint,
			AccessKeyID:     cfg.Mirror.AccessKeyID,
			SecretAccessKey: cfg.Mirror.SecretAccessKey,
			BucketName:      cfg.Mirror.BucketName,
			UseSSL:          cfg.Mirror.UseSSL,
			BasePath:        cfg.Mirror.BasePath,
		})
		if err != nil {
			lg.Warn("Mirror disabled", "err", err)
		} else {
			opts = append(opts, delivery.WithMirror(m))
		}
	}
	deliverer := delivery.NewDeliverer(tgtransport.New(b.Context(), cfg.Telegram.UploadThreads), opts...)

	policy := quota.NewPolicy(store, cfg.Owners, quota.Limits{
		FreeDaily:  cfg.Quota.FreeDailyLimit,
		FreeMax:    cfg.Quota.FreeMaxBytes(),
		PremiumMax: cfg.Quota.PremiumMaxBytes(),
		FreeSpeed:  cfg.Quota.FreeSpeedBytes(),
	})
	engine := core.New(ctx, session.NewManager(cfg.Temp.BasePath), policy, r, deliverer, core.Options{
		FolderMode:       tb.FolderMode,
		ProgressInterval: cfg.Progress.Interval,
		ItemDelay:        cfg.Queue.ItemDelay,
	})

	started := time.Now()
	b.Serve(handlers.Deps{
		Engine:    engine,
		Directory: store,
		Deliverer: deliverer,
		ThumbDir:  cfg.DB.ThumbDir,
		Started:   started,
		Cache:     c,
	})

	g, gctx := errgroup.WithContext(ctx)
	if cfg.API.Enable {
		g.Go(func() error {
			return api.Serve(gctx, api.Options{
				Port:       cfg.API.Port,
				Token:      cfg.API.Token,
				TrustedIPs: cfg.API.TrustedIPs,
				Engine:     engine,
				Directory:  store,
				Started:    started,
			})
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})
	err = g.Wait()

	lg.Info(i18n.T(i18nk.Exiting))
	engine.Wait()
	cleanScratch(lg, cfg.Temp.BasePath)
	lg.Info(i18n.T(i18nk.Bye))
	return err
}

func cleanScratch(lg *log.Logger, base string) {
	if base == "" {
		return
	}
	if slices.Contains([]string{"/", ".", "\\", ".."}, filepath.Clean(base)) {
		lg.Error(i18n.T(i18nk.InvalidCacheDir, map[string]any{"Path": base}))
		return
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		lg.Error(i18n.T(i18nk.CleanCacheFailed, map[string]any{"Error": err}))
		return
	}
	lg.Info(i18n.T(i18nk.CleaningCache, map[string]any{"Path": abs}))
	if err := fsutil.SafeRemoveAll(abs); err != nil {
		lg.Error(i18n.T(i18nk.CleanCacheFailed, map[string]any{"Error": err}))
	}
}
