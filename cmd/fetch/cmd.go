package fetch

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/krau/SaveLink-Bot/common/cache"
	"github.com/krau/SaveLink-Bot/config"
	"github.com/krau/SaveLink-Bot/core/retriever"
	"github.com/krau/SaveLink-Bot/logger"
	"github.com/krau/SaveLink-Bot/pkg/linkkind"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "resolve and download one link locally, without telegram",
	Args:  cobra.ExactArgs(1),
	RunE:  Fetch,
}

func Register(root *cobra.Command) {
	fetchCmd.Flags().StringP("output", "o", ".", "directory the file is written into")
	fetchCmd.Flags().Bool("no-progress", false, "disable progress bar")
	root.AddCommand(fetchCmd)
}

func Fetch(cmd *cobra.Command, args []string) error {
	link := args[0]
	outDir, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	noProgress, err := cmd.Flags().GetBool("no-progress")
	if err != nil {
		return err
	}
	kind := linkkind.Classify(link)
	if !kind.Supported() {
		return fmt.Errorf("unsupported link: %s", link)
	}

	ctx := cmd.Context()
	if err := config.Init(ctx, config.GetConfigFile(cmd)); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.C()
	lg := logger.New(os.Stderr, cfg.Log.Level)
	ctx = log.WithContext(ctx, lg)

	c, err := cache.New(cfg.Cache.NumCounters, cfg.Cache.MaxCost, time.Duration(cfg.Cache.TTL)*time.Second)
	if err != nil {
		return err
	}
	defer c.Close()
	r, err := retriever.NewFromConfig(ctx, cfg, c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, os.ModePerm); err != nil {
		return err
	}

	var ui *FetchProgress
	req := retriever.Request{URL: link, Kind: kind, Dir: outDir}
	if !noProgress {
		ui = NewFetchProgress(ctx)
		ui.Start()
		req.OnProgress = func(t retriever.Transfer) {
			ui.Update(t.Name, t.Done, t.Total)
		}
	}
	finish := func(err error) error {
		if ui != nil {
			if err != nil {
				ui.SetError(err)
			} else {
				ui.Done()
			}
			ui.Wait()
		}
		return err
	}

	lg.Info("Resolving link...", "url", link, "kind", kind, "route", r.Route(kind))
	out, err := r.Retrieve(ctx, req)
	if err != nil {
		return finish(err)
	}
	switch v := out.(type) {
	case retriever.SingleFile:
		err = finish(nil)
		lg.Info("File saved", "path", v.Path, "size", v.Size, "mime", v.MIME)
		return err
	case retriever.FolderListing:
		var errs []error
		for _, e := range v.Entries {
			f, err := r.FetchEntry(ctx, req, e)
			if err != nil {
				lg.Warn("Entry failed", "name", e.Name, "err", err)
				errs = append(errs, err)
				continue
			}
			lg.Debug("Entry saved", "path", f.Path, "size", f.Size)
		}
		err := finish(errors.Join(errs...))
		lg.Info("Folder fetched", "name", v.Name, "entries", len(v.Entries), "failed", len(errs))
		return err
	}
	return finish(fmt.Errorf("unexpected outcome %T", out))
}
