// Package cli implements the formbuilder command line: editing the live
// form, templates and shares, previews, exports and the share server.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/internal/config"
	"github.com/goliatone/go-formbuilder/internal/logger"
	"github.com/goliatone/go-formbuilder/pkg/autosave"
	"github.com/goliatone/go-formbuilder/pkg/document"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/persistence"
	"github.com/goliatone/go-formbuilder/pkg/storage"
)

// EnvPrefix namespaces environment overrides, e.g. FORMBUILDER_STORAGE_DRIVER.
const EnvPrefix = "FORMBUILDER"

type app struct {
	v       *viper.Viper
	cfg     config.Config
	log     *zap.Logger
	adapter storage.Adapter
	repo    *persistence.Repository
}

// RootCmd builds the command tree.
func RootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	cmd := &cobra.Command{
		Use:           "formbuilder",
		Short:         "Build multi-step forms from the terminal",
		Long:          `Compose forms from a palette of controls, split them into steps, preview them and share them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is ./"+config.DefaultFile+")")
	flags.String("env", "", "environment: prod, dev, local or test")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("storage-driver", "", "storage driver: memory, file or redis")
	flags.String("storage-dir", "", "directory of the file driver")
	flags.StringSlice("redis-addr", nil, "redis addresses for the redis driver")
	_ = a.v.BindPFlags(flags)

	a.v.SetEnvPrefix(EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	cmd.AddCommand(
		newCmd(a),
		fieldCmd(a),
		stepCmd(a),
		templateCmd(a),
		shareCmd(a),
		openSharedCmd(a),
		previewCmd(a),
		renderCmd(a),
		schemaCmd(a),
		themeCmd(a),
		serveCmd(a),
	)
	return cmd
}

// InitAndExecute runs the CLI with os.Args.
func InitAndExecute() {
	if err := RootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (a *app) init() error {
	cfg, err := config.Load(a.v.GetString("config"))
	if err != nil {
		return err
	}
	if a.v.IsSet("env") {
		cfg.Env = a.v.GetString("env")
	}
	if a.v.IsSet("log-level") {
		cfg.Logging.Level = a.v.GetString("log-level")
	}
	if a.v.IsSet("storage-driver") {
		cfg.Storage.Driver = a.v.GetString("storage-driver")
	}
	if a.v.IsSet("storage-dir") {
		cfg.Storage.Dir = a.v.GetString("storage-dir")
	}
	if a.v.IsSet("redis-addr") {
		cfg.Storage.Redis.Addrs = a.v.GetStringSlice("redis-addr")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.cfg = cfg

	log, err := logger.New(cfg.Env, cfg.Logging.Level)
	if err != nil {
		return err
	}
	a.log = log

	adapter, err := storage.Open(cfg.StorageConfig())
	if err != nil {
		return err
	}
	a.adapter = adapter
	a.repo = persistence.New(adapter, persistence.WithLogger(log))
	return nil
}

func (a *app) close() {
	if a.adapter != nil {
		storage.Close(a.adapter)
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// live loads the form open in the editor. A corrupt record is reported and
// replaced by an empty form.
func (a *app) live(ctx context.Context, w io.Writer) (model.Document, error) {
	doc, err := a.repo.LoadLive(ctx)
	if errors.Is(err, persistence.ErrCorruptState) {
		fmt.Fprintln(w, "warning: stored form could not be read, starting empty")
		return doc, nil
	}
	return doc, err
}

// edit runs fn against a store over the live form and autosaves the result.
func (a *app) edit(cmd *cobra.Command, fn func(*document.Store) error) error {
	ctx := cmd.Context()
	doc, err := a.live(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	saver := autosave.New(a.repo,
		autosave.WithDelay(a.cfg.Autosave.Delay),
		autosave.WithLogger(a.log),
	)
	defer saver.Stop()

	store := document.New(doc,
		document.WithObserver(saver),
		document.WithLogger(a.log),
	)
	if err := fn(store); err != nil {
		return err
	}
	return warnCorrupt(cmd.ErrOrStderr(), saver.Flush(ctx))
}

// warnCorrupt turns the report of a corrupt value that was just overwritten
// into a warning on w.
func warnCorrupt(w io.Writer, err error) error {
	var corrupt *persistence.CorruptStateError
	if errors.As(err, &corrupt) {
		fmt.Fprintf(w, "warning: stored %s could not be read and was reset\n", corrupt.Key)
		return nil
	}
	return err
}

// form returns the shared form id when set, or the live form.
func (a *app) form(cmd *cobra.Command, shareID string) (model.Document, error) {
	if shareID != "" {
		return a.repo.Shared(cmd.Context(), shareIDFrom(shareID))
	}
	return a.live(cmd.Context(), cmd.ErrOrStderr())
}

// shareIDFrom accepts a bare id or a share link.
func shareIDFrom(raw string) string {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if i := strings.LastIndex(raw, "/form/"); i >= 0 {
		raw = raw[i+len("/form/"):]
	}
	if i := strings.IndexAny(raw, "?#/"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}
