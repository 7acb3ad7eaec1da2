package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xonecas/codeview/internal/config"
	"github.com/xonecas/codeview/internal/language"
	"github.com/xonecas/codeview/internal/logging"
	"github.com/xonecas/codeview/internal/store"
	"github.com/xonecas/codeview/pkg/codeview"
)

type rootFlags struct {
	configPath       string
	mode             string
	readOnly         bool
	originalReadOnly bool
	tabWidth         int
	height           string
	collapse         bool
	schemaPath       string
	theme            string
	noSearch         bool
	noLint           bool
	session          string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "codeview [file]",
		Short:         "codeview edits a file or reviews a diff in the terminal",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runSingle(flags, path)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Config file (default ~/.config/codeview/config.toml)")
	pf.StringVar(&flags.mode, "mode", "", "Language mode (json, yaml, toml, go, shell, ...); detected from the file name when empty")
	pf.BoolVar(&flags.readOnly, "read-only", false, "Open without editing")
	pf.IntVar(&flags.tabWidth, "tab-width", 0, "Indent width (default from config)")
	pf.StringVar(&flags.height, "height", "", "Height: auto, 100%, fit or a row count (default from config)")
	pf.StringVar(&flags.schemaPath, "schema", "", "JSON schema file for validation, completion and hover")
	pf.StringVar(&flags.theme, "theme", "", "Chroma theme (default from config)")
	pf.BoolVar(&flags.noSearch, "no-search", false, "Disable the search panel")
	pf.BoolVar(&flags.noLint, "no-lint", false, "Disable linting")
	pf.StringVar(&flags.session, "session", "", "Preference session id (default: the file path)")

	cmd.AddCommand(newDiffCmd(flags))
	return cmd
}

// env is what every run needs besides its documents.
type env struct {
	cfg     *config.Config
	prefs   *store.Prefs
	opts    codeview.Options
	closers []func() error
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			log.Warn().Err(err).Msg("shutdown")
		}
	}
}

func setup(flags *rootFlags) (*env, error) {
	path := flags.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg}
	dataDir, err := config.EnsureDataDir()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	logPath := cfg.Log.Path
	if logPath == "" {
		logPath = filepath.Join(dataDir, "codeview.log")
	}
	closeLog, err := logging.Setup(logging.Options{Level: cfg.Log.Level, Path: logPath})
	if err != nil {
		return nil, err
	}
	e.closers = append(e.closers, closeLog)

	storePath := cfg.Store.Path
	if storePath == "" {
		storePath = filepath.Join(dataDir, "prefs.db")
	}
	prefs, err := store.Open(storePath, cfg.Store.TTL())
	if err != nil {
		// Preferences are optional.
		log.Warn().Err(err).Str("path", storePath).Msg("preferences disabled")
	} else {
		e.prefs = prefs
		e.closers = append(e.closers, prefs.Close)
	}

	e.opts = codeview.OptionsFromConfig(cfg, e.prefs)
	return e, nil
}

// baseProps maps the shared flags onto host props.
func baseProps(flags *rootFlags, cfg *config.Config, path string) (codeview.Props, error) {
	heightFlag := flags.height
	if heightFlag == "" {
		heightFlag = cfg.Editor.Height
	}
	h, err := codeview.ParseHeight(heightFlag)
	if err != nil {
		return codeview.Props{}, err
	}

	mode := flags.mode
	if mode == "" && path != "" {
		mode = language.DetectMode(path).String()
	}

	var schema string
	if flags.schemaPath != "" {
		data, err := os.ReadFile(flags.schemaPath)
		if err != nil {
			return codeview.Props{}, fmt.Errorf("read schema: %w", err)
		}
		schema = string(data)
	}

	session := flags.session
	if session == "" && path != "" {
		if abs, err := filepath.Abs(path); err == nil {
			session = abs
		}
	}

	return codeview.Props{
		Mode:              mode,
		ReadOnly:          flags.readOnly,
		OriginalReadOnly:  flags.originalReadOnly,
		CollapseUnchanged: flags.collapse,
		Height:            h,
		ValidatorSchema:   schema,
		SchemaURI:         flags.schemaPath,
		DisableSearch:     flags.noSearch || !cfg.Search.On(),
		DisableLint:       flags.noLint,
		TabWidth:          flags.tabWidth,
		Theme:             flags.theme,
		SessionID:         session,
	}, nil
}

func readOptional(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func runSingle(flags *rootFlags, path string) error {
	e, err := setup(flags)
	if err != nil {
		return err
	}
	defer e.Close()

	props, err := baseProps(flags, e.cfg, path)
	if err != nil {
		return err
	}
	content, err := readOptional(path)
	if err != nil {
		return err
	}
	props.Value = content
	return run(newApp(e.opts, props, [2]string{"", path}))
}
