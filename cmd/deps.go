package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyhall/internal/achievements"
	"github.com/abhisek/studyhall/internal/config"
	"github.com/abhisek/studyhall/internal/encourage"
	"github.com/abhisek/studyhall/internal/logger"
	"github.com/abhisek/studyhall/internal/store"
	"github.com/abhisek/studyhall/internal/study"
)

// deps is everything a command needs, opened from flags and config.
type deps struct {
	cfg    *config.Config
	log    *logger.Logger
	store  *store.Store
	engine *achievements.Engine
	enc    *encourage.Service
	study  *study.Service
	dbPath string
}

// openDeps loads config, opens the store and builds the services. With
// logToFile the log goes next to the database instead of stderr.
func openDeps(cmd *cobra.Command, logToFile bool) (*deps, error) {
	ctx := cmd.Context()
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.LoadOptions{File: cfgFile})
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}

	dbFlag, _ := cmd.Flags().GetString("db")
	dbPath, err := cfg.DBPath(dbFlag)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}

	logOpts := cfg.LogOptions()
	if logToFile && logOpts.Path == "" {
		logOpts.Path = filepath.Join(filepath.Dir(dbPath), "studyhall.log")
	}
	log, err := logger.New(logOpts)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	// Presets are seeded into an empty catalog only, so a catalog loaded
	// from a file is left alone.
	engine := achievements.NewEngine(st, nil, log)
	n, err := st.Session().Achievements().Count(ctx)
	if err == nil && n == 0 {
		_, err = engine.EnsureCatalog(ctx, achievements.Presets())
	}
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("seed achievements: %w", err)
	}
	if _, err := encourage.SeedPersonas(ctx, st); err != nil {
		st.Close()
		return nil, fmt.Errorf("seed personas: %w", err)
	}

	enc := encourage.NewService(st, encourage.Options{
		Base:        cfg.LLM(),
		Log:         log,
		MinInterval: cfg.MinInterval(),
		Timeout:     cfg.LLM().Timeout,
	})

	return &deps{
		cfg:    cfg,
		log:    log,
		store:  st,
		engine: engine,
		enc:    enc,
		study:  study.New(st, engine, enc.Policy(), nil, log),
		dbPath: dbPath,
	}, nil
}

func (d *deps) Close() {
	d.store.Close()
	d.log.Sync()
}

// withDeps adapts a command body that needs deps to cobra's RunE.
func withDeps(fn func(cmd *cobra.Command, args []string, d *deps) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()
		return fn(cmd, args, d)
	}
}

// resolveSubject accepts a subject id or name.
func (d *deps) resolveSubject(cmd *cobra.Command, ref string) (store.Subject, error) {
	ctx := cmd.Context()
	if id, err := strconv.Atoi(ref); err == nil {
		sub, err := d.study.Subject(ctx, id)
		if err == nil || !errors.Is(err, store.ErrNotFound) {
			return sub, err
		}
	}
	sub, err := d.study.SubjectByName(ctx, ref)
	if errors.Is(err, store.ErrNotFound) {
		return store.Subject{}, fmt.Errorf("no subject %q (see `studyhall subject list`)", ref)
	}
	return sub, err
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid ID %q: %w", s, err)
	}
	return id, nil
}

// confirmed requires --yes for destructive commands.
func confirmed(cmd *cobra.Command, what string) error {
	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		return fmt.Errorf("%s cannot be undone; re-run with --yes", what)
	}
	return nil
}
