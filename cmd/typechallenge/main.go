// Package main provides the CLI entrypoint for typechallenge.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/typechallenge/internal/config"
	"github.com/verte-zerg/typechallenge/internal/levels"
	"github.com/verte-zerg/typechallenge/internal/model"
	"github.com/verte-zerg/typechallenge/internal/progress"
	"github.com/verte-zerg/typechallenge/internal/report"
	"github.com/verte-zerg/typechallenge/internal/store"
	"github.com/verte-zerg/typechallenge/internal/store/redisstore"
	"github.com/verte-zerg/typechallenge/internal/tui"
)

const redisDialTimeout = 3 * time.Second

var (
	dbPath     string
	levelsFile string
	backend    string

	playUser  string
	playLevel string

	progressUser string

	resetUser string
	resetYes  bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typechallenge",
		Short:         "Levelled typing challenge",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&levelsFile, "levels", "", "YAML level catalog to use instead of the built-in one")
	rootCmd.PersistentFlags().StringVar(&backend, "store", "", "progress backend: sqlite or redis")
	addPlayFlags(rootCmd)

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "Pick a level and play it",
		Args:  cobra.NoArgs,
		RunE:  runPlayCmd,
	}
	addPlayFlags(playCmd)

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(newLevelsCmd())
	rootCmd.AddCommand(newProgressCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newUsersCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func addPlayFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&playUser, "user", "", "username whose progress is recorded (default: guest)")
	cmd.Flags().StringVar(&playLevel, "level", "", "start a level directly, e.g. easy/1")
}

// loadSettings merges the config file, environment and persistent flags.
func loadSettings(cmd *cobra.Command) (config.FileConfig, config.Server, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, config.Server{}, fmt.Errorf("failed to load config: %w", err)
	}
	cfg, err := config.ResolveServer(fileCfg)
	if err != nil {
		return config.FileConfig{}, config.Server{}, fmt.Errorf("failed to load config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DBPath = dbPath
	}
	if flags.Changed("levels") {
		cfg.LevelsFile = levelsFile
	}
	if flags.Changed("store") {
		if backend != config.BackendSQLite && backend != config.BackendRedis {
			return config.FileConfig{}, config.Server{}, fmt.Errorf("--store must be %s or %s", config.BackendSQLite, config.BackendRedis)
		}
		cfg.Backend = backend
	}
	return fileCfg, cfg, nil
}

func loadCatalog(cfg config.Server) (*levels.Catalog, error) {
	if cfg.LevelsFile == "" {
		return levels.Load()
	}
	catalog, err := levels.LoadFile(cfg.LevelsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load levels: %w", err)
	}
	return catalog, nil
}

// backends bundles the account store with the selected progress store.
type backends struct {
	store    *store.Store
	progress progress.Store
	redis    *redisstore.ProgressStore
}

func openBackends(ctx context.Context, cfg config.Server) (*backends, error) {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	b := &backends{store: st, progress: st}
	if cfg.Backend != config.BackendRedis {
		return b, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	rs := redisstore.NewProgressStore(client, cfg.RedisTTL)
	pingCtx, cancel := context.WithTimeout(ctx, redisDialTimeout)
	defer cancel()
	if err := rs.Ping(pingCtx); err != nil {
		if cerr := rs.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
		b.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	b.progress = rs
	b.redis = rs
	return b, nil
}

func (b *backends) Close() {
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			logErrf("failed to close redis: %v\n", err)
		}
	}
	if err := b.store.Close(); err != nil {
		logErrf("failed to close db: %v\n", err)
	}
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "user", &playUser, fileCfg.Player.User)

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	b, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	opts := tui.Options{User: playUser}
	var tracker tui.ProgressTracker
	doc := progress.Default(catalog)
	if playUser != "" {
		if _, err := b.store.UserByUsername(ctx, playUser); err != nil {
			if !errors.Is(err, store.ErrUserNotFound) {
				return fmt.Errorf("failed to look up user: %w", err)
			}
			logErrf("%s is not registered; progress is kept locally only.\n", playUser)
		}
		t := progress.NewTracker(b.progress, catalog)
		if doc, err = t.Load(ctx, playUser); err != nil {
			return err
		}
		tracker = t
	} else {
		logErrln("No user set; playing as guest. Progress is not saved.")
	}

	if playLevel != "" {
		level, err := parseLevelRef(catalog, playLevel)
		if err != nil {
			return err
		}
		if progress.Locked(doc, level) {
			return fmt.Errorf("%s is locked until every easy, medium and hard level is complete", level.Name)
		}
		opts.Start = &level
	}

	program := tea.NewProgram(tui.NewModel(catalog, tracker, opts), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// parseLevelRef accepts "easy/1", "easy:1" or "easy1".
func parseLevelRef(catalog *levels.Catalog, ref string) (model.Level, error) {
	ref = strings.TrimSpace(strings.ToLower(ref))
	name, num, ok := strings.Cut(ref, "/")
	if !ok {
		name, num, ok = strings.Cut(ref, ":")
	}
	if !ok {
		i := strings.IndexFunc(ref, func(r rune) bool { return r >= '0' && r <= '9' })
		if i <= 0 {
			return model.Level{}, fmt.Errorf("invalid level %q (want e.g. easy/1)", ref)
		}
		name, num = ref[:i], ref[i:]
	}
	difficulty, err := levels.ParseDifficulty(name)
	if err != nil {
		return model.Level{}, err
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return model.Level{}, fmt.Errorf("invalid level number %q", num)
	}
	return catalog.Get(difficulty, n)
}

func newLevelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "List levels and their pass requirements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			catalog, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			return report.RenderLevels(cmd.OutOrStdout(), catalog)
		},
	}
}

func newProgressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show level progress",
		Args:  cobra.NoArgs,
		RunE:  runProgressCmd,
	}
	cmd.Flags().StringVar(&progressUser, "user", "", "username (default: [player] user)")
	return cmd
}

func runProgressCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "user", &progressUser, fileCfg.Player.User)
	if progressUser == "" {
		return errMissingUser
	}
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	b, err := openBackends(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	doc, err := progress.NewTracker(b.progress, catalog).Load(cmd.Context(), progressUser)
	if err != nil {
		return err
	}
	return report.RenderProgress(cmd.OutOrStdout(), catalog, doc)
}

var errMissingUser = errors.New("--user is required (or set [player] user in the config file)")

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all progress for a user",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().StringVar(&resetUser, "user", "", "username (default: [player] user)")
	cmd.Flags().BoolVar(&resetYes, "yes", false, "do not ask for confirmation")
	return cmd
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "user", &resetUser, fileCfg.Player.User)
	if resetUser == "" {
		return errMissingUser
	}
	if !resetYes {
		ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), fmt.Sprintf("Reset all progress for %s? [y/N] ", resetUser))
		if err != nil {
			return err
		}
		if !ok {
			logErrln("Aborted.")
			return nil
		}
	}
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	b, err := openBackends(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	if err := progress.NewTracker(b.progress, catalog).Reset(cmd.Context(), resetUser); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Progress reset for %s.\n", resetUser); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	if _, err := fmt.Fprint(out, prompt); err != nil {
		return false, fmt.Errorf("failed to write prompt: %w", err)
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := ensureConfigFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// ensureConfigFile writes the commented template unless a file already exists.
func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.WriteFile(path, []byte(config.Template), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
