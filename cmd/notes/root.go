package main

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrshanahan/notes/internal/config"
	"github.com/mrshanahan/notes/internal/notebook"
	notesdb "github.com/mrshanahan/notes/pkg/notes-db"
)

// app carries what every subcommand needs once the root command has loaded the
// configuration and opened the database.
type app struct {
	v       *viper.Viper
	cfg     *config.Config
	store   *notesdb.Store
	out     io.Writer
	errOut  io.Writer
	verbose bool
}

func newApp(out io.Writer, errOut io.Writer) *app {
	return &app{
		v:      config.New(),
		out:    out,
		errOut: errOut,
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "notes",
		Short: "Keep short notes in a local SQLite database",
		Long: `notes stores free-text notes with creation and update times in a single
SQLite file. Run "notes shell" for an interactive session.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.String("db-dir", config.NotesConfigDirectory, "Directory holding the notes database and config.yaml (env NOTES_DB_DIR)")
	flags.String("db-name", config.DefaultNotesDatabaseName, "Database file name (env NOTES_DB_NAME)")
	flags.Bool("strict", false, "Fail edit/delete when the note does not exist (env NOTES_STRICT)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	a.v.BindPFlag("db_dir", flags.Lookup("db-dir"))
	a.v.BindPFlag("db_name", flags.Lookup("db-name"))
	a.v.BindPFlag("strict", flags.Lookup("strict"))

	root.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newEditCmd(a),
		newDeleteCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newShellCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.SlogLevel()
	if a.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	dbPath, err := cfg.DBPath()
	if err != nil {
		return err
	}
	slog.Debug("opening notes database", "path", dbPath, "strict", cfg.Strict)

	store, err := notesdb.Initialize(dbPath,
		notesdb.WithLogger(logger),
		notesdb.WithStrict(cfg.Strict))
	if err != nil {
		return err
	}
	a.store = store
	return nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

// notebook returns a notebook over the open store with no observer; single-shot
// commands print their own result.
func (a *app) notebook() *notebook.Notebook {
	return notebook.New(a.store, nil)
}

// parseID only rejects text that is not a number. Ids that cannot exist, such as 0,
// go to the store like any other missing id.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid note id: %q", s)
	}
	return id, nil
}
