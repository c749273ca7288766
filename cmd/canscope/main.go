package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/funvibe/canscope/internal/config"
	"github.com/funvibe/canscope/internal/debugdb"
	"github.com/funvibe/canscope/internal/diagnostics"
	"github.com/funvibe/canscope/internal/pipeline"
	"github.com/funvibe/canscope/internal/symbols"
	"github.com/funvibe/canscope/internal/utils"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// expandArgs turns glob patterns and directories into a sorted, de-duplicated
// list of script files.
func expandArgs(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, arg := range args {
		if info, err := os.Stat(arg); err == nil && info.IsDir() {
			arg = filepath.Join(arg, "**", "*")
		}
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no scripts match %q", arg)
		}
		for _, m := range matches {
			if utils.IsScriptFile(m) {
				add(m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func useColor(mode string, out io.Writer) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto":
		f, ok := out.(*os.File)
		if !ok {
			return false, nil
		}
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()), nil
	}
	return false, fmt.Errorf("invalid -color %q: want auto, always or never", mode)
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("canscope", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "log every resolved step")
	debug := fs.Bool("debug", false, "enable internal consistency assertions")
	colorMode := fs.String("color", "auto", "colour diagnostics: auto, always or never")
	dbPath := fs.String("db", "", "export debug names of this run to a SQLite database")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: canscope [flags] <glob>...\n\nResolves the scopes of canonicalization scripts (%s).\n\n", config.ScriptFileExt)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen, NoColor: true}).
		Level(level).With().Timestamp().Logger()

	config.DebugAssertions = *debug

	color, err := useColor(*colorMode, stdout)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	files, err := expandArgs(fs.Args())
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}

	modules := symbols.NewModuleIDs()
	names := symbols.NewDebugNames()
	var problems []*diagnostics.DiagnosticError

	for _, file := range files {
		ctx := pipeline.NewPipelineContext(file)
		ctx.Modules = modules
		ctx.Names = names
		ctx.Logger = logger.With().Str("file", file).Logger()

		ctx = pipeline.Default().Run(ctx)
		problems = append(problems, ctx.Errors...)
		if ctx.Output != nil {
			logger.Info().
				Str("file", file).
				Int("steps", len(ctx.Output.Steps)).
				Int("problems", len(ctx.Output.Problems)).
				Msg("resolved")
			for _, step := range ctx.Output.Steps {
				if step.HasSymbol {
					logger.Debug().
						Str("file", file).
						Stringer("region", step.Region).
						Str("name", step.Name).
						Str("symbol", names.SymbolName(step.Symbol)).
						Msg("symbol")
				}
			}
		}
	}

	if err := diagnostics.Render(stdout, problems, color); err != nil {
		fmt.Fprintf(stderr, "Error writing diagnostics: %s\n", err)
		return 1
	}

	if *dbPath != "" {
		if err := export(*dbPath, names, logger); err != nil {
			fmt.Fprintf(stderr, "Error: %s\n", err)
			return 1
		}
	}

	if len(problems) > 0 {
		return 1
	}
	return 0
}

func export(path string, names *symbols.DebugNames, logger zerolog.Logger) error {
	ctx := context.Background()
	db, err := debugdb.Open(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close()

	runID, err := db.SaveRun(ctx, names)
	if err != nil {
		return fmt.Errorf("exporting debug names: %w", err)
	}
	logger.Info().Str("db", path).Stringer("run", runID).Msg("exported debug names")
	return nil
}
