package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"

	"github.com/luinbytes/same-size-finder/grouping"
	"github.com/luinbytes/same-size-finder/report"
	"github.com/luinbytes/same-size-finder/resolve"
	"github.com/luinbytes/same-size-finder/trash"
	"github.com/luinbytes/same-size-finder/tui"
)

const version = "1.0.0"

// Config holds application configuration
type Config struct {
	Dir      string
	Mode     string            // "size" or "edited"
	Strategy grouping.Strategy // Parsed from Mode
	Prompt   bool              // Offer one deletion per group
	TUI      bool              // Pick with the keyboard instead of typing a number
	TrashDir string            // Trash root; empty means the XDG default
	Verbose  bool
	NoEmoji  bool // Disable emoji output for cleaner logs
}

// emoji returns the emoji if NoEmoji is false, otherwise returns empty string
func (c Config) emoji(e string) string {
	if c.NoEmoji {
		return ""
	}
	return e + " "
}

// parseFlags parses args (without the program name) into a Config
func parseFlags(args []string, output io.Writer) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("same-size-finder", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() { customUsage(fs.Output()) }

	fs.StringVar(&cfg.Mode, "mode", "size", "Grouping mode: size or edited")
	fs.BoolVar(&cfg.Prompt, "prompt", true, "Offer to trash one file per group")
	fs.BoolVar(&cfg.TUI, "tui", false, "Pick the file to trash with the keyboard")
	fs.StringVar(&cfg.TrashDir, "trash-dir", "", "Trash directory (default: XDG trash)")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Show detailed output")
	fs.BoolVar(&cfg.NoEmoji, "no-emoji", false, "Disable emoji output for cleaner logs")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	strategy, err := grouping.ParseStrategy(cfg.Mode)
	if err != nil {
		return cfg, err
	}
	cfg.Strategy = strategy

	switch fs.NArg() {
	case 0:
		cfg.Dir = "."
	case 1:
		cfg.Dir = fs.Arg(0)
	default:
		return cfg, fmt.Errorf("expected at most one directory, got %d", fs.NArg())
	}

	return cfg, nil
}

// customUsage prints categorized help text
func customUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage: same-size-finder [options] [dir]\n\n")
	fmt.Fprintf(w, "Lists files that share a size, or original/edited media pairs, and offers\n")
	fmt.Fprintf(w, "to move one file of each group to the trash.\n\n")

	fmt.Fprintf(w, "GROUPING:\n")
	fmt.Fprintf(w, "  -mode string\n\tsize: files with identical byte size (default)\n")
	fmt.Fprintf(w, "\tedited: files sharing a four uppercase letter prefix, e.g. ABCD0001.MP4 and ABCDE0001.MOV\n")

	fmt.Fprintf(w, "\nACTION OPTIONS:\n")
	fmt.Fprintf(w, "  -prompt\n\tOffer to trash one file per group (default: true, use -prompt=false to only list)\n")
	fmt.Fprintf(w, "  -tui\n\tChoose the file with the arrow keys instead of typing its number\n")
	fmt.Fprintf(w, "  -trash-dir string\n\tTrash directory (default: $XDG_DATA_HOME/Trash or ~/.local/share/Trash)\n")

	fmt.Fprintf(w, "\nOUTPUT OPTIONS:\n")
	fmt.Fprintf(w, "  -verbose\n\tShow detailed progress\n")
	fmt.Fprintf(w, "  -no-emoji\n\tPlain text output (no emoji)\n")

	fmt.Fprintf(w, "\nEXAMPLES:\n")
	fmt.Fprintf(w, "  same-size-finder ~/Downloads\n")
	fmt.Fprintf(w, "  same-size-finder -mode edited -prompt=false /media/camera\n")
}

// validateDir checks that dir exists and is a directory
func validateDir(fsys afero.Fs, dir string) error {
	info, err := fsys.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

func main() {
	log.SetFlags(log.Ltime)

	cfg, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("%s%v", cfg.emoji("❌"), err)
	}

	fsys := afero.NewOsFs()
	if err := validateDir(fsys, cfg.Dir); err != nil {
		log.Fatalf("%s%v", cfg.emoji("❌"), err)
	}

	trashDir := cfg.TrashDir
	if trashDir == "" {
		if trashDir, err = trash.DefaultRoot(); err != nil {
			log.Fatalf("%s%v", cfg.emoji("❌"), err)
		}
	}

	var input resolve.LineReader = resolve.NewStdin(os.Stdin, os.Stdout)
	if cfg.TUI {
		if isatty.IsTerminal(os.Stdin.Fd()) {
			input = tui.NewPicker(os.Stdin, os.Stdout)
		} else {
			log.Printf("%s-tui needs a terminal on stdin, reading numbers instead", cfg.emoji("⚠️"))
		}
	}

	if cfg.Verbose {
		log.Printf("%sSame Size Finder v%s", cfg.emoji("🔍"), version)
		log.Printf("%sScanning directory: %s", cfg.emoji("📁"), cfg.Dir)
		log.Printf("%sMode: %s", cfg.emoji("🧩"), cfg.Strategy)
		log.Printf("%sPrompt: %v", cfg.emoji("❓"), cfg.Prompt)
		if cfg.Prompt {
			log.Printf("%sTrash: %s", cfg.emoji("🗑️"), trashDir)
		}
	}

	stdoutFd := os.Stdout.Fd()
	r := &runner{
		cfg: cfg,
		fs:  fsys,
		formatter: &report.Formatter{
			Out:      os.Stdout,
			Strategy: cfg.Strategy,
			Styled:   isatty.IsTerminal(stdoutFd) || isatty.IsCygwinTerminal(stdoutFd),
		},
		resolver: &resolve.Resolver{
			Enabled:  cfg.Prompt,
			Strategy: cfg.Strategy,
			Input:    input,
			Trasher:  trash.New(fsys, trashDir),
			Out:      os.Stdout,
		},
	}

	if _, err := r.run(context.Background()); err != nil {
		if errors.Is(err, resolve.ErrInterrupted) {
			log.Printf("%sStopped", cfg.emoji("🛑"))
			os.Exit(130)
		}
		log.Fatalf("%sError scanning files: %v", cfg.emoji("❌"), err)
	}
}
