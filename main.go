package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/cdviz/internal/config"
	"github.com/olivier-w/cdviz/internal/media"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()
	fs := flag.NewFlagSet("cdviz", flag.ExitOnError)
	cfg.BindFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: cdviz [flags] <folder | playlist | file>\n       cdviz [flags] --cd\n\nSupported formats: %s\n\n", media.SupportedExtsList())
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[1:])

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration:\n%v\n", err)
		os.Exit(2)
	}
	arg := fs.Arg(0)
	if arg == "" && !cfg.CD {
		fs.Usage()
		os.Exit(2)
	}

	closeLog, err := setupLogging(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	holder := &sessionHolder{}
	defer holder.close()

	program := tea.NewProgram(newStartupModel(cfg, arg, holder), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		log.Error().Err(err).Msg("program exited with error")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		holder.close()
		os.Exit(1)
	}
}
