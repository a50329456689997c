package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/guilherme-santos/syncstatus/file"
	"github.com/guilherme-santos/syncstatus/internal/log"
)

var cfgFlags struct {
	Config  string
	Verbose bool
}

func init() {
	flag.StringVar(&cfgFlags.Config, "config", "syncstatus.yml", "configuration file")
	flag.BoolVar(&cfgFlags.Verbose, "verbose", false, "enable debug logging")
}

func usage() {
	w := flag.CommandLine.Output()
	fmt.Fprintf(w, "Usage of %s:\n", os.Args[0])
	fmt.Fprintf(w, "\t%s [options] <command> [command options]\n", os.Args[0])
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range []struct{ Name, Description string }{
		{RunCommand.Name, RunCommand.Description},
		{ConfigureCommand.Name, ConfigureCommand.Description},
	} {
		fmt.Fprintf(w, "\t%s\t%s\n", cmd.Name, cmd.Description)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt)
		<-ch
		cancel()
	}()

	cfg, err := file.Load(cfgFlags.Config)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = file.Default()
	} else if err != nil {
		fmt.Fprintln(os.Stderr, "Unable to load config:", err)
		os.Exit(1)
	}
	if cfgFlags.Verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := log.New(log.Config{
		File:     cfg.Log.File,
		Level:    cfg.Log.Level,
		Encoding: cfg.Log.Encoding,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Unable to create logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var run func(context.Context, *zap.SugaredLogger, *file.Config, []string) error
	switch cmd := flag.Arg(0); cmd {
	case RunCommand.Name:
		run = RunCommand.Run
	case ConfigureCommand.Name:
		run = ConfigureCommand.Run
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err := run(ctx, logger, cfg, flag.Args()[1:]); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}
