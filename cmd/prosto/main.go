package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/mitchellh/cli"
)

const version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	exitCode, err := newCLI(ctx, os.Args[1:]).Run()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		os.Exit(1)
	}

	stop()
	os.Exit(exitCode)
}

func newCLI(ctx context.Context, args []string) *cli.CLI {
	commands := map[string]cli.CommandFactory{
		"compress": func() (cli.Command, error) {
			return &CompressCommand{
				Ctx:    ctx,
				Stdin:  os.Stdin,
				Stdout: os.Stdout,
				Stderr: os.Stderr,
			}, nil
		},
		"decompress": func() (cli.Command, error) {
			return &DecompressCommand{
				Ctx:    ctx,
				Stdin:  os.Stdin,
				Stdout: os.Stdout,
				Stderr: os.Stderr,
			}, nil
		},
		"inspect": func() (cli.Command, error) {
			return &InspectCommand{
				Stdin:  os.Stdin,
				Stdout: os.Stdout,
				Stderr: os.Stderr,
			}, nil
		},
	}

	return &cli.CLI{
		Name:     "prosto",
		Version:  version,
		Args:     args,
		Commands: commands,
		HelpFunc: cli.BasicHelpFunc("prosto"),
	}
}
