package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/pybundle/internal/cli"
	"github.com/matzehuels/pybundle/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.New(os.Stderr, cli.LogInfo).RootCommand().ExecuteContext(ctx)
	stop()

	code := cli.ExitCode(err)
	if code != 0 && code != 130 {
		fmt.Fprintln(os.Stderr, "Error:", errors.UserMessage(err))
	}
	os.Exit(code)
}
