package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/teemow/bookify/cmd"
)

// version is set by goreleaser.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	cmd.SetVersion(version)
	code := cmd.Execute(ctx)
	stop()
	os.Exit(code)
}
