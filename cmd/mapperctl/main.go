// mapperctl, model tanımlarını MySQL statement'larına derleyen ve aggregate
// satırları decode eden komut satırı aracıdır.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/biyonik/datamapper/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		cli.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
