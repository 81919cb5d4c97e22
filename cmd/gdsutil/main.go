package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudcalvin/gdsutil/internal/cli"
	gdserrors "github.com/cloudcalvin/gdsutil/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := cli.New(os.Stderr, cli.LogInfo)
	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		msg := gdserrors.UserMessage(err)
		if subject := gdserrors.GetSubject(err); subject != "" {
			c.Logger.Error(msg, "code", gdserrors.GetCode(err), "subject", subject)
		} else {
			fmt.Fprintln(os.Stderr, "Error:", msg)
		}
		os.Exit(1)
	}
}
