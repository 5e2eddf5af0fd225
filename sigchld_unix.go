//go:build !windows

package main

import (
	"context"
	"os"

	"github.com/fd0/wmconf/internal/childsig"
)

// watchChildren logs SIGCHLD received outside of command sources until ctx
// is cancelled. While a command source runs the subscription is suspended.
func watchChildren(ctx context.Context) {
	ch := make(chan os.Signal, 1)
	childsig.Default.Handle(ch)

	go func() {
		defer childsig.Default.Unhandle()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ch:
				log.Debug("received SIGCHLD")
			}
		}
	}()
}
