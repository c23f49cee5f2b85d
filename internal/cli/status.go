package cli

import (
	"context"
	"fmt"

	"github.com/cruciblehq/cruxpkg/internal/client"
)

// Represents the 'cruxpkg status' command.
type StatusCmd struct{}

// Executes the status command.
func (c *StatusCmd) Run(ctx context.Context) error {
	status, err := client.Status(ctx, socketPath())
	if err != nil {
		return err
	}

	fmt.Printf("version: %s\n", status.Version)
	fmt.Printf("pid:     %d\n", status.Pid)
	fmt.Printf("uptime:  %s\n", status.Uptime)
	fmt.Printf("builds:  %d (%d active)\n", status.Builds, status.Active)
	fmt.Printf("cleans:  %d\n", status.Cleans)
	return nil
}

// Represents the 'cruxpkg stop' command.
type StopCmd struct{}

// Executes the stop command.
func (c *StopCmd) Run(ctx context.Context) error {
	return client.Shutdown(ctx, socketPath())
}
