package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/hasanasadov/hasscreen/internal/config"
	"github.com/hasanasadov/hasscreen/internal/session"
	"github.com/hasanasadov/hasscreen/internal/signaling"
	"github.com/hasanasadov/hasscreen/internal/ui"
)

// LoadConfig resolves configuration from flags, environment and
// defaults.
func LoadConfig(opts config.Options) (*config.Config, error) {
	cfg, err := config.Load(opts)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// runSession drives a started controller's live view until the user
// quits, then prints the closing summary. Blocks until the UI exits.
func runSession(ctrl *session.Controller, view *ui.SessionUI) {
	ctrl.SetOnChange(view.Push)
	view.Start()
	defer view.Stop()

	view.Wait()

	last := ctrl.Snapshot()
	fmt.Println()
	ui.RenderSessionSummary(ui.SessionSummary{
		Role:     string(last.Role),
		Room:     last.Room,
		Status:   last.Status,
		Duration: view.Elapsed().Round(time.Second).String(),
	})
}

// healthCheck verifies the signaling server is reachable before a
// session starts, so a bad --server value fails fast instead of
// producing a silent polling loop.
func healthCheck(ctx context.Context, client *signaling.Client) error {
	sp := ui.NewWaitingSpinner("Checking signaling server...")
	sp.Start()

	if err := client.Health(ctx); err != nil {
		sp.Error("Signaling server unreachable")
		return fmt.Errorf("signaling server unreachable: %w", err)
	}
	sp.Success("Signaling server reachable at " + client.BaseURL())
	return nil
}
