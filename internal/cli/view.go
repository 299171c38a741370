package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hasanasadov/hasscreen/internal/config"
	"github.com/hasanasadov/hasscreen/internal/media"
	"github.com/hasanasadov/hasscreen/internal/session"
	"github.com/hasanasadov/hasscreen/internal/signaling"
	"github.com/hasanasadov/hasscreen/internal/ui"
)

var (
	flagViewRoom   string
	flagViewOutput string
	flagViewWatch  bool

	flagViewServer   string
	flagViewSTUN     string
	flagViewTURN     string
	flagViewTURNUser string
	flagViewTURNPass string
)

var viewCmd = &cobra.Command{
	Use:     "view",
	Aliases: []string{"v"},
	Short:   "View a shared screen",
	Long: `Join a room as the viewer and receive the presenter's screen. The
incoming video is written to an IVF file for playback.

Examples:
  hasscreen view --room 12345678
  hasscreen view --room 12345678 --output screen.ivf`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return view(cmd.Context())
	},
}

func view(ctx context.Context) error {
	cfg, err := LoadConfig(config.Options{
		Server:     flagViewServer,
		STUNServer: flagViewSTUN,
		TURNServer: flagViewTURN,
		TURNUser:   flagViewTURNUser,
		TURNPass:   flagViewTURNPass,
	})
	if err != nil {
		return err
	}

	client := signaling.NewClient(cfg.ServerURL)
	if err := healthCheck(ctx, client); err != nil {
		return err
	}

	var sink media.Sink = media.NullSink{}
	if flagViewOutput != "" {
		sink = media.NewFileSink(flagViewOutput)
	}

	ctrl := session.New(cfg, client, nil, sink,
		session.WithUpdateFeed(flagViewWatch),
	)
	ctrl.SetRoom(flagViewRoom)
	defer ctrl.Leave()

	if err := ctrl.StartViewing(ctx); err != nil {
		return err
	}

	view := ui.NewSessionUI(ctrl.Snapshot(), ui.Actions{
		TogglePause: nil,
		Leave:       ctrl.Leave,
	})
	runSession(ctrl, view)
	return nil
}

func init() {
	rootCmd.AddCommand(viewCmd)

	viewCmd.Flags().StringVar(&flagViewRoom, "room", "", "Room code to join (required)")
	viewCmd.Flags().StringVarP(&flagViewOutput, "output", "o", "", "IVF file to record the stream to")
	viewCmd.Flags().BoolVar(&flagViewWatch, "watch", true, "Use the websocket update feed alongside polling")

	viewCmd.Flags().StringVar(&flagViewServer, "server", "", "Signaling server base URL")
	viewCmd.Flags().StringVar(&flagViewSTUN, "stun", "", "Custom STUN server")
	viewCmd.Flags().StringVar(&flagViewTURN, "turn", "", "Custom TURN server")
	viewCmd.Flags().StringVar(&flagViewTURNUser, "turn-user", "", "TURN username")
	viewCmd.Flags().StringVar(&flagViewTURNPass, "turn-pass", "", "TURN password")

	_ = viewCmd.MarkFlagRequired("room")
}
