package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hasanasadov/hasscreen/internal/config"
	"github.com/hasanasadov/hasscreen/internal/media"
	"github.com/hasanasadov/hasscreen/internal/session"
	"github.com/hasanasadov/hasscreen/internal/signaling"
	"github.com/hasanasadov/hasscreen/internal/ui"
)

var (
	flagServer   string
	flagSTUN     string
	flagTURN     string
	flagTURNUser string
	flagTURNPass string

	flagRoom   string
	flagMode   string
	flagSource string
	flagLoop   bool
	flagWatch  bool
)

var presentCmd = &cobra.Command{
	Use:     "present",
	Aliases: []string{"p"},
	Short:   "Share a screen recording with a viewer",
	Long: `Share a screen with a viewer over WebRTC. The video source is an
IVF screen recording (VP8 or VP9) streamed as if it were live capture.

Examples:
  hasscreen present --source screen.ivf
  hasscreen present --source screen.ivf --room 12345678 --loop
  hasscreen present --source screen.ivf --mode extend`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagSource == "" {
			return fmt.Errorf("no video source specified, use --source")
		}
		return present(cmd.Context())
	},
}

func present(ctx context.Context) error {
	cfg, err := LoadConfig(config.Options{
		Server:     flagServer,
		STUNServer: flagSTUN,
		TURNServer: flagTURN,
		TURNUser:   flagTURNUser,
		TURNPass:   flagTURNPass,
	})
	if err != nil {
		return err
	}

	mode := session.ModeMirror
	switch flagMode {
	case "", "mirror":
	case "extend":
		mode = session.ModeExtend
	default:
		return fmt.Errorf("unknown mode %q, want mirror or extend", flagMode)
	}

	room := flagRoom
	if room == "" {
		room = session.GenerateRoomCode()
	}

	client := signaling.NewClient(cfg.ServerURL)
	if err := healthCheck(ctx, client); err != nil {
		return err
	}

	source := media.NewFileSource(flagSource, flagLoop)
	ctrl := session.New(cfg, client, source, media.NullSink{},
		session.WithUpdateFeed(flagWatch),
	)
	ctrl.SetRoom(room)
	ctrl.SetMode(mode)
	defer ctrl.Leave()

	ui.NewRoomInfo(room, cfg.GetViewerCommand(room)).Render()

	if err := ctrl.StartPresenting(ctx); err != nil {
		return err
	}

	view := ui.NewSessionUI(ctrl.Snapshot(), ui.Actions{
		TogglePause: ctrl.TogglePause,
		Stop: func() {
			ctrl.StopPresenting(context.Background())
		},
		Resume: func() {
			if err := ctrl.ResumePresenting(context.Background()); err != nil {
				ui.PrintError(err.Error())
			}
		},
		Leave: ctrl.Leave,
	})
	runSession(ctrl, view)
	return nil
}

func init() {
	rootCmd.AddCommand(presentCmd)

	presentCmd.Flags().StringVar(&flagRoom, "room", "", "Room code (generated when empty)")
	presentCmd.Flags().StringVarP(&flagMode, "mode", "m", "mirror", "Capture mode: mirror or extend")
	presentCmd.Flags().StringVarP(&flagSource, "source", "i", "", "IVF video file to share")
	presentCmd.Flags().BoolVar(&flagLoop, "loop", false, "Loop the source when it ends")
	presentCmd.Flags().BoolVar(&flagWatch, "watch", true, "Use the websocket update feed alongside polling")

	presentCmd.Flags().StringVar(&flagServer, "server", "", "Signaling server base URL")
	presentCmd.Flags().StringVarP(&flagSTUN, "stun", "s", "", "Custom STUN server")
	presentCmd.Flags().StringVarP(&flagTURN, "turn", "t", "", "Custom TURN server")
	presentCmd.Flags().StringVarP(&flagTURNUser, "turn-user", "u", "", "TURN username")
	presentCmd.Flags().StringVarP(&flagTURNPass, "turn-pass", "p", "", "TURN password")
}
