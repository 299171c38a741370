package cli

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/hasanasadov/hasscreen/internal/ui"
)

// Version is stamped at build time.
var Version = "dev"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "hasscreen",
	Short:   "Share your screen with a peer over WebRTC",
	Long: `HasScreen shares a screen directly between two devices using WebRTC
technology. A lightweight signaling server only relays session
descriptions and ICE candidates; the media itself flows peer to peer.
One side presents, the other views, paired by a short room code.`,
	Version: Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		os.Exit(0)
	}()

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}
