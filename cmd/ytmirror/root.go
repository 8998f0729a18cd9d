package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// global flags
	apiURL      string
	lrclibURL   string
	delayMs     int
	position    string
	noLyrics    bool
	noCache     bool
	enableMPRIS bool
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "ytmirror",
	Short: "terminal mirror of a youtube music desktop player",
	Long: `ytmirror connects to a local YouTube Music API server, mirrors its
playback state, and displays synchronized lyrics in the terminal.

when run without a subcommand, it starts the interactive viewer.`,
	Version: "1.0.0",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMirror(cmd, args)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&apiURL, "api-url", "a", "", "youtube music api server url (e.g., http://localhost:26538)")
	rootCmd.PersistentFlags().StringVar(&lrclibURL, "lrclib-url", "", "custom lrclib api url")
	rootCmd.PersistentFlags().IntVarP(&delayMs, "delay", "d", 0, "lyric delay offset in ms, snapped to 250 within [-2500, 2500]")
	rootCmd.PersistentFlags().StringVar(&position, "position", "", "lyrics position relative to the player (above|below)")
	rootCmd.PersistentFlags().BoolVar(&noLyrics, "no-lyrics", false, "disable the lyric view")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "disable the transcript disk cache")
	rootCmd.PersistentFlags().BoolVar(&enableMPRIS, "mpris", false, "publish the mirrored state on the session bus")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug|info|warn|error)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
