package config

import (
	"fmt"
	"os"
	"time"
)

// Default configuration values
const (
	DefaultServer = "http://localhost:8080"
	DefaultSTUN   = "stun:stun.l.google.com:19302"

	DefaultOfferPoll     = 900 * time.Millisecond
	DefaultCandidatePoll = 800 * time.Millisecond
)

// Config holds client configuration.
type Config struct {
	// ServerURL is the signaling server base URL.
	ServerURL string

	// ICE servers for WebRTC
	STUNServer string
	TURNServer string
	TURNUser   string
	TURNPass   string

	// Polling cadence for the session controller.
	OfferPollInterval     time.Duration
	CandidatePollInterval time.Duration
}

// Options for loading config with CLI flag overrides
type Options struct {
	Server     string
	STUNServer string
	TURNServer string
	TURNUser   string
	TURNPass   string
}

// Load reads configuration with the following priority:
// 1. CLI flags (passed via Options) - highest priority
// 2. Environment variables
// 3. Hardcoded defaults - lowest priority
func Load(opts Options) (*Config, error) {
	server := firstNonEmpty(opts.Server, os.Getenv("SIGNALING_SERVER"), DefaultServer)
	stun := firstNonEmpty(opts.STUNServer, os.Getenv("STUN_SERVER"), DefaultSTUN)
	turn := firstNonEmpty(opts.TURNServer, os.Getenv("TURN_SERVER"))
	turnUser := firstNonEmpty(opts.TURNUser, os.Getenv("TURN_USERNAME"))
	turnPass := firstNonEmpty(opts.TURNPass, os.Getenv("TURN_PASSWORD"))

	if turn != "" && (turnUser == "" || turnPass == "") {
		return nil, fmt.Errorf("TURN server configured without credentials")
	}

	return &Config{
		ServerURL:             server,
		STUNServer:            stun,
		TURNServer:            turn,
		TURNUser:              turnUser,
		TURNPass:              turnPass,
		OfferPollInterval:     DefaultOfferPoll,
		CandidatePollInterval: DefaultCandidatePoll,
	}, nil
}

// GetSTUNServers returns STUN server URLs as strings
func (c *Config) GetSTUNServers() []string {
	return []string{c.STUNServer}
}

// GetTURNServers returns TURN server URLs if configured
func (c *Config) GetTURNServers() []string {
	if c.TURNServer == "" {
		return nil
	}
	return []string{
		fmt.Sprintf("%s:3478?transport=udp", c.TURNServer),
		fmt.Sprintf("%s:3478?transport=tcp", c.TURNServer),
	}
}

// GetTURNCredentials returns TURN username and password
func (c *Config) GetTURNCredentials() (string, string) {
	return c.TURNUser, c.TURNPass
}

// GetViewerCommand returns the command a viewer runs to join a room.
func (c *Config) GetViewerCommand(roomCode string) string {
	return fmt.Sprintf("hasscreen view --room %s --server %s", roomCode, c.ServerURL)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
