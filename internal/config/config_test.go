package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, DefaultServer, cfg.ServerURL)
	assert.Equal(t, DefaultSTUN, cfg.STUNServer)
	assert.Empty(t, cfg.TURNServer)
	assert.Equal(t, DefaultOfferPoll, cfg.OfferPollInterval)
	assert.Equal(t, DefaultCandidatePoll, cfg.CandidatePollInterval)
}

func TestLoad_FlagsWinOverEnv(t *testing.T) {
	t.Setenv("SIGNALING_SERVER", "http://env.example.com")
	t.Setenv("STUN_SERVER", "stun:env.example.com:3478")

	cfg, err := Load(Options{Server: "http://flag.example.com"})
	require.NoError(t, err)

	assert.Equal(t, "http://flag.example.com", cfg.ServerURL)
	assert.Equal(t, "stun:env.example.com:3478", cfg.STUNServer)
}

func TestLoad_TURNRequiresCredentials(t *testing.T) {
	_, err := Load(Options{TURNServer: "turn:turn.example.com"})
	assert.Error(t, err)

	cfg, err := Load(Options{
		TURNServer: "turn:turn.example.com",
		TURNUser:   "alice",
		TURNPass:   "secret",
	})
	require.NoError(t, err)

	servers := cfg.GetTURNServers()
	require.Len(t, servers, 2)
	assert.Contains(t, servers[0], "transport=udp")

	user, pass := cfg.GetTURNCredentials()
	assert.Equal(t, "alice", user)
	assert.Equal(t, "secret", pass)
}

func TestGetViewerCommand(t *testing.T) {
	cfg, err := Load(Options{Server: "http://relay.example.com"})
	require.NoError(t, err)
	cmd := cfg.GetViewerCommand("12345678")
	assert.Equal(t, "hasscreen view --room 12345678 --server http://relay.example.com", cmd)
}
