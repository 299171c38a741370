package rtc

import (
	"fmt"

	"github.com/pion/webrtc/v4"

	"github.com/hasanasadov/hasscreen/internal/config"
	"github.com/hasanasadov/hasscreen/internal/signaling"
)

// NewPeerConnection builds a peer connection from the configured ICE
// servers.
func NewPeerConnection(cfg *config.Config) (*webrtc.PeerConnection, error) {
	iceServers := []webrtc.ICEServer{{URLs: cfg.GetSTUNServers()}}

	if turnServers := cfg.GetTURNServers(); turnServers != nil {
		username, password := cfg.GetTURNCredentials()
		iceServers = append(iceServers, webrtc.ICEServer{
			URLs:       turnServers,
			Username:   username,
			Credential: password,
		})
	}

	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{
		ICEServers: iceServers,
	})
	if err != nil {
		return nil, fmt.Errorf("create peer connection: %w", err)
	}
	return pc, nil
}

// CreateOffer produces the local offer and applies it locally. The
// returned description is the one to publish; ICE candidates trickle
// separately through OnICECandidate.
func CreateOffer(pc *webrtc.PeerConnection) (*webrtc.SessionDescription, error) {
	offer, err := pc.CreateOffer(nil)
	if err != nil {
		return nil, fmt.Errorf("create offer: %w", err)
	}
	if err = pc.SetLocalDescription(offer); err != nil {
		return nil, fmt.Errorf("set local description: %w", err)
	}
	return pc.LocalDescription(), nil
}

// CreateAnswer applies the remote offer and produces the local answer.
func CreateAnswer(pc *webrtc.PeerConnection, offer webrtc.SessionDescription) (*webrtc.SessionDescription, error) {
	if err := pc.SetRemoteDescription(offer); err != nil {
		return nil, fmt.Errorf("set remote description: %w", err)
	}
	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		return nil, fmt.Errorf("create answer: %w", err)
	}
	if err = pc.SetLocalDescription(answer); err != nil {
		return nil, fmt.Errorf("set local description: %w", err)
	}
	return pc.LocalDescription(), nil
}

// DescriptionToWire converts a pion session description to its wire
// form.
func DescriptionToWire(d *webrtc.SessionDescription) signaling.SessionDescription {
	return signaling.SessionDescription{Type: d.Type.String(), SDP: d.SDP}
}

// DescriptionFromWire converts a wire session description to pion's.
func DescriptionFromWire(d signaling.SessionDescription) webrtc.SessionDescription {
	return webrtc.SessionDescription{Type: webrtc.NewSDPType(d.Type), SDP: d.SDP}
}

// CandidateToWire converts a gathered local candidate to wire form.
func CandidateToWire(c *webrtc.ICECandidate) signaling.CandidateInit {
	init := c.ToJSON()
	return signaling.CandidateInit{
		Candidate:        init.Candidate,
		SDPMid:           init.SDPMid,
		SDPMLineIndex:    init.SDPMLineIndex,
		UsernameFragment: init.UsernameFragment,
	}
}

// CandidateFromWire converts a wire candidate to pion's init form.
func CandidateFromWire(c signaling.CandidateInit) webrtc.ICECandidateInit {
	return webrtc.ICECandidateInit{
		Candidate:        c.Candidate,
		SDPMid:           c.SDPMid,
		SDPMLineIndex:    c.SDPMLineIndex,
		UsernameFragment: c.UsernameFragment,
	}
}
