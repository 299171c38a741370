package session

import "time"

// Role of this tab's participation. Assigned once per session;
// switching requires leaving and rejoining.
type Role string

const (
	RolePresenter Role = "presenter"
	RoleViewer    Role = "viewer"
)

// Mode selects what the presenter captures.
type Mode string

const (
	// ModeMirror shares the primary surface as-is.
	ModeMirror Mode = "mirror"

	// ModeExtend opens an auxiliary surface and shares that, so the
	// presenter's own screen stays private.
	ModeExtend Mode = "extend"
)

// Human-readable status strings surfaced to the UI. These are the
// only error channel the session exposes besides action errors.
const (
	StatusIdle             = "Idle"
	StatusStarting         = "Starting"
	StatusSharing          = "Sharing"
	StatusSharingMirror    = "Sharing (Mirror)"
	StatusSharingExtend    = "Sharing (Extend)"
	StatusConnected        = "Connected"
	StatusPaused           = "Paused"
	StatusStopped          = "Stopped"
	StatusWaitingForOffer  = "Waiting for offer..."
	StatusAnswerPosted     = "Answer posted"
	StatusPresenterStopped = "Presenter stopped"
	StatusShareCancelled   = "Share cancelled"
	StatusFailedToStart    = "Failed to start"
	StatusFailedToJoin     = "Failed to join"
	StatusLeft             = "Left"
)

// Tint is the coarse visual state the surrounding UI colors itself
// by.
type Tint string

const (
	TintIdle      Tint = "idle"
	TintAlone     Tint = "alone"
	TintConnected Tint = "connected"
	TintPaused    Tint = "paused"
	TintStopped   Tint = "stopped"
)

// Snapshot is the observable state bundle handed to the UI on every
// change.
type Snapshot struct {
	Role   Role
	Mode   Mode
	Room   string
	Joined bool
	Status string

	Paused             bool
	Stopped            bool
	HasRemote          bool
	ShowStoppedOverlay bool
	PictureInPicture   bool

	// LastHeartbeat is the receive time of the presenter's most
	// recent control-channel heartbeat; zero until one arrives.
	LastHeartbeat time.Time
}

// Tint derives the visual state from the snapshot.
func (s Snapshot) Tint() Tint {
	switch s.Role {
	case RolePresenter:
		switch {
		case s.Stopped:
			return TintStopped
		case s.Paused:
			return TintPaused
		case s.Status == StatusConnected:
			return TintConnected
		case s.Joined:
			return TintAlone
		}
	case RoleViewer:
		switch {
		case s.ShowStoppedOverlay:
			return TintStopped
		case s.HasRemote:
			return TintConnected
		case s.Joined:
			return TintAlone
		}
	}
	return TintIdle
}

// ShowLoading reports whether the viewer is joined but still waiting
// for media.
func (s Snapshot) ShowLoading() bool {
	return s.Role == RoleViewer && s.Joined && !s.ShowStoppedOverlay && !s.HasRemote
}
