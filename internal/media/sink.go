package media

import (
	"fmt"
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media/ivfwriter"
)

// Sink is the presentation surface: local preview for the presenter,
// remote playback for the viewer. Detach must tolerate being called
// with nothing attached.
type Sink interface {
	PlayLocal(s Stream) error
	PlayRemote(track *webrtc.TrackRemote) error
	Detach()

	SupportsPictureInPicture() bool
	SetPictureInPicture(on bool) error
}

// FileSink records the remote track to an IVF file.
type FileSink struct {
	path string

	mu     sync.Mutex
	writer *ivfwriter.IVFWriter
}

func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// PlayLocal is a no-op: a recording sink has no preview surface.
func (s *FileSink) PlayLocal(Stream) error { return nil }

func (s *FileSink) PlayRemote(track *webrtc.TrackRemote) error {
	mimeType := track.Codec().MimeType
	if mimeType != webrtc.MimeTypeVP8 && mimeType != webrtc.MimeTypeVP9 {
		return fmt.Errorf("unsupported remote codec %q", mimeType)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A new track generation replaces the previous recording target.
	if s.writer != nil {
		s.writer.Close()
	}
	writer, err := ivfwriter.New(s.path, ivfwriter.WithCodec(mimeType))
	if err != nil {
		return fmt.Errorf("open recording file: %w", err)
	}
	s.writer = writer

	go func() {
		for {
			pkt, _, err := track.ReadRTP()
			if err != nil {
				return
			}
			s.mu.Lock()
			w := s.writer
			s.mu.Unlock()
			if w == nil {
				return
			}
			if err := w.WriteRTP(pkt); err != nil {
				return
			}
		}
	}()
	return nil
}

func (s *FileSink) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writer != nil {
		s.writer.Close()
		s.writer = nil
	}
}

func (s *FileSink) SupportsPictureInPicture() bool { return false }

func (s *FileSink) SetPictureInPicture(bool) error {
	return fmt.Errorf("picture-in-picture not supported")
}

// NullSink discards everything. Used by the presenter (no preview
// surface in a terminal) and by tests.
type NullSink struct{}

func (NullSink) PlayLocal(Stream) error               { return nil }
func (NullSink) PlayRemote(*webrtc.TrackRemote) error { return nil }
func (NullSink) Detach()                              {}
func (NullSink) SupportsPictureInPicture() bool       { return false }
func (NullSink) SetPictureInPicture(bool) error       { return nil }
