package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pion/webrtc/v4"
	pionmedia "github.com/pion/webrtc/v4/pkg/media"
	"github.com/pion/webrtc/v4/pkg/media/ivfreader"
)

// ErrPermissionDenied reports that the user refused or cancelled the
// capture prompt. Callers treat it as a reportable condition, not a
// failure.
var ErrPermissionDenied = errors.New("capture permission denied")

// AcquireOptions carries per-acquisition capture settings.
type AcquireOptions struct {
	// Extend asks the source to provide an auxiliary surface and
	// capture that instead of the primary one. Sources without a
	// second surface treat it as mirror.
	Extend bool
}

// Stream is one live capture: a set of local tracks plus the controls
// the session needs over them.
type Stream interface {
	Tracks() []webrtc.TrackLocal

	// SetEnabled pauses or resumes sample production. Purely local,
	// no renegotiation.
	SetEnabled(enabled bool)

	// OnEnded registers fn to run when the capture ends outside the
	// session's control.
	OnEnded(fn func())

	Close() error
}

// Source supplies capture streams. Each Acquire returns a fresh
// stream so a stopped session can resume with a new capture.
type Source interface {
	Acquire(ctx context.Context, opts AcquireOptions) (Stream, error)
}

// FileSource loops a VP8/VP9 IVF file as the captured "screen".
type FileSource struct {
	path string
	loop bool
}

// NewFileSource creates a source reading the given IVF file. With
// loop false the stream ends at EOF, which is the closest a file gets
// to the user hitting the browser's native "stop sharing" control.
func NewFileSource(path string, loop bool) *FileSource {
	return &FileSource{path: path, loop: loop}
}

func (s *FileSource) Acquire(ctx context.Context, opts AcquireOptions) (Stream, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, ErrPermissionDenied
		}
		return nil, fmt.Errorf("open capture file: %w", err)
	}

	reader, header, err := ivfreader.NewWith(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("parse ivf header: %w", err)
	}

	var mimeType string
	switch header.FourCC {
	case "VP80":
		mimeType = webrtc.MimeTypeVP8
	case "VP90":
		mimeType = webrtc.MimeTypeVP9
	default:
		file.Close()
		return nil, fmt.Errorf("unsupported ivf codec %q", header.FourCC)
	}

	track, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: mimeType}, "video", "hasscreen")
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("create video track: %w", err)
	}

	frameDuration := time.Millisecond * time.Duration(
		(float32(header.TimebaseNumerator)/float32(header.TimebaseDenominator))*1000)
	if frameDuration <= 0 {
		frameDuration = 33 * time.Millisecond
	}

	st := &fileStream{
		track: track,
		file:  file,
		done:  make(chan struct{}),
	}
	st.enabled.Store(true)

	go st.pump(ctx, reader, s.loop, frameDuration)

	return st, nil
}

type fileStream struct {
	track   *webrtc.TrackLocalStaticSample
	file    *os.File
	enabled atomic.Bool
	done    chan struct{}
	once    sync.Once

	mu    sync.Mutex
	ended []func()
}

func (s *fileStream) Tracks() []webrtc.TrackLocal {
	return []webrtc.TrackLocal{s.track}
}

func (s *fileStream) SetEnabled(enabled bool) {
	s.enabled.Store(enabled)
}

func (s *fileStream) OnEnded(fn func()) {
	s.mu.Lock()
	s.ended = append(s.ended, fn)
	s.mu.Unlock()
}

func (s *fileStream) Close() error {
	s.once.Do(func() { close(s.done) })
	return s.file.Close()
}

func (s *fileStream) fireEnded() {
	s.mu.Lock()
	fns := s.ended
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// pump writes frames at the file's timebase until the stream closes,
// the context ends, or the file runs out with looping off.
func (s *fileStream) pump(ctx context.Context, reader *ivfreader.IVFReader, loop bool, frameDuration time.Duration) {
	ticker := time.NewTicker(frameDuration)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		frame, _, err := reader.ParseNextFrame()
		if errors.Is(err, io.EOF) {
			if !loop {
				s.fireEnded()
				return
			}
			if _, err := s.file.Seek(0, io.SeekStart); err != nil {
				s.fireEnded()
				return
			}
			if reader, _, err = ivfreader.NewWith(s.file); err != nil {
				s.fireEnded()
				return
			}
			continue
		}
		if err != nil {
			s.fireEnded()
			return
		}

		if !s.enabled.Load() {
			// Paused: keep consuming the timeline, send nothing.
			continue
		}
		if err := s.track.WriteSample(pionmedia.Sample{Data: frame, Duration: frameDuration}); err != nil {
			return
		}
	}
}
