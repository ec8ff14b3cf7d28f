package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"remuxd/internal/media"
)

// TrackInfo describes a single track reported by mkvmerge identification.
type TrackInfo struct {
	ID         int
	Kind       media.TrackKind
	Codec      string
	Language   string
	Name       string
	Default    *bool
	Forced     *bool
	BitrateBps int64
}

// ContainerInfo is the parsed identification result for one container.
type ContainerInfo struct {
	Path            string
	DurationSeconds float64
	Tracks          []TrackInfo
}

// TrackIDsByKind returns the track ids of the given kind in report order.
func (c ContainerInfo) TrackIDsByKind(kind media.TrackKind) []int {
	var ids []int
	for _, track := range c.Tracks {
		if track.Kind == kind {
			ids = append(ids, track.ID)
		}
	}
	return ids
}

// Prober identifies containers. The command synthesizer consumes it to
// resolve external multi-track files.
type Prober interface {
	Probe(ctx context.Context, path string) (ContainerInfo, error)
}

// Executor abstracts command execution for testability.
type Executor interface {
	Output(ctx context.Context, binary string, args []string) ([]byte, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client probes containers through mkvmerge JSON identification mode.
type Client struct {
	binary string
	exec   Executor
}

// New constructs a probing client around the given mkvmerge binary.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("mkvmerge binary required")
	}
	client := &Client{binary: binary, exec: commandExecutor{}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Probe runs `mkvmerge -J` against path and decodes the identification.
func (c *Client) Probe(ctx context.Context, path string) (ContainerInfo, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return ContainerInfo{}, errors.New("probe: empty path")
	}

	output, err := c.exec.Output(ctx, c.binary, []string{"-J", path})
	if err != nil {
		return ContainerInfo{}, fmt.Errorf("mkvmerge identify: %w", err)
	}

	var payload identifyPayload
	if err := json.Unmarshal(output, &payload); err != nil {
		return ContainerInfo{}, fmt.Errorf("mkvmerge identify parse: %w", err)
	}

	info := ContainerInfo{Path: path}
	// mkvmerge reports container duration in nanoseconds.
	if payload.Container.Properties.Duration > 0 {
		info.DurationSeconds = float64(payload.Container.Properties.Duration) / 1e9
	}
	for _, track := range payload.Tracks {
		kind, ok := mapTrackType(track.Type)
		if !ok {
			continue
		}
		info.Tracks = append(info.Tracks, TrackInfo{
			ID:         track.ID,
			Kind:       kind,
			Codec:      track.Codec,
			Language:   track.Properties.Language,
			Name:       track.Properties.TrackName,
			Default:    track.Properties.DefaultTrack,
			Forced:     track.Properties.ForcedTrack,
			BitrateBps: parseBitrate(track.Properties.TagBps),
		})
	}
	return info, nil
}

type identifyPayload struct {
	Container struct {
		Properties struct {
			Duration int64 `json:"duration"`
		} `json:"properties"`
	} `json:"container"`
	Tracks []struct {
		ID         int    `json:"id"`
		Type       string `json:"type"`
		Codec      string `json:"codec"`
		Properties struct {
			Language     string `json:"language"`
			TrackName    string `json:"track_name"`
			DefaultTrack *bool  `json:"default_track"`
			ForcedTrack  *bool  `json:"forced_track"`
			TagBps       flexInt `json:"tag_bps"`
		} `json:"properties"`
	} `json:"tracks"`
}

// flexInt accepts either a JSON number or a numeric string; mkvmerge has
// emitted both encodings for tag_bps across versions.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	trimmed := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if trimmed == "" || trimmed == "null" {
		*f = 0
		return nil
	}
	parsed, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexInt(parsed)
	return nil
}

func parseBitrate(value flexInt) int64 {
	return int64(value)
}

func mapTrackType(value string) (media.TrackKind, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "video":
		return media.KindVideo, true
	case "audio":
		return media.KindAudio, true
	case "subtitles":
		return media.KindSubtitle, true
	default:
		return "", false
	}
}

type commandExecutor struct{}

func (commandExecutor) Output(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		return nil, err
	}
	return output, nil
}
