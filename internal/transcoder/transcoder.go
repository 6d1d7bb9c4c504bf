package transcoder

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"media-ingest/internal/logging"
	"media-ingest/internal/storage"
)

// Transcoder converts uploaded videos into HLS rendition sets and
// publishes them through the configured store.
type Transcoder struct {
	workDir   string
	store     storage.Store
	processes map[string]*exec.Cmd
	processMu sync.Mutex
}

// VideoInfo contains information about a video file.
type VideoInfo struct {
	Duration float64 `json:"duration"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Codec    string  `json:"codec"`
}

// New creates a new Transcoder. workDir holds intermediate rendition
// output until it is published to the store.
func New(workDir string, store storage.Store) *Transcoder {
	return &Transcoder{
		workDir:   workDir,
		store:     store,
		processes: make(map[string]*exec.Cmd),
	}
}

// GetVideoInfo retrieves codec and dimension information about a video file.
func (t *Transcoder) GetVideoInfo(ctx context.Context, filePath string) (*VideoInfo, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe error: %w - %s", err, stderr.String())
	}

	return parseVideoInfo(stdout.String()), nil
}

// parseVideoInfo pulls the fields we care about out of ffprobe's JSON
// output without a full decode.
func parseVideoInfo(output string) *VideoInfo {
	info := &VideoInfo{}

	info.Duration, _ = strconv.ParseFloat(parseStringField(output, `"duration"`), 64)
	info.Codec = parseStringField(output, `"codec_name"`)
	info.Width = parseIntField(output, `"width"`)
	info.Height = parseIntField(output, `"height"`)

	return info
}

// rawField returns the text between a field's colon and the next comma
// or closing brace. The last field of a pretty-printed object has no
// trailing comma, so the brace fallback carries surrounding whitespace
// that callers must trim.
func rawField(output, field string) (string, bool) {
	idx := strings.Index(output, field)
	if idx == -1 {
		return "", false
	}
	start := strings.Index(output[idx:], ":") + idx + 1
	endComma := strings.Index(output[start:], ",")
	endBrace := strings.Index(output[start:], "}")
	end := endComma
	if end == -1 || (endBrace != -1 && endBrace < end) {
		end = endBrace
	}
	if end == -1 {
		return "", false
	}
	return output[start : start+end], true
}

func parseStringField(output, field string) string {
	raw, ok := rawField(output, field)
	if !ok {
		return ""
	}
	return strings.Trim(strings.TrimSpace(raw), `"`)
}

func parseIntField(output, field string) int {
	raw, ok := rawField(output, field)
	if !ok {
		return 0
	}
	v, _ := strconv.Atoi(strings.TrimSpace(raw))
	return v
}

// Transcode produces the HLS rendition set for one job, writes the
// master playlist, and publishes the whole tree under the job's
// prefix. The intermediate work directory is always removed.
func (t *Transcoder) Transcode(ctx context.Context, jobID string, sourcePath string) error {
	info, err := t.GetVideoInfo(ctx, sourcePath)
	if err != nil {
		return err
	}

	renditions := RenditionsFor(info.Width, info.Height)
	logging.Info("transcoder: job %s (%dx%d, %s) -> %d renditions",
		jobID, info.Width, info.Height, info.Codec, len(renditions))

	outDir := filepath.Join(t.workDir, jobID)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create work directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(outDir); err != nil {
			logging.Warn("transcoder: could not remove work dir %s: %v", outDir, err)
		}
	}()

	for _, r := range renditions {
		if err := t.transcodeRendition(ctx, jobID, sourcePath, outDir, r); err != nil {
			return err
		}
	}

	master := MasterPlaylistWithSource(renditions, info.Width, info.Height)
	masterPath := filepath.Join(outDir, "master.m3u8")
	if err := os.WriteFile(masterPath, []byte(master), 0o644); err != nil {
		return fmt.Errorf("failed to write master playlist: %w", err)
	}

	if err := t.store.SaveDir(ctx, "video-hls/"+jobID, outDir); err != nil {
		return fmt.Errorf("failed to publish renditions: %w", err)
	}

	return nil
}

// transcodeRendition runs a single ffmpeg pass producing one variant
// playlist plus its segments under the rendition's subdirectory.
func (t *Transcoder) transcodeRendition(ctx context.Context, jobID, sourcePath, outDir string, r Rendition) error {
	renditionDir := filepath.Join(outDir, r.Name)
	if err := os.MkdirAll(renditionDir, 0o755); err != nil {
		return fmt.Errorf("failed to create rendition directory: %w", err)
	}

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", sourcePath,
		"-c:v", "libx264",
		"-preset", "fast",
		"-vf", fmt.Sprintf("scale=-2:%d", r.Height),
		"-b:v", r.VideoBitrate,
		"-maxrate", r.MaxRate,
		"-bufsize", r.BufSize,
		"-pix_fmt", "yuv420p",
		"-sc_threshold", "0",
		"-c:a", "aac",
		"-b:a", "128k",
		"-ac", "2",
		"-f", "hls",
		"-hls_time", "4",
		"-hls_list_size", "0",
		"-hls_playlist_type", "vod",
		"-hls_flags", "independent_segments",
		"-hls_segment_filename", filepath.Join(renditionDir, "segment_%03d.ts"),
		filepath.Join(renditionDir, "index.m3u8"),
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	t.processMu.Lock()
	t.processes[jobID] = cmd
	t.processMu.Unlock()

	defer func() {
		t.processMu.Lock()
		delete(t.processes, jobID)
		t.processMu.Unlock()
	}()

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logging.Error("FFmpeg stderr: %s", stderr.String())
		return fmt.Errorf("transcoding error for %s: %w", r.Name, err)
	}

	return nil
}

// Cleanup stops all active transcoding processes.
func (t *Transcoder) Cleanup() {
	t.processMu.Lock()
	defer t.processMu.Unlock()

	for id, cmd := range t.processes {
		if cmd.Process != nil {
			logging.Info("Killing transcoding process for job: %s", id)
			if err := cmd.Process.Kill(); err != nil {
				logging.Warn("failed to kill transcoding process for job %s: %v", id, err)
			}
		}
	}
}
