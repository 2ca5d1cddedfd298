package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/namuan/dev-boost-sub001/pkg/logging"
	"github.com/namuan/dev-boost-sub001/pkg/models"
	"github.com/namuan/dev-boost-sub001/pkg/settings"
)

const (
	videoTimeout      = 300 * time.Second
	frameTimeout      = 120 * time.Second
	gifAssembleTimeout = 180 * time.Second
)

// VideoEngine optimizes videos with ffmpeg. Unlike images there is no
// in-process fallback; ffmpeg is a hard requirement. GIF output goes
// through gifski when installed because it produces far better palettes,
// with an ffmpeg palettegen pipeline as the fallback.
type VideoEngine struct {
	runner Runner
	tools  *ToolCache
	logger logging.Logger
	temps  TempRegistry
}

func NewVideoEngine(runner Runner, tools *ToolCache, logger logging.Logger) *VideoEngine {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &VideoEngine{runner: runner, tools: tools, logger: logger}
}

// SetTempRegistry registers a sink for temp artifact paths.
func (e *VideoEngine) SetTempRegistry(r TempRegistry) {
	e.temps = r
}

func (e *VideoEngine) track(path string) {
	if e.temps != nil {
		e.temps.Track(path)
	}
}

func (e *VideoEngine) Category() models.Category { return models.CategoryVideo }

func (e *VideoEngine) Available() bool { return e.tools.Available("ffmpeg") }

// VideoInfo is the subset of ffprobe output used for reporting.
type VideoInfo struct {
	Width    int
	Height   int
	Duration float64
	FPS      float64
	Codec    string
}

func (e *VideoEngine) Optimize(ctx context.Context, inputPath, outputPath string, s *settings.OptimizationSettings) (*Result, error) {
	if !e.Available() {
		return nil, fmt.Errorf("ffmpeg is not installed; video optimization requires ffmpeg")
	}

	// ffmpeg refuses to read and write the same file, so in-place runs
	// go through a sibling temp file that is renamed over the original.
	target := outputPath
	inPlace := samePath(inputPath, outputPath)
	if inPlace {
		target = tempSibling(outputPath)
		e.track(target)
		defer os.Remove(target)
	}

	var result *Result
	var err error
	if isExt(outputPath, ".gif") {
		result, err = e.toGIF(ctx, inputPath, target, s)
	} else {
		result, err = e.transcode(ctx, inputPath, target, s)
	}
	if err != nil {
		return nil, err
	}

	if inPlace {
		if err := os.Rename(target, outputPath); err != nil {
			return nil, fmt.Errorf("replacing %s: %w", outputPath, err)
		}
	}
	result.Converted = !sameExt(inputPath, outputPath)
	return result, nil
}

func (e *VideoEngine) transcode(ctx context.Context, inputPath, outputPath string, s *settings.OptimizationSettings) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(outputPath))
	crf := s.EffectiveQuality(models.CategoryVideo)

	args := []string{"-y", "-i", inputPath}

	switch ext {
	case ".webm":
		args = append(args, "-c:v", "libvpx-vp9")
		if s.VideoBitrate != nil {
			args = append(args, "-b:v", *s.VideoBitrate)
		} else {
			args = append(args, "-crf", strconv.Itoa(crf), "-b:v", "0")
		}
		args = append(args, "-c:a", "libopus", "-b:a", "128k")
	default:
		args = append(args, "-c:v", "libx264", "-preset", "medium")
		if s.VideoBitrate != nil {
			args = append(args, "-b:v", *s.VideoBitrate)
		} else {
			args = append(args, "-crf", strconv.Itoa(crf))
		}
		args = append(args, "-c:a", "aac", "-b:a", "128k", "-movflags", "+faststart")
	}

	if filter := scaleFilter(s); filter != "" {
		args = append(args, "-vf", filter)
	}
	if s.VideoFPS != nil {
		args = append(args, "-r", strconv.Itoa(*s.VideoFPS))
	}
	if !s.PreserveMetadata {
		args = append(args, "-map_metadata", "-1")
	}
	args = append(args, outputPath)

	res := e.runner.Run(ctx, videoTimeout, "ffmpeg", args...)
	if !res.Success {
		return nil, toolError("ffmpeg", res)
	}
	format := strings.TrimPrefix(ext, ".")
	return &Result{Method: "ffmpeg", Format: format, MetadataStripped: !s.PreserveMetadata}, nil
}

// toGIF converts a video to an animated GIF. gifski gets first shot via
// an intermediate frame dump; when it is missing the single-pass ffmpeg
// palette pipeline is used instead.
func (e *VideoEngine) toGIF(ctx context.Context, inputPath, outputPath string, s *settings.OptimizationSettings) (*Result, error) {
	fps := 15
	if s.VideoFPS != nil {
		fps = *s.VideoFPS
	}

	if e.tools.Available("gifski") {
		result, err := e.gifViaGifski(ctx, inputPath, outputPath, fps, s)
		if err == nil {
			return result, nil
		}
		e.logger.Warn(ctx, "gifski conversion failed, falling back to ffmpeg palette",
			logging.FailureFields(inputPath, err))
	}

	filter := fmt.Sprintf(
		"fps=%d,scale=480:-1:flags=lanczos,split[a][b];[a]palettegen[p];[b][p]paletteuse",
		fps,
	)
	args := []string{"-y", "-i", inputPath, "-filter_complex", filter, outputPath}
	res := e.runner.Run(ctx, videoTimeout, "ffmpeg", args...)
	if !res.Success {
		return nil, toolError("ffmpeg", res)
	}
	return &Result{Method: "ffmpeg-palette", Format: "gif"}, nil
}

func (e *VideoEngine) gifViaGifski(ctx context.Context, inputPath, outputPath string, fps int, s *settings.OptimizationSettings) (*Result, error) {
	frameDir, err := os.MkdirTemp("", "devboost-opt-frames-")
	if err != nil {
		return nil, err
	}
	e.track(frameDir)
	defer os.RemoveAll(frameDir)

	pattern := filepath.Join(frameDir, "frame_%04d.png")
	extract := e.runner.Run(ctx, frameTimeout, "ffmpeg",
		"-y", "-i", inputPath, "-vf", fmt.Sprintf("fps=%d", fps), pattern)
	if !extract.Success {
		return nil, toolError("ffmpeg", extract)
	}

	frames, err := filepath.Glob(filepath.Join(frameDir, "frame_*.png"))
	if err != nil || len(frames) == 0 {
		return nil, fmt.Errorf("no frames extracted from %s", inputPath)
	}

	quality := s.EffectiveQuality(models.CategoryImage)
	args := []string{"--fps", strconv.Itoa(fps), "--quality", strconv.Itoa(quality), "-o", outputPath}
	if w, h, ok := resizeBounds(s); ok {
		args = append(args, "--width", strconv.Itoa(w), "--height", strconv.Itoa(h))
	}
	args = append(args, frames...)

	res := e.runner.Run(ctx, gifAssembleTimeout, "gifski", args...)
	if !res.Success {
		return nil, toolError("gifski", res)
	}
	return &Result{Method: "gifski", Format: "gif"}, nil
}

// Probe inspects a video with ffprobe. It is best effort; a missing
// ffprobe or unparsable output returns an error, never a partial zero
// value presented as truth.
func (e *VideoEngine) Probe(ctx context.Context, path string) (*VideoInfo, error) {
	if !e.tools.Available("ffprobe") {
		return nil, fmt.Errorf("ffprobe is not installed")
	}
	res := e.runner.Run(ctx, probeTimeout, "ffprobe",
		"-v", "quiet", "-print_format", "json", "-show_format", "-show_streams", path)
	if !res.Success {
		return nil, toolError("ffprobe", res)
	}

	var payload struct {
		Streams []struct {
			CodecType  string `json:"codec_type"`
			CodecName  string `json:"codec_name"`
			Width      int    `json:"width"`
			Height     int    `json:"height"`
			RFrameRate string `json:"r_frame_rate"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(res.Stdout), &payload); err != nil {
		return nil, fmt.Errorf("parsing ffprobe output for %s: %w", path, err)
	}

	info := &VideoInfo{}
	info.Duration, _ = strconv.ParseFloat(payload.Format.Duration, 64)
	for _, st := range payload.Streams {
		if st.CodecType != "video" {
			continue
		}
		info.Width = st.Width
		info.Height = st.Height
		info.Codec = st.CodecName
		info.FPS = parseFrameRate(st.RFrameRate)
		break
	}
	return info, nil
}

// parseFrameRate parses ffprobe's "num/den" rational frame rate.
func parseFrameRate(raw string) float64 {
	num, den, found := strings.Cut(raw, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

// scaleFilter builds an ffmpeg scale expression that only downsizes and
// keeps both dimensions even, which libx264 requires.
func scaleFilter(s *settings.OptimizationSettings) string {
	w, h, ok := resizeBounds(s)
	if !ok {
		return ""
	}
	return fmt.Sprintf(
		"scale=w='min(iw,%d)':h='min(ih,%d)':force_original_aspect_ratio=decrease:force_divisible_by=2",
		w, h,
	)
}

func tempSibling(path string) string {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	return filepath.Join(dir, ".devboost-opt-"+base)
}
