package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/inkwell-ai/inkwell-api/internal/domain"
	"github.com/inkwell-ai/inkwell-api/internal/generation"
)

const defaultVideoFPS = 24

// Composer implements generation.VideoGenerator by driving ffmpeg: each
// scene becomes a still-image segment timed to its narration, and the
// segments are concatenated into the final video.
type Composer struct {
	store      *LocalStore
	ffmpegPath string
	logger     *slog.Logger

	// run executes one ffmpeg invocation. Swapped in tests.
	run func(ctx context.Context, args ...string) error
}

// NewComposer creates a Composer. ffmpegPath defaults to "ffmpeg" on PATH.
func NewComposer(store *LocalStore, ffmpegPath string, logger *slog.Logger) (*Composer, error) {
	if store == nil {
		return nil, errors.New("media store cannot be nil")
	}
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Composer{
		store:      store,
		ffmpegPath: ffmpegPath,
		logger:     logger.With(slog.String("component", "video_composer")),
	}
	c.run = c.execFFmpeg
	return c, nil
}

// ComposeVideo implements generation.VideoGenerator. Image and audio URLs
// are positional: index i of each belongs to scene i. Sub-progress is
// reported per rendered segment.
func (c *Composer) ComposeVideo(ctx context.Context, opts generation.VideoOptions, progress generation.ProgressFunc) (*domain.MediaAsset, error) {
	if len(opts.ImageURLs) == 0 {
		return nil, fmt.Errorf("%w: no scene images to compose", generation.ErrInvalidConfig)
	}
	if len(opts.ImageURLs) != len(opts.AudioURLs) {
		return nil, fmt.Errorf("%w: %d images but %d audio clips",
			generation.ErrInvalidConfig, len(opts.ImageURLs), len(opts.AudioURLs))
	}

	fps := opts.FPS
	if fps <= 0 {
		fps = defaultVideoFPS
	}

	workDir, err := os.MkdirTemp("", "inkwell-video-*")
	if err != nil {
		return nil, fmt.Errorf("create video work directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	total := len(opts.ImageURLs)
	segments := make([]string, 0, total)
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		imagePath, err := c.store.Resolve(opts.ImageURLs[i])
		if err != nil {
			return nil, fmt.Errorf("scene %d image: %w", i+1, err)
		}
		audioPath, err := c.store.Resolve(opts.AudioURLs[i])
		if err != nil {
			return nil, fmt.Errorf("scene %d audio: %w", i+1, err)
		}

		segment := filepath.Join(workDir, fmt.Sprintf("segment-%03d.mp4", i))
		if err := c.run(ctx,
			"-y",
			"-loop", "1",
			"-i", imagePath,
			"-i", audioPath,
			"-c:v", "libx264",
			"-tune", "stillimage",
			"-c:a", "aac",
			"-pix_fmt", "yuv420p",
			"-r", strconv.Itoa(fps),
			"-shortest",
			segment,
		); err != nil {
			return nil, fmt.Errorf("render scene %d: %w", i+1, err)
		}
		segments = append(segments, segment)

		if progress != nil {
			progress(float64(i+1)/float64(total+1)*100,
				fmt.Sprintf("Rendered segment %d/%d", i+1, total))
		}
	}

	listPath := filepath.Join(workDir, "segments.txt")
	var list strings.Builder
	for _, segment := range segments {
		fmt.Fprintf(&list, "file '%s'\n", segment)
	}
	if err := os.WriteFile(listPath, []byte(list.String()), 0o644); err != nil {
		return nil, fmt.Errorf("write segment list: %w", err)
	}

	name := fmt.Sprintf("story-%s.mp4", uuid.NewString()[:8])
	outputPath, url, err := c.store.Path("video", name)
	if err != nil {
		return nil, err
	}
	if err := c.run(ctx,
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outputPath,
	); err != nil {
		return nil, fmt.Errorf("concatenate segments: %w", err)
	}

	if progress != nil {
		progress(100, "Video composition complete")
	}
	c.logger.Info("video composed",
		slog.Int("segments", total),
		slog.String("url", url))
	return &domain.MediaAsset{
		URL:      url,
		Provider: "ffmpeg",
	}, nil
}

// execFFmpeg runs one ffmpeg invocation, surfacing the tail of stderr on
// failure since ffmpeg reports its errors there.
func (c *Composer) execFFmpeg(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := stderr.String()
		if len(detail) > 512 {
			detail = detail[len(detail)-512:]
		}
		return fmt.Errorf("%s: %w: %s", c.ffmpegPath, err, strings.TrimSpace(detail))
	}
	return nil
}
