package poster

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"postergeist/internal/history"
	"postergeist/internal/imaging"
	"postergeist/internal/location"
	"postergeist/internal/logging"
	"postergeist/internal/schedule"
	"postergeist/internal/services"
	"postergeist/internal/services/instagram"
	"postergeist/internal/services/openai"
	"postergeist/internal/services/vision"
	"postergeist/internal/textutil"
)

// tagSampleRatio is the share of collected tags attached to a post.
const tagSampleRatio = 0.65

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".gif":  true,
}

// InstagramClient is the slice of the Instagram API the poster needs.
type InstagramClient interface {
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	UploadPhoto(ctx context.Context, path, caption string, loc location.Candidate) (instagram.Upload, error)
	location.CandidateSource
}

// Config carries the posting run parameters.
type Config struct {
	ImageDir         string
	WorkDir          string
	SquareSize       int
	ThemeTag         string
	PostLimitPerSlot int
	PollInterval     time.Duration
}

// Poster walks the image folder and publishes unposted images during
// configured schedule windows.
type Poster struct {
	cfg       Config
	client    InstagramClient
	tagger    vision.Tagger
	captioner openai.Captioner
	resolver  *location.Resolver
	history   *history.Log
	scheduler *schedule.Scheduler
	logger    *slog.Logger

	sleep       func(ctx context.Context, d time.Duration) error
	rng         *rand.Rand
	prepare     func(path, destDir string, size int) (string, error)
	extractHint func(path string) location.Hint
}

// Option customizes a Poster.
type Option func(*Poster)

// WithSleep replaces the blocking sleep used for schedule polling and
// inter-post delays.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Poster) {
		if sleep != nil {
			p.sleep = sleep
		}
	}
}

// WithRand sets the random source used for tag sampling.
func WithRand(rng *rand.Rand) Option {
	return func(p *Poster) {
		if rng != nil {
			p.rng = rng
		}
	}
}

// WithPrepare replaces the image preparation step.
func WithPrepare(prepare func(path, destDir string, size int) (string, error)) Option {
	return func(p *Poster) {
		if prepare != nil {
			p.prepare = prepare
		}
	}
}

// WithHintExtractor replaces EXIF hint extraction.
func WithHintExtractor(extract func(path string) location.Hint) Option {
	return func(p *Poster) {
		if extract != nil {
			p.extractHint = extract
		}
	}
}

// New assembles a Poster from its collaborators.
func New(
	cfg Config,
	client InstagramClient,
	tagger vision.Tagger,
	captioner openai.Captioner,
	resolver *location.Resolver,
	hist *history.Log,
	scheduler *schedule.Scheduler,
	logger *slog.Logger,
	opts ...Option,
) (*Poster, error) {
	if client == nil || tagger == nil || captioner == nil || resolver == nil || hist == nil || scheduler == nil {
		return nil, services.Wrap(services.ErrConfiguration, "poster", "new", "missing collaborator", nil)
	}
	if strings.TrimSpace(cfg.ImageDir) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "poster", "new", "image directory is required", nil)
	}
	if cfg.SquareSize <= 0 {
		cfg.SquareSize = imaging.DefaultSquareSize
	}
	if cfg.PostLimitPerSlot < 1 {
		cfg.PostLimitPerSlot = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 300 * time.Second
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	p := &Poster{
		cfg:         cfg,
		client:      client,
		tagger:      tagger,
		captioner:   captioner,
		resolver:    resolver,
		history:     hist,
		scheduler:   scheduler,
		logger:      logging.NewComponentLogger(logger, "poster"),
		sleep:       sleepContext,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		prepare:     imaging.PrepareSquare,
		extractHint: imaging.ExtractHint,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run performs one posting pass over the image directory: log in, walk
// candidates in directory order, post during schedule windows up to the
// slot limit, then log out. Context cancellation is the only way to
// interrupt a window wait.
func (p *Poster) Run(ctx context.Context) error {
	if err := p.client.Login(ctx); err != nil {
		return services.Wrap(services.ErrExternalService, "poster", "login", "instagram login failed", err)
	}
	p.logger.Info("logged in to instagram")
	defer func() {
		if err := p.client.Logout(context.WithoutCancel(ctx)); err != nil {
			p.logger.Warn("instagram logout failed", logging.Error(err))
		}
	}()

	entries, err := os.ReadDir(p.cfg.ImageDir)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "poster", "scan", "read image directory", err)
	}

	posted := 0
	for _, entry := range entries {
		if entry.IsDir() || !isImageName(entry.Name()) {
			continue
		}
		name := entry.Name()

		if p.history.Contains(name) {
			p.logger.Info("already posted, skipping", logging.String(logging.FieldImage, name))
			continue
		}

		for !p.scheduler.IsWithinSchedule() {
			p.logger.Info("waiting for the next schedule window",
				logging.Duration("poll_interval", p.cfg.PollInterval))
			if err := p.sleep(ctx, p.cfg.PollInterval); err != nil {
				return err
			}
		}

		if posted >= p.cfg.PostLimitPerSlot {
			p.logger.Info("post limit for this slot reached",
				logging.Int("limit", p.cfg.PostLimitPerSlot))
			break
		}

		outcome, err := p.postOnce(ctx, filepath.Join(p.cfg.ImageDir, name))
		if err != nil {
			p.logger.Error("post failed",
				logging.String(logging.FieldImage, name),
				logging.Error(err))
		} else {
			if err := p.history.Add(name, map[string]string{
				"location": outcome.Location,
				"caption":  outcome.Caption,
			}); err != nil {
				return services.Wrap(services.ErrTransient, "poster", "record", "record posted image", err)
			}
			posted++
			p.logger.Info("photo posted",
				logging.String(logging.FieldImage, name),
				logging.String(logging.FieldLocation, outcome.Location))
		}

		delay := p.scheduler.RandomDelay()
		p.logger.Info("sleeping before next candidate", logging.Duration("delay", delay))
		if err := p.sleep(ctx, delay); err != nil {
			return err
		}
	}

	p.logger.Info("posting pass complete", logging.Int("posted", posted))
	return nil
}

type postOutcome struct {
	Location string
	Caption  string
}

func (p *Poster) postOnce(ctx context.Context, sourcePath string) (postOutcome, error) {
	workPath, err := p.prepare(sourcePath, p.cfg.WorkDir, p.cfg.SquareSize)
	if err != nil {
		return postOutcome{}, fmt.Errorf("prepare image: %w", err)
	}
	defer imaging.Cleanup(workPath, p.logger)

	hint := p.extractHint(sourcePath)
	loc, err := p.resolver.Resolve(ctx, hint, p.client)
	if err != nil {
		return postOutcome{}, fmt.Errorf("resolve location: %w", err)
	}

	tags, err := p.tagger.Analyze(ctx, workPath)
	if err != nil {
		return postOutcome{}, fmt.Errorf("analyze image: %w", err)
	}
	tags = append(tags, p.cfg.ThemeTag, loc.Name)
	selected := sampleTags(p.rng, tags)
	p.logger.Debug("selected tags", logging.Any("tags", selected))

	caption := textutil.TrimQuotedEdges(p.captioner.Chat(ctx, captionPrompt(selected)))

	upload, err := p.client.UploadPhoto(ctx, workPath, caption, loc)
	if err != nil {
		return postOutcome{}, fmt.Errorf("upload photo: %w", err)
	}
	if !upload.Succeeded() {
		return postOutcome{}, fmt.Errorf("upload completed but media type %d is not a photo", upload.MediaType)
	}
	return postOutcome{Location: loc.Name, Caption: caption}, nil
}

// sampleTags picks 65% of the tags (at least one) without replacement,
// preserving nothing of the input order.
func sampleTags(rng *rand.Rand, tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	n := int(math.Round(float64(len(tags)) * tagSampleRatio))
	if n < 1 {
		n = 1
	}
	selected := make([]string, 0, n)
	for _, idx := range rng.Perm(len(tags))[:n] {
		selected = append(selected, tags[idx])
	}
	return selected
}

func captionPrompt(tags []string) string {
	return fmt.Sprintf("Create a short (less than 20 words) Instagram post based on tags %s. "+
		"use English letters only! Dont use word Embracing and Exploring and other fancy words "+
		"in the beginning. Be natural and original.", strings.Join(tags, ", "))
}

func isImageName(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
