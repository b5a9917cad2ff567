package launcher

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"adlauncher/adcsv"
	"adlauncher/facebook"
	"adlauncher/internal/classify"
	"adlauncher/storage"
)

const DefaultConcurrency = 4

// Recorder persists launch outcomes.
type Recorder interface {
	RecordLaunch(ctx context.Context, ad storage.LaunchedAd) (int64, error)
}

type Result struct {
	RowIndex   int    `json:"rowIndex"`
	AdSetID    string `json:"adSetId"`
	Name       string `json:"name"`
	Success    bool   `json:"success"`
	Status     string `json:"status"`
	AdID       string `json:"adId,omitempty"`
	CreativeID string `json:"creativeId,omitempty"`
	Error      string `json:"error,omitempty"`
}

type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"success"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	// Duplicates counts jobs left out because the ad set already holds an
	// ad with the same name.
	Duplicates int      `json:"duplicates"`
	Results    []Result `json:"results"`
}

type Options struct {
	Concurrency int
	DryRun      bool
	// SkipExisting drops jobs whose name already exists in the target ad set.
	SkipExisting bool
}

type Service struct {
	client   facebook.Client
	recorder Recorder
	defaults Defaults
	logger   *zap.Logger
	now      func() time.Time
}

type mediaRef struct {
	imageHash string
	videoID   string
}

// mediaCache remembers uploads for a single run so later runs pick up
// media whose content changed behind the same URL.
type mediaCache struct {
	uploads singleflight.Group
	mu      sync.Mutex
	refs    map[string]mediaRef
}

func newMediaCache() *mediaCache {
	return &mediaCache{refs: make(map[string]mediaRef)}
}

// NewService wires a launcher. client may be nil for dry runs and recorder
// may be nil when outcomes are not persisted.
func NewService(client facebook.Client, recorder Recorder, defaults Defaults, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:   client,
		recorder: recorder,
		defaults: defaults,
		logger:   logger,
		now:      time.Now,
	}
}

// Launch plans rows and runs the resulting jobs for batchID.
func (s *Service) Launch(ctx context.Context, batchID string, rows []adcsv.AdRow, opts Options) (Summary, error) {
	jobs, skipped := Plan(rows, s.defaults)
	summary, err := s.Run(ctx, batchID, jobs, opts)
	summary.Skipped = skipped
	return summary, err
}

// Run executes jobs with bounded concurrency. A failing job is recorded and
// the batch continues; only context cancellation and recorder failures stop
// the run. Results keep job order.
func (s *Service) Run(ctx context.Context, batchID string, jobs []Job, opts Options) (Summary, error) {
	summary := Summary{Total: len(jobs), Results: make([]Result, len(jobs))}
	if len(jobs) == 0 {
		return summary, nil
	}
	if !opts.DryRun {
		if s.client == nil {
			return summary, errors.New("facebook client is required to launch ads")
		}
		if strings.TrimSpace(s.defaults.AccountID) == "" || strings.TrimSpace(s.defaults.PageID) == "" {
			return summary, errors.New("ad account id and page id are required to launch ads")
		}
	}

	if opts.SkipExisting && s.client != nil {
		existing, err := s.existingAds(ctx, jobs)
		if err != nil {
			return summary, err
		}
		fresh, duplicates := classify.SplitExisting(jobs, jobKey, existing)
		for _, job := range duplicates {
			s.logger.Info("ad already exists, skipping",
				zap.Int("row", job.Row.RowNumber()),
				zap.String("ad_set_id", job.AdSetID),
				zap.String("name", job.Name),
			)
		}
		jobs = fresh
		summary = Summary{Total: len(jobs), Duplicates: len(duplicates), Results: make([]Result, len(jobs))}
		if len(jobs) == 0 {
			return summary, nil
		}
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	cache := newMediaCache()
	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				summary.Results[i] = failedResult(job, err)
				return err
			}

			var result Result
			if opts.DryRun {
				result = Result{
					RowIndex: job.Row.RowIndex,
					AdSetID:  job.AdSetID,
					Name:     job.Name,
					Success:  true,
					Status:   storage.StatusDryRun,
				}
			} else {
				result = s.launchOne(groupCtx, cache, job)
			}
			summary.Results[i] = result

			if err := s.record(groupCtx, batchID, job, result); err != nil {
				return fmt.Errorf("record launch of row %d into ad set %s: %w", job.Row.RowNumber(), job.AdSetID, err)
			}
			return nil
		})
	}

	err := g.Wait()
	for _, result := range summary.Results {
		if result.Success {
			summary.Succeeded++
		} else if result.Status != "" {
			summary.Failed++
		}
	}
	return summary, err
}

// existingAds loads the ad names of every ad set the jobs target.
func (s *Service) existingAds(ctx context.Context, jobs []Job) (map[string]struct{}, error) {
	existing := make(map[string]struct{})
	seen := make(map[string]bool)
	for _, job := range jobs {
		if seen[job.AdSetID] {
			continue
		}
		seen[job.AdSetID] = true

		ads, err := s.client.ListAdsInAdSet(ctx, job.AdSetID)
		if err != nil {
			return nil, fmt.Errorf("list existing ads in ad set %s: %w", job.AdSetID, err)
		}
		for _, ad := range ads {
			existing[classify.AdKey(job.AdSetID, ad.Name)] = struct{}{}
		}
	}
	return existing, nil
}

func jobKey(job Job) string {
	return classify.AdKey(job.AdSetID, job.Name)
}

func (s *Service) launchOne(ctx context.Context, cache *mediaCache, job Job) Result {
	result := Result{
		RowIndex: job.Row.RowIndex,
		AdSetID:  job.AdSetID,
		Name:     job.Name,
	}

	creativeID, err := s.createCreative(ctx, cache, job)
	if err != nil {
		s.logFailure(job, err)
		return failedResultWith(result, err)
	}
	result.CreativeID = creativeID

	adID, err := s.client.CreateAd(ctx, facebook.AdSpec{
		AccountID:  s.defaults.AccountID,
		Name:       job.Name,
		AdSetID:    job.AdSetID,
		CreativeID: creativeID,
		Paused:     job.Row.LaunchPaused,
	})
	if err != nil {
		s.logFailure(job, err)
		return failedResultWith(result, fmt.Errorf("create ad: %w", err))
	}

	s.logger.Info("ad launched",
		zap.Int("row", job.Row.RowNumber()),
		zap.String("ad_set_id", job.AdSetID),
		zap.String("ad_id", adID),
		zap.Bool("paused", job.Row.LaunchPaused),
	)

	result.AdID = adID
	result.Success = true
	result.Status = storage.StatusLaunched
	return result
}

func (s *Service) createCreative(ctx context.Context, cache *mediaCache, job Job) (string, error) {
	spec := facebook.CreativeSpec{
		AccountID:        s.defaults.AccountID,
		Name:             job.Name,
		PageID:           s.defaults.PageID,
		InstagramActorID: s.defaults.InstagramActorID,
		Message:          job.primaryText(),
		Headline:         job.headline(),
		Description:      job.Row.AdDescription,
		Link:             job.Row.Link,
		DisplayLink:      job.Row.DisplayLink,
		CallToAction:     job.CallToAction,
		URLTags:          job.urlTags(),
	}

	if job.Row.IsCarousel() {
		cards := make([]facebook.CardSpec, 0, len(job.Row.CarouselCards))
		for _, card := range job.Row.CarouselCards {
			cardSpec := facebook.CardSpec{
				Name:        card.Title,
				Description: card.Description,
				Link:        card.Link,
			}
			if card.MediaURL != "" {
				ref, err := s.uploadMedia(ctx, cache, card.MediaURL, IsImageURL(card.MediaURL))
				if err != nil {
					return "", err
				}
				cardSpec.ImageHash = ref.imageHash
				cardSpec.VideoID = ref.videoID
			}
			cards = append(cards, cardSpec)
		}
		spec.Cards = cards
	} else if len(job.Row.VideoURLs) > 0 {
		mediaURL := job.Row.VideoURLs[0]
		ref, err := s.uploadMedia(ctx, cache, mediaURL, IsImageURL(mediaURL))
		if err != nil {
			return "", err
		}
		spec.ImageHash = ref.imageHash
		spec.VideoID = ref.videoID
	}

	creativeID, err := s.client.CreateAdCreative(ctx, spec)
	if err != nil {
		return "", fmt.Errorf("create ad creative: %w", err)
	}
	return creativeID, nil
}

// uploadMedia uploads each media URL at most once per run, even when
// several ad sets of the same row launch concurrently.
func (s *Service) uploadMedia(ctx context.Context, cache *mediaCache, mediaURL string, asImage bool) (mediaRef, error) {
	cache.mu.Lock()
	ref, ok := cache.refs[mediaURL]
	cache.mu.Unlock()
	if ok {
		return ref, nil
	}

	value, err, _ := cache.uploads.Do(mediaURL, func() (any, error) {
		var ref mediaRef
		if asImage {
			image, err := s.client.UploadImage(ctx, s.defaults.AccountID, mediaURL)
			if err != nil {
				return mediaRef{}, fmt.Errorf("upload image %s: %w", mediaURL, err)
			}
			ref.imageHash = image.Hash
		} else {
			videoID, err := s.client.UploadVideo(ctx, s.defaults.AccountID, mediaURL)
			if err != nil {
				return mediaRef{}, fmt.Errorf("upload video %s: %w", mediaURL, err)
			}
			ref.videoID = videoID
		}

		cache.mu.Lock()
		cache.refs[mediaURL] = ref
		cache.mu.Unlock()
		return ref, nil
	})
	if err != nil {
		return mediaRef{}, err
	}
	return value.(mediaRef), nil
}

func (s *Service) record(ctx context.Context, batchID string, job Job, result Result) error {
	if s.recorder == nil {
		return nil
	}
	// The outcome must be stored even when the run was cancelled mid-flight.
	ctx = context.WithoutCancel(ctx)

	_, err := s.recorder.RecordLaunch(ctx, storage.LaunchedAd{
		BatchID:      batchID,
		RowIndex:     job.Row.RowIndex,
		AdSetID:      job.AdSetID,
		FBAdID:       result.AdID,
		FBCreativeID: result.CreativeID,
		CustomName:   job.Row.CustomName,
		PrimaryText:  job.primaryText(),
		Headline:     job.headline(),
		Link:         job.Row.Link,
		CallToAction: job.CallToAction,
		IsCarousel:   job.Row.IsCarousel(),
		LaunchPaused: job.Row.LaunchPaused,
		Status:       result.Status,
		ErrorMessage: result.Error,
		LaunchedAt:   s.now(),
	})
	return err
}

func (s *Service) logFailure(job Job, err error) {
	s.logger.Warn("ad launch failed",
		zap.Int("row", job.Row.RowNumber()),
		zap.String("ad_set_id", job.AdSetID),
		zap.Error(err),
	)
}

func failedResult(job Job, err error) Result {
	return failedResultWith(Result{
		RowIndex: job.Row.RowIndex,
		AdSetID:  job.AdSetID,
		Name:     job.Name,
	}, err)
}

func failedResultWith(result Result, err error) Result {
	result.Success = false
	result.Status = storage.StatusFailed
	result.Error = err.Error()
	return result
}

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
	".bmp":  {},
}

// IsImageURL reports whether the URL path ends in a known image extension.
func IsImageURL(raw string) bool {
	target := raw
	if parsed, err := url.Parse(raw); err == nil {
		target = parsed.Path
	}
	_, ok := imageExtensions[strings.ToLower(path.Ext(target))]
	return ok
}
