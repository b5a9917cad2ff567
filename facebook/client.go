package facebook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	StatusActive = "ACTIVE"
	StatusPaused = "PAUSED"

	maxListPages = 20
)

// Client defines the Graph API operations used for launching ads.
type Client interface {
	ListAdSets(ctx context.Context, accountID string) ([]AdSet, error)
	ListPages(ctx context.Context, accountID string) ([]Page, error)
	UploadImage(ctx context.Context, accountID, imageURL string) (ImageUpload, error)
	UploadVideo(ctx context.Context, accountID, videoURL string) (string, error)
	CreateAdCreative(ctx context.Context, spec CreativeSpec) (string, error)
	CreateAd(ctx context.Context, spec AdSpec) (string, error)
	ListAds(ctx context.Context, accountID string, limit int) ([]Ad, error)
	ListAdsInAdSet(ctx context.Context, adSetID string) ([]Ad, error)
	DeleteAd(ctx context.Context, adID string) error
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientConfig struct {
	// BaseURL includes the API version, e.g. https://graph.facebook.com/v21.0.
	BaseURL     string
	AccessToken string
	UserAgent   string
	HTTPClient  httpDoer
}

type HTTPClient struct {
	baseURL     string
	accessToken string
	userAgent   string
	httpClient  httpDoer
}

func NewClient(cfg ClientConfig) (*HTTPClient, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}
	parsedBase, err := url.Parse(baseURL)
	if err != nil || parsedBase.Scheme == "" || parsedBase.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}

	accessToken := strings.TrimSpace(cfg.AccessToken)
	if accessToken == "" {
		return nil, errors.New("access token is required")
	}

	doer := cfg.HTTPClient
	if doer == nil {
		doer = &http.Client{Timeout: 60 * time.Second}
	}

	return &HTTPClient{
		baseURL:     baseURL,
		accessToken: accessToken,
		userAgent:   strings.TrimSpace(cfg.UserAgent),
		httpClient:  doer,
	}, nil
}

type Campaign struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type AdSet struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Status   string   `json:"status"`
	Campaign Campaign `json:"campaign"`
}

type Page struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessToken string `json:"access_token,omitempty"`
}

type Ad struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Status   string   `json:"status"`
	AdSet    AdSet    `json:"adset"`
	Campaign Campaign `json:"campaign"`
	Creative struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"creative"`
}

type ImageUpload struct {
	Hash string `json:"hash"`
	URL  string `json:"url"`
}

// CardSpec is one child attachment of a carousel creative.
type CardSpec struct {
	ImageHash   string
	VideoID     string
	Name        string
	Description string
	Link        string
}

type CreativeSpec struct {
	AccountID        string
	Name             string
	PageID           string
	InstagramActorID string
	ImageHash        string
	VideoID          string
	Message          string
	Headline         string
	Description      string
	Link             string
	DisplayLink      string
	CallToAction     string
	URLTags          string
	Cards            []CardSpec
}

type AdSpec struct {
	AccountID  string
	Name       string
	AdSetID    string
	CreativeID string
	Paused     bool
}

// APIError is the error envelope returned by the Graph API.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	Code       int    `json:"code"`
	Subcode    int    `json:"error_subcode"`
	TraceID    string `json:"fbtrace_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graph api error (status %d, type %s, code %d): %s", e.StatusCode, e.Type, e.Code, e.Message)
}

type listEnvelope[T any] struct {
	Data   []T `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

type idResponse struct {
	ID string `json:"id"`
}

func (c *HTTPClient) ListAdSets(ctx context.Context, accountID string) ([]AdSet, error) {
	query := url.Values{}
	query.Set("fields", "id,name,status,campaign{id,name}")
	query.Set("limit", "500")
	return listAll[AdSet](ctx, c, "/"+AccountPath(accountID)+"/adsets", query)
}

func (c *HTTPClient) ListPages(ctx context.Context, accountID string) ([]Page, error) {
	query := url.Values{}
	query.Set("fields", "id,name,access_token")
	return listAll[Page](ctx, c, "/"+AccountPath(accountID)+"/promote_pages", query)
}

func (c *HTTPClient) ListAds(ctx context.Context, accountID string, limit int) ([]Ad, error) {
	if limit <= 0 {
		limit = 50
	}
	query := url.Values{}
	query.Set("fields", "id,name,status,creative{id,name},adset{id,name},campaign{id,name}")
	query.Set("limit", strconv.Itoa(limit))

	var out listEnvelope[Ad]
	if err := c.doJSON(ctx, http.MethodGet, "/"+AccountPath(accountID)+"/ads", query, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *HTTPClient) ListAdsInAdSet(ctx context.Context, adSetID string) ([]Ad, error) {
	query := url.Values{}
	query.Set("fields", "id,name,status,creative{id,name}")
	return listAll[Ad](ctx, c, "/"+url.PathEscape(adSetID)+"/ads", query)
}

func (c *HTTPClient) UploadImage(ctx context.Context, accountID, imageURL string) (ImageUpload, error) {
	var out struct {
		Images map[string]ImageUpload `json:"images"`
	}
	body := map[string]any{"url": imageURL}
	if err := c.doJSON(ctx, http.MethodPost, "/"+AccountPath(accountID)+"/adimages", nil, body, &out); err != nil {
		return ImageUpload{}, err
	}
	for _, image := range out.Images {
		if image.Hash != "" {
			return image, nil
		}
	}
	return ImageUpload{}, fmt.Errorf("upload image %s: response contained no image hash", imageURL)
}

func (c *HTTPClient) UploadVideo(ctx context.Context, accountID, videoURL string) (string, error) {
	var out idResponse
	body := map[string]any{"file_url": videoURL}
	if err := c.doJSON(ctx, http.MethodPost, "/"+AccountPath(accountID)+"/advideos", nil, body, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("upload video %s: response contained no video id", videoURL)
	}
	return out.ID, nil
}

func (c *HTTPClient) CreateAdCreative(ctx context.Context, spec CreativeSpec) (string, error) {
	if strings.TrimSpace(spec.PageID) == "" {
		return "", errors.New("create ad creative: page id is required")
	}

	body := map[string]any{
		"name":              spec.Name,
		"object_story_spec": BuildObjectStorySpec(spec),
	}
	if spec.URLTags != "" {
		body["url_tags"] = spec.URLTags
	}

	var out idResponse
	if err := c.doJSON(ctx, http.MethodPost, "/"+AccountPath(spec.AccountID)+"/adcreatives", nil, body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *HTTPClient) CreateAd(ctx context.Context, spec AdSpec) (string, error) {
	status := StatusActive
	if spec.Paused {
		status = StatusPaused
	}
	body := map[string]any{
		"name":     spec.Name,
		"adset_id": spec.AdSetID,
		"creative": map[string]string{"creative_id": spec.CreativeID},
		"status":   status,
	}

	var out idResponse
	if err := c.doJSON(ctx, http.MethodPost, "/"+AccountPath(spec.AccountID)+"/ads", nil, body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *HTTPClient) DeleteAd(ctx context.Context, adID string) error {
	var out struct {
		Success bool `json:"success"`
	}
	if err := c.doJSON(ctx, http.MethodDelete, "/"+url.PathEscape(adID), nil, nil, &out); err != nil {
		return err
	}
	if !out.Success {
		return fmt.Errorf("delete ad %s: graph api reported failure", adID)
	}
	return nil
}

// BuildObjectStorySpec assembles the story spec: carousel cards become link_data
// child attachments, an image becomes link_data, a video becomes video_data.
func BuildObjectStorySpec(spec CreativeSpec) map[string]any {
	story := map[string]any{"page_id": spec.PageID}
	if spec.InstagramActorID != "" {
		story["instagram_actor_id"] = spec.InstagramActorID
	}

	// Carousel rows may leave the top-level link empty; the first card link stands in.
	effectiveLink := firstNonEmpty(spec.Link)
	for _, card := range spec.Cards {
		if effectiveLink != "" {
			break
		}
		effectiveLink = firstNonEmpty(card.Link)
	}

	callToAction := map[string]any{
		"type":  spec.CallToAction,
		"value": map[string]string{"link": effectiveLink},
	}

	if spec.VideoID != "" && spec.ImageHash == "" && len(spec.Cards) == 0 {
		video := map[string]any{
			"video_id":       spec.VideoID,
			"message":        spec.Message,
			"title":          spec.Headline,
			"call_to_action": callToAction,
		}
		if spec.Description != "" {
			video["link_description"] = spec.Description
		}
		story["video_data"] = video
		return story
	}

	link := map[string]any{
		"message":        spec.Message,
		"link":           effectiveLink,
		"name":           spec.Headline,
		"call_to_action": callToAction,
	}
	if spec.Description != "" {
		link["description"] = spec.Description
	}
	if spec.DisplayLink != "" {
		link["caption"] = spec.DisplayLink
	}
	if spec.ImageHash != "" {
		link["image_hash"] = spec.ImageHash
	}
	if len(spec.Cards) > 0 {
		children := make([]map[string]any, 0, len(spec.Cards))
		for _, card := range spec.Cards {
			child := map[string]any{
				"link": firstNonEmpty(card.Link, effectiveLink),
				"name": card.Name,
			}
			if card.ImageHash != "" {
				child["image_hash"] = card.ImageHash
			}
			if card.VideoID != "" {
				child["video_id"] = card.VideoID
			}
			if card.Description != "" {
				child["description"] = card.Description
			}
			children = append(children, child)
		}
		link["child_attachments"] = children
	}
	story["link_data"] = link
	return story
}

// AccountPath returns the act_ prefixed node for an ad account id.
func AccountPath(accountID string) string {
	accountID = strings.TrimSpace(accountID)
	if strings.HasPrefix(accountID, "act_") {
		return accountID
	}
	return "act_" + accountID
}

func listAll[T any](ctx context.Context, c *HTTPClient, endpointPath string, query url.Values) ([]T, error) {
	out := make([]T, 0, 64)
	next := endpointPath
	for page := 0; next != "" && page < maxListPages; page++ {
		var envelope listEnvelope[T]
		if err := c.doJSON(ctx, http.MethodGet, next, query, nil, &envelope); err != nil {
			return nil, err
		}
		out = append(out, envelope.Data...)
		next = envelope.Paging.Next
		// The next link already carries every query parameter.
		query = nil
	}
	return out, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, endpoint string, query url.Values, body any, out any) error {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	target, err := c.resolve(endpoint, query)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), bodyReader)
	if err != nil {
		return fmt.Errorf("create request %s %s: %w", method, target.Path, err)
	}

	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, target.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
		return decodeAPIError(resp.StatusCode, responseBody)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response %s %s: %w", method, target.Path, err)
	}
	return nil
}

func (c *HTTPClient) resolve(endpoint string, query url.Values) (*url.URL, error) {
	raw := endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		raw = c.baseURL + endpoint
	}
	target, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse request url %q: %w", raw, err)
	}
	merged := target.Query()
	for key, values := range query {
		for _, value := range values {
			merged.Add(key, value)
		}
	}
	merged.Set("access_token", c.accessToken)
	target.RawQuery = merged.Encode()
	return target, nil
}

func decodeAPIError(status int, body []byte) error {
	var envelope struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil && envelope.Error.Message != "" {
		envelope.Error.StatusCode = status
		return envelope.Error
	}
	return &APIError{
		StatusCode: status,
		Message:    strings.TrimSpace(string(body)),
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
