package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"adlauncher/adcsv"
	"adlauncher/config"
	"adlauncher/facebook"
	"adlauncher/launcher"
	"adlauncher/media"
	"adlauncher/storage"
)

const validCSV = "Row Type,Primary Text Variation 1,Headline Variation 1,Link,Ad Set IDs,Video URLs\n" +
	"Single,Hi,Save,https://x.com,\"123, 456\",https://cdn.example.com/a.mp4\n" +
	"Single,,,,,\n"

func TestServer_ParseReturnsRowsAndValidation(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(NewServer(testConfig(), Dependencies{Store: openTestStore(t)}))
	defer ts.Close()

	resp := postFile(t, ts.URL+"/api/launch/csv/parse", "ads.csv", validCSV, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body adcsv.ParseResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Rows, 2)
	require.True(t, body.Rows[0].IsValid)
	require.Equal(t, []string{"123", "456"}, body.Rows[0].AdSetIDs)
	require.False(t, body.Rows[1].IsValid)
	require.Equal(t, adcsv.Validation{ValidCount: 1, InvalidCount: 1, TotalErrors: 4, TotalWarnings: 1}, body.Validation)
}

func TestServer_ParseWithoutFile(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(NewServer(testConfig(), Dependencies{Store: openTestStore(t)}))
	defer ts.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("other", "x"))
	require.NoError(t, writer.Close())

	resp, err := http.Post(ts.URL+"/api/launch/csv/parse", writer.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "No file provided", body.Error)
}

func TestServer_ParseMalformedCSV(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(NewServer(testConfig(), Dependencies{Store: openTestStore(t)}))
	defer ts.Close()

	resp := postFile(t, ts.URL+"/api/launch/csv/parse", "ads.csv", "Headline Variation 1,Link\n\"unterminated,https://x.com\n", nil)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "Failed to parse CSV", body.Error)
	require.NotEmpty(t, body.Detail)
}

func TestServer_ParseRejectsOversizedFile(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Import.MaxFileBytes = 64
	ts := httptest.NewServer(NewServer(cfg, Dependencies{Store: openTestStore(t)}))
	defer ts.Close()

	resp := postFile(t, ts.URL+"/api/launch/csv/parse", "ads.csv", validCSV+strings.Repeat("Single,a,b,https://x.com,1,\n", 10), nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestServer_TemplateDownload(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(NewServer(testConfig(), Dependencies{Store: openTestStore(t)}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/launch/csv/template")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	require.Contains(t, resp.Header.Get("Content-Disposition"), templateFilename)

	body, _ := io.ReadAll(resp.Body)
	sample, err := adcsv.SampleCSV()
	require.NoError(t, err)
	require.Equal(t, sample, string(body))
}

func TestServer_LaunchDryRunRecordsHistory(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	service := launcher.NewService(nil, store, launcher.Defaults{}, nil)
	ts := httptest.NewServer(NewServer(testConfig(), Dependencies{Store: store, Launcher: service}))
	defer ts.Close()

	resp := postFile(t, ts.URL+"/api/launch/csv", "spring.csv", validCSV, map[string]string{"dryRun": "true"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body launchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.BatchID)
	require.True(t, body.DryRun)
	require.Equal(t, 2, body.Summary.Total)
	require.Equal(t, 2, body.Summary.Succeeded)
	require.Equal(t, 1, body.Summary.Skipped)
	require.Equal(t, 1, body.Validation.InvalidCount)

	history, err := http.Get(ts.URL + "/api/ads?batch=" + body.BatchID)
	require.NoError(t, err)
	defer history.Body.Close()

	var listed struct {
		Ads []storage.LaunchedAd `json:"ads"`
	}
	require.NoError(t, json.NewDecoder(history.Body).Decode(&listed))
	require.Len(t, listed.Ads, 2)
	require.Equal(t, storage.StatusDryRun, listed.Ads[0].Status)

	batches, err := store.ListBatches(context.Background())
	require.NoError(t, err)
	require.Len(t, batches, 1)
	require.Equal(t, "spring.csv", batches[0].SourceFile)
	require.Equal(t, 1, batches[0].RowsValid)
}

func TestServer_LaunchRequiresFacebookConfig(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	cfg := testConfig()
	cfg.Facebook.AccessToken = ""
	service := launcher.NewService(nil, store, launcher.Defaults{}, nil)
	ts := httptest.NewServer(NewServer(cfg, Dependencies{Store: store, Launcher: service}))
	defer ts.Close()

	resp := postFile(t, ts.URL+"/api/launch/csv", "spring.csv", validCSV, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestServer_AdSetsProxy(t *testing.T) {
	t.Parallel()

	client := &fakeClient{adSets: []facebook.AdSet{{ID: "1", Name: "Prospecting"}}}
	ts := httptest.NewServer(NewServer(testConfig(), Dependencies{Store: openTestStore(t), Client: client}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/launch/adsets")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		AdSets []facebook.AdSet `json:"adSets"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, client.adSets, body.AdSets)
	require.Equal(t, "42", client.accountID)
}

func TestServer_AdSetsUpstreamError(t *testing.T) {
	t.Parallel()

	client := &fakeClient{err: &facebook.APIError{StatusCode: 400, Message: "Invalid OAuth access token"}}
	ts := httptest.NewServer(NewServer(testConfig(), Dependencies{Store: openTestStore(t), Client: client}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/launch/adsets")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "Invalid OAuth access token", body.Detail)
}

func TestServer_PagesHideAccessTokens(t *testing.T) {
	t.Parallel()

	client := &fakeClient{pages: []facebook.Page{{ID: "p1", Name: "Shop", AccessToken: "secret"}}}
	ts := httptest.NewServer(NewServer(testConfig(), Dependencies{Store: openTestStore(t), Client: client}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/launch/pages")
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	require.NotContains(t, string(raw), "secret")
}

func TestServer_DeleteAdsReportsPerAd(t *testing.T) {
	t.Parallel()

	client := &fakeClient{failDelete: "bad"}
	ts := httptest.NewServer(NewServer(testConfig(), Dependencies{Store: openTestStore(t), Client: client}))
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/launch/ads/delete", "application/json", strings.NewReader(`{"adIds":["ok","bad"]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Results []deleteAdResult `json:"results"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, []deleteAdResult{
		{AdID: "ok", Success: true},
		{AdID: "bad", Success: false, Error: "Ad not found"},
	}, body.Results)
}

func TestServer_MediaUploadUnavailableWithoutStore(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(NewServer(testConfig(), Dependencies{Store: openTestStore(t)}))
	defer ts.Close()

	resp := postFile(t, ts.URL+"/api/media", "a.png", "png", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestServer_MediaUpload(t *testing.T) {
	t.Parallel()

	store := &fakeMedia{}
	ts := httptest.NewServer(NewServer(testConfig(), Dependencies{Store: openTestStore(t), Media: store}))
	defer ts.Close()

	resp := postFile(t, ts.URL+"/api/media", "hero.png", "png-bytes", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var object media.Object
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&object))
	require.Equal(t, "media/42/hero.png", object.Key)
	require.Equal(t, "png-bytes", store.body)
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(NewServer(testConfig(), Dependencies{Store: openTestStore(t)}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func testConfig() config.Config {
	return config.Config{
		Facebook: config.FacebookConfig{AdAccountID: "42", AccessToken: "tok", PageID: "7"},
		Import:   config.ImportConfig{MaxFileBytes: 5 << 20, MaxRows: 1000},
		Launch:   config.LaunchConfig{Concurrency: 2, DefaultCTA: "LEARN_MORE"},
		Storage:  config.StorageConfig{KeyPrefix: "media/"},
	}
}

func openTestStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "adlauncher_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func postFile(t *testing.T, url, filename, content string, fields map[string]string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	resp, err := http.Post(url, writer.FormDataContentType(), &buf)
	require.NoError(t, err)
	return resp
}

type fakeClient struct {
	adSets     []facebook.AdSet
	pages      []facebook.Page
	err        error
	failDelete string
	accountID  string
}

func (f *fakeClient) ListAdSets(_ context.Context, accountID string) ([]facebook.AdSet, error) {
	f.accountID = accountID
	return f.adSets, f.err
}

func (f *fakeClient) ListPages(context.Context, string) ([]facebook.Page, error) {
	return f.pages, f.err
}

func (f *fakeClient) UploadImage(context.Context, string, string) (facebook.ImageUpload, error) {
	return facebook.ImageUpload{}, errors.New("not implemented")
}

func (f *fakeClient) UploadVideo(context.Context, string, string) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeClient) CreateAdCreative(context.Context, facebook.CreativeSpec) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeClient) CreateAd(context.Context, facebook.AdSpec) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeClient) ListAds(context.Context, string, int) ([]facebook.Ad, error) {
	return nil, f.err
}

func (f *fakeClient) ListAdsInAdSet(context.Context, string) ([]facebook.Ad, error) {
	return nil, f.err
}

func (f *fakeClient) DeleteAd(_ context.Context, adID string) error {
	if adID == f.failDelete {
		return &facebook.APIError{StatusCode: 400, Message: "Ad not found"}
	}
	return nil
}

type fakeMedia struct {
	body string
}

func (f *fakeMedia) KeyFor(accountID, filename string) string {
	return "media/" + accountID + "/" + filename
}

func (f *fakeMedia) Upload(_ context.Context, key string, body io.Reader, _ string) (media.Object, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return media.Object{}, err
	}
	f.body = string(raw)
	return media.Object{Key: key, Bucket: "ads", URL: "https://signed.example.com/" + key}, nil
}

func (f *fakeMedia) List(context.Context, string) ([]media.Object, error) {
	return nil, nil
}
