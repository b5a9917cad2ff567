package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"adlauncher/adcsv"
	"adlauncher/storage"
)

func TestServer_CopyImportCountsImportedAndFailed(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ts := httptest.NewServer(NewServer(testConfig(), Dependencies{Store: store, Copy: store}))
	defer ts.Close()

	content := adcsv.CopySampleCSV() + "No link,Text,,Head,,,,,,\n"
	resp := postFile(t, ts.URL+"/api/copy/import", "copy.csv", content, map[string]string{"accountId": "99"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body copyImportResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, copyImportResponse{Imported: 1, Failed: 1}, body)

	listResp, err := http.Get(ts.URL + "/api/copy?accountId=99")
	require.NoError(t, err)
	defer listResp.Body.Close()
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var list struct {
		Templates []storage.CopyTemplate `json:"templates"`
	}
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&list))
	require.Len(t, list.Templates, 1)
	require.Equal(t, "Spring Sale", list.Templates[0].Name)
	require.Equal(t, "SHOP_NOW", list.Templates[0].CallToAction)
}

func TestServer_CopyImportMalformedSheet(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ts := httptest.NewServer(NewServer(testConfig(), Dependencies{Store: store, Copy: store}))
	defer ts.Close()

	resp := postFile(t, ts.URL+"/api/copy/import", "copy.csv", "Name,Link\n\"open,https://x.com\n", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestServer_CopyCrud(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ts := httptest.NewServer(NewServer(testConfig(), Dependencies{Store: store, Copy: store}))
	defer ts.Close()

	create := sendJSON(t, http.MethodPost, ts.URL+"/api/copy", copyRequest{
		Name:         "Spring",
		PrimaryTexts: []string{"Fresh looks"},
		Headlines:    []string{"Save"},
		Link:         "https://x.com",
	})
	defer create.Body.Close()
	require.Equal(t, http.StatusCreated, create.StatusCode)

	var created struct {
		Template storage.CopyTemplate `json:"template"`
	}
	require.NoError(t, json.NewDecoder(create.Body).Decode(&created))
	require.Equal(t, "42", created.Template.AdAccountID)
	require.Equal(t, "LEARN_MORE", created.Template.CallToAction)
	id := strconv.FormatInt(created.Template.ID, 10)

	update := sendJSON(t, http.MethodPut, ts.URL+"/api/copy", copyRequest{
		ID:           created.Template.ID,
		Name:         "Summer",
		PrimaryTexts: []string{"Hot deals"},
		Headlines:    []string{"Save"},
		Link:         "https://x.com",
	})
	defer update.Body.Close()
	require.Equal(t, http.StatusOK, update.StatusCode)

	get, err := http.Get(ts.URL + "/api/copy?id=" + id)
	require.NoError(t, err)
	defer get.Body.Close()
	require.Equal(t, http.StatusOK, get.StatusCode)
	var fetched struct {
		Template storage.CopyTemplate `json:"template"`
	}
	require.NoError(t, json.NewDecoder(get.Body).Decode(&fetched))
	require.Equal(t, "Summer", fetched.Template.Name)

	del := sendJSON(t, http.MethodDelete, ts.URL+"/api/copy?id="+id, nil)
	defer del.Body.Close()
	require.Equal(t, http.StatusOK, del.StatusCode)

	missing, err := http.Get(ts.URL + "/api/copy?id=" + id)
	require.NoError(t, err)
	defer missing.Body.Close()
	require.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestServer_CopyValidation(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ts := httptest.NewServer(NewServer(testConfig(), Dependencies{Store: store, Copy: store}))
	defer ts.Close()

	incomplete := sendJSON(t, http.MethodPost, ts.URL+"/api/copy", copyRequest{Name: "No link", PrimaryTexts: []string{"t"}, Headlines: []string{"h"}})
	defer incomplete.Body.Close()
	require.Equal(t, http.StatusBadRequest, incomplete.StatusCode)
	var body errorResponse
	require.NoError(t, json.NewDecoder(incomplete.Body).Decode(&body))
	require.Equal(t, "Missing required fields", body.Error)

	noID := sendJSON(t, http.MethodDelete, ts.URL+"/api/copy", nil)
	defer noID.Body.Close()
	require.Equal(t, http.StatusBadRequest, noID.StatusCode)

	badID, err := http.Get(ts.URL + "/api/copy?id=abc")
	require.NoError(t, err)
	defer badID.Body.Close()
	require.Equal(t, http.StatusBadRequest, badID.StatusCode)
}

func TestServer_CopyUnavailableWithoutStore(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(NewServer(testConfig(), Dependencies{Store: openTestStore(t)}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/copy")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func sendJSON(t *testing.T, method, url string, payload any) *http.Response {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req, err := http.NewRequest(method, url, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}
