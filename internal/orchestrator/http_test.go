package orchestrator

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/scorefiler/internal/domain"
)

func newTestServer(t *testing.T) (*httptest.Server, *fakeStorage) {
	stor := newFakeStorage("root", "Concert Band")
	svc := newTestService(&fakeDocs{pages: 10}, &fakeExtractor{md: boleroMetadata()}, stor, nil)
	mux := http.NewServeMux()
	svc.RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, stor
}

func postMultipart(t *testing.T, url string, filename string, data []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("files", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	resp, err := http.Post(url, w.FormDataContentType(), &body)
	require.NoError(t, err)
	return resp
}

func TestHTTPLifecycle(t *testing.T) {
	srv, stor := newTestServer(t)

	// create
	resp, err := http.Post(srv.URL+"/arrangements", "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created createResp
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	require.NotEmpty(t, created.ID)

	// attach
	resp = postMultipart(t, srv.URL+"/arrangements/"+created.ID+"/files", "score.pdf", []byte(pdfStub))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var attach AttachResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&attach))
	resp.Body.Close()
	assert.Equal(t, 1, attach.Accepted)

	// process to completion
	resp, err = http.Post(srv.URL+"/arrangements/"+created.ID+"/process", "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var a domain.Arrangement
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&a))
	resp.Body.Close()
	assert.Equal(t, domain.ArrangementDone, a.Status)
	assert.Equal(t, "Bolero", a.DisplayName)
	assert.Len(t, stor.uploads, 3)

	// fetch it back
	resp, err = http.Get(srv.URL + "/arrangements/" + created.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// list
	resp, err = http.Get(srv.URL + "/arrangements")
	require.NoError(t, err)
	var all []domain.Arrangement
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&all))
	resp.Body.Close()
	require.Len(t, all, 1)
}

func TestHTTPUnknownArrangement(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/arrangements/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTPAttachWithoutFiles(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/arrangements", "application/json", nil)
	require.NoError(t, err)
	var created createResp
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.Close())
	resp, err = http.Post(srv.URL+"/arrangements/"+created.ID+"/files", w.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPProcessBeforeAttach(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/arrangements", "application/json", nil)
	require.NoError(t, err)
	var created createResp
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()

	resp, err = http.Post(srv.URL+"/arrangements/"+created.ID+"/process", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}
