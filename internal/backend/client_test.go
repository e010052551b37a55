package backend_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/mdc/internal/backend"
	"github.com/Zuo-Peng/mdc/internal/stubserver"
)

func textUpload(name, content string) backend.Upload {
	return backend.Upload{
		Name:      name,
		MimeType:  "text/plain",
		SizeBytes: int64(len(content)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func TestClient_AgainstStubServer(t *testing.T) {
	stub := stubserver.New(nil, time.Minute)
	ts := httptest.NewServer(stub)
	defer ts.Close()

	c := backend.NewClient(ts.URL + "/")
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))

	res, err := c.SubmitCorpus(ctx, []backend.Upload{
		textUpload("a.txt", "alpha"),
		textUpload(`we"ird.txt`, "beta"),
	})
	require.NoError(t, err)
	assert.True(t, res.Indexed)
	require.NotEmpty(t, res.SessionID)

	ans, err := c.AskQuestion(ctx, res.SessionID, "What is X?")
	require.NoError(t, err)
	assert.Contains(t, ans.Answer, "a.txt")
	assert.Contains(t, ans.Answer, `we"ird.txt`)
	assert.Len(t, stub.History(res.SessionID), 2)

	_, err = c.AskQuestion(ctx, "nope", "hi")
	apiErr, ok := backend.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Detail, "Invalid or expired")
}

func TestClient_UploadSendsContent(t *testing.T) {
	var gotName, gotType, gotBody string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil || len(r.MultipartForm.File["files"]) != 1 {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		fh := r.MultipartForm.File["files"][0]
		gotName = fh.Filename
		gotType = fh.Header.Get("Content-Type")
		f, err := fh.Open()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		gotBody = string(b)
		w.Write([]byte(`{"session_id":"abc","indexed":true}`))
	}))
	defer ts.Close()

	res, err := backend.NewClient(ts.URL).SubmitCorpus(context.Background(), []backend.Upload{textUpload("n.txt", "hello world")})
	require.NoError(t, err)
	assert.Equal(t, "abc", res.SessionID)
	assert.Equal(t, "n.txt", gotName)
	assert.Equal(t, "text/plain", gotType)
	assert.Equal(t, "hello world", gotBody)
}

func TestClient_ErrorDetail(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
	}{
		{"json detail", http.StatusInternalServerError, `{"detail":"boom"}`, "boom"},
		{"no body", http.StatusBadGateway, ``, "Chat failed"},
		{"html body", http.StatusBadGateway, `<html>bad gateway</html>`, "Chat failed"},
		{"empty detail", http.StatusInternalServerError, `{"detail":""}`, "Chat failed"},
		{"structured detail", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body"]}]}`, `[{"loc":["body"]}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			_, err := backend.NewClient(ts.URL).AskQuestion(context.Background(), "s", "m")
			apiErr, ok := backend.IsAPIError(err)
			require.True(t, ok, "got %v", err)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantDetail, apiErr.Detail)
		})
	}
}

func TestClient_UploadFallbackDetail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := backend.NewClient(ts.URL).SubmitCorpus(context.Background(), []backend.Upload{textUpload("a", "b")})
	apiErr, ok := backend.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "Upload failed", apiErr.Detail)
}

func TestClient_MalformedSuccessBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer ts.Close()

	c := backend.NewClient(ts.URL)
	_, err := c.AskQuestion(context.Background(), "s", "m")
	assert.ErrorContains(t, err, "decode chat response")
	_, isAPI := backend.IsAPIError(err)
	assert.False(t, isAPI)
}

func TestClient_TransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := backend.NewClient(url).SubmitCorpus(context.Background(), []backend.Upload{textUpload("a", "b")})
	assert.Error(t, err)
	_, isAPI := backend.IsAPIError(err)
	assert.False(t, isAPI)
}

func TestClient_OpenFailureAbortsUpload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.Write([]byte(`{"session_id":"abc"}`))
	}))
	defer ts.Close()

	_, err := backend.NewClient(ts.URL).SubmitCorpus(context.Background(), []backend.Upload{{
		Name: "gone.txt",
		Open: func() (io.ReadCloser, error) { return nil, io.ErrUnexpectedEOF },
	}})
	assert.Error(t, err)
}

func TestClient_HealthUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "warming up", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	err := backend.NewClient(ts.URL).Health(context.Background())
	apiErr, ok := backend.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "Service Unavailable", apiErr.Detail)
}
