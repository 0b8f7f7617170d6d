package topaz_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"photo-enhance-backend/internal/topaz"
)

// jobServer simulates the full remote workflow: one submission endpoint, a
// status endpoint returning scripted states, and a download endpoint.
type jobServer struct {
	t *testing.T

	mu           sync.Mutex
	submitParams map[string]string
	submitPath   string
	statusStates []string
	statusCalls  int
	result       []byte
	eta          string

	server *httptest.Server
}

func newJobServer(t *testing.T, states []string, result []byte) *jobServer {
	js := &jobServer{t: t, statusStates: states, result: result}
	js.server = httptest.NewServer(http.HandlerFunc(js.handle))
	t.Cleanup(js.server.Close)
	return js
}

func (js *jobServer) handle(w http.ResponseWriter, r *http.Request) {
	js.mu.Lock()
	defer js.mu.Unlock()

	switch {
	case r.Method == http.MethodPost:
		require.NoError(js.t, r.ParseMultipartForm(32<<20))
		js.submitPath = r.URL.Path
		js.submitParams = map[string]string{}
		for key, values := range r.MultipartForm.Value {
			js.submitParams[key] = values[0]
		}
		w.Header().Set("Content-Type", "application/json")
		body := `{"process_id": "proc-42"`
		if js.eta != "" {
			body += `, "eta": ` + js.eta
		}
		body += `}`
		w.Write([]byte(body))

	case r.URL.Path == "/status/proc-42":
		state := js.statusStates[len(js.statusStates)-1]
		if js.statusCalls < len(js.statusStates) {
			state = js.statusStates[js.statusCalls]
		}
		js.statusCalls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "` + state + `"}`))

	case r.URL.Path == "/download/proc-42":
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(js.result)

	default:
		js.t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}
}

func processClient(serverURL string, clock *fakeClock) *topaz.Client {
	return topaz.NewClient(topaz.Options{
		APIKey:  "test-key",
		BaseURL: serverURL,
		Now:     clock.Now,
		Sleep:   clock.Sleep,
	})
}

func TestProcess_EndToEnd(t *testing.T) {
	js := newJobServer(t, []string{"Pending", "Processing", "Completed"}, jpegBytes)
	clock := newFakeClock()
	client := processClient(js.server.URL, clock)

	result, err := client.Process(context.Background(), topaz.ProcessRequest{
		Mode:            topaz.ModeEnhance,
		Model:           "Standard V2",
		Image:           jpegBytes,
		ContentType:     "image/jpeg",
		SourceWidth:     100,
		SourceHeight:    200,
		ScaleMultiplier: 2.0,
	})

	require.NoError(t, err)
	assert.Equal(t, "proc-42", result.ProcessID)
	assert.Equal(t, jpegBytes, result.Bytes)
	assert.Equal(t, topaz.FormatJPEG, result.Format)
	assert.False(t, result.DimensionsOverridden)
	assert.Equal(t, 200, result.OutputWidth)
	assert.Equal(t, 400, result.OutputHeight)

	assert.Equal(t, "/enhance/async", js.submitPath)
	assert.Equal(t, "Standard V2", js.submitParams["model"])
	assert.Equal(t, "200", js.submitParams["output_width"])
	assert.Equal(t, "400", js.submitParams["output_height"])
	assert.Equal(t, 3, js.statusCalls)
}

func TestProcess_MultiplierOverrideSurfaced(t *testing.T) {
	js := newJobServer(t, []string{"Completed"}, jpegBytes)
	clock := newFakeClock()
	client := processClient(js.server.URL, clock)

	result, err := client.Process(context.Background(), topaz.ProcessRequest{
		Mode:            topaz.ModeEnhance,
		Model:           "Standard V2",
		Image:           jpegBytes,
		SourceWidth:     100,
		SourceHeight:    100,
		Width:           999,
		Height:          999,
		ScaleMultiplier: 4.0,
	})

	require.NoError(t, err)
	assert.True(t, result.DimensionsOverridden)
	assert.Equal(t, 400, result.OutputWidth)
	assert.Equal(t, 400, result.OutputHeight)
	assert.Equal(t, "400", js.submitParams["output_width"])
}

func TestProcess_InvalidCombinationMakesNoNetworkCall(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	clock := newFakeClock()
	client := processClient(server.URL, clock)

	_, err := client.Process(context.Background(), topaz.ProcessRequest{
		Mode:  topaz.ModeDenoise,
		Model: "Dust-Scratch",
		Image: jpegBytes,
	})

	var invalid *topaz.InvalidInputError
	require.True(t, errors.As(err, &invalid))
	assert.False(t, called)
}

func TestProcess_MissingCredentials(t *testing.T) {
	clock := newFakeClock()
	client := topaz.NewClient(topaz.Options{Now: clock.Now, Sleep: clock.Sleep})

	_, err := client.Process(context.Background(), topaz.ProcessRequest{
		Mode:  topaz.ModeEnhance,
		Model: "Standard V2",
		Image: jpegBytes,
	})

	var invalid *topaz.InvalidInputError
	assert.True(t, errors.As(err, &invalid))
}

func TestProcess_ETAWidensDeadline(t *testing.T) {
	// Budget of 10s, server promises 60s. Completion at the fourth poll
	// lands well past the original budget but inside the widened one.
	js := newJobServer(t, []string{"Pending", "Pending", "Pending", "Completed"}, jpegBytes)
	js.eta = `"60"`
	clock := newFakeClock()
	client := processClient(js.server.URL, clock)

	result, err := client.Process(context.Background(), topaz.ProcessRequest{
		Mode:    topaz.ModeEnhance,
		Model:   "Standard V2",
		Image:   jpegBytes,
		Timeout: 10 * time.Second,
	})

	require.NoError(t, err)
	assert.Equal(t, "proc-42", result.ProcessID)
	assert.Equal(t, 4, js.statusCalls)
}

func TestProcess_RemoteFailurePropagates(t *testing.T) {
	js := newJobServer(t, []string{"Pending", "Failed"}, nil)
	clock := newFakeClock()
	client := processClient(js.server.URL, clock)

	_, err := client.Process(context.Background(), topaz.ProcessRequest{
		Mode:  topaz.ModeSharpen,
		Model: "Standard V2",
		Image: jpegBytes,
	})

	var remote *topaz.RemoteJobError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, "proc-42", remote.ProcessID)
}
