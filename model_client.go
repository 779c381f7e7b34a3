package ocragent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"
)

// ModelClient is the only gateway to the external DeepSeek-OCR inference
// runtime. The model itself stays an opaque third-party artifact behind an
// HTTP endpoint; this client never sees weights or tokenizers.
type ModelClient struct {
	runtimeURI     string
	modelName      string
	authToken      string
	requestTimeout time.Duration
	client         *http.Client

	mu     deadlock.RWMutex
	loaded bool
}

type inferenceRequest struct {
	Prompt    string `json:"prompt"`
	ImageB64  string `json:"image_base64"`
	BaseSize  int    `json:"base_size"`
	ImageSize int    `json:"image_size"`
	CropMode  bool   `json:"crop_mode"`
}

type inferenceResponse struct {
	Text string `json:"text"`
}

// ModelInfo is what /health reports about the runtime connection.
type ModelInfo struct {
	ModelName  string `json:"model_name"`
	RuntimeURI string `json:"runtime"`
	Loaded     bool   `json:"model_loaded"`
}

func NewModelClient(appConfig *AppConfig) *ModelClient {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxConnsPerHost:     4,
		MaxIdleConnsPerHost: 4,
		MaxIdleConns:        32,
		IdleConnTimeout:     90 * time.Second,
	}
	return &ModelClient{
		runtimeURI:     strings.TrimRight(appConfig.RuntimeURI, "/"),
		modelName:      appConfig.ModelName,
		authToken:      appConfig.AuthToken,
		requestTimeout: time.Duration(appConfig.RequestTimeout) * time.Second,
		client:         &http.Client{Transport: transport},
	}
}

func (c *ModelClient) IsLoaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

func (c *ModelClient) Info() ModelInfo {
	return ModelInfo{
		ModelName:  c.modelName,
		RuntimeURI: c.runtimeURI,
		Loaded:     c.IsLoaded(),
	}
}

// EnsureLoaded checks the runtime health endpoint once and remembers the
// outcome. The runtime owns model loading; from here it only matters whether
// it answers. First-time model download can take a while on the runtime side,
// which is why the check uses the full request timeout. The probe runs
// outside the mutex so IsLoaded callers never wait on the network; concurrent
// callers may probe twice, the check is idempotent.
func (c *ModelClient) EnsureLoaded(ctx context.Context) error {
	if c.IsLoaded() {
		return nil
	}

	if err := c.probeRuntime(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	c.loaded = true
	c.mu.Unlock()

	log.Info().Str("component", "OCR_MODEL").Str("runtime", c.runtimeURI).
		Str("model", c.modelName).Msg("model runtime is up")
	return nil
}

func (c *ModelClient) probeRuntime(ctx context.Context) error {
	reqCtx := ctx
	var cancel context.CancelFunc
	if c.requestTimeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}

	request, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.runtimeURI+"/health", nil)
	if err != nil {
		return err
	}
	c.setHeaders(request)

	resp, err := c.client.Do(request)
	if err != nil {
		return errors.Wrapf(err, "model runtime at %s is not reachable", c.runtimeURI)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("model runtime at %s reported status %d: %s", c.runtimeURI, resp.StatusCode, string(data))
	}

	return nil
}

const (
	inferMaxAttempts = 3
	inferRetryDelay  = 200 * time.Millisecond
)

// Infer runs one inference call. The runtime occasionally answers with empty
// text on a healthy 200; those are re-asked a couple of times before giving
// up, any other failure is returned as is.
func (c *ModelClient) Infer(ctx context.Context, prompt, imageB64 string, preset ResolutionPreset) (string, error) {
	if err := c.EnsureLoaded(ctx); err != nil {
		return "", err
	}

	for attempt := 1; attempt <= inferMaxAttempts; attempt++ {
		text, err := c.invoke(ctx, prompt, imageB64, preset)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(text) != "" {
			return text, nil
		}
		if attempt < inferMaxAttempts {
			time.Sleep(inferRetryDelay)
			continue
		}
		log.Warn().Str("component", "OCR_MODEL").Int("attempts", attempt).
			Msg("model returned empty text on every attempt")
	}
	return "", nil
}

func (c *ModelClient) invoke(ctx context.Context, prompt, imageB64 string, preset ResolutionPreset) (string, error) {
	payload := inferenceRequest{
		Prompt:    prompt,
		ImageB64:  imageB64,
		BaseSize:  preset.BaseSize,
		ImageSize: preset.ImageSize,
		CropMode:  preset.CropMode,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	reqCtx := ctx
	var cancel context.CancelFunc
	if c.requestTimeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}

	request, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.runtimeURI+"/infer", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	request.Header.Set("Content-Type", "application/json")
	c.setHeaders(request)

	resp, err := c.client.Do(request)
	if err != nil {
		return "", errors.Wrap(err, "inference call failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("inference failed: status %d: %s", resp.StatusCode, string(data))
	}

	var parsed inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	return parsed.Text, nil
}

func (c *ModelClient) setHeaders(request *http.Request) {
	if c.authToken != "" {
		request.Header.Set("X-Internal-Token", c.authToken)
	}
}
