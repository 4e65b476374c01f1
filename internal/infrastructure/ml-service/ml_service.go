package ml_service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DRSN-tech/visual-matcher/internal/cfg"
	"github.com/DRSN-tech/visual-matcher/pkg/clip"
	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/DRSN-tech/visual-matcher/pkg/jitter"
	"github.com/DRSN-tech/visual-matcher/pkg/logger"
	"github.com/DRSN-tech/visual-matcher/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
)

// Имена входов объединённой модели CLIP.
const (
	InputPixelValues   = "pixel_values"
	InputIDs           = "input_ids"
	InputAttentionMask = "attention_mask"
)

const (
	maxBackoff     = 30 * time.Second
	maxErrBodySize = 4 << 10
)

// MLService клиент inference-сервера по протоколу KServe v2 (REST).
type MLService struct {
	client     *http.Client
	baseURL    string
	modelName  string
	timeout    time.Duration
	maxRetries int
	backoff    jitter.Backoff
	logger     logger.Logger
}

func NewMLService(c *cfg.MLServiceCfg, client *http.Client, logger logger.Logger) *MLService {
	if client == nil {
		client = &http.Client{}
	}

	maxRetries := c.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	return &MLService{
		client:     client,
		baseURL:    strings.TrimRight(c.URL, "/"),
		modelName:  c.ModelName,
		timeout:    c.Timeout,
		maxRetries: maxRetries,
		backoff: jitter.Backoff{
			Base:   c.RetryBackoff,
			Max:    maxBackoff,
			Factor: jitter.DefaultFactor,
		},
		logger: logger,
	}
}

type inferTensor struct {
	Name     string  `json:"name"`
	Shape    []int64 `json:"shape"`
	Datatype string  `json:"datatype"`
	Data     any     `json:"data"`
}

type inferRequest struct {
	Inputs []inferTensor `json:"inputs"`
}

type outputTensor struct {
	Name     string    `json:"name"`
	Shape    []int64   `json:"shape"`
	Datatype string    `json:"datatype"`
	Data     []float32 `json:"data"`
}

type inferResponse struct {
	ModelName string         `json:"model_name"`
	Outputs   []outputTensor `json:"outputs"`
}

// Infer отправляет тензор изображения и постоянные текстовые входы модели,
// возвращает выходы в порядке, объявленном моделью.
// Каждая попытка ограничена таймаутом, между попытками экспоненциальная задержка с джиттером.
func (m *MLService) Infer(ctx context.Context, tensor clip.Tensor) ([]clip.NamedTensor, error) {
	const op = "MLService.Infer"

	ctx, span := tracing.StartClient(ctx, "ml.infer",
		attribute.String("ml.model", m.modelName),
		attribute.Int("ml.max_retries", m.maxRetries),
	)
	defer span.End()

	body, err := json.Marshal(newInferRequest(tensor))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	var lastErr error
	for attempt := 0; attempt < m.maxRetries; attempt++ {
		outputs, err := m.infer(ctx, body)
		if err == nil {
			return outputs, nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == m.maxRetries-1 {
			break
		}

		sleepTime := m.backoff.Delay(attempt)
		m.logger.Warnf("inference failed, retrying in %v (attempt %d): %v", sleepTime, attempt+1, err)
		select {
		case <-time.After(sleepTime):
		case <-ctx.Done():
			tracing.RecordError(span, ctx.Err())
			return nil, e.Wrap(op, ctx.Err())
		}
	}

	tracing.RecordError(span, lastErr)
	return nil, e.Wrap(op, fmt.Errorf("all %d attempts failed: %w", m.maxRetries, lastErr))
}

func (m *MLService) infer(ctx context.Context, body []byte) ([]clip.NamedTensor, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.modelURL("infer"), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBodySize))
		return nil, fmt.Errorf("inference server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var res inferResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode inference response: %w", err)
	}

	outputs := make([]clip.NamedTensor, 0, len(res.Outputs))
	for _, o := range res.Outputs {
		outputs = append(outputs, clip.NamedTensor{Name: o.Name, Shape: o.Shape, Data: o.Data})
	}

	return outputs, nil
}

// Ready проверяет готовность модели на inference-сервере.
func (m *MLService) Ready(ctx context.Context) error {
	const op = "MLService.Ready"

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.modelURL("ready"), nil)
	if err != nil {
		return e.Wrap(op, err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return e.Wrap(op, e.Mark(e.ErrModelNotReady, err))
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return e.Wrap(op, fmt.Errorf("%w: status %d", e.ErrModelNotReady, resp.StatusCode))
	}

	return nil
}

func (m *MLService) modelURL(action string) string {
	return m.baseURL + "/v2/models/" + url.PathEscape(m.modelName) + "/" + action
}

func newInferRequest(tensor clip.Tensor) inferRequest {
	inputIDs, attentionMask := clip.TextInputs()
	textShape := []int64{1, clip.SequenceLength}

	return inferRequest{Inputs: []inferTensor{
		{
			Name:     InputPixelValues,
			Shape:    []int64{int64(tensor.Shape[0]), int64(tensor.Shape[1]), int64(tensor.Shape[2]), int64(tensor.Shape[3])},
			Datatype: "FP32",
			Data:     tensor.Data,
		},
		{Name: InputIDs, Shape: textShape, Datatype: "INT64", Data: inputIDs},
		{Name: InputAttentionMask, Shape: textShape, Datatype: "INT64", Data: attentionMask},
	}}
}
