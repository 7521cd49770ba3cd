package telegram

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/volleyball-bot/internal/platform/logging"
	"github.com/riskibarqy/volleyball-bot/internal/platform/resilience"
	"github.com/riskibarqy/volleyball-bot/internal/usecase"
	"github.com/valyala/fasthttp"
)

const (
	defaultBaseURL = "https://api.telegram.org"
	maxBodySize    = 4 << 20

	outcomeOK    = "ok"
	outcomeError = "error"
)

var errTelegramTransient = crerr.New("telegram transient failure")

// APIError is a non-ok reply from the Bot API.
type APIError struct {
	Method      string
	Code        int
	Description string
	RetryAfter  time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s failed code=%d: %s", e.Method, e.Code, e.Description)
}

// CallRecorder receives one observation per Bot API call.
type CallRecorder interface {
	TelegramCall(method, outcome string)
}

type ClientConfig struct {
	BaseURL        string
	Token          string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	Recorder       CallRecorder
}

type Client struct {
	http           *fasthttp.Client
	baseURL        string
	token          string
	timeout        time.Duration
	logger         *logging.Logger
	breaker        *resilience.Breaker
	circuitEnabled bool
	recorder       CallRecorder
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)
	breaker := resilience.NewBreaker(breakerCfg, resilience.OnStateChange(func(from, to resilience.State) {
		logger.Warn("telegram circuit breaker state changed", "from", from.String(), "to", to.String())
	}))

	return &Client{
		http: &fasthttp.Client{
			Name:                "volleyball-bot",
			MaxResponseBodySize: maxBodySize,
			WriteTimeout:        timeout,
		},
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		timeout:        timeout,
		logger:         logger,
		breaker:        breaker,
		circuitEnabled: breakerCfg.Enabled,
		recorder:       cfg.Recorder,
	}
}

func (c *Client) SendMessage(ctx context.Context, msg OutgoingMessage) (Message, error) {
	if msg.ChatID == 0 {
		return Message{}, crerr.New("chat id is required")
	}
	if strings.TrimSpace(msg.Text) == "" {
		return Message{}, crerr.New("message text is required")
	}

	var out Message
	if err := call(ctx, c, "sendMessage", msg, c.timeout, &out); err != nil {
		return Message{}, err
	}
	return out, nil
}

func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID, text string) error {
	if strings.TrimSpace(callbackID) == "" {
		return crerr.New("callback query id is required")
	}
	payload := map[string]any{"callback_query_id": callbackID}
	if text != "" {
		payload["text"] = text
	}

	var ok bool
	return call(ctx, c, "answerCallbackQuery", payload, c.timeout, &ok)
}

func (c *Client) SetWebhook(ctx context.Context, webhookURL, secret string) error {
	if strings.TrimSpace(webhookURL) == "" {
		return crerr.New("webhook url is required")
	}
	payload := map[string]any{
		"url":             webhookURL,
		"allowed_updates": []string{"message", "callback_query"},
	}
	if secret != "" {
		payload["secret_token"] = secret
	}

	var ok bool
	if err := call(ctx, c, "setWebhook", payload, c.timeout, &ok); err != nil {
		return err
	}
	c.logger.InfoContext(ctx, "telegram webhook registered", "url", webhookURL)
	return nil
}

func (c *Client) DeleteWebhook(ctx context.Context) error {
	var ok bool
	return call(ctx, c, "deleteWebhook", map[string]any{"drop_pending_updates": false}, c.timeout, &ok)
}

// GetUpdates long-polls for updates with an id of at least offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, pollTimeout time.Duration) ([]Update, error) {
	seconds := int(pollTimeout / time.Second)
	if seconds < 0 {
		seconds = 0
	}
	payload := map[string]any{
		"offset":          offset,
		"timeout":         seconds,
		"allowed_updates": []string{"message", "callback_query"},
	}

	var out []Update
	if err := call(ctx, c, "getUpdates", payload, pollTimeout+c.timeout, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func call[T any](ctx context.Context, c *Client, method string, payload any, timeout time.Duration, out *T) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "telegram circuit breaker rejected request", "method", method, "state", c.breaker.State().String())
			c.observe(method, outcomeError)
			return fmt.Errorf("%w: telegram is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	result, err := c.execute(ctx, method, payload, timeout)
	c.recordCircuitResult(err)
	if err != nil {
		c.observe(method, outcomeError)
		return err
	}
	c.observe(method, outcomeOK)

	var envelope apiResponse[T]
	if err := sonic.Unmarshal(result, &envelope); err != nil {
		return crerr.Wrapf(err, "decode telegram %s response", method)
	}
	*out = envelope.Result
	return nil
}

func (c *Client) execute(ctx context.Context, method string, payload any, timeout time.Duration) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.token == "" {
		return nil, crerr.New("telegram bot token is empty")
	}

	body, err := sonic.Marshal(payload)
	if err != nil {
		return nil, crerr.Wrapf(err, "marshal telegram %s payload", method)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/bot" + c.token + "/" + method)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBodyRaw(body)

	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", errTelegramTransient, method, c.redact(err.Error()))
	}

	raw := append([]byte(nil), resp.Body()...)
	status := resp.StatusCode()

	var head apiStatus
	if err := sonic.Unmarshal(raw, &head); err != nil {
		if isRetryableStatus(status) {
			return nil, fmt.Errorf("%w: %s status=%d", errTelegramTransient, method, status)
		}
		return nil, crerr.Wrapf(err, "decode telegram %s response status=%d", method, status)
	}
	if head.OK {
		return raw, nil
	}

	apiErr := &APIError{Method: method, Code: head.ErrorCode, Description: head.Description}
	if apiErr.Code == 0 {
		apiErr.Code = status
	}
	if head.Parameters != nil && head.Parameters.RetryAfter > 0 {
		apiErr.RetryAfter = time.Duration(head.Parameters.RetryAfter) * time.Second
	}
	if isRetryableStatus(apiErr.Code) {
		return nil, fmt.Errorf("%w: %w", errTelegramTransient, apiErr)
	}
	return nil, apiErr
}

func (c *Client) recordCircuitResult(err error) {
	if !c.circuitEnabled || c.breaker == nil {
		return
	}
	if err != nil && stderrors.Is(err, errTelegramTransient) {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}

func (c *Client) observe(method, outcome string) {
	if c.recorder != nil {
		c.recorder.TelegramCall(method, outcome)
	}
}

func (c *Client) redact(text string) string {
	if c.token == "" {
		return text
	}
	return strings.ReplaceAll(text, c.token, "***")
}

// IsTransient reports whether err came from a network failure or a retryable Bot API status.
func IsTransient(err error) bool {
	return stderrors.Is(err, errTelegramTransient)
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == fasthttp.StatusTooManyRequests ||
		statusCode == fasthttp.StatusRequestTimeout ||
		statusCode >= fasthttp.StatusInternalServerError
}
