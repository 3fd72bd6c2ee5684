package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/berfenger/lowcarbon-sensors/internal/config"
	"github.com/berfenger/lowcarbon-sensors/internal/core/domain"
	"github.com/berfenger/lowcarbon-sensors/internal/core/port"

	"go.uber.org/zap"
)

const resolveSuffix = "?resolved=true"

// Client is the REST data-access service for Sensor assets.
type Client struct {
	baseURL     string
	accessToken string
	client      *http.Client
	logger      *zap.Logger
}

// NewClient builds a client rooted at baseURL (for instance http://localhost:3000/api).
func NewClient(baseURL, accessToken string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("rest: empty base url")
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		client:      &http.Client{Timeout: timeout},
		logger:      logger.With(zap.String("component", "rest")),
	}, nil
}

func NewClientFromConfig(cfg config.RESTConfig, logger *zap.Logger) (*Client, error) {
	return NewClient(cfg.BaseURL, cfg.AccessToken, time.Duration(cfg.TimeoutMillis)*time.Millisecond, logger)
}

func (c *Client) GetAll(ctx context.Context) ([]domain.Sensor, error) {
	var result []domain.Sensor
	if err := c.doJSON(ctx, http.MethodGet, c.collectionPath(), nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetAsset(ctx context.Context, id string) (*domain.Sensor, error) {
	var result domain.Sensor
	if err := c.doJSON(ctx, http.MethodGet, c.assetPath(id)+resolveSuffix, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) AddAsset(ctx context.Context, sensor domain.NewSensor) error {
	return c.doJSON(ctx, http.MethodPost, c.collectionPath(), sensor, nil)
}

func (c *Client) UpdateAsset(ctx context.Context, id string, sensor domain.SensorUpdate) error {
	return c.doJSON(ctx, http.MethodPut, c.assetPath(id), sensor, nil)
}

func (c *Client) DeleteAsset(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, c.assetPath(id), nil, nil)
}

func (c *Client) collectionPath() string {
	return "/" + domain.SensorNamespace
}

func (c *Client) assetPath(id string) string {
	return fmt.Sprintf("/%s/%s", domain.SensorNamespace, url.PathEscape(id))
}

// doJSON performs the request and maps failures to the error texts the form
// controller understands: "Server error" when the server cannot be reached and
// "<code> - <status text>" for unsuccessful responses.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(payload)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.accessToken != "" {
		req.Header.Set("X-Access-Token", c.accessToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("rest: request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return domain.ErrServerError
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%d - %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ensure interface compliance
var _ port.SensorService = (*Client)(nil)
