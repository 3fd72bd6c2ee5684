package main

import (
	"errors"
	"time"

	"github.com/berfenger/lowcarbon-sensors/internal/adapter/rest"
	"github.com/berfenger/lowcarbon-sensors/internal/config"
	"github.com/berfenger/lowcarbon-sensors/internal/core/service"

	"go.uber.org/zap"
)

type globalFlags struct {
	baseURL       string
	accessToken   string
	timeoutMillis uint32
	verbose       bool
}

// newController builds a form controller talking to the configured backend.
// Flags take precedence over the environment and the config file.
func newController(flags *globalFlags) (*service.SensorFormController, error) {
	restCfg := config.RESTConfig{
		BaseURL:       flags.baseURL,
		AccessToken:   flags.accessToken,
		TimeoutMillis: flags.timeoutMillis,
	}
	if restCfg.BaseURL == "" || restCfg.TimeoutMillis == 0 {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		if restCfg.BaseURL == "" {
			restCfg.BaseURL = cfg.REST.BaseURL
		}
		if restCfg.AccessToken == "" {
			restCfg.AccessToken = cfg.REST.AccessToken
		}
		if restCfg.TimeoutMillis == 0 {
			restCfg.TimeoutMillis = cfg.REST.TimeoutMillis
		}
	}
	baseURL, err := config.CheckRESTBaseURL(restCfg.BaseURL)
	if err != nil {
		return nil, err
	}

	logger := zap.NewNop()
	if flags.verbose {
		logger = zap.Must(zap.NewDevelopment())
	}

	client, err := rest.NewClient(baseURL, restCfg.AccessToken, time.Duration(restCfg.TimeoutMillis)*time.Millisecond, logger)
	if err != nil {
		return nil, err
	}
	return service.NewSensorFormController(client, nil, logger), nil
}

// checkError turns the message stored by the last operation into an error.
func checkError(c *service.SensorFormController) error {
	if view := c.View(); view.HasError() {
		return errors.New(view.ErrorMessage)
	}
	return nil
}
