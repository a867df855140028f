package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	defaultRelayerURL     = "http://127.0.0.1:8081"
	defaultRequestTimeout = 60 * time.Second
)

var errMissingConfigPath = errors.New("missing required flag: -config")

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		d.Duration = 0
		return nil
	}

	switch value.Tag {
	case "!!int":
		secs, err := strconv.ParseInt(value.Value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value.Value, err)
		}
		d.Duration = time.Duration(secs) * time.Second
	case "!!str", "":
		if value.Value == "" {
			d.Duration = 0
			return nil
		}
		parsed, err := time.ParseDuration(value.Value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value.Value, err)
		}
		d.Duration = parsed
	default:
		return fmt.Errorf("unsupported duration type tag %q", value.Tag)
	}
	return nil
}

type config struct {
	RelayerURL     string       `yaml:"relayer_url"`
	RequestTimeout duration     `yaml:"request_timeout"`
	Actions        []actionSpec `yaml:"actions"`
}

type actionSpec struct {
	Type string `yaml:"type"`

	Protocol string `yaml:"protocol"`
	Gauge    string `yaml:"gauge"`
	User     string `yaml:"user"`
	Epoch    uint64 `yaml:"epoch"`
	Block    uint64 `yaml:"block"`

	// ExpectStatus lets a scenario assert failures too, e.g. 422 for an
	// epoch that has not started. Zero means 200.
	ExpectStatus int      `yaml:"expect_status"`
	Duration     duration `yaml:"duration"`
}

func main() {
	cfgPath := flag.String("config", "", "Path to YAML file describing the scenario")
	flag.Parse()

	if *cfgPath == "" {
		flag.Usage()
		fmt.Fprintln(os.Stderr, errMissingConfigPath)
		os.Exit(2)
	}

	cfg, err := loadConfig(*cfgPath, os.ReadFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := run(context.Background(), cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string, reader func(string) ([]byte, error)) (config, error) {
	data, err := reader(path)
	if err != nil {
		return config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return config{}, fmt.Errorf("parse config yaml: %w", err)
	}

	if cfg.RelayerURL == "" {
		cfg.RelayerURL = defaultRelayerURL
	}
	if cfg.RequestTimeout.Duration == 0 {
		cfg.RequestTimeout.Duration = defaultRequestTimeout
	}
	if len(cfg.Actions) == 0 {
		return config{}, errors.New("config must include at least one action")
	}
	return cfg, nil
}

func run(ctx context.Context, cfg config) error {
	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).Level(zerolog.InfoLevel).With().Timestamp().Logger()

	client := &http.Client{Timeout: cfg.RequestTimeout.Duration}
	base := strings.TrimRight(cfg.RelayerURL, "/")

	logger.Info().Str("relayer", base).Int("actions", len(cfg.Actions)).Msg("starting scenario")

	for idx, action := range cfg.Actions {
		logger := logger.With().Int("step", idx+1).Str("action", action.Type).Logger()
		switch action.Type {
		case "build", "build-proof":
			if err := executeProofPost(ctx, client, base+"/v1/proofs", action, logger); err != nil {
				return fmt.Errorf("action %d (%s): %w", idx+1, action.Type, err)
			}
		case "calldata":
			if err := executeProofPost(ctx, client, base+"/v1/calldata", action, logger); err != nil {
				return fmt.Errorf("action %d (%s): %w", idx+1, action.Type, err)
			}
		case "get", "get-proof":
			if err := executeGetProof(ctx, client, base, action, logger); err != nil {
				return fmt.Errorf("action %d (%s): %w", idx+1, action.Type, err)
			}
		case "protocols":
			if err := executeGet(ctx, client, base+"/v1/protocols", action, logger); err != nil {
				return fmt.Errorf("action %d (%s): %w", idx+1, action.Type, err)
			}
		case "current-epoch":
			if err := executeGet(ctx, client, base+"/v1/epochs/current", action, logger); err != nil {
				return fmt.Errorf("action %d (%s): %w", idx+1, action.Type, err)
			}
		case "wait", "sleep":
			if err := executeWait(action, logger); err != nil {
				return fmt.Errorf("action %d (%s): %w", idx+1, action.Type, err)
			}
		default:
			return fmt.Errorf("action %d: unsupported type %q", idx+1, action.Type)
		}
	}

	logger.Info().Msg("scenario completed")
	return nil
}

func executeWait(action actionSpec, logger zerolog.Logger) error {
	if action.Duration.Duration <= 0 {
		return errors.New("wait action requires a positive duration")
	}
	logger.Info().Dur("duration", action.Duration.Duration).Msg("sleeping")
	time.Sleep(action.Duration.Duration)
	return nil
}

func executeProofPost(ctx context.Context, client *http.Client, endpoint string, action actionSpec, logger zerolog.Logger) error {
	if !common.IsHexAddress(action.Gauge) {
		return errors.New("action requires a gauge address")
	}
	if action.User != "" && !common.IsHexAddress(action.User) {
		return fmt.Errorf("invalid user address %q", action.User)
	}

	protocol := action.Protocol
	if protocol == "" {
		protocol = "curve"
	}
	body := map[string]any{
		"protocol": protocol,
		"gauge":    action.Gauge,
	}
	if action.User != "" {
		body["user"] = action.User
	}
	if action.Epoch != 0 {
		body["epoch"] = action.Epoch
	}
	if action.Block != 0 {
		body["block_number"] = action.Block
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return execute(client, req, action, logger)
}

func executeGetProof(ctx context.Context, client *http.Client, base string, action actionSpec, logger zerolog.Logger) error {
	if !common.IsHexAddress(action.Gauge) {
		return errors.New("action requires a gauge address")
	}
	if action.Epoch == 0 {
		return errors.New("get-proof requires an epoch")
	}

	protocol := action.Protocol
	if protocol == "" {
		protocol = "curve"
	}
	endpoint := fmt.Sprintf("%s/v1/proofs/%s/%s/%d", base, url.PathEscape(protocol), action.Gauge, action.Epoch)
	if action.User != "" {
		if !common.IsHexAddress(action.User) {
			return fmt.Errorf("invalid user address %q", action.User)
		}
		endpoint += "?user=" + url.QueryEscape(action.User)
	}
	return executeGet(ctx, client, endpoint, action, logger)
}

func executeGet(ctx context.Context, client *http.Client, endpoint string, action actionSpec, logger zerolog.Logger) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return execute(client, req, action, logger)
}

func execute(client *http.Client, req *http.Request, action actionSpec, logger zerolog.Logger) error {
	want := action.ExpectStatus
	if want == 0 {
		want = http.StatusOK
	}

	started := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	logger.Info().
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(started)).
		Msg("request finished")

	if resp.StatusCode != want {
		return fmt.Errorf("expected status %d, got %d: %s", want, resp.StatusCode, truncate(body, 400))
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
