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
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
)

type commandFlags struct {
	relayerURL string
	action     string

	protocol    string
	gauge       string
	user        string
	epoch       uint64
	blockNumber uint64
	timeout     time.Duration
}

func main() {
	flags := parseFlags()

	if err := run(flags); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() commandFlags {
	var flags commandFlags
	flag.StringVar(&flags.relayerURL, "relayer", "http://127.0.0.1:8081", "Relayer API base URL")
	flag.StringVar(&flags.action, "action", "", "Action to perform: protocols|current-epoch|build|get|list|calldata")

	flag.StringVar(&flags.protocol, "protocol", "curve", "Protocol layout name")
	flag.StringVar(&flags.gauge, "gauge", "", "Gauge address")
	flag.StringVar(&flags.user, "user", "", "Optional voter address")
	flag.Uint64Var(&flags.epoch, "epoch", 0, "Epoch timestamp (0 lets the relayer pick the current week)")
	flag.Uint64Var(&flags.blockNumber, "block", 0, "Optional block number to prove against")
	flag.DurationVar(&flags.timeout, "timeout", 60*time.Second, "Per-request timeout")

	flag.Parse()

	if flags.action == "" {
		flag.Usage()
		fmt.Fprintln(os.Stderr, "\nmissing required flag: -action")
		os.Exit(2)
	}

	return flags
}

func run(cfg commandFlags) error {
	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).Level(zerolog.InfoLevel).With().Timestamp().Logger()

	client := &http.Client{Timeout: cfg.timeout}
	base := strings.TrimRight(cfg.relayerURL, "/")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.timeout)
	defer cancel()

	logger.Info().Str("relayer", base).Str("action", cfg.action).Msg("calling relayer")

	switch cfg.action {
	case "protocols":
		return getJSON(ctx, client, base+"/v1/protocols")
	case "current-epoch":
		return getJSON(ctx, client, base+"/v1/epochs/current")
	case "build":
		return buildProof(ctx, client, base+"/v1/proofs", cfg, logger)
	case "get":
		return fetchProof(ctx, client, base, cfg)
	case "list":
		return listProofs(ctx, client, base, cfg)
	case "calldata":
		return buildProof(ctx, client, base+"/v1/calldata", cfg, logger)
	default:
		return fmt.Errorf("unsupported action %q", cfg.action)
	}
}

func buildProof(ctx context.Context, client *http.Client, endpoint string, cfg commandFlags, logger zerolog.Logger) error {
	if !common.IsHexAddress(cfg.gauge) {
		return errors.New("build requires -gauge")
	}
	if cfg.user != "" && !common.IsHexAddress(cfg.user) {
		return fmt.Errorf("invalid -user %q", cfg.user)
	}

	body := map[string]any{
		"protocol": cfg.protocol,
		"gauge":    cfg.gauge,
	}
	if cfg.user != "" {
		body["user"] = cfg.user
	}
	if cfg.epoch != 0 {
		body["epoch"] = cfg.epoch
	}
	if cfg.blockNumber != 0 {
		body["block_number"] = cfg.blockNumber
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	started := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	if err := do(client, req); err != nil {
		return err
	}
	logger.Info().Dur("elapsed", time.Since(started)).Msg("proof request finished")
	return nil
}

func fetchProof(ctx context.Context, client *http.Client, base string, cfg commandFlags) error {
	if !common.IsHexAddress(cfg.gauge) {
		return errors.New("get requires -gauge")
	}
	if cfg.epoch == 0 {
		return errors.New("get requires -epoch")
	}

	endpoint := fmt.Sprintf("%s/v1/proofs/%s/%s/%d", base, url.PathEscape(cfg.protocol), cfg.gauge, cfg.epoch)
	if cfg.user != "" {
		if !common.IsHexAddress(cfg.user) {
			return fmt.Errorf("invalid -user %q", cfg.user)
		}
		endpoint += "?user=" + url.QueryEscape(cfg.user)
	}
	return getJSON(ctx, client, endpoint)
}

func listProofs(ctx context.Context, client *http.Client, base string, cfg commandFlags) error {
	if !common.IsHexAddress(cfg.gauge) {
		return errors.New("list requires -gauge")
	}
	endpoint := fmt.Sprintf("%s/v1/proofs/%s/%s", base, url.PathEscape(cfg.protocol), cfg.gauge)
	return getJSON(ctx, client, endpoint)
}

func getJSON(ctx context.Context, client *http.Client, endpoint string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return do(client, req)
}

// do prints the response body indented so proofs stay copy-pasteable
// into cast or a verifier script.
func do(client *http.Client, req *http.Request) error {
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		pretty.Write(body)
	}
	fmt.Println(pretty.String())

	if resp.StatusCode >= 400 {
		return fmt.Errorf("relayer returned %s", resp.Status)
	}
	return nil
}
