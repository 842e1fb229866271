package engine

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"
)

// llamaBackend runs a llama-server subprocess bound to loopback and talks to
// its completion endpoint. One process per loaded model; Close kills it.
type llamaBackend struct {
	name   string
	cmd    *exec.Cmd
	base   string
	client *http.Client
}

const (
	healthTimeout  = 60 * time.Second
	healthInterval = 250 * time.Millisecond
)

// SpawnConfig carries what the subprocess needs beyond the model path.
type SpawnConfig struct {
	ServerBinary  string
	ContextWindow int
}

// NewAccelerated builds the factory that offloads all layers to the GPU.
// It fails during the health poll on machines without usable acceleration,
// which is what lets the ladder fall through to the portable backend.
func NewAccelerated(sc SpawnConfig) BackendFactory {
	return BackendFactory{
		Name: "llama-accelerated",
		New: func(ctx context.Context, modelPath string) (Backend, error) {
			return spawn(ctx, "llama-accelerated", sc, modelPath, "999")
		},
	}
}

// NewPortable builds the CPU-only factory (-ngl 0).
func NewPortable(sc SpawnConfig) BackendFactory {
	return BackendFactory{
		Name: "llama-portable",
		New: func(ctx context.Context, modelPath string) (Backend, error) {
			return spawn(ctx, "llama-portable", sc, modelPath, "0")
		},
	}
}

func spawn(ctx context.Context, name string, sc SpawnConfig, modelPath, ngl string) (Backend, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}
	port, err := freePort()
	if err != nil {
		return nil, fmt.Errorf("allocate port: %w", err)
	}

	nctx := sc.ContextWindow
	if nctx <= 0 {
		nctx = 2048
	}
	cmd := exec.Command(sc.ServerBinary,
		"-m", modelPath,
		"-c", fmt.Sprintf("%d", nctx),
		"-ngl", ngl,
		"--host", "127.0.0.1",
		"--port", fmt.Sprintf("%d", port),
	)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", sc.ServerBinary, err)
	}

	b := &llamaBackend{
		name:   name,
		cmd:    cmd,
		base:   fmt.Sprintf("http://127.0.0.1:%d", port),
		client: &http.Client{},
	}
	if err := b.waitHealthy(ctx); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

func (b *llamaBackend) waitHealthy(ctx context.Context) error {
	deadline := time.Now().Add(healthTimeout)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%s: server not healthy after %s", b.name, healthTimeout)
		}
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, b.base+"/health", nil)
		resp, err := b.client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(healthInterval):
		}
	}
}

func (b *llamaBackend) Name() string { return b.name }

type completionRequest struct {
	Prompt      string   `json:"prompt"`
	NPredict    int      `json:"n_predict"`
	Temperature float64  `json:"temperature"`
	Stop        []string `json:"stop,omitempty"`
	Stream      bool     `json:"stream"`
}

type completionChunk struct {
	Content string `json:"content"`
	Stop    bool   `json:"stop"`
}

func (b *llamaBackend) Generate(ctx context.Context, req GenRequest, onToken func(string)) (string, error) {
	body, err := json.Marshal(completionRequest{
		Prompt:      req.Prompt,
		NPredict:    req.MaxTokens,
		Temperature: req.Temperature,
		Stop:        req.Stop,
		Stream:      onToken != nil,
	})
	if err != nil {
		return "", err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.base+"/completion", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("completion: status %d: %s", resp.StatusCode, strings.TrimSpace(string(slurp)))
	}

	if onToken == nil {
		var chunk completionChunk
		if err := json.NewDecoder(resp.Body).Decode(&chunk); err != nil {
			return "", fmt.Errorf("decode completion: %w", err)
		}
		return chunk.Content, nil
	}
	return streamCompletion(resp.Body, onToken)
}

// streamCompletion reads server-sent events, forwarding each content
// fragment, until the final stop chunk.
func streamCompletion(r io.Reader, onToken func(string)) (string, error) {
	var full strings.Builder
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var chunk completionChunk
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &chunk); err != nil {
			return full.String(), fmt.Errorf("decode stream chunk: %w", err)
		}
		if chunk.Content != "" {
			full.WriteString(chunk.Content)
			onToken(chunk.Content)
		}
		if chunk.Stop {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return full.String(), err
	}
	return full.String(), nil
}

func (b *llamaBackend) Close() error {
	if b.cmd.Process != nil {
		_ = b.cmd.Process.Kill()
		_, _ = b.cmd.Process.Wait()
	}
	return nil
}
