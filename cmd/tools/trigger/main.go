package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

type seedResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Quotes        int `json:"quotes"`
		Opportunities int `json:"opportunities"`
		Events        int `json:"events"`
	} `json:"data"`
}

func main() {
	baseURL := flag.String("base-url", "http://localhost:8081", "API base URL")
	adminSecretFlag := flag.String("admin-secret", "", "Admin secret (or use ADMIN_SECRET env)")
	timeoutSec := flag.Int("timeout-sec", 60, "HTTP timeout in seconds")
	dryRun := flag.Bool("dry-run", false, "Print the planned call only; do not execute")
	flag.Parse()

	adminSecret := strings.TrimSpace(*adminSecretFlag)
	if adminSecret == "" {
		adminSecret = strings.TrimSpace(os.Getenv("ADMIN_SECRET"))
	}
	if adminSecret == "" {
		exitErr(errors.New("missing admin secret: use -admin-secret or ADMIN_SECRET env"))
	}
	if *timeoutSec <= 0 {
		exitErr(errors.New("timeout-sec must be > 0"))
	}

	url := strings.TrimRight(*baseURL, "/") + "/api/v1/admin/seed"
	if *dryRun {
		fmt.Printf("[DRY-RUN] POST %s\n", url)
		return
	}

	req, err := http.NewRequest(http.MethodPost, url, nil)
	if err != nil {
		exitErr(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("X-Admin-Secret", adminSecret)

	client := &http.Client{Timeout: time.Duration(*timeoutSec) * time.Second}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		exitErr(fmt.Errorf("sending request: %w", err))
	}
	defer resp.Body.Close()

	var payload seedResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		exitErr(fmt.Errorf("decode failed (http %d): %w", resp.StatusCode, err))
	}
	if resp.StatusCode != http.StatusOK {
		exitErr(fmt.Errorf("http %d: %s", resp.StatusCode, payload.Error))
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Quotes", "Opportunities", "Events", "Duration"})
	t.AppendRow(table.Row{payload.Data.Quotes, payload.Data.Opportunities, payload.Data.Events, time.Since(start).Round(time.Millisecond)})
	t.Render()
}

func exitErr(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
