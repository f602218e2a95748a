// Package smoke issues HTTP requests against a running instance of the
// Application and reports whether the responses look healthy.
//
// Connection failures are reported and the remaining checks still run.
package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/blackwell-systems/recipeops/internal/logger"
)

// DefaultBaseURL is where the Application listens during development.
const DefaultBaseURL = "http://localhost:8888"

// DefaultTimeout bounds each request.
const DefaultTimeout = 10 * time.Second

// Check is one HTTP request and the marker its response body should contain.
type Check struct {
	Name        string
	Method      string
	Path        string
	Body        []byte
	ContentType string
	Marker      string
}

// Outcome is the observed result of a Check.
type Outcome struct {
	Check      Check
	StatusCode int
	BodyLength int
	Found      bool
	Err        error
}

// Runner executes checks against a base URL and prints a report for each.
type Runner struct {
	BaseURL string
	Client  *http.Client
	Out     io.Writer
}

// NewRunner creates a Runner for baseURL writing its report to out.
func NewRunner(baseURL string, timeout time.Duration, out io.Writer) *Runner {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
		Out:     out,
	}
}

// Run executes every check in order. It never fails: request errors are
// reported as a connection error line and recorded in the Outcome.
func (r *Runner) Run(ctx context.Context, checks []Check) []Outcome {
	outcomes := make([]Outcome, 0, len(checks))
	for i, c := range checks {
		if i > 0 {
			fmt.Fprintln(r.Out)
		}
		outcomes = append(outcomes, r.run(ctx, c))
	}
	return outcomes
}

func (r *Runner) run(ctx context.Context, c Check) Outcome {
	out := Outcome{Check: c}
	url := r.BaseURL + c.Path

	fmt.Fprintf(r.Out, "Testing %s %s\n", c.Method, url)

	var body io.Reader
	if c.Body != nil {
		body = bytes.NewReader(c.Body)
	}

	req, err := http.NewRequestWithContext(ctx, c.Method, url, body)
	if err != nil {
		out.Err = err
		fmt.Fprintf(r.Out, "✗ Connection error: %v\n", err)
		return out
	}
	if c.ContentType != "" {
		req.Header.Set("Content-Type", c.ContentType)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		out.Err = err
		fmt.Fprintf(r.Out, "✗ Connection error: %v\n", err)
		return out
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		out.Err = err
		fmt.Fprintf(r.Out, "✗ Connection error: %v\n", err)
		return out
	}

	out.StatusCode = resp.StatusCode
	out.BodyLength = len(data)
	out.Found = c.Marker != "" && bytes.Contains(data, []byte(c.Marker))
	logger.Debug("smoke response", "check", c.Name, "status", resp.StatusCode, "bytes", len(data))

	fmt.Fprintf(r.Out, "Status code: %d\n", out.StatusCode)
	fmt.Fprintf(r.Out, "Body length: %s bytes\n", humanize.Comma(int64(out.BodyLength)))
	if c.Marker != "" {
		if out.Found {
			fmt.Fprintf(r.Out, "✓ Found %q\n", c.Marker)
		} else {
			fmt.Fprintf(r.Out, "✗ Missing %q\n", c.Marker)
		}
	}
	return out
}

// PageChecks are the GET requests of the page smoke test.
func PageChecks() []Check {
	return []Check{
		{
			Name:   "home",
			Method: http.MethodGet,
			Path:   "/",
			Marker: "Recipe",
		},
		{
			Name:   "inventory staging",
			Method: http.MethodGet,
			Path:   "/admin/inventory-staging/",
			Marker: "Inventory Staging",
		},
	}
}

// BulkUpdateItem is one entry of a bulk update request.
type BulkUpdateItem struct {
	ItemID        int      `json:"item_id"`
	Action        string   `json:"action"`
	Category      string   `json:"category"`
	OverridePrice *float64 `json:"override_price"`
}

// BulkUpdateRequest is the JSON body accepted by the bulk update endpoint.
type BulkUpdateRequest struct {
	Items []BulkUpdateItem `json:"items"`
}

// BulkUpdateCheck posts a single "add" item to menu 4's bulk update endpoint.
func BulkUpdateCheck() (Check, error) {
	body, err := json.Marshal(BulkUpdateRequest{
		Items: []BulkUpdateItem{
			{ItemID: 1, Action: "add", Category: "Test Category"},
		},
	})
	if err != nil {
		return Check{}, fmt.Errorf("failed to encode bulk update request: %w", err)
	}

	return Check{
		Name:        "bulk update",
		Method:      http.MethodPost,
		Path:        "/menus_mgmt/4/items/bulk_update",
		Body:        body,
		ContentType: "application/json",
		Marker:      "success",
	}, nil
}
