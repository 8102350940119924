package discourse

// #region imports
import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// #endregion

// #region client-struct
// HTTPAnalyzer calls the external discourse analysis service over JSON.
type HTTPAnalyzer struct {
	baseURL string
	c       *http.Client
}

// #endregion client-struct

// #region constructor
// NewHTTPAnalyzer creates a client for the analyzer service at baseURL.
func NewHTTPAnalyzer(baseURL string) *HTTPAnalyzer {
	return &HTTPAnalyzer{
		baseURL: baseURL,
		c:       &http.Client{Timeout: 60 * time.Second},
	}
}

// NewHTTPAnalyzerWithClient creates a client with an injected
// http.Client. Used for testing against httptest servers.
func NewHTTPAnalyzerWithClient(baseURL string, c *http.Client) *HTTPAnalyzer {
	return &HTTPAnalyzer{baseURL: baseURL, c: c}
}

// #endregion constructor

// #region analyze-segment

// AnalyzeSegment posts the segment's utterances and decodes the
// discourse metrics.
func (a *HTTPAnalyzer) AnalyzeSegment(ctx context.Context, req AnalyzeRequest) (SegmentMetrics, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return SegmentMetrics{}, fmt.Errorf("marshal analyze request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/analyze_segment", bytes.NewReader(body))
	if err != nil {
		return SegmentMetrics{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.c.Do(httpReq)
	if err != nil {
		return SegmentMetrics{}, fmt.Errorf("analyze segment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return SegmentMetrics{}, fmt.Errorf("analyze segment %s: %s", resp.Status, string(msg))
	}

	var out SegmentMetrics
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return SegmentMetrics{}, fmt.Errorf("analyze segment decode: %w", err)
	}
	return out, nil
}

// #endregion analyze-segment
