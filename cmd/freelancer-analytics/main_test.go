// cmd/freelancer-analytics/main_test.go
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const earningsCSV = `Freelancer_ID,Job_Category,Platform,Experience_Level,Client_Region,Payment_Method,Job_Completed,Earnings_USD
1,Web Development,Upwork,Expert,Europe,Cryptocurrency,150,3000
2,Design,Fiverr,Expert,Asia,PayPal,20,1000
3,Design,Fiverr,Beginner,Asia,Bank Transfer,5,2000
`

// ==========================
// Test Helper Functions
// ==========================

func writeConfig(t *testing.T, llmURL string) string {
	t.Helper()
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "earnings.csv")
	require.NoError(t, os.WriteFile(dataPath, []byte(earningsCSV), 0o644))

	yaml := fmt.Sprintf(`dataset:
  source: csv
  path: %q
  outlier_quantile: 0
cache:
  enabled: true
  backend: file
  dir: %q
logging:
  query_log_dir: %q
llm:
  api_url: %q
  api_key: test-key
  max_retries: 0
`, dataPath, filepath.Join(dir, "cache"), filepath.Join(dir, "logs"), llmURL)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func llmServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

// ==========================
// Command Tests
// ==========================

func TestClassifyCmd(t *testing.T) {
	out, err := run(t, "classify", "What is the average income of freelancers?")
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "average", got["type"])
	assert.Equal(t, "average_value", got["subtype"])
}

func TestClassifyCmd_RequiresQuery(t *testing.T) {
	_, err := run(t, "classify")
	assert.Error(t, err)
}

func TestStatsCmd(t *testing.T) {
	dir := writeConfig(t, "http://127.0.0.1:0")

	out, err := run(t, "--config", dir, "stats")
	require.NoError(t, err)

	assert.Contains(t, out, "Records: 3")
	assert.Contains(t, out, "Mean:    2000.00 USD")
	assert.Contains(t, out, "Max:     3000.00 USD")
}

func TestAskCmd_Verbose(t *testing.T) {
	server := llmServer(t, "Crypto freelancers earn 1500 USD more.")
	dir := writeConfig(t, server.URL)

	out, err := run(t, "--config", dir, "ask", "--verbose", "How much higher are earnings of freelancers paid in crypto?")
	require.NoError(t, err)

	assert.Contains(t, out, "Loaded 3 records")
	assert.Contains(t, out, "• Crypto avg: 3000.00 USD")
	assert.Contains(t, out, "• Other avg: 1500.00 USD")
	assert.Contains(t, out, "• Difference: 1500.00 USD")
	assert.Contains(t, out, "• Crypto data missing: false")
	assert.Contains(t, out, "Answer:\nCrypto freelancers earn 1500 USD more.")

	out, err = run(t, "--config", dir, "ask", "--verbose", "How much higher are earnings of freelancers paid in crypto?")
	require.NoError(t, err)
	assert.Contains(t, out, "Using cached answer")
}

func TestAskCmd_LLMDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)
	dir := writeConfig(t, server.URL)

	out, err := run(t, "--config", dir, "ask", "What is the average?")
	require.NoError(t, err)
	assert.Contains(t, out, "Failed to get analysis:")
}

func TestAskCmd_MissingDataFile(t *testing.T) {
	dir := writeConfig(t, "http://127.0.0.1:0")
	require.NoError(t, os.Remove(filepath.Join(dir, "earnings.csv")))

	_, err := run(t, "--config", dir, "ask", "What is the average?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data error")
}
