package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/BerylCAtieno/marketing-asset-agent/internal/platform"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

type TestClient struct {
	baseURL string
	client  *http.Client
}

func NewTestClient(baseURL string) *TestClient {
	return &TestClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

type product struct {
	Name     string
	Niche    string
	Landing  string
	Variants int
}

func (p product) payload() map[string]interface{} {
	return map[string]interface{}{
		"product_name":          p.Name,
		"niche":                 p.Niche,
		"landing_url":           p.Landing,
		"variants_per_platform": p.Variants,
		"human_review_required": true,
	}
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the agent")
	testType := flag.String("test", "all", "Test type: all, health, agent-card, generate, a2a, custom")
	name := flag.String("product", "FocusFlow", "Product name")
	niche := flag.String("niche", "productivity", "Product niche")
	landing := flag.String("landing", "https://focusflow.app", "Landing page URL")
	variants := flag.Int("variants", 1, "Variants per platform (1-5)")
	flag.Parse()

	if *variants < 1 || *variants > 5 {
		printError("Variants must be between 1 and 5")
		os.Exit(1)
	}

	client := NewTestClient(*baseURL)
	p := product{Name: *name, Niche: *niche, Landing: *landing, Variants: *variants}

	printHeader("Marketing Asset Agent - Test Suite")
	fmt.Printf("%sBase URL: %s%s\n\n", colorCyan, *baseURL, colorReset)

	var ok bool
	switch *testType {
	case "all":
		client.runAllTests(p)
		return
	case "health":
		ok = client.testHealthCheck()
	case "agent-card":
		ok = client.testAgentCard()
	case "generate":
		ok = client.testGenerate(p)
	case "a2a":
		ok = client.testA2A(p)
	case "custom":
		ok = client.testCustomBrief(p)
	default:
		printError(fmt.Sprintf("Unknown test type: %s", *testType))
		fmt.Println("\nAvailable tests: all, health, agent-card, generate, a2a, custom")
		os.Exit(1)
	}
	if !ok {
		os.Exit(1)
	}
}

func (tc *TestClient) runAllTests(p product) {
	tests := []struct {
		name string
		fn   func() bool
	}{
		{"Health Check", tc.testHealthCheck},
		{"Agent Card", tc.testAgentCard},
		{"Asset Generation", func() bool { return tc.testGenerate(p) }},
		{"Malformed Payload", tc.testMalformedPayload},
		{"A2A Message", func() bool { return tc.testA2A(p) }},
	}

	passed := 0
	failed := 0

	for _, test := range tests {
		if test.fn() {
			passed++
		} else {
			failed++
		}
		fmt.Println()
	}

	printHeader("Test Summary")
	fmt.Printf("%sPassed: %d%s\n", colorGreen, passed, colorReset)
	fmt.Printf("%sFailed: %d%s\n", colorRed, failed, colorReset)
	fmt.Printf("Total: %d\n", passed+failed)

	if failed > 0 {
		os.Exit(1)
	}
}

func (tc *TestClient) testHealthCheck() bool {
	printTestHeader("Testing Health Check Endpoint")

	url := fmt.Sprintf("%s/health", tc.baseURL)
	fmt.Printf("GET %s\n", url)

	resp, err := tc.client.Get(url)
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		printError(fmt.Sprintf("Expected status 200, got %d", resp.StatusCode))
		return false
	}

	if string(body) != "OK" {
		printError(fmt.Sprintf("Expected body 'OK', got '%s'", string(body)))
		return false
	}

	printSuccess("Health check passed")
	return true
}

func (tc *TestClient) testAgentCard() bool {
	printTestHeader("Testing Agent Card Endpoint")

	url := fmt.Sprintf("%s/.well-known/agent.json", tc.baseURL)
	fmt.Printf("GET %s\n", url)

	resp, err := tc.client.Get(url)
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		printError(fmt.Sprintf("Expected status 200, got %d", resp.StatusCode))
		fmt.Printf("Response: %s\n", string(body))
		return false
	}

	var agentCard map[string]interface{}
	if err := json.Unmarshal(body, &agentCard); err != nil {
		printError(fmt.Sprintf("Invalid JSON response: %v", err))
		return false
	}

	requiredFields := []string{"name", "description", "url", "version", "capabilities", "skills"}
	for _, field := range requiredFields {
		if _, ok := agentCard[field]; !ok {
			printError(fmt.Sprintf("Missing required field: %s", field))
			return false
		}
	}

	printSuccess("Agent card is valid")
	printJSON(body)
	return true
}

// postGenerate sends the multipart form the web client uses.
func (tc *TestClient) postGenerate(data string, query string) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("data", data); err != nil {
		return nil, nil, err
	}
	if err := w.Close(); err != nil {
		return nil, nil, err
	}

	url := fmt.Sprintf("%s/api/generate%s", tc.baseURL, query)
	fmt.Printf("POST %s\n", url)

	resp, err := tc.client.Post(url, w.FormDataContentType(), &buf)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	return resp, body, err
}

func (tc *TestClient) testGenerate(p product) bool {
	printTestHeader("Testing Asset Generation")

	data, _ := json.Marshal(p.payload())
	fmt.Printf("%sRequest:%s %s\n\n", colorYellow, colorReset, string(data))

	resp, body, err := tc.postGenerate(string(data), "")
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	if resp.StatusCode != http.StatusOK {
		printError(fmt.Sprintf("Expected status 200, got %d", resp.StatusCode))
		fmt.Printf("Response: %s\n", string(body))
		return false
	}

	var result struct {
		ProductID string `json:"product_id"`
		Status    string `json:"status"`
		Assets    []struct {
			Platform       string   `json:"platform"`
			VariantID      int      `json:"variant_id"`
			Caption        string   `json:"caption"`
			Hashtags       []string `json:"hashtags"`
			CharacterCount int      `json:"character_count"`
			Origin         string   `json:"origin"`
		} `json:"assets"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		printError(fmt.Sprintf("Invalid JSON response: %v", err))
		return false
	}

	if result.Status != "success" {
		printError(fmt.Sprintf("Expected status 'success', got '%s'", result.Status))
		return false
	}
	platformOrder := platform.All()
	if want := len(platformOrder) * p.Variants; len(result.Assets) != want {
		printError(fmt.Sprintf("Expected %d assets, got %d", want, len(result.Assets)))
		return false
	}

	for i, a := range result.Assets {
		got, err := platform.Parse(a.Platform)
		if err != nil {
			printError(fmt.Sprintf("Asset %d: %v", i, err))
			return false
		}
		wantPlatform := platformOrder[i/p.Variants]
		if got != wantPlatform || a.VariantID != i%p.Variants+1 {
			printError(fmt.Sprintf("Asset %d is %s/%d, expected %s/%d", i, a.Platform, a.VariantID, wantPlatform, i%p.Variants+1))
			return false
		}
		if limit := platform.MustLookup(got).HashtagLimit; len(a.Hashtags) > limit {
			printError(fmt.Sprintf("%s asset has %d hashtags, limit is %d", a.Platform, len(a.Hashtags), limit))
			return false
		}
		if a.CharacterCount != len([]rune(a.Caption)) {
			printError(fmt.Sprintf("%s asset reports %d characters for a %d character caption", a.Platform, a.CharacterCount, len([]rune(a.Caption))))
			return false
		}
		fmt.Printf("  %s%-10s%s v%d [%s] %d chars, %d hashtags\n", colorCyan, a.Platform, colorReset, a.VariantID, a.Origin, a.CharacterCount, len(a.Hashtags))
	}

	printSuccess(fmt.Sprintf("Generated %d assets for product %s", len(result.Assets), result.ProductID))
	return true
}

func (tc *TestClient) testMalformedPayload() bool {
	printTestHeader("Testing Malformed Payload")

	resp, body, err := tc.postGenerate("{not json", "")
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	if resp.StatusCode != http.StatusInternalServerError {
		printError(fmt.Sprintf("Expected status 500, got %d", resp.StatusCode))
		return false
	}

	var errResp map[string]interface{}
	if err := json.Unmarshal(body, &errResp); err != nil {
		printError(fmt.Sprintf("Invalid JSON response: %v", err))
		return false
	}
	if msg, _ := errResp["error"].(string); msg == "" {
		printError("Expected an error message")
		return false
	}

	printSuccess("Malformed payload rejected")
	printJSON(body)
	return true
}

func (tc *TestClient) testCustomBrief(p product) bool {
	printTestHeader("Generating Campaign Brief")

	data, _ := json.Marshal(p.payload())
	resp, body, err := tc.postGenerate(string(data), "?format=markdown")
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	if resp.StatusCode != http.StatusOK {
		printError(fmt.Sprintf("Expected status 200, got %d", resp.StatusCode))
		fmt.Printf("Response: %s\n", string(body))
		return false
	}

	printSuccess("Campaign brief generated")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println(string(body))
	fmt.Println(strings.Repeat("=", 80))
	return true
}

func (tc *TestClient) testA2A(p product) bool {
	printTestHeader("Testing A2A Message")

	url := fmt.Sprintf("%s/a2a/marketing", tc.baseURL)
	fmt.Printf("POST %s\n", url)

	request := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      fmt.Sprintf("test-%d", time.Now().Unix()),
		"method":  "message/send",
		"params": map[string]interface{}{
			"message": map[string]interface{}{
				"kind": "message",
				"role": "user",
				"parts": []map[string]interface{}{
					{
						"kind": "data",
						"data": p.payload(),
					},
				},
			},
			"configuration": map[string]interface{}{
				"blocking":            true,
				"acceptedOutputModes": []string{"text", "data"},
			},
		},
	}

	jsonData, _ := json.MarshalIndent(request, "", "  ")
	fmt.Printf("%sRequest:%s\n", colorYellow, colorReset)
	fmt.Println(string(jsonData))
	fmt.Println()

	resp, err := tc.client.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		printError(fmt.Sprintf("Expected status 200, got %d", resp.StatusCode))
		fmt.Printf("Response: %s\n", string(body))
		return false
	}

	var response map[string]interface{}
	if err := json.Unmarshal(body, &response); err != nil {
		printError(fmt.Sprintf("Invalid JSON response: %v", err))
		return false
	}

	if errObj, ok := response["error"]; ok {
		printError("Request returned an error")
		errJSON, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Println(string(errJSON))
		return false
	}

	result, ok := response["result"].(map[string]interface{})
	if !ok {
		printError("Invalid result format")
		return false
	}

	status, ok := result["status"].(map[string]interface{})
	if !ok {
		printError("Invalid status format")
		return false
	}

	state, _ := status["state"].(string)
	if state != "completed" {
		printError(fmt.Sprintf("Expected state 'completed', got '%s'", state))
		return false
	}

	printSuccess("A2A task completed successfully")

	artifacts, _ := result["artifacts"].([]interface{})
	for _, a := range artifacts {
		artifact, ok := a.(map[string]interface{})
		if !ok || artifact["name"] != "Campaign Brief" {
			continue
		}
		parts, _ := artifact["parts"].([]interface{})
		fmt.Printf("\n%sCampaign Brief:%s\n", colorGreen, colorReset)
		fmt.Println(strings.Repeat("=", 80))
		for _, part := range parts {
			if pm, ok := part.(map[string]interface{}); ok {
				if text, ok := pm["text"].(string); ok {
					fmt.Println(text)
				}
			}
		}
		fmt.Println(strings.Repeat("=", 80))
	}

	return true
}

func printHeader(text string) {
	fmt.Printf("\n%s%s%s\n", colorBlue, strings.Repeat("=", len(text)+4), colorReset)
	fmt.Printf("%s= %s =%s\n", colorBlue, text, colorReset)
	fmt.Printf("%s%s%s\n\n", colorBlue, strings.Repeat("=", len(text)+4), colorReset)
}

func printTestHeader(text string) {
	fmt.Printf("%s[TEST] %s%s\n", colorCyan, text, colorReset)
	fmt.Println(strings.Repeat("-", 80))
}

func printSuccess(text string) {
	fmt.Printf("%s✓ %s%s\n", colorGreen, text, colorReset)
}

func printError(text string) {
	fmt.Printf("%s✗ %s%s\n", colorRed, text, colorReset)
}

func printJSON(data []byte) {
	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, data, "", "  "); err == nil {
		fmt.Printf("\n%sResponse:%s\n%s\n", colorYellow, colorReset, prettyJSON.String())
	}
}
