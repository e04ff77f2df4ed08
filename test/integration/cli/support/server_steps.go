package support

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/cucumber/godog"

	"github.com/docshot/docshot/internal/pipeline"
	"github.com/docshot/docshot/internal/server"
)

// DetectionServerWrapper holds an in-process detection server behind
// an httptest listener.
type DetectionServerWrapper struct {
	HTTP      *httptest.Server
	Detection *server.Server
}

// theDetectionServerIsRunning starts the real detection server on an
// httptest listener. Scenarios talk to the same handlers the serve
// command wires up, without spawning a process.
func (testCtx *TestContext) theDetectionServerIsRunning() error {
	if testCtx.HTTPServer != nil {
		return nil
	}

	cfg := server.Config{
		CORSOrigin:     "*",
		MaxUploadMB:    10,
		TimeoutSec:     30,
		AnalyzerConfig: pipeline.DefaultConfig(),
		OverlayEnabled: true,
	}
	detection, err := server.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to start detection server: %w", err)
	}

	mux := http.NewServeMux()
	detection.SetupRoutes(mux)

	testCtx.HTTPServer = &DetectionServerWrapper{
		HTTP:      httptest.NewServer(mux),
		Detection: detection,
	}
	return nil
}

// stopDetectionServer shuts the httptest server down and releases the
// analyzer.
func (testCtx *TestContext) stopDetectionServer() error {
	if testCtx.HTTPServer == nil {
		return nil
	}
	testCtx.HTTPServer.HTTP.Close()
	err := testCtx.HTTPServer.Detection.Close()
	testCtx.HTTPServer = nil
	return err
}

// recordResponse stores the HTTP response for later assertions.
func (testCtx *TestContext) recordResponse(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	testCtx.LastHTTPStatusCode = resp.StatusCode
	testCtx.LastHTTPResponse = string(body)
	testCtx.LastHTTPHeaders = resp.Header
	return nil
}

// iGET performs a GET request against the running server.
func (testCtx *TestContext) iGET(endpoint string) error {
	if testCtx.HTTPServer == nil {
		return errors.New("detection server is not running")
	}

	resp, err := http.Get(testCtx.HTTPServer.HTTP.URL + endpoint) //nolint:noctx // short-lived test request
	if err != nil {
		return fmt.Errorf("GET %s failed: %w", endpoint, err)
	}
	return testCtx.recordResponse(resp)
}

// postMultipart uploads files under the given form field.
func (testCtx *TestContext) postMultipart(endpoint, field string, filenames []string) error {
	if testCtx.HTTPServer == nil {
		return errors.New("detection server is not running")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, filename := range filenames {
		part, err := writer.CreateFormFile(field, filename)
		if err != nil {
			return fmt.Errorf("failed to create form file: %w", err)
		}
		data, err := os.ReadFile(filename) //nolint:gosec // G304: Test upload with controlled paths
		if err != nil {
			return fmt.Errorf("failed to read upload %s: %w", filename, err)
		}
		if _, err := part.Write(data); err != nil {
			return fmt.Errorf("failed to write upload: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize form: %w", err)
	}

	resp, err := http.Post( //nolint:noctx // short-lived test request
		testCtx.HTTPServer.HTTP.URL+endpoint, writer.FormDataContentType(), &buf)
	if err != nil {
		return fmt.Errorf("POST %s failed: %w", endpoint, err)
	}
	return testCtx.recordResponse(resp)
}

// iPOSTTheSceneTo uploads one rendered scene as the image field.
func (testCtx *TestContext) iPOSTTheSceneTo(name, endpoint string) error {
	path, err := testCtx.scenePath(name)
	if err != nil {
		return err
	}
	return testCtx.postMultipart(endpoint, "image", []string{path})
}

// iPOSTTheScenesTo uploads a comma-separated scene list as frames.
func (testCtx *TestContext) iPOSTTheScenesTo(names, endpoint string) error {
	paths := make([]string, 0, 4)
	for _, name := range strings.Split(names, ",") {
		path, err := testCtx.scenePath(strings.TrimSpace(name))
		if err != nil {
			return err
		}
		paths = append(paths, path)
	}
	return testCtx.postMultipart(endpoint, "images", paths)
}

// iPOSTAnInvalidFileTo uploads bytes that are not a decodable image.
func (testCtx *TestContext) iPOSTAnInvalidFileTo(endpoint string) error {
	if testCtx.HTTPServer == nil {
		return errors.New("detection server is not running")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", "notes.txt")
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write([]byte("this is not an image")); err != nil {
		return fmt.Errorf("failed to write upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize form: %w", err)
	}

	resp, err := http.Post( //nolint:noctx // short-lived test request
		testCtx.HTTPServer.HTTP.URL+endpoint, writer.FormDataContentType(), &buf)
	if err != nil {
		return fmt.Errorf("POST %s failed: %w", endpoint, err)
	}
	return testCtx.recordResponse(resp)
}

// theResponseStatusShouldBe verifies the HTTP status code.
func (testCtx *TestContext) theResponseStatusShouldBe(expectedStatus int) error {
	if testCtx.LastHTTPStatusCode != expectedStatus {
		return fmt.Errorf("expected status %d, got %d\nBody: %s",
			expectedStatus, testCtx.LastHTTPStatusCode, testCtx.LastHTTPResponse)
	}
	return nil
}

// theResponseShouldBeValidJSON verifies the body parses as JSON.
func (testCtx *TestContext) theResponseShouldBeValidJSON() error {
	var js json.RawMessage
	if err := json.Unmarshal([]byte(testCtx.LastHTTPResponse), &js); err != nil {
		return fmt.Errorf("response is not valid JSON: %w\nBody: %s", err, testCtx.LastHTTPResponse)
	}
	return nil
}

// theResponseShouldContain verifies the body contains specific text.
func (testCtx *TestContext) theResponseShouldContain(expectedText string) error {
	if !strings.Contains(testCtx.LastHTTPResponse, expectedText) {
		return fmt.Errorf("response does not contain '%s'\nBody: %s", expectedText, testCtx.LastHTTPResponse)
	}
	return nil
}

// theResponseShouldIncludeCORSHeaders verifies CORS headers are set.
func (testCtx *TestContext) theResponseShouldIncludeCORSHeaders() error {
	if testCtx.LastHTTPHeaders == nil || testCtx.LastHTTPHeaders.Get("Access-Control-Allow-Origin") == "" {
		return errors.New("response is missing the Access-Control-Allow-Origin header")
	}
	return nil
}

// theResponseShouldReportASuccessfulDetection verifies the detect
// payload carries a result.
func (testCtx *TestContext) theResponseShouldReportASuccessfulDetection() error {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(testCtx.LastHTTPResponse), &data); err != nil {
		return fmt.Errorf("failed to parse detect response: %w", err)
	}

	if success, ok := data["success"].(bool); !ok || !success {
		return fmt.Errorf("detect response is not successful: %s", testCtx.LastHTTPResponse)
	}
	if _, ok := data["result"].(map[string]interface{}); !ok {
		return fmt.Errorf("detect response is missing a result: %s", testCtx.LastHTTPResponse)
	}
	return nil
}

// RegisterServerSteps registers all server mode step definitions.
func (testCtx *TestContext) RegisterServerSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the detection server is running$`, testCtx.theDetectionServerIsRunning)
	sc.Step(`^I GET "([^"]*)"$`, testCtx.iGET)
	sc.Step(`^I POST the scene "([^"]*)" to "([^"]*)"$`, testCtx.iPOSTTheSceneTo)
	sc.Step(`^I POST the scenes "([^"]*)" to "([^"]*)"$`, testCtx.iPOSTTheScenesTo)
	sc.Step(`^I POST an invalid file to "([^"]*)"$`, testCtx.iPOSTAnInvalidFileTo)
	sc.Step(`^the response status should be (\d+)$`, testCtx.theResponseStatusShouldBe)
	sc.Step(`^the response should be valid JSON$`, testCtx.theResponseShouldBeValidJSON)
	sc.Step(`^the response should contain "([^"]*)"$`, testCtx.theResponseShouldContain)
	sc.Step(`^the response should include CORS headers$`, testCtx.theResponseShouldIncludeCORSHeaders)
	sc.Step(`^the response should report a successful detection$`, testCtx.theResponseShouldReportASuccessfulDetection)
}
