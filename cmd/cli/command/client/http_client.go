package client

// http_client.go = talks to the HTTP bridge (save/get of the shared value).

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

type saveResponse struct {
	Status string `json:"status"`
}

type getResponse struct {
	Data string `json:"data"`
}

// constructor for HTTPClient, bridgeURL like http://127.0.0.1:8010
func NewHTTPClient(bridgeURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimSuffix(bridgeURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Save replaces the shared value with text.
func (c *HTTPClient) Save(text string) error {
	response, err := c.httpClient.Post(c.baseURL+"/api/save", "text/plain; charset=utf-8", strings.NewReader(text))
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("save failed with status: %s", response.Status)
	}

	var result saveResponse
	if err := json.NewDecoder(response.Body).Decode(&result); err != nil {
		return err
	}
	if result.Status != "saved" {
		return fmt.Errorf("unexpected save status %q", result.Status)
	}
	return nil
}

// Get returns the shared value, "" if nothing was saved yet.
func (c *HTTPClient) Get() (string, error) {
	response, err := c.httpClient.Get(c.baseURL + "/api/get")
	if err != nil {
		return "", err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("get failed with status: %s", response.Status)
	}

	var result getResponse
	if err := json.NewDecoder(response.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Data, nil
}
