package client

// ipc_client.go = invokes host commands over the IPC endpoint.

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrCommandFailed marks a command that ran and reported ok=false.
var ErrCommandFailed = errors.New("command failed")

type IPCClient struct {
	baseURL    string
	httpClient *http.Client
}

type invokeResponse struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

// constructor for IPCClient. timeout bounds a whole invoke, which for
// check_tts_connections includes the port probes.
func NewIPCClient(ipcURL string, timeout time.Duration) *IPCClient {
	return &IPCClient{
		baseURL:    strings.TrimSuffix(ipcURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Invoke runs command with args (nil for none) and returns the raw result.
func (c *IPCClient) Invoke(command string, args any) (json.RawMessage, error) {
	var body []byte
	if args != nil {
		data, err := json.Marshal(args)
		if err != nil {
			return nil, err
		}
		body = data
	}

	response, err := c.httpClient.Post(c.baseURL+"/invoke/"+command, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	var result invokeResponse
	if err := json.NewDecoder(response.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("invoke %s: bad response (%s): %w", command, response.Status, err)
	}
	if !result.OK {
		if response.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("invoke %s: %s: %s", command, response.Status, result.Error)
		}
		return nil, fmt.Errorf("%w: %s: %s", ErrCommandFailed, command, result.Error)
	}
	return result.Result, nil
}

// InvokeInto runs command and decodes its result into out.
func (c *IPCClient) InvokeInto(command string, args any, out any) error {
	raw, err := c.Invoke(command, args)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
