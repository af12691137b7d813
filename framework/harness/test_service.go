package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custom-select/browser-test-harness/serviceinfo"
)

// Credentials identify the account that jobs are billed to. They are sent as HTTP basic auth on
// every request to the service.
type Credentials struct {
	User      string
	AccessKey string
}

func queryTestServiceInfo(
	client *http.Client,
	url string,
	timeout time.Duration,
	output io.Writer,
) (serviceinfo.TestServiceInfo, error) {
	fmt.Fprintf(output, "Connecting to remote execution service at %s", url)

	deadline := time.Now().Add(timeout)
	for {
		fmt.Fprintf(output, ".")
		resp, err := client.Get(url)
		if err == nil {
			fmt.Fprintln(output)
			if resp.StatusCode != http.StatusOK {
				_ = resp.Body.Close()
				return serviceinfo.Empty(), fmt.Errorf("remote service returned status code %d", resp.StatusCode)
			}
			respData, err := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if err != nil {
				return serviceinfo.Empty(), err
			}
			if len(respData) == 0 {
				fmt.Fprintf(output, "Status query successful, but service provided no metadata\n")
				return serviceinfo.Empty(), nil
			}
			fmt.Fprintf(output, "Status query returned metadata: %s\n", string(respData))
			var base serviceinfo.TestServiceInfoBase
			if err := json.Unmarshal(respData, &base); err != nil {
				return serviceinfo.Empty(), fmt.Errorf("malformed status response from remote service: %s", string(respData))
			}
			return serviceinfo.TestServiceInfo{TestServiceInfoBase: base, FullData: respData}, nil
		}
		if !time.Now().Before(deadline) {
			fmt.Fprintln(output)
			return serviceinfo.Empty(), fmt.Errorf("timed out, result of last query was: %w", err)
		}
		time.Sleep(time.Millisecond * 100)
	}
}

func doRequest(
	ctx context.Context,
	client *http.Client,
	method, url string,
	creds Credentials,
	body []byte,
) ([]byte, http.Header, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewBuffer(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	if body != nil {
		req.Header.Add("Content-Type", "application/json")
	}
	if creds.User != "" {
		req.SetBasicAuth(creds.User, creds.AccessKey)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	var respBody []byte
	if resp.Body != nil {
		respBody, _ = io.ReadAll(resp.Body)
		_ = resp.Body.Close()
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := ""
		if len(respBody) != 0 {
			message = " (" + string(bytes.TrimSpace(respBody)) + ")"
		}
		err = fmt.Errorf("remote service returned error %d for %s %s%s", resp.StatusCode, method, url, message)
	}
	return respBody, resp.Header, err
}
