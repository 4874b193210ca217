package mailerrepo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/DharaPatel007/NexusLibrary/util/httpx"
)

type httpRepo struct {
	baseURL string
	apiKey  string
	from    string
	client  *http.Client
}

// NewHTTP talks to an HTTP mail relay (POST {baseURL}/v1/messages).
func NewHTTP(baseURL, apiKey, from string) Repo {
	return &httpRepo{baseURL: baseURL, apiKey: apiKey, from: from, client: httpx.Client()}
}

func (r *httpRepo) Send(ctx context.Context, req SendReq) error {
	body := map[string]any{
		"from":    r.from,
		"to":      req.To,
		"subject": req.Subject,
		"text":    req.Body,
	}
	b, _ := json.Marshal(body)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/messages", bytes.NewReader(b))
	if err != nil {
		return err
	}
	httpReq.SetBasicAuth(r.apiKey, "")
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail relay send failed: %s", resp.Status)
	}
	return nil
}
