package notifications

import (
	"bytes"
	"fmt"
	"net/http"
	"time"
)

// SendWebhook posts the JSON payload to the configured notification URL.
func SendWebhook(url string, payload []byte) error {
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "MMF-Notifier/1.0")

	// Send with a timeout so a slow receiver can't block the worker
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("notification receiver returned error: %d", resp.StatusCode)
}
