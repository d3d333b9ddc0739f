package relay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hookstream/hookstream/pkg/types"
	"github.com/hookstream/hookstream/server/internal/config"
)

// deliver sends msg to one target. Errors are logged and counted.
func (r *Relay) deliver(t config.TargetConfig, msg types.Message) {
	url := t.URL()
	if url == "" {
		slog.Warn("relay: target URL not set, skipping", "type", t.Type, "url_env", t.URLEnv)
		r.deliveries.Inc(t.Type, "skipped")
		return
	}

	var err error
	switch t.Type {
	case "slack":
		err = r.sendSlack(url, msg)
	case "teams":
		err = r.sendTeams(url, msg)
	case "http":
		err = r.sendHTTP(url, msg)
	default:
		slog.Warn("relay: unknown target type, skipping", "type", t.Type)
		r.deliveries.Inc(t.Type, "skipped")
		return
	}

	if err != nil {
		slog.Error("relay: delivery failed",
			"type", t.Type,
			"stream", msg.Stream,
			"message_id", msg.ID,
			"err", err,
		)
		r.deliveries.Inc(t.Type, "error")
		return
	}
	slog.Debug("relay: delivered",
		"type", t.Type,
		"stream", msg.Stream,
		"message_id", msg.ID,
	)
	r.deliveries.Inc(t.Type, "ok")
}

func (r *Relay) sendSlack(url string, msg types.Message) error {
	body, _ := json.Marshal(map[string]string{
		"text": fmt.Sprintf("*%s*\n%s", msg.Topic, msg.Content),
	})
	return r.post(url, body)
}

func (r *Relay) sendTeams(url string, msg types.Message) error {
	payload := map[string]interface{}{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": "65A637",
		"summary":    msg.Topic,
		"title":      msg.Topic,
		"text":       msg.Content,
	}
	body, _ := json.Marshal(payload)
	return r.post(url, body)
}

func (r *Relay) sendHTTP(url string, msg types.Message) error {
	body, _ := json.Marshal(map[string]interface{}{"message": msg})
	return r.post(url, body)
}

func (r *Relay) post(url string, body []byte) error {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}
