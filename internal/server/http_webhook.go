package server

import (
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"

	"github.com/groblegark/kofid/internal/config"
	"github.com/groblegark/kofid/internal/idgen"
	"github.com/groblegark/kofid/internal/model"
)

// handleWebhook handles POST /webhook: the Ko-fi inbound delivery.
//
// Order matters: the payload is verified and redacted before anything can
// log, publish, or persist it. Delivery and persistence are independent — a
// failed Discord post never skips the ledger write, and a failed ledger
// write after a successful post is logged without failing the response.
func (s *RelayServer) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if !config.ValidSinkURL(s.cfg.WebhookURL) {
		writeError(w, http.StatusBadRequest, "invalid webhook URL")
		return
	}
	if s.cfg.KofiToken == "" {
		writeError(w, http.StatusBadRequest, "Ko-fi token required")
		return
	}

	data, ok := webhookData(r)
	if !ok {
		// Ko-fi's "test" button and uptime checks post without a payload.
		writeJSON(w, http.StatusOK, "Hello world.")
		return
	}

	payload, err := model.ParsePayload(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	if !payload.Verify(s.cfg.KofiToken) {
		writeError(w, http.StatusForbidden, "Ko-fi token does not match")
		return
	}
	payload.Redact()

	if payload.MessageID == "" {
		if id, err := idgen.Generate(); err == nil {
			payload.MessageID = id
		}
	}

	kind := model.Classify(payload)
	slog.Info("payload classified", "message_id", payload.MessageID, "kind", kind, "from", payload.FromName)

	s.publish(r.Context(), payload, kind)

	sink, err := s.router.SinkFor(kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rich, legacy := s.renderer.RenderEvent(payload, kind, s.now())
	deliveryErr := s.client.Send(r.Context(), sink, rich, legacy)
	if deliveryErr != nil {
		slog.Error("discord delivery failed", "message_id", payload.MessageID, "kind", kind, "err", deliveryErr)
	}

	// Persist regardless of the delivery outcome.
	if s.store != nil {
		if err := s.persist(r.Context(), payload, kind); err != nil {
			slog.Error("ledger update failed", "message_id", payload.MessageID, "kind", kind, "err", err)
		}
	}

	if deliveryErr != nil {
		// The sink's status and body ride along in the error text.
		writeError(w, http.StatusInternalServerError, deliveryErr.Error())
		return
	}

	// A persistence failure after a successful notification must not mask
	// the delivery; it is logged above and the response stays successful.
	slog.Info("payload processed", "message_id", payload.MessageID, "kind", kind)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// webhookData extracts the raw payload bytes from the request. Ko-fi posts
// form-encoded bodies with a single "data" field; JSON bodies with a "data"
// member are accepted too. The second return is false when no payload field
// is present at all.
func webhookData(r *http.Request) ([]byte, bool) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "application/json":
		var body struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, false
		}
		if len(body.Data) == 0 || string(body.Data) == "null" {
			return nil, false
		}
		return body.Data, true
	default:
		if err := r.ParseForm(); err != nil {
			return nil, false
		}
		v := r.PostFormValue("data")
		if v == "" {
			return nil, false
		}
		return []byte(v), true
	}
}
