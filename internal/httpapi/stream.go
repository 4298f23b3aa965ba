package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Tangerg/lynx/sse"
	"go.uber.org/zap"

	"github.com/roamdigital/explainer/internal/errs"
	"github.com/roamdigital/explainer/internal/orchestrator"
)

const streamHeartbeat = 15 * time.Second

// handleExplainStream serves Server-Sent Events: one "metadata" event,
// zero or more "content" events, then a terminal "done" or "error"
// event. The orchestrator's Stream guarantees metadata precedes content;
// this handler adds the terminal event.
func (s *server) handleExplainStream(w http.ResponseWriter, r *http.Request) {
	var req explainRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	writer, err := sse.NewWriter(&sse.WriterConfig{
		Context:        r.Context(),
		ResponseWriter: w,
		HeartBeat:      streamHeartbeat,
	})
	if err != nil {
		writeError(w, errs.StreamError)
		return
	}
	defer func() {
		if cerr := writer.Close(); cerr != nil {
			zap.S().Debugw("sse writer close", "err", cerr)
		}
	}()

	onMetadata := func(ev orchestrator.MetadataEvent) error {
		body, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		return writer.Send(&sse.Message{Event: "metadata", Data: body})
	}
	onChunk := func(chunk []byte) error {
		return writer.Send(&sse.Message{Event: "content", Data: chunk})
	}

	if err := s.orch.Stream(r.Context(), req.toOrchestrator(), onMetadata, onChunk); err != nil {
		_ = writer.Send(&sse.Message{Event: "error", Data: []byte(err.Error())})
		return
	}
	_ = writer.Send(&sse.Message{Event: "done", Data: []byte("{}")})
}
