package backend

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Response is the validated outcome of one backend call: Completed,
// Processing or Failed. Nothing past this package sees raw JSON.
type Response interface {
	isResponse()
}

// Completed carries a finished artifact.
type Completed struct {
	VideoID string `json:"videoId"`
	Result  string `json:"result"`
}

// Processing means the backend accepted the job. ResultURL is absolute once it
// leaves the Client; it may be empty on a status poll.
type Processing struct {
	ResultURL string `json:"resultUrl"`
}

// Failed is an explicit failure reported by the backend in the response body.
type Failed struct {
	Message string `json:"message"`
}

func (Completed) isResponse()  {}
func (Processing) isResponse() {}
func (Failed) isResponse()     {}

// wireResponse mirrors the loosely typed JSON the backend returns.
type wireResponse struct {
	Status    string `json:"status"`
	VideoID   string `json:"video_id"`
	Result    string `json:"result"`
	ResultURL string `json:"result_url"`
	Message   string `json:"message"`
	Error     string `json:"error"`
}

// decodeResponse validates a response body into the Response union.
func decodeResponse(body []byte) (Response, error) {
	var wire wireResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	status := strings.ToLower(strings.TrimSpace(wire.Status))
	switch {
	case status == "completed":
		return Completed{VideoID: wire.VideoID, Result: wire.Result}, nil
	case status == "error" || status == "failed":
		return Failed{Message: wire.failureMessage()}, nil
	case wire.ResultURL != "":
		return Processing{ResultURL: wire.ResultURL}, nil
	case status == "processing" || status == "pending" || status == "queued":
		return Processing{}, nil
	case status == "":
		return nil, fmt.Errorf("response has no status")
	default:
		return nil, fmt.Errorf("unknown response status %q", wire.Status)
	}
}

// failureMessage picks the most specific message the backend supplied.
func (w wireResponse) failureMessage() string {
	switch {
	case strings.TrimSpace(w.Error) != "":
		return strings.TrimSpace(w.Error)
	case strings.TrimSpace(w.Message) != "":
		return strings.TrimSpace(w.Message)
	default:
		return "backend reported a failure"
	}
}
