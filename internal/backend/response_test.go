package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Response
	}{
		{"completed", `{"status":"completed","video_id":"V","result":"text"}`, Completed{VideoID: "V", Result: "text"}},
		{"processing with url", `{"status":"processing","result_url":"/api/result/1"}`, Processing{ResultURL: "/api/result/1"}},
		{"result url without status", `{"result_url":"/api/result/2"}`, Processing{ResultURL: "/api/result/2"}},
		{"processing bare", `{"status":"processing"}`, Processing{}},
		{"error field", `{"status":"error","error":"boom"}`, Failed{Message: "boom"}},
		{"failed message", `{"status":"failed","message":"nope"}`, Failed{Message: "nope"}},
		{"failed empty", `{"status":"failed"}`, Failed{Message: "backend reported a failure"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeResponse([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeResponse_Rejects(t *testing.T) {
	for _, body := range []string{`not json`, `{}`, `{"status":"exploded"}`, `[]`} {
		_, err := decodeResponse([]byte(body))
		assert.Error(t, err, "body %s", body)
	}
}
