package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSign_KnownVector(t *testing.T) {
	got := Sign("whsec_test", []byte(`{"type":"analysis.completed"}`))
	assert.Equal(t, "sha256=4d0586d989899ed5664c8f25445ad65b72eb8ee1ef44b6720b3bb57c3628f34e", got)
}

func TestVerify(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"type":"analysis.completed","dominant_emotion":"happy"}`)
	valid := Sign(secret, payload)

	tests := []struct {
		name    string
		secret  string
		payload []byte
		header  string
		want    bool
	}{
		{name: "valid", secret: secret, payload: payload, header: valid, want: true},
		{name: "wrong secret", secret: "other", payload: payload, header: valid, want: false},
		{name: "modified payload", secret: secret, payload: []byte(`{"type":"score.computed"}`), header: valid, want: false},
		{name: "missing prefix", secret: secret, payload: payload, header: valid[len(signaturePrefix):], want: false},
		{name: "not hex", secret: secret, payload: payload, header: "sha256=zz", want: false},
		{name: "empty header", secret: secret, payload: payload, header: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Verify(tt.secret, tt.payload, tt.header))
		})
	}
}
