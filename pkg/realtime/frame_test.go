package realtime

import (
	"testing"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHandshake(t *testing.T) {
	h, err := parseHandshake(`0{"sid":"lv_VI97HAXpY6yYWAAAC","upgrades":[],"pingInterval":25000,"pingTimeout":20000,"maxPayload":1000000}`)
	require.NoError(t, err)
	assert.Equal(t, "lv_VI97HAXpY6yYWAAAC", h.SID)
	assert.Equal(t, 25000, h.PingInterval)
	assert.Equal(t, 20000, h.PingTimeout)

	_, err = parseHandshake(`40`)
	assert.Error(t, err)
}

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantName string
		wantData string
	}{
		{"plain", `["notify_12",{"chat_id":4}]`, "notify_12", `{"chat_id":4}`},
		{"no data", `["ping_me"]`, "ping_me", ""},
		{"ack id", `17["notify_12",{"user_id":12}]`, "notify_12", `{"user_id":12}`},
		{"namespace", `/chat,["notify_3",[1,2]]`, "notify_3", `[1,2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := decodeEvent(tt.body)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, ev.Name)
			if tt.wantData == "" {
				assert.Empty(t, ev.Data)
			} else {
				assert.JSONEq(t, tt.wantData, string(ev.Data))
			}
		})
	}
}

func TestDecodeEventErrors(t *testing.T) {
	for _, body := range []string{``, `[]`, `[42,{}]`, `{"a":1}`} {
		_, err := decodeEvent(body)
		assert.Error(t, err, body)
	}
}

func TestEncodeEvent(t *testing.T) {
	frame, err := encodeEvent("join", map[string]int{"user_id": 12})
	require.NoError(t, err)
	assert.Equal(t, `42["join",{"user_id":12}]`, string(frame))

	frame, err = encodeEvent("hello", nil)
	require.NoError(t, err)
	assert.Equal(t, `42["hello"]`, string(frame))
}

func TestSocketURL(t *testing.T) {
	tests := []struct {
		in, want string
		wantErr  bool
	}{
		{"http://localhost:5050", "ws://localhost:5050/socket.io/?EIO=4&transport=websocket", false},
		{"https://api.seattlepulse.net/", "wss://api.seattlepulse.net/socket.io/?EIO=4&transport=websocket", false},
		{"ftp://example.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := SocketURL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		payload string
		want    Kind
	}{
		{`{"chat_id":4,"sender_id":9,"content":"hi"}`, KindDirectMessage},
		{`{"type":"group_onboarding","message":{"group_chat_id":3,"content":"yo"}}`, KindGroupMessage},
		{`{"user_id":12,"content":"ada followed you"}`, KindNotification},
		{`{"chat_id":4,"user_id":12}`, KindDirectMessage},
		{`{"hello":"world"}`, KindOther},
		{`not json`, KindOther},
		{``, KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(json.RawMessage(tt.payload)))
		})
	}
}

func TestNotifyEvent(t *testing.T) {
	assert.Equal(t, "notify_12", NotifyEvent(12))
	assert.True(t, IsNotifyEvent("notify_12"))
	assert.False(t, IsNotifyEvent("connect"))
}
