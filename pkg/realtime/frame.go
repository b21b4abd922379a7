package realtime

import (
	"fmt"
	"strings"

	json "github.com/json-iterator/go"
)

// Engine.IO packet types
const (
	eioOpen    = '0'
	eioClose   = '1'
	eioPing    = '2'
	eioPong    = '3'
	eioMessage = '4'
)

// Socket.IO packet types, carried inside an Engine.IO message
const (
	sioConnect      = '0'
	sioDisconnect   = '1'
	sioEvent        = '2'
	sioAck          = '3'
	sioConnectError = '4'
)

// Event is a named server push
type Event struct {
	Name string
	Data json.RawMessage
}

// Decode unmarshals the event data into v
func (e Event) Decode(v interface{}) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("event %s has no data", e.Name)
	}
	return json.Unmarshal(e.Data, v)
}

// handshake is the body of the Engine.IO open packet
type handshake struct {
	SID          string `json:"sid"`
	PingInterval int    `json:"pingInterval"`
	PingTimeout  int    `json:"pingTimeout"`
	MaxPayload   int    `json:"maxPayload"`
}

func parseHandshake(frame string) (handshake, error) {
	var h handshake
	if len(frame) < 2 || frame[0] != eioOpen {
		return h, fmt.Errorf("expected open packet, got %q", frame)
	}
	if err := json.UnmarshalFromString(frame[1:], &h); err != nil {
		return h, fmt.Errorf("invalid open packet: %w", err)
	}
	return h, nil
}

// stripNamespace drops a leading "/nsp," and any ack id digits
func stripNamespace(body string) string {
	if strings.HasPrefix(body, "/") {
		if i := strings.IndexByte(body, ','); i >= 0 {
			body = body[i+1:]
		} else {
			body = ""
		}
	}
	return strings.TrimLeft(body, "0123456789")
}

// decodeEvent parses the body of a Socket.IO event packet: ["name", data]
func decodeEvent(body string) (Event, error) {
	var parts []json.RawMessage
	if err := json.UnmarshalFromString(stripNamespace(body), &parts); err != nil {
		return Event{}, fmt.Errorf("invalid event packet: %w", err)
	}
	if len(parts) == 0 {
		return Event{}, fmt.Errorf("event packet has no name")
	}

	var ev Event
	if err := json.Unmarshal(parts[0], &ev.Name); err != nil {
		return Event{}, fmt.Errorf("event name is not a string: %w", err)
	}
	if len(parts) > 1 {
		ev.Data = parts[1]
	}
	return ev, nil
}

// encodeEvent builds a 42["name",data] frame
func encodeEvent(name string, data interface{}) ([]byte, error) {
	args := []interface{}{name}
	if data != nil {
		args = append(args, data)
	}
	body, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	return append([]byte{eioMessage, sioEvent}, body...), nil
}

// connectFrame opens the default namespace
func connectFrame() []byte {
	return []byte{eioMessage, sioConnect}
}

func disconnectFrame() []byte {
	return []byte{eioMessage, sioDisconnect}
}

func pongFrame() []byte {
	return []byte{eioPong}
}
