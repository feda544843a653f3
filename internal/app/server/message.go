package server

import (
	"encoding/json"
	"fmt"
)

type OpCode uint8

const (
	UPDATE_UI_STATE OpCode = iota
	START_LOCAL_GAME
	LOCAL_GAME_TIMEOUT
	READY
	REJECT
	MOVE
	GIVEUP
	TIMEOUT_END
	SUICIDE_END
	GIVEUP_END
	LEAVE
	CHAT
	ERROR
)

var opCodeNames = [...]string{
	UPDATE_UI_STATE:    "UPDATE_UI_STATE",
	START_LOCAL_GAME:   "START_LOCAL_GAME",
	LOCAL_GAME_TIMEOUT: "LOCAL_GAME_TIMEOUT",
	READY:              "READY",
	REJECT:             "REJECT",
	MOVE:               "MOVE",
	GIVEUP:             "GIVEUP",
	TIMEOUT_END:        "TIMEOUT_END",
	SUICIDE_END:        "SUICIDE_END",
	GIVEUP_END:         "GIVEUP_END",
	LEAVE:              "LEAVE",
	CHAT:               "CHAT",
	ERROR:              "ERROR",
}

func (op OpCode) String() string {
	if int(op) < len(opCodeNames) {
		return opCodeNames[op]
	}
	return fmt.Sprintf("OpCode(%d)", uint8(op))
}

func (op OpCode) MarshalText() ([]byte, error) {
	if int(op) >= len(opCodeNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOpCode, uint8(op))
	}
	return []byte(opCodeNames[op]), nil
}

func (op *OpCode) UnmarshalText(text []byte) error {
	for i, name := range opCodeNames {
		if name == string(text) {
			*op = OpCode(i)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownOpCode, text)
}

// Message is the unit exchanged with participants, one per line or frame.
type Message struct {
	Op    OpCode `json:"op"`
	Data1 string `json:"data1,omitempty"`
	Data2 string `json:"data2,omitempty"`
}

func decodeMessage(b []byte) (Message, error) {
	var raw struct {
		Op    *OpCode `json:"op"`
		Data1 string  `json:"data1"`
		Data2 string  `json:"data2"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}
	if raw.Op == nil {
		return Message{}, fmt.Errorf("%w: missing op", ErrMalformedMessage)
	}
	return Message{Op: *raw.Op, Data1: raw.Data1, Data2: raw.Data2}, nil
}

func encodeMessage(msg Message) ([]byte, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", msg.Op, err)
	}
	return b, nil
}

func errorMessage(err error) Message {
	return Message{Op: ERROR, Data1: statusFor(err), Data2: err.Error()}
}
