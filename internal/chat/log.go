package chat

import (
	"encoding/json"
	"errors"
	"fmt"

	"web-desktop/internal/storage"
)

// MaxLogEntries bounds the persisted message log.
const MaxLogEntries = 100

// Persisted keys.
const (
	KeyUsername   = "username"
	KeyMessageLog = "messageLog"
)

// Message is one chat line.
type Message struct {
	Username string `json:"username"`
	Text     string `json:"data"`
}

// Log is the persisted message history, newest first.
type Log struct {
	kv storage.KV
}

func NewLog(kv storage.KV) *Log {
	return &Log{kv: kv}
}

// Load returns the stored history, newest first. A missing log is empty.
func (l *Log) Load() ([]Message, error) {
	raw, err := l.kv.Get(KeyMessageLog)
	if errors.Is(err, storage.ErrNotFound) || raw == "" {
		return []Message{}, nil
	}
	if err != nil {
		return []Message{}, fmt.Errorf("load message log: %w", err)
	}
	var messages []Message
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		return []Message{}, fmt.Errorf("decode message log: %w", err)
	}
	return messages, nil
}

// Prepend stores msg as the newest entry, dropping the oldest entries past MaxLogEntries.
func (l *Log) Prepend(msg Message) ([]Message, error) {
	messages, err := l.Load()
	if err != nil {
		messages = []Message{}
	}
	messages = append([]Message{msg}, messages...)
	if len(messages) > MaxLogEntries {
		messages = messages[:MaxLogEntries]
	}
	if err := l.save(messages); err != nil {
		return messages, err
	}
	return messages, nil
}

// Clear empties the stored history.
func (l *Log) Clear() error {
	return l.save([]Message{})
}

func (l *Log) save(messages []Message) error {
	data, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("encode message log: %w", err)
	}
	if err := l.kv.Set(KeyMessageLog, string(data)); err != nil {
		return fmt.Errorf("save message log: %w", err)
	}
	return nil
}

// Chronological returns messages oldest first.
func Chronological(newestFirst []Message) []Message {
	out := make([]Message, len(newestFirst))
	for i, msg := range newestFirst {
		out[len(newestFirst)-1-i] = msg
	}
	return out
}
