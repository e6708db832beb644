package server

import (
	"encoding/json"

	"web-desktop/internal/db"
	"web-desktop/internal/desktop"
	"web-desktop/internal/highscore"
	"web-desktop/internal/storage"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// newLedger builds the process-wide ledger, seeded from and recording to the database when present.
func newLedger(conn *gorm.DB) *highscore.Ledger {
	ledger := highscore.NewLedger()
	if conn == nil {
		return ledger
	}
	seed, err := loadTopScores(conn)
	if err != nil {
		log.Warn().Err(err).Msg("load highscores")
		seed = nil
	}
	return ledger.WithRecorder(scoreRecorder{db: conn}, seed)
}

func loadTopScores(conn *gorm.DB) ([]highscore.Score, error) {
	var rows []db.Score
	err := conn.Order("tiles desc").Order("attempts asc").Order("id asc").
		Limit(highscore.MaxEntries).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	scores := make([]highscore.Score, 0, len(rows))
	for _, row := range rows {
		scores = append(scores, highscore.Score{Username: row.Username, Tiles: row.Tiles, Attempts: row.Attempts})
	}
	return scores, nil
}

type scoreRecorder struct {
	db *gorm.DB
}

func (r scoreRecorder) RecordScore(score highscore.Score) error {
	return r.db.Create(&db.Score{
		Username: score.Username,
		Tiles:    score.Tiles,
		Attempts: score.Attempts,
	}).Error
}

func (s *Server) kvStore(sessionID string) storage.KV {
	if s.db == nil {
		return storage.NewMemory()
	}
	return storage.NewGorm(s.db, sessionID)
}

func (s *Server) journal(sessionID string) desktop.Journal {
	if s.db == nil {
		return nil
	}
	return eventJournal{db: s.db, sessionID: sessionID}
}

// eventJournal appends desktop events to the events table.
type eventJournal struct {
	db        *gorm.DB
	sessionID string
}

func (j eventJournal) Record(id desktop.WindowID, event string, payload map[string]any) {
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Warn().Err(err).Str("event", event).Msg("encode event payload")
		return
	}
	record := db.Event{
		SessionID: j.sessionID,
		WindowID:  id.String(),
		Type:      event,
		Payload:   datatypes.JSON(data),
	}
	if err := j.db.Create(&record).Error; err != nil {
		log.Warn().Err(err).Str("session", j.sessionID).Str("event", event).Msg("persist event")
	}
}
