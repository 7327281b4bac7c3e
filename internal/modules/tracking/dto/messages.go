package dto

import (
	"encoding/json"
	"strconv"
	"strings"
)

const (
	TypeProgress         = "scorm-progress"
	TypeNavigateToSlide  = "scorm-navigate-to-slide"
	TypeNavigationResult = "scorm-navigation-result"
	TypeReloadEmbed      = "scorm-reload-embed"
)

// ID is an activity or item identifier. Numeric ids travel as JSON numbers,
// anything else as strings, and both spellings are accepted on input.
type ID string

func (id ID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id *ID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

type ProgressMessage struct {
	Type            string   `json:"type"`
	CMID            ID       `json:"cmid"`
	SCORMID         ID       `json:"scormid"`
	CurrentSlide    int      `json:"currentSlide"`
	TotalSlides     int      `json:"totalSlides"`
	FurthestSlide   int      `json:"furthestSlide"`
	LessonLocation  string   `json:"lessonLocation"`
	LessonStatus    string   `json:"lessonStatus"`
	Score           string   `json:"score"`
	SlideSource     string   `json:"slideSource"`
	Timestamp       int64    `json:"timestamp"`
	ProgressPercent *float64 `json:"progressPercent"`
	CurrentPercent  *float64 `json:"currentPercent"`
}

type NavigateMessage struct {
	Type  string `json:"type"`
	CMID  ID     `json:"cmid"`
	Slide int    `json:"slide"`
}

type NavigationResultMessage struct {
	Type         string `json:"type"`
	CMID         ID     `json:"cmid"`
	TargetSlide  int    `json:"targetSlide"`
	Success      bool   `json:"success"`
	CurrentSlide int    `json:"currentSlide"`
}

type ReloadEmbedMessage struct {
	Type      string `json:"type"`
	CMID      ID     `json:"cmid"`
	Slide     int    `json:"slide"`
	Timestamp int64  `json:"timestamp"`
}

// Envelope is enough of any inbound message to route it.
type Envelope struct {
	Type string `json:"type"`
	CMID ID     `json:"cmid"`
}

// ProgressInput feeds one observation into progress reporting.
type ProgressInput struct {
	RawPosition    string
	Status         string
	RawScore       string
	DirectPosition int
	Total          int
	Source         string
	Force          bool
}

type SnapshotOutput struct {
	ActivityID       string
	ItemID           string
	CurrentPosition  int
	FurthestPosition int
	TotalPositions   int
	LastStatus       string
	LastLocation     string
	LastScore        string
	PositionSource   string
	APIVersion       string
	PendingTarget    int
	APIWrapped       bool
}
