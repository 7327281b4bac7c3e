// Package simulation replays a learner session against the tracking engine
// in virtual time: an LMS backing store, a content player speaking SCORM,
// page reloads and host messages, all driven from a YAML scenario.
package simulation

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"scormtrack/internal/modules/tracking/domain"
	apperrors "scormtrack/internal/platform/errors"
)

const (
	ActionGoto     = "goto"
	ActionNavigate = "navigate"
	ActionMessage  = "message"
	ActionReload   = "reload"
	ActionCloseTab = "close_tab"
)

const (
	FrameNone        = "none"
	FrameSameOrigin  = "same_origin"
	FrameCrossOrigin = "cross_origin"
)

type Scenario struct {
	Name       string        `yaml:"name"`
	ActivityID string        `yaml:"activity_id"`
	ItemID     string        `yaml:"item_id"`
	APIVersion string        `yaml:"api_version"`
	Content    Content       `yaml:"content"`
	LMS        LMSState      `yaml:"lms"`
	Storage    StorageState  `yaml:"storage"`
	Steps      []Step        `yaml:"steps"`
	Settle     time.Duration `yaml:"settle"`
	Expect     Expect        `yaml:"expect"`
}

type Content struct {
	// Vendor is storyline, captivate, generic or none.
	Vendor       string `yaml:"vendor"`
	Slides       int    `yaml:"slides"`
	Frame        string `yaml:"frame"`
	ReportsScore bool   `yaml:"reports_score"`
	// HonorMessages makes the player act on relayed navigate messages.
	HonorMessages bool          `yaml:"honor_messages"`
	BootDelay     time.Duration `yaml:"boot_delay"`
}

type LMSState struct {
	Location    string `yaml:"location"`
	SuspendData string `yaml:"suspend_data"`
	Score       string `yaml:"score"`
	Status      string `yaml:"status"`
}

type StorageState struct {
	Furthest int `yaml:"furthest"`
}

type Step struct {
	At      time.Duration `yaml:"at"`
	Action  string        `yaml:"action"`
	Slide   int           `yaml:"slide"`
	Message string        `yaml:"message"`
}

type Expect struct {
	Furthest        *int     `yaml:"furthest"`
	Current         *int     `yaml:"current"`
	LMSLocation     *string  `yaml:"lms_location"`
	ProgressPercent *float64 `yaml:"progress_percent"`
	Reloads         *int     `yaml:"reloads"`
}

func LoadScenario(path string) (Scenario, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(payload)
}

func ParseScenario(payload []byte) (Scenario, error) {
	sc := Scenario{}
	if err := yaml.Unmarshal(payload, &sc); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario: %w", err)
	}
	sc.applyDefaults()
	if err := sc.Validate(); err != nil {
		return Scenario{}, err
	}
	return sc, nil
}

func (sc *Scenario) applyDefaults() {
	if sc.Name == "" {
		sc.Name = "unnamed"
	}
	if sc.ActivityID == "" {
		sc.ActivityID = "1"
	}
	if sc.ItemID == "" {
		sc.ItemID = "1"
	}
	if sc.APIVersion == "" {
		sc.APIVersion = string(domain.APIVersion12)
	}
	if sc.Content.Vendor == "" {
		sc.Content.Vendor = "none"
	}
	if sc.Content.Frame == "" {
		sc.Content.Frame = FrameNone
	}
	if sc.Content.Slides == 0 {
		sc.Content.Slides = 10
	}
	if sc.Content.BootDelay == 0 {
		sc.Content.BootDelay = 300 * time.Millisecond
	}
	if sc.Settle == 0 {
		sc.Settle = 15 * time.Second
	}
	sort.SliceStable(sc.Steps, func(i, j int) bool { return sc.Steps[i].At < sc.Steps[j].At })
}

func (sc Scenario) Validate() error {
	if _, ok := domain.ParseAPIVersion(sc.APIVersion); !ok {
		return fmt.Errorf("%w: api_version %q", apperrors.ErrInvalidInput, sc.APIVersion)
	}
	switch sc.Content.Vendor {
	case "storyline", "captivate", "generic", "none":
	default:
		return fmt.Errorf("%w: content.vendor %q", apperrors.ErrInvalidInput, sc.Content.Vendor)
	}
	switch sc.Content.Frame {
	case FrameNone, FrameSameOrigin, FrameCrossOrigin:
	default:
		return fmt.Errorf("%w: content.frame %q", apperrors.ErrInvalidInput, sc.Content.Frame)
	}
	if sc.Content.Slides < 1 {
		return fmt.Errorf("%w: content.slides must be positive", apperrors.ErrInvalidInput)
	}
	for i, step := range sc.Steps {
		switch step.Action {
		case ActionGoto, ActionNavigate:
			if step.Slide < 1 {
				return fmt.Errorf("%w: step %d needs a 1-based slide", apperrors.ErrInvalidInput, i+1)
			}
		case ActionMessage:
			if step.Message == "" {
				return fmt.Errorf("%w: step %d needs a message", apperrors.ErrInvalidInput, i+1)
			}
		case ActionReload, ActionCloseTab:
		default:
			return fmt.Errorf("%w: step %d action %q", apperrors.ErrInvalidInput, i+1, step.Action)
		}
	}
	return nil
}
