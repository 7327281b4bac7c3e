package service

import (
	"context"
	"encoding/json"
	"fmt"

	"scormtrack/internal/modules/tracking/domain"
	"scormtrack/internal/modules/tracking/dto"
	apperrors "scormtrack/internal/platform/errors"
)

// Navigate moves the content to target, trying progressively heavier
// strategies until one takes effect.
func (e *Engine) Navigate(target int) bool {
	if target < 1 {
		return false
	}
	log := e.log.With().Int("target", target).Logger()
	if e.deps.Vendors != nil {
		if vendor, ok := e.deps.Vendors.NavigateTo(target); ok {
			log.Info().Str("vendor", vendor).Msg("navigated through vendor tool")
			return true
		}
	}
	e.adviseLocation(target)
	if e.relayToInnerFrames(target) {
		log.Info().Msg("navigated through inner frame")
		return true
	}
	ok := e.reloadToTarget(target)
	log.Info().Bool("success", ok).Msg("navigation fell back to reload")
	return ok
}

// adviseLocation records the target in the SCORM location. Content rarely
// reacts to this while running, so it never counts as success.
func (e *Engine) adviseLocation(target int) {
	ic := e.api
	if ic == nil {
		return
	}
	ic.raw.SetValue(ic.shape.LocationField, e.formatLocation(target))
	ic.raw.Commit("")
}

// relayToInnerFrames drives vendor tools inside same-origin inner frames.
// Frames that cannot be driven get a navigate message, which is not
// confirmable and so never counts as success.
func (e *Engine) relayToInnerFrames(target int) bool {
	if e.deps.Frame == nil {
		return false
	}
	for _, frame := range e.deps.Frame.InnerFrames() {
		if frame.NavigateTo(target) {
			return true
		}
		msg := dto.NavigateMessage{Type: dto.TypeNavigateToSlide, CMID: dto.ID(e.deps.ActivityID), Slide: target}
		if err := frame.PostMessage(msg); err != nil {
			e.log.Debug().Err(err).Msg("inner frame relay failed")
		}
	}
	return false
}

// reloadToTarget stores a pending navigation and reloads the content so
// the resume correction lands on target.
func (e *Engine) reloadToTarget(target int) bool {
	if e.reloadGuarded(target) {
		e.log.Warn().Int("target", target).Msg("reload to same target already attempted recently")
		return false
	}
	pending := domain.PendingNavigation{
		TargetPosition: target,
		NavigationID:   e.deps.IDs.New(),
		FurthestHint:   e.session.FurthestPosition,
		RequestedAt:    e.sched.Now().UnixMilli(),
	}
	if !e.storePending(pending) {
		return false
	}
	if e.deps.Frame != nil && e.deps.Frame.Reload() {
		return true
	}
	if m := e.deps.Messenger; m != nil {
		msg := dto.ReloadEmbedMessage{
			Type:      dto.TypeReloadEmbed,
			CMID:      dto.ID(e.deps.ActivityID),
			Slide:     target,
			Timestamp: e.sched.Now().UnixMilli(),
		}
		if err := m.PostToParent(msg); err == nil {
			return true
		}
	}
	if e.deps.Frame != nil {
		if err := e.deps.Frame.ReloadPage(); err == nil {
			return true
		}
	}
	return false
}

type navigateRequest struct {
	Type  string          `json:"type"`
	CMID  dto.ID          `json:"cmid"`
	Slide json.RawMessage `json:"slide"`
}

// HandleMessage answers navigate requests addressed to this activity.
// Messages of other types or for other activities are ignored.
func (e *Engine) HandleMessage(_ context.Context, raw []byte) error {
	req := navigateRequest{}
	if err := json.Unmarshal(raw, &req); err != nil {
		return fmt.Errorf("%w: decode message: %v", apperrors.ErrInvalidInput, err)
	}
	if req.Type != dto.TypeNavigateToSlide || string(req.CMID) != e.deps.ActivityID {
		return nil
	}
	target, err := slideNumber(req.Slide)
	if err != nil {
		return err
	}
	success := e.Navigate(target)
	e.post(dto.NavigationResultMessage{
		Type:         dto.TypeNavigationResult,
		CMID:         dto.ID(e.deps.ActivityID),
		TargetSlide:  target,
		Success:      success,
		CurrentSlide: e.session.CurrentPosition,
	})
	return nil
}

func slideNumber(raw json.RawMessage) (int, error) {
	var id dto.ID
	if err := json.Unmarshal(raw, &id); err != nil {
		return 0, fmt.Errorf("%w: slide: %v", apperrors.ErrInvalidInput, err)
	}
	n, ok := domain.ParseSlideNumber(string(id))
	if !ok {
		return 0, fmt.Errorf("%w: slide %q", apperrors.ErrInvalidInput, string(id))
	}
	return n, nil
}
