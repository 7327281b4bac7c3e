package service

import (
	"encoding/json"

	"scormtrack/internal/modules/tracking/domain"
)

// consumePending reads the pending navigation and deletes it from every
// tier, so a later reload without a new request resumes normally.
func (e *Engine) consumePending() (domain.PendingNavigation, bool) {
	key := domain.PendingNavigationKey(e.deps.ActivityID)
	raw, ok := e.store.first(e.ctx, key)
	e.store.removeAll(e.ctx, key)
	if !ok {
		return domain.PendingNavigation{}, false
	}
	pending := domain.PendingNavigation{}
	if err := json.Unmarshal([]byte(raw), &pending); err != nil {
		e.log.Warn().Err(err).Msg("discarding unreadable pending navigation")
		return domain.PendingNavigation{}, false
	}
	if pending.TargetPosition < 1 || pending.NavigationID == "" {
		return domain.PendingNavigation{}, false
	}
	return pending, true
}

func (e *Engine) storePending(pending domain.PendingNavigation) bool {
	payload, err := json.Marshal(pending)
	if err != nil {
		return false
	}
	cmid := e.deps.ActivityID
	if !e.store.setAll(e.ctx, domain.PendingNavigationKey(cmid), string(payload)) {
		return false
	}
	e.store.setOrigin(e.ctx, domain.NavigationStartingKey(cmid), pending.NavigationID)
	return true
}

// superseded reports whether a newer navigation has replaced navID. Only
// the newest navigation may keep forcing values.
func (e *Engine) superseded(navID string) bool {
	if navID == "" {
		return false
	}
	cmid := e.deps.ActivityID
	if current, ok := e.store.origin(e.ctx, domain.CurrentNavigationKey(cmid)); ok && current != navID {
		return true
	}
	if starting, ok := e.store.origin(e.ctx, domain.NavigationStartingKey(cmid)); ok && starting != navID {
		return true
	}
	return false
}

// reloadGuarded reports whether the same target was already attempted by
// reload within the guard period, and records this attempt otherwise.
func (e *Engine) reloadGuarded(target int) bool {
	key := domain.FallbackReloadKey(e.deps.ActivityID)
	now := e.sched.Now()
	if raw, ok := e.store.first(e.ctx, key); ok {
		guard := domain.ReloadGuard{}
		if err := json.Unmarshal([]byte(raw), &guard); err == nil && guard.Slide == target {
			if now.UnixMilli()-guard.At < e.deps.Timing.ReloadGuard.Milliseconds() {
				return true
			}
		}
	}
	payload, _ := json.Marshal(domain.ReloadGuard{Slide: target, At: now.UnixMilli()})
	e.store.setAll(e.ctx, key, string(payload))
	return false
}
