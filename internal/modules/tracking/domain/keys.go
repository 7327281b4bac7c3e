package domain

func FurthestKey(cmid string) string           { return "scorm_furthest_slide_" + cmid }
func PendingNavigationKey(cmid string) string  { return "scorm_pending_navigation_" + cmid }
func CurrentNavigationKey(cmid string) string  { return "scorm_current_navigation_" + cmid }
func NavigationStartingKey(cmid string) string { return "scorm_navigation_starting_" + cmid }
func FallbackReloadKey(cmid string) string     { return "scorm_fallback_reload_" + cmid }
func LocationFormatKey(cmid string) string     { return "scorm_location_format_" + cmid }

// ReloadGuard records the last suspend-data-and-reload attempt.
type ReloadGuard struct {
	Slide int   `json:"slide"`
	At    int64 `json:"timestamp"`
}
