package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyThreadID   = "thread_id"
	KeyPostID     = "post_id"
	KeyEntityType = "entity_type"
	KeyEntityFQN  = "entity_fqn"
	KeyLinkType   = "link_type"
	KeyFieldValue = "field_value"
	KeyMentions   = "mentions"
	KeyMethod     = "method"
	KeyPath       = "path"
	KeyStatus     = "status"
	KeyUserAgent  = "user_agent"
	KeyRemoteAddr = "remote_addr"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func ThreadID(id string) slog.Attr      { return slog.String(KeyThreadID, id) }
func PostID(id string) slog.Attr        { return slog.String(KeyPostID, id) }
func EntityType(t string) slog.Attr     { return slog.String(KeyEntityType, t) }
func EntityFQN(fqn string) slog.Attr    { return slog.String(KeyEntityFQN, fqn) }
func LinkType(t string) slog.Attr       { return slog.String(KeyLinkType, t) }
func FieldValue(v string) slog.Attr     { return slog.String(KeyFieldValue, v) }
func Mentions(n int) slog.Attr          { return slog.Int(KeyMentions, n) }
func Method(m string) slog.Attr         { return slog.String(KeyMethod, m) }
func Path(p string) slog.Attr           { return slog.String(KeyPath, p) }
func Status(code int) slog.Attr         { return slog.Int(KeyStatus, code) }
func UserAgent(ua string) slog.Attr     { return slog.String(KeyUserAgent, ua) }
func RemoteAddr(addr string) slog.Attr  { return slog.String(KeyRemoteAddr, addr) }
func DurationMS(ms float64) slog.Attr   { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
