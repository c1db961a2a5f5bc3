package authority_client

const (
	// API endpoints
	ServerTimeEndpoint    = "/v1/time"
	SessionsEndpoint      = "/v1/sessions"
	ActiveSessionEndpoint = "/v1/players/%s/active-session"
	ProfileEndpoint       = "/v1/profiles/%s"
	MessagesEndpoint      = "/v1/messages"
	UnreadInvitesEndpoint = "/v1/players/%s/invites/unread"

	// Headers
	APIKeyHeader = "X-Api-Key"
)
