package authority_client

import (
	"github.com/playmesh/matchsync/go/clients"
)

// AuthorityClient talks to the authoritative session store over its
// JSON HTTP API. Every write it issues maps to one of the store's
// transactional operations, all of which are safe to repeat.
type AuthorityClient struct {
	*clients.BaseClient
}

func NewAuthorityClient(baseURL, apiKey string) *AuthorityClient {
	client := &AuthorityClient{
		BaseClient: clients.NewBaseClient(baseURL),
	}

	if apiKey != "" {
		client.SetHeader(APIKeyHeader, apiKey)
	}

	return client
}
