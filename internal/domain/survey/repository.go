package survey

import "context"

// CatalogRepository loads the questionnaire.
type CatalogRepository interface {
	LoadCatalog(ctx context.Context) (*Catalog, error)
}

// SessionStore persists in-progress sessions keyed by player identity.
// Expired or missing sessions are reported as not found.
type SessionStore interface {
	Get(ctx context.Context, identity int64) (Session, bool, error)
	Save(ctx context.Context, session Session) error
	Delete(ctx context.Context, identity int64) error
}
