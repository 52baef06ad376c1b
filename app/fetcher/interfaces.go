package fetcher

import (
	"context"

	"github.com/LukasRub/crisiscorpus/app/twitter"
)

// Client is the document-retrieval capability the fetcher drives.
type Client interface {
	Lookup(ctx context.Context, ids []string, opts twitter.LookupOptions) ([]twitter.Status, error)
	QuotaStatus(ctx context.Context) (twitter.Quota, error)
}

var _ Client = (*twitter.Client)(nil)
