// Package ports defines the core interfaces for the application.
package ports

import "context"

// APIClient performs authenticated JSON requests against the back-office API.
//
//go:generate mockgen -source=api_client.go -destination=mocks/mock_api_client.go -package=mocks
type APIClient interface {
	// Do sends a request to path, which is relative to the configured base URL and
	// may carry a query string. A non-nil body is encoded as JSON. On a 2xx answer the
	// data member of the response envelope is decoded into out, unless out is nil.
	//
	// Every failure is a *domain.APIError.
	Do(ctx context.Context, method, path string, body, out any) error
}
