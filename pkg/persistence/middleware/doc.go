/*
Package middleware wraps a ports.StateStore with extra behavior.

NewEncryptionMiddleware seals whole snapshots with AES-GCM and supports key
rotation through fallback keys. NewPIIMiddleware masks params and query
values whose key matches a pattern before they reach the store. Chain
composes them:

	store := middleware.Chain(redisStore,
		middleware.NewPIIMiddleware([]string{"token"}),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}),
	)
*/
package middleware
