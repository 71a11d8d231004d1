// Package delivery defines the contract every transport entrypoint fulfils.
package delivery

import "context"

// Delivery is a serving surface (HTTP today). Each implementation blocks in
// Serve until shutdown and registers its own fx stop hook.
type Delivery interface {
	Serve(ctx context.Context) error
}
