// Package adapter connects interactive front ends to a running vshell server.
package adapter

import "context"

type Adapter interface {
	Start(ctx context.Context) error
}
