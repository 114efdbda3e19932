// Package upload hands finished files to the cloud photo store. The store
// hands back an opaque media key per item; everything else about it is
// somebody else's problem.
package upload

import (
	"context"
)

type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}
