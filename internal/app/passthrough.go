package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
)

// Passthrough forwards args to the resolver at the project root and
// returns its exit code unchanged.
func (s Service) Passthrough(ctx context.Context, req PassthroughRequest) (int, error) {
	root := strings.TrimSpace(req.Root)
	if root == "" {
		return 1, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("project root is required")
	}
	log.Ctx(ctx).Debug().Strs("args", req.Args).Msg("passing through to resolver")
	return s.Resolver.Passthrough(ctx, root, req.Args, req.Stdio)
}
