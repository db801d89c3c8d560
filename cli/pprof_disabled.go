//go:build !pprof

package cli

import (
	"context"

	"github.com/alecthomas/kong"
)

// pprofConfig has no flags when built without the pprof tag.
type pprofConfig struct{}

func (pprofConfig) vars() kong.Vars { return kong.Vars{} }

func (pprofConfig) group() kong.Group {
	var group kong.Group

	group.Key = "pprof"

	return group
}

func (pprofConfig) start(context.Context) (stop func()) { return func() {} }
