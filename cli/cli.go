package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/larf/cli/cmd"
	"github.com/ardnew/larf/pkg"
)

// CLI is the top-level command-line interface for larf.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`
	Lang  langConfig  `embed:"" group:"lang"  prefix:"lang-"`

	Run     cmd.Run     `cmd:"" default:"withargs" help:"Run source files"`
	Tree    cmd.Tree    `cmd:""                    help:"Print the token tree of source files"`
	Grammar cmd.Grammar `cmd:""                    help:"Print the token prototypes of the language"`
	Repl    cmd.Repl    `cmd:""                    help:"Start an interactive session"`
	Init    cmd.Init    `cmd:""                    help:"Initialize configuration file"`
	Version cmd.Version `cmd:""                    help:"Print version"`
}

// Run executes the larf CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  cacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars()).
		CloneWith(cli.Lang.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Configure the logger before parsing so that parse errors and the
	// configuration loaders use it.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group(), cli.Lang.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolveYAML, configFilePath+".yaml"),
		kong.Configuration(resolve(ctx), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	defer cli.Log.start(ctx)()

	// [pprofConfig.start] is a no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	opts, err := cli.Lang.options(ctx)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithOptions(ctx, opts...)

	return ktx.Run(ctx, &cli)
}
