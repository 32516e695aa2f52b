package main

import (
	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docmake/cmd/docmake/commands"
	"git.home.luguber.info/inful/docmake/internal/version"
)

func main() {
	cli := &commands.CLI{}
	ctx := kong.Parse(cli,
		kong.Name("docmake"),
		kong.Description("Documentation build orchestrator: reproducible sphinx builds with caching, parallelism and one-way publishing."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)
	ctx.FatalIfErrorf(ctx.Run(&commands.Global{}))
}
