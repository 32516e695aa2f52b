package commands

import "git.home.luguber.info/inful/docmake/internal/config"

// InitCmd writes an example configuration file.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	return config.Init(root.Config, i.Force)
}
