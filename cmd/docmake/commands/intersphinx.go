package commands

import "context"

// UpdateIntersphinxCmd refreshes the pinned cross-project inventory files.
type UpdateIntersphinxCmd struct{}

func (u *UpdateIntersphinxCmd) Run(_ *Global, root *CLI) error {
	o, _, closer, err := newOrchestrator(root)
	if err != nil {
		return err
	}
	defer closer()
	return o.UpdateIntersphinx(context.Background())
}
