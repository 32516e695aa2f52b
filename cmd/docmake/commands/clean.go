package commands

// CleanCmd removes the whole artifact tree plus auxiliary generated files.
// Running it against a clean tree is a no-op.
type CleanCmd struct{}

func (c *CleanCmd) Run(_ *Global, root *CLI) error {
	o, _, closer, err := newOrchestrator(root)
	if err != nil {
		return err
	}
	defer closer()
	return o.Clean()
}

// CleanExamplesCmd cleans but preserves the generated example galleries.
type CleanExamplesCmd struct{}

func (c *CleanExamplesCmd) Run(_ *Global, root *CLI) error {
	o, _, closer, err := newOrchestrator(root)
	if err != nil {
		return err
	}
	defer closer()
	return o.CleanExceptExamples()
}

// CleanAutosummaryCmd removes only the generated API stub directories.
type CleanAutosummaryCmd struct{}

func (c *CleanAutosummaryCmd) Run(_ *Global, root *CLI) error {
	o, _, closer, err := newOrchestrator(root)
	if err != nil {
		return err
	}
	defer closer()
	return o.CleanAutosummary()
}
