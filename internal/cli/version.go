package cli

import "fmt"

func (c *VersionCmd) Run(ctx *Context) error {
	fmt.Printf("mail-mcp version %s\n", Version)
	return nil
}
