package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// Execute implements the go-flags Commander interface for ClearCommand.
func (c *ClearCommand) Execute(args []string) error {
	// Confirmation prompt unless --force
	if !c.Force {
		fmt.Println("⚠ WARNING: This will permanently delete every recorded view count.")
		fmt.Println("This action cannot be undone.")
		fmt.Println()
		fmt.Print(`Type "CLEAR" to confirm: `)

		in := c.stdin
		if in == nil {
			in = os.Stdin
		}
		scanner := bufio.NewScanner(in)
		if !scanner.Scan() {
			return fmt.Errorf("aborted: no input received")
		}
		if strings.TrimSpace(scanner.Text()) != "CLEAR" {
			return fmt.Errorf("aborted: confirmation text did not match")
		}
	}

	cfg, _, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	ctx := context.Background()

	store, closeStore, err := openStore(ctx, c.deps, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.Clear(ctx); err != nil {
		return fmt.Errorf("clear failed: %w", err)
	}

	if c.globals.JSON {
		return printJSON(map[string]interface{}{
			"cleared": true,
			"message": "history deleted",
		})
	}

	fmt.Println("Cleared all history.")
	return nil
}
