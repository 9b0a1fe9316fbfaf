package main

import "testing"

func TestRootCommands(t *testing.T) {
	rootCmd := newRootCmd()
	for _, name := range []string{"tick", "insert-usage", "backfill", "serve", "migrate", "contracts", "runs"} {
		c, _, err := rootCmd.Find([]string{name})
		if err != nil || c.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
	if _, _, err := rootCmd.Find([]string{"contracts", "active"}); err != nil {
		t.Errorf("contracts active not registered: %v", err)
	}
}
