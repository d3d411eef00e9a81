package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/firewave/internal/registry"
)

var driversCmd = &cobra.Command{
	Use:   "drivers",
	Short: "List scripted actor drivers",
	Long:  `Shows the drivers available to 'firewave simulate' and 'firewave serve --drivers'.`,
	Args:  cobra.NoArgs,
	Run:   runDrivers,
}

func runDrivers(_ *cobra.Command, _ []string) {
	drivers := registry.List()

	if len(drivers) == 0 {
		fmt.Println("No drivers available.")
		return
	}

	fmt.Println("Available drivers:")
	fmt.Println()

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, d := range drivers {
		maxIDLen = max(maxIDLen, len(d.ID))
	}

	fmt.Printf("  %-*s  %s\n", maxIDLen, "ID", "Title")
	fmt.Printf("  %-*s  %s\n", maxIDLen, "--", "-----")
	for _, d := range drivers {
		fmt.Printf("  %-*s  %s\n", maxIDLen, d.ID, d.Title)
	}
}
