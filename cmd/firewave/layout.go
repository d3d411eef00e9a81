package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/firewave/internal/config"
)

var flagLayoutCheck bool

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print and validate the fire layout",
	Long: `Resolve the layout the same way the other commands do, validate it
against the experience configuration and print it as YAML.

Examples:
  firewave layout                                # Embedded default layout
  firewave layout --layout ./configs/layout.yaml # Custom layout
  firewave layout --check                        # Validate only`,
	Args: cobra.NoArgs,
	Run:  runLayout,
}

func init() {
	layoutCmd.Flags().BoolVar(&flagLayoutCheck, "check", false, "Only validate, do not print")
}

func runLayout(_ *cobra.Command, _ []string) {
	st, err := loadSetup()
	if err != nil {
		fail("%v", err)
	}

	if flagLayoutCheck {
		fmt.Printf("Layout %q is valid: %d fire points, %d edges, seed %s\n",
			st.layout.Name, len(st.layout.Nodes), len(st.layout.Edges), st.layout.SeedNode)
		return
	}

	data, err := config.MarshalLayout(st.layout)
	if err != nil {
		fail("%v", err)
	}
	fmt.Print(string(data))
}
