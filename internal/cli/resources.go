package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/luminahealth/lumina-go/internal/resources"
)

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "Print crisis-intervention resources",
	Long: `Print the crisis-intervention resource catalog. Works completely
offline: no database, no network, no configuration required.`,
	RunE: runResources,
}

func runResources(cmd *cobra.Command, args []string) error {
	catalog := resources.Load()

	fmt.Println("Immediate help:")
	printResourceGroup(catalog.ImmediateHelp)
	fmt.Println("Mental health resources:")
	printResourceGroup(catalog.MentalHealthResources)
	fmt.Println(catalog.Note)
	return nil
}

func printResourceGroup(group map[string]map[string]string) {
	names := make([]string, 0, len(group))
	for name := range group {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("  %s\n", name)
		fields := group[name]
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("    %-12s %s\n", k+":", fields[k])
		}
	}
	fmt.Println()
}
