package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/interviewsim/internal/model"
)

var modelsAPIKey string

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models the API key can use",
	Long:  "Lists every model visible to the API key and marks the configured preferences.",
	RunE:  runModelsCmd,
}

func init() {
	modelsCmd.Flags().StringVar(&modelsAPIKey, "api-key", "", "API key (default: provider.api_key from config)")
	rootCmd.AddCommand(modelsCmd)
}

func runModelsCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	key := modelsAPIKey
	if key == "" {
		key = cfg.Provider.APIKey
	}

	ctx := context.Background()
	provider, err := providerFactory(cfg, providerHTTPClient())(ctx, key)
	if err != nil {
		fmt.Fprintln(os.Stderr, model.UserMessage(err))
		os.Exit(1)
	}
	defer provider.Close()

	available, err := provider.ListModels(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, model.UserMessage(err))
		os.Exit(1)
	}

	fmt.Printf("%-45s %s\n", "Model", "Preference")
	fmt.Println(strings.Repeat("─", 57))
	for _, id := range available {
		pref := ""
		if i := slices.Index(cfg.Provider.Models, id); i >= 0 {
			pref = fmt.Sprintf("#%d", i+1)
		}
		fmt.Printf("%-45s %s\n", id, pref)
	}

	var missing []string
	for _, id := range cfg.Provider.Models {
		if !slices.Contains(available, id) {
			missing = append(missing, id)
		}
	}

	fmt.Printf("\nTotal: %d models (%d of %d preferences available)\n",
		len(available), len(cfg.Provider.Models)-len(missing), len(cfg.Provider.Models))
	if len(missing) > 0 {
		fmt.Printf("Not available: %s\n", strings.Join(missing, ", "))
	}
	return nil
}
