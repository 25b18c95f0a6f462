package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/avlasiuk/campaignwiz/internal/config"
)

// --- generate ---

var generateCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Generate audience suggestions for a campaign prompt",
	Long: `Generate audience suggestions for a campaign prompt.

Creates a new wizard session and runs audience generation against the
upstream AI service, falling back to curated sample audiences when it is
unavailable.

Examples:
  campaignwiz generate "eco-conscious millennials for a sustainable shoe launch"
  campaignwiz generate --agent retain-iq "customers at churn risk"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt := args[0]
		agent, _ := cmd.Flags().GetString("agent")

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		resp, err := client.post(ctx, "/sessions", map[string]any{"agent": agent})
		if err != nil {
			return err
		}
		var created struct {
			Session struct {
				ID string `json:"id"`
			} `json:"session"`
		}
		if err := decodeJSON(resp, &created); err != nil {
			return err
		}

		printStep("Generating audiences...")
		resp, err = client.post(ctx, "/sessions/"+created.Session.ID+"/generate", map[string]any{"prompt": prompt})
		if err != nil {
			return err
		}
		var result struct {
			Session struct {
				Audiences []struct {
					ID                      string  `json:"id"`
					Name                    string  `json:"name"`
					EstimatedSize           *int    `json:"estimated_size"`
					EstimatedConversionRate float64 `json:"estimated_conversion_rate"`
					Rationale               string  `json:"rationale"`
				} `json:"audiences"`
			} `json:"session"`
			Notices []struct {
				Title       string `json:"title"`
				Description string `json:"description"`
			} `json:"notices"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		for _, n := range result.Notices {
			printWarning("%s: %s", n.Title, n.Description)
		}
		printSuccess("Session %s", created.Session.ID)
		for _, a := range result.Session.Audiences {
			size := "n/a"
			if a.EstimatedSize != nil {
				size = fmt.Sprintf("%d", *a.EstimatedSize)
			}
			fmt.Printf("  %s  %s (size %s, conversion %.0f%%)\n",
				colorize(colorBold, a.ID), a.Name, size, a.EstimatedConversionRate*100)
			if a.Rationale != "" {
				fmt.Printf("      %s\n", a.Rationale)
			}
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().String("agent", "", "preset agent (retain-iq, recommend-iq, user-iq, income-assessment-iq)")
}

// --- sessions ---

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List stored wizard sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/sessions?limit=50")
		if err != nil {
			return err
		}
		var sessions []struct {
			ID        string `json:"id"`
			Step      string `json:"step"`
			UpdatedAt string `json:"updated_at"`
		}
		if err := decodeJSON(resp, &sessions); err != nil {
			return err
		}

		if len(sessions) == 0 {
			fmt.Println("no sessions")
			return nil
		}
		for _, s := range sessions {
			fmt.Printf("  %s  %-24s %s\n", colorize(colorBold, s.ID), s.Step, s.UpdatedAt)
		}
		return nil
	},
}

// --- brief ---

var briefCmd = &cobra.Command{
	Use:   "brief",
	Short: "Turn a business brief into a generation prompt",
	Long: `Turn a business brief into a generation prompt.

Accepts a PDF file, a URL, or plain text and prints the prompt the wizard
would seed generation with.

Examples:
  campaignwiz brief --file ./brief.pdf
  campaignwiz brief --url https://example.com/launch-plan
  campaignwiz brief --text "Q3 launch of our sustainable sneaker line"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		url, _ := cmd.Flags().GetString("url")
		file, _ := cmd.Flags().GetString("file")
		title, _ := cmd.Flags().GetString("title")

		if text == "" && url == "" && file == "" {
			return fmt.Errorf("one of --text, --url, or --file is required")
		}

		req := map[string]any{}
		if title != "" {
			req["title"] = title
		}
		switch {
		case text != "":
			req["type"] = "text"
			req["content"] = text
		case url != "":
			req["type"] = "url"
			req["url"] = url
		case file != "":
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading file: %w", err)
			}
			if strings.HasSuffix(strings.ToLower(file), ".pdf") {
				req["type"] = "pdf"
				req["content"] = base64.StdEncoding.EncodeToString(data)
			} else {
				req["type"] = "text"
				req["content"] = string(data)
			}
			if title == "" {
				req["title"] = file
			}
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/briefs", req)
		if err != nil {
			return err
		}
		var result struct {
			Prompt string `json:"prompt"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		fmt.Println(result.Prompt)
		return nil
	},
}

func init() {
	briefCmd.Flags().String("text", "", "brief text")
	briefCmd.Flags().String("url", "", "URL to fetch as the brief")
	briefCmd.Flags().String("file", "", "file path (.pdf or plain text)")
	briefCmd.Flags().String("title", "", "title for the brief")
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

var configSetTokenCmd = &cobra.Command{
	Use:   "set-token <token>",
	Short: "Store the API bearer token in the platform secret store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetToken(args[0]); err != nil {
			return err
		}

		printSuccess("Stored API token")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSetTokenCmd)
}
