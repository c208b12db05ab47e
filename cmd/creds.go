package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadscout/internal/credstore"
)

var credsCmd = &cobra.Command{
	Use:   "creds",
	Short: "Manage encrypted API credentials and the business profile",
}

var (
	setFirecrawlKey string
	setAnthropicKey string
	setOpenAIKey    string
	setProvider     string
	setWebsite      string
	setValueProp    string
	setICP          string
)

var credsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store API keys and profile fields (encrypted at rest)",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newCredStore()
		secrets, err := store.Load()
		if err != nil {
			return eris.Wrap(err, "load credentials")
		}
		if secrets == nil {
			secrets = &credstore.Secrets{}
		}

		if setFirecrawlKey != "" {
			secrets.FirecrawlKey = setFirecrawlKey
		}
		if setAnthropicKey != "" {
			secrets.AnthropicKey = setAnthropicKey
		}
		if setOpenAIKey != "" {
			secrets.OpenAIKey = setOpenAIKey
		}
		if setProvider != "" {
			secrets.Provider = setProvider
		}
		if setWebsite != "" {
			secrets.Profile.Website = setWebsite
		}
		if setValueProp != "" {
			secrets.Profile.ValueProposition = setValueProp
		}
		if setICP != "" {
			secrets.Profile.ICP = setICP
		}

		if err := store.Save(secrets); err != nil {
			return eris.Wrap(err, "save credentials")
		}
		fmt.Println("credentials saved")
		return nil
	},
}

var credsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show configured credentials (masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newCredStore()
		secrets, err := store.Load()
		if err != nil {
			return eris.Wrap(err, "load credentials")
		}
		if secrets == nil {
			fmt.Println("no credentials configured (offline mode)")
			return nil
		}

		printKey := func(name, key string) {
			if key == "" {
				fmt.Printf("%-10s (not set)\n", name+":")
				return
			}
			fmt.Printf("%-10s %s  fingerprint=%s\n", name+":", credstore.Mask(key), credstore.Fingerprint(key))
		}
		printKey("firecrawl", secrets.FirecrawlKey)
		printKey("anthropic", secrets.AnthropicKey)
		printKey("openai", secrets.OpenAIKey)
		if secrets.Provider != "" {
			fmt.Printf("%-10s %s\n", "provider:", secrets.Provider)
		}
		if secrets.Profile.Complete() {
			fmt.Printf("%-10s %s\n", "website:", secrets.Profile.Website)
		}
		return nil
	},
}

var credsRotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Re-encrypt the credential store under a fresh cipher key",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newCredStore().Rotate(); err != nil {
			return eris.Wrap(err, "rotate key")
		}
		fmt.Println("cipher key rotated")
		return nil
	},
}

func init() {
	credsSetCmd.Flags().StringVar(&setFirecrawlKey, "firecrawl-key", "", "Firecrawl API key")
	credsSetCmd.Flags().StringVar(&setAnthropicKey, "anthropic-key", "", "Anthropic API key")
	credsSetCmd.Flags().StringVar(&setOpenAIKey, "openai-key", "", "OpenAI API key")
	credsSetCmd.Flags().StringVar(&setProvider, "provider", "", "completion provider (anthropic or openai)")
	credsSetCmd.Flags().StringVar(&setWebsite, "website", "", "your company website")
	credsSetCmd.Flags().StringVar(&setValueProp, "value-proposition", "", "your value proposition")
	credsSetCmd.Flags().StringVar(&setICP, "icp", "", "your ideal customer profile")

	credsCmd.AddCommand(credsSetCmd, credsShowCmd, credsRotateCmd)
	rootCmd.AddCommand(credsCmd)
}
