package main

import (
	"fmt"
	"os"

	"supportbot/internal/chatclient"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var onboardFile string

// onboardCmd registers a business from a YAML file.
var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Register a business and its FAQ with the API",
	Long: `Reads a business definition and posts it to the API's /onboard route.

File format:
  name: Acme
  email: help@acme.example
  tone: friendly
  faqs:
    - question: What are your hours?
      answer: 9 to 5, Monday to Friday.`,
	Args: cobra.NoArgs,
	RunE: runOnboard,
}

func init() {
	onboardCmd.Flags().StringVarP(&onboardFile, "file", "f", "", "Business YAML file (required)")
	_ = onboardCmd.MarkFlagRequired("file")
}

func loadOnboardFile(path string) (chatclient.OnboardRequest, error) {
	var req chatclient.OnboardRequest
	data, err := os.ReadFile(path)
	if err != nil {
		return req, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if req.Name == "" || req.Email == "" {
		return req, fmt.Errorf("%s: name and email are required", path)
	}
	return req, nil
}

func runOnboard(cmd *cobra.Command, args []string) error {
	req, err := loadOnboardFile(onboardFile)
	if err != nil {
		return err
	}

	out, err := newClient().Onboard(commandContext(cmd), req)
	if err != nil {
		return fmt.Errorf("onboarding failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (business_id %d, %d FAQs)\n", out.Message, out.BusinessID, len(req.FAQs))
	return nil
}
