package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Log in and print an access token",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		password := os.Getenv("CONTACTS_PASSWORD")
		if password == "" {
			fmt.Fprintln(os.Stderr, "Error: set CONTACTS_PASSWORD environment variable")
			os.Exit(1)
		}

		var tokens struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
			TokenType    string `json:"token_type"`
		}

		err := apiRequest("POST", "/api/v1/auth/login", map[string]string{
			"email":    args[0],
			"password": password,
		}, &tokens)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Login failed: %v\n", err)
			os.Exit(1)
		}

		if output == "json" {
			printJSON(tokens)
			return
		}

		fmt.Println("Logged in. Export your token:")
		fmt.Printf("  export CONTACTS_TOKEN=%s\n", tokens.AccessToken)
	},
}
