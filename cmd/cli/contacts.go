package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

type contactView struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Birthday  string `json:"birthday,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Browse and manage your contact book",
}

var contactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contacts",
	Run: func(cmd *cobra.Command, args []string) {
		var contacts []contactView
		if err := apiRequest("GET", "/api/v1/contacts", nil, &contacts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		renderContacts(contacts)
	},
}

var contactsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search contacts by name or email",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		q := url.QueryEscape(args[0])
		path := fmt.Sprintf("/api/v1/contacts/search?first_name=%s", q)

		var contacts []contactView
		if err := apiRequest("GET", path, nil, &contacts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		renderContacts(contacts)
	},
}

var contactsBirthdaysCmd = &cobra.Command{
	Use:   "birthdays",
	Short: "Show contacts with birthdays in the next week",
	Run: func(cmd *cobra.Command, args []string) {
		var contacts []contactView
		if err := apiRequest("GET", "/api/v1/contacts/birthdays", nil, &contacts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		renderContacts(contacts)
	},
}

var contactsAddCmd = &cobra.Command{
	Use:   "add <first-name> <last-name> <email> <phone>",
	Short: "Add a contact",
	Args:  cobra.ExactArgs(4),
	Run: func(cmd *cobra.Command, args []string) {
		var created contactView
		err := apiRequest("POST", "/api/v1/contacts", map[string]string{
			"first_name": args[0],
			"last_name":  args[1],
			"email":      args[2],
			"phone":      args[3],
		}, &created)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if output == "json" {
			printJSON(created)
			return
		}
		fmt.Printf("Created contact %s %s (%s)\n", created.FirstName, created.LastName, created.ID)
	},
}

func renderContacts(contacts []contactView) {
	if output == "json" {
		printJSON(contacts)
		return
	}

	if len(contacts) == 0 {
		fmt.Println("No contacts found.")
		return
	}

	for _, c := range contacts {
		fmt.Printf("%-36s  %-20s %-20s %-30s %s\n", c.ID, c.FirstName, c.LastName, c.Email, c.Phone)
	}
}

func init() {
	contactsCmd.AddCommand(contactsListCmd)
	contactsCmd.AddCommand(contactsSearchCmd)
	contactsCmd.AddCommand(contactsBirthdaysCmd)
	contactsCmd.AddCommand(contactsAddCmd)
}
