package cli

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// askYesNo asks a yes/no question and returns the answer. An empty reply
// takes the default; anything else keeps asking until it parses.
func askYesNo(cmd *cobra.Command, in io.Reader, question string, defaultYes bool) bool {
	suffix := "[Y/n]"
	if !defaultYes {
		suffix = "[y/N]"
	}
	reader := bufio.NewReader(in)

	for {
		cmd.Printf("%s %s ", question, suffix)
		line, err := reader.ReadString('\n')
		if err != nil {
			return defaultYes
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			return defaultYes
		case "y", "yes":
			return true
		case "n", "no":
			return false
		default:
			cmd.Println("Please answer 'yes' or 'no'.")
		}
	}
}

// readSecret prompts for a secret without echoing it when stdin is a
// terminal, falling back to a plain line read otherwise.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readSecret(cmd *cobra.Command, prompt string) string {
	cmd.Printf("%s: ", prompt)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		cmd.Println()
		if err == nil {
			return string(secret)
		}
	}
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
