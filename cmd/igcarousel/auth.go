package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"igcarousel/pkg/auth"
	"igcarousel/pkg/ui"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Instagram session cookies",
	Long: `Manage stored Instagram session cookies.

Sessions are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read-only fallback)

Never share your session cookies or config files.`,
}

var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Store session cookies securely",
	Long: `Store Instagram session cookies in the system keychain or an
encrypted file.

You will be prompted for the sessionid and csrftoken cookie values of
a logged-in browser session. Run with no arguments for instructions on
finding them.`,
	Example: `  # Interactive login
  igcarousel auth login

  # Login with username
  igcarousel auth login myusername`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stored sessions",
	Long:  `List stored Instagram sessions with cookie values masked.`,
	Run:   runStatus,
}

var removeCmd = &cobra.Command{
	Use:   "remove [username]",
	Short: "Remove a stored session",
	Args:  cobra.MaximumNArgs(1),
	Run:   runRemove,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(statusCmd)
	authCmd.AddCommand(removeCmd)
}

func runLogin(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize session manager", err.Error())
		os.Exit(1)
	}

	var username string
	if len(args) > 0 {
		username = args[0]
	}

	reader := bufio.NewReader(os.Stdin)

	auth.ShowCookieExtractionGuide()

	fmt.Print("\nReady to enter your cookies? (Y/n): ")
	ready, _ := reader.ReadString('\n')
	if strings.ToLower(strings.TrimSpace(ready)) == "n" {
		fmt.Println("\nRun 'igcarousel auth login' when you're ready.")
		return
	}
	fmt.Println()

	if username == "" {
		fmt.Print("Instagram username: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			ui.PrintError("Failed to read username", err.Error())
			os.Exit(1)
		}
		username = strings.TrimSpace(input)
	}
	if username == "" {
		ui.PrintError("Username is required", "")
		os.Exit(1)
	}

	if existing, _ := manager.Retrieve(username); existing != nil {
		fmt.Printf("\nAccount '%s' already exists. Update session? (y/N): ", username)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	fmt.Println("\nEnter your cookie values (hidden as you type):")

	sessionID := promptCookie(reader, "sessionid", func(v string) bool {
		return len(v) >= 20 && strings.Contains(v, "%")
	}, "It should be a long string containing % symbols.")

	csrfToken := promptCookie(reader, "csrftoken", func(v string) bool {
		return len(v) >= 20 && len(v) <= 50
	}, "It should be around 32 characters long.")

	fmt.Print("\nUser Agent (press Enter to use default): ")
	userAgent, _ := reader.ReadString('\n')
	userAgent = strings.TrimSpace(userAgent)

	session := &auth.Session{
		Username:     username,
		SessionID:    sessionID,
		CSRFToken:    csrfToken,
		UserAgent:    userAgent,
		LastModified: time.Now(),
	}

	if err := manager.Store(session); err != nil {
		ui.PrintError("Failed to store session", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess(fmt.Sprintf("Session stored for account: %s", username))
	fmt.Println("\nExtract a post with:")
	fmt.Printf("  igcarousel extract <shortcode> --account %s\n", username)
}

// promptCookie reads a cookie value without echo, re-prompting until
// it passes the validity check.
func promptCookie(reader *bufio.Reader, name string, valid func(string) bool, hint string) string {
	for {
		fmt.Printf("%s cookie value: ", name)
		value, err := readPassword()
		if err != nil {
			ui.PrintError("Failed to read "+name, err.Error())
			os.Exit(1)
		}

		if valid(value) {
			return value
		}

		fmt.Printf("\nThat doesn't look like a valid %s. %s\n", name, hint)
		fmt.Print("Try again? (Y/n): ")
		retry, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(retry)) == "n" {
			os.Exit(1)
		}
	}
}

func runStatus(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize session manager", err.Error())
		os.Exit(1)
	}

	sessions, err := manager.List()
	if err != nil || len(sessions) == 0 {
		ui.PrintWarning("No stored sessions found")
		fmt.Println("\nRun 'igcarousel auth login' to store session cookies.")
		return
	}

	fmt.Printf("Stored sessions (%d):\n\n", len(sessions))
	for _, session := range sessions {
		masked := auth.Sanitize(session)
		ui.PrintInfo("Account", masked.Username)
		fmt.Printf("  sessionid: %s\n", masked.SessionID)
		fmt.Printf("  csrftoken: %s\n", masked.CSRFToken)
		if !masked.LastModified.IsZero() {
			fmt.Printf("  modified:  %s\n", masked.LastModified.Format(time.RFC3339))
		}
		fmt.Println()
	}
}

func runRemove(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize session manager", err.Error())
		os.Exit(1)
	}

	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		sessions, err := manager.List()
		if err != nil || len(sessions) == 0 {
			ui.PrintWarning("No stored sessions found")
			return
		}
		if len(sessions) > 1 {
			ui.PrintError("Multiple sessions stored", "specify the username to remove")
			for _, session := range sessions {
				fmt.Printf("  %s\n", session.Username)
			}
			os.Exit(1)
		}
		username = sessions[0].Username
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("Remove session for '%s'? (y/N): ", username)
	input, _ := reader.ReadString('\n')
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
		return
	}

	if err := manager.Delete(username); err != nil {
		ui.PrintError("Failed to remove session", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Session removed: " + username)
}

// readPassword reads a value from stdin without echoing.
func readPassword() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return string(password), nil
		}
	}

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
