package main

import (
	"flag"
	"fmt"
	"os"
	"time"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	apiURL := "http://localhost:8080"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "register":
		err = registerCmd(apiURL, args)
	case "login":
		err = loginCmd(apiURL, args)
	case "logout":
		err = ClearSession()
	case "profile":
		err = profileCmd(apiURL)
	case "events":
		err = eventsCmd(apiURL, args)
	case "my-events":
		err = myEventsCmd(apiURL)
	case "create":
		err = createCmd(apiURL, args)
	case "participate":
		err = participateCmd(apiURL, args)
	case "delete-event":
		err = deleteEventCmd(apiURL, args)
	case "delete-account":
		err = deleteAccountCmd(apiURL)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Events client - command-line client for the Events Management API

USAGE:
  client <command> [options]

COMMANDS:
  register        Register a new account and store the session
  login           Log in and store the session
  logout          Drop the stored session
  profile         Show the current account profile
  events          List public events (--include-deleted to widen)
  my-events       List events you created
  create          Create an event (--title, --date, --description)
  participate     Toggle participation on an event (--event)
  delete-event    Soft-delete one of your events (--event)
  delete-account  Soft-delete your own account and drop the session

ENVIRONMENT:
  API_URL   Backend API URL (default: http://localhost:8080)`)
}

// authedClient loads the stored session and returns a client carrying its
// bearer token.
func authedClient(apiURL string) (*APIClient, *Session, error) {
	session, err := LoadSession()
	if err != nil {
		return nil, nil, err
	}
	if session == nil {
		return nil, nil, fmt.Errorf("not logged in, run 'client login' first")
	}
	return NewAPIClient(apiURL, session.Token), session, nil
}

func registerCmd(apiURL string, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password (at least 6 characters)")
	fs.Parse(args)

	if *name == "" || *email == "" || *password == "" {
		return fmt.Errorf("--name, --email and --password are required")
	}

	resp, err := NewAPIClient(apiURL, "").Register(*name, *email, *password)
	if err != nil {
		return err
	}
	if err := SaveSession(&Session{Token: resp.Token, User: resp.User}); err != nil {
		return err
	}

	fmt.Printf("Registered as %s <%s>\n", resp.User.Name, resp.User.Email)
	return nil
}

func loginCmd(apiURL string, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	fs.Parse(args)

	if *email == "" || *password == "" {
		return fmt.Errorf("--email and --password are required")
	}

	resp, err := NewAPIClient(apiURL, "").Login(*email, *password)
	if err != nil {
		return err
	}
	if err := SaveSession(&Session{Token: resp.Token, User: resp.User}); err != nil {
		return err
	}

	fmt.Printf("Logged in as %s <%s>\n", resp.User.Name, resp.User.Email)
	if resp.NewDeviceDetected {
		fmt.Println("Note: this login came from a device not seen recently.")
	}
	return nil
}

func profileCmd(apiURL string) error {
	client, _, err := authedClient(apiURL)
	if err != nil {
		return err
	}

	profile, err := client.Profile()
	if err != nil {
		return err
	}

	fmt.Printf("%s <%s>\nID: %s\nMember since: %s\n",
		profile.Name, profile.Email, profile.ID, profile.CreatedAt.Format("2006-01-02"))
	return nil
}

func eventsCmd(apiURL string, args []string) error {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	includeDeleted := fs.Bool("include-deleted", false, "include soft-deleted events")
	fs.Parse(args)

	events, err := NewAPIClient(apiURL, "").PublicEvents(*includeDeleted)
	if err != nil {
		return err
	}
	printEvents(events)
	return nil
}

func myEventsCmd(apiURL string) error {
	client, _, err := authedClient(apiURL)
	if err != nil {
		return err
	}

	events, err := client.MyEvents()
	if err != nil {
		return err
	}
	printEvents(events)
	return nil
}

func createCmd(apiURL string, args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	title := fs.String("title", "", "event title")
	description := fs.String("description", "", "event description")
	date := fs.String("date", "", "event date (RFC 3339, e.g. 2026-09-01T18:00:00Z)")
	fs.Parse(args)

	if *title == "" || *date == "" {
		return fmt.Errorf("--title and --date are required")
	}
	when, err := time.Parse(time.RFC3339, *date)
	if err != nil {
		return fmt.Errorf("invalid --date: %w", err)
	}

	client, _, err := authedClient(apiURL)
	if err != nil {
		return err
	}

	event, err := client.CreateEvent(*title, *description, when)
	if err != nil {
		return err
	}

	fmt.Printf("Created event %q (%s)\n", event.Title, event.ID)
	return nil
}

func participateCmd(apiURL string, args []string) error {
	fs := flag.NewFlagSet("participate", flag.ExitOnError)
	eventID := fs.String("event", "", "event id")
	fs.Parse(args)

	if *eventID == "" {
		return fmt.Errorf("--event is required")
	}

	client, _, err := authedClient(apiURL)
	if err != nil {
		return err
	}

	result, err := client.Participate(*eventID)
	if err != nil {
		return err
	}

	fmt.Println(result.Message)
	return nil
}

func deleteEventCmd(apiURL string, args []string) error {
	fs := flag.NewFlagSet("delete-event", flag.ExitOnError)
	eventID := fs.String("event", "", "event id")
	fs.Parse(args)

	if *eventID == "" {
		return fmt.Errorf("--event is required")
	}

	client, _, err := authedClient(apiURL)
	if err != nil {
		return err
	}

	if err := client.DeleteEvent(*eventID); err != nil {
		return err
	}
	fmt.Println("Event deleted")
	return nil
}

func deleteAccountCmd(apiURL string) error {
	client, session, err := authedClient(apiURL)
	if err != nil {
		return err
	}

	if err := client.DeleteAccount(session.User.ID); err != nil {
		return err
	}
	if err := ClearSession(); err != nil {
		return err
	}
	fmt.Println("Account deleted")
	return nil
}

func printEvents(events []Event) {
	if len(events) == 0 {
		fmt.Println("No events.")
		return
	}
	for _, e := range events {
		line := fmt.Sprintf("%s  %s  %s", e.ID, e.Date.Format("2006-01-02 15:04"), e.Title)
		if e.Creator != nil {
			line += fmt.Sprintf("  (by %s)", e.Creator.Name)
		}
		if e.DeletedAt != nil {
			line += "  [deleted]"
		}
		fmt.Println(line)
		if len(e.Participants) > 0 {
			fmt.Printf("    participants: %d\n", len(e.Participants))
		}
	}
}
