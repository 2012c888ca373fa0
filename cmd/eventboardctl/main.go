// Command eventboardctl is a terminal client for the eventboard API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/akamensky/argparse"
	"golang.org/x/term"

	"github.com/example/eventboard/internal/client"
)

// readPassword is replaced in tests to avoid touching the terminal.
var readPassword = func(w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, "Password: "); err != nil {
		return "", err
	}
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args, os.Stdout, os.Stderr))
}

type commands struct {
	parser    *argparse.Parser
	server    *string
	tokenFile *string
	verbose   *bool

	register     *argparse.Command
	regName      *string
	regSurname   *string
	regEmail     *string
	regGroup     *string
	regPhone     *string
	regPassword  *string
	login        *argparse.Command
	loginEmail   *string
	loginPass    *string
	logout       *argparse.Command
	whoami       *argparse.Command
	serverTime   *argparse.Command
	events       *argparse.Command
	eventsList   *argparse.Command
	eventsCreate *argparse.Command
	eventsUpdate *argparse.Command
	eventsDelete *argparse.Command
	eventID      *string
	eventFields  map[string]*string
	clearFields  map[string]*bool
	subscribe    *argparse.Command
	unsubscribe  *argparse.Command
	subEventID   *string
	unsubEventID *string
	mine         *argparse.Command
}

func newCommands() *commands {
	c := &commands{parser: argparse.NewParser("eventboardctl", "Command line client for the eventboard API")}
	p := c.parser

	c.server = p.String("s", "server", &argparse.Options{Help: "eventboard API base URL", Default: "http://localhost:3001"})
	c.tokenFile = p.String("t", "token-file", &argparse.Options{Help: "File holding the session token (default $HOME/.eventboard/token)"})
	c.verbose = p.Flag("v", "verbose", &argparse.Options{Help: "Log diagnostics to stderr", Default: false})

	c.register = p.NewCommand("register", "Create an account")
	c.regName = c.register.String("", "name", &argparse.Options{Help: "Display name", Required: true})
	c.regSurname = c.register.String("", "surname", &argparse.Options{Help: "Surname", Required: true})
	c.regEmail = c.register.String("", "email", &argparse.Options{Help: "E-mail address", Required: true})
	c.regGroup = c.register.String("", "group", &argparse.Options{Help: "User group", Required: true})
	c.regPhone = c.register.String("", "phone", &argparse.Options{Help: "Phone number", Required: true})
	c.regPassword = c.register.String("", "password", &argparse.Options{Help: "Password (prompted when omitted)"})

	c.login = p.NewCommand("login", "Log in and store the session token")
	c.loginEmail = c.login.String("", "email", &argparse.Options{Help: "E-mail address", Required: true})
	c.loginPass = c.login.String("", "password", &argparse.Options{Help: "Password (prompted when omitted)"})

	c.logout = p.NewCommand("logout", "Forget the stored session token")
	c.whoami = p.NewCommand("whoami", "Show the identity behind the stored token")
	c.serverTime = p.NewCommand("time", "Show the server clock")

	c.events = p.NewCommand("events", "List and manage events")
	c.eventsList = c.events.NewCommand("list", "List events")
	c.eventsCreate = c.events.NewCommand("create", "Create an event (administrators)")
	c.eventsUpdate = c.events.NewCommand("update", "Change fields of an event (administrators)")
	c.eventsDelete = c.events.NewCommand("delete", "Delete an event (administrators)")
	c.eventID = c.events.String("", "id", &argparse.Options{Help: "Event id for update and delete"})
	c.eventFields = make(map[string]*string)
	for _, field := range []string{"name", "date", "place", "image", "price", "description"} {
		c.eventFields[field] = c.events.String("", field, &argparse.Options{Help: "Event " + field})
	}
	c.clearFields = make(map[string]*bool)
	for _, field := range []string{"price", "description"} {
		c.clearFields[field] = c.events.Flag("", "clear-"+field, &argparse.Options{Help: "Set the event " + field + " to empty on update"})
	}

	c.subscribe = p.NewCommand("subscribe", "Subscribe to an event")
	c.subEventID = c.subscribe.String("e", "event", &argparse.Options{Help: "Event id", Required: true})
	c.unsubscribe = p.NewCommand("unsubscribe", "Cancel a subscription")
	c.unsubEventID = c.unsubscribe.String("e", "event", &argparse.Options{Help: "Event id", Required: true})
	c.mine = p.NewCommand("subscriptions", "List events you are subscribed to")

	return c
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmds := newCommands()
	if err := cmds.parser.Parse(args); err != nil {
		fmt.Fprint(stderr, cmds.parser.Usage(err))
		return 2
	}

	level := slog.LevelWarn
	if *cmds.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	api, err := newAPIClient(*cmds.server, *cmds.tokenFile, logger)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if err := dispatch(ctx, cmds, api, stdout, stderr); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func newAPIClient(server, tokenFile string, logger *slog.Logger) (*client.Client, error) {
	if strings.TrimSpace(tokenFile) == "" {
		path, err := client.DefaultTokenPath()
		if err != nil {
			return nil, err
		}
		tokenFile = path
	}
	return client.New(server,
		client.WithTokenStore(client.NewFileTokenStore(tokenFile)),
		client.WithLogger(logger),
	)
}

var errAdminRequired = errors.New("administrator session required")

func dispatch(ctx context.Context, cmds *commands, api *client.Client, stdout, stderr io.Writer) error {
	switch {
	case cmds.register.Happened():
		password, err := passwordOrPrompt(*cmds.regPassword, stderr)
		if err != nil {
			return err
		}
		if err := api.Register(ctx, client.RegisterRequest{
			UserName:  *cmds.regName,
			Surname:   *cmds.regSurname,
			Email:     *cmds.regEmail,
			Password:  password,
			UserGroup: *cmds.regGroup,
			Phone:     *cmds.regPhone,
		}); err != nil {
			return describeAPIError(err)
		}
		fmt.Fprintln(stdout, "registered; run login to start a session")

	case cmds.login.Happened():
		password, err := passwordOrPrompt(*cmds.loginPass, stderr)
		if err != nil {
			return err
		}
		resp, err := api.Login(ctx, *cmds.loginEmail, password)
		if err != nil {
			return describeAPIError(err)
		}
		fmt.Fprintf(stdout, "logged in, session expires at %s\n", resp.ExpiresAt)

	case cmds.logout.Happened():
		if err := api.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "logged out")

	case cmds.whoami.Happened():
		return whoami(ctx, api, stdout)

	case cmds.serverTime.Happened():
		now, err := api.ServerTime(ctx)
		if err != nil {
			return describeAPIError(err)
		}
		fmt.Fprintln(stdout, now.NowISO)

	case cmds.eventsList.Happened():
		events, err := api.ListEvents(ctx)
		if err != nil {
			return describeAPIError(err)
		}
		return printEvents(stdout, events)

	case cmds.eventsCreate.Happened(), cmds.eventsUpdate.Happened(), cmds.eventsDelete.Happened():
		if result := client.NewSessionGuard(api).Check(ctx); result.State != client.GuardOK {
			return fmt.Errorf("%w: %s", errAdminRequired, result.Reason)
		}
		return manageEvent(ctx, cmds, api, stdout)

	case cmds.subscribe.Happened():
		created, err := api.Subscribe(ctx, *cmds.subEventID)
		if err != nil {
			return describeAPIError(err)
		}
		if created {
			fmt.Fprintln(stdout, "subscribed")
		} else {
			fmt.Fprintln(stdout, "already subscribed")
		}

	case cmds.unsubscribe.Happened():
		if err := api.Unsubscribe(ctx, *cmds.unsubEventID); err != nil {
			return describeAPIError(err)
		}
		fmt.Fprintln(stdout, "unsubscribed")

	case cmds.mine.Happened():
		events, err := api.MySubscriptions(ctx)
		if err != nil {
			return describeAPIError(err)
		}
		return printEvents(stdout, events)

	default:
		fmt.Fprint(stderr, cmds.parser.Usage(nil))
	}
	return nil
}

func whoami(ctx context.Context, api *client.Client, stdout io.Writer) error {
	local, err := api.LocalClaims()
	if errors.Is(err, client.ErrNoToken) {
		fmt.Fprintln(stdout, "not logged in")
		return nil
	}
	if err != nil {
		return err
	}

	identity, err := api.Me(ctx)
	if err != nil {
		fmt.Fprintf(stdout, "%s (token claims only, server said: %v)\n", local.Email, describeAPIError(err))
		return nil
	}
	role := "member"
	if identity.IsAdmin {
		role = "admin"
	}
	fmt.Fprintf(stdout, "%s %s (%s)\n", identity.ID, identity.Email, role)
	return nil
}

func manageEvent(ctx context.Context, cmds *commands, api *client.Client, stdout io.Writer) error {
	field := func(name string) string { return strings.TrimSpace(*cmds.eventFields[name]) }

	switch {
	case cmds.eventsCreate.Happened():
		event, err := api.CreateEvent(ctx, client.EventInput{
			Name:        field("name"),
			Date:        field("date"),
			Place:       field("place"),
			Image:       field("image"),
			Price:       field("price"),
			Description: field("description"),
		})
		if err != nil {
			return describeAPIError(err)
		}
		fmt.Fprintf(stdout, "created event %s\n", event.ID)

	case cmds.eventsUpdate.Happened():
		id, err := requireEventID(*cmds.eventID)
		if err != nil {
			return err
		}
		price, err := clearable(cmds, "price", field("price"))
		if err != nil {
			return err
		}
		description, err := clearable(cmds, "description", field("description"))
		if err != nil {
			return err
		}
		patch := client.EventPatch{
			Name:        optional(field("name")),
			Date:        optional(field("date")),
			Place:       optional(field("place")),
			Image:       optional(field("image")),
			Price:       price,
			Description: description,
		}
		event, err := api.UpdateEvent(ctx, id, patch)
		if err != nil {
			return describeAPIError(err)
		}
		fmt.Fprintf(stdout, "updated event %s\n", event.ID)

	case cmds.eventsDelete.Happened():
		id, err := requireEventID(*cmds.eventID)
		if err != nil {
			return err
		}
		if err := api.DeleteEvent(ctx, id); err != nil {
			return describeAPIError(err)
		}
		fmt.Fprintf(stdout, "deleted event %s\n", id)
	}
	return nil
}

func requireEventID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.New("--id is required")
	}
	return id, nil
}

// optional treats an empty flag as "leave unchanged".
func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// clearable is optional for fields the server accepts as empty; --clear-<name>
// sends "" explicitly.
func clearable(cmds *commands, name, value string) (*string, error) {
	if !*cmds.clearFields[name] {
		return optional(value), nil
	}
	if value != "" {
		return nil, fmt.Errorf("--%s and --clear-%s are mutually exclusive", name, name)
	}
	empty := ""
	return &empty, nil
}

func passwordOrPrompt(flagValue string, prompt io.Writer) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return readPassword(prompt)
}

func printEvents(w io.Writer, events []client.Event) error {
	if len(events) == 0 {
		_, err := fmt.Fprintln(w, "no events")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tNAME\tPLACE\tPRICE")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Date, e.Name, e.Place, e.Price)
	}
	return tw.Flush()
}

// describeAPIError adds field-level validation messages to API errors.
func describeAPIError(err error) error {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || len(apiErr.Fields) == 0 {
		return err
	}
	parts := make([]string, 0, len(apiErr.Fields))
	for field, msg := range apiErr.Fields {
		parts = append(parts, field+": "+msg)
	}
	slices.Sort(parts)
	return fmt.Errorf("%w [%s]", err, strings.Join(parts, "; "))
}
