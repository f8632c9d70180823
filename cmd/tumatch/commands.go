package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"tumatch/client/internal/api"
	"tumatch/client/internal/config"
	"tumatch/client/internal/countdown"
	"tumatch/client/internal/eventform"
	"tumatch/client/internal/membership"
	"tumatch/client/internal/mockapi"
	"tumatch/client/internal/search"
	"tumatch/client/internal/store"

	"github.com/sirupsen/logrus"
)

var errUsage = errors.New("invalid usage")

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `Usage: tumatch <command> [flags] [args]

Commands:
  feed [-category C]              list upcoming events
  event <id>                      show an event with its participants
  join <id>                       join an event
  leave <id>                      leave an event
  create -title T -location L -time HH:MM [-category C] [-description D] [-image URL] [-max N]
  delete-event <id>               delete an event you created
  search [-ai] <query>            search events, places and people
  friends [-add ID] [-remove ID] [-accept FRIENDSHIP_ID]
  moments [-event ID -photo PATH [-caption C]]
  countdown [-interval D] <id>    live countdown until the event starts
  serve                           run the demo backend over HTTP
  reset                           wipe the local store`)
}

func run(ctx context.Context, cfg *config.Config, log logrus.FieldLogger, args []string, out io.Writer) error {
	if len(args) == 0 {
		printUsage(out)
		return errUsage
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "serve":
		return serveCmd(ctx, cfg, log)
	case "reset":
		return resetCmd(ctx, cfg, out)
	case "search":
		return searchCmd(ctx, rest, out)
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	}

	e, err := newEnv(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := e.close(); err != nil {
			log.WithError(err).Warn("close store")
		}
	}()

	switch cmd {
	case "feed":
		return feedCmd(ctx, e, rest, out)
	case "event":
		return eventCmd(ctx, e, rest, out)
	case "join", "leave":
		return membershipCmd(ctx, e, cmd, rest, out)
	case "create":
		return createCmd(ctx, e, rest, out)
	case "delete-event":
		return deleteEventCmd(ctx, e, rest, out)
	case "friends":
		return friendsCmd(ctx, e, rest, out)
	case "moments":
		return momentsCmd(ctx, e, rest, out)
	case "countdown":
		return countdownCmd(ctx, e, rest, out)
	default:
		printUsage(out)
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

// oneArg parses fs and returns its single positional argument.
func oneArg(fs *flag.FlagSet, args []string, name string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%w: %s expects <%s>", errUsage, fs.Name(), name)
	}
	return fs.Arg(0), nil
}

func feedCmd(ctx context.Context, e *env, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("feed", flag.ContinueOnError)
	category := fs.String("category", "", "only show this category")
	if err := fs.Parse(args); err != nil {
		return err
	}

	events, err := e.session.Feed(ctx, *category)
	if err != nil {
		return err
	}
	now := time.Now()
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tWHERE\tWHEN\tPEOPLE\t")
	for _, ev := range events {
		when, _ := countdown.Format(ev.StartTime, now, countdown.Compact)
		people := fmt.Sprintf("%d", ev.ParticipantCount)
		if ev.MaxParticipants != nil {
			people += fmt.Sprintf("/%d", *ev.MaxParticipants)
		}
		mark := ""
		if e.session.Tracker().IsJoined(ev.ID) {
			mark = "joined"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", ev.ID, ev.Title, ev.Location, when, people, mark)
	}
	return tw.Flush()
}

func eventCmd(ctx context.Context, e *env, args []string, out io.Writer) error {
	id, err := oneArg(flag.NewFlagSet("event", flag.ContinueOnError), args, "id")
	if err != nil {
		return err
	}
	d, err := e.session.EventDetail(ctx, id)
	if err != nil {
		return err
	}

	ev := d.Event
	when, _ := countdown.Format(ev.StartTime, time.Now(), countdown.Verbose)
	fmt.Fprintf(out, "%s  [%s]\n", ev.Title, ev.Category)
	fmt.Fprintf(out, "Where:      %s\n", ev.Location)
	fmt.Fprintf(out, "Starts:     %s (%s)\n", ev.StartTime.Local().Format("Mon 02 Jan 15:04"), when)
	if ev.OrganizerName != "" {
		fmt.Fprintf(out, "Organizer:  %s, %s\n", ev.OrganizerName, ev.OrganizerDepartment)
	}
	if ev.Description != "" {
		fmt.Fprintf(out, "\n%s\n", ev.Description)
	}
	fmt.Fprintf(out, "\nParticipants (%d):\n", d.ParticipantCount)
	for _, p := range ev.Participants {
		fmt.Fprintf(out, "  - %s\n", p.Name)
	}
	switch {
	case d.IsCreator:
		fmt.Fprintln(out, "\nYou are hosting this event.")
	case d.IsJoined:
		fmt.Fprintln(out, "\nYou're going.")
	}
	return nil
}

func membershipCmd(ctx context.Context, e *env, cmd string, args []string, out io.Writer) error {
	id, err := oneArg(flag.NewFlagSet(cmd, flag.ContinueOnError), args, "id")
	if err != nil {
		return err
	}

	if cmd == "join" {
		err = e.session.Join(ctx, id)
	} else {
		err = e.session.Leave(ctx, id)
	}
	var intentErr *membership.IntentError
	if errors.As(err, &intentErr) {
		e.log.WithError(intentErr.Err).WithField("event_id", id).Debug(cmd + " failed")
		return fmt.Errorf("%s (%s)", intentErr.Message, api.Message(intentErr.Err))
	}
	if err != nil {
		return err
	}

	if cmd == "join" {
		fmt.Fprintln(out, "Joined", id)
	} else {
		fmt.Fprintln(out, "Left", id)
	}
	return nil
}

func createCmd(ctx context.Context, e *env, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	var form eventform.Form
	fs.StringVar(&form.Title, "title", "", "event title")
	fs.StringVar(&form.Location, "location", "", "where it happens")
	fs.StringVar(&form.StartTime, "time", "", "start time HH:MM within the next 24h")
	fs.StringVar(&form.Category, "category", "", "Study, Social, Workshop, Sports or Networking")
	fs.StringVar(&form.Description, "description", "", "description")
	fs.StringVar(&form.ImageURL, "image", "", "cover image URL")
	fs.IntVar(&form.MaxParticipants, "max", eventform.DefaultMaxParticipants, "maximum participants")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ev, err := e.session.CreateEvent(ctx, form)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Created %s (%s) starting %s\n", ev.Title, ev.ID, ev.StartTime.Local().Format("Mon 15:04"))
	return nil
}

func deleteEventCmd(ctx context.Context, e *env, args []string, out io.Writer) error {
	id, err := oneArg(flag.NewFlagSet("delete-event", flag.ContinueOnError), args, "id")
	if err != nil {
		return err
	}
	if err := e.session.DeleteEvent(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(out, "Deleted", id)
	return nil
}

func searchCmd(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	ai := fs.Bool("ai", false, "ask the assistant instead of filtering")
	if err := fs.Parse(args); err != nil {
		return err
	}
	q := strings.Join(fs.Args(), " ")

	results := search.Filter(search.SampleCatalog(), q)
	tabs := []search.Tab{search.TabEvents, search.TabLocations, search.TabPeople}
	if *ai {
		tab, err := search.StubAssistant{}.Ask(ctx, q)
		if err != nil {
			return err
		}
		results = search.SampleCatalog()
		tabs = []search.Tab{tab}
	}

	for _, tab := range tabs {
		fmt.Fprintf(out, "%s (%d)\n", strings.ToUpper(string(tab)), results.Count(tab))
		switch tab {
		case search.TabEvents:
			for _, ev := range results.Events {
				fmt.Fprintf(out, "  %s @ %s\n", ev.Title, ev.Location)
			}
		case search.TabLocations:
			for _, l := range results.Locations {
				fmt.Fprintf(out, "  %s (%s)\n", l.Name, l.Type)
			}
		case search.TabPeople:
			for _, p := range results.People {
				fmt.Fprintf(out, "  %s, %s\n", p.Name, p.Department)
			}
		}
	}
	return nil
}

func friendsCmd(ctx context.Context, e *env, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("friends", flag.ContinueOnError)
	add := fs.String("add", "", "send a friend request to this user id")
	remove := fs.String("remove", "", "remove the friendship with this user id")
	accept := fs.String("accept", "", "accept this friendship id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case *add != "":
		f, err := e.session.AddFriend(ctx, *add)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Friend request sent (%s)\n", f.ID)
		return nil
	case *remove != "":
		if err := e.session.RemoveFriend(ctx, *remove); err != nil {
			return err
		}
		fmt.Fprintln(out, "Removed", *remove)
		return nil
	case *accept != "":
		if _, err := e.session.AcceptFriend(ctx, *accept); err != nil {
			return err
		}
		fmt.Fprintln(out, "Accepted", *accept)
		return nil
	}

	friends, err := e.session.Friends(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Friends (%d)\n", len(friends))
	for _, f := range friends {
		fmt.Fprintf(out, "  %s  %s, %s\n", f.ID, f.FullName, f.Department)
	}
	return nil
}

func momentsCmd(ctx context.Context, e *env, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("moments", flag.ContinueOnError)
	eventID := fs.String("event", "", "event the photo was taken at")
	photo := fs.String("photo", "", "path of the photo to upload")
	caption := fs.String("caption", "", "caption")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *photo != "" || *eventID != "" {
		m, err := e.session.AddMoment(ctx, *eventID, *photo, *caption)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "Added moment", m.ID)
		return nil
	}

	moments, err := e.session.Moments(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Moments (%d)\n", len(moments))
	for _, m := range moments {
		fmt.Fprintf(out, "  %s  %s  %s\n", m.CreatedAt.Local().Format("02 Jan"), m.EventID, m.Caption)
	}
	return nil
}

func countdownCmd(ctx context.Context, e *env, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("countdown", flag.ContinueOnError)
	interval := fs.Duration("interval", countdown.DefaultInterval, "refresh interval")
	id, err := oneArg(fs, args, "id")
	if err != nil {
		return err
	}

	d, err := e.session.EventDetail(ctx, id)
	if err != nil {
		return err
	}

	started := make(chan struct{})
	tk := countdown.NewTicker(d.Event.StartTime, countdown.Verbose, func(disp countdown.Display) {
		fmt.Fprintf(out, "%s: %s\n", d.Event.Title, disp.Text)
		if disp.HappeningNow {
			select {
			case <-started:
			default:
				close(started)
			}
		}
	}, countdown.WithInterval(*interval))
	tk.Start(ctx)
	defer tk.Stop()

	select {
	case <-ctx.Done():
	case <-started:
	}
	return nil
}

// serveCmd runs the demo backend.
//
// @title           TUMatch API
// @version         1.0
// @description     Demo backend of the TUMatch campus event client.
// @host            localhost:8000
// @BasePath        /api
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func serveCmd(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) error {
	s, closer, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closer()

	router, err := mockapi.Open(ctx, s, mockapi.Options{
		JWTSecret:     cfg.JWTSecret,
		DefaultUserID: cfg.CurrentUserID,
		Logger:        log,
	})
	if err != nil {
		return err
	}
	return mockapi.Serve(ctx, cfg.ListenAddr, router, log)
}

func resetCmd(ctx context.Context, cfg *config.Config, out io.Writer) error {
	s, closer, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closer()

	if err := s.Reset(ctx, store.Events, store.EventParticipants, store.Friendships, store.Moments, store.Users); err != nil {
		return err
	}
	fmt.Fprintf(out, "Cleared the %s store\n", cfg.StoreBackend)
	return nil
}
