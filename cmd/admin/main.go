package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"confusense/backend/internal/config"
	"confusense/backend/internal/database"
	"confusense/backend/internal/logging"
	"confusense/backend/internal/storage"

	"github.com/rs/zerolog/log"
)

const usage = `Usage: admin <command> [args]

Commands:
  sessions <meeting_id>   list the sessions of a meeting
  end <session_id>        end an active session
  events <meeting_id>     list the confusion events of a meeting
  statuses <meeting_id>   list the last known status of every participant
  tail <meeting_id>       follow the frames relayed in a meeting (needs redis)`

func main() {
	logging.Setup("debug", "warn")

	if len(os.Args) < 3 {
		fmt.Println(usage)
		os.Exit(1)
	}
	if err := run(os.Args[1], os.Args[2]); err != nil {
		log.Error().Err(err).Str("command", os.Args[1]).Msg("command failed")
		os.Exit(1)
	}
}

var errUsage = errors.New("unknown command")

var commands = map[string]bool{"sessions": true, "end": true, "events": true, "statuses": true, "tail": true}

func run(command, arg string) error {
	if !commands[command] {
		fmt.Println(usage)
		return fmt.Errorf("%w: %s", errUsage, command)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	db, err := database.OpenGorm(pool)
	if err != nil {
		return err
	}

	// Redis is only needed for tail.
	rdb, err := database.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}
	storageSvc := storage.NewStorageService(db, rdb)
	if cfg.Redis.Topic != "" {
		storageSvc.Topic = cfg.Redis.Topic
	}

	switch command {
	case "sessions":
		return listSessions(ctx, storageSvc, arg)
	case "end":
		return endSession(ctx, storageSvc, arg)
	case "events":
		return listEvents(ctx, storageSvc, arg)
	case "statuses":
		return listStatuses(ctx, storageSvc, arg)
	case "tail":
		if rdb == nil {
			return errors.New("tail needs redis.enabled=true")
		}
		return tail(ctx, storageSvc, arg)
	}
	return fmt.Errorf("%w: %s", errUsage, command)
}

func listSessions(ctx context.Context, s storage.Storage, meetingID string) error {
	sessions, err := s.ListSessions(ctx, meetingID)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Printf("No sessions for meeting %s.\n", meetingID)
		return nil
	}
	for _, session := range sessions {
		state := "ended"
		if session.IsActive {
			state = "active"
		}
		fmt.Printf("%s  %-6s  host=%q  started=%s\n",
			session.SessionID, state, session.HostName, session.StartTime.Format(time.RFC3339))
	}
	return nil
}

func endSession(ctx context.Context, s storage.Storage, sessionID string) error {
	ended, err := s.EndSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if !ended {
		fmt.Printf("No active session %s.\n", sessionID)
		return nil
	}
	fmt.Printf("Session %s has been ended.\n", sessionID)
	return nil
}

func listEvents(ctx context.Context, s storage.Storage, meetingID string) error {
	events, err := s.ListConfusionEvents(ctx, meetingID)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Printf("No confusion events for meeting %s.\n", meetingID)
		return nil
	}
	for _, ev := range events {
		by := "-"
		if ev.Resolved() {
			by = *ev.InterventionBy
		}
		fmt.Printf("#%d  %s  %s (%s)  rate=%.2f  confirmed=%t  intervention_by=%s\n",
			ev.ID, ev.OccurredAt.Format(time.RFC3339), ev.ParticipantName, ev.ParticipantID,
			ev.ConfusionRate, ev.Confirmed, by)
	}
	return nil
}

func listStatuses(ctx context.Context, s storage.Storage, meetingID string) error {
	statuses, err := s.ListParticipantStatuses(ctx, meetingID)
	if err != nil {
		return err
	}
	if len(statuses) == 0 {
		fmt.Printf("No participants recorded for meeting %s.\n", meetingID)
		return nil
	}
	for _, st := range statuses {
		fmt.Printf("%s  %q  detection=%t  last_update=%s\n",
			st.ParticipantID, st.ParticipantName, st.DetectionEnabled, st.LastUpdate.Format(time.RFC3339))
	}
	return nil
}

func tail(ctx context.Context, s *storage.Service, meetingID string) error {
	sub := s.SubscribeMeeting(ctx, meetingID)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", s.MeetingChannel(meetingID), err)
	}
	fmt.Printf("Following %s (Ctrl-C to stop)\n", s.MeetingChannel(meetingID))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			fmt.Println(msg.Payload)
		}
	}
}
