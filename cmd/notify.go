/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/staffdesk/apiserver/config"
	"github.com/staffdesk/apiserver/internal/mq"
	"github.com/staffdesk/apiserver/internal/services"
)

// notifyCmd represents the notify command.
var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Consume leave events and log them",
	Long: `Subscribes to the leave events channel on the configured message
queue (MQ_BACKEND) and logs every leave workflow transition.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		queue, err := mq.Open(ctx, cfg.MQ)
		if err != nil {
			return err
		}
		if queue == nil {
			return errors.New("MQ_BACKEND is not configured")
		}
		defer queue.Close()

		log.Printf("consuming leave events from %s via %s", cfg.MQ.LeaveEventsChannel, cfg.MQ.Backend)
		err = queue.Subscribe(ctx, cfg.MQ.LeaveEventsChannel, logLeaveEvent)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("subscribe failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(notifyCmd)
}

func logLeaveEvent(ctx context.Context, msg mq.Message) error {
	event, err := services.DecodeLeaveEvent(msg)
	if err != nil {
		log.Printf("dropping message %s: %v", msg.ID, err)
		return fmt.Errorf("%w: %v", mq.ErrPermanent, err)
	}
	log.Printf("%s: leave request %d of employee %d is %s (actor %d, at %s)",
		event.Type, event.LeaveID, event.EmployeeID, event.Status, event.ActorID, event.OccurredAt.Format(time.RFC3339))
	return nil
}
