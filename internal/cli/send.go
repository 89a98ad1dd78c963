package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

func newSendCmd() *cobra.Command {
	var (
		q           Query
		group       string
		participant string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message to the bot as a sender",
		Example: `  kbot send --sender 123@c.us --message "تسجيل"
  kbot send --sender 123@c.us --message hi --group "Divala Kingdom" --participant Ali`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(q.Sender) == "" {
				return errors.New("--sender is required")
			}
			if group != "" {
				q.IsGroup = true
				if participant == "" {
					participant = q.Sender
				}
				q.GroupParticipant = participant + " to " + group
			} else if participant != "" {
				return errors.New("--participant requires --group")
			}

			result, err := client.Send(cmd.Context(), q)
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&q.Sender, "sender", "", "Sender id")
	cmd.Flags().StringVarP(&q.Message, "message", "m", "", "Message text")
	cmd.Flags().StringVar(&group, "group", "", "Group name; marks the message as a group message")
	cmd.Flags().StringVar(&participant, "participant", "", "Participant name inside the group (default: sender)")

	return cmd
}
