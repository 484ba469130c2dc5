package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/timew-bot/internal/dispatch"
)

var sendCmd = &cobra.Command{
	Use:   "send [text...]",
	Short: "Dispatch input locally as if it came from the chat",
	Long: `send runs one line of chat input through the dispatcher and prints the
reply and the keyboard. Without arguments every line of stdin is sent in order
within one session, so "start" followed by "09:15" works as in the chat.`,
	RunE: runSend,
}

func runSend(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	d, err := newDispatcher(ctx, cfg, newGateway(cfg, log), log)
	if err != nil {
		return err
	}

	var session dispatch.Session
	out := cmd.OutOrStdout()
	if len(args) > 0 {
		return sendLine(cmd, d, &session, strings.Join(args, " "), out)
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		if err := sendLine(cmd, d, &session, scanner.Text(), out); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func sendLine(cmd *cobra.Command, d *dispatch.Dispatcher, s *dispatch.Session, line string, out io.Writer) error {
	reply, err := d.Handle(cmd.Context(), s, line)
	if err != nil {
		return err
	}
	printReply(out, reply)
	return nil
}

func printReply(out io.Writer, reply dispatch.Reply) {
	fmt.Fprintln(out, reply.Text)
	fmt.Fprint(out, reply.Keyboard.String())
}
