// cmd/claimcheck/chat.go
package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"claimcheck/internal/workers/assistant/chat"
)

func newChatCmd(c *cli) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask the product assistant questions",
		Long: `Starts a conversation with the product verification assistant. Type
/reset to start over and /quit (or send EOF) to leave. With --message a
single question is asked and the answer printed.`,
		Args:    cobra.NoArgs,
		PreRunE: c.requireSession,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := c.Env(cmd.Context())
			if err != nil {
				return err
			}
			transcript := chat.NewTranscript(e.services.Chat)
			out := cmd.OutOrStdout()

			if message != "" {
				reply, err := transcript.Ask(cmd.Context(), message)
				if err != nil {
					e.log.Debug("chat request failed", map[string]interface{}{"error": err.Error()})
				}
				if c.opts.json {
					return printJSON(out, transcript.Messages())
				}
				fmt.Fprintln(out, reply)
				return nil
			}

			fmt.Fprintf(out, "assistant> %s\n", chat.Greeting)
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "you> ")
				if !scanner.Scan() {
					fmt.Fprintln(out)
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				switch line {
				case "":
					continue
				case "/quit", "/exit":
					return nil
				case "/reset":
					transcript.Reset()
					fmt.Fprintf(out, "assistant> %s\n", chat.Greeting)
					continue
				}

				reply, err := transcript.Ask(cmd.Context(), line)
				if err != nil {
					e.log.Debug("chat request failed", map[string]interface{}{"error": err.Error()})
					if cmd.Context().Err() != nil {
						return cmd.Context().Err()
					}
				}
				fmt.Fprintf(out, "assistant> %s\n", reply)
			}
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "ask one question and exit")
	return cmd
}
