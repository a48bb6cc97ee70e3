package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/glassroot/glassroot/internal/chat"
	"github.com/glassroot/glassroot/internal/cli"
)

const chatHelp = `Type a message and press Enter. Commands:
  /retry   resubmit the last message
  /reset   clear the conversation
  /copy    copy details of the last error to the clipboard
  /quit    leave the chat
Ctrl-C stops a streaming reply; at the prompt it leaves the chat.`

func (a *app) chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with a model over the completions API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := a.consoleLogger()
			defer logger.Sync()

			repo := a.settingsRepo()
			session := chat.NewSession(chat.NewConversation(), a.chatClient(), repo,
				chat.WithLogger(logger),
				chat.WithDefaultModel(a.cfg.Chat.DefaultModel),
			)
			if s, err := repo.Load(); err == nil && s.APIKey == "" {
				cmd.PrintErrln("No API key configured. Set one with: glassroot settings set api_key <key>")
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			interrupts := make(chan os.Signal, 1)
			signal.Notify(interrupts, os.Interrupt)
			defer signal.Stop(interrupts)
			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case <-interrupts:
						if session.Busy() {
							session.Abort()
							continue
						}
						cancel()
						return
					}
				}
			}()

			fmt.Fprintln(cmd.OutOrStdout(), chatHelp)
			return runChatLoop(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), session)
		},
	}
	cmd.AddCommand(a.chatModelsCmd())
	return cmd
}

func (a *app) chatClient() *chat.Client {
	return chat.NewClient(chat.ClientConfig{
		BaseURL: a.cfg.Chat.BaseURL,
		Referer: a.cfg.Chat.Referer,
		Title:   a.cfg.Chat.Title,
		Timeout: time.Duration(a.cfg.Chat.TimeoutSecs) * time.Second,
	})
}

// runChatLoop reads one line per turn from in until EOF, /quit or ctx is done.
func runChatLoop(ctx context.Context, in io.Reader, out, errOut io.Writer, session *chat.Session) error {
	printer := cli.NewStreamPrinter(out)
	session.Conversation().Subscribe(func(m chat.Message) {
		if m.Role == chat.RoleAssistant {
			printer.Update(m.Content)
		}
	})

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	var lastErr error
	for {
		fmt.Fprint(out, "> ")
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return nil
			}
			line = strings.TrimSpace(l)
		}

		var (
			res *chat.Result
			err error
		)
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/help":
			fmt.Fprintln(out, chatHelp)
			continue
		case "/reset":
			if err := session.Reset(); err != nil {
				cli.RenderError(errOut, err)
				continue
			}
			fmt.Fprintln(out, "Conversation cleared.")
			continue
		case "/copy":
			if lastErr == nil {
				fmt.Fprintln(out, "No error to copy.")
				continue
			}
			if err := cli.CopyErrorDetails(lastErr); err != nil {
				cli.RenderError(errOut, err)
				continue
			}
			fmt.Fprintln(out, "Error details copied.")
			continue
		case "/retry":
			res, err = session.RetryLast(ctx)
		default:
			res, err = session.Send(ctx, line)
		}

		printer.Finish()
		if err != nil {
			lastErr = err
			cli.RenderError(errOut, err)
			continue
		}
		if res.Aborted {
			fmt.Fprintln(out, "[stopped]")
		}
	}
}

func (a *app) chatModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models offered by the completions API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := a.outputFormat()
			if err != nil {
				return err
			}
			models, err := a.chatClient().ListModels(cmd.Context())
			if err != nil {
				return err
			}
			if format == cli.OutputJSON {
				return writeModelsJSON(cmd.OutOrStdout(), models)
			}
			current := a.cfg.Chat.DefaultModel
			if s, err := a.settingsRepo().Load(); err == nil && s.Model != "" {
				current = s.Model
			}
			for _, m := range models {
				marker := " "
				if m.ID == current {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-48s %s\n", marker, m.ID, m.Name)
			}
			return nil
		},
	}
}

func writeModelsJSON(w io.Writer, models []chat.Model) error {
	if models == nil {
		models = []chat.Model{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(models)
}
