package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/MikeSquared-Agency/echomate/internal/config"
	"github.com/MikeSquared-Agency/echomate/internal/extractor"
	"github.com/MikeSquared-Agency/echomate/internal/persona"
)

func chatCommand(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	file := fs.String("file", "", "exported WhatsApp chat (.txt)")
	me := fs.String("me", "", "your name as it appears in the chat")
	them := fs.String("them", "", "the participant to imitate")
	fs.Parse(args)

	if *file == "" || strings.TrimSpace(*me) == "" || strings.TrimSpace(*them) == "" {
		fmt.Fprintln(os.Stderr, "Please fill in all three fields above.")
		fmt.Fprint(os.Stderr, usage)
		return errors.New("missing flags")
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	gen, _, err := newGenerator(ctx, cfg)
	if err != nil {
		slog.Error("failed to create generator", "error", err)
		return err
	}

	f, err := os.Open(*file)
	if err != nil {
		slog.Error("failed to open transcript", "error", err)
		return err
	}
	raw, err := extractor.ReadTranscript(f)
	f.Close()
	if err != nil {
		slog.Error("failed to read transcript", "error", err)
		return err
	}

	sess := persona.NewSession(gen, persona.WithLogger(slog.Default()))
	return runChat(ctx, sess, raw, strings.TrimSpace(*me), strings.TrimSpace(*them), os.Stdin, os.Stdout)
}

// runChat creates the persona from raw and loops over input lines until EOF
// or /quit. "/reset" clears the conversation.
func runChat(ctx context.Context, sess *persona.Session, raw, me, them string, in io.Reader, out io.Writer) error {
	if err := sess.Create(raw, me, them); err != nil {
		if errors.Is(err, extractor.ErrNotFound) {
			fmt.Fprintln(out, persona.NotFoundMessage(them))
			if senders := extractor.Senders(raw); len(senders) > 0 {
				fmt.Fprintf(out, "Participants in this chat: %s\n", strings.Join(senders, ", "))
			}
		} else {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
		return err
	}

	fmt.Fprintln(out, persona.LearnedMessage(sess.TargetName()))
	fmt.Fprintln(out, persona.ChatPlaceholder(sess.TargetName()))

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		text := strings.TrimSpace(scanner.Text())
		switch text {
		case "":
			continue
		case "/quit":
			return nil
		case "/reset":
			sess.Reset()
			fmt.Fprintln(out, "(conversation cleared)")
			continue
		}

		fmt.Fprintln(out, persona.TypingMessage(sess.TargetName()))
		reply, err := sess.SubmitTurn(ctx, text)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %s\n", sess.TargetName(), reply.Content)

		if ctx.Err() != nil {
			return nil
		}
	}
}
