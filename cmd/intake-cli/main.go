// Package main provides an interactive terminal client for running a patient interview.
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/alecthomas/kong"
)

// CLI is the root command.
type CLI struct {
	Interview InterviewCmd `cmd:"" default:"withargs" help:"Run an interactive interview session."`
	Advise    AdviseCmd    `cmd:"" help:"Run the advisor over a stored transcript."`
	Watch     WatchCmd     `cmd:"" help:"Print live session events for a patient."`

	Addr    string        `help:"Intake service base URL." default:"http://localhost:8080" env:"INTAKE_ADDR"`
	Timeout time.Duration `help:"HTTP request timeout." default:"30s"`
}

func (c *CLI) client() *Client {
	return NewClient(c.Addr, c.Timeout)
}

// InterviewCmd starts or resumes a session and sends each typed line as an answer.
type InterviewCmd struct {
	Patient   string `short:"p" required:"" help:"Patient ID to interview."`
	Complaint string `short:"c" help:"Chief complaint."`
	MaxItems  int    `name:"max-items" default:"3" help:"Suggestions to request with /advise."`
	Watch     bool   `help:"Print live session events from the WebSocket feed."`
}

func (c *InterviewCmd) Run(cli *CLI) error {
	client := cli.client()

	if c.Watch {
		feed, err := client.Watch(c.Patient)
		if err != nil {
			return fmt.Errorf("failed to open event feed: %w", err)
		}
		defer feed.Close()
		go feed.Print(os.Stdout)
	}

	resp, err := client.Start(c.Patient, c.Complaint)
	if err != nil {
		return fmt.Errorf("start failed: %w", err)
	}
	printQuestions(resp.Questions)

	fmt.Println("\nType an answer and press Enter to send.")
	fmt.Println("Commands: /end to finish, /advise to finish and get suggestions, /quit to exit")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		select {
		case <-interrupt:
			fmt.Println("\nInterrupted, session left open")
			return nil
		default:
			if !scanner.Scan() {
				return scanner.Err()
			}

			input := strings.TrimSpace(scanner.Text())
			if input == "" {
				continue
			}

			switch input {
			case "/quit":
				fmt.Println("Bye! Session left open.")
				return nil

			case "/end", "/advise":
				end, err := client.End(c.Patient)
				if err != nil {
					fmt.Fprintf(os.Stderr, "End failed: %v\n", err)
					continue
				}
				fmt.Printf("Transcript saved: %s\n", end.Reference)

				if input == "/advise" {
					return advise(client, c.Patient, c.MaxItems)
				}
				return nil

			default:
				resp, err := client.Answer(c.Patient, input)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Answer failed: %v\n", err)
					continue
				}
				printQuestions(resp.Questions)
			}
		}
	}
}

// AdviseCmd runs the advisor on a transcript that was already saved.
type AdviseCmd struct {
	Patient  string `short:"p" required:"" help:"Patient ID whose transcript to use."`
	MaxItems int    `name:"max-items" default:"3" help:"Number of suggestions (1-10)."`
}

func (c *AdviseCmd) Run(cli *CLI) error {
	return advise(cli.client(), c.Patient, c.MaxItems)
}

// WatchCmd prints a patient's session events until interrupted.
type WatchCmd struct {
	Patient string `short:"p" required:"" help:"Patient ID to watch."`
}

func (c *WatchCmd) Run(cli *CLI) error {
	feed, err := cli.client().Watch(c.Patient)
	if err != nil {
		return fmt.Errorf("failed to open event feed: %w", err)
	}
	defer feed.Close()

	fmt.Printf("Watching %s, press Ctrl+C to stop\n", c.Patient)
	go feed.Print(os.Stdout)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	<-interrupt
	return nil
}

func advise(client *Client, patientID string, maxItems int) error {
	res, err := client.RunAdvisor(patientID, maxItems)
	if err != nil {
		return fmt.Errorf("advisor failed: %w", err)
	}
	for _, s := range res.Suggestions {
		fmt.Printf("\n%s (confidence %.2f)\n  %s\n  citations: %s\n",
			s.Title, s.Confidence, s.Rationale, strings.Join(s.Citations, ", "))
	}
	return nil
}

func printQuestions(questions []string) {
	if len(questions) == 0 {
		fmt.Println("(no further questions, consider /end)")
		return
	}
	for i, q := range questions {
		fmt.Printf("  %d. %s\n", i+1, q)
	}
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("intake-cli"),
		kong.Description("Terminal client for the patient intake service"),
		kong.UsageOnError(),
	)

	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
