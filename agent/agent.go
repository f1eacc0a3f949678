package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"google.golang.org/genai"
)

// Agent is the interactive assistant: the user talks to a facilitator that
// delegates to the experts.
type Agent struct {
	w           io.Writer
	r           *bufio.Scanner
	Facilitator *Expert
	Experts     []*Expert
}

// New creates a new Agent answering questions about the price index with the help
// of experts.
//
// It writes to w (e.g., os.Stdout) and reads the user questions from r
// (e.g., os.Stdin).
func New(w io.Writer, r io.Reader, experts ...*Expert) *Agent {
	return &Agent{
		w:           w,
		r:           bufio.NewScanner(r),
		Experts:     experts,
		Facilitator: newFacilitator(experts...),
	}
}

// Start creates the chat sessions of the experts and the facilitator.
func (a *Agent) Start(ctx context.Context, client *genai.Client) error {
	for _, e := range slices.Concat(a.Experts, []*Expert{a.Facilitator}) {
		if err := e.Start(ctx, client); err != nil {
			return err
		}
	}
	return nil
}

const prompt = "assist> "

// Run answers prompts first, then the user's questions until "bye" or the end of
// the input.
func (a *Agent) Run(ctx context.Context, client *genai.Client, prompts ...string) error {
	if a.Facilitator.chat == nil {
		if err := a.Start(ctx, client); err != nil {
			return err
		}
	}
	fmt.Fprintln(a.w, "Welcome to rpi assist. Ask about prices and inflation, type 'bye' to exit.")

	for {
		fmt.Fprint(a.w, prompt)
		var input string
		if len(prompts) > 0 {
			input, prompts = strings.TrimSpace(prompts[0]), prompts[1:]
			if input == "" {
				continue
			}
			fmt.Fprintln(a.w, input)
		} else {
			if !a.r.Scan() {
				return a.r.Err()
			}
			input = strings.TrimSpace(a.r.Text())
		}

		switch input {
		case "":
			continue
		case "bye":
			return nil
		}

		content, err := a.Facilitator.Ask(ctx, &genai.Part{Text: input})
		if err != nil {
			return err
		}
		fmt.Fprintln(a.w, Text(content))
	}
}

// Text returns the concatenated text parts of content.
func Text(content *genai.Content) string {
	var b strings.Builder
	for _, p := range content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}
