package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/etnz/rpi"
	"github.com/etnz/rpi/date"
	"google.golang.org/genai"
)

func newTools() *Tools {
	catalog := new(rpi.Catalog).Add("X", 1).Add("Y", 2)
	prices := rpi.Prices{
		1: new(rpi.PriceSeries).Append(date.New(2024, 1, 15), rpi.P(100)).Append(date.New(2025, 5, 20), rpi.P(150)),
		2: new(rpi.PriceSeries).Append(date.New(2024, 1, 31), rpi.P(200)).Append(date.New(2025, 6, 1), rpi.P(180)),
	}
	return &Tools{
		Calculator: &rpi.Calculator{Catalog: catalog, Prices: prices},
		Basket:     rpi.NewBasket(rpi.Entry{Name: "X", Weight: 0.6}, rpi.Entry{Name: "Y", Weight: 0.4}),
		Today:      func() date.Date { return date.New(2025, 6, 1) },
	}
}

func call(t *testing.T, name string, args map[string]any) *genai.FunctionResponse {
	t.Helper()
	lib := NewLibrary(newTools().Functions())
	return lib(context.Background(), &genai.FunctionCall{ID: "1", Name: name, Args: args})
}

func TestTools(t *testing.T) {
	testCases := []struct {
		name       string
		function   string
		args       map[string]any
		wantOutput string
		wantError  string
	}{
		{"index", "Index", map[string]any{"from": "2025-01-01", "to": "2025-06-01"}, "**+26.00%**", ""},
		{"index to today", "Index", map[string]any{"from": "2025-01-01"}, "**+26.00%**", ""},
		{"index without from", "Index", map[string]any{}, "", "argument 'from' is required"},
		{"index bad date", "Index", map[string]any{"from": "soon"}, "", "must be a valid date"},
		{"index reversed", "Index", map[string]any{"from": "2025-06-01", "to": "2025-01-01"}, "", "invalid time window"},
		{"item", "Item", map[string]any{"item": "x", "from": "2025-01-01"}, "**+50.00%**", ""},
		{"unknown item", "Item", map[string]any{"item": "Ghost", "from": "2025-01-01"}, "", "unknown-item"},
		{"item not a string", "Item", map[string]any{"item": 42.0, "from": "2025-01-01"}, "", "not a string"},
		{"history", "History", map[string]any{"limit": 2.0}, "2025-05", ""},
		{"unknown function", "Forecast", nil, "", "unknown function Forecast"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := call(t, tc.function, tc.args)
			if resp.ID != "1" {
				t.Errorf("response ID = %q want 1", resp.ID)
			}
			if tc.wantError != "" {
				msg, _ := resp.Response["error"].(string)
				if !strings.Contains(msg, tc.wantError) {
					t.Errorf("error = %q want it to contain %q", msg, tc.wantError)
				}
				return
			}
			output, ok := resp.Response["output"].(string)
			if !ok {
				t.Fatalf("response = %v want an output", resp.Response)
			}
			if !strings.Contains(output, tc.wantOutput) {
				t.Errorf("output does not contain %q:\n%s", tc.wantOutput, output)
			}
		})
	}
}

func TestDeclarations(t *testing.T) {
	seen := make(map[string]bool)
	for _, d := range NewDeclaration(newTools().Functions()) {
		if d.Name == "" || d.Description == "" {
			t.Errorf("declaration %+v has no name or description", d)
		}
		if seen[d.Name] {
			t.Errorf("declaration %q is declared twice", d.Name)
		}
		seen[d.Name] = true
	}

	analyst := NewAnalyst(newTools())
	if d := analyst.Declaration(); d.Name != "Analyst" || d.Parameters.Required[0] != "question" {
		t.Errorf("Analyst declaration = %+v", d)
	}
}

func TestText(t *testing.T) {
	content := &genai.Content{Parts: []*genai.Part{{Text: "Prices "}, {Text: "went up."}}}
	if got := Text(content); got != "Prices went up." {
		t.Errorf("Text() = %q want %q", got, "Prices went up.")
	}
}

// scripted is a chat answering with a fixed sequence of contents.
type scripted struct {
	answers []*genai.Content
	sent    [][]*genai.Part
}

func (s *scripted) Send(_ context.Context, parts ...*genai.Part) (*genai.GenerateContentResponse, error) {
	s.sent = append(s.sent, parts)
	if len(s.answers) == 0 {
		return &genai.GenerateContentResponse{}, nil
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: answer}}}, nil
}

func TestExpertAnswersFunctionCalls(t *testing.T) {
	script := &scripted{answers: []*genai.Content{
		{Parts: []*genai.Part{{FunctionCall: &genai.FunctionCall{ID: "c1", Name: "Index", Args: map[string]any{"from": "2025-01-01"}}}}},
		{Parts: []*genai.Part{{Text: "Prices went up by 26%."}}},
	}}
	e := NewAnalyst(newTools())
	e.chat = script

	got, err := e.Ask(context.Background(), &genai.Part{Text: "How much did prices change this year?"})
	if err != nil {
		t.Fatalf("Ask() unexpected error: %v", err)
	}
	if Text(got) != "Prices went up by 26%." {
		t.Errorf("Ask() = %q want the final answer", Text(got))
	}
	if len(script.sent) != 2 {
		t.Fatalf("Ask() sent %d messages want 2", len(script.sent))
	}
	resp := script.sent[1][0].FunctionResponse
	if resp == nil || resp.ID != "c1" {
		t.Fatalf("second message = %+v want the response to c1", script.sent[1][0])
	}
	if output, _ := resp.Response["output"].(string); !strings.Contains(output, "**+26.00%**") {
		t.Errorf("function response = %v want the index", resp.Response)
	}
}

func TestExpertErrors(t *testing.T) {
	call := &genai.Content{Parts: []*genai.Part{{FunctionCall: &genai.FunctionCall{Name: "Index"}}}}

	loop := &scripted{}
	for range maxRounds {
		loop.answers = append(loop.answers, call)
	}
	testCases := []struct {
		name   string
		expert *Expert
	}{
		{"not started", &Expert{Name: "Idle"}},
		{"empty answer", &Expert{Name: "Mute", chat: &scripted{}}},
		{"no library", &Expert{Name: "Naive", chat: &scripted{answers: []*genai.Content{call}}}},
		{"endless calls", &Expert{Name: "Loop", chat: loop, Library: NewLibrary(newTools().Functions())}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.expert.Ask(context.Background(), &genai.Part{Text: "?"}); err == nil {
				t.Errorf("Ask() want an error")
			}
		})
	}
}

func TestExpertCall(t *testing.T) {
	e := &Expert{Name: "Trader", chat: &scripted{answers: []*genai.Content{{Parts: []*genai.Part{{Text: "A new boss was released."}}}}}}

	resp := e.Call(context.Background(), "7", map[string]any{"question": "Why did prices move?"})
	if resp.ID != "7" || resp.Name != "Trader" || resp.Response["output"] != "A new boss was released." {
		t.Errorf("Call() = %+v want the expert's answer", resp)
	}

	resp = e.Call(context.Background(), "8", map[string]any{"question": 42})
	if _, ok := resp.Response["error"]; !ok {
		t.Errorf("Call(42) = %+v want an error", resp)
	}
}
