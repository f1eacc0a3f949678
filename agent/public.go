package agent

import (
	"context"
	"fmt"

	"github.com/etnz/rpi"
	"github.com/etnz/rpi/date"
	"github.com/etnz/rpi/docs"
	"github.com/etnz/rpi/renderer"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// creates the facilitator
func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:        "Facilitator",
		Description: ``,
		ModelName:   model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They are at your service and 100% dedicated to you, they keep context of your previous questions.

			The user wants to understand price movements in the Old School RuneScape Grand Exchange:
			how expensive the usual goods became, which items drive the inflation, and why.

			Devise a plan of questions to ask to each experts and come up with the best reponse to the user's request.
			Always quote the figures computed by the Analyst, never make them up.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewTrader returns an expert of the game news.
func NewTrader() *Expert {
	return &Expert{
		Name: "Trader",
		Description: `This is an expert Grand Exchange trader,
		very well aware of the game updates, the new content and the events that move prices.
		Ask the Trader whenever you need recent or grounding information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an expert in Old School RuneScape trading, you can search and find about anything related to
			game updates, boss releases, drop rate changes, bot bans and their effect on item prices.
			You Leverage Google Search to ground your assertions in a solid truth.
				`}}},
		},
	}
}

// NewAnalyst returns the expert computing price indexes with tools.
func NewAnalyst(tools *Tools) *Expert {
	lib := tools.Functions()
	return &Expert{
		Name: "Analyst",
		Description: `This is the Analyst. It computes the price index of a basket of goods,
		the price change of any single item and the year over year history of the index.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are an economist in charge of measuring inflation in the game.
				You know how to use the Tools to compute indexes and price changes.
				You are part of a team of experts, yours is everything about figures. They might ask
				you questions with approximative language, figure out what they meant.

				` + must(docs.GetTopic("basket")) + `
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

// Func implements a simple Function
type Func struct {
	// Declare this function
	Decl *genai.FunctionDeclaration
	// Call this function
	Func func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	return f.Func(ctx, id, args)
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// Tools gives a model access to the index calculations.
type Tools struct {
	Calculator *rpi.Calculator
	Basket     rpi.Basket
	// Today returns the current day, date.Today if nil.
	Today func() date.Date
}

func (t *Tools) today() date.Date {
	if t.Today == nil {
		return date.Today()
	}
	return t.Today()
}

// Functions returns the functions a model can call.
func (t *Tools) Functions() []Function {
	return []Function{t.index(), t.item(), t.history()}
}

var dateSchema = &genai.Schema{
	Type:        genai.TypeString,
	Description: "A date in the YYYY-MM-DD format.\n\n" + must(docs.GetTopic("dates")),
}

func (t *Tools) index() *Func {
	const name = "Index"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: name,
			Description: `Index computes the weighted price change of the reference basket between two dates.
			Items without prices are excluded and the others are reweighted.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"from": dateSchema,
					"to":   dateSchema,
				},
				Required: []string{"from"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown report with the index, the contribution of each item and the excluded items.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			from, to, err := t.window(args)
			if err != nil {
				return respond(id, name, "", err)
			}
			res, err := t.Calculator.Compute(ctx, t.Basket, from, to)
			if err != nil {
				return respond(id, name, "", err)
			}
			return respond(id, name, renderer.RenderResult(res), nil)
		},
	}
}

func (t *Tools) item() *Func {
	const name = "Item"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: `Item computes the price change of a single item between two dates.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"item": {
						Type:        genai.TypeString,
						Description: "The name of the item as in the Grand Exchange, case insensitive, e.g. 'Shark'.",
					},
					"from": dateSchema,
					"to":   dateSchema,
				},
				Required: []string{"item", "from"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown report with the old and new prices and when they were observed.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			item, ok := args["item"].(string)
			if !ok {
				return respond(id, name, "", fmt.Errorf("argument 'item' is not a string as expected but %T", args["item"]))
			}
			from, to, err := t.window(args)
			if err != nil {
				return respond(id, name, "", err)
			}
			c, err := t.Calculator.Item(ctx, item, from, to)
			if err != nil {
				return respond(id, name, "", err)
			}
			return respond(id, name, renderer.RenderItem(item, c), nil)
		},
	}
}

func (t *Tools) history() *Func {
	const name = "History"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: name,
			Description: `History computes the year over year index of the reference basket at the end of each
			month, going back from the last completed month until prices are missing.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"limit": {
						Type:        genai.TypeInteger,
						Description: "The maximum number of months, 12 by default.",
					},
				},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown table of the monthly year over year index, oldest first.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			limit := 12
			if l, ok := args["limit"].(float64); ok {
				limit = int(l)
			}
			opts := rpi.HistoryOptions{Limit: limit, Today: t.today()}
			points, err := t.Calculator.CollectHistory(ctx, t.Basket, opts)
			if err != nil {
				return respond(id, name, "", err)
			}
			return respond(id, name, renderer.HistoryMarkdown(points, opts.Granularity), nil)
		},
	}
}

// window reads the "from" and "to" arguments, "to" defaults to today.
func (t *Tools) window(args map[string]any) (from, to date.Date, err error) {
	if from, err = parseDate(args, "from", date.Date{}); err != nil {
		return
	}
	if from.IsZero() {
		err = fmt.Errorf("argument 'from' is required")
		return
	}
	to, err = parseDate(args, "to", t.today())
	return
}

func parseDate(args map[string]any, key string, def date.Date) (date.Date, error) {
	idate, hasDate := args[key]
	if !hasDate {
		return def, nil
	}
	sdate, ok := idate.(string)
	if !ok {
		return def, fmt.Errorf("argument '%s' is not a string as expected but %T", key, idate)
	}

	d, err := date.Parse(sdate)
	if err != nil {
		return def, fmt.Errorf("argument '%s' must be a valid date got %q. Below is the doc about the format date\n\n%s ", key, sdate, must(docs.GetTopic("dates")))
	}
	return d, nil
}
