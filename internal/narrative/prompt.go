// Package narrative produces plain-language explanations of calculation
// results, from a language model when one is configured and from built-in
// text otherwise.
package narrative

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Simplici0/plantecon/internal/econ"
)

// Topic selects the calculator an explanation is about.
type Topic string

const (
	Interest       Topic = "interest"
	Depreciation   Topic = "depreciation"
	CostEstimation Topic = "cost_estimation"
	Profitability  Topic = "profitability"
	Breakeven      Topic = "breakeven"
	Replacement    Topic = "replacement"
)

// Topics lists every supported topic.
var Topics = []Topic{Interest, Depreciation, CostEstimation, Profitability, Breakeven, Replacement}

// ParseTopic validates a topic name.
func ParseTopic(s string) (Topic, error) {
	for _, t := range Topics {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown explanation topic %q", s)
}

// SystemPrompt frames every request to the model.
const SystemPrompt = "You are a chemical engineering economics expert. " +
	"Explain calculation results to plant engineers in practical terms. " +
	"Answer in Markdown with short sections and do not repeat the input table verbatim."

var topicTitles = map[Topic]string{
	Interest:       "interest and time value of money calculation",
	Depreciation:   "equipment depreciation schedule",
	CostEstimation: "plant capital cost estimate",
	Profitability:  "plant profitability assessment",
	Breakeven:      "break-even analysis",
	Replacement:    "equipment replacement decision",
}

var topicQuestions = map[Topic][]string{
	Interest: {
		"What this calculation says about the investment",
		"Implications for plant economics decisions",
		"Risk factors to consider",
		"A simple analogy for compound growth",
	},
	Depreciation: {
		"What depreciation means for this equipment",
		"Tax implications and cash flow impact",
		"Whether this method suits chemical process equipment",
		"How the schedule affects replacement decisions",
	},
	CostEstimation: {
		"Why the total cost is much higher than the equipment cost",
		"The main cost components and their weight",
		"Accuracy of this estimating method",
		"Factors that could make actual costs differ",
	},
	Profitability: {
		"An accept or reject recommendation and the reasoning",
		"Risks and sensitivity concerns",
		"How the figures compare with typical chemical plant projects",
		"Which factors could change the decision",
	},
	Breakeven: {
		"What the break-even volume means for plant operations",
		"How sensitive the result is to price and cost changes",
		"Operational challenges in reaching this volume",
		"Implications for capacity and market positioning",
	},
	Replacement: {
		"The economic logic behind the recommendation",
		"Non-economic factors such as reliability and technology",
		"Timing considerations and risks",
		"How the decision fits the plant maintenance strategy",
	},
}

// Request is the material an explanation is built from.
type Request struct {
	Topic  Topic
	Inputs econ.Inputs
	// Results is any JSON-serializable calculation result.
	Results any
}

// BuildPrompt renders req as a model prompt. Inputs and results are listed
// one per line in key order so equal requests give equal prompts.
func BuildPrompt(req Request) (string, error) {
	title, ok := topicTitles[req.Topic]
	if !ok {
		return "", fmt.Errorf("unknown explanation topic %q", req.Topic)
	}
	results, err := Flatten(req.Results)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Explain this %s.\n\nInputs:\n", title)
	for _, k := range req.Inputs.Keys() {
		fmt.Fprintf(&b, "- %s: %s\n", k, formatNumber(req.Inputs[k]))
	}
	b.WriteString("\nResults:\n")
	for _, k := range sortedKeys(results) {
		fmt.Fprintf(&b, "- %s: %s\n", k, results[k])
	}
	b.WriteString("\nPlease cover:\n")
	for i, q := range topicQuestions[req.Topic] {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return b.String(), nil
}

// Flatten turns a result structure into dotted scalar keys. Lists such as
// year-by-year tables are left out. Metrics collapse to their value, or to
// their state when they have none.
func Flatten(v any) (map[string]string, error) {
	out := map[string]string{}
	if v == nil {
		return out, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode results: %w", err)
	}
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	flattenInto(out, "", tree)
	return out, nil
}

func flattenInto(out map[string]string, prefix string, v any) {
	switch t := v.(type) {
	case map[string]any:
		if state, ok := t["state"].(string); ok {
			if value, ok := t["value"].(float64); ok && state == string(econ.StateDefined) {
				out[prefix] = formatNumber(value)
			} else {
				out[prefix] = state
			}
			return
		}
		for k, child := range t {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flattenInto(out, key, child)
		}
	case []any:
	case float64:
		out[prefix] = formatNumber(t)
	case string:
		out[prefix] = t
	case bool:
		out[prefix] = strconv.FormatBool(t)
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', 10, 64)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
