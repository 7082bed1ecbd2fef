package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/budgetbloom/cardledger/internal/domain"
	"github.com/budgetbloom/cardledger/internal/infrastructure/metrics"
)

const (
	// SummaryNoGenerator is returned when no text generator is configured.
	SummaryNoGenerator = "Insights unavailable (no API key)."
	// SummaryUnparsable is returned when the generator reply holds no usable JSON.
	SummaryUnparsable = "Unable to parse model response."

	maxPromptMerchants = 3
)

// InsightUseCase renders a snapshot into a prompt and parses the generated insights.
type InsightUseCase struct {
	generator TextGenerator
	idGen     IDGenerator
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	now       func() time.Time
}

// NewInsightUseCase creates a new InsightUseCase. A nil generator yields placeholder insights.
func NewInsightUseCase(generator TextGenerator, idGen IDGenerator, m *metrics.Metrics, logger zerolog.Logger) *InsightUseCase {
	return &InsightUseCase{
		generator: generator,
		idGen:     idGen,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// Generate produces insights for a snapshot. Generator failures are returned;
// malformed replies are not errors and degrade to SummaryUnparsable.
func (uc *InsightUseCase) Generate(ctx context.Context, snapshot domain.AccountSnapshot) (*domain.Insight, error) {
	insight := &domain.Insight{
		ID:          uc.idGen.Generate(),
		Items:       []domain.InsightItem{},
		GeneratedAt: uc.now().UTC(),
	}

	if uc.generator == nil {
		uc.record("unavailable")
		insight.Summary = SummaryNoGenerator
		return insight, nil
	}

	start := time.Now()
	reply, err := uc.generator.Generate(ctx, BuildPrompt(snapshot))
	if uc.metrics != nil {
		uc.metrics.InsightDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		uc.record("error")
		return nil, fmt.Errorf("generate insights: %w", err)
	}

	parsed, ok := ParseInsightReply(reply)
	if !ok {
		uc.record("unparsable")
		uc.logger.Warn().Int("reply_bytes", len(reply)).Msg("insight reply had no usable JSON")
		insight.Summary = SummaryUnparsable
		return insight, nil
	}

	uc.record("ok")
	insight.Items = parsed.Insights
	insight.Summary = parsed.Summary
	insight.HabitStory = parsed.HabitStory

	return insight, nil
}

func (uc *InsightUseCase) record(outcome string) {
	if uc.metrics != nil {
		uc.metrics.InsightRequests.WithLabelValues(outcome).Inc()
	}
}

// InsightReply is the JSON shape requested from the generator.
type InsightReply struct {
	Insights   []domain.InsightItem `json:"insights"`
	Summary    string               `json:"summary"`
	HabitStory string               `json:"habitStory"`
}

// ParseInsightReply decodes the first JSON object embedded in a generator reply.
// Text around the object, braces included, is ignored.
func ParseInsightReply(reply string) (InsightReply, bool) {
	for offset := 0; offset < len(reply); {
		i := strings.IndexByte(reply[offset:], '{')
		if i < 0 {
			break
		}
		offset += i

		var parsed InsightReply
		if err := json.NewDecoder(strings.NewReader(reply[offset:])).Decode(&parsed); err == nil {
			if parsed.Insights == nil {
				parsed.Insights = []domain.InsightItem{}
			}
			return parsed, true
		}
		offset++
	}

	return InsightReply{}, false
}

// BuildPrompt renders the snapshot values into the insight prompt.
func BuildPrompt(s domain.AccountSnapshot) string {
	var b strings.Builder

	b.WriteString("Provide positive, supportive financial insights for a student on a campus meal plan.\n")
	fmt.Fprintf(&b, "Meal swipes remaining: %s\n", s.MealSwipes.String())
	fmt.Fprintf(&b, "Dining dollars remaining: $%s\n", s.DiningDollars.StringFixed(2))
	fmt.Fprintf(&b, "Stored value remaining: $%s\n", s.StoredValue.StringFixed(2))
	fmt.Fprintf(&b, "Last updated: %s\n", s.LastUpdated.Format(time.RFC1123))

	recent := s.RecentEntries
	if len(recent) > domain.MaxRecentEntries {
		recent = recent[:domain.MaxRecentEntries]
	}

	spent, swipes := decimal.Zero, decimal.Zero
	for _, e := range recent {
		if !e.IsDebit() {
			continue
		}
		if strings.Contains(strings.ToLower(e.AccountLabel), "meal") {
			swipes = swipes.Add(e.Amount.Abs())
		} else {
			spent = spent.Add(e.Amount.Abs())
		}
	}
	fmt.Fprintf(&b, "Recent swipes used: %s\n", swipes.String())
	fmt.Fprintf(&b, "Recent dollars spent: $%s\n", spent.StringFixed(2))

	if top := topMerchants(recent); len(top) > 0 {
		fmt.Fprintf(&b, "Top locations: %s\n", strings.Join(top, ", "))
	}

	if len(recent) > 0 {
		b.WriteString("Recent activity:\n")
		for _, e := range recent {
			fmt.Fprintf(&b, "- %s: %s %s (%s)\n", e.RawDate, e.Description, e.Amount.String(), e.AccountLabel)
		}
	}

	b.WriteString("\nReturn JSON only with fields: insights[] (type, title, message, priority, predictedSavings, actionItems), summary, habitStory.")

	return b.String()
}

func topMerchants(entries []domain.LedgerEntry) []string {
	counts := make(map[string]int)
	var order []string

	for _, e := range entries {
		if !e.IsDebit() || e.Description == "" {
			continue
		}
		if counts[e.Description] == 0 {
			order = append(order, e.Description)
		}
		counts[e.Description]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > maxPromptMerchants {
		order = order[:maxPromptMerchants]
	}

	top := make([]string, len(order))
	for i, name := range order {
		top[i] = fmt.Sprintf("%s (%d)", name, counts[name])
	}

	return top
}
